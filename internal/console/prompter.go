package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	mb "github.com/saeidalz13/battleship-engine/models/battleship"
)

var ErrInputClosed = errors.New("input closed")

// Prompter asks for input line by line and retries until it gets
// something usable.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:  bufio.NewScanner(in),
		out: out,
	}
}

func (p *Prompter) Printf(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format, args...)
}

func (p *Prompter) Println(args ...interface{}) {
	fmt.Fprintln(p.out, args...)
}

func (p *Prompter) Line(prompt string) (string, error) {
	p.Printf("%s", prompt)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", ErrInputClosed
	}
	return strings.TrimSpace(p.in.Text()), nil
}

// PositiveInt keeps asking until a positive integer is entered.
func (p *Prompter) PositiveInt(prompt string) (int, error) {
	for {
		line, err := p.Line(prompt)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(line)
		if err == nil && n > 0 {
			return n, nil
		}
		p.Println("Please enter a positive integer.")
	}
}

// Coordinates keeps asking until both row and column are non-negative
// integers. Whether they fit the board is the game's concern.
func (p *Prompter) Coordinates() (mb.Coordinates, error) {
	for {
		row, err := p.Line("It's your turn! Enter the row you want to attack: ")
		if err != nil {
			return mb.Coordinates{}, err
		}
		col, err := p.Line("What column? ")
		if err != nil {
			return mb.Coordinates{}, err
		}

		x, errX := parseNonNegative(row)
		y, errY := parseNonNegative(col)
		if errX != nil || errY != nil {
			log.Warn().Str("row", row).Str("column", col).Msg("invalid coordinates entered")
			p.Println("Coordinates must be non-negative integers, please try again.")
			continue
		}
		return mb.NewCoordinates(x, y), nil
	}
}

func parseNonNegative(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative value %d", n)
	}
	return n, nil
}
