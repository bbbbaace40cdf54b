package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"

	"github.com/rs/zerolog/log"
	cerr "github.com/saeidalz13/battleship-engine/internal/error"
	mb "github.com/saeidalz13/battleship-engine/models/battleship"
)

type Options struct {
	In  io.Reader
	Out io.Writer

	Fleet     []mb.Ship
	Placement mb.PlacementSpec
	// Used for the player fleet against the AI. The AI always places at random.
	PlayerAlgorithm mb.Algorithm
	MaxAttempts     int
	Rng             *rand.Rand
}

const (
	markHit  = "X"
	markMiss = "O"
)

// RunSinglePlayer is one board with simple placement; the player fires
// until the whole fleet is sunk.
func RunSinglePlayer(ctx context.Context, opts Options) error {
	p := NewPrompter(opts.In, opts.Out)

	name, err := p.Line("Welcome to Battleship, enter your name: ")
	if err != nil {
		return err
	}
	size, err := p.PositiveInt(fmt.Sprintf("%s, please enter the size of the board: ", name))
	if err != nil {
		return err
	}

	grid, err := mb.NewGrid(size)
	if err != nil {
		return err
	}
	fleet := mb.NewFleet(opts.Fleet)
	placer := mb.NewPlacer(opts.Rng, mb.WithMaxAttempts(opts.MaxAttempts), mb.WithPlacerLogger(log.Logger))
	if _, err := placer.Place(grid, fleet, mb.AlgorithmSimple); err != nil {
		return err
	}

	history := mb.NewAttackHistory()
	for !mb.IsFleetDefeated(fleet) {
		if err := ctx.Err(); err != nil {
			return err
		}

		c, err := nextTarget(p, size, history)
		if err != nil {
			return err
		}
		history.Add(c)

		result := mb.Attack(c, grid, fleet)
		reportShot(p, result)
	}

	log.Info().Str("player", name).Int("shots", history.Len()).Msg("single player game finished")
	p.Println("Congratulations, game over! You sank all the battleships!")
	return nil
}

// RunAgainstAI alternates player and AI shots until one fleet is sunk.
func RunAgainstAI(ctx context.Context, opts Options) error {
	p := NewPrompter(opts.In, opts.Out)

	name, err := p.Line("Welcome to Battleship, enter your name: ")
	if err != nil {
		return err
	}
	size, err := p.PositiveInt(fmt.Sprintf("Hello %s, enter the size of the board: ", name))
	if err != nil {
		return err
	}

	player, err := placeSide(p, mb.SidePlayer, size, opts, opts.PlayerAlgorithm)
	if err != nil {
		return err
	}
	ai, err := placeSide(p, mb.SideAI, size, opts, mb.AlgorithmRandom)
	if err != nil {
		return err
	}

	game, err := mb.NewGame(size, player, ai, mb.WithGameLogger(log.Logger))
	if err != nil {
		return err
	}
	gen := mb.NewTargetGenerator(opts.Rng, opts.MaxAttempts)
	marks := make(map[mb.Coordinates]string)

	for !game.IsFinished() {
		if err := ctx.Err(); err != nil {
			return err
		}

		outcome, err := playerTurn(p, game)
		if err != nil {
			return err
		}
		reportShot(p, outcome.Result)
		if outcome.Finished {
			break
		}

		aiOutcome, err := game.PlayAITurn(gen)
		if err != nil {
			return err
		}
		if aiOutcome.Result.Hit {
			marks[aiOutcome.Coordinates] = markHit
			p.Println("The AI hit one of your ships!")
		} else {
			marks[aiOutcome.Coordinates] = markMiss
			p.Println("The AI missed.")
		}
		p.Printf("%s", renderBoard(player.Grid, marks))
	}

	if game.Winner() == mb.SidePlayer {
		p.Printf("Congratulations %s! You beat the AI.\n", name)
	} else {
		p.Println("Game over! The AI sank your fleet. Try again.")
	}
	return nil
}

// placeSide warns about every ship the custom placement left out; such a
// ship can never be sunk, so that side can never lose.
func placeSide(p *Prompter, name string, size int, opts Options, alg mb.Algorithm) (*mb.Side, error) {
	grid, err := mb.NewGrid(size)
	if err != nil {
		return nil, err
	}
	fleet := mb.NewFleet(opts.Fleet)

	placerOpts := []mb.PlacerOption{
		mb.WithMaxAttempts(opts.MaxAttempts),
		mb.WithPlacerLogger(log.Logger.With().Str("side", name).Logger()),
	}
	if alg == mb.AlgorithmCustom {
		placerOpts = append(placerOpts, mb.WithCustomPlacement(opts.Placement))
	}

	report, err := mb.NewPlacer(opts.Rng, placerOpts...).Place(grid, fleet, alg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	for _, skipped := range report.Skipped {
		p.Printf("Warning: placement entry for %s ignored: %v\n", skipped.ShipName, skipped.Reason)
	}
	if len(report.Unplaced) > 0 {
		log.Warn().Str("side", name).Strs("unplaced", report.Unplaced).Msg("fleet not fully placed")
		p.Printf("Warning: %s was not placed and cannot be sunk.\n", strings.Join(report.Unplaced, ", "))
	}
	return mb.NewSide(name, grid, fleet), nil
}

func playerTurn(p *Prompter, game *mb.Game) (mb.TurnOutcome, error) {
	for {
		c, err := p.Coordinates()
		if err != nil {
			return mb.TurnOutcome{}, err
		}

		outcome, err := game.Submit(c)
		if err == nil {
			return outcome, nil
		}
		if !errors.Is(err, cerr.ErrOutOfGridBound) && !errors.Is(err, cerr.ErrPositionAlreadyTaken) {
			return mb.TurnOutcome{}, err
		}
		p.Println("Please enter new coordinates.")
	}
}

func nextTarget(p *Prompter, size int, history *mb.AttackHistory) (mb.Coordinates, error) {
	for {
		c, err := p.Coordinates()
		if err != nil {
			return mb.Coordinates{}, err
		}
		if err := mb.ValidateTarget(size, history, c); err != nil {
			log.Warn().Err(err).Msg("target rejected")
			p.Println("Please enter new coordinates.")
			continue
		}
		return c, nil
	}
}

func reportShot(p *Prompter, result mb.AttackResult) {
	if !result.Hit {
		p.Println("That was a miss, try again!")
		return
	}
	p.Println("That was a hit, well done!")
	if result.IsSunk() {
		p.Printf("You have sunk the %s!\n", result.Sunk)
	}
}

// renderBoard draws the player's own board with the AI shots on top.
func renderBoard(grid *mb.Grid, marks map[mb.Coordinates]string) string {
	var sb strings.Builder
	rows := grid.Rows()
	for x, row := range rows {
		cells := make([]string, len(row))
		for y, cell := range row {
			switch {
			case marks[mb.NewCoordinates(x, y)] != "":
				cells[y] = "[" + marks[mb.NewCoordinates(x, y)] + "]"
			case cell == "":
				cells[y] = " . "
			default:
				cells[y] = " " + cell[:1] + " "
			}
		}
		sb.WriteString(strings.Join(cells, " "))
		sb.WriteString("\n")
	}
	return sb.String()
}
