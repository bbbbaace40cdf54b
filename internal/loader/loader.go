// Package loader reads the fleet and custom placement files. Nothing in
// here is fatal: bad input is logged and dropped.
package loader

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	mb "github.com/saeidalz13/battleship-engine/models/battleship"
)

// ParseShips reads "<name>:<length>" lines. Blank lines are ignored and
// malformed ones are skipped. A repeated name keeps its first position and
// takes the later length.
func ParseShips(r io.Reader) []mb.Ship {
	ships := make([]mb.Ship, 0, 5)
	index := make(map[string]int)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		name, length, err := parseShipLine(line)
		if err != nil {
			log.Warn().Err(err).Int("line", lineNo).Str("content", line).Msg("skipping fleet entry")
			continue
		}

		if i, prs := index[name]; prs {
			ships[i].Length = length
			continue
		}
		index[name] = len(ships)
		ships = append(ships, mb.NewShip(name, length))
	}

	if err := scanner.Err(); err != nil {
		log.Warn().Err(err).Msg("could not read the whole fleet file")
	}
	return ships
}

func parseShipLine(line string) (string, int, error) {
	parts := strings.Split(line, ":")
	if len(parts) != 2 {
		return "", 0, errors.New("expected <name>:<length>")
	}

	name := strings.TrimSpace(parts[0])
	if name == "" {
		return "", 0, errors.New("empty ship name")
	}

	length, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return "", 0, errors.New("length is not an integer")
	}
	if length < 1 {
		return "", 0, errors.New("length must be positive")
	}
	return name, length, nil
}

// LoadShips returns no ships when the file cannot be opened.
func LoadShips(path string) []mb.Ship {
	f, err := os.Open(path)
	if err != nil {
		logOpenFailure(err, path)
		return []mb.Ship{}
	}
	defer f.Close()

	return ParseShips(f)
}

func LoadFleet(path string) *mb.Fleet {
	return mb.NewFleet(LoadShips(path))
}

// LoadPlacement returns an empty placement when the file is missing or
// is not a json object.
func LoadPlacement(path string) mb.PlacementSpec {
	f, err := os.Open(path)
	if err != nil {
		logOpenFailure(err, path)
		return mb.PlacementSpec{}
	}
	defer f.Close()

	spec, err := mb.ParsePlacementSpec(f)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("invalid placement file")
		return mb.PlacementSpec{}
	}
	return spec
}

func logOpenFailure(err error, path string) {
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn().Str("path", path).Msg("file not found")
		return
	}
	log.Warn().Err(err).Str("path", path).Msg("could not read file")
}
