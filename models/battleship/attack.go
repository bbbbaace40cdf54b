package battleship

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	cerr "github.com/saeidalz13/battleship-engine/internal/error"
)

type AttackResult struct {
	Hit bool `json:"hit"`
	// Name of the ship this attack sank, empty otherwise.
	Sunk string `json:"sunk,omitempty"`
	// Set when the coordinates were invalid and the attack was resolved
	// as a miss.
	Warning error `json:"-"`
}

func (r AttackResult) IsSunk() bool {
	return r.Sunk != ""
}

// Attack resolves a shot against one side's grid and fleet. Invalid
// coordinates are never an error: they resolve to a miss carrying a
// warning.
func Attack(c Coordinates, grid *Grid, fleet *Fleet) AttackResult {
	if !grid.InBounds(c) {
		warning := cerr.ErrXorYOutOfGridBound(c.X, c.Y)
		log.Warn().Err(warning).Msg("attack resolved as miss")
		return AttackResult{Warning: warning}
	}

	cell := grid.At(c)
	if cell.IsEmpty() {
		return AttackResult{}
	}

	grid.Clear(c)
	shipName := string(cell)
	result := AttackResult{Hit: true}

	// only the hit that takes the ship from 1 to 0 reports the sink
	if fleet.Remaining(shipName) > 0 && fleet.Hit(shipName) == 0 {
		result.Sunk = shipName
	}
	return result
}

// ParseCoordinates converts raw transport input into coordinates.
func ParseCoordinates(x, y string) (Coordinates, error) {
	xInt, errX := strconv.Atoi(strings.TrimSpace(x))
	yInt, errY := strconv.Atoi(strings.TrimSpace(y))
	if errX != nil || errY != nil {
		return Coordinates{}, cerr.ErrCoordinatesNotInt(x, y)
	}
	return NewCoordinates(xInt, yInt), nil
}

// AttackRaw is Attack for unparsed input; unparsable coordinates are a
// miss with a warning.
func AttackRaw(x, y string, grid *Grid, fleet *Fleet) AttackResult {
	c, err := ParseCoordinates(x, y)
	if err != nil {
		log.Warn().Err(err).Msg("attack resolved as miss")
		return AttackResult{Warning: err}
	}
	return Attack(c, grid, fleet)
}
