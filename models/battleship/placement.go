package battleship

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	cerr "github.com/saeidalz13/battleship-engine/internal/error"
)

type Algorithm uint8

const (
	AlgorithmSimple Algorithm = iota
	AlgorithmRandom
	AlgorithmCustom
	AlgorithmDiagonal
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmSimple:
		return "simple"
	case AlgorithmRandom:
		return "random"
	case AlgorithmCustom:
		return "custom"
	case AlgorithmDiagonal:
		return "diagonal"
	default:
		return "unknown"
	}
}

func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "simple":
		return AlgorithmSimple, nil
	case "random":
		return AlgorithmRandom, nil
	case "custom":
		return AlgorithmCustom, nil
	case "diagonal":
		return AlgorithmDiagonal, nil
	default:
		return 0, cerr.ErrAlgorithmNotExists(name)
	}
}

// PlacementEntry is one ship of a custom placement document. Raw is
// expected to be [x, y, orientation] and is parsed during placement.
type PlacementEntry struct {
	ShipName string
	Raw      json.RawMessage
}

// PlacementSpec keeps the entries in document order.
type PlacementSpec []PlacementEntry

// ParsePlacementSpec decodes a JSON object of ship name to tuple. Only the
// object shape is checked here; tuples are validated per entry when placed.
func ParsePlacementSpec(r io.Reader) (PlacementSpec, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("placement must be a json object, got %v", tok)
	}

	spec := make(PlacementSpec, 0, 8)
	index := make(map[string]int)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}

		// a repeated key keeps its first position and its last value
		if i, prs := index[key]; prs {
			spec[i].Raw = raw
			continue
		}
		index[key] = len(spec)
		spec = append(spec, PlacementEntry{ShipName: key, Raw: raw})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return spec, nil
}

func parsePlacementTuple(raw json.RawMessage) (Coordinates, Orientation, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil {
		return Coordinates{}, 0, errors.New("entry must be an array")
	}
	if len(parts) != 3 {
		return Coordinates{}, 0, fmt.Errorf("entry must have exactly 3 elements, got %d", len(parts))
	}

	x, err := parseTupleInt(parts[0])
	if err != nil {
		return Coordinates{}, 0, fmt.Errorf("x: %w", err)
	}
	y, err := parseTupleInt(parts[1])
	if err != nil {
		return Coordinates{}, 0, fmt.Errorf("y: %w", err)
	}

	// the json string "h" is horizontal, any other value means vertical
	o := OrientationVertical
	var orientation string
	if err := json.Unmarshal(parts[2], &orientation); err == nil && orientation == "h" {
		o = OrientationHorizontal
	}
	return NewCoordinates(x, y), o, nil
}

// parseTupleInt accepts integral json numbers and integer strings.
func parseTupleInt(raw json.RawMessage) (int, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return 0, err
	}

	switch val := v.(type) {
	case json.Number:
		n, err := strconv.Atoi(val.String())
		if err != nil {
			return 0, fmt.Errorf("not an integer: %s", val)
		}
		return n, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, fmt.Errorf("not an integer: %q", val)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("not an integer: %s", string(raw))
	}
}

type SkippedEntry struct {
	ShipName string
	Reason   error
}

type PlacementReport struct {
	Algorithm Algorithm
	// Custom entries ignored because they were malformed or named a ship
	// outside the fleet.
	Skipped []SkippedEntry
	// Fleet ships that did not appear in the custom placement.
	Unplaced []string
}

type Placer struct {
	rng         *rand.Rand
	maxAttempts int
	custom      PlacementSpec
	hasCustom   bool
	logger      zerolog.Logger
}

type PlacerOption func(*Placer)

// WithMaxAttempts caps the rejection sampling of random and diagonal
// placement per ship. Zero means no cap.
func WithMaxAttempts(n int) PlacerOption {
	return func(p *Placer) {
		p.maxAttempts = n
	}
}

func WithCustomPlacement(spec PlacementSpec) PlacerOption {
	return func(p *Placer) {
		p.custom = spec
		p.hasCustom = true
	}
}

func WithPlacerLogger(logger zerolog.Logger) PlacerOption {
	return func(p *Placer) {
		p.logger = logger
	}
}

func NewPlacer(rng *rand.Rand, opts ...PlacerOption) *Placer {
	p := &Placer{
		rng:    rng,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type placementStrategy interface {
	place(grid *Grid, fleet *Fleet, report *PlacementReport) error
}

// strategy is the only place an Algorithm is turned into behaviour.
func (p *Placer) strategy(alg Algorithm) (placementStrategy, error) {
	switch alg {
	case AlgorithmSimple:
		return simplePlacement{p}, nil
	case AlgorithmRandom:
		return randomPlacement{p}, nil
	case AlgorithmCustom:
		return customPlacement{p}, nil
	case AlgorithmDiagonal:
		return diagonalPlacement{p}, nil
	default:
		return nil, cerr.ErrAlgorithmNotExists(alg.String())
	}
}

// Place populates the grid with the fleet. On failure the ships placed
// before the failing one stay on the grid; callers must not start a game
// with it.
func (p *Placer) Place(grid *Grid, fleet *Fleet, alg Algorithm) (PlacementReport, error) {
	report := PlacementReport{Algorithm: alg}

	strategy, err := p.strategy(alg)
	if err != nil {
		p.logger.Error().Err(err).Msg(cerr.ConstErrPlacementFailed)
		return report, err
	}

	if err := strategy.place(grid, fleet, &report); err != nil {
		p.logger.Error().Err(err).Str("algorithm", alg.String()).Msg(cerr.ConstErrPlacementFailed)
		return report, err
	}

	p.logger.Info().
		Str("algorithm", alg.String()).
		Int("ships", fleet.Len()).
		Int("skipped", len(report.Skipped)).
		Msg("battleships placed successfully")
	return report, nil
}

func (p *Placer) exhausted(attempts int) bool {
	return p.maxAttempts > 0 && attempts >= p.maxAttempts
}

type simplePlacement struct{ *Placer }

// Ship i goes to row i, columns 0..length-1.
func (s simplePlacement) place(grid *Grid, fleet *Fleet, _ *PlacementReport) error {
	for row, sh := range fleet.Ships() {
		if row >= grid.Size() || sh.Length > grid.Size() {
			return cerr.ErrShipNotPlaced(sh.Name, "try increasing the size of the board")
		}
		grid.stamp(Footprint(NewCoordinates(row, 0), OrientationHorizontal, sh.Length), sh.Name)
	}
	return nil
}

type randomPlacement struct{ *Placer }

func (s randomPlacement) place(grid *Grid, fleet *Fleet, _ *PlacementReport) error {
	n := grid.Size()
	for _, sh := range fleet.Ships() {
		if sh.Length > n {
			return cerr.ErrShipNotPlaced(sh.Name, "ship is longer than the board")
		}

		for attempts := 0; ; attempts++ {
			if s.exhausted(attempts) {
				return cerr.ErrShipNotPlaced(sh.Name, fmt.Sprintf("no free footprint after %d attempts", attempts))
			}

			var anchor Coordinates
			orientation := OrientationHorizontal
			if s.rng.Intn(2) == 1 {
				orientation = OrientationVertical
			}

			free := n - max(sh.Length, 1) + 1
			if orientation == OrientationHorizontal {
				anchor = NewCoordinates(s.rng.Intn(n), s.rng.Intn(free))
			} else {
				anchor = NewCoordinates(s.rng.Intn(free), s.rng.Intn(n))
			}

			if grid.FootprintEmpty(anchor, orientation, sh.Length) {
				grid.stamp(Footprint(anchor, orientation, sh.Length), sh.Name)
				break
			}
		}
	}
	return nil
}

type diagonalPlacement struct{ *Placer }

func (s diagonalPlacement) place(grid *Grid, fleet *Fleet, _ *PlacementReport) error {
	n := grid.Size()
	for _, sh := range fleet.Ships() {
		if sh.Length > n {
			return cerr.ErrShipNotPlaced(sh.Name, "ship is longer than the board")
		}

		length := max(sh.Length, 1)
		free := n - length + 1
		for attempts := 0; ; attempts++ {
			if s.exhausted(attempts) {
				return cerr.ErrShipNotPlaced(sh.Name, fmt.Sprintf("no free diagonal footprint after %d attempts", attempts))
			}

			var anchor Coordinates
			orientation := OrientationDiagonalDownRight
			if s.rng.Intn(2) == 1 {
				orientation = OrientationDiagonalDownLeft
			}

			if orientation == OrientationDiagonalDownRight {
				anchor = NewCoordinates(s.rng.Intn(free), s.rng.Intn(free))
			} else {
				anchor = NewCoordinates(s.rng.Intn(free), length-1+s.rng.Intn(free))
			}

			if grid.FootprintEmpty(anchor, orientation, sh.Length) {
				grid.stamp(Footprint(anchor, orientation, sh.Length), sh.Name)
				break
			}
		}
	}
	return nil
}

type customPlacement struct{ *Placer }

func (s customPlacement) place(grid *Grid, fleet *Fleet, report *PlacementReport) error {
	if !s.hasCustom {
		return fmt.Errorf("%w: %w", cerr.ErrPlacement, cerr.ErrMissingPlacementInput)
	}

	n := grid.Size()
	placed := make(map[string]bool, len(s.custom))
	for _, entry := range s.custom {
		anchor, orientation, err := parsePlacementTuple(entry.Raw)
		if err != nil {
			s.skip(report, entry.ShipName, cerr.ErrMalformedPlacementEntry(entry.ShipName, err.Error()))
			continue
		}

		if anchor.X < 0 || anchor.Y < 0 || anchor.X > n || anchor.Y > n {
			return cerr.ErrAnchorOutOfRange(entry.ShipName, anchor.X, anchor.Y)
		}

		length, prs := fleet.Length(entry.ShipName)
		if !prs {
			s.skip(report, entry.ShipName, cerr.ErrShipNotInFleet(entry.ShipName))
			continue
		}

		for _, c := range Footprint(anchor, orientation, length) {
			if !grid.InBounds(c) {
				return cerr.ErrShipNotPlaced(entry.ShipName, "ship does not fit within the board ("+orientation.String()+")")
			}
			if cur := grid.At(c); !cur.IsEmpty() && cur != Cell(entry.ShipName) {
				return cerr.ErrShipNotPlaced(entry.ShipName, fmt.Sprintf("overlaps %s at %s", cur, c))
			}
			grid.Set(c, Cell(entry.ShipName))
		}
		placed[entry.ShipName] = true
	}

	for _, sh := range fleet.Ships() {
		if !placed[sh.Name] {
			report.Unplaced = append(report.Unplaced, sh.Name)
			s.logger.Warn().Str("ship", sh.Name).Msg("ship missing from custom placement")
		}
	}
	return nil
}

func (s customPlacement) skip(report *PlacementReport, shipName string, reason error) {
	report.Skipped = append(report.Skipped, SkippedEntry{ShipName: shipName, Reason: reason})
	s.logger.Warn().Err(reason).Str("ship", shipName).Msg("placement entry skipped")
}
