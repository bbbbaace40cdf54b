package battleship

import (
	"fmt"
	"strings"

	cerr "github.com/saeidalz13/battleship-engine/internal/error"
)

// Cell is either empty or holds the name of the ship occupying it.
type Cell string

const CellEmpty Cell = ""

func (c Cell) IsEmpty() bool {
	return c == CellEmpty
}

// X is the row and Y is the column.
type Coordinates struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func NewCoordinates(x, y int) Coordinates {
	return Coordinates{X: x, Y: y}
}

func (c Coordinates) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Pair is the [x, y] form used by the HTTP front end.
func (c Coordinates) Pair() [2]int {
	return [2]int{c.X, c.Y}
}

type Orientation uint8

const (
	OrientationHorizontal Orientation = iota
	OrientationVertical
	OrientationDiagonalDownRight
	OrientationDiagonalDownLeft
)

func (o Orientation) String() string {
	switch o {
	case OrientationHorizontal:
		return "horizontal"
	case OrientationVertical:
		return "vertical"
	case OrientationDiagonalDownRight:
		return "diagonal-down-right"
	case OrientationDiagonalDownLeft:
		return "diagonal-down-left"
	default:
		return "unknown"
	}
}

// step returns the row and column delta between consecutive cells.
func (o Orientation) step() (int, int) {
	switch o {
	case OrientationHorizontal:
		return 0, 1
	case OrientationVertical:
		return 1, 0
	case OrientationDiagonalDownRight:
		return 1, 1
	default:
		return 1, -1
	}
}

// Grid is a square board. Its size is fixed at construction.
type Grid struct {
	size  int
	cells [][]Cell
}

// Creates a new grid with every cell empty.
func NewGrid(size int) (*Grid, error) {
	if size <= 0 {
		return nil, cerr.ErrInvalidBoardSize(size)
	}

	cells := make([][]Cell, size)
	for i := 0; i < size; i++ {
		cells[i] = make([]Cell, size)
	}
	return &Grid{size: size, cells: cells}, nil
}

func (g *Grid) Size() int {
	return g.size
}

func (g *Grid) InBounds(c Coordinates) bool {
	return c.X >= 0 && c.X < g.size && c.Y >= 0 && c.Y < g.size
}

// At returns CellEmpty for out of bound coordinates.
func (g *Grid) At(c Coordinates) Cell {
	if !g.InBounds(c) {
		return CellEmpty
	}
	return g.cells[c.X][c.Y]
}

func (g *Grid) Set(c Coordinates, cell Cell) {
	g.cells[c.X][c.Y] = cell
}

func (g *Grid) Clear(c Coordinates) {
	g.cells[c.X][c.Y] = CellEmpty
}

// Footprint returns the cells a ship of the given length would occupy.
// The cells are not checked against the grid bounds. Ships of length
// zero or less occupy nothing.
func Footprint(anchor Coordinates, o Orientation, length int) []Coordinates {
	if length <= 0 {
		return nil
	}
	dx, dy := o.step()
	cells := make([]Coordinates, 0, length)
	for i := 0; i < length; i++ {
		cells = append(cells, NewCoordinates(anchor.X+i*dx, anchor.Y+i*dy))
	}
	return cells
}

// FootprintEmpty reports whether every cell of the footprint is in bounds
// and currently empty.
func (g *Grid) FootprintEmpty(anchor Coordinates, o Orientation, length int) bool {
	for _, c := range Footprint(anchor, o, length) {
		if !g.InBounds(c) || !g.At(c).IsEmpty() {
			return false
		}
	}
	return true
}

func (g *Grid) stamp(cells []Coordinates, shipName string) {
	for _, c := range cells {
		g.cells[c.X][c.Y] = Cell(shipName)
	}
}

// Occupied returns every occupied cell grouped by ship name.
func (g *Grid) Occupied() map[string][]Coordinates {
	occupied := make(map[string][]Coordinates)
	for x := range g.cells {
		for y, cell := range g.cells[x] {
			if cell.IsEmpty() {
				continue
			}
			name := string(cell)
			occupied[name] = append(occupied[name], NewCoordinates(x, y))
		}
	}
	return occupied
}

// Rows returns a copy of the cells as plain strings. Empty cells are "".
func (g *Grid) Rows() [][]string {
	rows := make([][]string, g.size)
	for x := range g.cells {
		rows[x] = make([]string, g.size)
		for y, cell := range g.cells[x] {
			rows[x][y] = string(cell)
		}
	}
	return rows
}

func (g *Grid) String() string {
	var sb strings.Builder
	for x := range g.cells {
		for y, cell := range g.cells[x] {
			if y > 0 {
				sb.WriteString("  ")
			}
			if cell.IsEmpty() {
				sb.WriteString(".")
			} else {
				sb.WriteString(string(cell))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
