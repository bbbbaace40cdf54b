package battleship

type Ship struct {
	Name   string `json:"name"`
	Length int    `json:"length"`
}

func NewShip(name string, length int) Ship {
	return Ship{Name: name, Length: length}
}

// Fleet is the fleet registry of one side: ship name to remaining
// hit points. It is the only source of truth for sinking; the grid is
// never consulted for it. Ships keep the order they were added in.
type Fleet struct {
	order     []string
	lengths   map[string]int
	remaining map[string]int
}

// NewFleet does not validate the ships; duplicate names and bad lengths
// are the loader's concern. A repeated name keeps its first position and
// takes the later length.
func NewFleet(ships []Ship) *Fleet {
	f := &Fleet{
		order:     make([]string, 0, len(ships)),
		lengths:   make(map[string]int, len(ships)),
		remaining: make(map[string]int, len(ships)),
	}
	for _, sh := range ships {
		if _, prs := f.lengths[sh.Name]; !prs {
			f.order = append(f.order, sh.Name)
		}
		f.lengths[sh.Name] = sh.Length
		f.remaining[sh.Name] = sh.Length
	}
	return f
}

// Ships returns the ships with their full lengths in registry order.
func (f *Fleet) Ships() []Ship {
	ships := make([]Ship, 0, len(f.order))
	for _, name := range f.order {
		ships = append(ships, NewShip(name, f.lengths[name]))
	}
	return ships
}

func (f *Fleet) Len() int {
	return len(f.order)
}

func (f *Fleet) Has(name string) bool {
	_, prs := f.lengths[name]
	return prs
}

func (f *Fleet) Length(name string) (int, bool) {
	length, prs := f.lengths[name]
	return length, prs
}

func (f *Fleet) Remaining(name string) int {
	return f.remaining[name]
}

// Hit decrements the ship's hit points and returns what is left.
// Ships already at zero stay at zero.
func (f *Fleet) Hit(name string) int {
	hp, prs := f.remaining[name]
	if !prs {
		return 0
	}
	if hp > 0 {
		hp--
		f.remaining[name] = hp
	}
	return hp
}

func (f *Fleet) IsSunk(name string) bool {
	return f.Has(name) && f.remaining[name] == 0
}

// IsDefeated is true when every ship is sunk, and for an empty fleet.
func (f *Fleet) IsDefeated() bool {
	for _, name := range f.order {
		if f.remaining[name] != 0 {
			return false
		}
	}
	return true
}

func (f *Fleet) SunkenShips() []string {
	sunk := make([]string, 0, len(f.order))
	for _, name := range f.order {
		if f.remaining[name] == 0 {
			sunk = append(sunk, name)
		}
	}
	return sunk
}

// Clone returns a fresh registry with full hit points.
func (f *Fleet) Clone() *Fleet {
	return NewFleet(f.Ships())
}
