package battleship

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFleet_KeepsOrder(t *testing.T) {
	fleet := NewFleet([]Ship{
		NewShip("Carrier", 5),
		NewShip("Destroyer", 2),
		NewShip("Carrier", 4),
	})

	assert.Equal(t, 2, fleet.Len())
	assert.Equal(t, []Ship{{"Carrier", 4}, {"Destroyer", 2}}, fleet.Ships())
	assert.Equal(t, 4, fleet.Remaining("Carrier"))
}

func TestFleet_Hit(t *testing.T) {
	fleet := NewFleet([]Ship{NewShip("Destroyer", 2)})

	assert.Equal(t, 1, fleet.Hit("Destroyer"))
	assert.False(t, fleet.IsSunk("Destroyer"))
	assert.Equal(t, 0, fleet.Hit("Destroyer"))
	assert.True(t, fleet.IsSunk("Destroyer"))
	assert.Equal(t, 0, fleet.Hit("Destroyer"), "stays at zero")

	assert.Equal(t, 0, fleet.Hit("Ghost"))
	assert.False(t, fleet.IsSunk("Ghost"))
}

func TestFleet_IsDefeated(t *testing.T) {
	assert.True(t, NewFleet(nil).IsDefeated(), "empty fleet")

	fleet := NewFleet([]Ship{NewShip("A", 1), NewShip("B", 1)})
	assert.False(t, fleet.IsDefeated())

	fleet.Hit("A")
	assert.False(t, fleet.IsDefeated())
	assert.Equal(t, []string{"A"}, fleet.SunkenShips())

	fleet.Hit("B")
	assert.True(t, fleet.IsDefeated())
}

func TestFleet_Clone(t *testing.T) {
	fleet := NewFleet([]Ship{NewShip("A", 2)})
	fleet.Hit("A")

	clone := fleet.Clone()
	assert.Equal(t, 2, clone.Remaining("A"))
	assert.Equal(t, 1, fleet.Remaining("A"))
}
