package battleship

import (
	"math/rand"

	cerr "github.com/saeidalz13/battleship-engine/internal/error"
)

// TargetGenerator picks attack coordinates uniformly at random, skipping
// the ones already in the attacker's history.
type TargetGenerator struct {
	rng         *rand.Rand
	maxAttempts int
}

// A maxAttempts of zero retries until a fresh target is found.
func NewTargetGenerator(rng *rand.Rand, maxAttempts int) *TargetGenerator {
	return &TargetGenerator{
		rng:         rng,
		maxAttempts: maxAttempts,
	}
}

func (tg *TargetGenerator) Next(boardSize int, history *AttackHistory) (Coordinates, error) {
	if boardSize <= 0 {
		return Coordinates{}, cerr.ErrInvalidBoardSize(boardSize)
	}
	// nothing left to sample, retrying would never end
	if history.Len() >= boardSize*boardSize {
		return Coordinates{}, cerr.ErrAttackGenerationExhausted(0)
	}

	for attempts := 0; tg.maxAttempts == 0 || attempts < tg.maxAttempts; attempts++ {
		c := NewCoordinates(tg.rng.Intn(boardSize), tg.rng.Intn(boardSize))
		if !history.Contains(c) {
			return c, nil
		}
	}
	return Coordinates{}, cerr.ErrAttackGenerationExhausted(tg.maxAttempts)
}
