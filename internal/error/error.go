package error

import (
	"errors"
	"fmt"
)

const (
	ConstErrAttackFailed    = "attack operation failed"
	ConstErrPlacementFailed = "placement operation failed"
	ConstErrSetupFailed     = "game setup failed"
)

// Sentinels. Constructors below wrap them so callers can use errors.Is.
var (
	ErrInvalidSize           = errors.New("board size must be a positive integer")
	ErrInvalidAlgorithm      = errors.New("invalid placement algorithm")
	ErrPlacement             = errors.New("ship could not be placed")
	ErrCoordinatesOutOfRange = errors.New("coordinates are not within the board size")

	ErrOutOfGridBound        = errors.New("coordinates out of grid bound")
	ErrPositionAlreadyTaken  = errors.New("coordinates already attacked")
	ErrGameFinished          = errors.New("game is already finished")
	ErrGameNotStarted        = errors.New("game has not started")
	ErrGenerationExhausted   = errors.New("attack generation exhausted")
	ErrSessionNotFound       = errors.New("session not found")
	ErrInvalidCoordinates    = errors.New("invalid coordinates")
	ErrMalformedPlacement    = errors.New("malformed placement entry")
	ErrUnknownShip           = errors.New("ship is not part of the fleet")
	ErrMissingPlacementInput = errors.New("no custom placement supplied")
	ErrFleetNotPlaced        = errors.New("fleet has not been placed")
)

func ErrInvalidBoardSize(size int) error {
	return fmt.Errorf("%w: got %d", ErrInvalidSize, size)
}

func ErrAlgorithmNotExists(name string) error {
	return fmt.Errorf("%w: %q, valid options are simple, random, custom and diagonal", ErrInvalidAlgorithm, name)
}

func ErrShipNotPlaced(shipName, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrPlacement, shipName, reason)
}

func ErrAnchorOutOfRange(shipName string, x, y int) error {
	return fmt.Errorf("%w: ship %s anchor\tx: %d\ty: %d", ErrCoordinatesOutOfRange, shipName, x, y)
}

func ErrXorYOutOfGridBound(x, y int) error {
	return fmt.Errorf("%w: incoming x or y is out of game grid bound\tx: %d\ty: %d", ErrOutOfGridBound, x, y)
}

func ErrAttackPositionAlreadyTaken(x, y int) error {
	return fmt.Errorf("%w: this position is already hit by the attacker in previous rounds\tx: %d\ty: %d", ErrPositionAlreadyTaken, x, y)
}

func ErrCoordinatesNotInt(x, y string) error {
	return fmt.Errorf("%w: coordinates must be integers\tx: %q\ty: %q", ErrInvalidCoordinates, x, y)
}

func ErrMalformedPlacementEntry(shipName, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrMalformedPlacement, shipName, reason)
}

func ErrShipNotInFleet(shipName string) error {
	return fmt.Errorf("%w: %s", ErrUnknownShip, shipName)
}

func ErrAttackGenerationExhausted(attempts int) error {
	return fmt.Errorf("%w: no untargeted coordinates found after %d attempts", ErrGenerationExhausted, attempts)
}

func ErrSessionNotExists(sessionId string) error {
	return fmt.Errorf("%w: session id: %s", ErrSessionNotFound, sessionId)
}

func ErrSessionIsNil(sessionId string) error {
	return fmt.Errorf("session with this id is nil, id: %s", sessionId)
}

func ErrNoActiveGame(sessionId string) error {
	return fmt.Errorf("%w: session id: %s", ErrGameNotStarted, sessionId)
}

func ErrPlayerFleetNotPlaced(sessionId string) error {
	return fmt.Errorf("%w: place the player fleet first, session id: %s", ErrFleetNotPlaced, sessionId)
}

func ErrGameAlreadyFinished(winner string) error {
	if winner == "" {
		return fmt.Errorf("%w: aborted without a winner", ErrGameFinished)
	}
	return fmt.Errorf("%w: winner: %s", ErrGameFinished, winner)
}

func ErrNilPayload() error {
	return fmt.Errorf("the payload is nil and is not of type map")
}
