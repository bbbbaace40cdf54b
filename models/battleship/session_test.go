package battleship

import (
	"testing"
	"time"

	cerr "github.com/saeidalz13/battleship-engine/internal/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *BattleshipGameManager {
	return NewBattleshipGameManager(SessionConfig{
		BoardSize:   4,
		Fleet:       []Ship{NewShip("A", 2), NewShip("B", 1)},
		AIAlgorithm: AlgorithmRandom,
		Seed:        42,
	})
}

func TestGameManager_Sessions(t *testing.T) {
	bgm := newTestManager()

	session := bgm.CreateSession()
	require.NotNil(t, session)
	assert.Len(t, session.ID, 6)
	assert.Equal(t, 1, bgm.SessionCount())

	got, err := bgm.GetSession(session.ID)
	require.NoError(t, err)
	assert.Same(t, session, got)

	bgm.TerminateSession(session.ID)
	_, err = bgm.GetSession(session.ID)
	assert.ErrorIs(t, err, cerr.ErrSessionNotFound)
}

func TestGameManager_CleanupExpired(t *testing.T) {
	bgm := newTestManager()
	bgm.CreateSession()
	bgm.CreateSession()

	assert.Equal(t, 0, bgm.CleanupExpired(time.Hour))
	assert.Equal(t, 2, bgm.CleanupExpired(-time.Minute))
	assert.Equal(t, 0, bgm.SessionCount())
}

func TestGameManager_UpdateConfig(t *testing.T) {
	bgm := newTestManager()
	before := bgm.CreateSession()

	bgm.UpdateConfig(SessionConfig{BoardSize: 6, Fleet: []Ship{NewShip("C", 3)}})
	after := bgm.CreateSession()

	assert.Equal(t, 4, before.BoardSize())
	assert.Equal(t, 6, after.BoardSize())
	assert.Equal(t, []Ship{{"C", 3}}, after.Ships())
	assert.Equal(t, int64(42), bgm.Config().Seed)
}

func TestGameSession_NeedsPlacementAndGame(t *testing.T) {
	session := newTestManager().CreateSession()

	_, err := session.StartAgainstAI()
	assert.ErrorIs(t, err, cerr.ErrFleetNotPlaced)

	_, err = session.PlayerAttack(NewCoordinates(0, 0))
	assert.ErrorIs(t, err, cerr.ErrGameNotStarted)

	assert.Nil(t, session.PlayerBoard())
	assert.ErrorIs(t, session.Configure(0), cerr.ErrInvalidSize)
}

func TestGameSession_PlayToTheEnd(t *testing.T) {
	session := newTestManager().CreateSession()

	_, err := session.PlacePlayer(AlgorithmSimple, nil)
	require.NoError(t, err)

	board, err := session.StartAgainstAI()
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "A", "", ""}, board[0])
	assert.Equal(t, []string{"B", "", "", ""}, board[1])

	first, err := session.PlayerAttack(NewCoordinates(0, 0))
	require.NoError(t, err)
	require.NotNil(t, first.AI)
	assert.False(t, first.Finished())

	_, err = session.PlayerAttack(NewCoordinates(0, 0))
	assert.ErrorIs(t, err, cerr.ErrPositionAlreadyTaken)

	var last RoundOutcome
	for x := 0; x < 4 && !session.IsFinished(); x++ {
		for y := 0; y < 4 && !session.IsFinished(); y++ {
			if x == 0 && y == 0 {
				continue
			}
			last, err = session.PlayerAttack(NewCoordinates(x, y))
			require.NoError(t, err)
		}
	}

	require.True(t, session.IsFinished())
	assert.True(t, last.Finished())
	assert.Contains(t, []string{FinishedPlayerWins, FinishedAIWins}, last.FinishedMessage())
	assert.Contains(t, []string{SidePlayer, SideAI}, session.Winner())
	if last.Player.Finished {
		assert.Nil(t, last.AI, "no AI turn after the player wins")
	}
}

func TestGameSession_RestartRestoresPlayerFleet(t *testing.T) {
	session := newTestManager().CreateSession()
	_, err := session.PlacePlayer(AlgorithmSimple, nil)
	require.NoError(t, err)

	initial, err := session.StartAgainstAI()
	require.NoError(t, err)

	for y := 0; y < 4; y++ {
		if _, err := session.PlayerAttack(NewCoordinates(3, y)); err != nil {
			break
		}
	}

	restarted, err := session.StartAgainstAI()
	require.NoError(t, err)
	assert.Equal(t, initial, restarted)
	assert.False(t, session.IsFinished())
}

func TestGameSession_CustomPlacement(t *testing.T) {
	session := newTestManager().CreateSession()
	spec := mustSpec(t, `{"A": [3, 2, "h"], "B": [0, 0, "v"], "Q": [1, 1, "h"]}`)

	report, err := session.PlacePlayer(AlgorithmCustom, spec)
	require.NoError(t, err)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "Q", report.Skipped[0].ShipName)

	board := session.PlayerBoard()
	assert.Equal(t, "A", board[3][2])
	assert.Equal(t, "A", board[3][3])
	assert.Equal(t, "B", board[0][0])

	_, err = session.PlacePlayer(AlgorithmCustom, mustSpec(t, `{"A": [3, 3, "h"]}`))
	assert.ErrorIs(t, err, cerr.ErrPlacement)
	assert.Nil(t, session.PlayerBoard(), "failed placement leaves no player fleet")
}

func TestGameSession_AIPlacement(t *testing.T) {
	bgm := NewBattleshipGameManager(SessionConfig{
		BoardSize:   4,
		Fleet:       []Ship{NewShip("A", 2)},
		AIAlgorithm: AlgorithmCustom,
		Seed:        1,
	})
	session := bgm.CreateSession()
	_, err := session.PlacePlayer(AlgorithmSimple, nil)
	require.NoError(t, err)

	_, err = session.StartAgainstAI()
	assert.ErrorIs(t, err, cerr.ErrMissingPlacementInput)
	assert.False(t, session.InProgress())
}

func TestGameSession_AbortsWhenAICannotTarget(t *testing.T) {
	bgm := NewBattleshipGameManager(SessionConfig{
		BoardSize:   3,
		Fleet:       []Ship{NewShip("A", 3)},
		AIAlgorithm: AlgorithmRandom,
		MaxAttempts: 1,
		Seed:        7,
	})
	session := bgm.CreateSession()
	_, err := session.PlacePlayer(AlgorithmSimple, nil)
	require.NoError(t, err)
	before, err := session.StartAgainstAI()
	require.NoError(t, err)

	// every cell already targeted, the AI has nothing left to pick
	for x := 0; x < 3; x++ {
		for y := 0; y < 3; y++ {
			session.game.Opponent().Attacked.Add(NewCoordinates(x, y))
		}
	}

	round, err := session.PlayerAttack(NewCoordinates(1, 1))
	assert.ErrorIs(t, err, cerr.ErrGenerationExhausted)
	assert.Equal(t, SidePlayer, round.Player.Attacker)
	assert.Nil(t, round.AI)
	assert.False(t, round.Finished())

	assert.True(t, session.Aborted())
	assert.True(t, session.IsFinished())
	assert.False(t, session.InProgress())
	assert.Empty(t, session.Winner())

	_, err = session.PlayerAttack(NewCoordinates(0, 0))
	assert.ErrorIs(t, err, cerr.ErrGameFinished)
	assert.Equal(t, before, session.PlayerBoard(), "player board untouched")
}
