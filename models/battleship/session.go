package battleship

import (
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
	cerr "github.com/saeidalz13/battleship-engine/internal/error"
)

const (
	SidePlayer = "player"
	SideAI     = "AI"

	FinishedPlayerWins = "You win!"
	FinishedAIWins     = "AI wins"
)

// SessionConfig is what every new session starts with.
type SessionConfig struct {
	BoardSize int
	Fleet     []Ship
	// AIAlgorithm places the AI fleet. It cannot be custom.
	AIAlgorithm Algorithm
	// Retry ceiling for random placement and AI targeting, 0 is unbounded.
	MaxAttempts int
	Seed        int64
	Logger      zerolog.Logger
}

// RoundOutcome is one player attack and the AI answer to it. AI is nil
// when the player's attack ended the game.
type RoundOutcome struct {
	Player TurnOutcome
	AI     *TurnOutcome
}

func (r RoundOutcome) Finished() bool {
	return r.Player.Finished || (r.AI != nil && r.AI.Finished)
}

// FinishedMessage is empty while the game is still running.
func (r RoundOutcome) FinishedMessage() string {
	winner := r.Player.Winner
	if r.AI != nil && r.AI.Finished {
		winner = r.AI.Winner
	}
	switch winner {
	case SidePlayer:
		return FinishedPlayerWins
	case SideAI:
		return FinishedAIWins
	default:
		return ""
	}
}

// GameSession owns the boards, fleets and game of one client. All
// methods are safe for concurrent use; the game itself is driven one
// turn at a time under the session lock.
type GameSession struct {
	mu           sync.Mutex
	ID           string
	CreatedAt    time.Time
	lastActivity time.Time

	boardSize   int
	template    []Ship
	aiAlgorithm Algorithm
	maxAttempts int
	rng         *rand.Rand
	logger      zerolog.Logger

	player *Side
	ai     *Side
	game   *Game
	gen    *TargetGenerator
}

func newGameSession(id string, cfg SessionConfig, rng *rand.Rand) *GameSession {
	now := time.Now()
	template := make([]Ship, len(cfg.Fleet))
	copy(template, cfg.Fleet)

	return &GameSession{
		ID:           id,
		CreatedAt:    now,
		lastActivity: now,
		boardSize:    cfg.BoardSize,
		template:     template,
		aiAlgorithm:  cfg.AIAlgorithm,
		maxAttempts:  cfg.MaxAttempts,
		rng:          rng,
		logger:       cfg.Logger.With().Str("session", id).Logger(),
		gen:          NewTargetGenerator(rng, cfg.MaxAttempts),
	}
}

func (s *GameSession) touch() {
	s.lastActivity = time.Now()
}

func (s *GameSession) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

func (s *GameSession) Ships() []Ship {
	s.mu.Lock()
	defer s.mu.Unlock()
	ships := make([]Ship, len(s.template))
	copy(ships, s.template)
	return ships
}

func (s *GameSession) BoardSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.boardSize
}

// Configure changes the board size and drops any placed fleet or game.
func (s *GameSession) Configure(boardSize int) error {
	if boardSize <= 0 {
		return cerr.ErrInvalidBoardSize(boardSize)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.boardSize = boardSize
	s.player, s.ai, s.game = nil, nil, nil
	return nil
}

// PlacePlayer places a fresh player fleet. spec is only read by the
// custom algorithm. A failed placement leaves the session without a
// player fleet.
func (s *GameSession) PlacePlayer(alg Algorithm, spec PlacementSpec) (PlacementReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.player, s.game = nil, nil
	side, report, err := s.placeSide(SidePlayer, alg, spec)
	if err != nil {
		return report, err
	}
	s.player = side
	return report, nil
}

// StartAgainstAI places the AI fleet and starts a game in which the
// player shoots first. It returns the player board.
func (s *GameSession) StartAgainstAI() ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.player == nil {
		return nil, cerr.ErrPlayerFleetNotPlaced(s.ID)
	}

	ai, _, err := s.placeSide(SideAI, s.aiAlgorithm, nil)
	if err != nil {
		return nil, err
	}

	// starting again after a game gets the player fleet back undamaged
	player, err := s.resetSide(s.player)
	if err != nil {
		return nil, err
	}

	game, err := NewGame(s.boardSize, player, ai, WithGameLogger(s.logger))
	if err != nil {
		return nil, err
	}

	s.player, s.ai, s.game = player, ai, game
	s.logger.Info().Str("game", game.Uuid).Msg("game against AI started")
	return player.Grid.Rows(), nil
}

// PlayerAttack plays the player's shot and, unless that ended the game,
// the AI answer. When the AI cannot answer the game is aborted and the
// returned round still carries the player's shot.
func (s *GameSession) PlayerAttack(c Coordinates) (RoundOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.game == nil {
		return RoundOutcome{}, cerr.ErrNoActiveGame(s.ID)
	}

	playerOutcome, err := s.game.Submit(c)
	if err != nil {
		return RoundOutcome{}, err
	}

	round := RoundOutcome{Player: playerOutcome}
	if playerOutcome.Finished {
		return round, nil
	}

	aiOutcome, err := s.game.PlayAITurn(s.gen)
	if err != nil {
		return round, err
	}
	round.AI = &aiOutcome
	return round, nil
}

// PlayerBoard is nil before the player fleet is placed.
func (s *GameSession) PlayerBoard() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player == nil {
		return nil
	}
	return s.player.Grid.Rows()
}

// InProgress reports a started game nobody has won yet.
func (s *GameSession) InProgress() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game != nil && !s.game.IsFinished()
}

func (s *GameSession) IsFinished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game != nil && s.game.IsFinished()
}

// Aborted reports a game that ended without a winner because the AI could
// not pick a target.
func (s *GameSession) Aborted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game != nil && s.game.Aborted()
}

func (s *GameSession) Winner() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == nil {
		return ""
	}
	return s.game.Winner()
}

func (s *GameSession) placeSide(name string, alg Algorithm, spec PlacementSpec) (*Side, PlacementReport, error) {
	grid, err := NewGrid(s.boardSize)
	if err != nil {
		return nil, PlacementReport{Algorithm: alg}, err
	}

	opts := []PlacerOption{
		WithMaxAttempts(s.maxAttempts),
		WithPlacerLogger(s.logger.With().Str("side", name).Logger()),
	}
	if spec != nil {
		opts = append(opts, WithCustomPlacement(spec))
	}

	fleet := NewFleet(s.template)
	report, err := NewPlacer(s.rng, opts...).Place(grid, fleet, alg)
	if err != nil {
		return nil, report, err
	}
	return NewSide(name, grid, fleet), report, nil
}

// resetSide returns the side as it was right after placement.
func (s *GameSession) resetSide(side *Side) (*Side, error) {
	if s.game == nil {
		return side, nil
	}

	grid, err := NewGrid(s.boardSize)
	if err != nil {
		return nil, err
	}
	for name, cells := range side.placed {
		grid.stamp(cells, name)
	}
	return NewSide(side.Name, grid, side.Fleet.Clone()), nil
}
