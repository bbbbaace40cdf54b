package battleship

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	cerr "github.com/saeidalz13/battleship-engine/internal/error"
)

type Phase uint8

const (
	PhaseAwaitingInput Phase = iota
	PhaseValidating
	PhaseResolving
	PhaseTerminal
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingInput:
		return "awaiting-input"
	case PhaseValidating:
		return "validating"
	case PhaseResolving:
		return "resolving"
	case PhaseTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// AttackHistory is the append-only set of coordinates one side has
// already targeted.
type AttackHistory struct {
	order []Coordinates
	seen  map[Coordinates]struct{}
}

func NewAttackHistory() *AttackHistory {
	return &AttackHistory{
		order: make([]Coordinates, 0, 16),
		seen:  make(map[Coordinates]struct{}, 16),
	}
}

func (h *AttackHistory) Contains(c Coordinates) bool {
	_, prs := h.seen[c]
	return prs
}

// Add returns false if c was already present.
func (h *AttackHistory) Add(c Coordinates) bool {
	if h.Contains(c) {
		return false
	}
	h.seen[c] = struct{}{}
	h.order = append(h.order, c)
	return true
}

func (h *AttackHistory) All() []Coordinates {
	all := make([]Coordinates, len(h.order))
	copy(all, h.order)
	return all
}

func (h *AttackHistory) Len() int {
	return len(h.order)
}

// Side is everything one actor owns during a game.
type Side struct {
	Name     string
	Grid     *Grid
	Fleet    *Fleet
	Attacked *AttackHistory

	// footprints as placed, before any hit cleared a cell
	placed map[string][]Coordinates
}

// NewSide expects the grid to be fully placed already.
func NewSide(name string, grid *Grid, fleet *Fleet) *Side {
	return &Side{
		Name:     name,
		Grid:     grid,
		Fleet:    fleet,
		Attacked: NewAttackHistory(),
		placed:   grid.Occupied(),
	}
}

// IsFleetDefeated is the end-of-game check. An empty fleet is defeated.
func IsFleetDefeated(fleet *Fleet) bool {
	return fleet.IsDefeated()
}

type TurnOutcome struct {
	Attacker    string
	Defender    string
	Coordinates Coordinates
	Result      AttackResult
	Finished    bool
	Winner      string
}

type Game struct {
	Uuid      string
	boardSize int
	sides     [2]*Side
	turn      int
	phase     Phase
	winner    string
	aborted   bool
	logger    zerolog.Logger
}

type GameOption func(*Game)

func WithGameLogger(logger zerolog.Logger) GameOption {
	return func(g *Game) {
		g.logger = logger
	}
}

// NewGame starts a game where first acts first. Both sides must already
// have their fleets placed.
func NewGame(boardSize int, first, second *Side, opts ...GameOption) (*Game, error) {
	if boardSize <= 0 {
		return nil, cerr.ErrInvalidBoardSize(boardSize)
	}

	g := &Game{
		Uuid:      uuid.NewString()[:6],
		boardSize: boardSize,
		sides:     [2]*Side{first, second},
		phase:     PhaseAwaitingInput,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *Game) BoardSize() int {
	return g.boardSize
}

func (g *Game) Current() *Side {
	return g.sides[g.turn]
}

func (g *Game) Opponent() *Side {
	return g.sides[1-g.turn]
}

func (g *Game) Phase() Phase {
	return g.phase
}

func (g *Game) Winner() string {
	return g.winner
}

func (g *Game) IsFinished() bool {
	return g.phase == PhaseTerminal
}

// Submit plays one turn for the current side. A rejected target leaves
// every piece of game state untouched and the same side keeps the turn.
func (g *Game) Submit(c Coordinates) (TurnOutcome, error) {
	if g.phase == PhaseTerminal {
		return TurnOutcome{}, cerr.ErrGameAlreadyFinished(g.winner)
	}

	attacker, defender := g.Current(), g.Opponent()

	g.phase = PhaseValidating
	if err := g.validate(attacker, c); err != nil {
		g.phase = PhaseAwaitingInput
		g.logger.Debug().Err(err).Str("attacker", attacker.Name).Msg("target rejected")
		return TurnOutcome{}, err
	}
	attacker.Attacked.Add(c)

	g.phase = PhaseResolving
	result := Attack(c, defender.Grid, defender.Fleet)
	outcome := TurnOutcome{
		Attacker:    attacker.Name,
		Defender:    defender.Name,
		Coordinates: c,
		Result:      result,
	}

	g.logger.Info().
		Str("game", g.Uuid).
		Str("attacker", attacker.Name).
		Stringer("target", c).
		Bool("hit", result.Hit).
		Str("sunk", result.Sunk).
		Msg("attack resolved")

	if winner, done := g.terminalCheck(); done {
		g.phase = PhaseTerminal
		g.winner = winner
		outcome.Finished = true
		outcome.Winner = winner
		g.logger.Info().Str("game", g.Uuid).Str("winner", winner).Msg("game finished")
		return outcome, nil
	}

	g.turn = 1 - g.turn
	g.phase = PhaseAwaitingInput
	return outcome, nil
}

func (g *Game) validate(attacker *Side, c Coordinates) error {
	return ValidateTarget(g.boardSize, attacker.Attacked, c)
}

// ValidateTarget rejects coordinates off the board or already in history.
func ValidateTarget(boardSize int, history *AttackHistory, c Coordinates) error {
	if c.X < 0 || c.X >= boardSize || c.Y < 0 || c.Y >= boardSize {
		return cerr.ErrXorYOutOfGridBound(c.X, c.Y)
	}
	if history.Contains(c) {
		return cerr.ErrAttackPositionAlreadyTaken(c.X, c.Y)
	}
	return nil
}

// The defender is checked first so that the side that just fired wins
// when both fleets are empty.
func (g *Game) terminalCheck() (string, bool) {
	attacker, defender := g.Current(), g.Opponent()
	if IsFleetDefeated(defender.Fleet) {
		return attacker.Name, true
	}
	if IsFleetDefeated(attacker.Fleet) {
		return defender.Name, true
	}
	return "", false
}

// PlayAITurn lets the generator pick a fresh target for the current side.
// A side that cannot pick a target ends the game without a winner, so
// the turn never passes back to the wrong side.
func (g *Game) PlayAITurn(gen *TargetGenerator) (TurnOutcome, error) {
	if g.phase == PhaseTerminal {
		return TurnOutcome{}, cerr.ErrGameAlreadyFinished(g.winner)
	}

	c, err := gen.Next(g.boardSize, g.Current().Attacked)
	if err != nil {
		g.phase = PhaseTerminal
		g.aborted = true
		g.logger.Error().Err(err).Str("game", g.Uuid).Str("attacker", g.Current().Name).Msg("game aborted")
		return TurnOutcome{}, err
	}
	return g.Submit(c)
}

// Aborted reports a game that ended because a side could not move.
func (g *Game) Aborted() bool {
	return g.aborted
}
