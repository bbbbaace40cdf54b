package battleship

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	cerr "github.com/saeidalz13/battleship-engine/internal/error"
)

type GameManager interface {
	CreateSession() *GameSession
	GetSession(sessionID string) (*GameSession, error)
	TerminateSession(sessionID string)
	CleanupExpired(maxAge time.Duration) int
}

// BattleshipGameManager keeps every live session. Each session has its own
// boards, fleets and random source, so sessions never share game state.
type BattleshipGameManager struct {
	sessions map[string]*GameSession
	cfg      SessionConfig
	seeds    *rand.Rand
	mu       sync.RWMutex
}

var _ GameManager = (*BattleshipGameManager)(nil)

func NewBattleshipGameManager(cfg SessionConfig) *BattleshipGameManager {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &BattleshipGameManager{
		sessions: make(map[string]*GameSession, 10),
		cfg:      cfg,
		seeds:    rand.New(rand.NewSource(seed)),
	}
}

func (bgm *BattleshipGameManager) CreateSession() *GameSession {
	bgm.mu.Lock()
	defer bgm.mu.Unlock()

	sessionID := uuid.NewString()[:6]
	for _, prs := bgm.sessions[sessionID]; prs; _, prs = bgm.sessions[sessionID] {
		sessionID = uuid.NewString()[:6]
	}

	rng := rand.New(rand.NewSource(bgm.seeds.Int63()))
	session := newGameSession(sessionID, bgm.cfg, rng)
	bgm.sessions[sessionID] = session
	return session
}

func (bgm *BattleshipGameManager) GetSession(sessionID string) (*GameSession, error) {
	bgm.mu.RLock()
	session, prs := bgm.sessions[sessionID]
	bgm.mu.RUnlock()
	if !prs {
		return nil, cerr.ErrSessionNotExists(sessionID)
	}
	if session == nil {
		return nil, cerr.ErrSessionIsNil(sessionID)
	}

	return session, nil
}

func (bgm *BattleshipGameManager) TerminateSession(sessionID string) {
	bgm.mu.Lock()
	delete(bgm.sessions, sessionID)
	bgm.mu.Unlock()
}

// CleanupExpired drops sessions idle for longer than maxAge and returns
// how many were removed.
func (bgm *BattleshipGameManager) CleanupExpired(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	bgm.mu.Lock()
	defer bgm.mu.Unlock()

	removed := 0
	for id, session := range bgm.sessions {
		if session.LastActivity().Before(cutoff) {
			delete(bgm.sessions, id)
			removed++
		}
	}
	return removed
}

func (bgm *BattleshipGameManager) SessionCount() int {
	bgm.mu.RLock()
	defer bgm.mu.RUnlock()
	return len(bgm.sessions)
}

// UpdateConfig only affects sessions created afterwards.
func (bgm *BattleshipGameManager) UpdateConfig(cfg SessionConfig) {
	bgm.mu.Lock()
	defer bgm.mu.Unlock()
	cfg.Seed = bgm.cfg.Seed
	bgm.cfg = cfg
}

func (bgm *BattleshipGameManager) Config() SessionConfig {
	bgm.mu.RLock()
	defer bgm.mu.RUnlock()
	return bgm.cfg
}
