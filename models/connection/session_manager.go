package connection

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	cerr "github.com/saeidalz13/battleship-engine/internal/error"
	mb "github.com/saeidalz13/battleship-engine/models/battleship"
)

type SessionManager interface {
	GenerateNewSession(conn *websocket.Conn) *Session
	CleanupPeriodically(ctx context.Context, interval, maxAge time.Duration)

	FindSession(sessionId string) (*Session, error)
	TerminateSession(session *Session)
	ReconnectSession(session *Session, conn *websocket.Conn)
	HandleAbnormalClosureSession(session *Session) error

	WriteToSessionConn(session *Session, msg interface{}, msgType uint8) error
	ReadFromSessionConn(session *Session) (int, []byte, error)
	FetchCodeFromMsg(payload []byte) (uint8, error)
}

// BattleshipSessionManager tracks the websocket sessions. Every websocket
// session owns one game session of the game manager and removes it when
// it terminates.
type BattleshipSessionManager struct {
	games       mb.GameManager
	gracePeriod time.Duration
	sessions    map[string]*Session
	mu          sync.RWMutex
}

type SessionManagerOption func(*BattleshipSessionManager)

// WithGracePeriod sets how long an abnormally closed session waits for
// its client to reconnect.
func WithGracePeriod(d time.Duration) SessionManagerOption {
	return func(bsm *BattleshipSessionManager) {
		bsm.gracePeriod = d
	}
}

func NewBattleshipSessionManager(games mb.GameManager, opts ...SessionManagerOption) *BattleshipSessionManager {
	initMapSize := 10

	bsm := &BattleshipSessionManager{
		games:       games,
		gracePeriod: gracePeriod,
		sessions:    make(map[string]*Session, initMapSize),
	}
	for _, opt := range opts {
		opt(bsm)
	}
	return bsm
}

var _ SessionManager = (*BattleshipSessionManager)(nil)

func (bsm *BattleshipSessionManager) GenerateNewSession(conn *websocket.Conn) *Session {
	session := NewSession(bsm.games.CreateSession(), conn)

	bsm.mu.Lock()
	bsm.sessions[session.id] = session
	bsm.mu.Unlock()

	return session
}

func (bsm *BattleshipSessionManager) FindSession(sessionId string) (*Session, error) {
	bsm.mu.RLock()
	defer bsm.mu.RUnlock()

	session, prs := bsm.sessions[sessionId]
	if !prs {
		return nil, cerr.ErrSessionNotExists(sessionId)
	}

	if session == nil {
		return nil, cerr.ErrSessionIsNil(sessionId)
	}

	return session, nil
}

func (bsm *BattleshipSessionManager) TerminateSession(session *Session) {
	bsm.mu.Lock()
	delete(bsm.sessions, session.id)
	bsm.mu.Unlock()

	bsm.games.TerminateSession(session.id)
}

func (bsm *BattleshipSessionManager) ReconnectSession(session *Session, conn *websocket.Conn) {
	session.reconnectionAfterAbnormalClosure(conn)
}

// SessionCount is the number of live websocket sessions.
func (bsm *BattleshipSessionManager) SessionCount() int {
	bsm.mu.RLock()
	defer bsm.mu.RUnlock()
	return len(bsm.sessions)
}

// To ensure that there is no dangling connections, sessions idle for
// longer than maxAge are closed and removed every interval, until ctx
// is done.
func (bsm *BattleshipSessionManager) CleanupPeriodically(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			bsm.cleanupExpired(maxAge)
		}
	}
}

func (bsm *BattleshipSessionManager) cleanupExpired(maxAge time.Duration) int {
	assumedClosedConns := 10
	toDelete := make([]*Session, 0, assumedClosedConns)

	bsm.mu.RLock()
	for _, session := range bsm.sessions {
		if time.Since(session.game.LastActivity()) > maxAge {
			toDelete = append(toDelete, session)
		}
	}
	bsm.mu.RUnlock()

	for _, session := range toDelete {
		if conn := session.Conn(); conn != nil {
			_ = conn.Close()
		}
		bsm.TerminateSession(session)
		log.Info().Str("session", session.id).Msg("removed stale session")
	}
	return len(toDelete)
}

// This function takes care of abnormal closures. This happens due to
// backgrounding in IOS clients or any other unexpected reasons for web
// apps. A session with a game in progress waits for the client to come
// back with its session ID; any other session simply ends.
func (bsm *BattleshipSessionManager) HandleAbnormalClosureSession(s *Session) error {
	return bsm.awaitReconnection(s, s.Conn())
}

// awaitReconnection waits for any connection other than the stale one.
func (bsm *BattleshipSessionManager) awaitReconnection(s *Session, stale *websocket.Conn) error {
	if !s.game.InProgress() {
		return NewConnErr(ConnLoopBreak).AddDesc("no game in progress")
	}

	reconnected := s.reconnectedSince(stale)
	timer := time.NewTimer(bsm.gracePeriod)
	defer timer.Stop()

	select {
	case <-timer.C:
		log.Info().Str("session", s.id).Msg("grace period is over; session terminated")
		return NewConnErr(ConnLoopBreak).AddDesc("grace period is over for session: " + s.id)

	case <-reconnected:
		log.Info().Str("session", s.id).Msg("player reconnected")
		return nil
	}
}

func (bsm *BattleshipSessionManager) WriteToSessionConn(session *Session, msg interface{}, msgType uint8) error {
	err := session.writeToConnWithRetry(msg, msgType)
	if err == nil {
		return nil
	}

	var connErr ConnErr
	if !errors.As(err, &connErr) {
		return err
	}

	if connErr.Code() != ConnLoopAbnormalClosureRetry {
		return connErr
	}
	if err := bsm.HandleAbnormalClosureSession(session); err != nil {
		return connErr
	}
	// the client is back on a new connection
	return session.writeToConnWithRetry(msg, msgType)
}

func (bsm *BattleshipSessionManager) ReadFromSessionConn(session *Session) (int, []byte, error) {
	var retries uint8

	for {
		conn := session.Conn()
		messageType, payload, err := conn.ReadMessage()
		if err == nil {
			return messageType, payload, nil
		}

		switch session.handleReadFromConnErr(err, retries) {
		case ConnLoopContinue:
			retries++
			continue

		case ConnLoopAbnormalClosureRetry:
			if err := bsm.awaitReconnection(session, conn); err != nil {
				return -1, []byte{}, err
			}
			retries = 0

		default:
			return -1, []byte{}, err
		}
	}
}

// FetchCodeFromMsg returns CodeSignalAbsent for payloads without a
// "code" field.
func (bsm *BattleshipSessionManager) FetchCodeFromMsg(payload []byte) (uint8, error) {
	var signal struct {
		Code *uint8 `json:"code"`
	}
	const randomInvalidCode uint8 = 255

	if err := json.Unmarshal(payload, &signal); err != nil {
		return randomInvalidCode, err
	}
	if signal.Code == nil {
		return CodeSignalAbsent, nil
	}

	return *signal.Code, nil
}
