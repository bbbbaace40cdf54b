package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	mc "github.com/saeidalz13/battleship-engine/models/connection"
)

const (
	URLQuerySessionIDKeyword string = "sessionID"
)

var (
	upgrader = websocket.Upgrader{
		// good average time since this is not a high-latency operation such as video streaming
		HandshakeTimeout: time.Second * 5,

		ReadBufferSize:  2048,
		WriteBufferSize: 2048,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
)

type RequestProcessor struct {
	sessionManager mc.SessionManager
	recorder       gameRecorder
}

func NewRequestProcessor(sessionManager mc.SessionManager, analytics Analytics) RequestProcessor {
	return RequestProcessor{
		sessionManager: sessionManager,
		recorder:       newGameRecorder(analytics),
	}
}

func (rp RequestProcessor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client
		log.Warn().Err(err).Msg("could not open websocket connection")
		return
	}

	sessionIdQuery := r.URL.Query().Get(URLQuerySessionIDKeyword)
	if sessionIdQuery == "" {
		log.Info().Str("remote", conn.RemoteAddr().String()).Msg("a new connection established")
		rp.processSessionRequests(rp.sessionManager.GenerateNewSession(conn))
		return
	}

	session, err := rp.sessionManager.FindSession(sessionIdQuery)
	if err != nil {
		// This either means an expired session or invalid session ID
		_ = conn.WriteJSON(mc.NewMessage[mc.NoPayload](mc.CodeReceivedInvalidSessionID))
		_ = conn.Close()
		return
	}

	// the loop of the session picks up the new connection
	rp.sessionManager.ReconnectSession(session, conn)
	log.Info().Str("session", session.Id()).Msg("session reconnected")
}

func (rp RequestProcessor) processSessionRequests(session *mc.Session) {
	defer func() {
		if conn := session.Conn(); conn != nil {
			_ = conn.Close()
		}
		rp.sessionManager.TerminateSession(session)
	}()

	resp := mc.NewMessage[mc.RespSessionId](mc.CodeSessionID)
	resp.AddPayload(mc.RespSessionId{SessionID: session.Id()})
	if err := rp.sessionManager.WriteToSessionConn(session, resp, mc.MessageTypeJSON); err != nil {
		return
	}

sessionLoop:
	for {
		_, payload, err := rp.sessionManager.ReadFromSessionConn(session)
		if err != nil {
			// the connection failed even after retries
			break sessionLoop
		}

		code, err := rp.sessionManager.FetchCodeFromMsg(payload)
		if err != nil || code == mc.CodeSignalAbsent {
			msg := mc.NewMessage[mc.NoPayload](mc.CodeSignalAbsent)
			msg.AddError("incoming req payload must contain 'code' field", "")
			if err = rp.sessionManager.WriteToSessionConn(session, msg, mc.MessageTypeJSON); err != nil {
				break sessionLoop
			}
			continue sessionLoop
		}

		switch code {
		case mc.CodeNewGame:
			respMsg := NewRequest(payload).HandleNewGame(session.Game())
			if err := rp.sessionManager.WriteToSessionConn(session, respMsg, mc.MessageTypeJSON); err != nil {
				break sessionLoop
			}
			if respMsg.Error == nil {
				rp.recorder.gameCreated(context.Background())
			}

		case mc.CodeAttack:
			respMsg, round := NewRequest(payload).HandleAttack(session.Game())
			if err := rp.sessionManager.WriteToSessionConn(session, respMsg, mc.MessageTypeJSON); err != nil {
				break sessionLoop
			}
			if respMsg.Error != nil || !round.Finished() {
				continue sessionLoop
			}

			winner := session.Game().Winner()
			rp.recorder.gameFinished(context.Background(), winner)

			endMsg := mc.NewMessage[mc.RespEndGame](mc.CodeEndGame)
			endMsg.AddPayload(mc.RespEndGame{Winner: winner, Message: round.FinishedMessage()})
			if err := rp.sessionManager.WriteToSessionConn(session, endMsg, mc.MessageTypeJSON); err != nil {
				break sessionLoop
			}

		default:
			respInvalidSignal := mc.NewMessage[mc.NoPayload](mc.CodeInvalidSignal)
			respInvalidSignal.AddError("", "invalid code in the incoming payload")
			if err := rp.sessionManager.WriteToSessionConn(session, respInvalidSignal, mc.MessageTypeJSON); err != nil {
				break sessionLoop
			}
		}
	}
}
