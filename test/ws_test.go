package test

import (
	"testing"
	"time"

	"github.com/gorilla/websocket"
	mb "github.com/saeidalz13/battleship-engine/models/battleship"
	mc "github.com/saeidalz13/battleship-engine/models/connection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, query string) *websocket.Conn {
	t.Helper()
	conn, _, err := dialer.Dial(testWsUrl+query, nil)
	require.NoError(t, err)
	return conn
}

func readMessage[T any](t *testing.T, conn *websocket.Conn) mc.Message[T] {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(10*time.Second)))
	var msg mc.Message[T]
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

// connect dials a new session and returns its id.
func connect(t *testing.T) (*websocket.Conn, string) {
	t.Helper()
	conn := dial(t, "")
	msg := readMessage[mc.RespSessionId](t, conn)
	require.Equal(t, mc.CodeSessionID, msg.Code)
	require.NotEmpty(t, msg.Payload.SessionID)
	return conn, msg.Payload.SessionID
}

func newGame(t *testing.T, conn *websocket.Conn, req mc.ReqNewGame) mc.Message[mc.RespNewGame] {
	t.Helper()
	msg := mc.NewMessage[mc.ReqNewGame](mc.CodeNewGame)
	msg.AddPayload(req)
	require.NoError(t, conn.WriteJSON(msg))
	return readMessage[mc.RespNewGame](t, conn)
}

func attack(t *testing.T, conn *websocket.Conn, x, y int) mc.Message[mc.RespAttack] {
	t.Helper()
	msg := mc.NewMessage[mc.ReqAttack](mc.CodeAttack)
	msg.AddPayload(mc.ReqAttack{X: x, Y: y})
	require.NoError(t, conn.WriteJSON(msg))
	return readMessage[mc.RespAttack](t, conn)
}

func TestInvalidCode(t *testing.T) {
	conn, _ := connect(t)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(mc.NewSignal(200)))
	msg := readMessage[mc.NoPayload](t, conn)
	assert.Equal(t, mc.CodeInvalidSignal, msg.Code)
	require.NotNil(t, msg.Error)

	require.NoError(t, conn.WriteJSON(map[string]int{"x": 1}))
	msg = readMessage[mc.NoPayload](t, conn)
	assert.Equal(t, mc.CodeSignalAbsent, msg.Code)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	msg = readMessage[mc.NoPayload](t, conn)
	assert.Equal(t, mc.CodeSignalAbsent, msg.Code)
}

func TestInvalidSessionID(t *testing.T) {
	conn := dial(t, "?sessionID=nope")
	defer conn.Close()

	msg := readMessage[mc.NoPayload](t, conn)
	assert.Equal(t, mc.CodeReceivedInvalidSessionID, msg.Code)
}

func TestNewGameErrors(t *testing.T) {
	conn, _ := connect(t)
	defer conn.Close()

	resp := newGame(t, conn, mc.ReqNewGame{Algorithm: "spiral"})
	require.NotNil(t, resp.Error)

	resp = newGame(t, conn, mc.ReqNewGame{Algorithm: "simple", BoardSize: -1})
	require.NotNil(t, resp.Error)

	resp = newGame(t, conn, mc.ReqNewGame{Algorithm: "custom", Placement: []byte(`{"Cruiser": [9, 9, "h"]}`)})
	require.NotNil(t, resp.Error)

	// attacking without a game
	attackResp := attack(t, conn, 0, 0)
	require.NotNil(t, attackResp.Error)
}

func TestPlayAgainstAI(t *testing.T) {
	conn, _ := connect(t)
	defer conn.Close()

	resp := newGame(t, conn, mc.ReqNewGame{
		BoardSize: 4,
		Algorithm: "custom",
		Placement: []byte(`{"Cruiser": [0, 0, "h"], "Destroyer": [1, 3, "v"], "Ghost": [3, 3, "h"]}`),
	})
	require.Nil(t, resp.Error)
	assert.Equal(t, mc.CodeNewGame, resp.Code)
	assert.Equal(t, 4, resp.Payload.BoardSize)
	assert.Equal(t, []string{"Ghost"}, resp.Payload.Skipped)
	assert.Equal(t, []string{"Cruiser", "Cruiser", "Cruiser", ""}, resp.Payload.PlayerBoard[0])
	assert.Equal(t, "Destroyer", resp.Payload.PlayerBoard[2][3])

	outOfBound := attack(t, conn, 4, 0)
	require.NotNil(t, outOfBound.Error)
	assert.False(t, outOfBound.Payload.Hit)

	var finished string
	for x := 0; x < 4 && finished == ""; x++ {
		for y := 0; y < 4 && finished == ""; y++ {
			msg := attack(t, conn, x, y)
			require.Nil(t, msg.Error, "%d,%d", x, y)
			finished = msg.Payload.Finished
			if finished == "" {
				require.NotNil(t, msg.Payload.AITurn)
			}

			if x == 0 && y == 0 && finished == "" {
				repeat := attack(t, conn, 0, 0)
				require.NotNil(t, repeat.Error)
			}
		}
	}
	require.Contains(t, []string{mb.FinishedPlayerWins, mb.FinishedAIWins}, finished)

	end := readMessage[mc.RespEndGame](t, conn)
	assert.Equal(t, mc.CodeEndGame, end.Code)
	assert.Equal(t, finished, end.Payload.Message)
	assert.Contains(t, []string{mb.SidePlayer, mb.SideAI}, end.Payload.Winner)
}

func TestReconnectAfterAbnormalClosure(t *testing.T) {
	conn, sessionID := connect(t)

	resp := newGame(t, conn, mc.ReqNewGame{Algorithm: "simple"})
	require.Nil(t, resp.Error)

	first := attack(t, conn, 4, 4)
	require.Nil(t, first.Error)

	// drop the TCP connection without a close frame
	require.NoError(t, conn.UnderlyingConn().Close())

	reconn := dial(t, "?sessionID="+sessionID)
	defer reconn.Close()

	// the game survived; the same target is still taken
	repeat := attack(t, reconn, 4, 4)
	require.NotNil(t, repeat.Error)

	next := attack(t, reconn, 4, 3)
	require.Nil(t, next.Error)
}
