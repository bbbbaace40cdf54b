package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	cerr "github.com/saeidalz13/battleship-engine/internal/error"
	mb "github.com/saeidalz13/battleship-engine/models/battleship"
	"github.com/sqlc-dev/pqtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnalytics struct {
	mu       sync.Mutex
	created  int
	finished int
	aiWins   int
}

func (f *fakeAnalytics) IncrementGamesCreatedCount(_ context.Context, _ pqtype.Inet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created++
	return nil
}

func (f *fakeAnalytics) RecordGameFinished(_ context.Context, _ pqtype.Inet, aiWon bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finished++
	if aiWon {
		f.aiWins++
	}
	return nil
}

func newTestGames() *mb.BattleshipGameManager {
	return mb.NewBattleshipGameManager(mb.SessionConfig{
		BoardSize:   4,
		Fleet:       []mb.Ship{mb.NewShip("A", 2), mb.NewShip("B", 1)},
		AIAlgorithm: mb.AlgorithmRandom,
		Seed:        3,
	})
}

type testClient struct {
	t    *testing.T
	base string
	http *http.Client
}

func newTestClient(t *testing.T, opts ...Option) (*testClient, *Server) {
	t.Helper()
	server := NewServer(newTestGames(), opts...)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testClient{t: t, base: ts.URL, http: &http.Client{Jar: jar}}, server
}

func (c *testClient) do(method, path, body string, out interface{}) int {
	c.t.Helper()
	req, err := http.NewRequest(method, c.base+path, strings.NewReader(body))
	require.NoError(c.t, err)

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHTTP_Placement(t *testing.T) {
	client, _ := newTestClient(t)

	var placement respPlacement
	status := client.do(http.MethodGet, "/placement", "", &placement)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 4, placement.BoardSize)
	assert.Equal(t, []mb.Ship{{Name: "A", Length: 2}, {Name: "B", Length: 1}}, placement.Ships)

	var received respReceived
	status = client.do(http.MethodPost, "/placement", `{"A": [0, 0, "h"], "B": [2, 0, "v"], "Z": [1, 1, "h"]}`, &received)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Received", received.Message)
	assert.Equal(t, []string{"Z"}, received.Skipped)

	var failed respError
	status = client.do(http.MethodPost, "/placement", `{"A": [0, 0, "h"], "B": [0, 1, "v"]}`, &failed)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.NotEmpty(t, failed.Error)

	status = client.do(http.MethodPost, "/placement", `{"A": [9, 9, "h"]}`, &failed)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status = client.do(http.MethodPost, "/placement", `[1, 2]`, &failed)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHTTP_FullGame(t *testing.T) {
	analytics := &fakeAnalytics{}
	client, _ := newTestClient(t, WithAnalytics(analytics))

	status := client.do(http.MethodGet, "/attack?x=0&y=0", "", nil)
	assert.Equal(t, http.StatusConflict, status, "no session yet")

	require.Equal(t, http.StatusOK, client.do(http.MethodPost, "/placement", `{"A": [0, 0, "h"], "B": [2, 0, "v"]}`, nil))

	status = client.do(http.MethodGet, "/attack?x=0&y=0", "", nil)
	assert.Equal(t, http.StatusConflict, status, "no game yet")

	var board respPlayerBoard
	require.Equal(t, http.StatusOK, client.do(http.MethodGet, "/", "", &board))
	require.Len(t, board.PlayerBoard, 4)
	assert.Equal(t, []string{"A", "A", "", ""}, board.PlayerBoard[0])
	assert.Equal(t, []string{"B", "", "", ""}, board.PlayerBoard[2])

	var warning respWarning
	assert.Equal(t, http.StatusOK, client.do(http.MethodGet, "/attack?x=one&y=1", "", &warning))
	assert.False(t, warning.Hit)
	assert.NotEmpty(t, warning.Warning)

	warning = respWarning{}
	assert.Equal(t, http.StatusOK, client.do(http.MethodGet, "/attack?x=9&y=9", "", &warning))
	assert.NotEmpty(t, warning.Warning)

	var finished string
	shots := 0
	for x := 0; x < 4 && finished == ""; x++ {
		for y := 0; y < 4 && finished == ""; y++ {
			var resp struct {
				Hit      bool    `json:"hit"`
				AITurn   *[2]int `json:"AI_Turn"`
				Finished string  `json:"finished"`
			}
			require.Equal(t, http.StatusOK, client.do(http.MethodGet, fmt.Sprintf("/attack?x=%d&y=%d", x, y), "", &resp))
			shots++
			finished = resp.Finished
			if finished == "" {
				require.NotNil(t, resp.AITurn)
			}

			if shots == 1 && finished == "" {
				status := client.do(http.MethodGet, fmt.Sprintf("/attack?x=%d&y=%d", x, y), "", nil)
				assert.Equal(t, http.StatusConflict, status, "repeated target")
			}
		}
	}

	assert.Contains(t, []string{mb.FinishedPlayerWins, mb.FinishedAIWins}, finished)
	assert.Equal(t, http.StatusConflict, client.do(http.MethodGet, "/attack?x=3&y=3", "", nil))

	assert.Equal(t, 1, analytics.created)
	assert.Equal(t, 1, analytics.finished)
}

func TestHTTP_StartWithDefaultPlacement(t *testing.T) {
	t.Run("simple", func(t *testing.T) {
		client, _ := newTestClient(t, WithPlayerPlacement(mb.AlgorithmSimple, nil))

		var board respPlayerBoard
		require.Equal(t, http.StatusOK, client.do(http.MethodGet, "/", "", &board))
		assert.Equal(t, []string{"A", "A", "", ""}, board.PlayerBoard[0])
		assert.Equal(t, []string{"B", "", "", ""}, board.PlayerBoard[1])
	})

	t.Run("custom without a placement", func(t *testing.T) {
		client, _ := newTestClient(t)
		assert.Equal(t, http.StatusUnprocessableEntity, client.do(http.MethodGet, "/", "", nil))
	})
}

func TestHTTP_AnalyticsWithDb(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO game_server_analytics \(server_ip, games_created\)`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	client, server := newTestClient(t, WithDb(db), WithPlayerPlacement(mb.AlgorithmSimple, nil))
	assert.Same(t, db, server.Db)

	require.Equal(t, http.StatusOK, client.do(http.MethodGet, "/", "", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err      error
		expected int
	}{
		{cerr.ErrInvalidBoardSize(0), http.StatusUnprocessableEntity},
		{cerr.ErrShipNotPlaced("A", "overlap"), http.StatusUnprocessableEntity},
		{cerr.ErrAnchorOutOfRange("A", 11, 0), http.StatusUnprocessableEntity},
		{cerr.ErrNoActiveGame("abc"), http.StatusConflict},
		{cerr.ErrAttackPositionAlreadyTaken(1, 1), http.StatusConflict},
		{cerr.ErrGameAlreadyFinished("AI"), http.StatusConflict},
		{cerr.ErrSessionNotExists("abc"), http.StatusConflict},
		{cerr.ErrCoordinatesNotInt("a", "b"), http.StatusBadRequest},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.expected, errorStatus(tt.err))
		})
	}
}

func TestNewServer_Options(t *testing.T) {
	server := NewServer(newTestGames(), WithPort(9000), WithStage(StageProd))
	assert.Equal(t, 9000, server.Port())
	assert.NotNil(t, server.SessionManager)

	assert.Panics(t, func() { NewServer(newTestGames(), WithStage("staging")) })
	assert.Panics(t, func() { NewServer(newTestGames(), WithPort(0)) })
}
