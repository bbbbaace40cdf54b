package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/saeidalz13/battleship-engine/db/sqlc"
	mb "github.com/saeidalz13/battleship-engine/models/battleship"
	mc "github.com/saeidalz13/battleship-engine/models/connection"
)

const (
	StageProd = "prod"
	StageDev  = "dev"
)

const (
	defaultPort       = 8000
	readHeaderTimeout = time.Second * 10
	shutdownTimeout   = time.Second * 15
)

type Server struct {
	port  int
	stage string
	Db    *sql.DB

	analytics       Analytics
	recorder        gameRecorder
	playerAlgorithm mb.Algorithm
	placement       mb.PlacementSpec
	gracePeriod     time.Duration

	GameManager    *mb.BattleshipGameManager
	SessionManager *mc.BattleshipSessionManager
}

type Option func(*Server) error

func NewServer(gameManager *mb.BattleshipGameManager, optFuncs ...Option) *Server {
	server := Server{
		port:            defaultPort,
		stage:           StageDev,
		playerAlgorithm: mb.AlgorithmCustom,
		GameManager:     gameManager,
	}
	for _, opt := range optFuncs {
		if err := opt(&server); err != nil {
			panic(err)
		}
	}

	server.recorder = newGameRecorder(server.analytics)

	var smOpts []mc.SessionManagerOption
	if server.gracePeriod > 0 {
		smOpts = append(smOpts, mc.WithGracePeriod(server.gracePeriod))
	}
	server.SessionManager = mc.NewBattleshipSessionManager(gameManager, smOpts...)

	return &server
}

func WithPort(port int) Option {
	return func(s *Server) error {
		if port <= 0 || port > 65535 {
			return fmt.Errorf("invalid port: %d", port)
		}
		s.port = port
		return nil
	}
}

func WithStage(stage string) Option {
	return func(s *Server) error {
		if stage != StageProd && stage != StageDev {
			return fmt.Errorf("invalid type of development stage: %s", stage)
		}
		s.stage = stage
		return nil
	}
}

// WithDb turns on analytics backed by the game_server_analytics table.
func WithDb(db *sql.DB) Option {
	return func(s *Server) error {
		s.Db = db
		s.analytics = sqlc.NewDbManager(sqlc.New(db)).Analytics
		return nil
	}
}

func WithAnalytics(analytics Analytics) Option {
	return func(s *Server) error {
		s.analytics = analytics
		return nil
	}
}

// WithPlayerPlacement sets how GET / places a player fleet that was never
// posted to /placement.
func WithPlayerPlacement(alg mb.Algorithm, spec mb.PlacementSpec) Option {
	return func(s *Server) error {
		s.playerAlgorithm = alg
		s.placement = spec
		return nil
	}
}

func WithGracePeriod(d time.Duration) Option {
	return func(s *Server) error {
		s.gracePeriod = d
		return nil
	}
}

func (s *Server) Port() int {
	return s.port
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /placement", s.HandleGetPlacement)
	mux.HandleFunc("POST /placement", s.HandlePostPlacement)
	mux.HandleFunc("GET /{$}", s.HandleStartGame)
	mux.HandleFunc("GET /attack", s.HandleAttack)
	mux.Handle("GET /battleship", NewRequestProcessor(s.SessionManager, s.analytics))
	return mux
}

// CleanupPeriodically drops game sessions idle for longer than maxAge,
// websocket ones included, until ctx is done.
func (s *Server) CleanupPeriodically(ctx context.Context, interval, maxAge time.Duration) {
	go s.SessionManager.CleanupPeriodically(ctx, interval, maxAge)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.GameManager.CleanupExpired(maxAge); removed > 0 {
				log.Info().Int("removed", removed).Msg("cleaned up idle game sessions")
			}
		}
	}
}

// Run serves until ctx is done and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", s.port).Str("stage", s.stage).Msg("listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
