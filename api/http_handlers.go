package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	cerr "github.com/saeidalz13/battleship-engine/internal/error"
	mb "github.com/saeidalz13/battleship-engine/models/battleship"
	mc "github.com/saeidalz13/battleship-engine/models/connection"
)

const sessionCookieName = "session_id"

type respPlacement struct {
	Ships     []mb.Ship `json:"ships"`
	BoardSize int       `json:"board_size"`
}

type respReceived struct {
	Message  string   `json:"message"`
	Skipped  []string `json:"skipped,omitempty"`
	Unplaced []string `json:"unplaced,omitempty"`
}

type respPlayerBoard struct {
	PlayerBoard [][]string `json:"player_board"`
}

type respWarning struct {
	Hit     bool   `json:"hit"`
	Warning string `json:"warning"`
}

type respError struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errorStatus(err), respError{Error: err.Error()})
}

// errorStatus maps setup failures to 422 and requests that do not fit
// the state of the game to 409.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, cerr.ErrInvalidSize),
		errors.Is(err, cerr.ErrInvalidAlgorithm),
		errors.Is(err, cerr.ErrPlacement),
		errors.Is(err, cerr.ErrCoordinatesOutOfRange):
		return http.StatusUnprocessableEntity

	case errors.Is(err, cerr.ErrSessionNotFound),
		errors.Is(err, cerr.ErrGameNotStarted),
		errors.Is(err, cerr.ErrFleetNotPlaced),
		errors.Is(err, cerr.ErrPositionAlreadyTaken),
		errors.Is(err, cerr.ErrGameFinished):
		return http.StatusConflict

	case errors.Is(err, cerr.ErrInvalidCoordinates),
		errors.Is(err, cerr.ErrMalformedPlacement):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) sessionFromCookie(r *http.Request) (*mb.GameSession, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil, cerr.ErrSessionNotExists("")
	}
	return s.GameManager.GetSession(cookie.Value)
}

func (s *Server) sessionOrCreate(w http.ResponseWriter, r *http.Request) *mb.GameSession {
	if session, err := s.sessionFromCookie(r); err == nil {
		return session
	}

	session := s.GameManager.CreateSession()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.stage == StageProd,
		SameSite: http.SameSiteLaxMode,
	})
	return session
}

func (s *Server) HandleGetPlacement(w http.ResponseWriter, r *http.Request) {
	session := s.sessionOrCreate(w, r)
	writeJSON(w, http.StatusOK, respPlacement{
		Ships:     session.Ships(),
		BoardSize: session.BoardSize(),
	})
}

// HandlePostPlacement places the player fleet from a custom placement body.
func (s *Server) HandlePostPlacement(w http.ResponseWriter, r *http.Request) {
	session := s.sessionOrCreate(w, r)

	spec, err := mb.ParsePlacementSpec(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, respError{Error: err.Error()})
		return
	}

	report, err := session.PlacePlayer(mb.AlgorithmCustom, spec)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := respReceived{Message: "Received", Unplaced: report.Unplaced}
	for _, skipped := range report.Skipped {
		resp.Skipped = append(resp.Skipped, skipped.ShipName)
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleStartGame places the AI fleet and starts the game. A player that
// never posted a placement gets the server default one.
func (s *Server) HandleStartGame(w http.ResponseWriter, r *http.Request) {
	session := s.sessionOrCreate(w, r)

	if session.PlayerBoard() == nil {
		if _, err := session.PlacePlayer(s.playerAlgorithm, s.placement); err != nil {
			writeError(w, err)
			return
		}
	}

	board, err := session.StartAgainstAI()
	if err != nil {
		writeError(w, err)
		return
	}

	s.recorder.gameCreated(r.Context())
	writeJSON(w, http.StatusOK, respPlayerBoard{PlayerBoard: board})
}

// HandleAttack plays the player's shot at ?x=&y= and the AI answer.
// Unusable coordinates are a miss with a warning; the turn is not spent.
func (s *Server) HandleAttack(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessionFromCookie(r)
	if err != nil {
		writeError(w, err)
		return
	}

	c, err := mb.ParseCoordinates(r.URL.Query().Get("x"), r.URL.Query().Get("y"))
	if err != nil {
		log.Warn().Err(err).Str("session", session.ID).Msg("invalid attack coordinates")
		writeJSON(w, http.StatusOK, respWarning{Hit: false, Warning: err.Error()})
		return
	}

	round, err := session.PlayerAttack(c)
	if errors.Is(err, cerr.ErrOutOfGridBound) {
		writeJSON(w, http.StatusOK, respWarning{Hit: false, Warning: err.Error()})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	if round.Finished() {
		s.recorder.gameFinished(r.Context(), session.Winner())
	}
	writeJSON(w, http.StatusOK, mc.NewRespAttack(round))
}
