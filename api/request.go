package api

import (
	"bytes"
	"encoding/json"
	"errors"

	cerr "github.com/saeidalz13/battleship-engine/internal/error"
	mb "github.com/saeidalz13/battleship-engine/models/battleship"
	mc "github.com/saeidalz13/battleship-engine/models/connection"
)

type RequestHandler interface {
	HandleNewGame(game *mb.GameSession) mc.Message[mc.RespNewGame]
	HandleAttack(game *mb.GameSession) (mc.Message[mc.RespAttack], mb.RoundOutcome)
}

// Every incoming websocket message is a Message[T] whose payload depends
// on the code.
type Request struct {
	payload []byte
}

var _ RequestHandler = (*Request)(nil)

func NewRequest(payload []byte) *Request {
	return &Request{payload: payload}
}

// HandleNewGame places the player fleet and starts a game against the AI.
func (r *Request) HandleNewGame(game *mb.GameSession) mc.Message[mc.RespNewGame] {
	resp := mc.NewMessage[mc.RespNewGame](mc.CodeNewGame)

	var req mc.Message[mc.ReqNewGame]
	if err := json.Unmarshal(r.payload, &req); err != nil {
		resp.AddError(err.Error(), cerr.ConstErrSetupFailed)
		return resp
	}

	alg := mb.AlgorithmRandom
	if req.Payload.Algorithm != "" {
		parsed, err := mb.ParseAlgorithm(req.Payload.Algorithm)
		if err != nil {
			resp.AddError(err.Error(), cerr.ConstErrSetupFailed)
			return resp
		}
		alg = parsed
	}

	if req.Payload.BoardSize != 0 {
		if err := game.Configure(req.Payload.BoardSize); err != nil {
			resp.AddError(err.Error(), cerr.ConstErrSetupFailed)
			return resp
		}
	}

	var spec mb.PlacementSpec
	if len(req.Payload.Placement) > 0 {
		parsed, err := mb.ParsePlacementSpec(bytes.NewReader(req.Payload.Placement))
		if err != nil {
			resp.AddError(err.Error(), cerr.ConstErrPlacementFailed)
			return resp
		}
		spec = parsed
	}

	report, err := game.PlacePlayer(alg, spec)
	if err != nil {
		resp.AddError(err.Error(), cerr.ConstErrPlacementFailed)
		return resp
	}

	board, err := game.StartAgainstAI()
	if err != nil {
		resp.AddError(err.Error(), cerr.ConstErrSetupFailed)
		return resp
	}

	resp.AddPayload(mc.NewRespNewGame(game.Ships(), board, report))
	return resp
}

// HandleAttack plays one round. Out of bound targets are answered as a
// miss with a warning and cost no turn.
func (r *Request) HandleAttack(game *mb.GameSession) (mc.Message[mc.RespAttack], mb.RoundOutcome) {
	resp := mc.NewMessage[mc.RespAttack](mc.CodeAttack)

	var req mc.Message[mc.ReqAttack]
	if err := json.Unmarshal(r.payload, &req); err != nil {
		resp.AddError(err.Error(), cerr.ConstErrAttackFailed)
		return resp, mb.RoundOutcome{}
	}

	round, err := game.PlayerAttack(mb.NewCoordinates(req.Payload.X, req.Payload.Y))
	switch {
	case err == nil:
		resp.AddPayload(mc.NewRespAttack(round))

	case errors.Is(err, cerr.ErrOutOfGridBound):
		resp.AddPayload(mc.RespAttack{Hit: false})
		resp.AddError(err.Error(), "")

	default:
		resp.AddError(err.Error(), cerr.ConstErrAttackFailed)
	}
	return resp, round
}
