package connection

import (
	mb "github.com/saeidalz13/battleship-engine/models/battleship"
)

type RespSessionId struct {
	SessionID string `json:"session_id"`
}

type RespNewGame struct {
	BoardSize   int        `json:"board_size"`
	Ships       []mb.Ship  `json:"ships"`
	PlayerBoard [][]string `json:"player_board"`
	Skipped     []string   `json:"skipped,omitempty"`
	Unplaced    []string   `json:"unplaced,omitempty"`
}

func NewRespNewGame(ships []mb.Ship, board [][]string, report mb.PlacementReport) RespNewGame {
	resp := RespNewGame{
		BoardSize:   len(board),
		Ships:       ships,
		PlayerBoard: board,
		Unplaced:    report.Unplaced,
	}
	for _, skipped := range report.Skipped {
		resp.Skipped = append(resp.Skipped, skipped.ShipName)
	}
	return resp
}

// RespAttack is shared by the websocket and the HTTP front end.
type RespAttack struct {
	Hit      bool    `json:"hit"`
	Sunk     string  `json:"sunk,omitempty"`
	AITurn   *[2]int `json:"AI_Turn,omitempty"`
	AIHit    bool    `json:"ai_hit"`
	AISunk   string  `json:"ai_sunk,omitempty"`
	Finished string  `json:"finished,omitempty"`
}

func NewRespAttack(round mb.RoundOutcome) RespAttack {
	resp := RespAttack{
		Hit:      round.Player.Result.Hit,
		Sunk:     round.Player.Result.Sunk,
		Finished: round.FinishedMessage(),
	}
	if round.AI != nil {
		resp.AITurn = &[2]int{round.AI.Coordinates.X, round.AI.Coordinates.Y}
		resp.AIHit = round.AI.Result.Hit
		resp.AISunk = round.AI.Result.Sunk
	}
	return resp
}

type RespEndGame struct {
	Winner  string `json:"winner"`
	Message string `json:"message"`
}

type RespErr struct {
	ErrorDetails string `json:"error_details,omitempty"`
	Message      string `json:"message,omitempty"`
}

func NewRespErr(errorDetails, message string) *RespErr {
	return &RespErr{
		ErrorDetails: errorDetails,
		Message:      message,
	}
}
