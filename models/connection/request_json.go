package connection

import "encoding/json"

// ReqNewGame configures the session board and places the player fleet.
// A zero BoardSize keeps the server default. Placement is only read by
// the custom algorithm and has the same shape as placement.json.
type ReqNewGame struct {
	BoardSize int             `json:"board_size,omitempty"`
	Algorithm string          `json:"algorithm"`
	Placement json.RawMessage `json:"placement,omitempty"`
}

type ReqAttack struct {
	X int `json:"x"`
	Y int `json:"y"`
}
