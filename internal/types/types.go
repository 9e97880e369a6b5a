// Package types holds the messages exchanged with presentation clients on the view stream.
package types

import "github.com/DoyleJ11/durak-client/internal/dispatch"

type ClientMessage struct {
	Type   string          `json:"type"` // "Intent"
	Intent dispatch.Intent `json:"intent"`
}

type ServerMessage struct {
	Type    string         `json:"type"` // "ViewSnapshot" | "Error"
	Version int            `json:"version,omitempty"`
	View    *dispatch.View `json:"view,omitempty"`
	Error   string         `json:"error,omitempty"`
}
