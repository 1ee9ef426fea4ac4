// Package wire defines the WebSocket protocol of the console.
package wire

import (
	"encoding/json"

	"github.com/matthewbaird/opsconsole/internal/form"
	"github.com/matthewbaird/opsconsole/internal/notify"
)

// Client message types.
const (
	TypeEnter      = "enter"
	TypeLoad       = "load"
	TypeFilter     = "filter"
	TypeOpenCreate = "open_create"
	TypeOpenEdit   = "open_edit"
	TypeOpenView   = "open_view"
	TypeClose      = "close"
	TypeSetField   = "set_field"
	TypeSubmit     = "submit"
	TypeDelete     = "delete"
	TypeConfirm    = "confirm"
	TypePing       = "ping"
)

// Server message types. TypeConfirm is also sent by the server, carrying a
// delete prompt.
const (
	TypeSession  = "session"
	TypeScreen   = "screen"
	TypeNotice   = "notice"
	TypeErrors   = "errors"
	TypeRedirect = "redirect"
	TypeError    = "error"
	TypePong     = "pong"
)

// ── Client → Server messages ────────────────────────────────────────────────

// ClientMessage is the envelope for all client-to-server WebSocket messages.
type ClientMessage struct {
	Type string          `json:"type"`
	ID   string          `json:"id"` // Client-assigned request ID
	Data json.RawMessage `json:"data,omitempty"`
}

// ScreenData addresses one screen. Which other fields matter depends on the
// message type: key for open_edit, open_view and delete; search and status
// for filter; field and value for set_field.
type ScreenData struct {
	Entity string `json:"entity"`
	Key    string `json:"key,omitempty"`
	Search string `json:"search,omitempty"`
	Status string `json:"status,omitempty"`
	Field  string `json:"field,omitempty"`
	Value  any    `json:"value,omitempty"`
}

// ConfirmData answers a delete prompt.
type ConfirmData struct {
	PromptID string `json:"prompt_id"`
	Yes      bool   `json:"yes"`
}

// ── Server → Client messages ────────────────────────────────────────────────

// ServerMessage is the envelope for all server-to-client WebSocket messages.
type ServerMessage struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"` // Echoes client ID
	Data      any    `json:"data,omitempty"`
}

// ScreenInfo names one screen of the session.
type ScreenInfo struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// SessionData carries session information.
type SessionData struct {
	SessionID string       `json:"session_id"`
	Actor     string       `json:"actor"`
	Role      string       `json:"role"`
	Screens   []ScreenInfo `json:"screens"`
}

// ErrorsData carries the validation errors of a submit.
type ErrorsData struct {
	Entity string      `json:"entity"`
	Errors form.Errors `json:"errors"`
}

// RedirectData tells the client which screen to show instead.
type RedirectData struct {
	Entity string `json:"entity"`
}

// NoticeData is a notification for staff.
type NoticeData = notify.Notice

// PromptData asks staff to confirm a delete.
type PromptData = notify.Prompt

// ErrorData carries an error message.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
