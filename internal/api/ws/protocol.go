package ws

import (
	"encoding/base64"

	"github.com/GriffinCanCode/termhost/internal/domain/shell"
	"github.com/GriffinCanCode/termhost/internal/domain/terminal"
	"github.com/bytedance/sonic"
)

// Client → server frame types.
const (
	TypeOpen   = "open"
	TypeInput  = "input"
	TypeClose  = "close"
	TypeList   = "list"
	TypeShells = "shells"
	TypePing   = "ping"
)

// Server → client frame types.
const (
	TypeOpened   = "opened"
	TypeOutput   = "output"
	TypeExit     = "exit"
	TypeSessions = "sessions"
	TypePong     = "pong"
	TypeError    = "error"
)

// Stream-only error codes; session errors use terminal.ErrorCode.
const (
	CodeBadRequest = "bad_request"
	CodeUnknown    = "unknown_type"
)

// ClientFrame is any frame sent by the client. Fields irrelevant to Type
// are ignored.
type ClientFrame struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`

	// open
	Shell   string             `json:"shell,omitempty"`
	Command string             `json:"command,omitempty"`
	Args    []string           `json:"args,omitempty"`
	Env     []string           `json:"env,omitempty"`
	Cwd     string             `json:"cwd,omitempty"`
	Rows    uint16             `json:"rows,omitempty"`
	Cols    uint16             `json:"cols,omitempty"`
	Remote  *terminal.HostInfo `json:"remote,omitempty"`

	// input, close
	SessionID string `json:"session_id,omitempty"`
	Data      string `json:"data,omitempty"`
}

// OpenedFrame confirms an open.
type OpenedFrame struct {
	Type      string        `json:"type"`
	RequestID string        `json:"request_id,omitempty"`
	Session   terminal.Info `json:"session"`
}

// OutputFrame carries one chunk. Raw holds the base64 bytes when the chunk
// was not valid UTF-8.
type OutputFrame struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Seq       uint64 `json:"seq"`
	Data      string `json:"data"`
	Raw       string `json:"raw,omitempty"`
}

// ExitFrame reports the end of a session.
type ExitFrame struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Reason    string `json:"reason"`
	Error     string `json:"error,omitempty"`
}

// SessionsFrame answers list.
type SessionsFrame struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Sessions  []terminal.Info `json:"sessions"`
}

// ShellsFrame answers shells.
type ShellsFrame struct {
	Type      string             `json:"type"`
	RequestID string             `json:"request_id,omitempty"`
	Shells    []shell.Descriptor `json:"shells"`
}

// PongFrame answers ping.
type PongFrame struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorFrame reports a failed request.
type ErrorFrame struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

func outputFrame(chunk terminal.Chunk) OutputFrame {
	f := OutputFrame{
		Type:      TypeOutput,
		SessionID: chunk.SessionID.String(),
		Seq:       chunk.Seq,
		Data:      chunk.Text,
	}
	if chunk.Invalid {
		f.Raw = base64.StdEncoding.EncodeToString(chunk.Data)
	}
	return f
}

func exitFrame(end terminal.End) ExitFrame {
	f := ExitFrame{
		Type:      TypeExit,
		SessionID: end.SessionID.String(),
		Reason:    string(end.Reason),
	}
	if end.Err != nil {
		f.Error = end.Err.Error()
	}
	return f
}

func errorFrame(requestID, sessionID, code, message string) ErrorFrame {
	return ErrorFrame{
		Type:      TypeError,
		RequestID: requestID,
		SessionID: sessionID,
		Code:      code,
		Message:   message,
	}
}

func encodeFrame(v any) ([]byte, error) {
	return sonic.Marshal(v)
}

func decodeFrame(data []byte) (ClientFrame, error) {
	var f ClientFrame
	err := sonic.Unmarshal(data, &f)
	return f, err
}
