package terminal

import (
	"time"

	"github.com/GriffinCanCode/termhost/internal/shared/id"
)

// Kind names a backend variant.
type Kind string

const (
	KindLocalPty    Kind = "local_pty"
	KindRemoteShell Kind = "remote_shell"
)

// Geometry is the terminal size fixed at open time.
type Geometry struct {
	Rows uint16 `json:"rows"`
	Cols uint16 `json:"cols"`
}

// DefaultGeometry matches a classic 80x24 terminal.
var DefaultGeometry = Geometry{Rows: 24, Cols: 80}

// OrDefault fills zero dimensions from def.
func (g Geometry) OrDefault(def Geometry) Geometry {
	if g.Rows == 0 {
		g.Rows = def.Rows
	}
	if g.Cols == 0 {
		g.Cols = def.Cols
	}
	return g
}

// EndReason says why a session stopped producing output.
type EndReason string

const (
	EndClosed EndReason = "closed" // a caller closed the session
	EndExited EndReason = "exited" // the backend reached end of output
	EndFailed EndReason = "failed" // unrecoverable read error
)

// Chunk is one piece of session output. Data holds the raw bytes; chunks
// always end on a UTF-8 boundary so Text is decodable on its own. Invalid
// marks chunks whose Data contained malformed UTF-8 (Text then carries
// U+FFFD in place of the bad bytes).
type Chunk struct {
	SessionID id.SessionID
	Seq       uint64
	Data      []byte
	Text      string
	Invalid   bool
}

// End is the final notification for a session.
type End struct {
	SessionID id.SessionID
	Reason    EndReason
	Err       error
}

// Info is a read-only snapshot of a live session.
type Info struct {
	ID        id.SessionID `json:"id"`
	Kind      Kind         `json:"kind"`
	Name      string       `json:"name"`
	Command   string       `json:"command"`
	Args      []string     `json:"args,omitempty"`
	Cwd       string       `json:"cwd,omitempty"`
	Geometry  Geometry     `json:"geometry"`
	CreatedAt time.Time    `json:"created_at"`
	Pid       int          `json:"pid,omitempty"`
}
