package render

import "time"

// State is the lifecycle of one render job. Transitions are monotonic
// for pollers: idle -> running -> done | error.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateDone    State = "done"
	StateError   State = "error"
)

// Caption stage outcomes surfaced to pollers alongside the state.
// CaptionPending is the transitional value written once the render pass
// has landed, before the caption chain decides.
const (
	CaptionPending          = "pending"
	CaptionApplied          = "applied"
	CaptionStaticBurn       = "static burn applied"
	CaptionStaticBurnFailed = "static burn failed"
)

// Status is the persisted record pollers read. Args and StderrTail are
// diagnostics, returned only on verbose queries.
type Status struct {
	ClipID        string
	State         State
	URL           string
	CaptionStatus string
	Error         string
	Args          []string
	StderrTail    string
	UpdatedAt     time.Time
}
