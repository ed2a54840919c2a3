// Package pipeline pulls frames from a source, invokes the shared
// detector, renders overlays, and accumulates captured results.
package pipeline

import "errors"

// State is the lifecycle state of a live pipeline.
type State int32

const (
	// StateIdle means no live session is active.
	StateIdle State = iota
	// StateInitializing means the detector is being loaded.
	StateInitializing
	// StateRunning means the frame loop is active.
	StateRunning
	// StateStopping means a stop is being applied.
	StateStopping
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitializing:
		return "initializing"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Sentinel errors for pipeline lifecycle misuse.
var (
	// ErrAlreadyRunning is returned when starting a pipeline that is
	// not idle.
	ErrAlreadyRunning = errors.New("pipeline: already running")

	// ErrNotRunning is returned when stopping or snapshotting a
	// pipeline that has no active session.
	ErrNotRunning = errors.New("pipeline: not running")

	// ErrNoFrame is returned when a snapshot is requested before the
	// first frame has been processed.
	ErrNoFrame = errors.New("pipeline: no frame available yet")
)
