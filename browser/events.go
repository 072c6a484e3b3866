package browser

import (
	"fmt"

	"github.com/brettbedarf/mvsfs"
)

// Phase is the lifecycle state of one load.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseCompleted
	PhaseCancelled
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseCompleted:
		return "completed"
	case PhaseCancelled:
		return "cancelled"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// LoadState is a snapshot of one load.
type LoadState struct {
	ID       string // unique per load
	Location mvsfs.Location
	Phase    Phase
	Count    int   // entries in the store when the snapshot was taken
	Err      error // set for PhaseFailed
}

// EventType says what happened to a load.
type EventType int

const (
	EventStarted   EventType = iota
	EventFirstPage           // first page that added entries
	EventPage                // any later page that added entries
	EventCompleted
	EventCancelled
	EventFailed
)

func (t EventType) String() string {
	switch t {
	case EventStarted:
		return "started"
	case EventFirstPage:
		return "first-page"
	case EventPage:
		return "page"
	case EventCompleted:
		return "completed"
	case EventCancelled:
		return "cancelled"
	case EventFailed:
		return "failed"
	default:
		return fmt.Sprintf("event(%d)", int(t))
	}
}

// LoadEvent is sent to [PageLoader] subscribers.
type LoadEvent struct {
	Type  EventType
	State LoadState
}

// LoadingState is sent to [Browser] loading listeners.
type LoadingState struct {
	Loading bool
	Count   int
}
