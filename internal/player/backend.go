package player

import (
	"fmt"
	"time"
)

// EventKind identifies a backend notification
type EventKind int

const (
	// EventReady reports that a loaded file is prepared and its duration known
	EventReady EventKind = iota
	// EventPlayingChanged reports that output started or stopped
	EventPlayingChanged
	// EventEnded reports that the file played to its end
	EventEnded
	// EventError reports a failure while preparing or playing
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventReady:
		return "ready"
	case EventPlayingChanged:
		return "playing_changed"
	case EventEnded:
		return "ended"
	case EventError:
		return "error"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is a backend notification for the file loaded with Session
type Event struct {
	Session  uint64
	Kind     EventKind
	Duration time.Duration // EventReady
	Playing  bool          // EventPlayingChanged
	Err      error         // EventError
}

// Backend decodes and outputs one file at a time. The manager calls it from
// a single goroutine. Events may be delivered from any goroutine; the
// listener never blocks.
type Backend interface {
	// SetListener registers the event callback
	SetListener(func(Event))

	// Load stops any current file and prepares path, paused at the start.
	// Events for this file carry session.
	Load(session uint64, path string) error

	Play()
	Pause()
	Stop()

	// Seek moves to d and returns the resulting position
	Seek(d time.Duration) (time.Duration, error)

	// Position returns the live playback position
	Position() time.Duration

	// Release frees every resource held by the backend
	Release() error
}
