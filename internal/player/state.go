package player

import (
	"fmt"

	"github.com/linuxmatters/jivewave/internal/config"
)

// NoFile is the CurrentFileIndex of a manager with nothing loaded
const NoFile = -1

// Status is the transport state derived from a PlaybackState
type Status int

const (
	StatusEmpty Status = iota
	StatusPaused
	StatusPlaying
	StatusEnded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusEmpty:
		return "empty"
	case StatusPaused:
		return "paused"
	case StatusPlaying:
		return "playing"
	case StatusEnded:
		return "ended"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// PlaybackState is the observable transport record of a Manager.
// Values are snapshots; the manager never mutates a published copy.
type PlaybackState struct {
	IsPlaying         bool
	CurrentPositionMs int64
	DurationMs        int64
	CurrentFileIndex  int
	PlaybackSpeed     float64

	// Ended is set when the last queued file played to the end
	Ended bool
	// Err is set when the current file failed to prepare or play
	Err error
}

// InitialState returns the state of a manager with an empty queue
func InitialState() PlaybackState {
	return PlaybackState{
		CurrentFileIndex: NoFile,
		PlaybackSpeed:    config.DefaultPlaybackSpeed,
	}
}

// Status derives the transport state
func (s PlaybackState) Status() Status {
	switch {
	case s.CurrentFileIndex < 0:
		return StatusEmpty
	case s.Err != nil:
		return StatusFailed
	case s.Ended:
		return StatusEnded
	case s.IsPlaying:
		return StatusPlaying
	default:
		return StatusPaused
	}
}

// Progress returns the played fraction of the current file in [0, 1]
func (s PlaybackState) Progress() float64 {
	if s.DurationMs <= 0 {
		return 0
	}
	p := float64(s.CurrentPositionMs) / float64(s.DurationMs)
	return min(max(p, 0), 1)
}
