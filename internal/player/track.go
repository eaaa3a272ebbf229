package player

import "github.com/gopxl/beep/v2"

// track is one loaded file
type track struct {
	session  uint64
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	playing  bool
	ended    bool
	stopped  bool

	// seeks counts seeks; written with the speaker locked
	seeks uint64
}

type endAction int

const (
	// The stream was replaced or stopped
	endIgnore endAction = iota
	// A seek landed after the stream drained, so play on from there
	endRearm
	// The track played to its end
	endReached
)

// drained decides what the end of t's stream means. cur is the backend's
// current track, ctrl the control that drained and gen the seek count when
// it drained.
func (t *track) drained(cur *track, ctrl *beep.Ctrl, gen uint64) endAction {
	switch {
	case cur != t || t.stopped || t.ctrl != ctrl:
		return endIgnore
	case t.seeks != gen:
		return endRearm
	default:
		return endReached
	}
}
