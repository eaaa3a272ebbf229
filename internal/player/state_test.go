package player

import (
	"errors"
	"testing"
)

func TestStatus(t *testing.T) {
	testCases := []struct {
		name  string
		state PlaybackState
		want  Status
	}{
		{"initial", InitialState(), StatusEmpty},
		{"paused", PlaybackState{CurrentFileIndex: 0}, StatusPaused},
		{"playing", PlaybackState{CurrentFileIndex: 2, IsPlaying: true}, StatusPlaying},
		{"ended", PlaybackState{CurrentFileIndex: 1, Ended: true}, StatusEnded},
		{"failed", PlaybackState{CurrentFileIndex: 0, Err: errors.New("boom")}, StatusFailed},
		{"failure wins over ended", PlaybackState{CurrentFileIndex: 0, Ended: true, Err: errors.New("boom")}, StatusFailed},
		{"nothing loaded wins", PlaybackState{CurrentFileIndex: NoFile, IsPlaying: true}, StatusEmpty},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.state.Status(); got != tc.want {
				t.Errorf("Status() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestStatusString(t *testing.T) {
	if got := StatusPlaying.String(); got != "playing" {
		t.Errorf("String() = %q, want playing", got)
	}
	if got := Status(42).String(); got != "Status(42)" {
		t.Errorf("String() = %q, want Status(42)", got)
	}
	if got := EventEnded.String(); got != "ended" {
		t.Errorf("EventEnded.String() = %q, want ended", got)
	}
}

func TestProgress(t *testing.T) {
	testCases := []struct {
		position, duration int64
		want               float64
	}{
		{0, 0, 0},
		{500, 0, 0},
		{0, 1000, 0},
		{250, 1000, 0.25},
		{1000, 1000, 1},
		{1500, 1000, 1},
		{-10, 1000, 0},
	}

	for _, tc := range testCases {
		s := PlaybackState{CurrentPositionMs: tc.position, DurationMs: tc.duration}
		if got := s.Progress(); got != tc.want {
			t.Errorf("Progress() at %d/%d = %v, want %v", tc.position, tc.duration, got, tc.want)
		}
	}
}
