//go:build (linux && cgo) || windows || darwin

package player

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"

	"github.com/linuxmatters/jivewave/internal/logging"
)

// AudioAvailable indicates whether audio playback is supported in this build.
const AudioAvailable = true

// The speaker is process-wide and can only be initialised once
var (
	speakerOnce sync.Once
	speakerRate beep.SampleRate
	speakerErr  error
)

func initSpeaker(rate beep.SampleRate, buffer time.Duration) (beep.SampleRate, error) {
	speakerOnce.Do(func() {
		speakerRate = rate
		speakerErr = speaker.Init(rate, rate.N(buffer))
	})
	return speakerRate, speakerErr
}

// SpeakerBackend plays files through the system audio output using beep
type SpeakerBackend struct {
	mu sync.Mutex

	sampleRate beep.SampleRate
	listener   func(Event)
	cur        *track
	logger     *slog.Logger
}

var _ Backend = (*SpeakerBackend)(nil)

// NewSpeakerBackend initialises the speaker at sampleRate Hz. Tracks at
// other rates are resampled.
func NewSpeakerBackend(sampleRate int, buffer time.Duration, logger *slog.Logger) (*SpeakerBackend, error) {
	rate, err := initSpeaker(beep.SampleRate(sampleRate), buffer)
	if err != nil {
		return nil, err
	}
	return &SpeakerBackend{
		sampleRate: rate,
		listener:   func(Event) {},
		logger:     logging.OrDiscard(logger),
	}, nil
}

// SetListener registers the event callback
func (b *SpeakerBackend) SetListener(fn func(Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listener = fn
}

// Load stops the current file and prepares path, paused at the start
func (b *SpeakerBackend) Load(session uint64, path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stopLocked()

	streamer, format, err := openStream(path)
	if err != nil {
		return err
	}

	t := &track{
		session:  session,
		streamer: streamer,
		format:   format,
	}
	b.cur = t
	b.armLocked(t)

	b.listener(Event{
		Session:  session,
		Kind:     EventReady,
		Duration: format.SampleRate.D(streamer.Len()),
	})
	b.logger.Debug("track loaded", "path", path, "session", session, "sample_rate", format.SampleRate)
	return nil
}

// armLocked hands the track to the speaker mixer
func (b *SpeakerBackend) armLocked(t *track) {
	resampled := beep.Resample(4, t.format.SampleRate, b.sampleRate, t.streamer)
	ctrl := &beep.Ctrl{Streamer: resampled, Paused: !t.playing}
	t.ctrl = ctrl

	speaker.Play(beep.Seq(ctrl, beep.Callback(func() {
		// Runs on the speaker goroutine with the speaker locked
		gen := t.seeks
		go b.finished(t, ctrl, gen)
	})))
}

// finished handles the end of a track's stream. gen is the seek generation
// when the stream drained.
func (b *SpeakerBackend) finished(t *track, ctrl *beep.Ctrl, gen uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch t.drained(b.cur, ctrl, gen) {
	case endIgnore:
		return
	case endRearm:
		b.logger.Debug("seeked after end of stream, resuming", "session", t.session)
		b.armLocked(t)
		return
	}

	t.playing = false
	if err := t.streamer.Err(); err != nil {
		b.listener(Event{Session: t.session, Kind: EventError, Err: err})
		return
	}

	t.ended = true
	b.listener(Event{Session: t.session, Kind: EventEnded})
}

// Play resumes output
func (b *SpeakerBackend) Play() {
	b.setPlaying(true)
}

// Pause halts output
func (b *SpeakerBackend) Pause() {
	b.setPlaying(false)
}

func (b *SpeakerBackend) setPlaying(playing bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := b.cur
	if t == nil || t.ended || t.playing == playing {
		return
	}

	speaker.Lock()
	t.ctrl.Paused = !playing
	speaker.Unlock()

	t.playing = playing
	b.listener(Event{Session: t.session, Kind: EventPlayingChanged, Playing: playing})
}

// Stop discards the current file
func (b *SpeakerBackend) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopLocked()
}

func (b *SpeakerBackend) stopLocked() {
	t := b.cur
	if t == nil {
		return
	}
	t.stopped = true

	// A nil streamer drains the Ctrl, so the mixer drops it
	speaker.Lock()
	t.ctrl.Streamer = nil
	speaker.Unlock()

	if err := t.streamer.Close(); err != nil {
		b.logger.Warn("failed to close track", "session", t.session, "error", err)
	}
	b.cur = nil
}

// Seek moves to d, clamped to the track, and returns the new position.
// Seeking an ended track arms it again, paused.
func (b *SpeakerBackend) Seek(d time.Duration) (time.Duration, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := b.cur
	if t == nil {
		return 0, nil
	}

	speaker.Lock()
	n := min(max(t.format.SampleRate.N(d), 0), t.streamer.Len())
	err := t.streamer.Seek(n)
	pos := t.streamer.Position()
	t.seeks++
	speaker.Unlock()

	if err != nil {
		return t.format.SampleRate.D(pos), err
	}

	if t.ended {
		t.ended = false
		b.armLocked(t)
	}
	return t.format.SampleRate.D(pos), nil
}

// Position returns the live playback position
func (b *SpeakerBackend) Position() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := b.cur
	if t == nil {
		return 0
	}

	speaker.Lock()
	pos := t.streamer.Position()
	speaker.Unlock()

	return t.format.SampleRate.D(pos)
}

// Release stops output. The process-wide speaker stays initialised.
func (b *SpeakerBackend) Release() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopLocked()
	b.listener = func(Event) {}
	return nil
}
