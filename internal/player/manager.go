// Package player owns an audio queue and a single playback session, and
// publishes the transport state for a UI to render.
package player

import (
	"errors"
	"log/slog"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/linuxmatters/jivewave/internal/logging"
	"github.com/linuxmatters/jivewave/internal/metrics"
)

var (
	// ErrReleased is returned by Release when the manager was already released
	ErrReleased = errors.New("player released")

	// ErrAudioUnavailable is returned when this build has no audio output
	ErrAudioUnavailable = errors.New("audio output not available in this build")
)

// Manager drives a Backend over a queue of files.
//
// Every operation and every backend event is applied by one goroutine, the
// only code that mutates the playback state. Operations block until they
// have been applied, and any backend events delivered before an operation
// are applied ahead of it.
type Manager struct {
	backend Backend
	logger  *slog.Logger
	metrics *metrics.Metrics
	exists  func(path string) bool

	cmds chan func()
	quit chan struct{}
	done chan struct{}

	releaseOnce sync.Once

	// Event mailbox filled by the backend listener
	mailMu  sync.Mutex
	pending []Event
	notify  chan struct{}

	// Owned by the loop goroutine. dirty marks changes not yet published.
	state   PlaybackState
	queue   []string
	session uint64
	dirty   bool

	// Published copies for readers outside the loop
	pubMu    sync.RWMutex
	snapshot PlaybackState
	queued   []string
	subs     map[chan PlaybackState]struct{}
	released bool
}

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = logging.OrDiscard(l) }
}

// WithMetrics records applied events into mt
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

// WithFileCheck replaces the existence check used by SetAudioFiles
func WithFileCheck(exists func(path string) bool) Option {
	return func(m *Manager) { m.exists = exists }
}

// NewManager starts a manager over backend. Call Release when done.
func NewManager(backend Backend, opts ...Option) *Manager {
	m := &Manager{
		backend: backend,
		logger:  logging.Discard(),
		exists:  fileExists,
		cmds:    make(chan func()),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
		notify:  make(chan struct{}, 1),
		state:   InitialState(),
		subs:    make(map[chan PlaybackState]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.snapshot = m.state

	backend.SetListener(m.post)
	go m.loop()
	return m
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// post queues a backend event without blocking
func (m *Manager) post(ev Event) {
	m.mailMu.Lock()
	m.pending = append(m.pending, ev)
	m.mailMu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
}

func (m *Manager) loop() {
	defer close(m.done)

	for {
		select {
		case cmd := <-m.cmds:
			cmd()
		case <-m.notify:
			m.applyPending()
			m.publishChanges()
		case <-m.quit:
			return
		}
	}
}

// do runs fn on the loop goroutine and waits until any change it made is
// published. It reports false when the manager has been released.
func (m *Manager) do(fn func()) bool {
	finished := make(chan struct{})
	cmd := func() {
		defer close(finished)
		m.applyPending()
		fn()
		m.applyPending()
		m.publishChanges()
	}

	select {
	case m.cmds <- cmd:
	case <-m.done:
		return false
	}
	<-finished
	return true
}

func (m *Manager) applyPending() {
	m.mailMu.Lock()
	events := m.pending
	m.pending = nil
	m.mailMu.Unlock()

	for _, ev := range events {
		m.apply(ev)
	}
}

// apply turns one backend event into a state transition
func (m *Manager) apply(ev Event) {
	if ev.Session != m.session {
		m.logger.Debug("ignoring stale backend event", "kind", ev.Kind, "session", ev.Session, "current", m.session)
		m.metrics.RecordStaleEvent()
		return
	}
	m.metrics.RecordPlayerEvent(ev.Kind.String())

	switch ev.Kind {
	case EventReady:
		m.state.DurationMs = max(ev.Duration.Milliseconds(), 0)
		m.dirty = true

	case EventPlayingChanged:
		if m.state.IsPlaying != ev.Playing {
			m.state.IsPlaying = ev.Playing
			m.dirty = true
		}

	case EventEnded:
		if m.state.CurrentFileIndex < len(m.queue)-1 {
			m.playFile(m.state.CurrentFileIndex + 1)
			return
		}
		m.state.IsPlaying = false
		m.state.Ended = true
		m.dirty = true
		m.logger.Info("queue finished", "index", m.state.CurrentFileIndex)

	case EventError:
		m.fail(ev.Err)
	}
}

func (m *Manager) fail(err error) {
	if err == nil {
		err = errors.New("playback failed")
	}
	m.state.IsPlaying = false
	m.state.Err = err
	m.dirty = true
	m.metrics.RecordPlaybackError()
	m.logger.Warn("playback failed", "index", m.state.CurrentFileIndex, "error", err)
}

// publishChanges copies the loop's state out to readers and subscribers
// when something changed since the last publish
func (m *Manager) publishChanges() {
	if !m.dirty {
		return
	}
	m.dirty = false

	m.pubMu.Lock()
	defer m.pubMu.Unlock()

	m.snapshot = m.state
	m.queued = m.queue
	for ch := range m.subs {
		// Latest value wins
		select {
		case <-ch:
		default:
		}
		ch <- m.snapshot
	}
}

// State returns the current playback state, including every backend event
// delivered so far. Reading alone never notifies subscribers.
func (m *Manager) State() PlaybackState {
	var s PlaybackState
	if m.do(func() { s = m.state }) {
		return s
	}
	m.pubMu.RLock()
	defer m.pubMu.RUnlock()
	return m.snapshot
}

// Queue returns a copy of the current queue
func (m *Manager) Queue() []string {
	m.pubMu.RLock()
	defer m.pubMu.RUnlock()
	return slices.Clone(m.queued)
}

// Subscribe returns a channel that always holds the latest published state,
// starting with the current one. Slow readers skip intermediate states.
// The channel is closed by cancel or Release.
func (m *Manager) Subscribe() (updates <-chan PlaybackState, cancel func()) {
	ch := make(chan PlaybackState, 1)

	m.pubMu.Lock()
	defer m.pubMu.Unlock()

	ch <- m.snapshot
	if m.released {
		close(ch)
		return ch, func() {}
	}
	m.subs[ch] = struct{}{}

	return ch, func() {
		m.pubMu.Lock()
		defer m.pubMu.Unlock()
		if _, ok := m.subs[ch]; ok {
			delete(m.subs, ch)
			close(ch)
		}
	}
}

// SetAudioFiles replaces the queue with the paths that exist, in order, and
// resets the playback state. Any current playback is stopped.
func (m *Manager) SetAudioFiles(paths []string) {
	m.do(func() {
		queue := lo.Filter(paths, func(p string, _ int) bool {
			return m.exists(p)
		})

		m.backend.Stop()
		// Invalidate events from the old session
		m.session++

		m.queue = queue
		m.state = InitialState()
		m.dirty = true
		m.logger.Info("queue replaced", "requested", len(paths), "queued", len(queue))
	})
}

// PlayFile starts playing the queued file at index. Out of range indices
// are ignored.
func (m *Manager) PlayFile(index int) {
	m.do(func() { m.playFile(index) })
}

func (m *Manager) playFile(index int) {
	if index < 0 || index >= len(m.queue) {
		return
	}

	m.backend.Stop()
	m.session++

	m.state.CurrentFileIndex = index
	m.state.CurrentPositionMs = 0
	m.state.DurationMs = 0
	m.state.IsPlaying = true
	m.state.Ended = false
	m.state.Err = nil
	m.dirty = true

	path := m.queue[index]
	if err := m.backend.Load(m.session, path); err != nil {
		m.fail(err)
		return
	}
	m.backend.Play()

	m.metrics.RecordFileStarted()
	m.logger.Info("playing file", "index", index, "path", path, "session", m.session)
}

// TogglePlayPause pauses or resumes the current file. With nothing loaded it
// starts the first file; on an ended or failed file it restarts that file.
func (m *Manager) TogglePlayPause() {
	m.do(func() {
		if len(m.queue) == 0 {
			return
		}

		switch m.state.Status() {
		case StatusEmpty:
			m.playFile(0)
		case StatusEnded, StatusFailed:
			m.playFile(m.state.CurrentFileIndex)
		case StatusPlaying:
			m.backend.Pause()
			m.state.IsPlaying = false
			m.dirty = true
		case StatusPaused:
			m.backend.Play()
			m.state.IsPlaying = true
			m.dirty = true
		}
	})
}

// SeekTo moves to positionMs, clamped to the file's duration
func (m *Manager) SeekTo(positionMs int64) {
	m.do(func() { m.seekTo(positionMs) })
}

func (m *Manager) seekTo(positionMs int64) {
	if m.state.CurrentFileIndex < 0 {
		return
	}

	target := min(max(positionMs, 0), m.state.DurationMs)
	actual, err := m.backend.Seek(time.Duration(target) * time.Millisecond)
	if err != nil {
		m.logger.Warn("seek failed", "target_ms", target, "error", err)
		return
	}

	m.state.CurrentPositionMs = max(actual.Milliseconds(), 0)
	m.state.Ended = false
	m.dirty = true
	m.logger.Debug("seeked", "requested_ms", positionMs, "target_ms", target, "actual_ms", m.state.CurrentPositionMs)
}

// SeekToFraction moves to fraction of the file's duration
func (m *Manager) SeekToFraction(fraction float64) {
	m.do(func() {
		m.seekTo(int64(fraction * float64(m.state.DurationMs)))
	})
}

// SkipBack moves back by seconds, never before the start
func (m *Manager) SkipBack(seconds int) {
	m.do(func() {
		m.seekTo(max(0, m.state.CurrentPositionMs-int64(seconds)*1000))
	})
}

// SkipForward moves forward by seconds, never past the end
func (m *Manager) SkipForward(seconds int) {
	m.do(func() {
		m.seekTo(m.state.CurrentPositionMs + int64(seconds)*1000)
	})
}

// UpdatePosition publishes the backend's live position. Call it
// periodically while playing.
func (m *Manager) UpdatePosition() {
	m.do(func() {
		if m.state.CurrentFileIndex < 0 {
			return
		}
		pos := max(m.backend.Position().Milliseconds(), 0)
		if m.state.DurationMs > 0 {
			pos = min(pos, m.state.DurationMs)
		}
		if pos != m.state.CurrentPositionMs {
			m.state.CurrentPositionMs = pos
			m.dirty = true
		}
	})
}

// SetPlaybackSpeed records the requested speed. The backend always plays at
// normal speed. Non-positive speeds are ignored.
func (m *Manager) SetPlaybackSpeed(speed float64) {
	m.do(func() {
		if speed <= 0 || speed == m.state.PlaybackSpeed {
			return
		}
		m.state.PlaybackSpeed = speed
		m.dirty = true
	})
}

// Release stops the loop and frees the backend. Later operations are no-ops
// and State returns the last published state.
func (m *Manager) Release() error {
	err := ErrReleased
	m.releaseOnce.Do(func() {
		close(m.quit)
		<-m.done

		m.backend.Stop()
		err = m.backend.Release()

		m.pubMu.Lock()
		m.released = true
		for ch := range m.subs {
			close(ch)
		}
		m.subs = nil
		m.pubMu.Unlock()

		m.logger.Info("player released")
	})
	return err
}
