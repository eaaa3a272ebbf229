//go:build !((linux && cgo) || windows || darwin)

package player

import (
	"log/slog"
	"time"
)

// AudioAvailable indicates whether audio playback is supported in this build.
// Audio requires cgo on Linux for the native sound library.
const AudioAvailable = false

// SpeakerBackend is a placeholder for builds without audio output
type SpeakerBackend struct{}

var _ Backend = (*SpeakerBackend)(nil)

// NewSpeakerBackend always fails with ErrAudioUnavailable in this build
func NewSpeakerBackend(sampleRate int, buffer time.Duration, logger *slog.Logger) (*SpeakerBackend, error) {
	return nil, ErrAudioUnavailable
}

func (b *SpeakerBackend) SetListener(func(Event)) {}
func (b *SpeakerBackend) Load(uint64, string) error { return ErrAudioUnavailable }
func (b *SpeakerBackend) Play() {}
func (b *SpeakerBackend) Pause() {}
func (b *SpeakerBackend) Stop() {}
func (b *SpeakerBackend) Seek(time.Duration) (time.Duration, error) { return 0, ErrAudioUnavailable }
func (b *SpeakerBackend) Position() time.Duration { return 0 }
func (b *SpeakerBackend) Release() error { return nil }
