package audio

import (
	"errors"
	"time"
)

var (
	// ErrNoAudioTrack is returned when a file has no recognisable audio track
	ErrNoAudioTrack = errors.New("no audio track found")

	// ErrUnsupportedCodec is returned when the audio track is recognised but
	// no decoder is registered for it
	ErrUnsupportedCodec = errors.New("unsupported audio codec")

	// ErrUnsupportedFormat is returned for sample layouts a decoder cannot convert
	ErrUnsupportedFormat = errors.New("unsupported sample format")

	// ErrDequeueTimeout is returned when no decoded buffer arrives in time
	ErrDequeueTimeout = errors.New("timed out waiting for decoded audio")
)

// Media types reported by Sniff
const (
	MediaTypeWAV    = "audio/wav"
	MediaTypeAIFF   = "audio/aiff"
	MediaTypeFLAC   = "audio/flac"
	MediaTypeVorbis = "audio/ogg"
	MediaTypeOpus   = "audio/opus"
	MediaTypeMP3    = "audio/mpeg"
	MediaTypeMP4    = "audio/mp4"
)

// Format describes a decoded audio track
type Format struct {
	MediaType  string
	SampleRate int   // Hz
	Channels   int   // Interleaved channel count of ReadChunk output
	NumFrames  int64 // Frames per channel, 0 when unknown
	BitDepth   int   // Source bit depth, 0 for compressed codecs
}

// Duration returns the track length, or 0 when the length is unknown
func (f Format) Duration() time.Duration {
	if f.SampleRate <= 0 || f.NumFrames <= 0 {
		return 0
	}
	rate := int64(f.SampleRate)
	whole := time.Duration(f.NumFrames/rate) * time.Second
	return whole + time.Duration(f.NumFrames%rate)*time.Second/time.Duration(rate)
}

// Decoder produces interleaved 16-bit PCM from an audio track
type Decoder interface {
	// Format returns the track format
	Format() Format

	// ReadChunk reads up to numFrames frames of interleaved samples.
	// Returns io.EOF once the track is exhausted.
	ReadChunk(numFrames int) ([]int16, error)

	// Close releases the decoder and the underlying file
	Close() error
}
