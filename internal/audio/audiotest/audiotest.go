// Package audiotest provides synthetic audio files and in-memory decoders
// for tests.
package audiotest

import (
	"io"
	"math"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/linuxmatters/jivewave/internal/audio"
)

const wavFormatPCM = 1

// WriteWAV writes interleaved integer samples to path as a PCM WAV file
func WriteWAV(t testing.TB, path string, sampleRate, bitDepth, channels int, samples []int) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, bitDepth, channels, wavFormatPCM)
	buf := &goaudio.IntBuffer{
		Data:           samples,
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("failed to write WAV samples: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("failed to finalise WAV: %v", err)
	}
}

// WriteAIFF writes interleaved integer samples to path as an AIFF file
func WriteAIFF(t testing.TB, path string, sampleRate, bitDepth, channels int, samples []int) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()

	enc := aiff.NewEncoder(f, sampleRate, bitDepth, channels)
	buf := &goaudio.IntBuffer{
		Data:           samples,
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("failed to write AIFF samples: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("failed to finalise AIFF: %v", err)
	}
}

// Sine returns frames samples of a mono sine wave with the given peak
func Sine(frames, sampleRate int, frequency float64, peak int) []int {
	out := make([]int, frames)
	for i := range out {
		v := math.Sin(2 * math.Pi * frequency * float64(i) / float64(sampleRate))
		out[i] = int(math.Round(v * float64(peak)))
	}
	return out
}

// Interleave builds multi-channel data from per-channel slices of equal length
func Interleave(channels ...[]int) []int {
	if len(channels) == 0 {
		return nil
	}
	frames := len(channels[0])
	out := make([]int, 0, frames*len(channels))
	for i := 0; i < frames; i++ {
		for _, ch := range channels {
			out = append(out, ch[i])
		}
	}
	return out
}

// MockDecoder is an in-memory audio.Decoder over interleaved 16-bit samples
type MockDecoder struct {
	mu      sync.Mutex
	format  audio.Format
	samples []int16
	pos     int

	// Err is returned once every sample has been read, instead of io.EOF
	Err error
	// Delay is slept before every read to simulate a slow backend
	Delay time.Duration
	// Block, when non-nil, is received from before every read
	Block chan struct{}

	closed bool
	reads  int
}

// NewMockDecoder returns a decoder producing samples with the given format.
// NumFrames is taken from format as given so tests can report any duration.
func NewMockDecoder(format audio.Format, samples []int16) *MockDecoder {
	return &MockDecoder{format: format, samples: samples}
}

// Format returns the configured format
func (m *MockDecoder) Format() audio.Format {
	return m.format
}

// ReadChunk returns the next numFrames frames
func (m *MockDecoder) ReadChunk(numFrames int) ([]int16, error) {
	if m.Block != nil {
		<-m.Block
	}
	if m.Delay > 0 {
		time.Sleep(m.Delay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++

	if m.pos >= len(m.samples) {
		if m.Err != nil {
			return nil, m.Err
		}
		return nil, io.EOF
	}

	channels := max(m.format.Channels, 1)
	end := min(m.pos+numFrames*channels, len(m.samples))
	chunk := make([]int16, end-m.pos)
	copy(chunk, m.samples[m.pos:end])
	m.pos = end
	return chunk, nil
}

// Close marks the decoder closed
func (m *MockDecoder) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called
func (m *MockDecoder) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Reads reports how many times ReadChunk ran
func (m *MockDecoder) Reads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}

// Int16s converts int samples to int16, clamping to the 16-bit range
func Int16s(samples []int) []int16 {
	out := make([]int16, len(samples))
	for i, v := range samples {
		out[i] = int16(max(math.MinInt16, min(math.MaxInt16, v)))
	}
	return out
}
