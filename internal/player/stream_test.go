package player

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/gopxl/beep/v2"

	"github.com/linuxmatters/jivewave/internal/audio"
	"github.com/linuxmatters/jivewave/internal/audio/audiotest"
)

func streamAll(s beep.Streamer) [][2]float64 {
	var out [][2]float64
	buf := make([][2]float64, 64)
	for {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok {
			return out
		}
	}
}

func TestOpenStreamWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	samples := audiotest.Sine(1000, 8000, 440, 16000)
	audiotest.WriteWAV(t, path, 8000, 16, 1, samples)

	streamer, format, err := openStream(path)
	if err != nil {
		t.Fatalf("openStream() error = %v", err)
	}
	defer streamer.Close()

	if format.SampleRate != 8000 {
		t.Errorf("SampleRate = %d, want 8000", format.SampleRate)
	}
	if got := streamer.Len(); got != len(samples) {
		t.Errorf("Len() = %d, want %d", got, len(samples))
	}

	if err := streamer.Seek(500); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	if got := streamer.Position(); got != 500 {
		t.Errorf("Position() = %d, want 500", got)
	}
}

func TestOpenStreamBuffersAIFF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.aiff")
	left := audiotest.Sine(400, 8000, 200, 12000)
	right := make([]int, len(left))
	for i, v := range left {
		right[i] = -v
	}
	audiotest.WriteAIFF(t, path, 8000, 16, 2, audiotest.Interleave(left, right))

	streamer, format, err := openStream(path)
	if err != nil {
		t.Fatalf("openStream() error = %v", err)
	}
	defer streamer.Close()

	if format.SampleRate != 8000 || format.NumChannels != 2 {
		t.Errorf("format = %+v, want 8000 Hz stereo", format)
	}
	if got := streamer.Len(); got != len(left) {
		t.Fatalf("Len() = %d, want %d", got, len(left))
	}

	got := streamAll(streamer)
	if len(got) != len(left) {
		t.Fatalf("streamed %d frames, want %d", len(got), len(left))
	}
	for i := range got {
		wantL := float64(left[i]) / 32768
		wantR := float64(right[i]) / 32768
		// The buffer stores 16-bit samples, so allow for quantisation
		if math.Abs(got[i][0]-wantL) > 1e-4 || math.Abs(got[i][1]-wantR) > 1e-4 {
			t.Fatalf("frame %d = %v, want [%v %v]", i, got[i], wantL, wantR)
		}
	}
}

func TestOpenStreamErrors(t *testing.T) {
	dir := t.TempDir()

	if _, _, err := openStream(filepath.Join(dir, "missing.mp3")); err == nil {
		t.Error("openStream() on a missing file succeeded")
	}

	text := filepath.Join(dir, "notes.mp3")
	if err := os.WriteFile(text, []byte("not audio at all, just words"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := openStream(text); err == nil {
		t.Error("openStream() on a text file succeeded")
	}
}

func TestPCMStreamer(t *testing.T) {
	t.Run("mono duplicated", func(t *testing.T) {
		dec := audiotest.NewMockDecoder(audio.Format{SampleRate: 8000, Channels: 1}, []int16{16384, -16384, 0})
		s := &pcmStreamer{dec: dec, channels: 1}

		got := streamAll(s)
		want := [][2]float64{{0.5, 0.5}, {-0.5, -0.5}, {0, 0}}
		if len(got) != len(want) {
			t.Fatalf("streamed %d frames, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("frame %d = %v, want %v", i, got[i], want[i])
			}
		}
		if s.Err() != nil {
			t.Errorf("Err() = %v, want nil", s.Err())
		}
	})

	t.Run("extra channels dropped", func(t *testing.T) {
		dec := audiotest.NewMockDecoder(audio.Format{SampleRate: 8000, Channels: 3}, []int16{16384, -16384, 32767, 0, 8192, 32767})
		s := &pcmStreamer{dec: dec, channels: 3}

		got := streamAll(s)
		want := [][2]float64{{0.5, -0.5}, {0, 0.25}}
		if len(got) != len(want) {
			t.Fatalf("streamed %d frames, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("frame %d = %v, want %v", i, got[i], want[i])
			}
		}
	})

	t.Run("decoder error surfaces", func(t *testing.T) {
		dec := audiotest.NewMockDecoder(audio.Format{SampleRate: 8000, Channels: 1}, []int16{1, 2})
		dec.Err = errCorrupt
		s := &pcmStreamer{dec: dec, channels: 1}

		got := streamAll(s)
		if len(got) != 2 {
			t.Errorf("streamed %d frames, want 2", len(got))
		}
		if !errors.Is(s.Err(), errCorrupt) {
			t.Errorf("Err() = %v, want %v", s.Err(), errCorrupt)
		}
	})
}

var errCorrupt = errors.New("corrupt frame")
