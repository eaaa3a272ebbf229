package ui

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"slices"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/linuxmatters/jivewave/internal/player"
)

// fakeTransport records the operations the UI invokes
type fakeTransport struct {
	state player.PlaybackState
	queue []string
	calls []string
}

func newFakeTransport(queue ...string) *fakeTransport {
	return &fakeTransport{state: player.InitialState(), queue: queue}
}

func (f *fakeTransport) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeTransport) State() player.PlaybackState { return f.state }
func (f *fakeTransport) Queue() []string             { return slices.Clone(f.queue) }
func (f *fakeTransport) TogglePlayPause()            { f.record("toggle") }
func (f *fakeTransport) PlayFile(i int)              { f.record("play %d", i) }
func (f *fakeTransport) SeekToFraction(v float64)    { f.record("fraction %g", v) }
func (f *fakeTransport) SkipBack(s int)              { f.record("back %d", s) }
func (f *fakeTransport) SkipForward(s int)           { f.record("forward %d", s) }
func (f *fakeTransport) UpdatePosition()             { f.record("update") }

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
}

func testOptions() Options {
	return Options{PollInterval: 100 * time.Millisecond, SkipSeconds: 5}
}

func TestKeysDriveTransport(t *testing.T) {
	testCases := []struct {
		key  string
		want string
	}{
		{" ", "toggle"},
		{"left", "back 5"},
		{"right", "forward 5"},
		{"5", "fraction 0.5"},
		{"0", "fraction 0"},
		{"n", "play 2"},
		{"p", "play 0"},
	}

	for _, tc := range testCases {
		t.Run(tc.key, func(t *testing.T) {
			transport := newFakeTransport("a.mp3", "b.mp3", "c.mp3")
			transport.state.CurrentFileIndex = 1
			m := NewModel(transport, nil, testOptions())

			m.Update(keyMsg(tc.key))

			if len(transport.calls) != 1 || transport.calls[0] != tc.want {
				t.Errorf("key %q called %v, want [%s]", tc.key, transport.calls, tc.want)
			}
		})
	}
}

func TestUnknownKeyIgnored(t *testing.T) {
	transport := newFakeTransport("a.mp3")
	m := NewModel(transport, nil, testOptions())

	_, cmd := m.Update(keyMsg("z"))

	if len(transport.calls) != 0 || cmd != nil {
		t.Errorf("unknown key called %v, cmd %v", transport.calls, cmd)
	}
}

func TestQuit(t *testing.T) {
	m := NewModel(newFakeTransport("a.mp3"), nil, testOptions())

	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
	if m.ctx.Err() == nil {
		t.Error("quitting did not cancel running extractions")
	}
	if m.View() != "" {
		t.Error("View() not empty after quit")
	}
}

func TestTickPollsWhilePlaying(t *testing.T) {
	transport := newFakeTransport("a.mp3")
	m := NewModel(transport, nil, testOptions())

	_, cmd := m.Update(tickMsg{})
	if slices.Contains(transport.calls, "update") {
		t.Error("position polled while stopped")
	}
	if cmd == nil {
		t.Error("tick not rescheduled")
	}

	transport.state = player.PlaybackState{CurrentFileIndex: 0, IsPlaying: true, DurationMs: 9000, CurrentPositionMs: 3000, PlaybackSpeed: 1}
	m.Update(tickMsg{})
	m.Update(tickMsg{})

	if got := transport.calls; !slices.Equal(got, []string{"update"}) {
		t.Errorf("calls = %v, want one update after the state turned playing", got)
	}
	if m.state.CurrentPositionMs != 3000 {
		t.Errorf("state position = %d, want 3000", m.state.CurrentPositionMs)
	}
}

func TestExtractionRequestedOnce(t *testing.T) {
	transport := newFakeTransport("a.mp3", "b.mp3")
	var requested []string
	source := func(_ context.Context, path string) ([]float64, error) {
		requested = append(requested, path)
		return []float64{0.5, 1}, nil
	}
	m := NewModel(transport, source, testOptions())

	cmd := m.extractCmd()
	if cmd == nil {
		t.Fatal("no extraction for the first queued file")
	}
	if again := m.extractCmd(); again != nil {
		t.Error("extraction requested twice while running")
	}

	msg := cmd()
	m.Update(msg)

	if got := m.waveforms["a.mp3"]; !slices.Equal(got, []float64{0.5, 1}) {
		t.Errorf("waveform = %v, want [0.5 1]", got)
	}
	if !slices.Equal(requested, []string{"a.mp3"}) {
		t.Errorf("requested = %v, want [a.mp3]", requested)
	}

	// Moving to the next file extracts it
	transport.state = player.PlaybackState{CurrentFileIndex: 1, IsPlaying: true, PlaybackSpeed: 1}
	if cmd := m.refresh(); cmd == nil {
		t.Error("no extraction after switching file")
	}
}

func TestViewStates(t *testing.T) {
	t.Run("empty queue", func(t *testing.T) {
		m := NewModel(newFakeTransport(), nil, testOptions())
		if view := m.View(); !strings.Contains(view, "No playable files") {
			t.Errorf("View() = %q, want empty queue notice", view)
		}
	})

	t.Run("extracting", func(t *testing.T) {
		m := NewModel(newFakeTransport("/notes/a.mp3"), func(context.Context, string) ([]float64, error) {
			return nil, nil
		}, testOptions())
		m.extractCmd()
		m.Update(ExtractProgress{FramesDecoded: 50, TotalFrames: 100})

		view := m.View()
		if !strings.Contains(view, "Extracting waveform") || !strings.Contains(view, "a.mp3") {
			t.Errorf("View() = %q, want extraction progress for a.mp3", view)
		}
	})

	t.Run("playing", func(t *testing.T) {
		transport := newFakeTransport("a.mp3", "b.mp3")
		transport.state = player.PlaybackState{
			CurrentFileIndex:  1,
			IsPlaying:         true,
			CurrentPositionMs: 61_000,
			DurationMs:        125_000,
			PlaybackSpeed:     1,
		}
		m := NewModel(transport, nil, testOptions())
		m.Update(WaveformMsg{Path: "b.mp3", Bars: []float64{0, 1}})

		view := m.View()
		for _, want := range []string{"1:01 / 2:05", "2/2", "▶", "█", "▁"} {
			if !strings.Contains(view, want) {
				t.Errorf("View() missing %q:\n%s", want, view)
			}
		}
	})

	t.Run("failed", func(t *testing.T) {
		transport := newFakeTransport("a.mp3")
		transport.state = player.PlaybackState{CurrentFileIndex: 0, PlaybackSpeed: 1, Err: errors.New("decoder exploded")}
		m := NewModel(transport, nil, testOptions())
		m.Update(WaveformMsg{Path: "a.mp3", Err: errors.New("no audio track")})

		view := m.View()
		if !strings.Contains(view, "decoder exploded") || !strings.Contains(view, "Waveform unavailable") {
			t.Errorf("View() = %q, want error and missing waveform", view)
		}
	})
}

func TestRenderWave(t *testing.T) {
	if got := RenderWave(nil, 0.5, 10); got != "" {
		t.Errorf("RenderWave(nil) = %q, want empty", got)
	}

	got := RenderWave([]float64{0, 1}, 0, 4)
	if got != "▁▁██" {
		t.Errorf("RenderWave() = %q, want ▁▁██", got)
	}
}

func TestResampleBars(t *testing.T) {
	testCases := []struct {
		name  string
		bars  []float64
		width int
		want  []float64
	}{
		{"peak per column", []float64{0.1, 0.9, 0.3, 0.2}, 2, []float64{0.9, 0.3}},
		{"stretch", []float64{0.2, 0.8}, 4, []float64{0.2, 0.2, 0.8, 0.8}},
		{"identity", []float64{0.1, 0.2, 0.3}, 3, []float64{0.1, 0.2, 0.3}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := resampleBars(tc.bars, tc.width); !slices.Equal(got, tc.want) {
				t.Errorf("resampleBars() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDownsampleImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			c := color.RGBA{A: 255}
			if x >= 2 {
				c.R = 200
			}
			img.SetRGBA(x, y, c)
		}
	}

	preview := DownsampleImage(img, PreviewConfig{Width: 2, Height: 1})

	if len(preview) != 1 || len(preview[0]) != 2 {
		t.Fatalf("preview size = %dx%d, want 2x1", len(preview[0]), len(preview))
	}
	if preview[0][0].R != 0 || preview[0][1].R != 200 {
		t.Errorf("preview = %v, want black then red", preview[0])
	}

	out := RenderPreview("Waveform", preview)
	if !strings.Contains(out, "Waveform:") || !strings.Contains(out, "48;2;200;0;0") {
		t.Errorf("RenderPreview() = %q", out)
	}
}

func TestDownsampleImageSmallerThanPreview(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	preview := DownsampleImage(img, PreviewConfig{Width: 4, Height: 2})

	if len(preview) != 2 || len(preview[0]) != 4 {
		t.Fatalf("preview size = %dx%d, want 4x2", len(preview[0]), len(preview))
	}
	if preview[1][3] != (color.RGBA{}) {
		t.Errorf("cell past the image = %v, want zero", preview[1][3])
	}
}
