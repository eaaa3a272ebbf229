package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/linuxmatters/jivewave/internal/audio/audiotest"
)

func TestNewEnvDefaults(t *testing.T) {
	var logs bytes.Buffer
	e, err := newEnv(context.Background(), &Globals{}, &logs)
	if err != nil {
		t.Fatalf("newEnv() error = %v", err)
	}

	if e.settings.Waveform.Bars != 150 {
		t.Errorf("Bars = %d, want 150", e.settings.Waveform.Bars)
	}
	e.logger.Debug("hidden")
	if logs.Len() != 0 {
		t.Errorf("debug logged at info level: %q", logs.String())
	}
}

func TestNewEnvConfigAndVerbose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jivewave.yaml")
	if err := os.WriteFile(path, []byte("waveform:\n  bars: 32\nlogging:\n  format: json\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var logs bytes.Buffer
	e, err := newEnv(context.Background(), &Globals{Config: path, Verbose: true}, &logs)
	if err != nil {
		t.Fatalf("newEnv() error = %v", err)
	}

	if e.settings.Waveform.Bars != 32 {
		t.Errorf("Bars = %d, want 32", e.settings.Waveform.Bars)
	}
	e.logger.Debug("visible")
	if !strings.Contains(logs.String(), `"msg":"visible"`) {
		t.Errorf("logs = %q, want a JSON debug record", logs.String())
	}
}

func TestNewEnvBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jivewave.yaml")
	if err := os.WriteFile(path, []byte("waveform:\n  bars: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := newEnv(context.Background(), &Globals{Config: path}, &bytes.Buffer{}); err == nil {
		t.Error("newEnv() accepted an invalid config")
	}
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "tone.wav")
	output := filepath.Join(dir, "tone.png")
	audiotest.WriteWAV(t, input, 8000, 16, 1, audiotest.Sine(8000, 8000, 440, 20000))

	e, err := newEnv(context.Background(), &Globals{}, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}

	cmd := &RenderCmd{Input: input, Output: output, Bars: 40, Progress: 0.5, Width: 200, Height: 40}
	if err := cmd.Run(e); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if info, err := os.Stat(output); err != nil || info.Size() == 0 {
		t.Errorf("output not written: %v", err)
	}
}

func TestRequireFile(t *testing.T) {
	dir := t.TempDir()
	if err := requireFile(filepath.Join(dir, "missing.wav")); err == nil {
		t.Error("requireFile() accepted a missing file")
	}
	if err := requireFile(dir); err == nil {
		t.Error("requireFile() accepted a directory")
	}
}

func TestQueueWarnings(t *testing.T) {
	files := []string{"/notes/a.mp3", "/notes/gone.wav", "/notes/memo.aiff", "/notes/b.flac"}
	queue := []string{"/notes/a.mp3", "/notes/memo.aiff", "/notes/b.flac"}

	got := queueWarnings(files, queue)

	want := []string{
		"skipping /notes/gone.wav: file not found",
		`memo.aiff: unrecognised extension ".aiff", decoding by content`,
	}
	if !slices.Equal(got, want) {
		t.Errorf("queueWarnings() = %q, want %q", got, want)
	}

	if got := queueWarnings(queue, queue); len(got) != 1 {
		t.Errorf("queueWarnings() for a clean queue = %q, want only the aiff notice", got)
	}
}
