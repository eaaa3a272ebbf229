package config

import (
	"path/filepath"
	"strings"
	"time"
)

// Waveform settings
const (
	NumBars      = 150   // Bars per waveform
	PCMFullScale = 32767 // Largest positive 16-bit sample
	ChunkFrames  = 4096  // Frames requested per decoder read

	// DequeueTimeout bounds each wait for a decoded buffer so a stalled
	// decoder cannot spin the drain loop forever.
	DequeueTimeout = 10 * time.Millisecond

	// Give up on a decoder that has produced nothing for this long
	StallTimeout = 5 * time.Second

	// Decoded buffers queued ahead of the downsampler
	QueueDepth = 4
)

// Playback settings
const (
	PollInterval         = 100 * time.Millisecond
	SkipSeconds          = 10
	DefaultPlaybackSpeed = 1.0

	// Speaker output runs at a fixed rate; tracks are resampled to it
	SpeakerSampleRate = 44100
	SpeakerBuffer     = 100 * time.Millisecond
)

// Import settings
// Extensions accepted by the note importer. The extractor and player do not
// check extensions themselves; they rely on container sniffing.
var SupportedExtensions = []string{"mp3", "wav", "flac", "ogg", "opus", "m4a"}

// IsSupportedExtension reports whether path has one of SupportedExtensions
func IsSupportedExtension(path string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return false
	}
	for _, e := range SupportedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Appearance
const (
	// Played portion of the waveform (brand red) and unplayed portion (grey)
	PlayedColorR   = 164
	PlayedColorG   = 0
	PlayedColorB   = 0
	UnplayedColorR = 96
	UnplayedColorG = 96
	UnplayedColorB = 96

	// Label colour, brand yellow #F8B31D
	TextColorR = 248
	TextColorG = 179
	TextColorB = 29

	// PNG render defaults
	RenderWidth  = 1200
	RenderHeight = 240
	RenderBarGap = 2
)
