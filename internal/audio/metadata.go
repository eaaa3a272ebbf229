package audio

import (
	"fmt"
	"time"
)

// AudioMetadata holds information about an audio file
type AudioMetadata struct {
	MediaType  string
	SampleRate int
	Channels   int
	BitDepth   int
	NumFrames  int64
	Duration   time.Duration
}

// GetAudioMetadata opens filename with the built-in decoders and reports its
// format without decoding any samples
func GetAudioMetadata(filename string) (*AudioMetadata, error) {
	dec, err := Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer dec.Close()

	format := dec.Format()
	return &AudioMetadata{
		MediaType:  format.MediaType,
		SampleRate: format.SampleRate,
		Channels:   format.Channels,
		BitDepth:   format.BitDepth,
		NumFrames:  format.NumFrames,
		Duration:   format.Duration(),
	}, nil
}
