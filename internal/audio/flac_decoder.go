package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
)

// flacFrames is the subset of *flac.Stream in use, split out for tests
type flacFrames interface {
	ParseNext() (*frame.Frame, error)
}

// FLACDecoder implements Decoder for FLAC files
type FLACDecoder struct {
	stream  flacFrames
	closer  io.Closer
	format  Format
	pending []int16 // Interleaved samples decoded but not yet returned
	eof     bool
}

// OpenFLAC creates a FLAC decoder over rc
func OpenFLAC(rc io.ReadSeekCloser) (Decoder, error) {
	// Parse FLAC stream - reads signature and StreamInfo block
	stream, err := flac.New(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to create FLAC decoder: %w", err)
	}

	info := stream.Info
	format := Format{
		MediaType:  MediaTypeFLAC,
		SampleRate: int(info.SampleRate),
		Channels:   int(info.NChannels),
		NumFrames:  int64(info.NSamples),
		BitDepth:   int(info.BitsPerSample),
	}
	if format.Channels < 1 {
		return nil, fmt.Errorf("%w: FLAC stream without channels", ErrUnsupportedFormat)
	}

	return newFLACDecoder(stream, rc, format), nil
}

func newFLACDecoder(stream flacFrames, closer io.Closer, format Format) *FLACDecoder {
	return &FLACDecoder{
		stream: stream,
		closer: closer,
		format: format,
	}
}

// Format returns the track format
func (d *FLACDecoder) Format() Format {
	return d.format
}

// ReadChunk reads the next chunk of interleaved samples
func (d *FLACDecoder) ReadChunk(numFrames int) ([]int16, error) {
	want := numFrames * d.format.Channels

	// Read FLAC frames until we have enough samples
	for len(d.pending) < want && !d.eof {
		f, err := d.stream.ParseNext()
		if errors.Is(err, io.EOF) {
			d.eof = true
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse FLAC frame: %w", err)
		}
		d.appendFrame(f)
	}

	if len(d.pending) == 0 {
		return nil, io.EOF
	}

	n := min(want, len(d.pending))
	samples := make([]int16, n)
	copy(samples, d.pending[:n])
	d.pending = append(d.pending[:0], d.pending[n:]...)
	return samples, nil
}

// appendFrame interleaves one FLAC frame's subframes into pending
func (d *FLACDecoder) appendFrame(f *frame.Frame) {
	channels := d.format.Channels
	if len(f.Subframes) < channels {
		channels = len(f.Subframes)
	}
	if channels == 0 {
		return
	}

	bitDepth := int(f.BitsPerSample)
	if bitDepth == 0 {
		bitDepth = d.format.BitDepth
	}

	// FLAC frames contain one subframe per channel
	frameSamples := len(f.Subframes[0].Samples)
	for i := 0; i < frameSamples; i++ {
		for ch := 0; ch < d.format.Channels; ch++ {
			var v int32
			if ch < channels && i < len(f.Subframes[ch].Samples) {
				v = f.Subframes[ch].Samples[i]
			}
			d.pending = append(d.pending, toPCM16(int(v), bitDepth, false))
		}
	}
}

// Close closes the decoder and releases resources
func (d *FLACDecoder) Close() error {
	if d.closer != nil {
		err := d.closer.Close()
		d.closer = nil
		return err
	}
	return nil
}
