package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
)

// go-mp3 always outputs interleaved 16-bit little-endian stereo
const (
	mp3Channels   = 2
	mp3FrameBytes = 4
)

// mp3Stream is the subset of *mp3.Decoder in use, split out for tests
type mp3Stream interface {
	io.Reader
	SampleRate() int
	Length() int64
}

// MP3Decoder implements Decoder for MP3 files
type MP3Decoder struct {
	stream  mp3Stream
	closer  io.Closer
	format  Format
	buf     []byte
	pending []byte
}

// OpenMP3 creates an MP3 decoder over rc
func OpenMP3(rc io.ReadSeekCloser) (Decoder, error) {
	decoder, err := mp3.NewDecoder(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to create MP3 decoder: %w", err)
	}
	return newMP3Decoder(decoder, rc), nil
}

func newMP3Decoder(stream mp3Stream, closer io.Closer) *MP3Decoder {
	// Length is in bytes, or negative when the source cannot seek
	var numFrames int64
	if length := stream.Length(); length > 0 {
		numFrames = length / mp3FrameBytes
	}

	return &MP3Decoder{
		stream: stream,
		closer: closer,
		format: Format{
			MediaType:  MediaTypeMP3,
			SampleRate: stream.SampleRate(),
			Channels:   mp3Channels,
			NumFrames:  numFrames,
		},
	}
}

// Format returns the track format
func (d *MP3Decoder) Format() Format {
	return d.format
}

// ReadChunk reads the next chunk of interleaved stereo samples
func (d *MP3Decoder) ReadChunk(numFrames int) ([]int16, error) {
	want := numFrames * mp3FrameBytes
	if cap(d.buf) < want {
		d.buf = make([]byte, want)
	}
	buf := d.buf[:want]

	// Carry over a partial frame from the previous read
	n := copy(buf, d.pending)
	d.pending = d.pending[:0]

	for n < want {
		m, err := d.stream.Read(buf[n:])
		n += m
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read MP3 data: %w", err)
		}
		if m == 0 {
			break
		}
	}

	whole := n - n%mp3FrameBytes
	d.pending = append(d.pending, buf[whole:n]...)
	if whole == 0 {
		return nil, io.EOF
	}

	samples := make([]int16, whole/2)
	for i := range samples {
		samples[i] = int16(uint16(buf[2*i]) | uint16(buf[2*i+1])<<8)
	}
	return samples, nil
}

// Close closes the decoder and releases resources
func (d *MP3Decoder) Close() error {
	if d.closer != nil {
		err := d.closer.Close()
		d.closer = nil
		return err
	}
	return nil
}
