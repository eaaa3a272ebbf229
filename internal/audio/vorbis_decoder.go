package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"
)

// vorbisStream is the subset of *oggvorbis.Reader in use, split out for tests
type vorbisStream interface {
	SampleRate() int
	Channels() int
	Length() int64
	Read([]float32) (int, error)
}

// VorbisDecoder implements Decoder for Ogg Vorbis files
type VorbisDecoder struct {
	stream vorbisStream
	closer io.Closer
	format Format
	buf    []float32
}

// OpenVorbis creates an Ogg Vorbis decoder over rc
func OpenVorbis(rc io.ReadSeekCloser) (Decoder, error) {
	reader, err := oggvorbis.NewReader(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vorbis decoder: %w", err)
	}
	if reader.Channels() < 1 {
		return nil, fmt.Errorf("%w: Vorbis stream without channels", ErrUnsupportedFormat)
	}
	return newVorbisDecoder(reader, rc), nil
}

func newVorbisDecoder(stream vorbisStream, closer io.Closer) *VorbisDecoder {
	// Length is per channel, 0 when the stream cannot seek to its last page
	numFrames := stream.Length()
	if numFrames < 0 {
		numFrames = 0
	}

	return &VorbisDecoder{
		stream: stream,
		closer: closer,
		format: Format{
			MediaType:  MediaTypeVorbis,
			SampleRate: stream.SampleRate(),
			Channels:   stream.Channels(),
			NumFrames:  numFrames,
		},
	}
}

// Format returns the track format
func (d *VorbisDecoder) Format() Format {
	return d.format
}

// ReadChunk reads the next chunk of interleaved samples
func (d *VorbisDecoder) ReadChunk(numFrames int) ([]int16, error) {
	want := numFrames * d.format.Channels
	if cap(d.buf) < want {
		d.buf = make([]float32, want)
	}
	buf := d.buf[:want]

	// Read returns the number of interleaved values decoded
	n := 0
	for n < want {
		m, err := d.stream.Read(buf[n:])
		n += m
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read Vorbis data: %w", err)
		}
		if m == 0 {
			break
		}
	}

	n -= n % d.format.Channels
	if n == 0 {
		return nil, io.EOF
	}

	samples := make([]int16, n)
	for i := 0; i < n; i++ {
		samples[i] = floatToPCM16(buf[i])
	}
	return samples, nil
}

// Close closes the decoder and releases resources
func (d *VorbisDecoder) Close() error {
	if d.closer != nil {
		err := d.closer.Close()
		d.closer = nil
		return err
	}
	return nil
}
