package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
)

// AIFFDecoder implements Decoder for AIFF files
type AIFFDecoder struct {
	decoder *aiff.Decoder
	closer  io.Closer
	format  Format
	intBuf  *audio.IntBuffer
}

// OpenAIFF creates an AIFF decoder over rc
func OpenAIFF(rc io.ReadSeekCloser) (Decoder, error) {
	decoder := aiff.NewDecoder(rc)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("invalid AIFF file")
	}

	decoder.ReadInfo()
	if err := decoder.Err(); err != nil {
		return nil, fmt.Errorf("failed to read AIFF info: %w", err)
	}

	bitDepth := int(decoder.BitDepth)
	numChans := int(decoder.NumChans)
	if numChans < 1 || bitDepth < 8 || bitDepth > 32 {
		return nil, fmt.Errorf("%w: %d channels at %d bits", ErrUnsupportedFormat, numChans, bitDepth)
	}

	return &AIFFDecoder{
		decoder: decoder,
		closer:  rc,
		format: Format{
			MediaType:  MediaTypeAIFF,
			SampleRate: decoder.SampleRate,
			Channels:   numChans,
			NumFrames:  int64(decoder.NumSampleFrames),
			BitDepth:   bitDepth,
		},
	}, nil
}

// Format returns the track format
func (d *AIFFDecoder) Format() Format {
	return d.format
}

// ReadChunk reads the next chunk of interleaved samples
func (d *AIFFDecoder) ReadChunk(numFrames int) ([]int16, error) {
	bufSize := numFrames * d.format.Channels
	if d.intBuf == nil || cap(d.intBuf.Data) < bufSize {
		d.intBuf = &audio.IntBuffer{
			Data:           make([]int, bufSize),
			Format:         d.decoder.Format(),
			SourceBitDepth: d.format.BitDepth,
		}
	}
	d.intBuf.Data = d.intBuf.Data[:bufSize]

	n, err := d.decoder.PCMBuffer(d.intBuf)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read PCM buffer: %w", err)
	}

	n -= n % d.format.Channels
	if n == 0 {
		return nil, io.EOF
	}

	// AIFF samples are signed at every bit depth
	samples := make([]int16, n)
	for i := 0; i < n; i++ {
		samples[i] = toPCM16(d.intBuf.Data[i], d.format.BitDepth, false)
	}

	return samples, nil
}

// Close closes the decoder and releases resources
func (d *AIFFDecoder) Close() error {
	if d.closer != nil {
		err := d.closer.Close()
		d.closer = nil
		return err
	}
	return nil
}
