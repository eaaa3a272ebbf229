package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavFormatIEEEFloat = 3

// WAVDecoder implements Decoder for WAV files
type WAVDecoder struct {
	decoder *wav.Decoder
	closer  io.Closer
	format  Format
	intBuf  *audio.IntBuffer
}

// OpenWAV creates a WAV decoder over rc
func OpenWAV(rc io.ReadSeekCloser) (Decoder, error) {
	decoder := wav.NewDecoder(rc)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}

	// Get format info without reading all samples
	if err := decoder.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("failed to seek to PCM data: %w", err)
	}

	if decoder.WavAudioFormat == wavFormatIEEEFloat {
		return nil, fmt.Errorf("%w: floating point WAV", ErrUnsupportedFormat)
	}

	bitDepth := int(decoder.BitDepth)
	numChans := int(decoder.NumChans)
	if numChans < 1 || bitDepth < 8 || bitDepth > 32 {
		return nil, fmt.Errorf("%w: %d channels at %d bits", ErrUnsupportedFormat, numChans, bitDepth)
	}

	// PCMLen is the PCM payload in bytes
	frameBytes := int64(bitDepth/8) * int64(numChans)
	numFrames := decoder.PCMLen() / frameBytes

	return &WAVDecoder{
		decoder: decoder,
		closer:  rc,
		format: Format{
			MediaType:  MediaTypeWAV,
			SampleRate: int(decoder.SampleRate),
			Channels:   numChans,
			NumFrames:  numFrames,
			BitDepth:   bitDepth,
		},
	}, nil
}

// Format returns the track format
func (d *WAVDecoder) Format() Format {
	return d.format
}

// ReadChunk reads the next chunk of interleaved samples
func (d *WAVDecoder) ReadChunk(numFrames int) ([]int16, error) {
	// Need numFrames × numChannels values for interleaved data
	bufSize := numFrames * d.format.Channels
	if d.intBuf == nil || cap(d.intBuf.Data) < bufSize {
		d.intBuf = &audio.IntBuffer{
			Data: make([]int, bufSize),
			Format: &audio.Format{
				NumChannels: d.format.Channels,
				SampleRate:  d.format.SampleRate,
			},
			SourceBitDepth: d.format.BitDepth,
		}
	}
	d.intBuf.Data = d.intBuf.Data[:bufSize]

	n, err := d.decoder.PCMBuffer(d.intBuf)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read PCM buffer: %w", err)
	}

	// Drop any partial trailing frame
	n -= n % d.format.Channels
	if n == 0 {
		return nil, io.EOF
	}

	samples := make([]int16, n)
	unsigned := d.format.BitDepth == 8
	for i := 0; i < n; i++ {
		samples[i] = toPCM16(d.intBuf.Data[i], d.format.BitDepth, unsigned)
	}

	return samples, nil
}

// Close closes the decoder and releases resources
func (d *WAVDecoder) Close() error {
	if d.closer != nil {
		err := d.closer.Close()
		d.closer = nil
		return err
	}
	return nil
}
