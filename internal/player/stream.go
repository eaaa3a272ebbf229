package player

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"github.com/linuxmatters/jivewave/internal/audio"
)

type streamDecoder func(f *os.File) (beep.StreamSeekCloser, beep.Format, error)

// Containers beep can stream and seek directly
var streamDecoders = map[string]streamDecoder{
	audio.MediaTypeMP3: func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
		return mp3.Decode(f)
	},
	audio.MediaTypeWAV: func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
		return wav.Decode(f)
	},
	audio.MediaTypeFLAC: func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
		return flac.Decode(f)
	},
	audio.MediaTypeVorbis: func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
		return vorbis.Decode(f)
	},
}

// openStream decodes path into a seekable stream. Containers beep cannot
// read are decoded in full through the audio registry. The caller closes
// the stream.
func openStream(path string) (beep.StreamSeekCloser, beep.Format, error) {
	mediaType, err := audio.Probe(path)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("%s: %w", path, err)
	}

	decode, ok := streamDecoders[mediaType]
	if !ok {
		return bufferStream(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}
	streamer, format, err := decode(f)
	if err != nil {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("%s: failed to decode %s: %w", path, mediaType, err)
	}
	return streamer, format, nil
}

// bufferStream decodes the whole file into memory
func bufferStream(path string) (beep.StreamSeekCloser, beep.Format, error) {
	dec, err := audio.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}
	defer dec.Close()

	format := beep.Format{
		SampleRate:  beep.SampleRate(dec.Format().SampleRate),
		NumChannels: 2,
		Precision:   2,
	}

	src := &pcmStreamer{dec: dec, channels: max(dec.Format().Channels, 1)}
	buffer := beep.NewBuffer(format)
	buffer.Append(src)
	if src.err != nil {
		return nil, beep.Format{}, fmt.Errorf("%s: %w", path, src.err)
	}

	return nopSeekCloser{buffer.Streamer(0, buffer.Len())}, format, nil
}

// pcmStreamer adapts an audio.Decoder to beep. Mono is duplicated to both
// sides; channels past the second are dropped.
type pcmStreamer struct {
	dec      audio.Decoder
	channels int
	buf      []int16
	pos      int
	err      error
}

func (s *pcmStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	for n < len(samples) {
		if s.pos >= len(s.buf) {
			chunk, err := s.dec.ReadChunk(len(samples) - n)
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				s.err = err
				break
			}
			if len(chunk) == 0 {
				break
			}
			s.buf, s.pos = chunk, 0
			continue
		}

		left := float64(s.buf[s.pos]) / 32768
		right := left
		if s.channels > 1 {
			right = float64(s.buf[s.pos+1]) / 32768
		}
		samples[n] = [2]float64{left, right}
		s.pos += s.channels
		n++
	}
	return n, n > 0
}

func (s *pcmStreamer) Err() error {
	return s.err
}

type nopSeekCloser struct {
	beep.StreamSeeker
}

func (nopSeekCloser) Close() error { return nil }
