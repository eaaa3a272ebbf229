package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
)

// Opener builds a decoder over an open file positioned at its start.
// On success the decoder owns rc; on failure the caller closes it.
type Opener func(rc io.ReadSeekCloser) (Decoder, error)

// Registry maps media types to decoder openers
type Registry struct {
	mu      sync.RWMutex
	openers map[string]Opener
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{openers: make(map[string]Opener)}
}

// DefaultRegistry returns a registry with every built-in decoder
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(MediaTypeWAV, OpenWAV)
	r.Register(MediaTypeAIFF, OpenAIFF)
	r.Register(MediaTypeFLAC, OpenFLAC)
	r.Register(MediaTypeVorbis, OpenVorbis)
	r.Register(MediaTypeMP3, OpenMP3)
	return r
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Open opens path with the built-in decoders
func Open(path string) (Decoder, error) {
	defaultOnce.Do(func() {
		defaultRegistry = DefaultRegistry()
	})
	return defaultRegistry.Open(path)
}

// Register adds or replaces the opener for a media type
func (r *Registry) Register(mediaType string, open Opener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.openers[mediaType] = open
}

// Lookup returns the opener for a media type
func (r *Registry) Lookup(mediaType string) (Opener, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	open, ok := r.openers[mediaType]
	return open, ok
}

// MediaTypes lists the registered media types in sorted order
func (r *Registry) MediaTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.openers))
	for t := range r.openers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Open identifies the audio track of path and returns a decoder for it.
// The decoder owns the file handle.
func (r *Registry) Open(path string) (Decoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	mediaType, err := probe(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	open, ok := r.Lookup(mediaType)
	if !ok {
		f.Close()
		return nil, fmt.Errorf("%s: %w: %s", path, ErrUnsupportedCodec, mediaType)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, err
	}

	dec, err := open(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: failed to open %s decoder: %w", path, mediaType, err)
	}
	return dec, nil
}

// Probe reports the media type of the audio track in path
func Probe(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return probe(f)
}

// probe reads the file header, skipping any ID3v2 tag, and sniffs it
func probe(rs io.ReadSeeker) (string, error) {
	header, err := readHeader(rs, 0)
	if err != nil {
		return "", err
	}

	if skip := ID3Size(header); skip > 0 {
		if header, err = readHeader(rs, skip); err != nil {
			return "", err
		}
	}

	return Sniff(header)
}

func readHeader(rs io.ReadSeeker, offset int64) ([]byte, error) {
	if _, err := rs.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}
	header := make([]byte, SniffLen)
	n, err := io.ReadFull(rs, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return header[:n], nil
}
