package audio

import (
	"bytes"
	"fmt"
)

// SniffLen is the number of header bytes Sniff needs to identify a container
const SniffLen = 64

// Sniff identifies the audio track media type from a file header.
// A leading ID3v2 tag must already have been skipped (see ID3Size).
func Sniff(header []byte) (string, error) {
	switch {
	case len(header) >= 12 && (bytes.HasPrefix(header, []byte("RIFF")) || bytes.HasPrefix(header, []byte("RF64"))) &&
		bytes.Equal(header[8:12], []byte("WAVE")):
		return MediaTypeWAV, nil

	case len(header) >= 12 && bytes.HasPrefix(header, []byte("FORM")) &&
		(bytes.Equal(header[8:12], []byte("AIFF")) || bytes.Equal(header[8:12], []byte("AIFC"))):
		return MediaTypeAIFF, nil

	case bytes.HasPrefix(header, []byte("fLaC")):
		return MediaTypeFLAC, nil

	case bytes.HasPrefix(header, []byte("OggS")):
		return sniffOgg(header)

	case len(header) >= 8 && bytes.Equal(header[4:8], []byte("ftyp")):
		return MediaTypeMP4, nil

	case isMPEGAudioFrame(header):
		return MediaTypeMP3, nil
	}

	return "", ErrNoAudioTrack
}

// sniffOgg looks at the first logical packet of an Ogg stream to tell
// Vorbis from Opus
func sniffOgg(header []byte) (string, error) {
	const pageHeaderLen = 27
	if len(header) < pageHeaderLen {
		return "", fmt.Errorf("%w: truncated ogg page", ErrNoAudioTrack)
	}
	payload := pageHeaderLen + int(header[26])
	if payload >= len(header) {
		return "", fmt.Errorf("%w: truncated ogg page", ErrNoAudioTrack)
	}
	packet := header[payload:]

	switch {
	case bytes.HasPrefix(packet, []byte("\x01vorbis")):
		return MediaTypeVorbis, nil
	case bytes.HasPrefix(packet, []byte("OpusHead")):
		return MediaTypeOpus, nil
	}
	return "", fmt.Errorf("%w: ogg stream carries no audio codec", ErrNoAudioTrack)
}

// isMPEGAudioFrame checks for an MPEG audio frame sync with a valid layer,
// bitrate and sample rate index
func isMPEGAudioFrame(h []byte) bool {
	if len(h) < 4 {
		return false
	}
	if h[0] != 0xFF || h[1]&0xE0 != 0xE0 {
		return false
	}
	version := (h[1] >> 3) & 0x03
	layer := (h[1] >> 1) & 0x03
	bitrate := h[2] >> 4
	rate := (h[2] >> 2) & 0x03
	return version != 0x01 && layer != 0x00 && bitrate != 0x0F && rate != 0x03
}

// ID3Size returns the number of bytes taken by a leading ID3v2 tag, or 0
func ID3Size(header []byte) int64 {
	if len(header) < 10 || !bytes.HasPrefix(header, []byte("ID3")) {
		return 0
	}
	size := int64(header[6]&0x7F)<<21 | int64(header[7]&0x7F)<<14 |
		int64(header[8]&0x7F)<<7 | int64(header[9]&0x7F)
	size += 10
	// Footer present
	if header[5]&0x10 != 0 {
		size += 10
	}
	return size
}
