package audio

import "math"

// toPCM16 scales an integer sample of the given bit depth to 16 bits.
// 8-bit samples are unsigned in WAV and are recentred first when unsigned is set.
func toPCM16(v int, bitDepth int, unsigned bool) int16 {
	if unsigned {
		v -= 128
	}
	switch {
	case bitDepth == 16:
		return clamp16(v)
	case bitDepth < 16:
		return clamp16(v << (16 - bitDepth))
	default:
		return clamp16(v >> (bitDepth - 16))
	}
}

// floatToPCM16 clamps a float sample to [-1, 1] and scales it by 32767
func floatToPCM16(f float32) int16 {
	if math.IsNaN(float64(f)) {
		return 0
	}
	if f > 1 {
		f = 1
	} else if f < -1 {
		f = -1
	}
	return int16(f * math.MaxInt16)
}

func clamp16(v int) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
