package waveform

import "github.com/linuxmatters/jivewave/internal/config"

// FromSamples reduces mono PCM to at most n bars in [0, 1].
//
// With at least n samples the result has exactly n bars, each the peak
// absolute sample of an equal-length segment, normalised so the loudest bar
// is 1.0. With fewer samples than n each sample becomes its own bar scaled by
// full scale, without normalisation.
func FromSamples(samples []int16, n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	if len(samples)/n <= 0 {
		return Downsample(samples, n)
	}
	return Normalize(Downsample(samples, n))
}

// Downsample returns the peak absolute sample of each of n equal segments.
// Samples past n*(len/n) are not covered by any segment.
// When there are fewer samples than segments it returns |sample|/32767 for
// every sample instead.
func Downsample(samples []int16, n int) []float64 {
	if n <= 0 {
		return []float64{}
	}

	samplesPerBar := len(samples) / n
	if samplesPerBar <= 0 {
		bars := make([]float64, len(samples))
		for i, s := range samples {
			bars[i] = min(float64(abs16(s))/config.PCMFullScale, 1.0)
		}
		return bars
	}

	bars := make([]float64, n)
	for i := range bars {
		start := i * samplesPerBar
		end := min((i+1)*samplesPerBar, len(samples))

		var peak int
		for _, s := range samples[start:end] {
			if a := abs16(s); a > peak {
				peak = a
			}
		}
		bars[i] = float64(peak)
	}
	return bars
}

// Normalize scales bars in place so the largest becomes 1.0 and returns them.
// All-zero input is left untouched.
func Normalize(bars []float64) []float64 {
	var peak float64
	for _, b := range bars {
		if b > peak {
			peak = b
		}
	}
	if peak <= 0 {
		return bars
	}
	for i := range bars {
		bars[i] /= peak
	}
	return bars
}

// FirstChannel appends the first channel of interleaved pcm to dst
func FirstChannel(dst, pcm []int16, channels int) []int16 {
	if channels <= 1 {
		return append(dst, pcm...)
	}
	for i := 0; i < len(pcm); i += channels {
		dst = append(dst, pcm[i])
	}
	return dst
}

func abs16(s int16) int {
	v := int(s)
	if v < 0 {
		return -v
	}
	return v
}
