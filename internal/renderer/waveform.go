// Package renderer draws waveforms into RGBA images.
package renderer

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/font"

	"github.com/linuxmatters/jivewave/internal/config"
)

// Options controls RenderWaveform
type Options struct {
	Width  int
	Height int
	BarGap int

	Played   color.RGBA
	Unplayed color.RGBA

	// Background is copied under the bars when it matches Width x Height.
	// Use LoadBackgroundImage to scale one.
	Background *image.RGBA

	// Label is drawn in the top left corner with LabelFace
	Label     string
	LabelFace font.Face
}

// DefaultOptions returns the brand colours at the default render size
func DefaultOptions() Options {
	return Options{
		Width:    config.RenderWidth,
		Height:   config.RenderHeight,
		BarGap:   config.RenderBarGap,
		Played:   color.RGBA{R: config.PlayedColorR, G: config.PlayedColorG, B: config.PlayedColorB, A: 255},
		Unplayed: color.RGBA{R: config.UnplayedColorR, G: config.UnplayedColorG, B: config.UnplayedColorB, A: 255},
	}
}

// RenderWaveform draws bars mirrored about the horizontal centre line. Bars
// before progress (a fraction in [0, 1]) use the played colour. Bar values
// are clamped to [0, 1]; every bar is at least one pixel tall.
func RenderWaveform(bars []float64, progress float64, opts Options) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	if opts.Background != nil && opts.Background.Bounds() == img.Bounds() {
		copy(img.Pix, opts.Background.Pix)
	} else {
		clearBlack(img)
	}

	if len(bars) > 0 && opts.Width > 0 && opts.Height > 1 {
		drawBars(img, bars, clampUnit(progress), opts)
	}

	if opts.LabelFace != nil {
		DrawLabel(img, opts.LabelFace, opts.Label, opts.Height/16)
	}
	return img
}

func clearBlack(img *image.RGBA) {
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0
		img.Pix[i+1] = 0
		img.Pix[i+2] = 0
		img.Pix[i+3] = 255
	}
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return min(max(v, 0), 1)
}

func drawBars(img *image.RGBA, bars []float64, progress float64, opts Options) {
	n := len(bars)
	slot := float64(opts.Width) / float64(n)
	barWidth := max(1, int(slot)-opts.BarGap)
	centerY := opts.Height / 2
	maxHalf := centerY

	playedBars := int(progress * float64(n))

	for i, v := range bars {
		x0 := int(float64(i) * slot)
		x1 := min(x0+barWidth, opts.Width)

		half := max(1, int(clampUnit(v)*float64(maxHalf)))
		c := opts.Unplayed
		if i < playedBars {
			c = opts.Played
		}

		drawBar(img, x0, x1, centerY, half, c)
	}
}

// drawBar fills one bar symmetrically about centerY, fading from full
// colour at the centre to half strength at the tips
func drawBar(img *image.RGBA, x0, x1, centerY, half int, c color.RGBA) {
	height := img.Bounds().Dy()

	for d := 0; d < half; d++ {
		alpha := 1.0 - 0.5*float64(d)/float64(half)

		for _, y := range [2]int{centerY - 1 - d, centerY + d} {
			if y < 0 || y >= height {
				continue
			}
			row := y * img.Stride
			for x := x0; x < x1; x++ {
				blend(img.Pix[row+x*4:row+x*4+4], c, alpha)
			}
		}
	}
}

func blend(px []uint8, c color.RGBA, alpha float64) {
	inv := 1 - alpha
	px[0] = uint8(float64(c.R)*alpha + float64(px[0])*inv)
	px[1] = uint8(float64(c.G)*alpha + float64(px[1])*inv)
	px[2] = uint8(float64(c.B)*alpha + float64(px[2])*inv)
	px[3] = 255
}
