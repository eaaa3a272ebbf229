package renderer

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func testOptions() Options {
	opts := DefaultOptions()
	opts.Width = 100
	opts.Height = 40
	opts.BarGap = 0
	return opts
}

func rgbaAt(img *image.RGBA, x, y int) color.RGBA {
	return img.RGBAAt(x, y)
}

func TestRenderWaveformSplitsAtProgress(t *testing.T) {
	opts := testOptions()
	bars := []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1}

	img := RenderWaveform(bars, 0.5, opts)

	if got := img.Bounds(); got != image.Rect(0, 0, 100, 40) {
		t.Fatalf("Bounds() = %v, want 100x40", got)
	}

	// Centre rows are drawn at full strength
	centerY := opts.Height / 2
	for i := 0; i < 10; i++ {
		x := i*10 + 5
		want := opts.Unplayed
		if i < 5 {
			want = opts.Played
		}
		if got := rgbaAt(img, x, centerY); got != want {
			t.Errorf("bar %d centre = %v, want %v", i, got, want)
		}
	}
}

func TestRenderWaveformProgressBounds(t *testing.T) {
	opts := testOptions()
	bars := []float64{1, 1, 1, 1}
	centerY := opts.Height / 2

	testCases := []struct {
		name     string
		progress float64
		want     color.RGBA
	}{
		{"nothing played", 0, opts.Unplayed},
		{"all played", 1, opts.Played},
		{"past end", 3, opts.Played},
		{"negative", -1, opts.Unplayed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			img := RenderWaveform(bars, tc.progress, opts)
			for _, x := range []int{10, 90} {
				if got := rgbaAt(img, x, centerY); got != tc.want {
					t.Errorf("pixel at x=%d = %v, want %v", x, got, tc.want)
				}
			}
		})
	}
}

func TestRenderWaveformBarHeight(t *testing.T) {
	opts := testOptions()
	black := color.RGBA{A: 255}

	img := RenderWaveform([]float64{0, 0.5}, 0, opts)

	// A silent bar is a single pixel either side of the centre line
	if got := rgbaAt(img, 25, opts.Height/2-2); got != black {
		t.Errorf("silent bar above centre = %v, want black", got)
	}
	if got := rgbaAt(img, 25, opts.Height/2); got == black {
		t.Error("silent bar has no centre line")
	}

	// A half bar reaches a quarter of the height above and below the centre
	if got := rgbaAt(img, 75, opts.Height/2-9); got == black {
		t.Error("half bar missing pixels inside its height")
	}
	if got := rgbaAt(img, 75, opts.Height/2+9); got == black {
		t.Error("half bar missing mirrored pixels")
	}
	if got := rgbaAt(img, 75, 2); got != black {
		t.Errorf("half bar drawn to the top edge: %v", got)
	}
}

func TestRenderWaveformFadesToTips(t *testing.T) {
	opts := testOptions()
	img := RenderWaveform([]float64{1}, 1, opts)

	centre := rgbaAt(img, 50, opts.Height/2)
	tip := rgbaAt(img, 50, 0)
	if tip.R >= centre.R {
		t.Errorf("tip red %d not dimmer than centre red %d", tip.R, centre.R)
	}
	if tip.R < centre.R/2-1 {
		t.Errorf("tip red %d below half strength of %d", tip.R, centre.R)
	}
}

func TestRenderWaveformEmpty(t *testing.T) {
	opts := testOptions()
	img := RenderWaveform(nil, 0.5, opts)

	for y := 0; y < opts.Height; y++ {
		for x := 0; x < opts.Width; x++ {
			if got := rgbaAt(img, x, y); got != (color.RGBA{A: 255}) {
				t.Fatalf("pixel (%d,%d) = %v, want black", x, y, got)
			}
		}
	}
}

func TestRenderWaveformBackground(t *testing.T) {
	opts := testOptions()
	bg := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	grey := color.RGBA{R: 10, G: 20, B: 30, A: 255}
	for y := 0; y < opts.Height; y++ {
		for x := 0; x < opts.Width; x++ {
			bg.SetRGBA(x, y, grey)
		}
	}
	opts.Background = bg

	img := RenderWaveform([]float64{0}, 0, opts)

	if got := rgbaAt(img, 5, 2); got != grey {
		t.Errorf("background pixel = %v, want %v", got, grey)
	}
	// Background must not be drawn on
	if got := bg.RGBAAt(50, opts.Height/2); got != grey {
		t.Errorf("background modified: %v", got)
	}
}

func TestRenderWaveformLabel(t *testing.T) {
	face, err := LoadFont("", 14)
	if err != nil {
		t.Fatalf("LoadFont() error = %v", err)
	}
	defer face.Close()

	opts := testOptions()
	opts.Label = "01:23 / 04:56"
	opts.LabelFace = face

	img := RenderWaveform(nil, 0, opts)

	lit := 0
	for y := 0; y < opts.Height/2; y++ {
		for x := 0; x < opts.Width; x++ {
			if c := rgbaAt(img, x, y); c.R > 0 && c.R >= c.B {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("label drew no pixels")
	}
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wave.png")
	img := RenderWaveform([]float64{0.2, 0.9, 0.4}, 0.3, testOptions())

	if err := SavePNG(img, path); err != nil {
		t.Fatalf("SavePNG() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Errorf("decoded bounds = %v, want %v", decoded.Bounds(), img.Bounds())
	}
}

func TestLoadBackgroundImageScales(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			src.SetRGBA(x, y, color.RGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "bg.png")
	if err := SavePNG(src, path); err != nil {
		t.Fatal(err)
	}

	bg, err := LoadBackgroundImage(path, 32, 16)
	if err != nil {
		t.Fatalf("LoadBackgroundImage() error = %v", err)
	}
	if got := bg.Bounds(); got != image.Rect(0, 0, 32, 16) {
		t.Errorf("Bounds() = %v, want 32x16", got)
	}
	if got := bg.RGBAAt(16, 8); got.R < 190 {
		t.Errorf("scaled pixel = %v, want close to 200", got)
	}
}

func TestLoadFontMissing(t *testing.T) {
	if _, err := LoadFont(filepath.Join(t.TempDir(), "missing.ttf"), 12); err == nil {
		t.Error("LoadFont() with a missing file succeeded")
	}
}
