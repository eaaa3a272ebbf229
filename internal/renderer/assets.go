package renderer

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/linuxmatters/jivewave/internal/config"
)

// textColor is the brand yellow used for labels
func textColor() color.RGBA {
	return color.RGBA{R: config.TextColorR, G: config.TextColorG, B: config.TextColorB, A: 255}
}

// LoadBackgroundImage loads a PNG and scales it to width x height
func LoadBackgroundImage(filename string, width, height int) (*image.RGBA, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode background %s: %w", filename, err)
	}

	return scaleImage(img, width, height), nil
}

func scaleImage(img image.Image, width, height int) *image.RGBA {
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, width, height))

	if bounds.Dx() != width || bounds.Dy() != height {
		draw.ApproxBiLinear.Scale(rgba, rgba.Bounds(), img, bounds, draw.Src, nil)
	} else {
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	return rgba
}

// LoadFont loads a TrueType font from fontPath, or the Go regular font when
// fontPath is empty
func LoadFont(fontPath string, size float64) (font.Face, error) {
	fontBytes := goregular.TTF
	if fontPath != "" {
		var err error
		fontBytes, err = os.ReadFile(fontPath)
		if err != nil {
			return nil, err
		}
	}

	f, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// DrawLabel draws text in the top left corner, offset pixels from the edges
func DrawLabel(img *image.RGBA, face font.Face, text string, offset int) {
	if text == "" {
		return
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(textColor()),
		Face: face,
	}

	bounds, _ := d.BoundString(text)
	textHeight := (bounds.Max.Y - bounds.Min.Y).Ceil()

	d.Dot = freetype.Pt(offset, textHeight+offset)
	d.DrawString(text)
}

// SavePNG writes img to path
func SavePNG(img image.Image, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := png.Encode(out, img); err != nil {
		out.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return out.Close()
}
