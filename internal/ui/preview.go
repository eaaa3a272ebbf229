package ui

import (
	"fmt"
	"image"
	"image/color"
	"strings"
)

// PreviewConfig holds the size of a terminal image preview
type PreviewConfig struct {
	Width  int // Width in terminal cells
	Height int // Height in terminal cells
}

// DefaultPreviewConfig returns a preview sized for the default 5:1 waveform render
func DefaultPreviewConfig() PreviewConfig {
	return PreviewConfig{
		Width:  72,
		Height: 8,
	}
}

// DownsampleImage averages each cell-sized region of img into one colour.
// Images smaller than the preview map one pixel to each cell.
func DownsampleImage(img image.Image, cfg PreviewConfig) [][]color.RGBA {
	bounds := img.Bounds()
	srcWidth := bounds.Dx()
	srcHeight := bounds.Dy()

	cellWidth := max(srcWidth/max(cfg.Width, 1), 1)
	cellHeight := max(srcHeight/max(cfg.Height, 1), 1)

	preview := make([][]color.RGBA, cfg.Height)
	for row := 0; row < cfg.Height; row++ {
		preview[row] = make([]color.RGBA, cfg.Width)
		for col := 0; col < cfg.Width; col++ {
			srcX := bounds.Min.X + col*cellWidth
			srcY := bounds.Min.Y + row*cellHeight

			var sumR, sumG, sumB uint32
			pixelCount := 0

			for y := srcY; y < srcY+cellHeight && y < bounds.Max.Y; y++ {
				for x := srcX; x < srcX+cellWidth && x < bounds.Max.X; x++ {
					r, g, b, _ := img.At(x, y).RGBA()
					// RGBA() returns 16-bit values
					sumR += r >> 8
					sumG += g >> 8
					sumB += b >> 8
					pixelCount++
				}
			}

			if pixelCount > 0 {
				preview[row][col] = color.RGBA{
					R: uint8(sumR / uint32(pixelCount)),
					G: uint8(sumG / uint32(pixelCount)),
					B: uint8(sumB / uint32(pixelCount)),
					A: 255,
				}
			}
		}
	}

	return preview
}

// RenderPreview draws a preview grid with ANSI 24-bit background colours
func RenderPreview(title string, preview [][]color.RGBA) string {
	if len(preview) == 0 {
		return ""
	}

	var b strings.Builder
	border := strings.Repeat("─", len(preview[0]))

	fmt.Fprintf(&b, "  %s:\n", title)
	b.WriteString("  ┌" + border + "┐\n")
	for _, row := range preview {
		b.WriteString("  │")
		for _, pixel := range row {
			// \x1b[48;2;R;G;Bm sets the background colour of one cell
			fmt.Fprintf(&b, "\x1b[48;2;%d;%d;%dm \x1b[0m", pixel.R, pixel.G, pixel.B)
		}
		b.WriteString("│\n")
	}
	b.WriteString("  └" + border + "┘\n")

	return b.String()
}
