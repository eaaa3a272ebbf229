package cli

import "github.com/charmbracelet/lipgloss"

// Shared palette for the CLI help, print helpers and the player UI
var (
	// Core colours (dark to bright)
	BrandRed    = lipgloss.Color("#A40000") // Played waveform
	FireRed     = lipgloss.Color("#FF4500") // Orange-red
	FireOrange  = lipgloss.Color("#FF8C00") // Deep orange
	BrandYellow = lipgloss.Color("#F8B31D") // Labels and highlights

	// Accent colours
	WarmGray  = lipgloss.Color("#B8860B") // Dark goldenrod for subtle text
	WaveGray  = lipgloss.Color("#606060") // Unplayed waveform
	MutedGray = lipgloss.Color("#888888")
)
