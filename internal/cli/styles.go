package cli

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	primaryColor   = BrandRed
	accentColor    = FireOrange
	successColor   = lipgloss.Color("#00AA00") // Green
	mutedColor     = MutedGray
	highlightColor = BrandYellow
	textColor      = lipgloss.Color("#FFFFFF") // White
)

// Styles
var (
	// Title style - bold brand red
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	// Subtitle style - muted gray
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	// Section header style
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor).
			MarginTop(1).
			MarginBottom(1)

	// Success message style
	SuccessStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(successColor)

	// Error message style
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	// Highlight style for important values
	HighlightStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(highlightColor)

	// Key-value pair styles
	KeyStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	ValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor)

	// Box style for framed content
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(1, 2).
			MarginTop(1).
			MarginBottom(1)
)

// PrintBanner prints the application banner
func PrintBanner() {
	fmt.Println(TitleStyle.Render("Jivewave 〰"))
	fmt.Println(SubtitleStyle.Render(Description))
	fmt.Println()
}

// PrintVersion prints version information
func PrintVersion(version string) {
	fmt.Println(TitleStyle.Render("Jivewave 〰"))
	fmt.Printf("%s %s\n", KeyStyle.Render("Version:"), ValueStyle.Render(version))
	fmt.Println()
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorStyle.Render("Error:"), message)
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Printf("%s %s\n", HighlightStyle.Render("Warning:"), message)
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("%s %s\n", SuccessStyle.Render("✓"), message)
}

// PrintInfo prints an informational message
func PrintInfo(key, value string) {
	fmt.Printf("%s %s\n", KeyStyle.Render(key+":"), ValueStyle.Render(value))
}

// PrintSection prints a section header
func PrintSection(title string) {
	fmt.Println(HeaderStyle.Render(title))
}

// PrintBox prints content in a styled box
func PrintBox(content string) {
	fmt.Println(BoxStyle.Render(content))
}

// FormatDuration formats a duration nicely
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", d.Seconds()*1000)
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// FormatClock formats milliseconds as m:ss, or h:mm:ss from an hour up.
// Negative values format as zero.
func FormatClock(ms int64) string {
	total := max(ms, 0) / 1000
	h, m, s := total/3600, (total/60)%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatBytes formats bytes into human-readable format
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders bar values in [0, 1] as block characters
func Sparkline(bars []float64) string {
	var b strings.Builder
	top := len(sparkLevels) - 1
	for _, v := range bars {
		if math.IsNaN(v) {
			v = 0
		}
		level := int(min(max(v, 0), 1)*float64(top) + 0.5)
		b.WriteRune(sparkLevels[level])
	}
	return b.String()
}

// PrintMetadataSummary prints audio file details in a box
func PrintMetadataSummary(path, mediaType string, sampleRate, channels, bitDepth int, duration time.Duration, size int64) {
	var b strings.Builder

	b.WriteString(SuccessStyle.Render("✓ " + path))
	b.WriteString("\n\n")

	rows := []struct{ key, value string }{
		{"Codec:      ", mediaType},
		{"Sample Rate:", fmt.Sprintf("%d Hz", sampleRate)},
		{"Channels:   ", fmt.Sprintf("%d", channels)},
		{"Duration:   ", FormatClock(duration.Milliseconds())},
		{"File Size:  ", FormatBytes(size)},
	}
	if bitDepth > 0 {
		rows = append(rows, struct{ key, value string }{"Bit Depth:  ", fmt.Sprintf("%d", bitDepth)})
	}

	for i, row := range rows {
		b.WriteString(KeyStyle.Render(row.key) + " ")
		b.WriteString(ValueStyle.Render(row.value))
		if i < len(rows)-1 {
			b.WriteString("\n")
		}
	}

	PrintBox(b.String())
}
