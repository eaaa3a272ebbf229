// Package ui holds the Bubbletea models for the terminal player.
package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/linuxmatters/jivewave/internal/cli"
	"github.com/linuxmatters/jivewave/internal/config"
	"github.com/linuxmatters/jivewave/internal/player"
)

// Transport is the part of player.Manager the UI drives
type Transport interface {
	State() player.PlaybackState
	Queue() []string
	TogglePlayPause()
	PlayFile(index int)
	SeekToFraction(fraction float64)
	SkipBack(seconds int)
	SkipForward(seconds int)
	UpdatePosition()
}

// WaveformSource extracts the bars for a file
type WaveformSource func(ctx context.Context, path string) ([]float64, error)

// WaveformMsg delivers extracted bars for Path
type WaveformMsg struct {
	Path string
	Bars []float64
	Err  error
}

// ExtractProgress reports decoding progress of the running extraction
type ExtractProgress struct {
	FramesDecoded int64
	TotalFrames   int64
}

// tickMsg drives position polling
type tickMsg struct{}

// Options configures a Model
type Options struct {
	PollInterval time.Duration
	SkipSeconds  int
}

// DefaultOptions uses the config constants
func DefaultOptions() Options {
	return Options{
		PollInterval: config.PollInterval,
		SkipSeconds:  config.SkipSeconds,
	}
}

// Model is the transport UI: waveform seek bar, elapsed/total and keys
type Model struct {
	transport Transport
	source    WaveformSource
	opts      Options

	ctx    context.Context
	cancel context.CancelFunc

	state player.PlaybackState
	queue []string

	// Extracted bars by path; a nil entry means extraction is running
	waveforms  map[string][]float64
	extractErr map[string]error
	extract    ExtractProgress

	extractBar progress.Model
	width      int
	quitting   bool
}

// NewModel creates the player UI over transport
func NewModel(transport Transport, source WaveformSource, opts Options) *Model {
	ctx, cancel := context.WithCancel(context.Background())

	bar := progress.New(
		progress.WithGradient(string(cli.BrandRed), string(cli.BrandYellow)),
		progress.WithWidth(40),
		progress.WithoutPercentage(),
	)

	return &Model{
		transport:  transport,
		source:     source,
		opts:       opts,
		ctx:        ctx,
		cancel:     cancel,
		state:      transport.State(),
		queue:      transport.Queue(),
		waveforms:  make(map[string][]float64),
		extractErr: make(map[string]error),
		extractBar: bar,
		width:      80,
	}
}

// Init starts polling and the first extraction
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.extractCmd())
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.opts.PollInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// currentPath is the file shown: the loaded file, or the first queued one
func (m *Model) currentPath() string {
	index := max(m.state.CurrentFileIndex, 0)
	if index >= len(m.queue) {
		return ""
	}
	return m.queue[index]
}

// extractCmd starts extracting the current file unless already known
func (m *Model) extractCmd() tea.Cmd {
	path := m.currentPath()
	if path == "" || m.source == nil {
		return nil
	}
	if _, seen := m.waveforms[path]; seen {
		return nil
	}

	m.waveforms[path] = nil
	m.extract = ExtractProgress{}
	ctx, source := m.ctx, m.source

	return func() tea.Msg {
		bars, err := source(ctx, path)
		return WaveformMsg{Path: path, Bars: bars, Err: err}
	}
}

func (m *Model) refresh() tea.Cmd {
	m.state = m.transport.State()
	m.queue = m.transport.Queue()
	return m.extractCmd()
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.extractBar.Width = max(min(msg.Width-30, 50), 10)
		return m, nil

	case tickMsg:
		if m.quitting {
			return m, nil
		}
		if m.state.IsPlaying {
			m.transport.UpdatePosition()
		}
		return m, tea.Batch(m.refresh(), m.tick())

	case WaveformMsg:
		bars := msg.Bars
		if bars == nil {
			bars = []float64{}
		}
		m.waveforms[msg.Path] = bars
		if msg.Err != nil {
			m.extractErr[msg.Path] = msg.Err
		}
		return m, nil

	case ExtractProgress:
		m.extract = msg
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		m.cancel()
		return m, tea.Quit
	case " ":
		m.transport.TogglePlayPause()
	case "left", "h":
		m.transport.SkipBack(m.opts.SkipSeconds)
	case "right", "l":
		m.transport.SkipForward(m.opts.SkipSeconds)
	case "n":
		m.transport.PlayFile(m.state.CurrentFileIndex + 1)
	case "p":
		m.transport.PlayFile(max(m.state.CurrentFileIndex-1, 0))
	default:
		// 0-9 seek to tenths of the file
		if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
			m.transport.SeekToFraction(float64(key[0]-'0') / 10)
		} else {
			return m, nil
		}
	}

	return m, m.refresh()
}

// View renders the UI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(cli.BrandRed).
		Render("Jivewave 〰")
	s.WriteString(title)
	s.WriteString("\n\n")

	if len(m.queue) == 0 {
		s.WriteString(lipgloss.NewStyle().Faint(true).Render("No playable files."))
		s.WriteString("\n\n")
		s.WriteString(m.renderHelp())
		return m.frame(s.String())
	}

	path := m.currentPath()
	index := max(m.state.CurrentFileIndex, 0)
	fmt.Fprintf(&s, "%s %s  %s\n\n",
		statusIcon(m.state.Status()),
		lipgloss.NewStyle().Bold(true).Render(filepath.Base(path)),
		lipgloss.NewStyle().Faint(true).Render(fmt.Sprintf("%d/%d", index+1, len(m.queue))))

	width := max(m.width-8, 10)
	bars, known := m.waveforms[path]
	switch {
	case known && bars == nil:
		s.WriteString(lipgloss.NewStyle().Faint(true).Render("Extracting waveform..."))
		s.WriteString("\n")
		s.WriteString(m.extractBar.ViewAs(extractRatio(m.extract)))
	case m.extractErr[path] != nil:
		s.WriteString(lipgloss.NewStyle().Faint(true).Render("Waveform unavailable"))
	default:
		s.WriteString(RenderWave(bars, m.state.Progress(), width))
	}
	s.WriteString("\n\n")

	clock := fmt.Sprintf("%s / %s",
		cli.FormatClock(m.state.CurrentPositionMs),
		cli.FormatClock(m.state.DurationMs))
	s.WriteString(lipgloss.NewStyle().Foreground(cli.BrandYellow).Render(clock))
	if m.state.PlaybackSpeed != config.DefaultPlaybackSpeed {
		s.WriteString(lipgloss.NewStyle().Faint(true).Render(fmt.Sprintf("  %.2gx", m.state.PlaybackSpeed)))
	}
	s.WriteString("\n")

	if m.state.Err != nil {
		s.WriteString("\n")
		s.WriteString(cli.ErrorStyle.Render("Error: ") + m.state.Err.Error())
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(m.renderHelp())

	return m.frame(s.String())
}

func (m *Model) frame(content string) string {
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(cli.BrandRed).
		Padding(1, 2).
		Render(content) + "\n"
}

func (m *Model) renderHelp() string {
	return lipgloss.NewStyle().Faint(true).Render(
		fmt.Sprintf("space play/pause • ←/→ %ds • 0-9 seek • n/p next/prev • q quit", m.opts.SkipSeconds))
}

func statusIcon(s player.Status) string {
	switch s {
	case player.StatusPlaying:
		return "▶"
	case player.StatusPaused:
		return "⏸"
	case player.StatusEnded:
		return "■"
	case player.StatusFailed:
		return "✗"
	default:
		return "·"
	}
}

func extractRatio(p ExtractProgress) float64 {
	if p.TotalFrames <= 0 {
		return 0
	}
	return min(float64(p.FramesDecoded)/float64(p.TotalFrames), 1)
}

var waveBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderWave draws bars as a one-line waveform width cells wide. Columns
// before progress use the played colour. Each column shows the peak of the
// bars it covers.
func RenderWave(bars []float64, progress float64, width int) string {
	if len(bars) == 0 || width <= 0 {
		return ""
	}

	cols := resampleBars(bars, width)
	played := int(min(max(progress, 0), 1) * float64(len(cols)))

	playedStyle := lipgloss.NewStyle().Foreground(cli.BrandRed)
	unplayedStyle := lipgloss.NewStyle().Foreground(cli.WaveGray)

	var head, tail strings.Builder
	for i, v := range cols {
		idx := int(min(max(v, 0), 1) * float64(len(waveBlocks)-1))
		if i < played {
			head.WriteRune(waveBlocks[idx])
		} else {
			tail.WriteRune(waveBlocks[idx])
		}
	}

	return playedStyle.Render(head.String()) + unplayedStyle.Render(tail.String())
}

// resampleBars maps bars onto width columns, keeping the peak per column.
// With fewer bars than columns each bar spans several columns.
func resampleBars(bars []float64, width int) []float64 {
	cols := make([]float64, width)
	n := len(bars)
	for c := range cols {
		start := c * n / width
		end := max((c+1)*n/width, start+1)
		peak := 0.0
		for _, v := range bars[start:min(end, n)] {
			peak = max(peak, v)
		}
		cols[c] = peak
	}
	return cols
}
