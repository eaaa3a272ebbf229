package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/linuxmatters/jivewave/internal/audio"
	"github.com/linuxmatters/jivewave/internal/cli"
	"github.com/linuxmatters/jivewave/internal/config"
	"github.com/linuxmatters/jivewave/internal/logging"
	"github.com/linuxmatters/jivewave/internal/metrics"
	"github.com/linuxmatters/jivewave/internal/player"
	"github.com/linuxmatters/jivewave/internal/renderer"
	"github.com/linuxmatters/jivewave/internal/ui"
	"github.com/linuxmatters/jivewave/internal/waveform"
)

// WaveformCmd prints the bar sequence of a file
type WaveformCmd struct {
	Input string `arg:"" name:"input" help:"Audio file."`
	Bars  int    `help:"Number of bars (0 uses the settings file)." default:"0"`
	JSON  bool   `name:"json" help:"Print the bars as a JSON array."`
}

func (c *WaveformCmd) extractor(e *env) *waveform.Extractor {
	cfg := waveform.ConfigFromSettings(e.settings.Waveform)
	if c.Bars > 0 {
		cfg.Bars = c.Bars
	}
	return waveform.NewExtractor(cfg,
		waveform.WithLogger(e.logger),
		waveform.WithMetrics(e.metrics),
	)
}

// Run extracts and prints the waveform
func (c *WaveformCmd) Run(e *env) error {
	if err := requireFile(c.Input); err != nil {
		return err
	}

	bars, err := c.extractor(e).Extract(e.ctx, c.Input)
	if err != nil {
		return fmt.Errorf("extracting waveform: %w", err)
	}

	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		return enc.Encode(bars)
	}

	fmt.Println(cli.Sparkline(bars))
	return nil
}

// RenderCmd writes a waveform PNG
type RenderCmd struct {
	Input      string  `arg:"" name:"input" help:"Audio file."`
	Output     string  `arg:"" name:"output" help:"PNG file to write."`
	Bars       int     `help:"Number of bars (0 uses the settings file)." default:"0"`
	Progress   float64 `help:"Played fraction, 0 to 1." default:"0"`
	Width      int     `help:"Image width in pixels." default:"${render_width}"`
	Height     int     `help:"Image height in pixels." default:"${render_height}"`
	Label      string  `help:"Text drawn in the top left corner."`
	Font       string  `help:"TrueType font for the label (default Go Regular)." type:"existingfile"`
	Background string  `help:"PNG drawn under the bars." type:"existingfile"`
	Preview    bool    `help:"Print a terminal preview of the image."`
}

// Run renders the PNG
func (c *RenderCmd) Run(e *env) error {
	if err := requireFile(c.Input); err != nil {
		return err
	}
	if c.Width < 1 || c.Height < 2 {
		return fmt.Errorf("invalid image size %dx%d", c.Width, c.Height)
	}

	cli.PrintBanner()
	start := time.Now()

	wc := WaveformCmd{Input: c.Input, Bars: c.Bars}
	bars, err := wc.extractor(e).Extract(e.ctx, c.Input)
	if err != nil {
		return fmt.Errorf("extracting waveform: %w", err)
	}

	opts := renderer.DefaultOptions()
	opts.Width = c.Width
	opts.Height = c.Height
	opts.Label = c.Label

	if c.Background != "" {
		bg, err := renderer.LoadBackgroundImage(c.Background, c.Width, c.Height)
		if err != nil {
			return fmt.Errorf("loading background: %w", err)
		}
		opts.Background = bg
	}

	if c.Label != "" {
		face, err := renderer.LoadFont(c.Font, float64(c.Height)/8)
		if err != nil {
			return fmt.Errorf("loading font: %w", err)
		}
		defer face.Close()
		opts.LabelFace = face
	}

	img := renderer.RenderWaveform(bars, c.Progress, opts)
	if err := renderer.SavePNG(img, c.Output); err != nil {
		return fmt.Errorf("saving image: %w", err)
	}

	if c.Preview {
		preview := ui.DownsampleImage(img, ui.DefaultPreviewConfig())
		fmt.Print(ui.RenderPreview("Waveform Preview", preview))
	}
	cli.PrintSuccess(fmt.Sprintf("wrote %s (%d bars) in %s", c.Output, len(bars), cli.FormatDuration(time.Since(start))))
	return nil
}

// InfoCmd prints file details
type InfoCmd struct {
	Input string `arg:"" name:"input" help:"Audio file."`
}

// Run probes the file
func (c *InfoCmd) Run(e *env) error {
	info, err := os.Stat(c.Input)
	if err != nil {
		return fmt.Errorf("input file does not exist: %s", c.Input)
	}

	meta, err := audio.GetAudioMetadata(c.Input)
	if err != nil {
		return err
	}

	cli.PrintMetadataSummary(c.Input, meta.MediaType, meta.SampleRate, meta.Channels, meta.BitDepth, meta.Duration, info.Size())
	return nil
}

// PlayCmd runs the terminal player
type PlayCmd struct {
	Files       []string `arg:"" name:"files" help:"Audio files to queue."`
	MetricsAddr string   `help:"Serve Prometheus metrics on this address (overrides the settings file)." placeholder:"HOST:PORT"`
	LogFile     string   `help:"Write logs to this file while the player is open."`
	Paused      bool     `help:"Load the first file without starting playback."`
}

// Run opens the player UI until the user quits
func (c *PlayCmd) Run(e *env) error {
	// The terminal belongs to the UI, so logs go to a file or nowhere
	logger := logging.Discard()
	if c.LogFile != "" {
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		logger = logging.New(e.settings.Logging, f)
	}

	addr := e.settings.Metrics.Address
	if c.MetricsAddr != "" {
		addr = c.MetricsAddr
	}
	if addr != "" {
		go func() {
			if err := metrics.Serve(e.ctx, addr, e.registry, logger); err != nil {
				logger.Error("metrics server failed", "error", err)
			}
		}()
	}

	ps := e.settings.Player
	backend, err := player.NewSpeakerBackend(ps.SampleRate, config.SpeakerBuffer, logger)
	if err != nil {
		return fmt.Errorf("opening audio output: %w", err)
	}

	manager := player.NewManager(backend,
		player.WithLogger(logger),
		player.WithMetrics(e.metrics),
	)
	defer manager.Release()

	manager.SetAudioFiles(c.Files)
	warnings := queueWarnings(c.Files, manager.Queue())
	for _, w := range warnings {
		cli.PrintWarning(w)
		logger.Warn(w)
	}
	if len(manager.Queue()) == 0 {
		return fmt.Errorf("no playable files")
	}

	var program *tea.Program
	extractor := waveform.NewExtractor(waveform.ConfigFromSettings(e.settings.Waveform),
		waveform.WithLogger(logger),
		waveform.WithMetrics(e.metrics),
		waveform.WithProgress(func(done, total int64) {
			program.Send(ui.ExtractProgress{FramesDecoded: done, TotalFrames: total})
		}),
	)

	model := ui.NewModel(manager, extractor.Extract, ui.Options{
		PollInterval: ps.PollInterval(),
		SkipSeconds:  ps.SkipSeconds,
	})
	program = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(e.ctx))

	if !c.Paused {
		manager.PlayFile(0)
	}

	start := time.Now()
	if _, err := program.Run(); err != nil && e.ctx.Err() == nil {
		return fmt.Errorf("running UI: %w", err)
	}
	logger.Info("player closed", "elapsed", time.Since(start))
	return nil
}

// queueWarnings describes the files left out of queue and the queued files
// whose extension the importer would not accept
func queueWarnings(files, queue []string) []string {
	var warnings []string
	for _, f := range files {
		switch {
		case !slices.Contains(queue, f):
			warnings = append(warnings, fmt.Sprintf("skipping %s: file not found", f))
		case !config.IsSupportedExtension(f):
			warnings = append(warnings, fmt.Sprintf("%s: unrecognised extension %q, decoding by content", filepath.Base(f), filepath.Ext(f)))
		}
	}
	return warnings
}
