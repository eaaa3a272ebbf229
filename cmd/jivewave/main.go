package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/linuxmatters/jivewave/internal/audio"
	"github.com/linuxmatters/jivewave/internal/cli"
	"github.com/linuxmatters/jivewave/internal/config"
	"github.com/linuxmatters/jivewave/internal/logging"
	"github.com/linuxmatters/jivewave/internal/metrics"
)

// version is set via ldflags at build time
// Local dev builds: "dev"
// Release builds: git tag (e.g. "v0.1.0")
var version = "dev"

type versionFlag bool

// BeforeReset prints the version and exits before any command runs
func (v versionFlag) BeforeReset(app *kong.Kong) error {
	cli.PrintVersion(version)
	cli.PrintSection("Decoders")
	cli.PrintInfo("Media types", strings.Join(audio.DefaultRegistry().MediaTypes(), ", "))
	cli.PrintInfo("Extensions", strings.Join(config.SupportedExtensions, ", "))
	app.Exit(0)
	return nil
}

// Globals are flags shared by every command
type Globals struct {
	Config  string      `help:"YAML settings file." type:"existingfile" placeholder:"PATH"`
	Verbose bool        `short:"v" help:"Log at debug level."`
	Version versionFlag `help:"Show version information."`
}

var CLI struct {
	Globals

	Waveform WaveformCmd `cmd:"" help:"Print the waveform bars of an audio file."`
	Render   RenderCmd   `cmd:"" help:"Render the waveform of an audio file to a PNG."`
	Info     InfoCmd     `cmd:"" help:"Show codec, sample rate, channels and duration."`
	Play     PlayCmd     `cmd:"" help:"Play audio files with a waveform seek bar."`
}

// env is shared by every command's Run
type env struct {
	ctx      context.Context
	settings *config.Settings
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
}

func newEnv(ctx context.Context, g *Globals, logOut io.Writer) (*env, error) {
	settings := config.Default()
	if g.Config != "" {
		var err error
		settings, err = config.Load(g.Config)
		if err != nil {
			return nil, err
		}
	}
	if g.Verbose {
		settings.Logging.Level = "debug"
	}

	registry := prometheus.NewRegistry()
	return &env{
		ctx:      ctx,
		settings: settings,
		logger:   logging.New(settings.Logging, logOut),
		registry: registry,
		metrics:  metrics.NewMetrics(registry),
	}, nil
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("jivewave"),
		kong.Description(cli.Description),
		kong.Vars{
			"render_width":  strconv.Itoa(config.RenderWidth),
			"render_height": strconv.Itoa(config.RenderHeight),
		},
		kong.UsageOnError(),
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := newEnv(ctx, &CLI.Globals, os.Stderr)
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}

	if err := kctx.Run(e); err != nil {
		cli.PrintError(err.Error())
		stop()
		os.Exit(1)
	}
}

func requireFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("input file does not exist: %s", path)
	}
	if info.IsDir() {
		return fmt.Errorf("input is a directory: %s", path)
	}
	return nil
}
