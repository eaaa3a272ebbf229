package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

type helpTestCLI struct {
	Config string `help:"Settings file." type:"path"`

	Render struct {
		Input    string  `arg:"" help:"Audio file."`
		Output   string  `arg:"" help:"PNG to write."`
		Progress float64 `help:"Played fraction." default:"0"`
	} `cmd:"" help:"Render a waveform PNG."`

	Info struct {
		Input string `arg:"" help:"Audio file."`
	} `cmd:"" help:"Show file details."`
}

func parseHelp(t *testing.T, args ...string) string {
	t.Helper()

	var out bytes.Buffer
	var c helpTestCLI
	parser, err := kong.New(&c,
		kong.Name("jivewave"),
		kong.Help(StyledHelpPrinter(kong.HelpOptions{})),
		kong.Writers(&out, &out),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		t.Fatalf("kong.New() error = %v", err)
	}

	_, _ = parser.Parse(args)
	return out.String()
}

func TestHelpListsCommands(t *testing.T) {
	help := parseHelp(t, "--help")

	for _, want := range []string{"Jivewave", "render", "Render a waveform PNG.", "info", "--config"} {
		if !strings.Contains(help, want) {
			t.Errorf("root help missing %q:\n%s", want, help)
		}
	}
}

func TestHelpForCommand(t *testing.T) {
	help := parseHelp(t, "render", "--help")

	for _, want := range []string{"jivewave render", "<input>", "<output>", "--progress", "--config", "PNG to write."} {
		if !strings.Contains(help, want) {
			t.Errorf("render help missing %q:\n%s", want, help)
		}
	}
	if strings.Contains(help, "Show file details.") {
		t.Errorf("render help lists other commands:\n%s", help)
	}
}
