package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
)

// Custom help styles
var (
	helpTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(BrandYellow).
			MarginBottom(1)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(FireOrange).
			Italic(true).
			MarginBottom(1)

	helpSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(FireOrange).
				MarginTop(1)

	helpFlagStyle = lipgloss.NewStyle().
			Foreground(BrandYellow).
			Bold(true)

	helpArgStyle = lipgloss.NewStyle().
			Foreground(FireRed).
			Bold(true)

	helpDefaultStyle = lipgloss.NewStyle().
				Foreground(WarmGray).
				Italic(true)
)

// Description is the one-line summary shown under the title
const Description = "Waveforms and playback for voice notes and podcast audio."

// StyledHelpPrinter creates a custom help printer with Lipgloss styling.
// Help for a selected command lists that command's arguments and flags.
func StyledHelpPrinter(options kong.HelpOptions) kong.HelpPrinter {
	return kong.HelpPrinter(func(options kong.HelpOptions, ctx *kong.Context) error {
		fmt.Fprint(ctx.Stdout, renderHelp(ctx.Model.Node, ctx.Selected()))
		return nil
	})
}

func renderHelp(root, selected *kong.Node) string {
	var sb strings.Builder

	node := root
	if selected != nil {
		node = selected
	}

	sb.WriteString(helpTitleStyle.Render("Jivewave 〰"))
	sb.WriteString("\n")
	desc := Description
	if node != root && node.Help != "" {
		desc = node.Help
	}
	sb.WriteString(helpDescStyle.Render(desc))
	sb.WriteString("\n")

	// Usage
	sb.WriteString(helpSectionStyle.Render("Usage:"))
	sb.WriteString("\n  ")
	sb.WriteString(usageLine(root, node))
	sb.WriteString("\n")

	// Commands section
	commands := getCommands(node)
	if len(commands) > 0 {
		sb.WriteString("\n")
		sb.WriteString(helpSectionStyle.Render("Commands:"))
		sb.WriteString("\n")
		for _, cmd := range commands {
			sb.WriteString("  ")
			sb.WriteString(helpArgStyle.Render(cmd.name))
			if cmd.help != "" {
				sb.WriteString("  ")
				sb.WriteString(cmd.help)
			}
			sb.WriteString("\n")
		}
	}

	// Arguments section
	args := getArguments(node)
	if len(args) > 0 {
		sb.WriteString("\n")
		sb.WriteString(helpSectionStyle.Render("Arguments:"))
		sb.WriteString("\n")
		for _, arg := range args {
			sb.WriteString("  ")
			sb.WriteString(helpArgStyle.Render(arg.name))
			if arg.help != "" {
				sb.WriteString("  ")
				sb.WriteString(arg.help)
			}
			sb.WriteString("\n")
		}
	}

	// Flags section
	flags := getFlags(root, node)
	if len(flags) > 0 {
		sb.WriteString("\n")
		sb.WriteString(helpSectionStyle.Render("Flags:"))
		sb.WriteString("\n")
		for _, flag := range flags {
			sb.WriteString("  ")
			sb.WriteString(helpFlagStyle.Render(flag.flags))
			if flag.help != "" {
				sb.WriteString("  ")
				sb.WriteString(flag.help)
			}
			if flag.defaultVal != "" {
				sb.WriteString(" ")
				sb.WriteString(helpDefaultStyle.Render("(default: " + flag.defaultVal + ")"))
			}
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	return sb.String()
}

func usageLine(root, node *kong.Node) string {
	if node == root {
		return fmt.Sprintf("%s <command> [flags]", root.Name)
	}

	parts := []string{root.Name, node.Name}
	for _, arg := range node.Positional {
		parts = append(parts, arg.Summary())
	}
	parts = append(parts, "[flags]")
	return strings.Join(parts, " ")
}

type command struct {
	name string
	help string
}

type argument struct {
	name string
	help string
}

type flag struct {
	flags      string
	help       string
	defaultVal string
}

func getCommands(node *kong.Node) []command {
	var commands []command
	for _, child := range node.Children {
		if child.Hidden || child.Type != kong.CommandNode {
			continue
		}
		commands = append(commands, command{name: child.Name, help: child.Help})
	}
	return commands
}

func getArguments(node *kong.Node) []argument {
	var args []argument

	for _, arg := range node.Positional {
		args = append(args, argument{name: arg.Summary(), help: arg.Help})
	}

	return args
}

func getFlags(root, node *kong.Node) []flag {
	var flags []flag

	// Always include help flag
	flags = append(flags, flag{
		flags: "-h, --help",
		help:  "Show context-sensitive help.",
	})

	// Global flags live on the root, command flags on the command
	nodes := []*kong.Node{root}
	if node != root {
		nodes = append(nodes, node)
	}

	for _, n := range nodes {
		for _, f := range n.Flags {
			if f.Name == "help" || f.Hidden {
				continue
			}
			flags = append(flags, describeFlag(f))
		}
	}

	return flags
}

func describeFlag(f *kong.Flag) flag {
	flagStr := ""
	if f.Short != 0 {
		flagStr = fmt.Sprintf("-%c, --%s", f.Short, f.Name)
	} else {
		flagStr = fmt.Sprintf("--%s", f.Name)
	}

	if !f.IsBool() && f.PlaceHolder != "" {
		flagStr += "=" + strings.ToUpper(f.PlaceHolder)
	}

	// Only show default if it's a meaningful value (not empty, not type placeholder)
	defaultVal := ""
	if f.HasDefault && !f.IsBool() {
		val := f.Default
		if val != "" && val != "STRING" && val != "BOOL" {
			defaultVal = val
		}
	}

	return flag{
		flags:      flagStr,
		help:       f.Help,
		defaultVal: defaultVal,
	}
}
