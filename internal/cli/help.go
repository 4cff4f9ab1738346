package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
)

// Custom help styles - tape theme
var (
	helpTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(TapeTeal).
			MarginBottom(1)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(TapeAmber).
			Italic(true).
			MarginBottom(1)

	helpSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(TapeAmber).
				MarginTop(1)

	helpFlagStyle = lipgloss.NewStyle().
			Foreground(TapeCyan).
			Bold(true)

	helpArgStyle = lipgloss.NewStyle().
			Foreground(TapeCoral).
			Bold(true)

	helpDefaultStyle = lipgloss.NewStyle().
				Foreground(SlateGray).
				Italic(true)
)

// StyledHelpPrinter creates a custom help printer with Lipgloss styling.
// Flags are listed under their kong group title, ungrouped flags first.
func StyledHelpPrinter(options kong.HelpOptions) kong.HelpPrinter {
	return kong.HelpPrinter(func(options kong.HelpOptions, ctx *kong.Context) error {
		var sb strings.Builder

		sb.WriteString(helpTitleStyle.Render(Name))
		sb.WriteString("\n")
		sb.WriteString(helpDescStyle.Render(Description))
		sb.WriteString("\n")

		// Usage
		sb.WriteString(helpSectionStyle.Render("Usage:"))
		sb.WriteString("\n  ")
		sb.WriteString(fmt.Sprintf("%s <input> [flags]", ctx.Model.Name))
		sb.WriteString("\n")

		args := getArguments(ctx)
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

		for _, section := range getFlagSections(ctx) {
			sb.WriteString("\n")
			sb.WriteString(helpSectionStyle.Render(section.title + ":"))
			sb.WriteString("\n")
			for _, flag := range section.flags {
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
		fmt.Fprint(ctx.Stdout, sb.String())
		return nil
	})
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

type flagSection struct {
	title string
	flags []flag
}

func getArguments(ctx *kong.Context) []argument {
	var args []argument
	for _, arg := range ctx.Model.Node.Positional {
		args = append(args, argument{name: arg.Summary(), help: arg.Help})
	}
	return args
}

// getFlagSections groups flags by kong group, keeping declaration order.
func getFlagSections(ctx *kong.Context) []flagSection {
	general := flagSection{title: "Flags"}
	general.flags = append(general.flags, flag{
		flags: "-h, --help",
		help:  "Show context-sensitive help.",
	})

	var grouped []flagSection
	index := map[string]int{}

	for _, f := range ctx.Model.Node.Flags {
		if f.Name == "help" || f.Hidden {
			continue
		}
		entry := describeFlag(f)

		if f.Group == nil {
			general.flags = append(general.flags, entry)
			continue
		}
		i, ok := index[f.Group.Title]
		if !ok {
			i = len(grouped)
			index[f.Group.Title] = i
			grouped = append(grouped, flagSection{title: f.Group.Title})
		}
		grouped[i].flags = append(grouped[i].flags, entry)
	}

	return append([]flagSection{general}, grouped...)
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

	return flag{flags: flagStr, help: f.Help, defaultVal: defaultVal}
}
