package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gnana997/uitheme/pkg/content"
	"github.com/gnana997/uitheme/pkg/theme"
)

const swatchWidth = 4

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b"))
)

// swatch renders a block of the token's color. Values lipgloss cannot
// paint (CSS functions, var() references) get blank padding.
func swatch(value string, styled bool) string {
	blank := strings.Repeat(" ", swatchWidth)
	if !styled || !strings.HasPrefix(value, "#") {
		return blank
	}
	return lipgloss.NewStyle().Background(lipgloss.Color(value)).Render(blank)
}

// printTokens prints one row per token grouped under palette headers:
//
//	primary
//	  ████  primary.500   #0ea5e9   bg-primary-500
func printTokens(w io.Writer, tokens []theme.ColorToken, prefix string, styled bool) {
	pathWidth, valueWidth := 0, 0
	for _, tok := range tokens {
		pathWidth = max(pathWidth, len(tok.Path))
		valueWidth = max(valueWidth, len(tok.Value))
	}

	current := "\x00"
	for _, tok := range tokens {
		if group := splitToken(tok.Path); group != current {
			current = group
			title := group
			if title == "" {
				title = "(top level)"
			}
			fmt.Fprintln(w, render(headerStyle, title, styled))
		}

		class := prefix + "bg-" + tok.ClassName
		fmt.Fprintf(w, "  %s  %-*s  %-*s  %s\n",
			swatch(tok.Value, styled),
			pathWidth, tok.Path,
			valueWidth, tok.Value,
			render(dimStyle, class, styled))
	}
}

// printReport prints a usage report as aligned sections.
func printReport(w io.Writer, r *content.Report, styled bool) {
	fmt.Fprintf(w, "%s  %d files scanned, %d failed, %d cached, %s\n",
		render(headerStyle, r.Root, styled), r.FilesScanned, r.FilesFailed, r.CacheHits, r.Duration.Round(1e6))

	printUsageSection(w, "Colors", r.Colors, styled)
	printUsageSection(w, "Fonts", r.Fonts, styled)

	if len(r.UnusedColors) > 0 || len(r.UnusedFonts) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, render(headerStyle, "Unused", styled))
		for _, path := range r.UnusedColors {
			fmt.Fprintf(w, "  color  %s\n", path)
		}
		for _, role := range r.UnusedFonts {
			fmt.Fprintf(w, "  font   %s\n", role)
		}
	}

	if len(r.Unknown) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, render(warnStyle, "Unknown tokens", styled))
		for _, u := range r.Unknown {
			fmt.Fprintf(w, "  %s  (%d in %s)\n", u.ClassName, u.Count, strings.Join(u.Files, ", "))
		}
	}

	for _, fe := range r.Errors {
		fmt.Fprintf(w, "  ! %s: %s\n", fe.Path, fe.Message)
	}
}

func printUsageSection(w io.Writer, title string, usages []content.TokenUsage, styled bool) {
	fmt.Fprintln(w)
	if len(usages) == 0 {
		fmt.Fprintf(w, "%s  (none)\n", render(headerStyle, title, styled))
		return
	}
	fmt.Fprintln(w, render(headerStyle, title, styled))

	width := 0
	for _, u := range usages {
		width = max(width, len(u.Token))
	}
	for _, u := range usages {
		fmt.Fprintf(w, "  %-*s  %4d  %d file(s)\n", width, u.Token, u.Count, len(u.Files))
	}
}

func render(style lipgloss.Style, s string, styled bool) string {
	if !styled {
		return s
	}
	return style.Render(s)
}
