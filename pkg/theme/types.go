// Package theme loads and validates utility-CSS theme configuration.
//
// A ThemeConfig is built once by Load (or a Loader) and is immutable
// afterwards. Every accessor returns a copy, so values can be shared across
// goroutines without locking.
package theme

import (
	"fmt"

	"github.com/gnana997/uitheme/pkg/document"
)

// ThemeConfig is the validated theme of one configuration document.
type ThemeConfig struct {
	source Source

	content []string

	colors   []ColorToken
	colorIdx map[string]int
	palettes []string

	fontRoles []string
	fonts     map[string][]string

	// colorFields and fontFields hold the document field each color path
	// and font role came from, for diagnostics.
	colorFields map[string]string
	fontFields  map[string]string

	plugins  []PluginRef
	prefix   string
	darkMode string

	// unresolved holds color paths whose values are runtime expressions
	// (for example colors.sky from require('tailwindcss/colors')).
	unresolved []string
}

// Source identifies where a ThemeConfig was loaded from.
type Source struct {
	Path   string `json:"path"`
	Format Format `json:"format"`
}

// ColorToken is one resolved color in the theme.
type ColorToken struct {
	// Path is the dotted token path, e.g. "primary.500" or "health.green".
	Path string `json:"path"`

	// Value is the color exactly as configured.
	Value string `json:"value"`

	// Palette is the first path segment for nested tokens, empty for flat
	// top-level colors.
	Palette string `json:"palette,omitempty"`

	// ClassName is the utility class suffix, e.g. "primary-500".
	ClassName string `json:"class_name"`

	Pos document.Pos `json:"-"`
}

// PluginRef is an opaque reference to a framework plugin.
type PluginRef struct {
	// Name is the module id when known (require('x') or a string entry),
	// otherwise the raw expression text.
	Name string `json:"name"`

	// Options carries plugin options from structured formats.
	Options map[string]any `json:"options,omitempty"`
}

// Warning is a non-fatal finding reported by Lint.
type Warning struct {
	Field   string       `json:"field"`
	Message string       `json:"message"`
	Pos     document.Pos `json:"-"`
}

func (w Warning) String() string {
	if w.Pos.IsZero() {
		return fmt.Sprintf("%s: %s", w.Field, w.Message)
	}
	return fmt.Sprintf("%s (%s): %s", w.Field, w.Pos, w.Message)
}
