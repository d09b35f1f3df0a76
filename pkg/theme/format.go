package theme

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gnana997/uitheme/pkg/parser"
)

// Format is the syntax of a configuration document.
type Format int

const (
	FormatUnknown Format = iota
	FormatJSON
	FormatYAML
	FormatTOML
	FormatJS
	FormatTS
)

var formatNames = map[Format]string{
	FormatUnknown: "unknown",
	FormatJSON:    "json",
	FormatYAML:    "yaml",
	FormatTOML:    "toml",
	FormatJS:      "js",
	FormatTS:      "ts",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON encodes the format by name.
func (f Format) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// ParseFormat maps a format name ("json", "yaml", "yml", "toml", "js",
// "ts") to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	case "js", "javascript", "cjs", "mjs":
		return FormatJS, nil
	case "ts", "typescript":
		return FormatTS, nil
	}
	return FormatUnknown, fmt.Errorf("unknown config format %q", name)
}

// DetectFormat maps a path to a Format by its extension. Unsupported
// extensions produce a *ParseError.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".js", ".cjs", ".mjs":
		return FormatJS, nil
	case ".ts", ".cts", ".mts":
		return FormatTS, nil
	}
	return FormatUnknown, &ParseError{
		Path:   path,
		Format: FormatUnknown,
		Err:    fmt.Errorf("unsupported config extension %q", filepath.Ext(path)),
	}
}

func (f Format) grammar() parser.Grammar {
	switch f {
	case FormatJS:
		return parser.GrammarJavaScript
	case FormatTS:
		return parser.GrammarTypeScript
	}
	return parser.GrammarUnknown
}
