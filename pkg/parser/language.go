package parser

import (
	"path/filepath"
	"strings"
)

// Grammar identifies the tree-sitter grammar used to parse a config module.
type Grammar int

const (
	// GrammarJavaScript covers .js, .cjs and .mjs config modules.
	GrammarJavaScript Grammar = iota
	// GrammarTypeScript covers .ts, .cts and .mts config modules.
	GrammarTypeScript
	// GrammarTSX is TypeScript with JSX enabled. Config files rarely need it,
	// but a .tsx entry point is accepted.
	GrammarTSX
	// GrammarUnknown is returned for unsupported extensions.
	GrammarUnknown
)

// String returns the string representation of the grammar.
func (g Grammar) String() string {
	switch g {
	case GrammarJavaScript:
		return "javascript"
	case GrammarTypeScript:
		return "typescript"
	case GrammarTSX:
		return "tsx"
	default:
		return "unknown"
	}
}

// DetectGrammar maps a file path to its grammar by extension.
func DetectGrammar(filePath string) Grammar {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".js", ".cjs", ".mjs", ".jsx":
		return GrammarJavaScript
	case ".ts", ".cts", ".mts":
		return GrammarTypeScript
	case ".tsx":
		return GrammarTSX
	default:
		return GrammarUnknown
	}
}

// SupportedGrammars returns every grammar the manager can parse.
func SupportedGrammars() []Grammar {
	return []Grammar{GrammarJavaScript, GrammarTypeScript, GrammarTSX}
}
