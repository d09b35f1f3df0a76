package theme

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/gnana997/uitheme/pkg/document"
	"github.com/gnana997/uitheme/pkg/jsconfig"
	"github.com/gnana997/uitheme/pkg/parser"
)

// Loader loads theme configs. JavaScript and TypeScript modules are parsed
// with a shared parser manager, so a long-lived Loader (the reload watcher,
// the MCP server) reuses parser pools across loads.
type Loader struct {
	parsers     *parser.ParserManager
	ownsParsers bool
	eval        *jsconfig.Evaluator
	logger      *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the loader's logger.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) { l.logger = logger }
}

// WithParserManager shares an existing parser manager. The loader does not
// close managers it did not create.
func WithParserManager(pm *parser.ParserManager) LoaderOption {
	return func(l *Loader) { l.parsers = pm }
}

// NewLoader creates a Loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	if l.parsers == nil {
		l.parsers = parser.NewParserManager(l.logger)
		l.ownsParsers = true
	}
	l.eval = jsconfig.NewEvaluator(l.parsers, l.logger)
	return l
}

// Close releases the parser manager if the loader created it.
func (l *Loader) Close() error {
	if l.ownsParsers {
		return l.parsers.Close()
	}
	return nil
}

// Load reads, parses and validates the config at path. The format is chosen
// by extension.
func (l *Loader) Load(path string) (*ThemeConfig, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read theme config: %w", err)
	}

	return l.LoadBytes(data, format, path)
}

// LoadBytes parses and validates data in the given format. name is used in
// errors and as the Source path.
func (l *Loader) LoadBytes(data []byte, format Format, name string) (*ThemeConfig, error) {
	root, err := l.decode(data, format, name)
	if err != nil {
		return nil, err
	}

	cfg, problems := build(root, Source{Path: name, Format: format})
	if len(problems) > 0 {
		l.logger.Debug("theme config failed validation",
			"path", name,
			"problems", len(problems))
		return nil, &SchemaError{Path: name, Problems: problems}
	}

	l.logger.Debug("loaded theme config",
		"path", name,
		"format", format.String(),
		"colors", len(cfg.colors),
		"font_roles", len(cfg.fontRoles),
		"content_globs", len(cfg.content))

	return cfg, nil
}

func (l *Loader) decode(data []byte, format Format, name string) (*document.Node, error) {
	var (
		root *document.Node
		err  error
	)

	switch format {
	case FormatJSON:
		root, err = document.DecodeJSON(data)
	case FormatYAML:
		root, err = document.DecodeYAML(data)
	case FormatTOML:
		root, err = document.DecodeTOML(data)
	case FormatJS, FormatTS:
		root, err = l.eval.Evaluate(data, format.grammar())
	default:
		err = fmt.Errorf("unsupported config format %s", format)
	}
	if err == nil {
		return root, nil
	}

	pe := &ParseError{Path: name, Format: format, Err: err}

	var docErr *document.SyntaxError
	var jsErr *jsconfig.SyntaxError
	switch {
	case errors.As(err, &docErr):
		pe.Line, pe.Column = docErr.Pos.Line, docErr.Pos.Column
	case errors.As(err, &jsErr):
		pe.Line, pe.Column = jsErr.Pos.Line, jsErr.Pos.Column
	}
	return nil, pe
}

// Load reads and validates the config at path with a short-lived Loader.
func Load(path string) (*ThemeConfig, error) {
	l := NewLoader()
	defer l.Close()
	return l.Load(path)
}

// LoadBytes validates data with a short-lived Loader.
func LoadBytes(data []byte, format Format, name string) (*ThemeConfig, error) {
	l := NewLoader()
	defer l.Close()
	return l.LoadBytes(data, format, name)
}
