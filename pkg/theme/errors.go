package theme

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gnana997/uitheme/pkg/document"
)

// Sentinels for errors.Is. The typed errors below match them.
var (
	ErrParse        = errors.New("theme parse error")
	ErrSchema       = errors.New("theme schema error")
	ErrUnknownToken = errors.New("unknown theme token")
)

// ParseError reports a document that is not well-formed for its format.
type ParseError struct {
	Path   string
	Format Format
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("failed to parse ")
	if e.Path != "" {
		b.WriteString(e.Path)
	} else {
		b.WriteString("theme config")
	}
	if e.Format != FormatUnknown {
		fmt.Fprintf(&b, " as %s", e.Format)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " at %d:%d", e.Line, e.Column)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// Problem is one schema violation.
type Problem struct {
	// Field is the dotted path of the offending value, e.g.
	// "theme.extend.colors.primary.500" or "content[1]". Empty for the
	// document root.
	Field   string
	Message string
	Pos     document.Pos
}

func (p Problem) String() string {
	field := p.Field
	if field == "" {
		field = "(root)"
	}
	if p.Pos.IsZero() {
		return fmt.Sprintf("%s: %s", field, p.Message)
	}
	return fmt.Sprintf("%s (%s): %s", field, p.Pos, p.Message)
}

// SchemaError reports every schema violation found in a document.
type SchemaError struct {
	Path     string
	Problems []Problem
}

func (e *SchemaError) Error() string {
	errs := make([]error, len(e.Problems))
	for i, p := range e.Problems {
		errs[i] = errors.New(p.String())
	}
	name := e.Path
	if name == "" {
		name = "theme config"
	}
	return fmt.Sprintf("%s failed validation: %v", name, errors.Join(errs...))
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// TokenKind names the namespace of a lookup.
type TokenKind string

const (
	TokenColor   TokenKind = "color"
	TokenFont    TokenKind = "font"
	TokenPalette TokenKind = "palette"
)

// UnknownTokenError reports a lookup of a token that is not configured.
type UnknownTokenError struct {
	Kind  TokenKind
	Token string
}

func (e *UnknownTokenError) Error() string {
	return fmt.Sprintf("unknown %s token %q", e.Kind, e.Token)
}

func (e *UnknownTokenError) Is(target error) bool { return target == ErrUnknownToken }
