// Package jsconfig reads the static shape of JavaScript and TypeScript
// config modules (tailwind.config.js and friends) without executing them.
//
// The exported value is located (module.exports, export default, or a
// function returning an object), then reduced to a document tree. Literals
// become data; anything that needs a runtime to evaluate, such as
// require('@tailwindcss/forms') or colors.sky, becomes an opaque
// expression node carrying its source text.
package jsconfig

import (
	"errors"
	"fmt"
	"log/slog"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/uitheme/pkg/document"
	"github.com/gnana997/uitheme/pkg/parser"
)

// ErrNoExport is returned when a module never assigns module.exports or
// declares a default export.
var ErrNoExport = errors.New("config module has no default export")

// SyntaxError points at the first error node tree-sitter produced.
type SyntaxError struct {
	Pos  document.Pos
	Near string
}

func (e *SyntaxError) Error() string {
	if e.Near == "" {
		return fmt.Sprintf("%s: syntax error", e.Pos)
	}
	return fmt.Sprintf("%s: syntax error near %q", e.Pos, e.Near)
}

// Evaluator turns config module source into document trees. It is safe for
// concurrent use; the parser manager provides the pooling.
type Evaluator struct {
	parsers *parser.ParserManager
	logger  *slog.Logger
}

// NewEvaluator creates an Evaluator backed by parsers.
func NewEvaluator(parsers *parser.ParserManager, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{parsers: parsers, logger: logger}
}

// Evaluate parses source with grammar and returns the exported value.
func (e *Evaluator) Evaluate(source []byte, grammar parser.Grammar) (*document.Node, error) {
	tree, err := e.parsers.Parse(source, grammar)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, syntaxError(root, source)
	}

	m := &module{
		src:       source,
		bindings:  make(map[string]*ts.Node),
		resolving: make(map[string]bool),
	}
	exported := m.scan(root)
	if exported == nil {
		return nil, ErrNoExport
	}

	value, err := m.evalExport(exported)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("evaluated config module",
		"grammar", grammar.String(),
		"bindings", len(m.bindings),
		"kind", value.Kind.String())

	return value, nil
}

// module holds per-evaluation state.
type module struct {
	src       []byte
	bindings  map[string]*ts.Node
	resolving map[string]bool
}

// scan records top-level bindings and returns the exported expression.
// A later export wins over an earlier one, matching runtime semantics.
func (m *module) scan(root *ts.Node) *ts.Node {
	var exported *ts.Node
	for _, stmt := range namedChildren(root) {
		switch stmt.Kind() {
		case "lexical_declaration", "variable_declaration":
			m.bind(stmt)

		case "expression_statement":
			expr := firstNamed(stmt)
			if expr == nil || expr.Kind() != "assignment_expression" {
				continue
			}
			left := expr.ChildByFieldName("left")
			if left == nil {
				continue
			}
			switch left.Utf8Text(m.src) {
			case "module.exports", "exports.default":
				exported = expr.ChildByFieldName("right")
			}

		case "export_statement":
			decl := stmt.ChildByFieldName("declaration")
			if !hasDefault(stmt) {
				if decl != nil {
					m.bind(decl)
				}
				continue
			}
			if v := stmt.ChildByFieldName("value"); v != nil {
				exported = v
			} else if decl != nil {
				exported = decl
			}
		}
	}
	return exported
}

func (m *module) bind(decl *ts.Node) {
	if decl.Kind() != "lexical_declaration" && decl.Kind() != "variable_declaration" {
		return
	}
	for _, d := range namedChildren(decl) {
		if d.Kind() != "variable_declarator" {
			continue
		}
		name := d.ChildByFieldName("name")
		value := d.ChildByFieldName("value")
		if name == nil || value == nil || name.Kind() != "identifier" {
			continue
		}
		m.bindings[name.Utf8Text(m.src)] = value
	}
}

// evalExport unwraps the forms a config module uses around its object:
// identifiers bound earlier, wrapper calls such as defineConfig(...), type
// assertions, and functions that return the config.
func (m *module) evalExport(n *ts.Node) (*document.Node, error) {
	switch n.Kind() {
	case "parenthesized_expression", "satisfies_expression", "as_expression", "non_null_expression":
		if inner := firstNamed(n); inner != nil {
			return m.evalExport(inner)
		}

	case "identifier":
		name := n.Utf8Text(m.src)
		if bound, ok := m.bindings[name]; ok && !m.resolving[name] {
			m.resolving[name] = true
			defer delete(m.resolving, name)
			return m.evalExport(bound)
		}

	case "arrow_function":
		body := n.ChildByFieldName("body")
		if body == nil {
			break
		}
		if body.Kind() != "statement_block" {
			return m.evalExport(body)
		}
		if ret := returnValue(body); ret != nil {
			return m.evalExport(ret)
		}
		return nil, fmt.Errorf("%s: config function does not return a value", pos(n))

	case "function_expression", "function", "function_declaration":
		if body := n.ChildByFieldName("body"); body != nil {
			if ret := returnValue(body); ret != nil {
				return m.evalExport(ret)
			}
		}
		return nil, fmt.Errorf("%s: config function does not return a value", pos(n))

	case "call_expression":
		if arg := singleArgument(n); arg != nil && !isRequire(n, m.src) {
			return m.evalExport(arg)
		}

	case "await_expression":
		if inner := firstNamed(n); inner != nil {
			return m.evalExport(inner)
		}
	}
	return m.eval(n)
}

// eval reduces an expression to a document node.
func (m *module) eval(n *ts.Node) (*document.Node, error) {
	p := pos(n)

	switch n.Kind() {
	case "object":
		return m.evalObject(n)

	case "array":
		list := document.NewList(p)
		for _, c := range namedChildren(n) {
			if c.Kind() == "spread_element" {
				spread, err := m.eval(firstNamed(c))
				if err != nil {
					return nil, err
				}
				if spread.Kind == document.KindList {
					list.Items = append(list.Items, spread.Items...)
					continue
				}
				list.Items = append(list.Items, document.NewExpr(c.Utf8Text(m.src), spread.Ref, pos(c)))
				continue
			}
			item, err := m.eval(c)
			if err != nil {
				return nil, err
			}
			list.Items = append(list.Items, item)
		}
		return list, nil

	case "string":
		return document.NewScalar(document.KindString, stringValue(n, m.src), p), nil

	case "template_string":
		for _, c := range namedChildren(n) {
			if c.Kind() == "template_substitution" {
				return document.NewExpr(n.Utf8Text(m.src), "", p), nil
			}
		}
		return document.NewScalar(document.KindString, stringValue(n, m.src), p), nil

	case "number":
		return document.NewScalar(document.KindNumber, n.Utf8Text(m.src), p), nil

	case "true", "false":
		return document.NewScalar(document.KindBool, n.Kind(), p), nil

	case "null", "undefined":
		return document.NewNull(p), nil

	case "unary_expression":
		op := n.ChildByFieldName("operator")
		arg := n.ChildByFieldName("argument")
		if op != nil && arg != nil && arg.Kind() == "number" {
			switch o := op.Utf8Text(m.src); o {
			case "-":
				return document.NewScalar(document.KindNumber, o+arg.Utf8Text(m.src), p), nil
			case "+":
				return document.NewScalar(document.KindNumber, arg.Utf8Text(m.src), p), nil
			}
		}

	case "parenthesized_expression", "satisfies_expression", "as_expression", "non_null_expression":
		if inner := firstNamed(n); inner != nil {
			return m.eval(inner)
		}

	case "identifier":
		name := n.Utf8Text(m.src)
		if name == "undefined" {
			return document.NewNull(p), nil
		}
		if bound, ok := m.bindings[name]; ok && !m.resolving[name] {
			m.resolving[name] = true
			defer delete(m.resolving, name)
			return m.eval(bound)
		}

	case "call_expression":
		// Wrapper calls around a literal object, e.g. withMT({...}).
		fn := n.ChildByFieldName("function")
		if arg := singleArgument(n); arg != nil && fn != nil && fn.Kind() == "identifier" && m.refOf(fn) == "" && !isRequire(n, m.src) {
			if arg.Kind() == "object" || arg.Kind() == "identifier" {
				v, err := m.eval(arg)
				if err == nil && v.Kind == document.KindMap {
					return v, nil
				}
			}
		}
	}

	return document.NewExpr(n.Utf8Text(m.src), m.refOf(n), p), nil
}

func (m *module) evalObject(n *ts.Node) (*document.Node, error) {
	obj := document.NewMap(pos(n))

	for _, c := range namedChildren(n) {
		switch c.Kind() {
		case "pair":
			keyNode := c.ChildByFieldName("key")
			valNode := c.ChildByFieldName("value")
			if keyNode == nil || valNode == nil {
				continue
			}
			key, err := m.keyText(keyNode)
			if err != nil {
				return nil, err
			}
			val, err := m.eval(valNode)
			if err != nil {
				return nil, err
			}
			obj.Set(key, val)

		case "shorthand_property_identifier":
			name := c.Utf8Text(m.src)
			val := document.NewExpr(name, "", pos(c))
			var err error
			if bound, ok := m.bindings[name]; ok && !m.resolving[name] {
				m.resolving[name] = true
				val, err = m.eval(bound)
				delete(m.resolving, name)
				if err != nil {
					return nil, err
				}
			}
			obj.Set(name, val)

		case "spread_element":
			inner := firstNamed(c)
			if inner == nil {
				continue
			}
			spread, err := m.eval(inner)
			if err != nil {
				return nil, err
			}
			if spread.Kind != document.KindMap {
				return nil, fmt.Errorf("%s: cannot spread %s into object", pos(c), spread.Kind)
			}
			for _, k := range spread.Keys {
				obj.Set(k, spread.Fields[k])
			}

		case "method_definition":
			name := c.ChildByFieldName("name")
			if name == nil {
				continue
			}
			key, err := m.keyText(name)
			if err != nil {
				return nil, err
			}
			obj.Set(key, document.NewExpr(c.Utf8Text(m.src), "", pos(c)))
		}
	}

	return obj, nil
}

func (m *module) keyText(n *ts.Node) (string, error) {
	switch n.Kind() {
	case "property_identifier", "number", "private_property_identifier":
		return n.Utf8Text(m.src), nil
	case "string":
		return stringValue(n, m.src), nil
	case "computed_property_name":
		if inner := firstNamed(n); inner != nil {
			v, err := m.eval(inner)
			if err != nil {
				return "", err
			}
			if v.IsScalar() {
				return v.Scalar, nil
			}
		}
	}
	return "", fmt.Errorf("%s: unsupported object key %q", pos(n), n.Utf8Text(m.src))
}

// refOf returns the module id behind an expression rooted in a require()
// call or a binding to one, or "" when there is none.
func (m *module) refOf(n *ts.Node) string {
	for depth := 0; n != nil && depth < 16; depth++ {
		switch n.Kind() {
		case "call_expression":
			if isRequire(n, m.src) {
				if arg := singleArgument(n); arg != nil && arg.Kind() == "string" {
					return stringValue(arg, m.src)
				}
				return ""
			}
			n = n.ChildByFieldName("function")
		case "member_expression":
			n = n.ChildByFieldName("object")
		case "parenthesized_expression", "await_expression":
			n = firstNamed(n)
		case "identifier":
			bound, ok := m.bindings[n.Utf8Text(m.src)]
			if !ok {
				return ""
			}
			n = bound
		default:
			return ""
		}
	}
	return ""
}

func isRequire(call *ts.Node, src []byte) bool {
	fn := call.ChildByFieldName("function")
	return fn != nil && fn.Kind() == "identifier" && fn.Utf8Text(src) == "require"
}

// singleArgument returns the only argument of a call, or nil.
func singleArgument(call *ts.Node) *ts.Node {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}
	children := namedChildren(args)
	if len(children) != 1 {
		return nil
	}
	return children[0]
}

func returnValue(block *ts.Node) *ts.Node {
	for _, stmt := range namedChildren(block) {
		if stmt.Kind() == "return_statement" {
			return firstNamed(stmt)
		}
	}
	return nil
}

func hasDefault(exportStmt *ts.Node) bool {
	for i := uint(0); i < exportStmt.ChildCount(); i++ {
		if exportStmt.Child(i).Kind() == "default" {
			return true
		}
	}
	return false
}

// namedChildren returns the named children of n without comments.
func namedChildren(n *ts.Node) []*ts.Node {
	if n == nil {
		return nil
	}
	count := n.NamedChildCount()
	out := make([]*ts.Node, 0, count)
	for i := uint(0); i < count; i++ {
		c := n.NamedChild(i)
		if c == nil || c.Kind() == "comment" {
			continue
		}
		out = append(out, c)
	}
	return out
}

func firstNamed(n *ts.Node) *ts.Node {
	children := namedChildren(n)
	if len(children) == 0 {
		return nil
	}
	return children[0]
}

func pos(n *ts.Node) document.Pos {
	p := n.StartPosition()
	return document.Pos{Line: int(p.Row) + 1, Column: int(p.Column) + 1}
}

// syntaxError locates the first ERROR or MISSING node under root.
func syntaxError(root *ts.Node, src []byte) error {
	if bad := firstErrorNode(root); bad != nil {
		near := bad.Utf8Text(src)
		if len(near) > 32 {
			near = near[:32]
		}
		return &SyntaxError{Pos: pos(bad), Near: near}
	}
	return &SyntaxError{Pos: pos(root)}
}

func firstErrorNode(n *ts.Node) *ts.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		if bad := firstErrorNode(n.Child(i)); bad != nil {
			return bad
		}
	}
	return nil
}
