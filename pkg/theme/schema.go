package theme

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/gnana997/uitheme/pkg/document"
)

// defaultKey makes a palette name resolvable on its own.
const defaultKey = "DEFAULT"

// builder walks a decoded document, collecting every schema problem rather
// than stopping at the first.
type builder struct {
	cfg      *ThemeConfig
	problems []Problem

	// origin maps each node under a merged section to the section that
	// supplied it, either theme.<key> or theme.extend.<key>.
	origin map[*document.Node]string
}

func (b *builder) fail(field string, n *document.Node, format string, args ...any) {
	p := Problem{Field: field, Message: fmt.Sprintf(format, args...)}
	if n != nil {
		p.Pos = n.Pos
	}
	b.problems = append(b.problems, p)
}

// build validates root and returns the ThemeConfig it describes.
func build(root *document.Node, src Source) (*ThemeConfig, []Problem) {
	b := &builder{
		cfg: &ThemeConfig{
			source:      src,
			colorIdx:    make(map[string]int),
			colorFields: make(map[string]string),
			fonts:       make(map[string][]string),
			fontFields:  make(map[string]string),
		},
		origin: make(map[*document.Node]string),
	}

	if root == nil || root.Kind != document.KindMap {
		kind := "empty document"
		if root != nil && root.Kind != document.KindNull {
			kind = root.Kind.String()
		}
		b.fail("", root, "document root must be a mapping, got %s", kind)
		return nil, b.problems
	}

	b.content(root)
	b.theme(root)
	b.plugins(root)
	b.prefix(root)
	b.darkMode(root)

	if len(b.problems) > 0 {
		return nil, b.problems
	}
	return b.cfg, nil
}

func (b *builder) content(root *document.Node) {
	node, ok := root.Get("content")
	if !ok {
		b.fail("content", root, "required key is missing")
		return
	}

	field := "content"
	if node.Kind == document.KindMap {
		files, ok := node.Get("files")
		if !ok {
			b.fail("content.files", node, "required key is missing")
			return
		}
		node, field = files, "content.files"
	}
	if node.Kind != document.KindList {
		b.fail(field, node, "must be a list of glob patterns, got %s", node.Kind)
		return
	}

	for i, item := range node.Items {
		itemField := fmt.Sprintf("%s[%d]", field, i)
		if item.Kind != document.KindString {
			b.fail(itemField, item, "must be a glob string, got %s", item.Kind)
			continue
		}
		pattern := strings.TrimPrefix(strings.TrimPrefix(item.Scalar, "!"), "./")
		switch {
		case strings.TrimSpace(pattern) == "":
			b.fail(itemField, item, "glob pattern is empty")
			continue
		case !doublestar.ValidatePattern(pattern):
			b.fail(itemField, item, "invalid glob pattern %q", item.Scalar)
			continue
		}
		b.cfg.content = append(b.cfg.content, item.Scalar)
	}
}

func (b *builder) theme(root *document.Node) {
	theme, ok := root.Get("theme")
	if !ok {
		b.fail("theme", root, "required key is missing")
		return
	}
	if theme.Kind != document.KindMap {
		b.fail("theme", theme, "must be a mapping, got %s", theme.Kind)
		return
	}

	if extend, ok := theme.Get("extend"); ok && extend.Kind != document.KindMap {
		b.fail("theme.extend", extend, "must be a mapping, got %s", extend.Kind)
	}

	colors := b.section(theme, "colors")
	if colors != nil {
		b.colors(nil, colors)
	}

	fonts := b.section(theme, "fontFamily")
	if fonts != nil {
		for _, role := range fonts.Keys {
			b.fontStack(role, fonts.Fields[role])
		}
	}
}

// section merges theme.<key> with theme.extend.<key>, extend winning on
// conflicts. It returns nil when neither is present or both are invalid.
// A non-map theme.extend has already been reported and is skipped here.
func (b *builder) section(theme *document.Node, key string) *document.Node {
	var merged *document.Node

	for _, field := range []string{key, "extend." + key} {
		node, ok := theme.Lookup(field)
		if !ok {
			continue
		}
		field = "theme." + field
		if node.Kind != document.KindMap {
			b.fail(field, node, "must be a mapping, got %s", node.Kind)
			continue
		}
		b.markOrigin(node, field)
		if merged == nil {
			merged = document.NewMap(node.Pos)
		}
		document.Merge(merged, node)
	}

	return merged
}

func (b *builder) markOrigin(n *document.Node, section string) {
	for _, key := range n.Keys {
		child := n.Fields[key]
		b.origin[child] = section
		if child.Kind == document.KindMap {
			b.markOrigin(child, section)
		}
	}
}

// fieldFor names n by the section that supplied it.
func (b *builder) fieldFor(n *document.Node, fallback, suffix string) string {
	section, ok := b.origin[n]
	if !ok {
		section = fallback
	}
	return section + "." + suffix
}

func (b *builder) colors(prefix []string, node *document.Node) {
	for _, key := range node.Keys {
		child := node.Fields[key]
		path := append(append([]string(nil), prefix...), key)
		tokenPath := strings.Join(path, ".")
		field := b.fieldFor(child, "theme.extend.colors", tokenPath)

		if len(prefix) == 0 && child.Kind == document.KindMap {
			b.cfg.palettes = append(b.cfg.palettes, key)
		}

		switch child.Kind {
		case document.KindMap:
			if len(child.Keys) == 0 {
				b.fail(field, child, "palette is empty")
				continue
			}
			b.colors(path, child)

		case document.KindString:
			if !IsValidColor(child.Scalar) {
				b.fail(field, child, "invalid color value %q", child.Scalar)
				continue
			}
			b.addColor(path, child, field)

		case document.KindExpr:
			b.cfg.unresolved = append(b.cfg.unresolved, tokenPath)
			b.cfg.colorFields[tokenPath] = field

		default:
			b.fail(field, child, "must be a color string or palette, got %s", child.Kind)
		}
	}
}

func (b *builder) addColor(path []string, n *document.Node, field string) {
	token := ColorToken{
		Path:      strings.Join(path, "."),
		Value:     n.Scalar,
		ClassName: className(path),
		Pos:       n.Pos,
	}
	if len(path) > 1 {
		token.Palette = path[0]
	}
	if _, dup := b.cfg.colorIdx[token.Path]; dup {
		b.fail(field, n, "duplicate color token")
		return
	}
	b.cfg.colorFields[token.Path] = field
	b.cfg.colorIdx[token.Path] = len(b.cfg.colors)
	b.cfg.colors = append(b.cfg.colors, token)
}

func (b *builder) fontStack(role string, n *document.Node) {
	field := b.fieldFor(n, "theme.extend.fontFamily", role)

	var families []string
	switch n.Kind {
	case document.KindString:
		for _, part := range strings.Split(n.Scalar, ",") {
			families = append(families, unquoteFamily(part))
		}

	case document.KindList:
		items := n.Items
		// Tuple form: [[families...], {fontFeatureSettings: ...}]
		if len(items) > 0 && items[0].Kind == document.KindList {
			if len(items) > 2 || (len(items) == 2 && items[1].Kind != document.KindMap) {
				b.fail(field, n, "font tuple must be [families, options]")
				return
			}
			items = items[0].Items
		}
		for i, item := range items {
			if item.Kind != document.KindString {
				b.fail(fmt.Sprintf("%s[%d]", field, i), item, "font family must be a string, got %s", item.Kind)
				return
			}
			families = append(families, unquoteFamily(item.Scalar))
		}

	default:
		b.fail(field, n, "must be a list of font families, got %s", n.Kind)
		return
	}

	if len(families) == 0 {
		b.fail(field, n, "font stack must not be empty")
		return
	}
	for i, f := range families {
		if f == "" {
			b.fail(fmt.Sprintf("%s[%d]", field, i), n, "font family name is empty")
			return
		}
	}

	b.cfg.fontRoles = append(b.cfg.fontRoles, role)
	b.cfg.fonts[role] = families
	b.cfg.fontFields[role] = field
}

func unquoteFamily(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		s = s[1 : len(s)-1]
	}
	return s
}

func (b *builder) plugins(root *document.Node) {
	node, ok := root.Get("plugins")
	if !ok || node.Kind == document.KindNull {
		return
	}
	if node.Kind != document.KindList {
		b.fail("plugins", node, "must be a list, got %s", node.Kind)
		return
	}

	for i, item := range node.Items {
		field := fmt.Sprintf("plugins[%d]", i)
		switch item.Kind {
		case document.KindString:
			if item.Scalar == "" {
				b.fail(field, item, "plugin name is empty")
				continue
			}
			b.cfg.plugins = append(b.cfg.plugins, PluginRef{Name: item.Scalar})

		case document.KindExpr:
			name := item.Ref
			if name == "" {
				name = item.Scalar
			}
			b.cfg.plugins = append(b.cfg.plugins, PluginRef{Name: name})

		case document.KindMap:
			nameNode, ok := item.Get("name")
			if !ok || nameNode.Kind != document.KindString || nameNode.Scalar == "" {
				b.fail(field+".name", item, "plugin name is required")
				continue
			}
			ref := PluginRef{Name: nameNode.Scalar}
			if opts, ok := item.Get("options"); ok {
				if opts.Kind != document.KindMap {
					b.fail(field+".options", opts, "must be a mapping, got %s", opts.Kind)
					continue
				}
				if len(opts.Keys) > 0 {
					ref.Options = toValue(opts).(map[string]any)
				}
			}
			b.cfg.plugins = append(b.cfg.plugins, ref)

		default:
			b.fail(field, item, "must be a plugin reference, got %s", item.Kind)
		}
	}
}

func (b *builder) prefix(root *document.Node) {
	node, ok := root.Get("prefix")
	if !ok || node.Kind == document.KindNull {
		return
	}
	if node.Kind != document.KindString {
		b.fail("prefix", node, "must be a string, got %s", node.Kind)
		return
	}
	b.cfg.prefix = node.Scalar
}

func (b *builder) darkMode(root *document.Node) {
	node, ok := root.Get("darkMode")
	if !ok || node.Kind == document.KindNull {
		return
	}
	switch node.Kind {
	case document.KindString:
		b.cfg.darkMode = node.Scalar
	case document.KindBool:
		// darkMode: false disables dark variants.
		if node.Scalar == "true" {
			b.fail("darkMode", node, "must be a strategy string, got true")
		}
	case document.KindList:
		if len(node.Items) == 0 || node.Items[0].Kind != document.KindString {
			b.fail("darkMode", node, "list form must start with a strategy string")
			return
		}
		b.cfg.darkMode = node.Items[0].Scalar
	default:
		b.fail("darkMode", node, "must be a string, got %s", node.Kind)
	}
}

// className builds the utility suffix for a token path. A trailing DEFAULT
// segment is dropped.
func className(path []string) string {
	if len(path) > 1 && path[len(path)-1] == defaultKey {
		path = path[:len(path)-1]
	}
	return strings.Join(path, "-")
}

// toValue converts a document node into plain Go values.
func toValue(n *document.Node) any {
	switch n.Kind {
	case document.KindMap:
		m := make(map[string]any, len(n.Keys))
		for _, k := range n.Keys {
			m[k] = toValue(n.Fields[k])
		}
		return m
	case document.KindList:
		l := make([]any, len(n.Items))
		for i, item := range n.Items {
			l[i] = toValue(item)
		}
		return l
	case document.KindNumber:
		if v, err := strconv.ParseFloat(n.Scalar, 64); err == nil {
			return v
		}
		return n.Scalar
	case document.KindBool:
		return n.Scalar == "true"
	case document.KindNull:
		return nil
	}
	return n.Scalar
}
