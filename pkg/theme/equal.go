package theme

import (
	"maps"
	"reflect"
	"slices"
)

// Equal reports whether two configs describe the same theme. Source,
// positions and the key order of mappings are ignored; list order
// (content globs, font stacks, plugins) is significant. Runtime-expression
// colors compare by path only.
func (c *ThemeConfig) Equal(other *ThemeConfig) bool {
	if c == nil || other == nil {
		return c == other
	}
	if c.prefix != other.prefix || c.darkMode != other.darkMode {
		return false
	}
	if !slices.Equal(c.content, other.content) {
		return false
	}
	if len(c.colors) != len(other.colors) {
		return false
	}
	for _, tok := range c.colors {
		i, ok := other.colorIdx[tok.Path]
		if !ok || other.colors[i].Value != tok.Value {
			return false
		}
	}
	if !sameSet(c.unresolved, other.unresolved) {
		return false
	}
	if !maps.EqualFunc(c.fonts, other.fonts, slices.Equal[[]string]) {
		return false
	}
	if len(c.plugins) != len(other.plugins) {
		return false
	}
	for i := range c.plugins {
		if c.plugins[i].Name != other.plugins[i].Name ||
			!reflect.DeepEqual(c.plugins[i].Options, other.plugins[i].Options) {
			return false
		}
	}
	return true
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	a, b = slices.Clone(a), slices.Clone(b)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b)
}
