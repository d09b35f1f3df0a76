package theme

import (
	"maps"
	"slices"
)

// ResolveColor returns the configured value of a dotted token path such as
// "primary.500". A palette name resolves to its DEFAULT shade.
func (c *ThemeConfig) ResolveColor(tokenPath string) (string, error) {
	tok, ok := c.lookupColor(tokenPath)
	if !ok {
		return "", &UnknownTokenError{Kind: TokenColor, Token: tokenPath}
	}
	return tok.Value, nil
}

// ColorToken returns the full token for a dotted path.
func (c *ThemeConfig) ColorToken(tokenPath string) (ColorToken, error) {
	tok, ok := c.lookupColor(tokenPath)
	if !ok {
		return ColorToken{}, &UnknownTokenError{Kind: TokenColor, Token: tokenPath}
	}
	return tok, nil
}

func (c *ThemeConfig) lookupColor(tokenPath string) (ColorToken, bool) {
	if i, ok := c.colorIdx[tokenPath]; ok {
		return c.colors[i], true
	}
	if i, ok := c.colorIdx[tokenPath+"."+defaultKey]; ok {
		return c.colors[i], true
	}
	return ColorToken{}, false
}

// ClassName returns the utility class suffix for a token, e.g. "primary-500".
func (c *ThemeConfig) ClassName(tokenPath string) (string, error) {
	tok, err := c.ColorToken(tokenPath)
	if err != nil {
		return "", err
	}
	return tok.ClassName, nil
}

// ResolveFontStack returns the families of a font role, preferred first.
func (c *ThemeConfig) ResolveFontStack(role string) ([]string, error) {
	families, ok := c.fonts[role]
	if !ok {
		return nil, &UnknownTokenError{Kind: TokenFont, Token: role}
	}
	return slices.Clone(families), nil
}

// ContentGlobs returns the content scan patterns verbatim, in document
// order. Patterns starting with "!" are exclusions.
func (c *ThemeConfig) ContentGlobs() []string {
	return slices.Clone(c.content)
}

// Colors returns every color token in document order.
func (c *ThemeConfig) Colors() []ColorToken {
	return slices.Clone(c.colors)
}

// Palettes returns the names of nested palettes in document order.
func (c *ThemeConfig) Palettes() []string {
	return slices.Clone(c.palettes)
}

// Palette returns the tokens of one palette.
func (c *ThemeConfig) Palette(name string) ([]ColorToken, error) {
	var out []ColorToken
	for _, tok := range c.colors {
		if tok.Palette == name {
			out = append(out, tok)
		}
	}
	if len(out) == 0 {
		return nil, &UnknownTokenError{Kind: TokenPalette, Token: name}
	}
	return out, nil
}

// FontRoles returns the configured font roles in document order.
func (c *ThemeConfig) FontRoles() []string {
	return slices.Clone(c.fontRoles)
}

// Plugins returns the plugin references in document order.
func (c *ThemeConfig) Plugins() []PluginRef {
	out := make([]PluginRef, len(c.plugins))
	for i, p := range c.plugins {
		out[i] = PluginRef{Name: p.Name, Options: maps.Clone(p.Options)}
	}
	return out
}

// Prefix returns the class prefix, empty when unset.
func (c *ThemeConfig) Prefix() string { return c.prefix }

// DarkMode returns the dark-mode strategy, empty when unset.
func (c *ThemeConfig) DarkMode() string { return c.darkMode }

// Source returns where the config was loaded from.
func (c *ThemeConfig) Source() Source { return c.source }

// Unresolved returns color paths whose values are runtime expressions and
// therefore have no static value.
func (c *ThemeConfig) Unresolved() []string {
	return slices.Clone(c.unresolved)
}
