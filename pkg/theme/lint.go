package theme

import (
	"fmt"
	"strconv"
	"strings"
)

// standardShades is the framework's numeric shade scale.
var standardShades = map[string]bool{
	"50": true, "100": true, "200": true, "300": true, "400": true,
	"500": true, "600": true, "700": true, "800": true, "900": true, "950": true,
}

// Lint reports conventions the loader does not enforce.
func (c *ThemeConfig) Lint() []Warning {
	var warnings []Warning

	if len(c.content) == 0 {
		warnings = append(warnings, Warning{
			Field:   "content",
			Message: "no content globs; the framework will not find any class usage",
		})
	}

	seenGlobs := make(map[string]bool, len(c.content))
	for i, g := range c.content {
		if seenGlobs[g] {
			warnings = append(warnings, Warning{
				Field:   fmt.Sprintf("content[%d]", i),
				Message: fmt.Sprintf("duplicate glob %q", g),
			})
		}
		seenGlobs[g] = true
	}

	warnings = append(warnings, c.lintShades()...)

	for _, role := range c.fontRoles {
		seen := make(map[string]bool)
		for _, family := range c.fonts[role] {
			key := strings.ToLower(family)
			if seen[key] {
				warnings = append(warnings, Warning{
					Field:   c.fontField(role),
					Message: fmt.Sprintf("family %q listed more than once", family),
				})
			}
			seen[key] = true
		}
	}

	for _, path := range c.unresolved {
		warnings = append(warnings, Warning{
			Field:   c.colorField(path),
			Message: "value is a runtime expression and cannot be resolved statically",
		})
	}

	return warnings
}

// lintShades flags palettes whose keys are all numeric but fall outside the
// standard scale.
func (c *ThemeConfig) lintShades() []Warning {
	type group struct {
		tokens  []ColorToken
		numeric bool
	}
	groups := make(map[string]*group)
	var order []string

	for _, tok := range c.colors {
		i := strings.LastIndexByte(tok.Path, '.')
		if i < 0 {
			continue
		}
		parent, key := tok.Path[:i], tok.Path[i+1:]
		g, ok := groups[parent]
		if !ok {
			g = &group{numeric: true}
			groups[parent] = g
			order = append(order, parent)
		}
		g.tokens = append(g.tokens, tok)
		if key == defaultKey {
			continue
		}
		if _, err := strconv.Atoi(key); err != nil {
			g.numeric = false
		}
	}

	var warnings []Warning
	for _, parent := range order {
		g := groups[parent]
		if !g.numeric {
			continue
		}
		for _, tok := range g.tokens {
			key := tok.Path[len(parent)+1:]
			if key == defaultKey || standardShades[key] {
				continue
			}
			warnings = append(warnings, Warning{
				Field:   c.colorField(tok.Path),
				Message: fmt.Sprintf("shade %q is outside the standard scale 50, 100-900, 950", key),
				Pos:     tok.Pos,
			})
		}
	}
	return warnings
}

func (c *ThemeConfig) colorField(path string) string {
	if f, ok := c.colorFields[path]; ok {
		return f
	}
	return "theme.extend.colors." + path
}

func (c *ThemeConfig) fontField(role string) string {
	if f, ok := c.fontFields[role]; ok {
		return f
	}
	return "theme.extend.fontFamily." + role
}
