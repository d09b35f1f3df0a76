package theme

import "strings"

var colorFunctions = map[string]bool{
	"rgb":   true,
	"rgba":  true,
	"hsl":   true,
	"hsla":  true,
	"hwb":   true,
	"lab":   true,
	"lch":   true,
	"oklab": true,
	"oklch": true,
	"color": true,
}

var colorKeywords = []string{"transparent", "current", "currentColor", "inherit"}

// IsValidColor reports whether v is a color value the framework accepts:
// a hex color (#rgb, #rgba, #rrggbb, #rrggbbaa), a CSS color function, a
// var(--name) reference, or one of the keywords transparent, current,
// currentColor and inherit.
func IsValidColor(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	if v[0] == '#' {
		return isHexColor(v[1:])
	}
	for _, kw := range colorKeywords {
		if strings.EqualFold(v, kw) {
			return true
		}
	}

	open := strings.IndexByte(v, '(')
	if open <= 0 || !strings.HasSuffix(v, ")") {
		return false
	}
	name := strings.ToLower(v[:open])
	args := strings.TrimSpace(v[open+1 : len(v)-1])
	if args == "" || !balanced(args) {
		return false
	}
	if name == "var" {
		return strings.HasPrefix(args, "--") && len(args) > 2
	}
	return colorFunctions[name]
}

func isHexColor(digits string) bool {
	switch len(digits) {
	case 3, 4, 6, 8:
	default:
		return false
	}
	for i := 0; i < len(digits); i++ {
		c := digits[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}

func balanced(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}
