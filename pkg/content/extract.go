package content

import (
	"sort"
	"strings"

	"github.com/gnana997/uitheme/pkg/theme"
)

// colorUtilities are the class prefixes that take a color token.
var colorUtilities = []string{
	"bg-", "text-", "border-", "border-x-", "border-y-", "border-t-", "border-r-",
	"border-b-", "border-l-", "border-s-", "border-e-", "ring-", "ring-offset-",
	"fill-", "stroke-", "from-", "via-", "to-", "divide-", "outline-",
	"decoration-", "accent-", "caret-", "shadow-", "placeholder-",
}

func init() {
	// Longest first so "ring-offset-" wins over "ring-".
	sort.SliceStable(colorUtilities, func(i, j int) bool {
		return len(colorUtilities[i]) > len(colorUtilities[j])
	})
}

// extractCandidates adds every class-like run in src to counts. Only runs
// containing a dash are kept; every token utility has one.
func extractCandidates(src []byte, counts map[string]int) {
	start := -1
	for i := 0; i <= len(src); i++ {
		if i < len(src) && isClassByte(src[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start < 0 {
			continue
		}
		tok := strings.TrimRight(string(src[start:i]), ".:/")
		start = -1
		if len(tok) > 2 && strings.IndexByte(tok, '-') >= 0 {
			counts[tok]++
		}
	}
}

func isClassByte(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_:/.!@[]#%", c) >= 0
}

type matchKind int

const (
	matchNone matchKind = iota
	matchColor
	matchFont
	// matchUnknown is a color utility naming a configured palette with a
	// shade that does not exist, e.g. bg-primary-550.
	matchUnknown
)

// matcher maps class candidates to theme tokens.
type matcher struct {
	prefix   string
	classes  map[string]string
	fonts    map[string]bool
	palettes map[string]bool
}

func newMatcher(cfg *theme.ThemeConfig) *matcher {
	m := &matcher{
		prefix:   cfg.Prefix(),
		classes:  make(map[string]string),
		fonts:    make(map[string]bool),
		palettes: make(map[string]bool),
	}
	for _, tok := range cfg.Colors() {
		m.classes[tok.ClassName] = tok.Path
	}
	for _, role := range cfg.FontRoles() {
		m.fonts[role] = true
	}
	for _, p := range cfg.Palettes() {
		m.palettes[p] = true
	}
	return m
}

// match returns the token path (colors), role (fonts) or normalized class
// (unknown) for a candidate.
func (m *matcher) match(candidate string) (matchKind, string) {
	class := stripVariants(candidate)
	class = strings.TrimSuffix(strings.TrimPrefix(class, "!"), "!")

	if m.prefix != "" {
		if !strings.HasPrefix(class, m.prefix) {
			return matchNone, ""
		}
		class = class[len(m.prefix):]
	}

	if i := strings.LastIndexByte(class, '/'); i > 0 {
		class = class[:i]
	}

	if role, ok := strings.CutPrefix(class, "font-"); ok && m.fonts[role] {
		return matchFont, role
	}

	unknown := ""
	for _, u := range colorUtilities {
		suffix, ok := strings.CutPrefix(class, u)
		if !ok {
			continue
		}
		if path, ok := m.classes[suffix]; ok {
			return matchColor, path
		}
		if unknown == "" {
			if palette, _, found := strings.Cut(suffix, "-"); found && m.palettes[palette] {
				unknown = u + suffix
			}
		}
	}
	if unknown != "" {
		return matchUnknown, unknown
	}
	return matchNone, ""
}

// stripVariants drops variant prefixes (hover:, md:, [&>*]:) and returns
// the utility itself.
func stripVariants(class string) string {
	depth := 0
	cut := -1
	for i := 0; i < len(class); i++ {
		switch class[i] {
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		case ':':
			if depth == 0 {
				cut = i
			}
		}
	}
	return class[cut+1:]
}
