package jsconfig

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/uitheme/pkg/document"
	"github.com/gnana997/uitheme/pkg/parser"
)

func newTestEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	pm := parser.NewParserManager(logger)
	t.Cleanup(func() { pm.Close() })
	return NewEvaluator(pm, logger)
}

func lookupScalar(t *testing.T, root *document.Node, path string) string {
	t.Helper()
	n, ok := root.Lookup(path)
	require.True(t, ok, "missing %s", path)
	return n.Scalar
}

const commonJSConfig = `/** @type {import('tailwindcss').Config} */
module.exports = {
  content: [
    "./templates/**/*.html",
    "./static/js/**/*.js",
  ],
  theme: {
    extend: {
      colors: {
        primary: {
          50: '#f0f9ff',
          500: '#0ea5e9',
        },
        health: {
          green: '#10b981',
        },
      },
      fontFamily: {
        sans: ['Inter', 'system-ui', 'sans-serif'],
      },
    },
  },
  plugins: [],
}
`

func TestEvaluate_CommonJS(t *testing.T) {
	ev := newTestEvaluator(t)

	root, err := ev.Evaluate([]byte(commonJSConfig), parser.GrammarJavaScript)
	require.NoError(t, err)
	require.Equal(t, document.KindMap, root.Kind)

	assert.Equal(t, []string{"content", "theme", "plugins"}, root.Keys)
	assert.Equal(t, "#0ea5e9", lookupScalar(t, root, "theme.extend.colors.primary.500"))
	assert.Equal(t, "#10b981", lookupScalar(t, root, "theme.extend.colors.health.green"))

	palette, ok := root.Lookup("theme.extend.colors.primary")
	require.True(t, ok)
	assert.Equal(t, []string{"50", "500"}, palette.Keys)

	content, ok := root.Get("content")
	require.True(t, ok)
	require.Len(t, content.Items, 2)
	assert.Equal(t, "./templates/**/*.html", content.Items[0].Scalar)
	assert.Equal(t, 4, content.Items[0].Pos.Line)

	plugins, ok := root.Get("plugins")
	require.True(t, ok)
	assert.Equal(t, document.KindList, plugins.Kind)
	assert.Empty(t, plugins.Items)
}

func TestEvaluate_TypeScriptSatisfies(t *testing.T) {
	ev := newTestEvaluator(t)

	src := `import type { Config } from 'tailwindcss'

export default {
  content: ['./src/**/*.{ts,tsx}'],
  theme: { extend: { colors: { brand: '#123456' } } },
} satisfies Config
`
	root, err := ev.Evaluate([]byte(src), parser.GrammarTypeScript)
	require.NoError(t, err)
	assert.Equal(t, "#123456", lookupScalar(t, root, "theme.extend.colors.brand"))
}

func TestEvaluate_BindingsAndWrappers(t *testing.T) {
	ev := newTestEvaluator(t)

	src := `const brand = { 500: "#0ea5e9", DEFAULT: "#0284c7" }
const sans = ["Inter", "sans-serif"]
const base = { white: "#fff" }

export default defineConfig(() => ({
  content: ["./index.html"],
  theme: {
    extend: {
      colors: { ...base, brand },
      fontFamily: { sans },
    },
  },
}))
`
	root, err := ev.Evaluate([]byte(src), parser.GrammarJavaScript)
	require.NoError(t, err)

	assert.Equal(t, "#fff", lookupScalar(t, root, "theme.extend.colors.white"))
	assert.Equal(t, "#0ea5e9", lookupScalar(t, root, "theme.extend.colors.brand.500"))

	colors, ok := root.Lookup("theme.extend.colors")
	require.True(t, ok)
	assert.Equal(t, []string{"white", "brand"}, colors.Keys)

	sansNode, ok := root.Lookup("theme.extend.fontFamily.sans")
	require.True(t, ok)
	require.Len(t, sansNode.Items, 2)
	assert.Equal(t, "Inter", sansNode.Items[0].Scalar)
}

func TestEvaluate_ExportedIdentifier(t *testing.T) {
	ev := newTestEvaluator(t)

	src := `const config = { content: [], theme: {} }
export default config
`
	root, err := ev.Evaluate([]byte(src), parser.GrammarJavaScript)
	require.NoError(t, err)
	assert.Equal(t, []string{"content", "theme"}, root.Keys)
}

func TestEvaluate_RequireBecomesExpr(t *testing.T) {
	ev := newTestEvaluator(t)

	src := `const colors = require('tailwindcss/colors')
module.exports = {
  content: [],
  theme: { extend: { colors: { sky: colors.sky } } },
  plugins: [require('@tailwindcss/forms'), require("@tailwindcss/typography")({ className: 'x' })],
}
`
	root, err := ev.Evaluate([]byte(src), parser.GrammarJavaScript)
	require.NoError(t, err)

	sky, ok := root.Lookup("theme.extend.colors.sky")
	require.True(t, ok)
	assert.Equal(t, document.KindExpr, sky.Kind)
	assert.Equal(t, "colors.sky", sky.Scalar)
	assert.Equal(t, "tailwindcss/colors", sky.Ref)

	plugins, ok := root.Get("plugins")
	require.True(t, ok)
	require.Len(t, plugins.Items, 2)
	assert.Equal(t, "@tailwindcss/forms", plugins.Items[0].Ref)
	assert.Equal(t, "@tailwindcss/typography", plugins.Items[1].Ref)
}

func TestEvaluate_Literals(t *testing.T) {
	ev := newTestEvaluator(t)

	src := "module.exports = { a: -1.5, b: true, c: null, d: undefined, e: `tpl`, f: 'it\\'s\\u0021', 'g-h': 1, 100: 'x' }"
	root, err := ev.Evaluate([]byte(src), parser.GrammarJavaScript)
	require.NoError(t, err)

	a, _ := root.Get("a")
	assert.Equal(t, document.KindNumber, a.Kind)
	assert.Equal(t, "-1.5", a.Scalar)

	b, _ := root.Get("b")
	assert.Equal(t, document.KindBool, b.Kind)
	assert.Equal(t, "true", b.Scalar)

	c, _ := root.Get("c")
	assert.Equal(t, document.KindNull, c.Kind)
	d, _ := root.Get("d")
	assert.Equal(t, document.KindNull, d.Kind)

	assert.Equal(t, "tpl", lookupScalar(t, root, "e"))
	assert.Equal(t, "it's!", lookupScalar(t, root, "f"))
	assert.Equal(t, "1", lookupScalar(t, root, "g-h"))
	assert.Equal(t, "x", lookupScalar(t, root, "100"))
}

func TestEvaluate_TemplateWithSubstitutionIsExpr(t *testing.T) {
	ev := newTestEvaluator(t)

	root, err := ev.Evaluate([]byte("const v = 1\nmodule.exports = { a: `x${v}` }"), parser.GrammarJavaScript)
	require.NoError(t, err)

	a, _ := root.Get("a")
	assert.Equal(t, document.KindExpr, a.Kind)
}

func TestEvaluate_SyntaxError(t *testing.T) {
	ev := newTestEvaluator(t)

	src := "module.exports = {\n  content: [\n    './a',,,\n  theme: {\n"
	_, err := ev.Evaluate([]byte(src), parser.GrammarJavaScript)
	require.Error(t, err)

	var syn *SyntaxError
	require.True(t, errors.As(err, &syn))
	assert.Greater(t, syn.Pos.Line, 0)
}

func TestEvaluate_NoExport(t *testing.T) {
	ev := newTestEvaluator(t)

	_, err := ev.Evaluate([]byte("const config = {}\n"), parser.GrammarJavaScript)
	assert.ErrorIs(t, err, ErrNoExport)
}

func TestEvaluate_UnknownGrammar(t *testing.T) {
	ev := newTestEvaluator(t)

	_, err := ev.Evaluate([]byte("{}"), parser.GrammarUnknown)
	assert.Error(t, err)
}

func TestUnescape(t *testing.T) {
	cases := map[string]string{
		`plain`:     "plain",
		`a\nb`:      "a\nb",
		`\x41`:      "A",
		`\u00e9`:    "é",
		`\u{1F600}`: "😀",
		`\q`:        "q",
		`tail\`:     `tail\`,
		"line\\\nx": "linex",
	}
	for in, want := range cases {
		assert.Equal(t, want, unescape(in), "input %q", in)
	}
}
