package parser

import (
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestParseJavaScriptConfig(t *testing.T) {
	manager := NewParserManager(testLogger())
	defer manager.Close()

	tree, err := manager.Parse([]byte("module.exports = { content: ['./a/**/*.html'] }"), GrammarJavaScript)
	require.NoError(t, err)
	defer tree.Close()

	root := tree.RootNode()
	assert.Equal(t, "program", root.Kind())
	assert.False(t, root.HasError())
}

func TestParseTypeScriptConfig(t *testing.T) {
	manager := NewParserManager(testLogger())
	defer manager.Close()

	src := "import type { Config } from 'tailwindcss'\nexport default { content: [] } satisfies Config\n"
	tree, err := manager.Parse([]byte(src), GrammarTypeScript)
	require.NoError(t, err)
	defer tree.Close()

	root := tree.RootNode()
	assert.False(t, root.HasError())
	assert.Contains(t, root.ToSexp(), "satisfies_expression")
}

func TestParseReturnsPartialTreeOnSyntaxError(t *testing.T) {
	manager := NewParserManager(testLogger())
	defer manager.Close()

	tree, err := manager.Parse([]byte("module.exports = { content: [ }"), GrammarJavaScript)
	require.NoError(t, err)
	defer tree.Close()

	assert.True(t, tree.RootNode().HasError())
}

func TestParseUnknownGrammar(t *testing.T) {
	manager := NewParserManager(testLogger())
	defer manager.Close()

	_, err := manager.Parse([]byte("x"), GrammarUnknown)
	assert.Error(t, err)

	_, err = manager.ParseFile([]byte("x"), "theme.yaml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file extension")
}

func TestDetectGrammar(t *testing.T) {
	cases := map[string]Grammar{
		"tailwind.config.js":  GrammarJavaScript,
		"tailwind.config.cjs": GrammarJavaScript,
		"tailwind.config.MJS": GrammarJavaScript,
		"tailwind.config.ts":  GrammarTypeScript,
		"tailwind.config.mts": GrammarTypeScript,
		"theme.tsx":           GrammarTSX,
		"theme.json":          GrammarUnknown,
	}
	for path, want := range cases {
		assert.Equal(t, want, DetectGrammar(path), path)
	}
}

func TestConcurrentParsing(t *testing.T) {
	manager := NewParserManagerWithPoolSize(testLogger(), 4)
	defer manager.Close()

	const numGoroutines = 50
	var wg sync.WaitGroup
	errChan := make(chan error, numGoroutines*len(SupportedGrammars()))

	for _, g := range SupportedGrammars() {
		for i := 0; i < numGoroutines; i++ {
			wg.Add(1)
			go func(g Grammar) {
				defer wg.Done()
				tree, err := manager.Parse([]byte("export default { plugins: [] }"), g)
				if err != nil {
					errChan <- err
					return
				}
				tree.Close()
			}(g)
		}
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		t.Errorf("concurrent parse failed: %v", err)
	}

	stats := manager.GetStats()
	assert.LessOrEqual(t, stats.ParsersCreated, 4*len(SupportedGrammars()))
	assert.GreaterOrEqual(t, stats.ParsersCreated, 1)
	assert.Equal(t, numGoroutines*len(SupportedGrammars()), stats.ParsesCalled)
}

func TestParserPool_ReleaseAfterClose(t *testing.T) {
	langPtr, err := languagePointer(GrammarJavaScript)
	require.NoError(t, err)
	pool := newParserPool(GrammarJavaScript, langPtr, 1, testLogger())

	parser, err := pool.acquire()
	require.NoError(t, err)

	// A parse still running when the manager closes releases late.
	pool.close()
	assert.NotPanics(t, func() { pool.release(parser) })
	assert.NotPanics(t, pool.close)

	_, err = pool.acquire()
	assert.ErrorIs(t, err, errPoolClosed)
}
