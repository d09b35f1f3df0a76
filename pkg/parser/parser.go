// Package parser provides pooled tree-sitter parsers for JavaScript and
// TypeScript configuration modules.
package parser

import (
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	ts "github.com/tree-sitter/go-tree-sitter"
	ts_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	ts_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// ParserManager owns one lazily created parser pool per grammar.
//
// It is safe for concurrent use. Callers own the returned trees and must
// close them; the manager itself must be closed via Close.
//
// Example:
//
//	manager := NewParserManager(logger)
//	defer manager.Close()
//
//	tree, err := manager.Parse([]byte("module.exports = {}"), GrammarJavaScript)
//	if err != nil {
//	    return err
//	}
//	defer tree.Close()
type ParserManager struct {
	pools  map[Grammar]*parserPool
	mutex  sync.RWMutex
	logger *slog.Logger

	poolSize     int
	parsesCalled int
}

// NewParserManager creates a ParserManager with CPU-aware pool sizing.
func NewParserManager(logger *slog.Logger) *ParserManager {
	return NewParserManagerWithPoolSize(logger, 0)
}

// NewParserManagerWithPoolSize creates a ParserManager whose pools hold at
// most poolSize parsers. Zero selects the CPU-aware default.
func NewParserManagerWithPoolSize(logger *slog.Logger, poolSize int) *ParserManager {
	if logger == nil {
		logger = slog.Default()
	}

	return &ParserManager{
		pools:    make(map[Grammar]*parserPool),
		logger:   logger,
		poolSize: getPoolSize(poolSize),
	}
}

// Parse parses source with the given grammar.
//
// Trees that contain syntax errors are still returned; callers decide
// whether a partial tree is acceptable by checking RootNode().HasError().
func (pm *ParserManager) Parse(source []byte, grammar Grammar) (*ts.Tree, error) {
	if grammar == GrammarUnknown {
		return nil, fmt.Errorf("cannot parse unknown grammar")
	}

	pm.mutex.Lock()
	pm.parsesCalled++
	pm.mutex.Unlock()

	pool, err := pm.getOrCreatePool(grammar)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool for %s: %w", grammar, err)
	}

	parser, err := pool.acquire()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire parser: %w", err)
	}

	tree := parser.Parse(source, nil)
	pool.release(parser)

	if tree == nil {
		return nil, fmt.Errorf("parser.Parse returned nil tree")
	}

	if tree.RootNode().HasError() {
		pm.logger.Debug("parse tree contains errors", "grammar", grammar.String())
	}

	return tree, nil
}

// ParseFile detects the grammar from filePath and parses source.
func (pm *ParserManager) ParseFile(source []byte, filePath string) (*ts.Tree, error) {
	grammar := DetectGrammar(filePath)
	if grammar == GrammarUnknown {
		return nil, fmt.Errorf("unsupported file extension: %s", filePath)
	}
	return pm.Parse(source, grammar)
}

// Close releases every pool. The manager must not be used afterwards.
func (pm *ParserManager) Close() error {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	pm.logger.Debug("closing ParserManager", "parses_called", pm.parsesCalled)

	for _, pool := range pm.pools {
		if pool != nil {
			pool.close()
		}
	}
	pm.pools = make(map[Grammar]*parserPool)

	return nil
}

// getOrCreatePool uses double-checked locking so the common path only takes
// a read lock.
func (pm *ParserManager) getOrCreatePool(grammar Grammar) (*parserPool, error) {
	pm.mutex.RLock()
	pool, exists := pm.pools[grammar]
	pm.mutex.RUnlock()
	if exists {
		return pool, nil
	}

	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	if pool, exists = pm.pools[grammar]; exists {
		return pool, nil
	}

	langPtr, err := languagePointer(grammar)
	if err != nil {
		return nil, err
	}

	pool = newParserPool(grammar, langPtr, pm.poolSize, pm.logger)
	pm.pools[grammar] = pool

	pm.logger.Debug("created new parser pool",
		"grammar", grammar.String(),
		"maxSize", pm.poolSize)

	return pool, nil
}

func languagePointer(grammar Grammar) (unsafe.Pointer, error) {
	switch grammar {
	case GrammarJavaScript:
		return ts_javascript.Language(), nil
	case GrammarTypeScript:
		return ts_typescript.LanguageTypescript(), nil
	case GrammarTSX:
		return ts_typescript.LanguageTSX(), nil
	default:
		return nil, fmt.Errorf("unsupported grammar: %s", grammar.String())
	}
}

// GetStats returns parser usage statistics.
func (pm *ParserManager) GetStats() ParserStats {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()

	total := 0
	for _, pool := range pm.pools {
		total += pool.getCreatedCount()
	}

	return ParserStats{
		ParsersCreated: total,
		ParsesCalled:   pm.parsesCalled,
	}
}

// ParserStats contains parser usage statistics.
type ParserStats struct {
	ParsersCreated int
	ParsesCalled   int
}
