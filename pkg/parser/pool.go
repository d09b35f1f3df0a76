package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	ts "github.com/tree-sitter/go-tree-sitter"
)

var errPoolClosed = errors.New("parser pool closed")

// parserPool hands out tree-sitter parsers for one grammar.
//
// Parsers are created lazily up to maxSize; after that acquire blocks until
// a parser is released. The channel carries idle parsers, the mutex guards
// creation and the closed flag. Parsers released after close are closed
// rather than pooled.
type parserPool struct {
	pool    chan *ts.Parser
	langPtr unsafe.Pointer
	grammar Grammar
	maxSize int

	mutex   sync.Mutex
	created int
	closed  bool

	logger *slog.Logger
}

func newParserPool(grammar Grammar, langPtr unsafe.Pointer, maxSize int, logger *slog.Logger) *parserPool {
	return &parserPool{
		pool:    make(chan *ts.Parser, maxSize),
		langPtr: langPtr,
		grammar: grammar,
		maxSize: maxSize,
		logger:  logger,
	}
}

// acquire returns an idle parser, creating one if the pool has room.
func (p *parserPool) acquire() (*ts.Parser, error) {
	select {
	case parser, ok := <-p.pool:
		if !ok {
			return nil, errPoolClosed
		}
		return parser, nil
	default:
		return p.createParserIfNeeded()
	}
}

func (p *parserPool) createParserIfNeeded() (*ts.Parser, error) {
	p.mutex.Lock()

	if p.closed {
		p.mutex.Unlock()
		return nil, errPoolClosed
	}

	if p.created < p.maxSize {
		parser := ts.NewParser()
		if parser == nil {
			p.mutex.Unlock()
			return nil, fmt.Errorf("failed to create parser")
		}

		if err := parser.SetLanguage(ts.NewLanguage(p.langPtr)); err != nil {
			parser.Close()
			p.mutex.Unlock()
			return nil, fmt.Errorf("failed to set language: %w", err)
		}

		p.created++
		p.logger.Debug("created parser in pool",
			"grammar", p.grammar.String(),
			"pool_size", p.created)

		p.mutex.Unlock()
		return parser, nil
	}

	// Pool exhausted: wait for a release.
	p.mutex.Unlock()
	parser, ok := <-p.pool
	if !ok {
		return nil, errPoolClosed
	}
	return parser, nil
}

// release returns a parser to the pool. Excess parsers are closed.
func (p *parserPool) release(parser *ts.Parser) {
	if parser == nil {
		return
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.closed {
		parser.Close()
		return
	}

	select {
	case p.pool <- parser:
	default:
		parser.Close()
		p.logger.Warn("parser pool full, closing excess parser",
			"grammar", p.grammar.String())
	}
}

// close drains the pool and closes every idle parser.
func (p *parserPool) close() {
	p.mutex.Lock()
	if p.closed {
		p.mutex.Unlock()
		return
	}
	p.closed = true
	close(p.pool)
	p.mutex.Unlock()

	count := 0
	for parser := range p.pool {
		if parser != nil {
			parser.Close()
			count++
		}
	}

	p.logger.Debug("closed parser pool",
		"grammar", p.grammar.String(),
		"parsers_closed", count)
}

func (p *parserPool) getCreatedCount() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.created
}
