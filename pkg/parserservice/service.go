// Package parserservice adapts the teacher's multi-language tree-sitter
// parser service (pkg/parser/service.go, pkg/parser/cache.go) down to the
// single embedded-JS-dialect grammar this engine needs, and converts the
// resulting concrete-syntax tree into the pkg/ast.Document shape the AST
// adapter consumes — the opaque "AST document" collaborator spec.md §6
// names. Parsers are pooled (sync.Pool) and reused across a batch run;
// trees are not cached here: each tree is closed once converted, and
// converted documents are cached by pkg/astcache.
package parserservice

import (
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	"github.com/taintmini/taintmini/pkg/ast"
)

// Service parses embedded-dialect script source into ast.Document trees.
type Service struct {
	lang *sitter.Language
	pool *sync.Pool
}

// New returns a Service with the javascript grammar registered and a
// parser pool ready for reuse (spec.md §6: "the parser is a pooled,
// replaceable collaborator, not a global singleton").
func New() *Service {
	lang := javascript.GetLanguage()
	return &Service{
		lang: lang,
		pool: &sync.Pool{
			New: func() interface{} {
				p := sitter.NewParser()
				p.SetLanguage(lang)
				return p
			},
		},
	}
}

// ParseResult carries the parsed document plus the raw source it was
// derived from.
type ParseResult struct {
	Doc    *ast.Document
	Source []byte
}

// Parse parses source and converts the resulting tree into an
// ast.Document. The tree-sitter tree is closed before returning: the
// converted Document owns no tree-sitter memory, so callers never need
// to manage tree lifetimes (a deliberate simplification over the
// teacher's CachedParse.Tree bookkeeping, which existed only to delay
// that same close).
func (s *Service) Parse(source []byte) (*ParseResult, error) {
	p := s.pool.Get().(*sitter.Parser)
	defer s.pool.Put(p)

	tree, err := p.ParseCtx(nil, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parserservice: parse: %w", err)
	}
	if tree == nil {
		return nil, fmt.Errorf("parserservice: parser returned no tree")
	}
	defer tree.Close()

	conv := &converter{source: source}
	doc := conv.convert(tree.RootNode())
	return &ParseResult{Doc: doc, Source: source}, nil
}
