package ast_test

import (
	"reflect"
	"testing"

	"github.com/taintmini/taintmini/pkg/ast"
	"github.com/taintmini/taintmini/pkg/parserservice"
)

// reparseAndCompare implements spec.md §8's round-trip smoke test:
// parse, regenerate source, reparse, and check the two ASTs agree up to
// node ids and locations (structurally, ignoring range/position fields).
func reparseAndCompare(t *testing.T, source string) {
	t.Helper()
	svc := parserservice.New()

	first, err := svc.Parse([]byte(source))
	if err != nil {
		t.Fatalf("parse original: %v", err)
	}

	generated := ast.Generate(first.Doc)

	second, err := svc.Parse([]byte(generated))
	if err != nil {
		t.Fatalf("parse generated source %q: %v", generated, err)
	}

	if !structurallyEqual(first.Doc, second.Doc) {
		t.Fatalf("round trip mismatch:\noriginal:  %s\nregenerated: %s", source, generated)
	}
}

func structurallyEqual(a, b *ast.Document) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Type != b.Type {
		return false
	}
	if len(a.Body) != len(b.Body) {
		return false
	}
	for i := range a.Body {
		if !structurallyEqual(a.Body[i], b.Body[i]) {
			return false
		}
	}
	for k, av := range a.Fields {
		if k == "range" || k == "raw" {
			continue
		}
		bv, ok := b.Fields[k]
		if !ok {
			return false
		}
		if !fieldsEqual(av, bv) {
			return false
		}
	}
	return true
}

func fieldsEqual(a, b interface{}) bool {
	switch av := a.(type) {
	case *ast.Document:
		bd, ok := b.(*ast.Document)
		return ok && structurallyEqual(av, bd)
	case []*ast.Document:
		bd, ok := b.([]*ast.Document)
		if !ok || len(av) != len(bd) {
			return false
		}
		for i := range av {
			if !structurallyEqual(av[i], bd[i]) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(a, b)
	}
}

func TestRoundTripDirectFlow(t *testing.T) {
	reparseAndCompare(t, `Page({ onLoad(e) { const v = wx.getStorageSync('k'); wx.request({ url: v }); } })`)
}

func TestRoundTripEventEmit(t *testing.T) {
	reparseAndCompare(t, `Page({ go() { wx.navigateTo({ url: 'p', success(res) { res.eventChannel.emit('msg', userData); } }); } })`)
}

func TestRoundTripBinaryAndConditional(t *testing.T) {
	reparseAndCompare(t, `function f(a, b) { return a > b ? a + b : a - b; }`)
}
