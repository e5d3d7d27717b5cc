package taint

import (
	"context"
	"testing"

	"github.com/taintmini/taintmini/pkg/ast"
	"github.com/taintmini/taintmini/pkg/cfg"
	"github.com/taintmini/taintmini/pkg/config"
	"github.com/taintmini/taintmini/pkg/dataflow"
	"github.com/taintmini/taintmini/pkg/value"
)

func ident(name string) *ast.Document {
	return &ast.Document{Type: "Identifier", Fields: map[string]interface{}{"name": name}}
}

func literal(v interface{}, raw string) *ast.Document {
	return &ast.Document{Type: "Literal", Fields: map[string]interface{}{"value": v, "raw": raw}}
}

func member(object, property *ast.Document) *ast.Document {
	return &ast.Document{Type: "MemberExpression", Fields: map[string]interface{}{
		"object": object, "property": property, "computed": false,
	}}
}

func call(callee *ast.Document, args ...*ast.Document) *ast.Document {
	return &ast.Document{Type: "CallExpression", Fields: map[string]interface{}{
		"callee": callee, "arguments": args,
	}}
}

func exprStmt(expr *ast.Document) *ast.Document {
	return &ast.Document{Type: "ExpressionStatement", Fields: map[string]interface{}{"expression": expr}}
}

func varDecl(kind, name string, init *ast.Document) *ast.Document {
	return &ast.Document{Type: "VariableDeclaration", Fields: map[string]interface{}{
		"kind": kind,
		"declarations": []*ast.Document{
			{Type: "VariableDeclarator", Fields: map[string]interface{}{
				"id": ident(name), "init": init,
			}},
		},
	}}
}

func block(stmts ...*ast.Document) *ast.Document {
	return &ast.Document{Type: "BlockStatement", Body: stmts}
}

func fn(params []*ast.Document, body *ast.Document) *ast.Document {
	return &ast.Document{Type: "FunctionExpression", Fields: map[string]interface{}{
		"params": params, "body": body,
	}}
}

func prop(key string, value *ast.Document) *ast.Document {
	return &ast.Document{Type: "Property", Fields: map[string]interface{}{
		"key": ident(key), "value": value,
	}}
}

func object(props ...*ast.Document) *ast.Document {
	return &ast.Document{Type: "ObjectExpression", Fields: map[string]interface{}{"properties": props}}
}

// pageProgram builds `Page({ <method.name>: <method.fn>, ... })` as a
// Program document.
func pageProgram(methods ...*ast.Document) *ast.Document {
	pageCall := call(ident("Page"), object(methods...))
	return &ast.Document{Type: "Program", Body: []*ast.Document{exprStmt(pageCall)}}
}

func resolve(t *testing.T, doc *ast.Document, conf *config.Config) ([]Result, []Event) {
	t.Helper()
	g, root := ast.Build(doc)
	cfg.Build(g, root)
	eng := dataflow.New(context.Background(), g)
	if err := eng.Run(root); err != nil {
		t.Fatalf("dataflow.Run: %v", err)
	}
	eval := value.NewEvaluator(g)
	r := New(g, eval, conf)
	return r.Resolve(root)
}

// TestDirectFlowStorageToRequest exercises spec.md §8 scenario 1: a
// page-method local variable taken from a storage read flows unmodified
// into a network-request call argument.
func TestDirectFlowStorageToRequest(t *testing.T) {
	onLoad := fn(
		[]*ast.Document{ident("e")},
		block(
			varDecl("const", "v", call(member(ident("wx"), ident("getStorageSync")), literal("k", `"k"`))),
			exprStmt(call(member(ident("wx"), ident("request")), object(prop("url", ident("v"))))),
		),
	)
	doc := pageProgram(prop("onLoad", onLoad))

	results, events := resolve(t, doc, config.Empty())
	if len(events) != 0 {
		t.Fatalf("expected no events, got %v", events)
	}
	if len(results) != 1 {
		t.Fatalf("expected exactly one result, got %d: %+v", len(results), results)
	}
	got := results[0]
	if got.PageMethod != "onLoad" {
		t.Fatalf("expected PageMethod=onLoad, got %q", got.PageMethod)
	}
	if got.Ident != "v" {
		t.Fatalf("expected Ident=v, got %q", got.Ident)
	}
	if got.Source != "wx.getStorageSync" {
		t.Fatalf("expected Source=wx.getStorageSync, got %q", got.Source)
	}
	if got.Sink != "wx.request" {
		t.Fatalf("expected Sink=wx.request, got %q", got.Sink)
	}
}

// TestConfigFilterRejectsUnlistedSource exercises spec.md §4.F.4: a
// config naming a different source rejects an otherwise-real flow.
func TestConfigFilterRejectsUnlistedSource(t *testing.T) {
	onLoad := fn(
		[]*ast.Document{ident("e")},
		block(
			varDecl("const", "v", call(member(ident("wx"), ident("getStorageSync")), literal("k", `"k"`))),
			exprStmt(call(member(ident("wx"), ident("request")), object(prop("url", ident("v"))))),
		),
	)
	doc := pageProgram(prop("onLoad", onLoad))

	cfg := &config.Config{Sources: map[string]bool{"wx.getClipboardData": true}}
	results, _ := resolve(t, doc, cfg)
	if len(results) != 0 {
		t.Fatalf("expected config to filter out the only result, got %+v", results)
	}
}

// TestEventSubscribe exercises spec.md §8 scenario 3: ch.on(...) inside a
// page method subscribing to an event opened via getOpenerEventChannel.
func TestEventSubscribe(t *testing.T) {
	onLoad := fn(
		[]*ast.Document{},
		block(
			varDecl("const", "ch", call(member(ident("this"), ident("getOpenerEventChannel")))),
			exprStmt(call(
				member(ident("ch"), ident("on")),
				literal("ready", `"ready"`),
				fn([]*ast.Document{ident("data")}, block()),
			)),
		),
	)
	doc := pageProgram(prop("onLoad", onLoad))

	_, events := resolve(t, doc, config.Empty())
	if len(events) != 1 {
		t.Fatalf("expected exactly one event, got %d: %+v", len(events), events)
	}
	ev := events[0]
	if ev.Type != EventOn {
		t.Fatalf("expected EventOn, got %v", ev.Type)
	}
	if ev.EventName != "ready" {
		t.Fatalf("expected EventName=ready, got %q", ev.EventName)
	}
	if ev.Emitter != "this.getOpenerEventChannel" {
		t.Fatalf("expected Emitter=this.getOpenerEventChannel, got %q", ev.Emitter)
	}
}
