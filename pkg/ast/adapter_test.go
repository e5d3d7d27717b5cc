package ast

import (
	"testing"

	"github.com/taintmini/taintmini/pkg/pdg"
)

func TestBuildSimpleAssignment(t *testing.T) {
	// var x = 1;
	doc := &Document{
		Type: "Program",
		Body: []*Document{
			{
				Type: "VariableDeclaration",
				Fields: map[string]interface{}{
					"kind": "var",
					"declarations": []*Document{
						{
							Type: "VariableDeclarator",
							Fields: map[string]interface{}{
								"id":   &Document{Type: "Identifier", Fields: map[string]interface{}{"name": "x"}},
								"init": &Document{Type: "Literal", Fields: map[string]interface{}{"value": 1.0, "raw": "1"}},
							},
						},
					},
				},
			},
		},
	}

	g, root := Build(doc)
	if g.Node(root).Kind != pdg.KindProgram {
		t.Fatalf("expected root to be Program, got %v", g.Node(root).Kind)
	}
	decl := g.Node(root).Children[0]
	if g.Node(decl).Kind != pdg.KindVariableDeclaration {
		t.Fatalf("expected VariableDeclaration, got %v", g.Node(decl).Kind)
	}
	if g.Node(decl).Attrs["kind"] != "var" {
		t.Fatalf("expected kind=var attr, got %v", g.Node(decl).Attrs["kind"])
	}
	declarator := g.Node(decl).Children[0]
	if g.Node(declarator).Kind != pdg.KindVariableDeclarator {
		t.Fatalf("expected VariableDeclarator, got %v", g.Node(declarator).Kind)
	}
	var idHandle, litHandle pdg.Handle = pdg.InvalidHandle(), pdg.InvalidHandle()
	for _, c := range g.Node(declarator).Children {
		switch g.Node(c).Role {
		case "id":
			idHandle = c
		case "init":
			litHandle = c
		}
	}
	if idHandle == pdg.InvalidHandle() || g.Node(idHandle).Kind != pdg.KindIdentifier {
		t.Fatalf("expected id child to be Identifier")
	}
	if g.Node(idHandle).Attrs["name"] != "x" {
		t.Fatalf("expected name=x attr, got %v", g.Node(idHandle).Attrs["name"])
	}
	if litHandle == pdg.InvalidHandle() || g.Node(litHandle).Kind != pdg.KindLiteral {
		t.Fatalf("expected init child to be Literal")
	}
	if g.Node(litHandle).Attrs["value"] != 1.0 {
		t.Fatalf("expected value=1.0 attr, got %v", g.Node(litHandle).Attrs["value"])
	}
}

func TestBuildElidedArraySlotBecomesNone(t *testing.T) {
	// [, a] = arr;
	doc := &Document{
		Type: "Program",
		Body: []*Document{
			{
				Type: "ExpressionStatement",
				Fields: map[string]interface{}{
					"expression": &Document{
						Type: "AssignmentExpression",
						Fields: map[string]interface{}{
							"operator": "=",
							"left": &Document{
								Type: "ArrayPattern",
								Fields: map[string]interface{}{
									"elements": []*Document{
										nil,
										{Type: "Identifier", Fields: map[string]interface{}{"name": "a"}},
									},
								},
							},
							"right": &Document{Type: "Identifier", Fields: map[string]interface{}{"name": "arr"}},
						},
					},
				},
			},
		},
	}

	g, root := Build(doc)
	exprStmt := g.Node(root).Children[0]
	assign := g.Node(exprStmt).Children[0]
	var left pdg.Handle = pdg.InvalidHandle()
	for _, c := range g.Node(assign).Children {
		if g.Node(c).Role == "left" {
			left = c
		}
	}
	if left == pdg.InvalidHandle() {
		t.Fatalf("expected left child")
	}
	elements := g.Node(left).Children
	if len(elements) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(elements))
	}
	if g.Node(elements[0]).Kind != pdg.KindNone {
		t.Fatalf("expected first element to be KindNone placeholder, got %v", g.Node(elements[0]).Kind)
	}
	if g.Node(elements[1]).Kind != pdg.KindIdentifier {
		t.Fatalf("expected second element to be Identifier, got %v", g.Node(elements[1]).Kind)
	}
}

func TestUnrecognizedTypeFallsBackToExpressionStatement(t *testing.T) {
	doc := &Document{
		Type: "Program",
		Body: []*Document{
			{Type: "SomeFutureSyntaxNode"},
		},
	}
	g, root := Build(doc)
	child := g.Node(root).Children[0]
	if g.Node(child).Kind != pdg.KindExpressionStatement {
		t.Fatalf("expected fallback to KindExpressionStatement, got %v", g.Node(child).Kind)
	}
}
