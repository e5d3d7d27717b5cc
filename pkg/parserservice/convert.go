package parserservice

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/taintmini/taintmini/pkg/ast"
)

// typeMap translates go-tree-sitter's javascript grammar node type names
// (snake_case, grounded on the grammar node-types.json the teacher's
// pkg/parser/languages package already depends on) into the ESTree-style
// type strings pkg/ast.typeToKind expects. Grammar node types with no
// entry pass through unchanged; most such nodes are punctuation/anonymous
// tokens tree-sitter exposes only as unnamed children and are skipped by
// convert's named-children walk.
var typeMap = map[string]string{
	"program":               "Program",
	"expression_statement":  "ExpressionStatement",
	"variable_declaration":  "VariableDeclaration",
	"lexical_declaration":   "VariableDeclaration",
	"variable_declarator":   "VariableDeclarator",
	"return_statement":      "ReturnStatement",
	"if_statement":          "IfStatement",
	"switch_statement":      "SwitchStatement",
	"switch_case":           "SwitchCase",
	"switch_default":        "SwitchCase",
	"try_statement":         "TryStatement",
	"for_statement":         "ForStatement",
	"for_in_statement":      "ForInStatement", // disambiguated below by operator text
	"while_statement":       "WhileStatement",
	"do_statement":          "DoWhileStatement",
	"break_statement":       "BreakStatement",
	"continue_statement":    "ContinueStatement",
	"throw_statement":       "ThrowStatement",
	"labeled_statement":     "LabeledStatement",
	"debugger_statement":    "DebuggerStatement",
	"catch_clause":          "CatchClause",
	"statement_block":       "BlockStatement",
	"function_declaration":  "FunctionDeclaration",
	"generator_function_declaration": "FunctionDeclaration",
	"class_declaration":     "ClassDeclaration",
	"assignment_expression": "AssignmentExpression",
	"augmented_assignment_expression": "AssignmentExpression",
	"array":                 "ArrayExpression",
	"arrow_function":        "ArrowFunctionExpression",
	"await_expression":      "AwaitExpression",
	"binary_expression":     "BinaryExpression",
	"call_expression":       "CallExpression",
	"class":                 "ClassExpression",
	"ternary_expression":    "ConditionalExpression",
	"function":              "FunctionExpression",
	"generator_function":    "FunctionExpression",
	"function_expression":   "FunctionExpression",
	"member_expression":     "MemberExpression",
	"subscript_expression":  "MemberExpression",
	"new_expression":        "NewExpression",
	"object":                "ObjectExpression",
	"object_pattern":        "ObjectPattern",
	"array_pattern":         "ArrayExpression",
	"sequence_expression":   "SequenceExpression",
	"template_string":       "TemplateLiteral",
	"template_substitution": "TemplateElement",
	"this":                  "ThisExpression",
	"unary_expression":      "UnaryExpression",
	"update_expression":     "UpdateExpression",
	"yield_expression":      "YieldExpression",
	"identifier":            "Identifier",
	"property_identifier":   "Identifier",
	"shorthand_property_identifier": "Identifier",
	"private_property_identifier":   "Identifier",
	"pair":                  "Property",
	"method_definition":     "Property",
	"number":                "Literal",
	"string":                "Literal",
	"true":                  "Literal",
	"false":                 "Literal",
	"null":                  "Literal",
	"regex":                 "Literal",
	"comment":                "Line",
	"parenthesized_expression": "", // transparent: converted node is its single child
}

// logicalOperators marks binary_expression operator tokens the ESTree
// shape distinguishes as LogicalExpression rather than BinaryExpression.
var logicalOperators = map[string]bool{"&&": true, "||": true, "??": true}

type converter struct {
	source []byte
}

func (c *converter) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(c.source)
}

// convert walks a tree-sitter node into an ast.Document. Unnamed
// (punctuation/keyword) nodes are never visited directly; they are
// skipped by callers that only iterate NamedChild.
func (c *converter) convert(n *sitter.Node) *ast.Document {
	if n == nil {
		return nil
	}
	ts := n.Type()

	// parenthesized_expression carries no semantic node of its own.
	if ts == "parenthesized_expression" {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			return c.convert(n.NamedChild(i))
		}
		return nil
	}

	estree, ok := typeMap[ts]
	if !ok || estree == "" {
		estree = ts
	}

	doc := &ast.Document{Type: estree, Fields: map[string]interface{}{
		"range": []int{int(n.StartByte()), int(n.EndByte())},
	}}

	switch estree {
	case "Program":
		doc.Body = c.statementList(n)
		doc.SourceType = "script"
	case "BlockStatement":
		doc.Body = c.statementList(n)
	case "Identifier":
		doc.Fields["name"] = c.text(n)
	case "Literal":
		c.fillLiteral(doc, n, ts)
	case "TemplateLiteral":
		c.fillTemplateLiteral(doc, n)
	case "VariableDeclaration":
		doc.Fields["kind"] = c.text(n.Child(0))
		doc.Fields["declarations"] = c.namedChildDocs(n, "variable_declarator")
	case "VariableDeclarator":
		doc.Fields["id"] = c.convert(n.ChildByFieldName("name"))
		doc.Fields["init"] = c.convert(n.ChildByFieldName("value"))
	case "ExpressionStatement":
		doc.Fields["expression"] = c.convert(n.NamedChild(0))
	case "ReturnStatement":
		doc.Fields["argument"] = c.convert(n.NamedChild(0))
	case "IfStatement":
		doc.Fields["test"] = c.convert(n.ChildByFieldName("condition"))
		doc.Fields["consequent"] = c.convert(n.ChildByFieldName("consequence"))
		if alt := n.ChildByFieldName("alternative"); alt != nil {
			doc.Fields["alternate"] = c.convert(alt)
		}
	case "ConditionalExpression":
		doc.Fields["test"] = c.convert(n.ChildByFieldName("condition"))
		doc.Fields["consequent"] = c.convert(n.ChildByFieldName("consequence"))
		doc.Fields["alternate"] = c.convert(n.ChildByFieldName("alternative"))
	case "SwitchStatement":
		doc.Fields["discriminant"] = c.convert(n.ChildByFieldName("value"))
		body := n.ChildByFieldName("body")
		doc.Fields["cases"] = c.namedChildDocs(body, "switch_case", "switch_default")
	case "SwitchCase":
		doc.Fields["test"] = c.convert(n.ChildByFieldName("value"))
		doc.Fields["consequent"] = c.statementsAfterFirst(n)
	case "TryStatement":
		doc.Fields["block"] = c.convert(n.ChildByFieldName("body"))
		if h := n.ChildByFieldName("handler"); h != nil {
			doc.Fields["handler"] = c.convert(h)
		}
		if f := n.ChildByFieldName("finalizer"); f != nil {
			doc.Fields["finalizer"] = c.convert(f)
		}
	case "CatchClause":
		if p := n.ChildByFieldName("parameter"); p != nil {
			doc.Fields["param"] = c.convert(p)
		}
		doc.Fields["body"] = c.convert(n.ChildByFieldName("body"))
	case "ForStatement":
		doc.Fields["init"] = c.convert(n.ChildByFieldName("initializer"))
		doc.Fields["test"] = c.convert(n.ChildByFieldName("condition"))
		doc.Fields["update"] = c.convert(n.ChildByFieldName("increment"))
		doc.Fields["body"] = c.convert(n.ChildByFieldName("body"))
	case "ForInStatement":
		doc.Fields["left"] = c.convert(n.ChildByFieldName("left"))
		doc.Fields["right"] = c.convert(n.ChildByFieldName("right"))
		doc.Fields["body"] = c.convert(n.ChildByFieldName("body"))
		if opNode := n.ChildByFieldName("operator"); opNode != nil && c.text(opNode) == "of" {
			doc.Type = "ForOfStatement"
		}
	case "WhileStatement":
		doc.Fields["test"] = c.convert(n.ChildByFieldName("condition"))
		doc.Fields["body"] = c.convert(n.ChildByFieldName("body"))
	case "DoWhileStatement":
		doc.Fields["body"] = c.convert(n.ChildByFieldName("body"))
		doc.Fields["test"] = c.convert(n.ChildByFieldName("condition"))
	case "ThrowStatement":
		doc.Fields["argument"] = c.convert(n.NamedChild(0))
	case "LabeledStatement":
		doc.Fields["label"] = c.convert(n.ChildByFieldName("label"))
		doc.Fields["body"] = c.convert(n.ChildByFieldName("body"))
	case "BreakStatement", "ContinueStatement":
		if l := n.ChildByFieldName("label"); l != nil {
			doc.Fields["label"] = c.convert(l)
		}
	case "FunctionDeclaration", "FunctionExpression":
		if nm := n.ChildByFieldName("name"); nm != nil {
			doc.Fields["id"] = c.convert(nm)
		}
		doc.Fields["params"] = c.namedChildDocsOf(n.ChildByFieldName("parameters"))
		doc.Fields["body"] = c.convert(n.ChildByFieldName("body"))
		doc.Fields["generator"] = strings.Contains(n.Type(), "generator")
		doc.Fields["async"] = c.hasAsyncKeyword(n)
	case "ArrowFunctionExpression":
		params := n.ChildByFieldName("parameters")
		if params == nil {
			// single bare-identifier parameter form: `x => x+1`
			if p := n.ChildByFieldName("parameter"); p != nil {
				doc.Fields["params"] = []*ast.Document{c.convert(p)}
			}
		} else {
			doc.Fields["params"] = c.namedChildDocsOf(params)
		}
		doc.Fields["body"] = c.convert(n.ChildByFieldName("body"))
		doc.Fields["async"] = c.hasAsyncKeyword(n)
	case "ClassDeclaration", "ClassExpression":
		if nm := n.ChildByFieldName("name"); nm != nil {
			doc.Fields["id"] = c.convert(nm)
		}
	case "AssignmentExpression":
		doc.Fields["left"] = c.convert(n.ChildByFieldName("left"))
		doc.Fields["right"] = c.convert(n.ChildByFieldName("right"))
		doc.Fields["operator"] = c.operatorOf(n, "=")
	case "BinaryExpression":
		op := c.operatorOf(n, "")
		doc.Fields["left"] = c.convert(n.ChildByFieldName("left"))
		doc.Fields["right"] = c.convert(n.ChildByFieldName("right"))
		doc.Fields["operator"] = op
		if logicalOperators[op] {
			doc.Type = "LogicalExpression"
		}
	case "UnaryExpression":
		doc.Fields["operator"] = c.text(n.Child(0))
		doc.Fields["argument"] = c.convert(n.ChildByFieldName("argument"))
		doc.Fields["prefix"] = true
	case "UpdateExpression":
		doc.Fields["argument"] = c.convert(n.ChildByFieldName("argument"))
		prefix := false
		if first := n.Child(0); first != nil && !first.IsNamed() {
			prefix = true
		}
		doc.Fields["prefix"] = prefix
		doc.Fields["operator"] = c.lastOperatorToken(n)
	case "CallExpression", "NewExpression":
		doc.Fields["callee"] = c.convert(n.ChildByFieldName("function"))
		doc.Fields["arguments"] = c.namedChildDocsOf(n.ChildByFieldName("arguments"))
	case "MemberExpression":
		doc.Fields["object"] = c.convert(n.ChildByFieldName("object"))
		if p := n.ChildByFieldName("property"); p != nil {
			doc.Fields["property"] = c.convert(p)
			doc.Fields["computed"] = false
		} else if idx := n.ChildByFieldName("index"); idx != nil {
			doc.Fields["object"] = c.convert(n.ChildByFieldName("object"))
			doc.Fields["property"] = c.convert(idx)
			doc.Fields["computed"] = true
		}
	case "ArrayExpression":
		doc.Fields["elements"] = c.elementList(n)
	case "ObjectExpression", "ObjectPattern":
		doc.Fields["properties"] = c.namedChildDocs(n, "pair", "shorthand_property_identifier", "spread_element", "method_definition")
	case "Property":
		// `method_definition` is the grammar's node for ES6 method-shorthand
		// properties (`onLoad(e) { ... }`, the conventional way a page's
		// methods are written) — it carries `name`/`parameters`/`body`
		// fields directly rather than a nested function node under
		// `value`, so it needs its own synthesized FunctionExpression.
		if ts == "method_definition" {
			doc.Fields["key"] = c.convert(n.ChildByFieldName("name"))
			doc.Fields["value"] = &ast.Document{Type: "FunctionExpression", Fields: map[string]interface{}{
				"params":    c.namedChildDocsOf(n.ChildByFieldName("parameters")),
				"body":      c.convert(n.ChildByFieldName("body")),
				"generator": false,
				"async":     c.hasAsyncKeyword(n),
			}}
			break
		}
		doc.Fields["key"] = c.convert(n.ChildByFieldName("key"))
		doc.Fields["value"] = c.convert(n.ChildByFieldName("value"))
	case "SequenceExpression":
		doc.Fields["expressions"] = c.allNamedDocs(n)
	case "AwaitExpression", "YieldExpression":
		if arg := n.NamedChild(0); arg != nil {
			doc.Fields["argument"] = c.convert(arg)
		}
	case "ThisExpression", "DebuggerStatement":
		// no fields
	}

	return doc
}

func (c *converter) fillLiteral(doc *ast.Document, n *sitter.Node, ts string) {
	raw := c.text(n)
	doc.Fields["raw"] = raw
	switch ts {
	case "number":
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			doc.Fields["value"] = f
		}
	case "string":
		doc.Fields["value"] = strings.Trim(raw, "\"'`")
	case "true":
		doc.Fields["value"] = true
	case "false":
		doc.Fields["value"] = false
	case "null":
		doc.Fields["value"] = nil
	case "regex":
		doc.Fields["regex"] = raw
	}
}

func (c *converter) fillTemplateLiteral(doc *ast.Document, n *sitter.Node) {
	var quasis, exprs []*ast.Document
	for i := 0; i < int(n.NamedChildCount()); i++ {
		ch := n.NamedChild(i)
		if ch.Type() == "template_substitution" {
			exprs = append(exprs, c.convert(ch.NamedChild(0)))
			continue
		}
		quasis = append(quasis, &ast.Document{
			Type: "TemplateElement",
			Fields: map[string]interface{}{
				"cooked": c.text(ch),
				"raw":    c.text(ch),
				"tail":   false,
			},
		})
	}
	doc.Fields["quasis"] = quasis
	doc.Fields["expressions"] = exprs
}

// statementList returns every named child of n's body-holding block,
// converted, in source order (Program and BlockStatement both hold
// plain statement sequences with no field name).
func (c *converter) statementList(n *sitter.Node) []*ast.Document {
	var out []*ast.Document
	for i := 0; i < int(n.NamedChildCount()); i++ {
		out = append(out, c.convert(n.NamedChild(i)))
	}
	return out
}

// statementsAfterFirst returns switch_case's body statements: every named
// child after the case's test expression.
func (c *converter) statementsAfterFirst(n *sitter.Node) []*ast.Document {
	var out []*ast.Document
	count := int(n.NamedChildCount())
	start := 1
	if n.Type() == "switch_default" {
		start = 0
	}
	for i := start; i < count; i++ {
		out = append(out, c.convert(n.NamedChild(i)))
	}
	return out
}

// elementList converts an array literal's elements, inserting a nil
// placeholder for elided slots (`[, a]`) the grammar represents as gaps
// between commas with no named child.
func (c *converter) elementList(n *sitter.Node) []*ast.Document {
	var out []*ast.Document
	pendingSlot := true
	for i := 0; i < int(n.ChildCount()); i++ {
		ch := n.Child(i)
		if ch.IsNamed() {
			out = append(out, c.convert(ch))
			pendingSlot = false
			continue
		}
		if ch.Type() == "," {
			if pendingSlot {
				out = append(out, nil)
			}
			pendingSlot = true
		}
	}
	return out
}

// namedChildDocsOf converts every named child of n (nil-safe).
func (c *converter) namedChildDocsOf(n *sitter.Node) []*ast.Document {
	if n == nil {
		return nil
	}
	return c.allNamedDocs(n)
}

func (c *converter) allNamedDocs(n *sitter.Node) []*ast.Document {
	var out []*ast.Document
	for i := 0; i < int(n.NamedChildCount()); i++ {
		out = append(out, c.convert(n.NamedChild(i)))
	}
	return out
}

// namedChildDocs converts only named children whose grammar type is one
// of want, preserving source order.
func (c *converter) namedChildDocs(n *sitter.Node, want ...string) []*ast.Document {
	if n == nil {
		return nil
	}
	wanted := map[string]bool{}
	for _, w := range want {
		wanted[w] = true
	}
	var out []*ast.Document
	for i := 0; i < int(n.NamedChildCount()); i++ {
		ch := n.NamedChild(i)
		if wanted[ch.Type()] {
			out = append(out, c.convert(ch))
		}
	}
	return out
}

// operatorOf returns the text of n's "operator" field child, or
// fallback unchanged when the grammar exposes no such field.
func (c *converter) operatorOf(n *sitter.Node, fallback string) string {
	if op := n.ChildByFieldName("operator"); op != nil {
		return c.text(op)
	}
	return fallback
}

// lastOperatorToken returns the text of update_expression's `++`/`--`
// token, which the grammar exposes as the first or last unnamed child
// depending on prefix/postfix form.
func (c *converter) lastOperatorToken(n *sitter.Node) string {
	if op := n.ChildByFieldName("operator"); op != nil {
		return c.text(op)
	}
	return "++"
}

func (c *converter) hasAsyncKeyword(n *sitter.Node) bool {
	if n.Child(0) != nil && c.text(n.Child(0)) == "async" {
		return true
	}
	return false
}
