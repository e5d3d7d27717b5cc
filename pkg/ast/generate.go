package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Generate renders doc back into source text (spec.md §8's round-trip
// law: "parsing -> graph-building -> JSON-rebuild -> code-generation
// should, modulo whitespace and comment placement, produce a program
// semantically equivalent to the input"). It is exercised only by the
// round-trip smoke test, never by the main pipeline — pkg/pipeline
// never needs to turn a page back into source.
func Generate(doc *Document) string {
	var b strings.Builder
	writeNode(&b, doc)
	return b.String()
}

func writeNode(b *strings.Builder, doc *Document) {
	if doc == nil {
		return
	}
	switch doc.Type {
	case "Program":
		writeStatements(b, doc.Body, "")
	case "BlockStatement":
		b.WriteString("{\n")
		writeStatements(b, doc.Body, "  ")
		b.WriteString("}")
	case "ExpressionStatement":
		writeNode(b, fieldDoc(doc, "expression"))
		b.WriteString(";")
	case "VariableDeclaration":
		b.WriteString(fieldString(doc, "kind"))
		b.WriteString(" ")
		decls := fieldDocs(doc, "declarations")
		for i, d := range decls {
			if i > 0 {
				b.WriteString(", ")
			}
			writeNode(b, d)
		}
		b.WriteString(";")
	case "VariableDeclarator":
		writeNode(b, fieldDoc(doc, "id"))
		if init := fieldDoc(doc, "init"); init != nil {
			b.WriteString(" = ")
			writeNode(b, init)
		}
	case "ReturnStatement":
		b.WriteString("return")
		if arg := fieldDoc(doc, "argument"); arg != nil {
			b.WriteString(" ")
			writeNode(b, arg)
		}
		b.WriteString(";")
	case "IfStatement":
		b.WriteString("if (")
		writeNode(b, fieldDoc(doc, "test"))
		b.WriteString(") ")
		writeNode(b, fieldDoc(doc, "consequent"))
		if alt := fieldDoc(doc, "alternate"); alt != nil {
			b.WriteString(" else ")
			writeNode(b, alt)
		}
	case "ThrowStatement":
		b.WriteString("throw ")
		writeNode(b, fieldDoc(doc, "argument"))
		b.WriteString(";")
	case "BreakStatement":
		b.WriteString("break;")
	case "ContinueStatement":
		b.WriteString("continue;")
	case "FunctionDeclaration", "FunctionExpression":
		if fieldBool(doc, "async") {
			b.WriteString("async ")
		}
		b.WriteString("function")
		if fieldBool(doc, "generator") {
			b.WriteString("*")
		}
		if id := fieldDoc(doc, "id"); id != nil {
			b.WriteString(" ")
			writeNode(b, id)
		}
		b.WriteString("(")
		writeParamList(b, fieldDocs(doc, "params"))
		b.WriteString(") ")
		writeNode(b, fieldDoc(doc, "body"))
	case "ArrowFunctionExpression":
		if fieldBool(doc, "async") {
			b.WriteString("async ")
		}
		b.WriteString("(")
		writeParamList(b, fieldDocs(doc, "params"))
		b.WriteString(") => ")
		writeNode(b, fieldDoc(doc, "body"))
	case "AssignmentExpression":
		writeNode(b, fieldDoc(doc, "left"))
		b.WriteString(" " + orDefault(fieldString(doc, "operator"), "=") + " ")
		writeNode(b, fieldDoc(doc, "right"))
	case "BinaryExpression", "LogicalExpression":
		writeNode(b, fieldDoc(doc, "left"))
		b.WriteString(" " + fieldString(doc, "operator") + " ")
		writeNode(b, fieldDoc(doc, "right"))
	case "UnaryExpression":
		b.WriteString(fieldString(doc, "operator"))
		b.WriteString(" ")
		writeNode(b, fieldDoc(doc, "argument"))
	case "UpdateExpression":
		op := fieldString(doc, "operator")
		if fieldBool(doc, "prefix") {
			b.WriteString(op)
			writeNode(b, fieldDoc(doc, "argument"))
		} else {
			writeNode(b, fieldDoc(doc, "argument"))
			b.WriteString(op)
		}
	case "ConditionalExpression":
		writeNode(b, fieldDoc(doc, "test"))
		b.WriteString(" ? ")
		writeNode(b, fieldDoc(doc, "consequent"))
		b.WriteString(" : ")
		writeNode(b, fieldDoc(doc, "alternate"))
	case "CallExpression":
		writeNode(b, fieldDoc(doc, "callee"))
		b.WriteString("(")
		writeArgList(b, fieldDocs(doc, "arguments"))
		b.WriteString(")")
	case "NewExpression":
		b.WriteString("new ")
		writeNode(b, fieldDoc(doc, "callee"))
		b.WriteString("(")
		writeArgList(b, fieldDocs(doc, "arguments"))
		b.WriteString(")")
	case "MemberExpression":
		writeNode(b, fieldDoc(doc, "object"))
		if fieldBool(doc, "computed") {
			b.WriteString("[")
			writeNode(b, fieldDoc(doc, "property"))
			b.WriteString("]")
		} else {
			b.WriteString(".")
			writeNode(b, fieldDoc(doc, "property"))
		}
	case "ArrayExpression":
		b.WriteString("[")
		elems := fieldDocs(doc, "elements")
		for i, e := range elems {
			if i > 0 {
				b.WriteString(", ")
			}
			writeNode(b, e) // nil element renders as empty slot
		}
		b.WriteString("]")
	case "ObjectExpression", "ObjectPattern":
		b.WriteString("{")
		props := fieldDocs(doc, "properties")
		for i, p := range props {
			if i > 0 {
				b.WriteString(", ")
			}
			writeNode(b, p)
		}
		b.WriteString("}")
	case "Property":
		writeNode(b, fieldDoc(doc, "key"))
		b.WriteString(": ")
		writeNode(b, fieldDoc(doc, "value"))
	case "SequenceExpression":
		exprs := fieldDocs(doc, "expressions")
		for i, e := range exprs {
			if i > 0 {
				b.WriteString(", ")
			}
			writeNode(b, e)
		}
	case "AwaitExpression":
		b.WriteString("await ")
		writeNode(b, fieldDoc(doc, "argument"))
	case "YieldExpression":
		b.WriteString("yield ")
		writeNode(b, fieldDoc(doc, "argument"))
	case "ThisExpression":
		b.WriteString("this")
	case "Identifier":
		b.WriteString(fieldString(doc, "name"))
	case "Literal":
		writeLiteral(b, doc)
	case "TemplateLiteral":
		writeTemplateLiteral(b, doc)
	default:
		// Unrecognized node kinds (spec.md §7 soft-degrade territory for
		// codegen): emit nothing rather than guess at syntax.
	}
}

func writeStatements(b *strings.Builder, stmts []*Document, indent string) {
	for _, s := range stmts {
		b.WriteString(indent)
		writeNode(b, s)
		b.WriteString("\n")
	}
}

func writeParamList(b *strings.Builder, params []*Document) {
	for i, p := range params {
		if i > 0 {
			b.WriteString(", ")
		}
		writeNode(b, p)
	}
}

func writeArgList(b *strings.Builder, args []*Document) {
	for i, a := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		writeNode(b, a)
	}
}

func writeLiteral(b *strings.Builder, doc *Document) {
	if raw := fieldString(doc, "raw"); raw != "" {
		b.WriteString(raw)
		return
	}
	v, ok := doc.Fields["value"]
	if !ok || v == nil {
		b.WriteString("null")
		return
	}
	switch val := v.(type) {
	case string:
		b.WriteString(strconv.Quote(val))
	case bool:
		fmt.Fprintf(b, "%t", val)
	case float64:
		b.WriteString(strconv.FormatFloat(val, 'g', -1, 64))
	default:
		fmt.Fprintf(b, "%v", val)
	}
}

func writeTemplateLiteral(b *strings.Builder, doc *Document) {
	b.WriteString("`")
	quasis := fieldDocs(doc, "quasis")
	exprs := fieldDocs(doc, "expressions")
	for i, q := range quasis {
		b.WriteString(fieldString(q, "raw"))
		if i < len(exprs) {
			b.WriteString("${")
			writeNode(b, exprs[i])
			b.WriteString("}")
		}
	}
	b.WriteString("`")
}

// fieldDoc reads a single-Document field, tolerating both the
// convert.go-native *Document shape and the shape Document.UnmarshalJSON
// produces after a JSON round trip (both are *Document, so a plain
// assertion covers both).
func fieldDoc(doc *Document, key string) *Document {
	if doc == nil {
		return nil
	}
	v, ok := doc.Fields[key]
	if !ok || v == nil {
		return nil
	}
	d, _ := v.(*Document)
	return d
}

func fieldDocs(doc *Document, key string) []*Document {
	if doc == nil {
		return nil
	}
	v, ok := doc.Fields[key]
	if !ok || v == nil {
		return nil
	}
	ds, _ := v.([]*Document)
	return ds
}

func fieldString(doc *Document, key string) string {
	if doc == nil {
		return ""
	}
	v, ok := doc.Fields[key]
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

func fieldBool(doc *Document, key string) bool {
	if doc == nil {
		return false
	}
	v, ok := doc.Fields[key]
	if !ok || v == nil {
		return false
	}
	bv, _ := v.(bool)
	return bv
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
