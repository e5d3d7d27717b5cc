package ast

import (
	"sort"

	"github.com/taintmini/taintmini/pkg/pdg"
)

// typeToKind is the fixed esprima/acorn `type` string -> pdg.Kind mapping
// spec.md §4.A names. A type absent from this table (e.g. an ESNext
// syntax form the embedded dialect never uses) falls back to Build
// recording it under KindExpressionStatement so traversal never panics on
// an unrecognized node — spec.md §7 treats an unrecognized node kind as
// a soft degrade, not a parse failure.
var typeToKind = map[string]pdg.Kind{
	"Program":                   pdg.KindProgram,
	"BlockStatement":            pdg.KindBlock,
	"ExpressionStatement":       pdg.KindExpressionStatement,
	"VariableDeclaration":       pdg.KindVariableDeclaration,
	"VariableDeclarator":        pdg.KindVariableDeclarator,
	"ReturnStatement":           pdg.KindReturnStatement,
	"IfStatement":               pdg.KindIfStatement,
	"SwitchStatement":           pdg.KindSwitchStatement,
	"SwitchCase":                pdg.KindSwitchCase,
	"TryStatement":              pdg.KindTryStatement,
	"ForStatement":              pdg.KindForStatement,
	"ForInStatement":            pdg.KindForInStatement,
	"ForOfStatement":            pdg.KindForOfStatement,
	"WhileStatement":            pdg.KindWhileStatement,
	"DoWhileStatement":          pdg.KindDoWhileStatement,
	"BreakStatement":            pdg.KindBreakStatement,
	"ContinueStatement":         pdg.KindContinueStatement,
	"ThrowStatement":            pdg.KindThrowStatement,
	"LabeledStatement":          pdg.KindLabeledStatement,
	"DebuggerStatement":         pdg.KindDebuggerStatement,
	"CatchClause":               pdg.KindCatchClause,
	"WithStatement":             pdg.KindWithStatement,
	"FunctionDeclaration":       pdg.KindFunctionDeclaration,
	"ClassDeclaration":          pdg.KindClassDeclaration,
	"AssignmentExpression":      pdg.KindAssignmentExpression,
	"ArrayExpression":           pdg.KindArrayExpression,
	"ArrayPattern":              pdg.KindArrayExpression,
	"ArrowFunctionExpression":   pdg.KindArrowFunctionExpression,
	"AwaitExpression":           pdg.KindAwaitExpression,
	"BinaryExpression":          pdg.KindBinaryExpression,
	"CallExpression":            pdg.KindCallExpression,
	"ClassExpression":           pdg.KindClassExpression,
	"ConditionalExpression":     pdg.KindConditionalExpression,
	"FunctionExpression":        pdg.KindFunctionExpression,
	"LogicalExpression":         pdg.KindLogicalExpression,
	"MemberExpression":          pdg.KindMemberExpression,
	"NewExpression":             pdg.KindNewExpression,
	"ObjectExpression":          pdg.KindObjectExpression,
	"ObjectPattern":             pdg.KindObjectPattern,
	"SequenceExpression":        pdg.KindSequenceExpression,
	"TaggedTemplateExpression":  pdg.KindTaggedTemplateExpression,
	"ThisExpression":            pdg.KindThisExpression,
	"UnaryExpression":           pdg.KindUnaryExpression,
	"UpdateExpression":          pdg.KindUpdateExpression,
	"YieldExpression":           pdg.KindYieldExpression,
	"Identifier":                pdg.KindIdentifier,
	"PrivateIdentifier":         pdg.KindIdentifier,
	"Literal":                   pdg.KindLiteral,
	"Property":                  pdg.KindProperty,
	"TemplateLiteral":           pdg.KindTemplateLiteral,
	"TemplateElement":           pdg.KindTemplateElement,
	"Block":                     pdg.KindComment,
	"Line":                      pdg.KindComment,
}

// scalarAttrs lists the Document.Fields keys that are always attached to
// Node.Attrs rather than walked as children, even when their JSON value
// happens to be a dict or list shape (spec.md §4.A: "filename, loc,
// range, value, regex are attributes, never children").
var scalarAttrs = map[string]bool{
	"filename": true, "loc": true, "range": true, "value": true,
	"regex": true, "raw": true, "start": true, "end": true,
	"name": true, "operator": true, "kind": true, "computed": true,
	"generator": true, "async": true, "prefix": true, "tail": true,
	"cooked": true, "sourceType": true, "optional": true, "delegate": true,
}

// Builder walks Documents into a fresh pdg.Graph.
type Builder struct {
	g *pdg.Graph
}

// NewBuilder returns a Builder over a fresh graph.
func NewBuilder() *Builder {
	return &Builder{g: pdg.NewGraph()}
}

// Build converts doc (expected to be a Program node) into a pdg.Graph and
// returns it alongside the Program's handle, which is always pdg.Graph's
// Root().
func Build(doc *Document) (*pdg.Graph, pdg.Handle) {
	b := NewBuilder()
	root := b.g.Root()
	b.fill(root, doc)
	return b.g, root
}

// fieldOrder fixes the traversal order of Document.Fields: Go map
// iteration is randomized, but several downstream consumers (the
// data-flow engine's left/right, id/init, callee/arguments handling)
// index children positionally as well as by role, matching how a
// left-to-right parse would emit them. Keys not listed here (there are
// few, and they never co-occur with a sibling whose relative order
// matters) fall back to a sorted order so a given input always produces
// the same graph.
var fieldOrder = []string{
	"id", "init",
	"left", "operator", "right",
	"object", "property",
	"callee", "arguments",
	"test", "consequent", "alternate",
	"discriminant", "cases",
	"block", "handler", "finalizer",
	"param", "body",
	"declarations",
	"key", "value",
	"argument",
	"params",
	"elements", "properties", "expressions",
	"expression",
	"label",
	"quasis",
}

var fieldOrderIndex = func() map[string]int {
	m := make(map[string]int, len(fieldOrder))
	for i, k := range fieldOrder {
		m[k] = i
	}
	return m
}()

// orderedFieldKeys returns doc.Fields' keys sorted by fieldOrder, with
// any unlisted keys appended afterward in a stable, sorted order.
func orderedFieldKeys(fields map[string]interface{}) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		oi, iok := fieldOrderIndex[keys[i]]
		oj, jok := fieldOrderIndex[keys[j]]
		switch {
		case iok && jok:
			return oi < oj
		case iok:
			return true
		case jok:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}

// fill populates the already-allocated node h from doc: it copies scalar
// fields into Attrs and recurses into every dict/list-valued field,
// attaching each as a child under that field's name (its Role), in a
// fixed left-to-right order (see fieldOrder).
func (b *Builder) fill(h pdg.Handle, doc *Document) {
	n := b.g.Node(h)
	if doc == nil {
		return
	}
	for _, k := range orderedFieldKeys(doc.Fields) {
		v := doc.Fields[k]
		if scalarAttrs[k] {
			n.Attrs[k] = v
			continue
		}
		switch val := v.(type) {
		case *Document:
			b.attachChild(h, k, val, false)
		case []*Document:
			for _, item := range val {
				b.attachChild(h, k, item, true)
			}
		case nil:
			// an elided slot in a list field (`[, a] = arr`) is handled by
			// the []*Document branch above via a nil *Document element;
			// a bare nil under a scalar-shaped field is simply dropped.
		default:
			n.Attrs[k] = v
		}
	}
	if doc.Body != nil {
		for _, item := range doc.Body {
			b.attachChild(h, "body", item, true)
		}
	}
	if doc.SourceType != "" {
		n.Attrs["sourceType"] = doc.SourceType
	}
	if doc.Range != nil {
		n.Attrs["range"] = doc.Range
	}
	for _, c := range doc.LeadingComment {
		b.attachChild(h, "leadingComments", c, true)
	}
}

// attachChild allocates a child node for sub (or a KindNone placeholder
// if sub is nil, representing an elided array/destructuring slot per
// spec.md §3.1), wires it under role, and recurses.
func (b *Builder) attachChild(parent pdg.Handle, role string, sub *Document, isList bool) {
	if sub == nil {
		h := b.g.NewNode(pdg.KindNone, parent, role)
		b.g.Node(h).IsList = isList
		return
	}
	kind, ok := typeToKind[sub.Type]
	if !ok {
		kind = pdg.KindExpressionStatement
	}
	h := b.g.NewNode(kind, parent, role)
	b.g.Node(h).IsList = isList
	b.fill(h, sub)
}
