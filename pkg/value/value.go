// Package value implements the symbolic value engine of spec.md §4.C:
// value_of / compute_value, the evaluation-rules-by-kind table, and the
// bounding knobs (recursion depth, visited-set cycle guard, value-size
// truncation) that keep evaluation over an attacker-shaped AST from
// diverging.
package value

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/taintmini/taintmini/pkg/pdg"
)

// Bounding knobs, spec.md §5 table.
const (
	MaxRecursionDepth = 1000
	MaxSize           = 10000
)

// Evaluator computes symbolic values over one page's graph. It is not
// safe for concurrent use — a page is owned by exactly one goroutine
// (spec.md §5).
type Evaluator struct {
	g       *pdg.Graph
	visited map[pdg.Handle]bool // per-top-level-call cycle guard
	depth   int

	// ReturnValue supplies the last recorded return value for a function
	// node, consulted when evaluating a call-expression (spec.md §4.C
	// "Call/new/tagged-template"). Set by pkg/dataflow, which owns the
	// function/return bookkeeping.
	ReturnValue func(fn pdg.Handle) *pdg.ValueCell
}

// NewEvaluator returns an Evaluator bound to g.
func NewEvaluator(g *pdg.Graph) *Evaluator {
	return &Evaluator{g: g}
}

// ValueOf returns the cached cell for node, computing it on first access
// (spec.md §4.C "value_of").
func (e *Evaluator) ValueOf(node pdg.Handle) *pdg.ValueCell {
	n := e.g.Node(node)
	if n.Value == nil {
		return nullCell()
	}
	if n.Value.Tag == TagUnsetCompat() || n.Value.Stale {
		return e.ComputeValue(node, node)
	}
	return n.Value
}

// ComputeValue forces re-evaluation of node, recording provenance from
// initial (the top-level node whose evaluation is in progress) to every
// node consulted, and caches the result — except on call-kinds, which
// must always recompute (spec.md §4.C).
func (e *Evaluator) ComputeValue(node, initial pdg.Handle) *pdg.ValueCell {
	if node == initial && e.depth == 0 {
		e.visited = map[pdg.Handle]bool{}
		e.depth = 0
	}
	if e.depth > MaxRecursionDepth {
		return e.cachedOrNull(node)
	}
	if e.visited[node] {
		return e.cachedOrNull(node)
	}
	e.visited[node] = true
	e.depth++
	defer func() { e.depth-- }()

	n := e.g.Node(node)
	cell := e.evalByKind(node, initial)
	cell = truncate(cell)

	if n.Value != nil && n.Kind != pdg.KindCallExpression && n.Kind != pdg.KindNewExpression && n.Kind != pdg.KindTaggedTemplateExpression {
		n.Value = cell
		n.Value.Stale = false
	}
	if node != initial {
		e.g.SetProvenance(node, initial)
	}
	return cell
}

func (e *Evaluator) cachedOrNull(node pdg.Handle) *pdg.ValueCell {
	n := e.g.Node(node)
	if n.Value != nil && n.Value.Tag != pdg.TagUnset {
		return n.Value
	}
	return nullCell()
}

func nullCell() *pdg.ValueCell { return &pdg.ValueCell{Tag: pdg.TagNull} }

func primCell(v interface{}) *pdg.ValueCell { return &pdg.ValueCell{Tag: pdg.TagPrimitive, Prim: v} }

func refCell(h pdg.Handle) *pdg.ValueCell { return &pdg.ValueCell{Tag: pdg.TagNodeRef, Ref: h} }

// TagUnsetCompat exists only so ValueOf's staleness check reads naturally;
// it is simply pdg.TagUnset.
func TagUnsetCompat() pdg.ValueTag { return pdg.TagUnset }

func (e *Evaluator) evalByKind(node, initial pdg.Handle) *pdg.ValueCell {
	n := e.g.Node(node)
	switch n.Kind {
	case pdg.KindLiteral:
		if re, ok := n.Attrs["regex"]; ok {
			return primCell(fmt.Sprintf("/%v/", re))
		}
		return primCell(n.Attrs["value"])

	case pdg.KindIdentifier:
		if n.Value != nil && n.Value.Tag == pdg.TagNodeRef {
			return e.ComputeValue(n.Value.Ref, initial)
		}
		if n.Value != nil {
			return n.Value
		}
		return nullCell()

	case pdg.KindThisExpression:
		return primCell("this")

	case pdg.KindUnaryExpression:
		return e.computeUnary(node, initial)

	case pdg.KindBinaryExpression, pdg.KindLogicalExpression:
		return e.computeBinary(node, initial)

	case pdg.KindArrayExpression, pdg.KindObjectExpression:
		return refCell(node) // structural value: "the node itself"

	case pdg.KindMemberExpression:
		return e.computeMember(node, initial)

	case pdg.KindFunctionExpression, pdg.KindArrowFunctionExpression:
		if n.Fn != nil && n.Fn.NameNode != pdg.InvalidHandle() {
			return refCell(n.Fn.NameNode)
		}
		return refCell(node)

	case pdg.KindCallExpression, pdg.KindNewExpression, pdg.KindTaggedTemplateExpression:
		return e.computeCall(node, initial)

	case pdg.KindTemplateLiteral:
		return e.computeTemplateLiteral(node, initial)

	case pdg.KindConditionalExpression:
		return e.computeConditional(node, initial)

	case pdg.KindAssignmentExpression:
		if len(n.Children) >= 2 {
			return e.ComputeValue(n.Children[1], initial)
		}
		return nullCell()

	case pdg.KindUpdateExpression:
		return e.computeUpdate(node, initial)

	case pdg.KindReturnStatement:
		if len(n.Children) >= 1 {
			return e.ComputeValue(n.Children[0], initial)
		}
		return nullCell()

	default:
		return nullCell()
	}
}

func (e *Evaluator) computeUnary(node, initial pdg.Handle) *pdg.ValueCell {
	n := e.g.Node(node)
	op, _ := n.Attrs["operator"].(string)
	if len(n.Children) == 0 {
		return nullCell()
	}
	operand := e.ComputeValue(n.Children[0], initial)
	if operand.Tag == pdg.TagNull {
		return nullCell()
	}
	switch op {
	case "!":
		b, ok := operand.Prim.(bool)
		if !ok {
			return nullCell()
		}
		return primCell(!b)
	case "-", "+":
		f, ok := toNumber(operand)
		if !ok {
			return nullCell()
		}
		if op == "-" {
			return primCell(-f)
		}
		return primCell(f)
	case "~", "void", "typeof", "delete":
		if s, ok := operand.Prim.(string); ok {
			return primCell(op + s)
		}
		return nullCell()
	default:
		return nullCell()
	}
}

// computeBinary implements spec.md §4.C's operator table, preserving the
// original's silent nil for bitwise/`in`/`instanceof` verbatim (Design
// Notes §9 — not a bug to fix).
func (e *Evaluator) computeBinary(node, initial pdg.Handle) *pdg.ValueCell {
	n := e.g.Node(node)
	if len(n.Children) < 2 {
		return nullCell()
	}
	op, _ := n.Attrs["operator"].(string)
	left := e.ComputeValue(n.Children[0], initial)
	right := e.ComputeValue(n.Children[1], initial)

	switch op {
	case "&", "|", "^", "<<", ">>", ">>>", "in", "instanceof":
		return nullCell()
	case "+":
		if isString(left) || isString(right) {
			return primCell(toDisplayString(left) + toDisplayString(right))
		}
		lf, lok := toNumber(left)
		rf, rok := toNumber(right)
		if lok && rok {
			return primCell(lf + rf)
		}
		return nullCell()
	case "-", "*", "/", "%":
		lf, lok := toNumber(left)
		rf, rok := toNumber(right)
		if !lok || !rok {
			return nullCell()
		}
		switch op {
		case "-":
			return primCell(lf - rf)
		case "*":
			return primCell(lf * rf)
		case "/":
			if rf == 0 {
				return nullCell()
			}
			return primCell(lf / rf)
		case "%":
			if rf == 0 {
				return nullCell()
			}
			return primCell(mod(lf, rf))
		}
	case "==", "===":
		return primCell(looseEqual(left, right))
	case "!=", "!==":
		return primCell(!looseEqual(left, right))
	case "<", "<=", ">", ">=":
		lf, lok := toNumber(left)
		rf, rok := toNumber(right)
		if !lok || !rok {
			return nullCell()
		}
		switch op {
		case "<":
			return primCell(lf < rf)
		case "<=":
			return primCell(lf <= rf)
		case ">":
			return primCell(lf > rf)
		case ">=":
			return primCell(lf >= rf)
		}
	case "&&":
		if b, ok := left.Prim.(bool); ok && !b {
			return left
		}
		return right
	case "||":
		if b, ok := left.Prim.(bool); ok && b {
			return left
		}
		return right
	}
	return nullCell()
}

func (e *Evaluator) computeMember(node, initial pdg.Handle) *pdg.ValueCell {
	n := e.g.Node(node)
	if len(n.Children) < 2 {
		return nullCell()
	}
	objNode, propNode := n.Children[0], n.Children[1]
	objKind := e.g.Node(objNode).Kind

	if objKind == pdg.KindThisExpression || isKnownGlobalIdentifier(e.g, objNode) {
		return e.ComputeValue(propNode, initial)
	}

	objVal := e.ComputeValue(objNode, initial)
	propVal := e.ComputeValue(propNode, initial)

	switch objVal.Tag {
	case pdg.TagMap:
		if key, ok := propVal.Prim.(string); ok {
			if v, ok := objVal.Map[key]; ok {
				return v
			}
		}
		return nullCell()
	case pdg.TagList:
		if idx, ok := toNumber(propVal); ok {
			i := int(idx)
			if i >= 0 && i < len(objVal.List) {
				return objVal.List[i]
			}
		}
		return nullCell()
	case pdg.TagNodeRef:
		return e.searchObjectProperty(objVal.Ref, propNode, initial)
	}
	return nullCell()
}

// searchObjectProperty searches a concrete object-expression node for the
// named property (string key) or indexed child (int index); if the first
// match fails a later lookup, the next match is tried (spec.md §4.C
// "Member").
func (e *Evaluator) searchObjectProperty(objNode, propNode, initial pdg.Handle) *pdg.ValueCell {
	obj := e.g.Node(objNode)
	if obj.Kind != pdg.KindObjectExpression {
		return nullCell()
	}
	propVal := e.ComputeValue(propNode, initial)
	key, isStr := propVal.Prim.(string)
	idx, isIdx := toNumber(propVal)

	for i, propHandle := range obj.Children {
		prop := e.g.Node(propHandle)
		if prop.Kind != pdg.KindProperty || len(prop.Children) < 2 {
			continue
		}
		keyNode := e.g.Node(prop.Children[0])
		matched := false
		if isStr {
			if name, _ := keyNode.Attrs["name"].(string); name == key {
				matched = true
			}
			if lit, _ := keyNode.Attrs["value"].(string); lit == key {
				matched = true
			}
		}
		if !matched && isIdx && i == int(idx) {
			matched = true
		}
		if matched {
			return e.ComputeValue(prop.Children[1], initial)
		}
	}
	return nullCell()
}

func (e *Evaluator) computeTemplateLiteral(node, initial pdg.Handle) *pdg.ValueCell {
	n := e.g.Node(node)
	var sb strings.Builder
	for _, c := range n.Children {
		cn := e.g.Node(c)
		if cn.Kind == pdg.KindTemplateElement {
			raw, _ := cn.Attrs["raw"].(string)
			sb.WriteString(raw)
			continue
		}
		v := e.ComputeValue(c, initial)
		sb.WriteString(toDisplayString(v))
	}
	return primCell(sb.String())
}

func (e *Evaluator) computeConditional(node, initial pdg.Handle) *pdg.ValueCell {
	n := e.g.Node(node)
	if len(n.Children) < 3 {
		return nullCell()
	}
	test, consequent, alternate := n.Children[0], n.Children[1], n.Children[2]
	t := e.ComputeValue(test, initial)
	if b, ok := t.Prim.(bool); ok {
		if b {
			return e.ComputeValue(consequent, initial)
		}
		return e.ComputeValue(alternate, initial)
	}
	// unknown test: both branches are reachable, return the pair
	return &pdg.ValueCell{Tag: pdg.TagList, List: []*pdg.ValueCell{
		refCell(alternate), refCell(consequent),
	}}
}

func (e *Evaluator) computeUpdate(node, initial pdg.Handle) *pdg.ValueCell {
	n := e.g.Node(node)
	if len(n.Children) == 0 {
		return nullCell()
	}
	op, _ := n.Attrs["operator"].(string)
	cur := e.ComputeValue(n.Children[0], initial)
	f, ok := toNumber(cur)
	if !ok {
		return nullCell()
	}
	if op == "++" {
		return primCell(f + 1)
	}
	return primCell(f - 1)
}

// computeCall returns the callee function's last recorded return value,
// per spec.md §4.C (DisplayCallExpression renders `callee(arg, ...)`);
// the actual parameter binding happens in pkg/dataflow's handleCall, and
// pkg/dataflow also maintains ReturnValue.
func (e *Evaluator) computeCall(node, initial pdg.Handle) *pdg.ValueCell {
	n := e.g.Node(node)
	if len(n.Children) == 0 {
		return nullCell()
	}
	callee := n.Children[0]
	calleeNode := e.g.Node(callee)

	if calleeNode.Kind == pdg.KindFunctionExpression || calleeNode.Kind == pdg.KindArrowFunctionExpression {
		if calleeNode.Fn != nil && calleeNode.Fn.NameNode != pdg.InvalidHandle() {
			return refCell(calleeNode.Fn.NameNode)
		}
	}
	if e.ReturnValue != nil {
		if v := e.ReturnValue(callee); v != nil {
			return v
		}
	}
	return nullCell()
}

// DisplayCallExpression renders callee(arg, ...) for provenance / debug
// strings (spec.md §4.C).
func (e *Evaluator) DisplayCallExpression(node pdg.Handle) string {
	n := e.g.Node(node)
	if len(n.Children) == 0 {
		return ""
	}
	callee := DottedPath(e.g, n.Children[0])
	args := make([]string, 0, len(n.Children)-1)
	for _, a := range n.Children[1:] {
		args = append(args, toDisplayString(e.ValueOf(a)))
	}
	return fmt.Sprintf("%s(%s)", callee, strings.Join(args, ", "))
}

// DottedPath stringifies a (possibly chained) member-expression or plain
// identifier as "a.b.c" / "this.a.b" (spec.md §4.F).
func DottedPath(g *pdg.Graph, node pdg.Handle) string {
	n := g.Node(node)
	switch n.Kind {
	case pdg.KindIdentifier:
		name, _ := n.Attrs["name"].(string)
		return name
	case pdg.KindThisExpression:
		return "this"
	case pdg.KindMemberExpression:
		if len(n.Children) < 2 {
			return ""
		}
		left := DottedPath(g, n.Children[0])
		right := DottedPath(g, n.Children[1])
		if left == "" {
			return right
		}
		if right == "" {
			return left
		}
		return left + "." + right
	default:
		if name, ok := n.Attrs["name"].(string); ok {
			return name
		}
		return ""
	}
}

func isKnownGlobalIdentifier(g *pdg.Graph, node pdg.Handle) bool {
	n := g.Node(node)
	if n.Kind != pdg.KindIdentifier {
		return false
	}
	name, _ := n.Attrs["name"].(string)
	switch name {
	case "window", "this", "self", "top", "global", "that":
		return true
	}
	return false
}

func isString(c *pdg.ValueCell) bool {
	_, ok := c.Prim.(string)
	return ok
}

func toNumber(c *pdg.ValueCell) (float64, bool) {
	switch v := c.Prim.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}

func toDisplayString(c *pdg.ValueCell) string {
	switch v := c.Prim.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		if c.Tag == pdg.TagNull {
			return "null"
		}
		return fmt.Sprintf("%v", v)
	}
}

func looseEqual(a, b *pdg.ValueCell) bool {
	if a.Tag == pdg.TagNull || b.Tag == pdg.TagNull {
		return a.Tag == b.Tag
	}
	return toDisplayString(a) == toDisplayString(b)
}

func mod(a, b float64) float64 {
	m := a - b*float64(int64(a/b))
	return m
}

// truncate enforces spec.md §5's LIMIT_SIZE on string/list/map values,
// preserving shape.
func truncate(c *pdg.ValueCell) *pdg.ValueCell {
	switch c.Tag {
	case pdg.TagPrimitive:
		if s, ok := c.Prim.(string); ok && len(s) > MaxSize {
			c.Prim = s[:MaxSize]
		}
	case pdg.TagList:
		if len(c.List) > MaxSize {
			c.List = c.List[:MaxSize]
		}
	case pdg.TagMap:
		if len(c.Map) > MaxSize {
			i := 0
			for k := range c.Map {
				if i >= MaxSize {
					delete(c.Map, k)
				}
				i++
			}
		}
	}
	return c
}
