// Package taint implements the taint resolver of spec.md §4.F: given a
// fully built PDG for one page plus the source/sink config, it walks
// every page-method body for terminal identifiers, resolves their
// sources, classifies sinks (plain / event-subscribe / event-emit), and
// records per-page results and events. Grounded on the teacher's
// iterative-DFS-with-explicit-visited-set pattern (pkg/tracer), adapted
// from tracking tainted PHP superglobals to tracking PDG data-dep chains.
package taint

import (
	"fmt"
	"strings"

	"github.com/taintmini/taintmini/pkg/config"
	"github.com/taintmini/taintmini/pkg/pdg"
	"github.com/taintmini/taintmini/pkg/value"
)

// Result is one in-page source->sink pair (spec.md §6 CSV row shape).
type Result struct {
	PageMethod string
	Ident      string
	Source     string
	Sink       string
}

// EventType classifies an event call by its dotted-path suffix.
type EventType int

const (
	EventNone EventType = iota
	EventOn
	EventEmit
)

// Event is one page-method event call (spec.md §3.4).
type Event struct {
	Method    string
	EventName string
	Type      EventType
	CallExpr  pdg.Handle
	Sources   []string
	Sink      string
	Emitter   string
}

// Resolver queries one page's finished PDG.
type Resolver struct {
	g    *pdg.Graph
	eval *value.Evaluator
	cfg  *config.Config
}

// New returns a Resolver over g, using eval for value/provenance queries
// and cfg to filter surviving (source, sink) pairs.
func New(g *pdg.Graph, eval *value.Evaluator, cfg *config.Config) *Resolver {
	if cfg == nil {
		cfg = config.Empty()
	}
	return &Resolver{g: g, eval: eval, cfg: cfg}
}

// Resolve runs the full procedure of spec.md §4.F over the page rooted
// at root (the Program node) and returns the surviving results and every
// observed event.
func (r *Resolver) Resolve(root pdg.Handle) ([]Result, []Event) {
	pageCall := r.findPageCall(root)
	if pageCall == pdg.InvalidHandle() {
		return nil, nil
	}

	var results []Result
	var events []Event

	for _, method := range r.pageMethods(pageCall) {
		for _, term := range r.terminalIdentifiers(method.fn) {
			sink := r.sinkOf(term)
			if sink == "" {
				continue
			}

			if ev, ok := r.classifyEvent(method.name, term, sink); ok {
				events = append(events, ev)
				continue
			}

			for _, src := range r.sourcesOf(term, pageCall) {
				if !r.cfg.Allows(src, sink) {
					continue
				}
				results = append(results, Result{
					PageMethod: method.name,
					Ident:      identName(r.g, term),
					Source:     src,
					Sink:       sink,
				})
			}
		}
	}

	return results, events
}

type pageMethod struct {
	name string
	fn   pdg.Handle
}

// findPageCall locates the top-level `Page({...})` call (spec.md §4.F.1).
func (r *Resolver) findPageCall(root pdg.Handle) pdg.Handle {
	g := r.g
	for _, stmt := range g.Node(root).Children {
		if g.Node(stmt).Kind != pdg.KindExpressionStatement || len(g.Node(stmt).Children) == 0 {
			continue
		}
		expr := g.Node(stmt).Children[0]
		if g.Node(expr).Kind != pdg.KindCallExpression {
			continue
		}
		if callee := roleChild(g, expr, "callee"); callee != pdg.InvalidHandle() &&
			g.Node(callee).Kind == pdg.KindIdentifier && g.Node(callee).Attrs["name"] == "Page" {
			return expr
		}
	}
	return pdg.InvalidHandle()
}

// pageMethods returns every property of the Page({...}) object argument
// whose value is a function-expression.
func (r *Resolver) pageMethods(pageCall pdg.Handle) []pageMethod {
	g := r.g
	var obj pdg.Handle = pdg.InvalidHandle()
	for _, c := range g.Node(pageCall).Children {
		if g.Node(c).Role == "arguments" && g.Node(c).Kind == pdg.KindObjectExpression {
			obj = c
			break
		}
	}
	if obj == pdg.InvalidHandle() {
		return nil
	}
	var out []pageMethod
	for _, prop := range g.Node(obj).Children {
		if g.Node(prop).Kind != pdg.KindProperty {
			continue
		}
		var fn pdg.Handle = pdg.InvalidHandle()
		var name string
		for _, c := range g.Node(prop).Children {
			switch g.Node(c).Role {
			case "key":
				name = identOrLiteralName(g, c)
			case "value":
				if pdg.IsFunction(g.Node(c).Kind) {
					fn = c
				}
			}
		}
		if fn != pdg.InvalidHandle() {
			out = append(out, pageMethod{name: name, fn: fn})
		}
	}
	return out
}

// terminalIdentifiers runs an iterative DFS (explicit stack, visited set
// — spec.md §4.F "Identifier traversal is an iterative DFS") over fn's
// subtree and returns every identifier node with non-empty
// DataDepParents and empty DataDepChildren.
func (r *Resolver) terminalIdentifiers(fn pdg.Handle) []pdg.Handle {
	g := r.g
	var out []pdg.Handle
	visited := map[pdg.Handle]bool{}
	stack := []pdg.Handle{fn}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[n] {
			continue
		}
		visited[n] = true
		node := g.Node(n)
		if node.Kind == pdg.KindIdentifier && len(node.DataDepParents) > 0 && len(node.DataDepChildren) == 0 {
			out = append(out, n)
		}
		for _, c := range node.Children {
			stack = append(stack, c)
		}
	}
	return out
}

// sinkOf returns the nearest-ancestor call-expression's callee, as a
// dotted path, or "" if none exists (spec.md §4.F.2).
func (r *Resolver) sinkOf(term pdg.Handle) string {
	call := r.g.NearestEnclosingCall(term)
	if call == pdg.InvalidHandle() {
		return ""
	}
	callee := roleChild(r.g, call, "callee")
	if callee == pdg.InvalidHandle() {
		return ""
	}
	return value.DottedPath(r.g, callee)
}

// sourcesOf implements spec.md §4.F.3's three-tier per-data_dep_parents
// source resolution.
func (r *Resolver) sourcesOf(term pdg.Handle, pageCall pdg.Handle) []string {
	g := r.g
	seen := map[string]bool{}
	var out []string
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	for _, dp := range g.Node(term).DataDepParents {
		if src, ok := r.immediateSource(dp); ok {
			add(src)
			continue // load-bearing early exit (Design Notes §9)
		}
		if src, ok := r.fallbackSource(dp); ok {
			add(src)
			continue
		}
		if src, ok := r.provenanceSource(dp, term, pageCall); ok {
			add(src)
		}
	}
	return out
}

// immediateSource is tier 1: dp's AST-parent is a variable-declarator or
// assignment, whose RHS is taken as the source.
func (r *Resolver) immediateSource(dp pdg.Handle) (string, bool) {
	g := r.g
	parent := g.Node(dp).Parent
	if parent == pdg.InvalidHandle() {
		return "", false
	}
	pk := g.Node(parent).Kind
	if pk != pdg.KindVariableDeclarator && pk != pdg.KindAssignmentExpression {
		return "", false
	}
	role := "init"
	if pk == pdg.KindAssignmentExpression {
		role = "right"
	}
	rhs := roleChild(g, parent, role)
	if rhs == pdg.InvalidHandle() {
		return "", false
	}
	if g.Node(rhs).Kind == pdg.KindCallExpression {
		if callee := roleChild(g, rhs, "callee"); callee != pdg.InvalidHandle() {
			return value.DottedPath(g, callee), true
		}
		return "", false
	}
	return value.DottedPath(g, rhs), true
}

// fallbackSource is tier 2: the nearest enclosing call expression's
// callee of dp itself.
func (r *Resolver) fallbackSource(dp pdg.Handle) (string, bool) {
	call := r.g.NearestEnclosingCall(dp)
	if call == pdg.InvalidHandle() {
		return "", false
	}
	callee := roleChild(r.g, call, "callee")
	if callee == pdg.InvalidHandle() {
		return "", false
	}
	return value.DottedPath(r.g, callee), true
}

// provenanceSource is tier 3: dp (or one of its provenance-parents) is a
// page-method parameter; resolve via double-binding against term's own
// member-access chain, or fall back to a raw page-parameter source.
func (r *Resolver) provenanceSource(dp, term, pageCall pdg.Handle) (string, bool) {
	g := r.g
	candidates := append([]pdg.Handle{dp}, g.Node(dp).ProvenanceParents...)
	for _, cand := range candidates {
		if g.Node(cand).Kind != pdg.KindIdentifier {
			continue
		}
		if !r.isPageMethodParam(cand, pageCall) {
			continue
		}
		chain := memberChainFrom(g, term)
		if id, typ, ok := doubleBindingMatch(g, cand, chain); ok {
			return fmt.Sprintf("[data from double binding: %s, type: %s]", id, typ), true
		}
		return fmt.Sprintf("[data from page parameter: %s]", chain), true
	}
	return "", false
}

// isPageMethodParam reports whether ident is a parameter of a function
// that is itself the value of a property of pageCall's object argument
// (spec.md §4.F.3: "its grand-grand-grand-parent is the Page(...) call").
func (r *Resolver) isPageMethodParam(ident, pageCall pdg.Handle) bool {
	g := r.g
	fn := g.Node(ident).Parent
	for fn != pdg.InvalidHandle() && !pdg.IsFunction(g.Node(fn).Kind) {
		fn = g.Node(fn).Parent
	}
	if fn == pdg.InvalidHandle() {
		return false
	}
	isParam := false
	if meta := g.Node(fn).Fn; meta != nil {
		for _, p := range meta.Params {
			if p == ident {
				isParam = true
				break
			}
		}
	}
	if !isParam {
		return false
	}
	cur := fn
	for i := 0; i < 6 && cur != pdg.InvalidHandle(); i++ {
		if cur == pageCall {
			return true
		}
		cur = g.Node(cur).Parent
	}
	return false
}

// memberChainFrom renders the dotted member-access path rooted at ident
// by walking upward through MemberExpression ancestors for which ident
// (or the accumulated chain) sits in the "object" role.
func memberChainFrom(g *pdg.Graph, ident pdg.Handle) string {
	parts := []string{identName(g, ident)}
	cur := ident
	for {
		parent := g.Node(cur).Parent
		if parent == pdg.InvalidHandle() || g.Node(parent).Kind != pdg.KindMemberExpression {
			break
		}
		if roleChild(g, parent, "object") != cur {
			break
		}
		prop := roleChild(g, parent, "property")
		if prop == pdg.InvalidHandle() {
			break
		}
		parts = append(parts, identOrLiteralName(g, prop))
		cur = parent
	}
	return strings.Join(parts, ".")
}

// doubleBindingMatch checks chain against the `<param>.detail.value.<id>`
// pattern spec.md §4.F.3 names, consulting param's tagged
// double_binding_values map (pkg/markup.Apply).
func doubleBindingMatch(g *pdg.Graph, param pdg.Handle, chain string) (id, typ string, ok bool) {
	values, has := g.Node(param).Attrs["double_binding_values"].(map[string]interface{})
	if !has {
		return "", "", false
	}
	prefix := identName(g, param) + ".detail.value."
	if !strings.HasPrefix(chain, prefix) {
		return "", "", false
	}
	key := strings.TrimPrefix(chain, prefix)
	t, present := values[key]
	if !present {
		return "", "", false
	}
	typStr, _ := t.(string)
	return key, typStr, true
}

func identName(g *pdg.Graph, h pdg.Handle) string {
	if name, ok := g.Node(h).Attrs["name"].(string); ok {
		return name
	}
	return ""
}

func identOrLiteralName(g *pdg.Graph, h pdg.Handle) string {
	if name, ok := g.Node(h).Attrs["name"].(string); ok {
		return name
	}
	if val, ok := g.Node(h).Attrs["value"].(string); ok {
		return val
	}
	return ""
}

func roleChild(g *pdg.Graph, node pdg.Handle, role string) pdg.Handle {
	for _, c := range g.Node(node).Children {
		if g.Node(c).Role == role {
			return c
		}
	}
	return pdg.InvalidHandle()
}
