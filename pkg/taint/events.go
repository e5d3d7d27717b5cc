package taint

import (
	"strings"

	"github.com/taintmini/taintmini/pkg/pdg"
	"github.com/taintmini/taintmini/pkg/value"
)

// classifyEvent implements spec.md §4.F.5: if term's sink ends in the
// dotted segment "on" or "emit", term is the root identifier of an
// event-channel call rather than a plain flow terminus.
func (r *Resolver) classifyEvent(method string, term pdg.Handle, sink string) (Event, bool) {
	segs := strings.Split(sink, ".")
	last := segs[len(segs)-1]
	var typ EventType
	switch last {
	case "on":
		typ = EventOn
	case "emit":
		typ = EventEmit
	default:
		return Event{}, false
	}

	call := r.g.NearestEnclosingCall(term)
	if call == pdg.InvalidHandle() {
		return Event{}, false
	}

	name := r.firstLiteralArg(call)
	emitter := r.resolveEmitter(call)

	ev := Event{
		Method:    method,
		EventName: name,
		Type:      typ,
		CallExpr:  call,
		Sink:      sink,
		Emitter:   emitter,
	}
	if typ == EventEmit {
		ev.Sources = r.emitPayloadSources(call)
	}
	return ev, true
}

// firstLiteralArg returns the string value of call's first argument when
// that argument is a string literal, or "" otherwise.
func (r *Resolver) firstLiteralArg(call pdg.Handle) string {
	g := r.g
	for _, c := range g.Node(call).Children {
		if g.Node(c).Role != "arguments" {
			continue
		}
		if g.Node(c).Kind == pdg.KindLiteral {
			if s, ok := g.Node(c).Attrs["value"].(string); ok {
				return s
			}
		}
		return ""
	}
	return ""
}

// resolveEmitter implements spec.md §4.F.5's emitter resolution: first
// the enclosing `success: function(...)` property pattern, then a
// provenance walk over the callee root identifier.
func (r *Resolver) resolveEmitter(call pdg.Handle) string {
	if e := r.emitterFromSuccessCallback(call); e != "" {
		return e
	}
	return r.emitterFromProvenance(call)
}

// emitterFromSuccessCallback walks up from call looking for an enclosing
// Property node keyed "success" whose grandparent (the object-expression
// argument) is itself an argument of some outer CallExpression; that
// outer call's callee is the emitter.
func (r *Resolver) emitterFromSuccessCallback(call pdg.Handle) string {
	g := r.g
	cur := g.Node(call).Parent
	for cur != pdg.InvalidHandle() {
		if g.Node(cur).Kind == pdg.KindProperty && identOrLiteralName(g, roleChild(g, cur, "key")) == "success" {
			obj := g.Node(cur).Parent
			if obj != pdg.InvalidHandle() && g.Node(obj).Kind == pdg.KindObjectExpression {
				outer := g.Node(obj).Parent
				if outer != pdg.InvalidHandle() && g.Node(outer).Kind == pdg.KindCallExpression {
					if callee := roleChild(g, outer, "callee"); callee != pdg.InvalidHandle() {
						return value.DottedPath(g, callee)
					}
				}
			}
			return ""
		}
		cur = g.Node(cur).Parent
	}
	return ""
}

// emitterFromProvenance finds the earlier call expression whose value
// produced the callee's root identifier (spec.md §4.F.5's fallback: "the
// provenance-parents of the callee identifier for a member expression
// whose role is callee"): the receiver's data-dep parent is its
// declaration or last-assignment's identifier; if that identifier's own
// declarator/assignment was itself initialized from a call expression,
// that call's callee is the emitter.
func (r *Resolver) emitterFromProvenance(call pdg.Handle) string {
	g := r.g
	callee := roleChild(g, call, "callee")
	if callee == pdg.InvalidHandle() {
		return ""
	}
	root := leftmostObject(g, callee)
	for _, dp := range g.Node(root).DataDepParents {
		if src, ok := r.emitterFromWriterInit(dp); ok {
			return src
		}
	}
	return ""
}

// emitterFromWriterInit checks whether writer (a declarator/assignment's
// LHS identifier) was initialized from a call expression, returning that
// call's callee dotted path.
func (r *Resolver) emitterFromWriterInit(writer pdg.Handle) (string, bool) {
	g := r.g
	parent := g.Node(writer).Parent
	if parent == pdg.InvalidHandle() {
		return "", false
	}
	var rhs pdg.Handle
	switch g.Node(parent).Kind {
	case pdg.KindVariableDeclarator:
		rhs = roleChild(g, parent, "init")
	case pdg.KindAssignmentExpression:
		rhs = roleChild(g, parent, "right")
	default:
		return "", false
	}
	if rhs == pdg.InvalidHandle() || g.Node(rhs).Kind != pdg.KindCallExpression {
		return "", false
	}
	rhsCallee := roleChild(g, rhs, "callee")
	if rhsCallee == pdg.InvalidHandle() {
		return "", false
	}
	return value.DottedPath(g, rhsCallee), true
}

// leftmostObject walks down a member-expression chain's "object" role
// until it reaches a non-member-expression node (the receiver root).
func leftmostObject(g *pdg.Graph, n pdg.Handle) pdg.Handle {
	cur := n
	for g.Node(cur).Kind == pdg.KindMemberExpression {
		obj := roleChild(g, cur, "object")
		if obj == pdg.InvalidHandle() {
			break
		}
		cur = obj
	}
	return cur
}

// emitPayloadSources gathers a source string for every argument after
// call's first (the event-name literal): identifiers resolve through
// the same tiered lookup terminal flows use; an identifier with no
// recorded writer (a free/unresolved value) contributes its own name.
func (r *Resolver) emitPayloadSources(call pdg.Handle) []string {
	g := r.g
	var args []pdg.Handle
	for _, c := range g.Node(call).Children {
		if g.Node(c).Role == "arguments" {
			args = append(args, c)
		}
	}
	if len(args) <= 1 {
		return nil
	}

	seen := map[string]bool{}
	var out []string
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	for _, arg := range args[1:] {
		for _, ident := range identifiersIn(g, arg) {
			if len(g.Node(ident).DataDepParents) == 0 {
				add(identName(g, ident))
				continue
			}
			resolved := false
			for _, dp := range g.Node(ident).DataDepParents {
				if src, ok := r.immediateSource(dp); ok {
					add(src)
					resolved = true
					break
				}
				if src, ok := r.fallbackSource(dp); ok {
					add(src)
					resolved = true
					break
				}
			}
			if !resolved {
				add(identName(g, ident))
			}
		}
	}
	return out
}

func identifiersIn(g *pdg.Graph, root pdg.Handle) []pdg.Handle {
	var out []pdg.Handle
	g.Walk(root, func(h pdg.Handle) {
		if g.Node(h).Kind == pdg.KindIdentifier {
			out = append(out, h)
		}
	})
	return out
}
