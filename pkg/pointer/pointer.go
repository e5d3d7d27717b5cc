// Package pointer implements map_var2value, spec.md §4.C's pointer
// analysis over variable-declarator/assignment/property nodes with an
// identifier-list shape.
package pointer

import (
	"github.com/taintmini/taintmini/pkg/pdg"
	"github.com/taintmini/taintmini/pkg/value"
)

// Analysis binds LHS identifiers to the values computed for the
// corresponding RHS positions.
type Analysis struct {
	g *pdg.Graph
	e *value.Evaluator
}

// New returns an Analysis bound to g, evaluating through e.
func New(g *pdg.Graph, e *value.Evaluator) *Analysis {
	return &Analysis{g: g, e: e}
}

// pathStep is one child-index taken while walking from the LHS root to a
// target identifier.
type pathStep int

// pathTo records the sequence of child indices from root down to target,
// per spec.md §4.C step 1 ("walk from the left-hand side to that
// identifier recording the path").
func (a *Analysis) pathTo(root, target pdg.Handle) ([]pathStep, bool) {
	if root == target {
		return nil, true
	}
	for i, c := range a.g.Node(root).Children {
		if path, ok := a.pathTo(c, target); ok {
			return append([]pathStep{pathStep(i)}, path...), true
		}
	}
	return nil, false
}

// walk follows path from root, returning the furthest handle reached and
// whether the full path was followed (false => the RHS was shorter:
// asymmetric destructuring, spec.md §4.C step 2).
func (a *Analysis) walk(root pdg.Handle, path []pathStep) (pdg.Handle, bool) {
	cur := root
	for _, step := range path {
		children := a.g.Node(cur).Children
		if int(step) >= len(children) {
			return cur, false
		}
		cur = children[step]
	}
	return cur, true
}

// Bind implements MapVar2Value for one (lhs, rhs, identifiers) triple.
// op is "" for a plain `=`, or the augmenting operator's letter ("+", "-",
// ...) for `+=`/`-=`/....
func (a *Analysis) Bind(lhs, rhs pdg.Handle, identifiers []pdg.Handle, op string) {
	for _, ident := range identifiers {
		path, ok := a.pathTo(lhs, ident)
		if !ok {
			continue
		}
		rhsTarget, full := a.walk(rhs, path)
		boundRoot := rhs
		if !full {
			// RHS shorter than LHS path: asymmetric destructuring, treat
			// rhsTarget (the furthest node we could reach) as the value.
			boundRoot = rhsTarget
		}

		// step 3: if the RHS identifier already carries a node-reference,
		// walk the path from that node instead.
		if rn := a.g.Node(rhs); rn.Kind == pdg.KindIdentifier && rn.Value != nil && rn.Value.Tag == pdg.TagNodeRef {
			if redirected, ok := a.walk(rn.Value.Ref, path); ok {
				boundRoot = redirected
			}
		}

		val := a.e.ValueOf(boundRoot)
		if op != "" {
			val = a.applyAugmenting(ident, val, op)
		}

		identNode := a.g.Node(ident)
		if identNode.Kind == pdg.KindIdentifier {
			a.bindPlainIdentifier(ident, boundRoot, val)
			continue
		}
		if identNode.Kind == pdg.KindMemberExpression {
			a.bindMemberExpression(ident, val)
		}
	}
}

func (a *Analysis) applyAugmenting(ident pdg.Handle, rhsVal *pdg.ValueCell, op string) *pdg.ValueCell {
	// LHS-old op RHS, computed via the evaluator's binary-operator table
	// by synthesizing a throwaway binary-expression node.
	old := a.e.ValueOf(ident)
	tmp := a.g.NewNode(pdg.KindBinaryExpression, pdg.InvalidHandle(), "")
	a.g.Node(tmp).Attrs["operator"] = op
	oldLit := a.g.NewNode(pdg.KindLiteral, tmp, "")
	a.g.Node(oldLit).Attrs["value"] = old.Prim
	rhsLit := a.g.NewNode(pdg.KindLiteral, tmp, "")
	a.g.Node(rhsLit).Attrs["value"] = rhsVal.Prim
	a.g.Node(tmp).Children = []pdg.Handle{oldLit, rhsLit}
	return a.e.ComputeValue(tmp, tmp)
}

// bindPlainIdentifier sets ident's value to val, and if val references a
// function-expression, attaches ident as that function's declared name
// (spec.md §4.C step 5 "Plain identifier").
func (a *Analysis) bindPlainIdentifier(ident, boundRoot pdg.Handle, val *pdg.ValueCell) {
	n := a.g.Node(ident)
	n.Value = val
	if bn := a.g.Node(boundRoot); bn.Kind == pdg.KindFunctionExpression || bn.Kind == pdg.KindArrowFunctionExpression {
		if bn.Fn != nil && bn.Fn.NameNode == pdg.InvalidHandle() {
			bn.Fn.NameNode = ident
		}
	}
}

// bindMemberExpression implements step 5 "Member expression on LHS": the
// member is re-evaluated in "no-compute" mode (we just need the shape, not
// a fresh recursive evaluation), and the new value is written into the
// resolved leaf, or synthesized as a property-chain mapping on an unknown
// host object.
func (a *Analysis) bindMemberExpression(member pdg.Handle, val *pdg.ValueCell) {
	n := a.g.Node(member)
	if len(n.Children) < 2 {
		return
	}
	objNode, propNode := n.Children[0], n.Children[1]
	objIdent := a.g.Node(objNode)
	if objIdent.Kind != pdg.KindIdentifier {
		return
	}
	propVal := a.e.ValueOf(propNode)
	key, _ := propVal.Prim.(string)
	if key == "" {
		return
	}

	if objIdent.Value != nil && objIdent.Value.Tag == pdg.TagMap {
		objIdent.Value.Map[key] = val
		return
	}

	// host/unknown object: synthesize {prop: value}, merging into any
	// existing mapping (spec.md §4.C step 5).
	if objIdent.Value == nil || objIdent.Value.Tag != pdg.TagMap {
		objIdent.Value = &pdg.ValueCell{Tag: pdg.TagMap, Map: map[string]*pdg.ValueCell{}}
	}
	mergeChain(objIdent.Value, map[string]*pdg.ValueCell{key: val})
}

func mergeChain(dst *pdg.ValueCell, src map[string]*pdg.ValueCell) {
	for k, v := range src {
		if existing, ok := dst.Map[k]; ok && existing.Tag == pdg.TagMap && v.Tag == pdg.TagMap {
			mergeChain(existing, v.Map)
			continue
		}
		dst.Map[k] = v
	}
}
