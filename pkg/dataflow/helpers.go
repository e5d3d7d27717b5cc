package dataflow

import "github.com/taintmini/taintmini/pkg/pdg"

// roleChild returns the first child of node whose Role matches, or
// InvalidHandle.
func roleChild(g *pdg.Graph, node pdg.Handle, role string) pdg.Handle {
	for _, c := range g.Node(node).Children {
		if g.Node(c).Role == role {
			return c
		}
	}
	return pdg.InvalidHandle()
}

// roleChildren returns every child of node whose Role matches.
func roleChildren(g *pdg.Graph, node pdg.Handle, role string) []pdg.Handle {
	var out []pdg.Handle
	for _, c := range g.Node(node).Children {
		if g.Node(c).Role == role {
			out = append(out, c)
		}
	}
	return out
}

// collectIdentifiers returns every Identifier-kind node reachable from
// root that denotes a variable binding target, used to enumerate the LHS
// targets of an assignment/update expression (a plain identifier, a
// member-expression receiver chain, or a destructuring pattern). A
// member-expression's property child is never itself a variable, so it
// is not descended into unless the access is computed (`a[b]`, where `b`
// is a free identifier read).
func collectIdentifiers(g *pdg.Graph, root pdg.Handle) []pdg.Handle {
	var out []pdg.Handle
	var walk func(h pdg.Handle)
	walk = func(h pdg.Handle) {
		n := g.Node(h)
		if n.Kind == pdg.KindIdentifier {
			out = append(out, h)
			return
		}
		if n.Kind == pdg.KindMemberExpression {
			if len(n.Children) > 0 {
				walk(n.Children[0])
			}
			computed, _ := n.Attrs["computed"].(bool)
			if computed && len(n.Children) > 1 {
				walk(n.Children[1])
			}
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	return out
}
