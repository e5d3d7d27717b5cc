// Package cfg implements the control-flow builder of spec.md §4.B: it
// walks a freshly AST-adapted graph and attaches statement-dep and
// control-dep edges per node kind.
package cfg

import "github.com/taintmini/taintmini/pkg/pdg"

// Build recurses from root attaching statement/control edges, per
// spec.md §4.B. Comments are never visited as dependents.
func Build(g *pdg.Graph, root pdg.Handle) {
	n := g.Node(root)
	if n.Kind == pdg.KindComment {
		return
	}

	switch n.Kind {
	case pdg.KindDoWhileStatement:
		linkDoWhile(g, root)
	case pdg.KindForStatement, pdg.KindForInStatement, pdg.KindForOfStatement:
		linkFor(g, root)
	case pdg.KindIfStatement, pdg.KindConditionalExpression:
		linkIf(g, root)
	case pdg.KindTryStatement:
		linkTry(g, root)
	case pdg.KindWhileStatement:
		linkWhile(g, root)
	case pdg.KindSwitchStatement:
		linkSwitch(g, root)
	default:
		linkEpsilon(g, root)
	}

	for _, c := range n.Children {
		Build(g, c)
	}
}

func attach(g *pdg.Graph, from, child pdg.Handle) {
	if g.Node(child).Kind == pdg.KindComment {
		return
	}
	if pdg.IsStatement(g.Node(child).Kind) {
		g.AddControlDep(from, child, pdg.LabelEpsilon)
	} else {
		g.AddStatementDep(from, child)
	}
}

// linkEpsilon handles the "ε-statements and unstructured" rule: every
// non-statement child is statement-dep, every statement child is
// control-dep ε. Covers block, expression-statement, variable-declaration,
// return, break, continue, throw, label, debugger, catch-clause, with,
// function/class-declaration, and any kind with no dedicated rule.
func linkEpsilon(g *pdg.Graph, node pdg.Handle) {
	for _, c := range g.Node(node).Children {
		attach(g, node, c)
	}
}

func linkDoWhile(g *pdg.Graph, node pdg.Handle) {
	n := g.Node(node)
	for _, c := range n.Children {
		if g.Node(c).Role == "body" {
			g.AddControlDep(node, c, pdg.LabelTrue)
		} else {
			g.AddStatementDep(node, c)
		}
	}
}

func linkFor(g *pdg.Graph, node pdg.Handle) {
	n := g.Node(node)
	for _, c := range n.Children {
		if g.Node(c).Role == "body" {
			g.AddControlDep(node, c, pdg.LabelTrue)
		} else {
			g.AddStatementDep(node, c)
		}
	}
}

func linkIf(g *pdg.Graph, node pdg.Handle) {
	n := g.Node(node)
	if len(n.Children) == 0 {
		return
	}
	test := n.Children[0]
	g.AddStatementDep(node, test)
	if len(n.Children) > 1 {
		g.AddControlDep(node, n.Children[1], pdg.LabelTrue)
	}
	if len(n.Children) > 2 {
		g.AddControlDep(node, n.Children[2], pdg.LabelFalse)
	}
}

func linkTry(g *pdg.Graph, node pdg.Handle) {
	n := g.Node(node)
	roles := []string{"block", "handler", "finalizer"}
	for _, c := range n.Children {
		switch g.Node(c).Role {
		case roles[0]:
			g.AddControlDep(node, c, pdg.LabelTrue)
		case roles[1]:
			g.AddControlDep(node, c, pdg.LabelFalse)
		case roles[2]:
			g.AddControlDep(node, c, pdg.LabelEpsilon)
		default:
			g.AddStatementDep(node, c)
		}
	}
}

func linkWhile(g *pdg.Graph, node pdg.Handle) {
	n := g.Node(node)
	if len(n.Children) == 0 {
		return
	}
	g.AddStatementDep(node, n.Children[0])
	if len(n.Children) > 1 {
		g.AddControlDep(node, n.Children[1], pdg.LabelTrue)
	}
}

// linkSwitch implements the verbatim-preserved quirk of spec.md §4.B: the
// discriminant is statement-dep; the first case is ε; subsequent cases
// chain off the previous case labelled false; within a case, the test (if
// any) is statement-dep and each consequent statement is control-dep
// true; the LAST case is unconditional (the original's non-standard
// always-executing "default" fall-through — Design Notes §9, not a bug
// to fix).
func linkSwitch(g *pdg.Graph, node pdg.Handle) {
	n := g.Node(node)
	var cases []pdg.Handle
	for _, c := range n.Children {
		if g.Node(c).Kind == pdg.KindSwitchCase {
			cases = append(cases, c)
		} else {
			g.AddStatementDep(node, c)
		}
	}
	for i, c := range cases {
		switch i {
		case 0:
			g.AddControlDep(node, c, pdg.LabelEpsilon)
		default:
			g.AddControlDep(cases[i-1], c, pdg.LabelFalse)
		}
		linkSwitchCase(g, c, i == len(cases)-1)
	}
}

func linkSwitchCase(g *pdg.Graph, caseNode pdg.Handle, isLast bool) {
	n := g.Node(caseNode)
	for _, c := range n.Children {
		if g.Node(c).Role == "test" {
			g.AddStatementDep(caseNode, c)
			continue
		}
		// consequent statement: control-dep true regardless of isLast —
		// the last case always executes unconditionally per the preserved
		// quirk, so it is linked identically to a matched case rather than
		// gated behind its own test.
		_ = isLast
		g.AddControlDep(caseNode, c, pdg.LabelTrue)
	}
}

