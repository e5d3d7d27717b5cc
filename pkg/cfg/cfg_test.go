package cfg

import (
	"testing"

	"github.com/taintmini/taintmini/pkg/pdg"
)

func TestLinkIfAttachesTrueFalseBranches(t *testing.T) {
	g := pdg.NewGraph()
	ifStmt := g.NewNode(pdg.KindIfStatement, g.Root(), "body")
	test := g.NewNode(pdg.KindIdentifier, ifStmt, "test")
	cons := g.NewNode(pdg.KindBlock, ifStmt, "consequent")
	alt := g.NewNode(pdg.KindBlock, ifStmt, "alternate")
	g.Node(ifStmt).Children = []pdg.Handle{test, cons, alt}

	Build(g, g.Root())

	foundTrue, foundFalse := false, false
	for _, e := range g.Node(ifStmt).ControlDepChildren {
		if e.To == cons && e.Label == pdg.LabelTrue {
			foundTrue = true
		}
		if e.To == alt && e.Label == pdg.LabelFalse {
			foundFalse = true
		}
	}
	if !foundTrue || !foundFalse {
		t.Fatalf("expected true/false control-dep edges to consequent/alternate")
	}
}

func TestLinkSwitchLastCaseAlwaysExecutesUnconditionally(t *testing.T) {
	g := pdg.NewGraph()
	sw := g.NewNode(pdg.KindSwitchStatement, g.Root(), "body")
	disc := g.NewNode(pdg.KindIdentifier, sw, "discriminant")
	case1 := g.NewNode(pdg.KindSwitchCase, sw, "cases")
	case2 := g.NewNode(pdg.KindSwitchCase, sw, "cases")
	g.Node(sw).Children = []pdg.Handle{disc, case1, case2}

	stmt2 := g.NewNode(pdg.KindExpressionStatement, case2, "consequent")
	g.Node(case2).Children = []pdg.Handle{stmt2}

	Build(g, g.Root())

	linkedTrue := false
	for _, e := range g.Node(case2).ControlDepChildren {
		if e.To == stmt2 && e.Label == pdg.LabelTrue {
			linkedTrue = true
		}
	}
	if !linkedTrue {
		t.Fatalf("last switch case must link its consequent as unconditional (true), matching the preserved quirk")
	}
}
