package scope

import (
	"testing"

	"github.com/taintmini/taintmini/pkg/pdg"
)

func TestLookupStackInnermostWins(t *testing.T) {
	s := New()
	s.Global().Declare("x", pdg.Handle(1))
	fn := s.Push(KindFunction)
	fn.Declare("x", pdg.Handle(2))

	b, f, ok := s.LookupStack("x")
	if !ok {
		t.Fatal("expected x to resolve")
	}
	if b.Writer != pdg.Handle(2) || f != fn {
		t.Fatalf("expected innermost binding to win, got writer=%d", b.Writer)
	}
}

func TestPushLetConstIsIdempotentForSameParent(t *testing.T) {
	s := New()
	block := pdg.Handle(5)
	f1 := s.PushLetConst(block)
	f2 := s.PushLetConst(block)
	if f1 != f2 {
		t.Fatal("re-entering the same block must not push a second let_const frame")
	}
}

func TestUnknownRegistrationAndRemoval(t *testing.T) {
	f := newFrame(KindGlobal)
	f.AddUnknown("y", pdg.Handle(9))
	if _, ok := f.Unknown("y"); !ok {
		t.Fatal("expected y registered as unknown")
	}
	f.RemoveUnknown("y")
	if _, ok := f.Unknown("y"); ok {
		t.Fatal("expected y removed from unknown set")
	}
}

func TestCopyScopeIsShallowAndIndependent(t *testing.T) {
	f := newFrame(KindBranchTrue)
	f.Declare("a", pdg.Handle(1))
	cp := CopyScope(f)
	cp.Update("a", pdg.Handle(2))

	b, _ := f.Lookup("a")
	if b.Writer != pdg.Handle(1) {
		t.Fatal("mutating the copy must not affect the original frame")
	}
}
