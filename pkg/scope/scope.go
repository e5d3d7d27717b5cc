// Package scope implements the scope stack of spec.md §3.3/§4.E: an
// ordered stack of named frames tracking visible identifier bindings and
// their last-writer metadata. One page is analyzed by exactly one
// goroutine, so — unlike the teacher's ScopeManager — this stack carries
// no mutex (spec.md §5: "within a process the engine is single-threaded").
package scope

import (
	"fmt"

	"github.com/taintmini/taintmini/pkg/pdg"
)

// Kind tags a frame per spec.md §3.3.
type Kind int

const (
	KindGlobal Kind = iota
	KindFunction
	KindBranchTrue
	KindBranchFalse
	KindObjectExpression
	KindLetConst
)

// Binding is one declared-identifier entry: the node standing as the
// current "last writer" for a name in this frame.
type Binding struct {
	Name   string
	Writer pdg.Handle
}

// Frame is one stack entry (spec.md §3.3).
type Frame struct {
	Kind Kind

	// LetConstParent is the handle of the block this frame was opened for,
	// set only when Kind == KindLetConst (the "let_const<parent-id>" tag).
	LetConstParent pdg.Handle

	vars    []Binding
	ifBoth  map[string][2]pdg.Handle // "if-both-branches" writer pairs
	unknown map[string]pdg.Handle   // uses without a visible binding
	byName  map[string]int          // name -> index into vars, eagerly maintained

	Fn      pdg.Handle // function back-reference, invalid unless Kind == KindFunction
	InBlock bool
}

func newFrame(kind Kind) *Frame {
	return &Frame{
		Kind:    kind,
		ifBoth:  map[string][2]pdg.Handle{},
		unknown: map[string]pdg.Handle{},
		byName:  map[string]int{},
		Fn:      pdg.InvalidHandle(),
	}
}

// Stack is the ordered scope stack for one page.
type Stack struct {
	frames []*Frame
}

// New returns a stack with a single Global frame.
func New() *Stack {
	return &Stack{frames: []*Frame{newFrame(KindGlobal)}}
}

// Push opens a new frame of the given kind.
func (s *Stack) Push(kind Kind) *Frame {
	f := newFrame(kind)
	s.frames = append(s.frames, f)
	return f
}

// PushFrame pushes an already-constructed frame (e.g. one built with
// CopyScope) onto the stack.
func (s *Stack) PushFrame(f *Frame) { s.frames = append(s.frames, f) }

// Names returns every name currently bound in this frame.
func (f *Frame) Names() []string {
	names := make([]string, 0, len(f.byName))
	for name := range f.byName {
		names = append(names, name)
	}
	return names
}

// PushLetConst opens a `let_const<parent-id>` frame for block parent,
// unless one is already on top of the stack for the same parent (spec.md
// §4.D "Variable declaration").
func (s *Stack) PushLetConst(parent pdg.Handle) *Frame {
	if top := s.Top(); top.Kind == KindLetConst && top.LetConstParent == parent {
		return top
	}
	f := s.Push(KindLetConst)
	f.LetConstParent = parent
	return f
}

// Pop removes the top frame. Popping the last Global frame is a no-op.
func (s *Stack) Pop() {
	if len(s.frames) <= 1 {
		return
	}
	s.frames = s.frames[:len(s.frames)-1]
}

// PopIfLetConst pops the top frame only if it is a let_const frame (used
// on function/block exit per spec.md §4.D).
func (s *Stack) PopIfLetConst() {
	if s.Top().Kind == KindLetConst {
		s.Pop()
	}
}

// Top returns the innermost frame.
func (s *Stack) Top() *Frame { return s.frames[len(s.frames)-1] }

// Global returns the outermost frame.
func (s *Stack) Global() *Frame { return s.frames[0] }

// NearestFunction returns the innermost Function frame, or Global if none
// is open (spec.md §4.D "var/function -> nearest function or global").
func (s *Stack) NearestFunction() *Frame {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].Kind == KindFunction {
			return s.frames[i]
		}
	}
	return s.Global()
}

// Declare adds name -> writer to frame f, eagerly maintaining the name
// index (spec.md Design Notes §9: "prefer eager maintenance ... no
// invalidation races").
func (f *Frame) Declare(name string, writer pdg.Handle) *Binding {
	f.vars = append(f.vars, Binding{Name: name, Writer: writer})
	f.byName[name] = len(f.vars) - 1
	return &f.vars[len(f.vars)-1]
}

// Update rewrites the writer of an existing binding in place.
func (f *Frame) Update(name string, writer pdg.Handle) bool {
	idx, ok := f.byName[name]
	if !ok {
		return false
	}
	f.vars[idx].Writer = writer
	return true
}

// UpdateIfBoth records the pair of writers produced by the true/false arms
// of a conditional that both modified `name` (spec.md §4.D "Branch
// merging"). Subsequent reads must emit a data-dep from each writer.
func (f *Frame) UpdateIfBoth(name string, writerTrue, writerFalse pdg.Handle) {
	f.ifBoth[name] = [2]pdg.Handle{writerTrue, writerFalse}
}

// IfBoth returns the recorded pair for name, if any.
func (f *Frame) IfBoth(name string) ([2]pdg.Handle, bool) {
	p, ok := f.ifBoth[name]
	return p, ok
}

// Lookup searches name in this frame only.
func (f *Frame) Lookup(name string) (*Binding, bool) {
	idx, ok := f.byName[name]
	if !ok {
		return nil, false
	}
	return &f.vars[idx], true
}

// AddUnknown registers a use without a visible binding (spec.md §3.3,
// §4.D "Identifier").
func (f *Frame) AddUnknown(name string, node pdg.Handle) { f.unknown[name] = node }

// RemoveUnknown clears a previously-registered unknown on hoist
// resolution.
func (f *Frame) RemoveUnknown(name string) { delete(f.unknown, name) }

// Unknown returns the node registered as an unknown use of name, if any.
func (f *Frame) Unknown(name string) (pdg.Handle, bool) {
	h, ok := f.unknown[name]
	return h, ok
}

// LookupStack searches innermost-to-outermost (spec.md §4.E "Lookup
// policy"), returning the frame the binding was found in.
func (s *Stack) LookupStack(name string) (*Binding, *Frame, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if b, ok := s.frames[i].Lookup(name); ok {
			return b, s.frames[i], true
		}
	}
	return nil, nil, false
}

// CopyScope makes a shallow copy of f: the binding list, if-both map, and
// unknown set are copied; the function back-reference is carried (spec.md
// §4.E "copy_scope").
func CopyScope(f *Frame) *Frame {
	cp := newFrame(f.Kind)
	cp.LetConstParent = f.LetConstParent
	cp.vars = append([]Binding(nil), f.vars...)
	for k, v := range f.byName {
		cp.byName[k] = v
	}
	for k, v := range f.ifBoth {
		cp.ifBoth[k] = v
	}
	for k, v := range f.unknown {
		cp.unknown[k] = v
	}
	cp.Fn = f.Fn
	cp.InBlock = f.InBlock
	return cp
}

func (k Kind) String() string {
	switch k {
	case KindGlobal:
		return "Global"
	case KindFunction:
		return "Function"
	case KindBranchTrue:
		return "Branch_true"
	case KindBranchFalse:
		return "Branch_false"
	case KindObjectExpression:
		return "ObjectExpression"
	case KindLetConst:
		return "let_const"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}
