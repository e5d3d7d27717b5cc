// Package pdg implements the program-dependence-graph data model: the node
// taxonomy, the dependence edges that turn a tree into a graph, and the
// provenance relation the value engine populates.
package pdg

// Handle is a process-unique, non-persisted node identity. Graphs are
// arenas of Nodes addressed by Handle, never by pointer, so that a
// reverse-edge set can be a plain []Handle without aliasing concerns
// (spec.md Design Notes §9).
type Handle int

const invalidHandle Handle = -1

// EdgeLabel tags control-dep edges per spec.md §3.2.
type EdgeLabel int

const (
	LabelNone EdgeLabel = iota
	LabelTrue
	LabelFalse
	LabelEpsilon
)

// FunctionMeta is the capability struct function-kind nodes additionally
// own (spec.md §3.1 final paragraph).
type FunctionMeta struct {
	NameNode     Handle // declared name, or the internal name of a named function-expression
	InternalName Handle
	Params       []Handle
	Returns      []Handle // return-statement nodes observed so far
	Retraverse   bool
	Called       bool
}

// StatementMeta has no fields and no Node field holds it; the
// role/list-child bookkeeping used to round-trip the AST lives directly
// on Node (Role, IsList).
type StatementMeta struct{}

// ValueCell is the tagged-union symbolic value slot every value-bearing
// node owns (spec.md §3.1, §4.C). Exactly one of the typed fields is
// meaningful at a time, selected by Tag; Tag distinguishes "no value yet"
// from an explicit JS null, per Design Notes §9 ("null is a distinct tag,
// not the absence of a tag").
type ValueCell struct {
	Tag   ValueTag
	Prim  interface{} // string | float64 | bool, when Tag == TagPrimitive
	List  []*ValueCell
	Map   map[string]*ValueCell
	Ref   Handle // Tag == TagNodeRef: "its value lives there"
	Stale bool
}

type ValueTag int

const (
	TagUnset ValueTag = iota
	TagNull
	TagPrimitive
	TagList
	TagMap
	TagNodeRef
)

// Node is the central entity (spec.md §3.1).
type Node struct {
	Handle Handle
	Kind   Kind

	Role     string // field name under which this node sits in its parent
	IsList   bool   // parent stores this child as one element of a list
	Attrs    map[string]interface{}

	Parent   Handle
	Children []Handle

	// dependence edges, bidirectionally registered (spec.md §3.2)
	StatementDepParents  []Handle
	StatementDepChildren []Handle
	ControlDepParents    []labeledEdge
	ControlDepChildren   []labeledEdge
	DataDepParents       []Handle
	DataDepChildren      []Handle
	FunParamParents      []Handle
	FunParamChildren     []Handle

	// provenance (spec.md §3.1, §4.C) — unlabelled, transitive
	ProvenanceParents  []Handle
	ProvenanceChildren []Handle

	Value *ValueCell // nil unless IsValueBearing(Kind)
	Fn    *FunctionMeta

	// FnRef is set on a function's name identifier node (declaration or
	// named expression) to point back at the function node itself —
	// the name -> function inverse of FunctionMeta.NameNode, mirroring
	// the original implementation's Node.set_fun. Invalid unless this
	// node is such a name.
	FnRef Handle
}

type labeledEdge struct {
	To    Handle
	Label EdgeLabel
}

// Graph is the arena owning every Node of one page's PDG.
type Graph struct {
	nodes []Node
	// dedup sets, keyed by (from, to) pairs, so AddXxxEdge is idempotent
	// per destination id as spec.md §3.2 requires.
	statementSeen map[[2]Handle]bool
	controlSeen   map[[2]Handle]bool
	dataSeen      map[[2]Handle]bool
	funParamSeen  map[[2]Handle]bool
	provSeen      map[[2]Handle]bool
}

// NewGraph returns an empty graph with a Program root at handle 0.
func NewGraph() *Graph {
	g := &Graph{
		statementSeen: map[[2]Handle]bool{},
		controlSeen:   map[[2]Handle]bool{},
		dataSeen:      map[[2]Handle]bool{},
		funParamSeen:  map[[2]Handle]bool{},
		provSeen:      map[[2]Handle]bool{},
	}
	g.NewNode(KindProgram, invalidHandle, "")
	return g
}

// NewNode allocates a node, wires it as a child of parent (if valid), and
// returns its handle.
func (g *Graph) NewNode(kind Kind, parent Handle, role string) Handle {
	h := Handle(len(g.nodes))
	n := Node{
		Handle: h,
		Kind:   kind,
		Role:   role,
		Parent: parent,
		Attrs:  map[string]interface{}{},
		FnRef:  invalidHandle,
	}
	if IsValueBearing(kind) {
		n.Value = &ValueCell{Tag: TagUnset}
	}
	if IsFunction(kind) {
		n.Fn = &FunctionMeta{NameNode: invalidHandle, InternalName: invalidHandle}
	}
	g.nodes = append(g.nodes, n)
	if parent != invalidHandle {
		p := g.Node(parent)
		p.Children = append(p.Children, h)
	}
	return h
}

// Node returns a mutable pointer to the node at h. Panics on an
// out-of-range handle, mirroring the "process-unique integer id" contract
// of spec.md §3.1: a bad handle is a programming error, not recoverable
// input.
func (g *Graph) Node(h Handle) *Node {
	return &g.nodes[h]
}

// Root returns the Program node.
func (g *Graph) Root() Handle { return 0 }

// Len returns the number of nodes in the arena.
func (g *Graph) Len() int { return len(g.nodes) }

// Walk visits every node reachable from h, pre-order, via Children.
func (g *Graph) Walk(h Handle, visit func(Handle)) {
	visit(h)
	for _, c := range g.Node(h).Children {
		g.Walk(c, visit)
	}
}

func pairOf(from, to Handle) [2]Handle { return [2]Handle{from, to} }

// AddStatementDep attaches a non-statement descendant to its nearest
// enclosing statement (spec.md §3.2).
func (g *Graph) AddStatementDep(from, to Handle) {
	key := pairOf(from, to)
	if g.statementSeen[key] {
		return
	}
	g.statementSeen[key] = true
	g.Node(from).StatementDepChildren = append(g.Node(from).StatementDepChildren, to)
	g.Node(to).StatementDepParents = append(g.Node(to).StatementDepParents, from)
}

// AddControlDep links statement -> statement with a true/false/ε label.
func (g *Graph) AddControlDep(from, to Handle, label EdgeLabel) {
	key := pairOf(from, to)
	if g.controlSeen[key] {
		return
	}
	g.controlSeen[key] = true
	g.Node(from).ControlDepChildren = append(g.Node(from).ControlDepChildren, labeledEdge{to, label})
	g.Node(to).ControlDepParents = append(g.Node(to).ControlDepParents, labeledEdge{from, label})
}

// AddDataDep links the last defining/assigning identifier occurrence to a
// use (or subsequent assignment).
func (g *Graph) AddDataDep(from, to Handle) {
	if from == to {
		return
	}
	key := pairOf(from, to)
	if g.dataSeen[key] {
		return
	}
	g.dataSeen[key] = true
	g.Node(from).DataDepChildren = append(g.Node(from).DataDepChildren, to)
	g.Node(to).DataDepParents = append(g.Node(to).DataDepParents, from)
}

// AddFunParam links a definition-site parameter to a call-site argument.
func (g *Graph) AddFunParam(from, to Handle) {
	key := pairOf(from, to)
	if g.funParamSeen[key] {
		return
	}
	g.funParamSeen[key] = true
	g.Node(from).FunParamChildren = append(g.Node(from).FunParamChildren, to)
	g.Node(to).FunParamParents = append(g.Node(to).FunParamParents, from)
}

// SetProvenance records that computing `to`'s value consulted `from`, and
// propagates transitively: `to` inherits `from`'s provenance parents, and
// `from` inherits `to`'s provenance children (spec.md §4.C). A revisit
// guard (the dedup set) prevents infinite inheritance on cyclic graphs.
func (g *Graph) SetProvenance(from, to Handle) {
	g.addProvenanceEdge(from, to)
	for _, gp := range append([]Handle(nil), g.Node(from).ProvenanceParents...) {
		g.addProvenanceEdge(gp, to)
	}
	for _, gc := range append([]Handle(nil), g.Node(to).ProvenanceChildren...) {
		g.addProvenanceEdge(from, gc)
	}
}

func (g *Graph) addProvenanceEdge(from, to Handle) {
	if from == to || from == invalidHandle || to == invalidHandle {
		return
	}
	key := pairOf(from, to)
	if g.provSeen[key] {
		return
	}
	g.provSeen[key] = true
	g.Node(to).ProvenanceParents = append(g.Node(to).ProvenanceParents, from)
	g.Node(from).ProvenanceChildren = append(g.Node(from).ProvenanceChildren, to)
}

// NearestEnclosingStatement walks Parent links until it finds a statement
// node, or returns invalidHandle if none exists (used throughout §4.F).
func (g *Graph) NearestEnclosingStatement(h Handle) Handle {
	cur := g.Node(h).Parent
	for cur != invalidHandle {
		if IsStatement(g.Node(cur).Kind) {
			return cur
		}
		cur = g.Node(cur).Parent
	}
	return invalidHandle
}

// NearestEnclosingCall walks Parent links until it finds a call/new/
// tagged-template expression, or returns invalidHandle (spec.md §4.F).
func (g *Graph) NearestEnclosingCall(h Handle) Handle {
	cur := h
	for cur != invalidHandle {
		k := g.Node(cur).Kind
		if k == KindCallExpression || k == KindNewExpression || k == KindTaggedTemplateExpression {
			return cur
		}
		cur = g.Node(cur).Parent
	}
	return invalidHandle
}

// InvalidHandle exposes the sentinel value to other packages.
func InvalidHandle() Handle { return invalidHandle }
