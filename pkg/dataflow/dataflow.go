// Package dataflow implements the scope-aware data-flow engine of spec.md
// §4.D: df_scoping and its per-kind dispatch, tying together pkg/scope,
// pkg/value, and pkg/pointer over one page's pkg/pdg.Graph.
package dataflow

import (
	"context"
	"errors"
	"strings"

	"github.com/taintmini/taintmini/pkg/pdg"
	"github.com/taintmini/taintmini/pkg/pointer"
	"github.com/taintmini/taintmini/pkg/scope"
	"github.com/taintmini/taintmini/pkg/value"
)

// Bounding knobs, spec.md §5 table.
const (
	LimitRetraverse = 1
	LimitLoop       = 1
)

// ErrBuildTimeout is returned when the per-page deadline (spec.md §5,
// default 600s) is exceeded. The worker (pkg/pipeline) converts it into
// an empty Program node for the page, per spec.md §7.
var ErrBuildTimeout = errors.New("dataflow: build timeout exceeded")

// Engine drives the data-flow traversal over one page's graph. Not safe
// for concurrent use (spec.md §5: one goroutine per page).
type Engine struct {
	g      *pdg.Graph
	scopes *scope.Stack
	eval   *value.Evaluator
	ptr    *pointer.Analysis

	ctx context.Context

	retraverseCount map[pdg.Handle]int
	lastReturnValue map[pdg.Handle]*pdg.ValueCell
}

// New returns an Engine over g, bounded by ctx's deadline (spec.md §5,
// §9 "Timeout via signal" — realized as a cooperative deadline check).
func New(ctx context.Context, g *pdg.Graph) *Engine {
	e := &Engine{
		g:               g,
		scopes:          scope.New(),
		retraverseCount: map[pdg.Handle]int{},
		lastReturnValue: map[pdg.Handle]*pdg.ValueCell{},
		ctx:             ctx,
	}
	e.eval = value.NewEvaluator(g)
	e.eval.ReturnValue = func(fn pdg.Handle) *pdg.ValueCell { return e.lastReturnValue[fn] }
	e.ptr = pointer.New(g, e.eval)
	return e
}

// Run traverses the whole program (spec.md §4.D "Top-level entry:
// df_scoping(node, scopes, id_list, entry=1)").
func (e *Engine) Run(root pdg.Handle) error {
	return e.dfScoping(root, true)
}

func (e *Engine) checkDeadline() error {
	select {
	case <-e.ctx.Done():
		return ErrBuildTimeout
	default:
		return nil
	}
}

// dfScoping is the per-kind dispatch (spec.md §4.D).
func (e *Engine) dfScoping(node pdg.Handle, entry bool) error {
	if err := e.checkDeadline(); err != nil {
		return err
	}
	n := e.g.Node(node)
	switch n.Kind {
	case pdg.KindVariableDeclaration:
		return e.handleVariableDeclaration(node)
	case pdg.KindAssignmentExpression:
		return e.handleAssignment(node)
	case pdg.KindUpdateExpression:
		return e.handleUpdate(node)
	case pdg.KindIdentifier:
		return e.handleIdentifier(node)
	case pdg.KindFunctionDeclaration, pdg.KindFunctionExpression, pdg.KindArrowFunctionExpression:
		return e.handleFunction(node)
	case pdg.KindCallExpression, pdg.KindNewExpression, pdg.KindTaggedTemplateExpression:
		return e.handleCall(node)
	case pdg.KindReturnStatement:
		return e.handleReturn(node)
	case pdg.KindForStatement:
		return e.handleFor(node)
	case pdg.KindForInStatement, pdg.KindForOfStatement:
		return e.handleForInOf(node)
	case pdg.KindObjectExpression, pdg.KindObjectPattern:
		return e.handleObjectExpression(node)
	default:
		return e.statementScope(node)
	}
}

func (e *Engine) traverseChildren(node pdg.Handle) error {
	for _, c := range e.g.Node(node).Children {
		if err := e.dfScoping(c, false); err != nil {
			return err
		}
	}
	return nil
}

// --- Variable declaration ---------------------------------------------

func (e *Engine) handleVariableDeclaration(node pdg.Handle) error {
	n := e.g.Node(node)
	kind, _ := n.Attrs["kind"].(string)
	if kind == "let" || kind == "const" {
		if top := e.scopes.Top(); top.Kind == scope.KindFunction || top.InBlock {
			e.scopes.PushLetConst(node)
		}
	}
	for _, decl := range n.Children {
		if e.g.Node(decl).Kind != pdg.KindVariableDeclarator {
			continue
		}
		if err := e.handleDeclarator(decl, kind); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) handleDeclarator(decl pdg.Handle, kind string) error {
	dn := e.g.Node(decl)
	if len(dn.Children) == 0 {
		return nil
	}
	target := dn.Children[0]
	var init pdg.Handle = pdg.InvalidHandle()
	if len(dn.Children) > 1 {
		init = dn.Children[1]
	}

	idents := e.declareTarget(target, kind)

	if init != pdg.InvalidHandle() {
		if err := e.dfScoping(init, false); err != nil {
			return err
		}
		e.ptr.Bind(target, init, idents, "")
	}
	return nil
}

// declareTarget handles a plain identifier or an object-pattern target,
// returning the identifier handles that were declared (spec.md §4.D
// "Variable declaration").
func (e *Engine) declareTarget(target pdg.Handle, kind string) []pdg.Handle {
	tn := e.g.Node(target)
	if tn.Kind == pdg.KindIdentifier {
		name, _ := tn.Attrs["name"].(string)
		frame := e.declarationFrame(kind)
		frame.Declare(name, target)
		e.resolveHoistedUnknown(name, target)
		return []pdg.Handle{target}
	}
	if tn.Kind == pdg.KindObjectPattern {
		var idents []pdg.Handle
		for _, prop := range tn.Children {
			pn := e.g.Node(prop)
			if pn.Kind != pdg.KindProperty || len(pn.Children) < 2 {
				continue
			}
			// value leaves are declared; key leaves are not (spec.md §4.D).
			idents = append(idents, e.declareTarget(pn.Children[1], kind)...)
		}
		return idents
	}
	return nil
}

func (e *Engine) declarationFrame(kind string) *scope.Frame {
	if kind == "let" || kind == "const" {
		return e.scopes.Top()
	}
	return e.scopes.NearestFunction()
}

// resolveHoistedUnknown links a previously-unknown use of name to its
// declaration via a data-dep, then clears the unknown marker (spec.md
// §4.D "Function declaration" hoist-resolve, applied generally to every
// declaration site).
func (e *Engine) resolveHoistedUnknown(name string, decl pdg.Handle) {
	if use, ok := e.scopes.Global().Unknown(name); ok {
		e.g.AddDataDep(decl, use)
		e.scopes.Global().RemoveUnknown(name)
	}
}

// --- Assignment expression ----------------------------------------------

func (e *Engine) handleAssignment(node pdg.Handle) error {
	n := e.g.Node(node)
	if len(n.Children) < 2 {
		return nil
	}
	lhs, rhs := n.Children[0], n.Children[1]
	op, _ := n.Attrs["operator"].(string)
	augOp := augmentingOperatorLetter(op)

	idents := collectIdentifiers(e.g, lhs)
	for _, ident := range idents {
		if augOp != "" {
			if w, _, ok := e.writerOf(ident); ok {
				e.g.AddDataDep(w, ident)
			}
		}
	}

	if ln := e.g.Node(lhs); ln.Kind == pdg.KindMemberExpression {
		if isGlobalWrite(e.g, lhs) {
			// this.X / window.X: treated as a global write, no data-dep.
		} else {
			e.updateObjectWriter(lhs)
		}
	} else {
		for _, ident := range idents {
			name, _ := e.g.Node(ident).Attrs["name"].(string)
			e.declareOrUpdate(name, ident)
		}
	}

	if err := e.dfScoping(rhs, false); err != nil {
		return err
	}
	e.ptr.Bind(lhs, rhs, idents, augOp)
	return nil
}

func augmentingOperatorLetter(op string) string {
	switch op {
	case "+=":
		return "+"
	case "-=":
		return "-"
	case "*=":
		return "*"
	case "/=":
		return "/"
	case "%=":
		return "%"
	}
	return ""
}

func isGlobalWrite(g *pdg.Graph, member pdg.Handle) bool {
	path := value.DottedPath(g, member)
	return strings.HasPrefix(path, "this.") || strings.HasPrefix(path, "window.")
}

func (e *Engine) updateObjectWriter(member pdg.Handle) {
	n := e.g.Node(member)
	if len(n.Children) == 0 {
		return
	}
	root := collectIdentifiers(e.g, n.Children[0])
	for _, ident := range root {
		name, _ := e.g.Node(ident).Attrs["name"].(string)
		e.declareOrUpdate(name, ident)
	}
}

func (e *Engine) declareOrUpdate(name string, writer pdg.Handle) {
	if _, frame, ok := e.scopes.LookupStack(name); ok {
		frame.Update(name, writer)
		return
	}
	e.scopes.NearestFunction().Declare(name, writer)
}

// --- Update expression ----------------------------------------------------

func (e *Engine) handleUpdate(node pdg.Handle) error {
	n := e.g.Node(node)
	if len(n.Children) == 0 {
		return nil
	}
	operand := n.Children[0]
	for _, ident := range collectIdentifiers(e.g, operand) {
		if w, _, ok := e.writerOf(ident); ok {
			e.g.AddDataDep(w, ident) // read
		}
		name, _ := e.g.Node(ident).Attrs["name"].(string)
		e.declareOrUpdate(name, ident)
		if w, _, ok := e.writerOf(ident); ok {
			e.g.AddDataDep(w, ident) // read of the new value
		}
	}
	e.eval.ComputeValue(node, node)
	return nil
}

// --- Identifier (free use) ------------------------------------------------

func (e *Engine) handleIdentifier(node pdg.Handle) error {
	n := e.g.Node(node)
	name, _ := n.Attrs["name"].(string)

	if pn := e.g.Node(n.Parent); pn.Kind == pdg.KindCatchClause {
		e.scopes.Top().Declare(name, node)
		return nil
	}

	w, frame, found := e.writerOf(node)
	if found {
		e.g.AddDataDep(w, node)
		if pair, ok := frame.IfBoth(name); ok {
			e.g.AddDataDep(pair[0], node)
			e.g.AddDataDep(pair[1], node)
		}
		if wn := e.g.Node(w); wn.Value != nil {
			n.Value = wn.Value
		}
		if isMemberCallChainCallee(e.g, node) {
			// update=true: this occurrence becomes the new last-writer, a
			// heuristic preserved verbatim (Design Notes §9) so that reads
			// of the receiver after e.g. arr.push(x) see the mutated
			// version, at the cost of the read depending on the call
			// occurrence rather than the underlying write.
			frame.Update(name, node)
		}
		return nil
	}

	if !isReserved(name) {
		e.scopes.Global().AddUnknown(name, node)
	}
	return nil
}

// writerOf looks up name's current writer in the scope stack.
func (e *Engine) writerOf(node pdg.Handle) (pdg.Handle, *scope.Frame, bool) {
	name, _ := e.g.Node(node).Attrs["name"].(string)
	b, frame, ok := e.scopes.LookupStack(name)
	if !ok {
		return pdg.InvalidHandle(), nil, false
	}
	return b.Writer, frame, true
}

// isMemberCallChainCallee detects `a.b.c.X(...)`-shaped call where node is
// the receiver root identifier of a member chain used as a callee
// (spec.md §4.D "Identifier").
func isMemberCallChainCallee(g *pdg.Graph, node pdg.Handle) bool {
	cur := node
	sawMember := false
	for {
		parent := g.Node(cur).Parent
		if parent == pdg.InvalidHandle() {
			return false
		}
		pn := g.Node(parent)
		if pn.Kind == pdg.KindMemberExpression && len(pn.Children) > 0 && pn.Children[0] == cur {
			sawMember = true
			cur = parent
			continue
		}
		if pn.Kind == pdg.KindCallExpression && sawMember && len(pn.Children) > 0 && pn.Children[0] == cur {
			return true
		}
		return false
	}
}

// --- Function declaration / expression -------------------------------------

func (e *Engine) handleFunction(node pdg.Handle) error {
	n := e.g.Node(node)
	if e.retraverseCount[node] >= LimitRetraverse+1 {
		return nil
	}
	e.retraverseCount[node]++

	outer := e.scopes.Top()
	fn := e.scopes.Push(scope.KindFunction)
	fn.Fn = node

	nameChild := roleChild(e.g, node, "id")
	if nameChild != pdg.InvalidHandle() {
		name, _ := e.g.Node(nameChild).Attrs["name"].(string)
		if n.Kind == pdg.KindFunctionDeclaration {
			outer.Declare(name, nameChild)
		} else {
			fn.Declare(name, nameChild)
		}
		if n.Fn != nil {
			n.Fn.NameNode = nameChild
		}
		e.g.Node(nameChild).FnRef = node // name -> function back-reference, original's set_fun
		e.resolveHoistedUnknown(name, nameChild)
	}

	for _, p := range roleChildren(e.g, node, "params") {
		e.bindParam(node, p, fn)
	}

	if body := roleChild(e.g, node, "body"); body != pdg.InvalidHandle() {
		if err := e.dfScoping(body, false); err != nil {
			e.scopes.Pop()
			return err
		}
	}

	e.scopes.PopIfLetConst()
	e.scopes.Pop()

	if n.Fn != nil {
		for _, ret := range n.Fn.Returns {
			val := e.eval.ComputeValue(ret, ret)
			e.lastReturnValue[node] = val
		}
	}
	return nil
}

func (e *Engine) bindParam(fnNode, param pdg.Handle, fn *scope.Frame) {
	pn := e.g.Node(param)
	fnMeta := e.g.Node(fnNode).Fn
	if fnMeta != nil {
		fnMeta.Params = append(fnMeta.Params, param)
	}
	if pn.Kind == pdg.KindIdentifier {
		name, _ := pn.Attrs["name"].(string)
		fn.Declare(name, param) // no data-dep: "parameters are defined here"
		return
	}
	// object-pattern param: recurse as a declaration target.
	e.declareTarget(param, "")
}

// --- Call / new / tagged-template ------------------------------------------

func (e *Engine) handleCall(node pdg.Handle) error {
	n := e.g.Node(node)
	if len(n.Children) == 0 {
		return nil
	}
	callee := n.Children[0]
	args := n.Children[1:]

	if err := e.dfScoping(callee, false); err != nil {
		return err
	}
	for _, a := range args {
		if err := e.dfScoping(a, false); err != nil {
			return err
		}
	}

	fnNode, ok := e.resolveCallee(callee)
	if !ok {
		e.handleContainerIdioms(node, callee, args)
		e.eval.ComputeValue(node, node)
		return nil
	}

	fnMeta := e.g.Node(fnNode).Fn
	if fnMeta == nil {
		return nil
	}
	saved := make([]*pdg.ValueCell, len(fnMeta.Params))
	for i, p := range fnMeta.Params {
		saved[i] = e.g.Node(p).Value
		var argVal *pdg.ValueCell
		if i < len(args) {
			argVal = e.eval.ValueOf(args[i])
			e.g.AddFunParam(p, args[i])
		} else {
			argVal = &pdg.ValueCell{Tag: pdg.TagNull}
		}
		e.g.Node(p).Value = argVal
	}

	fnMeta.Retraverse = true
	fnMeta.Called = true
	_ = e.handleFunction(fnNode)
	fnMeta.Retraverse = false

	node2 := e.g.Node(node)
	if len(fnMeta.Returns) > 0 {
		last := fnMeta.Returns[len(fnMeta.Returns)-1]
		node2.Value = e.eval.ComputeValue(last, last)
	}

	for i, p := range fnMeta.Params {
		e.g.Node(p).Value = saved[i]
	}

	e.handleContainerIdioms(node, callee, args)
	return nil
}

// resolveCallee implements spec.md §4.D "Call/new/tagged-template"
// resolution order: a direct function-expression callee, a computed
// value that is a function-expression, or following data_dep_parents
// until a writer with a function back-reference is found.
func (e *Engine) resolveCallee(callee pdg.Handle) (pdg.Handle, bool) {
	cn := e.g.Node(callee)
	if cn.Kind == pdg.KindFunctionExpression || cn.Kind == pdg.KindArrowFunctionExpression {
		return callee, true
	}
	val := e.eval.ValueOf(callee)
	if val.Tag == pdg.TagNodeRef {
		if rn := e.g.Node(val.Ref); rn.Kind == pdg.KindFunctionExpression || rn.Kind == pdg.KindArrowFunctionExpression {
			return val.Ref, true
		}
	}
	if cn.Kind != pdg.KindIdentifier {
		return pdg.InvalidHandle(), false
	}
	for _, parent := range cn.DataDepParents {
		if fn := e.g.Node(parent).FnRef; fn != pdg.InvalidHandle() {
			return fn, true
		}
	}
	return pdg.InvalidHandle(), false
}

// handleContainerIdioms inspects the callee shape for .forEach(cb) and
// .push(args) idioms (spec.md §4.D "Call/new/tagged-template").
func (e *Engine) handleContainerIdioms(call, callee pdg.Handle, args []pdg.Handle) {
	cn := e.g.Node(callee)
	if cn.Kind != pdg.KindMemberExpression || len(cn.Children) < 2 {
		return
	}
	receiver, prop := cn.Children[0], cn.Children[1]
	propName, _ := e.g.Node(prop).Attrs["name"].(string)

	switch propName {
	case "forEach":
		if len(args) == 0 {
			return
		}
		cb := args[0]
		for _, p := range roleChildren(e.g, cb, "params") {
			e.g.SetProvenance(receiver, p)
		}
	case "push":
		for _, a := range args {
			e.setProvenanceRecursive(a, receiver)
		}
	}
}

func (e *Engine) setProvenanceRecursive(from, to pdg.Handle) {
	e.g.SetProvenance(from, to)
	for _, c := range e.g.Node(from).Children {
		e.setProvenanceRecursive(c, to)
	}
}

// --- Return statement -------------------------------------------------------

func (e *Engine) handleReturn(node pdg.Handle) error {
	fn := e.scopes.NearestFunction()
	if fn.Fn != pdg.InvalidHandle() {
		if fnMeta := e.g.Node(fn.Fn).Fn; fnMeta != nil {
			fnMeta.Returns = append(fnMeta.Returns, node)
		}
	}
	return e.traverseChildren(node)
}

// --- For-statement -----------------------------------------------------------

func (e *Engine) handleFor(node pdg.Handle) error {
	n := e.g.Node(node)
	initN := roleChild(e.g, node, "init")
	testN := roleChild(e.g, node, "test")
	updateN := roleChild(e.g, node, "update")
	body := roleChild(e.g, node, "body")

	e.scopes.PushLetConst(node)
	defer e.scopes.PopIfLetConst()

	if initN != pdg.InvalidHandle() {
		if err := e.dfScoping(initN, false); err != nil {
			return err
		}
	}
	if testN != pdg.InvalidHandle() {
		if err := e.dfScoping(testN, false); err != nil {
			return err
		}
	}

	iterations := LimitLoop
	for i := 0; i < iterations; i++ {
		truthy := true
		if testN != pdg.InvalidHandle() {
			val := e.eval.ValueOf(testN)
			if b, ok := val.Prim.(bool); ok {
				truthy = b
			}
		}
		if !truthy {
			break
		}
		if body != pdg.InvalidHandle() {
			if err := e.dfScoping(body, false); err != nil {
				return err
			}
		}
		if updateN != pdg.InvalidHandle() {
			if err := e.dfScoping(updateN, false); err != nil {
				return err
			}
			if testN != pdg.InvalidHandle() {
				for _, ident := range collectIdentifiers(e.g, updateN) {
					e.g.AddDataDep(ident, testN)
				}
			}
		}
	}
	_ = n
	return nil
}

func (e *Engine) handleForInOf(node pdg.Handle) error {
	left := roleChild(e.g, node, "left")
	right := roleChild(e.g, node, "right")
	body := roleChild(e.g, node, "body")

	e.scopes.PushLetConst(node)
	defer e.scopes.PopIfLetConst()

	if left != pdg.InvalidHandle() {
		if err := e.dfScoping(left, false); err != nil {
			return err
		}
	}
	if right != pdg.InvalidHandle() {
		if err := e.dfScoping(right, false); err != nil {
			return err
		}
	}

	if right != pdg.InvalidHandle() {
		val := e.eval.ValueOf(right)
		if val.Tag == pdg.TagNodeRef {
			rn := e.g.Node(val.Ref)
			if rn.Kind == pdg.KindArrayExpression || rn.Kind == pdg.KindObjectExpression {
				for _, elem := range rn.Children {
					for _, ident := range collectIdentifiers(e.g, left) {
						e.g.AddDataDep(elem, ident)
					}
					if body != pdg.InvalidHandle() {
						if err := e.dfScoping(body, false); err != nil {
							return err
						}
					}
				}
				return nil
			}
		}
	}
	if body != pdg.InvalidHandle() {
		return e.dfScoping(body, false)
	}
	return nil
}

// --- Other statements (if/while/switch/try/…) and branch merging -----------

func (e *Engine) statementScope(node pdg.Handle) error {
	n := e.g.Node(node)

	for _, c := range n.StatementDepChildren {
		if err := e.dfScoping(c, false); err != nil {
			return err
		}
	}

	if n.Kind == pdg.KindIfStatement || n.Kind == pdg.KindConditionalExpression {
		return e.traverseIf(node)
	}

	for _, ce := range n.ControlDepChildren {
		if ce.Label == pdg.LabelEpsilon {
			if err := e.dfScoping(ce.To, false); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) traverseIf(node pdg.Handle) error {
	n := e.g.Node(node)
	var trueTarget, falseTarget pdg.Handle = pdg.InvalidHandle(), pdg.InvalidHandle()
	for _, ce := range n.ControlDepChildren {
		if ce.Label == pdg.LabelTrue {
			trueTarget = ce.To
		}
		if ce.Label == pdg.LabelFalse {
			falseTarget = ce.To
		}
	}

	test := roleChild(e.g, node, "test")
	var testVal *pdg.ValueCell
	if test != pdg.InvalidHandle() {
		testVal = e.eval.ValueOf(test)
	}

	if testVal != nil {
		if b, ok := testVal.Prim.(bool); ok {
			if b && trueTarget != pdg.InvalidHandle() {
				return e.dfScoping(trueTarget, false)
			}
			if !b && falseTarget != pdg.InvalidHandle() {
				return e.dfScoping(falseTarget, false)
			}
			return nil
		}
	}

	base := scope.CopyScope(e.scopes.Top())

	trueFrame := scope.CopyScope(base)
	trueFrame.Kind = scope.KindBranchTrue
	e.scopes.PushFrame(trueFrame)
	if trueTarget != pdg.InvalidHandle() {
		if err := e.dfScoping(trueTarget, false); err != nil {
			e.scopes.Pop()
			return err
		}
	}
	e.scopes.Pop()

	falseFrame := scope.CopyScope(base)
	falseFrame.Kind = scope.KindBranchFalse
	e.scopes.PushFrame(falseFrame)
	if falseTarget != pdg.InvalidHandle() {
		if err := e.dfScoping(falseTarget, false); err != nil {
			e.scopes.Pop()
			return err
		}
	}
	e.scopes.Pop()

	e.mergeBranches(base, trueFrame, falseFrame)
	return nil
}

// mergeBranches implements spec.md §4.D "Branch merging".
func (e *Engine) mergeBranches(base, t, f *scope.Frame) {
	target := e.scopes.Top()
	seen := map[string]bool{}

	mergeOne := func(name string, tOK bool, tWriter pdg.Handle, fOK bool, fWriter pdg.Handle) {
		if seen[name] {
			return
		}
		seen[name] = true
		if tOK && !fOK {
			target.Declare(name, tWriter)
			return
		}
		if fOK && !tOK {
			target.Declare(name, fWriter)
			return
		}
		if _, baseOK := base.Lookup(name); baseOK {
			baseWriter, _ := base.Lookup(name)
			switch {
			case tWriter == baseWriter.Writer && fWriter != baseWriter.Writer:
				target.Declare(name, fWriter)
			case fWriter == baseWriter.Writer && tWriter != baseWriter.Writer:
				target.Declare(name, tWriter)
			case tWriter != fWriter:
				target.Declare(name, tWriter)
				target.UpdateIfBoth(name, tWriter, fWriter)
			default:
				target.Declare(name, tWriter)
			}
			return
		}
		target.Declare(name, tWriter)
		target.UpdateIfBoth(name, tWriter, fWriter)
	}

	for _, b := range tVars(t) {
		fw, fOK := f.Lookup(b.Name)
		var fWriter pdg.Handle
		if fOK {
			fWriter = fw.Writer
		}
		mergeOne(b.Name, true, b.Writer, fOK, fWriter)
	}
	for _, b := range tVars(f) {
		if seen[b.Name] {
			continue
		}
		mergeOne(b.Name, false, pdg.InvalidHandle(), true, b.Writer)
	}
}

func tVars(f *scope.Frame) []scope.Binding {
	var out []scope.Binding
	for _, name := range f.Names() {
		if b, ok := f.Lookup(name); ok {
			out = append(out, *b)
		}
	}
	return out
}

// --- Object expression / pattern --------------------------------------------

func (e *Engine) handleObjectExpression(node pdg.Handle) error {
	e.scopes.Push(scope.KindObjectExpression)
	defer e.scopes.Pop()

	for _, prop := range e.g.Node(node).Children {
		pn := e.g.Node(prop)
		if pn.Kind != pdg.KindProperty || len(pn.Children) < 2 {
			continue
		}
		// only the value is traversed; the key is not visited.
		if err := e.dfScoping(pn.Children[1], false); err != nil {
			return err
		}
	}
	return nil
}
