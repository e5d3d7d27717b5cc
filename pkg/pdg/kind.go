package pdg

// Kind tags every node with the taxonomy spec.md §3.1 names. Rather than a
// class hierarchy, capability data (ValueCell, FunctionMeta) is
// attached as optional fields on Node and is static per Kind.
type Kind int

const (
	KindProgram Kind = iota

	// statement kinds
	KindBlock
	KindExpressionStatement
	KindVariableDeclaration
	KindVariableDeclarator
	KindReturnStatement
	KindIfStatement
	KindSwitchStatement
	KindSwitchCase
	KindTryStatement
	KindForStatement
	KindForInStatement
	KindForOfStatement
	KindWhileStatement
	KindDoWhileStatement
	KindBreakStatement
	KindContinueStatement
	KindThrowStatement
	KindLabeledStatement
	KindDebuggerStatement
	KindCatchClause
	KindWithStatement
	KindFunctionDeclaration
	KindClassDeclaration

	// expression kinds
	KindAssignmentExpression
	KindArrayExpression
	KindArrowFunctionExpression
	KindAwaitExpression
	KindBinaryExpression
	KindCallExpression
	KindClassExpression
	KindConditionalExpression
	KindFunctionExpression
	KindLogicalExpression
	KindMemberExpression
	KindNewExpression
	KindObjectExpression
	KindObjectPattern
	KindSequenceExpression
	KindTaggedTemplateExpression
	KindThisExpression
	KindUnaryExpression
	KindUpdateExpression
	KindYieldExpression

	KindIdentifier
	KindLiteral
	KindProperty
	KindTemplateLiteral
	KindTemplateElement
	KindComment

	// placeholder for elided array/destructuring slots ("[, a] = arr")
	KindNone
)

var conditionalKinds = map[Kind]bool{
	KindIfStatement:          true,
	KindConditionalExpression: true,
	KindSwitchStatement:      true,
	KindSwitchCase:           true,
	KindTryStatement:         true,
}

// IsConditional reports whether a node of this kind carries explicit
// true/false control-dependence branches (spec.md §3.1).
func IsConditional(k Kind) bool { return conditionalKinds[k] }

var valueBearingKinds = map[Kind]bool{
	KindLiteral:                  true,
	KindIdentifier:               true,
	KindArrayExpression:          true,
	KindObjectExpression:         true,
	KindCallExpression:           true,
	KindNewExpression:            true,
	KindTaggedTemplateExpression: true,
	KindAssignmentExpression:     true,
	KindReturnStatement:          true,
	KindConditionalExpression:    true,
	KindUnaryExpression:          true,
	KindBinaryExpression:         true,
	KindLogicalExpression:        true,
	KindUpdateExpression:         true,
	KindMemberExpression:         true,
	KindTemplateLiteral:          true,
	KindThisExpression:           true,
	KindFunctionExpression:       true,
	KindArrowFunctionExpression:  true,
}

// IsValueBearing reports whether a node of this kind owns a symbolic
// value cell (spec.md §3.1).
func IsValueBearing(k Kind) bool { return valueBearingKinds[k] }

var functionKinds = map[Kind]bool{
	KindFunctionDeclaration:     true,
	KindFunctionExpression:      true,
	KindArrowFunctionExpression: true,
}

// IsFunction reports whether a node of this kind owns FunctionMeta.
func IsFunction(k Kind) bool { return functionKinds[k] }

var statementKinds = map[Kind]bool{
	KindBlock: true, KindExpressionStatement: true, KindVariableDeclaration: true,
	KindReturnStatement: true, KindIfStatement: true, KindSwitchStatement: true,
	KindTryStatement: true, KindForStatement: true, KindForInStatement: true,
	KindForOfStatement: true, KindWhileStatement: true, KindDoWhileStatement: true,
	KindBreakStatement: true, KindContinueStatement: true, KindThrowStatement: true,
	KindLabeledStatement: true, KindDebuggerStatement: true, KindCatchClause: true,
	KindWithStatement: true, KindFunctionDeclaration: true, KindClassDeclaration: true,
}

// IsStatement reports whether a node of this kind is a statement for the
// purposes of statement-dep/control-dep attachment (spec.md §3.1/§4.B).
func IsStatement(k Kind) bool { return statementKinds[k] }
