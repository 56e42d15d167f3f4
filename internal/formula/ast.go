package formula

import "github.com/shopspring/decimal"

// node is the closed set of expression nodes. The evaluator switches over
// every implementation; adding a node type means adding a case there.
type node interface {
	isNode()
}

type numberLit struct {
	value decimal.Decimal
}

type nameRef struct {
	name string
	pos  int
}

type unaryExpr struct {
	neg bool
	x   node
}

type binaryOp int

const (
	opAdd binaryOp = iota
	opSub
	opMul
	opDiv
	opFloorDiv
	opMod
	opPow
)

type binaryExpr struct {
	op   binaryOp
	x, y node
}

type compareOp int

const (
	cmpEq compareOp = iota
	cmpNe
	cmpLt
	cmpLe
	cmpGt
	cmpGe
)

// compareExpr holds a comparison chain: operands[0] ops[0] operands[1] ops[1] ...
type compareExpr struct {
	ops      []compareOp
	operands []node
}

type callExpr struct {
	fn   *builtin
	args []node
}

func (numberLit) isNode()   {}
func (nameRef) isNode()     {}
func (unaryExpr) isNode()   {}
func (binaryExpr) isNode()  {}
func (compareExpr) isNode() {}
func (callExpr) isNode()    {}

var binaryOps = map[string]binaryOp{
	"+":  opAdd,
	"-":  opSub,
	"*":  opMul,
	"/":  opDiv,
	"//": opFloorDiv,
	"%":  opMod,
	"**": opPow,
}

var compareOps = map[string]compareOp{
	"==": cmpEq,
	"!=": cmpNe,
	"<":  cmpLt,
	"<=": cmpLe,
	">":  cmpGt,
	">=": cmpGe,
}
