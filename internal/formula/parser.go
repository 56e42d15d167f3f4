package formula

import (
	"sort"

	"github.com/shopspring/decimal"
)

const maxDepth = 64

// Expr is a parsed formula. It is immutable and safe for concurrent use.
type Expr struct {
	src  string
	root node
	// names holds every variable or constant referenced, sorted and deduplicated.
	names []string
}

// Source returns the formula text the expression was parsed from.
func (e *Expr) Source() string { return e.src }

// Names returns the variable and constant names referenced by the expression.
func (e *Expr) Names() []string {
	out := make([]string, len(e.names))
	copy(out, e.names)
	return out
}

// Parse parses src into an expression. Anything outside the arithmetic grammar
// fails here with ErrSyntax or ErrUnsafe; nothing is evaluated.
func Parse(src string) (*Expr, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	if len(toks) == 1 {
		return nil, syntaxErr(src, 0, "empty formula")
	}

	p := &parser{src: src, toks: toks, seen: map[string]bool{}}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		if tok.kind == tokLParen {
			return nil, unsafeErr(src, tok.pos, "call of a non-function value is not allowed")
		}
		return nil, syntaxErr(src, tok.pos, "unexpected %q", tok.text)
	}

	names := make([]string, 0, len(p.seen))
	for n := range p.seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return &Expr{src: src, root: root, names: names}, nil
}

type parser struct {
	src   string
	toks  []token
	pos   int
	depth int
	seen  map[string]bool
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) enter(pos int) error {
	p.depth++
	if p.depth > maxDepth {
		return unsafeErr(p.src, pos, "expression nested deeper than %d levels", maxDepth)
	}
	return nil
}

func (p *parser) leave() { p.depth-- }

// expr := sum (cmpop sum)*
func (p *parser) parseExpr() (node, error) {
	first, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	var ops []compareOp
	operands := []node{first}
	for {
		tok := p.peek()
		op, ok := compareOps[tok.text]
		if tok.kind != tokOp || !ok {
			break
		}
		p.next()
		rhs, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
		operands = append(operands, rhs)
	}
	if len(ops) == 0 {
		return first, nil
	}
	return compareExpr{ops: ops, operands: operands}, nil
}

// sum := term (('+'|'-') term)*
func (p *parser) parseSum() (node, error) {
	x, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.kind != tokOp || (tok.text != "+" && tok.text != "-") {
			return x, nil
		}
		p.next()
		y, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		x = binaryExpr{op: binaryOps[tok.text], x: x, y: y}
	}
}

// term := factor (('*'|'/'|'//'|'%') factor)*
func (p *parser) parseTerm() (node, error) {
	x, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.kind != tokOp {
			return x, nil
		}
		switch tok.text {
		case "*", "/", "//", "%":
		default:
			return x, nil
		}
		p.next()
		y, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		x = binaryExpr{op: binaryOps[tok.text], x: x, y: y}
	}
}

// factor := ('+'|'-') factor | power
func (p *parser) parseFactor() (node, error) {
	tok := p.peek()
	if tok.kind == tokOp && (tok.text == "+" || tok.text == "-") {
		if err := p.enter(tok.pos); err != nil {
			return nil, err
		}
		defer p.leave()
		p.next()
		x, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return unaryExpr{neg: tok.text == "-", x: x}, nil
	}
	return p.parsePower()
}

// power := primary ['**' factor]
func (p *parser) parsePower() (node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	tok := p.peek()
	if tok.kind != tokOp || tok.text != "**" {
		return base, nil
	}
	if err := p.enter(tok.pos); err != nil {
		return nil, err
	}
	defer p.leave()
	p.next()
	exp, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	return binaryExpr{op: opPow, x: base, y: exp}, nil
}

// primary := NUMBER | NAME | NAME '(' args ')' | '(' expr ')'
func (p *parser) parsePrimary() (node, error) {
	tok := p.next()
	switch tok.kind {
	case tokNumber:
		return numberLit{value: tok.num}, nil
	case tokIdent:
		if p.peek().kind == tokLParen {
			return p.parseCall(tok)
		}
		if _, isFunc := builtins[tok.text]; isFunc {
			return nil, unsafeErr(p.src, tok.pos, "function %q used as a value", tok.text)
		}
		p.seen[tok.text] = true
		return nameRef{name: tok.text, pos: tok.pos}, nil
	case tokLParen:
		if err := p.enter(tok.pos); err != nil {
			return nil, err
		}
		defer p.leave()
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, syntaxErr(p.src, closing.pos, "expected \")\"")
		}
		return x, nil
	case tokEOF:
		return nil, syntaxErr(p.src, tok.pos, "unexpected end of formula")
	default:
		return nil, syntaxErr(p.src, tok.pos, "unexpected %q", tok.text)
	}
}

func (p *parser) parseCall(name token) (node, error) {
	fn, ok := builtins[name.text]
	if !ok {
		return nil, unsafeErr(p.src, name.pos, "call to %q is not allowed", name.text)
	}
	if err := p.enter(name.pos); err != nil {
		return nil, err
	}
	defer p.leave()

	p.next() // (
	var args []node
	if p.peek().kind != tokRParen {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.peek().kind != tokComma {
				break
			}
			p.next()
		}
	}
	if closing := p.next(); closing.kind != tokRParen {
		return nil, syntaxErr(p.src, closing.pos, "expected \")\" to close call to %s", name.text)
	}
	if len(args) < fn.minArgs || (fn.maxArgs >= 0 && len(args) > fn.maxArgs) {
		return nil, syntaxErr(p.src, name.pos, "%s() takes %s, got %d", name.text, fn.arity(), len(args))
	}
	return callExpr{fn: fn, args: args}, nil
}

// constants available to every formula unless a binding of the same name shadows them.
var constants = map[string]decimal.Decimal{
	"pi": decimal.RequireFromString("3.141592653589793"),
	"e":  decimal.RequireFromString("2.718281828459045"),
}
