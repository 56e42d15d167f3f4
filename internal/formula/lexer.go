package formula

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	maxFormulaLen = 1024
	maxNumberLen  = 40
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokOp
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
	pos  int
	num  decimal.Decimal
}

// Words that would introduce statements, control flow or boolean logic in a
// general-purpose language. They are rejected outright rather than treated as names.
var reservedWords = map[string]bool{
	"and": true, "as": true, "assert": true, "async": true, "await": true,
	"break": true, "class": true, "continue": true, "def": true, "del": true,
	"elif": true, "else": true, "except": true, "exec": true, "finally": true,
	"for": true, "from": true, "global": true, "if": true, "import": true,
	"in": true, "is": true, "lambda": true, "nonlocal": true, "not": true,
	"or": true, "pass": true, "raise": true, "return": true, "try": true,
	"while": true, "with": true, "yield": true, "True": true, "False": true,
	"None": true,
}

var twoCharOps = []string{"**", "//", "==", "!=", "<=", ">="}

// tokenize splits src into tokens. Constructs that cannot appear in an
// arithmetic expression are reported as ErrUnsafe here, before any parsing.
func tokenize(src string) ([]token, error) {
	if len(src) > maxFormulaLen {
		return nil, unsafeErr(src, -1, "formula longer than %d bytes", maxFormulaLen)
	}

	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case isDigit(c) || (c == '.' && i+1 < len(src) && isDigit(src[i+1])):
			tok, next, err := scanNumber(src, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			i = next
		case isIdentStart(c):
			start := i
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			word := src[start:i]
			if reservedWords[word] {
				return nil, unsafeErr(src, start, "keyword %q is not allowed", word)
			}
			if strings.HasPrefix(word, "__") {
				return nil, unsafeErr(src, start, "dunder name %q is not allowed", word)
			}
			toks = append(toks, token{kind: tokIdent, text: word, pos: start})
		case c == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		case c == ',':
			toks = append(toks, token{kind: tokComma, text: ",", pos: i})
			i++
		case c == '.':
			return nil, unsafeErr(src, i, "attribute access is not allowed")
		case c == '[' || c == ']':
			return nil, unsafeErr(src, i, "subscripting is not allowed")
		case c == '"' || c == '\'':
			return nil, unsafeErr(src, i, "string literals are not allowed")
		case c == '{' || c == '}':
			return nil, unsafeErr(src, i, "collection literals are not allowed")
		case c == ';' || c == ':':
			return nil, unsafeErr(src, i, "statements are not allowed")
		case c == '&' || c == '|' || c == '^' || c == '~' || c == '@':
			return nil, unsafeErr(src, i, "operator %q is not allowed", string(c))
		default:
			op, ok := scanOperator(src, i)
			if !ok {
				if c == '=' {
					return nil, unsafeErr(src, i, "assignment is not allowed")
				}
				r, _ := utf8.DecodeRuneInString(src[i:])
				return nil, syntaxErr(src, i, "unexpected character %q", r)
			}
			if op == "<<" || op == ">>" {
				return nil, unsafeErr(src, i, "operator %q is not allowed", op)
			}
			toks = append(toks, token{kind: tokOp, text: op, pos: i})
			i += len(op)
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(src)})
	return toks, nil
}

func scanOperator(src string, i int) (string, bool) {
	if i+1 < len(src) {
		pair := src[i : i+2]
		for _, op := range twoCharOps {
			if pair == op {
				return op, true
			}
		}
		if pair == "<<" || pair == ">>" {
			return pair, true
		}
	}
	switch src[i] {
	case '+', '-', '*', '/', '%', '<', '>':
		return src[i : i+1], true
	}
	return "", false
}

func scanNumber(src string, start int) (token, int, error) {
	i := start
	for i < len(src) && isDigit(src[i]) {
		i++
	}
	if i < len(src) && src[i] == '.' {
		i++
		for i < len(src) && isDigit(src[i]) {
			i++
		}
	}
	if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
		j := i + 1
		if j < len(src) && (src[j] == '+' || src[j] == '-') {
			j++
		}
		if j < len(src) && isDigit(src[j]) {
			for j < len(src) && isDigit(src[j]) {
				j++
			}
			i = j
		}
	}
	if i < len(src) && isIdentStart(src[i]) {
		return token{}, 0, syntaxErr(src, i, "invalid numeric literal")
	}
	if i < len(src) && src[i] == '.' {
		return token{}, 0, unsafeErr(src, i, "attribute access is not allowed")
	}

	text := src[start:i]
	if len(text) > maxNumberLen {
		return token{}, 0, unsafeErr(src, start, "numeric literal longer than %d characters", maxNumberLen)
	}
	norm := text
	if strings.HasPrefix(norm, ".") {
		norm = "0" + norm
	}
	norm = strings.Replace(norm, ".e", ".0e", 1)
	norm = strings.Replace(norm, ".E", ".0E", 1)
	if strings.HasSuffix(norm, ".") {
		norm += "0"
	}
	d, err := decimal.NewFromString(norm)
	if err != nil {
		return token{}, 0, syntaxErr(src, start, "invalid numeric literal %q", text)
	}
	if d.Abs().GreaterThan(maxMagnitude) || d.Exponent() < -maxNumberLen {
		return token{}, 0, unsafeErr(src, start, "numeric literal %q out of range", text)
	}
	return token{kind: tokNumber, text: text, pos: start, num: d}, i, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }
