package eval

import (
	"fmt"
	"strconv"
	"strings"
)

// Input bounds. Anything past these is rejected before evaluation so that
// pathological inputs (10k nested parentheses, megabyte literals) cannot
// exhaust the stack or burn CPU.
const (
	maxExprLen   = 1024
	maxNestDepth = 64
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// node is a parsed expression restricted to the allowed grammar.
// There is deliberately no variant for name lookup, assignment, attribute
// access or anything else outside arithmetic.
type node interface{}

type literalNode struct {
	val value
}

type unaryNode struct {
	op byte // '-' or '+'
	x  node
}

type binaryNode struct {
	op   byte // '+', '-', '*', '/'
	lhs  node
	rhs  node
}

type callNode struct {
	name string
	args []node
}

type parser struct {
	input string
	pos   int
	tok   token
	depth int
}

// parse turns the input into an expression tree, rejecting any construct
// outside the allow-list grammar.
func parse(input string) (node, error) {
	p := &parser{input: input}
	if err := p.advance(); err != nil {
		return nil, err
	}
	n, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, fmt.Errorf("unexpected %q at position %d", p.tok.text, p.tok.pos)
	}
	return n, nil
}

// expr := term (('+' | '-') term)*
func (p *parser) parseExpr() (node, error) {
	if err := p.push(); err != nil {
		return nil, err
	}
	defer p.pop()

	lhs, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokPlus || p.tok.kind == tokMinus {
		op := byte('+')
		if p.tok.kind == tokMinus {
			op = '-'
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		lhs = binaryNode{op: op, lhs: lhs, rhs: rhs}
	}
	return lhs, nil
}

// term := unary (('*' | '/') unary)*
func (p *parser) parseTerm() (node, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokStar || p.tok.kind == tokSlash {
		op := byte('*')
		if p.tok.kind == tokSlash {
			op = '/'
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		lhs = binaryNode{op: op, lhs: lhs, rhs: rhs}
	}
	return lhs, nil
}

// unary := ('-' | '+') unary | primary
func (p *parser) parseUnary() (node, error) {
	if err := p.push(); err != nil {
		return nil, err
	}
	defer p.pop()

	switch p.tok.kind {
	case tokMinus:
		if err := p.advance(); err != nil {
			return nil, err
		}
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return unaryNode{op: '-', x: x}, nil
	case tokPlus:
		if err := p.advance(); err != nil {
			return nil, err
		}
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return unaryNode{op: '+', x: x}, nil
	}
	return p.parsePrimary()
}

// primary := NUMBER | IDENT '(' args ')' | '(' expr ')'
func (p *parser) parsePrimary() (node, error) {
	switch p.tok.kind {
	case tokNumber:
		v, err := parseNumber(p.tok.text)
		if err != nil {
			return nil, err
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return literalNode{val: v}, nil

	case tokIdent:
		name := p.tok.text
		advErr := p.advance()
		if advErr != nil || p.tok.kind != tokLParen {
			// Bare names (variables, constants, keywords) are not part of
			// the accepted language. Report the name itself so the model
			// sees which token was rejected.
			if _, ok := functions[name]; !ok {
				return nil, fmt.Errorf("unknown identifier %q", name)
			}
			if advErr != nil {
				return nil, advErr
			}
			return nil, fmt.Errorf("function %q must be called with parentheses", name)
		}
		if _, ok := functions[name]; !ok {
			return nil, fmt.Errorf("function %q is not allowed", name)
		}
		if err := p.advance(); err != nil { // consume '('
			return nil, err
		}
		var args []node
		if p.tok.kind != tokRParen {
			for {
				arg, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if p.tok.kind != tokComma {
					break
				}
				if err := p.advance(); err != nil {
					return nil, err
				}
			}
		}
		if p.tok.kind != tokRParen {
			return nil, fmt.Errorf("expected ')' at position %d", p.tok.pos)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return callNode{name: name, args: args}, nil

	case tokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		n, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, fmt.Errorf("expected ')' at position %d", p.tok.pos)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return n, nil

	case tokEOF:
		return nil, fmt.Errorf("unexpected end of expression")
	}
	return nil, fmt.Errorf("unexpected %q at position %d", p.tok.text, p.tok.pos)
}

func (p *parser) push() error {
	p.depth++
	if p.depth > maxNestDepth {
		return ErrTooDeep
	}
	return nil
}

func (p *parser) pop() {
	p.depth--
}

// advance scans the next token into p.tok.
func (p *parser) advance() error {
	for p.pos < len(p.input) && isSpace(p.input[p.pos]) {
		p.pos++
	}
	start := p.pos
	if p.pos >= len(p.input) {
		p.tok = token{kind: tokEOF, pos: start}
		return nil
	}

	c := p.input[p.pos]
	switch {
	case c >= '0' && c <= '9' || c == '.':
		p.pos++
		for p.pos < len(p.input) && (isDigit(p.input[p.pos]) || p.input[p.pos] == '.') {
			p.pos++
		}
		// optional exponent
		if p.pos < len(p.input) && (p.input[p.pos] == 'e' || p.input[p.pos] == 'E') {
			mark := p.pos
			p.pos++
			if p.pos < len(p.input) && (p.input[p.pos] == '+' || p.input[p.pos] == '-') {
				p.pos++
			}
			if p.pos < len(p.input) && isDigit(p.input[p.pos]) {
				for p.pos < len(p.input) && isDigit(p.input[p.pos]) {
					p.pos++
				}
			} else {
				p.pos = mark // 'e' belongs to a following identifier, not this number
			}
		}
		p.tok = token{kind: tokNumber, text: p.input[start:p.pos], pos: start}
		return nil

	case isIdentStart(c):
		p.pos++
		for p.pos < len(p.input) && isIdentPart(p.input[p.pos]) {
			p.pos++
		}
		p.tok = token{kind: tokIdent, text: p.input[start:p.pos], pos: start}
		return nil
	}

	p.pos++
	text := p.input[start:p.pos]
	switch c {
	case '+':
		p.tok = token{kind: tokPlus, text: text, pos: start}
	case '-':
		p.tok = token{kind: tokMinus, text: text, pos: start}
	case '*':
		p.tok = token{kind: tokStar, text: text, pos: start}
	case '/':
		p.tok = token{kind: tokSlash, text: text, pos: start}
	case '(':
		p.tok = token{kind: tokLParen, text: text, pos: start}
	case ')':
		p.tok = token{kind: tokRParen, text: text, pos: start}
	case ',':
		p.tok = token{kind: tokComma, text: text, pos: start}
	default:
		return fmt.Errorf("unexpected character %q at position %d", text, start)
	}
	return nil
}

// parseNumber keeps integer literals as int64 where possible so that
// integer arithmetic stays exact; everything else becomes a float.
func parseNumber(text string) (value, error) {
	if !strings.ContainsAny(text, ".eE") {
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return intValue(i), nil
		}
		// falls through: out of int64 range, treat as float
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return value{}, fmt.Errorf("invalid number %q", text)
	}
	return floatValue(f), nil
}

func isSpace(c byte) bool      { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }
func isIdentPart(c byte) bool  { return isIdentStart(c) || isDigit(c) }
