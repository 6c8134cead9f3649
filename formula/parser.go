package formula

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/efp"
)

// ErrSyntax is returned for formulas that cannot be parsed.
var ErrSyntax = errors.New("formula: syntax error")

// Parse tokenizes a formula with efp and builds its expression tree. The
// leading "=" is optional.
func Parse(formula string) (Node, error) {
	formula = strings.TrimSpace(formula)
	if strings.TrimPrefix(formula, "=") == "" {
		return nil, fmt.Errorf("%w: empty formula", ErrSyntax)
	}
	if !strings.HasPrefix(formula, "=") {
		formula = "=" + formula
	}

	ps := efp.ExcelParser()
	var tokens []efp.Token
	for _, tok := range ps.Parse(formula) {
		switch tok.TType {
		case efp.TokenTypeWhitespace, efp.TokenTypeNoop:
			continue
		case efp.TokenTypeUnknown:
			return nil, fmt.Errorf("%w: unexpected %q", ErrSyntax, tok.TValue)
		}
		tokens = append(tokens, tok)
	}

	p := &parser{tokens: tokens}
	n, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if tok, ok := p.peek(); ok {
		return nil, fmt.Errorf("%w: unexpected %q", ErrSyntax, tok.TValue)
	}
	return n, nil
}

type parser struct {
	tokens []efp.Token
	pos    int
}

func (p *parser) peek() (efp.Token, bool) {
	if p.pos >= len(p.tokens) {
		return efp.Token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) next() efp.Token {
	tok := p.tokens[p.pos]
	p.pos++
	return tok
}

func (p *parser) is(typ, subType string) bool {
	tok, ok := p.peek()
	return ok && tok.TType == typ && (subType == "" || tok.TSubType == subType)
}

// precedence of infix operators, low to high.
func precedence(tok efp.Token) int {
	switch tok.TSubType {
	case efp.TokenSubTypeLogical:
		return 1
	case efp.TokenSubTypeConcatenation:
		return 2
	case efp.TokenSubTypeMath:
		switch tok.TValue {
		case "+", "-":
			return 3
		case "*", "/":
			return 4
		case "^":
			return 5
		}
		return 3
	case efp.TokenSubTypeIntersection, efp.TokenSubTypeUnion:
		return 6
	}
	return 1
}

func (p *parser) parseExpr(minPrec int) (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.is(efp.TokenTypeOperatorInfix, "") {
		tok, _ := p.peek()
		prec := precedence(tok)
		if prec < minPrec {
			break
		}
		p.next()
		next := prec + 1
		if tok.TValue == "^" {
			next = prec
		}
		right, err := p.parseExpr(next)
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: tok.TValue, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (Node, error) {
	if p.is(efp.TokenTypeOperatorPrefix, "") {
		op := p.next().TValue
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: op, Operand: operand}, nil
	}
	n, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.is(efp.TokenTypeOperatorPostfix, "") {
		n = &Unary{Op: p.next().TValue, Operand: n, Postfix: true}
	}
	return n, nil
}

func (p *parser) parsePrimary() (Node, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, fmt.Errorf("%w: unexpected end of formula", ErrSyntax)
	}
	switch {
	case tok.TType == efp.TokenTypeOperand:
		p.next()
		switch tok.TSubType {
		case efp.TokenSubTypeText:
			return &Literal{Kind: Text, Value: tok.TValue}, nil
		case efp.TokenSubTypeNumber:
			return &Literal{Kind: Number, Value: tok.TValue}, nil
		case efp.TokenSubTypeLogical:
			return &Literal{Kind: Logical, Value: strings.ToUpper(tok.TValue)}, nil
		case efp.TokenSubTypeError:
			return &Literal{Kind: ErrorValue, Value: tok.TValue}, nil
		}
		return &Reference{Ref: tok.TValue}, nil

	case tok.TType == efp.TokenTypeFunction && tok.TSubType == efp.TokenSubTypeStart:
		p.next()
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		if !p.is(efp.TokenTypeFunction, efp.TokenSubTypeStop) {
			return nil, fmt.Errorf("%w: unclosed call to %s", ErrSyntax, tok.TValue)
		}
		p.next()
		return &Call{Name: strings.ToUpper(tok.TValue), Args: args}, nil

	case tok.TType == efp.TokenTypeSubexpression && tok.TSubType == efp.TokenSubTypeStart:
		p.next()
		n, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if !p.is(efp.TokenTypeSubexpression, efp.TokenSubTypeStop) {
			return nil, fmt.Errorf("%w: unclosed parenthesis", ErrSyntax)
		}
		p.next()
		return n, nil
	}
	return nil, fmt.Errorf("%w: unexpected %q", ErrSyntax, tok.TValue)
}

func (p *parser) parseArgs() ([]Node, error) {
	var args []Node
	if p.is(efp.TokenTypeFunction, efp.TokenSubTypeStop) {
		return args, nil
	}
	for {
		if p.is(efp.TokenTypeArgument, "") || p.is(efp.TokenTypeFunction, efp.TokenSubTypeStop) {
			args = append(args, &Literal{Kind: Text})
		} else {
			arg, err := p.parseExpr(0)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		if !p.is(efp.TokenTypeArgument, "") {
			return args, nil
		}
		p.next()
	}
}
