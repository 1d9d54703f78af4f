package expr

import (
	"fmt"
	"strconv"

	"github.com/holiman/uint256"
)

// Parser parses expression input into an AST.
type Parser struct {
	lexer *Lexer
	cur   Token
	peek  Token
}

// NewParser creates a new parser for the given input.
func NewParser(input string) *Parser {
	p := &Parser{lexer: NewLexer(input)}
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.cur = p.peek
	p.peek = p.lexer.NextToken()
}

func (p *Parser) expect(t TokenType, what string) error {
	if p.cur.Type != t {
		return fmt.Errorf("expected %s, got %q at position %d", what, p.cur.Literal, p.cur.Pos)
	}
	return nil
}

// ParseExpr parses a single expression and requires the input to be fully
// consumed.
func ParseExpr(input string) (Node, error) {
	p := NewParser(input)
	node, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if p.cur.Type != TokenEOF {
		return nil, fmt.Errorf("unexpected %q at position %d", p.cur.Literal, p.cur.Pos)
	}
	return node, nil
}

// ParseUpdate parses a sequence of semicolon-separated assignment statements.
// An empty input yields an empty block.
func ParseUpdate(input string) (*Block, error) {
	p := NewParser(input)
	block := &Block{}
	for p.cur.Type != TokenEOF {
		target, err := p.parseExpr(precUnary)
		if err != nil {
			return nil, err
		}
		switch target.(type) {
		case *FieldExpr, *IndexExpr:
		default:
			return nil, fmt.Errorf("assignment target must be a field path, got %s", target)
		}
		if p.cur.Type != TokenOp || p.cur.Literal != "=" {
			return nil, fmt.Errorf("expected '=' after %s, got %q at position %d", target, p.cur.Literal, p.cur.Pos)
		}
		p.nextToken()
		value, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, &Assign{Target: target, Value: value})
		if p.cur.Type == TokenSemi {
			p.nextToken()
			continue
		}
		if p.cur.Type != TokenEOF {
			return nil, fmt.Errorf("expected ';' or end of input, got %q at position %d", p.cur.Literal, p.cur.Pos)
		}
	}
	return block, nil
}

// Binding powers, lowest first.
const (
	precOr  = iota + 1 // ||
	precAnd            // &&
	precEq             // == !=
	precRel            // < > <= >=
	precAdd            // + -
	precMul            // * / %
	precUnary
)

var binaryPrec = map[string]int{
	"||": precOr,
	"&&": precAnd,
	"==": precEq, "!=": precEq,
	"<": precRel, ">": precRel, "<=": precRel, ">=": precRel,
	"+": precAdd, "-": precAdd,
	"*": precMul, "/": precMul, "%": precMul,
}

func (p *Parser) parseExpr(minPrec int) (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == TokenOp {
		prec, ok := binaryPrec[p.cur.Literal]
		if !ok || prec < minPrec {
			break
		}
		op := p.cur.Literal
		p.nextToken()
		right, err := p.parseExpr(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (Node, error) {
	if p.cur.Type == TokenOp && (p.cur.Literal == "!" || p.cur.Literal == "-") {
		op := p.cur.Literal
		p.nextToken()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryOp{Op: op, Operand: operand}, nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (Node, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.cur.Type == TokenDot:
			p.nextToken()
			if err := p.expect(TokenIdent, "field name"); err != nil {
				return nil, err
			}
			node = &FieldExpr{Object: node, Field: p.cur.Literal}
			p.nextToken()
		case p.cur.Type == TokenLBracket:
			p.nextToken()
			index, err := p.parseExpr(0)
			if err != nil {
				return nil, err
			}
			if err := p.expect(TokenRBracket, "']'"); err != nil {
				return nil, err
			}
			p.nextToken()
			node = &IndexExpr{Object: node, Index: index}
		default:
			return node, nil
		}
	}
}

func (p *Parser) parsePrimary() (Node, error) {
	switch p.cur.Type {
	case TokenNumber:
		lit := p.cur.Literal
		p.nextToken()
		if n, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return &NumberLit{Value: n}, nil
		}
		// Literals beyond int64 range are kept as 256-bit integers.
		u := new(uint256.Int)
		if err := u.SetFromDecimal(lit); err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", lit, err)
		}
		return &NumberLit{Value: u}, nil

	case TokenString:
		lit := p.cur.Literal
		p.nextToken()
		return &StringLit{Value: lit}, nil

	case TokenIdent:
		name := p.cur.Literal
		switch name {
		case "true":
			p.nextToken()
			return &BoolLit{Value: true}, nil
		case "false":
			p.nextToken()
			return &BoolLit{Value: false}, nil
		}
		if p.peek.Type == TokenLParen {
			p.nextToken() // consume name
			p.nextToken() // consume (
			call := &CallExpr{Func: name}
			for p.cur.Type != TokenRParen {
				arg, err := p.parseExpr(0)
				if err != nil {
					return nil, err
				}
				call.Args = append(call.Args, arg)
				if p.cur.Type == TokenComma {
					p.nextToken()
					continue
				}
				break
			}
			if err := p.expect(TokenRParen, "')'"); err != nil {
				return nil, err
			}
			p.nextToken()
			return call, nil
		}
		p.nextToken()
		return &Identifier{Name: name}, nil

	case TokenLParen:
		p.nextToken()
		node, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenRParen, "')'"); err != nil {
			return nil, err
		}
		p.nextToken()
		return node, nil

	default:
		return nil, fmt.Errorf("unexpected %q at position %d", p.cur.Literal, p.cur.Pos)
	}
}
