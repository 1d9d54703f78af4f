// Package expr implements the expression language used by transition guards,
// costs, update procedures, and state assertions. Expressions are compiled to
// an AST once and evaluated against a chain of scopes; evaluation never
// touches host-language lexical closures.
package expr

import (
	"fmt"
)

// TokenType represents the type of a lexer token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIdent    // node, system, count
	TokenNumber   // 123, -456, 10000000000000000000000000
	TokenString   // "..."
	TokenOp       // + - * / % ! && || == != < > <= >= =
	TokenLParen   // (
	TokenRParen   // )
	TokenLBracket // [
	TokenRBracket // ]
	TokenDot      // .
	TokenComma    // ,
	TokenSemi     // ;
)

// Token represents a single token from the lexer.
type Token struct {
	Type    TokenType
	Literal string
	Pos     int
}

func (t Token) String() string {
	return fmt.Sprintf("Token{%v, %q, %d}", t.Type, t.Literal, t.Pos)
}

// Lexer tokenizes expression input.
type Lexer struct {
	input   string
	pos     int
	readPos int
	ch      byte
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
}

func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// NextToken returns the next token from the input.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	pos := l.pos

	switch l.ch {
	case 0:
		return Token{Type: TokenEOF, Literal: "", Pos: pos}
	case '(':
		l.readChar()
		return Token{Type: TokenLParen, Literal: "(", Pos: pos}
	case ')':
		l.readChar()
		return Token{Type: TokenRParen, Literal: ")", Pos: pos}
	case '[':
		l.readChar()
		return Token{Type: TokenLBracket, Literal: "[", Pos: pos}
	case ']':
		l.readChar()
		return Token{Type: TokenRBracket, Literal: "]", Pos: pos}
	case '.':
		l.readChar()
		return Token{Type: TokenDot, Literal: ".", Pos: pos}
	case ',':
		l.readChar()
		return Token{Type: TokenComma, Literal: ",", Pos: pos}
	case ';':
		l.readChar()
		return Token{Type: TokenSemi, Literal: ";", Pos: pos}
	case '"':
		l.readChar() // consume opening quote
		lit := l.readString()
		return Token{Type: TokenString, Literal: lit, Pos: pos}
	case '&':
		if l.peekChar() == '&' {
			l.readChar()
			l.readChar()
			return Token{Type: TokenOp, Literal: "&&", Pos: pos}
		}
	case '|':
		if l.peekChar() == '|' {
			l.readChar()
			l.readChar()
			return Token{Type: TokenOp, Literal: "||", Pos: pos}
		}
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return Token{Type: TokenOp, Literal: "==", Pos: pos}
		}
		l.readChar()
		return Token{Type: TokenOp, Literal: "=", Pos: pos}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return Token{Type: TokenOp, Literal: "!=", Pos: pos}
		}
		l.readChar()
		return Token{Type: TokenOp, Literal: "!", Pos: pos}
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return Token{Type: TokenOp, Literal: "<=", Pos: pos}
		}
		l.readChar()
		return Token{Type: TokenOp, Literal: "<", Pos: pos}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return Token{Type: TokenOp, Literal: ">=", Pos: pos}
		}
		l.readChar()
		return Token{Type: TokenOp, Literal: ">", Pos: pos}
	case '+', '-', '*', '/', '%':
		op := string(l.ch)
		l.readChar()
		return Token{Type: TokenOp, Literal: op, Pos: pos}
	}

	if isDigit(l.ch) {
		return Token{Type: TokenNumber, Literal: l.readNumber(), Pos: pos}
	}
	if isIdentStart(l.ch) {
		return Token{Type: TokenIdent, Literal: l.readIdent(), Pos: pos}
	}

	// Unknown character: emit it as an operator token so the parser can
	// report a precise error instead of silently skipping input.
	op := string(l.ch)
	l.readChar()
	return Token{Type: TokenOp, Literal: op, Pos: pos}
}

func (l *Lexer) readNumber() string {
	start := l.pos
	for isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

func (l *Lexer) readIdent() string {
	start := l.pos
	for isIdentStart(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

func (l *Lexer) readString() string {
	start := l.pos
	for l.ch != '"' && l.ch != 0 {
		l.readChar()
	}
	lit := l.input[start:l.pos]
	if l.ch == '"' {
		l.readChar() // consume closing quote
	}
	return lit
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
