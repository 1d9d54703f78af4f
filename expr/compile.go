package expr

import (
	"fmt"
)

// Evaluable is anything the firing engine can evaluate in a scope chain:
// a compiled expression, a compiled update procedure, or a native Go
// callback. The engine depends only on this contract.
type Evaluable interface {
	Eval(scope *Scope) (any, error)
	String() string
}

// Compiled is a pre-parsed expression or update procedure for repeated
// evaluation.
type Compiled struct {
	src string
	ast Node
}

// Compile parses an expression into a compiled form.
func Compile(src string) (*Compiled, error) {
	if src == "" {
		return nil, ErrEmptyExpr
	}
	ast, err := ParseExpr(src)
	if err != nil {
		return nil, fmt.Errorf("expr: parse error: %w", err)
	}
	return &Compiled{src: src, ast: ast}, nil
}

// CompileUpdate parses an update procedure (a sequence of assignments) into
// a compiled form. An empty source compiles to an empty procedure.
func CompileUpdate(src string) (*Compiled, error) {
	ast, err := ParseUpdate(src)
	if err != nil {
		return nil, fmt.Errorf("expr: parse error: %w", err)
	}
	return &Compiled{src: src, ast: ast}, nil
}

// Eval evaluates the compiled code in the given scope.
func (c *Compiled) Eval(scope *Scope) (any, error) {
	return Eval(c.ast, scope)
}

// String returns the original source.
func (c *Compiled) String() string {
	return c.src
}

// AST returns the parsed abstract syntax tree.
func (c *Compiled) AST() Node {
	return c.ast
}

// Native wraps a Go function as an Evaluable, for callers that build models
// programmatically instead of compiling source strings.
type Native struct {
	Name string
	Fn   func(scope *Scope) (any, error)
}

func (n *Native) Eval(scope *Scope) (any, error) {
	return n.Fn(scope)
}

func (n *Native) String() string {
	if n.Name != "" {
		return n.Name
	}
	return "<native>"
}

// EvalBool evaluates e and requires a boolean result.
func EvalBool(e Evaluable, scope *Scope) (bool, error) {
	v, err := e.Eval(scope)
	if err != nil {
		return false, err
	}
	b, ok := toBool(v)
	if !ok {
		return false, fmt.Errorf("%w: %s must evaluate to boolean, got %T", ErrTypeMismatch, e, v)
	}
	return b, nil
}
