package expr

import (
	"fmt"
	"strconv"

	"github.com/holiman/uint256"
)

// FieldResolver resolves obj.field accesses on model values.
type FieldResolver interface {
	ResolveField(name string) (any, error)
}

// IndexResolver resolves obj[index] accesses on model values.
type IndexResolver interface {
	ResolveIndex(i int64) (any, error)
}

// FieldAssigner accepts obj.field = value assignments on model values.
// Implementations reject constant fields.
type FieldAssigner interface {
	AssignField(name string, value any) error
}

// Eval evaluates an AST node in the given scope chain.
func Eval(node Node, scope *Scope) (any, error) {
	if node == nil {
		return nil, fmt.Errorf("expr: nil node")
	}

	switch n := node.(type) {
	case *BoolLit:
		return n.Value, nil

	case *NumberLit:
		return n.Value, nil

	case *StringLit:
		return n.Value, nil

	case *Identifier:
		return scope.Resolve(n.Name)

	case *UnaryOp:
		operand, err := Eval(n.Operand, scope)
		if err != nil {
			return nil, err
		}
		return evalUnary(n.Op, operand)

	case *BinaryOp:
		// Short-circuit evaluation for && and ||
		if n.Op == "&&" || n.Op == "||" {
			left, err := Eval(n.Left, scope)
			if err != nil {
				return nil, err
			}
			leftBool, ok := toBool(left)
			if !ok {
				return nil, fmt.Errorf("%w: left operand of %s must be boolean", ErrTypeMismatch, n.Op)
			}
			if n.Op == "&&" && !leftBool {
				return false, nil
			}
			if n.Op == "||" && leftBool {
				return true, nil
			}
			right, err := Eval(n.Right, scope)
			if err != nil {
				return nil, err
			}
			rightBool, ok := toBool(right)
			if !ok {
				return nil, fmt.Errorf("%w: right operand of %s must be boolean", ErrTypeMismatch, n.Op)
			}
			return rightBool, nil
		}

		left, err := Eval(n.Left, scope)
		if err != nil {
			return nil, err
		}
		right, err := Eval(n.Right, scope)
		if err != nil {
			return nil, err
		}
		return evalBinary(n.Op, left, right)

	case *IndexExpr:
		obj, err := Eval(n.Object, scope)
		if err != nil {
			return nil, err
		}
		index, err := Eval(n.Index, scope)
		if err != nil {
			return nil, err
		}
		return evalIndex(obj, index)

	case *FieldExpr:
		obj, err := Eval(n.Object, scope)
		if err != nil {
			return nil, err
		}
		return evalField(obj, n.Field)

	case *CallExpr:
		fv, ok := scope.Lookup(n.Func)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownFunc, n.Func)
		}
		fn, ok := fv.(Func)
		if !ok {
			return nil, fmt.Errorf("%w: %s is not callable", ErrTypeMismatch, n.Func)
		}
		args := make([]any, len(n.Args))
		for i, arg := range n.Args {
			val, err := Eval(arg, scope)
			if err != nil {
				return nil, err
			}
			args[i] = val
		}
		return fn(args...)

	case *Assign:
		return nil, evalAssign(n, scope)

	case *Block:
		for _, stmt := range n.Stmts {
			if err := evalAssign(stmt, scope); err != nil {
				return nil, err
			}
		}
		return nil, nil

	default:
		return nil, fmt.Errorf("expr: unknown node type %T", node)
	}
}

// evalAssign resolves the container of the assignment target and writes the
// evaluated value through its FieldAssigner.
func evalAssign(stmt *Assign, scope *Scope) error {
	value, err := Eval(stmt.Value, scope)
	if err != nil {
		return err
	}
	switch target := stmt.Target.(type) {
	case *FieldExpr:
		obj, err := Eval(target.Object, scope)
		if err != nil {
			return err
		}
		assigner, ok := obj.(FieldAssigner)
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotAssignable, target)
		}
		return assigner.AssignField(target.Field, value)
	default:
		return fmt.Errorf("%w: %s", ErrNotAssignable, stmt.Target)
	}
}

func evalUnary(op string, operand any) (any, error) {
	switch op {
	case "!":
		b, ok := toBool(operand)
		if !ok {
			return nil, fmt.Errorf("%w: operand of ! must be boolean", ErrTypeMismatch)
		}
		return !b, nil
	case "-":
		n, ok := toInt64(operand)
		if !ok {
			return nil, fmt.Errorf("%w: operand of unary - must be numeric", ErrTypeMismatch)
		}
		return -n, nil
	default:
		return nil, fmt.Errorf("expr: unknown unary operator %s", op)
	}
}

func evalBinary(op string, left, right any) (any, error) {
	switch op {
	case "+", "-", "*", "/", "%":
		return evalArithmetic(op, left, right)
	case ">", "<", ">=", "<=":
		return evalRelational(op, left, right)
	case "==", "!=":
		return evalEquality(op, left, right)
	default:
		return nil, fmt.Errorf("expr: unknown binary operator %s", op)
	}
}

func evalArithmetic(op string, left, right any) (any, error) {
	// Promote to U256 arithmetic if either operand is U256
	if isU256(left) || isU256(right) {
		l, lok := toU256(left)
		r, rok := toU256(right)
		if !lok || !rok {
			return nil, fmt.Errorf("%w: arithmetic operands must be numeric", ErrTypeMismatch)
		}
		return evalArithmeticU256(op, l, r)
	}

	l, lok := toInt64(left)
	r, rok := toInt64(right)
	if !lok || !rok {
		return nil, fmt.Errorf("%w: arithmetic operands must be numeric", ErrTypeMismatch)
	}

	switch op {
	case "+":
		return l + r, nil
	case "-":
		return l - r, nil
	case "*":
		return l * r, nil
	case "/":
		if r == 0 {
			return nil, fmt.Errorf("expr: division by zero")
		}
		return l / r, nil
	case "%":
		if r == 0 {
			return nil, fmt.Errorf("expr: modulo by zero")
		}
		return l % r, nil
	default:
		return nil, fmt.Errorf("expr: unknown arithmetic operator %s", op)
	}
}

func evalArithmeticU256(op string, left, right *uint256.Int) (any, error) {
	result := new(uint256.Int)
	switch op {
	case "+":
		result.Add(left, right)
		return result, nil
	case "-":
		result.Sub(left, right)
		return result, nil
	case "*":
		result.Mul(left, right)
		return result, nil
	case "/":
		if right.IsZero() {
			return nil, fmt.Errorf("expr: division by zero")
		}
		result.Div(left, right)
		return result, nil
	case "%":
		if right.IsZero() {
			return nil, fmt.Errorf("expr: modulo by zero")
		}
		result.Mod(left, right)
		return result, nil
	default:
		return nil, fmt.Errorf("expr: unknown arithmetic operator %s", op)
	}
}

func evalRelational(op string, left, right any) (any, error) {
	if isU256(left) || isU256(right) {
		l, lok := toU256(left)
		r, rok := toU256(right)
		if !lok || !rok {
			return nil, fmt.Errorf("%w: relational operands must be numeric", ErrTypeMismatch)
		}
		cmp := l.Cmp(r)
		switch op {
		case ">":
			return cmp > 0, nil
		case "<":
			return cmp < 0, nil
		case ">=":
			return cmp >= 0, nil
		case "<=":
			return cmp <= 0, nil
		}
	}

	l, lok := toInt64(left)
	r, rok := toInt64(right)
	if !lok || !rok {
		return nil, fmt.Errorf("%w: relational operands must be numeric", ErrTypeMismatch)
	}

	switch op {
	case ">":
		return l > r, nil
	case "<":
		return l < r, nil
	case ">=":
		return l >= r, nil
	case "<=":
		return l <= r, nil
	default:
		return nil, fmt.Errorf("expr: unknown relational operator %s", op)
	}
}

func evalEquality(op string, left, right any) (any, error) {
	equal := compareValues(left, right)
	if op == "==" {
		return equal, nil
	}
	return !equal, nil
}

func compareValues(left, right any) bool {
	if isU256(left) || isU256(right) {
		l, lok := toU256(left)
		r, rok := toU256(right)
		if lok && rok {
			return l.Cmp(r) == 0
		}
	}

	l, lok := toInt64(left)
	r, rok := toInt64(right)
	if lok && rok {
		return l == r
	}

	lb, lok := toBool(left)
	rb, rok := toBool(right)
	if lok && rok {
		return lb == rb
	}

	ls, lok := toString(left)
	rs, rok := toString(right)
	if lok && rok {
		return ls == rs
	}

	return left == right
}

func evalIndex(obj, index any) (any, error) {
	i, iok := toInt64(index)

	switch o := obj.(type) {
	case IndexResolver:
		if !iok {
			return nil, fmt.Errorf("%w: index must be numeric", ErrTypeMismatch)
		}
		return o.ResolveIndex(i)

	case map[string]any:
		key, ok := toString(index)
		if !ok {
			return nil, fmt.Errorf("%w: map index must be string", ErrTypeMismatch)
		}
		val, exists := o[key]
		if !exists {
			return nil, fmt.Errorf("expr: missing key %q", key)
		}
		return val, nil

	case []any:
		if !iok {
			return nil, fmt.Errorf("%w: index must be numeric", ErrTypeMismatch)
		}
		if i < 0 || i >= int64(len(o)) {
			return nil, fmt.Errorf("expr: index %d out of range [0, %d)", i, len(o))
		}
		return o[i], nil

	default:
		return nil, fmt.Errorf("expr: cannot index type %T", obj)
	}
}

func evalField(obj any, field string) (any, error) {
	switch o := obj.(type) {
	case FieldResolver:
		return o.ResolveField(field)

	case map[string]any:
		val, exists := o[field]
		if !exists {
			return nil, fmt.Errorf("expr: field not found: %s", field)
		}
		return val, nil

	default:
		return nil, fmt.Errorf("expr: cannot access field %s on type %T", field, obj)
	}
}

func toBool(v any) (bool, bool) {
	switch val := v.(type) {
	case bool:
		return val, true
	default:
		return false, false
	}
}

func toInt64(v any) (int64, bool) {
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	case int32:
		return int64(val), true
	case float64:
		return int64(val), true
	case *uint256.Int:
		if val.IsUint64() {
			return int64(val.Uint64()), true
		}
		return 0, false
	case string:
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func toU256(v any) (*uint256.Int, bool) {
	switch val := v.(type) {
	case *uint256.Int:
		return val, true
	case int64:
		if val < 0 {
			return nil, false
		}
		return uint256.NewInt(uint64(val)), true
	case int:
		if val < 0 {
			return nil, false
		}
		return uint256.NewInt(uint64(val)), true
	case uint64:
		return uint256.NewInt(val), true
	case string:
		result := new(uint256.Int)
		if err := result.SetFromDecimal(val); err != nil {
			return nil, false
		}
		return result, true
	default:
		return nil, false
	}
}

func isU256(v any) bool {
	_, ok := v.(*uint256.Int)
	return ok
}

func toString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	default:
		return "", false
	}
}
