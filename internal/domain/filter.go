package domain

import (
	"fmt"
	"strings"
)

// Operator is a comparison allowed in a dropdown condition.
type Operator string

const (
	OpEq      Operator = "="
	OpNeq     Operator = "!="
	OpLt      Operator = "<"
	OpLte     Operator = "<="
	OpGt      Operator = ">"
	OpGte     Operator = ">="
	OpLike    Operator = "LIKE"
	OpNotLike Operator = "NOT LIKE"
	OpIn      Operator = "IN"
	OpNotIn   Operator = "NOT IN"
)

var validOperators = map[Operator]bool{
	OpEq: true, OpNeq: true, OpLt: true, OpLte: true, OpGt: true, OpGte: true,
	OpLike: true, OpNotLike: true, OpIn: true, OpNotIn: true,
}

// Filter restricts a dropdown listing on one column. Value holds a scalar,
// or a list for IN and NOT IN.
type Filter struct {
	Field    string   `json:"field" yaml:"field"`
	Operator Operator `json:"op" yaml:"op"`
	Value    any      `json:"value" yaml:"value"`
}

// Validate checks the operator and the column against t.
func (f Filter) Validate(t ItemType) error {
	op := Operator(strings.ToUpper(string(f.Operator)))
	if op == "" {
		op = OpEq
	}
	if !validOperators[op] {
		return fmt.Errorf("%w: operator %q", ErrInvalidCondition, f.Operator)
	}
	if !t.HasColumn(f.Field) {
		return fmt.Errorf("%w: unknown column %q on %s", ErrInvalidCondition, f.Field, t.Name)
	}
	if op == OpIn || op == OpNotIn {
		if _, ok := f.Value.([]any); !ok {
			return fmt.Errorf("%w: %s expects a list", ErrInvalidCondition, op)
		}
	}
	return nil
}

// Normalized returns the filter with an upper-cased operator, defaulting to "=".
func (f Filter) Normalized() Filter {
	op := Operator(strings.ToUpper(strings.TrimSpace(string(f.Operator))))
	if op == "" {
		op = OpEq
	}
	f.Operator = op
	return f
}
