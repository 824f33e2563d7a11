package gridview

import (
	"fmt"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm/clause"
)

type (
	// Condition is a filter of the form "Column Operator Value".
	Condition struct {
		Column   string
		Operator Operator
		Value    any
	}

	// Conditions are joined by AND.
	Conditions []Condition
)

func (c Condition) validate() error {
	if !c.Operator.Valid() {
		return fmt.Errorf("invalid filter operator '%s': %w", c.Operator, ErrInvalidArgument)
	}

	return OrderBy{Column: c.Column, Direction: DirectionASC}.validate()
}

// toGORMExpression converts a condition into "Column Operator ?". The column
// is passed as a clause.Column so the dialect quotes it.
//
// Example:
//
//	Condition{Column: "User.name", Operator: "LIKE", Value: "%jo%"}
//
// Result (postgres):
//
//	"User"."name" LIKE $1
func (c Condition) toGORMExpression() clause.Expression {
	return clause.Expr{
		SQL:  fmt.Sprintf("? %s ?", c.Operator),
		Vars: []any{clause.Column{Name: c.Column}, parseAnyValue(c.Value)},
	}
}

func parseAnyValue(v any) any {
	// Try parsing a value as time.Time. If it succeeds, return time.Time.
	// Otherwise return the original value.
	fnParseBytesToTimeOrValue := func(vBytes []byte) any {
		dst := time.Time{}
		err := dst.UnmarshalText(vBytes)
		if err == nil {
			return dst
		}

		return v
	}

	switch vt := v.(type) {
	case string:
		return fnParseBytesToTimeOrValue([]byte(vt))
	case []byte:
		return fnParseBytesToTimeOrValue(vt)
	default:
		return v
	}
}

func (c Conditions) validate() error {
	for _, condition := range c {
		if err := condition.validate(); err != nil {
			return err
		}
	}

	return nil
}

// toGORMExpression converts conditions (K1, K2, K3) into "K1 AND K2 AND K3".
// Empty conditions yield nil.
func (c Conditions) toGORMExpression() clause.Expression {
	expressions := lo.Map(c, func(condition Condition, _ int) clause.Expression {
		return condition.toGORMExpression()
	})

	switch len(expressions) {
	case 0:
		return nil
	case 1:
		return expressions[0]
	}

	return clause.And(expressions...)
}
