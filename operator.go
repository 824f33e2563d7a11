package gridview

import "fmt"

// Operator is a comparison operator of a filter condition.
type Operator string

const (
	OperatorEq   Operator = "="
	OperatorLike Operator = "LIKE"
	OperatorGT   Operator = ">"
	OperatorGTE  Operator = ">="
	OperatorLT   Operator = "<"
	OperatorLTE  Operator = "<="
)

func (o Operator) Valid() bool {
	switch o {
	case OperatorEq, OperatorLike, OperatorGT, OperatorGTE, OperatorLT, OperatorLTE:
		return true
	}

	return false
}

// ParseOperator maps an operator name from configuration to an Operator.
func ParseOperator(s string) (Operator, error) {
	switch s {
	case "eq", "=":
		return OperatorEq, nil
	case "like", "LIKE":
		return OperatorLike, nil
	case "gt", ">":
		return OperatorGT, nil
	case "gte", ">=":
		return OperatorGTE, nil
	case "lt", "<":
		return OperatorLT, nil
	case "lte", "<=":
		return OperatorLTE, nil
	}

	return "", fmt.Errorf("operator '%s': %w", s, ErrInvalidArgument)
}
