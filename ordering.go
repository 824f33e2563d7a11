package gridview

import (
	"fmt"
	"math"
	"strings"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

// Direction defines the sort direction of an attribute or field.
type Direction string

const (
	DirectionASC  Direction = "ASC"
	DirectionDESC Direction = "DESC"
)

func (o Direction) Valid() bool {
	return o == DirectionASC || o == DirectionDESC
}

// Flip returns the opposite direction.
func (o Direction) Flip() Direction {
	return lo.Ternary(o == DirectionDESC, DirectionASC, DirectionDESC)
}

// Marker returns the lower-case form used as a CSS class on sort links.
func (o Direction) Marker() string {
	return strings.ToLower(string(o))
}

// ParseDirection maps "asc"/"desc" in any case to a Direction.
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToUpper(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("direction '%s': %w", s, ErrInvalidArgument)
	}

	return d, nil
}

type (
	// Orderings is an ordered list of underlying field orderings. The order
	// of the list is the order of the ORDER BY clause.
	Orderings []OrderBy
	OrderBy   struct {
		Column    string
		Direction Direction
	}
)

var _availableColumnNameSymbols = append([]rune("_.'`\""), lo.AlphanumericCharset...)

func (o OrderBy) validate() error {
	if !o.Direction.Valid() {
		return fmt.Errorf("invalid ordering direction '%s': %w", o.Direction, ErrInvalidArgument)
	}

	// Guard against SQL injection by restricting allowed characters in column names.
	if o.Column == "" || !lo.Every(_availableColumnNameSymbols, []rune(o.Column)) {
		return fmt.Errorf("ordering column name contains forbidden symbols '%s': %w", o.Column, ErrInvalidArgument)
	}

	return nil
}

// ToSQLSlice converts Orderings to a slice of strings in the form
// "<order_column> <order_direction>".
//
// Example: for Orderings: [{"a", "ASC"}, {"b", "DESC"}] returns ["a ASC", "b DESC"].
func (o Orderings) ToSQLSlice() []string {
	ret := make([]string, 0, len(o))
	for _, ordering := range o {
		ret = append(ret, fmt.Sprintf("%s %s", ordering.Column, ordering.Direction))
	}

	return ret
}

// ToSQL converts Orderings to a single string suitable for embedding into an
// ORDER BY clause. Example: for [{"a", "ASC"}, {"b", "DESC"}] returns
// "a ASC, b DESC".
func (o Orderings) ToSQL() string {
	return strings.Join(o.ToSQLSlice(), ", ")
}

// Apply applies the ordering to a gorm query.
func (o Orderings) Apply(db *gorm.DB) *gorm.DB {
	if len(o) == 0 {
		return db
	}

	return db.Order(o.ToSQL())
}

// set replaces the direction of an existing column or appends a new one,
// keeping the position of the first occurrence.
func (o Orderings) set(column string, direction Direction) Orderings {
	idx := lo.IndexOf(o.columns(), column)
	if idx != -1 {
		o[idx].Direction = direction
		return o
	}

	return append(o, OrderBy{Column: column, Direction: direction})
}

func (o Orderings) columns() []string {
	return lo.Map(o, func(item OrderBy, _ int) string {
		return item.Column
	})
}

// validate checks every ordering. An empty list is valid: the query is left
// unordered.
func (o Orderings) validate() error {
	for _, ordering := range o {
		if err := ordering.validate(); err != nil {
			return err
		}
	}

	return nil
}

func closestAlias(input string, dataSet []string) string {
	minDist := math.MaxInt
	closest := ""

	for _, dataSetAlias := range dataSet {
		dist := levenshtein([]rune(dataSetAlias), []rune(input))
		if dist < minDist {
			minDist = dist
			closest = dataSetAlias
		}
	}

	return closest
}
