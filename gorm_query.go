package gridview

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// GormQuery is a Query over the gorm model T.
type GormQuery[T any] struct {
	root *gorm.DB
	db   *gorm.DB

	limit       int
	offset      int
	orders      Orderings
	scopedCount bool
}

var (
	_ Query[any] = (*GormQuery[any])(nil)
	_ Filterable = (*GormQuery[any])(nil)
	_ Aliased    = (*GormQuery[any])(nil)
)

func NewGormQuery[T any](db *gorm.DB) *GormQuery[T] {
	return &GormQuery[T]{
		root:  db,
		db:    db.Model(new(T)),
		limit: NoLimit,
	}
}

// Where narrows the data set, like gorm.DB.Where.
func (q *GormQuery[T]) Where(query any, args ...any) *GormQuery[T] {
	q.db = q.db.Where(query, args...)
	return q
}

// Scopes applies gorm scopes to the data set.
func (q *GormQuery[T]) Scopes(funcs ...func(*gorm.DB) *gorm.DB) *GormQuery[T] {
	q.db = q.db.Scopes(funcs...)
	return q
}

// WithScopedCount makes Count honour Where, Scopes and filters. By default
// Count returns the size of the whole table.
func (q *GormQuery[T]) WithScopedCount() *GormQuery[T] {
	q.scopedCount = true
	return q
}

// SetAlias selects from the table of T under alias.
func (q *GormQuery[T]) SetAlias(alias string) error {
	table, err := NewGormSchema(q.root).TableName(new(T))
	if err != nil {
		return err
	}

	if alias == "" || alias == table {
		return nil
	}

	q.db = q.db.Table(fmt.Sprintf("%s AS %s", q.db.Statement.Quote(table), q.db.Statement.Quote(alias)))

	return nil
}

func (q *GormQuery[T]) ApplyFilters(conditions Conditions) error {
	expr := conditions.toGORMExpression()
	if expr == nil {
		return nil
	}

	q.db = q.db.Where(expr)

	return nil
}

func (q *GormQuery[T]) SetMaxResults(n int) {
	q.limit = n
}

func (q *GormQuery[T]) SetFirstResult(n int) {
	q.offset = n
}

// AddOrderBy quotes field with the dialect of the connection.
func (q *GormQuery[T]) AddOrderBy(field string, direction Direction) {
	q.orders = append(q.orders, OrderBy{Column: q.db.Statement.Quote(clause.Column{Name: field}), Direction: direction})
}

func (q *GormQuery[T]) Count(ctx context.Context) (int64, error) {
	var (
		tx    *gorm.DB
		total int64
	)

	if q.scopedCount {
		tx = q.db.Session(&gorm.Session{Context: ctx})
	} else {
		tx = q.root.Session(&gorm.Session{NewDB: true, Context: ctx}).Model(new(T))
	}

	if err := tx.Count(&total).Error; err != nil {
		return 0, err
	}

	return total, nil
}

func (q *GormQuery[T]) Execute(ctx context.Context) ([]T, error) {
	tx := q.db.WithContext(ctx)

	if err := q.orders.validate(); err != nil {
		return nil, err
	}
	tx = q.orders.Apply(tx)

	if q.limit != NoLimit {
		tx = tx.Limit(q.limit)
	}
	if q.offset > 0 {
		tx = tx.Offset(q.offset)
	}

	var rows []T
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

// GormSchema reads field names and table names from gorm model schemas.
type GormSchema struct {
	db    *gorm.DB
	cache *sync.Map
}

var _ Schema = (*GormSchema)(nil)

func NewGormSchema(db *gorm.DB) *GormSchema {
	return &GormSchema{db: db, cache: &sync.Map{}}
}

func (s *GormSchema) parse(model any) (*schema.Schema, error) {
	sch, err := schema.Parse(model, s.cache, s.db.NamingStrategy)
	if err != nil {
		return nil, fmt.Errorf("cannot parse schema of %T: %w", model, err)
	}

	return sch, nil
}

// FieldNames returns the column names of model in declaration order.
func (s *GormSchema) FieldNames(model any) ([]string, error) {
	sch, err := s.parse(model)
	if err != nil {
		return nil, err
	}

	return append([]string(nil), sch.DBNames...), nil
}

func (s *GormSchema) TableName(model any) (string, error) {
	sch, err := s.parse(model)
	if err != nil {
		return "", err
	}

	return sch.Table, nil
}
