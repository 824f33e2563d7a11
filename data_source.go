package gridview

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Query is a mutable query builder over rows of type T.
type Query[T any] interface {
	SetMaxResults(n int)
	SetFirstResult(n int)
	AddOrderBy(field string, direction Direction)
	Execute(ctx context.Context) ([]T, error)
	// Count returns the number of rows of the data set.
	Count(ctx context.Context) (int64, error)
}

// Filterable is implemented by queries that accept filter conditions.
type Filterable interface {
	ApplyFilters(conditions Conditions) error
}

// Aliased is implemented by queries whose root table can be aliased.
type Aliased interface {
	SetAlias(alias string) error
}

// Schema lists the field names of a model.
type Schema interface {
	FieldNames(model any) ([]string, error)
}

// DataSource feeds a Gridview.
type DataSource interface {
	Pagination() *Pagination
	Sort() *Sort
	FieldNames() ([]string, error)
	SetFilters(conditions Conditions)
	FetchRows(ctx context.Context) ([]any, error)
}

// QueryDataSource pages and sorts a Query.
//
// Fetch counts the data set, applies the page window and the active sort
// orders to the query and executes it once. The result is kept for the
// lifetime of the data source, which is one request.
type QueryDataSource[T any] struct {
	query      Query[T]
	schema     Schema
	pagination *Pagination
	sort       *Sort
	logger     *zap.Logger

	rootAlias string
	filters   Conditions

	sortPrepared bool
	fetched      bool
	rows         []T
	err          error
}

var _ DataSource = (*QueryDataSource[any])(nil)

func NewQueryDataSource[T any](query Query[T], pagination *Pagination, sort *Sort) *QueryDataSource[T] {
	return &QueryDataSource[T]{
		query:      query,
		pagination: lo.Ternary(pagination != nil, pagination, NewPagination(nil)),
		sort:       lo.Ternary(sort != nil, sort, NewSort(nil, nil)),
		logger:     zap.NewNop(),
	}
}

// WithSchema sets the schema used to build default sort attributes and
// default columns.
func (ds *QueryDataSource[T]) WithSchema(schema Schema) *QueryDataSource[T] {
	ds.schema = schema
	ds.sortPrepared = false
	return ds
}

// WithRootAlias overrides the alias used to qualify field names.
func (ds *QueryDataSource[T]) WithRootAlias(alias string) *QueryDataSource[T] {
	ds.rootAlias = alias
	return ds
}

func (ds *QueryDataSource[T]) WithLogger(logger *zap.Logger) *QueryDataSource[T] {
	ds.logger = lo.Ternary(logger != nil, logger, zap.NewNop())
	return ds
}

func (ds *QueryDataSource[T]) Pagination() *Pagination {
	return ds.pagination
}

// Sort returns the sort of the data source. When no attribute was
// configured, every field of T becomes a sort attribute ordering by the
// field qualified with the root alias.
func (ds *QueryDataSource[T]) Sort() *Sort {
	if err := ds.prepareSort(); err != nil {
		ds.logger.Warn("cannot build default sort attributes", zap.Error(err))
	}

	return ds.sort
}

func (ds *QueryDataSource[T]) prepareSort() error {
	if ds.sortPrepared || len(ds.sort.Attributes()) > 0 {
		ds.sortPrepared = true
		return nil
	}
	if ds.schema == nil {
		ds.sortPrepared = true
		ds.logger.Warn("no schema, default sort attributes skipped", zap.String("entity", ds.EntityShortName()))
		return nil
	}

	fields, err := ds.FieldNames()
	if err != nil {
		return err
	}
	ds.sortPrepared = true

	alias := ds.RootAlias()
	attrs := lo.Map(fields, func(field string, _ int) SortAttribute {
		qualified := alias + "." + field
		return SortAttribute{
			Name: field,
			Asc:  Orderings{{Column: qualified, Direction: DirectionASC}},
			Desc: Orderings{{Column: qualified, Direction: DirectionDESC}},
		}
	})
	ds.sort.SetAttributes(attrs...)

	return nil
}

// EntityShortName returns the unqualified type name of T.
func (ds *QueryDataSource[T]) EntityShortName() string {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	return typ.Name()
}

// RootAlias returns the explicit root alias or the short type name of T.
func (ds *QueryDataSource[T]) RootAlias() string {
	if ds.rootAlias == "" {
		ds.rootAlias = ds.EntityShortName()
	}

	return ds.rootAlias
}

// FieldNames returns the field names of T from the schema.
func (ds *QueryDataSource[T]) FieldNames() ([]string, error) {
	if ds.schema == nil {
		return nil, fmt.Errorf("field names of %s: schema: %w", ds.EntityShortName(), ErrMissingDependency)
	}

	return ds.schema.FieldNames(new(T))
}

// SetFilters sets the filter conditions. Unqualified columns are qualified
// with the root alias.
func (ds *QueryDataSource[T]) SetFilters(conditions Conditions) {
	alias := ds.RootAlias()

	ds.filters = lo.Map(conditions, func(c Condition, _ int) Condition {
		if !strings.Contains(c.Column, ".") && alias != "" {
			c.Column = alias + "." + c.Column
		}

		return c
	})
}

// Fetch executes the query and returns the rows of the current page.
func (ds *QueryDataSource[T]) Fetch(ctx context.Context) ([]T, error) {
	if ds.fetched {
		return ds.rows, ds.err
	}

	ds.rows, ds.err = ds.fetch(ctx)
	ds.fetched = true

	return ds.rows, ds.err
}

func (ds *QueryDataSource[T]) fetch(ctx context.Context) ([]T, error) {
	if ds.query == nil {
		return nil, fmt.Errorf("cannot fetch rows: query: %w", ErrMissingDependency)
	}

	if aliased, ok := ds.query.(Aliased); ok {
		if err := aliased.SetAlias(ds.RootAlias()); err != nil {
			return nil, fmt.Errorf("cannot fetch rows: %w", err)
		}
	}

	if len(ds.filters) > 0 {
		if err := ds.applyFilters(); err != nil {
			return nil, fmt.Errorf("cannot fetch rows: %w", err)
		}
	}

	total, err := ds.query.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot count rows: %w", err)
	}
	ds.pagination.SetTotalCount(total)

	ds.query.SetMaxResults(ds.pagination.Limit())
	ds.query.SetFirstResult(ds.pagination.Offset())

	if err = ds.prepareSort(); err != nil {
		return nil, fmt.Errorf("cannot fetch rows: %w", err)
	}

	orders := ds.sort.FetchOrders()
	if err = orders.validate(); err != nil {
		return nil, fmt.Errorf("cannot fetch rows: %w", err)
	}
	for _, order := range orders {
		ds.query.AddOrderBy(order.Column, order.Direction)
	}

	ds.logger.Debug("fetching grid rows",
		zap.Int64("total", total),
		zap.Int("limit", ds.pagination.Limit()),
		zap.Int("offset", ds.pagination.Offset()),
		zap.Strings("orders", orders.ToSQLSlice()),
	)

	rows, err := ds.query.Execute(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot execute query: %w", err)
	}

	return rows, nil
}

func (ds *QueryDataSource[T]) applyFilters() error {
	filterable, ok := ds.query.(Filterable)
	if !ok {
		return fmt.Errorf("query %T does not accept filters: %w", ds.query, ErrMissingDependency)
	}

	if err := ds.filters.validate(); err != nil {
		return err
	}

	ds.logger.Debug("applying grid filters", zap.Any("conditions", ds.filters))

	return filterable.ApplyFilters(ds.filters)
}

// FetchRows is Fetch with the rows boxed for column rendering.
func (ds *QueryDataSource[T]) FetchRows(ctx context.Context) ([]any, error) {
	rows, err := ds.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	return lo.Map(rows, func(row T, _ int) any {
		return row
	}), nil
}
