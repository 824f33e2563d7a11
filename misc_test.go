package gridview

import (
	"context"
	"net/http/httptest"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newGORMMySQLMock() (string, *gorm.DB, sqlmock.Sqlmock, error) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		return "", nil, nil, err
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      mockDB,
		SkipInitializeWithVersion: true,
	})

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return "", nil, nil, err
	}

	return "mysql", db.Debug(), mock, nil
}

func newGORMPostgresMock() (string, *gorm.DB, sqlmock.Sqlmock, error) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		return "", nil, nil, err
	}

	dialector := postgres.New(postgres.Config{
		Conn: mockDB,
	})

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return "", nil, nil, err
	}

	return "postgres", db.Debug(), mock, nil
}

// newTestRequest returns a request for target served by the "items" route.
func newTestRequest(target string) *HTTPRequest {
	return NewHTTPRequest(httptest.NewRequest("GET", target, nil)).WithRoute("items")
}

func newTestRouter() *RouteTable {
	return NewRouteTable("https://example.com").Handle("items", "/items")
}

// sliceQuery is an in-memory Query over rows. It records what the data
// source asked for.
type sliceQuery[T any] struct {
	rows       []T
	limit      int
	offset     int
	orders     Orderings
	alias      string
	conditions Conditions
	executed   int
	err        error
}

var (
	_ Query[any] = (*sliceQuery[any])(nil)
	_ Filterable = (*sliceQuery[any])(nil)
	_ Aliased    = (*sliceQuery[any])(nil)
)

func newSliceQuery[T any](rows ...T) *sliceQuery[T] {
	return &sliceQuery[T]{rows: rows, limit: NoLimit}
}

func (q *sliceQuery[T]) SetMaxResults(n int) {
	q.limit = n
}

func (q *sliceQuery[T]) SetFirstResult(n int) {
	q.offset = n
}

func (q *sliceQuery[T]) AddOrderBy(field string, direction Direction) {
	q.orders = append(q.orders, OrderBy{Column: field, Direction: direction})
}

func (q *sliceQuery[T]) SetAlias(alias string) error {
	q.alias = alias
	return nil
}

func (q *sliceQuery[T]) ApplyFilters(conditions Conditions) error {
	q.conditions = append(q.conditions, conditions...)
	return nil
}

func (q *sliceQuery[T]) Count(context.Context) (int64, error) {
	return int64(len(q.rows)), q.err
}

func (q *sliceQuery[T]) Execute(context.Context) ([]T, error) {
	q.executed++
	if q.err != nil {
		return nil, q.err
	}

	start := min(q.offset, len(q.rows))
	end := len(q.rows)
	if q.limit != NoLimit {
		end = min(start+q.limit, end)
	}

	return q.rows[start:end], nil
}

// staticSchema returns the same field names for every model.
type staticSchema []string

func (s staticSchema) FieldNames(any) ([]string, error) {
	return append([]string(nil), s...), nil
}
