package gridview

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Pagination_PageSize(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   int
		limit  int
	}{
		{"default", "/items", DefaultPageSize, DefaultPageSize},
		{"requested", "/items?per-page=10", 10, 10},
		{"clamped to max", "/items?per-page=500", DefaultMaxPageSize, DefaultMaxPageSize},
		{"negative becomes unlimited", "/items?per-page=-5", 0, NoLimit},
		{"zero is unlimited", "/items?per-page=0", 0, NoLimit},
		{"not a number uses default", "/items?per-page=abc", DefaultPageSize, DefaultPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(newTestRequest(tt.target))
			assert.Equal(t, tt.want, p.PageSize())
			assert.Equal(t, tt.limit, p.Limit())
		})
	}
}

func Test_Pagination_PageCount(t *testing.T) {
	tests := []struct {
		total    int64
		pageSize int
		want     int
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{100, 7, 15},
		{0, 0, 0},
		{35, 0, 1},
		{-4, 10, 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("total %d size %d", tt.total, tt.pageSize), func(t *testing.T) {
			p := NewPagination(nil).SetPageSize(tt.pageSize, false).SetTotalCount(tt.total)
			assert.Equal(t, tt.want, p.PageCount())
		})
	}
}

func Test_Pagination_CurrentPage(t *testing.T) {
	tests := []struct {
		name   string
		target string
		total  int64
		page   int
		offset int
	}{
		{"first page by default", "/items", 100, 0, 0},
		{"one-based parameter", "/items?page=3", 100, 2, 40},
		{"past the end clamps to last", "/items?page=99", 100, 4, 80},
		{"zero clamps to first", "/items?page=0", 100, 0, 0},
		{"negative clamps to first", "/items?page=-3", 100, 0, 0},
		{"empty data set", "/items?page=5", 0, 0, 0},
		{"not a number", "/items?page=x", 100, 0, 0},
		{"unlimited page size", "/items?page=2&per-page=0", 100, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(newTestRequest(tt.target)).SetTotalCount(tt.total)
			assert.Equal(t, tt.page, p.CurrentPage())
			assert.Equal(t, tt.offset, p.Offset())
		})
	}
}

func Test_Pagination_CurrentPage_AlwaysInRange(t *testing.T) {
	for total := int64(0); total <= 45; total += 5 {
		for page := -2; page <= 8; page++ {
			p := NewPagination(newTestRequest(fmt.Sprintf("/items?page=%d&per-page=10", page))).SetTotalCount(total)

			got := p.CurrentPage()
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, max(p.PageCount()-1, 0))
		}
	}
}

func Test_Pagination_SetTotalCount_Invalidates(t *testing.T) {
	p := NewPagination(newTestRequest("/items?page=3"))

	assert.Equal(t, 0, p.CurrentPage(), "without a total there is a single empty page")

	p.SetTotalCount(100)
	assert.Equal(t, 2, p.CurrentPage())
	assert.Equal(t, int64(100), p.TotalCount())
}

func Test_Pagination_SetPageSize(t *testing.T) {
	p := NewPagination(nil)

	assert.Equal(t, 80, p.SetPageSize(80, false).PageSize())
	assert.Equal(t, DefaultMaxPageSize, p.SetPageSize(80, true).PageSize())
	assert.Equal(t, 0, p.SetPageSize(-1, false).PageSize())
	assert.Equal(t, 0, p.SetPageSize(-1, true).PageSize())

	require.NoError(t, p.SetMaxPageSize(10))
	assert.Equal(t, 10, p.SetPageSize(11, true).PageSize())
	assert.Equal(t, 10, p.SetPageSize(10, true).PageSize())
}

func Test_Pagination_Setters(t *testing.T) {
	p := NewPagination(newTestRequest("/items?p=2&size=5")).SetTotalCount(50)

	require.NoError(t, p.SetPageParam("p"))
	require.NoError(t, p.SetPageSizeParam("size"))
	require.NoError(t, p.SetRoute("items"))

	assert.Equal(t, 5, p.PageSize())
	assert.Equal(t, 1, p.CurrentPage())
	assert.Equal(t, "items", p.Route())

	require.NoError(t, p.SetMaxPageSize(3))
	assert.Equal(t, 3, p.PageSize())

	require.NoError(t, p.SetDefaultPageSize(2))
	assert.Equal(t, 2, p.DefaultPageSize())

	for _, err := range []error{
		p.SetPageParam(" "),
		p.SetPageSizeParam(""),
		p.SetRoute(""),
		p.SetDefaultPageSize(-1),
		p.SetMaxPageSize(-1),
	} {
		assert.True(t, errors.Is(err, ErrInvalidArgument), "err=%v", err)
	}
}

func Test_Pagination_Nil(t *testing.T) {
	var p *Pagination

	assert.Equal(t, DefaultPageParam, p.PageParamName())
	assert.Equal(t, DefaultPageSizeParam, p.PageSizeParamName())
	assert.Equal(t, DefaultPageSize, p.DefaultPageSize())
	assert.Equal(t, DefaultMaxPageSize, p.MaxPageSize())
	assert.Equal(t, int64(0), p.TotalCount())
	assert.Empty(t, p.Route())
}
