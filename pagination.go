package gridview

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	DefaultPageParam     = "page"
	DefaultPageSizeParam = "per-page"
)

// Pagination maps the page and page size query parameters onto an
// offset/limit pair.
//
// The page size is read once and clamped to [0, max page size]; 0 means
// "no pagination". The current page is read once and clamped to the page
// count derived from the total count. SetTotalCount drops the cached page, so
// the total may be set before or after the first read.
type Pagination struct {
	req RequestReader

	route           string
	pageParam       string
	pageSizeParam   string
	defaultPageSize int
	maxPageSize     int
	totalCount      int64

	pageSize    *int
	currentPage *int
}

func NewPagination(req RequestReader) *Pagination {
	return &Pagination{
		req:             req,
		pageParam:       DefaultPageParam,
		pageSizeParam:   DefaultPageSizeParam,
		defaultPageSize: DefaultPageSize,
		maxPageSize:     DefaultMaxPageSize,
	}
}

// SetRoute sets the route used for page links.
func (p *Pagination) SetRoute(route string) error {
	if route == "" {
		return fmt.Errorf("pagination route is empty: %w", ErrInvalidArgument)
	}

	p.route = route

	return nil
}

// Route returns the explicit route, or the route of the current request.
func (p *Pagination) Route() string {
	if p == nil {
		return ""
	}
	if p.route != "" || p.req == nil {
		return p.route
	}

	return p.req.Route()
}

func (p *Pagination) SetPageParam(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("pagination page param name is empty: %w", ErrInvalidArgument)
	}

	p.pageParam = name
	p.currentPage = nil

	return nil
}

func (p *Pagination) SetPageSizeParam(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("pagination page size param name is empty: %w", ErrInvalidArgument)
	}

	p.pageSizeParam = name
	p.pageSize = nil
	p.currentPage = nil

	return nil
}

func (p *Pagination) SetDefaultPageSize(size int) error {
	if size < 0 {
		return fmt.Errorf("pagination default page size %d: %w", size, ErrInvalidArgument)
	}

	p.defaultPageSize = size
	p.pageSize = nil
	p.currentPage = nil

	return nil
}

func (p *Pagination) SetMaxPageSize(size int) error {
	if size < 0 {
		return fmt.Errorf("pagination max page size %d: %w", size, ErrInvalidArgument)
	}

	p.maxPageSize = size
	p.pageSize = nil
	p.currentPage = nil

	return nil
}

// SetTotalCount stores the number of rows in the data set. Negative values
// are kept as-is and read as zero.
func (p *Pagination) SetTotalCount(count int64) *Pagination {
	p.totalCount = count
	p.currentPage = nil

	return p
}

func (p *Pagination) TotalCount() int64 {
	if p == nil {
		return 0
	}

	return p.totalCount
}

// PageParamName returns the name of the page query parameter.
func (p *Pagination) PageParamName() string {
	if p == nil {
		return DefaultPageParam
	}

	return p.pageParam
}

// PageSizeParamName returns the name of the page size query parameter.
func (p *Pagination) PageSizeParamName() string {
	if p == nil {
		return DefaultPageSizeParam
	}

	return p.pageSizeParam
}

func (p *Pagination) DefaultPageSize() int {
	if p == nil {
		return DefaultPageSize
	}

	return p.defaultPageSize
}

func (p *Pagination) MaxPageSize() int {
	if p == nil {
		return DefaultMaxPageSize
	}

	return p.maxPageSize
}

// SetPageSize overrides the requested page size. With useLimit the size is
// capped by the max page size. Negative sizes become 0.
func (p *Pagination) SetPageSize(size int, useLimit bool) *Pagination {
	if useLimit {
		size = ClampPageSize(size, p.MaxPageSize())
	} else if size < 0 {
		size = 0
	}

	p.pageSize = &size
	p.currentPage = nil

	return p
}

// PageSize returns the page size read from the request, or the default page
// size when the parameter is absent or not a number.
func (p *Pagination) PageSize() int {
	if p.pageSize != nil {
		return *p.pageSize
	}

	size := p.defaultPageSize
	if raw, ok := p.param(p.pageSizeParam); ok {
		if parsed, err := strconv.Atoi(raw); err == nil {
			size = parsed
		}
	}
	p.SetPageSize(size, true)

	return *p.pageSize
}

// PageCount returns the number of pages. With the unlimited page size a
// non-empty data set has exactly one page.
func (p *Pagination) PageCount() int {
	pageSize := p.PageSize()
	if pageSize < 1 {
		if p.totalCount > 0 {
			return 1
		}

		return 0
	}

	total := max(p.totalCount, 0)

	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

// CurrentPage returns the 0-based page index, clamped to
// [0, max(PageCount()-1, 0)].
func (p *Pagination) CurrentPage() int {
	if p.currentPage != nil {
		return *p.currentPage
	}

	page := 0
	if raw, ok := p.param(p.pageParam); ok {
		if parsed, err := strconv.Atoi(raw); err == nil {
			page = parsed - 1
		}
	}

	page = min(page, p.PageCount()-1)
	page = max(page, 0)
	p.currentPage = &page

	return page
}

// Offset returns the query offset; 0 without pagination.
func (p *Pagination) Offset() int {
	pageSize := p.PageSize()
	if pageSize < 1 {
		return 0
	}

	return p.CurrentPage() * pageSize
}

// Limit returns the query limit; NoLimit without pagination.
func (p *Pagination) Limit() int {
	pageSize := p.PageSize()
	if pageSize < 1 {
		return NoLimit
	}

	return pageSize
}

func (p *Pagination) param(name string) (string, bool) {
	if p.req == nil {
		return "", false
	}

	raw, ok := p.req.Param(name)

	return strings.TrimSpace(raw), ok
}
