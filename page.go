package gridview

import "context"

// Page is a generic page of query results.
type Page[T any] struct {
	// Items result elements.
	Items []T `json:"items"`
	// Total number of elements of the data set.
	Total int64 `json:"total"`
	// Page 0-based index of the page.
	Page int `json:"page"`
	// PageSize effective page size; 0 means the whole data set.
	PageSize int `json:"pageSize"`
	// PageCount number of pages.
	PageCount int `json:"pageCount"`
}

// HasNext reports whether a page follows this one.
func (p Page[T]) HasNext() bool {
	return p.Page+1 < p.PageCount
}

// FetchPage fetches the current page along with its pagination state.
func (ds *QueryDataSource[T]) FetchPage(ctx context.Context) (Page[T], error) {
	items, err := ds.Fetch(ctx)
	if err != nil {
		return Page[T]{}, err
	}

	return Page[T]{
		Items:     items,
		Total:     ds.pagination.TotalCount(),
		Page:      ds.pagination.CurrentPage(),
		PageSize:  ds.pagination.PageSize(),
		PageCount: ds.pagination.PageCount(),
	}, nil
}
