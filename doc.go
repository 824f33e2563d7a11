// Package gridview renders paginated, sortable and filterable HTML tables
// from gorm queries.
//
// # Overview
//
// A grid is assembled from request-scoped parts:
//   - Pagination: reads the page and page size parameters and turns them into
//     an offset/limit pair once the total row count is known.
//   - Sort: maps the sort parameter ("?sort=-created,name") onto attribute
//     orders and underlying field orderings, and builds toggle links.
//   - QueryDataSource: counts, pages, sorts and filters a Query (GormQuery for
//     gorm models) and executes it once.
//   - Column and ActionColumn: resolve dotted and indexed attribute paths on
//     rows and format them through ColumnFormat.
//   - Gridview: renders the table; Extension exposes it to html/template.
//
// Every part is built per request and is not safe for concurrent use.
package gridview
