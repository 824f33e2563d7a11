package gridview

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	DefaultIDPrefix  = "grid_"
	DefaultEmptyCell = "&nbsp;"
	DefaultEmptyText = "No results found."
)

// IDSequence hands out grid ids. Create one per request so ids are stable
// across renders of the same page.
type IDSequence struct {
	prefix string
	next   int
}

func NewIDSequence(prefix string) *IDSequence {
	return &IDSequence{prefix: prefix}
}

// Next returns prefix followed by the next counter value, starting at 0.
func (s *IDSequence) Next() string {
	id := s.prefix + strconv.Itoa(s.next)
	s.next++

	return id
}

// RowOptionsFunc computes the attributes of a body row.
type RowOptionsFunc func(row any, index int) Attributes

// Gridview renders the rows of a DataSource as an HTML table.
type Gridview struct {
	id         string
	ids        *IDSequence
	req        RequestReader
	dataSource DataSource
	columns    []GridColumn

	renderer  AttributeRenderer
	formatter *ColumnFormat
	accessors *AccessorRegistry
	logger    *zap.Logger

	filtersEnabled bool
	filterForm     *FilterForm

	emptyCell        string
	emptyText        string
	caption          string
	captionOptions   Attributes
	showHeader       bool
	options          Attributes
	tableOptions     Attributes
	headerRowOptions Attributes
	filterRowOptions Attributes
	rowOptions       RowOptionsFunc
}

func NewGridview(req RequestReader, dataSource DataSource) *Gridview {
	return &Gridview{
		req:              req,
		dataSource:       dataSource,
		renderer:         HTMLRenderer{},
		formatter:        NewColumnFormat(),
		accessors:        NewAccessorRegistry(),
		logger:           zap.NewNop(),
		emptyCell:        DefaultEmptyCell,
		emptyText:        DefaultEmptyText,
		showHeader:       true,
		options:          Attributes{"class": "grid-view"},
		tableOptions:     Attributes{"class": "table table-bordered table-striped"},
		filterRowOptions: Attributes{"class": "filters"},
	}
}

// WithID sets the grid id. It names the filter parameters, so set it before
// any column is added.
func (g *Gridview) WithID(id string) *Gridview {
	g.id = id
	return g
}

// WithIDSequence draws the grid id from ids when no explicit id is set.
func (g *Gridview) WithIDSequence(ids *IDSequence) *Gridview {
	g.ids = ids
	return g
}

func (g *Gridview) WithColumns(columns ...GridColumn) *Gridview {
	g.columns = append(g.columns, columns...)
	return g
}

func (g *Gridview) WithRenderer(renderer AttributeRenderer) *Gridview {
	g.renderer = lo.Ternary[AttributeRenderer](renderer != nil, renderer, HTMLRenderer{})
	return g
}

func (g *Gridview) WithFormatter(formatter *ColumnFormat) *Gridview {
	g.formatter = lo.Ternary(formatter != nil, formatter, NewColumnFormat())
	return g
}

func (g *Gridview) WithAccessors(accessors *AccessorRegistry) *Gridview {
	g.accessors = lo.Ternary(accessors != nil, accessors, NewAccessorRegistry())
	return g
}

func (g *Gridview) WithLogger(logger *zap.Logger) *Gridview {
	g.logger = lo.Ternary(logger != nil, logger, zap.NewNop())
	return g
}

// WithFilters enables the filter row.
func (g *Gridview) WithFilters(enabled bool) *Gridview {
	g.filtersEnabled = enabled
	return g
}

// WithEmptyCell sets the HTML rendered for empty cells.
func (g *Gridview) WithEmptyCell(html string) *Gridview {
	g.emptyCell = html
	return g
}

// WithEmptyText sets the text shown when there are no rows.
func (g *Gridview) WithEmptyText(text string) *Gridview {
	g.emptyText = text
	return g
}

func (g *Gridview) WithCaption(caption string, options Attributes) *Gridview {
	g.caption = caption
	g.captionOptions = options
	return g
}

func (g *Gridview) WithShowHeader(show bool) *Gridview {
	g.showHeader = show
	return g
}

// WithOptions sets the attributes of the container element.
func (g *Gridview) WithOptions(options Attributes) *Gridview {
	g.options = options
	return g
}

func (g *Gridview) WithTableOptions(options Attributes) *Gridview {
	g.tableOptions = options
	return g
}

func (g *Gridview) WithHeaderRowOptions(options Attributes) *Gridview {
	g.headerRowOptions = options
	return g
}

func (g *Gridview) WithFilterRowOptions(options Attributes) *Gridview {
	g.filterRowOptions = options
	return g
}

func (g *Gridview) WithRowOptions(fn RowOptionsFunc) *Gridview {
	g.rowOptions = fn
	return g
}

// ID returns the grid id, drawing one from the id sequence on first use.
func (g *Gridview) ID() string {
	if g.id == "" {
		if g.ids == nil {
			g.ids = NewIDSequence(DefaultIDPrefix)
		}
		g.id = g.ids.Next()
	}

	return g.id
}

func (g *Gridview) Columns() []GridColumn {
	return g.columns
}

func (g *Gridview) Renderer() AttributeRenderer {
	if g == nil || g.renderer == nil {
		return HTMLRenderer{}
	}

	return g.renderer
}

func (g *Gridview) Formatter() *ColumnFormat {
	if g == nil || g.formatter == nil {
		return NewColumnFormat()
	}

	return g.formatter
}

func (g *Gridview) Accessors() *AccessorRegistry {
	if g == nil {
		return nil
	}

	return g.accessors
}

func (g *Gridview) EmptyCell() string {
	if g == nil {
		return DefaultEmptyCell
	}

	return g.emptyCell
}

func (g *Gridview) Request() RequestReader {
	if g == nil {
		return nil
	}

	return g.req
}

func (g *Gridview) DataSource() DataSource {
	if g == nil {
		return nil
	}

	return g.dataSource
}

func (g *Gridview) Sort() *Sort {
	if g == nil || g.dataSource == nil {
		return nil
	}

	return g.dataSource.Sort()
}

func (g *Gridview) Pagination() *Pagination {
	if g == nil || g.dataSource == nil {
		return nil
	}

	return g.dataSource.Pagination()
}

// FilterForm returns the filter form, or nil when filters are disabled.
func (g *Gridview) FilterForm() *FilterForm {
	if g == nil || !g.filtersEnabled {
		return nil
	}

	if g.filterForm == nil {
		g.filterForm = NewFilterForm(g.ID()).WithRenderer(g.renderer).WithLogger(g.logger)
	}

	return g.filterForm
}

func (g *Gridview) visibleColumns() []GridColumn {
	return lo.Filter(g.columns, func(c GridColumn, _ int) bool {
		return c.IsVisible()
	})
}

// Render fetches the rows and renders the grid.
func (g *Gridview) Render(ctx context.Context) (string, error) {
	if g.dataSource == nil {
		return "", fmt.Errorf("cannot render grid: data source: %w", ErrMissingDependency)
	}

	columns := g.visibleColumns()

	hasFilters, err := g.initFilters(columns)
	if err != nil {
		return "", fmt.Errorf("cannot render grid: %w", err)
	}

	rows, err := g.dataSource.FetchRows(ctx)
	if err != nil {
		return "", fmt.Errorf("cannot render grid: %w", err)
	}

	var sections []string

	if g.caption != "" {
		sections = append(sections, tag(g.renderer, "caption", g.caption, g.captionOptions))
	}

	if g.showHeader {
		head, err := g.renderTableHeader(columns, hasFilters)
		if err != nil {
			return "", fmt.Errorf("cannot render grid header: %w", err)
		}
		sections = append(sections, head)
	}

	body, err := g.renderTableBody(columns, rows)
	if err != nil {
		return "", fmt.Errorf("cannot render grid body: %w", err)
	}
	sections = append(sections, body)

	table := tag(g.renderer, "table", strings.Join(sections, "\n"), g.tableOptions)

	content := table
	if hasFilters {
		content = g.renderFilterForm() + "\n" + table
	}

	g.logger.Debug("rendered grid", zap.String("id", g.ID()), zap.Int("rows", len(rows)), zap.Int("columns", len(columns)))

	return tag(g.renderer, "div", content, mergeAttributes(g.options, Attributes{"id": g.ID()})), nil
}

// initFilters registers the filter inputs of columns, binds the request
// values and hands the resulting conditions to the data source.
func (g *Gridview) initFilters(columns []GridColumn) (bool, error) {
	form := g.FilterForm()
	if form == nil {
		return false, nil
	}

	initialized := false
	for _, c := range columns {
		initialized = c.InitFilter(g) || initialized
	}
	if !initialized {
		return false, nil
	}

	if err := form.Bind(g.req); err != nil {
		return false, err
	}

	conditions, err := form.Conditions()
	if err != nil {
		return false, err
	}
	g.dataSource.SetFilters(conditions)

	return true, nil
}

func (g *Gridview) renderFilterForm() string {
	keep := queryParams(g.req)
	for name := range keep {
		if g.filterForm.ownsParam(name) {
			keep.Del(name)
		}
	}
	keep.Del(g.Pagination().PageParamName())

	action := ""
	if g.req != nil {
		action = g.req.Path()
	}

	return g.filterForm.RenderForm(action, keep)
}

func (g *Gridview) renderTableHeader(columns []GridColumn, hasFilters bool) (string, error) {
	cells := make([]string, 0, len(columns))
	for _, c := range columns {
		cell, err := c.RenderHeaderCell(g)
		if err != nil {
			return "", err
		}
		cells = append(cells, cell)
	}

	rows := []string{tag(g.renderer, "tr", strings.Join(cells, ""), g.headerRowOptions)}

	if hasFilters {
		filterRow, err := g.renderFilterRow(columns)
		if err != nil {
			return "", err
		}
		rows = append(rows, filterRow)
	}

	return tag(g.renderer, "thead", "\n"+strings.Join(rows, "\n")+"\n", nil), nil
}

func (g *Gridview) renderFilterRow(columns []GridColumn) (string, error) {
	cells := make([]string, 0, len(columns))
	for _, c := range columns {
		cell, err := c.RenderFilterCell(g)
		if err != nil {
			return "", err
		}
		cells = append(cells, cell)
	}

	return tag(g.renderer, "tr", strings.Join(cells, ""), mergeAttributes(Attributes{"id": g.ID() + "_filters"}, g.filterRowOptions)), nil
}

func (g *Gridview) renderTableBody(columns []GridColumn, rows []any) (string, error) {
	if len(rows) == 0 {
		empty := tag(g.renderer, "td", tag(g.renderer, "div", escapeHTML(g.emptyText), Attributes{"class": "empty"}), Attributes{
			"colspan": len(columns),
		})

		return tag(g.renderer, "tbody", "\n"+tag(g.renderer, "tr", empty, nil)+"\n", nil), nil
	}

	lines := make([]string, 0, len(rows))
	for index, row := range rows {
		line, err := g.renderTableRow(columns, row, index)
		if err != nil {
			return "", err
		}
		lines = append(lines, line)
	}

	return tag(g.renderer, "tbody", "\n"+strings.Join(lines, "\n")+"\n", nil), nil
}

func (g *Gridview) renderTableRow(columns []GridColumn, row any, index int) (string, error) {
	cells := make([]string, 0, len(columns))
	for _, c := range columns {
		cell, err := c.RenderCell(g, row, index)
		if err != nil {
			return "", fmt.Errorf("row %d: %w", index, err)
		}
		cells = append(cells, cell)
	}

	var attrs Attributes
	if g.rowOptions != nil {
		attrs = g.rowOptions(row, index)
	}

	return tag(g.renderer, "tr", strings.Join(cells, ""), attrs), nil
}
