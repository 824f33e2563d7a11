package gridview

import (
	"fmt"
)

// GridColumn is a column of a Gridview.
type GridColumn interface {
	IsVisible() bool
	RenderHeaderCell(g *Gridview) (string, error)
	// InitFilter registers the filter input of the column and reports
	// whether one was registered.
	InitFilter(g *Gridview) bool
	RenderFilterCell(g *Gridview) (string, error)
	RenderCell(g *Gridview, row any, index int) (string, error)
}

// ContentFunc computes the content of a cell from its row and row index.
type ContentFunc func(row any, index int) any

// baseColumn holds the settings shared by every column kind.
type baseColumn struct {
	label            string
	encodeLabel      bool
	visible          bool
	sortable         bool
	format           Format
	headerAttributes Attributes
	contentAttrs     Attributes
	filterAttributes Attributes
}

func newBaseColumn(format Format) baseColumn {
	return baseColumn{
		visible:  true,
		sortable: true,
		format:   format,
	}
}

func (c *baseColumn) IsVisible() bool {
	return c.visible
}

func (c *baseColumn) Label() string {
	return c.label
}

func (c *baseColumn) Format() Format {
	return c.format
}

func (c *baseColumn) renderHeader(g *Gridview, content string) string {
	if c.encodeLabel {
		content = escapeHTML(content)
	}

	return tag(g.Renderer(), "th", content, c.headerAttributes)
}

func (c *baseColumn) renderEmptyFilter(g *Gridview) string {
	return tag(g.Renderer(), "td", g.EmptyCell(), c.filterAttributes)
}

// Column renders an attribute of the row.
type Column struct {
	baseColumn

	attribute     string
	content       ContentFunc
	filterType    string
	filterOptions map[string]any
}

var _ GridColumn = (*Column)(nil)

// NewColumn returns a column showing attribute, an attribute path as
// understood by ResolveAttribute. Values are HTML-escaped by default.
func NewColumn(attribute string) *Column {
	return &Column{
		baseColumn:    newBaseColumn(FormatOf(FormatHTML)),
		attribute:     attribute,
		filterType:    FilterTypeText,
		filterOptions: map[string]any{},
	}
}

func (c *Column) Attribute() string {
	return c.attribute
}

func (c *Column) WithLabel(label string) *Column {
	c.label = label
	return c
}

// WithEncodeLabel escapes the header content.
func (c *Column) WithEncodeLabel(encode bool) *Column {
	c.encodeLabel = encode
	return c
}

// WithContent shows value in every cell of the column.
func (c *Column) WithContent(value any) *Column {
	c.content = func(any, int) any { return value }
	return c
}

// WithContentFunc computes cells with fn instead of resolving the attribute.
func (c *Column) WithContentFunc(fn ContentFunc) *Column {
	c.content = fn
	return c
}

func (c *Column) WithFormat(format Format) *Column {
	c.format = format
	return c
}

func (c *Column) WithSortable(sortable bool) *Column {
	c.sortable = sortable
	return c
}

func (c *Column) WithVisible(visible bool) *Column {
	c.visible = visible
	return c
}

// WithVisibleFunc sets the visibility from fn, evaluated once right away.
func (c *Column) WithVisibleFunc(fn func() bool) *Column {
	c.visible = fn != nil && fn()
	return c
}

func (c *Column) WithHeaderAttributes(attrs Attributes) *Column {
	c.headerAttributes = attrs
	return c
}

func (c *Column) WithContentAttributes(attrs Attributes) *Column {
	c.contentAttrs = attrs
	return c
}

// WithContentAttributesFunc sets the cell attributes from fn, evaluated once
// right away.
func (c *Column) WithContentAttributesFunc(fn func() Attributes) *Column {
	if fn != nil {
		c.contentAttrs = fn()
	}

	return c
}

func (c *Column) WithFilterAttributes(attrs Attributes) *Column {
	c.filterAttributes = attrs
	return c
}

// WithFilterType sets the input type of the filter field.
func (c *Column) WithFilterType(filterType string) *Column {
	c.filterType = filterType
	return c
}

// WithFilterOptions merges options into the filter field options.
func (c *Column) WithFilterOptions(options map[string]any) *Column {
	for k, v := range options {
		c.filterOptions[k] = v
	}

	return c
}

// HeaderCellContent returns the header label, or a sort link when the
// column is sortable and its label or attribute is a sort attribute. The
// label is checked first.
func (c *Column) HeaderCellContent(g *Gridview) (string, error) {
	if c.label == "" && c.attribute == "" {
		return "", fmt.Errorf("column header: label or attribute name: %w", ErrMissingLabel)
	}

	label := c.label
	if label == "" {
		label = Humanize(c.attribute)
	}
	if c.encodeLabel {
		label = escapeHTML(label)
	}

	if !c.sortable {
		return label, nil
	}

	sort := g.Sort()
	if sort == nil {
		return label, nil
	}

	var sortAttribute string
	switch {
	case c.label != "" && sort.HasAttribute(c.label):
		sortAttribute = c.label
	case c.attribute != "" && sort.HasAttribute(c.attribute):
		sortAttribute = c.attribute
	default:
		return label, nil
	}

	return sort.CreateLink(sortAttribute, g.Pagination(), Attributes{"label": label})
}

func (c *Column) RenderHeaderCell(g *Gridview) (string, error) {
	content, err := c.HeaderCellContent(g)
	if err != nil {
		return "", err
	}

	return tag(g.Renderer(), "th", content, c.headerAttributes), nil
}

// InitFilter adds the filter field of the column to the filter form of g.
// Columns without an attribute and grids without filters have none.
func (c *Column) InitFilter(g *Gridview) bool {
	form := g.FilterForm()
	if form == nil || c.attribute == "" {
		return false
	}

	form.AddField(c.attribute, c.filterType, c.filterOptions)

	return true
}

func (c *Column) RenderFilterCell(g *Gridview) (string, error) {
	form := g.FilterForm()
	if form == nil || c.attribute == "" || !form.HasField(c.attribute) {
		return c.renderEmptyFilter(g), nil
	}

	widget, err := form.Widget(c.attribute)
	if err != nil {
		return "", err
	}

	return tag(g.Renderer(), "td", widget, c.filterAttributes), nil
}

// CellContent returns the raw content of the cell of row.
func (c *Column) CellContent(g *Gridview, row any, index int) (any, error) {
	if c.content != nil {
		return c.content(row, index), nil
	}

	return ResolveAttribute(g.Accessors(), row, c.attribute)
}

// RenderCell renders the cell of row. A nil content renders the empty cell
// placeholder of g.
func (c *Column) RenderCell(g *Gridview, row any, index int) (string, error) {
	if !isRow(g.Accessors(), row) {
		return "", fmt.Errorf("column '%s': row must be a struct or a map, %T given: %w", c.attribute, row, ErrInvalidArgument)
	}

	content, err := c.CellContent(g, row, index)
	if err != nil {
		return "", fmt.Errorf("column '%s': %w", c.attribute, err)
	}

	cell := g.EmptyCell()
	if !isNilValue(content) {
		cell, err = g.Formatter().Format(content, c.format)
		if err != nil {
			return "", fmt.Errorf("column '%s': %w", c.attribute, err)
		}
	}

	return tag(g.Renderer(), "td", cell, c.contentAttrs), nil
}
