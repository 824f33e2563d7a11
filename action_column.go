package gridview

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Action names of the default buttons.
const (
	ActionShow   = "read"
	ActionEdit   = "update"
	ActionDelete = "delete"
)

var _defaultActions = []string{ActionShow, ActionEdit, ActionDelete}

// URLFunc computes a button URL from the row, the default URL and the row
// index.
type URLFunc func(row any, defaultURL string, index int) string

// ButtonContentFunc computes the HTML of a button from the row, the button
// URL and the row index.
type ButtonContentFunc func(row any, url string, index int) string

type buttonKind int

const (
	buttonDefault buttonKind = iota
	buttonURL
	buttonFunc
	buttonRecord
)

// Button configures one action button. Build it with URLButton, FuncButton,
// RecordButton or ButtonFromAny. The zero Button uses the default URL.
type Button struct {
	kind        buttonKind
	url         string
	urlFunc     URLFunc
	content     string
	contentFunc ButtonContentFunc
}

// ButtonRecord is a button with its own content. Either URL or URLFunc may
// be set; neither means the default URL. Content, or ContentFunc, replaces
// the generated anchor.
type ButtonRecord struct {
	URL         string
	URLFunc     URLFunc
	Content     string
	ContentFunc ButtonContentFunc
}

// URLButton links to url. An empty url means the default URL.
func URLButton(url string) Button {
	return Button{kind: buttonURL, url: url}
}

// FuncButton links to the URL computed by fn.
func FuncButton(fn URLFunc) Button {
	return Button{kind: buttonFunc, urlFunc: fn}
}

func RecordButton(r ButtonRecord) Button {
	return Button{
		kind:        buttonRecord,
		url:         r.URL,
		urlFunc:     r.URLFunc,
		content:     r.Content,
		contentFunc: r.ContentFunc,
	}
}

// ButtonFromAny builds a Button from configuration: a URL string, a URL
// function, a ButtonRecord or a map with "url" and "content" entries.
func ButtonFromAny(v any) (Button, error) {
	switch t := v.(type) {
	case Button:
		return t, nil
	case string:
		return URLButton(t), nil
	case URLFunc:
		return FuncButton(t), nil
	case func(row any, defaultURL string, index int) string:
		return FuncButton(t), nil
	case ButtonRecord:
		return RecordButton(t), nil
	case map[string]any:
		return buttonFromMap(t)
	}

	return Button{}, fmt.Errorf("action button of type %T: %w", v, ErrInvalidArgument)
}

func buttonFromMap(m map[string]any) (Button, error) {
	var r ButtonRecord

	switch u := m["url"].(type) {
	case nil:
	case string:
		r.URL = u
	case URLFunc:
		r.URLFunc = u
	case func(row any, defaultURL string, index int) string:
		r.URLFunc = u
	default:
		return Button{}, fmt.Errorf("action button url of type %T: %w", u, ErrInvalidArgument)
	}

	switch c := m["content"].(type) {
	case nil:
	case string:
		r.Content = c
	case ButtonContentFunc:
		r.ContentFunc = c
	case func(row any, url string, index int) string:
		r.ContentFunc = c
	default:
		return Button{}, fmt.Errorf("action button content of type %T: %w", c, ErrInvalidArgument)
	}

	return RecordButton(r), nil
}

// resolveURL resolves the button URL, falling back to defaultURL when the
// configured one is empty.
func (b Button) resolveURL(row any, defaultURL string, index int) string {
	var url string
	switch {
	case b.urlFunc != nil:
		url = b.urlFunc(row, defaultURL, index)
	default:
		url = b.url
	}

	return lo.Ternary(url != "", url, defaultURL)
}

// resolveContent returns the button HTML and whether the button has its own
// content.
func (b Button) resolveContent(row any, url string, index int) (string, bool) {
	if b.kind != buttonRecord {
		return "", false
	}

	switch {
	case b.contentFunc != nil:
		return b.contentFunc(row, url, index), true
	case b.content != "":
		return b.content, true
	}

	return "", false
}

// Hidden decides whether a button is suppressed for a row.
type Hidden struct {
	value bool
	fn    func(row any, url string) bool
}

func HiddenIf(hidden bool) Hidden {
	return Hidden{value: hidden}
}

// HiddenWhen hides the button when fn returns true.
func HiddenWhen(fn func(row any, url string) bool) Hidden {
	return Hidden{fn: fn}
}

func (h Hidden) hidden(row any, url string) bool {
	if h.fn != nil {
		return h.fn(row, url)
	}

	return h.value
}

// ActionColumn renders show, edit and delete links for every row.
type ActionColumn struct {
	baseColumn

	buttons map[string]Button
	extra   []string
	hidden  map[string]Hidden
	icons   map[string]string
}

var _ GridColumn = (*ActionColumn)(nil)

func NewActionColumn() *ActionColumn {
	c := &ActionColumn{
		baseColumn: newBaseColumn(FormatOf(FormatRaw)),
		buttons:    make(map[string]Button),
		hidden:     make(map[string]Hidden),
		icons: map[string]string{
			ActionShow:   "eye-open",
			ActionEdit:   "pencil",
			ActionDelete: "cross",
		},
	}
	c.label = "Actions"
	c.sortable = false

	for _, action := range _defaultActions {
		c.buttons[action] = Button{}
	}

	return c
}

func (c *ActionColumn) WithLabel(label string) *ActionColumn {
	c.label = label
	return c
}

func (c *ActionColumn) WithVisible(visible bool) *ActionColumn {
	c.visible = visible
	return c
}

// WithVisibleFunc sets the visibility from fn, evaluated once right away.
func (c *ActionColumn) WithVisibleFunc(fn func() bool) *ActionColumn {
	c.visible = fn != nil && fn()
	return c
}

func (c *ActionColumn) WithHeaderAttributes(attrs Attributes) *ActionColumn {
	c.headerAttributes = attrs
	return c
}

func (c *ActionColumn) WithContentAttributes(attrs Attributes) *ActionColumn {
	c.contentAttrs = attrs
	return c
}

func (c *ActionColumn) WithFilterAttributes(attrs Attributes) *ActionColumn {
	c.filterAttributes = attrs
	return c
}

// WithButton configures the button of action. Actions other than the
// default ones are rendered after them in registration order.
func (c *ActionColumn) WithButton(action string, button Button) *ActionColumn {
	if _, ok := c.buttons[action]; !ok {
		c.extra = append(c.extra, action)
	}
	c.buttons[action] = button

	return c
}

// WithButtons configures several buttons. New actions are added in name
// order.
func (c *ActionColumn) WithButtons(buttons map[string]Button) *ActionColumn {
	actions := lo.Keys(buttons)
	sort.Strings(actions)

	for _, action := range actions {
		c.WithButton(action, buttons[action])
	}

	return c
}

func (c *ActionColumn) WithHidden(action string, hidden Hidden) *ActionColumn {
	c.hidden[action] = hidden
	return c
}

// WithIcon sets the glyph icon of action.
func (c *ActionColumn) WithIcon(action, icon string) *ActionColumn {
	c.icons[action] = icon
	return c
}

func (c *ActionColumn) actions() []string {
	return append(append([]string(nil), _defaultActions...), c.extra...)
}

// DefaultButtonURL returns "{request path}/{row id}/{action}", or "" when the
// row has no id.
func (c *ActionColumn) DefaultButtonURL(g *Gridview, action string, row any) string {
	id, err := AttributeValue(g.Accessors(), row, "id")
	if err != nil || id == nil || id == "" {
		return ""
	}

	path := ""
	if req := g.Request(); req != nil {
		path = req.Path()
	}

	return fmt.Sprintf("%s/%v/%s", path, id, action)
}

// Buttons renders the visible buttons of row.
func (c *ActionColumn) Buttons(g *Gridview, row any, index int) []string {
	ret := make([]string, 0, len(c.buttons))

	for _, action := range c.actions() {
		button := c.buttons[action]

		url := button.resolveURL(row, c.DefaultButtonURL(g, action, row), index)
		if hidden, ok := c.hidden[action]; ok && hidden.hidden(row, url) {
			continue
		}

		if content, ok := button.resolveContent(row, url, index); ok {
			ret = append(ret, content)
			continue
		}

		ret = append(ret, c.renderButton(g, action, url))
	}

	return ret
}

func (c *ActionColumn) renderButton(g *Gridview, action, url string) string {
	icon := lo.Ternary(c.icons[action] != "", c.icons[action], action)
	span := tag(g.Renderer(), "span", "&nbsp;", Attributes{
		"class":       "glyphicon glyphicon-" + icon,
		"aria-hidden": "true",
	})

	return tag(g.Renderer(), "a", span, Attributes{"href": url})
}

func (c *ActionColumn) RenderHeaderCell(g *Gridview) (string, error) {
	return c.renderHeader(g, c.label), nil
}

func (c *ActionColumn) InitFilter(*Gridview) bool {
	return false
}

func (c *ActionColumn) RenderFilterCell(g *Gridview) (string, error) {
	return c.renderEmptyFilter(g), nil
}

// RenderCell renders the buttons of row. Without any visible button the
// empty cell placeholder of g is used.
func (c *ActionColumn) RenderCell(g *Gridview, row any, index int) (string, error) {
	if !isRow(g.Accessors(), row) {
		return "", fmt.Errorf("action column: row must be a struct or a map, %T given: %w", row, ErrInvalidArgument)
	}

	content := strings.Join(c.Buttons(g, row, index), "")
	if content == "" {
		content = g.EmptyCell()
	}

	return tag(g.Renderer(), "td", content, c.contentAttrs), nil
}
