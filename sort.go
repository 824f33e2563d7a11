package gridview

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	DefaultSortParam     = "sort"
	DefaultSortSeparator = ","
)

// SortAttribute describes one sortable attribute key and the underlying field
// orderings it expands to.
type SortAttribute struct {
	// Name is the attribute key used in the sort query parameter.
	Name string
	// Asc is applied when the attribute is sorted ascending. Defaults to
	// {Name ASC}.
	Asc Orderings
	// Desc is applied when the attribute is sorted descending. Defaults to
	// {Name DESC}.
	Desc Orderings
	// Default is the direction used when the attribute is first clicked.
	Default Direction
	// Label overrides the humanized attribute name on sort links.
	Label string
}

// SortAttr returns a bare attribute sorted by the field of the same name.
func SortAttr(name string) SortAttribute {
	return SortAttribute{Name: name}
}

func (a SortAttribute) normalize() SortAttribute {
	if len(a.Asc) == 0 {
		a.Asc = Orderings{{Column: a.Name, Direction: DirectionASC}}
	}
	if len(a.Desc) == 0 {
		a.Desc = Orderings{{Column: a.Name, Direction: DirectionDESC}}
	}
	if !a.Default.Valid() {
		a.Default = DirectionASC
	}

	return a
}

func (a SortAttribute) orderings(d Direction) Orderings {
	return lo.Ternary(d == DirectionDESC, a.Desc, a.Asc)
}

type (
	// AttributeOrders is the ordered list of active attribute directions.
	AttributeOrders []AttributeOrder
	AttributeOrder  struct {
		Attribute string
		Direction Direction
	}
)

// Get returns the direction of attribute.
func (o AttributeOrders) Get(attribute string) (Direction, bool) {
	for _, order := range o {
		if order.Attribute == attribute {
			return order.Direction, true
		}
	}

	return "", false
}

// set updates the direction of an active attribute in place, or appends it.
func (o AttributeOrders) set(attribute string, direction Direction) AttributeOrders {
	for i := range o {
		if o[i].Attribute == attribute {
			o[i].Direction = direction
			return o
		}
	}

	return append(o, AttributeOrder{Attribute: attribute, Direction: direction})
}

func (o AttributeOrders) without(attribute string) AttributeOrders {
	return lo.Filter(o, func(item AttributeOrder, _ int) bool {
		return item.Attribute != attribute
	})
}

// Sort maps the sort query parameter onto attribute and field orderings.
//
// Tokens are attribute keys joined by the separator; a leading "-" marks a
// descending order: "?sort=-created,name".
type Sort struct {
	req      RequestReader
	router   Router
	renderer AttributeRenderer
	logger   *zap.Logger

	route        string
	sortParam    string
	separator    string
	multiSort    bool
	defaultOrder AttributeOrders

	attributes []SortAttribute
	index      map[string]int

	attributeOrders AttributeOrders
	resolved        bool
}

func NewSort(req RequestReader, router Router) *Sort {
	return &Sort{
		req:       req,
		router:    router,
		renderer:  HTMLRenderer{},
		logger:    zap.NewNop(),
		sortParam: DefaultSortParam,
		separator: DefaultSortSeparator,
		index:     make(map[string]int),
	}
}

// WithSortParam sets the name of the sort query parameter.
func (s *Sort) WithSortParam(name string) *Sort {
	if s == nil {
		s = NewSort(nil, nil)
	}

	if name != "" {
		s.sortParam = name
		s.reset()
	}

	return s
}

// WithSeparator sets the token separator.
func (s *Sort) WithSeparator(separator string) *Sort {
	if s == nil {
		s = NewSort(nil, nil)
	}

	if separator != "" {
		s.separator = separator
		s.reset()
	}

	return s
}

// WithMultiSort enables sorting by several attributes at once.
func (s *Sort) WithMultiSort(enabled bool) *Sort {
	if s == nil {
		s = NewSort(nil, nil)
	}

	s.multiSort = enabled
	s.reset()

	return s
}

// WithDefaultOrder sets the order used when the request carries no
// recognized sort token. Entries naming unknown attributes are ignored.
func (s *Sort) WithDefaultOrder(orders ...AttributeOrder) *Sort {
	if s == nil {
		s = NewSort(nil, nil)
	}

	s.defaultOrder = append(AttributeOrders(nil), orders...)
	s.reset()

	return s
}

// WithRoute overrides the route used for sort links. Defaults to the route
// of the current request.
func (s *Sort) WithRoute(route string) *Sort {
	if s == nil {
		s = NewSort(nil, nil)
	}

	s.route = route

	return s
}

func (s *Sort) WithRenderer(renderer AttributeRenderer) *Sort {
	if s == nil {
		s = NewSort(nil, nil)
	}

	s.renderer = renderer

	return s
}

func (s *Sort) WithLogger(logger *zap.Logger) *Sort {
	if s == nil {
		s = NewSort(nil, nil)
	}

	s.logger = lo.Ternary(logger != nil, logger, zap.NewNop())

	return s
}

// SetAttributes replaces the sortable attributes. Missing orderings and
// default directions are filled in, explicit values are kept.
func (s *Sort) SetAttributes(attrs ...SortAttribute) *Sort {
	if s == nil {
		s = NewSort(nil, nil)
	}

	s.attributes = make([]SortAttribute, 0, len(attrs))
	s.index = make(map[string]int, len(attrs))

	for _, attr := range attrs {
		if attr.Name == "" {
			continue
		}

		attr = attr.normalize()
		if i, ok := s.index[attr.Name]; ok {
			s.attributes[i] = attr
			continue
		}

		s.index[attr.Name] = len(s.attributes)
		s.attributes = append(s.attributes, attr)
	}
	s.reset()

	return s
}

// Attributes returns the normalized attributes in registration order.
func (s *Sort) Attributes() []SortAttribute {
	if s == nil {
		return nil
	}

	return s.attributes
}

func (s *Sort) HasAttribute(name string) bool {
	if s == nil {
		return false
	}

	_, ok := s.index[name]

	return ok
}

func (s *Sort) attribute(name string) (SortAttribute, error) {
	i, ok := s.index[name]
	if !ok {
		return SortAttribute{}, fmt.Errorf(
			"sort attribute '%s', closest: '%s': %w",
			name, closestAlias(name, s.attributeNames()), ErrUnknownAttribute,
		)
	}

	return s.attributes[i], nil
}

func (s *Sort) attributeNames() []string {
	return lo.Map(s.attributes, func(a SortAttribute, _ int) string {
		return a.Name
	})
}

// SortParamName returns the name of the sort query parameter.
func (s *Sort) SortParamName() string {
	if s == nil {
		return DefaultSortParam
	}

	return s.sortParam
}

func (s *Sort) IsMultiSort() bool {
	return s != nil && s.multiSort
}

func (s *Sort) reset() {
	s.attributeOrders = nil
	s.resolved = false
}

// FetchAttributesOrder resolves the active attribute directions from the
// request. Unknown tokens are skipped. Without multi-sort the first
// recognized token wins. When nothing is recognized the default order is
// used. The result is computed once.
func (s *Sort) FetchAttributesOrder() AttributeOrders {
	if s == nil {
		return nil
	}
	if s.resolved {
		return s.attributeOrders
	}

	var orders AttributeOrders
	for _, token := range s.parseTokens() {
		direction := DirectionASC
		if strings.HasPrefix(token, "-") {
			direction = DirectionDESC
			token = token[1:]
		}

		if !s.HasAttribute(token) {
			s.logger.Warn("ignoring unknown sort token", zap.String("token", token))
			continue
		}

		orders = orders.set(token, direction)
		if !s.multiSort {
			break
		}
	}

	if len(orders) == 0 {
		for _, order := range s.defaultOrder {
			if s.HasAttribute(order.Attribute) && order.Direction.Valid() {
				orders = orders.set(order.Attribute, order.Direction)
			}
		}
	}

	s.attributeOrders = orders
	s.resolved = true

	return s.attributeOrders
}

func (s *Sort) parseTokens() []string {
	if s.req == nil {
		return nil
	}

	raw, ok := s.req.Param(s.sortParam)
	if !ok || raw == "" {
		return nil
	}

	return lo.FilterMap(strings.Split(raw, s.separator), func(token string, _ int) (string, bool) {
		token = strings.TrimSpace(token)
		return token, token != "" && token != "-"
	})
}

// SetAttributeOrders overrides the active order. Unknown attributes are
// skipped and without multi-sort only the first known one is kept.
func (s *Sort) SetAttributeOrders(orders ...AttributeOrder) *Sort {
	if s == nil {
		s = NewSort(nil, nil)
	}

	var active AttributeOrders
	for _, order := range orders {
		if !s.HasAttribute(order.Attribute) || !order.Direction.Valid() {
			continue
		}

		active = active.set(order.Attribute, order.Direction)
		if !s.multiSort {
			break
		}
	}

	s.attributeOrders = active
	s.resolved = true

	return s
}

// FetchOrders expands the active attributes into underlying field orderings.
// A field mentioned by several attributes keeps its first position and the
// direction of the last attribute that mentions it.
func (s *Sort) FetchOrders() Orderings {
	var orders Orderings
	for _, active := range s.FetchAttributesOrder() {
		attr, err := s.attribute(active.Attribute)
		if err != nil {
			continue
		}

		for _, field := range attr.orderings(active.Direction) {
			orders = orders.set(field.Column, field.Direction)
		}
	}

	return orders
}

// AttributeOrder returns the active direction of attribute.
func (s *Sort) AttributeOrder(attribute string) (Direction, bool) {
	return s.FetchAttributesOrder().Get(attribute)
}

// toggledOrders computes the order after a click on attribute: an active
// attribute flips its direction, an inactive one starts with its default.
// With multi-sort the clicked attribute moves to the front.
func (s *Sort) toggledOrders(attribute string) (AttributeOrders, error) {
	attr, err := s.attribute(attribute)
	if err != nil {
		return nil, err
	}

	current := s.FetchAttributesOrder()

	direction, active := current.Get(attribute)
	direction = lo.Ternary(active, direction.Flip(), attr.Default)

	ret := AttributeOrders{{Attribute: attribute, Direction: direction}}
	if s.multiSort {
		ret = append(ret, current.without(attribute)...)
	}

	return ret, nil
}

// CreateSortParam returns the sort parameter value a click on attribute
// should produce.
func (s *Sort) CreateSortParam(attribute string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("sort: %w", ErrMissingDependency)
	}

	orders, err := s.toggledOrders(attribute)
	if err != nil {
		return "", fmt.Errorf("cannot create sort param: %w", err)
	}

	tokens := lo.Map(orders, func(o AttributeOrder, _ int) string {
		return lo.Ternary(o.Direction == DirectionDESC, "-"+o.Attribute, o.Attribute)
	})

	return strings.Join(tokens, s.separator), nil
}

// CreateURL returns the current URL with the sort parameter replaced by the
// toggled value. The page parameter is dropped so the new order starts from
// the first page.
func (s *Sort) CreateURL(attribute string, pagination *Pagination, absolute bool) (string, error) {
	if s == nil || s.router == nil {
		return "", fmt.Errorf("cannot create sort url: router: %w", ErrMissingDependency)
	}

	param, err := s.CreateSortParam(attribute)
	if err != nil {
		return "", err
	}

	params := queryParams(s.req)
	params.Del(pagination.PageParamName())
	params.Set(s.sortParam, param)

	return s.router.Generate(s.currentRoute(), params, absolute)
}

// CreateLink renders a sort anchor for attribute. A "label" entry in options
// replaces the link text; the active direction is added to the class list.
func (s *Sort) CreateLink(attribute string, pagination *Pagination, options Attributes) (string, error) {
	if s == nil {
		return "", fmt.Errorf("sort: %w", ErrMissingDependency)
	}

	attr, err := s.attribute(attribute)
	if err != nil {
		return "", fmt.Errorf("cannot create sort link: %w", err)
	}

	options = options.Clone()
	if direction, ok := s.AttributeOrder(attribute); ok {
		options.AddClass(direction.Marker())
	}

	param, err := s.CreateSortParam(attribute)
	if err != nil {
		return "", err
	}
	options["data"] = map[string]any{"sort": param}

	label, hasLabel := options["label"].(string)
	delete(options, "label")
	if !hasLabel {
		label = escapeHTML(lo.Ternary(attr.Label != "", attr.Label, Humanize(attribute)))
	}

	href, err := s.CreateURL(attribute, pagination, false)
	if err != nil {
		return "", err
	}
	options["href"] = href

	return tag(s.renderer, "a", label, options), nil
}

func (s *Sort) currentRoute() string {
	if s.route != "" || s.req == nil {
		return s.route
	}

	return s.req.Route()
}

func queryParams(req RequestReader) url.Values {
	if req == nil {
		return url.Values{}
	}

	return req.QueryParams()
}
