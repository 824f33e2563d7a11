package gridview

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSort(target string, multiSort bool) *Sort {
	return NewSort(newTestRequest(target), newTestRouter()).
		WithMultiSort(multiSort).
		SetAttributes(
			SortAttr("a"),
			SortAttr("b"),
			SortAttribute{
				Name: "name",
				Asc:  Orderings{{Column: "last_name", Direction: DirectionASC}, {Column: "first_name", Direction: DirectionASC}},
				Desc: Orderings{{Column: "last_name", Direction: DirectionDESC}, {Column: "first_name", Direction: DirectionDESC}},
			},
			SortAttribute{Name: "created", Default: DirectionDESC, Label: "Registered"},
		)
}

func Test_Sort_SetAttributes_Normalizes(t *testing.T) {
	s := newTestSort("/items", false)

	attrs := s.Attributes()
	require.Len(t, attrs, 4)

	assert.Equal(t, Orderings{{Column: "a", Direction: DirectionASC}}, attrs[0].Asc)
	assert.Equal(t, Orderings{{Column: "a", Direction: DirectionDESC}}, attrs[0].Desc)
	assert.Equal(t, DirectionASC, attrs[0].Default)
	assert.Equal(t, DirectionDESC, attrs[3].Default)

	assert.True(t, s.HasAttribute("name"))
	assert.False(t, s.HasAttribute("zzz"))
}

func Test_Sort_FetchAttributesOrder(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		multiSort bool
		want      AttributeOrders
	}{
		{
			name:   "no parameter",
			target: "/items",
			want:   nil,
		},
		{
			name:   "single ascending",
			target: "/items?sort=a",
			want:   AttributeOrders{{Attribute: "a", Direction: DirectionASC}},
		},
		{
			name:   "single descending",
			target: "/items?sort=-a",
			want:   AttributeOrders{{Attribute: "a", Direction: DirectionDESC}},
		},
		{
			name:   "first match wins without multi-sort",
			target: "/items?sort=b,-a",
			want:   AttributeOrders{{Attribute: "b", Direction: DirectionASC}},
		},
		{
			name:      "multi-sort keeps encounter order",
			target:    "/items?sort=b,-a",
			multiSort: true,
			want:      AttributeOrders{{Attribute: "b", Direction: DirectionASC}, {Attribute: "a", Direction: DirectionDESC}},
		},
		{
			name:   "unknown token ignored",
			target: "/items?sort=zzz,name",
			want:   AttributeOrders{{Attribute: "name", Direction: DirectionASC}},
		},
		{
			name:      "repeated token keeps position",
			target:    "/items?sort=a,b,-a",
			multiSort: true,
			want:      AttributeOrders{{Attribute: "a", Direction: DirectionDESC}, {Attribute: "b", Direction: DirectionASC}},
		},
		{
			name:   "blank tokens skipped",
			target: "/items?sort=,-,%20b",
			want:   AttributeOrders{{Attribute: "b", Direction: DirectionASC}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSort(tt.target, tt.multiSort)
			assert.Equal(t, tt.want, s.FetchAttributesOrder())
		})
	}
}

func Test_Sort_DefaultOrder(t *testing.T) {
	s := newTestSort("/items", true).WithDefaultOrder(
		AttributeOrder{Attribute: "zzz", Direction: DirectionASC},
		AttributeOrder{Attribute: "created", Direction: DirectionDESC},
	)

	assert.Equal(t, AttributeOrders{{Attribute: "created", Direction: DirectionDESC}}, s.FetchAttributesOrder())

	// A recognized token replaces the default order.
	s = newTestSort("/items?sort=a", true).WithDefaultOrder(AttributeOrder{Attribute: "b", Direction: DirectionASC})
	assert.Equal(t, AttributeOrders{{Attribute: "a", Direction: DirectionASC}}, s.FetchAttributesOrder())
}

func Test_Sort_FetchOrders(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		multiSort bool
		want      Orderings
	}{
		{
			name:   "attribute expands to several fields",
			target: "/items?sort=-name",
			want: Orderings{
				{Column: "last_name", Direction: DirectionDESC},
				{Column: "first_name", Direction: DirectionDESC},
			},
		},
		{
			name:      "multi-sort concatenates",
			target:    "/items?sort=b,-a",
			multiSort: true,
			want: Orderings{
				{Column: "b", Direction: DirectionASC},
				{Column: "a", Direction: DirectionDESC},
			},
		},
		{
			name:   "nothing active",
			target: "/items",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, newTestSort(tt.target, tt.multiSort).FetchOrders())
		})
	}
}

func Test_Sort_SetAttributeOrders(t *testing.T) {
	s := newTestSort("/items?sort=a", false).SetAttributeOrders(
		AttributeOrder{Attribute: "zzz", Direction: DirectionASC},
		AttributeOrder{Attribute: "b", Direction: DirectionDESC},
		AttributeOrder{Attribute: "a", Direction: DirectionDESC},
	)

	assert.Equal(t, AttributeOrders{{Attribute: "b", Direction: DirectionDESC}}, s.FetchAttributesOrder())

	direction, ok := s.AttributeOrder("b")
	assert.True(t, ok)
	assert.Equal(t, DirectionDESC, direction)

	_, ok = s.AttributeOrder("a")
	assert.False(t, ok)
}

func Test_Sort_CreateSortParam_Toggle(t *testing.T) {
	first, err := newTestSort("/items", false).CreateSortParam("a")
	require.NoError(t, err)
	assert.Equal(t, "a", first)

	second, err := newTestSort("/items?sort="+first, false).CreateSortParam("a")
	require.NoError(t, err)
	assert.Equal(t, "-a", second)

	third, err := newTestSort("/items?sort="+second, false).CreateSortParam("a")
	require.NoError(t, err)
	assert.Equal(t, "a", third)
}

func Test_Sort_CreateSortParam(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		multiSort bool
		attribute string
		want      string
	}{
		{"default descending attribute starts descending", "/items", false, "created", "-created"},
		{"other attribute replaces active one", "/items?sort=-a", false, "b", "b"},
		{"multi-sort moves clicked attribute first", "/items?sort=b,-a", true, "a", "a,b"},
		{"multi-sort prepends inactive attribute", "/items?sort=b", true, "a", "a,b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newTestSort(tt.target, tt.multiSort).CreateSortParam(tt.attribute)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_Sort_CreateSortParam_UnknownAttribute(t *testing.T) {
	_, err := newTestSort("/items", false).CreateSortParam("nmae")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownAttribute))
	assert.Contains(t, err.Error(), "'name'")
}

func Test_Sort_CreateSortParam_CustomSeparator(t *testing.T) {
	s := NewSort(newTestRequest("/items?order=b%3B-a"), newTestRouter()).
		WithSortParam("order").
		WithSeparator(";").
		WithMultiSort(true).
		SetAttributes(SortAttr("a"), SortAttr("b"))

	got, err := s.CreateSortParam("a")
	require.NoError(t, err)
	assert.Equal(t, "a;b", got)
}

func Test_Sort_CreateURL(t *testing.T) {
	s := newTestSort("/items?page=3&sort=a&q=x", false)
	p := NewPagination(newTestRequest("/items?page=3&sort=a&q=x"))

	relative, err := s.CreateURL("a", p, false)
	require.NoError(t, err)
	assert.Equal(t, "/items?q=x&sort=-a", relative)

	absolute, err := s.CreateURL("b", p, true)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/items?q=x&sort=b", absolute)
}

func Test_Sort_CreateURL_MissingRouter(t *testing.T) {
	s := NewSort(newTestRequest("/items"), nil).SetAttributes(SortAttr("a"))

	_, err := s.CreateURL("a", nil, false)
	assert.True(t, errors.Is(err, ErrMissingDependency))
}

func Test_Sort_CreateLink(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		attribute string
		options   Attributes
		want      string
	}{
		{
			name:      "active ascending",
			target:    "/items?sort=a",
			attribute: "a",
			want:      `<a class="asc" data-sort="-a" href="/items?sort=-a">A</a>`,
		},
		{
			name:      "inactive uses attribute label",
			target:    "/items?sort=a",
			attribute: "created",
			want:      `<a data-sort="-created" href="/items?sort=-created">Registered</a>`,
		},
		{
			name:      "label option is used raw",
			target:    "/items?sort=-b",
			attribute: "b",
			options:   Attributes{"label": "<b>B</b>", "class": "sort"},
			want:      `<a class="sort desc" data-sort="b" href="/items?sort=b"><b>B</b></a>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newTestSort(tt.target, false).CreateLink(tt.attribute, nil, tt.options)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_Sort_NilBuilders(t *testing.T) {
	var s *Sort

	s = s.WithSortParam("order")
	require.NotNil(t, s)
	assert.Equal(t, "order", s.SortParamName())
	assert.False(t, s.IsMultiSort())
	assert.Empty(t, s.FetchOrders())
}
