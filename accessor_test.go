package gridview

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAddress struct {
	City string
}

type testUser struct {
	ID        int
	Name      string
	Address   *testAddress
	Tags      []string
	Meta      map[string]any
	CreatedAt time.Time
	secret    string
}

type testReadable struct {
	values map[string]any
}

func (r testReadable) Attribute(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

func newTestAccessors() *AccessorRegistry {
	reg := RegisterGetters(nil, FieldGetters[testUser]())

	return RegisterGetters(reg, FieldGetters[testAddress]())
}

func Test_FieldGetters(t *testing.T) {
	getters := FieldGetters[testUser]()

	for _, name := range []string{"id", "name", "address", "tags", "meta", "createdAt", "created_at"} {
		assert.Contains(t, getters, name)
	}
	assert.NotContains(t, getters, "secret")

	u := testUser{ID: 7, Name: "Tom"}
	assert.Equal(t, 7, getters["id"](u))
	assert.Equal(t, "Tom", getters["name"](u))

	assert.Empty(t, FieldGetters[string]())
}

func Test_AttributeValue(t *testing.T) {
	reg := RegisterGetters(newTestAccessors(), Getters[testUser]{
		"title": func(u testUser) any { return "Dr. " + u.Name },
	})
	u := testUser{ID: 1, Name: "Ann"}

	tests := []struct {
		name string
		row  any
		attr string
		want any
	}{
		{"registered getter", u, "title", "Dr. Ann"},
		{"field getter", u, "name", "Ann"},
		{"pointer row uses value getters", &u, "id", 1},
		{"map key", map[string]any{"name": "Bob"}, "name", "Bob"},
		{"absent map key is empty", map[string]any{}, "name", ""},
		{"map pointer", &map[string]string{"name": "Eve"}, "name", "Eve"},
		{"readable row", testReadable{values: map[string]any{"name": "Zed"}}, "name", "Zed"},
		{"empty name", u, "", nil},
		{"nil row", nil, "name", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AttributeValue(reg, tt.row, tt.attr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := AttributeValue(reg, u, "missing")
	assert.True(t, errors.Is(err, ErrMissingAccessor), "err=%v", err)

	_, err = AttributeValue(nil, u, "name")
	assert.True(t, errors.Is(err, ErrMissingAccessor), "err=%v", err)
}

func Test_ResolveAttribute(t *testing.T) {
	reg := newTestAccessors()
	u := testUser{
		Name:    "Ann",
		Address: &testAddress{City: "Oslo"},
		Tags:    []string{"x", "y"},
		Meta:    map[string]any{"size": []int{4, 5}},
	}

	tests := []struct {
		name string
		row  any
		path string
		want any
	}{
		{"plain", u, "name", "Ann"},
		{"dotted", u, "address.city", "Oslo"},
		{"indexed slice", u, "tags[1]", "y"},
		{"quoted map key and index", u, "meta['size'][1]", 5},
		{"index out of range", u, "tags[5]", nil},
		{"absent map key", u, "meta[\"other\"]", nil},
		{"nil in the middle", testUser{}, "address.city", nil},
		{"nested maps", map[string]any{"user": map[string]any{"city": "Rome"}}, "user.city", "Rome"},
		{"string index", map[string]any{"code": "abc"}, "code[2]", "c"},
		{"string index counts runes", map[string]any{"code": "héllo"}, "code[2]", "l"},
		{"comma in quoted key", map[string]any{"m": map[string]any{"a,b": 1}}, "m['a,b']", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveAttribute(reg, tt.row, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_ResolveAttribute_Errors(t *testing.T) {
	reg := newTestAccessors()
	u := testUser{Tags: []string{"x"}, Address: &testAddress{}}

	_, err := ResolveAttribute(reg, u, "tags[first]")
	assert.True(t, errors.Is(err, ErrInvalidArgument), "err=%v", err)

	_, err = ResolveAttribute(reg, u, "id[0]")
	assert.True(t, errors.Is(err, ErrInvalidArgument), "err=%v", err)

	_, err = ResolveAttribute(reg, u, "address.zip")
	assert.True(t, errors.Is(err, ErrMissingAccessor), "err=%v", err)
	assert.Contains(t, err.Error(), "address.zip")
}

func Test_isRow(t *testing.T) {
	reg := newTestAccessors()

	assert.True(t, isRow(reg, testUser{}))
	assert.True(t, isRow(reg, &testUser{}))
	assert.True(t, isRow(nil, map[string]any{}))
	assert.True(t, isRow(nil, testReadable{}))
	assert.False(t, isRow(reg, nil))
	assert.False(t, isRow(reg, 42))
	assert.False(t, isRow(reg, "row"))
}
