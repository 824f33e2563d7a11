package gridview

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"gorm.io/gorm/schema"
)

// Readable is implemented by rows that resolve their own attributes.
type Readable interface {
	// Attribute returns the value of name and whether the row knows it.
	Attribute(name string) (any, bool)
}

// Getters maps attribute names to typed accessors of T.
//
//	gridview.Getters[models.User]{
//		"id":   func(u models.User) any { return u.ID },
//		"name": func(u models.User) any { return u.Name },
//	}
type Getters[T any] map[string]func(T) any

// AccessorRegistry holds the getters of every registered row type. Getters
// are registered once per type and looked up by the dynamic type of a row.
type AccessorRegistry struct {
	mu      sync.RWMutex
	getters map[reflect.Type]map[string]func(any) any
}

func NewAccessorRegistry() *AccessorRegistry {
	return &AccessorRegistry{
		getters: make(map[reflect.Type]map[string]func(any) any),
	}
}

// RegisterGetters adds getters for T. Getters of *T rows fall back to the
// getters of T.
func RegisterGetters[T any](reg *AccessorRegistry, getters Getters[T]) *AccessorRegistry {
	if reg == nil {
		reg = NewAccessorRegistry()
	}

	typ := reflect.TypeOf((*T)(nil)).Elem()

	reg.mu.Lock()
	defer reg.mu.Unlock()

	byName, ok := reg.getters[typ]
	if !ok {
		byName = make(map[string]func(any) any, len(getters))
		reg.getters[typ] = byName
	}

	for name, getter := range getters {
		getter := getter
		byName[name] = func(row any) any {
			return getter(row.(T))
		}
	}

	return reg
}

// FieldGetters builds getters for the exported fields of struct type T,
// promoted fields included. Each field is reachable by its lower camel case
// name ("createdAt") and by its column name ("created_at").
func FieldGetters[T any]() Getters[T] {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	if typ.Kind() != reflect.Struct {
		return Getters[T]{}
	}

	naming := schema.NamingStrategy{}
	getters := make(Getters[T])

	for _, field := range reflect.VisibleFields(typ) {
		if !field.IsExported() || field.Anonymous {
			continue
		}

		index := field.Index
		getter := func(row T) any {
			v, err := reflect.ValueOf(row).FieldByIndexErr(index)
			if err != nil {
				return nil
			}

			return v.Interface()
		}

		getters[lowerFirst(field.Name)] = getter
		getters[naming.ColumnName("", field.Name)] = getter
	}

	return getters
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)

	return string(unicode.ToLower(r)) + s[size:]
}

func (r *AccessorRegistry) lookup(row any, name string) (func(any) any, any, bool) {
	if r == nil || row == nil {
		return nil, nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if getter, ok := r.getters[reflect.TypeOf(row)][name]; ok {
		return getter, row, true
	}

	rv := reflect.ValueOf(row)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		elem := rv.Elem().Interface()
		if getter, ok := r.getters[rv.Elem().Type()][name]; ok {
			return getter, elem, true
		}
	}

	return nil, nil, false
}

// knows reports whether any getter is registered for the type of row.
func (r *AccessorRegistry) knows(row any) bool {
	if r == nil || row == nil {
		return false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	typ := reflect.TypeOf(row)
	if _, ok := r.getters[typ]; ok {
		return true
	}
	if typ.Kind() == reflect.Pointer {
		_, ok := r.getters[typ.Elem()]
		return ok
	}

	return false
}

// AttributeValue returns attribute name of row.
//
// Maps are read by key and yield "" for an absent key. Readable rows resolve
// the name themselves, other rows go through the getters registered in reg.
// An empty name yields nil. A row without an accessor for name fails with
// ErrMissingAccessor.
func AttributeValue(reg *AccessorRegistry, row any, name string) (any, error) {
	if row == nil || name == "" {
		return nil, nil
	}

	if m, ok := asStringMap(row); ok {
		v := m.MapIndex(reflect.ValueOf(name).Convert(m.Type().Key()))
		if !v.IsValid() {
			return "", nil
		}

		return v.Interface(), nil
	}

	if readable, ok := row.(Readable); ok {
		if v, ok := readable.Attribute(name); ok {
			return v, nil
		}
	}

	if getter, target, ok := reg.lookup(row, name); ok {
		return getter(target), nil
	}

	return nil, fmt.Errorf("%T has no accessor for '%s': %w", row, name, ErrMissingAccessor)
}

func asStringMap(row any) (reflect.Value, bool) {
	rv := reflect.ValueOf(row)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Elem().Kind() == reflect.Map {
		rv = rv.Elem()
	}

	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return reflect.Value{}, false
	}

	return rv, true
}

var (
	_segmentBase = regexp.MustCompile(`^(\w+)\[`)
	_segmentKeys = regexp.MustCompile(`\[(.*?)\]`)
)

// ResolveAttribute resolves an attribute path on row: a plain name
// ("price"), a dotted chain ("user.address.city") or indexed segments
// ("tags[0]", "meta['size'][1]"). A nil value met halfway yields nil.
func ResolveAttribute(reg *AccessorRegistry, row any, path string) (any, error) {
	if !strings.Contains(path, ".") {
		return resolveSegment(reg, row, path)
	}

	current := row
	for _, segment := range strings.Split(path, ".") {
		if isNilValue(current) {
			return nil, nil
		}

		var err error
		current, err = resolveSegment(reg, current, strings.TrimSpace(segment))
		if err != nil {
			return nil, fmt.Errorf("attribute path '%s': %w", path, err)
		}
	}

	return current, nil
}

func isNilValue(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}

	return false
}

func resolveSegment(reg *AccessorRegistry, row any, segment string) (any, error) {
	base := _segmentBase.FindStringSubmatch(segment)
	if base == nil {
		return AttributeValue(reg, row, segment)
	}

	current, err := AttributeValue(reg, row, base[1])
	if err != nil {
		return nil, err
	}

	for _, key := range _segmentKeys.FindAllStringSubmatch(segment[len(base[1]):], -1) {
		current, err = indexValue(current, strings.Trim(key[1], `"'`))
		if err != nil {
			return nil, fmt.Errorf("segment '%s': %w", segment, err)
		}
	}

	return current, nil
}

// indexValue reads key from a map, slice or array. Absent keys and
// out-of-range indexes yield nil.
func indexValue(container any, key string) (any, error) {
	if container == nil {
		return nil, nil
	}

	rv := reflect.ValueOf(container)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		mapKey, err := convertKey(key, rv.Type().Key())
		if err != nil {
			return nil, err
		}

		v := rv.MapIndex(mapKey)
		if !v.IsValid() {
			return nil, nil
		}

		return v.Interface(), nil
	case reflect.Slice, reflect.Array, reflect.String:
		i, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("index '%s' of %T: %w", key, container, ErrInvalidArgument)
		}
		if rv.Kind() == reflect.String {
			runes := []rune(rv.String())
			if i < 0 || i >= len(runes) {
				return nil, nil
			}

			return string(runes[i]), nil
		}
		if i < 0 || i >= rv.Len() {
			return nil, nil
		}

		return rv.Index(i).Interface(), nil
	}

	return nil, fmt.Errorf("cannot index %T with '%s': %w", container, key, ErrInvalidArgument)
}

func convertKey(key string, typ reflect.Type) (reflect.Value, error) {
	switch typ.Kind() {
	case reflect.String:
		return reflect.ValueOf(key).Convert(typ), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("map key '%s': %w", key, ErrInvalidArgument)
		}

		return reflect.ValueOf(i).Convert(typ), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("map key '%s': %w", key, ErrInvalidArgument)
		}

		return reflect.ValueOf(u).Convert(typ), nil
	case reflect.Interface:
		if i, err := strconv.Atoi(key); err == nil {
			return reflect.ValueOf(i), nil
		}

		return reflect.ValueOf(key), nil
	}

	return reflect.Value{}, fmt.Errorf("map key type %s: %w", typ, ErrInvalidArgument)
}

// isRow reports whether row can be handed to columns.
func isRow(reg *AccessorRegistry, row any) bool {
	if row == nil {
		return false
	}
	if _, ok := row.(Readable); ok {
		return true
	}
	if reg.knows(row) {
		return true
	}

	rv := reflect.ValueOf(row)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}

	return rv.Kind() == reflect.Struct || rv.Kind() == reflect.Map
}
