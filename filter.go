package gridview

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	qs "github.com/derekstavis/go-qs"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Filter input types.
const (
	FilterTypeText     = "text"
	FilterTypeNumber   = "number"
	FilterTypeDate     = "date"
	FilterTypeSelect   = "select"
	FilterTypeCheckbox = "checkbox"
)

// Filter field options.
const (
	FilterOptionLabel       = "label"
	FilterOptionPlaceholder = "placeholder"
	FilterOptionChoices     = "choices"
	FilterOptionOperator    = "operator"
	FilterOptionColumn      = "column"
	FilterOptionAttributes  = "attr"
)

// FormBuilder collects filter inputs.
type FormBuilder interface {
	AddField(name, fieldType string, options map[string]any)
}

type filterField struct {
	name      string
	fieldType string
	options   map[string]any
}

func (f filterField) option(name string) string {
	v, _ := f.options[name].(string)
	return v
}

// FilterForm is the filter form of one grid. Its values are read from nested
// query parameters named after the grid: "?grid_0[name]=jo".
type FilterForm struct {
	name     string
	renderer AttributeRenderer
	logger   *zap.Logger

	fields []filterField
	index  map[string]int
	values map[string]string
}

var _ FormBuilder = (*FilterForm)(nil)

func NewFilterForm(name string) *FilterForm {
	return &FilterForm{
		name:     name,
		renderer: HTMLRenderer{},
		logger:   zap.NewNop(),
		index:    make(map[string]int),
		values:   make(map[string]string),
	}
}

func (f *FilterForm) WithRenderer(renderer AttributeRenderer) *FilterForm {
	f.renderer = lo.Ternary[AttributeRenderer](renderer != nil, renderer, HTMLRenderer{})
	return f
}

func (f *FilterForm) WithLogger(logger *zap.Logger) *FilterForm {
	f.logger = lo.Ternary(logger != nil, logger, zap.NewNop())
	return f
}

// Name is the query parameter the values are nested under.
func (f *FilterForm) Name() string {
	return f.name
}

// FormID is the id of the form element the inputs belong to.
func (f *FilterForm) FormID() string {
	return f.name + "_filter"
}

// AddField registers a filter input. Adding a field twice replaces it.
func (f *FilterForm) AddField(name, fieldType string, options map[string]any) {
	field := filterField{
		name:      name,
		fieldType: lo.Ternary(fieldType != "", fieldType, FilterTypeText),
		options:   lo.Ternary(options != nil, options, map[string]any{}),
	}

	if i, ok := f.index[name]; ok {
		f.fields[i] = field
		return
	}

	f.index[name] = len(f.fields)
	f.fields = append(f.fields, field)
}

func (f *FilterForm) HasField(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Fields returns the field names in registration order.
func (f *FilterForm) Fields() []string {
	return lo.Map(f.fields, func(field filterField, _ int) string {
		return field.name
	})
}

// Bind reads the submitted values of the form from the request.
func (f *FilterForm) Bind(req RequestReader) error {
	if req == nil {
		return nil
	}

	parsed, err := qs.Unmarshal(req.QueryParams().Encode())
	if err != nil {
		return fmt.Errorf("cannot parse filter parameters: %w", err)
	}

	group, ok := parsed[f.name].(map[string]interface{})
	if !ok {
		return nil
	}

	for name, raw := range group {
		if !f.HasField(name) {
			f.logger.Warn("ignoring unknown filter field", zap.String("grid", f.name), zap.String("field", name))
			continue
		}

		switch v := raw.(type) {
		case string:
			f.values[name] = strings.TrimSpace(v)
		case []interface{}:
			if len(v) > 0 {
				f.values[name] = strings.TrimSpace(fmt.Sprint(v[len(v)-1]))
			}
		default:
			f.logger.Warn("ignoring nested filter value", zap.String("grid", f.name), zap.String("field", name))
		}
	}

	return nil
}

// Value returns the bound value of a field.
func (f *FilterForm) Value(name string) string {
	return f.values[name]
}

// SetValue binds a value without a request.
func (f *FilterForm) SetValue(name, value string) error {
	if !f.HasField(name) {
		return fmt.Errorf("filter field '%s': %w", name, ErrUnknownAttribute)
	}

	f.values[name] = value

	return nil
}

// Conditions turns the non-empty bound values into filter conditions: text
// fields match with LIKE, other fields with "=". The "operator" option
// overrides the operator and the "column" option the filtered column.
func (f *FilterForm) Conditions() (Conditions, error) {
	var ret Conditions

	for _, field := range f.fields {
		value, ok := f.values[field.name]
		if !ok || value == "" {
			continue
		}

		operator := lo.Ternary(field.fieldType == FilterTypeText, OperatorLike, OperatorEq)
		if raw := field.option(FilterOptionOperator); raw != "" {
			parsed, err := ParseOperator(raw)
			if err != nil {
				return nil, fmt.Errorf("filter field '%s': %w", field.name, err)
			}
			operator = parsed
		}

		ret = append(ret, Condition{
			Column:   lo.Ternary(field.option(FilterOptionColumn) != "", field.option(FilterOptionColumn), field.name),
			Operator: operator,
			Value:    filterValue(field.fieldType, operator, value),
		})
	}

	return ret, nil
}

var _likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func filterValue(fieldType string, operator Operator, value string) any {
	if operator == OperatorLike {
		return "%" + _likeEscaper.Replace(value) + "%"
	}

	switch fieldType {
	case FilterTypeNumber:
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
		if fl, err := strconv.ParseFloat(value, 64); err == nil {
			return fl
		}
	case FilterTypeCheckbox:
		return value == "1" || value == "true" || value == "on"
	}

	return value
}

// Widget renders the input of a field.
func (f *FilterForm) Widget(name string) (string, error) {
	i, ok := f.index[name]
	if !ok {
		return "", fmt.Errorf("filter field '%s': %w", name, ErrUnknownAttribute)
	}
	field := f.fields[i]

	attrs := Attributes{
		"id":    f.name + "_" + strings.NewReplacer(".", "_", "[", "_", "]", "").Replace(name),
		"name":  f.name + "[" + name + "]",
		"form":  f.FormID(),
		"class": "form-control",
	}
	if extra, ok := field.options[FilterOptionAttributes].(Attributes); ok {
		attrs = mergeAttributes(attrs, extra)
	}
	if label := field.option(FilterOptionLabel); label != "" {
		attrs["aria-label"] = label
	}

	value := f.values[name]

	switch field.fieldType {
	case FilterTypeSelect:
		return f.selectWidget(field, attrs, value)
	case FilterTypeCheckbox:
		attrs["type"] = "checkbox"
		attrs["value"] = "1"
		attrs["checked"] = value != "" && value != "0"
		attrs["class"] = "form-check-input"
	default:
		attrs["type"] = field.fieldType
		attrs["value"] = value
		if placeholder := field.option(FilterOptionPlaceholder); placeholder != "" {
			attrs["placeholder"] = placeholder
		}
	}

	return openTag(f.renderer, "input", attrs), nil
}

func (f *FilterForm) selectWidget(field filterField, attrs Attributes, value string) (string, error) {
	values, labels, err := choices(field.options[FilterOptionChoices])
	if err != nil {
		return "", fmt.Errorf("filter field '%s': %w", field.name, err)
	}

	options := []string{
		tag(f.renderer, "option", escapeHTML(field.option(FilterOptionPlaceholder)), Attributes{"value": ""}),
	}
	for i, v := range values {
		options = append(options, tag(f.renderer, "option", escapeHTML(labels[i]), Attributes{
			"value":    v,
			"selected": v == value,
		}))
	}

	return tag(f.renderer, "select", strings.Join(options, ""), attrs), nil
}

// choices reads select choices: a []string of values, or a map of value to
// label ordered by value.
func choices(raw any) ([]string, []string, error) {
	switch c := raw.(type) {
	case nil:
		return nil, nil, nil
	case []string:
		return c, c, nil
	case map[string]string:
		values := lo.Keys(c)
		sort.Strings(values)

		return values, lo.Map(values, func(v string, _ int) string { return c[v] }), nil
	}

	return nil, nil, fmt.Errorf("choices of type %T: %w", raw, ErrInvalidArgument)
}

// RenderForm renders the form element the inputs submit through. Parameters
// in keep are carried over as hidden inputs.
func (f *FilterForm) RenderForm(action string, keep url.Values) string {
	names := lo.Keys(map[string][]string(keep))
	sort.Strings(names)

	hidden := make([]string, 0, len(names))
	for _, name := range names {
		for _, v := range keep[name] {
			hidden = append(hidden, openTag(f.renderer, "input", Attributes{
				"type":  "hidden",
				"name":  name,
				"value": v,
			}))
		}
	}

	return tag(f.renderer, "form", strings.Join(hidden, ""), Attributes{
		"id":     f.FormID(),
		"method": "get",
		"action": action,
	})
}

// ownsParam reports whether a query parameter belongs to the form.
func (f *FilterForm) ownsParam(name string) bool {
	return strings.HasPrefix(name, f.name+"[")
}
