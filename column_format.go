package gridview

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/microcosm-cc/bluemonday"
	"github.com/samber/lo"
)

// Column format names.
const (
	// FormatHTML escapes the value for HTML output. Default for columns.
	FormatHTML = "html"
	// FormatRaw outputs the value unchanged.
	FormatRaw = "raw"
	// FormatTemplate outputs the value as literal text that the template pass
	// leaves untouched.
	FormatTemplate = "template"
	// FormatTwig is an alias of FormatTemplate.
	FormatTwig = "twig"
	// FormatDate formats dates and durations. Takes a date pattern.
	FormatDate = "date"
	// FormatStrip removes every tag and escapes the rest.
	FormatStrip = "strip"
	// FormatPurify keeps a safe subset of user generated HTML.
	FormatPurify = "purify"
	// FormatNumber groups digits: 1234567 becomes "1,234,567".
	FormatNumber = "number"
	// FormatSize renders a byte count. Takes "iec" for binary units.
	FormatSize = "size"
)

// DefaultDateFormat is the date pattern applied to date-like values.
const DefaultDateFormat = "Y-m-d H:i:s"

// Format selects a column format and its optional argument.
type Format struct {
	Name string
	Arg  string
}

func FormatOf(name string) Format {
	return Format{Name: name}
}

// DateFormat returns the date format with the given PHP-style pattern.
func DateFormat(pattern string) Format {
	return Format{Name: FormatDate, Arg: pattern}
}

func (f Format) String() string {
	if f.Arg == "" {
		return f.Name
	}

	return f.Name + ":" + f.Arg
}

// ParseFormat reads a format from configuration: a format name, or a map
// with exactly one entry {name: argument}.
func ParseFormat(v any) (Format, error) {
	switch t := v.(type) {
	case Format:
		return t, nil
	case string:
		if t == "" {
			return Format{}, fmt.Errorf("format name is empty: %w", ErrInvalidArgument)
		}

		return FormatOf(t), nil
	case map[string]string:
		if len(t) != 1 {
			return Format{}, fmt.Errorf("format map must have one entry, got %d: %w", len(t), ErrInvalidArgument)
		}
		for name, arg := range t {
			return Format{Name: name, Arg: arg}, nil
		}
	case map[string]any:
		if len(t) != 1 {
			return Format{}, fmt.Errorf("format map must have one entry, got %d: %w", len(t), ErrInvalidArgument)
		}
		for name, arg := range t {
			return Format{Name: name, Arg: fmt.Sprint(arg)}, nil
		}
	}

	return Format{}, fmt.Errorf("format of type %T: %w", v, ErrInvalidArgument)
}

// ColumnFormat formats cell values.
type ColumnFormat struct {
	// DefaultDateFormat is used for date-like values that were not given a
	// date format.
	DefaultDateFormat string

	strict *bluemonday.Policy
	ugc    *bluemonday.Policy
}

func NewColumnFormat() *ColumnFormat {
	return &ColumnFormat{
		DefaultDateFormat: DefaultDateFormat,
		strict:            bluemonday.StrictPolicy(),
		ugc:               bluemonday.UGCPolicy(),
	}
}

// Format formats value. Only scalars, time.Time, *time.Time and
// time.Duration are accepted. A date-like value is always formatted as a date
// with the default pattern unless a date format was requested.
//
// String and numeric values given the date format are not formatted here:
// the result is a gridDate action resolved by the template pass.
func (f *ColumnFormat) Format(value any, format Format) (string, error) {
	value, isDate, err := normalizeValue(value)
	if err != nil {
		return "", err
	}
	if value == nil {
		return "", nil
	}

	if isDate && format.Name != FormatDate {
		format = DateFormat(f.defaultDateFormat())
	}

	switch format.Name {
	case FormatRaw:
		return stringify(value), nil
	case FormatHTML:
		return escapeHTML(stringify(value)), nil
	case FormatTemplate, FormatTwig:
		return "{{" + strconv.Quote(stringify(value)) + "}}", nil
	case FormatDate:
		return f.formatDate(value, lo.Ternary(format.Arg != "", format.Arg, f.defaultDateFormat()))
	case FormatStrip:
		return neutralizeActions(f.policy(&f.strict, bluemonday.StrictPolicy).Sanitize(stringify(value))), nil
	case FormatPurify:
		return neutralizeActions(f.policy(&f.ugc, bluemonday.UGCPolicy).Sanitize(stringify(value))), nil
	case FormatNumber:
		return formatNumber(value)
	case FormatSize:
		return formatSize(value, format.Arg)
	}

	return "", fmt.Errorf("column format '%s': %w", format.Name, ErrUnsupportedFormat)
}

func (f *ColumnFormat) policy(p **bluemonday.Policy, build func() *bluemonday.Policy) *bluemonday.Policy {
	if *p == nil {
		*p = build()
	}

	return *p
}

func (f *ColumnFormat) formatDate(value any, pattern string) (string, error) {
	switch v := value.(type) {
	case time.Time:
		return formatTime(v, pattern), nil
	case time.Duration:
		return formatDuration(v, pattern), nil
	}

	// Deferred to the template pass.
	return fmt.Sprintf("{{ gridDate %s %s }}", strconv.Quote(stringify(value)), strconv.Quote(pattern)), nil
}

// normalizeValue dereferences pointers and checks the value is formattable.
// The second return value reports a date-like value.
func normalizeValue(value any) (any, bool, error) {
	switch v := value.(type) {
	case nil:
		return nil, false, nil
	case time.Time, time.Duration:
		return v, true, nil
	case *time.Time:
		if v == nil {
			return nil, false, nil
		}

		return *v, true, nil
	case *time.Duration:
		if v == nil {
			return nil, false, nil
		}

		return *v, true, nil
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false, nil
		}

		return normalizeValue(rv.Elem().Interface())
	}

	if !isScalarKind(rv.Kind()) {
		return nil, false, fmt.Errorf(
			"only scalars, time.Time and time.Duration can be formatted, %T given: %w",
			value, ErrInvalidArgument,
		)
	}

	return value, false, nil
}

func isScalarKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}

	return false
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	return fmt.Sprint(value)
}

func formatNumber(value any) (string, error) {
	rv := reflect.ValueOf(value)
	switch {
	case rv.CanInt():
		return humanize.Comma(rv.Int()), nil
	case rv.CanUint():
		return humanize.Comma(int64(rv.Uint())), nil
	case rv.CanFloat():
		return humanize.Commaf(rv.Float()), nil
	case rv.Kind() == reflect.String:
		if i, err := strconv.ParseInt(strings.TrimSpace(rv.String()), 10, 64); err == nil {
			return humanize.Comma(i), nil
		}
		if fl, err := strconv.ParseFloat(strings.TrimSpace(rv.String()), 64); err == nil {
			return humanize.Commaf(fl), nil
		}
	}

	return "", fmt.Errorf("number format of %v: %w", value, ErrInvalidArgument)
}

func formatSize(value any, arg string) (string, error) {
	rv := reflect.ValueOf(value)

	var size uint64
	switch {
	case rv.CanInt() && rv.Int() >= 0:
		size = uint64(rv.Int())
	case rv.CanUint():
		size = rv.Uint()
	case rv.CanFloat() && rv.Float() >= 0:
		size = uint64(rv.Float())
	default:
		return "", fmt.Errorf("size format of %v: %w", value, ErrInvalidArgument)
	}

	if strings.EqualFold(arg, "iec") {
		return humanize.IBytes(size), nil
	}

	return humanize.Bytes(size), nil
}

func neutralizeActions(s string) string {
	return strings.ReplaceAll(s, "{", "&#123;")
}

func (f *ColumnFormat) defaultDateFormat() string {
	return lo.Ternary(f.DefaultDateFormat != "", f.DefaultDateFormat, DefaultDateFormat)
}
