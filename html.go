package gridview

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Attributes is an HTML attribute bag. Values are rendered by an
// AttributeRenderer:
//   - bool: true renders the bare attribute name, false drops it;
//   - "class": string or []string (joined with spaces);
//   - "style": map[string]string rendered as "name:value; ...";
//   - "data": map[string]any expanded into data-<key> attributes;
//   - anything else is stringified and escaped.
type Attributes map[string]any

// Clone returns a shallow copy of a. A nil bag clones into an empty one.
func (a Attributes) Clone() Attributes {
	ret := make(Attributes, len(a))
	for k, v := range a {
		ret[k] = v
	}

	return ret
}

// AddClass appends class to the "class" attribute.
func (a Attributes) AddClass(class string) Attributes {
	if class == "" {
		return a
	}

	switch current := a["class"].(type) {
	case nil:
		a["class"] = class
	case string:
		a["class"] = lo.Ternary(current == "", class, current+" "+class)
	case []string:
		a["class"] = append(append([]string(nil), current...), class)
	default:
		a["class"] = fmt.Sprintf("%v %s", current, class)
	}

	return a
}

// AttributeRenderer turns an attribute bag into an attribute string.
type AttributeRenderer interface {
	Render(attrs Attributes) string
}

// HTMLRenderer is the default AttributeRenderer. Attributes are emitted in
// key order so the output is stable.
type HTMLRenderer struct{}

var _ AttributeRenderer = HTMLRenderer{}

func (HTMLRenderer) Render(attrs Attributes) string {
	keys := lo.Keys(map[string]any(attrs))
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, name := range keys {
		if part := renderAttribute(name, attrs[name]); part != "" {
			parts = append(parts, part)
		}
	}

	return strings.Join(parts, " ")
}

func renderAttribute(name string, value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case bool:
		return lo.Ternary(v, escapeHTML(name), "")
	}

	switch name {
	case "class":
		if classes, ok := value.([]string); ok {
			return quoteAttribute(name, strings.Join(lo.Compact(classes), " "))
		}
	case "style":
		if styles, ok := value.(map[string]string); ok {
			keys := lo.Keys(styles)
			sort.Strings(keys)

			return quoteAttribute(name, strings.Join(lo.Map(keys, func(k string, _ int) string {
				return k + ":" + styles[k]
			}), "; "))
		}
	case "data":
		if data, ok := value.(map[string]any); ok {
			keys := lo.Keys(data)
			sort.Strings(keys)

			return strings.Join(lo.Map(keys, func(k string, _ int) string {
				return quoteAttribute("data-"+k, fmt.Sprint(data[k]))
			}), " ")
		}
	}

	return quoteAttribute(name, fmt.Sprint(value))
}

func quoteAttribute(name, value string) string {
	return fmt.Sprintf(`%s="%s"`, escapeHTML(name), escapeHTML(value))
}

// escapeHTML escapes s for HTML text and attribute values. Opening braces are
// encoded too, so escaped text never forms a template action when the grid
// markup goes through the template pass.
func escapeHTML(s string) string {
	return strings.ReplaceAll(html.EscapeString(s), "{", "&#123;")
}

// tag renders <name attrs>content</name>.
func tag(r AttributeRenderer, name string, content string, attrs Attributes) string {
	return openTag(r, name, attrs) + content + "</" + name + ">"
}

func openTag(r AttributeRenderer, name string, attrs Attributes) string {
	rendered := ""
	if r != nil && len(attrs) > 0 {
		rendered = r.Render(attrs)
	}

	return "<" + name + lo.Ternary(rendered == "", "", " "+rendered) + ">"
}
