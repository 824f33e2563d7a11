package gridview

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
)

// RequestReader gives grid components read access to the current request.
type RequestReader interface {
	// Param returns the first query value stored under name.
	Param(name string) (string, bool)
	// QueryParams returns a copy of the query parameters. Callers may mutate
	// the copy freely.
	QueryParams() url.Values
	// Route returns the name of the route that served the request.
	Route() string
	// Path returns the request path without the query string.
	Path() string
}

// Router builds URLs for named routes.
type Router interface {
	Generate(route string, params url.Values, absolute bool) (string, error)
}

// HTTPRequest adapts *http.Request to RequestReader. The route name is taken
// from the chi routing context when the request went through a chi router.
type HTTPRequest struct {
	r     *http.Request
	route string
}

var _ RequestReader = (*HTTPRequest)(nil)

func NewHTTPRequest(r *http.Request) *HTTPRequest {
	return &HTTPRequest{r: r}
}

// WithRoute overrides the route name reported by Route.
func (h *HTTPRequest) WithRoute(route string) *HTTPRequest {
	if h == nil {
		h = new(HTTPRequest)
	}

	h.route = route

	return h
}

func (h *HTTPRequest) Param(name string) (string, bool) {
	if h == nil || h.r == nil {
		return "", false
	}

	values, ok := h.r.URL.Query()[name]
	if !ok || len(values) == 0 {
		return "", false
	}

	return values[0], true
}

func (h *HTTPRequest) QueryParams() url.Values {
	if h == nil || h.r == nil {
		return url.Values{}
	}

	return h.r.URL.Query()
}

func (h *HTTPRequest) Route() string {
	if h == nil {
		return ""
	}
	if h.route != "" || h.r == nil {
		return h.route
	}

	if rctx := chi.RouteContext(h.r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}

	return h.r.URL.Path
}

func (h *HTTPRequest) Path() string {
	if h == nil || h.r == nil {
		return ""
	}

	return strings.TrimRight(h.r.URL.Path, "/")
}

var _routePlaceholder = regexp.MustCompile(`\{([A-Za-z0-9_]+)(?::[^}]*)?\}`)

// RouteTable is a Router over chi-style path patterns ("/users/{id}").
// Parameters consumed by placeholders are removed from the query string.
type RouteTable struct {
	baseURL string
	routes  map[string]string
}

var _ Router = (*RouteTable)(nil)

func NewRouteTable(baseURL string) *RouteTable {
	return &RouteTable{
		baseURL: strings.TrimRight(baseURL, "/"),
		routes:  make(map[string]string),
	}
}

// Handle registers pattern under name. Registering a chi pattern under its
// own text lets HTTPRequest.Route results resolve without extra setup.
func (t *RouteTable) Handle(name, pattern string) *RouteTable {
	if t == nil {
		t = NewRouteTable("")
	}

	t.routes[name] = pattern

	return t
}

func (t *RouteTable) Generate(route string, params url.Values, absolute bool) (string, error) {
	if t == nil {
		return "", fmt.Errorf("route table: %w", ErrMissingDependency)
	}

	pattern, ok := t.routes[route]
	if !ok {
		return "", fmt.Errorf("route '%s' is not registered: %w", route, ErrInvalidArgument)
	}

	query := url.Values{}
	for k, v := range params {
		query[k] = append([]string(nil), v...)
	}

	var missing []string
	path := _routePlaceholder.ReplaceAllStringFunc(pattern, func(m string) string {
		name := _routePlaceholder.FindStringSubmatch(m)[1]
		value := query.Get(name)
		if value == "" {
			missing = append(missing, name)
			return m
		}
		query.Del(name)

		return url.PathEscape(value)
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("route '%s' requires %v: %w", route, missing, ErrInvalidArgument)
	}

	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}
	if absolute {
		path = t.baseURL + path
	}

	return path, nil
}
