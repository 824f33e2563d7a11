package gridview

import (
	"fmt"
	"strconv"
	"strings"
)

// PaginationView renders the page buttons of a Pagination as a list of
// links.
type PaginationView struct {
	req        RequestReader
	router     Router
	renderer   AttributeRenderer
	pagination *Pagination

	Options       Attributes
	LinkOptions   Attributes
	ButtonOptions Attributes

	FirstPageCSSClass    string
	LastPageCSSClass     string
	PrevPageCSSClass     string
	NextPageCSSClass     string
	ActivePageCSSClass   string
	DisabledPageCSSClass string

	// MaxButtonCount is the size of the numbered window.
	MaxButtonCount    int
	ShowFirstPageLink bool
	ShowLastPageLink  bool
	ShowPrevPageLink  bool
	ShowNextPageLink  bool

	// Labels are inserted as-is and may contain HTML entities.
	FirstPageLabel string
	LastPageLabel  string
	PrevPageLabel  string
	NextPageLabel  string

	// AbsoluteURLs makes button links absolute.
	AbsoluteURLs bool
}

func NewPaginationView(req RequestReader, router Router) *PaginationView {
	return &PaginationView{
		req:                  req,
		router:               router,
		renderer:             HTMLRenderer{},
		Options:              Attributes{"class": "pagination"},
		LinkOptions:          Attributes{"class": "page-link"},
		ButtonOptions:        Attributes{"class": "page-item"},
		FirstPageCSSClass:    "first",
		LastPageCSSClass:     "last",
		PrevPageCSSClass:     "prev",
		NextPageCSSClass:     "next",
		ActivePageCSSClass:   "active",
		DisabledPageCSSClass: "disabled",
		MaxButtonCount:       10,
		ShowPrevPageLink:     true,
		ShowNextPageLink:     true,
		FirstPageLabel:       "&laquo;",
		LastPageLabel:        "&raquo;",
		PrevPageLabel:        "&lsaquo;",
		NextPageLabel:        "&rsaquo;",
	}
}

func (v *PaginationView) SetPagination(p *Pagination) *PaginationView {
	v.pagination = p
	return v
}

func (v *PaginationView) Pagination() *Pagination {
	return v.pagination
}

func (v *PaginationView) WithRenderer(renderer AttributeRenderer) *PaginationView {
	v.renderer = renderer
	return v
}

// SetOptions merges options into the list attributes.
func (v *PaginationView) SetOptions(options Attributes) *PaginationView {
	v.Options = mergeAttributes(v.Options, options)
	return v
}

// SetLinkOptions merges options into the anchor attributes.
func (v *PaginationView) SetLinkOptions(options Attributes) *PaginationView {
	v.LinkOptions = mergeAttributes(v.LinkOptions, options)
	return v
}

// Render returns the page buttons, or an empty string when there is at most
// one page.
func (v *PaginationView) Render() (string, error) {
	if v.pagination == nil {
		return "", fmt.Errorf("cannot render pagination: pagination: %w", ErrMissingDependency)
	}
	if v.router == nil {
		return "", fmt.Errorf("cannot render pagination: router: %w", ErrMissingDependency)
	}

	pageCount := v.pagination.PageCount()
	if pageCount < 2 {
		return "", nil
	}

	currentPage := v.pagination.CurrentPage()
	buttons := make([]string, 0, v.MaxButtonCount+4)

	add := func(label string, page int, class string, disabled, active bool) error {
		button, err := v.pageButton(label, page, class, disabled, active)
		if err != nil {
			return err
		}
		buttons = append(buttons, button)

		return nil
	}

	if v.ShowFirstPageLink {
		if err := add(v.FirstPageLabel, 0, v.FirstPageCSSClass, currentPage <= 0, false); err != nil {
			return "", err
		}
	}
	if v.ShowPrevPageLink {
		if err := add(v.PrevPageLabel, max(0, currentPage-1), v.PrevPageCSSClass, currentPage <= 0, false); err != nil {
			return "", err
		}
	}

	begin, end := v.pageRange()
	for i := begin; i <= end; i++ {
		if err := add(strconv.Itoa(i+1), i, "", false, i == currentPage); err != nil {
			return "", err
		}
	}

	if v.ShowNextPageLink {
		if err := add(v.NextPageLabel, min(currentPage+1, pageCount-1), v.NextPageCSSClass, currentPage >= pageCount-1, false); err != nil {
			return "", err
		}
	}
	if v.ShowLastPageLink {
		if err := add(v.LastPageLabel, pageCount-1, v.LastPageCSSClass, currentPage >= pageCount-1, false); err != nil {
			return "", err
		}
	}

	return tag(v.renderer, "ul", strings.Join(buttons, "\n"), v.Options), nil
}

func (v *PaginationView) pageButton(label string, page int, class string, disabled, active bool) (string, error) {
	buttonOptions := v.ButtonOptions.Clone()
	buttonOptions.AddClass(class)
	if active {
		buttonOptions.AddClass(v.ActivePageCSSClass)
	}
	if disabled {
		buttonOptions.AddClass(v.DisabledPageCSSClass)
	}

	linkOptions := v.LinkOptions.Clone()
	if active {
		linkOptions["data-page"] = page
	}

	href, err := v.CreateButtonLink(page, v.pagination.PageSize(), v.AbsoluteURLs)
	if err != nil {
		return "", err
	}
	linkOptions["href"] = href

	return tag(v.renderer, "li", tag(v.renderer, "a", label, linkOptions), buttonOptions), nil
}

// CreateButtonLink returns the URL of page pageIndex (0-based). The page
// parameter is omitted for the first page and the page size parameter is
// omitted when it equals the default page size.
func (v *PaginationView) CreateButtonLink(pageIndex int, pageSize int, absolute bool) (string, error) {
	if v.pagination == nil {
		return "", fmt.Errorf("cannot create page link: pagination: %w", ErrMissingDependency)
	}
	if v.router == nil {
		return "", fmt.Errorf("cannot create page link: router: %w", ErrMissingDependency)
	}

	params := queryParams(v.req)

	pageParam := v.pagination.PageParamName()
	if pageIndex > 0 {
		params.Set(pageParam, strconv.Itoa(pageIndex+1))
	} else {
		params.Del(pageParam)
	}

	pageSizeParam := v.pagination.PageSizeParamName()
	if pageSize != v.pagination.DefaultPageSize() {
		params.Set(pageSizeParam, strconv.Itoa(pageSize))
	} else {
		params.Del(pageSizeParam)
	}

	return v.router.Generate(v.pagination.Route(), params, absolute)
}

// pageRange returns the first and last page index of the numbered window.
// The window is centered on the current page and shifted left when it would
// run past the last page.
func (v *PaginationView) pageRange() (int, int) {
	pageCount := v.pagination.PageCount()
	buttons := max(v.MaxButtonCount, 1)

	begin := max(0, v.pagination.CurrentPage()-buttons/2)
	end := begin + buttons - 1
	if end >= pageCount {
		end = pageCount - 1
		begin = max(0, end-buttons+1)
	}

	return begin, end
}

func mergeAttributes(base, override Attributes) Attributes {
	ret := base.Clone()
	for k, v := range override {
		ret[k] = v
	}

	return ret
}
