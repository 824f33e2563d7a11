package gridview

import (
	"context"
	"html/template"
	"strings"
	texttemplate "text/template"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// RenderProblem replaces the markup of a grid that failed to render.
const RenderProblem = "Render problem"

// Extension exposes grids to html/template pages.
//
//	tmpl.Funcs(ext.Funcs(r.Context()))
//	{{ gridView .Grid }}
//	{{ gridPagination .Pager }}
type Extension struct {
	logger *zap.Logger
}

func NewExtension(logger *zap.Logger) *Extension {
	return &Extension{logger: lo.Ternary(logger != nil, logger, zap.NewNop())}
}

// Funcs returns the template helpers bound to ctx.
func (e *Extension) Funcs(ctx context.Context) template.FuncMap {
	return template.FuncMap{
		"gridView": func(g *Gridview) template.HTML {
			return e.RenderGrid(ctx, g)
		},
		"gridPagination": func(v *PaginationView) template.HTML {
			return e.RenderPagination(v)
		},
	}
}

// RenderGrid renders g and resolves the deferred date values of its cells.
// Failures are logged and rendered as RenderProblem.
func (e *Extension) RenderGrid(ctx context.Context, g *Gridview) template.HTML {
	if g == nil {
		e.logger.Error("cannot render grid", zap.Error(ErrMissingDependency))
		return RenderProblem
	}

	markup, err := g.Render(ctx)
	if err == nil {
		markup, err = resolveDeferred(markup)
	}
	if err != nil {
		e.logger.Error("cannot render grid", zap.String("id", g.ID()), zap.Error(err))
		return RenderProblem
	}

	// Cell values are escaped by their column format.
	return template.HTML(markup)
}

func (e *Extension) RenderPagination(v *PaginationView) template.HTML {
	if v == nil {
		e.logger.Error("cannot render pagination", zap.Error(ErrMissingDependency))
		return RenderProblem
	}

	markup, err := v.Render()
	if err != nil {
		e.logger.Error("cannot render pagination", zap.Error(err))
		return RenderProblem
	}

	return template.HTML(markup)
}

// resolveDeferred executes the template actions left in the markup by the
// date and template column formats.
func resolveDeferred(markup string) (string, error) {
	if !strings.Contains(markup, "{{") {
		return markup, nil
	}

	tmpl, err := texttemplate.New("grid").
		Funcs(texttemplate.FuncMap{"gridDate": gridDate}).
		Option("missingkey=error").
		Parse(markup)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if err = tmpl.Execute(&sb, nil); err != nil {
		return "", err
	}

	return sb.String(), nil
}
