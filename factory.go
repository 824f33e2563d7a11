package gridview

import (
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// GridConfig describes a grid for BuildGrid.
type GridConfig struct {
	// ID is optional; IDs or a fresh sequence provides one otherwise.
	ID  string
	IDs *IDSequence

	Request    RequestReader
	DataSource DataSource

	// Columns are generated from the data source field names when empty.
	Columns []GridColumn
	// ExcludeAttributes are left out of the generated columns.
	ExcludeAttributes []string
	// Actions is the action column appended to generated columns. A default
	// one is used when nil unless DisableActions is set.
	Actions        *ActionColumn
	DisableActions bool

	Filters   bool
	Options   *Options
	Renderer  AttributeRenderer
	Accessors *AccessorRegistry
	Logger    *zap.Logger
}

// BuildGrid builds a Gridview from cfg. Invisible columns are dropped.
func BuildGrid(cfg GridConfig) (*Gridview, error) {
	if cfg.DataSource == nil {
		return nil, fmt.Errorf("cannot build grid: data source: %w", ErrMissingDependency)
	}

	g := NewGridview(cfg.Request, cfg.DataSource).
		WithID(cfg.ID).
		WithIDSequence(cfg.IDs).
		WithFilters(cfg.Filters).
		WithRenderer(cfg.Renderer).
		WithAccessors(cfg.Accessors).
		WithLogger(cfg.Logger)

	if cfg.Options != nil {
		if err := cfg.Options.Apply(cfg.DataSource, g); err != nil {
			return nil, fmt.Errorf("cannot build grid: %w", err)
		}
	}

	columns := cfg.Columns
	if len(columns) == 0 {
		generated, err := defaultColumns(cfg)
		if err != nil {
			return nil, fmt.Errorf("cannot build grid: %w", err)
		}
		columns = generated
	}

	g.WithColumns(lo.Filter(columns, func(c GridColumn, _ int) bool {
		return c != nil && c.IsVisible()
	})...)

	return g, nil
}

func defaultColumns(cfg GridConfig) ([]GridColumn, error) {
	names, err := cfg.DataSource.FieldNames()
	if err != nil {
		return nil, err
	}

	columns := lo.FilterMap(names, func(name string, _ int) (GridColumn, bool) {
		return NewColumn(name), !lo.Contains(cfg.ExcludeAttributes, name)
	})

	if !cfg.DisableActions {
		actions := cfg.Actions
		if actions == nil {
			actions = NewActionColumn()
		}
		columns = append(columns, actions)
	}

	return columns, nil
}
