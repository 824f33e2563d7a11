package gridview

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Options holds the grid settings shared by every grid of an application.
type Options struct {
	PageParam       string `yaml:"page_param" json:"page_param"`
	PageSizeParam   string `yaml:"page_size_param" json:"page_size_param"`
	DefaultPageSize int    `yaml:"default_page_size" json:"default_page_size"`
	MaxPageSize     int    `yaml:"max_page_size" json:"max_page_size"`
	SortParam       string `yaml:"sort_param" json:"sort_param"`
	SortSeparator   string `yaml:"sort_separator" json:"sort_separator"`
	MultiSort       bool   `yaml:"multi_sort" json:"multi_sort"`
	EmptyCell       string `yaml:"empty_cell" json:"empty_cell"`
	IDPrefix        string `yaml:"id_prefix" json:"id_prefix"`
	DateFormat      string `yaml:"date_format" json:"date_format"`
	LogLevel        string `yaml:"log_level" json:"log_level"`
}

func DefaultOptions() Options {
	return Options{
		PageParam:       DefaultPageParam,
		PageSizeParam:   DefaultPageSizeParam,
		DefaultPageSize: DefaultPageSize,
		MaxPageSize:     DefaultMaxPageSize,
		SortParam:       DefaultSortParam,
		SortSeparator:   DefaultSortSeparator,
		EmptyCell:       DefaultEmptyCell,
		IDPrefix:        DefaultIDPrefix,
		DateFormat:      DefaultDateFormat,
		LogLevel:        "info",
	}
}

const _optionsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "page_param": {"type": "string", "minLength": 1},
    "page_size_param": {"type": "string", "minLength": 1},
    "default_page_size": {"type": "integer", "minimum": 0},
    "max_page_size": {"type": "integer", "minimum": 0},
    "sort_param": {"type": "string", "minLength": 1},
    "sort_separator": {"type": "string", "minLength": 1},
    "multi_sort": {"type": "boolean"},
    "empty_cell": {"type": "string"},
    "id_prefix": {"type": "string"},
    "date_format": {"type": "string"},
    "log_level": {"enum": ["debug", "info", "warn", "error"]}
  }
}`

// Validate checks the options against the options schema and the page size
// bounds.
func (o Options) Validate() error {
	doc, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("cannot encode options: %w", err)
	}

	result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(_optionsSchema), gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("cannot validate options: %w", err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}

		return fmt.Errorf("invalid options: %s: %w", strings.Join(msgs, "; "), ErrInvalidArgument)
	}

	if o.DefaultPageSize > o.MaxPageSize {
		return fmt.Errorf("default page size %d exceeds max page size %d: %w", o.DefaultPageSize, o.MaxPageSize, ErrInvalidArgument)
	}

	return nil
}

// ParseOptions reads YAML options over the defaults. ${VAR} references are
// expanded from the environment.
func ParseOptions(data []byte) (Options, error) {
	opts := DefaultOptions()

	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &opts); err != nil {
		return Options{}, fmt.Errorf("cannot parse options: %w", err)
	}

	if err := opts.Validate(); err != nil {
		return Options{}, err
	}

	return opts, nil
}

// LoadOptions loads a .env file from the working directory when present and
// parses the options file at path.
func LoadOptions(path string) (Options, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Options{}, fmt.Errorf("cannot load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("cannot read options: %w", err)
	}

	return ParseOptions(data)
}

// ApplyPagination configures p with the pagination options.
func (o Options) ApplyPagination(p *Pagination) error {
	if p == nil {
		return nil
	}

	for _, apply := range []func() error{
		func() error { return p.SetPageParam(o.PageParam) },
		func() error { return p.SetPageSizeParam(o.PageSizeParam) },
		func() error { return p.SetMaxPageSize(o.MaxPageSize) },
		func() error { return p.SetDefaultPageSize(o.DefaultPageSize) },
	} {
		if err := apply(); err != nil {
			return err
		}
	}

	return nil
}

// ApplySort configures s with the sort options.
func (o Options) ApplySort(s *Sort) *Sort {
	return s.WithSortParam(o.SortParam).WithSeparator(o.SortSeparator).WithMultiSort(o.MultiSort)
}

// ApplyGrid configures g with the rendering options.
func (o Options) ApplyGrid(g *Gridview) *Gridview {
	if g.formatter != nil && o.DateFormat != "" {
		g.formatter.DefaultDateFormat = o.DateFormat
	}
	if g.id == "" && g.ids == nil && o.IDPrefix != "" {
		g.ids = NewIDSequence(o.IDPrefix)
	}

	return g.WithEmptyCell(o.EmptyCell)
}

// Apply configures the pagination and the sort of ds, and g when not nil.
func (o Options) Apply(ds DataSource, g *Gridview) error {
	if ds != nil {
		if err := o.ApplyPagination(ds.Pagination()); err != nil {
			return err
		}
		o.ApplySort(ds.Sort())
	}

	if g != nil {
		o.ApplyGrid(g)
	}

	return nil
}

// NewLogger builds a JSON production logger at the options log level.
func (o Options) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(o.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level '%s': %w", o.LogLevel, ErrInvalidArgument)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)

	return cfg.Build()
}
