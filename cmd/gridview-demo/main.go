package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Alp4ka/gridview"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"uniqueIndex" json:"email"`
	Age       int       `json:"age"`
	City      string    `json:"city"`
	CreatedAt time.Time `json:"created_at"`
}

const page = `<!DOCTYPE html>
<html>
<head><title>Users</title></head>
<body>
{{ gridView .Grid }}
{{ gridPagination .Pager }}
</body>
</html>`

type app struct {
	db      *gorm.DB
	opts    gridview.Options
	logger  *zap.Logger
	routes  *gridview.RouteTable
	schema  *gridview.GormSchema
	tmpl    *template.Template
	getters *gridview.AccessorRegistry
}

func main() {
	opts, err := loadOptions()
	if err != nil {
		log.Fatalf("Failed to load options: %v", err)
	}

	logger, err := opts.NewLogger()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := openDB(os.Getenv("DB_DIALECT"), os.Getenv("DB_DSN"))
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	if err = db.AutoMigrate(&User{}); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	a := &app{
		db:      db,
		opts:    opts,
		logger:  logger,
		routes:  gridview.NewRouteTable(os.Getenv("BASE_URL")).Handle("users", "/users"),
		schema:  gridview.NewGormSchema(db),
		getters: gridview.RegisterGetters(gridview.NewAccessorRegistry(), gridview.FieldGetters[User]()),
	}

	// Funcs are rebound to the request context before every execution.
	a.tmpl = template.Must(template.New("page").
		Funcs(gridview.NewExtension(logger).Funcs(context.Background())).
		Parse(page))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/users", a.usersHandler)
	r.Get("/api/users", a.usersAPIHandler)

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	logger.Info("listening", zap.String("addr", addr))
	if err = http.ListenAndServe(addr, r); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func loadOptions() (gridview.Options, error) {
	path := os.Getenv("GRIDVIEW_CONFIG")
	if path == "" {
		path = "gridview.yaml"
	}

	opts, err := gridview.LoadOptions(path)
	if errors.Is(err, os.ErrNotExist) {
		return gridview.DefaultOptions(), nil
	}

	return opts, err
}

func openDB(dialect, dsn string) (*gorm.DB, error) {
	switch dialect {
	case "", "postgres":
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	case "mysql":
		return gorm.Open(mysql.Open(dsn), &gorm.Config{})
	}

	return nil, fmt.Errorf("unknown dialect '%s'", dialect)
}

func (a *app) dataSource(req gridview.RequestReader) *gridview.QueryDataSource[User] {
	sort := gridview.NewSort(req, a.routes).
		WithLogger(a.logger).
		WithDefaultOrder(gridview.AttributeOrder{Attribute: "id", Direction: gridview.DirectionASC})

	return gridview.NewQueryDataSource[User](gridview.NewGormQuery[User](a.db), gridview.NewPagination(req), sort).
		WithSchema(a.schema).
		WithLogger(a.logger)
}

func (a *app) usersHandler(w http.ResponseWriter, r *http.Request) {
	req := gridview.NewHTTPRequest(r).WithRoute("users")
	ds := a.dataSource(req)

	actions := gridview.NewActionColumn().
		WithHidden(gridview.ActionDelete, gridview.HiddenWhen(func(row any, _ string) bool {
			u, ok := row.(User)
			return ok && u.Age < 18
		}))

	grid, err := gridview.BuildGrid(gridview.GridConfig{
		IDs:               gridview.NewIDSequence(a.opts.IDPrefix),
		Request:           req,
		DataSource:        ds,
		ExcludeAttributes: []string{"email"},
		Actions:           actions,
		Filters:           true,
		Options:           &a.opts,
		Accessors:         a.getters,
		Logger:            a.logger,
	})
	if err != nil {
		a.logger.Error("cannot build grid", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	pager := gridview.NewPaginationView(req, a.routes).SetPagination(ds.Pagination())

	tmpl, err := a.tmpl.Clone()
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	tmpl.Funcs(gridview.NewExtension(a.logger).Funcs(r.Context()))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = tmpl.Execute(w, map[string]any{"Grid": grid, "Pager": pager})
	if err != nil {
		a.logger.Error("cannot execute page template", zap.Error(err))
	}
}

func (a *app) usersAPIHandler(w http.ResponseWriter, r *http.Request) {
	req := gridview.NewHTTPRequest(r)
	ds := a.dataSource(req)
	if err := a.opts.Apply(ds, nil); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := ds.FetchPage(r.Context())
	if err != nil {
		a.logger.Error("cannot fetch users", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(result); err != nil {
		a.logger.Error("cannot encode users", zap.Error(err))
	}
}
