package goadmin

import (
	"context"
	"errors"
	"strings"

	datagridpkg "github.com/goliatone/go-datagrid/pkg/datagrid"
)

// MenuBuilder ensures list view entries exist within the admin navigation.
type MenuBuilder interface {
	EnsureMenuItem(ctx context.Context, menuCode string, item MenuItem) error
}

// MenuItem captures list view link metadata.
type MenuItem struct {
	Label    string
	Route    string
	Icon     string
	Position int
}

// Config wires the table service and feature flags into an admin shell.
type Config struct {
	EnableTables  bool
	MenuCode      string
	MenuBuilder   MenuBuilder
	Service       *datagridpkg.Service
	RoutePrefix   string
	Icons         map[string]string
	StartPosition int
}

// Admin exposes helpers for go-admin style applications.
type Admin struct {
	cfg Config
}

// New creates an Admin helper that can seed one menu entry per list module.
func New(cfg Config) (*Admin, error) {
	if cfg.EnableTables && cfg.Service == nil {
		return nil, errors.New("goadmin: datagrid service is required when enabled")
	}
	if cfg.MenuCode == "" {
		cfg.MenuCode = "admin.main"
	}
	if cfg.RoutePrefix == "" {
		cfg.RoutePrefix = "admin.tables"
	}
	return &Admin{cfg: cfg}, nil
}

// Tables exposes the configured service when enabled.
func (a *Admin) Tables() *datagridpkg.Service {
	if !a.cfg.EnableTables {
		return nil
	}
	return a.cfg.Service
}

// MenuItems lists the entries Bootstrap seeds, ordered by module key.
func (a *Admin) MenuItems() []MenuItem {
	if !a.cfg.EnableTables || a.cfg.Service == nil {
		return nil
	}
	modules := a.cfg.Service.Modules().Modules()
	items := make([]MenuItem, 0, len(modules))
	for i, module := range modules {
		icon := a.cfg.Icons[module.Key]
		if icon == "" {
			icon = "table"
		}
		items = append(items, MenuItem{
			Label:    module.Title,
			Route:    a.cfg.RoutePrefix + "." + strings.ReplaceAll(module.Key, "-", "_"),
			Icon:     icon,
			Position: a.cfg.StartPosition + i,
		})
	}
	return items
}

// Bootstrap seeds menu entries when table support is enabled.
func (a *Admin) Bootstrap(ctx context.Context) error {
	if !a.cfg.EnableTables || a.cfg.MenuBuilder == nil {
		return nil
	}
	var errs []error
	for _, item := range a.MenuItems() {
		if err := a.cfg.MenuBuilder.EnsureMenuItem(ctx, a.cfg.MenuCode, item); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
