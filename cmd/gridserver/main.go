package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-datagrid/components/datagrid"
	"github.com/goliatone/go-datagrid/components/datagrid/commands"
	"github.com/goliatone/go-datagrid/components/datagrid/gorouter"
	"github.com/goliatone/go-datagrid/components/datagrid/httpapi"
	"github.com/goliatone/go-datagrid/components/datagrid/queries"
	"github.com/goliatone/go-datagrid/internal/config"
	"github.com/goliatone/go-datagrid/pkg/activity"
	"github.com/goliatone/go-datagrid/pkg/goadmin"
	"github.com/goliatone/go-datagrid/pkg/restsource"
	"github.com/goliatone/go-datagrid/pkg/sqlitestore"
)

const demoRowCount = 240

var demoViewer = datagrid.ViewerContext{UserID: "agent@example.com", Roles: []string{"agent"}}

type cli struct {
	Config string `short:"c" type:"path" help:"YAML configuration file." env:"GRID_CONFIG"`
}

func main() {
	var args cli
	kctx := kong.Parse(&args,
		kong.Name("gridserver"),
		kong.Description("Serves the rental list views."),
		kong.UsageOnError(),
	)
	kctx.FatalIfErrorf(args.Run())
}

func (c *cli) Run() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	return a.Serve(ctx)
}

func newLogger(cfg *config.Config, out io.Writer) (*slog.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})), nil
}

type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	store      *sqlitestore.Store
	registry   *datagrid.Registry
	service    *datagrid.Service
	controller *datagrid.Controller
	executor   *httpapi.CommandExecutor
	tables     *queries.TableQuery
	tiles      *queries.TilesQuery
	broadcast  *datagrid.BroadcastHook
	admin      *goadmin.Admin
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	store, err := sqlitestore.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger, store: store, broadcast: datagrid.NewBroadcastHook()}
	if err := a.wire(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire(ctx context.Context) error {
	registry, err := a.buildRegistry()
	if err != nil {
		return err
	}
	a.registry = registry

	var columns datagrid.ColumnRegistry = a.store
	if a.cfg.REST.Enabled() {
		client, err := restsource.NewHTTPClient(restsource.HTTPConfig{
			BaseURL: a.cfg.REST.BaseURL,
			APIKey:  a.cfg.REST.APIKey,
		})
		if err != nil {
			return err
		}
		if err := restsource.RegisterSources(registry, client, a.cfg.REST.Modules...); err != nil {
			return err
		}
		columns = restsource.NewColumnRegistry(client)
	}
	if a.cfg.DemoData {
		if err := registerDemoSources(registry, demoRowCount); err != nil {
			return err
		}
	}

	telemetry := datagrid.NewSlogTelemetry(a.logger)
	a.service = datagrid.NewService(datagrid.Options{
		Modules:  registry,
		Columns:  columns,
		Tiles:    a.store,
		Settings: a.store,
		RefreshHook: datagrid.RefreshHooks{
			a.broadcast,
			&datagrid.NotificationsHook{
				Client:  logNotifier{logger: a.logger},
				Reasons: []string{"persist_failed"},
			},
		},
		Telemetry:      telemetry,
		ActivityHooks:  activity.Hooks{activityLogger(a.logger)},
		ActivityConfig: activity.Config{Enabled: true},
		MaxReportRows:  a.cfg.MaxReportRows,
	})

	renderer, err := datagrid.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("gridserver: templates: %w", err)
	}
	a.controller = datagrid.NewController(datagrid.ControllerOptions{
		Service:  a.service,
		Renderer: renderer,
		BasePath: a.cfg.BasePath + "/tables",
		Charts:   datagrid.NewReportChart(datagrid.WithChartCacheTTL(time.Minute)),
	})

	a.executor = &httpapi.CommandExecutor{
		ReorderColumnsCommander: commands.NewReorderColumnsCommand(a.service, telemetry),
		VisibilityCommander:     commands.NewSetColumnVisibilityCommand(a.service, telemetry),
		ResetColumnsCommander:   commands.NewResetColumnsCommand(a.service, telemetry),
		MoveWidgetCommander:     commands.NewMoveWidgetCommand(a.service, telemetry),
		ReorderWidgetsCommander: commands.NewReorderWidgetsCommand(a.service, telemetry),
		ToggleWidgetCommander:   commands.NewToggleWidgetCommand(a.service, telemetry),
		SettingCommander:        commands.NewSaveSettingCommand(a.service, telemetry),
		RefreshCommander:        commands.NewRefreshTableCommand(a.service, telemetry),
	}
	a.tables = queries.NewTableQuery(a.service)
	a.tiles = queries.NewTilesQuery(a.service)

	if a.cfg.DemoData {
		seed := commands.NewSeedViewerCommand(registry, columns, a.store, telemetry)
		if err := seed.Execute(ctx, commands.SeedViewerInput{Viewer: demoViewer}); err != nil {
			return fmt.Errorf("gridserver: seed demo viewer: %w", err)
		}
	}

	admin, err := goadmin.New(goadmin.Config{
		EnableTables: true,
		Service:      a.service,
		MenuBuilder:  loggingMenuBuilder{logger: a.logger},
		Icons:        map[string]string{datagrid.ModuleVehicles: "car", datagrid.ModuleFleetReport: "chart"},
	})
	if err != nil {
		return err
	}
	a.admin = admin
	return admin.Bootstrap(ctx)
}

// buildRegistry registers the built-in modules with the configured page size,
// then applies the manifest on top.
func (a *app) buildRegistry() (*datagrid.Registry, error) {
	registry := datagrid.NewEmptyRegistry()
	for _, def := range datagrid.DefaultModules() {
		if def.DefaultPageSize <= 0 {
			def.DefaultPageSize = a.cfg.DefaultPageSize
		}
		if err := registry.RegisterModule(def); err != nil {
			return nil, err
		}
	}
	if err := registry.ApplyHooks(); err != nil {
		return nil, err
	}
	if a.cfg.ManifestPath != "" {
		if _, err := registry.LoadManifestFile(a.cfg.ManifestPath); err != nil {
			return nil, fmt.Errorf("gridserver: manifest: %w", err)
		}
	}
	return registry, nil
}

// Serve runs the go-router server and, when api_addr is set, the plain
// net/http API until ctx is cancelled.
func (a *app) Serve(ctx context.Context) error {
	var server router.Server[*fiber.App] = router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config{
		Router:     server.Router(),
		Controller: a.controller,
		Modules:    a.registry,
		API:        a.executor,
		Tables:     a.tables,
		Tiles:      a.tiles,
		Broadcast:  a.broadcast,
		BasePath:   a.cfg.BasePath,
		ViewerResolver: func(gorouter.RequestContext) datagrid.ViewerContext {
			return demoViewer
		},
	}); err != nil {
		return fmt.Errorf("gridserver: register routes: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("list views ready", "addr", a.cfg.Addr, "base_path", a.cfg.BasePath)
		return server.Serve(a.cfg.Addr)
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if a.cfg.APIAddr != "" {
		srv := &http.Server{Addr: a.cfg.APIAddr, Handler: a.apiHandler(), ReadHeaderTimeout: 10 * time.Second}
		g.Go(func() error {
			a.logger.Info("api ready", "addr", a.cfg.APIAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}
	return g.Wait()
}

func (a *app) apiHandler() http.Handler {
	h := &httpapi.Handlers{
		API:   a.executor,
		Table: a.tables,
		Viewer: func(r *http.Request) datagrid.ViewerContext {
			if id := r.Header.Get("X-User-ID"); id != "" {
				return datagrid.ViewerContext{UserID: id}
			}
			return demoViewer
		},
	}
	mux := h.Mux("/api")
	mux.HandleFunc("GET /api/ws", a.broadcast.ServeWebSocket)
	return mux
}

func (a *app) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

type loggingMenuBuilder struct {
	logger *slog.Logger
}

func (b loggingMenuBuilder) EnsureMenuItem(_ context.Context, menuCode string, item goadmin.MenuItem) error {
	b.logger.Debug("menu item", "menu", menuCode, "label", item.Label, "route", item.Route, "position", item.Position)
	return nil
}

type logNotifier struct {
	logger *slog.Logger
}

func (n logNotifier) PublishTableEvent(ctx context.Context, event datagrid.TableEvent) error {
	n.logger.WarnContext(ctx, "table event", "module", event.ModuleKey, "user", event.UserID, "reason", event.Reason, "error", event.Error)
	return nil
}

func activityLogger(logger *slog.Logger) activity.Hook {
	return activity.HookFunc(func(ctx context.Context, event activity.Event) error {
		logger.DebugContext(ctx, "activity", "verb", event.Verb, "actor", event.ActorID, "object", event.ObjectType+":"+event.ObjectID)
		return nil
	})
}
