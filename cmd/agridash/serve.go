package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-agridash/components/dashboard"
	"github.com/goliatone/go-agridash/components/dashboard/commands"
	"github.com/goliatone/go-agridash/components/dashboard/gorouter"
	"github.com/goliatone/go-agridash/components/dashboard/httpapi"
	"github.com/goliatone/go-agridash/pkg/activity"
	"github.com/goliatone/go-agridash/pkg/activity/usersink"
	"github.com/goliatone/go-agridash/pkg/config"
	dashboardpkg "github.com/goliatone/go-agridash/pkg/dashboard"
	"github.com/goliatone/go-agridash/pkg/goadmin"
)

const shutdownTimeout = 10 * time.Second

type serveCmd struct {
	Addr    string `help:"Listen address, overrides the configuration."`
	APIAddr string `name:"api-addr" help:"Also serve the JSON API and refresh stream on net/http at this address."`
}

func (cmd *serveCmd) Run(ctx context.Context, root *cli) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if cmd.Addr != "" {
		cfg.Server.Addr = cmd.Addr
	}
	if cmd.APIAddr != "" {
		cfg.Server.APIAddr = cmd.APIAddr
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.close()

	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:     server.Router(),
		Controller: app.controller,
		API:        app.executor,
		Broadcast:  app.broadcast,
		BasePath:   cfg.Server.BasePath,
	}); err != nil {
		return fmt.Errorf("agridash: register routes: %w", err)
	}

	errCh := make(chan error, 2)
	go func() {
		errCh <- server.Serve(cfg.Server.Addr)
	}()
	var apiServer *http.Server
	if cfg.Server.APIAddr != "" {
		apiServer = &http.Server{
			Addr:              cfg.Server.APIAddr,
			Handler:           httpapi.NewMux(&httpapi.Handlers{API: app.executor}, app.broadcast, cfg.Server.BasePath),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := apiServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
		log.WithField("addr", cfg.Server.APIAddr).Info("json api ready")
	}
	log.WithFields(log.Fields{
		"addr":   cfg.Server.Addr,
		"base":   cfg.Server.BasePath,
		"driver": cfg.Store.Driver,
	}).Info("dashboard ready")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	var errs error
	if apiServer != nil {
		errs = apiServer.Shutdown(shutdownCtx)
	}
	return errors.Join(errs, server.Shutdown(shutdownCtx))
}

// app holds the wired dashboard collaborators shared by the HTTP transport.
type app struct {
	service    *dashboard.Service
	controller *dashboard.Controller
	executor   *httpapi.CommandExecutor
	broadcast  *dashboard.BroadcastHook
	closers    []func() error
}

func (a *app) close() {
	a.service.StopProbe()
	a.broadcast.Close()
	var errs error
	for _, fn := range a.closers {
		errs = errors.Join(errs, fn())
	}
	if errs != nil {
		log.WithError(errs).Warn("close resources")
	}
}

func buildApp(ctx context.Context, cfg config.Config) (*app, error) {
	fixtures, err := dashboardpkg.LoadFixtures(cfg.Fixtures)
	if err != nil {
		return nil, err
	}
	store, closeStore, err := openStore(cfg.Store)
	if err != nil {
		return nil, err
	}

	telemetry := dashboard.NewLogTelemetry(log.Log)
	broadcast := dashboard.NewBroadcastHook()
	catalog := dashboard.DefaultCatalog()
	registry := dashboard.NewRegistry()
	widgetStore := dashboard.NewInMemoryWidgetStore()
	charts := dashboard.NewEChartsProvider(string(dashboard.ChartBar),
		dashboard.WithChartCache(dashboard.NewChartCache(cfg.Charts.CacheTTL)),
		dashboard.WithChartTheme(cfg.Charts.Theme),
		dashboard.WithChartTranslator(catalog),
		dashboard.WithChartAssetsHost(cfg.Charts.AssetsHost),
	)

	opts := dashboard.Options{
		WidgetStore: widgetStore,
		Providers:   registry,
		RefreshHook: dashboard.RefreshHooks{broadcast, dashboard.LogRefreshHook{Logger: log.Log}},
		Telemetry:   telemetry,
		Translator:  catalog,
		Fixtures:    fixtures,
		Charts:      charts,
		ProbeOptions: dashboard.ProbeOptions{
			Checker:    store,
			Collection: cfg.Store.Collection,
			Limit:      cfg.Store.Limit,
			Timeout:    cfg.Store.Timeout,
		},
		ActivityHooks:  activity.Hooks{logActivityHook()},
		ActivityConfig: activity.Config{Enabled: true},
	}
	if cfg.Store.UseRecords {
		opts.Datasets = dashboard.NewStoreDatasets(store, cfg.Store.RowLimit)
	}
	service := dashboard.NewService(opts)

	seed := commands.NewSeedDashboardCommand(widgetStore, registry, service, telemetry)
	if err := seed.Execute(ctx, commands.SeedDashboardInput{SeedLayout: true}); err != nil {
		_ = closeStore()
		return nil, fmt.Errorf("agridash: seed dashboard: %w", err)
	}

	renderer, err := dashboard.NewTemplateRenderer(cfg.Server.Templates)
	if err != nil {
		_ = closeStore()
		return nil, fmt.Errorf("agridash: templates: %w", err)
	}

	admin, err := goadmin.New(goadmin.Config{
		EnableDashboard: true,
		Route:           strings.TrimRight(cfg.Server.BasePath, "/") + "/dashboard",
		Service:         service,
		MenuBuilder:     goadmin.LogMenuBuilder{Logger: log.Log},
	})
	if err != nil {
		_ = closeStore()
		return nil, err
	}
	if err := admin.Bootstrap(ctx); err != nil {
		_ = closeStore()
		return nil, fmt.Errorf("agridash: admin menu: %w", err)
	}

	service.StartProbe(ctx)
	return &app{
		service: service,
		controller: dashboard.NewController(dashboard.ControllerOptions{
			Service:  service,
			Renderer: renderer,
		}),
		executor:  httpapi.NewCommandExecutor(service, telemetry),
		broadcast: broadcast,
		closers:   []func() error{closeStore},
	}, nil
}

func logActivityHook() activity.Hook {
	return usersink.Hook{Sink: usersink.LogSink{Logger: log.Log}}
}
