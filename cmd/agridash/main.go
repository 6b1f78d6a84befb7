package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/apex/log"
	"github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/text"

	"github.com/goliatone/go-agridash/components/dashboard"
	"github.com/goliatone/go-agridash/pkg/config"
	dashboardpkg "github.com/goliatone/go-agridash/pkg/dashboard"
	"github.com/goliatone/go-agridash/pkg/datastore"
)

type cli struct {
	Config   string `short:"c" type:"path" env:"AGRIDASH_CONFIG" help:"YAML configuration file."`
	EnvFile  string `name:"env-file" default:".env" help:"dotenv file read before the process environment."`
	Fixtures string `name:"fixtures-file" type:"path" env:"AGRIDASH_FIXTURES" help:"Fixture document overriding the bundled demo data."`

	Serve    serveCmd    `cmd:"" help:"Serve the dashboard over HTTP."`
	Probe    probeCmd    `cmd:"" help:"Check data store connectivity once."`
	Table    tableCmd    `cmd:"" help:"Print a dataset as a terminal table."`
	Export   exportCmd   `cmd:"" help:"Export a dataset to an XLSX workbook."`
	Data     fixturesCmd `cmd:"" name:"fixtures" help:"Inspect fixture documents."`
}

func main() {
	var root cli
	ctx := kong.Parse(&root,
		kong.Name("agridash"),
		kong.Description("Agricultural information system admin dashboard."),
		kong.UsageOnError(),
		kong.BindTo(context.Background(), (*context.Context)(nil)),
		kong.Bind(&root),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// loadConfig reads the configuration and configures apex/log from it.
func (c *cli) loadConfig() (config.Config, error) {
	cfg, err := config.Load(config.Options{File: c.Config, EnvFile: c.EnvFile})
	if err != nil {
		return config.Config{}, err
	}
	if c.Fixtures != "" {
		cfg.Fixtures = c.Fixtures
	}
	if err := configureLogging(os.Stderr, cfg.Log); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func configureLogging(w io.Writer, cfg config.LogConfig) error {
	level, err := log.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return fmt.Errorf("agridash: log level %q: %w", cfg.Level, err)
	}
	if cfg.Format == config.FormatJSON {
		log.SetHandler(json.New(w))
	} else {
		log.SetHandler(text.New(w))
	}
	log.SetLevel(level)
	return nil
}

// openStore builds the data store client for the configured driver.
func openStore(cfg config.StoreConfig) (datastore.Store, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Driver {
	case config.DriverREST:
		client, err := datastore.NewRESTClient(datastore.RESTConfig{BaseURL: cfg.URL, APIKey: cfg.APIKey})
		if err != nil {
			return nil, noop, err
		}
		return client, noop, nil
	case config.DriverMySQL, config.DriverSQLite:
		store, err := datastore.OpenSQL(cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	case config.DriverMock:
		return datastore.NewMockClient(datastore.Succeeded()), noop, nil
	default:
		return nil, noop, fmt.Errorf("%w: %q", config.ErrUnknownDriver, cfg.Driver)
	}
}

// datasetFor returns the dataset for dataType from the fixtures, or from the store when fromStore is set.
func (c *cli) datasetFor(ctx context.Context, dataType string, fromStore bool) (dashboard.Dataset, error) {
	dt, err := dashboard.ParseDataType(dataType)
	if err != nil {
		return dashboard.Dataset{}, err
	}
	if !fromStore {
		fixtures, err := dashboardpkg.LoadFixtures(c.Fixtures)
		if err != nil {
			return dashboard.Dataset{}, err
		}
		return fixtures.Dataset(dt), nil
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return dashboard.Dataset{}, err
	}
	store, closeStore, err := openStore(cfg.Store)
	if err != nil {
		return dashboard.Dataset{}, err
	}
	defer closeStore()
	return dashboard.NewStoreDatasets(store, cfg.Store.RowLimit).Dataset(ctx, dt)
}
