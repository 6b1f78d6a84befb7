package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/apex/log"

	"github.com/goliatone/go-agridash/components/dashboard"
	"github.com/goliatone/go-agridash/components/dashboard/httpapi"
)

var errProbeFailed = errors.New("agridash: data store unreachable")

type probeCmd struct{}

func (cmd *probeCmd) Run(ctx context.Context, root *cli) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	store, closeStore, err := openStore(cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()

	status := dashboard.RunProbe(ctx, dashboard.ProbeOptions{
		Checker:    store,
		Collection: cfg.Store.Collection,
		Limit:      cfg.Store.Limit,
		Timeout:    cfg.Store.Timeout,
		Telemetry:  dashboard.NewLogTelemetry(log.Log),
	})
	fmt.Fprintln(os.Stdout, renderProbeStatus(status))
	if status.State != dashboard.ProbeConnected {
		return errProbeFailed
	}
	return nil
}

type tableCmd struct {
	DataType  string `arg:"" optional:"" default:"crops" enum:"crops,livestock,market,weather" help:"Dataset to print."`
	FromStore bool   `name:"from-store" help:"Read rows from the configured data store instead of the fixtures."`
	Plain     bool   `help:"Disable colors."`
}

func (cmd *tableCmd) Run(ctx context.Context, root *cli) error {
	ds, err := root.datasetFor(ctx, cmd.DataType, cmd.FromStore)
	if err != nil {
		return err
	}
	out := renderTable(dashboard.BuildTable(ds), !cmd.Plain)
	if out == "" {
		fmt.Fprintln(os.Stdout, "no records")
		return nil
	}
	fmt.Fprintln(os.Stdout, out)
	return nil
}

type exportCmd struct {
	DataType  string `arg:"" optional:"" default:"crops" enum:"crops,livestock,market,weather" help:"Dataset to export."`
	Out       string `short:"o" type:"path" help:"Output file, defaults to <data-type>-data.xlsx."`
	FromStore bool   `name:"from-store" help:"Read rows from the configured data store instead of the fixtures."`
}

func (cmd *exportCmd) Run(ctx context.Context, root *cli) error {
	ds, err := root.datasetFor(ctx, cmd.DataType, cmd.FromStore)
	if err != nil {
		return err
	}
	path := cmd.Out
	if path == "" {
		path = httpapi.ExportFilename(cmd.DataType)
	}
	f, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("agridash: create %s: %w", path, err)
	}
	if err := dashboard.ExportXLSX(f, ds); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("agridash: close %s: %w", path, err)
	}
	fmt.Fprintf(os.Stdout, "✓ Exported %d %s records to %s\n", ds.Len(), ds.Type, path)
	return nil
}

type fixturesCmd struct {
	Validate validateCmd `cmd:"" help:"Validate a fixture document and summarize its contents."`
}

type validateCmd struct {
	Path string `arg:"" type:"existingfile" help:"Fixture document to validate."`
}

func (cmd *validateCmd) Run(_ context.Context, _ *cli) error {
	fixtures, err := dashboard.LoadFixturesFile(cmd.Path)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, renderFixturesSummary(fixtures))
	return nil
}
