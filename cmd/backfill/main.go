package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/matviet/cdp-importer/internal/config"
	"github.com/matviet/cdp-importer/internal/logger"
	messagerepo "github.com/matviet/cdp-importer/internal/message/repository"
	messageservice "github.com/matviet/cdp-importer/internal/message/service"
	orderrepo "github.com/matviet/cdp-importer/internal/order/repository"
	orderservice "github.com/matviet/cdp-importer/internal/order/service"
	refmaprepo "github.com/matviet/cdp-importer/internal/refmap/repository"
	"github.com/matviet/cdp-importer/internal/refresh"
	"github.com/matviet/cdp-importer/pkg/db"
	"go.uber.org/zap"
)

// backfill re-imports a single file without the watcher: useful for
// files that were fixed by hand after a failed run, or for loading
// history from outside the intake directories. The file is read in
// place, never claimed or archived.
func main() {
	var (
		file        = flag.String("file", "", "path to the spreadsheet to import")
		pipeline    = flag.String("pipeline", "sms", "pipeline to run: sms or orders")
		skipRefresh = flag.Bool("skip-refresh", false, "do not refresh dashboard caches afterwards")
	)
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: backfill -file <path> [-pipeline sms|orders] [-skip-refresh]")
		os.Exit(2)
	}
	if *pipeline != "sms" && *pipeline != "orders" {
		fmt.Fprintf(os.Stderr, "unknown pipeline %q\n", *pipeline)
		os.Exit(2)
	}

	if err := run(*file, *pipeline, *skipRefresh); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(file, pipeline string, skipRefresh bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.NewFromConfig(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	conn, err := db.Open(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, dbErr := conn.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
	}()

	ctx := context.Background()
	tunable := config.NewStaticImporterConfig(config.DefaultImporterConfig())
	refMaps := refmaprepo.Provide()

	var loaded int
	switch pipeline {
	case "sms":
		svc := messageservice.New(messageservice.Params{
			DB:      conn,
			Log:     log,
			Repo:    messagerepo.Provide(),
			RefMaps: refMaps,
			Tunable: tunable,
		})
		res, err := svc.ImportFile(ctx, file)
		if err != nil {
			return err
		}
		loaded = res.Loaded
	case "orders":
		svc := orderservice.New(orderservice.Params{
			DB:      conn,
			Log:     log,
			Repo:    orderrepo.Provide(),
			RefMaps: refMaps,
			Tunable: tunable,
		})
		res, err := svc.ImportFile(ctx, file)
		if err != nil {
			return err
		}
		loaded = res.Loaded
	}

	if loaded > 0 && !skipRefresh {
		refresh.New(refresh.Params{DB: conn, Log: log}).RefreshAll(ctx)
	}

	log.Info("backfill finished",
		zap.String("file", file),
		zap.String("pipeline", pipeline),
		zap.Int("loaded", loaded),
	)
	return nil
}
