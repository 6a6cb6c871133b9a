package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/matviet/cdp-importer/internal/clock"
	"github.com/matviet/cdp-importer/internal/config"
	"github.com/matviet/cdp-importer/internal/importrun"
	"github.com/matviet/cdp-importer/internal/lock"
	"github.com/matviet/cdp-importer/internal/logger"
	"github.com/matviet/cdp-importer/internal/message"
	"github.com/matviet/cdp-importer/internal/migration"
	"github.com/matviet/cdp-importer/internal/observability"
	"github.com/matviet/cdp-importer/internal/order"
	"github.com/matviet/cdp-importer/internal/refmap"
	"github.com/matviet/cdp-importer/internal/refresh"
	"github.com/matviet/cdp-importer/internal/watcher"
	"github.com/matviet/cdp-importer/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		lock.Module,

		// Import pipelines
		refmap.Module,
		message.Module,
		order.Module,
		importrun.Module,
		refresh.Module,

		// Long-running intake watcher
		watcher.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
