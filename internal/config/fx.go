package config

import "go.uber.org/fx"

// Module wires application and importer configuration.
var Module = fx.Module("config",
	fx.Provide(
		Load,
		NewImporterConfigHolder,
	),
)
