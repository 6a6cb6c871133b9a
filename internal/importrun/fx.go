package importrun

import (
	"github.com/matviet/cdp-importer/internal/importrun/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("importrun",
	fx.Provide(repository.Provide),
)
