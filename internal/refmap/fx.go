package refmap

import (
	"github.com/matviet/cdp-importer/internal/refmap/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("refmap",
	fx.Provide(repository.Provide),
)
