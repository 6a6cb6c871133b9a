package order

import (
	"github.com/matviet/cdp-importer/internal/order/repository"
	"github.com/matviet/cdp-importer/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
