package message

import (
	"github.com/matviet/cdp-importer/internal/message/repository"
	"github.com/matviet/cdp-importer/internal/message/service"
	"go.uber.org/fx"
)

var Module = fx.Module("message.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
