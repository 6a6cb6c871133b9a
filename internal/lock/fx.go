package lock

import (
	"github.com/matviet/cdp-importer/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// NewClient returns nil when REDIS_ADDR is unset; the Locker degrades to
// a no-op in that case.
func NewClient(cfg config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
}

var Module = fx.Module("lock",
	fx.Provide(
		NewClient,
		NewLocker,
	),
)
