package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ImporterConfig holds the operational tunables of the import pipeline.
// Values are safe to change at runtime; the holder reloads them from
// importer.yml without a restart.
type ImporterConfig struct {
	StabilityWindow  time.Duration `mapstructure:"stabilityWindow"`
	DispatchGrace    time.Duration `mapstructure:"dispatchGrace"`
	HeaderScanRows   int           `mapstructure:"headerScanRows"`
	MessageBatchSize int           `mapstructure:"messageBatchSize"`
	OrderBatchSize   int           `mapstructure:"orderBatchSize"`
}

func DefaultImporterConfig() ImporterConfig {
	return ImporterConfig{
		StabilityWindow:  3 * time.Second,
		DispatchGrace:    2 * time.Second,
		HeaderScanRows:   20,
		MessageBatchSize: 1000,
		OrderBatchSize:   500,
	}
}

type ImporterConfigHolder struct {
	current atomic.Value // holds ImporterConfig
}

func NewImporterConfigHolder() (*ImporterConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("importer")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/matviet")
	v.AddConfigPath(".")

	v.SetEnvPrefix("MATVIET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultImporterConfig()
	v.SetDefault("importer.stabilityWindow", defaults.StabilityWindow)
	v.SetDefault("importer.dispatchGrace", defaults.DispatchGrace)
	v.SetDefault("importer.headerScanRows", defaults.HeaderScanRows)
	v.SetDefault("importer.messageBatchSize", defaults.MessageBatchSize)
	v.SetDefault("importer.orderBatchSize", defaults.OrderBatchSize)

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileFound = false
	}

	var cfg ImporterConfig
	if err := v.UnmarshalKey("importer", &cfg); err != nil {
		return nil, err
	}
	if err := validateImporterConfig(cfg); err != nil {
		return nil, err
	}

	holder := &ImporterConfigHolder{}
	holder.current.Store(cfg)

	if fileFound {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			var updated ImporterConfig
			if err := v.UnmarshalKey("importer", &updated); err != nil {
				log.Printf("[importer-config] reload failed: %v", err)
				return
			}
			if err := validateImporterConfig(updated); err != nil {
				log.Printf("[importer-config] invalid config ignored: %v", err)
				return
			}
			holder.current.Store(updated)
			log.Printf("[importer-config] reloaded from %s", e.Name)
		})
	}

	return holder, nil
}

func (h *ImporterConfigHolder) Get() ImporterConfig {
	return h.current.Load().(ImporterConfig)
}

// NewStaticImporterConfig wraps a fixed config, bypassing viper. Used by
// tests and the one-shot backfill command.
func NewStaticImporterConfig(cfg ImporterConfig) *ImporterConfigHolder {
	holder := &ImporterConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func validateImporterConfig(cfg ImporterConfig) error {
	if cfg.StabilityWindow <= 0 {
		return errors.New("importer.stabilityWindow must be positive")
	}
	if cfg.HeaderScanRows <= 0 {
		return errors.New("importer.headerScanRows must be positive")
	}
	if cfg.MessageBatchSize <= 0 || cfg.OrderBatchSize <= 0 {
		return errors.New("importer batch sizes must be positive")
	}
	return nil
}
