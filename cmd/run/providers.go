package run

import (
	"fmt"
	"time"

	"github.com/sig-0/harvest/config"
	"github.com/sig-0/harvest/ingest"
	"github.com/sig-0/harvest/provider/fxapi"
	"github.com/sig-0/harvest/provider/scrape"
	"github.com/sig-0/harvest/provider/static"
	"github.com/sig-0/harvest/storage/types"
)

const defaultFetchTimeout = time.Second * 30

// buildRegistry populates a fresh provider registry from the run
// configuration
func buildRegistry(cfg *config.Config) (*ingest.Registry, error) {
	registry := ingest.NewRegistry()

	for _, providerCfg := range cfg.Providers {
		factory, err := providerFactory(providerCfg)
		if err != nil {
			return nil, fmt.Errorf(
				"unable to build provider %q: %w",
				providerCfg.ID, err,
			)
		}

		metadata := ingest.Metadata{
			Weight: providerCfg.Weight,
			Class:  providerCfg.Class,
		}

		if err := registry.Register(providerCfg.ID, factory, metadata); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// providerFactory maps a provider config to its builtin factory
func providerFactory(cfg config.ProviderConfig) (ingest.Factory, error) {
	timeout := defaultFetchTimeout

	if cfg.Timeout != "" {
		parsed, err := time.ParseDuration(cfg.Timeout)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("invalid timeout %q", cfg.Timeout)
		}

		timeout = parsed
	}

	switch cfg.Kind {
	case "static":
		records := make([]types.Record, 0, len(cfg.Records))

		for _, record := range cfg.Records {
			records = append(records, types.Record(record))
		}

		return func() (ingest.Provider, error) {
			return static.New(cfg.ID, records), nil
		}, nil
	case "fxapi":
		if cfg.URL == "" {
			return nil, fmt.Errorf("missing url for provider %q", cfg.ID)
		}

		return func() (ingest.Provider, error) {
			return fxapi.New(cfg.ID, cfg.URL, timeout), nil
		}, nil
	case "scrape":
		scrapeCfg := scrape.Config{
			Name:        cfg.ID,
			URL:         cfg.URL,
			RowSelector: cfg.RowSelector,
			Fields:      cfg.Fields,
			Timeout:     timeout,
		}

		return func() (ingest.Provider, error) {
			return scrape.New(scrapeCfg)
		}, nil
	default:
		return nil, fmt.Errorf("unknown provider kind %q", cfg.Kind)
	}
}
