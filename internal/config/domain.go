package config

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Domain is the pricing-relevant configuration consumed by the cost
// engine and the recipe service, per §6's `{vat, marginTarget,
// defaultPriceIncludesVat}` contract. It is read from a TOML file and
// hot-reloaded via fsnotify through viper's watch support.
type Domain struct {
	VAT                     float64 `mapstructure:"vat"`
	MarginTarget            int     `mapstructure:"marginTarget"`
	DefaultPriceIncludesVAT bool    `mapstructure:"defaultPriceIncludesVat"`
}

// DomainStore holds the live Domain value plus the subscribers to
// notify on reload, so the cache layer can invalidate margin:*/
// dashboard:* keys the moment the file changes.
type DomainStore struct {
	mu     sync.RWMutex
	value  Domain
	v      *viper.Viper
	log    zerolog.Logger
	onLoad []func(Domain)
}

// LoadDomain reads path (a TOML file) into a DomainStore and starts
// watching it for changes.
func LoadDomain(path string, log zerolog.Logger) (*DomainStore, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetDefault("vat", 0.0)
	v.SetDefault("marginTarget", 0)
	v.SetDefault("defaultPriceIncludesVat", false)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading domain config %s: %w", path, err)
	}

	ds := &DomainStore{v: v, log: log.With().Str("component", "config").Logger()}
	if err := ds.reload(); err != nil {
		return nil, err
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		if err := ds.reload(); err != nil {
			ds.log.Error().Err(err).Msg("failed to reload domain config")
			return
		}
		ds.log.Info().Msg("domain config reloaded")
	})
	v.WatchConfig()

	return ds, nil
}

func (ds *DomainStore) reload() error {
	var d Domain
	if err := ds.v.Unmarshal(&d); err != nil {
		return fmt.Errorf("parsing domain config: %w", err)
	}

	ds.mu.Lock()
	ds.value = d
	ds.mu.Unlock()

	for _, fn := range ds.onLoad {
		fn(d)
	}
	return nil
}

// Get returns the current Domain value.
func (ds *DomainStore) Get() Domain {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.value
}

// OnChange registers a callback invoked after every successful reload,
// used by the cache layer to invalidate margin:*/dashboard:* keys.
func (ds *DomainStore) OnChange(fn func(Domain)) {
	ds.onLoad = append(ds.onLoad, fn)
}
