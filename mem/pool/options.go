package pool

import (
	"fmt"

	"github.com/memkit/memkit/internal/vmem"
)

// Option configures a Pool at construction time.
type Option func(*Pool) error

// WithMapper injects the OS mapping shim. The default is vmem.Sys; tests
// substitute a counting or failing mapper here.
func WithMapper(m vmem.Mapper) Option {
	return func(p *Pool) error {
		if m == nil {
			return fmt.Errorf("pool: nil mapper")
		}
		p.mapper = m
		return nil
	}
}

// WithSizeClasses selects the segregated free-list configuration. The
// default is DefaultConfig.
func WithSizeClasses(cfg SizeClassConfig) Option {
	return func(p *Pool) error {
		if cfg.SmallMin < minBlockSize || cfg.SmallIncrement <= 0 ||
			cfg.SmallMax < cfg.SmallMin || cfg.MediumMax < cfg.SmallMax ||
			cfg.GrowthFactor <= 1.0 {
			return fmt.Errorf("pool: invalid size class config %q", cfg.Name)
		}
		p.sizeTable = newSizeClassTable(cfg)
		return nil
	}
}

// WithRegionSize sets the default region mapping size. Requests larger than
// this still get a region of their own, sized to fit. The value is rounded
// up to a whole number of pages; it must be at least one page.
func WithRegionSize(n int) Option {
	return func(p *Pool) error {
		if n <= 0 {
			return fmt.Errorf("pool: region size must be positive, got %d", n)
		}
		p.regionSize = n
		return nil
	}
}

// WithRegionCache keeps up to n emptied default-size regions parked for
// reuse instead of unmapping them immediately. Zero (the default) disables
// the cache, so every emptied region goes straight back to the OS.
func WithRegionCache(n int) Option {
	return func(p *Pool) error {
		if n < 0 {
			return fmt.Errorf("pool: region cache size must be non-negative, got %d", n)
		}
		p.cacheCap = n
		return nil
	}
}

// WithGuards writes an xxhash check word into every allocated block header
// and verifies it on Deallocate and Reallocate, turning silent payload
// overruns into ErrCorrupted.
func WithGuards() Option {
	return func(p *Pool) error {
		p.guards = true
		return nil
	}
}
