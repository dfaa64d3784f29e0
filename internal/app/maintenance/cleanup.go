package maintenance

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/sortegrande/linkauth/internal/cache"
	"github.com/sortegrande/linkauth/internal/services"
	"github.com/sortegrande/linkauth/pkg/logger"
)

const (
	defaultTokenSpec = "@hourly"
	defaultCacheSpec = "@hourly"
)

// Cleaner runs background maintenance: purging expired verification tokens
// and stale cache counters. Redemption already deletes expired tokens on
// access; the sweeper bounds table growth for tokens nobody ever clicks.
type Cleaner struct {
	links *services.MagicLinkService
	store *cache.DatabaseStore
	cron  *cron.Cron
	log   *zap.Logger

	tokenSchedule string
	cacheSchedule string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithTokenSchedule overrides the cron specification for token cleanup.
func WithTokenSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.tokenSchedule = spec
		}
	}
}

// WithCacheSchedule overrides the cron specification for cache entry cleanup.
func WithCacheSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.cacheSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner. A nil dependency skips the corresponding job.
func NewCleaner(links *services.MagicLinkService, store *cache.DatabaseStore, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		links:         links,
		store:         store,
		tokenSchedule: defaultTokenSpec,
		cacheSchedule: defaultCacheSpec,
		log:           logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers cleanup jobs with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if c.links == nil && c.store == nil {
		return nil
	}

	if c.links != nil {
		if _, err := c.cron.AddFunc(c.tokenSchedule, func() {
			if removed, err := c.links.PurgeExpired(context.Background()); err != nil {
				c.log.Warn("token cleanup failed", zap.Error(err))
			} else if removed > 0 {
				c.log.Info("expired tokens purged", zap.Int64("removed", removed))
			}
		}); err != nil {
			return err
		}
	}

	if c.store != nil {
		if _, err := c.cron.AddFunc(c.cacheSchedule, func() {
			if _, err := c.store.PurgeExpired(context.Background()); err != nil {
				c.log.Warn("cache cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	c.cron.Start()
	return nil
}

// Stop halts the scheduler and returns a context that completes when
// in-flight jobs finish.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return nil
	}
	return c.cron.Stop()
}

// RunOnce executes all cleanup jobs immediately, aggregating failures.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error
	if c.links != nil {
		if _, err := c.links.PurgeExpired(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if c.store != nil {
		if _, err := c.store.PurgeExpired(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}
