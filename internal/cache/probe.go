// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ManuGH/vidserve/internal/log"
	"github.com/ManuGH/vidserve/internal/metrics"
)

// Prober reports the playback duration of a file.
type Prober interface {
	Duration(ctx context.Context, path string) (time.Duration, error)
}

// ProbeCache memoises a Prober. Entries are keyed by path, size and
// modification time, so a replaced file is probed again.
type ProbeCache struct {
	store   Store
	prober  Prober
	ttl     time.Duration
	timeout time.Duration
	flights singleflight.Group
}

// ProbeOption configures a ProbeCache.
type ProbeOption func(*ProbeCache)

// WithProbeTimeout bounds each underlying probe. Zero leaves it unbounded.
func WithProbeTimeout(d time.Duration) ProbeOption {
	return func(c *ProbeCache) { c.timeout = d }
}

// NewProbeCache wraps prober with store.
func NewProbeCache(store Store, prober Prober, ttl time.Duration, opts ...ProbeOption) *ProbeCache {
	c := &ProbeCache{store: store, prober: prober, ttl: ttl}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Duration implements Prober.
func (c *ProbeCache) Duration(ctx context.Context, path string) (time.Duration, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	key := fingerprint(path, info)

	d, ok, err := c.store.Get(ctx, key)
	switch {
	case err != nil:
		metrics.IncProbeCache("error")
		log.FromContext(ctx).Debug().Err(err).Str(log.FieldPath, path).Msg("probe cache lookup failed")
	case ok:
		metrics.IncProbeCache("hit")
		return d, nil
	default:
		metrics.IncProbeCache("miss")
	}

	// Shared by every collapsed caller; detached from the first caller's cancellation.
	ch := c.flights.DoChan(key, func() (any, error) {
		return c.probe(context.WithoutCancel(ctx), key, path)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return 0, res.Err
		}
		return res.Val.(time.Duration), nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (c *ProbeCache) probe(ctx context.Context, key, path string) (time.Duration, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	d, err := c.prober.Duration(ctx, path)
	if err != nil {
		return 0, err
	}
	if err := c.store.Set(ctx, key, d, c.ttl); err != nil {
		log.FromContext(ctx).Debug().Err(err).Str(log.FieldPath, path).Msg("probe cache store failed")
	}
	return d, nil
}

func fingerprint(path string, info os.FileInfo) string {
	return path + "|" + strconv.FormatInt(info.Size(), 10) + "|" + strconv.FormatInt(info.ModTime().UnixNano(), 10)
}
