package lookup

import (
	"sync"
	"time"

	"github.com/metafates/gache"
	"github.com/mwembed/mwembed/filesystem"
	"github.com/mwembed/mwembed/key"
	"github.com/mwembed/mwembed/media"
	"github.com/mwembed/mwembed/metrics"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

// cachedResolution is the persisted form of a Resolution.
type cachedResolution struct {
	URI             string   `json:"uri"`
	MimeType        string   `json:"type"`
	URLTimeEncoding bool     `json:"urlTimeEncoding"`
	Poster          *string  `json:"poster,omitempty"`
	Duration        *float64 `json:"duration,omitempty"`
}

// Cached persists successful resolutions of an inner lookup.
type Cached struct {
	inner Lookup
	cache *gache.Cache[map[string]cachedResolution]
	mu    sync.Mutex
}

// NewCached wraps inner with a disk cache stored at path.
func NewCached(inner Lookup, path string, lifetime time.Duration) *Cached {
	return &Cached{
		inner: inner,
		cache: gache.New[map[string]cachedResolution](&gache.Options{
			Path:       path,
			Lifetime:   lifetime,
			FileSystem: &filesystem.GacheFs{},
		}),
	}
}

// Lookup answers from the cache when possible and records fresh results.
func (c *Cached) Lookup(k string, done func(mo.Result[Resolution])) {
	if !viper.GetBool(key.LookupCache) {
		c.inner.Lookup(k, done)
		return
	}

	if hit, ok := c.get(k); ok {
		metrics.Lookups.WithLabelValues("cached").Inc()
		done(mo.Ok(hit))
		return
	}

	c.inner.Lookup(k, func(r mo.Result[Resolution]) {
		if res, err := r.Get(); err == nil {
			_ = c.set(k, res)
		}
		done(r)
	})
}

func (c *Cached) get(k string) (Resolution, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, expired, err := c.cache.Get()
	if err != nil || expired || data == nil {
		return Resolution{}, false
	}

	entry, ok := data[k]
	if !ok {
		return Resolution{}, false
	}

	source := media.NewSource(entry.URI, entry.MimeType)
	source.URLTimeEncoding = entry.URLTimeEncoding
	res := Resolution{Source: source}
	if entry.Poster != nil {
		res.Poster = mo.Some(*entry.Poster)
	}
	if entry.Duration != nil {
		res.Duration = mo.Some(*entry.Duration)
		source.DurationHint = res.Duration
	}
	return res, true
}

func (c *Cached) set(k string, res Resolution) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, expired, err := c.cache.Get()
	if err != nil || expired || data == nil {
		data = make(map[string]cachedResolution)
	}

	entry := cachedResolution{
		URI:             res.Source.URI,
		MimeType:        res.Source.MimeType,
		URLTimeEncoding: res.Source.URLTimeEncoding,
	}
	if poster, ok := res.Poster.Get(); ok {
		entry.Poster = &poster
	}
	if duration, ok := res.Duration.Get(); ok {
		entry.Duration = &duration
	}
	data[k] = entry

	return c.cache.Set(data)
}
