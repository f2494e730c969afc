// Package lookup resolves external media keys into playable sources.
//
// A placeholder can name its media by key instead of declaring sources. The
// embed player then asks a Lookup, which answers asynchronously on the
// scheduler with either a Resolution or an error value; it never panics.
package lookup

import (
	"errors"
	"fmt"

	"github.com/mwembed/mwembed/media"
	"github.com/mwembed/mwembed/metrics"
	"github.com/mwembed/mwembed/sched"
	"github.com/samber/mo"
)

// ErrNotFound is returned when no resolver knows the key.
var ErrNotFound = errors.New("lookup key not found")

// Resolution is a resolved source with optional metadata.
type Resolution struct {
	Source   *media.Source
	Poster   mo.Option[string]
	Duration mo.Option[float64]
}

// Lookup resolves keys. done runs on the scheduler exactly once.
type Lookup interface {
	Lookup(key string, done func(mo.Result[Resolution]))
}

// Func adapts a synchronous resolver. Results are posted to the scheduler.
type Func struct {
	Sched   sched.Scheduler
	Resolve func(key string) (Resolution, error)
}

// Lookup resolves key and posts the outcome.
func (f Func) Lookup(key string, done func(mo.Result[Resolution])) {
	res, err := f.Resolve(key)
	f.Sched.Post(func() { done(result(res, err)) })
}

// Static resolves keys from a fixed table.
func Static(s sched.Scheduler, entries map[string]Resolution) Lookup {
	return Func{
		Sched: s,
		Resolve: func(key string) (Resolution, error) {
			res, ok := entries[key]
			if !ok {
				return Resolution{}, fmt.Errorf("%w: %s", ErrNotFound, key)
			}
			return res, nil
		},
	}
}

// Chain tries each lookup in order, moving on when one reports ErrNotFound.
type Chain []Lookup

// Lookup resolves key with the first lookup that knows it.
func (c Chain) Lookup(key string, done func(mo.Result[Resolution])) {
	c.from(0, key, done)
}

func (c Chain) from(i int, key string, done func(mo.Result[Resolution])) {
	if i >= len(c) {
		done(mo.Err[Resolution](fmt.Errorf("%w: %s", ErrNotFound, key)))
		return
	}
	c[i].Lookup(key, func(r mo.Result[Resolution]) {
		if r.IsError() && errors.Is(r.Error(), ErrNotFound) {
			c.from(i+1, key, done)
			return
		}
		done(r)
	})
}

func result(res Resolution, err error) mo.Result[Resolution] {
	if err != nil {
		metrics.Lookups.WithLabelValues("failed").Inc()
		return mo.Err[Resolution](err)
	}
	if res.Source == nil || res.Source.URI == "" {
		metrics.Lookups.WithLabelValues("failed").Inc()
		return mo.Err[Resolution](errors.New("lookup returned no source"))
	}
	metrics.Lookups.WithLabelValues("resolved").Inc()
	return mo.Ok(res)
}
