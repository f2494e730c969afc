package player

import (
	"errors"
	"fmt"

	"github.com/mwembed/mwembed/backend"
	"github.com/mwembed/mwembed/events"
	"github.com/mwembed/mwembed/lookup"
	"github.com/mwembed/mwembed/media"
	"github.com/mwembed/mwembed/npt"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// candidate is one source and a backend able to play it.
type candidate struct {
	source     *media.Source
	descriptor backend.Descriptor
}

// resolveSources asks the lookup for sources when the instance declares a key and no local sources.
func (p *EmbedPlayer) resolveSources() {
	p.setState(ResolvingSources)

	if p.media.Len() > 0 || p.attrs.LookupKey == "" || p.lookup == nil {
		p.selectBackend()
		return
	}

	epoch := p.epoch
	lookupKey := p.attrs.LookupKey
	p.log.WithField("key", lookupKey).Debug("looking up sources")

	p.lookup.Lookup(lookupKey, func(r mo.Result[lookup.Resolution]) {
		if epoch != p.epoch {
			p.log.WithField("key", lookupKey).Debug("discarding stale lookup")
			return
		}

		res, err := r.Get()
		if err != nil {
			p.fail(fmt.Errorf("%w: %w: %w", ErrNoPlayableSource, ErrSourceLookup, err))
			return
		}

		if p.cfg.urlTimeEncoding == URLTimeAlways {
			res.Source.URLTimeEncoding = true
		}
		p.media.TryAddSource(res.Source)
		if poster, ok := res.Poster.Get(); ok && p.attrs.Poster == "" {
			p.UpdatePosterSrc(poster)
		}
		if d, ok := res.Duration.Get(); ok && res.Source.DurationHint.IsAbsent() {
			res.Source.DurationHint = mo.Some(d)
		}
		p.selectBackend()
	})
}

// selectBackend builds the candidate list and loads the first candidate.
func (p *EmbedPlayer) selectBackend() {
	p.setState(SelectingBackend)

	first, ok := p.media.AutoSelectSource(p.registry).Get()
	if !ok {
		p.fail(fmt.Errorf("%w: none of %v", ErrNoPlayableSource, p.media.MimeTypes()))
		return
	}
	p.log.WithField("source", first.String()).Debug("selected source")

	p.candidates = lo.FlatMap(p.media.Playable(p.registry), func(s *media.Source, _ int) []candidate {
		return lo.Map(p.registry.For(s.MimeType), func(d backend.Descriptor, _ int) candidate {
			return candidate{source: s, descriptor: d}
		})
	})
	p.tryCandidate(0)
}

// tryCandidate loads candidate i and falls back to the next one on failure.
func (p *EmbedPlayer) tryCandidate(i int) {
	c := p.candidates[i]
	_ = p.media.Select(c.source)
	if c.source.StartOffset > 0 {
		p.startOffset = c.source.StartOffset
	}

	p.setState(Loading)
	p.load(c.descriptor, c.source.Src(p.serverSeekTime), func(err error) {
		if err == nil {
			p.onBackendReady()
			return
		}

		if i+1 < len(p.candidates) {
			next := p.candidates[i+1]
			p.log.WithError(err).WithField("next", next.descriptor.ID+" "+next.source.URI).Warn("falling back")
			p.tryCandidate(i + 1)
			return
		}
		p.fail(fmt.Errorf("%w: %w", ErrNoPlayableSource, err))
	})
}

// onBackendReady completes a load: features, duration and temporal fragment are
// taken from the backend before the instance becomes Ready.
func (p *EmbedPlayer) onBackendReady() {
	p.features = backend.DefaultFeatures().Merge(p.binding.adapter.Features())
	p.notify(events.UpdateFeatureSupport, p.features.Enabled())

	source, _ := p.media.Selected().Get()
	if d, ok := source.Duration().Get(); ok {
		p.duration = d
	} else if d, err := p.methods.duration(); err == nil && d > 0 {
		p.duration = d
	}

	p.applyTemporalFragment(source)
	p.pushVolume()

	// a playback error outlives backend swaps until the media changes
	var playbackErr *PlaybackError
	if !errors.As(p.err, &playbackErr) {
		p.err = nil
	}
	p.setState(Ready)
	p.notify(events.PlayerReady, p.binding.descriptor.ID)
	p.settle()
	p.runReadyHooks()

	if p.attrs.PlayerError != "" {
		p.err = &PlaybackError{Err: errors.New(p.attrs.PlayerError)}
		p.pending = nil
		p.notify(events.PlayerError, p.attrs.PlayerError)
		return
	}

	p.drainPending()
	if p.state == Ready && p.attrs.Autoplay && p.features.Has(backend.FeatureAutoplay) {
		p.Play()
	}
}

// applyTemporalFragment moves the tracked position to the start of a #t=
// fragment or the start attribute, and arms a pause at its end. The monitor
// performs the actual seek on its next tick.
func (p *EmbedPlayer) applyTemporalFragment(source *media.Source) {
	start, end := p.attrs.Start, p.attrs.End
	if frag, ok := npt.ParseFragment(source.URI); ok {
		start = frag.Start.OrElse(start)
		end = frag.End.OrElse(end)
	}

	if start > 0 && start != p.currentTime {
		p.currentTime = start
	}
	if end > 0 && end > start {
		p.pauseTime = mo.Some(end)
	} else {
		p.pauseTime = mo.None[float64]()
	}
}

// supportsURLTimeEncoding reports whether seeks are served by reloading the source at a new time.
func (p *EmbedPlayer) supportsURLTimeEncoding() bool {
	source, ok := p.media.Selected().Get()
	if !ok || !source.URLTimeEncoding {
		return false
	}
	if p.cfg.urlTimeEncoding == URLTimePlugin {
		return p.binding != nil && !p.binding.descriptor.Native
	}
	return true
}
