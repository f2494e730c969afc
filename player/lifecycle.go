package player

import (
	"github.com/mwembed/mwembed/media"
	"github.com/mwembed/mwembed/metrics"
	"github.com/mwembed/mwembed/npt"
	"github.com/mwembed/mwembed/target"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// start runs on the scheduler after registration.
func (p *EmbedPlayer) start() {
	if reason, wait := p.needsMetadata(); wait {
		p.log.WithField("reason", reason).Debug("waiting for metadata")
		p.awaitMetadata()
		return
	}
	p.initialize()
}

// needsMetadata decides whether a bare media placeholder should wait for its
// loaded metadata signal before its size and duration are trusted.
func (p *EmbedPlayer) needsMetadata() (reason string, wait bool) {
	el := p.target
	switch {
	case !p.cfg.waitForMeta:
		return "", false
	case !el.Tag.IsMedia():
		return "", false
	case lo.HasKey(el.Attrs, "data-nowait"):
		return "", false
	case !el.HasSource():
		return "", false
	case !p.registry.HasNative(declaredMimeTypes(el)):
		return "", false
	}

	if el.Tag == target.Video {
		css := Size{Width: el.CSSLength(target.Width), Height: el.CSSLength(target.Height)}
		for _, bogus := range bogusSizes {
			if css == bogus {
				return "default size", true
			}
		}
		if !usable(css.Width) && !usable(el.AttrLength(target.Width)) {
			return "no size", true
		}
	}

	if _, ok := p.overrides.DurationHint.Get(); ok {
		return "", false
	}
	if lo.HasKey(el.Attrs, "durationhint") || lo.HasKey(el.Attrs, "data-durationhint") {
		return "", false
	}
	return "no duration", true
}

// awaitMetadata waits for the loaded metadata signal or the timeout, whichever comes first.
func (p *EmbedPlayer) awaitMetadata() {
	p.setState(AwaitingMetadata)
	p.metaDone = false

	p.metaTimer = p.sched.AfterFunc(p.cfg.metaTimeout, func() {
		p.metaTimer = nil
		p.endMetadataWait("timeout")
	})
	p.target.OnLoadedMetadata(func() {
		p.endMetadataWait("loaded")
	})
}

func (p *EmbedPlayer) endMetadataWait(outcome string) {
	if p.metaDone || p.state != AwaitingMetadata {
		return
	}
	p.metaDone = true
	if p.metaTimer != nil {
		p.metaTimer.Stop()
		p.metaTimer = nil
	}
	metrics.MetadataWaits.WithLabelValues(outcome).Inc()
	p.log.WithField("outcome", outcome).Debug("metadata wait over")
	p.initialize()
}

// initialize resolves attributes and size once, builds the media element and
// continues with source resolution.
func (p *EmbedPlayer) initialize() {
	p.attrs = resolveAttributes(p.target, p.overrides)
	p.attrs.ID = p.id
	p.size = resolveSize(p.target, p.overrides)
	p.attrs.Width, p.attrs.Height = p.size.Width, p.size.Height

	p.volume = p.attrs.Volume
	p.previousVolume = p.volume
	p.preMuteVolume = p.volume
	p.muted = p.attrs.Muted
	p.posterDisplayed = true
	p.startOffset = p.attrs.StartOffset
	p.duration = p.attrs.DurationHint

	for _, s := range sourcesOf(p.target, p.attrs) {
		if p.cfg.urlTimeEncoding == URLTimeAlways {
			s.URLTimeEncoding = true
		}
		p.media.TryAddSource(s)
	}

	p.resolveSources()
}

func declaredMimeTypes(el *target.Element) []string {
	return lo.Uniq(lo.FilterMap(sourcesOf(el, Attributes{}), func(s *media.Source, _ int) (string, bool) {
		return s.MimeType, s.MimeType != ""
	}))
}

// sourcesOf reads the src attribute and source children of el in document order.
func sourcesOf(el *target.Element, attrs Attributes) []*media.Source {
	var sources []*media.Source

	src := attrs.Src
	if src == "" {
		src, _ = el.Attr("src")
	}
	if src != "" {
		mime, _ := el.Attr("type")
		sources = append(sources, media.NewSource(src, mime))
	}

	for _, child := range el.Sources {
		if child.Src == "" {
			continue
		}
		s := media.NewSource(child.Src, child.Type)
		s.Title = child.Attrs["title"]
		if raw, ok := child.Attrs["data-durationhint"]; ok {
			if d, err := npt.Parse(raw); err == nil {
				s.DurationHint = mo.Some(d)
			}
		}
		if raw, ok := child.Attrs["data-startoffset"]; ok {
			if d, err := npt.Parse(raw); err == nil {
				s.StartOffset = d
			}
		}
		if raw, ok := child.Attrs["data-urltimeencoding"]; ok {
			s.URLTimeEncoding = coerceBool(raw)
		}
		sources = append(sources, s)
	}

	return sources
}
