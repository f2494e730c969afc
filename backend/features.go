package backend

import (
	"maps"

	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// Feature names a capability flag.
type Feature string

const (
	FeaturePlayHead      Feature = "playHead"
	FeaturePause         Feature = "pause"
	FeatureStop          Feature = "stop"
	FeatureFullscreen    Feature = "fullscreen"
	FeatureTimeDisplay   Feature = "timeDisplay"
	FeatureVolumeControl Feature = "volumeControl"
	FeatureOverlays      Feature = "overlays"
	FeatureSourceSwitch  Feature = "sourceSwitch"
	FeatureAutoplay      Feature = "autoplay"
)

// Features maps capability flags to their support.
type Features map[Feature]bool

// DefaultFeatures are assumed for every instance before a backend is bound.
func DefaultFeatures() Features {
	return Features{
		FeaturePlayHead:      true,
		FeaturePause:         true,
		FeatureStop:          true,
		FeatureFullscreen:    true,
		FeatureTimeDisplay:   true,
		FeatureVolumeControl: true,
		FeatureOverlays:      true,
		FeatureSourceSwitch:  false,
		FeatureAutoplay:      false,
	}
}

// Merge returns a copy of f overridden by every flag declared in o.
func (f Features) Merge(o Features) Features {
	merged := maps.Clone(f)
	if merged == nil {
		merged = make(Features, len(o))
	}
	for k, v := range o {
		merged[k] = v
	}
	return merged
}

// Has reports whether feature is supported.
func (f Features) Has(feature Feature) bool {
	return f[feature]
}

// Enabled returns the supported features in sorted order.
func (f Features) Enabled() []Feature {
	enabled := lo.Filter(lo.Keys(f), func(k Feature, _ int) bool { return f[k] })
	slices.Sort(enabled)
	return enabled
}
