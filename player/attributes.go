package player

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mwembed/mwembed/key"
	"github.com/mwembed/mwembed/npt"
	"github.com/mwembed/mwembed/target"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

// Attributes is the resolved attribute record of one instance.
type Attributes struct {
	ID     string  `json:"id" jsonschema:"description=Instance identifier. Generated when the placeholder has none."`
	Width  float64 `json:"width" jsonschema:"description=Resolved display width in pixels."`
	Height float64 `json:"height" jsonschema:"description=Resolved display height in pixels. Zero for audio."`

	Src       string `json:"src,omitempty" jsonschema:"description=Single media URI declared on the placeholder."`
	Poster    string `json:"poster,omitempty" jsonschema:"description=Image shown while stopped."`
	LookupKey string `json:"lookupKey,omitempty" jsonschema:"description=Key resolved through the source lookup when no sources are declared."`

	Autoplay    bool    `json:"autoplay" jsonschema:"description=Start playback once the backend is ready."`
	Loop        bool    `json:"loop" jsonschema:"description=Replay from the start when the clip ends."`
	Controls    bool    `json:"controls" jsonschema:"description=Show the control surface."`
	Muted       bool    `json:"muted" jsonschema:"description=Start muted."`
	PreviewMode bool    `json:"previewMode" jsonschema:"description=Suppress the ended notification to the host."`
	Volume      float64 `json:"volume" jsonschema:"minimum=0,maximum=1,description=Initial volume."`

	Start        float64 `json:"start,omitempty" jsonschema:"description=Playback start time in seconds."`
	End          float64 `json:"end,omitempty" jsonschema:"description=Playback end time in seconds. Zero means the clip end."`
	StartOffset  float64 `json:"startOffset,omitempty" jsonschema:"description=Offset of the clip within the media in seconds."`
	DurationHint float64 `json:"durationHint,omitempty" jsonschema:"description=Duration declared before metadata is known."`

	PlayerError string `json:"playerError,omitempty" jsonschema:"description=Error declared on the placeholder. Shown instead of playing."`
}

// Overrides are per-instance values that win over the placeholder and the registered defaults.
type Overrides struct {
	Width, Height mo.Option[float64]

	Src, Poster, LookupKey mo.Option[string]

	Autoplay, Loop, Controls, Muted, PreviewMode mo.Option[bool]

	Volume, Start, End, StartOffset, DurationHint mo.Option[float64]
}

// OverridesFromMap builds overrides from name=value pairs as given on the command line.
func OverridesFromMap(m map[string]string) (Overrides, error) {
	var o Overrides

	for name, raw := range m {
		switch strings.ToLower(name) {
		case "width":
			v, err := parseLength(raw)
			if err != nil {
				return o, fmt.Errorf("width: %w", err)
			}
			o.Width = mo.Some(v)
		case "height":
			v, err := parseLength(raw)
			if err != nil {
				return o, fmt.Errorf("height: %w", err)
			}
			o.Height = mo.Some(v)
		case "src":
			o.Src = mo.Some(raw)
		case "poster":
			o.Poster = mo.Some(raw)
		case "lookup", "lookupkey", "data-lookup":
			o.LookupKey = mo.Some(raw)
		case "autoplay":
			o.Autoplay = mo.Some(coerceBool(raw))
		case "loop":
			o.Loop = mo.Some(coerceBool(raw))
		case "controls":
			o.Controls = mo.Some(coerceBool(raw))
		case "muted":
			o.Muted = mo.Some(coerceBool(raw))
		case "previewmode":
			o.PreviewMode = mo.Some(coerceBool(raw))
		case "volume":
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return o, fmt.Errorf("volume: %w", err)
			}
			o.Volume = mo.Some(v)
		case "start", "end", "startoffset", "durationhint":
			v, err := npt.Parse(raw)
			if err != nil {
				return o, fmt.Errorf("%s: %w", name, err)
			}
			switch strings.ToLower(name) {
			case "start":
				o.Start = mo.Some(v)
			case "end":
				o.End = mo.Some(v)
			case "startoffset":
				o.StartOffset = mo.Some(v)
			default:
				o.DurationHint = mo.Some(v)
			}
		default:
			return o, fmt.Errorf("unknown attribute %q", name)
		}
	}

	return o, nil
}

// coerceBool interprets an attribute value. A present but empty attribute is true.
func coerceBool(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return true
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return !strings.EqualFold(raw, "no") && !strings.EqualFold(raw, "off")
}

func parseLength(raw string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(raw), "px"), 64)
}

// resolver applies the override > placeholder > default priority.
type resolver struct {
	el        *target.Element
	overrides Overrides
}

func (r resolver) attr(names ...string) (string, bool) {
	for _, name := range names {
		if v, ok := r.el.Attr(name); ok {
			return v, true
		}
	}
	return "", false
}

func (r resolver) boolean(override mo.Option[bool], defaultKey string, names ...string) bool {
	if v, ok := override.Get(); ok {
		return v
	}
	if raw, ok := r.attr(names...); ok {
		return coerceBool(raw)
	}
	return viper.GetBool(defaultKey)
}

func (r resolver) str(override mo.Option[string], fallback string, names ...string) string {
	if v, ok := override.Get(); ok {
		return v
	}
	if raw, ok := r.attr(names...); ok {
		return raw
	}
	return fallback
}

func (r resolver) seconds(override mo.Option[float64], names ...string) float64 {
	if v, ok := override.Get(); ok {
		return v
	}
	if raw, ok := r.attr(names...); ok {
		if v, err := npt.Parse(raw); err == nil {
			return v
		}
	}
	return 0
}

func (r resolver) volume() float64 {
	if v, ok := r.overrides.Volume.Get(); ok {
		return v
	}
	if raw, ok := r.attr("volume"); ok {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v
		}
	}
	return viper.GetFloat64(key.AttrVolume)
}

// resolveAttributes builds the attribute record of el. Size is resolved separately.
func resolveAttributes(el *target.Element, o Overrides) Attributes {
	r := resolver{el: el, overrides: o}

	attrs := Attributes{
		ID:        el.ID,
		Src:       r.str(o.Src, "", "src"),
		Poster:    r.str(o.Poster, viper.GetString(key.AttrPoster), "poster", "thumbnail"),
		LookupKey: r.str(o.LookupKey, "", "data-lookup", "apititlekey"),

		Autoplay:    r.boolean(o.Autoplay, key.AttrAutoplay, "autoplay"),
		Loop:        r.boolean(o.Loop, key.AttrLoop, "loop"),
		Controls:    r.boolean(o.Controls, key.AttrControls, "controls"),
		Muted:       r.boolean(o.Muted, key.AttrMuted, "muted"),
		PreviewMode: r.boolean(o.PreviewMode, key.AttrPreviewMode, "previewmode", "data-previewmode"),

		Start:        r.seconds(o.Start, "start"),
		End:          r.seconds(o.End, "end"),
		StartOffset:  r.seconds(o.StartOffset, "startoffset", "data-startoffset"),
		DurationHint: r.seconds(o.DurationHint, "durationhint", "data-durationhint"),
	}

	attrs.PlayerError, _ = r.attr("data-playererror")

	attrs.Volume = r.volume()
	if attrs.Volume < 0 || attrs.Volume > 1 {
		attrs.Volume = viper.GetFloat64(key.AttrVolume)
	}

	return attrs
}
