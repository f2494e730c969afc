package player

import (
	"math"
	"regexp"
	"strconv"

	"github.com/mwembed/mwembed/key"
	"github.com/mwembed/mwembed/target"
	"github.com/mwembed/mwembed/util"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

// Size is a resolved display box in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// audioControlHeight is reported by some hosts for bare audio elements and carries no layout meaning.
const audioControlHeight = 32

var (
	sizePattern   = regexp.MustCompile(`^\s*(?P<width>\d+(?:\.\d+)?)\s*x\s*(?P<height>\d+(?:\.\d+)?)\s*$`)
	aspectPattern = regexp.MustCompile(`^\s*(?P<width>\d+(?:\.\d+)?)\s*:\s*(?P<height>\d+(?:\.\d+)?)\s*$`)
)

// bogusSizes are defaults some hosts report for elements that were never laid out.
var bogusSizes = []Size{
	{Width: 300, Height: 150},
	{Width: 300, Height: 64},
}

// resolveSize picks the display box of el. Overrides win, then inline CSS
// (percentages resolve against the containing block), then the width and
// height attributes. A missing dimension is derived from the configured aspect
// ratio and anything left falls back to the configured default size.
func resolveSize(el *target.Element, o Overrides) Size {
	audio := el.Tag == target.Audio

	css := Size{Width: el.CSSLength(target.Width), Height: el.CSSLength(target.Height)}
	for _, bogus := range bogusSizes {
		if css == bogus {
			css = Size{Width: math.NaN(), Height: math.NaN()}
		}
	}

	width := first(o.Width, css.Width, el.AttrLength(target.Width))
	height := first(o.Height, css.Height, el.AttrLength(target.Height))

	if audio && height == audioControlHeight {
		height = 0
	}

	def := parseSize(viper.GetString(key.DefaultSize), Size{Width: 400, Height: 300})
	if audio {
		if !usable(width) {
			width = def.Width
		}
		if !usable(height) {
			height = 0
		}
		return Size{Width: width, Height: height}
	}

	aspect := parseAspect(viper.GetString(key.VideoAspect))
	switch {
	case usable(width) && !usable(height):
		height = math.Round(width / aspect)
	case usable(height) && !usable(width):
		width = math.Round(height * aspect)
	case !usable(width) && !usable(height):
		width, height = def.Width, def.Height
	}

	return Size{Width: width, Height: height}
}

func first(override mo.Option[float64], candidates ...float64) float64 {
	if v, ok := override.Get(); ok {
		return v
	}
	for _, c := range candidates {
		if usable(c) {
			return c
		}
	}
	return math.NaN()
}

// usable rejects unset lengths and the -1 and 0 placeholders hosts report before layout.
func usable(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

func parseSize(s string, fallback Size) Size {
	groups := util.ReGroups(sizePattern, s)
	if len(groups) == 0 {
		return fallback
	}
	w, _ := strconv.ParseFloat(groups["width"], 64)
	h, _ := strconv.ParseFloat(groups["height"], 64)
	return Size{Width: w, Height: h}
}

func parseAspect(s string) float64 {
	groups := util.ReGroups(aspectPattern, s)
	w, _ := strconv.ParseFloat(groups["width"], 64)
	h, _ := strconv.ParseFloat(groups["height"], 64)
	if w <= 0 || h <= 0 {
		return 4.0 / 3.0
	}
	return w / h
}
