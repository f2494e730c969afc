// Package npt converts between seconds and Normal Play Time strings and parses temporal URL fragments.
package npt

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/samber/mo"
)

const prefix = "npt:"

// Parse converts an NPT string ("npt:1:02:03.5", "2:03", "123.5") into seconds.
func Parse(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), prefix))
	if s == "" {
		return 0, fmt.Errorf("npt: empty time")
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("npt: too many fields in %q", s)
	}

	var total float64
	for _, part := range parts {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("npt: invalid field %q in %q", part, s)
		}
		total = total*60 + v
	}

	return total, nil
}

// MustParse is like Parse but returns 0 for malformed input.
func MustParse(s string) float64 {
	v, err := Parse(s)
	if err != nil {
		return 0
	}
	return v
}

// Format renders seconds as h:mm:ss, with milliseconds when showMs is set.
func Format(sec float64, showMs bool) string {
	if math.IsNaN(sec) || sec < 0 {
		sec = 0
	}

	hours := int(sec / 3600)
	minutes := int(math.Mod(sec, 3600) / 60)
	seconds := math.Mod(sec, 60)

	if showMs {
		return fmt.Sprintf("%d:%02d:%06.3f", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d:%02d", hours, minutes, int(seconds))
}

// Short renders seconds as m:ss, adding hours only when needed.
func Short(sec float64) string {
	full := Format(sec, false)
	if strings.HasPrefix(full, "0:") {
		return strings.TrimPrefix(strings.TrimPrefix(full, "0:"), "0")
	}
	return full
}

// Fragment is a parsed "#t=start,end" temporal URL fragment.
type Fragment struct {
	Start mo.Option[float64]
	End   mo.Option[float64]
}

// ParseFragment extracts the temporal fragment of uri. The boolean reports whether one was present.
func ParseFragment(uri string) (Fragment, bool) {
	idx := strings.Index(uri, "#t=")
	if idx < 0 {
		return Fragment{}, false
	}

	value := uri[idx+len("#t="):]
	if amp := strings.IndexAny(value, "&#"); amp >= 0 {
		value = value[:amp]
	}

	var frag Fragment
	bounds := strings.SplitN(value, ",", 2)
	if v, err := Parse(bounds[0]); err == nil {
		frag.Start = mo.Some(v)
	}
	if len(bounds) == 2 {
		if v, err := Parse(bounds[1]); err == nil {
			frag.End = mo.Some(v)
		}
	}

	return frag, frag.Start.IsPresent() || frag.End.IsPresent()
}

// StripFragment removes a temporal fragment from uri.
func StripFragment(uri string) string {
	if idx := strings.Index(uri, "#t="); idx >= 0 {
		return uri[:idx]
	}
	return uri
}
