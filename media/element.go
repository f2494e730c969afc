package media

import (
	"errors"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"golang.org/x/exp/slices"
)

// ErrNotMember is returned when selecting a source the element does not own.
var ErrNotMember = errors.New("source is not part of the media element")

// Supporter answers whether some backend can play a MIME type.
type Supporter interface {
	Supports(mimeType string) bool
}

// Element owns the ordered candidate sources of one embed player.
type Element struct {
	sources  []*Source
	selected *Source
}

// NewElement creates an element holding sources in the given order.
func NewElement(sources ...*Source) *Element {
	e := &Element{}
	for _, s := range sources {
		e.TryAddSource(s)
	}
	return e
}

// Sources returns the candidate sources in list order.
func (e *Element) Sources() []*Source {
	return slices.Clone(e.sources)
}

// Len returns the number of sources.
func (e *Element) Len() int {
	return len(e.sources)
}

// Selected returns the currently selected source.
func (e *Element) Selected() mo.Option[*Source] {
	if e.selected == nil {
		return mo.None[*Source]()
	}
	return mo.Some(e.selected)
}

// TryAddSource appends s unless it has no URI or duplicates an existing URI.
func (e *Element) TryAddSource(s *Source) bool {
	if s == nil || s.URI == "" {
		return false
	}
	if lo.ContainsBy(e.sources, func(o *Source) bool { return o.URI == s.URI }) {
		return false
	}
	if s.MimeType == "" {
		s.MimeType = DetectMimeType(s.URI)
	}
	e.sources = append(e.sources, s)
	return true
}

// Empty removes every source and the selection.
func (e *Element) Empty() {
	e.sources = nil
	e.selected = nil
}

// Select marks s as the selected source. s must belong to the element.
func (e *Element) Select(s *Source) error {
	if !slices.Contains(e.sources, s) {
		return ErrNotMember
	}
	e.selected = s
	return nil
}

// MimeTypes returns the distinct MIME types in list order.
func (e *Element) MimeTypes() []string {
	return lo.Uniq(lo.FilterMap(e.sources, func(s *Source, _ int) (string, bool) {
		return s.MimeType, s.MimeType != ""
	}))
}

// Playable returns the sources some backend supports, in list order.
func (e *Element) Playable(by Supporter) []*Source {
	return lo.Filter(e.sources, func(s *Source, _ int) bool {
		return by.Supports(s.MimeType)
	})
}

// AutoSelectSource selects the first source in list order that has a compatible backend.
func (e *Element) AutoSelectSource(by Supporter) mo.Option[*Source] {
	playable := e.Playable(by)
	if len(playable) == 0 {
		e.selected = nil
		return mo.None[*Source]()
	}
	e.selected = playable[0]
	return mo.Some(e.selected)
}

// UpdateSourceTimes re-clips the selected source.
func (e *Element) UpdateSourceTimes(startNPT, endNPT string) error {
	if e.selected == nil {
		return errors.New("no source selected")
	}
	return e.selected.SetTimes(startNPT, endNPT)
}
