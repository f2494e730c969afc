// Package media models the candidate sources of an embed player and their selection.
package media

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/mwembed/mwembed/npt"
	"github.com/samber/mo"
)

// Source is one playable rendition of a clip.
type Source struct {
	URI      string `json:"uri" jsonschema:"description=Location of the media."`
	MimeType string `json:"type" jsonschema:"description=MIME type. Detected from the extension when empty."`
	Title    string `json:"title,omitempty"`

	// StartOffset is the clip start within the underlying media, in seconds.
	StartOffset float64 `json:"startOffset,omitempty"`
	// EndOffset is the clip end within the underlying media, in seconds.
	EndOffset mo.Option[float64] `json:"-"`
	// DurationHint is a duration declared before any metadata is loaded.
	DurationHint mo.Option[float64] `json:"-"`
	// URLTimeEncoding means the server can start the stream at an arbitrary time given in the URL.
	URLTimeEncoding bool `json:"urlTimeEncoding,omitempty"`
}

// NewSource creates a source, detecting the MIME type when none is given.
func NewSource(uri, mimeType string) *Source {
	if mimeType == "" {
		mimeType = DetectMimeType(uri)
	}
	return &Source{URI: uri, MimeType: mimeType}
}

// Duration returns the clip length when it is known from offsets or hints.
func (s *Source) Duration() mo.Option[float64] {
	if end, ok := s.EndOffset.Get(); ok {
		return mo.Some(end - s.StartOffset)
	}
	return s.DurationHint
}

// SetTimes re-clips the source to [startNPT, endNPT]. An empty end keeps the current one.
func (s *Source) SetTimes(startNPT, endNPT string) error {
	start, err := npt.Parse(startNPT)
	if err != nil {
		return fmt.Errorf("source start: %w", err)
	}

	if endNPT == "" {
		s.StartOffset = start
		return nil
	}

	end, err := npt.Parse(endNPT)
	if err != nil {
		return fmt.Errorf("source end: %w", err)
	}
	if end < start {
		return fmt.Errorf("source end %v before start %v", end, start)
	}

	s.StartOffset = start
	s.EndOffset = mo.Some(end)
	return nil
}

// Src returns the URI to hand to a backend. When the source supports URL time
// encoding and a server seek is pending, the requested time range is appended
// as a t=start/end query parameter.
func (s *Source) Src(serverSeek float64) string {
	if !s.URLTimeEncoding || serverSeek <= 0 {
		return s.URI
	}

	u, err := url.Parse(npt.StripFragment(s.URI))
	if err != nil {
		return s.URI
	}

	span := npt.Format(serverSeek, false)
	if end, ok := s.EndOffset.Get(); ok {
		span += "/" + npt.Format(end, false)
	}

	q := u.Query()
	q.Set("t", span)
	u.RawQuery = q.Encode()
	return u.String()
}

// IsAudio reports whether the source carries audio only.
func (s *Source) IsAudio() bool {
	return strings.HasPrefix(s.MimeType, "audio/")
}

// String returns a compact description used in logs.
func (s *Source) String() string {
	return fmt.Sprintf("%s (%s)", s.URI, s.MimeType)
}

var mimeByExt = map[string]string{
	".ogv":  "video/ogg",
	".ogg":  "video/ogg",
	".oga":  "audio/ogg",
	".opus": "audio/ogg",
	".webm": "video/webm",
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
	".flv":  "video/x-flv",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".flac": "audio/flac",
	".m4a":  "audio/mp4",
	".m3u8": "application/vnd.apple.mpegurl",
	".mpd":  "application/dash+xml",
}

// DetectMimeType guesses the MIME type from the URI extension.
func DetectMimeType(uri string) string {
	p := npt.StripFragment(uri)
	if u, err := url.Parse(p); err == nil {
		p = u.Path
	}
	if mime, ok := mimeByExt[strings.ToLower(path.Ext(p))]; ok {
		return mime
	}
	return ""
}
