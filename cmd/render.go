// Package cmd implements the command-line interface for mwembed.
package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mwembed/mwembed/color"
	"github.com/mwembed/mwembed/events"
	"github.com/mwembed/mwembed/icon"
	"github.com/mwembed/mwembed/log"
	"github.com/mwembed/mwembed/metrics"
	"github.com/mwembed/mwembed/style"
	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// printer renders the notifications a user cares about, one line each.
type printer struct {
	out    io.Writer
	status map[string]string
}

func newPrinter(out io.Writer) *printer {
	return &printer{out: out, status: make(map[string]string)}
}

func (pr *printer) Notify(e events.Event) {
	var (
		glyph icon.Icon
		text  string
		tint  = color.White
	)

	switch e.Type {
	case events.PlayerReady:
		glyph, text, tint = icon.Backend, fmt.Sprintf("ready on %v", e.Value), color.Cyan
	case events.OnPlay:
		glyph, text, tint = icon.Play, "playing", color.Green
	case events.OnPause:
		glyph, text = icon.Pause, "paused"
	case events.DoStop:
		glyph, text = icon.Stop, "stopped"
	case events.ReplayEvent:
		glyph, text = icon.Play, fmt.Sprintf("replay %v", e.Value)
	case events.Seeking:
		percent, _ := e.Value.(float64)
		glyph, text = icon.Progress, fmt.Sprintf("seeking to %.0f%%", percent*100)
	case events.BufferStart:
		glyph, text = icon.Buffer, "buffering"
	case events.BufferEnd:
		glyph, text = icon.Buffer, "buffered"
	case events.OnEndedDone:
		glyph, text, tint = icon.Ended, "done", color.Purple
	case events.ChangeMedia:
		glyph, text = icon.Progress, "changing media"
	case events.NoSourceError, events.PlayerError:
		glyph, text, tint = icon.Fail, fmt.Sprint(e.Value), color.Red
	case events.StatusUpdate:
		// The monitor repeats the same status several times a second.
		s := fmt.Sprint(e.Value)
		if pr.status[e.PlayerID] == s {
			return
		}
		pr.status[e.PlayerID] = s
		glyph, text, tint = icon.Progress, s, color.Yellow
	default:
		return
	}

	_, _ = fmt.Fprintf(
		pr.out,
		"%s %s %s\n",
		icon.Get(glyph),
		style.Faint(e.PlayerID),
		style.Fg(tint)(text),
	)
}

// printStats prints every lifecycle counter that moved, by name.
func printStats(out io.Writer) {
	totals, err := metrics.Totals()
	if err != nil {
		log.Warn(err)
		return
	}

	names := lo.Keys(totals)
	slices.Sort(names)
	for _, name := range names {
		if totals[name] == 0 {
			continue
		}
		_, _ = fmt.Fprintf(
			out,
			"%s %s\n",
			style.Faint(strings.TrimSuffix(name, "_total")),
			style.Fg(color.Cyan)(strconv.FormatFloat(totals[name], 'f', -1, 64)),
		)
	}
}
