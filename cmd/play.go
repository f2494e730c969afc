// Package cmd implements the command-line interface for mwembed.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mwembed/mwembed/backend"
	"github.com/mwembed/mwembed/events"
	"github.com/mwembed/mwembed/key"
	"github.com/mwembed/mwembed/log"
	"github.com/mwembed/mwembed/lookup"
	"github.com/mwembed/mwembed/metrics"
	"github.com/mwembed/mwembed/player"
	"github.com/mwembed/mwembed/playlist"
	"github.com/mwembed/mwembed/query"
	"github.com/mwembed/mwembed/sched"
	"github.com/mwembed/mwembed/style"
	"github.com/mwembed/mwembed/target"
	"github.com/mwembed/mwembed/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(playCmd)
	registerPlaceholderFlags(playCmd)

	playCmd.Flags().BoolP("playlist", "p", false, "Play the given sources one after another in a single player")
	playCmd.Flags().Bool("loop-playlist", false, "Restart the playlist after its last clip")
	playCmd.Flags().Float64("native-duration", 30, "Duration in seconds reported by the native host decoder")
	playCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address while playing (e.g. :9090)")
	lo.Must0(viper.BindPFlag(key.MetricsAddr, playCmd.Flags().Lookup("metrics-addr")))
	playCmd.Flags().Bool("stats", false, "Print lifecycle counters once playback is over")
	playCmd.MarkFlagsMutuallyExclusive("playlist", "lookup")

	playCmd.SetOut(os.Stdout)
}

// playCmd embeds one player per source and drives them until playback is done.
var playCmd = &cobra.Command{
	Use:     "play [uri...]",
	Short:   "Embed players for the given sources and play them",
	Example: "  mwembed play lecture.webm --attr start=0:30,end=1:00\n  mwembed play -p intro.mp4 talk.mp4 --backend mpv",
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(runPlay(cmd, args))
	},
}

func runPlay(cmd *cobra.Command, args []string) error {
	flags := placeholderFlagsOf(cmd)
	asPlaylist := lo.Must(cmd.Flags().GetBool("playlist"))

	if len(args) == 0 && flags.lookupKey == "" {
		return errors.New("nothing to play, give a source or --lookup")
	}

	overrides, err := player.OverridesFromMap(flags.overrides)
	if err != nil {
		return err
	}

	CheckDependencies(viper.GetString(key.BackendPreferred))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if addr := viper.GetString(key.MetricsAddr); addr != "" {
		bound, err := metrics.Serve(ctx, addr)
		if err != nil {
			return err
		}
		log.Infof("serving metrics on %s", bound)
		cmd.Println(style.Faint(fmt.Sprintf("metrics on http://%s/metrics", bound)))
	}

	loop := sched.NewLoop()
	resolver, err := newLookup(loop)
	if err != nil {
		return err
	}

	var elements []*target.Element
	switch {
	case len(args) == 0:
		el, err := flags.placeholder("")
		if err != nil {
			return err
		}
		elements = append(elements, el)
	case asPlaylist:
		el, err := flags.placeholder(args[0])
		if err != nil {
			return err
		}
		elements = append(elements, el)
	default:
		for _, uri := range args {
			el, err := flags.placeholder(uri)
			if err != nil {
				return err
			}
			elements = append(elements, el)
		}
	}

	watcher := newEndWatcher(cancel, !asPlaylist)
	surface := events.Multi{events.Logged, newPrinter(cmd.OutOrStdout()), watcher}

	var queue *playlist.Playlist
	if asPlaylist {
		queue = playlist.New(loop, playlist.FromURIs(args...)...)
		queue.Loop = lo.Must(cmd.Flags().GetBool("loop-playlist"))
		queue.Finished = cancel
		surface = append(surface, queue)
	}

	manager := player.NewManager(player.Options{
		Scheduler: loop,
		Registry: cliRegistry(backend.NativeOptions{
			LoadDelay: 200 * time.Millisecond,
			Duration:  lo.Must(cmd.Flags().GetFloat64("native-duration")),
		}),
		Lookup:  resolver,
		Surface: surface,
	})

	loop.Post(func() {
		for _, el := range elements {
			id, err := manager.Register(el, overrides)
			if err != nil {
				log.Warn(err)
				continue
			}
			watcher.track(id)

			if queue != nil {
				p, _ := manager.Get(id)
				queue.Attach(p)
			}
		}

		if len(watcher.pending) == 0 {
			cancel()
			return
		}

		manager.WhenAllReady(func() {
			if flags.lookupKey != "" && lo.SomeBy(manager.Players(), func(p *player.EmbedPlayer) bool {
				return p.State() != player.Errored
			}) {
				_ = query.Remember(flags.lookupKey, 1)
			}

			for _, p := range manager.Players() {
				if p.State() != player.Errored && !p.IsPlaying() {
					p.Play()
				}
			}
		})
	})

	err = loop.Run(ctx)
	closeErr := manager.Close()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if err == nil && watcher.failed > 0 && watcher.failed == len(manager.Players()) {
		err = errors.New("no instance could play")
	}
	if lo.Must(cmd.Flags().GetBool("stats")) {
		printStats(cmd.OutOrStdout())
	}
	return errors.Join(err, closeErr)
}

// newLookup chains the Lua lookup scripts behind the disk cache.
func newLookup(s sched.Scheduler) (lookup.Lookup, error) {
	scripts, err := lookup.LoadScripts(s, where.Lookups())
	if err != nil {
		return nil, err
	}

	chain := lo.Map(scripts, func(sc *lookup.Script, _ int) lookup.Lookup { return sc })
	lifetime := time.Duration(viper.GetInt(key.LookupCacheLifetime)) * time.Hour
	return lookup.NewCached(lookup.Chain(chain), where.LookupCache(), lifetime), nil
}

// endWatcher cancels the run once every tracked instance is done or failed.
type endWatcher struct {
	cancel  context.CancelFunc
	onEnd   bool
	pending map[string]struct{}
	failed  int
}

func newEndWatcher(cancel context.CancelFunc, onEnd bool) *endWatcher {
	return &endWatcher{cancel: cancel, onEnd: onEnd, pending: make(map[string]struct{})}
}

func (w *endWatcher) track(id string) {
	w.pending[id] = struct{}{}
}

func (w *endWatcher) Notify(e events.Event) {
	if _, ok := w.pending[e.PlayerID]; !ok {
		return
	}

	switch e.Type {
	case events.NoSourceError, events.PlayerError:
		w.failed++
	case events.OnEndedDone:
		if !w.onEnd {
			return
		}
	default:
		return
	}

	delete(w.pending, e.PlayerID)
	if len(w.pending) == 0 {
		w.cancel()
	}
}
