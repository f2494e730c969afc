// Package cmd implements the command-line interface for mwembed.
package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/mwembed/mwembed/backend"
	"github.com/mwembed/mwembed/events"
	"github.com/mwembed/mwembed/player"
	"github.com/mwembed/mwembed/sched"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(attributesCmd)
	registerPlaceholderFlags(attributesCmd)
	attributesCmd.Flags().Bool("schema", false, "Print the JSON Schema of the attribute record instead")
	attributesCmd.SetOut(os.Stdout)
}

// attributesCmd prints the attribute record an instance resolves for a placeholder.
var attributesCmd = &cobra.Command{
	Use:   "attributes [uri]",
	Short: "Resolve the attribute record of a placeholder without playing it",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")

		if lo.Must(cmd.Flags().GetBool("schema")) {
			reflector := new(jsonschema.Reflector)
			reflector.Anonymous = true
			reflector.Namer = func(t reflect.Type) string { return t.Name() }
			handleErr(encoder.Encode(reflector.Reflect(&player.Attributes{})))
			return
		}

		flags := placeholderFlagsOf(cmd)
		overrides, err := player.OverridesFromMap(flags.overrides)
		handleErr(err)

		el, err := flags.placeholder(lo.FirstOr(args, ""))
		handleErr(err)

		// Resolution needs no real backend or clock.
		s := sched.NewManual()
		manager := player.NewManager(player.Options{
			Scheduler: s,
			Registry:  backend.NewRegistry(backend.NativeDescriptor(backend.NativeOptions{})),
			Surface:   events.Logged,
		})

		id, err := manager.Register(el, overrides)
		handleErr(err)
		s.Flush()

		p, _ := manager.Get(id)
		if p.State() == player.AwaitingMetadata {
			handleErr(errors.New("placeholder is waiting for its metadata"))
		}
		handleErr(encoder.Encode(p.Attributes()))
		handleErr(manager.Close())
	},
}
