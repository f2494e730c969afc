// Package cmd implements the command-line interface for mwembed.
package cmd

import (
	"os"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/muesli/reflow/wrap"
	"github.com/mwembed/mwembed/backend"
	"github.com/mwembed/mwembed/color"
	"github.com/mwembed/mwembed/icon"
	"github.com/mwembed/mwembed/key"
	"github.com/mwembed/mwembed/style"
	"github.com/mwembed/mwembed/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cliRegistry is the default registry plus the backends only the command line offers.
func cliRegistry(native backend.NativeOptions) *backend.Registry {
	r := backend.Default(native)
	lo.Must0(r.Register(backend.SystemDescriptor()))
	return r
}

func completionBackends(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	ids := lo.Map(cliRegistry(backend.NativeOptions{}).All(), func(d backend.Descriptor, _ int) string {
		return d.ID
	})
	return ids, cobra.ShellCompDirectiveNoFileComp
}

func init() {
	rootCmd.AddCommand(backendsCmd)
	backendsCmd.Flags().StringP("type", "t", "", "Only list backends playing this MIME type")
	backendsCmd.SetOut(os.Stdout)
}

// backendsCmd lists the registered playback backends.
var backendsCmd = &cobra.Command{
	Use:   "backends [filter]",
	Short: "List the registered playback backends",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		registry := cliRegistry(backend.NativeOptions{})
		descriptors := registry.All()

		if mime := lo.Must(cmd.Flags().GetString("type")); mime != "" {
			descriptors = registry.For(mime)
		}

		if len(args) == 1 {
			filter := strings.ToLower(args[0])
			descriptors = lo.Filter(descriptors, func(d backend.Descriptor, _ int) bool {
				return fuzzy.Match(filter, d.ID) || fuzzy.MatchFold(filter, d.Name)
			})
		}

		if len(descriptors) == 0 {
			cmd.Printf("%s no backends\n", icon.Get(icon.Fail))
			return
		}

		width, _, err := util.TerminalSize()
		if err != nil || width <= 0 {
			width = 80
		}

		preferred := viper.GetString(key.BackendPreferred)
		for i, d := range descriptors {
			name := style.New().Bold(true).Foreground(color.HiPurple).Render(d.ID)
			if d.ID == preferred {
				name += " " + style.Fg(color.Green)("(preferred)")
			}
			if d.Native {
				name += " " + style.Faint("native")
			}

			cmd.Printf("%s %s\n", icon.Get(icon.Backend), name)
			cmd.Println(style.Faint(d.Name))
			cmd.Println(wrap.String(style.Fg(color.Yellow)(strings.Join(d.MimeTypes, " ")), width))

			if i < len(descriptors)-1 {
				cmd.Println()
			}
		}
	},
}
