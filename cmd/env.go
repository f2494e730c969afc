// Package cmd implements the command-line interface for mwembed.
package cmd

import (
	"os"
	"strings"

	"github.com/mwembed/mwembed/color"
	"github.com/mwembed/mwembed/config"
	"github.com/mwembed/mwembed/style"
	"github.com/mwembed/mwembed/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"
)

func init() {
	rootCmd.AddCommand(envCmd)
	envCmd.Flags().BoolP("set-only", "s", false, "Display only environment variables that are currently defined")
	envCmd.Flags().BoolP("unset-only", "u", false, "Display only environment variables that are currently undefined")
	envCmd.Flags().StringP("section", "S", "", "Only show the variables of one config section")
	_ = envCmd.RegisterFlagCompletionFunc("section", completionConfigSections)

	envCmd.MarkFlagsMutuallyExclusive("set-only", "unset-only")
	envCmd.SetOut(os.Stdout)
}

// envVar is one environment variable the application reads.
type envVar struct {
	name    string
	section string
}

// envVars lists the config path override and one variable per config key.
func envVars() []envVar {
	vars := lo.MapToSlice(config.Default, func(_ string, f config.Field) envVar {
		return envVar{name: f.Env(), section: config.Section(f.Key)}
	})
	vars = append(vars, envVar{name: where.EnvConfigPath, section: "paths"})

	slices.SortFunc(vars, func(a, b envVar) int {
		if a.section != b.section {
			return strings.Compare(a.section, b.section)
		}
		return strings.Compare(a.name, b.name)
	})
	return vars
}

// envCmd displays the current process values for all supported environment variables.
var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Display the collection of supported environment variables",
	Long:  `Display the environment variables overriding player, backend and lookup settings, with their current process values.`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			setOnly   = lo.Must(cmd.Flags().GetBool("set-only"))
			unsetOnly = lo.Must(cmd.Flags().GetBool("unset-only"))
			section   = lo.Must(cmd.Flags().GetString("section"))
			header    = style.New().Bold(true).Foreground(color.Purple).Render
		)

		var current string

		for _, v := range envVars() {
			if section != "" && v.section != section {
				continue
			}

			value, present := os.LookupEnv(v.name)
			if (setOnly && !present) || (unsetOnly && present) {
				continue
			}

			if v.section != current && section == "" {
				if current != "" {
					cmd.Println()
				}
				current = v.section
				cmd.Println(style.Faint("# " + current))
			}

			cmd.Print(header(v.name))
			cmd.Print("=")
			if present {
				cmd.Println(style.Fg(color.Green)(value))
			} else {
				cmd.Println(style.Fg(color.Red)("unset"))
			}
		}
	},
}
