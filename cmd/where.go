// Package cmd implements the command-line interface for mwembed.
package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mwembed/mwembed/color"
	"github.com/mwembed/mwembed/filesystem"
	"github.com/mwembed/mwembed/style"
	"github.com/mwembed/mwembed/util"
	"github.com/mwembed/mwembed/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

// whereTarget is a path the application reads or writes, with the flag printing it alone.
type whereTarget struct {
	name     string
	where    func() string
	argLong  string
	argShort mo.Option[string]
	hidden   bool
	// describe summarizes the directory contents, if set.
	describe func(dir string) string
}

var wherePaths = []*whereTarget{
	{"Config", where.Config, "config", mo.Some("c"), false, nil},
	{"Lookups", where.Lookups, "lookups", mo.Some("s"), false, describeLookups},
	{"Logs", where.Logs, "logs", mo.Some("l"), false, nil},
	{"Cache", where.Cache, "cache", mo.None[string](), true, nil},
	{"Lookup cache", where.LookupCache, "lookup-cache", mo.None[string](), true, nil},
	{"Temp", where.Temp, "temp", mo.None[string](), true, nil},
}

// describeLookups counts the lookup scripts in dir.
func describeLookups(dir string) string {
	entries, err := filesystem.API().ReadDir(dir)
	if err != nil {
		return ""
	}
	scripts := lo.CountBy(entries, func(e os.FileInfo) bool {
		return !e.IsDir() && strings.HasSuffix(e.Name(), ".lua")
	})
	return util.Quantify(scripts, "script", "scripts")
}

func init() {
	rootCmd.AddCommand(whereCmd)

	for _, n := range wherePaths {
		if n.argShort.IsPresent() {
			whereCmd.Flags().BoolP(n.argLong, n.argShort.MustGet(), false, n.name+" path")
		} else {
			whereCmd.Flags().Bool(n.argLong, false, n.name+" path")
		}

		if n.hidden {
			lo.Must0(whereCmd.Flags().MarkHidden(n.argLong))
		}
	}
	whereCmd.Flags().BoolP("all", "a", false, "Include cache and temporary directories")

	whereCmd.MarkFlagsMutuallyExclusive(lo.Map(wherePaths, func(t *whereTarget, _ int) string {
		return t.argLong
	})...)

	whereCmd.SetOut(os.Stdout)
}

// whereCmd prints the directories holding config, lookup scripts, logs and caches.
var whereCmd = &cobra.Command{
	Use:   "where",
	Short: "Display the directories holding config, lookup scripts, logs and caches",
	Run: func(cmd *cobra.Command, args []string) {
		headerStyle := style.New().Bold(true).Foreground(color.HiPurple).Render

		for _, n := range wherePaths {
			if lo.Must(cmd.Flags().GetBool(n.argLong)) {
				cmd.Println(n.where())
				return
			}
		}

		all := lo.Must(cmd.Flags().GetBool("all"))
		shown := lo.Filter(wherePaths, func(t *whereTarget, _ int) bool {
			return all || !t.hidden
		})

		for i, n := range shown {
			dir := filepath.Clean(n.where())
			header := headerStyle(n.name+"?") + " " + style.Fg(color.Yellow)("--"+n.argLong)
			if exists, _ := filesystem.API().Exists(dir); !exists {
				header += " " + style.Fg(color.Red)("missing")
			} else if n.describe != nil {
				if summary := n.describe(dir); summary != "" {
					header += " " + style.Faint(summary)
				}
			}

			cmd.Println(header)
			cmd.Println(dir)

			if i < len(shown)-1 {
				cmd.Println()
			}
		}
	},
}
