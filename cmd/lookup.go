// Package cmd implements the command-line interface for mwembed.
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/mwembed/mwembed/color"
	"github.com/mwembed/mwembed/constant"
	"github.com/mwembed/mwembed/filesystem"
	"github.com/mwembed/mwembed/icon"
	"github.com/mwembed/mwembed/key"
	"github.com/mwembed/mwembed/log"
	"github.com/mwembed/mwembed/lookup"
	"github.com/mwembed/mwembed/open"
	"github.com/mwembed/mwembed/query"
	"github.com/mwembed/mwembed/sched"
	"github.com/mwembed/mwembed/style"
	"github.com/mwembed/mwembed/util"
	"github.com/mwembed/mwembed/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func completionLookupKeys(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return query.SuggestMany(toComplete), cobra.ShellCompDirectiveNoFileComp
}

func init() {
	rootCmd.AddCommand(lookupCmd)
	lookupCmd.Flags().BoolP("json", "j", false, "Format the resolution as JSON")
	lookupCmd.Flags().Duration("timeout", 30*time.Second, "Give up on the lookup after this long")
	lookupCmd.Flags().BoolP("open", "o", false, "Open the resolved source with the system backend application")
	lookupCmd.SetOut(os.Stdout)
}

// lookupCmd resolves a media key through the installed lookup scripts.
var lookupCmd = &cobra.Command{
	Use:               "lookup <key>",
	Short:             "Resolve a media key through the lookup scripts",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completionLookupKeys,
	Run: func(cmd *cobra.Command, args []string) {
		timeout := lo.Must(cmd.Flags().GetDuration("timeout"))
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		loop := sched.NewLoop()
		resolver, err := newLookup(loop)
		handleErr(err)

		var result mo.Result[lookup.Resolution]
		loop.Post(func() {
			resolver.Lookup(args[0], func(r mo.Result[lookup.Resolution]) {
				result = r
				cancel()
			})
		})

		if err := loop.Run(ctx); errors.Is(err, context.DeadlineExceeded) {
			handleErr(fmt.Errorf("lookup of %q timed out after %s", args[0], timeout))
		}

		res, err := result.Get()
		if errors.Is(err, lookup.ErrNotFound) {
			if suggestion, ok := query.Suggest(args[0]).Get(); ok && suggestion != args[0] {
				err = fmt.Errorf("%w, did you mean %q?", err, suggestion)
			}
		}
		handleErr(err)

		if err := query.Remember(args[0], 1); err != nil {
			log.Warn(err)
		}

		if lo.Must(cmd.Flags().GetBool("open")) {
			_, err := open.Start(res.Source.URI, viper.GetString(key.BackendSystemApp))
			handleErr(err)
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
				"uri":               res.Source.URI,
				"type":              res.Source.MimeType,
				"url_time_encoding": res.Source.URLTimeEncoding,
				"poster":            res.Poster.OrEmpty(),
				"duration":          res.Duration.OrEmpty(),
			}))
			return
		}

		cmd.Printf("%s %s\n", icon.Get(icon.Success), style.Fg(color.Yellow)(res.Source.URI))
		cmd.Printf("  %s %s\n", style.Faint("type"), res.Source.MimeType)
		if poster, ok := res.Poster.Get(); ok {
			cmd.Printf("  %s %s\n", style.Faint("poster"), poster)
		}
		if duration, ok := res.Duration.Get(); ok {
			cmd.Printf("  %s %.2fs\n", style.Faint("duration"), duration)
		}
	},
}

func init() {
	lookupCmd.AddCommand(lookupListCmd)
}

var lookupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the installed lookup scripts",
	Run: func(cmd *cobra.Command, args []string) {
		scripts, err := lookup.LoadScripts(sched.NewManual(), where.Lookups())
		handleErr(err)

		if len(scripts) == 0 {
			cmd.Printf("%s no lookup scripts in %s\n", icon.Get(icon.Fail), where.Lookups())
			return
		}

		for _, sc := range scripts {
			cmd.Printf("%s %s\n", icon.Get(icon.Lua), sc.Name())
		}
	},
}

func init() {
	lookupCmd.AddCommand(lookupNewCmd)
	lookupNewCmd.Flags().StringP("name", "n", "", "Name of the new lookup script")
	lo.Must0(lookupNewCmd.MarkFlagRequired("name"))
}

// lookupNewCmd scaffolds a lookup script from the built-in template.
var lookupNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a lookup script from a template",
	Run: func(cmd *cobra.Command, args []string) {
		name := strings.TrimSpace(lo.Must(cmd.Flags().GetString("name")))
		if name == "" || strings.ContainsAny(name, `/\:`) {
			handleErr(fmt.Errorf("invalid script name %q", name))
		}

		author := "anonymous"
		if u, err := user.Current(); err == nil {
			author = u.Username
		}

		tmpl, err := template.New("lookup").Funcs(template.FuncMap{
			"repeat": strings.Repeat,
			"plus":   func(a, b int) int { return a + b },
			"max":    util.Max[int],
		}).Parse(constant.LookupTemplate)
		handleErr(err)

		path := filepath.Join(where.Lookups(), name+".lua")
		if exists := lo.Must(filesystem.API().Exists(path)); exists {
			handleErr(fmt.Errorf("lookup script %s already exists", path))
		}

		file, err := filesystem.API().Create(path)
		handleErr(err)
		defer util.Ignore(file.Close)

		handleErr(tmpl.Execute(file, struct {
			Name      string
			Author    string
			ResolveFn string
		}{
			Name:      name,
			Author:    author,
			ResolveFn: constant.ResolveFn,
		}))

		cmd.Printf("%s created %s\n", icon.Get(icon.Success), style.Fg(color.Yellow)(path))
	},
}
