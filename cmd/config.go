// Package cmd implements the command-line interface for mwembed.
package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/mwembed/mwembed/backend"
	"github.com/mwembed/mwembed/color"
	"github.com/mwembed/mwembed/config"
	"github.com/mwembed/mwembed/constant"
	"github.com/mwembed/mwembed/filesystem"
	"github.com/mwembed/mwembed/icon"
	"github.com/mwembed/mwembed/key"
	"github.com/mwembed/mwembed/style"
	"github.com/mwembed/mwembed/util"
	"github.com/mwembed/mwembed/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/exp/slices"
)

func errUnknownKey(k string) error {
	closest := lo.MinBy(lo.Keys(config.Default), func(a string, b string) bool {
		return levenshtein.Distance(k, a) < levenshtein.Distance(k, b)
	})
	msg := fmt.Sprintf(
		"unknown key %s, did you mean %s?",
		style.Fg(color.Red)(k),
		style.Fg(color.Yellow)(closest),
	)

	return errors.New(msg)
}

func completionConfigKeys(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return lo.Keys(config.Default), cobra.ShellCompDirectiveNoFileComp
}

func completionConfigSections(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return config.Sections(), cobra.ShellCompDirectiveNoFileComp
}

// completionConfigValues completes the value of "config set <key>".
func completionConfigValues(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return completionConfigKeys(cmd, args, toComplete)
	}

	k := args[0]
	if k == key.BackendPreferred {
		return completionBackends(cmd, nil, toComplete)
	}
	if opts, ok := config.Options(k); ok {
		return opts, cobra.ShellCompDirectiveNoFileComp
	}
	if _, ok := config.Default[k].Value.(bool); ok {
		return []string{"true", "false"}, cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func configFile() string {
	return filepath.Join(where.Config(), fmt.Sprintf("%s.%s", constant.Mwembed, "toml"))
}

// persist writes the in-memory configuration, creating the file on first use.
func persist() error {
	switch err := viper.WriteConfig(); err.(type) {
	case viper.ConfigFileNotFoundError:
		return viper.SafeWriteConfig()
	default:
		return err
	}
}

// parseValue converts the raw command line value to the type of the key's default.
func parseValue(k string, raw []string) (any, error) {
	switch config.Default[k].Value.(type) {
	case string:
		return raw[0], nil
	case int:
		n, err := strconv.Atoi(raw[0])
		if err != nil {
			return nil, fmt.Errorf("invalid integer value: %s", raw[0])
		}
		return n, nil
	case float64:
		f, err := strconv.ParseFloat(raw[0], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number value: %s", raw[0])
		}
		return f, nil
	case bool:
		b, err := strconv.ParseBool(raw[0])
		if err != nil {
			return nil, fmt.Errorf("invalid boolean value: %s", raw[0])
		}
		return b, nil
	default:
		return raw, nil
	}
}

// checkValue validates v for k. The preferred backend must be one the CLI registers.
func checkValue(k string, v any) error {
	if k == key.BackendPreferred {
		id := fmt.Sprint(v)
		registry := cliRegistry(backend.NativeOptions{})
		if _, ok := registry.Get(id); id != "" && !ok {
			return fmt.Errorf("unknown backend %q, did you mean %q?", id, registry.Suggest(id))
		}
		return nil
	}
	return config.Validate(k, v)
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.SetOut(os.Stdout)
}

// configCmd serves as the parent command for managing application configuration.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage player, backend and lookup settings",
}

func init() {
	configCmd.AddCommand(configInfoCmd)
	configInfoCmd.Flags().StringSliceP("key", "k", []string{}, "Specify the configuration keys to retrieve information for")
	configInfoCmd.Flags().StringSliceP("section", "s", []string{}, "Only show keys of these sections (e.g. embedplayer, backend, lookup)")
	configInfoCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON string")
	configInfoCmd.MarkFlagsMutuallyExclusive("key", "section")
	_ = configInfoCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)
	_ = configInfoCmd.RegisterFlagCompletionFunc("section", completionConfigSections)

	configInfoCmd.SetOut(os.Stdout)
}

// configInfoCmd displays the settings grouped by section.
var configInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Describe settings, grouped by section",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			keys     = lo.Must(cmd.Flags().GetStringSlice("key"))
			sections = lo.Must(cmd.Flags().GetStringSlice("section"))
			asJson   = lo.Must(cmd.Flags().GetBool("json"))
			fields   = lo.Values(config.Default)
		)

		for _, k := range keys {
			if _, ok := config.Default[k]; !ok {
				handleErr(errUnknownKey(k))
			}
		}
		for _, s := range sections {
			if !lo.Contains(config.Sections(), s) {
				handleErr(fmt.Errorf("unknown section %s, available: %s", s, strings.Join(config.Sections(), ", ")))
			}
		}

		fields = lo.Filter(fields, func(f config.Field, _ int) bool {
			switch {
			case len(keys) > 0:
				return lo.Contains(keys, f.Key)
			case len(sections) > 0:
				return lo.Contains(sections, config.Section(f.Key))
			default:
				return true
			}
		})
		slices.SortFunc(fields, func(a, b config.Field) int {
			return strings.Compare(a.Key, b.Key)
		})

		if asJson {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			lo.Must0(encoder.Encode(fields))
			return
		}

		grouped := lo.GroupBy(fields, func(f config.Field) string { return config.Section(f.Key) })
		names := lo.Keys(grouped)
		slices.Sort(names)

		for i, name := range names {
			if i > 0 {
				cmd.Println()
			}
			cmd.Println(style.Bold(style.Fg(color.Purple)("[" + name + "]")))
			for _, field := range grouped[name] {
				cmd.Println()
				cmd.Println(field.Pretty())
			}
		}
	},
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configSetCmd.Flags().StringP("key", "k", "", "The configuration key to update")
	configSetCmd.Flags().StringSliceP("value", "v", []string{}, "The new value to assign to the configuration key")
	_ = configSetCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)
}

// configSetCmd updates the value of a specific configuration key.
var configSetCmd = &cobra.Command{
	Use:               "set [key] [value]",
	Short:             "Update a setting, checking it against the values the player accepts",
	Example:           "  mwembed config set embedplayer.url_time_encoding always\n  mwembed config set backend.preferred mpv",
	Args:              cobra.MaximumNArgs(2),
	ValidArgsFunction: completionConfigValues,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			k     = lo.Must(cmd.Flags().GetString("key"))
			value = lo.Must(cmd.Flags().GetStringSlice("value"))
		)

		if len(args) >= 1 {
			k = args[0]
		}
		if len(args) >= 2 {
			value = args[1:]
		}

		if k == "" {
			handleErr(errors.New("key is required as an argument or --key flag"))
		}
		if len(value) == 0 {
			handleErr(errors.New("value is required as an argument or --value flag"))
		}
		if _, ok := config.Default[k]; !ok {
			handleErr(errUnknownKey(k))
		}

		v, err := parseValue(k, value)
		handleErr(err)
		handleErr(checkValue(k, v))

		viper.Set(k, v)
		handleErr(persist())

		cmd.Printf(
			"%s set %s to %s\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
			style.Fg(color.Purple)(k),
			style.Fg(color.Yellow)(fmt.Sprintf("%v", v)),
		)
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configGetCmd.Flags().StringP("key", "k", "", "The specific configuration key to retrieve")
	_ = configGetCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)
}

// configGetCmd retrieves the current value of a configuration key.
var configGetCmd = &cobra.Command{
	Use:               "get [key]",
	Short:             "Print the current value of a setting",
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		k := lo.Must(cmd.Flags().GetString("key"))
		if len(args) >= 1 {
			k = args[0]
		}

		if k == "" {
			handleErr(errors.New("key is required as an argument or --key flag"))
		}
		if _, ok := config.Default[k]; !ok {
			handleErr(errUnknownKey(k))
		}

		cmd.Println(viper.Get(k))
	},
}

func init() {
	configCmd.AddCommand(configWriteCmd)
	configWriteCmd.Flags().BoolP("force", "f", false, "Forcefully overwrite the existing configuration file")
}

// configWriteCmd serializes the current in-memory configuration to disk.
var configWriteCmd = &cobra.Command{
	Use:   "write",
	Short: "Write the current settings to the config file",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("force")) {
			handleErr(filesystem.API().Remove(configFile()))
		}

		handleErr(viper.SafeWriteConfig())
		cmd.Printf(
			"%s wrote config to %s\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
			configFile(),
		)
	},
}

func init() {
	configCmd.AddCommand(configDeleteCmd)
}

// configDeleteCmd removes the configuration file.
var configDeleteCmd = &cobra.Command{
	Use:     "delete",
	Short:   "Remove the config file, falling back to the defaults",
	Aliases: []string{"remove"},
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(filesystem.API().Remove(configFile()))
		cmd.Printf(
			"%s deleted config\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
		)
	},
}

func init() {
	configCmd.AddCommand(configResetCmd)

	configResetCmd.Flags().StringP("key", "k", "", "The configuration key to restore to its default value")
	configResetCmd.Flags().StringP("section", "s", "", "Restore every key of a section")
	configResetCmd.Flags().BoolP("all", "a", false, "Restore all configuration settings to their defaults")
	configResetCmd.MarkFlagsMutuallyExclusive("key", "section", "all")
	configResetCmd.MarkFlagsOneRequired("key", "section", "all")
	_ = configResetCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)
	_ = configResetCmd.RegisterFlagCompletionFunc("section", completionConfigSections)
}

// configResetCmd restores configuration keys to their default values.
var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore a setting, a section or everything to the defaults",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			k       = lo.Must(cmd.Flags().GetString("key"))
			section = lo.Must(cmd.Flags().GetString("section"))
			all     = lo.Must(cmd.Flags().GetBool("all"))
		)

		if k != "" {
			if _, ok := config.Default[k]; !ok {
				handleErr(errUnknownKey(k))
			}
		}

		reset := lo.Filter(lo.Values(config.Default), func(f config.Field, _ int) bool {
			switch {
			case all:
				return true
			case section != "":
				return config.Section(f.Key) == section
			default:
				return f.Key == k
			}
		})
		if len(reset) == 0 {
			handleErr(fmt.Errorf("unknown section %s, available: %s", section, strings.Join(config.Sections(), ", ")))
		}

		for _, f := range reset {
			viper.Set(f.Key, f.Value)
		}
		handleErr(persist())

		switch {
		case all:
			cmd.Printf("%s reset all config values\n", style.Fg(color.Green)(icon.Get(icon.Success)))
		case section != "":
			cmd.Printf(
				"%s reset %s in %s\n",
				style.Fg(color.Green)(icon.Get(icon.Success)),
				util.Quantify(len(reset), "key", "keys"),
				style.Fg(color.Purple)(section),
			)
		default:
			cmd.Printf(
				"%s reset %s to default value %s\n",
				style.Fg(color.Green)(icon.Get(icon.Success)),
				style.Fg(color.Purple)(k),
				style.Fg(color.Yellow)(fmt.Sprintf("%v", config.Default[k].Value)),
			)
		}
	},
}
