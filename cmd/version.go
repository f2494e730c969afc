// Package cmd implements the command-line interface for mwembed.
package cmd

import (
	"os"
	"os/exec"
	"runtime"
	"strings"
	"text/template"

	"github.com/mwembed/mwembed/backend"
	"github.com/mwembed/mwembed/color"
	"github.com/mwembed/mwembed/constant"
	"github.com/mwembed/mwembed/key"
	"github.com/mwembed/mwembed/style"
	"github.com/mwembed/mwembed/version"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.SetOut(os.Stdout)
	versionCmd.Flags().BoolP("short", "s", false, "Display only the version string without metadata")
}

// backendStatus names every backend the CLI registers, marking those whose executable is missing.
func backendStatus() string {
	return strings.Join(lo.Map(cliRegistry(backend.NativeOptions{}).All(), func(d backend.Descriptor, _ int) string {
		if d.ID == backend.MPVID {
			if _, err := exec.LookPath(viper.GetString(key.BackendMPVPath)); err != nil {
				return style.Fg(color.Red)(d.ID + " (not found)")
			}
		}
		return d.ID
	}), ", ")
}

// versionCmd displays application version, build metadata and available backends.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version, build metadata and available backends",
	Long:  "Display the current application version, build revision, platform, and the playback backends this build can negotiate.",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("short")) {
			cmd.Println(constant.Version)
			return
		}

		defer version.Notify()

		versionInfo := struct {
			Version  string
			OS       string
			Arch     string
			BuiltAt  string
			BuiltBy  string
			Revision string
			App      string
			Backends string
		}{
			Version:  constant.Version,
			App:      constant.Mwembed,
			OS:       runtime.GOOS,
			Arch:     runtime.GOARCH,
			BuiltAt:  strings.TrimSpace(constant.BuiltAt),
			BuiltBy:  constant.BuiltBy,
			Revision: constant.Revision,
			Backends: backendStatus(),
		}

		t, err := template.New("version").Funcs(map[string]any{
			"faint":   style.Faint,
			"bold":    style.Bold,
			"magenta": style.Fg(color.Purple),
		}).Parse(`{{ magenta "▇▇▇" }} {{ magenta .App }}

  {{ faint "Version" }}         {{ bold .Version }}
  {{ faint "Git Commit" }}      {{ bold .Revision }}
  {{ faint "Build Date" }}      {{ bold .BuiltAt }}
  {{ faint "Built By" }}        {{ bold .BuiltBy }}
  {{ faint "Platform" }}        {{ bold .OS }}/{{ bold .Arch }}
  {{ faint "Backends" }}        {{ .Backends }}
`)
		handleErr(err)
		handleErr(t.Execute(cmd.OutOrStdout(), versionInfo))
	},
}
