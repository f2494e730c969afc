// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/mwembed/mwembed/color"
	"github.com/mwembed/mwembed/constant"
	"github.com/mwembed/mwembed/key"
	"github.com/mwembed/mwembed/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.Mwembed + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

// typeName returns the string representation of the field's underlying value type.
func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case float64:
		return "float64"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	case []int:
		return "[]int"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	// register validates and adds a new configuration field to the global registry.
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		f := Field{Key: k, Value: v, Description: desc}
		Default[k] = f
		EnvExposed = append(EnvExposed, k)
	}

	register(key.MonitorRate, 250, "Interval of the playback monitor loop in milliseconds")
	register(key.DefaultSize, "400x300", "Player box size used when neither CSS nor attributes provide one.\nFormat is WIDTHxHEIGHT")
	register(key.WaitForMeta, true, "Wait for the loaded metadata signal before rewriting bare audio/video placeholders")
	register(key.WaitForMetaTimeout, 5000, "Upper bound in milliseconds for the metadata wait")
	register(key.SeekResumeDelay, 100, "Delay in milliseconds between a seek and the playback resume")
	register(key.URLTimeEncoding, "none", "Server side seeking through the source URL.\nAvailable options are: none, always, plugin")
	register(key.NativeControls, false, "Prefer the native controls of the backend")
	register(key.InclusiveEnd, false, "Treat reaching the end boundary exactly as the end of the clip")
	register(key.VideoAspect, "4:3", "Aspect ratio used to derive a missing box dimension")
	register(key.VolumeTolerance, 1, "Volume difference in percent below which the backend volume is not reconciled")
	register(key.PlaceholderIDPrefix, "vid", "Prefix of identifiers assigned to placeholders without one")
	register(key.AttrVolume, 0.75, "Default volume, from 0 to 1")
	register(key.AttrControls, true, "Show controls by default")
	register(key.AttrAutoplay, false, "Start playback as soon as the player is ready")
	register(key.AttrLoop, false, "Replay the clip when it ends")
	register(key.AttrMuted, false, "Start muted")
	register(key.AttrPreviewMode, false, "Suppress the end of playback notification")
	register(key.AttrPoster, "", "Poster shown while the player is idle")
	register(key.BackendPreferred, "", "Backend to try first when several support a source.\nType \"mwembed backends\" to list them")
	register(key.BackendMPVPath, "mpv", "Executable used by the mpv backend")
	register(key.BackendSystemApp, "", "Application the system backend opens media with.\nThe default handler of the operating system is used when empty")
	register(key.LookupCache, true, "Cache results of external source lookups")
	register(key.LookupCacheLifetime, 24, "Lifetime of cached lookup results in hours")
	register(key.LookupSuggestions, true, "Suggest previously resolved lookup keys in shell completions")
	register(key.MetricsAddr, "", "Address \"mwembed play\" serves Prometheus metrics on.\nMetrics are not served when empty")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, true, "Check for a newer release when printing the version")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, plain, squares, nerd (nerd-font required)")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
