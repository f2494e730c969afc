// Package cmd implements the command-line interface for mwembed.
package cmd

import (
	"fmt"
	"regexp"

	"github.com/mwembed/mwembed/target"
	"github.com/mwembed/mwembed/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var boxPattern = regexp.MustCompile(`^(?P<width>\d+)x(?P<height>\d+)$`)

// placeholderFlags are shared by every command that builds placeholders from the command line.
type placeholderFlags struct {
	mimeType  string
	audio     bool
	box       string
	lookupKey string
	attrs     map[string]string
	overrides map[string]string
	wait      bool
}

func registerPlaceholderFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("type", "t", "", "MIME type of the given sources. Detected from the extension when omitted")
	cmd.Flags().BoolP("audio", "a", false, "Build audio placeholders instead of video ones")
	cmd.Flags().String("size", "", "Inline CSS size of the placeholder, e.g. 640x360")
	cmd.Flags().StringP("lookup", "l", "", "Resolve the media through the lookup scripts by key")
	lo.Must0(cmd.RegisterFlagCompletionFunc("lookup", completionLookupKeys))
	cmd.Flags().StringToStringP("attr", "A", map[string]string{}, "Placeholder attributes, e.g. --attr loop=,start=0:10")
	cmd.Flags().StringToString("set", map[string]string{}, "Explicit overrides that win over placeholder attributes")
	cmd.Flags().Bool("metadata-wait", false, "Wait for the loaded metadata signal of bare placeholders")
}

func placeholderFlagsOf(cmd *cobra.Command) placeholderFlags {
	return placeholderFlags{
		mimeType:  lo.Must(cmd.Flags().GetString("type")),
		audio:     lo.Must(cmd.Flags().GetBool("audio")),
		box:       lo.Must(cmd.Flags().GetString("size")),
		lookupKey: lo.Must(cmd.Flags().GetString("lookup")),
		attrs:     lo.Must(cmd.Flags().GetStringToString("attr")),
		overrides: lo.Must(cmd.Flags().GetStringToString("set")),
		wait:      lo.Must(cmd.Flags().GetBool("metadata-wait")),
	}
}

// placeholder builds the element for uri. An empty uri relies on the lookup key.
func (f placeholderFlags) placeholder(uri string) (*target.Element, error) {
	tag := lo.Ternary(f.audio, target.Audio, target.Video)

	attrs := make(map[string]string, len(f.attrs)+3)
	for k, v := range f.attrs {
		attrs[k] = v
	}
	if uri != "" {
		attrs["src"] = uri
		if f.mimeType != "" {
			attrs["type"] = f.mimeType
		}
	}
	if f.lookupKey != "" {
		attrs["data-lookup"] = f.lookupKey
	}
	// Nothing outside a host document ever delivers the loaded metadata signal.
	if !f.wait {
		attrs["data-nowait"] = ""
	}

	el := target.New(tag, attrs)
	if id, ok := attrs["id"]; ok {
		el.ID = id
	}

	if f.box != "" {
		groups := util.ReGroups(boxPattern, f.box)
		if len(groups) == 0 {
			return nil, fmt.Errorf("invalid size %q, expected WIDTHxHEIGHT", f.box)
		}
		el.Style.Width = groups["width"] + "px"
		el.Style.Height = groups["height"] + "px"
	}
	return el, nil
}
