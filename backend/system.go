package backend

import (
	"os/exec"

	"github.com/mwembed/mwembed/key"
	"github.com/mwembed/mwembed/open"
	"github.com/mwembed/mwembed/sched"
	"github.com/spf13/viper"
)

// SystemID is the registry identifier of the system backend.
const SystemID = "system"

// SystemMimeTypes are handed to the operating system without checking that anything can play them.
var SystemMimeTypes = []string{
	"video/ogg",
	"video/webm",
	"video/mp4",
	"video/x-matroska",
	"video/quicktime",
	"audio/ogg",
	"audio/mpeg",
	"audio/wav",
	"audio/flac",
}

// System opens media with the default handler of the operating system. Like
// IINA it offers no control channel once the handler runs.
type System struct {
	sched sched.Scheduler
	cmd   *exec.Cmd
}

// NewSystem creates a system adapter.
func NewSystem(s sched.Scheduler) *System {
	return &System{sched: s}
}

// SystemDescriptor registers the system backend. It is not part of Default.
func SystemDescriptor() Descriptor {
	return Descriptor{
		ID:        SystemID,
		Name:      "Operating system default handler",
		MimeTypes: SystemMimeTypes,
		New:       func(s sched.Scheduler) Adapter { return NewSystem(s) },
	}
}

func (m *System) ID() string { return SystemID }

// Features of the system backend. Playback happens outside of mwembed.
func (m *System) Features() Features {
	return Features{
		FeaturePlayHead:      false,
		FeaturePause:         false,
		FeatureStop:          false,
		FeatureVolumeControl: false,
		FeatureTimeDisplay:   false,
		FeatureOverlays:      false,
	}
}

// Load starts the handler. Ready means the handler was launched.
func (m *System) Load(src string, onReady func(error)) {
	cmd, err := open.Start(src, viper.GetString(key.BackendSystemApp))
	if err == nil {
		m.cmd = cmd
		go func() { _ = cmd.Wait() }()
	}
	m.sched.Post(func() { onReady(err) })
}
