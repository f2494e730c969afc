package backend

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/mwembed/mwembed/constant"
	"github.com/mwembed/mwembed/sched"
	"github.com/mwembed/mwembed/util"
)

// IINAID is the registry identifier of the IINA backend.
const IINAID = "iina"

// IINA hands media to the macOS IINA application. It exposes no IPC, so the
// embed player only ever sees last-known time and volume for it.
type IINA struct {
	sched  sched.Scheduler
	cmd    *exec.Cmd
	exited chan struct{}
}

// NewIINA creates an IINA adapter.
func NewIINA(s sched.Scheduler) *IINA {
	return &IINA{sched: s, exited: make(chan struct{})}
}

// IINADescriptor registers the IINA backend.
func IINADescriptor() Descriptor {
	return Descriptor{
		ID:        IINAID,
		Name:      "IINA (macOS)",
		MimeTypes: []string{"video/mp4", "video/x-matroska", "video/quicktime", "video/webm"},
		New:       func(s sched.Scheduler) Adapter { return NewIINA(s) },
	}
}

func (m *IINA) ID() string { return IINAID }

// Features of IINA. Playback is controlled in its own window.
func (m *IINA) Features() Features {
	return Features{
		FeaturePlayHead:      false,
		FeaturePause:         false,
		FeatureVolumeControl: false,
		FeatureTimeDisplay:   false,
		FeatureOverlays:      false,
	}
}

// Load launches IINA through LaunchServices.
func (m *IINA) Load(src string, onReady func(error)) {
	if runtime.GOOS != constant.Darwin {
		m.sched.Post(func() { onReady(fmt.Errorf("IINA is only supported on macOS")) })
		return
	}

	args := []string{"-a", "IINA", src, "--args", fmt.Sprintf("--mpv-force-media-title=%s", sanitizeTitle(util.FileStem(src)))}
	m.cmd = exec.Command("open", args...)

	if err := m.cmd.Start(); err != nil {
		m.sched.Post(func() { onReady(fmt.Errorf("LaunchServices failed to invoke IINA: %w", err)) })
		return
	}

	go func() {
		_ = m.cmd.Wait()
		close(m.exited)
	}()

	m.sched.Post(func() { onReady(nil) })
}

// Running reports whether the launcher process is still alive.
func (m *IINA) Running() bool {
	select {
	case <-m.exited:
		return false
	default:
		return m.cmd != nil
	}
}

func (m *IINA) Close() error {
	if m.cmd != nil && m.cmd.Process != nil {
		_ = m.cmd.Process.Kill()
	}
	return nil
}
