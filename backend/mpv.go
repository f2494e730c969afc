package backend

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mwembed/mwembed/constant"
	"github.com/mwembed/mwembed/key"
	"github.com/mwembed/mwembed/log"
	"github.com/mwembed/mwembed/sched"
	"github.com/mwembed/mwembed/util"
	"github.com/spf13/viper"
)

// MPVID is the registry identifier of the mpv backend.
const MPVID = "mpv"

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
)

var (
	// ErrProcessExited is reported once the mpv process is gone.
	ErrProcessExited = errors.New("mpv process exited")

	// ErrClosed is reported by a load the adapter was closed under.
	ErrClosed = errors.New("mpv backend closed")
)

// MPV drives an external mpv process over its JSON-IPC socket.
type MPV struct {
	sched sched.Scheduler
	mu    sync.Mutex // serializes socket round trips

	// proc guards the process state shared with the start goroutine.
	proc       sync.Mutex
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{}
	listener   *EventListener
	closed     bool

	err error
}

// NewMPV creates an mpv adapter. The process starts on Load.
func NewMPV(s sched.Scheduler) *MPV {
	return &MPV{sched: s}
}

// MPVDescriptor registers the mpv backend.
func MPVDescriptor() Descriptor {
	return Descriptor{
		ID:   MPVID,
		Name: "mpv (JSON-IPC)",
		MimeTypes: append(append([]string{}, NativeMimeTypes...),
			"video/x-matroska",
			"video/quicktime",
			"video/x-flv",
			"audio/flac",
			"audio/mp4",
			"application/vnd.apple.mpegurl",
			"application/dash+xml",
		),
		New: func(s sched.Scheduler) Adapter { return NewMPV(s) },
	}
}

func (m *MPV) ID() string { return MPVID }

// Features of mpv.
func (m *MPV) Features() Features {
	return Features{
		FeatureOverlays:     false,
		FeatureSourceSwitch: true,
		FeatureAutoplay:     true,
	}
}

// Load starts a paused mpv on src. The process is spawned off the scheduler and
// the outcome is posted back.
func (m *MPV) Load(src string, onReady func(error)) {
	go func() {
		err := m.start(src)
		m.sched.Post(func() { onReady(err) })
	}()
}

func (m *MPV) start(rawURL string) error {
	safeURL, err := sanitizeMediaTarget(rawURL)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	socket, err := m.reserveSocket()
	if err != nil {
		return err
	}

	title := sanitizeTitle(util.FileStem(safeURL))
	args := []string{
		"--no-terminal",
		"--really-quiet",
		"--pause",
		fmt.Sprintf("--input-ipc-server=%s", socket),
		fmt.Sprintf("--force-media-title=%s", title),
		"--force-window=yes",
		"--idle=yes",
		safeURL,
	}

	cmd := exec.Command(viper.GetString(key.BackendMPVPath), args...)
	cmd.SysProcAttr = sysProcAttr()
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	// Close either sees the process or the process is never started.
	m.proc.Lock()
	if m.closed {
		m.proc.Unlock()
		return ErrClosed
	}
	if err := cmd.Start(); err != nil {
		m.proc.Unlock()
		return fmt.Errorf("start mpv: %w", err)
	}
	exited := make(chan struct{})
	m.cmd, m.exited = cmd, exited
	m.proc.Unlock()

	go func() {
		_ = cmd.Wait()
		close(exited)
		m.sched.Post(func() {
			if m.err == nil {
				m.err = ErrProcessExited
			}
		})
	}()

	if err := m.waitForSocket(socket, exited); err != nil {
		select {
		case <-exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = killProcess(cmd)
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	listener := NewEventListener(socket, m.onEvent)
	if err := listener.Start(); err != nil {
		log.Warnf("mpv event listener: %v", err)
	}

	m.proc.Lock()
	defer m.proc.Unlock()
	if m.closed {
		listener.Stop()
		return ErrClosed
	}
	m.listener = listener
	return nil
}

// reserveSocket picks the IPC socket path once per adapter.
func (m *MPV) reserveSocket() (string, error) {
	m.proc.Lock()
	defer m.proc.Unlock()

	if m.closed {
		return "", ErrClosed
	}
	if m.socketPath == "" {
		randomBytes := make([]byte, 4)
		if _, err := rand.Read(randomBytes); err != nil {
			return "", fmt.Errorf("generate socket name: %w", err)
		}
		m.socketPath = filepath.Join(os.TempDir(), fmt.Sprintf("%s-%x.sock", constant.Mwembed, randomBytes))
	}
	return m.socketPath, nil
}

func (m *MPV) isClosed() bool {
	m.proc.Lock()
	defer m.proc.Unlock()
	return m.closed
}

// onEvent runs on the listener goroutine.
func (m *MPV) onEvent(name string, data interface{}) {
	if name != "end-file" {
		return
	}
	event, _ := data.(map[string]interface{})
	if reason, _ := event["reason"].(string); reason == "error" {
		msg, _ := event["file_error"].(string)
		m.sched.Post(func() { m.err = fmt.Errorf("mpv playback: %s", msg) })
	}
}

// waitForSocket polls until the IPC socket accepts connections.
func (m *MPV) waitForSocket(socket string, exited <-chan struct{}) error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		select {
		case <-exited:
			return fmt.Errorf("mpv exited before socket was ready")
		default:
		}
		if m.isClosed() {
			return ErrClosed
		}

		conn, err := net.Dial("unix", socket)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", socket, socketWaitRetries)
}

func (m *MPV) Play() error  { return m.set("pause", false) }
func (m *MPV) Pause() error { return m.set("pause", true) }

func (m *MPV) CurrentTime() (float64, error) {
	return m.getFloatProperty("time-pos")
}

func (m *MPV) SetCurrentTime(seconds float64) error {
	_, err := m.sendCommand([]interface{}{"seek", seconds, "absolute"})
	return err
}

func (m *MPV) Duration() (float64, error) {
	return m.getFloatProperty("duration")
}

// Volume maps mpv's 0..100 scale to [0,1].
func (m *MPV) Volume() (float64, error) {
	v, err := m.getFloatProperty("volume")
	if err != nil {
		return 0, err
	}
	return util.Clamp(v/100, 0, 1), nil
}

func (m *MPV) SetVolume(volume float64) error {
	return m.set("volume", util.Clamp(volume, 0, 1)*100)
}

func (m *MPV) Muted() (bool, error) {
	data, err := m.sendCommand([]interface{}{"get_property", "mute"})
	if err != nil {
		return false, err
	}
	muted, _ := data.(bool)
	return muted, nil
}

func (m *MPV) SetMuted(muted bool) error {
	return m.set("mute", muted)
}

// Buffered is the position of the demuxer cache end relative to the duration.
func (m *MPV) Buffered() (float64, error) {
	dur, err := m.Duration()
	if err != nil || dur <= 0 {
		return 0, err
	}
	cached, err := m.getFloatProperty("demuxer-cache-time")
	if err != nil {
		return 0, err
	}
	return util.Clamp(cached/dur, 0, 1), nil
}

// SwitchSrc replaces the playing file.
func (m *MPV) SwitchSrc(src string, onSwitched func(error)) {
	go func() {
		safeURL, err := sanitizeMediaTarget(src)
		if err == nil {
			_, err = m.sendCommand([]interface{}{"loadfile", safeURL, "replace"})
		}
		m.sched.Post(func() { onSwitched(err) })
	}()
}

func (m *MPV) Err() error { return m.err }

// Close quits mpv, killing it when it does not exit in time. A process still
// starting up is killed right away; a load that has not spawned one yet never will.
func (m *MPV) Close() error {
	m.proc.Lock()
	if m.closed {
		m.proc.Unlock()
		return nil
	}
	m.closed = true
	cmd, exited, listener, socket := m.cmd, m.exited, m.listener, m.socketPath
	m.proc.Unlock()

	if cmd == nil {
		return nil
	}

	if listener == nil {
		_ = killProcess(cmd)
	} else {
		listener.Stop()
		_, _ = m.sendCommand([]interface{}{"quit"})
	}

	select {
	case <-exited:
	case <-time.After(3 * time.Second):
		_ = killProcess(cmd)
	}

	_ = os.Remove(socket)
	return nil
}

// Socket returns the IPC socket path.
func (m *MPV) Socket() string {
	m.proc.Lock()
	defer m.proc.Unlock()
	return m.socketPath
}

func (m *MPV) set(property string, value interface{}) error {
	_, err := m.sendCommand([]interface{}{"set_property", property, value})
	return err
}

func (m *MPV) getFloatProperty(name string) (float64, error) {
	data, err := m.sendCommand([]interface{}{"get_property", name})
	if err != nil {
		return 0, err
	}

	if data == nil {
		return 0, fmt.Errorf("property %s: nil response", name)
	}

	val, ok := data.(float64)
	if !ok {
		return 0, fmt.Errorf("property %s: expected float64, got %T", name, data)
	}

	return val, nil
}

// sanitizeMediaTarget rejects targets mpv would read as flags or unsupported schemes.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty URL")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}

	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("url must not start with '-' (looks like a flag)")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https", "rtmp", "rtsp":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	return filepath.Clean(l), nil
}

func sanitizeTitle(title string) string {
	t := strings.NewReplacer("\n", " ", "\r", " ", "\t", " ", "\x00", "").Replace(title)
	return strings.TrimSpace(t)
}
