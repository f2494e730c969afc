// Package open hands files and URLs to the default handler of the operating system.
package open

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mwembed/mwembed/constant"
)

// Start opens input with app, or with the default handler when app is empty.
// It does not wait for the handler to exit.
func Start(input, app string) (*exec.Cmd, error) {
	cmd, ok := command(input, app)
	if !ok {
		return nil, fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}
	return cmd, cmd.Start()
}

func command(input, app string) (*exec.Cmd, bool) {
	switch runtime.GOOS {
	case constant.Windows:
		if app == "" {
			rundll := filepath.Join(os.Getenv("SYSTEMROOT"), "System32", "rundll32.exe")
			return exec.Command(rundll, "url.dll,FileProtocolHandler", input), true
		}
		// cmd's start treats '&' as a command separator.
		return exec.Command("cmd", "/C", "start", "", app, strings.ReplaceAll(input, "&", "^&")), true
	case constant.Darwin:
		if app == "" {
			return exec.Command("open", input), true
		}
		return exec.Command("open", "-a", app, input), true
	case constant.Linux:
		if app == "" {
			return exec.Command("xdg-open", input), true
		}
		return exec.Command(app, input), true
	case constant.Android:
		if app == "" {
			return exec.Command("termux-open", input), true
		}
		return exec.Command("termux-open", "--choose", input), true
	default:
		return nil, false
	}
}
