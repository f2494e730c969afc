// Package cmd implements the command-line interface for mwembed.
package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/mwembed/mwembed/backend"
	"github.com/mwembed/mwembed/constant"
	"github.com/mwembed/mwembed/icon"
	"github.com/mwembed/mwembed/key"
	"github.com/mwembed/mwembed/style"
	"github.com/spf13/viper"
)

// CheckDependencies exits when the executable behind an external backend is missing.
// The host decoder needs nothing.
func CheckDependencies(backendID string) {
	var dep string
	switch backendID {
	case backend.MPVID:
		dep = viper.GetString(key.BackendMPVPath)
	case backend.IINAID:
		if runtime.GOOS != constant.Darwin {
			return
		}
		dep = "open"
	default:
		return
	}

	if _, err := exec.LookPath(dep); err != nil {
		printMissingDependencyError(backendID, dep)
		os.Exit(1)
	}
}

func printMissingDependencyError(backendID, dep string) {
	var installCmd string
	if backendID == backend.MPVID {
		switch runtime.GOOS {
		case constant.Darwin:
			installCmd = "brew install mpv"
		case constant.Linux:
			installCmd = "sudo apt install mpv"
		case constant.Windows:
			installCmd = "scoop install mpv"
		}
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(style.HiRed).Render(fmt.Sprintf("%s Error: Missing Dependency", icon.Get(icon.Fail)))
	body := style.New().Foreground(style.Text).Render(fmt.Sprintf("The %s backend needs '%s', which was not found in your PATH.", backendID, dep))

	suggestion := ""
	if installCmd != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(style.AccentColor).Bold(true).Render(installCmd))
	}

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
		),
	))
}
