package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/viper"
	"github.com/vplay-cli/vplay/color"
	"github.com/vplay-cli/vplay/constant"
	"github.com/vplay-cli/vplay/icon"
	"github.com/vplay-cli/vplay/key"
	"github.com/vplay-cli/vplay/log"
	"github.com/vplay-cli/vplay/mpv"
	"github.com/vplay-cli/vplay/style"
)

// CheckDependencies exits when the configured mpv executable cannot be found.
func CheckDependencies() {
	path := viper.GetString(key.MpvPath)
	if _, err := exec.LookPath(path); err != nil {
		log.Error(err)
		printMissingDependencyError(path)
		os.Exit(1)
	}
}

func printMissingDependencyError(dep string) {
	var installCmd string
	switch runtime.GOOS {
	case constant.Darwin:
		installCmd = "brew install mpv"
		if filepath.Base(dep) == mpv.IINACLI {
			installCmd = "brew install --cask iina"
		}
	case constant.Linux:
		installCmd = "sudo apt install mpv yt-dlp"
	case constant.Windows:
		installCmd = "scoop install mpv yt-dlp"
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(color.HiRed).Render(fmt.Sprintf("%s Error: Missing Dependency", icon.Get(icon.Fail)))
	body := style.New().Foreground(color.Text).Render(fmt.Sprintf("The required dependency '%s' was not found. Set %s or install it.", dep, key.MpvPath))

	suggestion := ""
	if installCmd != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(color.Accent).Bold(true).Render(installCmd))
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
