package version

import (
	"fmt"

	"github.com/spf13/viper"
	"github.com/vplay-cli/vplay/color"
	"github.com/vplay-cli/vplay/constant"
	"github.com/vplay-cli/vplay/icon"
	"github.com/vplay-cli/vplay/key"
	"github.com/vplay-cli/vplay/log"
	"github.com/vplay-cli/vplay/style"
	"github.com/vplay-cli/vplay/util"
)

// Notify prints a banner when a newer release exists. Lookup failures stay in the log.
func Notify() {
	if !viper.GetBool(key.CliVersionCheck) {
		return
	}

	erase := util.PrintErasable(icon.Get(icon.Progress) + " Checking for a new version...")
	latest, err := Latest()
	erase()
	if err != nil {
		log.Warnf("version check: %v", err)
		return
	}

	newer, err := Newer(latest, constant.Version)
	if err != nil {
		log.Warnf("version check: %v", err)
		return
	}
	if !newer {
		return
	}

	fmt.Printf("\n%s vplay %s is out %s\n%s\n\n",
		style.Fg(color.Green)("▇▇▇"),
		style.Bold(latest),
		style.Faint("(you have "+constant.Version+")"),
		style.Faint(constant.Repository+"/releases/tag/v"+latest),
	)
}
