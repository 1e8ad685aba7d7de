package cmd

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/vplay-cli/vplay/filesystem"
	"github.com/vplay-cli/vplay/icon"
	"github.com/vplay-cli/vplay/util"
	"github.com/vplay-cli/vplay/where"
)

func disposable() []where.Location {
	return lo.Filter(where.Locations, func(l where.Location, _ int) bool { return l.Disposable })
}

func init() {
	rootCmd.AddCommand(clearCmd)

	for _, l := range disposable() {
		clearCmd.Flags().BoolP(l.Name, l.Short, false, "Remove "+l.Name)
	}
	clearCmd.Flags().BoolP("all", "a", false, "Remove everything listed above")
}

var clearCmd = &cobra.Command{
	Use:     "clear",
	Short:   "Remove cached and saved files",
	Example: "  vplay clear --scripts --queries",
	Run: func(cmd *cobra.Command, args []string) {
		all := lo.Must(cmd.Flags().GetBool("all"))
		targets := lo.Filter(disposable(), func(l where.Location, _ int) bool {
			return all || lo.Must(cmd.Flags().GetBool(l.Name))
		})
		if len(targets) == 0 {
			handleErr(cmd.Help())
			return
		}

		for _, l := range targets {
			erase := util.PrintErasable(fmt.Sprintf("%s Removing %s...", icon.Get(icon.Progress), l.Name))
			err := filesystem.API().RemoveAll(l.Path())
			erase()
			handleErr(err)
			fmt.Printf("%s %s removed\n", icon.Get(icon.Success), l.Name)
		}
	},
}
