package cmd

import (
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/vplay-cli/vplay/color"
	"github.com/vplay-cli/vplay/style"
	"github.com/vplay-cli/vplay/where"
)

func init() {
	rootCmd.AddCommand(whereCmd)

	for _, l := range where.Locations {
		whereCmd.Flags().BoolP(l.Name, l.Short, false, "Print the "+l.Name+" path")
	}
	whereCmd.MarkFlagsMutuallyExclusive(lo.Map(where.Locations, func(l where.Location, _ int) string {
		return l.Name
	})...)

	whereCmd.SetOut(os.Stdout)
}

var whereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where vplay keeps its files",
	Example: `  vplay where
  cd "$(vplay where --plugins)"`,
	Run: func(cmd *cobra.Command, args []string) {
		for _, l := range where.Locations {
			if lo.Must(cmd.Flags().GetBool(l.Name)) {
				cmd.Println(l.Path())
				return
			}
		}

		name := style.New().Bold(true).Foreground(color.HiPurple).Render
		flag := style.Fg(color.Yellow)
		for i, l := range where.Locations {
			if i > 0 {
				cmd.Println()
			}
			cmd.Printf("%s %s\n%s\n", name(l.Name), flag("--"+l.Name), l.Path())
		}
	},
}
