// Package cmd implements the vplay command line.
package cmd

import (
	"fmt"
	"os"
	"strings"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vplay-cli/vplay/color"
	"github.com/vplay-cli/vplay/constant"
	"github.com/vplay-cli/vplay/icon"
	"github.com/vplay-cli/vplay/key"
	"github.com/vplay-cli/vplay/log"
	"github.com/vplay-cli/vplay/media"
	"github.com/vplay-cli/vplay/mpv"
	"github.com/vplay-cli/vplay/open"
	"github.com/vplay-cli/vplay/style"
	"github.com/vplay-cli/vplay/tui"
	"github.com/vplay-cli/vplay/version"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Icon variant (e.g. nerd, emoji, square)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	playerFlags(rootCmd)

	rootCmd.Flags().BoolP("continue", "c", false, "Open the most recently played source")

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify()
	})
}

var rootCmd = &cobra.Command{
	Use:   constant.Vplay + " [source]",
	Short: "Play local files, streams and embeds from the terminal",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - Play local files, streams and embeds from the terminal"),
	Example: `  vplay ./movie.mp4
  vplay https://youtu.be/dQw4w9WgXcQ
  vplay -p vimeo 76979871
  vplay --continue`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completionSources,
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		bindPlayerFlags(cmd)
		CheckDependencies()

		source := mo.None[string]()
		switch {
		case len(args) > 0:
			s, err := canonical(args[0], true)
			handleErr(err)
			source = mo.Some(s)
		case lo.Must(cmd.Flags().GetBool("continue")):
			s, err := latestSource()
			handleErr(err)
			source = mo.Some(s)
		}

		s, err := newSession(cmd)
		handleErr(err)

		options := tui.Options{
			Open:       s.openControls,
			Source:     source,
			Remote:     s.remote,
			SeekStep:   float64(viper.GetInt(key.PlayerSeekStep)),
			VolumeStep: float64(viper.GetInt(key.PlayerVolumeStep)) / 100,
			Browse: func(kind media.Kind, el *media.Element) error {
				return open.Start(mpv.PageURL(kind, el))
			},
		}
		handleErr(tui.Run(&options))
	},
}

// Execute runs the root command.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
