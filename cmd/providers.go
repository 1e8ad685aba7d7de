package cmd

import (
	"os"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vplay-cli/vplay/color"
	"github.com/vplay-cli/vplay/key"
	"github.com/vplay-cli/vplay/media"
	"github.com/vplay-cli/vplay/mpv"
	"github.com/vplay-cli/vplay/provider"
	"github.com/vplay-cli/vplay/sdk"
	"github.com/vplay-cli/vplay/style"
)

func init() {
	rootCmd.AddCommand(providersCmd)

	providersCmd.Flags().BoolP("raw", "r", false, "Only print provider names")
	providersCmd.SetOut(os.Stdout)
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List the playback providers and the media they play",
	Run: func(cmd *cobra.Command, args []string) {
		registry, err := provider.NewRegistry(mpv.Providers(mpv.NewHost(viper.GetString(key.MpvPath)), sdk.DefaultScripts())...)
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("raw")) {
			for _, p := range registry.All() {
				cmd.Println(p.Kind)
			}
			return
		}

		headerStyle := style.New().Foreground(color.HiBlue).Bold(true).Render
		for i, p := range registry.All() {
			if i > 0 {
				cmd.Println()
			}

			types := lo.Map(p.Types, func(t media.Type, _ int) string { return string(t) })
			cmd.Println(headerStyle(p.Kind.String()) + " " + style.Faint(p.Name))
			cmd.Printf("  plays  %s\n", strings.Join(types, ", "))

			script, ok := p.Script.Get()
			if !ok {
				cmd.Println("  sdk    none")
				continue
			}
			cmd.Printf("  sdk    %s\n", style.Fg(color.Yellow)(script.URL))
		}
	},
}
