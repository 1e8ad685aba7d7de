package cmd

import (
	"encoding/json"
	"os"
	"runtime"
	"strings"
	"text/template"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vplay-cli/vplay/color"
	"github.com/vplay-cli/vplay/constant"
	"github.com/vplay-cli/vplay/key"
	"github.com/vplay-cli/vplay/style"
	"github.com/vplay-cli/vplay/version"
)

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.SetOut(os.Stdout)
	versionCmd.Flags().BoolP("short", "s", false, "Only print the version number")
	versionCmd.Flags().BoolP("json", "j", false, "Print build information as json")
	versionCmd.MarkFlagsMutuallyExclusive("short", "json")
}

type buildInfo struct {
	Version  string `json:"version"`
	Revision string `json:"revision"`
	BuiltAt  string `json:"builtAt"`
	BuiltBy  string `json:"builtBy"`
	Platform string `json:"platform"`
	Go       string `json:"go"`
	Mpv      string `json:"mpv"`
}

func currentBuild() buildInfo {
	unknown := func(s string) string { return lo.Ternary(strings.TrimSpace(s) == "", "unknown", strings.TrimSpace(s)) }
	return buildInfo{
		Version:  constant.Version,
		Revision: unknown(constant.Revision),
		BuiltAt:  unknown(constant.BuiltAt),
		BuiltBy:  unknown(constant.BuiltBy),
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
		Go:       runtime.Version(),
		Mpv:      viper.GetString(key.MpvPath),
	}
}

var buildTemplate = template.Must(template.New("version").Funcs(template.FuncMap{
	"faint":  style.Faint,
	"bold":   style.Bold,
	"accent": style.Fg(color.Purple),
}).Parse(`{{ accent "▇▇▇ vplay" }}

  {{ faint "Version   " }} {{ bold .Version }}
  {{ faint "Revision  " }} {{ bold .Revision }}
  {{ faint "Built at  " }} {{ bold .BuiltAt }}
  {{ faint "Built by  " }} {{ bold .BuiltBy }}
  {{ faint "Platform  " }} {{ bold .Platform }} {{ faint .Go }}
  {{ faint "mpv       " }} {{ bold .Mpv }}
`))

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		switch {
		case lo.Must(cmd.Flags().GetBool("short")):
			cmd.Println(constant.Version)
		case lo.Must(cmd.Flags().GetBool("json")):
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(currentBuild()))
		default:
			handleErr(buildTemplate.Execute(cmd.OutOrStdout(), currentBuild()))
			version.Notify()
		}
	},
}
