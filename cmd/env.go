package cmd

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/vplay-cli/vplay/color"
	"github.com/vplay-cli/vplay/config"
	"github.com/vplay-cli/vplay/style"
	"github.com/vplay-cli/vplay/where"
)

func init() {
	rootCmd.AddCommand(envCmd)
	envCmd.Flags().BoolP("set-only", "s", false, "Only show variables that are set")
	envCmd.Flags().BoolP("unset-only", "u", false, "Only show variables that are not set")
	envCmd.Flags().BoolP("json", "j", false, "Print a json object of the variables")
	envCmd.MarkFlagsMutuallyExclusive("set-only", "unset-only")
}

// envNames lists every variable vplay reads, sorted.
func envNames() []string {
	names := lo.MapToSlice(config.Default, func(_ string, f config.Field) string { return f.Env() })
	names = append(names, where.EnvConfigPath, where.EnvCachePath)
	sort.Strings(names)
	return names
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "List the environment variables vplay reads",
	Run: func(cmd *cobra.Command, args []string) {
		setOnly := lo.Must(cmd.Flags().GetBool("set-only"))
		unsetOnly := lo.Must(cmd.Flags().GetBool("unset-only"))

		values := make(map[string]string)
		var shown []string
		for _, name := range envNames() {
			value, set := os.LookupEnv(name)
			if (setOnly && !set) || (unsetOnly && set) {
				continue
			}
			values[name] = value
			shown = append(shown, name)
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			handleErr(enc.Encode(values))
			return
		}

		name := style.New().Bold(true).Foreground(color.Purple).Render
		for _, n := range shown {
			if v, set := os.LookupEnv(n); set {
				cmd.Printf("%s=%s\n", name(n), style.Fg(color.Green)(v))
			} else {
				cmd.Printf("%s=%s\n", name(n), style.Fg(color.Red)("unset"))
			}
		}
	},
}
