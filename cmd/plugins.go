package cmd

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vplay-cli/vplay/color"
	"github.com/vplay-cli/vplay/constant"
	"github.com/vplay-cli/vplay/filesystem"
	"github.com/vplay-cli/vplay/icon"
	"github.com/vplay-cli/vplay/key"
	"github.com/vplay-cli/vplay/media"
	"github.com/vplay-cli/vplay/open"
	"github.com/vplay-cli/vplay/plugin"
	"github.com/vplay-cli/vplay/plugin/builtin"
	"github.com/vplay-cli/vplay/style"
	"github.com/vplay-cli/vplay/util"
	"github.com/vplay-cli/vplay/where"
)

const luaExtension = ".lua"

func init() {
	rootCmd.AddCommand(pluginsCmd)
}

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "Manage player plugins",
}

func init() {
	pluginsCmd.AddCommand(pluginsListCmd)

	pluginsListCmd.Flags().BoolP("raw", "r", false, "Only print plugin names")
	pluginsListCmd.Flags().BoolP("lua", "l", false, "Only list Lua plugins")
	pluginsListCmd.Flags().BoolP("builtin", "b", false, "Only list compiled-in plugins")
	pluginsListCmd.MarkFlagsMutuallyExclusive("lua", "builtin")
	pluginsListCmd.SetOut(os.Stdout)
}

var pluginsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available plugins",
	Long: `List compiled-in plugins and Lua plugins found in the plugins directory.
Plugins named in player.plugins are marked as enabled. The cast plugin is only
available when a renderer is given with --cast.`,
	Run: func(cmd *cobra.Command, args []string) {
		registry, err := builtin.Registry(nil)
		handleErr(err)

		compiled := lo.SliceToMap(builtin.Descriptors(nil), func(d *plugin.Descriptor) (string, bool) {
			return d.Name, true
		})
		enabled := viper.GetStringSlice(key.PlayerPlugins)

		descriptors := lo.Filter(registry.All(), func(d *plugin.Descriptor, _ int) bool {
			switch {
			case lo.Must(cmd.Flags().GetBool("lua")):
				return !compiled[d.Name]
			case lo.Must(cmd.Flags().GetBool("builtin")):
				return compiled[d.Name]
			default:
				return true
			}
		})

		if lo.Must(cmd.Flags().GetBool("raw")) {
			for _, d := range descriptors {
				cmd.Println(d.Name)
			}
			return
		}

		for i, d := range descriptors {
			if i > 0 {
				cmd.Println()
			}

			origin := lo.Ternary(compiled[d.Name], "builtin", "lua")
			mark := ""
			if lo.Contains(enabled, d.Name) {
				mark = " " + style.Fg(color.Green)(icon.Get(icon.Success))
			}

			cmd.Printf("%s %s%s\n", style.New().Foreground(color.HiBlue).Bold(true).Render(d.Name), style.Faint(origin), mark)
			cmd.Printf("  %s\n", d.Description)
			cmd.Printf("  providers %s\n", orAll(lo.Map(d.Providers, func(k media.Kind, _ int) string { return string(k) })))
			cmd.Printf("  types     %s\n", orAll(lo.Map(d.Types, func(t media.Type, _ int) string { return string(t) })))
		}
	},
}

func orAll(names []string) string {
	if len(names) == 0 {
		return "all"
	}
	return strings.Join(names, ", ")
}

func init() {
	pluginsCmd.AddCommand(pluginsNewCmd)

	pluginsNewCmd.Flags().StringP("name", "n", "", "Name of the new plugin")
	pluginsNewCmd.Flags().Bool("open", false, "Open the created file")
	lo.Must0(pluginsNewCmd.MarkFlagRequired("name"))
}

var pluginsNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a Lua plugin from a template",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.SetOut(os.Stdout)

		author := "Anonymous"
		if usr, err := user.Current(); err == nil {
			author = usr.Username
		}

		s := struct {
			Name             string
			Author           string
			ProvidersField   string
			TypesField       string
			DescriptionField string
			InitFn           string
			OnReadyFn        string
			DestroyFn        string
		}{
			Name:             lo.Must(cmd.Flags().GetString("name")),
			Author:           author,
			ProvidersField:   constant.PluginProvidersField,
			TypesField:       constant.PluginTypesField,
			DescriptionField: constant.PluginDescriptionField,
			InitFn:           constant.PluginInitFn,
			OnReadyFn:        constant.PluginOnReadyFn,
			DestroyFn:        constant.PluginDestroyFn,
		}

		funcMap := template.FuncMap{
			"repeat": strings.Repeat,
			"plus":   func(a, b int) int { return a + b },
			"max":    util.Max[int],
		}

		tmpl, err := template.New("plugin").Funcs(funcMap).Parse(constant.PluginTemplate)
		handleErr(err)

		target := filepath.Join(where.Plugins(), util.SanitizeFilename(s.Name)+luaExtension)
		if exists, _ := filesystem.API().Exists(target); exists {
			handleErr(fmt.Errorf("%s already exists", target))
		}

		f, err := filesystem.API().Create(target)
		handleErr(err)
		handleErr(tmpl.Execute(f, s))
		handleErr(f.Close())

		cmd.Println(target)

		if lo.Must(cmd.Flags().GetBool("open")) {
			handleErr(open.Start(target))
		}
	},
}

func init() {
	pluginsCmd.AddCommand(pluginsRemoveCmd)

	pluginsRemoveCmd.Flags().StringArrayP("name", "n", []string{}, "Lua plugins to remove")
	lo.Must0(pluginsRemoveCmd.MarkFlagRequired("name"))
	lo.Must0(pluginsRemoveCmd.RegisterFlagCompletionFunc("name", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		files, err := filesystem.API().ReadDir(where.Plugins())
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}

		return lo.FilterMap(files, func(item os.FileInfo, _ int) (string, bool) {
			if item.IsDir() || !strings.HasSuffix(item.Name(), luaExtension) {
				return "", false
			}
			return util.FileStem(item.Name()), true
		}), cobra.ShellCompDirectiveNoFileComp
	}))
}

var pluginsRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Delete Lua plugins from the plugins directory",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range lo.Must(cmd.Flags().GetStringArray("name")) {
			path := filepath.Join(where.Plugins(), name+luaExtension)
			handleErr(filesystem.API().Remove(path))
			fmt.Printf("%s removed %s\n", icon.Get(icon.Success), style.Fg(color.Yellow)(name))
		}
	},
}
