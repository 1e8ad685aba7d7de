package cmd

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vplay-cli/vplay/filesystem"
	"github.com/vplay-cli/vplay/history"
	"github.com/vplay-cli/vplay/key"
	"github.com/vplay-cli/vplay/log"
	"github.com/vplay-cli/vplay/media"
	"github.com/vplay-cli/vplay/mpv"
	"github.com/vplay-cli/vplay/network"
	"github.com/vplay-cli/vplay/player"
	"github.com/vplay-cli/vplay/plugin/builtin"
	"github.com/vplay-cli/vplay/plugin/cast"
	"github.com/vplay-cli/vplay/provider"
	"github.com/vplay-cli/vplay/query"
	"github.com/vplay-cli/vplay/sdk"
	"github.com/vplay-cli/vplay/tui"
)

const discoverTimeout = 10 * time.Second

// playerFlagKeys maps the shared player flags onto the config keys they override.
var playerFlagKeys = map[string]string{
	"provider": key.PlayerProvider,
	"autoplay": key.PlayerAutoplay,
	"muted":    key.PlayerMuted,
	"loop":     key.PlayerLoop,
	"plugin":   key.PlayerPlugins,
}

// playerFlags registers the flags shared by every command that opens a player.
func playerFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringP("provider", "p", "", "Force the provider instead of detecting it from the source")
	lo.Must0(cmd.RegisterFlagCompletionFunc("provider", completionKinds))

	flags.Bool("autoplay", false, "Start playing as soon as the player is ready")
	flags.Bool("muted", false, "Start muted")
	flags.Bool("loop", false, "Restart the media when it ends")
	flags.StringSlice("plugin", []string{}, "Plugins to attach, in activation order")
	flags.String("poster", "", "Poster image URL")
	flags.StringToString("param", map[string]string{}, "Provider parameters as key=value")
	flags.String("cast", "", "Description URL of a DLNA media renderer to cast to")
}

// bindPlayerFlags lets the running command's flags override the config. Binding happens
// at run time because several commands share the keys.
func bindPlayerFlags(cmd *cobra.Command) {
	for name, k := range playerFlagKeys {
		lo.Must0(viper.BindPFlag(k, cmd.Flags().Lookup(name)))
	}
}

func completionKinds(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return lo.Map(media.Kinds(), func(k media.Kind, _ int) string { return k.String() }), cobra.ShellCompDirectiveNoFileComp
}

func completionSources(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return query.SuggestMany(toComplete), cobra.ShellCompDirectiveDefault
}

// parseKind resolves a provider name and suggests the closest known one on failure.
func parseKind(name string) (media.Kind, error) {
	kind, err := media.ParseKind(name)
	if err == nil {
		return kind, nil
	}

	names := lo.Map(media.Kinds(), func(k media.Kind, _ int) string { return k.String() })
	ranks := fuzzy.RankFindFold(name, names)
	if len(ranks) == 0 {
		return "", fmt.Errorf("%w, expected one of %s", err, strings.Join(names, ", "))
	}
	sort.Sort(ranks)
	return "", fmt.Errorf("%w, did you mean %s?", err, ranks[0].Target)
}

// session builds players from the configured defaults and the command flags.
type session struct {
	env     player.Env
	options media.Options
	remote  cast.Context
}

func newSession(cmd *cobra.Command) (*session, error) {
	options, err := playerOptions(cmd)
	if err != nil {
		return nil, err
	}

	var remote cast.Context
	if location := lo.Must(cmd.Flags().GetString("cast")); location != "" {
		ctx, cancel := context.WithTimeout(cmd.Context(), discoverTimeout)
		defer cancel()

		device, err := cast.Discover(ctx, network.Client, location)
		if err != nil {
			return nil, err
		}
		log.Infof("cast: using %s", device.Name)
		remote = cast.NewRenderer(device, network.Client)
	}

	host := mpv.NewHost(viper.GetString(key.MpvPath))
	providers, err := provider.NewRegistry(mpv.Providers(host, sdk.DefaultScripts())...)
	if err != nil {
		return nil, err
	}

	plugins, err := builtin.Registry(remote)
	if err != nil {
		return nil, err
	}

	return &session{
		env: player.Env{
			Providers:   providers,
			Loader:      sdk.Default(),
			Plugins:     plugins,
			InitTimeout: time.Duration(viper.GetInt(key.SDKTimeout)) * time.Second,
		},
		options: options,
		remote:  remote,
	}, nil
}

// playerOptions merges configured defaults with the command flags.
func playerOptions(cmd *cobra.Command) (media.Options, error) {
	raw := map[string]any{
		"autoplay":    viper.GetBool(key.PlayerAutoplay),
		"muted":       viper.GetBool(key.PlayerMuted),
		"loop":        viper.GetBool(key.PlayerLoop),
		"playsinline": viper.GetBool(key.PlayerPlaysinline),
		"plugins":     viper.GetStringSlice(key.PlayerPlugins),
	}

	if poster := lo.Must(cmd.Flags().GetString("poster")); poster != "" {
		raw["poster"] = poster
	}

	if params := lo.Must(cmd.Flags().GetStringToString("param")); len(params) > 0 {
		raw["providerParams"] = lo.MapValues(params, func(v string, _ string) any {
			return paramValue(v)
		})
	}

	return media.DecodeOptions(raw)
}

// paramValue keeps numbers and booleans typed so adapters can read them as such.
func paramValue(s string) any {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

// open builds a player for a canonical source.
func (s *session) open(source string) (*player.Player, error) {
	kind, el := provider.Detect(source)
	p, err := player.New(s.env, kind, el, s.options)
	if err != nil {
		return nil, err
	}

	if err := query.Remember(source, 1); err != nil {
		log.Warnf("remembering %s: %v", source, err)
	}
	return p, nil
}

func (s *session) openControls(source string) (tui.Controls, error) {
	p, err := s.open(source)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// canonical rewrites a command line source into the form history keys use, applying
// the forced provider. With ask set, a bare name that matches no file is resolved by
// asking which provider plays it.
func canonical(source string, ask bool) (string, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return "", fmt.Errorf("empty source")
	}

	detected, el := provider.Detect(source)

	forced := viper.GetString(key.PlayerProvider)
	if forced == "" && ask && ambiguous(detected, source) {
		names := lo.Map(media.Kinds(), func(k media.Kind, _ int) string { return k.String() })
		prompt := &survey.Select{
			Message: fmt.Sprintf("Which provider plays %s?", source),
			Options: names,
			Default: media.YouTube.String(),
		}
		if err := survey.AskOne(prompt, &forced); err != nil {
			return "", err
		}
	}

	if forced == "" {
		return history.Key(detected, el), nil
	}

	kind, err := parseKind(forced)
	if err != nil {
		return "", err
	}

	switch {
	case kind == detected:
		return history.Key(detected, el), nil
	case kind == media.HTML5:
		return "", fmt.Errorf("%s is a %s source", source, detected)
	case detected != media.HTML5:
		return "", fmt.Errorf("%s is a %s source, not %s", source, detected, kind)
	default:
		return history.Key(kind, provider.Embed(kind, source)), nil
	}
}

// ambiguous reports whether source looks like a bare embed id rather than a file or URL.
func ambiguous(kind media.Kind, source string) bool {
	if kind != media.HTML5 || strings.Contains(source, "/") || path.Ext(source) != "" {
		return false
	}
	exists, _ := filesystem.API().Exists(source)
	return !exists
}

// latestSource returns the most recently played history entry.
func latestSource() (string, error) {
	entries, err := history.Get()
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", fmt.Errorf("history is empty")
	}

	latest := lo.MaxBy(lo.Values(entries), func(a, b *history.Entry) bool {
		return a.UpdatedAt.After(b.UpdatedAt)
	})
	return latest.Key, nil
}
