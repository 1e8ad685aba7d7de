package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/vplay-cli/vplay/color"
	"github.com/vplay-cli/vplay/constant"
	"github.com/vplay-cli/vplay/key"
	"github.com/vplay-cli/vplay/style"
)

// Field is a registered setting with its default value.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Section is the table the key lives in, such as player or sdk.
func (f Field) Section() string {
	section, _, _ := strings.Cut(f.Key, ".")
	return section
}

// Env is the environment variable overriding the field.
func (f Field) Env() string {
	return strings.ToUpper(constant.Vplay + "_" + EnvKeyReplacer.Replace(f.Key))
}

// Pretty describes the field for the config info command.
func (f Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

func (f Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Section     string `json:"section"`
		Env         string `json:"env"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Section:     f.Section(),
		Env:         f.Env(),
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        typeName(f.Value),
	})
}

func typeName(v any) string {
	t := reflect.TypeOf(v)
	switch {
	case t == nil:
		return "unknown"
	case t.Kind() == reflect.Float64:
		return "float"
	default:
		return t.String()
	}
}

// Default holds every setting by key.
var Default = make(map[string]Field)

// EnvExposed lists the keys bound to environment variables, in registration order.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("config key registered twice: " + k)
		}
		f := Field{Key: k, Value: v, Description: desc}
		Default[k] = f
		EnvExposed = append(EnvExposed, k)
	}

	register(key.PlayerProvider, "", "Provider to use when it can not be detected from the source.\nWill prompt if not set.\nType \"vplay providers\" to show available providers")
	register(key.PlayerAutoplay, true, "Start playback as soon as the player is ready")
	register(key.PlayerMuted, false, "Start muted")
	register(key.PlayerLoop, false, "Restart media when it ends")
	register(key.PlayerPlaysinline, true, "Ask embed providers to play inline")
	register(key.PlayerPlugins, []string{"history"}, "Plugins to activate for every session.\nType \"vplay plugins list\" to show available plugins")
	register(key.PlayerSeekStep, 5, "Seconds to seek with the arrow keys")
	register(key.PlayerVolumeStep, 5, "Volume percent to change with the arrow keys")
	register(key.SDKYouTubeURL, "https://www.youtube.com/iframe_api", "YouTube iframe API script")
	register(key.SDKVimeoURL, "https://player.vimeo.com/api/player.js", "Vimeo player API script")
	register(key.SDKDailymotionURL, "https://api.dmcdn.net/all.js", "Dailymotion player API script")
	register(key.SDKTimeout, 30, "Seconds to wait for a provider SDK script")
	register(key.SDKCache, true, "Cache provider SDK scripts on disk")
	register(key.HistorySave, true, "Save playback position")
	register(key.HistoryResume, true, "Resume from the saved position")
	register(key.HistoryResumeThreshold, 10, "Minimum saved position in seconds to resume from")
	register(key.MpvPath, "mpv", "Path to the mpv executable")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, kaomoji, plain, squares, nerd (nerd-font required)")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, true, "Enable automatic version check")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": typeName,
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }} {{ faint (printf "[%s]" .Section) }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
