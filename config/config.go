// Package config loads vplay.toml, VPLAY_* environment variables and the defaults
// registered in Default, and checks the result before any player is built.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/vplay-cli/vplay/constant"
	"github.com/vplay-cli/vplay/filesystem"
	"github.com/vplay-cli/vplay/icon"
	"github.com/vplay-cli/vplay/key"
	"github.com/vplay-cli/vplay/where"
)

// EnvKeyReplacer turns config keys into environment variable names.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

func Setup() error {
	viper.SetConfigName(constant.Vplay)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.Vplay)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	return Validate()
}

// settings are the values a typo could turn into a broken session.
type settings struct {
	SeekStep        int      `validate:"min=1"`
	VolumeStep      int      `validate:"min=1,max=100"`
	Plugins         []string `validate:"dive,required"`
	YouTubeURL      string   `validate:"url"`
	VimeoURL        string   `validate:"url"`
	DailymotionURL  string   `validate:"url"`
	SDKTimeout      int      `validate:"min=0"`
	ResumeThreshold int      `validate:"min=0"`
	MpvPath         string   `validate:"required"`
	Icons           string   `validate:"icons"`
	LogsLevel       string   `validate:"oneof=panic fatal error warn info debug trace"`
}

// keys maps settings fields back to the config keys users write.
var keys = map[string]string{
	"SeekStep":        key.PlayerSeekStep,
	"VolumeStep":      key.PlayerVolumeStep,
	"Plugins":         key.PlayerPlugins,
	"YouTubeURL":      key.SDKYouTubeURL,
	"VimeoURL":        key.SDKVimeoURL,
	"DailymotionURL":  key.SDKDailymotionURL,
	"SDKTimeout":      key.SDKTimeout,
	"ResumeThreshold": key.HistoryResumeThreshold,
	"MpvPath":         key.MpvPath,
	"Icons":           key.IconsVariant,
	"LogsLevel":       key.LogsLevel,
}

var validate = func() *validator.Validate {
	v := validator.New()
	lo.Must0(v.RegisterValidation("icons", func(fl validator.FieldLevel) bool {
		return icon.Valid(fl.Field().String())
	}))
	return v
}()

// Validate checks the loaded configuration and names every offending key.
func Validate() error {
	s := settings{
		SeekStep:        viper.GetInt(key.PlayerSeekStep),
		VolumeStep:      viper.GetInt(key.PlayerVolumeStep),
		Plugins:         viper.GetStringSlice(key.PlayerPlugins),
		YouTubeURL:      viper.GetString(key.SDKYouTubeURL),
		VimeoURL:        viper.GetString(key.SDKVimeoURL),
		DailymotionURL:  viper.GetString(key.SDKDailymotionURL),
		SDKTimeout:      viper.GetInt(key.SDKTimeout),
		ResumeThreshold: viper.GetInt(key.HistoryResumeThreshold),
		MpvPath:         viper.GetString(key.MpvPath),
		Icons:           viper.GetString(key.IconsVariant),
		LogsLevel:       strings.ToLower(viper.GetString(key.LogsLevel)),
	}

	err := validate.Struct(s)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	names := lo.Uniq(lo.Map(verrs, func(fe validator.FieldError, _ int) string {
		field, _, _ := strings.Cut(fe.StructField(), "[")
		return fmt.Sprintf("%s (%s)", keys[field], fe.Tag())
	}))
	return fmt.Errorf("invalid config: %s", strings.Join(names, ", "))
}
