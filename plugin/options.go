package plugin

import (
	"github.com/go-viper/mapstructure/v2"
	"github.com/vplay-cli/vplay/media"
)

// Decode reads plugin options into target. Unknown options are a config error.
func Decode(name string, opts map[string]any, target any) error {
	if len(opts) == 0 {
		return nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "option",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(opts); err != nil {
		return &media.Error{Kind: media.ErrConfig, Op: "plugin " + name, Err: err}
	}
	return nil
}
