package media

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/samber/lo"
)

// PluginSpec names a plugin to attach to a player together with its options.
type PluginSpec struct {
	Name    string         `mapstructure:"name" json:"name" validate:"required"`
	Options map[string]any `mapstructure:"options" json:"options,omitempty"`
}

// Options is the recognized player configuration. A player keeps its own copy, so
// changing an Options value after construction has no effect on a running player.
type Options struct {
	Autoplay       bool           `mapstructure:"autoplay" json:"autoplay"`
	Muted          bool           `mapstructure:"muted" json:"muted"`
	Loop           bool           `mapstructure:"loop" json:"loop"`
	Playsinline    bool           `mapstructure:"playsinline" json:"playsinline"`
	Poster         string         `mapstructure:"poster" json:"poster,omitempty" validate:"omitempty,url"`
	ProviderParams map[string]any `mapstructure:"providerParams" json:"providerParams,omitempty"`
	Plugins        []PluginSpec   `mapstructure:"plugins" json:"plugins,omitempty" validate:"dive"`
}

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		validateInst = validator.New(validator.WithRequiredStructEnabled())
	})
	return validateInst
}

// Validate checks option values. Failures are reported as ErrConfig.
func (o Options) Validate() error {
	err := validatorInstance().Struct(o)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &Error{Kind: ErrConfig, Op: "validate options", Err: err}
	}

	fields := lo.Map(verrs, func(fe validator.FieldError, _ int) string {
		return fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag())
	})
	return &Error{Kind: ErrConfig, Op: "validate options", Err: fmt.Errorf("invalid fields: %s", strings.Join(fields, ", "))}
}

// Clone returns a deep enough copy for the player to own.
func (o Options) Clone() Options {
	c := o
	c.ProviderParams = maps.Clone(o.ProviderParams)
	c.Plugins = lo.Map(o.Plugins, func(p PluginSpec, _ int) PluginSpec {
		return PluginSpec{Name: p.Name, Options: maps.Clone(p.Options)}
	})
	return c
}

// DecodeOptions builds Options from an untyped map, rejecting unrecognized keys.
// Plugin entries may be given as bare names or as {name, options} maps.
func DecodeOptions(raw map[string]any) (Options, error) {
	var opts Options

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &opts,
		ErrorUnused: true,
		DecodeHook:  pluginNameHook,
	})
	if err != nil {
		return Options{}, &Error{Kind: ErrConfig, Op: "decode options", Err: err}
	}

	if err := decoder.Decode(raw); err != nil {
		return Options{}, &Error{Kind: ErrConfig, Op: "decode options", Err: err}
	}

	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

func pluginNameHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() == reflect.String && to == reflect.TypeOf(PluginSpec{}) {
		return map[string]any{"name": data}, nil
	}
	return data, nil
}

// Param returns a provider parameter, or def when it is not set.
func (o Options) Param(name string, def any) any {
	if v, ok := o.ProviderParams[name]; ok {
		return v
	}
	return def
}
