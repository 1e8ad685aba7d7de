// Package icon renders the symbols of the player view and command output in the
// variant chosen by icons.variant.
package icon

import (
	"github.com/spf13/viper"
	"github.com/vplay-cli/vplay/key"
)

const (
	emoji   = "emoji"
	nerd    = "nerd"
	plain   = "plain"
	kaomoji = "kaomoji"
	squares = "squares"
)

func AvailableVariants() []string {
	return []string{emoji, nerd, plain, kaomoji, squares}
}

type iconDef struct {
	emoji   string
	nerd    string
	plain   string
	kaomoji string
	squares string
}

func (d *iconDef) variant(name string) (string, bool) {
	switch name {
	case emoji:
		return d.emoji, true
	case nerd:
		return d.nerd, true
	case plain:
		return d.plain, true
	case kaomoji:
		return d.kaomoji, true
	case squares:
		return d.squares, true
	}
	return "", false
}

// Get renders i in the configured variant. An unknown variant renders nothing, so a
// typo in the config hides icons instead of breaking output.
func Get(i Icon) string {
	d, ok := icons[i]
	if !ok {
		return ""
	}
	s, _ := d.variant(viper.GetString(key.IconsVariant))
	return s
}

// Valid reports whether name is a known variant.
func Valid(name string) bool {
	_, ok := (&iconDef{}).variant(name)
	return ok
}
