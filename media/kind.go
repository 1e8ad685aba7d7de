// Package media defines the data model shared by the player core, the provider adapters and plugins.
package media

import (
	"fmt"
	"strings"
)

// Kind selects the playback backend a player is bound to.
type Kind string

const (
	HTML5       Kind = "html5"
	Vimeo       Kind = "vimeo"
	YouTube     Kind = "youtube"
	Dailymotion Kind = "dailymotion"
)

// Kinds returns every known provider kind in a stable order.
func Kinds() []Kind {
	return []Kind{HTML5, Vimeo, YouTube, Dailymotion}
}

// ParseKind resolves a provider kind from its name, case-insensitively.
func ParseKind(name string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", &Error{Kind: ErrConfig, Op: "parse kind", Err: fmt.Errorf("unknown provider %q", name)}
}

func (k Kind) String() string {
	return string(k)
}

// Type is the kind of media an element plays.
type Type string

const (
	Video Type = "video"
	Audio Type = "audio"
)

// ParseType resolves a media type from its name, case-insensitively.
func ParseType(name string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(name))); t {
	case Video, Audio:
		return t, nil
	}
	return "", &Error{Kind: ErrConfig, Op: "parse type", Err: fmt.Errorf("unknown media type %q", name)}
}
