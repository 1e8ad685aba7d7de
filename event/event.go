// Package event implements the publish/subscribe bus that carries normalized playback events
// between adapters, the player core, plugins and application code.
package event

// Type is a member of the closed event vocabulary.
type Type string

const (
	Ready         Type = "ready"
	Play          Type = "play"
	Pause         Type = "pause"
	Playing       Type = "playing"
	Waiting       Type = "waiting"
	Seeking       Type = "seeking"
	Seeked        Type = "seeked"
	TimeUpdate    Type = "timeupdate"
	Ended         Type = "ended"
	VolumeChange  Type = "volumechange"
	TrackEnabled  Type = "trackenabled"
	TrackDisabled Type = "trackdisabled"
	Error         Type = "error"
)

var vocabulary = map[Type]struct{}{}

func init() {
	for _, t := range Types() {
		vocabulary[t] = struct{}{}
	}
}

// Types returns the vocabulary in a stable order.
func Types() []Type {
	return []Type{Ready, Play, Pause, Playing, Waiting, Seeking, Seeked, TimeUpdate, Ended, VolumeChange, TrackEnabled, TrackDisabled, Error}
}

// Valid reports whether t belongs to the vocabulary.
func (t Type) Valid() bool {
	_, ok := vocabulary[t]
	return ok
}

// Event is a single notification on the bus.
type Event struct {
	Type    Type `json:"type"`
	Payload any  `json:"payload,omitempty"`
}

// Handler receives events of the type it was registered for.
type Handler func(Event)

// ListenerID identifies a registration so it can be removed with Off.
type ListenerID uint64

// TimePayload accompanies timeupdate events.
type TimePayload struct {
	CurrentTime float64 `json:"currentTime"`
	Duration    float64 `json:"duration,omitempty"`
}

// VolumePayload accompanies volumechange events.
type VolumePayload struct {
	Volume float64 `json:"volume"`
	Muted  bool    `json:"muted"`
}

// TrackPayload accompanies trackenabled and trackdisabled events.
type TrackPayload struct {
	Language string `json:"language"`
}
