package player

import "fmt"

// State is the lifecycle position of a player.
type State int

const (
	Constructing State = iota
	WaitingForSDK
	Initializing
	Ready
	Destroyed
)

func (s State) String() string {
	switch s {
	case Constructing:
		return "constructing"
	case WaitingForSDK:
		return "waiting for sdk"
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	case Destroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}
