package inline

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/vplay-cli/vplay/event"
)

// Line is one record of the output stream: either an event or the result of a command.
type Line struct {
	// Player is the id of the player the line belongs to.
	Player string    `json:"player"`
	Time   time.Time `json:"time"`
	// Event is set for event lines.
	Event event.Type `json:"event,omitempty" jsonschema:"enum=ready,enum=play,enum=pause,enum=playing,enum=waiting,enum=seeking,enum=seeked,enum=timeupdate,enum=ended,enum=volumechange,enum=trackenabled,enum=trackdisabled,enum=error"`
	// Payload accompanies some events.
	Payload any `json:"payload,omitempty"`
	// Command is set for command result lines.
	Command string `json:"command,omitempty"`
	// Result is the value a command resolved with.
	Result *float64 `json:"result,omitempty"`
	// Error is set when a command or the player failed.
	Error string `json:"error,omitempty"`
}

type writer struct {
	mu   sync.Mutex
	out  io.Writer
	json bool
}

func (w *writer) write(l Line) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.json {
		data, err := json.Marshal(l)
		if err != nil {
			return err
		}
		_, err = w.out.Write(append(data, '\n'))
		return err
	}

	var err error
	switch {
	case l.Command != "" && l.Error != "":
		_, err = fmt.Fprintf(w.out, "%s: %s\n", l.Command, l.Error)
	case l.Command != "" && l.Result != nil:
		_, err = fmt.Fprintf(w.out, "%s = %g\n", l.Command, *l.Result)
	case l.Command != "":
		_, err = fmt.Fprintf(w.out, "%s ok\n", l.Command)
	case l.Payload != nil:
		_, err = fmt.Fprintf(w.out, "%s %v\n", l.Event, l.Payload)
	default:
		_, err = fmt.Fprintln(w.out, l.Event)
	}
	return err
}
