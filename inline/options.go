package inline

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/vplay-cli/vplay/event"
)

// Op is a scripted control operation.
type Op string

const (
	OpPlay   Op = "play"
	OpPause  Op = "pause"
	OpSeek   Op = "seek"
	OpVolume Op = "volume"
	OpMute   Op = "mute"
	OpUnmute Op = "unmute"
	OpTime   Op = "time"
	OpWait   Op = "wait"
)

// Command is one step of a script.
type Command struct {
	Op    Op
	Value float64
	Wait  time.Duration
}

func (c Command) String() string {
	switch c.Op {
	case OpSeek, OpVolume:
		return fmt.Sprintf("%s:%g", c.Op, c.Value)
	case OpWait:
		return fmt.Sprintf("%s:%s", c.Op, c.Wait)
	default:
		return string(c.Op)
	}
}

type Options struct {
	Out      io.Writer
	Json     bool
	Commands []Command
	// Events limits which events are written. Empty means all.
	Events []event.Type
	// Follow keeps streaming after the script until the media ends or the player goes away.
	Follow bool
}

func (o *Options) wants(t event.Type) bool {
	return len(o.Events) == 0 || lo.Contains(o.Events, t)
}

// ParseCommand reads a single step.
//
//	play | pause | mute | unmute | time | seek:<seconds> | volume:<0..1> | wait:<duration>
func ParseCommand(s string) (Command, error) {
	name, arg, hasArg := strings.Cut(strings.TrimSpace(s), ":")
	op := Op(strings.ToLower(name))

	switch op {
	case OpPlay, OpPause, OpMute, OpUnmute, OpTime:
		if hasArg {
			return Command{}, fmt.Errorf("%s takes no argument", op)
		}
		return Command{Op: op}, nil
	case OpSeek, OpVolume:
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil || v < 0 {
			return Command{}, fmt.Errorf("invalid %s value: %q", op, arg)
		}
		if op == OpVolume && v > 1 {
			return Command{}, fmt.Errorf("volume must be within 0..1, got %g", v)
		}
		return Command{Op: op, Value: v}, nil
	case OpWait:
		d, err := time.ParseDuration(arg)
		if err != nil {
			return Command{}, fmt.Errorf("invalid wait duration: %q", arg)
		}
		return Command{Op: op, Wait: d}, nil
	default:
		return Command{}, fmt.Errorf("unknown command: %s", s)
	}
}

// ParseScript reads steps separated by commas or whitespace.
func ParseScript(script string) ([]Command, error) {
	fields := strings.FieldsFunc(script, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t'
	})

	commands := make([]Command, 0, len(fields))
	for _, f := range fields {
		c, err := ParseCommand(f)
		if err != nil {
			return nil, err
		}
		commands = append(commands, c)
	}
	return commands, nil
}

// ParseEvents reads a comma separated list of event types.
func ParseEvents(names []string) ([]event.Type, error) {
	types := make([]event.Type, 0, len(names))
	for _, n := range names {
		t := event.Type(strings.ToLower(strings.TrimSpace(n)))
		if !t.Valid() {
			return nil, fmt.Errorf("unknown event: %s", n)
		}
		types = append(types, t)
	}
	return types, nil
}
