package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/vplay-cli/vplay/event"
	"github.com/vplay-cli/vplay/filesystem"
	"github.com/vplay-cli/vplay/inline"
	"github.com/vplay-cli/vplay/log"
	"github.com/vplay-cli/vplay/util"
)

const inlineDestroyTimeout = 5 * time.Second

func init() {
	rootCmd.AddCommand(inlineCmd)

	inlineCmd.Flags().StringP("script", "s", "", "Commands to run, separated by commas or spaces")
	inlineCmd.Flags().StringSliceP("events", "e", []string{}, "Only write these events")
	inlineCmd.Flags().BoolP("follow", "f", false, "Keep streaming events until the media ends")
	inlineCmd.Flags().BoolP("json", "j", false, "Write one JSON object per line")
	inlineCmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")
	playerFlags(inlineCmd)

	lo.Must0(inlineCmd.RegisterFlagCompletionFunc("events", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return eventNames(), cobra.ShellCompDirectiveNoFileComp
	}))
}

var inlineCmd = &cobra.Command{
	Use:   "inline [source]",
	Short: "Drive a player from a script without the interface",
	Long: `Open a source, run a script of control commands against it and stream every
event and command result, one per line.

Commands:
  play, pause, mute, unmute
  time               print the current position
  seek:<seconds>     move the playhead
  volume:<0..1>      set the volume
  wait:<duration>    sleep, e.g. wait:2s

Commands issued before the player is ready are queued and run once it is.`,
	Example: `  vplay inline ./movie.mp4 -s "play wait:5s time pause" -j
  vplay inline youtube:dQw4w9WgXcQ -s play -f -e timeupdate,ended`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completionSources,
	Run: func(cmd *cobra.Command, args []string) {
		bindPlayerFlags(cmd)

		commands, err := inline.ParseScript(lo.Must(cmd.Flags().GetString("script")))
		handleErr(err)

		events, err := inline.ParseEvents(lo.Must(cmd.Flags().GetStringSlice("events")))
		handleErr(err)

		source, err := canonical(args[0], false)
		handleErr(err)

		var out io.Writer = os.Stdout
		if output := lo.Must(cmd.Flags().GetString("output")); output != "" {
			f, err := filesystem.API().Create(output)
			handleErr(err)
			defer util.Ignore(f.Close)
			out = f
		}

		CheckDependencies()

		s, err := newSession(cmd)
		handleErr(err)

		p, err := s.open(source)
		handleErr(err)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		runErr := inline.Run(ctx, p, &inline.Options{
			Out:      out,
			Json:     lo.Must(cmd.Flags().GetBool("json")),
			Commands: commands,
			Events:   events,
			Follow:   lo.Must(cmd.Flags().GetBool("follow")),
		})

		destroyCtx, cancel := context.WithTimeout(context.Background(), inlineDestroyTimeout)
		defer cancel()
		if err := p.Destroy(destroyCtx); err != nil {
			log.Warnf("inline: destroying player: %v", err)
		}

		if errors.Is(runErr, context.Canceled) {
			return
		}
		handleErr(runErr)
	},
}

func eventNames() []string {
	return lo.Map(event.Types(), func(t event.Type, _ int) string { return string(t) })
}

func init() {
	inlineCmd.AddCommand(inlineSchemaCmd)
}

var inlineSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the lines written with --json",
	Run: func(cmd *cobra.Command, args []string) {
		reflector := new(jsonschema.Reflector)
		reflector.Anonymous = true
		handleErr(json.NewEncoder(os.Stdout).Encode(reflector.Reflect(&inline.Line{})))
	},
}
