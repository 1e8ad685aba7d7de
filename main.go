// Command vplay plays local files, streams and provider embeds from the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/vplay-cli/vplay/cmd"
	"github.com/vplay-cli/vplay/config"
	"github.com/vplay-cli/vplay/internal/cache"
	"github.com/vplay-cli/vplay/log"
)

func main() {
	for _, setup := range []func() error{config.Setup, log.Setup} {
		if err := setup(); err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	cache.CollectGarbage()

	cmd.Execute()
}
