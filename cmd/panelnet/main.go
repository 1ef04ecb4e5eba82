// Command panelnet cross-validates the solar panel classifier, or scores an exported model, and
// writes a report of the results.
//
//	$ panelnet cv -c config.yaml
//	$ panelnet score -c config.yaml -model panelnet.onnx
//	$ panelnet summary
package main

import (
	"fmt"
	log "log/slog"
	"os"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
)

func main() {
	cmd := &commander.Command{
		UsageLine: os.Args[0] + " <command> [options]",
		Short:     "cross-validates a convolutional classifier of solar panel images",
		Subcommands: []*commander.Command{
			cvCmd(),
			scoreCmd(),
			summaryCmd(),
		},
		Flag: *flag.NewFlagSet("panelnet", flag.ExitOnError),
	}

	if err := cmd.Dispatch(os.Args[1:]); err != nil {
		log.Error(fmt.Sprintf("%v", err))
		os.Exit(1)
	}
}

// setupLogging sends logs to stderr as text, at debug level if verbose
func setupLogging(verbose bool) {
	level := log.LevelInfo
	if verbose {
		level = log.LevelDebug
	}

	log.SetDefault(log.New(log.NewTextHandler(os.Stderr, &log.HandlerOptions{Level: level})))
}
