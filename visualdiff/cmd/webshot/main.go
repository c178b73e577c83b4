// The webshot command compares rendered images for visual regression testing.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"go.skia.org/webshot/go/sklog"
	"go.skia.org/webshot/go/sklog/stdlogging"
)

// Exit codes. A comparison that ran but found the images different is not an
// error, so pipelines can tell the two apart.
const (
	exitSimilar   = 0
	exitDifferent = 1
	exitError     = 2
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx = executionContext(ctx, os.Stdout, os.Stderr, os.Exit)

	if err := getRootCmd().ExecuteContext(ctx); err != nil {
		// cobra already printed the error and usage.
		os.Exit(exitError)
	}
}

// getRootCmd returns the webshot command with all subcommands attached.
func getRootCmd() *cobra.Command {
	var verbose bool
	ret := &cobra.Command{
		Use:   "webshot",
		Short: "Compare rendered images",
		Long: `
webshot compares a baseline image against an actual image, or a whole batch of
such pairs, and reports whether they are similar enough.

Exit status is 0 if the images are similar, 1 if they differ and 2 on error.`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			sklog.SetLogger(stdlogging.NewWithOptions(os.Stderr, verbose))
			cmd.SetContext(withVerbose(cmd.Context(), verbose))
		},
	}
	ret.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print debug logs and the effective options.")

	ret.AddCommand(getCompareCmd())
	ret.AddCommand(getBatchCmd())
	return ret
}
