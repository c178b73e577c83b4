package main

import (
	"context"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"go.skia.org/webshot/visualdiff/go/batch"
	"go.skia.org/webshot/visualdiff/go/batchconfig"
	"go.skia.org/webshot/visualdiff/go/report"
)

// batchEnv provides the environment for the batch command.
type batchEnv struct {
	configFile string
	parallel   int
	format     string
	output     string
}

// getBatchCmd returns the definition of the batch command.
func getBatchCmd() *cobra.Command {
	env := &batchEnv{}
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Run the comparisons listed in a config file",
		Long: `
Runs every comparison listed in a YAML or JSON5 batch file, several at a time.

Exit status is 0 if all comparisons ran and found their images similar, 1 if
some images differ and 2 if any comparison could not be run.
`,
		Args: cobra.NoArgs,
		Run:  env.runBatchCmd,
	}

	cmd.Flags().StringVarP(&env.configFile, "config", "c", "", "Batch file (.yaml, .yml, .json or .json5)")
	cmd.Flags().IntVarP(&env.parallel, "parallel", "p", 0, "Comparisons to run at once; 0 means one per CPU")
	cmd.Flags().StringVar(&env.format, "format", string(report.Table), "Output format, table or json")
	cmd.Flags().StringVarP(&env.output, "output", "o", "", "Write the report to this file instead of stdout")
	must(cmd.MarkFlagRequired("config"))
	return cmd
}

func (b *batchEnv) runBatchCmd(cmd *cobra.Command, _ []string) {
	ctx := cmd.Context()
	logFlags(ctx, cmd.Flags())
	b.Batch(ctx)
}

// Batch runs the configured comparisons, writes the report and exits.
func (b *batchEnv) Batch(ctx context.Context) {
	format, err := report.ParseFormat(b.format, report.Table, report.JSON)
	ifErrLogExit(ctx, err)
	cfg, err := batchconfig.Load(b.configFile)
	ifErrLogExit(ctx, err)
	jobs, err := cfg.Jobs()
	ifErrLogExit(ctx, err)

	summary, err := batch.Run(ctx, jobs, b.parallel)
	ifErrLogExit(ctx, err)

	err = writeOutput(ctx, b.output, func(w io.Writer) error {
		if format == report.JSON {
			return report.WriteJSON(w, report.BatchEntries(summary))
		}
		return report.WriteTable(w, summary)
	})
	ifErrLogExit(ctx, err)
	if b.output != "" {
		logInfof(ctx, "Results written to %s\n", b.output)
	}
	exitProcess(ctx, b.exitCode(ctx, summary))
}

func (b *batchEnv) exitCode(ctx context.Context, s batch.Summary) int {
	switch {
	case s.Failed > 0:
		logErrf(ctx, "%s\n", s.Err)
		_, _ = color.New(color.FgRed, color.Bold).Fprintf(stderr(ctx), "%d of %d comparisons failed to run\n", s.Failed, len(s.Outcomes))
		return exitError
	case s.Different > 0:
		_, _ = color.New(color.FgRed, color.Bold).Fprintf(stderr(ctx), "%d of %d comparisons found differences\n", s.Different, len(s.Outcomes))
		return exitDifferent
	default:
		_, _ = color.New(color.FgGreen, color.Bold).Fprintf(stderr(ctx), "All %d comparisons are similar\n", len(s.Outcomes))
		return exitSimilar
	}
}

// must panics if err is not nil. Only for errors that indicate a programming
// mistake, e.g. when defining flags.
func must(err error) {
	if err != nil {
		panic(err)
	}
}
