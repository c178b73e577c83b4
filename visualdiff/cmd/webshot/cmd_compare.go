package main

import (
	"context"
	"io"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"go.skia.org/webshot/visualdiff/go/comparison"
	"go.skia.org/webshot/visualdiff/go/report"
)

// compareEnv provides the environment for the compare command.
type compareEnv struct {
	algorithm          string
	threshold          float64
	diffImage          bool
	diffPath           string
	ignoreAntialiasing bool
	diffColor          string
	format             string
	output             string
}

// getCompareCmd returns the definition of the compare command.
func getCompareCmd() *cobra.Command {
	env := &compareEnv{}
	cmd := &cobra.Command{
		Use:     "compare IMAGE1 IMAGE2",
		Aliases: []string{"diff"},
		Short:   "Compare two images",
		Long: `
Compares IMAGE1 (the baseline) against IMAGE2 and reports their similarity.

Algorithms:
  pixel-diff  fraction of pixels within a small per channel tolerance
  ssim        structural similarity over the whole grayscale image
  mse         1 / (1 + mse/255) of the mean squared error
  psnr        peak signal-to-noise ratio in dB, divided by 100

The images are similar if their similarity is at least 1 - threshold.
`,
		Args: cobra.ExactArgs(2),
		Run:  env.runCompareCmd,
	}

	cmd.Flags().StringVarP(&env.algorithm, "algorithm", "a", "pixel-diff", "One of pixel-diff, ssim, mse or psnr")
	cmd.Flags().Float64VarP(&env.threshold, "threshold", "t", comparison.DefaultThreshold, "Largest tolerated dissimilarity, between 0.0 and 1.0")
	cmd.Flags().BoolVar(&env.diffImage, "diff-image", false, "Write an image highlighting the differing pixels")
	cmd.Flags().StringVar(&env.diffPath, "diff-path", "", "Where to write the diff image; the extension picks the format. JPEG output is lossy and may blur the highlighted pixels")
	cmd.Flags().BoolVar(&env.ignoreAntialiasing, "ignore-antialiasing", false, "Tolerate the small differences anti-aliasing causes")
	cmd.Flags().StringVar(&env.diffColor, "diff-color", comparison.DefaultDiffColor.String(), "Highlight color as R,G,B or #rrggbb")
	cmd.Flags().StringVar(&env.format, "format", string(report.Text), "Output format, text or json")
	cmd.Flags().StringVarP(&env.output, "output", "o", "", "Write the report to this file instead of stdout")
	return cmd
}

func (c *compareEnv) runCompareCmd(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	logFlags(ctx, cmd.Flags())
	c.Compare(ctx, args[0], args[1])
}

// Compare compares the two image files and exits with exitSimilar or
// exitDifferent, or exitError if the comparison could not be made.
func (c *compareEnv) Compare(ctx context.Context, image1, image2 string) {
	opts, err := c.options()
	ifErrLogExit(ctx, err)
	format, err := report.ParseFormat(c.format, report.Text, report.JSON)
	ifErrLogExit(ctx, err)
	if c.diffPath != "" && !c.diffImage {
		logVerbose(ctx, "Ignoring --diff-path because --diff-image is not set\n")
	}
	logVerbose(ctx, "Options:\n"+spew.Sdump(opts))

	res, err := comparison.CompareFiles(image1, image2, opts)
	ifErrLogExit(ctx, err)

	err = writeOutput(ctx, c.output, func(w io.Writer) error {
		if format == report.JSON {
			return report.WriteJSON(w, res)
		}
		return report.WriteText(w, res)
	})
	ifErrLogExit(ctx, err)
	if c.output != "" {
		logInfof(ctx, "Results written to %s\n", c.output)
	}

	if res.Similar {
		_, _ = color.New(color.FgGreen, color.Bold).Fprintln(stderr(ctx), "Images are similar")
		exitProcess(ctx, exitSimilar)
		return
	}
	_, _ = color.New(color.FgRed, color.Bold).Fprintln(stderr(ctx), "Images are different")
	exitProcess(ctx, exitDifferent)
}

// options converts the flags to comparison.Options.
func (c *compareEnv) options() (comparison.Options, error) {
	alg, err := comparison.ParseAlgorithm(c.algorithm)
	if err != nil {
		return comparison.Options{}, err
	}
	diffColor, err := comparison.ParseRGB(c.diffColor)
	if err != nil {
		return comparison.Options{}, err
	}
	opts := comparison.DefaultOptions().
		WithAlgorithm(alg).
		WithThreshold(c.threshold).
		WithDiffColor(diffColor)
	if c.ignoreAntialiasing {
		opts = opts.WithIgnoreAntialiasing()
	}
	if c.diffImage {
		opts = opts.WithDiffImage(c.diffPath)
	}
	return opts, opts.Validate()
}
