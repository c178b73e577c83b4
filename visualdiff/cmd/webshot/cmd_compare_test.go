package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.skia.org/webshot/go/testutils"
	"go.skia.org/webshot/visualdiff/go/comparison"
)

// writeTestImages writes 10x10 red, red, green and 20x10 red PNGs to a temp dir.
func writeTestImages(t *testing.T) (dir, red, red2, green, wide string) {
	dir = t.TempDir()
	red = testutils.WritePNG(t, dir, "red.png", testutils.SolidNRGBA(10, 10, 255, 0, 0))
	red2 = testutils.WritePNG(t, dir, "red2.png", testutils.SolidNRGBA(10, 10, 255, 0, 0))
	green = testutils.WritePNG(t, dir, "green.png", testutils.SolidNRGBA(10, 10, 0, 255, 0))
	wide = testutils.WritePNG(t, dir, "wide.png", testutils.SolidNRGBA(20, 10, 255, 0, 0))
	return
}

func defaultCompareEnv() compareEnv {
	return compareEnv{
		algorithm: "pixel-diff",
		threshold: comparison.DefaultThreshold,
		diffColor: "255,0,0",
		format:    "text",
	}
}

func TestCompare_SimilarImages_ExitCodeZero(t *testing.T) {
	_, red, red2, _, _ := writeTestImages(t)
	ctx, out, errOut, exit := testContext(false)
	env := defaultCompareEnv()

	runUntilExit(t, func() {
		env.Compare(ctx, red, red2)
	})
	exit.AssertWasCalledWithCode(t, exitSimilar, errOut.String())
	assert.Equal(t, `Image Comparison Results
========================

Algorithm: PixelDiff
Threshold: 0.10
Similarity: 1.0000 (100.00%)
Similar: YES
Different pixels: 0/100 (0.00%)
Total pixels: 100
`, out.String())
	assert.Equal(t, "Images are similar\n", errOut.String())
}

func TestCompare_DifferentImages_ExitCodeOne(t *testing.T) {
	_, red, _, green, _ := writeTestImages(t)
	ctx, out, errOut, exit := testContext(false)
	env := defaultCompareEnv()

	runUntilExit(t, func() {
		env.Compare(ctx, red, green)
	})
	exit.AssertWasCalledWithCode(t, exitDifferent, errOut.String())
	assert.Contains(t, out.String(), "Similar: NO\n")
	assert.Contains(t, out.String(), "Different pixels: 100/100 (100.00%)\n")
	assert.Equal(t, "Images are different\n", errOut.String())
}

func TestCompare_JSONWithDiffImage(t *testing.T) {
	dir, red, _, green, _ := writeTestImages(t)
	ctx, out, errOut, exit := testContext(false)
	env := defaultCompareEnv()
	env.format = "json"
	env.algorithm = "ssim"
	env.diffImage = true
	env.diffPath = filepath.Join(dir, "diff.png")
	env.diffColor = "#0000ff"

	runUntilExit(t, func() {
		env.Compare(ctx, red, green)
	})
	exit.AssertWasCalledWithCode(t, exitDifferent, errOut.String())

	var res comparison.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, comparison.SSIM, res.Algorithm)
	assert.False(t, res.Similar)
	assert.Nil(t, res.DifferentPixels)
	assert.Equal(t, env.diffPath, res.DiffImagePath)

	diff := testutils.ReadImage(t, env.diffPath)
	r, g, b, _ := diff.At(3, 3).RGBA()
	assert.Equal(t, []uint32{0, 0, 0xffff}, []uint32{r, g, b})
}

func TestCompare_OutputFile(t *testing.T) {
	dir, red, red2, _, _ := writeTestImages(t)
	ctx, out, errOut, exit := testContext(false)
	env := defaultCompareEnv()
	env.output = filepath.Join(dir, "report.txt")

	runUntilExit(t, func() {
		env.Compare(ctx, red, red2)
	})
	exit.AssertWasCalledWithCode(t, exitSimilar, errOut.String())
	assert.Equal(t, "Results written to "+env.output+"\n", out.String())
	b, err := os.ReadFile(env.output)
	require.NoError(t, err)
	assert.Contains(t, string(b), "Similar: YES")
}

func TestCompare_Verbose_DumpsOptions(t *testing.T) {
	_, red, red2, _, _ := writeTestImages(t)
	ctx, out, errOut, exit := testContext(true)
	env := defaultCompareEnv()
	env.diffPath = "unused.png"

	runUntilExit(t, func() {
		env.Compare(ctx, red, red2)
	})
	exit.AssertWasCalledWithCode(t, exitSimilar, errOut.String())
	assert.Contains(t, out.String(), "Ignoring --diff-path")
	assert.Contains(t, out.String(), "Options:\n(comparison.Options)")
	assert.Contains(t, out.String(), `Algorithm: (comparison.Algorithm) (len=9) "PixelDiff"`)
}

func TestCompare_Errors_ExitCodeTwo(t *testing.T) {
	dir, red, _, _, wide := writeTestImages(t)
	for name, tc := range map[string]struct {
		modify  func(env *compareEnv)
		image1  string
		image2  string
		wantErr string
	}{
		"unknown algorithm": {
			modify:  func(env *compareEnv) { env.algorithm = "fuzzy" },
			wantErr: "unknown algorithm",
		},
		"threshold out of range": {
			modify:  func(env *compareEnv) { env.threshold = 1.5 },
			wantErr: "threshold must be between 0.0 and 1.0",
		},
		"diff image without path": {
			modify:  func(env *compareEnv) { env.diffImage = true },
			wantErr: "diff output path must be specified",
		},
		"bad color": {
			modify:  func(env *compareEnv) { env.diffColor = "1,2" },
			wantErr: "invalid color format",
		},
		"bad format": {
			modify:  func(env *compareEnv) { env.format = "table" },
			wantErr: "unknown output format",
		},
		"missing first image": {
			image1:  filepath.Join(dir, "missing.png"),
			wantErr: "first image",
		},
		"dimension mismatch": {
			image2:  wide,
			wantErr: "image dimensions don't match: 10x10 vs 20x10",
		},
		"unsupported diff extension": {
			modify: func(env *compareEnv) {
				env.diffImage = true
				env.diffPath = filepath.Join(dir, "diff.xyz")
			},
			wantErr: "unsupported image extension",
		},
	} {
		t.Run(name, func(t *testing.T) {
			ctx, out, errOut, exit := testContext(false)
			env := defaultCompareEnv()
			if tc.modify != nil {
				tc.modify(&env)
			}
			image1, image2 := red, red
			if tc.image1 != "" {
				image1 = tc.image1
			}
			if tc.image2 != "" {
				image2 = tc.image2
			}

			runUntilExit(t, func() {
				env.Compare(ctx, image1, image2)
			})
			exit.AssertWasCalledWithCode(t, exitError, errOut.String())
			assert.Contains(t, errOut.String(), tc.wantErr)
			assert.Empty(t, out.String())
		})
	}
}

func TestRootCmd_DiffAlias_RunsCompare(t *testing.T) {
	_, red, _, green, _ := writeTestImages(t)
	ctx, out, errOut, exit := testContext(false)

	cmd := getRootCmd()
	cmd.SetArgs([]string{"diff", red, green, "--algorithm", "mse", "--threshold", "1"})
	runUntilExit(t, func() {
		_ = cmd.ExecuteContext(ctx)
	})
	exit.AssertWasCalledWithCode(t, exitSimilar, errOut.String())
	assert.Contains(t, out.String(), "Algorithm: MSE\n")
	assert.Contains(t, out.String(), "Threshold: 1.00\n")
}

func TestRootCmd_WrongArgCount_ReturnsError(t *testing.T) {
	ctx, _, _, exit := testContext(false)
	var cobraOut bytes.Buffer

	cmd := getRootCmd()
	cmd.SetOut(&cobraOut)
	cmd.SetErr(&cobraOut)
	cmd.SetArgs([]string{"compare", "only-one.png"})
	err := cmd.ExecuteContext(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg(s), received 1")
	assert.False(t, exit.wasCalled)
}
