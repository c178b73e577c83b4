// Package batchconfig loads the description of a batch of image comparisons
// from a YAML or JSON5 file.
package batchconfig

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/a8m/envsubst"
	"github.com/flynn/json5"
	"sigs.k8s.io/yaml"

	"go.skia.org/webshot/go/fileutil"
	"go.skia.org/webshot/go/skerr"
	"go.skia.org/webshot/go/sklog"
	"go.skia.org/webshot/visualdiff/go/batch"
	"go.skia.org/webshot/visualdiff/go/comparison"
)

// Defaults are applied to every comparison that does not set the field itself.
type Defaults struct {
	// Algorithm name as accepted by comparison.ParseAlgorithm, e.g. "ssim".
	Algorithm string `json:"algorithm" optional:"true"`

	Threshold *float64 `json:"threshold" optional:"true"`

	IgnoreAntialiasing bool `json:"ignore_antialiasing"`

	// DiffColor is "R,G,B" or "#rrggbb".
	DiffColor string `json:"diff_color" optional:"true"`

	// DiffDir is where diff images go for comparisons that request one
	// without naming a path. Each is written to <DiffDir>/<name>.png.
	DiffDir string `json:"diff_dir" optional:"true"`
}

// Comparison describes one pair of images to compare.
type Comparison struct {
	// Name must be unique within the file and must not contain path separators.
	Name string `json:"name"`

	BaselinePath string `json:"baseline_path"`
	ActualPath   string `json:"actual_path"`

	Algorithm          string   `json:"algorithm" optional:"true"`
	Threshold          *float64 `json:"threshold" optional:"true"`
	GenerateDiff       bool     `json:"generate_diff"`
	DiffOutputPath     string   `json:"diff_output_path" optional:"true"`
	IgnoreAntialiasing *bool    `json:"ignore_antialiasing" optional:"true"`
	DiffColor          string   `json:"diff_color" optional:"true"`
}

// Config is the contents of a batch file.
type Config struct {
	Defaults    Defaults     `json:"defaults"`
	Comparisons []Comparison `json:"comparisons"`

	// dir is the directory relative paths are resolved against.
	dir string
}

// Load reads the batch file at path. Files ending in .yaml or .yml are read
// as YAML, files ending in .json or .json5 as JSON5. Unknown fields in YAML
// files are rejected. References to environment variables, e.g. ${SHOTS_DIR},
// are expanded before parsing; ${VAR:-default} supplies a fallback.
func Load(path string) (*Config, error) {
	if !fileutil.FileExists(path) {
		return nil, skerr.Fmt("batch config %s does not exist", path)
	}
	ext := strings.ToLower(filepath.Ext(path))
	var decode func([]byte, interface{}) error
	switch ext {
	case ".yaml", ".yml":
		decode = func(b []byte, dst interface{}) error {
			return yaml.UnmarshalStrict(b, dst)
		}
	case ".json", ".json5":
		decode = json5.Unmarshal
	default:
		return nil, skerr.Fmt("unsupported batch config extension %q for %s; use .yaml, .yml, .json or .json5", ext, path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, skerr.Wrapf(err, "reading batch config %s", path)
	}
	// Unset variables are an error rather than silently becoming empty paths.
	expanded, err := envsubst.BytesRestricted(raw, true, false)
	if err != nil {
		return nil, skerr.Wrapf(err, "expanding environment variables in %s", path)
	}
	var cfg Config
	if err := decode(expanded, &cfg); err != nil {
		return nil, skerr.Wrapf(err, "parsing batch config %s", path)
	}

	if len(cfg.Comparisons) == 0 {
		return nil, skerr.Fmt("batch config %s has no comparisons", path)
	}
	if err := checkRequired(reflect.ValueOf(cfg)); err != nil {
		return nil, skerr.Wrapf(err, "in %s", path)
	}
	for i, c := range cfg.Comparisons {
		if err := checkRequired(reflect.ValueOf(c)); err != nil {
			return nil, skerr.Wrapf(err, "comparison #%d in %s", i+1, path)
		}
	}
	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, skerr.Wrap(err)
	}
	cfg.dir = dir
	sklog.Infof("Loaded %d comparisons from %s", len(cfg.Comparisons), path)
	return &cfg, nil
}

// checkRequired returns an error if any non-struct, non-bool fields of the given value have a zero
// value *unless* they have an optional tag with value true.
func checkRequired(rValue reflect.Value) error {
	rType := rValue.Type()
	for i := 0; i < rValue.NumField(); i++ {
		field := rType.Field(i)
		if !field.IsExported() {
			continue
		}
		if field.Type.Kind() == reflect.Struct {
			if err := checkRequired(rValue.Field(i)); err != nil {
				return err
			}
			continue
		}
		if field.Type.Kind() == reflect.Bool {
			continue
		}
		jsonName := strings.Split(field.Tag.Get("json"), ",")[0]
		if jsonName == "" || field.Tag.Get("optional") == "true" {
			continue
		}
		if rValue.Field(i).IsZero() {
			return skerr.Fmt("required field %s is missing", jsonName)
		}
	}
	return nil
}

// Jobs resolves every comparison against the defaults and returns the jobs to
// run, in file order. Relative paths are taken relative to the directory of
// the batch file. If any job writes into Defaults.DiffDir, the directory is
// created.
func (c *Config) Jobs() ([]batch.Job, error) {
	names := make(map[string]bool, len(c.Comparisons))
	usesDiffDir := false
	ret := make([]batch.Job, 0, len(c.Comparisons))
	for _, cmp := range c.Comparisons {
		if names[cmp.Name] {
			return nil, skerr.Fmt("duplicate comparison name %q", cmp.Name)
		}
		names[cmp.Name] = true
		if strings.ContainsAny(cmp.Name, `/\`) {
			return nil, skerr.Fmt("comparison name %q must not contain path separators", cmp.Name)
		}

		opts, fromDiffDir, err := c.options(cmp)
		if err != nil {
			return nil, skerr.Wrapf(err, "comparison %q", cmp.Name)
		}
		usesDiffDir = usesDiffDir || fromDiffDir
		ret = append(ret, batch.Job{
			Name:         cmp.Name,
			BaselinePath: c.resolve(cmp.BaselinePath),
			ActualPath:   c.resolve(cmp.ActualPath),
			Options:      opts,
		})
	}
	if usesDiffDir {
		if _, err := fileutil.EnsureDirExists(c.resolve(c.Defaults.DiffDir)); err != nil {
			return nil, skerr.Wrap(err)
		}
	}
	return ret, nil
}

// options merges cmp with the defaults. The returned bool is true if the diff
// image path was derived from Defaults.DiffDir.
func (c *Config) options(cmp Comparison) (comparison.Options, bool, error) {
	opts := comparison.DefaultOptions()

	algName := firstNonEmpty(cmp.Algorithm, c.Defaults.Algorithm)
	if algName != "" {
		alg, err := comparison.ParseAlgorithm(algName)
		if err != nil {
			return opts, false, skerr.Wrap(err)
		}
		opts.Algorithm = alg
	}

	if cmp.Threshold != nil {
		opts.Threshold = *cmp.Threshold
	} else if c.Defaults.Threshold != nil {
		opts.Threshold = *c.Defaults.Threshold
	}

	opts.IgnoreAntialiasing = c.Defaults.IgnoreAntialiasing
	if cmp.IgnoreAntialiasing != nil {
		opts.IgnoreAntialiasing = *cmp.IgnoreAntialiasing
	}

	if colorStr := firstNonEmpty(cmp.DiffColor, c.Defaults.DiffColor); colorStr != "" {
		rgb, err := comparison.ParseRGB(colorStr)
		if err != nil {
			return opts, false, skerr.Wrap(err)
		}
		opts.DiffColor = rgb
	}

	fromDiffDir := false
	if cmp.GenerateDiff {
		opts.GenerateDiffImage = true
		switch {
		case cmp.DiffOutputPath != "":
			opts.DiffOutputPath = c.resolve(cmp.DiffOutputPath)
		case c.Defaults.DiffDir != "":
			opts.DiffOutputPath = filepath.Join(c.resolve(c.Defaults.DiffDir), cmp.Name+".png")
			fromDiffDir = true
		}
	} else if cmp.DiffOutputPath != "" {
		sklog.Warningf("Ignoring diff_output_path of %q because generate_diff is not set", cmp.Name)
	}

	if err := opts.Validate(); err != nil {
		return opts, false, skerr.Wrap(err)
	}
	return opts, fromDiffDir, nil
}

// resolve makes p absolute relative to the batch file's directory.
func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.dir, p)
}

func firstNonEmpty(s ...string) string {
	for _, v := range s {
		if v != "" {
			return v
		}
	}
	return ""
}
