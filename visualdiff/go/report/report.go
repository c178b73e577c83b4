// Package report renders comparison results for people and for machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/olekukonko/tablewriter"

	"go.skia.org/webshot/go/skerr"
	"go.skia.org/webshot/visualdiff/go/batch"
	"go.skia.org/webshot/visualdiff/go/comparison"
)

// Format selects how results are written.
type Format string

const (
	Text  Format = "text"
	JSON  Format = "json"
	Table Format = "table"
)

// ParseFormat returns the Format named by s if it is one of allowed.
func ParseFormat(s string, allowed ...Format) (Format, error) {
	names := make([]string, 0, len(allowed))
	for _, f := range allowed {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
		names = append(names, string(f))
	}
	return "", skerr.Fmt("unknown output format %q; supported: %s", s, strings.Join(names, ", "))
}

// WriteText writes the human readable report of a single comparison.
func WriteText(w io.Writer, res comparison.Result) error {
	var b strings.Builder
	b.WriteString("Image Comparison Results\n")
	b.WriteString("========================\n\n")
	fmt.Fprintf(&b, "Algorithm: %s\n", res.Algorithm)
	fmt.Fprintf(&b, "Threshold: %.2f\n", res.Threshold)
	fmt.Fprintf(&b, "Similarity: %.4f (%.2f%%)\n", res.Similarity, res.Similarity*100)
	fmt.Fprintf(&b, "Similar: %s\n", verdict(res.Similar, "YES", "NO"))
	if pct, ok := res.DifferentPixelsPercent(); ok {
		fmt.Fprintf(&b, "Different pixels: %d/%d (%.2f%%)\n", *res.DifferentPixels, res.TotalPixels, pct)
	}
	fmt.Fprintf(&b, "Total pixels: %d\n", res.TotalPixels)
	if res.DiffImagePath != "" {
		fmt.Fprintf(&b, "Difference image: %s\n", res.DiffImagePath)
	}
	_, err := io.WriteString(w, b.String())
	return skerr.Wrap(err)
}

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return skerr.Wrap(enc.Encode(v))
}

// BatchEntry is the JSON form of one batch.Outcome.
type BatchEntry struct {
	Name         string             `json:"name"`
	BaselinePath string             `json:"baseline_path"`
	ActualPath   string             `json:"actual_path"`
	Result       *comparison.Result `json:"result,omitempty"`
	Error        string             `json:"error,omitempty"`
}

// BatchEntries converts the outcomes of a batch for JSON output.
func BatchEntries(s batch.Summary) []BatchEntry {
	ret := make([]BatchEntry, 0, len(s.Outcomes))
	for _, o := range s.Outcomes {
		e := BatchEntry{
			Name:         o.Job.Name,
			BaselinePath: o.Job.BaselinePath,
			ActualPath:   o.Job.ActualPath,
		}
		if o.Err != nil {
			e.Error = o.Err.Error()
		} else {
			res := o.Result
			e.Result = &res
		}
		ret = append(ret, e)
	}
	return ret
}

// WriteTable writes one row per outcome followed by a one line summary.
func WriteTable(w io.Writer, s batch.Summary) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Name", "Algorithm", "Similarity", "Different pixels", "Result", "Details"})
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, o := range s.Outcomes {
		if o.Err != nil {
			table.Append([]string{o.Job.Name, string(o.Job.Options.Algorithm), "-", "-", "ERROR", skerr.Unwrap(o.Err).Error()})
			continue
		}
		res := o.Result
		table.Append([]string{
			o.Job.Name,
			string(res.Algorithm),
			fmt.Sprintf("%.2f%%", res.Similarity*100),
			differentPixels(res),
			verdict(res.Similar, "PASS", "FAIL"),
			res.DiffImagePath,
		})
	}
	table.Render()
	_, err := fmt.Fprintf(w, "%s: %d similar, %d different, %d failed\n",
		english.Plural(len(s.Outcomes), "comparison", "comparisons"), s.Similar, s.Different, s.Failed)
	return skerr.Wrap(err)
}

// differentPixels returns e.g. "1,204/10,000", or "-" if res has no count.
func differentPixels(res comparison.Result) string {
	if res.DifferentPixels == nil {
		return "-"
	}
	return humanize.Comma(int64(*res.DifferentPixels)) + "/" + humanize.Comma(int64(res.TotalPixels))
}

func verdict(similar bool, yes, no string) string {
	if similar {
		return yes
	}
	return no
}
