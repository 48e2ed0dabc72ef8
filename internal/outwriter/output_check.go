package outwriter

import (
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/huangsam/ecoscore/internal/contract"
	"github.com/huangsam/ecoscore/schema"
)

// maxViolationsShown caps the violations listed per group in text output.
const maxViolationsShown = 5

// PrintCheckResult outputs a check result, dispatching based on the output format configured.
func PrintCheckResult(result schema.CheckResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut, schema.YAMLOut:
		if err := writeStructured(cfg.OutputFile, result, cfg.Output == schema.YAMLOut, "check results"); err != nil {
			return fmt.Errorf("error writing %s output: %w", cfg.Output, err)
		}
	case schema.CSVOut:
		err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"path", "category", "score", "threshold"}, func(cw *csv.Writer) error {
				for _, v := range result.Violations {
					if err := cw.Write([]string{v.Path, string(v.Category), fmtFloat(v.Score), fmtFloat(v.Threshold)}); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV check results")
		if err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			writeCheckText(w, result, fmtFloat, duration)
			return nil
		}, "Wrote check results")
	}
	return nil
}

// writeCheckText prints the check result in a concise format suitable for CI/CD.
func writeCheckText(w io.Writer, result schema.CheckResult, fmtFloat func(float64) string, duration time.Duration) {
	_, _ = fmt.Fprintln(w, "Eco-score Check Results:")

	labels := []string{"Eco-score target:", "Category target:", "Project score:"}
	values := []string{
		fmtFloat(result.Thresholds.EcoScore),
		fmtFloat(result.Thresholds.CategoryScore),
		fmtFloat(result.ProjectScore),
	}
	maxLabelLen := 0
	for _, label := range labels {
		maxLabelLen = max(maxLabelLen, len(label))
	}
	for i, label := range labels {
		_, _ = fmt.Fprintf(w, "  %-*s %s\n", maxLabelLen+1, label, values[i])
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Checked %d units (%d could not be analyzed) in %v\n\n", result.TotalUnits, result.FailedUnits, duration)

	if result.Passed {
		_, _ = fmt.Fprintln(w, "✅ All units meet the eco-score targets")
		return
	}

	_, _ = fmt.Fprintf(w, "❌ Eco-score check failed: %d violation(s) found\n\n", len(result.Violations))

	// Overall violations first, then one group per category
	groups := make(map[schema.Category][]schema.CheckViolation)
	for _, v := range result.Violations {
		groups[v.Category] = append(groups[v.Category], v)
	}
	order := append([]schema.Category{""}, schema.AllCategories...)
	for _, c := range order {
		vs := groups[c]
		if len(vs) == 0 {
			continue
		}
		slices.SortStableFunc(vs, func(a, b schema.CheckViolation) int {
			return cmp.Compare(a.Score, b.Score)
		})

		title := "Overall"
		if c != "" {
			title = c.Title()
		}
		_, _ = fmt.Fprintf(w, "%s (%d violations)\n", title, len(vs))
		for i, v := range vs {
			if i == maxViolationsShown {
				_, _ = fmt.Fprintf(w, "  ... and %d more\n", len(vs)-i)
				break
			}
			_, _ = fmt.Fprintf(w, "  - %s (score: %s < threshold: %s)\n", v.Path, fmtFloat(v.Score), fmtFloat(v.Threshold))
		}
		_, _ = fmt.Fprintln(w)
	}
}
