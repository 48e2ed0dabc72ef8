package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/huangsam/ecoscore/internal/contract"
	"github.com/huangsam/ecoscore/schema"
)

// topSuggestions is the number of suggestions shown without --verbose.
const topSuggestions = 5

// PrintProjectResult outputs a project analysis, dispatching based on the output format configured.
func PrintProjectResult(result schema.ProjectResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut, schema.YAMLOut:
		if err := writeStructured(cfg.OutputFile, result, cfg.Output == schema.YAMLOut, "results"); err != nil {
			return fmt.Errorf("error writing %s output: %w", cfg.Output, err)
		}
	case schema.CSVOut:
		err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeProjectCSV(w, result, fmtFloat, intFmt)
		}, "Wrote CSV")
		if err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeProjectText(w, result, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
	return nil
}

// writeProjectText generates the human-readable report.
func writeProjectText(w io.Writer, result schema.ProjectResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	if err := writeUnitTable(w, result.Units, cfg, fmtFloat); err != nil {
		return err
	}

	verdict := "meets target"
	if result.BelowTarget {
		verdict = fmt.Sprintf("below target %s", fmtFloat(cfg.Thresholds.EcoScore))
	}
	_, _ = fmt.Fprintf(w, "\n%s %s %s (%s, %s)\n",
		heading("Eco-score:", cfg.UseColors), fmtFloat(result.ProjectScore),
		ScoreBar(result.ProjectScore, cfg.UseColors), gradeLabel(result.ProjectScore, cfg.UseColors), verdict)

	if len(result.CategoryAverages) > 0 {
		_, _ = fmt.Fprintln(w, heading("\nCategories", cfg.UseColors))
		for _, c := range schema.AllCategories {
			avg, ok := result.CategoryAverages[c]
			if !ok {
				continue
			}
			_, _ = fmt.Fprintf(w, "  %-20s %s %s\n", c.Title(), fmtFloat(avg), ScoreBar(avg, cfg.UseColors))
		}
	}

	writeSuggestions(w, result.Suggestions, cfg)

	est := result.Estimate
	_, _ = fmt.Fprintln(w, heading("\nEnvironmental impact", cfg.UseColors))
	_, _ = fmt.Fprintf(w, "  Potential energy savings: %s kWh/year\n", fmtFloat(est.EnergyKWhPerYear))
	_, _ = fmt.Fprintf(w, "  Potential CO2 reduction:  %s kg/year (about %s trees)\n", fmtFloat(est.CO2KgPerYear), fmtFloat(est.TreesEquivalent))
	_, _ = fmt.Fprintf(w, "  Estimated footprint:      %s kg CO2/year\n", fmtFloat(est.FootprintCO2KgPerYear))

	_, _ = fmt.Fprintf(w, "\nAnalyzed %d units (%d failed)\n", result.Analyzed, result.Failed)
	_, err := fmt.Fprintf(w, "Analysis completed in %v with %d workers. Cache backend: %s\n", duration, cfg.Workers, cfg.CacheBackend)
	return err
}

// writeUnitTable renders one row per unit, failed units included.
func writeUnitTable(w io.Writer, units []schema.UnitResult, cfg *contract.Config, fmtFloat func(float64) string) error {
	table := tablewriter.NewWriter(w)

	headers := []string{"Path", "Score", "Grade", "Status", "Tips"}
	if cfg.Verbose {
		headers = append(headers, "Energy", "Resource", "Optimize", "Custom")
	}
	table.Header(headers)

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	pathWidth := GetMaxTablePathWidth(cfg)
	var data [][]string
	for _, u := range units {
		path := contract.TruncatePath(u.Path, pathWidth)
		if u.Result == nil {
			row := []string{path, "-", "-", string(u.Status), "-"}
			if cfg.Verbose {
				row = append(row, "-", "-", "-", "-")
			}
			data = append(data, row)
			continue
		}

		r := u.Result
		row := []string{
			path,
			fmtFloat(r.OverallScore),
			gradeLabel(r.OverallScore, cfg.UseColors),
			string(u.Status),
			fmt.Sprintf("%d", len(r.Suggestions)),
		}
		if cfg.Verbose {
			for _, c := range schema.AllCategories {
				row = append(row, fmtFloat(r.CategoryScoreOf(c)))
			}
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if cfg.Verbose {
		for _, u := range units {
			if u.Reason != "" {
				_, _ = fmt.Fprintf(w, "  %s: %s\n", u.Path, u.Reason)
			}
		}
	}
	writeRuleWarnings(w, units)
	return nil
}

// writeRuleWarnings lists rules that were skipped while scoring a unit.
func writeRuleWarnings(w io.Writer, units []schema.UnitResult) {
	for _, u := range units {
		if u.Result == nil {
			continue
		}
		for _, warning := range u.Result.Warnings {
			_, _ = fmt.Fprintf(w, "  ⚠️  %s: %s\n", u.Path, warning.Error())
		}
	}
}

// warningSummary joins the skipped-rule diagnostics of one unit.
func warningSummary(r *schema.AnalysisResult) string {
	parts := make([]string, 0, len(r.Warnings))
	for _, warning := range r.Warnings {
		parts = append(parts, warning.Error())
	}
	return strings.Join(parts, "; ")
}

// writeSuggestions lists suggestions in priority order.
func writeSuggestions(w io.Writer, suggestions []schema.Suggestion, cfg *contract.Config) {
	if len(suggestions) == 0 {
		_, _ = fmt.Fprintln(w, "\nNo suggestions. Nice work! 🌿")
		return
	}

	shown := suggestions
	if !cfg.Verbose && len(shown) > topSuggestions {
		shown = shown[:topSuggestions]
	}

	_, _ = fmt.Fprintln(w, heading("\nSuggestions", cfg.UseColors))
	for i, s := range shown {
		_, _ = fmt.Fprintf(w, "  %d. [%s] %s (%s, %d occurrences)\n", i+1, s.Severity, s.Text, s.RuleID, s.Occurrences)
		if s.Impact != "" {
			_, _ = fmt.Fprintf(w, "     Impact: %s\n", s.Impact)
		}
		if cfg.Verbose && s.Example != "" {
			_, _ = fmt.Fprintf(w, "     Example: %s\n", s.Example)
		}
		if s.EnvironmentalNote != "" {
			_, _ = fmt.Fprintf(w, "     🌱 %s\n", s.EnvironmentalNote)
		}
	}
	if hidden := len(suggestions) - len(shown); hidden > 0 {
		_, _ = fmt.Fprintf(w, "  ... and %d more (use --verbose)\n", hidden)
	}
}

// writeProjectCSV writes one record per unit.
func writeProjectCSV(w io.Writer, result schema.ProjectResult, fmtFloat func(float64) string, intFmt string) error {
	header := []string{
		"path",
		"status",
		"score",
		"grade",
		"energy_efficiency",
		"resource_usage",
		"code_optimizations",
		"custom_rules",
		"suggestions",
		"energy_kwh_per_year",
		"co2_kg_per_year",
		"reason",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, u := range result.Units {
			rec := []string{u.Path, string(u.Status), "", "", "", "", "", "", "", "", "", u.Reason}
			if r := u.Result; r != nil {
				rec[2] = fmtFloat(r.OverallScore)
				rec[3] = contract.GetPlainLabel(r.OverallScore)
				for i, c := range schema.AllCategories {
					rec[4+i] = fmtFloat(r.CategoryScoreOf(c))
				}
				rec[8] = fmt.Sprintf(intFmt, len(r.Suggestions))
				rec[9] = fmtFloat(r.Estimate.EnergyKWhPerYear)
				rec[10] = fmtFloat(r.Estimate.CO2KgPerYear)
				if rec[11] == "" {
					rec[11] = warningSummary(r)
				}
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
