package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/huangsam/ecoscore/internal/contract"
	"github.com/huangsam/ecoscore/schema"
)

// shortRevisionLen is the number of hash characters shown in tables.
const shortRevisionLen = 8

// PrintTrendSeries outputs a trend series, dispatching based on the output format configured.
func PrintTrendSeries(series schema.TrendSeries, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut, schema.YAMLOut:
		if err := writeStructured(cfg.OutputFile, series, cfg.Output == schema.YAMLOut, "trend results"); err != nil {
			return fmt.Errorf("error writing %s output: %w", cfg.Output, err)
		}
	case schema.CSVOut:
		err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTrendCSV(w, series, fmtFloat)
		}, "Wrote CSV trend results")
		if err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTrendTable(w, series, cfg, fmtFloat, duration)
		}, "Wrote trend table")
		if err != nil {
			return fmt.Errorf("error writing trend table output: %w", err)
		}
	}
	return nil
}

// shortRevision trims a commit hash for display.
func shortRevision(rev string) string {
	if len(rev) > shortRevisionLen {
		return rev[:shortRevisionLen]
	}
	return rev
}

// writeTrendTable prints one row per revision, oldest first.
func writeTrendTable(w io.Writer, series schema.TrendSeries, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	_, _ = fmt.Fprintf(w, "%s %s\n", heading("Eco-score history for", cfg.UseColors), series.Path)

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Revision", "Date", "Status", "Score", "Trend", "Change"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	var prev *float64
	for _, p := range series.Points {
		row := []string{shortRevision(p.Revision), p.Timestamp.Format(time.DateOnly), pointStatus(p)}
		if p.Result == nil {
			row = append(row, "-", "", p.Reason)
			data = append(data, row)
			continue
		}

		s := p.Result.OverallScore
		change := render(styleMuted, "─", cfg.UseColors)
		if prev != nil {
			change = TrendArrow(s-*prev, cfg.Precision, cfg.UseColors)
		}
		row = append(row, fmtFloat(s), ScoreBar(s, cfg.UseColors), change)
		data = append(data, row)
		prev = &s
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if len(series.Regressions) > 0 {
		_, _ = fmt.Fprintln(w, heading("\nRegressions", cfg.UseColors))
		for _, r := range series.Regressions {
			_, _ = fmt.Fprintf(w, "  %s -> %s: %s\n", shortRevision(r.From), shortRevision(r.To), fmtFloat(r.Delta))
		}
	}

	_, err := fmt.Fprintf(w, "Trend analysis of %d revisions (%d analyzed) completed in %v with %d workers. Cache backend: %s\n",
		len(series.Points), series.Populated(), duration, cfg.Workers, cfg.CacheBackend)
	return err
}

// pointStatus adds the analyzed unit count for directory points.
func pointStatus(p schema.TrendPoint) string {
	if len(p.Units) == 0 {
		return string(p.Status)
	}
	analyzed := 0
	for _, u := range p.Units {
		if u.Result != nil {
			analyzed++
		}
	}
	return fmt.Sprintf("%s %d/%d", p.Status, analyzed, len(p.Units))
}

// writeTrendCSV writes one record per revision.
func writeTrendCSV(w io.Writer, series schema.TrendSeries, fmtFloat func(float64) string) error {
	header := []string{
		"path",
		"revision",
		"timestamp",
		"status",
		"score",
		"energy_efficiency",
		"resource_usage",
		"code_optimizations",
		"custom_rules",
		"reason",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, p := range series.Points {
			rec := []string{
				series.Path,
				p.Revision,
				p.Timestamp.Format(contract.DateTimeFormat),
				string(p.Status),
				"", "", "", "", "",
				p.Reason,
			}
			if r := p.Result; r != nil {
				rec[4] = fmtFloat(r.OverallScore)
				for i, c := range schema.AllCategories {
					rec[5+i] = fmtFloat(r.CategoryScoreOf(c))
				}
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
