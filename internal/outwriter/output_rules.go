package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/huangsam/ecoscore/core/rules"
	"github.com/huangsam/ecoscore/internal/contract"
	"github.com/huangsam/ecoscore/schema"
)

// PrintRules outputs the active rules, dispatching based on the output format configured.
func PrintRules(infos []rules.Info, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut, schema.YAMLOut:
		if err := writeStructured(cfg.OutputFile, infos, cfg.Output == schema.YAMLOut, "rules"); err != nil {
			return fmt.Errorf("error writing %s output: %w", cfg.Output, err)
		}
	case schema.CSVOut:
		err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"id", "category", "weight", "description"}, func(cw *csv.Writer) error {
				for _, info := range infos {
					if err := cw.Write([]string{info.ID, string(info.Category), fmtFloat(info.Weight), info.Description}); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV rules")
		if err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRulesTable(w, infos, cfg, fmtFloat)
		}, "Wrote rules table")
	}
	return nil
}

// writeRulesTable lists rules grouped by category in evaluation order.
func writeRulesTable(w io.Writer, infos []rules.Info, cfg *contract.Config, fmtFloat func(float64) string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rule", "Category", "Weight", "Description"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	var data [][]string
	for _, info := range infos {
		data = append(data, []string{info.ID, info.Category.Title(), fmtFloat(info.Weight), info.Description})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "Category weights: energy %s, resource %s, optimizations %s, custom %s\n",
		fmtFloat(cfg.Weights.EnergyEfficiency), fmtFloat(cfg.Weights.ResourceUsage),
		fmtFloat(cfg.Weights.CodeOptimizations), fmtFloat(cfg.Weights.CustomRules))
	return err
}
