package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/ecoscore/internal/contract"
	"github.com/huangsam/ecoscore/internal/parquet"
)

// ExecuteHistoryExport writes the run history to Parquet files named
// after outputFile.
func ExecuteHistoryExport(store contract.HistoryStore, outputFile string, out io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run history found to export")
	}

	_, _ = fmt.Fprintf(out, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(out, "Total runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(out, "Total unit records: %d\n", status.TableSizes[unitScoresTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	scores, err := store.GetAllUnitScores()
	if err != nil {
		return fmt.Errorf("failed to retrieve unit scores: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	parquetRuns := parquet.ConvertRunRecords(runs)
	if err := parquet.WriteRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(out, "Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	scoresFile := outputFile + ".unit_scores.parquet"
	parquetScores := parquet.ConvertUnitScoreRecords(scores)
	if err := parquet.WriteUnitScoresParquet(parquetScores, scoresFile); err != nil {
		return fmt.Errorf("failed to write unit scores: %w", err)
	}
	_, _ = fmt.Fprintf(out, "Exported %d unit score records to: %s\n", len(parquetScores), scoresFile)

	_, _ = fmt.Fprintln(out, "\nExport complete! The Parquet files can be used with:")
	_, _ = fmt.Fprintln(out, "  - DuckDB")
	_, _ = fmt.Fprintln(out, "  - Pandas (via pyarrow)")
	_, _ = fmt.Fprintln(out, "  - Apache Spark")
	return nil
}
