package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/huangsam/ecoscore/schema"
)

// unencodable fails YAML encoding through its marshaler.
type unencodable struct{}

func (unencodable) MarshalYAML() (any, error) {
	return nil, errors.New("refusing to encode")
}

func TestCreateFormatters(t *testing.T) {
	tests := []struct {
		name      string
		precision int
		value     float64
		expected  string
	}{
		{name: "score at default precision", precision: 2, value: 0.8367, expected: "0.84"},
		{name: "rounded to whole", precision: 0, value: 0.5, expected: "0"},
		{name: "co2 estimate", precision: 3, value: 166.25, expected: "166.250"},
		{name: "regression delta", precision: 2, value: -0.305, expected: "-0.30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fmtFloat, intFmt := createFormatters(tt.precision)
			assert.Equal(t, tt.expected, fmtFloat(tt.value))
			assert.Equal(t, "%d", intFmt)
		})
	}
}

func TestWriteJSON(t *testing.T) {
	t.Run("suggestion", func(t *testing.T) {
		var buf bytes.Buffer
		s := schema.Suggestion{RuleID: "loop_append", Category: schema.ResourceUsage, Severity: schema.SeverityHigh, Occurrences: 2}
		require.NoError(t, writeJSON(&buf, s))

		assert.Contains(t, buf.String(), "\n  \"rule_id\": \"loop_append\"")
		var back schema.Suggestion
		require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
		assert.Equal(t, s.RuleID, back.RuleID)
		assert.Equal(t, 2, back.Occurrences)
	})

	t.Run("unencodable", func(t *testing.T) {
		var buf bytes.Buffer
		err := writeJSON(&buf, map[string]any{"bad": make(chan int)})
		assert.ErrorContains(t, err, "failed to encode JSON")
	})
}

func TestWriteYAML(t *testing.T) {
	tests := []struct {
		name  string
		data  any
		check func(t *testing.T, out string)
	}{
		{
			name: "category score",
			data: schema.CategoryScore{Category: schema.EnergyEfficiency, Score: 0.75, Weight: 0.3, Outcomes: []schema.RuleOutcome{}},
			check: func(t *testing.T, out string) {
				assert.Contains(t, out, "category: energy_efficiency\n")
				assert.Contains(t, out, "score: 0.75\n")
			},
		},
		{
			name: "nested lists use two-space indent",
			data: schema.TrendSeries{Path: "app", Points: []schema.TrendPoint{{Revision: "abc", Status: schema.StatusMissing, Reason: "gone"}}},
			check: func(t *testing.T, out string) {
				assert.Contains(t, out, "points:\n  - revision: abc\n")
				assert.Contains(t, out, "    status: missing\n")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, writeYAML(&buf, tt.data))
			tt.check(t, buf.String())
		})
	}

	t.Run("marshaler error", func(t *testing.T) {
		var buf bytes.Buffer
		err := writeYAML(&buf, unencodable{})
		assert.ErrorContains(t, err, "failed to encode YAML")
		assert.ErrorContains(t, err, "refusing to encode")
	})
}

func TestWriteStructured(t *testing.T) {
	project := sampleProject()

	tests := []struct {
		name    string
		yamlOut bool
		decode  func(data []byte, v any) error
	}{
		{name: "json", yamlOut: false, decode: json.Unmarshal},
		{name: "yaml", yamlOut: true, decode: yaml.Unmarshal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "report."+tt.name)
			require.NoError(t, writeStructured(path, project, tt.yamlOut, "results"))

			data, err := os.ReadFile(path)
			require.NoError(t, err)

			var back schema.ProjectResult
			require.NoError(t, tt.decode(data, &back))
			assert.InDelta(t, project.ProjectScore, back.ProjectScore, 1e-9)
			require.Len(t, back.Units, len(project.Units))
			assert.Equal(t, schema.StatusParseError, back.Units[1].Status)
			assert.Equal(t, "syntax error at line 3", back.Units[1].Reason)
		})
	}

	t.Run("unwritable path", func(t *testing.T) {
		err := writeStructured(filepath.Join(t.TempDir(), "missing", "report.yaml"), project, true, "results")
		assert.Error(t, err)
	})
}

func TestWriteCSVWithHeader(t *testing.T) {
	tests := []struct {
		name     string
		header   []string
		rows     [][]string
		expected string
	}{
		{
			name:     "unit rows",
			header:   []string{"path", "status", "score"},
			rows:     [][]string{{"app/main.py", "ok", "0.80"}, {"app/broken.py", "parse_error", ""}},
			expected: "path,status,score\napp/main.py,ok,0.80\napp/broken.py,parse_error,\n",
		},
		{
			name:     "reason with comma is quoted",
			header:   []string{"path", "reason"},
			rows:     [][]string{{"a.py", "rule x skipped: panic: a, b"}},
			expected: "path,reason\na.py,\"rule x skipped: panic: a, b\"\n",
		},
		{
			name:     "header only",
			header:   []string{"revision", "score"},
			expected: "revision,score\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := writeCSVWithHeader(&buf, tt.header, func(w *csv.Writer) error {
				for _, row := range tt.rows {
					if err := w.Write(row); err != nil {
						return err
					}
				}
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, buf.String())
		})
	}

	t.Run("row error", func(t *testing.T) {
		var buf bytes.Buffer
		err := writeCSVWithHeader(&buf, []string{"path"}, func(*csv.Writer) error {
			return errors.New("store closed")
		})
		assert.EqualError(t, err, "store closed")
	})
}

func TestWriteWithFile(t *testing.T) {
	t.Run("to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "trend.csv")
		err := writeWithFile(path, func(w io.Writer) error {
			return writeTrendCSV(w, sampleSeries(), func(v float64) string { return "x" })
		}, "Wrote CSV")
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
		require.NoError(t, err)
		assert.Len(t, records, 4)
	})

	t.Run("writer error propagates", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.txt")
		err := writeWithFile(path, func(io.Writer) error {
			return errors.New("render failed")
		}, "Wrote table")
		assert.EqualError(t, err, "render failed")
	})

	t.Run("invalid path", func(t *testing.T) {
		err := writeWithFile(filepath.Join(t.TempDir(), "no", "such", "dir.txt"), func(io.Writer) error {
			return nil
		}, "Wrote table")
		assert.Error(t, err)
	})
}
