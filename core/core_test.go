package core

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/ecoscore/core/rules"
	"github.com/huangsam/ecoscore/internal/contract"
	"github.com/huangsam/ecoscore/schema"
)

func TestNewEngineRejectsBadSettings(t *testing.T) {
	cfg := testConfig(t, t.TempDir())
	cfg.Weights.ResourceUsage = -1

	_, err := newEngine(cfg)
	require.Error(t, err)
	assert.True(t, contract.IsConfigurationError(err))

	_, _, err = GetProjectResult(context.Background(), cfg, nil)
	assert.True(t, contract.IsConfigurationError(err))
}

func TestGetRules(t *testing.T) {
	cfg := testConfig(t, t.TempDir())
	builtins, err := GetRules(cfg)
	require.NoError(t, err)
	require.NotEmpty(t, builtins)

	cfg.CustomRules = []schema.CustomRuleSpec{{Name: rules.CatalogNames()[0]}}
	withCustom, err := GetRules(cfg)
	require.NoError(t, err)
	assert.Len(t, withCustom, len(builtins)+1)
	assert.Equal(t, schema.CustomRules, withCustom[len(withCustom)-1].Category)
}

func TestExecuteRules(t *testing.T) {
	cfg := testConfig(t, t.TempDir())
	require.NoError(t, ExecuteRules(context.Background(), cfg, nil))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	var infos []rules.Info
	require.NoError(t, json.Unmarshal(data, &infos))
	assert.NotEmpty(t, infos)
}

func TestExecuteAnalyzeEmptyDirectory(t *testing.T) {
	cfg := testConfig(t, t.TempDir())
	cfg.MetricsFile = cfg.OutputFile + ".prom"

	require.NoError(t, ExecuteAnalyze(WithSuppressHeader(context.Background()), cfg, nil))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	var result schema.ProjectResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.InDelta(t, 1.0, result.ProjectScore, 1e-9)
	assert.Zero(t, result.Analyzed)

	metrics, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "ecoscore_project_score 1")
}
