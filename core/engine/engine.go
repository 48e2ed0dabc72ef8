// Package engine wires extraction, rules, aggregation, suggestions and the
// impact estimate into the single-unit analysis pipeline.
package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/huangsam/ecoscore/core/facts"
	"github.com/huangsam/ecoscore/core/impact"
	"github.com/huangsam/ecoscore/core/rules"
	"github.com/huangsam/ecoscore/core/score"
	"github.com/huangsam/ecoscore/core/suggest"
	"github.com/huangsam/ecoscore/internal/contract"
	"github.com/huangsam/ecoscore/schema"
)

// RulesetVersion changes whenever extraction or rule semantics change,
// so that cached results from older engines are not reused.
const RulesetVersion = "2"

// Engine analyzes source units with one immutable set of settings.
// It is safe for concurrent use.
type Engine struct {
	settings    schema.Settings
	registry    *rules.Registry
	fingerprint string
}

// New validates settings and builds the rule registry.
// Every failure is a *contract.ConfigurationError, raised before any analysis.
func New(settings schema.Settings) (*Engine, error) {
	settings = settings.Clone()
	if err := contract.ValidateSettings(settings); err != nil {
		return nil, err
	}

	weights, err := score.NormalizeWeights(settings.Weights)
	if err != nil {
		return nil, err
	}
	settings.Weights = weights

	if err := impact.ValidateCoefficients(settings.Coefficients); err != nil {
		return nil, err
	}

	registry, err := rules.NewRegistry(settings.CustomRules)
	if err != nil {
		return nil, err
	}

	fp, err := fingerprint(settings)
	if err != nil {
		return nil, err
	}

	return &Engine{settings: settings, registry: registry, fingerprint: fp}, nil
}

// Analyze runs the full pipeline on one unit. A *facts.ParseError is returned
// for unparseable source; rule failures become warnings on the result.
func (e *Engine) Analyze(ctx context.Context, src []byte) (*schema.AnalysisResult, error) {
	f, err := facts.Extract(ctx, src)
	if err != nil {
		return nil, err
	}

	outcomes, warnings := rules.EvaluateAll(e.registry, f, src)

	categories, overall, below, err := score.Aggregate(outcomes, e.settings)
	if err != nil {
		return nil, fmt.Errorf("aggregate outcomes: %w", err)
	}

	estimate, err := impact.Estimate(overall, e.settings.Coefficients)
	if err != nil {
		return nil, fmt.Errorf("estimate impact: %w", err)
	}

	return &schema.AnalysisResult{
		OverallScore: overall,
		BelowTarget:  below,
		Categories:   categories,
		Suggestions:  suggest.Generate(categories),
		Estimate:     estimate,
		Facts:        f,
		Warnings:     warnings,
	}, nil
}

// Settings returns a copy of the normalized settings.
func (e *Engine) Settings() schema.Settings {
	return e.settings.Clone()
}

// Rules returns the active rules in evaluation order.
func (e *Engine) Rules() []rules.Info {
	return e.registry.Infos()
}

// Fingerprint identifies the settings and ruleset this engine scores with.
func (e *Engine) Fingerprint() string {
	return e.fingerprint
}

func fingerprint(settings schema.Settings) (string, error) {
	payload, err := json.Marshal(struct {
		Version  string          `json:"version"`
		Settings schema.Settings `json:"settings"`
	}{RulesetVersion, settings})
	if err != nil {
		return "", fmt.Errorf("fingerprint settings: %w", err)
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
