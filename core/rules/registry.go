package rules

import (
	"fmt"

	"github.com/huangsam/ecoscore/internal/contract"
	"github.com/huangsam/ecoscore/schema"
)

// Registry is an ordered, name-keyed collection of rules.
// New rules are added by registering them, never by changing the aggregator.
type Registry struct {
	rules []Rule
	index map[string]int
}

// NewEmptyRegistry returns a registry with no rules.
func NewEmptyRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// NewRegistry returns the built-in rules followed by the custom rules in config order.
func NewRegistry(specs []schema.CustomRuleSpec) (*Registry, error) {
	reg := NewEmptyRegistry()
	for _, rule := range Builtins() {
		if err := reg.Register(rule); err != nil {
			return nil, err
		}
	}
	for _, spec := range specs {
		if _, exists := reg.Get(spec.Name); exists {
			return nil, contract.NewConfigurationError(fmt.Sprintf("custom_rules[%s]", spec.Name), "name is already registered")
		}
		rule, err := NewCustomRule(spec)
		if err != nil {
			return nil, err
		}
		if err := reg.Register(rule); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Register appends a rule. Rule IDs must be unique.
func (r *Registry) Register(rule Rule) error {
	id := rule.Info().ID
	if _, exists := r.index[id]; exists {
		return fmt.Errorf("rule %q is already registered", id)
	}
	if _, ok := schema.ValidCategories[rule.Info().Category]; !ok {
		return fmt.Errorf("rule %q has unknown category %q", id, rule.Info().Category)
	}
	r.index[id] = len(r.rules)
	r.rules = append(r.rules, rule)
	return nil
}

// Get returns the rule registered under id.
func (r *Registry) Get(id string) (Rule, bool) {
	i, ok := r.index[id]
	if !ok {
		return nil, false
	}
	return r.rules[i], true
}

// Rules returns the rules in registration order.
func (r *Registry) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Infos returns the descriptions of all rules in registration order.
func (r *Registry) Infos() []Info {
	out := make([]Info, 0, len(r.rules))
	for _, rule := range r.rules {
		out = append(out, rule.Info())
	}
	return out
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	return len(r.rules)
}
