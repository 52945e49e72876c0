package ratelimit

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ParsePolicies overlays YAML-encoded policies onto base. The document maps
// operation names to {rate, period, capacity}, for example:
//
//	createTodo: {rate: 40, period: 1m, capacity: 10}
//
// Only known operations may be overridden.
func ParsePolicies(data []byte, base Policies) (Policies, error) {
	var overrides map[Operation]Policy
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse rate limits: %w", err)
	}

	out := make(Policies, len(base))
	for op, p := range base {
		out[op] = p
	}
	for op, p := range overrides {
		if _, ok := base[op]; !ok {
			return nil, fmt.Errorf("unknown rate limit operation %q", op)
		}
		if err := p.validate(); err != nil {
			return nil, fmt.Errorf("rate limit %s: %w", op, err)
		}
		out[op] = p
	}
	return out, nil
}

// LoadPolicies reads a policy file; an empty path yields the defaults.
func LoadPolicies(path string) (Policies, error) {
	if path == "" {
		return DefaultPolicies(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParsePolicies(data, DefaultPolicies())
}
