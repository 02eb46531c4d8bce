package metric

import (
	"context"
	"strings"
)

// Metric scores one semantic dimension of a generated text against its
// source and reference. Implementations are pure: no shared state, no side
// effects beyond calling a grading service.
type Metric interface {
	Name() string
	Evaluate(ctx context.Context, source, generated, reference string) (*Score, error)
}

// Score is one metric's verdict for one example.
type Score struct {
	Value       float64 // 0.0 - 1.0
	Explanation string
	Details     map[string]any
}

// Clamp bounds a raw value to [0,1].
func Clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Registry stores metrics by name, preserving registration order.
type Registry struct {
	names   []string
	metrics map[string]Metric
}

// NewRegistry creates an empty metric registry.
func NewRegistry() *Registry {
	return &Registry{
		metrics: make(map[string]Metric),
	}
}

// Register adds a metric to the registry.
func (r *Registry) Register(m Metric) {
	if r == nil {
		panic("metric: register on nil registry")
	}
	if m == nil {
		panic("metric: register nil metric")
	}
	name := strings.TrimSpace(m.Name())
	if name == "" {
		panic("metric: metric has empty name")
	}
	if r.metrics == nil {
		r.metrics = make(map[string]Metric)
	}
	if _, ok := r.metrics[name]; !ok {
		r.names = append(r.names, name)
	}
	r.metrics[name] = m
}

// Get returns a named metric if present.
func (r *Registry) Get(name string) (Metric, bool) {
	if r == nil || r.metrics == nil {
		return nil, false
	}
	m, ok := r.metrics[name]
	return m, ok
}

// Names returns metric names in registration order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}
