package llm

import "strings"

// Registry holds providers under their canonical names, preserving
// registration order the same way the metric registry does.
type Registry struct {
	names     []string
	providers map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider under the canonical form of its name. A later
// registration of the same name replaces the earlier one without
// disturbing the order.
func (r *Registry) Register(p Provider) {
	if r == nil || p == nil {
		return
	}
	name := CanonicalName(p.Name())
	if name == "" {
		return
	}
	if r.providers == nil {
		r.providers = make(map[string]Provider)
	}
	if _, ok := r.providers[name]; !ok {
		r.names = append(r.names, name)
	}
	r.providers[name] = p
}

// Get resolves a provider by name or alias: "google" finds the gemini
// provider, "anthropic" finds claude.
func (r *Registry) Get(name string) (Provider, bool) {
	if r == nil || r.providers == nil {
		return nil, false
	}
	p, ok := r.providers[CanonicalName(name)]
	return p, ok
}

// Names returns the canonical provider names in registration order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// CanonicalName folds provider aliases onto the names the config and
// factory use: google/gemini -> gemini, anthropic/claude -> claude.
func CanonicalName(name string) string {
	switch name = strings.ToLower(strings.TrimSpace(name)); name {
	case "google", "gemini":
		return "gemini"
	case "anthropic", "claude":
		return "claude"
	default:
		return name
	}
}
