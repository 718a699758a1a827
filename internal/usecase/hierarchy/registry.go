package hierarchy

import (
	"shiro/internal/domain"
)

// Registry is the immutable catalog of assistant definitions for the process
// lifetime. It is assembled once at startup and shared read-only across
// requests, so no locking is needed.
type Registry struct {
	coordinator domain.AssistantConfig
	specialists []domain.AssistantConfig
	byName      map[string]domain.AssistantConfig
}

// NewRegistry builds a registry from a coordinator and its specialists.
// Assistant names must be unique across the whole set.
func NewRegistry(coordinator domain.AssistantConfig, specialists []domain.AssistantConfig) (*Registry, error) {
	byName := map[string]domain.AssistantConfig{coordinator.Name: coordinator}
	for _, s := range specialists {
		if _, ok := byName[s.Name]; ok {
			return nil, domain.NewDomainError("hierarchy.NewRegistry", domain.ErrDuplicateAssistant, s.Name)
		}
		byName[s.Name] = s
	}

	return &Registry{
		coordinator: coordinator,
		specialists: append([]domain.AssistantConfig(nil), specialists...),
		byName:      byName,
	}, nil
}

// Coordinator returns the coordinator definition.
func (r *Registry) Coordinator() domain.AssistantConfig {
	return r.coordinator
}

// Specialists returns the specialist definitions in configuration order.
// The returned slice is a copy; callers may not mutate registry state.
func (r *Registry) Specialists() []domain.AssistantConfig {
	return append([]domain.AssistantConfig(nil), r.specialists...)
}

// Lookup finds an assistant definition by exact name.
func (r *Registry) Lookup(name string) (domain.AssistantConfig, error) {
	cfg, ok := r.byName[name]
	if !ok {
		return domain.AssistantConfig{}, domain.NewDomainError("hierarchy.Lookup", domain.ErrAssistantNotFound, name)
	}
	return cfg, nil
}
