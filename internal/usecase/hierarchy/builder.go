package hierarchy

import (
	"log/slog"

	"shiro/internal/domain"
)

// Builder assembles assistant hierarchies from definitions plus already-open
// tool connections. Assembly is pure: no I/O, no connection dialing, so a
// build can never half-open resources.
type Builder struct {
	logger *slog.Logger
}

// NewBuilder creates a hierarchy builder.
func NewBuilder(logger *slog.Logger) *Builder {
	return &Builder{logger: logger}
}

// Build materializes the coordinator with one handoff per selected
// specialist, in selection order. conns maps assistant name to its open
// connection; assistants without an entry simply run tool-less. Each handoff
// carries a notification callback that logs the delegation; callback panics
// are isolated and never disturb the run.
func (b *Builder) Build(coordinator domain.AssistantConfig, specialists []domain.AssistantConfig, conns map[string]domain.ToolConnection) *domain.AssistantInstance {
	root := instantiate(coordinator, conns)

	for _, spec := range specialists {
		inst := instantiate(spec, conns)
		root.Handoffs = append(root.Handoffs, domain.Handoff{
			Agent:     inst,
			OnHandoff: b.notifyHandoff,
		})
	}
	return root
}

func (b *Builder) notifyHandoff(agentName string) {
	b.logger.Info("handoff called", "agent", agentName)
}

func instantiate(cfg domain.AssistantConfig, conns map[string]domain.ToolConnection) *domain.AssistantInstance {
	inst := &domain.AssistantInstance{
		Name:           cfg.Name,
		Instructions:   cfg.Instructions,
		ToolChoice:     cfg.ToolChoice,
		OutputContract: cfg.OutputContract,
	}
	if conn, ok := conns[cfg.Name]; ok && conn != nil {
		inst.Connections = append(inst.Connections, conn)
	}
	return inst
}
