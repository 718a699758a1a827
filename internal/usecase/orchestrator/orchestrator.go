package orchestrator

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/trace"

	"shiro/internal/adapter/toolprovider"
	"shiro/internal/domain"
	"shiro/internal/infra/logger"
	"shiro/internal/infra/tracer"
	"shiro/internal/usecase/hierarchy"
)

// EventSink receives translated stream events in order. Returning an error
// aborts the run; the orchestrator still tears down its connections first.
type EventSink func(event string, payload any) error

// Orchestrator drives one run end to end: select specialists, open their
// tool-provider connections, assemble the hierarchy, hand it to the Run
// Engine, and guarantee teardown on every exit path.
type Orchestrator struct {
	registry  *hierarchy.Registry
	builder   *hierarchy.Builder
	dialer    toolprovider.Dialer
	engine    domain.RunEngine
	contracts *contractValidator
	webSearch bool
	logger    *slog.Logger
}

// New creates an orchestrator. Output contract schemas for every assistant
// that declares one are compiled here, once.
func New(registry *hierarchy.Registry, dialer toolprovider.Dialer, engine domain.RunEngine, webSearch bool, log *slog.Logger) (*Orchestrator, error) {
	var tags []string
	seen := map[string]bool{}
	for _, cfg := range append(registry.Specialists(), registry.Coordinator()) {
		if cfg.OutputContract != "" && !seen[cfg.OutputContract] {
			seen[cfg.OutputContract] = true
			tags = append(tags, cfg.OutputContract)
		}
	}
	contracts, err := newContractValidator(tags)
	if err != nil {
		return nil, err
	}

	return &Orchestrator{
		registry:  registry,
		builder:   hierarchy.NewBuilder(log),
		dialer:    dialer,
		engine:    engine,
		contracts: contracts,
		webSearch: webSearch,
		logger:    log,
	}, nil
}

// Invoke runs one buffered request: the engine runs to completion and the
// full result is returned at once. Connections close in reverse order before
// this function returns, success or not.
func (o *Orchestrator) Invoke(ctx context.Context, items []domain.Item, integrations []string) (*domain.RunResult, error) {
	runID := ulid.Make().String()
	log := logger.WithRun(o.logger, runID)

	ctx, span := tracer.StartSpan(ctx, "orchestrator.invoke",
		trace.WithAttributes(tracer.RunAttrs(runID, len(integrations))...))
	defer span.End()

	scope := toolprovider.NewScope(o.dialer, log)
	defer scope.Close()

	root, err := o.assemble(ctx, scope, integrations, log)
	if err != nil {
		tracer.RecordError(span, err)
		return nil, err
	}

	result, err := o.engine.RunBuffered(ctx, root, items)
	if err != nil {
		tracer.RecordError(span, err)
		log.Error("run failed", "error", err)
		return nil, domain.WrapOp("orchestrator.Invoke", err)
	}

	if err := o.validateResult(result); err != nil {
		tracer.RecordError(span, err)
		log.Error("contract violation", "agent", result.FinalAgent, "error", err)
		return nil, err
	}

	tracer.SetOK(span)
	log.Info("run complete", "items", len(result.Items), "final_agent", result.FinalAgent)
	return result, nil
}

// InvokeStreamed runs one streaming request, pushing translated events to
// sink in arrival order. The stream terminates with exactly one done or
// error event. Teardown happens in this frame, after the engine concludes,
// so connections are guaranteed to close even if the client goes away.
func (o *Orchestrator) InvokeStreamed(ctx context.Context, items []domain.Item, integrations []string, sink EventSink) error {
	runID := ulid.Make().String()
	log := logger.WithRun(o.logger, runID)

	ctx, span := tracer.StartSpan(ctx, "orchestrator.invoke_streamed",
		trace.WithAttributes(tracer.RunAttrs(runID, len(integrations))...))
	defer span.End()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	scope := toolprovider.NewScope(o.dialer, log)
	defer scope.Close()

	root, err := o.assemble(ctx, scope, integrations, log)
	if err != nil {
		tracer.RecordError(span, err)
		return o.emitError(sink, err, log)
	}

	events, errs := o.engine.RunStreamed(ctx, root, items)

	// Track the concluding assistant and its final message so the declared
	// output contract can be checked before done is emitted.
	finalAgent := root.Name
	finalContent := ""

	for ev := range events {
		if ev.Kind == domain.RunEventAgentUpdated {
			finalAgent = ev.AgentName
		}
		if ev.Kind == domain.RunEventItem && ev.Item != nil &&
			ev.Item.Type == domain.ItemTypeMessage && ev.Item.Role == domain.RoleAssistant {
			finalContent = ev.Item.Content
		}

		name, payload, ok := Translate(ev)
		if !ok {
			continue
		}
		if sinkErr := sink(name, payload); sinkErr != nil {
			cancel()
			// Drain so the engine goroutine can exit before teardown.
			for range events {
			}
			<-errs
			tracer.RecordError(span, sinkErr)
			return domain.WrapOp("orchestrator.InvokeStreamed", sinkErr)
		}
	}

	if runErr := <-errs; runErr != nil {
		tracer.RecordError(span, runErr)
		return o.emitError(sink, runErr, log)
	}

	if err := o.validateFinal(finalAgent, finalContent); err != nil {
		tracer.RecordError(span, err)
		return o.emitError(sink, err, log)
	}

	if err := sink(domain.StreamEventDone, domain.DonePayload{Status: "complete"}); err != nil {
		return domain.WrapOp("orchestrator.InvokeStreamed", err)
	}

	tracer.SetOK(span)
	log.Info("stream complete", "final_agent", finalAgent)
	return nil
}

// assemble selects specialists, opens every needed connection in registry
// order, and builds the hierarchy. All-or-nothing: one failed dial aborts the
// run before the engine is ever invoked.
func (o *Orchestrator) assemble(ctx context.Context, scope *toolprovider.Scope, integrations []string, log *slog.Logger) (*domain.AssistantInstance, error) {
	coordinator := o.registry.Coordinator()
	selected := hierarchy.Select(o.registry.Specialists(), integrations, o.webSearch)

	log.Info("specialists selected", "requested", len(integrations), "selected", len(selected))

	conns := make(map[string]domain.ToolConnection)

	if coordinator.Provider != nil {
		conn, err := scope.Acquire(ctx, coordinator.Name, coordinator.Provider)
		if err != nil {
			return nil, domain.WrapOp("orchestrator.assemble", err)
		}
		conns[coordinator.Name] = conn
	}
	for _, spec := range selected {
		if spec.Provider == nil {
			continue
		}
		conn, err := scope.Acquire(ctx, spec.Name, spec.Provider)
		if err != nil {
			return nil, domain.WrapOp("orchestrator.assemble", err)
		}
		conns[spec.Name] = conn
	}

	return o.builder.Build(coordinator, selected, conns), nil
}

// validateResult checks a buffered result against the concluding
// assistant's output contract, when it declares one.
func (o *Orchestrator) validateResult(result *domain.RunResult) error {
	contract := o.contractFor(result.FinalAgent)
	if contract == "" {
		return nil
	}
	return o.contracts.validate(contract, result.FinalOutput)
}

// validateFinal is the streamed-path counterpart working from the last
// assistant message observed on the stream.
func (o *Orchestrator) validateFinal(finalAgent, finalContent string) error {
	contract := o.contractFor(finalAgent)
	if contract == "" {
		return nil
	}
	return o.contracts.validate(contract, json.RawMessage(finalContent))
}

func (o *Orchestrator) contractFor(agent string) string {
	cfg, err := o.registry.Lookup(agent)
	if err != nil {
		return ""
	}
	return cfg.OutputContract
}

// emitError pushes the terminal error event. The original run error is
// returned either way; a sink failure at this point only gets logged.
func (o *Orchestrator) emitError(sink EventSink, runErr error, log *slog.Logger) error {
	log.Error("run failed", "error", runErr)
	payload := domain.ErrorPayload{Error: "run failed", Detail: runErr.Error()}
	if err := sink(domain.StreamEventError, payload); err != nil {
		log.Warn("error event not delivered", "error", err)
	}
	return domain.WrapOp("orchestrator.InvokeStreamed", runErr)
}
