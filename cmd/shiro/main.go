package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"shiro/internal/adapter/engine/openai"
	"shiro/internal/adapter/gateway"
	"shiro/internal/adapter/toolprovider"
	"shiro/internal/infra/config"
	"shiro/internal/infra/logger"
	"shiro/internal/infra/tracer"
	"shiro/internal/usecase/hierarchy"
	"shiro/internal/usecase/orchestrator"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Config
	cfgPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// 2. Logger & Tracer
	log, logCloser, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logCloser()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracerShutdown, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return fmt.Errorf("tracer: %w", err)
	}
	defer tracerShutdown(context.Background())

	// 3. Assistant registry
	coordinator, specialists, err := cfg.Registry()
	if err != nil {
		return fmt.Errorf("registry: %w", err)
	}
	registry, err := hierarchy.NewRegistry(coordinator, specialists)
	if err != nil {
		return fmt.Errorf("registry: %w", err)
	}
	log.Info("registry loaded", "coordinator", coordinator.Name, "specialists", len(specialists))

	// 4. Tool provider dialer & run engine
	dialer := toolprovider.NewMCPDialer(log, cfg.Engine.CallTimeout)
	engine := openai.New(cfg.Engine, log)

	// 5. Orchestrator
	orch, err := orchestrator.New(registry, dialer, engine, cfg.WebSearch, log)
	if err != nil {
		return fmt.Errorf("orchestrator: %w", err)
	}

	// 6. Gateway
	srv := gateway.NewServer(orch, cfg.Gateway, log)
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("gateway: %w", err)
	}

	log.Info("shutdown complete")
	return nil
}
