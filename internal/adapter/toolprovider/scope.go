package toolprovider

import (
	"context"
	"fmt"
	"log/slog"

	"shiro/internal/domain"
)

// Scope owns the tool-provider connections opened for a single run. It is a
// strict stack: connections close in reverse acquisition order, exactly once,
// regardless of how the run ends. A Scope is confined to one run and is not
// safe for concurrent use.
type Scope struct {
	dialer Dialer
	logger *slog.Logger
	stack  []domain.ToolConnection
	closed bool
}

// NewScope creates an empty connection scope.
func NewScope(dialer Dialer, logger *slog.Logger) *Scope {
	return &Scope{dialer: dialer, logger: logger}
}

// Acquire dials one tool provider and pushes the connection onto the scope.
// On failure the scope is left as it was; the caller decides whether to
// Close. No retries are attempted.
func (s *Scope) Acquire(ctx context.Context, name string, locator *domain.ProviderLocator) (domain.ToolConnection, error) {
	if s.closed {
		return nil, fmt.Errorf("acquire %q: scope already closed", name)
	}
	conn, err := s.dialer.Dial(ctx, name, locator)
	if err != nil {
		return nil, fmt.Errorf("tool provider %q: %w: %w", name, domain.ErrConnectionFailed, err)
	}
	s.stack = append(s.stack, conn)
	return conn, nil
}

// Len reports how many connections the scope currently holds.
func (s *Scope) Len() int { return len(s.stack) }

// Close releases every held connection in reverse acquisition order. It is
// idempotent; later calls are no-ops. Close errors are logged, never
// propagated, so one bad teardown cannot mask a run result.
func (s *Scope) Close() {
	if s.closed {
		return
	}
	s.closed = true
	for i := len(s.stack) - 1; i >= 0; i-- {
		conn := s.stack[i]
		if err := conn.Close(); err != nil {
			s.logger.Warn("tool provider close error", "name", conn.Name(), "error", err)
		} else {
			s.logger.Debug("tool provider closed", "name", conn.Name())
		}
	}
	s.stack = nil
}
