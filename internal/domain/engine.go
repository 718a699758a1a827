package domain

import "context"

// RunEngine executes one assistant hierarchy against a conversation. Its
// internal reasoning is opaque to this system; only this contract matters.
type RunEngine interface {
	// RunBuffered runs to completion and returns the full result.
	RunBuffered(ctx context.Context, root *AssistantInstance, input []Item) (*RunResult, error)

	// RunStreamed starts the run and returns a finite, single-consumer event
	// sequence. The events channel is closed when the run concludes; on
	// failure at most one terminal error is delivered on the error channel
	// and no further events follow.
	RunStreamed(ctx context.Context, root *AssistantInstance, input []Item) (<-chan RunEvent, <-chan error)
}
