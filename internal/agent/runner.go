// File: internal/agent/runner.go
package agent

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/droidpilot/droidpilot-cli/internal/config"
)

// Runner executes multiple tasks as independent control-loop instances. The
// loops share only the (read-only) configuration and the collaborator
// implementations; no task state crosses between them.
type Runner struct {
	cfg       config.AgentConfig
	perceptor Perceptor
	planner   Planner
	executor  Executor
	logger    *zap.Logger
}

// NewRunner creates a runner over shared collaborators.
func NewRunner(
	cfg config.AgentConfig,
	perceptor Perceptor,
	planner Planner,
	executor Executor,
	logger *zap.Logger,
) *Runner {
	return &Runner{
		cfg:       cfg,
		perceptor: perceptor,
		planner:   planner,
		executor:  executor,
		logger:    logger,
	}
}

// RunAll drives every task to completion and returns results in task order.
// A failed or exhausted task never aborts its siblings; only context
// cancellation stops the group early.
func (r *Runner) RunAll(ctx context.Context, tasks []string) []*TaskResult {
	results := make([]*TaskResult, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	// All tasks drive the same physical device, so the loops must not
	// interleave their input events.
	g.SetLimit(1)
	for i, task := range tasks {
		loop := NewControlLoop(r.cfg, r.perceptor, r.planner, r.executor, r.logger)
		g.Go(func() error {
			results[i] = loop.Run(gctx, task)
			return nil
		})
	}
	// The goroutines only write disjoint slice slots and never return errors.
	_ = g.Wait()
	return results
}
