// File: internal/agent/agent.go
package agent

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/droidpilot/droidpilot-cli/internal/action"
	"github.com/droidpilot/droidpilot-cli/internal/config"
)

// ControlLoop is the state machine driving one task: it sequences
// observation, planning, parsing, validation, and execution under a step
// budget and the configured failure policy.
//
// A loop instance runs one task at a time on a single logical thread of
// control; steps are strictly sequential because each decision depends on the
// screen state produced by the previous action. Cancellation is observed only
// at step boundaries.
type ControlLoop struct {
	cfg       config.AgentConfig
	perceptor Perceptor
	planner   Planner
	executor  Executor
	parser    *action.ResponseParser
	validator *action.Validator
	logger    *zap.Logger

	state LoopState
}

// NewControlLoop wires a loop over its collaborators.
func NewControlLoop(
	cfg config.AgentConfig,
	perceptor Perceptor,
	planner Planner,
	executor Executor,
	logger *zap.Logger,
) *ControlLoop {
	l := logger.Named("control_loop")
	return &ControlLoop{
		cfg:       cfg,
		perceptor: perceptor,
		planner:   planner,
		executor:  executor,
		parser:    action.NewResponseParser(l),
		validator: action.NewValidator(l),
		logger:    l,
		state:     StateIdle,
	}
}

// Run drives the task to one of Completed, Failed, or Exhausted.
func (l *ControlLoop) Run(ctx context.Context, taskDescription string) *TaskResult {
	st := &TaskState{
		TaskID:      uuid.NewString(),
		Description: taskDescription,
		MaxSteps:    l.cfg.MaxSteps,
	}
	result := &TaskResult{
		TaskID:      st.TaskID,
		Description: taskDescription,
		StartTime:   time.Now(),
	}

	l.logger.Info("Task started",
		zap.String("task_id", st.TaskID),
		zap.String("task", taskDescription),
		zap.Int("max_steps", st.MaxSteps),
	)

	for {
		// Step boundary: the only safe point to observe cancellation.
		if err := ctx.Err(); err != nil {
			return l.finish(result, st, OutcomeFailed, FailureCancelled, err)
		}
		if st.StepCount >= st.MaxSteps {
			return l.finish(result, st, OutcomeExhausted, "", nil)
		}

		step := st.StepCount + 1
		l.logger.Info("Step starting", zap.Int("step", step), zap.Int("max_steps", st.MaxSteps))

		// -- Perceiving --
		l.transition(StatePerceiving)
		screen, err := l.perceptor.Capture(ctx)
		if err != nil {
			// Fatal regardless of policy: planning without a screen is not
			// meaningful.
			l.logger.Error("Screen capture failed", zap.Error(err))
			return l.finish(result, st, OutcomeFailed, FailureCapture, err)
		}

		// -- Planning --
		l.transition(StatePlanning)
		raw, err := l.planner.Propose(ctx, screen, st.Description, st.Window(l.cfg.HistoryWindow))
		if err != nil {
			l.logger.Warn("Planner call failed", zap.Error(err))
			if !l.cfg.ContinueOnError {
				return l.finish(result, st, OutcomeFailed, FailurePlanner, err)
			}
			l.recordFailure(st, step, FailurePlanner, err)
			l.settle(ctx)
			continue
		}

		// -- Parsing (never fails; worst case is a Wait fallback) --
		l.transition(StateParsing)
		dec := l.parser.Parse(raw, screen)
		if dec.Degraded != "" {
			l.logger.Warn("Planner response degraded to wait fallback",
				zap.String("reason", string(dec.Degraded)),
			)
		}

		if dec.Intent.Type == action.TypeTaskComplete {
			st.History = append(st.History, HistoryEntry{
				StepIndex: step,
				Intent:    dec.Intent,
				Reasoning: dec.Reasoning,
				Success:   true,
				Timestamp: time.Now(),
			})
			st.StepCount = step
			st.Completed = true
			result.Completion = dec.Intent.Completion
			return l.finish(result, st, OutcomeCompleted, "", nil)
		}

		// -- Validating --
		l.transition(StateValidating)
		cmd, err := l.validator.Validate(dec.Intent, screen.ScreenSize)
		if err != nil {
			l.logger.Warn("Intent failed validation", zap.Error(err))
			if !l.cfg.ContinueOnError {
				return l.finish(result, st, OutcomeFailed, FailureValidation, err)
			}
			l.recordFailure(st, step, FailureValidation, err)
			l.settle(ctx)
			continue
		}

		// -- Executing (no retry here; failures are recorded and the loop
		// always advances) --
		l.transition(StateExecuting)
		execErr := l.executor.Execute(ctx, cmd)

		entry := HistoryEntry{
			StepIndex: step,
			Intent:    dec.Intent,
			Command:   cmd,
			Reasoning: dec.Reasoning,
			Degraded:  dec.Degraded,
			Success:   execErr == nil,
			Timestamp: time.Now(),
		}
		if execErr != nil {
			entry.Failure = FailureExecution
			entry.Error = execErr.Error()
			l.logger.Warn("Command execution failed",
				zap.String("command", cmd.String()),
				zap.Error(execErr),
			)
		} else {
			l.logger.Info("Command executed",
				zap.Int("step", step),
				zap.String("command", cmd.String()),
				zap.String("reasoning", dec.Reasoning),
			)
		}
		st.History = append(st.History, entry)
		st.StepCount = step

		l.settle(ctx)
	}
}

// recordFailure appends a failed step that never reached execution and
// advances the step counter so failures still consume the budget.
func (l *ControlLoop) recordFailure(st *TaskState, step int, class FailureClass, err error) {
	st.History = append(st.History, HistoryEntry{
		StepIndex: step,
		Success:   false,
		Failure:   class,
		Error:     err.Error(),
		Timestamp: time.Now(),
	})
	st.StepCount = step
}

// settle applies the fixed inter-step delay that lets the UI catch up before
// the next capture. It returns early on cancellation; the loop's step
// boundary check handles the rest.
func (l *ControlLoop) settle(ctx context.Context) {
	if l.cfg.StepDelay <= 0 {
		return
	}
	t := time.NewTimer(l.cfg.StepDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (l *ControlLoop) transition(to LoopState) {
	l.logger.Debug("State transition", zap.String("from", string(l.state)), zap.String("to", string(to)))
	l.state = to
}

func (l *ControlLoop) finish(result *TaskResult, st *TaskState, outcome Outcome, failure FailureClass, err error) *TaskResult {
	switch outcome {
	case OutcomeCompleted:
		l.transition(StateCompleted)
	case OutcomeExhausted:
		l.transition(StateExhausted)
	default:
		l.transition(StateFailed)
	}

	result.Outcome = outcome
	result.Failure = failure
	result.Err = err
	result.Steps = st.StepCount
	result.History = st.History
	result.EndTime = time.Now()

	fields := []zap.Field{
		zap.String("task_id", st.TaskID),
		zap.String("outcome", string(outcome)),
		zap.Int("steps", st.StepCount),
	}
	if failure != "" {
		fields = append(fields, zap.String("failure", string(failure)))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	l.logger.Info("Task finished", fields...)
	return result
}
