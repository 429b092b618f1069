// File: internal/planner/planner.go
package planner

import (
	"context"

	"go.uber.org/zap"

	"github.com/droidpilot/droidpilot-cli/internal/agent"
	"github.com/droidpilot/droidpilot-cli/internal/config"
	"github.com/droidpilot/droidpilot-cli/internal/perception"
)

// Planner implements the agent.Planner contract over the Gemini client. It
// is stateless between calls; everything the model needs is rebuilt from the
// snapshot, task, and history window each step.
type Planner struct {
	client *GeminiClient
	cfg    config.PlannerConfig
	system string
	logger *zap.Logger
}

var _ agent.Planner = (*Planner)(nil)

// New creates a planner from configuration.
func New(cfg config.PlannerConfig, logger *zap.Logger) (*Planner, error) {
	client, err := NewGeminiClient(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Planner{
		client: client,
		cfg:    cfg,
		system: buildSystemPrompt(),
		logger: logger.Named("planner"),
	}, nil
}

// Propose asks the model for the next action and returns its raw text. The
// response is deliberately unparsed here; interpretation belongs to the
// response parser.
func (p *Planner) Propose(ctx context.Context, state *perception.ScreenState, task string, history []agent.HistoryEntry) (string, error) {
	userPrompt := buildUserPrompt(state, task, history)

	var screenshot []byte
	if p.cfg.SendScreenshot && state.Screenshot != nil {
		screenshot = state.Screenshot.PlannerPNG
	}

	raw, err := p.client.Generate(ctx, p.system, userPrompt, screenshot)
	if err != nil {
		return "", err
	}
	p.logger.Debug("Planner proposed", zap.Int("response_bytes", len(raw)))
	return raw, nil
}
