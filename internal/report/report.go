// File: internal/report/report.go
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/droidpilot/droidpilot-cli/internal/agent"
	"github.com/droidpilot/droidpilot-cli/internal/config"
)

// Writer persists one markdown report per finished task: the task
// description, every step with its action, reasoning and result, and the
// final status.
type Writer struct {
	cfg    config.ReportConfig
	logger *zap.Logger
}

// NewWriter creates a report writer.
func NewWriter(cfg config.ReportConfig, logger *zap.Logger) *Writer {
	return &Writer{cfg: cfg, logger: logger.Named("report")}
}

// Write renders and persists the report, returning the file path.
func (w *Writer) Write(result *agent.TaskResult) (string, error) {
	if !w.cfg.Enabled {
		return "", nil
	}
	if err := os.MkdirAll(w.cfg.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	shortID := result.TaskID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}
	name := fmt.Sprintf("task_report_%s_%s.md", result.StartTime.Format("20060102_150405"), shortID)
	path := filepath.Join(w.cfg.Dir, name)

	if err := os.WriteFile(path, []byte(Render(result)), 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	w.logger.Info("Task report written", zap.String("path", path))
	return path, nil
}

// Render produces the markdown body for a task result.
func Render(result *agent.TaskResult) string {
	var b strings.Builder

	b.WriteString("# Task Execution Report\n\n")
	fmt.Fprintf(&b, "**Task**: %s\n\n", result.Description)
	fmt.Fprintf(&b, "**Task ID**: %s\n\n", result.TaskID)
	fmt.Fprintf(&b, "**Status**: %s\n\n", statusLine(result))
	fmt.Fprintf(&b, "**Steps**: %d\n\n", result.Steps)
	fmt.Fprintf(&b, "**Started**: %s\n\n", result.StartTime.Format(time.RFC3339))
	fmt.Fprintf(&b, "**Finished**: %s\n\n", result.EndTime.Format(time.RFC3339))

	b.WriteString("## Execution Steps\n\n")
	if len(result.History) == 0 {
		b.WriteString("No steps were executed.\n")
	}
	for _, entry := range result.History {
		fmt.Fprintf(&b, "### Step %d\n", entry.StepIndex)

		actionDesc := string(entry.Intent.Type)
		if entry.Command != nil {
			actionDesc = entry.Command.String()
		}
		fmt.Fprintf(&b, "- **Action**: %s\n", actionDesc)

		reasoning := entry.Reasoning
		if reasoning == "" {
			reasoning = "N/A"
		}
		fmt.Fprintf(&b, "- **Reasoning**: %s\n", reasoning)

		result := "success"
		if !entry.Success {
			result = fmt.Sprintf("failed (%s)", entry.Failure)
			if entry.Error != "" {
				result += ": " + entry.Error
			}
		}
		if entry.Degraded != "" {
			result += fmt.Sprintf(" [degraded: %s]", entry.Degraded)
		}
		fmt.Fprintf(&b, "- **Result**: %s\n\n", result)
	}

	return b.String()
}

func statusLine(result *agent.TaskResult) string {
	switch result.Outcome {
	case agent.OutcomeCompleted:
		s := "Completed"
		if result.Completion != "" {
			s += fmt.Sprintf(" (detected: %s)", result.Completion)
		}
		return s
	case agent.OutcomeExhausted:
		return "Exhausted (step budget reached)"
	default:
		s := "Failed"
		if result.Failure != "" {
			s += fmt.Sprintf(" (%s)", result.Failure)
		}
		if result.Err != nil {
			s += ": " + result.Err.Error()
		}
		return s
	}
}
