package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/DavidCuy/p2p-solution-sls-backend/internal/schema"
)

// ModelValidator checks the registered models against the database.
type ModelValidator interface {
	Validate(ctx context.Context) schema.Report
}

type modelResultJSON struct {
	Model   string `json:"model"`
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// RunValidateModels reports which models match their tables and fails when any does not.
func RunValidateModels(
	ctx context.Context,
	validator ModelValidator,
	logger *slog.Logger,
	out io.Writer,
	format string,
) error {
	report := validator.Validate(ctx)

	if format == "json" {
		results := make([]modelResultJSON, 0, len(report.Results))
		for _, result := range report.Results {
			results = append(results, modelResultJSON{Model: result.Name, OK: result.OK, Message: result.Message})
		}
		if err := writeJSON(out, map[string]any{"models": results}); err != nil {
			return err
		}
	} else {
		for _, result := range report.Results {
			status := "ok"
			if !result.OK {
				status = "failed"
			}
			_, _ = fmt.Fprintf(out, "%-20s %s\n", result.Name, status)
		}
	}

	logger.Info("model validation completed",
		slog.Int("ok", len(report.OK())),
		slog.Int("failed", len(report.Failed())),
	)

	return report.Err()
}
