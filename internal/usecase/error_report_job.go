package usecase

import (
	"context"
	"fmt"

	drepo "github.com/wafa-bouzouita/water-tracker/internal/domain/repository"
	"github.com/wafa-bouzouita/water-tracker/pkg/logger"
	"github.com/wafa-bouzouita/water-tracker/pkg/queue"
)

// ErrorReportMessageType is the queue message type carrying aggregated
// error logs flushed by the log collector.
const ErrorReportMessageType = "error_report"

// ErrorReportJob consumes aggregated error batches and turns them into
// error metrics plus a compact summary line.
type ErrorReportJob struct {
	metrics drepo.Metrics
	log     *logger.Logger
}

// NewErrorReportJob creates the queue job.
func NewErrorReportJob(m drepo.Metrics, log *logger.Logger) *ErrorReportJob {
	return &ErrorReportJob{metrics: m, log: log}
}

func (j *ErrorReportJob) Name() string { return "error-report" }

func (j *ErrorReportJob) Type() string { return ErrorReportMessageType }

func (j *ErrorReportJob) Handle(ctx context.Context, payload interface{}) error {
	entries, err := queue.ParsePayload[[]logger.AggregatedLogEntry](payload)
	if err != nil {
		return fmt.Errorf("error report payload: %w", err)
	}

	total := 0
	for _, e := range *entries {
		j.metrics.RecordError(e.Level)
		total += e.Count
	}
	j.log.Info("error report processed",
		logger.Int("unique", len(*entries)),
		logger.Int("total", total))
	return nil
}
