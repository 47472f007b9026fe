package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/wafa-bouzouita/water-tracker/internal/domain/models"
	"github.com/wafa-bouzouita/water-tracker/internal/services/drought"
	"github.com/wafa-bouzouita/water-tracker/pkg/logger"
	"github.com/wafa-bouzouita/water-tracker/pkg/queue"
)

// RecomputeMessageType is the queue message type carrying recompute requests.
const RecomputeMessageType = "recompute_indicator"

// RecomputePayload asks for one station's index to be recomputed, typically
// after fresh observations landed.
type RecomputePayload struct {
	Indicator string `json:"indicator"`
	Station   string `json:"station"`
}

// RecomputeJob consumes recompute requests off the queue and runs the
// drought pipeline for the station.
type RecomputeJob struct {
	svc *DroughtService
	log *logger.Logger
}

// NewRecomputeJob creates the queue job.
func NewRecomputeJob(svc *DroughtService, log *logger.Logger) *RecomputeJob {
	return &RecomputeJob{svc: svc, log: log}
}

func (j *RecomputeJob) Name() string { return "drought-recompute" }

func (j *RecomputeJob) Type() string { return RecomputeMessageType }

func (j *RecomputeJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[RecomputePayload](payload)
	if err != nil {
		return fmt.Errorf("recompute payload: %w", err)
	}
	if !models.IsValidIndicator(p.Indicator) {
		return fmt.Errorf("recompute: unknown indicator %q", p.Indicator)
	}

	_, err = j.svc.ComputeStation(ctx, models.Indicator(p.Indicator), p.Station)
	if errors.Is(err, drought.ErrInsufficientHistory) {
		// Gated stations are expected, not retryable failures.
		j.log.Debug("recompute: station gated",
			logger.String("station", p.Station),
			logger.Error(err))
		return nil
	}
	return err
}
