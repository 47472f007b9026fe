package api

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"

	models "github.com/wafa-bouzouita/water-tracker/internal/domain/models"
	"github.com/wafa-bouzouita/water-tracker/internal/services/drought"
	"github.com/wafa-bouzouita/water-tracker/internal/usecase"
	xhttp "github.com/wafa-bouzouita/water-tracker/pkg/http"
	xlogger "github.com/wafa-bouzouita/water-tracker/pkg/logger"
	"github.com/wafa-bouzouita/water-tracker/pkg/queue"
	"github.com/wafa-bouzouita/water-tracker/pkg/util"
)

// DroughtEchoHandler exposes drought, trend and ingest operations over HTTP.
type DroughtEchoHandler struct {
	logger    *xlogger.Logger
	droughts  *usecase.DroughtService
	chronicle *usecase.ChronicleService
	ingester  *usecase.Ingester
	queue     queue.QueueService
}

func NewDroughtEchoHandler(
	logger *xlogger.Logger,
	droughts *usecase.DroughtService,
	chronicle *usecase.ChronicleService,
	ingester *usecase.Ingester,
	q queue.QueueService,
) *DroughtEchoHandler {
	return &DroughtEchoHandler{
		logger:    logger,
		droughts:  droughts,
		chronicle: chronicle,
		ingester:  ingester,
		queue:     q,
	}
}

func (h *DroughtEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/drought/counts", h.Counts)
	g.GET("/drought/station", h.Station)
	g.GET("/drought/means", h.MonthlyMeans)
	g.GET("/drought/levels", h.Levels)
	g.GET("/trend/chronicle", h.Chronicle)
	g.POST("/ingest/run", h.RunIngest)
	g.POST("/drought/recompute", h.Recompute)
}

// Counts returns per-bucket station counts by dryness level.
func (h *DroughtEchoHandler) Counts(c echo.Context) error {
	req := &models.CountsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	from, to, err := parseRange(req.From, req.To)
	if err != nil {
		return xhttp.BadRequestResponse(c, err.Error())
	}

	counts, err := h.droughts.Counts(c.Request().Context(),
		models.Indicator(req.Indicator), drought.BucketKind(req.GroupBy), from, to)
	if err != nil {
		h.logger.Error("counts usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, counts)
}

// Station returns the standardized index series of one station.
func (h *DroughtEchoHandler) Station(c echo.Context) error {
	req := &models.StationIndexRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	idx, err := h.droughts.StationIndex(c.Request().Context(),
		models.Indicator(req.Indicator), req.Station)
	if err != nil {
		h.logger.Error("station index usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, idx)
}

// MonthlyMeans returns the per-month mean standardized index of the trailing
// year for one station.
func (h *DroughtEchoHandler) MonthlyMeans(c echo.Context) error {
	req := &models.StationIndexRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	means, err := h.droughts.MonthlyAverages(c.Request().Context(),
		models.Indicator(req.Indicator), req.Station)
	if err != nil {
		h.logger.Error("monthly means usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, means)
}

// Levels returns the dryness level names in severity order.
func (h *DroughtEchoHandler) Levels(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.droughts.Levels())
}

// Chronicle returns the trend comparison for one station.
func (h *DroughtEchoHandler) Chronicle(c echo.Context) error {
	req := &models.ChronicleRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.chronicle.Chronicle(c.Request().Context(),
		models.Indicator(req.Indicator), req.Station)
	if err != nil {
		h.logger.Error("chronicle usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

// RunIngest triggers an ingest run for an indicator. Async runs detach from
// the request.
func (h *DroughtEchoHandler) RunIngest(c echo.Context) error {
	req := &models.IngestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	indicator := models.Indicator(req.Indicator)
	if req.Async {
		// Detached from the request lifetime on purpose.
		go func() {
			if err := h.ingester.Run(context.Background(), indicator); err != nil {
				h.logger.Error("ingest run failed", xlogger.Error(err))
			}
		}()
		return xhttp.SuccessResponse(c, map[string]string{"status": "started"})
	}

	if err := h.ingester.Run(c.Request().Context(), indicator); err != nil {
		h.logger.Error("ingest run failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "done"})
}

// Recompute enqueues an index recomputation for every known station of an
// indicator.
func (h *DroughtEchoHandler) Recompute(c echo.Context) error {
	req := &models.IngestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	ids, err := h.droughts.StationIDsFor(c.Request().Context(), models.Indicator(req.Indicator))
	if err != nil {
		h.logger.Error("recompute station list error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	enqueued := 0
	for _, id := range ids {
		payload := usecase.RecomputePayload{Indicator: req.Indicator, Station: id}
		if err := h.queue.PublishMessage(c.Request().Context(), usecase.RecomputeMessageType, payload); err != nil {
			h.logger.Error("recompute publish failed",
				xlogger.String("station", id),
				xlogger.Error(err))
			continue
		}
		enqueued++
	}
	return xhttp.SuccessResponse(c, map[string]int{"enqueued": enqueued})
}

func parseRange(from, to string) (time.Time, time.Time, error) {
	f := time.Time{}
	t := time.Now().UTC()
	if from != "" {
		parsed, ok := util.ParseDate(from)
		if !ok {
			return f, t, fmt.Errorf("invalid from date %q", from)
		}
		f = parsed
	}
	if to != "" {
		parsed, ok := util.ParseDate(to)
		if !ok {
			return f, t, fmt.Errorf("invalid to date %q", to)
		}
		t = parsed
	}
	return f, t, nil
}
