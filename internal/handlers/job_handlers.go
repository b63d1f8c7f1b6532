package handlers

import (
	"context"

	"invoicehub/internal/common"

	"github.com/labstack/echo/v4"
)

// ExpirySweeper runs one payment link expiry pass on demand.
type ExpirySweeper interface {
	SweepExpiredLinks(ctx context.Context) (int, error)
}

type JobHandlers struct {
	sweeper ExpirySweeper
}

func NewJobHandlers(sweeper ExpirySweeper) *JobHandlers {
	return &JobHandlers{sweeper: sweeper}
}

// RunExpirySweep handles POST /jobs/expiry-sweep
func (h *JobHandlers) RunExpirySweep(c echo.Context) error {
	expired, err := h.sweeper.SweepExpiredLinks(c.Request().Context())
	if err != nil {
		return common.Internal("Expiry sweep failed", err)
	}
	return common.SendSuccess(c, map[string]int{"expired": expired}, "Expiry sweep completed")
}
