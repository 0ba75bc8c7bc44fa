package services

import (
	"context"
	"fmt"

	"monexel/internal/api"
	"monexel/internal/core"
	"monexel/internal/log"
)

type Dashboard struct {
	client *api.Client
	logger *log.Logger
}

func NewDashboard(c *api.Client, logger *log.Logger) *Dashboard {
	if logger == nil {
		logger = log.Discard()
	}
	return &Dashboard{client: c, logger: logger.WithComponent(log.ComponentDashboard)}
}

// Summary never fails: any error is logged and the zero summary returned,
// so the dashboard is never blocked on it.
func (s *Dashboard) Summary(ctx context.Context, user core.UserID, rng core.DateRange) core.DashboardSummary {
	path := fmt.Sprintf("/api/dashboard/getDashboardSummary/%d", user)
	if q := rng.Query(); len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out core.DashboardSummary
	if err := s.client.Get(ctx, path, &out); err != nil {
		fields := log.NewFields().
			WithOperation(log.OpRead).
			WithUser(int64(user)).
			WithRange(rng.Start.String(), rng.End.String()).
			WithError(err)
		s.logger.WarnContext(ctx, "Recoverable summary error, showing zero summary", fields.ToSlice()...)
		return core.DashboardSummary{}
	}
	return out
}
