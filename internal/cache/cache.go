// Package cache holds the two read models over the lead collection: the
// paginated table buffer and the per-status kanban board. Both fetch
// through the api client and post-filter for "view own" visibility; neither
// persists anything.
package cache

import (
	"context"

	"leadboard/internal/api"
	"leadboard/internal/models"
	"leadboard/internal/pipeline"
	"leadboard/internal/session"
)

// Backend is the slice of the api client the read models need.
type Backend interface {
	Leads(ctx context.Context, page, limit int, search string) (*api.ListResponse, error)
	LeadsByStatus(ctx context.Context, status pipeline.Status, page, limit int, search string) (*api.ListResponse, error)
}

// filterVisible applies the session's account-visibility mode after fetch.
// The server is not asked to filter, so reported totals may overcount what
// is shown; that is accepted.
func filterVisible(leads []models.Lead, sess *session.Session) []models.Lead {
	if sess.AccountVisibilityMode() != models.ViewModeOwn {
		return leads
	}
	out := leads[:0:0]
	for _, l := range leads {
		if l.OwnerID() == sess.CurrentStaffID() {
			out = append(out, l)
		}
	}
	return out
}
