package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"leadboard/internal/api"
	"leadboard/internal/models"
	"leadboard/internal/pipeline"
)

// fakeBackend serves canned leads with real pagination math and records
// every call it gets.
type fakeBackend struct {
	mu    sync.Mutex
	byID  map[string]models.Lead
	all   []models.Lead
	calls []string
	err   error
}

func newFakeBackend(leads ...models.Lead) *fakeBackend {
	fb := &fakeBackend{byID: make(map[string]models.Lead)}
	for _, l := range leads {
		fb.all = append(fb.all, l)
		fb.byID[l.ID] = l
	}
	return fb
}

func (f *fakeBackend) record(format string, args ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeBackend) callCount(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func paginate(leads []models.Lead, page, limit int) (*api.ListResponse, error) {
	total := len(leads)
	totalPages := (total + limit - 1) / limit
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return &api.ListResponse{
		Data:       append([]models.Lead(nil), leads[start:end]...),
		Pagination: api.Pagination{TotalPages: totalPages, TotalRecords: total},
	}, nil
}

func (f *fakeBackend) Leads(_ context.Context, page, limit int, search string) (*api.ListResponse, error) {
	f.record("leads page=%d search=%q", page, search)
	if f.err != nil {
		return nil, f.err
	}
	return paginate(f.all, page, limit)
}

func (f *fakeBackend) LeadsByStatus(_ context.Context, status pipeline.Status, page, limit int, search string) (*api.ListResponse, error) {
	f.record("status=%s page=%d", status, page)
	if f.err != nil {
		return nil, f.err
	}
	var matched []models.Lead
	for _, l := range f.all {
		if l.LeadStatus == status {
			matched = append(matched, l)
		}
	}
	return paginate(matched, page, limit)
}

func lead(id string, status pipeline.Status, owner string) models.Lead {
	return models.Lead{
		ID:         id,
		LeadStatus: status,
		AccountMaster: &models.AccountMaster{
			CompanyName:     "Co " + id,
			AssignmentOwner: owner,
		},
	}
}
