package cache

import (
	"context"
	"sync"

	"leadboard/internal/api"
	"leadboard/internal/models"
	"leadboard/internal/pipeline"
	"leadboard/internal/session"
)

// TableBuffer is the table view's read model. Each Fetch replaces the
// buffer wholesale; there is no accumulation across pages.
type TableBuffer struct {
	backend  Backend
	sess     *session.Session
	pageSize int

	mu           sync.Mutex
	leads        []models.Lead
	page         int
	totalPages   int
	totalRecords int
	search       string
	statusFilter pipeline.Status // "" means no filter
	loading      bool
}

func NewTableBuffer(backend Backend, sess *session.Session, pageSize int) *TableBuffer {
	return &TableBuffer{backend: backend, sess: sess, pageSize: pageSize}
}

// Fetch loads one page, replacing the current contents. It is a no-op
// until the session's permissions have resolved, and while another fetch
// is in flight.
func (t *TableBuffer) Fetch(ctx context.Context, page int, search string, statusFilter pipeline.Status) error {
	if !t.sess.Ready() {
		return nil
	}
	t.mu.Lock()
	if t.loading {
		t.mu.Unlock()
		return nil
	}
	t.loading = true
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		t.loading = false
		t.mu.Unlock()
	}()

	if page < 1 {
		page = 1
	}
	var (
		resp *api.ListResponse
		err  error
	)
	if statusFilter != "" {
		resp, err = t.backend.LeadsByStatus(ctx, statusFilter, page, t.pageSize, search)
	} else {
		resp, err = t.backend.Leads(ctx, page, t.pageSize, search)
	}
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.leads = filterVisible(resp.Data, t.sess)
	t.page = page
	t.search = search
	t.statusFilter = statusFilter
	t.totalPages = resp.Pagination.TotalPages
	t.totalRecords = resp.Pagination.TotalRecords
	return nil
}

// Refetch reloads the current page with the current search and filter.
func (t *TableBuffer) Refetch(ctx context.Context) error {
	t.mu.Lock()
	page, search, filter := t.page, t.search, t.statusFilter
	t.mu.Unlock()
	if page == 0 {
		page = 1
	}
	return t.Fetch(ctx, page, search, filter)
}

// ApplyStatus mutates the loaded row for leadID in place after a
// successful transition. Rows are never re-fetched here; the next Fetch
// reconciles with the server.
func (t *TableBuffer) ApplyStatus(leadID string, to pipeline.Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.leads {
		if t.leads[i].ID == leadID {
			// compare against the mark before the status moves, or the
			// fallback to LeadStatus would compare the target to itself
			if pipeline.Index(to) > pipeline.Index(t.leads[i].HighWaterMark()) {
				t.leads[i].MaxStatusReached = to
			}
			t.leads[i].LeadStatus = to
			return
		}
	}
}

func (t *TableBuffer) Leads() []models.Lead {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.Lead, len(t.leads))
	copy(out, t.leads)
	return out
}

func (t *TableBuffer) Page() int         { t.mu.Lock(); defer t.mu.Unlock(); return t.page }
func (t *TableBuffer) TotalPages() int   { t.mu.Lock(); defer t.mu.Unlock(); return t.totalPages }
func (t *TableBuffer) TotalRecords() int { t.mu.Lock(); defer t.mu.Unlock(); return t.totalRecords }

func (t *TableBuffer) Search() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.search
}

func (t *TableBuffer) StatusFilter() pipeline.Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.statusFilter
}
