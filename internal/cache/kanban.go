package cache

import (
	"context"
	"sync"

	"leadboard/internal/models"
	"leadboard/internal/pipeline"
	"leadboard/internal/session"
)

// Column is one kanban bucket: the accumulated, server-ordered prefix of
// leads in a single status, plus its pagination cursor.
type Column struct {
	Status       pipeline.Status
	Leads        []models.Lead
	TotalRecords int

	page       int
	totalPages int
	loading    bool
	hasMore    bool
}

// HasMore reports whether the server has pages beyond what is accumulated.
func (c *Column) HasMore() bool { return c.hasMore }

// Board owns one Column per allowed status. Columns page independently; a
// column already loading ignores further load triggers until its fetch
// settles.
type Board struct {
	backend  Backend
	sess     *session.Session
	pageSize int

	mu      sync.Mutex
	columns map[pipeline.Status]*Column
	order   []pipeline.Status
	search  string
}

func NewBoard(backend Backend, sess *session.Session, pageSize int) *Board {
	return &Board{
		backend:  backend,
		sess:     sess,
		pageSize: pageSize,
		columns:  make(map[pipeline.Status]*Column),
	}
}

// Initialize builds one column per allowed status and loads page 1 of
// each. Does nothing until the session's permissions have resolved.
func (b *Board) Initialize(ctx context.Context) error {
	if !b.sess.Ready() {
		return nil
	}
	b.mu.Lock()
	b.order = b.sess.AllowedStatuses()
	b.columns = make(map[pipeline.Status]*Column, len(b.order))
	for _, st := range b.order {
		b.columns[st] = &Column{Status: st, hasMore: true}
	}
	b.mu.Unlock()

	for _, st := range b.order {
		if err := b.LoadMore(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

// SetSearch changes the search term and clears all columns; callers
// re-Initialize afterwards.
func (b *Board) SetSearch(search string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.search = search
	b.columns = make(map[pipeline.Status]*Column)
	b.order = nil
}

// LoadMore fetches the next page for one column and appends it. Triggers
// while the column is loading, exhausted, or unknown are ignored.
func (b *Board) LoadMore(ctx context.Context, status pipeline.Status) error {
	b.mu.Lock()
	col, ok := b.columns[status]
	if !ok || col.loading || !col.hasMore {
		b.mu.Unlock()
		return nil
	}
	col.loading = true
	page := col.page + 1
	search := b.search
	b.mu.Unlock()

	resp, err := b.backend.LeadsByStatus(ctx, status, page, b.pageSize, search)

	b.mu.Lock()
	defer b.mu.Unlock()
	col.loading = false
	if err != nil {
		return err
	}
	col.page = page
	col.totalPages = resp.Pagination.TotalPages
	col.TotalRecords = resp.Pagination.TotalRecords
	col.hasMore = page < resp.Pagination.TotalPages
	col.Leads = append(col.Leads, filterVisible(resp.Data, b.sess)...)
	return nil
}

// Reset drops every column; the next Initialize rebuilds from the
// session's current permissions.
func (b *Board) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.columns = make(map[pipeline.Status]*Column)
	b.order = nil
}

// Column returns the bucket for one status, or nil when the status is not
// visible to this session.
func (b *Board) Column(status pipeline.Status) *Column {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.columns[status]
}

// Columns returns the visible buckets in pipeline order.
func (b *Board) Columns() []*Column {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Column, 0, len(b.order))
	for _, st := range b.order {
		out = append(out, b.columns[st])
	}
	return out
}

// ApplyTransition reconciles the board after a successful status write:
// the lead leaves its old bucket, enters the front of the new one, and the
// displayed totals move by one on each side. Buckets the session cannot
// see are simply skipped.
func (b *Board) ApplyTransition(lead *models.Lead, from, to pipeline.Status) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var moved *models.Lead
	if src, ok := b.columns[from]; ok {
		for i := range src.Leads {
			if src.Leads[i].ID == lead.ID {
				l := src.Leads[i]
				moved = &l
				src.Leads = append(src.Leads[:i], src.Leads[i+1:]...)
				break
			}
		}
		if src.TotalRecords > 0 {
			src.TotalRecords--
		}
	}
	if dst, ok := b.columns[to]; ok {
		l := *lead
		if moved != nil {
			l = *moved
		}
		if pipeline.Index(to) > pipeline.Index(l.HighWaterMark()) {
			l.MaxStatusReached = to
		}
		l.LeadStatus = to
		dst.Leads = append([]models.Lead{l}, dst.Leads...)
		dst.TotalRecords++
	}
}

// FindLead looks a lead up across all loaded buckets.
func (b *Board) FindLead(id string) *models.Lead {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, col := range b.columns {
		for i := range col.Leads {
			if col.Leads[i].ID == id {
				l := col.Leads[i]
				return &l
			}
		}
	}
	return nil
}
