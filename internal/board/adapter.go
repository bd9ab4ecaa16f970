// Package board glues the two read models to the transition engine. A
// drag/drop move is only an alternate input method: it lands in the same
// plan/commit path a status-menu change does, with identical validation.
package board

import (
	"leadboard/internal/cache"
	"leadboard/internal/engine"
	"leadboard/internal/models"
	"leadboard/internal/pipeline"
)

// Adapter owns the drag state and, as the engine's Views implementation,
// reconciles both read models after a successful write.
type Adapter struct {
	engine *engine.Engine
	board  *cache.Board
	table  *cache.TableBuffer

	carrying *models.Lead // lead picked up, nil when no drag in progress
	from     pipeline.Status
}

func NewAdapter(eng *engine.Engine, kanban *cache.Board, table *cache.TableBuffer) *Adapter {
	a := &Adapter{engine: eng, board: kanban, table: table}
	eng.AttachViews(a)
	return a
}

// BeginDrag captures the lead and its source status at drag start.
func (a *Adapter) BeginDrag(lead *models.Lead) {
	a.carrying = lead
	a.from = lead.LeadStatus
}

func (a *Adapter) CancelDrag() { a.carrying = nil }

// Carrying returns the lead currently picked up, or nil.
func (a *Adapter) Carrying() *models.Lead { return a.carrying }

// Drop resolves the target status and forwards to the engine. Dropping
// onto the source column plans as a no-op, same as the engine's own guard.
// The returned plan still needs Commit (possibly after a dialog); the drag
// state is cleared either way.
func (a *Adapter) Drop(to pipeline.Status) (*engine.Plan, error) {
	lead := a.carrying
	a.carrying = nil
	if lead == nil {
		return nil, nil
	}
	return a.engine.PlanTransition(lead, to)
}

// ApplyTransition implements engine.Views: move the lead between kanban
// buckets (old column −1, new column +1, record at the front) and mutate
// the table row in place.
func (a *Adapter) ApplyTransition(lead *models.Lead, from, to pipeline.Status) {
	if a.board != nil {
		a.board.ApplyTransition(lead, from, to)
	}
	if a.table != nil {
		a.table.ApplyStatus(lead.ID, to)
	}
}
