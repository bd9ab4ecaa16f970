// Package engine validates and executes lead status transitions. It is the
// single write path for the pipeline: both the table's status menu and the
// kanban drag/drop feed into it, and the read models are only mutated here
// after the backend confirms a write.
package engine

import (
	"context"
	"errors"
	"log"

	"leadboard/internal/models"
	"leadboard/internal/pipeline"
)

// Validation rejections. These are detected locally before any network
// call; their text is shown to the user as-is.
var (
	ErrBackwardMove  = errors.New("Cannot move lead backwards in status")
	ErrItemsNotDone  = errors.New("All items must be marked as done before dispatch")
	ErrLeadLost      = errors.New("lead is lost and can no longer be moved")
	ErrUnknownStatus = errors.New("unknown lead status")

	// ErrConfirmRequired is returned when marking an item done without the
	// caller having confirmed. Marking an item pending back never needs
	// confirmation.
	ErrConfirmRequired = errors.New("confirm before marking item done")
)

// Backend is the slice of the api client the engine writes through.
type Backend interface {
	Lead(ctx context.Context, id string) (*models.Lead, error)
	UpdateStatus(ctx context.Context, id string, to pipeline.Status) error
	AddFollowUp(ctx context.Context, id string, fu models.FollowUp) error
	ToggleItem(ctx context.Context, id, itemID string) (*models.Lead, error)
}

// Views receives the reconciliation callback after a successful write.
// Implemented by the board adapter; nil when no views are attached.
type Views interface {
	ApplyTransition(lead *models.Lead, from, to pipeline.Status)
}

// DocumentGenerator emits the proforma invoice when a lead reaches PI.
type DocumentGenerator interface {
	GenerateProforma(lead *models.Lead) (string, error)
}

// Notifier is told about committed pipeline events. Failures there must
// never fail the transition.
type Notifier interface {
	LeadStatusChanged(lead *models.Lead, from, to pipeline.Status)
	FollowUpScheduled(lead *models.Lead, fu models.FollowUp)
}

type Engine struct {
	backend  Backend
	views    Views
	docs     DocumentGenerator
	notifier Notifier
}

func New(backend Backend) *Engine {
	return &Engine{backend: backend}
}

func (e *Engine) AttachViews(v Views) { e.views = v }

func (e *Engine) SetDocumentGenerator(d DocumentGenerator) { e.docs = d }

func (e *Engine) SetNotifier(n Notifier) { e.notifier = n }

// Action is what a validated transition still needs from the user before
// it can be committed.
type Action int

const (
	// ActionNone: source and target are the same status; nothing happens,
	// no request is issued.
	ActionNone Action = iota
	// ActionDirect: no user input needed, Commit writes immediately.
	ActionDirect
	// ActionCaptureFollowUp: a follow-up record must be captured first;
	// Commit posts it and then writes the status.
	ActionCaptureFollowUp
	// ActionConfirmLost: the irreversibility confirmation must be shown.
	ActionConfirmLost
	// ActionRedirectConvert: the status change is deferred to the convert
	// workflow; the engine issues no write.
	ActionRedirectConvert
)

// Plan is a validated transition awaiting commit.
type Plan struct {
	Lead   *models.Lead
	From   pipeline.Status
	To     pipeline.Status
	Action Action
}

// Input carries what the user supplied for the plan's action.
type Input struct {
	FollowUp      *models.FollowUp // required by ActionCaptureFollowUp
	ConfirmedLost bool             // required by ActionConfirmLost
}

// PlanTransition runs the local validation order: no-op guard, absorbing
// Lost, vocabulary check, monotonicity against the high-water mark, then
// the status-specific precondition that decides which dialog (if any) the
// caller must run before Commit.
func (e *Engine) PlanTransition(lead *models.Lead, to pipeline.Status) (*Plan, error) {
	from := lead.LeadStatus
	if to == from {
		return &Plan{Lead: lead, From: from, To: to, Action: ActionNone}, nil
	}
	if pipeline.IsLost(from) {
		return nil, ErrLeadLost
	}
	if !pipeline.Known(to) || !pipeline.Known(from) {
		return nil, ErrUnknownStatus
	}
	if pipeline.Backward(lead.HighWaterMark(), to) {
		return nil, ErrBackwardMove
	}

	plan := &Plan{Lead: lead, From: from, To: to, Action: ActionDirect}
	switch {
	case to == pipeline.StatusLost:
		plan.Action = ActionConfirmLost
	case to == pipeline.StatusFollowUp:
		plan.Action = ActionCaptureFollowUp
	case from == pipeline.StatusFollowUp && to == pipeline.StatusOrderConfirmation:
		plan.Action = ActionRedirectConvert
	}
	return plan, nil
}

// Commit finishes a planned transition. Cancelled dialogs (missing
// follow-up, unconfirmed Lost) make it a silent no-op; the dispatch gate
// re-fetches the lead and rejects when any item is still pending. Local
// state is only touched after the backend accepted the write, so a failure
// leaves everything as it was.
func (e *Engine) Commit(ctx context.Context, plan *Plan, in Input) error {
	switch plan.Action {
	case ActionNone, ActionRedirectConvert:
		return nil
	case ActionConfirmLost:
		if !in.ConfirmedLost {
			return nil
		}
	case ActionCaptureFollowUp:
		if in.FollowUp == nil {
			return nil
		}
	}

	lead := plan.Lead
	if plan.To == pipeline.StatusDispatch {
		// Local item state may be stale; only the authoritative record
		// decides whether the order is complete.
		fresh, err := e.backend.Lead(ctx, lead.ID)
		if err != nil {
			return err
		}
		if !fresh.AllItemsDone() {
			return ErrItemsNotDone
		}
		lead.Items = fresh.Items
	}

	if plan.Action == ActionCaptureFollowUp {
		if err := e.backend.AddFollowUp(ctx, lead.ID, *in.FollowUp); err != nil {
			return err
		}
		lead.FollowUps = append(lead.FollowUps, *in.FollowUp)
		if e.notifier != nil {
			e.notifier.FollowUpScheduled(lead, *in.FollowUp)
		}
	}

	if err := e.backend.UpdateStatus(ctx, lead.ID, plan.To); err != nil {
		return err
	}

	if pipeline.Index(plan.To) > pipeline.Index(lead.HighWaterMark()) {
		lead.MaxStatusReached = plan.To
	}
	lead.LeadStatus = plan.To

	if e.views != nil {
		e.views.ApplyTransition(lead, plan.From, plan.To)
	}
	if plan.To == pipeline.StatusPI && e.docs != nil {
		if path, err := e.docs.GenerateProforma(lead); err != nil {
			log.Printf("proforma for lead %s: %v", lead.ID, err)
		} else {
			log.Printf("proforma for lead %s written to %s", lead.ID, path)
		}
	}
	if e.notifier != nil {
		e.notifier.LeadStatusChanged(lead, plan.From, plan.To)
	}
	return nil
}

// AddFollowUp appends a follow-up outside of any pending transition (the
// dialog is also reachable standalone for leads already in Follow Up).
// The lead's status is not touched.
func (e *Engine) AddFollowUp(ctx context.Context, lead *models.Lead, fu models.FollowUp) error {
	if err := e.backend.AddFollowUp(ctx, lead.ID, fu); err != nil {
		return err
	}
	lead.FollowUps = append(lead.FollowUps, fu)
	if e.notifier != nil {
		e.notifier.FollowUpScheduled(lead, fu)
	}
	return nil
}

// ToggleItem flips one order item's done flag. Marking done is a
// commitment and must arrive confirmed; undoing back to pending is
// immediate. On success the lead's item list is refreshed from the
// backend's response.
func (e *Engine) ToggleItem(ctx context.Context, lead *models.Lead, itemID string, confirmed bool) error {
	var item *models.OrderItem
	for i := range lead.Items {
		if lead.Items[i].ID == itemID {
			item = &lead.Items[i]
			break
		}
	}
	if item == nil {
		return errors.New("item not found")
	}
	if !item.IsDone && !confirmed {
		return ErrConfirmRequired
	}

	fresh, err := e.backend.ToggleItem(ctx, lead.ID, itemID)
	if err != nil {
		return err
	}
	if fresh != nil {
		lead.Items = fresh.Items
	} else {
		item.IsDone = !item.IsDone
	}
	return nil
}
