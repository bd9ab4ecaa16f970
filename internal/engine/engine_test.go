package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadboard/internal/models"
	"leadboard/internal/pipeline"
)

// fakeBackend scripts the engine's I/O and records every write.
type fakeBackend struct {
	fresh *models.Lead // served by Lead(), e.g. the dispatch re-check
	fail  error        // returned by every call when set

	statusWrites []pipeline.Status
	followUps    []models.FollowUp
	toggles      []string
	fetches      int
}

func (f *fakeBackend) Lead(_ context.Context, id string) (*models.Lead, error) {
	f.fetches++
	if f.fail != nil {
		return nil, f.fail
	}
	cp := *f.fresh
	return &cp, nil
}

func (f *fakeBackend) UpdateStatus(_ context.Context, id string, to pipeline.Status) error {
	if f.fail != nil {
		return f.fail
	}
	f.statusWrites = append(f.statusWrites, to)
	return nil
}

func (f *fakeBackend) AddFollowUp(_ context.Context, id string, fu models.FollowUp) error {
	if f.fail != nil {
		return f.fail
	}
	f.followUps = append(f.followUps, fu)
	return nil
}

func (f *fakeBackend) ToggleItem(_ context.Context, id, itemID string) (*models.Lead, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	f.toggles = append(f.toggles, itemID)
	if f.fresh == nil {
		return nil, nil
	}
	cp := *f.fresh
	return &cp, nil
}

type recordedMove struct {
	id       string
	from, to pipeline.Status
}

type fakeViews struct{ moves []recordedMove }

func (v *fakeViews) ApplyTransition(lead *models.Lead, from, to pipeline.Status) {
	v.moves = append(v.moves, recordedMove{id: lead.ID, from: from, to: to})
}

func testLead(status pipeline.Status) *models.Lead {
	return &models.Lead{ID: "L1", LeadStatus: status}
}

func TestPlanNoOp(t *testing.T) {
	fb := &fakeBackend{}
	e := New(fb)
	lead := testLead(pipeline.StatusPI)

	plan, err := e.PlanTransition(lead, pipeline.StatusPI)
	require.NoError(t, err)
	assert.Equal(t, ActionNone, plan.Action)

	require.NoError(t, e.Commit(context.Background(), plan, Input{}))
	assert.Empty(t, fb.statusWrites, "same-status request must never issue a write")
}

func TestPlanMonotonicity(t *testing.T) {
	tests := []struct {
		name    string
		status  pipeline.Status
		maxSeen pipeline.Status
		to      pipeline.Status
		wantErr error
		action  Action
	}{
		{"forward move", pipeline.StatusNewLead, "", pipeline.StatusQuotationGiven, nil, ActionDirect},
		{"backward rejected", pipeline.StatusQuotationGiven, "", pipeline.StatusNewLead, ErrBackwardMove, 0},
		{"backward vs high water", pipeline.StatusQuotationGiven, pipeline.StatusPI, pipeline.StatusOrderConfirmation, ErrBackwardMove, 0},
		{"forward beyond high water", pipeline.StatusQuotationGiven, pipeline.StatusPI, pipeline.StatusOrderExecution, nil, ActionDirect},
		{"lost always reachable", pipeline.StatusCompleted, pipeline.StatusCompleted, pipeline.StatusLost, nil, ActionConfirmLost},
		{"lost is absorbing", pipeline.StatusLost, "", pipeline.StatusNewLead, ErrLeadLost, 0},
		{"unknown target", pipeline.StatusNewLead, "", pipeline.Status("Recycled"), ErrUnknownStatus, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := &fakeBackend{}
			e := New(fb)
			lead := testLead(tt.status)
			lead.MaxStatusReached = tt.maxSeen

			plan, err := e.PlanTransition(lead, tt.to)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.status, lead.LeadStatus, "rejection must not touch the lead")
				assert.Empty(t, fb.statusWrites)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.action, plan.Action)
		})
	}
}

func TestPlanStatusPreconditions(t *testing.T) {
	e := New(&fakeBackend{})

	plan, err := e.PlanTransition(testLead(pipeline.StatusQuotationGiven), pipeline.StatusFollowUp)
	require.NoError(t, err)
	assert.Equal(t, ActionCaptureFollowUp, plan.Action)

	plan, err = e.PlanTransition(testLead(pipeline.StatusFollowUp), pipeline.StatusOrderConfirmation)
	require.NoError(t, err)
	assert.Equal(t, ActionRedirectConvert, plan.Action)

	// Order Confirmation from anywhere else is a plain write
	plan, err = e.PlanTransition(testLead(pipeline.StatusQuotationGiven), pipeline.StatusOrderConfirmation)
	require.NoError(t, err)
	assert.Equal(t, ActionDirect, plan.Action)
}

func TestCommitDirect(t *testing.T) {
	fb := &fakeBackend{}
	views := &fakeViews{}
	e := New(fb)
	e.AttachViews(views)
	lead := testLead(pipeline.StatusNewLead)

	plan, err := e.PlanTransition(lead, pipeline.StatusQuotationGiven)
	require.NoError(t, err)
	require.NoError(t, e.Commit(context.Background(), plan, Input{}))

	assert.Equal(t, []pipeline.Status{pipeline.StatusQuotationGiven}, fb.statusWrites)
	assert.Equal(t, pipeline.StatusQuotationGiven, lead.LeadStatus)
	assert.Equal(t, pipeline.StatusQuotationGiven, lead.MaxStatusReached)
	require.Len(t, views.moves, 1)
	assert.Equal(t, recordedMove{id: "L1", from: pipeline.StatusNewLead, to: pipeline.StatusQuotationGiven}, views.moves[0])
}

func TestCommitWriteFailureLeavesLeadUntouched(t *testing.T) {
	fb := &fakeBackend{fail: errors.New("boom")}
	views := &fakeViews{}
	e := New(fb)
	e.AttachViews(views)
	lead := testLead(pipeline.StatusNewLead)

	plan, err := e.PlanTransition(lead, pipeline.StatusQuotationGiven)
	require.NoError(t, err)
	require.Error(t, e.Commit(context.Background(), plan, Input{}))

	assert.Equal(t, pipeline.StatusNewLead, lead.LeadStatus)
	assert.Empty(t, views.moves)
}

func TestCommitLostRequiresConfirmation(t *testing.T) {
	fb := &fakeBackend{}
	e := New(fb)
	lead := testLead(pipeline.StatusQuotationGiven)

	plan, err := e.PlanTransition(lead, pipeline.StatusLost)
	require.NoError(t, err)
	require.Equal(t, ActionConfirmLost, plan.Action)

	// declined: silent no-op
	require.NoError(t, e.Commit(context.Background(), plan, Input{}))
	assert.Empty(t, fb.statusWrites)
	assert.Equal(t, pipeline.StatusQuotationGiven, lead.LeadStatus)

	// confirmed: write goes out
	require.NoError(t, e.Commit(context.Background(), plan, Input{ConfirmedLost: true}))
	assert.Equal(t, []pipeline.Status{pipeline.StatusLost}, fb.statusWrites)
	assert.Equal(t, pipeline.StatusLost, lead.LeadStatus)
}

func TestCommitFollowUpCapture(t *testing.T) {
	fb := &fakeBackend{}
	e := New(fb)
	lead := testLead(pipeline.StatusQuotationGiven)

	plan, err := e.PlanTransition(lead, pipeline.StatusFollowUp)
	require.NoError(t, err)

	// cancelled dialog: neither the follow-up nor the status is written
	require.NoError(t, e.Commit(context.Background(), plan, Input{}))
	assert.Empty(t, fb.followUps)
	assert.Empty(t, fb.statusWrites)

	fu := models.FollowUp{Date: time.Now(), Description: "call back monday"}
	require.NoError(t, e.Commit(context.Background(), plan, Input{FollowUp: &fu}))
	require.Len(t, fb.followUps, 1)
	assert.Equal(t, "call back monday", fb.followUps[0].Description)
	assert.Equal(t, []pipeline.Status{pipeline.StatusFollowUp}, fb.statusWrites)
	assert.Equal(t, pipeline.StatusFollowUp, lead.LeadStatus)
	require.Len(t, lead.FollowUps, 1)
}

func TestCommitRedirectConvertIssuesNoWrite(t *testing.T) {
	fb := &fakeBackend{}
	e := New(fb)
	lead := testLead(pipeline.StatusFollowUp)

	plan, err := e.PlanTransition(lead, pipeline.StatusOrderConfirmation)
	require.NoError(t, err)
	require.Equal(t, ActionRedirectConvert, plan.Action)

	require.NoError(t, e.Commit(context.Background(), plan, Input{}))
	assert.Empty(t, fb.statusWrites)
	assert.Equal(t, pipeline.StatusFollowUp, lead.LeadStatus)
}

func TestCommitDispatchGate(t *testing.T) {
	// Local state claims everything is done; the authoritative record says
	// otherwise. The re-fetch decides.
	stale := testLead(pipeline.StatusOrderExecution)
	stale.Items = []models.OrderItem{{ID: "i1", IsDone: true}, {ID: "i2", IsDone: true}}

	fresh := *stale
	fresh.Items = []models.OrderItem{{ID: "i1", IsDone: true}, {ID: "i2", IsDone: false}}

	fb := &fakeBackend{fresh: &fresh}
	e := New(fb)

	plan, err := e.PlanTransition(stale, pipeline.StatusDispatch)
	require.NoError(t, err)
	err = e.Commit(context.Background(), plan, Input{})
	require.ErrorIs(t, err, ErrItemsNotDone)
	assert.Equal(t, "All items must be marked as done before dispatch", err.Error())
	assert.Equal(t, 1, fb.fetches)
	assert.Empty(t, fb.statusWrites)
	assert.Equal(t, pipeline.StatusOrderExecution, stale.LeadStatus)

	// once the backend agrees, the transition goes through
	fresh.Items[1].IsDone = true
	require.NoError(t, e.Commit(context.Background(), plan, Input{}))
	assert.Equal(t, []pipeline.Status{pipeline.StatusDispatch}, fb.statusWrites)
	assert.Equal(t, pipeline.StatusDispatch, stale.LeadStatus)
}

func TestAddFollowUpStandalone(t *testing.T) {
	fb := &fakeBackend{}
	e := New(fb)
	lead := testLead(pipeline.StatusFollowUp)

	fu := models.FollowUp{Date: time.Now(), Description: "check samples"}
	require.NoError(t, e.AddFollowUp(context.Background(), lead, fu))

	require.Len(t, fb.followUps, 1)
	assert.Empty(t, fb.statusWrites, "standalone follow-up must not change status")
	assert.Equal(t, pipeline.StatusFollowUp, lead.LeadStatus)
	require.Len(t, lead.FollowUps, 1)
}

func TestToggleItemConfirmationAsymmetry(t *testing.T) {
	lead := testLead(pipeline.StatusOrderExecution)
	lead.Items = []models.OrderItem{{ID: "i1", IsDone: false}, {ID: "i2", IsDone: true}}

	refreshed := *lead
	refreshed.Items = []models.OrderItem{{ID: "i1", IsDone: true}, {ID: "i2", IsDone: true}}
	fb := &fakeBackend{fresh: &refreshed}
	e := New(fb)

	// marking done without confirmation is rejected locally
	err := e.ToggleItem(context.Background(), lead, "i1", false)
	require.ErrorIs(t, err, ErrConfirmRequired)
	assert.Empty(t, fb.toggles)

	// confirmed: write goes out and items refresh from the response
	require.NoError(t, e.ToggleItem(context.Background(), lead, "i1", true))
	assert.Equal(t, []string{"i1"}, fb.toggles)
	assert.True(t, lead.Items[0].IsDone)

	// undoing a done item needs no confirmation
	require.NoError(t, e.ToggleItem(context.Background(), lead, "i2", false))
	assert.Equal(t, []string{"i1", "i2"}, fb.toggles)
}

func TestToggleItemUnknownItem(t *testing.T) {
	lead := testLead(pipeline.StatusOrderExecution)
	e := New(&fakeBackend{})
	require.Error(t, e.ToggleItem(context.Background(), lead, "ghost", true))
}

type countingNotifier struct {
	statusChanges int
	followUps     int
}

func (n *countingNotifier) LeadStatusChanged(*models.Lead, pipeline.Status, pipeline.Status) {
	n.statusChanges++
}
func (n *countingNotifier) FollowUpScheduled(*models.Lead, models.FollowUp) { n.followUps++ }

func TestNotifierFiresAfterSuccessOnly(t *testing.T) {
	fb := &fakeBackend{}
	n := &countingNotifier{}
	e := New(fb)
	e.SetNotifier(n)
	lead := testLead(pipeline.StatusNewLead)

	plan, err := e.PlanTransition(lead, pipeline.StatusQuotationGiven)
	require.NoError(t, err)
	require.NoError(t, e.Commit(context.Background(), plan, Input{}))
	assert.Equal(t, 1, n.statusChanges)

	fb.fail = errors.New("down")
	plan, err = e.PlanTransition(lead, pipeline.StatusFollowUp)
	require.NoError(t, err)
	fu := models.FollowUp{Date: time.Now(), Description: "x"}
	require.Error(t, e.Commit(context.Background(), plan, Input{FollowUp: &fu}))
	assert.Equal(t, 0, n.followUps)
	assert.Equal(t, 1, n.statusChanges)
}
