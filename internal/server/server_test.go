package server

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadboard/internal/api"
	"leadboard/internal/engine"
	"leadboard/internal/models"
	"leadboard/internal/pipeline"
	"leadboard/internal/session"
)

var testSecret = []byte("test-secret")

func newTestServer(t *testing.T) (*httptest.Server, *Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := NewStore()
	r := gin.New()
	SetupRoutes(r, store, testSecret)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, store
}

func loggedInClient(t *testing.T, srv *httptest.Server, store *Store) (*api.Client, *session.Session) {
	t.Helper()
	staff := models.Staff{
		ID:    "staff-1",
		Email: "rep@example.com",
		Role: models.Role{
			Name:            "Admin",
			AllowedStatuses: pipeline.Statuses,
			ViewMode:        models.ViewModeAll,
		},
	}
	require.NoError(t, store.AddStaff(staff, "secret1"))

	client := api.New(srv.URL, "")
	token, err := client.Login(context.Background(), "rep@example.com", "secret1")
	require.NoError(t, err)
	client.SetToken(token)
	return client, session.FromToken(token)
}

func TestLoginAndTokenClaims(t *testing.T) {
	srv, store := newTestServer(t)
	_, sess := loggedInClient(t, srv, store)

	assert.Equal(t, "staff-1", sess.CurrentStaffID())
	assert.Equal(t, models.ViewModeAll, sess.AccountVisibilityMode())
	assert.Equal(t, pipeline.Statuses, sess.AllowedStatuses())
}

func TestLoginBadCredentials(t *testing.T) {
	srv, store := newTestServer(t)
	require.NoError(t, store.AddStaff(models.Staff{Email: "rep@example.com"}, "right"))

	client := api.New(srv.URL, "")
	_, err := client.Login(context.Background(), "rep@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "invalid email or password", err.Error())
}

func TestRequestsRequireToken(t *testing.T) {
	srv, _ := newTestServer(t)
	client := api.New(srv.URL, "")
	_, err := client.Leads(context.Background(), 1, 10, "")
	require.Error(t, err)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.StatusCode)
}

func TestListPaginationShape(t *testing.T) {
	srv, store := newTestServer(t)
	client, _ := loggedInClient(t, srv, store)
	for i := 0; i < 5; i++ {
		store.AddLead(models.Lead{LeadStatus: pipeline.StatusNewLead})
	}

	resp, err := client.Leads(context.Background(), 1, 2, "")
	require.NoError(t, err)
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, 3, resp.Pagination.TotalPages)
	assert.Equal(t, 5, resp.Pagination.TotalRecords)

	resp, err = client.Leads(context.Background(), 3, 2, "")
	require.NoError(t, err)
	assert.Len(t, resp.Data, 1)
}

func TestListByStatusAndSearch(t *testing.T) {
	srv, store := newTestServer(t)
	client, _ := loggedInClient(t, srv, store)
	store.AddLead(models.Lead{
		LeadStatus:    pipeline.StatusFollowUp,
		AccountMaster: &models.AccountMaster{CompanyName: "Acme Traders"},
	})
	store.AddLead(models.Lead{
		LeadStatus:    pipeline.StatusFollowUp,
		AccountMaster: &models.AccountMaster{CompanyName: "Bluegate"},
	})
	store.AddLead(models.Lead{LeadStatus: pipeline.StatusNewLead})

	resp, err := client.LeadsByStatus(context.Background(), pipeline.StatusFollowUp, 1, 10, "")
	require.NoError(t, err)
	assert.Len(t, resp.Data, 2)

	resp, err = client.LeadsByStatus(context.Background(), pipeline.StatusFollowUp, 1, 10, "acme")
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Acme Traders", resp.Data[0].AccountMaster.CompanyName)
}

func TestUpdateStatusRules(t *testing.T) {
	srv, store := newTestServer(t)
	client, _ := loggedInClient(t, srv, store)
	id := store.AddLead(models.Lead{LeadStatus: pipeline.StatusQuotationGiven})

	// backward is rejected with the canonical message
	err := client.UpdateStatus(context.Background(), id, pipeline.StatusNewLead)
	require.Error(t, err)
	assert.Equal(t, "Cannot move lead backwards in status", err.Error())

	// forward advances the high-water mark transparently
	require.NoError(t, client.UpdateStatus(context.Background(), id, pipeline.StatusPI))
	lead, err := client.Lead(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, pipeline.StatusPI, lead.LeadStatus)
	assert.Equal(t, pipeline.StatusPI, lead.MaxStatusReached)

	// lost is reachable, then absorbing
	require.NoError(t, client.UpdateStatus(context.Background(), id, pipeline.StatusLost))
	err = client.UpdateStatus(context.Background(), id, pipeline.StatusCompleted)
	require.Error(t, err)

	// unknown vocabulary is rejected
	id2 := store.AddLead(models.Lead{})
	require.Error(t, client.UpdateStatus(context.Background(), id2, pipeline.Status("archived")))
}

func TestFollowUpAppend(t *testing.T) {
	srv, store := newTestServer(t)
	client, _ := loggedInClient(t, srv, store)
	id := store.AddLead(models.Lead{LeadStatus: pipeline.StatusFollowUp})

	fu := models.FollowUp{Date: time.Now().Round(time.Second), Description: "send revised quote"}
	require.NoError(t, client.AddFollowUp(context.Background(), id, fu))

	lead, err := client.Lead(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, lead.FollowUps, 1)
	assert.Equal(t, "send revised quote", lead.FollowUps[0].Description)
	assert.Equal(t, pipeline.StatusFollowUp, lead.LeadStatus)
}

func TestToggleItemRoundTrip(t *testing.T) {
	srv, store := newTestServer(t)
	client, _ := loggedInClient(t, srv, store)
	id := store.AddLead(models.Lead{
		LeadStatus: pipeline.StatusOrderExecution,
		Items:      []models.OrderItem{{ID: "i1"}, {ID: "i2", IsDone: true}},
	})

	lead, err := client.ToggleItem(context.Background(), id, "i1")
	require.NoError(t, err)
	assert.True(t, lead.Items[0].IsDone)

	lead, err = client.ToggleItem(context.Background(), id, "i2")
	require.NoError(t, err)
	assert.False(t, lead.Items[1].IsDone)

	_, err = client.ToggleItem(context.Background(), id, "ghost")
	require.Error(t, err)
}

// TestEngineAgainstReferenceBackend runs the client-side transition engine
// end to end over HTTP: the dispatch gate's re-fetch hits the real
// endpoint and the final state lives server-side.
func TestEngineAgainstReferenceBackend(t *testing.T) {
	srv, store := newTestServer(t)
	client, _ := loggedInClient(t, srv, store)
	id := store.AddLead(models.Lead{
		LeadStatus: pipeline.StatusOrderExecution,
		Items:      []models.OrderItem{{ID: "i1", IsDone: true}, {ID: "i2"}},
	})

	eng := engine.New(client)
	lead, err := client.Lead(context.Background(), id)
	require.NoError(t, err)

	plan, err := eng.PlanTransition(lead, pipeline.StatusDispatch)
	require.NoError(t, err)
	err = eng.Commit(context.Background(), plan, engine.Input{})
	require.ErrorIs(t, err, engine.ErrItemsNotDone)

	// finish the pending item through the engine, confirmed, then retry
	require.NoError(t, eng.ToggleItem(context.Background(), lead, "i2", true))
	require.NoError(t, eng.Commit(context.Background(), plan, engine.Input{}))

	stored, ok := store.Get(id)
	require.True(t, ok)
	assert.Equal(t, pipeline.StatusDispatch, stored.LeadStatus)
	assert.Equal(t, pipeline.StatusDispatch, stored.MaxStatusReached)
}

func TestSeedDemo(t *testing.T) {
	store := NewStore()
	require.NoError(t, SeedDemo(store))

	counts := store.StatusCounts()
	assert.NotEmpty(t, counts)
	_, err := store.Authenticate("admin@leadboard.local", "admin123")
	require.NoError(t, err)
	_, err = store.Authenticate("admin@leadboard.local", "nope")
	require.Error(t, err)
}
