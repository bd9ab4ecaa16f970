// Package server is the reference implementation of the lead backend's
// documented REST contract. It backs the integration tests and the dev
// server; persistence is deliberately in-memory.
package server

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"leadboard/internal/models"
	"leadboard/internal/pipeline"
)

var (
	errLeadNotFound  = errors.New("lead not found")
	errItemNotFound  = errors.New("item not found")
	errStaffNotFound = errors.New("invalid email or password")
)

type Store struct {
	mu    sync.RWMutex
	leads map[string]*models.Lead
	order []string // insertion order, the "server order" clients see
	staff map[string]*models.Staff
}

func NewStore() *Store {
	return &Store{
		leads: make(map[string]*models.Lead),
		staff: make(map[string]*models.Staff),
	}
}

// AddStaff registers a staff member with a bcrypt-hashed password.
func (s *Store) AddStaff(st models.Staff, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	st.PasswordHash = string(hash)
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staff[strings.ToLower(st.Email)] = &st
	return nil
}

func (s *Store) Authenticate(email, password string) (*models.Staff, error) {
	s.mu.RLock()
	st, ok := s.staff[strings.ToLower(email)]
	s.mu.RUnlock()
	if !ok {
		return nil, errStaffNotFound
	}
	if bcrypt.CompareHashAndPassword([]byte(st.PasswordHash), []byte(password)) != nil {
		return nil, errStaffNotFound
	}
	cp := *st
	return &cp, nil
}

// AddLead stores a lead, assigning an id and defaulting the status and
// high-water mark.
func (s *Store) AddLead(l models.Lead) string {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.LeadStatus == "" {
		l.LeadStatus = pipeline.StatusNewLead
	}
	if l.MaxStatusReached == "" {
		l.MaxStatusReached = l.LeadStatus
	}
	for i := range l.Items {
		if l.Items[i].ID == "" {
			l.Items[i].ID = uuid.NewString()
		}
		if l.Items[i].Total.IsZero() {
			l.Items[i].Total = l.Items[i].ComputeTotal()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads[l.ID] = &l
	s.order = append(s.order, l.ID)
	return l.ID
}

func (s *Store) Get(id string) (*models.Lead, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.leads[id]
	if !ok {
		return nil, false
	}
	cp := cloneLead(l)
	return &cp, true
}

func (s *Store) List(page, limit int, search string) ([]models.Lead, int, int) {
	return s.list(page, limit, search, "")
}

func (s *Store) ListByStatus(status pipeline.Status, page, limit int, search string) ([]models.Lead, int, int) {
	return s.list(page, limit, search, status)
}

func (s *Store) list(page, limit int, search string, status pipeline.Status) ([]models.Lead, int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]models.Lead, 0, len(s.order))
	for _, id := range s.order {
		l := s.leads[id]
		if status != "" && l.LeadStatus != status {
			continue
		}
		if !matchesSearch(l, search) {
			continue
		}
		matched = append(matched, cloneLead(l))
	}

	total := len(matched)
	totalPages := (total + limit - 1) / limit
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= total {
		return []models.Lead{}, totalPages, total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], totalPages, total
}

// UpdateStatus applies the same pipeline rules the client enforces, so a
// client that skipped validation still cannot corrupt a record: the
// vocabulary is closed, Lost is absorbing, and a backward move past the
// high-water mark is rejected unless the target is Lost. Forward moves
// advance maxStatusReached transparently.
func (s *Store) UpdateStatus(id string, to pipeline.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.leads[id]
	if !ok {
		return errLeadNotFound
	}
	if !pipeline.Known(to) {
		return errors.New("unknown lead status")
	}
	if to == l.LeadStatus {
		return nil
	}
	if pipeline.IsLost(l.LeadStatus) {
		return errors.New("lead is lost and can no longer be moved")
	}
	if pipeline.Backward(l.HighWaterMark(), to) {
		return errors.New("Cannot move lead backwards in status")
	}
	l.LeadStatus = to
	if pipeline.Index(to) > pipeline.Index(l.MaxStatusReached) {
		l.MaxStatusReached = to
	}
	return nil
}

func (s *Store) AddFollowUp(id string, fu models.FollowUp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.leads[id]
	if !ok {
		return errLeadNotFound
	}
	l.FollowUps = append(l.FollowUps, fu)
	return nil
}

// ToggleItem flips one item's done flag and returns the updated lead.
func (s *Store) ToggleItem(id, itemID string) (*models.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.leads[id]
	if !ok {
		return nil, errLeadNotFound
	}
	for i := range l.Items {
		if l.Items[i].ID == itemID {
			l.Items[i].IsDone = !l.Items[i].IsDone
			cp := cloneLead(l)
			return &cp, nil
		}
	}
	return nil, errItemNotFound
}

// StatusCounts is a convenience for seeding checks and the dev server log.
func (s *Store) StatusCounts() map[pipeline.Status]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[pipeline.Status]int)
	for _, l := range s.leads {
		out[l.LeadStatus]++
	}
	return out
}

func matchesSearch(l *models.Lead, search string) bool {
	if search == "" {
		return true
	}
	search = strings.ToLower(search)
	fields := []string{l.ClientType, string(l.LeadStatus)}
	if l.AccountMaster != nil {
		fields = append(fields, l.AccountMaster.CompanyName, l.AccountMaster.ClientName)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

func cloneLead(l *models.Lead) models.Lead {
	cp := *l
	cp.Items = append([]models.OrderItem(nil), l.Items...)
	cp.FollowUps = append([]models.FollowUp(nil), l.FollowUps...)
	if l.AccountMaster != nil {
		am := *l.AccountMaster
		cp.AccountMaster = &am
	}
	return cp
}
