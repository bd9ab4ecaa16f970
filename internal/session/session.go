package session

import (
	"sort"

	"github.com/golang-jwt/jwt/v5"

	"leadboard/internal/models"
	"leadboard/internal/pipeline"
)

// Claims is the token payload issued at staff login. The same shape is
// verified server-side and decoded client-side.
type Claims struct {
	StaffID         string   `json:"staff_id"`
	RoleName        string   `json:"role"`
	AllowedStatuses []string `json:"allowed_statuses"`
	ViewMode        string   `json:"view_mode"`
	jwt.RegisteredClaims
}

// Session is the explicit session context the pipeline core reads its
// permissions from. A zero session is valid and means "nothing resolved
// yet": no allowed statuses, no fetches.
type Session struct {
	staffID string
	allowed []pipeline.Status
	mode    models.ViewMode
}

// New builds a session from already-resolved role data (test fixtures,
// server-side use).
func New(staffID string, allowed []pipeline.Status, mode models.ViewMode) *Session {
	s := &Session{staffID: staffID, mode: mode}
	s.setAllowed(allowed)
	return s
}

// FromToken decodes the session context out of a bearer token. The client
// does not hold the signing key; verification is the backend's job, the
// claims are only read for display/permission scoping. Absent or malformed
// tokens yield an empty session, which the UI treats as permission denial
// rather than an error.
func FromToken(token string) *Session {
	s := &Session{}
	if token == "" {
		return s
	}
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return s
	}
	s.staffID = claims.StaffID
	switch models.ViewMode(claims.ViewMode) {
	case models.ViewModeAll, models.ViewModeOwn:
		s.mode = models.ViewMode(claims.ViewMode)
	default:
		s.mode = models.ViewModeAll
	}
	allowed := make([]pipeline.Status, 0, len(claims.AllowedStatuses))
	for _, raw := range claims.AllowedStatuses {
		allowed = append(allowed, pipeline.Status(raw))
	}
	s.setAllowed(allowed)
	return s
}

// setAllowed keeps only known statuses, deduplicated, in taxonomy order.
func (s *Session) setAllowed(statuses []pipeline.Status) {
	seen := make(map[pipeline.Status]bool, len(statuses))
	out := make([]pipeline.Status, 0, len(statuses))
	for _, st := range statuses {
		if !pipeline.Known(st) || seen[st] {
			continue
		}
		seen[st] = true
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool {
		return pipeline.Index(out[i]) < pipeline.Index(out[j])
	})
	s.allowed = out
}

// AllowedStatuses returns the statuses this session may see and act on, in
// pipeline order. Empty until role data resolves.
func (s *Session) AllowedStatuses() []pipeline.Status {
	out := make([]pipeline.Status, len(s.allowed))
	copy(out, s.allowed)
	return out
}

func (s *Session) CurrentStaffID() string { return s.staffID }

func (s *Session) AccountVisibilityMode() models.ViewMode {
	if s.mode == "" {
		return models.ViewModeAll
	}
	return s.mode
}

// Ready reports whether role data has resolved to a non-empty status set.
// Fetches keyed on allowed statuses wait for this.
func (s *Session) Ready() bool { return len(s.allowed) > 0 }

// Allowed reports whether the session may see the given status.
func (s *Session) Allowed(st pipeline.Status) bool {
	for _, a := range s.allowed {
		if a == st {
			return true
		}
	}
	return false
}
