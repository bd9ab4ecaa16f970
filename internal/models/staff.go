package models

import "leadboard/internal/pipeline"

// ViewMode is the account-visibility mode attached to a role: either every
// lead is visible, or only leads whose account is owned by the current
// staff member.
type ViewMode string

const (
	ViewModeAll ViewMode = "all"
	ViewModeOwn ViewMode = "own"
)

// Role carries the pipeline permissions a staff member acts under.
type Role struct {
	ID              string            `json:"_id"`
	Name            string            `json:"name"`
	AllowedStatuses []pipeline.Status `json:"allowedStatuses"`
	ViewMode        ViewMode          `json:"viewMode"`
}

type Staff struct {
	ID           string `json:"_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
}
