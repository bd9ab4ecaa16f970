// Package notify delivers pipeline event notifications. Every notifier is
// best-effort: delivery failures are logged and never propagate into the
// transition that triggered them.
package notify

import (
	"leadboard/internal/models"
	"leadboard/internal/pipeline"
)

// Notifier mirrors the engine's notifier contract.
type Notifier interface {
	LeadStatusChanged(lead *models.Lead, from, to pipeline.Status)
	FollowUpScheduled(lead *models.Lead, fu models.FollowUp)
}

// Multi fans events out to several notifiers.
type Multi []Notifier

func (m Multi) LeadStatusChanged(lead *models.Lead, from, to pipeline.Status) {
	for _, n := range m {
		n.LeadStatusChanged(lead, from, to)
	}
}

func (m Multi) FollowUpScheduled(lead *models.Lead, fu models.FollowUp) {
	for _, n := range m {
		n.FollowUpScheduled(lead, fu)
	}
}

func leadTitle(lead *models.Lead) string {
	if lead.AccountMaster != nil && lead.AccountMaster.CompanyName != "" {
		return lead.AccountMaster.CompanyName
	}
	return lead.ID
}
