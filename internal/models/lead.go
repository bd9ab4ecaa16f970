package models

import (
	"time"

	"github.com/shopspring/decimal"

	"leadboard/internal/pipeline"
)

// AccountMaster is the originating account record a lead was converted
// from. Read-only from the pipeline's point of view.
type AccountMaster struct {
	ID              string `json:"_id"`
	CompanyName     string `json:"companyName"`
	ClientName      string `json:"clientName"`
	AssignmentOwner string `json:"assignmentOwner"` // staff id owning the account
}

type Personalization struct {
	IsPersonalized bool   `json:"isPersonalized"`
	Location       string `json:"location,omitempty"`
	Description    string `json:"description,omitempty"`
}

// OrderItem is one line of a lead's order.
type OrderItem struct {
	ID                string           `json:"_id"`
	InquiryCategory   string           `json:"inquiryCategory"`
	ModelSuggestion   string           `json:"modelSuggestion"`
	CustomizationType string           `json:"customizationType"`
	Qty               int              `json:"qty"`
	Rate              decimal.Decimal  `json:"rate"`
	GST               decimal.Decimal  `json:"gst"` // percent
	Total             decimal.Decimal  `json:"total"`
	Personalization   *Personalization `json:"personalization,omitempty"`
	IsDone            bool             `json:"isDone"`
}

// ComputeTotal returns qty * rate plus GST.
func (i OrderItem) ComputeTotal() decimal.Decimal {
	base := i.Rate.Mul(decimal.NewFromInt(int64(i.Qty)))
	gst := base.Mul(i.GST).Div(decimal.NewFromInt(100))
	return base.Add(gst)
}

type FollowUp struct {
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
}

// Lead is one tracked sales opportunity.
type Lead struct {
	ID               string          `json:"_id"`
	LeadDate         time.Time       `json:"leadDate"`
	ClientType       string          `json:"clientType"`
	DeliveryDate     time.Time       `json:"deliveryDate"`
	LeadStatus       pipeline.Status `json:"leadStatus"`
	MaxStatusReached pipeline.Status `json:"maxStatusReached,omitempty"` // maintained by the backend
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	AccountMaster    *AccountMaster  `json:"accountMaster,omitempty"`
	Items            []OrderItem     `json:"items"`
	FollowUps        []FollowUp      `json:"followUps,omitempty"`
}

// HighWaterMark is the furthest-forward status the lead has reached,
// falling back to the current status when the backend did not send one.
func (l *Lead) HighWaterMark() pipeline.Status {
	if l.MaxStatusReached != "" {
		return l.MaxStatusReached
	}
	return l.LeadStatus
}

func (l *Lead) AllItemsDone() bool {
	for _, it := range l.Items {
		if !it.IsDone {
			return false
		}
	}
	return true
}

// ItemCounts returns how many items are done and how many are pending.
func (l *Lead) ItemCounts() (done, pending int) {
	for _, it := range l.Items {
		if it.IsDone {
			done++
		} else {
			pending++
		}
	}
	return
}

// OwnerID is the staff id owning the account this lead came from, empty
// when the account reference is missing.
func (l *Lead) OwnerID() string {
	if l.AccountMaster == nil {
		return ""
	}
	return l.AccountMaster.AssignmentOwner
}
