package server

import (
	"time"

	"github.com/shopspring/decimal"

	"leadboard/internal/models"
	"leadboard/internal/pipeline"
)

// SeedDemo loads the dev server with two staff accounts and a spread of
// leads across the pipeline. Login with admin@leadboard.local/admin123
// (all statuses, view all) or sales@leadboard.local/sales123 (view own,
// early pipeline only).
func SeedDemo(store *Store) error {
	adminRole := models.Role{
		ID:              "role-admin",
		Name:            "Admin",
		AllowedStatuses: pipeline.Statuses,
		ViewMode:        models.ViewModeAll,
	}
	salesRole := models.Role{
		ID:   "role-sales",
		Name: "Sales",
		AllowedStatuses: []pipeline.Status{
			pipeline.StatusNewLead,
			pipeline.StatusQuotationGiven,
			pipeline.StatusFollowUp,
			pipeline.StatusOrderConfirmation,
			pipeline.StatusLost,
		},
		ViewMode: models.ViewModeOwn,
	}

	admin := models.Staff{ID: "staff-admin", Name: "Admin", Email: "admin@leadboard.local", Role: adminRole}
	sales := models.Staff{ID: "staff-sales", Name: "Sales Rep", Email: "sales@leadboard.local", Role: salesRole}
	if err := store.AddStaff(admin, "admin123"); err != nil {
		return err
	}
	if err := store.AddStaff(sales, "sales123"); err != nil {
		return err
	}

	now := time.Now()
	item := func(model, category, customization string, qty int, rate float64, done bool) models.OrderItem {
		it := models.OrderItem{
			ModelSuggestion:   model,
			InquiryCategory:   category,
			CustomizationType: customization,
			Qty:               qty,
			Rate:              decimal.NewFromFloat(rate),
			GST:               decimal.NewFromInt(18),
			IsDone:            done,
		}
		it.Total = it.ComputeTotal()
		return it
	}
	lead := func(company, client, owner, clientType string, status pipeline.Status, items ...models.OrderItem) models.Lead {
		total := decimal.Zero
		for _, it := range items {
			total = total.Add(it.Total)
		}
		return models.Lead{
			LeadDate:     now.AddDate(0, 0, -14),
			DeliveryDate: now.AddDate(0, 1, 0),
			ClientType:   clientType,
			LeadStatus:   status,
			TotalAmount:  total,
			AccountMaster: &models.AccountMaster{
				CompanyName:     company,
				ClientName:      client,
				AssignmentOwner: owner,
			},
			Items: items,
		}
	}

	seeds := []models.Lead{
		lead("Acme Traders", "R. Mehta", sales.ID, "Retail", pipeline.StatusNewLead,
			item("Classic Mug", "Drinkware", "Engraving", 200, 85, false)),
		lead("Bluegate Exports", "S. Iyer", sales.ID, "Corporate", pipeline.StatusQuotationGiven,
			item("Canvas Tote", "Bags", "Screen Print", 500, 120, false)),
		lead("Crown Hotels", "A. Khan", admin.ID, "Hospitality", pipeline.StatusFollowUp,
			item("Key Fob", "Accessories", "Embossing", 1000, 45, false)),
		lead("Delta Motors", "P. Sharma", admin.ID, "Corporate", pipeline.StatusOrderExecution,
			item("Desk Organizer", "Office", "Laser Etch", 150, 310, true),
			item("Notebook A5", "Stationery", "Foil Stamp", 300, 95, false)),
		lead("Everest Foods", "N. Rao", admin.ID, "FMCG", pipeline.StatusDispatch,
			item("Jar Label Set", "Packaging", "Full Color", 5000, 12, true)),
	}
	for _, l := range seeds {
		store.AddLead(l)
	}
	return nil
}
