package pipeline

import "github.com/charmbracelet/lipgloss"

// Status is one stage of the lead pipeline. The declaration order below is
// the pipeline order: a lead moves forward through it and may only regress
// by being marked Lost.
type Status string

const (
	StatusNewLead           Status = "New Lead"
	StatusQuotationGiven    Status = "Quotation Given"
	StatusFollowUp          Status = "Follow Up"
	StatusOrderConfirmation Status = "Order Confirmation"
	StatusPI                Status = "PI"
	StatusOrderExecution    Status = "Order Execution"
	StatusDispatch          Status = "Dispatch"
	StatusFinalPayment      Status = "Final Payment"
	StatusCompleted         Status = "Completed"
	StatusLost              Status = "Lost"
)

// Statuses is the full pipeline in order. Lost sits last but is reachable
// from any non-terminal stage.
var Statuses = []Status{
	StatusNewLead,
	StatusQuotationGiven,
	StatusFollowUp,
	StatusOrderConfirmation,
	StatusPI,
	StatusOrderExecution,
	StatusDispatch,
	StatusFinalPayment,
	StatusCompleted,
	StatusLost,
}

var statusIndex = func() map[Status]int {
	m := make(map[Status]int, len(Statuses))
	for i, s := range Statuses {
		m[s] = i
	}
	return m
}()

// Index returns the position of s in the pipeline order, or -1 for an
// unknown status.
func Index(s Status) int {
	i, ok := statusIndex[s]
	if !ok {
		return -1
	}
	return i
}

func Known(s Status) bool {
	_, ok := statusIndex[s]
	return ok
}

// IsLost reports whether s is the absorbing terminal state.
func IsLost(s Status) bool { return s == StatusLost }

// Backward reports whether moving to "to" would regress past the given
// high-water mark. Lost is never backward.
func Backward(highWater, to Status) bool {
	if to == StatusLost {
		return false
	}
	return Index(to) < Index(highWater)
}

// Colors maps each status to its badge color (ANSI 256), following the
// palette of the original dashboard.
var Colors = map[Status]lipgloss.Color{
	StatusNewLead:           lipgloss.Color("33"),  // blue
	StatusQuotationGiven:    lipgloss.Color("135"), // purple
	StatusFollowUp:          lipgloss.Color("178"), // yellow
	StatusOrderConfirmation: lipgloss.Color("35"),  // green
	StatusPI:                lipgloss.Color("63"),  // indigo
	StatusOrderExecution:    lipgloss.Color("208"), // orange
	StatusDispatch:          lipgloss.Color("44"),  // cyan
	StatusFinalPayment:      lipgloss.Color("205"), // pink
	StatusCompleted:         lipgloss.Color("42"),  // emerald
	StatusLost:              lipgloss.Color("196"), // red
}

// Color returns the badge color for s, defaulting to a neutral gray.
func Color(s Status) lipgloss.Color {
	if c, ok := Colors[s]; ok {
		return c
	}
	return lipgloss.Color("245")
}
