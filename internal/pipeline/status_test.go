package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexFollowsDeclarationOrder(t *testing.T) {
	for i, s := range Statuses {
		assert.Equal(t, i, Index(s))
	}
	assert.Equal(t, -1, Index(Status("Nonsense")))
}

func TestKnown(t *testing.T) {
	for _, s := range Statuses {
		assert.True(t, Known(s))
	}
	assert.False(t, Known(Status("")))
	assert.False(t, Known(Status("new")))
}

func TestBackward(t *testing.T) {
	tests := []struct {
		name      string
		highWater Status
		to        Status
		backward  bool
	}{
		{"forward move", StatusNewLead, StatusQuotationGiven, false},
		{"same status", StatusPI, StatusPI, false},
		{"regress past high water", StatusOrderExecution, StatusQuotationGiven, true},
		{"regress one step", StatusFollowUp, StatusQuotationGiven, true},
		{"lost is never backward", StatusCompleted, StatusLost, false},
		{"lost from early stage", StatusNewLead, StatusLost, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.backward, Backward(tt.highWater, tt.to))
		})
	}
}

func TestEveryStatusHasColor(t *testing.T) {
	for _, s := range Statuses {
		_, ok := Colors[s]
		assert.True(t, ok, "no color for %q", s)
	}
	assert.NotEmpty(t, Color(Status("unknown")), "unknown status needs a fallback color")
}
