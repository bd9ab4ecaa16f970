package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"leadboard/internal/cache"
	"leadboard/internal/engine"
	"leadboard/internal/models"
	"leadboard/internal/pipeline"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	faintStyle     = lipgloss.NewStyle().Faint(true)
	statusBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("178"))

	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Width(26)
	selectedColumnStyle = columnStyle.
				BorderForeground(lipgloss.Color("205"))
	cardStyle         = lipgloss.NewStyle().Padding(0, 0, 1, 0)
	selectedCardStyle = lipgloss.NewStyle().Bold(true).Padding(0, 0, 1, 0)
	carriedCardStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Padding(0, 0, 1, 0)
)

func (m *Model) clampSelection() {
	cols := m.kanban.Columns()
	if len(cols) == 0 {
		m.colIdx, m.rowIdx = 0, 0
		return
	}
	if m.colIdx >= len(cols) {
		m.colIdx = len(cols) - 1
	}
	if n := len(cols[m.colIdx].Leads); m.rowIdx >= n {
		if n == 0 {
			m.rowIdx = 0
		} else {
			m.rowIdx = n - 1
		}
	}
}

func (m *Model) selectedKanbanLead() *models.Lead {
	cols := m.kanban.Columns()
	if m.colIdx >= len(cols) {
		return nil
	}
	col := cols[m.colIdx]
	if m.rowIdx >= len(col.Leads) {
		return nil
	}
	l := col.Leads[m.rowIdx]
	return &l
}

func (m Model) handleKanbanKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cols := m.kanban.Columns()
	switch msg.String() {
	case "left", "h":
		if m.colIdx > 0 {
			m.colIdx--
			m.rowIdx = 0
		}
	case "right", "l":
		if m.colIdx < len(cols)-1 {
			m.colIdx++
			m.rowIdx = 0
		}
	case "up", "k":
		if m.rowIdx > 0 {
			m.rowIdx--
		}
	case "down", "j":
		if m.colIdx < len(cols) {
			col := cols[m.colIdx]
			if m.rowIdx < len(col.Leads)-1 {
				m.rowIdx++
			} else if col.HasMore() {
				// bottom of the column: pull the next page
				return m, m.loadMoreColumn(col.Status)
			}
		}
	case "esc":
		m.adapter.CancelDrag()
		m.statusLine = ""
	case " ", "space", "enter":
		return m.handlePickOrDrop(cols)
	case "u":
		if lead := m.selectedKanbanLead(); lead != nil {
			m.dialog = newFollowUpDialog(lead, nil)
		}
	case "o":
		if lead := m.selectedKanbanLead(); lead != nil {
			m.dialog = newOrderExecDialog(lead)
		}
	}
	m.clampSelection()
	return m, nil
}

// handlePickOrDrop is the terminal stand-in for drag and drop: first press
// captures the lead and its source column, second press on a column drops
// it there and hands off to the engine.
func (m Model) handlePickOrDrop(cols []*cache.Column) (tea.Model, tea.Cmd) {
	if m.adapter.Carrying() == nil {
		lead := m.selectedKanbanLead()
		if lead == nil {
			return m, nil
		}
		if pipeline.IsLost(lead.LeadStatus) {
			m.statusLine = "Lost leads cannot be moved"
			return m, nil
		}
		m.adapter.BeginDrag(lead)
		m.statusLine = fmt.Sprintf("Moving %s — pick a column", leadCaption(lead))
		return m, nil
	}

	if m.colIdx >= len(cols) {
		m.adapter.CancelDrag()
		return m, nil
	}
	target := cols[m.colIdx].Status
	plan, err := m.adapter.Drop(target)
	if err != nil {
		m.statusLine = err.Error()
		return m, nil
	}
	if plan == nil {
		return m, nil
	}
	m.statusLine = ""
	switch plan.Action {
	case engine.ActionNone:
		return m, nil
	case engine.ActionDirect:
		return m, m.commitPlan(plan, engine.Input{})
	case engine.ActionCaptureFollowUp:
		m.dialog = newFollowUpDialog(plan.Lead, plan)
		return m, nil
	case engine.ActionConfirmLost:
		m.dialog = newConfirmDialog(confirmLost, plan, "")
		return m, nil
	case engine.ActionRedirectConvert:
		m.statusLine = "Confirm this order through the convert-lead workflow"
		return m, nil
	}
	return m, nil
}

func leadCaption(l *models.Lead) string {
	if l.AccountMaster != nil && l.AccountMaster.CompanyName != "" {
		return l.AccountMaster.CompanyName
	}
	return l.ID
}

func (m Model) viewKanbanScreen() string {
	cols := m.kanban.Columns()
	if len(cols) == 0 {
		return titleStyle.Render("Leads — Kanban View") + "\n" +
			faintStyle.Render("No pipeline stages are visible for this session.")
	}

	carrying := m.adapter.Carrying()
	rendered := make([]string, 0, len(cols))
	for ci, col := range cols {
		head := lipgloss.NewStyle().
			Bold(true).
			Foreground(pipeline.Color(col.Status)).
			Render(fmt.Sprintf("%s (%d)", col.Status, col.TotalRecords))

		cards := make([]string, 0, len(col.Leads)+1)
		cards = append(cards, head)
		for ri := range col.Leads {
			l := &col.Leads[ri]
			style := cardStyle
			if carrying != nil && carrying.ID == l.ID {
				style = carriedCardStyle
			} else if ci == m.colIdx && ri == m.rowIdx {
				style = selectedCardStyle
			}
			card := fmt.Sprintf("%s\n%s · %s\n%d items · %s",
				leadCaption(l), l.ClientType, l.DeliveryDate.Format("02.01"),
				len(l.Items), l.TotalAmount.StringFixed(0))
			cards = append(cards, style.Render(card))
		}
		if col.HasMore() {
			cards = append(cards, faintStyle.Render("… more"))
		}

		frame := columnStyle
		if ci == m.colIdx {
			frame = selectedColumnStyle
		}
		rendered = append(rendered, frame.Render(lipgloss.JoinVertical(lipgloss.Left, cards...)))
	}
	return titleStyle.Render("Leads — Kanban View") + "\n" +
		lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}
