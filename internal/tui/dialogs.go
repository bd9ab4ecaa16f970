package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"leadboard/internal/engine"
	"leadboard/internal/models"
)

// dialog is a modal layered over the current view. While one is open it
// owns the keyboard; closing returns nil.
type dialog interface {
	update(msg tea.KeyMsg, m *Model) (dialog, tea.Cmd)
	view(m *Model) string
}

var dialogStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	Padding(1, 2).
	Width(60)

const followUpTimeLayout = "2006-01-02 15:04"

// followUpDialog captures a follow-up record. With a pending plan it is
// the blocking step of a transition into Follow Up; without one it is the
// standalone "add follow-up" action.
type followUpDialog struct {
	lead   *models.Lead
	plan   *engine.Plan
	date   textinput.Model
	desc   textinput.Model
	focus  int
	errMsg string
}

func newFollowUpDialog(lead *models.Lead, plan *engine.Plan) *followUpDialog {
	date := textinput.New()
	date.Placeholder = followUpTimeLayout
	date.Focus()
	desc := textinput.New()
	desc.Placeholder = "Follow up details..."
	return &followUpDialog{lead: lead, plan: plan, date: date, desc: desc}
}

func (d *followUpDialog) update(msg tea.KeyMsg, m *Model) (dialog, tea.Cmd) {
	switch msg.String() {
	case "esc":
		// cancelling also cancels any pending transition: no write happens
		return nil, nil
	case "tab", "shift+tab":
		d.focus = 1 - d.focus
		if d.focus == 0 {
			d.date.Focus()
			d.desc.Blur()
		} else {
			d.desc.Focus()
			d.date.Blur()
		}
		return d, nil
	case "enter":
		when, err := time.Parse(followUpTimeLayout, d.date.Value())
		if err != nil {
			d.errMsg = "date must look like " + followUpTimeLayout
			return d, nil
		}
		if d.desc.Value() == "" {
			d.errMsg = "description is required"
			return d, nil
		}
		fu := models.FollowUp{Date: when, Description: d.desc.Value()}
		if d.plan != nil {
			return nil, m.commitPlan(d.plan, engine.Input{FollowUp: &fu})
		}
		lead := d.lead
		return nil, func() tea.Msg {
			return followUpSavedMsg{err: m.engine.AddFollowUp(context.Background(), lead, fu)}
		}
	}

	var cmd tea.Cmd
	if d.focus == 0 {
		d.date, cmd = d.date.Update(msg)
	} else {
		d.desc, cmd = d.desc.Update(msg)
	}
	return d, cmd
}

func (d *followUpDialog) view(_ *Model) string {
	title := titleStyle.Render("Add Follow Up — " + leadCaption(d.lead))
	body := fmt.Sprintf("%s\n\nDate:        %s\nDescription: %s\n",
		title, d.date.View(), d.desc.View())
	if d.plan != nil {
		body += faintStyle.Render("\nRequired before moving this lead to Follow Up.")
	}
	if d.errMsg != "" {
		body += "\n" + statusBarStyle.Render(d.errMsg)
	}
	body += faintStyle.Render("\n\ntab switch field · enter save · esc cancel")
	return dialogStyle.Render(body)
}

// searchDialog captures a search term for whichever view opened it: the
// table reloads from page 1 with it, the board is cleared and rebuilt.
type searchDialog struct {
	target viewKind
	input  textinput.Model
}

func newSearchDialog(target viewKind, current string) *searchDialog {
	input := textinput.New()
	input.Placeholder = "company, client, type..."
	input.SetValue(current)
	input.Focus()
	return &searchDialog{target: target, input: input}
}

func (d *searchDialog) update(msg tea.KeyMsg, m *Model) (dialog, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return nil, nil
	case "enter":
		query := d.input.Value()
		if d.target == viewTable {
			return nil, m.loadTable(1, query, m.tbl.StatusFilter())
		}
		m.kanban.SetSearch(query)
		m.colIdx, m.rowIdx = 0, 0
		return nil, m.loadBoard()
	}
	var cmd tea.Cmd
	d.input, cmd = d.input.Update(msg)
	return d, cmd
}

func (d *searchDialog) view(_ *Model) string {
	return dialogStyle.Render(fmt.Sprintf("%s\n\n%s\n%s",
		titleStyle.Render("Search Leads"), d.input.View(),
		faintStyle.Render("\nenter apply · esc cancel")))
}

type confirmKind int

const (
	confirmLost confirmKind = iota
	confirmItemDone
)

// confirmDialog is the yes/no modal. For Lost it guards the irreversible
// transition; for item completion it guards marking an item done (undoing
// is deliberately unguarded).
type confirmDialog struct {
	kind   confirmKind
	plan   *engine.Plan     // confirmLost
	parent *orderExecDialog // confirmItemDone returns here
	itemID string
}

func newConfirmDialog(kind confirmKind, plan *engine.Plan, itemID string) *confirmDialog {
	return &confirmDialog{kind: kind, plan: plan, itemID: itemID}
}

func (d *confirmDialog) update(msg tea.KeyMsg, m *Model) (dialog, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		if d.kind == confirmLost {
			return nil, m.commitPlan(d.plan, engine.Input{ConfirmedLost: true})
		}
		parent, itemID := d.parent, d.itemID
		return parent, func() tea.Msg {
			return itemToggledMsg{err: m.engine.ToggleItem(context.Background(), parent.lead, itemID, true)}
		}
	case "n", "N", "esc":
		if d.kind == confirmItemDone {
			return d.parent, nil
		}
		return nil, nil
	}
	return d, nil
}

func (d *confirmDialog) view(_ *Model) string {
	var title, text string
	switch d.kind {
	case confirmLost:
		title = "Mark Lead as Lost?"
		text = fmt.Sprintf("%s will be marked as Lost. This cannot be undone;\na lost lead never re-enters the pipeline.",
			leadCaption(d.plan.Lead))
	case confirmItemDone:
		title = "Mark Item as Done?"
		text = "The item will be recorded as completed in the order execution."
	}
	return dialogStyle.Render(fmt.Sprintf("%s\n\n%s\n\n%s",
		titleStyle.Render(title), text, faintStyle.Render("y confirm · n cancel")))
}

// orderExecDialog lists the lead's order items and toggles their done
// flags. Marking done routes through the confirmation above; marking
// pending is immediate.
type orderExecDialog struct {
	lead *models.Lead
	sel  int
}

func newOrderExecDialog(lead *models.Lead) *orderExecDialog {
	return &orderExecDialog{lead: lead}
}

func (d *orderExecDialog) update(msg tea.KeyMsg, m *Model) (dialog, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		return nil, nil
	case "up", "k":
		if d.sel > 0 {
			d.sel--
		}
	case "down", "j":
		if d.sel < len(d.lead.Items)-1 {
			d.sel++
		}
	case " ", "space", "enter":
		if d.sel >= len(d.lead.Items) {
			return d, nil
		}
		item := d.lead.Items[d.sel]
		if !item.IsDone {
			confirm := newConfirmDialog(confirmItemDone, nil, item.ID)
			confirm.parent = d
			return confirm, nil
		}
		lead, itemID := d.lead, item.ID
		return d, func() tea.Msg {
			return itemToggledMsg{err: m.engine.ToggleItem(context.Background(), lead, itemID, false)}
		}
	}
	return d, nil
}

func (d *orderExecDialog) view(_ *Model) string {
	done, pending := d.lead.ItemCounts()
	header := titleStyle.Render("Order Execution — "+leadCaption(d.lead)) +
		fmt.Sprintf("\nDone: %d   Pending: %d\n", done, pending)

	rows := make([]string, 0, len(d.lead.Items))
	for i, it := range d.lead.Items {
		mark := "○"
		if it.IsDone {
			mark = "●"
		}
		line := fmt.Sprintf("%s %s · %s · qty %d", mark, it.ModelSuggestion, it.CustomizationType, it.Qty)
		if i == d.sel {
			line = titleStyle.Render(line)
		}
		rows = append(rows, line)
	}
	footer := faintStyle.Render("\nspace toggle · esc close")
	return dialogStyle.Render(header + "\n" + lipgloss.JoinVertical(lipgloss.Left, rows...) + footer)
}
