// Package tui is the terminal front end over the lead pipeline core: the
// same dual table/kanban view the web dashboard had, driving the board
// adapter and transition engine. Rendering here carries no business rules;
// every move goes through the engine's plan/commit path.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"leadboard/internal/board"
	"leadboard/internal/cache"
	"leadboard/internal/engine"
	"leadboard/internal/models"
	"leadboard/internal/pipeline"
	"leadboard/internal/session"
)

type viewKind int

const (
	viewTable viewKind = iota
	viewKanban
)

type (
	tableLoadedMsg struct{ err error }
	boardLoadedMsg struct{ err error }
	columnLoadedMsg struct {
		status pipeline.Status
		err    error
	}
	commitDoneMsg struct {
		plan *engine.Plan
		err  error
	}
	followUpSavedMsg struct{ err error }
	itemToggledMsg   struct{ err error }
)

type Model struct {
	sess    *session.Session
	engine  *engine.Engine
	adapter *board.Adapter
	tbl     *cache.TableBuffer
	kanban  *cache.Board

	view    viewKind
	tableUI table.Model
	colIdx  int
	rowIdx  int

	dialog      dialog
	boardLoaded bool

	statusLine string
	width      int
	height     int
}

func New(sess *session.Session, eng *engine.Engine, adapter *board.Adapter, tbl *cache.TableBuffer, kanban *cache.Board) Model {
	columns := []table.Column{
		{Title: "Company", Width: 22},
		{Title: "Client", Width: 16},
		{Title: "Lead Date", Width: 12},
		{Title: "Type", Width: 12},
		{Title: "Status", Width: 18},
		{Title: "Amount", Width: 12},
	}
	t := table.New(table.WithColumns(columns), table.WithFocused(true), table.WithHeight(16))
	s := table.DefaultStyles()
	s.Header = s.Header.Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true)
	s.Selected = s.Selected.Bold(true)
	t.SetStyles(s)

	return Model{
		sess:    sess,
		engine:  eng,
		adapter: adapter,
		tbl:     tbl,
		kanban:  kanban,
		tableUI: t,
	}
}

// Init loads only the table; the board's per-column buffers are first
// filled when the user switches to the kanban view.
func (m Model) Init() tea.Cmd {
	return m.loadTable(1, "", "")
}

func (m Model) loadTable(page int, search string, filter pipeline.Status) tea.Cmd {
	return func() tea.Msg {
		return tableLoadedMsg{err: m.tbl.Fetch(context.Background(), page, search, filter)}
	}
}

func (m Model) loadBoard() tea.Cmd {
	return func() tea.Msg {
		return boardLoadedMsg{err: m.kanban.Initialize(context.Background())}
	}
}

func (m Model) loadMoreColumn(status pipeline.Status) tea.Cmd {
	return func() tea.Msg {
		return columnLoadedMsg{status: status, err: m.kanban.LoadMore(context.Background(), status)}
	}
}

func (m Model) commitPlan(plan *engine.Plan, in engine.Input) tea.Cmd {
	return func() tea.Msg {
		return commitDoneMsg{plan: plan, err: m.engine.Commit(context.Background(), plan, in)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tableLoadedMsg:
		if msg.err != nil {
			m.statusLine = msg.err.Error()
		} else {
			m.refreshTableRows()
		}
		return m, nil

	case boardLoadedMsg:
		if msg.err != nil {
			m.statusLine = msg.err.Error()
		} else {
			m.boardLoaded = true
		}
		m.clampSelection()
		return m, nil

	case columnLoadedMsg:
		if msg.err != nil {
			m.statusLine = msg.err.Error()
		}
		m.clampSelection()
		return m, nil

	case commitDoneMsg:
		if msg.err != nil {
			m.statusLine = msg.err.Error()
		} else if msg.plan.Action != engine.ActionNone {
			m.statusLine = fmt.Sprintf("Status updated: %s", msg.plan.To)
			m.refreshTableRows()
		}
		m.clampSelection()
		return m, nil

	case followUpSavedMsg:
		if msg.err != nil {
			m.statusLine = msg.err.Error()
		} else {
			m.statusLine = "Follow-up added"
		}
		return m, nil

	case itemToggledMsg:
		if msg.err != nil {
			m.statusLine = msg.err.Error()
		}
		return m, nil

	case tea.KeyMsg:
		if m.dialog != nil {
			var cmd tea.Cmd
			m.dialog, cmd = m.dialog.update(msg, &m)
			return m, cmd
		}
		return m.handleKey(msg)
	}

	if m.dialog == nil && m.view == viewTable {
		var cmd tea.Cmd
		m.tableUI, cmd = m.tableUI.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab":
		if m.view == viewTable {
			m.view = viewKanban
			m.statusLine = ""
			if !m.boardLoaded {
				return m, m.loadBoard()
			}
			return m, nil
		}
		m.view = viewTable
		m.statusLine = ""
		return m, nil
	case "r":
		return m, tea.Batch(
			func() tea.Msg { return tableLoadedMsg{err: m.tbl.Refetch(context.Background())} },
			m.loadBoard(),
		)
	case "/":
		m.dialog = newSearchDialog(m.view, m.tbl.Search())
		return m, nil
	}

	if m.view == viewTable {
		return m.handleTableKey(msg)
	}
	return m.handleKanbanKey(msg)
}

func (m Model) handleTableKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "right", "n":
		if m.tbl.Page() < m.tbl.TotalPages() {
			return m, m.loadTable(m.tbl.Page()+1, m.tbl.Search(), m.tbl.StatusFilter())
		}
		return m, nil
	case "left", "p":
		if m.tbl.Page() > 1 {
			return m, m.loadTable(m.tbl.Page()-1, m.tbl.Search(), m.tbl.StatusFilter())
		}
		return m, nil
	case "f":
		// cycle the status filter through the allowed statuses
		next := nextFilter(m.sess.AllowedStatuses(), m.tbl.StatusFilter())
		return m, m.loadTable(1, m.tbl.Search(), next)
	case "u":
		if lead := m.selectedTableLead(); lead != nil {
			m.dialog = newFollowUpDialog(lead, nil)
		}
		return m, nil
	case "o":
		if lead := m.selectedTableLead(); lead != nil {
			m.dialog = newOrderExecDialog(lead)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.tableUI, cmd = m.tableUI.Update(msg)
	return m, cmd
}

func nextFilter(allowed []pipeline.Status, current pipeline.Status) pipeline.Status {
	if current == "" {
		if len(allowed) == 0 {
			return ""
		}
		return allowed[0]
	}
	for i, st := range allowed {
		if st == current {
			if i+1 < len(allowed) {
				return allowed[i+1]
			}
			return "" // back to unfiltered
		}
	}
	return ""
}

func (m *Model) selectedTableLead() *models.Lead {
	leads := m.tbl.Leads()
	idx := m.tableUI.Cursor()
	if idx < 0 || idx >= len(leads) {
		return nil
	}
	l := leads[idx]
	return &l
}

func (m *Model) refreshTableRows() {
	leads := m.tbl.Leads()
	rows := make([]table.Row, 0, len(leads))
	for _, l := range leads {
		company, client := "-", "-"
		if l.AccountMaster != nil {
			company, client = l.AccountMaster.CompanyName, l.AccountMaster.ClientName
		}
		rows = append(rows, table.Row{
			company,
			client,
			l.LeadDate.Format("02.01.2006"),
			l.ClientType,
			string(l.LeadStatus),
			l.TotalAmount.StringFixed(2),
		})
	}
	m.tableUI.SetRows(rows)
}

func (m Model) View() string {
	if m.dialog != nil {
		return m.dialog.view(&m)
	}
	var body string
	if m.view == viewTable {
		body = m.viewTableScreen()
	} else {
		body = m.viewKanbanScreen()
	}
	return body + "\n" + statusBarStyle.Render(m.statusLine) + "\n" + m.helpLine()
}

func (m Model) viewTableScreen() string {
	header := titleStyle.Render("Leads — Table View")
	pager := fmt.Sprintf("page %d/%d, %d records", m.tbl.Page(), m.tbl.TotalPages(), m.tbl.TotalRecords())
	if f := m.tbl.StatusFilter(); f != "" {
		pager += fmt.Sprintf("  filter: %s", f)
	}
	if s := m.tbl.Search(); s != "" {
		pager += fmt.Sprintf("  search: %q", s)
	}
	return header + "\n" + m.tableUI.View() + "\n" + faintStyle.Render(pager)
}

func (m Model) helpLine() string {
	if m.view == viewTable {
		return faintStyle.Render("tab kanban · ←/→ page · f filter · / search · u follow-up · o items · r refresh · q quit")
	}
	if m.adapter.Carrying() != nil {
		return faintStyle.Render("←/→ choose column · space drop · esc cancel")
	}
	return faintStyle.Render("tab table · ←/→/↑/↓ select · space pick up · / search · u follow-up · o items · r refresh · q quit")
}
