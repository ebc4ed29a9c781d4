package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fieldgrid/fieldgrid-console/internal/api"
	"github.com/fieldgrid/fieldgrid-console/internal/catalog"
	"github.com/fieldgrid/fieldgrid-console/internal/list"
	"github.com/fieldgrid/fieldgrid-console/internal/session"
)

type screenMode int

const (
	modeBrowse screenMode = iota
	modeSearch
	modeFilter
	modeForm
)

// listScreen renders one entity collection through its list controller.
type listScreen struct {
	entity catalog.Entity
	ctrl   *list.Controller
	sess   *session.Session

	mode   screenMode
	cursor int

	search       textinput.Model
	filterInputs []textinput.Model
	filterIdx    int
	formInputs   []textinput.Model
	formIdx      int

	inline string
	state  list.State
}

func newListScreen(entity catalog.Entity, ctrl *list.Controller, sess *session.Session) *listScreen {
	search := textinput.New()
	search.Placeholder = "search " + entity.Title + "…"
	search.CharLimit = 120

	s := &listScreen{
		entity: entity,
		ctrl:   ctrl,
		sess:   sess,
		search: search,
	}
	for _, field := range entity.FilterFields {
		in := textinput.New()
		in.Placeholder = field
		s.filterInputs = append(s.filterInputs, in)
	}
	return s
}

// initCmd loads the first page.
func (s *listScreen) initCmd() tea.Cmd {
	return s.run(func(ctx context.Context) error {
		return s.ctrl.FetchPage(ctx, 1)
	})
}

// run wraps a controller call as a command; the refreshMsg makes the screen
// re-snapshot once the call finishes.
func (s *listScreen) run(fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		_ = fn(context.Background())
		return refreshMsg{}
	}
}

func (s *listScreen) refresh() {
	s.state = s.ctrl.Snapshot()
	if s.cursor >= len(s.state.Rows) {
		s.cursor = len(s.state.Rows) - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

func (s *listScreen) update(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case refreshMsg:
		s.refresh()
		return nil, true
	case tea.KeyMsg:
		switch s.mode {
		case modeSearch:
			return s.updateSearch(msg), true
		case modeFilter:
			return s.updateFilter(msg), true
		case modeForm:
			return s.updateForm(msg), true
		default:
			return s.updateBrowse(msg)
		}
	}
	return nil, false
}

// updateBrowse handles table navigation and actions. The second return is
// false when the key should bubble up to the app (back/quit).
func (s *listScreen) updateBrowse(msg tea.KeyMsg) (tea.Cmd, bool) {
	st := s.state
	switch msg.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(st.Rows)-1 {
			s.cursor++
		}
	case "left", "h":
		return s.run(s.ctrl.PreviousPage), true
	case "right", "l":
		return s.run(s.ctrl.NextPage), true
	case "/":
		if s.entity.Search {
			s.mode = modeSearch
			s.search.SetValue(st.SearchQuery)
			s.search.Focus()
		}
	case "f":
		if len(s.entity.FilterFields) > 0 {
			s.mode = modeFilter
			s.filterIdx = 0
			s.filterInputs[0].Focus()
		}
	case "F":
		if len(s.entity.FilterFields) > 0 {
			return s.run(s.ctrl.ClearFilters), true
		}
	case " ":
		if row := s.currentRow(); row != nil {
			s.ctrl.ToggleRowSelect(row.ID())
			s.refresh()
		}
	case "a":
		s.ctrl.ToggleSelectAll()
		s.refresh()
	case "n":
		if len(s.entity.Fields) > 0 {
			s.ctrl.OpenCreateModal()
			s.openForm(false)
		}
	case "enter", "e":
		if row := s.currentRow(); row != nil && len(s.entity.Fields) > 0 {
			s.ctrl.OpenEditModal(*row)
			s.openForm(true)
		}
	case "t":
		if row := s.currentRow(); row != nil && s.entity.StatusToggle {
			id := row.ID()
			return s.run(func(ctx context.Context) error {
				return s.ctrl.ToggleStatus(ctx, id)
			}), true
		}
	case "d":
		if row := s.currentRow(); row != nil && s.sess.CanDelete() {
			id := row.ID()
			return s.run(func(ctx context.Context) error {
				return s.ctrl.DeleteRow(ctx, id)
			}), true
		}
	case "D":
		if s.sess.CanDelete() {
			return s.run(s.ctrl.BulkDelete), true
		}
	case "x":
		if s.entity.Export {
			return s.run(func(ctx context.Context) error {
				_, err := s.ctrl.DownloadExcel(ctx)
				return err
			}), true
		}
	case "r":
		return s.run(func(ctx context.Context) error {
			return s.ctrl.GoToPage(ctx, s.state.Page)
		}), true
	default:
		return nil, false
	}
	return nil, true
}

func (s *listScreen) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		s.mode = modeBrowse
		s.search.Blur()
		return nil
	case "enter":
		s.mode = modeBrowse
		q := s.search.Value()
		s.search.Blur()
		return s.run(func(ctx context.Context) error {
			return s.ctrl.Search(ctx, q)
		})
	}
	var cmd tea.Cmd
	s.search, cmd = s.search.Update(msg)
	// Clearing the box reverts to the plain listing without a submit.
	value := s.search.Value()
	revert := s.run(func(ctx context.Context) error {
		s.ctrl.SetSearchQuery(ctx, value)
		return nil
	})
	return tea.Batch(cmd, revert)
}

func (s *listScreen) updateFilter(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		s.mode = modeBrowse
		s.blurFilters()
		return nil
	case "tab", "down":
		s.moveFilterFocus(1)
		return nil
	case "shift+tab", "up":
		s.moveFilterFocus(-1)
		return nil
	case "enter":
		s.mode = modeBrowse
		s.blurFilters()
		for i, field := range s.entity.FilterFields {
			s.ctrl.SetFilter(field, strings.TrimSpace(s.filterInputs[i].Value()))
		}
		return s.run(s.ctrl.ApplyFilters)
	}
	var cmd tea.Cmd
	s.filterInputs[s.filterIdx], cmd = s.filterInputs[s.filterIdx].Update(msg)
	return cmd
}

func (s *listScreen) updateForm(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		s.mode = modeBrowse
		s.ctrl.CloseModal()
		s.refresh()
		return nil
	case "tab", "down":
		s.moveFormFocus(1)
		return nil
	case "shift+tab", "up":
		s.moveFormFocus(-1)
		return nil
	case "enter":
		for i, field := range s.entity.Fields {
			s.ctrl.SetDraftField(field.Key, strings.TrimSpace(s.formInputs[i].Value()))
		}
		return s.run(func(ctx context.Context) error {
			if err := s.ctrl.SubmitModal(ctx); err != nil {
				return err
			}
			s.mode = modeBrowse
			return nil
		})
	}
	var cmd tea.Cmd
	s.formInputs[s.formIdx], cmd = s.formInputs[s.formIdx].Update(msg)
	return cmd
}

func (s *listScreen) openForm(editing bool) {
	s.refresh()
	s.formInputs = nil
	draft := s.state.Modal.Draft
	for _, field := range s.entity.Fields {
		in := textinput.New()
		in.Placeholder = field.Label
		if editing {
			in.SetValue(draft.String(field.Key))
		}
		s.formInputs = append(s.formInputs, in)
	}
	s.formIdx = 0
	if len(s.formInputs) > 0 {
		s.formInputs[0].Focus()
	}
	s.mode = modeForm
}

func (s *listScreen) moveFilterFocus(delta int) {
	s.filterInputs[s.filterIdx].Blur()
	s.filterIdx = (s.filterIdx + delta + len(s.filterInputs)) % len(s.filterInputs)
	s.filterInputs[s.filterIdx].Focus()
}

func (s *listScreen) moveFormFocus(delta int) {
	s.formInputs[s.formIdx].Blur()
	s.formIdx = (s.formIdx + delta + len(s.formInputs)) % len(s.formInputs)
	s.formInputs[s.formIdx].Focus()
}

func (s *listScreen) blurFilters() {
	for i := range s.filterInputs {
		s.filterInputs[i].Blur()
	}
}

func (s *listScreen) currentRow() *api.Record {
	if s.cursor < 0 || s.cursor >= len(s.state.Rows) {
		return nil
	}
	row := s.state.Rows[s.cursor]
	return &row
}

func (s *listScreen) view(width int) string {
	var b strings.Builder

	title := s.entity.Title + " Master"
	if s.state.SearchMode {
		title += fmt.Sprintf("  [search: %q]", s.state.SearchQuery)
	}
	if s.state.FilterMode {
		title += "  [filtered]"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	switch s.mode {
	case modeSearch:
		b.WriteString("Search: " + s.search.View() + "\n\n")
	case modeFilter:
		b.WriteString("Filters (enter to apply, esc to cancel):\n")
		for i, field := range s.entity.FilterFields {
			b.WriteString("  " + pad(field, 16) + s.filterInputs[i].View() + "\n")
		}
		b.WriteString("\n")
	case modeForm:
		return b.String() + s.formView()
	}

	b.WriteString(s.tableView())
	b.WriteString("\n" + s.footerView(width))
	return b.String()
}

func (s *listScreen) tableView() string {
	st := s.state
	var b strings.Builder

	header := "   "
	for _, col := range s.entity.Columns {
		header += formatHeader(col)
	}
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	if st.Loading {
		b.WriteString("  loading…\n")
		return b.String()
	}
	if len(st.Rows) == 0 {
		b.WriteString("  no records\n")
		return b.String()
	}

	for i, row := range st.Rows {
		mark := "[ ] "
		if st.SelectedIDs[row.ID()] {
			mark = checkedStyle.Render("[x] ")
		}
		line := mark
		for _, col := range s.entity.Columns {
			if col.Key == "status" {
				line += renderStatus(row.String(col.Key), col.Width+2)
				continue
			}
			line += formatCell(row, col) + "  "
		}
		if i == s.cursor {
			b.WriteString(selectedRowStyle.Render(line))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (s *listScreen) formView() string {
	var b strings.Builder
	if s.state.Modal.Editing {
		b.WriteString(titleStyle.Render("Edit " + s.entity.Title))
	} else {
		b.WriteString(titleStyle.Render("New " + s.entity.Title))
	}
	b.WriteString("\n\n")
	for i, field := range s.entity.Fields {
		label := field.Label
		if field.Required {
			label += " *"
		}
		b.WriteString("  " + pad(label, 20) + s.formInputs[i].View() + "\n")
	}
	b.WriteString("\n" + footerStyle.Render("enter save · tab next field · esc cancel"))
	return b.String()
}

func (s *listScreen) footerView(width int) string {
	st := s.state
	parts := []string{
		fmt.Sprintf("Page %d of %d (%d records)", st.Page, st.TotalPages, st.TotalCount),
	}
	if n := len(st.SelectedIDs); n > 0 {
		parts = append(parts, fmt.Sprintf("%d selected", n))
	}
	if st.Downloading {
		parts = append(parts, "downloading…")
	}
	help := "←/→ page · / search · f filter · n new · e edit · t status · d delete · D bulk · x export · esc back"
	footer := footerStyle.Render(strings.Join(parts, " · "))
	return footer + "\n" + footerStyle.Render(truncate(help, width))
}

func formatHeader(col catalog.Column) string {
	return pad(col.Title, col.Width) + "  "
}

func truncate(s string, width int) string {
	if width <= 0 || len(s) <= width {
		return s
	}
	return s[:width]
}
