// Package tui provides a terminal browser for the inventory: a searchable
// item list with a detail pane, loaded through the same service the HTTP
// API uses.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/okibler/homedex/internal/inventory"
)

// ItemLister is the slice of the inventory service the browser needs.
type ItemLister interface {
	ListItems(ctx context.Context, q inventory.Query, offline bool) ([]inventory.Item, error)
}

// listHeight is the number of items shown at once.
const listHeight = 12

// Messages produced by the load command.
type (
	itemsLoadedMsg struct {
		items []inventory.Item
	}

	loadFailedMsg struct {
		err error
	}
)

// Model is the Bubble Tea model for the item browser.
type Model struct {
	svc     ItemLister
	ctx     context.Context
	offline bool

	spinner spinner.Model
	search  textinput.Model

	items   []inventory.Item
	visible []inventory.Item
	cursor  int
	offset  int

	selected *inventory.Item
	loading  bool
	err      error
	quitting bool

	titleStyle    lipgloss.Style
	headerStyle   lipgloss.Style
	cursorStyle   lipgloss.Style
	dimStyle      lipgloss.Style
	errorStyle    lipgloss.Style
	offlineStyle  lipgloss.Style
	selectedStyle lipgloss.Style
}

// New creates a browser model. Items are loaded on Init.
func New(ctx context.Context, svc ItemLister, offline bool) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	search := textinput.New()
	search.Placeholder = "search items"
	search.Prompt = "/ "
	search.CharLimit = 64

	return Model{
		svc:     svc,
		ctx:     ctx,
		offline: offline,
		spinner: s,
		search:  search,
		loading: true,

		titleStyle:    lipgloss.NewStyle().Bold(true),
		headerStyle:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")),
		cursorStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("205")),
		dimStyle:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		errorStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		offlineStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		selectedStyle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
	}
}

// Init starts the spinner and kicks off the initial load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load())
}

// load fetches the full item list once; searching filters locally after.
func (m Model) load() tea.Cmd {
	svc, ctx, offline := m.svc, m.ctx, m.offline
	return func() tea.Msg {
		items, err := svc.ListItems(ctx, inventory.Query{}, offline)
		if err != nil {
			return loadFailedMsg{err: err}
		}
		return itemsLoadedMsg{items: items}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case itemsLoadedMsg:
		m.loading = false
		m.err = nil
		m.items = msg.items
		m.applySearch()
		return m, nil

	case loadFailedMsg:
		m.loading = false
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// While the search box has focus, most keys type into it.
	if m.search.Focused() {
		switch msg.String() {
		case "enter", "esc":
			m.search.Blur()
			return m, nil
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.applySearch()
		return m, cmd
	}

	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit

	case "esc":
		if m.selected != nil {
			m.selected = nil
			return m, nil
		}
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.applySearch()
		}
		return m, nil

	case "/":
		m.selected = nil
		m.search.Focus()
		return m, textinput.Blink

	case "r":
		m.loading = true
		m.selected = nil
		return m, tea.Batch(m.spinner.Tick, m.load())

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			if m.cursor < m.offset {
				m.offset = m.cursor
			}
		}
		return m, nil

	case "down", "j":
		if m.cursor < len(m.visible)-1 {
			m.cursor++
			if m.cursor >= m.offset+listHeight {
				m.offset = m.cursor - listHeight + 1
			}
		}
		return m, nil

	case "enter":
		if m.cursor < len(m.visible) {
			item := m.visible[m.cursor]
			m.selected = &item
		}
		return m, nil
	}

	return m, nil
}

// applySearch re-filters the visible list and clamps the cursor.
func (m *Model) applySearch() {
	m.visible = inventory.FilterBySearch(m.items, m.search.Value())
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.offset > m.cursor {
		m.offset = m.cursor
	}
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(m.headerStyle.Render("Homedex"))
	if m.offline {
		b.WriteString("  " + m.offlineStyle.Render("[offline]"))
	}
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString(fmt.Sprintf("%s Loading inventory...\n", m.spinner.View()))
		return b.String()
	}

	if m.err != nil {
		b.WriteString(m.errorStyle.Render("✗ " + m.err.Error()))
		b.WriteString("\n\n")
		b.WriteString(m.dimStyle.Render("r to retry, q to quit"))
		b.WriteString("\n")
		return b.String()
	}

	if m.selected != nil {
		b.WriteString(m.renderDetail(*m.selected))
		b.WriteString("\n")
		b.WriteString(m.dimStyle.Render("esc to go back, q to quit"))
		b.WriteString("\n")
		return b.String()
	}

	if m.search.Focused() || m.search.Value() != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n\n")
	}

	if len(m.visible) == 0 {
		b.WriteString(m.dimStyle.Render("No items found."))
		b.WriteString("\n")
	} else {
		end := m.offset + listHeight
		if end > len(m.visible) {
			end = len(m.visible)
		}
		for i := m.offset; i < end; i++ {
			b.WriteString(m.renderRow(i))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(m.dimStyle.Render(fmt.Sprintf("%d/%d items", m.cursor+1, len(m.visible))))
		b.WriteString("\n")
	}

	b.WriteString(m.dimStyle.Render("↑/↓ navigate · enter details · / search · r reload · q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderRow(i int) string {
	item := m.visible[i]

	title := truncate(item.Title, 40)

	location := item.RoomName
	if len(item.BoxNames) > 0 {
		if location != "" {
			location += " / "
		}
		location += strings.Join(item.BoxNames, ", ")
	}

	if i == m.cursor {
		return fmt.Sprintf("  %s %s %s",
			m.cursorStyle.Render(">"),
			m.selectedStyle.Render(title),
			m.dimStyle.Render(location),
		)
	}
	return fmt.Sprintf("    %s %s", title, m.dimStyle.Render(location))
}

func (m Model) renderDetail(item inventory.Item) string {
	var b strings.Builder
	b.WriteString(m.titleStyle.Render(item.Title))
	b.WriteString("\n\n")

	write := func(label, value string) {
		if value != "" {
			b.WriteString(fmt.Sprintf("  %s %s\n", m.dimStyle.Render(label+":"), value))
		}
	}

	write("Room", item.RoomName)
	write("Boxes", strings.Join(item.BoxNames, ", "))
	write("Status", item.Status)
	write("Priority", item.Priority)
	write("Category", item.Category)
	write("Assigned to", item.AssignedTo)
	write("Date", item.Date)
	write("ID", item.ID)
	if len(item.Images) > 0 {
		write("Images", fmt.Sprintf("%d", len(item.Images)))
	}
	if len(item.Attachments) > 0 {
		write("Attachments", fmt.Sprintf("%d", len(item.Attachments)))
	}

	if item.Description != "" {
		b.WriteString("\n")
		b.WriteString(item.Description)
		b.WriteString("\n")
	}

	return b.String()
}

// truncate shortens s to at most max runes, appending "..." when it cuts.
// Rune-based so multibyte titles never split mid-character.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
