package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"finsight/internal/api"
	"finsight/internal/watchlist"
)

// watchState holds the rendered watchlist plus the inline add form.
type watchState struct {
	entries  []watchlist.Entry
	selected int
	loaded   bool

	adding    bool
	addFocus  int // 0 symbol, 1 name
	addSymbol textinput.Model
	addName   textinput.Model
	pending   string // symbol of an add/remove awaiting confirmation
}

func newWatchState() watchState {
	symbol := textinput.New()
	symbol.Placeholder = "symbol"
	symbol.CharLimit = 12
	symbol.Width = 10

	name := textinput.New()
	name.Placeholder = "company name"
	name.CharLimit = 64
	name.Width = 28

	return watchState{addSymbol: symbol, addName: name}
}

func (m Model) updateWatchlist(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.watch.adding {
		switch key.String() {
		case "tab", "shift+tab":
			m.watch.addFocus = 1 - m.watch.addFocus
			if m.watch.addFocus == 0 {
				m.watch.addSymbol.Focus()
				m.watch.addName.Blur()
			} else {
				m.watch.addSymbol.Blur()
				m.watch.addName.Focus()
			}
			return m, textinput.Blink
		case "enter":
			m.watch.adding = false
			m.watch.addSymbol.Blur()
			m.watch.addName.Blur()
			return m, m.addWatchlistCmd(m.watch.addSymbol.Value(), m.watch.addName.Value())
		case "esc":
			m.watch.adding = false
			m.watch.addSymbol.Blur()
			m.watch.addName.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		if m.watch.addFocus == 0 {
			m.watch.addSymbol, cmd = m.watch.addSymbol.Update(msg)
		} else {
			m.watch.addName, cmd = m.watch.addName.Update(msg)
		}
		return m, cmd
	}

	switch key.String() {
	case "a":
		m.watch.adding = true
		m.watch.addFocus = 0
		m.watch.addSymbol.SetValue("")
		m.watch.addName.SetValue("")
		m.watch.addSymbol.Focus()
		return m, textinput.Blink
	case "x", "d":
		if m.watch.selected >= 0 && m.watch.selected < len(m.watch.entries) {
			entry := m.watch.entries[m.watch.selected]
			m.watch.pending = entry.Symbol
			m.status = "removing " + entry.Symbol + "..."
			return m, m.removeWatchlistCmd(entry.ID)
		}
	case "r":
		m.status = "reloading watchlist..."
		return m, m.loadWatchlistCmd()
	case "up", "k":
		if m.watch.selected > 0 {
			m.watch.selected--
		}
	case "down", "j":
		if m.watch.selected < len(m.watch.entries)-1 {
			m.watch.selected++
		}
	case "enter":
		if m.watch.selected >= 0 && m.watch.selected < len(m.watch.entries) {
			m.active = viewStock
			return m.searchStock(m.watch.entries[m.watch.selected].Symbol)
		}
	}
	return m, nil
}

func (m Model) loadWatchlistCmd() tea.Cmd {
	wl := m.watchlist
	return func() tea.Msg {
		entries, err := wl.Load(context.Background())
		return watchlistLoadedMsg{entries: entries, err: err}
	}
}

func (m Model) addWatchlistCmd(symbol, name string) tea.Cmd {
	wl := m.watchlist
	return func() tea.Msg {
		entry, err := wl.Add(context.Background(), symbol, name)
		return watchlistAddedMsg{entry: entry, err: err}
	}
}

func (m Model) removeWatchlistCmd(id string) tea.Cmd {
	wl := m.watchlist
	return func() tea.Msg {
		err := wl.Remove(context.Background(), id)
		return watchlistRemovedMsg{id: id, err: err}
	}
}

func (m Model) onWatchlistLoaded(msg watchlistLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.status = errorStyle.Render(api.ErrorMessage(msg.err))
		return m, nil
	}
	m.watch.entries = msg.entries
	m.watch.loaded = true
	if m.watch.selected >= len(msg.entries) {
		m.watch.selected = 0
	}
	if m.status != "" && !strings.HasPrefix(m.status, "signed in") {
		m.status = ""
	}
	return m, nil
}

func (m Model) onWatchlistAdded(msg watchlistAddedMsg) (tea.Model, tea.Cmd) {
	m.watch.pending = ""
	if msg.err != nil {
		m.status = errorStyle.Render(api.ErrorMessage(msg.err))
		return m, nil
	}
	m.watch.entries = m.watchlist.Snapshot()
	m.status = okStyle.Render("added " + msg.entry.Symbol)
	return m, nil
}

func (m Model) onWatchlistRemoved(msg watchlistRemovedMsg) (tea.Model, tea.Cmd) {
	sym := m.watch.pending
	m.watch.pending = ""
	if msg.err != nil {
		m.status = errorStyle.Render(api.ErrorMessage(msg.err))
		return m, nil
	}
	m.watch.entries = m.watchlist.Snapshot()
	if m.watch.selected >= len(m.watch.entries) && m.watch.selected > 0 {
		m.watch.selected--
	}
	if sym != "" {
		m.status = okStyle.Render("removed " + sym)
	} else {
		m.status = ""
	}
	return m, nil
}

func (m Model) viewWatchlist() string {
	var b strings.Builder
	b.WriteString("  " + titleStyle.Render("Watchlist") + "\n\n")

	if m.watch.adding {
		b.WriteString("  " + m.watch.addSymbol.View() + "  " + m.watch.addName.View() + "\n")
		b.WriteString(dimStyle.Render("  tab switch field  enter add  esc cancel") + "\n\n")
	}

	if len(m.watch.entries) == 0 {
		if m.watch.loaded {
			b.WriteString(dimStyle.Render("  nothing watched yet, press a to add") + "\n")
		} else {
			b.WriteString(dimStyle.Render("  loading...") + "\n")
		}
		return b.String()
	}

	for i, e := range m.watch.entries {
		line := fmt.Sprintf("  %-8s %s", e.Symbol, e.Name)
		if i == m.watch.selected && !m.watch.adding {
			line = selectedStyle.Render("> " + line[2:])
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n" + dimStyle.Render("  enter: open in stock view") + "\n")
	return b.String()
}
