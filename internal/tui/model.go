// Package tui implements the interactive terminal client: login, symbol
// search with candlestick rendering, news sentiment charts, and the
// watchlist view.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"finsight/internal/latest"
	"finsight/internal/market"
	"finsight/internal/news"
	"finsight/internal/session"
	"finsight/internal/watchlist"
)

// view identifies the active screen.
type view int

const (
	viewLogin view = iota
	viewStock
	viewNews
	viewWatchlist
)

// Messages.
type authResultMsg struct {
	sess *session.Session
	err  error
}

type marketResultMsg struct {
	epoch   uint64
	symbol  string
	quote   *market.Quote
	history []market.HistoryPoint
	err     error
}

type newsResultMsg struct {
	epoch  uint64
	symbol string
	items  []news.Item
	err    error
}

type watchlistLoadedMsg struct {
	entries []watchlist.Entry
	err     error
}

type watchlistAddedMsg struct {
	entry *watchlist.Entry
	err   error
}

type watchlistRemovedMsg struct {
	id  string
	err error
}

// Model is the top-level bubbletea model.
type Model struct {
	sessions  *session.Store
	market    *market.Service
	news      *news.Service
	watchlist *watchlist.Synchronizer
	log       *slog.Logger

	active        view
	width, height int
	status        string // transient status/error line

	login     loginState
	stock     stockState
	newsView  newsState
	watch     watchState

	// Latest-request-wins guards: one epoch stream per resource, so a slow
	// stale response can never overwrite a newer search result.
	marketEpochs latest.Tracker
	newsEpochs   latest.Tracker
}

// New builds the TUI model around the already-wired services.
func New(sessions *session.Store, mkt *market.Service, nws *news.Service, wl *watchlist.Synchronizer, log *slog.Logger) Model {
	if log == nil {
		log = slog.Default()
	}

	m := Model{
		sessions:  sessions,
		market:    mkt,
		news:      nws,
		watchlist: wl,
		log:       log,
		login:     newLoginState(),
		stock:     newStockState(),
		newsView:  newNewsState(),
		watch:     newWatchState(),
	}
	if sessions.Authenticated() || sessions.Token() != "" {
		m.active = viewStock
	}
	return m
}

func (m Model) Init() tea.Cmd {
	if m.active != viewLogin {
		return m.loadWatchlistCmd()
	}
	return m.login.focusCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// Global keys that apply when no text input is capturing keystrokes.
		if !m.typing() {
			switch msg.String() {
			case "q", "ctrl+c":
				return m, tea.Quit
			case "1":
				if m.active != viewLogin {
					m.active = viewStock
					return m, nil
				}
			case "2":
				if m.active != viewLogin {
					m.active = viewNews
					return m, nil
				}
			case "3":
				if m.active != viewLogin {
					m.active = viewWatchlist
					return m, nil
				}
			case "ctrl+l":
				m.sessions.Logout(context.Background())
				m.active = viewLogin
				m.status = "logged out"
				return m, m.login.focusCmd()
			}
		} else if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case authResultMsg:
		return m.onAuthResult(msg)
	case marketResultMsg:
		return m.onMarketResult(msg)
	case newsResultMsg:
		return m.onNewsResult(msg)
	case watchlistLoadedMsg:
		return m.onWatchlistLoaded(msg)
	case watchlistAddedMsg:
		return m.onWatchlistAdded(msg)
	case watchlistRemovedMsg:
		return m.onWatchlistRemoved(msg)
	}

	switch m.active {
	case viewLogin:
		return m.updateLogin(msg)
	case viewStock:
		return m.updateStock(msg)
	case viewNews:
		return m.updateNews(msg)
	case viewWatchlist:
		return m.updateWatchlist(msg)
	}
	return m, nil
}

// typing reports whether a text input currently owns the keyboard.
func (m Model) typing() bool {
	switch m.active {
	case viewLogin:
		return true
	case viewStock:
		return m.stock.input.Focused()
	case viewNews:
		return m.newsView.input.Focused()
	case viewWatchlist:
		return m.watch.adding
	}
	return false
}

func (m Model) View() string {
	var body string
	switch m.active {
	case viewLogin:
		body = m.viewLogin()
	case viewStock:
		body = m.viewStock()
	case viewNews:
		body = m.viewNews()
	case viewWatchlist:
		body = m.viewWatchlist()
	}

	header := m.headerBar()
	footer := m.footerBar()
	return header + "\n" + body + "\n" + footer
}

func (m Model) headerBar() string {
	who := "not signed in"
	if sess := m.sessions.Current(); sess != nil && sess.Identity != nil {
		who = sess.Identity.Email
	} else if m.sessions.Token() != "" {
		who = "session restored"
	}
	text := fmt.Sprintf(" finsight    [1] stock  [2] news  [3] watchlist    %s ", who)
	return headerStyle.Render(padOrTrunc(text, m.width))
}

func (m Model) footerBar() string {
	var hints string
	switch m.active {
	case viewLogin:
		hints = " tab next field  enter submit  ctrl+r toggle signup  ctrl+c quit"
	case viewStock:
		hints = " / search  up/dn hover bar  2 news  3 watchlist  ctrl+l logout  q quit"
	case viewNews:
		hints = " / search  1 stock  3 watchlist  q quit"
	case viewWatchlist:
		hints = " a add  x remove  r reload  up/dn select  1 stock  q quit"
	}
	line := hints
	if m.status != "" {
		line = hints + "   " + m.status
	}
	return footerStyle.Render(padOrTrunc(line, m.width))
}

// padOrTrunc pads s with spaces to width, or truncates if longer. s may
// carry ANSI escapes (styled status text), so measuring and cutting go by
// visible cells, never bytes.
func padOrTrunc(s string, width int) string {
	if width <= 0 {
		return s
	}
	visible := lipgloss.Width(s)
	if visible >= width {
		return ansi.Truncate(s, width, "")
	}
	return s + strings.Repeat(" ", width-visible)
}
