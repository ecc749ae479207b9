package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"finsight/internal/api"
)

// loginState holds the login/signup form. Register mode adds the name
// fields; tab cycles through whichever fields are visible.
type loginState struct {
	register bool
	focus    int
	first    textinput.Model
	last     textinput.Model
	email    textinput.Model
	password textinput.Model
	busy     bool
}

func newLoginState() loginState {
	first := textinput.New()
	first.Placeholder = "First name"
	first.CharLimit = 64

	last := textinput.New()
	last.Placeholder = "Last name"
	last.CharLimit = 64

	email := textinput.New()
	email.Placeholder = "Email"
	email.CharLimit = 128

	password := textinput.New()
	password.Placeholder = "Password"
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 128

	return loginState{first: first, last: last, email: email, password: password}
}

// fields returns pointers to the visible inputs in tab order.
func (l *loginState) fields() []*textinput.Model {
	if l.register {
		return []*textinput.Model{&l.first, &l.last, &l.email, &l.password}
	}
	return []*textinput.Model{&l.email, &l.password}
}

func (l *loginState) focusCmd() tea.Cmd {
	fields := l.fields()
	for i, f := range fields {
		if i == l.focus {
			f.Focus()
		} else {
			f.Blur()
		}
	}
	return textinput.Blink
}

func (m Model) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "down":
			m.login.focus = (m.login.focus + 1) % len(m.login.fields())
			return m, m.login.focusCmd()
		case "shift+tab", "up":
			n := len(m.login.fields())
			m.login.focus = (m.login.focus - 1 + n) % n
			return m, m.login.focusCmd()
		case "ctrl+r":
			m.login.register = !m.login.register
			m.login.focus = 0
			m.status = ""
			return m, m.login.focusCmd()
		case "enter":
			if m.login.busy {
				// A second submit while one is pending would fail fast with
				// ErrLoginInProgress anyway; don't even issue it.
				return m, nil
			}
			m.login.busy = true
			m.status = "signing in..."
			return m, m.authCmd()
		}
	}

	var cmds []tea.Cmd
	for _, f := range m.login.fields() {
		var cmd tea.Cmd
		*f, cmd = f.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) authCmd() tea.Cmd {
	register := m.login.register
	first := strings.TrimSpace(m.login.first.Value())
	last := strings.TrimSpace(m.login.last.Value())
	email := m.login.email.Value()
	password := m.login.password.Value()
	sessions := m.sessions

	return func() tea.Msg {
		ctx := context.Background()
		if register {
			sess, err := sessions.Register(ctx, first, last, email, password)
			return authResultMsg{sess: sess, err: err}
		}
		sess, err := sessions.Login(ctx, email, password)
		return authResultMsg{sess: sess, err: err}
	}
}

func (m Model) onAuthResult(msg authResultMsg) (tea.Model, tea.Cmd) {
	m.login.busy = false
	if msg.err != nil {
		m.status = errorStyle.Render(api.ErrorMessage(msg.err))
		return m, nil
	}

	m.status = okStyle.Render("signed in as " + msg.sess.Identity.Email)
	m.active = viewStock
	m.login.password.SetValue("")
	return m, m.loadWatchlistCmd()
}

func (m Model) viewLogin() string {
	var b strings.Builder

	if m.login.register {
		b.WriteString(titleStyle.Render("  Create your account"))
	} else {
		b.WriteString(titleStyle.Render("  Welcome back"))
	}
	b.WriteString("\n\n")

	for _, f := range m.login.fields() {
		b.WriteString("  " + f.View() + "\n")
	}

	b.WriteString("\n")
	if m.login.register {
		b.WriteString(dimStyle.Render("  ctrl+r: back to login"))
	} else {
		b.WriteString(dimStyle.Render("  ctrl+r: create an account instead"))
	}
	b.WriteString("\n")
	return b.String()
}
