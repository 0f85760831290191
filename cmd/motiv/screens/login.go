package screens

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"metamotivation/internal/api"
)

// loginResultMsg carries the outcome of the async login attempt.
type loginResultMsg struct{ err error }

type loginModel struct {
	deps     Deps
	email    textinput.Model
	password textinput.Model
	focus    int
	loading  bool
	errText  string
	notice   string
}

func newLoginModel(deps Deps) loginModel {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 128
	email.Width = 40
	email.Prompt = "│ "
	email.PromptStyle = deps.Styles.Prompt
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.Width = 40
	password.Prompt = "│ "
	password.PromptStyle = deps.Styles.Prompt
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return loginModel{deps: deps, email: email, password: password}
}

func (m loginModel) enter() tea.Cmd {
	return textinput.Blink
}

func (m loginModel) update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyTab, tea.KeyDown:
			m.setFocus((m.focus + 1) % 2)
			return m, nil
		case tea.KeyShiftTab, tea.KeyUp:
			m.setFocus((m.focus + 1) % 2)
			return m, nil
		case tea.KeyCtrlR:
			return m, navigate(ScreenRegister)
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}
			return m.submit()
		}

	case loginResultMsg:
		m.loading = false
		if msg.err != nil {
			m.errText = loginErrorText(msg.err)
			return m, nil
		}
		return m, navigate(ScreenHome)
	}

	if m.loading {
		return m, nil
	}

	var cmd tea.Cmd
	if m.focus == 0 {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m *loginModel) setFocus(i int) {
	m.focus = i
	if i == 0 {
		m.email.Focus()
		m.password.Blur()
	} else {
		m.email.Blur()
		m.password.Focus()
	}
}

// submit validates the form locally, then fires the login call. Validation
// failures never reach the network.
func (m loginModel) submit() (loginModel, tea.Cmd) {
	email := strings.TrimSpace(m.email.Value())
	password := m.password.Value()

	if email == "" || password == "" {
		m.errText = "Please enter both email and password."
		return m, nil
	}

	m.errText = ""
	m.notice = ""
	m.loading = true

	deps := m.deps
	return m, func() tea.Msg {
		token, err := deps.API.Login(context.Background(), email, password)
		if err != nil {
			return loginResultMsg{err: err}
		}
		return loginResultMsg{err: deps.Session.Save(token)}
	}
}

// loginErrorText maps gateway errors to screen copy.
func loginErrorText(err error) string {
	switch api.CodeOf(err) {
	case api.CodeUnauthorized:
		return "Incorrect email or password."
	case api.CodeNetwork:
		return "Can't reach the server. Check your connection and base URL."
	default:
		return err.Error()
	}
}

func (m loginModel) view() string {
	s := m.deps.Styles
	var b strings.Builder

	b.WriteString(s.Title.Render("Welcome back") + "\n")
	b.WriteString(s.Subtitle.Render("Track your motivation. Talk to your coach.") + "\n\n")

	if m.notice != "" {
		b.WriteString(s.Warning.Render(m.notice) + "\n\n")
	}

	b.WriteString(m.fieldView(0, m.email.View()) + "\n")
	b.WriteString(m.fieldView(1, m.password.View()) + "\n")

	if m.loading {
		b.WriteString("\n" + s.Muted.Render("Signing in...") + "\n")
	}
	if m.errText != "" {
		b.WriteString("\n" + s.Error.Render(m.errText) + "\n")
	}

	b.WriteString("\n" + s.Footer.Render("enter sign in · ctrl+r create account · ctrl+c quit"))
	return b.String()
}

func (m loginModel) fieldView(i int, inner string) string {
	if m.focus == i {
		return m.deps.Styles.FieldActive.Render(inner)
	}
	return m.deps.Styles.FieldInactive.Render(inner)
}
