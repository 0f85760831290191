package screens

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"metamotivation/internal/api"
)

// registerResultMsg carries the outcome of register-then-login.
type registerResultMsg struct{ err error }

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const minPasswordLen = 8

type registerModel struct {
	deps    Deps
	fields  []textinput.Model
	focus   int
	loading bool
	errText string
}

const (
	regFieldEmail = iota
	regFieldPassword
	regFieldConfirm
	regFieldCount
)

func newRegisterModel(deps Deps) registerModel {
	mk := func(placeholder string, secret bool) textinput.Model {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.CharLimit = 128
		ti.Width = 40
		ti.Prompt = "│ "
		ti.PromptStyle = deps.Styles.Prompt
		if secret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		return ti
	}

	fields := []textinput.Model{
		mk("email", false),
		mk("password (min 8 characters)", true),
		mk("confirm password", true),
	}
	fields[regFieldEmail].Focus()

	return registerModel{deps: deps, fields: fields}
}

func (m registerModel) enter() tea.Cmd {
	return textinput.Blink
}

func (m registerModel) update(msg tea.Msg) (registerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyTab, tea.KeyDown:
			m.setFocus((m.focus + 1) % regFieldCount)
			return m, nil
		case tea.KeyShiftTab, tea.KeyUp:
			m.setFocus((m.focus + regFieldCount - 1) % regFieldCount)
			return m, nil
		case tea.KeyEsc:
			return m, navigate(ScreenLogin)
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}
			return m.submit()
		}

	case registerResultMsg:
		m.loading = false
		if msg.err != nil {
			m.errText = registerErrorText(msg.err)
			return m, nil
		}
		return m, navigate(ScreenHome)
	}

	if m.loading {
		return m, nil
	}

	var cmd tea.Cmd
	m.fields[m.focus], cmd = m.fields[m.focus].Update(msg)
	return m, cmd
}

func (m *registerModel) setFocus(i int) {
	m.focus = i
	for j := range m.fields {
		if j == i {
			m.fields[j].Focus()
		} else {
			m.fields[j].Blur()
		}
	}
}

// validate applies the client-side rules. It returns a user-facing message,
// empty when the form is acceptable.
func validateRegistration(email, password, confirm string) string {
	if email == "" || password == "" || confirm == "" {
		return "Please fill in every field."
	}
	if !emailPattern.MatchString(email) {
		return "That email address doesn't look valid."
	}
	if len(password) < minPasswordLen {
		return "Password must be at least 8 characters."
	}
	if password != confirm {
		return "Passwords don't match."
	}
	return ""
}

func (m registerModel) submit() (registerModel, tea.Cmd) {
	email := strings.ToLower(strings.TrimSpace(m.fields[regFieldEmail].Value()))
	password := m.fields[regFieldPassword].Value()
	confirm := m.fields[regFieldConfirm].Value()

	if msg := validateRegistration(email, password, confirm); msg != "" {
		m.errText = msg
		return m, nil
	}

	m.errText = ""
	m.loading = true

	deps := m.deps
	return m, func() tea.Msg {
		ctx := context.Background()
		if err := deps.API.Register(ctx, email, password); err != nil {
			return registerResultMsg{err: err}
		}
		// Registration does not authenticate; sign in with the fresh
		// account to obtain the credential.
		token, err := deps.API.Login(ctx, email, password)
		if err != nil {
			return registerResultMsg{err: err}
		}
		return registerResultMsg{err: deps.Session.Save(token)}
	}
}

// registerErrorText maps gateway errors to screen copy.
func registerErrorText(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Code == api.CodeAlreadyRegistered {
		return "That email is already registered. Try signing in instead."
	}
	return err.Error()
}

func (m registerModel) view() string {
	s := m.deps.Styles
	var b strings.Builder

	b.WriteString(s.Title.Render("Create your account") + "\n\n")

	for i, f := range m.fields {
		b.WriteString(m.fieldView(i, f.View()) + "\n")
	}

	if m.loading {
		b.WriteString("\n" + s.Muted.Render("Creating account...") + "\n")
	}
	if m.errText != "" {
		b.WriteString("\n" + s.Error.Render(m.errText) + "\n")
	}

	b.WriteString("\n" + s.Footer.Render("enter create · esc back to sign in · ctrl+c quit"))
	return b.String()
}

func (m registerModel) fieldView(i int, inner string) string {
	if m.focus == i {
		return m.deps.Styles.FieldActive.Render(inner)
	}
	return m.deps.Styles.FieldInactive.Render(inner)
}
