package screens

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"metamotivation/cmd/motiv/ui"
)

// checkinResultMsg carries the outcome of the check-in submission.
type checkinResultMsg struct {
	level int
	err   error
}

// moodOption is one of the four named levels on the 1-10 scale.
type moodOption struct {
	level        int
	name         string
	emoji        string
	confirmation string
}

func moodOptions() []moodOption {
	return []moodOption{
		{2, "Low", "😞", "Thanks for being honest. Small steps count — maybe talk it through with your coach?"},
		{5, "Okay", "😐", "Noted. An okay day is still a day moving forward."},
		{8, "Good", "🙂", "Nice! Keep that momentum going."},
		{10, "Excellent", "🤩", "Fantastic! Days like this are worth remembering."},
	}
}

type checkinModel struct {
	deps      Deps
	options   []moodOption
	cursor    int
	loading   bool
	submitted *moodOption
	errText   string
}

func newCheckinModel(deps Deps) checkinModel {
	return checkinModel{deps: deps, options: moodOptions()}
}

func (m checkinModel) update(msg tea.Msg) (checkinModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		switch msg.Type {
		case tea.KeyUp, tea.KeyLeft:
			if m.cursor > 0 {
				m.cursor--
			}
		case tea.KeyDown, tea.KeyRight:
			if m.cursor < len(m.options)-1 {
				m.cursor++
			}
		case tea.KeyEnter:
			if m.submitted != nil {
				return m, navigate(ScreenHome)
			}
			return m.submit()
		}

	case checkinResultMsg:
		m.loading = false
		if msg.err != nil {
			m.errText = msg.err.Error()
			if cmd := routeAuthFailure(msg.err); cmd != nil {
				return m, cmd
			}
			return m, nil
		}
		for i := range m.options {
			if m.options[i].level == msg.level {
				m.submitted = &m.options[i]
			}
		}
	}
	return m, nil
}

func (m checkinModel) submit() (checkinModel, tea.Cmd) {
	opt := m.options[m.cursor]
	m.errText = ""
	m.loading = true

	deps := m.deps
	return m, func() tea.Msg {
		err := deps.API.SubmitCheckIn(context.Background(), opt.level)
		return checkinResultMsg{level: opt.level, err: err}
	}
}

func (m checkinModel) view() string {
	s := m.deps.Styles
	var b strings.Builder

	if m.submitted != nil {
		b.WriteString(s.Success.Render("Check-in recorded!") + "\n\n")
		b.WriteString(s.Body.Render(m.submitted.confirmation) + "\n")
		b.WriteString("\n" + s.Footer.Render("enter back to home"))
		return b.String()
	}

	b.WriteString(s.Title.Render("How motivated do you feel today?") + "\n\n")

	for i, opt := range m.options {
		line := opt.emoji + "  " + opt.name
		style := s.MenuItem
		if i == m.cursor {
			style = s.MenuSelected.Foreground(ui.MoodColor(opt.level))
			line = "▸ " + line
		} else {
			line = "  " + line
		}
		b.WriteString(style.Render(line) + "\n")
	}

	if m.loading {
		b.WriteString("\n" + s.Muted.Render("Recording...") + "\n")
	}
	if m.errText != "" {
		b.WriteString("\n" + s.Error.Render(m.errText) + "\n")
	}

	b.WriteString("\n" + s.Footer.Render("↑/↓ choose · enter record · esc back"))
	return b.String()
}
