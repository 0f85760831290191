package screens

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type homeModel struct {
	deps   Deps
	cursor int
	items  []homeItem
}

type homeItem struct {
	label  string
	target Screen
	logout bool
}

func newHomeModel(deps Deps) homeModel {
	return homeModel{
		deps: deps,
		items: []homeItem{
			{label: "📝 Daily check-in", target: ScreenCheckIn},
			{label: "📋 Motivation questionnaire", target: ScreenQuestionnaire},
			{label: "📊 Your progress", target: ScreenProgress},
			{label: "💬 Talk to your coach", target: ScreenChat},
			{label: "🚪 Log out", logout: true},
		},
	}
}

func (m homeModel) update(msg tea.Msg) (homeModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.Type {
	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}
	case tea.KeyDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case tea.KeyEnter:
		item := m.items[m.cursor]
		if item.logout {
			if err := m.deps.Session.Clear(); err != nil {
				m.deps.Log.Warn("credential clear failed", zap.Error(err))
			}
			return m, navigate(ScreenLogin)
		}
		return m, navigate(item.target)
	}
	return m, nil
}

func (m homeModel) view() string {
	s := m.deps.Styles
	var b strings.Builder

	b.WriteString(s.Title.Render("How can I help today?") + "\n\n")
	for i, item := range m.items {
		if i == m.cursor {
			b.WriteString(s.MenuSelected.Render("▸ "+item.label) + "\n")
		} else {
			b.WriteString(s.MenuItem.Render("  "+item.label) + "\n")
		}
	}
	b.WriteString("\n" + s.Footer.Render("↑/↓ move · enter select · ctrl+c quit"))
	return b.String()
}
