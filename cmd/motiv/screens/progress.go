package screens

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"metamotivation/internal/api"
)

// dashboardMsg delivers the fan-out fetch result.
type dashboardMsg struct {
	dash api.Dashboard
	err  error
}

type progressModel struct {
	deps    Deps
	loading bool
	dash    api.Dashboard
	errText string
}

func newProgressModel(deps Deps) progressModel {
	return progressModel{deps: deps, loading: true}
}

func (m progressModel) enter() tea.Cmd {
	deps := m.deps
	return func() tea.Msg {
		dash, err := deps.API.FetchDashboard(context.Background())
		return dashboardMsg{dash: dash, err: err}
	}
}

func (m progressModel) update(msg tea.Msg) (progressModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardMsg:
		m.loading = false
		m.dash = msg.dash
		if msg.err != nil {
			m.errText = msg.err.Error()
			if cmd := routeAuthFailure(msg.err); cmd != nil {
				return m, cmd
			}
		}
	case tea.KeyMsg:
		if msg.Type == tea.KeyEnter {
			return m, navigate(ScreenHome)
		}
	}
	return m, nil
}

// checkinSummary aggregates the motivation history for display.
type checkinSummary struct {
	Count   int
	Average float64
	Best    int
	Last    []int // most recent last, at most 5
}

func summarizeCheckins(history []api.MotivationEntry) checkinSummary {
	sum := checkinSummary{}
	if len(history) == 0 {
		return sum
	}
	total := 0
	for _, e := range history {
		total += e.MotivationLevel
		if e.MotivationLevel > sum.Best {
			sum.Best = e.MotivationLevel
		}
	}
	sum.Count = len(history)
	sum.Average = float64(total) / float64(len(history))

	start := len(history) - 5
	if start < 0 {
		start = 0
	}
	for _, e := range history[start:] {
		sum.Last = append(sum.Last, e.MotivationLevel)
	}
	return sum
}

// strongestSection returns the best-scoring questionnaire section.
func strongestSection(summary []api.SectionScore) (api.SectionScore, bool) {
	if len(summary) == 0 {
		return api.SectionScore{}, false
	}
	best := summary[0]
	for _, s := range summary[1:] {
		if s.AverageScore > best.AverageScore {
			best = s
		}
	}
	return best, true
}

// motivationalMessage bands the running average into a headline.
func motivationalMessage(average float64) string {
	switch {
	case average >= 8:
		return "🔥 You're on fire! Your motivation is consistently high."
	case average >= 6:
		return "💪 Solid progress. You're building a strong habit."
	case average >= 4:
		return "🌱 You're showing up, and that's what matters most."
	default:
		return "🤝 Rough stretch — your coach is a good place to start."
	}
}

func (m progressModel) view() string {
	s := m.deps.Styles
	if m.loading {
		return s.Muted.Render("Loading your progress...")
	}

	var b strings.Builder

	if m.errText != "" {
		b.WriteString(s.Warning.Render("Some data couldn't be loaded: "+m.errText) + "\n\n")
	}
	if !m.dash.HasData() {
		b.WriteString(s.Body.Render("No data yet. Record a check-in or complete the questionnaire to see your progress here.") + "\n")
		b.WriteString("\n" + s.Footer.Render("enter back to home"))
		return b.String()
	}

	if sum := summarizeCheckins(m.dash.History); sum.Count > 0 {
		b.WriteString(s.Title.Render("Daily check-ins") + "\n")
		b.WriteString(s.Body.Render(fmt.Sprintf("Recorded: %d · Average: %.0f%% · Best: %d/10",
			sum.Count, sum.Average*10, sum.Best)) + "\n")

		b.WriteString(s.Label.Render("Recent levels") + "\n")
		for _, level := range sum.Last {
			bar := s.RenderBar(float64(level), 10, 20)
			b.WriteString(fmt.Sprintf("  %2d/10 %s\n", level, bar))
		}
		b.WriteString("\n" + s.Body.Render(motivationalMessage(sum.Average)) + "\n\n")
	}

	if len(m.dash.Summary) > 0 {
		b.WriteString(s.Title.Render("Motivation profile") + "\n")
		for _, sec := range m.dash.Summary {
			bar := s.RenderBar(sec.AverageScore, 7, 20)
			b.WriteString(fmt.Sprintf("  %-20s %s %3.0f%%\n", sec.SectionName, bar, sec.AverageScore/7*100))
		}
		if best, ok := strongestSection(m.dash.Summary); ok {
			b.WriteString("\n" + s.Body.Render(fmt.Sprintf("⭐ Strongest area: %s (%.1f/7)", best.SectionName, best.AverageScore)) + "\n")
		}
	}

	b.WriteString("\n" + s.Footer.Render("enter back to home"))
	return b.String()
}
