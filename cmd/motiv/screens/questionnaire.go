package screens

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"metamotivation/internal/api"
)

type (
	// questionsMsg delivers the fetched questionnaire.
	questionsMsg struct {
		questions []api.Question
		err       error
	}

	// answersSubmittedMsg carries the outcome of the batch submission.
	answersSubmittedMsg struct{ err error }
)

// likertLabels maps the 1-7 agreement scale to its labels.
var likertLabels = [8]string{
	"",
	"Strongly disagree",
	"Disagree",
	"Somewhat disagree",
	"Neutral",
	"Somewhat agree",
	"Agree",
	"Strongly agree",
}

type questionnaireModel struct {
	deps       Deps
	bar        progress.Model
	loading    bool
	submitting bool
	done       bool
	questions  []api.Question
	idx        int
	answers    map[int]int // question ID -> 1..7
	errText    string
}

func newQuestionnaireModel(deps Deps) questionnaireModel {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40
	return questionnaireModel{
		deps:    deps,
		bar:     bar,
		loading: true,
		answers: map[int]int{},
	}
}

func (m questionnaireModel) enter() tea.Cmd {
	deps := m.deps
	return func() tea.Msg {
		qs, err := deps.API.FetchQuestions(context.Background())
		return questionsMsg{questions: qs, err: err}
	}
}

func (m questionnaireModel) update(msg tea.Msg) (questionnaireModel, tea.Cmd) {
	switch msg := msg.(type) {
	case questionsMsg:
		m.loading = false
		if msg.err != nil {
			m.errText = msg.err.Error()
			if cmd := routeAuthFailure(msg.err); cmd != nil {
				return m, cmd
			}
			return m, nil
		}
		m.questions = msg.questions
		return m, nil

	case answersSubmittedMsg:
		m.submitting = false
		if msg.err != nil {
			m.errText = msg.err.Error()
			if cmd := routeAuthFailure(msg.err); cmd != nil {
				return m, cmd
			}
			return m, nil
		}
		m.done = true
		return m, nil

	case tea.KeyMsg:
		if m.loading || m.submitting {
			return m, nil
		}
		if m.done {
			if msg.Type == tea.KeyEnter {
				return m, navigate(ScreenHome)
			}
			return m, nil
		}

		switch msg.Type {
		case tea.KeyLeft:
			if m.idx > 0 {
				m.idx--
			}
		case tea.KeyRight:
			if m.idx < len(m.questions)-1 {
				m.idx++
			}
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyRunes:
			if len(msg.Runes) == 1 && msg.Runes[0] >= '1' && msg.Runes[0] <= '7' {
				m.answer(int(msg.Runes[0] - '0'))
			}
		}
	}
	return m, nil
}

// answer records the value for the current question and advances.
func (m *questionnaireModel) answer(value int) {
	if len(m.questions) == 0 {
		return
	}
	m.errText = ""
	m.answers[m.questions[m.idx].ID] = value
	if m.idx < len(m.questions)-1 {
		m.idx++
	}
}

// missing counts fetched questions without an answer.
func (m questionnaireModel) missing() int {
	n := 0
	for _, q := range m.questions {
		if _, ok := m.answers[q.ID]; !ok {
			n++
		}
	}
	return n
}

func (m questionnaireModel) submit() (questionnaireModel, tea.Cmd) {
	if len(m.questions) == 0 {
		return m, nil
	}
	if missing := m.missing(); missing > 0 {
		m.errText = fmt.Sprintf("%d question(s) still unanswered.", missing)
		return m, nil
	}

	m.errText = ""
	m.submitting = true

	// Answers go out in question order.
	answers := make([]api.Answer, 0, len(m.questions))
	for _, q := range m.questions {
		answers = append(answers, api.Answer{QuestionID: q.ID, Value: m.answers[q.ID]})
	}
	deps := m.deps
	return m, func() tea.Msg {
		return answersSubmittedMsg{err: deps.API.SubmitAnswers(context.Background(), answers)}
	}
}

func (m questionnaireModel) view() string {
	s := m.deps.Styles
	var b strings.Builder

	if m.loading {
		return s.Muted.Render("Loading your questionnaire...")
	}
	if m.done {
		b.WriteString(s.Success.Render("Questionnaire submitted — thank you!") + "\n")
		b.WriteString(s.Body.Render("Your progress view and coach now reflect these answers.") + "\n")
		b.WriteString("\n" + s.Footer.Render("enter back to home"))
		return b.String()
	}
	if len(m.questions) == 0 {
		if m.errText != "" {
			return s.Error.Render(m.errText)
		}
		return s.Muted.Render("No questions available right now.")
	}

	q := m.questions[m.idx]
	answered := len(m.questions) - m.missing()

	b.WriteString(s.Subtitle.Render(fmt.Sprintf("Question %d of %d · %d answered", m.idx+1, len(m.questions), answered)) + "\n")
	b.WriteString(m.bar.ViewAs(float64(answered)/float64(len(m.questions))) + "\n\n")

	b.WriteString(s.Title.Render(q.Text) + "\n")
	for v := 1; v <= 7; v++ {
		line := fmt.Sprintf("%d · %s", v, likertLabels[v])
		if m.answers[q.ID] == v {
			b.WriteString(s.MenuSelected.Render("▸ "+line) + "\n")
		} else {
			b.WriteString(s.MenuItem.Render("  "+line) + "\n")
		}
	}

	if m.submitting {
		b.WriteString("\n" + s.Muted.Render("Submitting...") + "\n")
	}
	if m.errText != "" {
		b.WriteString("\n" + s.Error.Render(m.errText) + "\n")
	}

	b.WriteString("\n" + s.Footer.Render("1-7 answer · ←/→ browse · enter submit all · esc back"))
	return b.String()
}
