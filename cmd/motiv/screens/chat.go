package screens

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"metamotivation/internal/coach"
)

type (
	// coachReadyMsg signals the assembler finished bootstrapping.
	coachReadyMsg struct{ err error }

	// coachReplyMsg delivers the new transcript after a send.
	coachReplyMsg struct {
		turns []coach.Turn
		err   error
	}

	// coachClearedMsg signals the history reset completed.
	coachClearedMsg struct{ err error }
)

// suggestedPrompts are offered while the conversation holds only the
// seeded welcome turn.
var suggestedPrompts = []string{
	"How am I doing this week?",
	"I'm feeling unmotivated today",
	"Help me set a small goal",
}

type chatModel struct {
	deps Deps

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	ready      bool
	booting    bool
	thinking   bool
	suggestion int
	errText    string
	width      int
	height     int
}

func newChatModel(deps Deps) chatModel {
	input := textinput.New()
	input.Placeholder = "Ask your coach... (/clear resets the conversation)"
	input.CharLimit = 2048
	input.Width = 70
	input.Prompt = "│ "
	input.PromptStyle = deps.Styles.Prompt
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = deps.Styles.Spinner

	vp := viewport.New(78, 18)

	var renderer *glamour.TermRenderer
	if deps.Styles.Theme.IsDark {
		renderer, _ = glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(76))
	} else {
		renderer, _ = glamour.NewTermRenderer(glamour.WithStylePath("light"), glamour.WithWordWrap(76))
	}

	return chatModel{
		deps:       deps,
		input:      input,
		viewport:   vp,
		spinner:    sp,
		renderer:   renderer,
		booting:    true,
		suggestion: -1,
	}
}

func (m chatModel) enter() tea.Cmd {
	deps := m.deps
	boot := func() tea.Msg {
		return coachReadyMsg{err: deps.Coach.Init(context.Background())}
	}
	return tea.Batch(textinput.Blink, m.spinner.Tick, boot)
}

func (m *chatModel) setSize(width, height int) {
	m.width = width
	m.height = height
	if width <= 0 {
		return
	}
	m.viewport.Width = width - 4
	if height > 10 {
		m.viewport.Height = height - 8
	}
	m.input.Width = width - 8
	if m.deps.Styles.Theme.IsDark {
		m.renderer, _ = glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width-8))
	} else {
		m.renderer, _ = glamour.NewTermRenderer(glamour.WithStylePath("light"), glamour.WithWordWrap(width-8))
	}
}

func (m chatModel) update(msg tea.Msg) (chatModel, tea.Cmd) {
	var (
		inputCmd tea.Cmd
		vpCmd    tea.Cmd
		spCmd    tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc:
			return m, navigate(ScreenHome)
		case tea.KeyTab:
			// Cycle a suggested prompt into the input while the
			// conversation is still fresh.
			if m.showingSuggestions() {
				m.suggestion = (m.suggestion + 1) % len(suggestedPrompts)
				m.input.SetValue(suggestedPrompts[m.suggestion])
				m.input.CursorEnd()
				return m, nil
			}
		case tea.KeyEnter:
			if m.booting || m.thinking {
				return m, nil
			}
			return m.submit()
		}
		if !m.thinking && !m.booting {
			m.input, inputCmd = m.input.Update(msg)
		}

	case coachReadyMsg:
		m.booting = false
		if msg.err != nil {
			m.errText = msg.err.Error()
		}
		m.refreshTranscript()

	case coachReplyMsg:
		m.thinking = false
		if msg.err != nil {
			m.errText = msg.err.Error()
		}
		m.refreshTranscript()

	case coachClearedMsg:
		m.thinking = false
		if msg.err != nil {
			m.errText = msg.err.Error()
		}
		m.suggestion = -1
		m.refreshTranscript()

	case spinner.TickMsg:
		if m.booting || m.thinking {
			m.spinner, spCmd = m.spinner.Update(msg)
			return m, spCmd
		}
	}

	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(inputCmd, vpCmd, spCmd)
}

func (m chatModel) showingSuggestions() bool {
	return !m.booting && len(m.deps.Coach.Turns()) <= 1
}

func (m chatModel) submit() (chatModel, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	deps := m.deps

	if text == "/clear" {
		m.input.Reset()
		m.errText = ""
		m.thinking = true
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			return coachClearedMsg{err: deps.Coach.Clear()}
		})
	}

	if !deps.Coach.Configured() {
		m.errText = "No Gemini API key configured. Set GEMINI_API_KEY or run `motiv config set-key`."
		return m, nil
	}

	m.input.Reset()
	m.errText = ""
	m.thinking = true
	m.suggestion = -1

	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		turns, err := deps.Coach.Send(context.Background(), text)
		return coachReplyMsg{turns: turns, err: err}
	})
}

// refreshTranscript re-renders the conversation into the viewport.
func (m *chatModel) refreshTranscript() {
	var b strings.Builder
	s := m.deps.Styles

	for _, turn := range m.deps.Coach.Turns() {
		if turn.FromAssistant {
			text := turn.Text
			if m.renderer != nil {
				if rendered, err := m.renderer.Render(turn.Text); err == nil {
					text = rendered
				}
			}
			b.WriteString(s.CoachMessage.Render(strings.TrimRight(text, "\n")) + "\n\n")
		} else {
			b.WriteString(s.UserMessage.Render("You: "+turn.Text) + "\n\n")
		}
	}

	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m chatModel) view() string {
	s := m.deps.Styles
	var b strings.Builder

	if m.booting {
		return m.spinner.View() + s.Muted.Render(" Getting your coach up to speed...")
	}

	b.WriteString(m.viewport.View() + "\n")

	if m.showingSuggestions() {
		b.WriteString(s.Subtitle.Render("Try one of these (tab to cycle):") + "\n")
		for _, p := range suggestedPrompts {
			b.WriteString(s.Muted.Render("  · "+p) + "\n")
		}
	}

	if m.thinking {
		b.WriteString(m.spinner.View() + s.Muted.Render(" Coach is thinking...") + "\n")
	}
	if m.errText != "" {
		b.WriteString(s.Error.Render(m.errText) + "\n")
	}

	b.WriteString(m.input.View() + "\n")

	turnCount := len(m.deps.Coach.Turns())
	b.WriteString(s.Footer.Render(fmt.Sprintf("%d turn(s) kept · enter send · tab suggestion · esc home · ctrl+c quit", turnCount)))
	return b.String()
}
