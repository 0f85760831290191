package screens

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"metamotivation/cmd/motiv/ui"
	"metamotivation/internal/api"
	"metamotivation/internal/coach"
	"metamotivation/internal/session"
)

// fakeGenerator is a canned Generator for chat tests.
type fakeGenerator struct {
	reply      string
	err        error
	configured bool
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return f.reply, f.err
}

func (f *fakeGenerator) Configured() bool { return f.configured }

// newTestDeps wires real gateways against the given stub server. The
// session store and chat history live in a temp dir.
func newTestDeps(t *testing.T, srv *httptest.Server, gen coach.Generator) Deps {
	t.Helper()

	baseURL := "http://127.0.0.1:0"
	if srv != nil {
		baseURL = srv.URL
	}
	if gen == nil {
		gen = &fakeGenerator{reply: "ok", configured: true}
	}

	dir := t.TempDir()
	store := session.NewStore(dir)
	client := api.NewClient(baseURL, store, nil)
	assembler := coach.NewAssembler(gen, client, coach.NewHistory(dir, 0), time.Hour, nil)

	return Deps{
		API:     client,
		Session: store,
		Coach:   assembler,
		Styles:  ui.NewStyles(ui.DarkTheme()),
	}
}

// runCmd executes a tea.Cmd synchronously and returns its message.
func runCmd(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command, got nil")
	}
	return cmd()
}

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func keyEnter() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyEnter} }
func keyDown() tea.KeyMsg  { return tea.KeyMsg{Type: tea.KeyDown} }
func keyTab() tea.KeyMsg   { return tea.KeyMsg{Type: tea.KeyTab} }
func keyCtrlR() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyCtrlR} }
func keyLeft() tea.KeyMsg  { return tea.KeyMsg{Type: tea.KeyLeft} }
func keyEsc() tea.KeyMsg   { return tea.KeyMsg{Type: tea.KeyEsc} }

// typeInto feeds a string rune by rune through a screen's update func.
func typeString(s string) []tea.KeyMsg {
	msgs := make([]tea.KeyMsg, 0, len(s))
	for _, r := range s {
		msgs = append(msgs, keyPress(r))
	}
	return msgs
}
