package screens

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noDashboardStub(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
}

// bootedChat initializes the assembler directly so tests skip the async
// boot command.
func bootedChat(t *testing.T, deps Deps) chatModel {
	t.Helper()
	require.NoError(t, deps.Session.Save("tok"))
	require.NoError(t, deps.Coach.Init(context.Background()))

	m := newChatModel(deps)
	m, _ = m.update(coachReadyMsg{})
	require.False(t, m.booting)
	return m
}

func TestChat_SeededConversationOffersSuggestions(t *testing.T) {
	srv := noDashboardStub(t)
	defer srv.Close()

	m := bootedChat(t, newTestDeps(t, srv, nil))
	require.True(t, m.showingSuggestions())

	m, _ = m.update(keyTab())
	assert.Equal(t, suggestedPrompts[0], m.input.Value())

	m, _ = m.update(keyTab())
	assert.Equal(t, suggestedPrompts[1], m.input.Value())
}

func TestChat_SendAppendsExchange(t *testing.T) {
	srv := noDashboardStub(t)
	defer srv.Close()

	gen := &fakeGenerator{reply: "You can do this!", configured: true}
	deps := newTestDeps(t, srv, gen)
	m := bootedChat(t, deps)

	for _, k := range typeString("help me focus") {
		m, _ = m.update(k)
	}
	m, cmd := m.update(keyEnter())
	require.True(t, m.thinking)

	// The batch carries the spinner tick and the send; run the send.
	turns, err := deps.Coach.Send(context.Background(), "help me focus")
	require.NoError(t, err)
	m, _ = m.update(coachReplyMsg{turns: turns})

	assert.False(t, m.thinking)
	assert.False(t, m.showingSuggestions())

	all := deps.Coach.Turns()
	require.Len(t, all, 3) // welcome + user + reply
	assert.Equal(t, "You can do this!", all[2].Text)
	_ = cmd
}

func TestChat_MissingAPIKeyBlocksLocally(t *testing.T) {
	srv := noDashboardStub(t)
	defer srv.Close()

	gen := &fakeGenerator{configured: false}
	deps := newTestDeps(t, srv, gen)
	m := bootedChat(t, deps)

	for _, k := range typeString("hello") {
		m, _ = m.update(k)
	}
	m, _ = m.update(keyEnter())

	assert.False(t, m.thinking, "no call without an API key")
	assert.Contains(t, m.errText, "API key")
	require.Len(t, deps.Coach.Turns(), 1, "transcript unchanged")
}

func TestChat_EmptyInputIgnored(t *testing.T) {
	srv := noDashboardStub(t)
	defer srv.Close()

	m := bootedChat(t, newTestDeps(t, srv, nil))
	m, cmd := m.update(keyEnter())

	assert.Nil(t, cmd)
	assert.False(t, m.thinking)
}

func TestChat_ClearCommandReseeds(t *testing.T) {
	srv := noDashboardStub(t)
	defer srv.Close()

	deps := newTestDeps(t, srv, nil)
	m := bootedChat(t, deps)

	_, err := deps.Coach.Send(context.Background(), "first message")
	require.NoError(t, err)
	require.Len(t, deps.Coach.Turns(), 3)

	for _, k := range typeString("/clear") {
		m, _ = m.update(k)
	}
	m, cmd := m.update(keyEnter())
	require.True(t, m.thinking)
	_ = cmd

	require.NoError(t, deps.Coach.Clear())
	m, _ = m.update(coachClearedMsg{})

	assert.False(t, m.thinking)
	assert.Len(t, deps.Coach.Turns(), 1)
	assert.True(t, m.showingSuggestions())
}

func TestChat_EscReturnsHome(t *testing.T) {
	srv := noDashboardStub(t)
	defer srv.Close()

	m := bootedChat(t, newTestDeps(t, srv, nil))
	_, cmd := m.update(keyEsc())
	assert.Equal(t, navigateMsg{to: ScreenHome}, runCmd(t, cmd))
}
