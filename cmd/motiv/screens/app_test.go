package screens

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metamotivation/internal/session"
)

func TestApp_StartsAtLoginWithoutCredential(t *testing.T) {
	app := NewApp(newTestDeps(t, nil, nil))
	assert.Equal(t, ScreenLogin, app.CurrentScreen())
}

func TestApp_StartsAtHomeWithCredential(t *testing.T) {
	deps := newTestDeps(t, nil, nil)
	require.NoError(t, deps.Session.Save("tok"))

	app := NewApp(deps)
	assert.Equal(t, ScreenHome, app.CurrentScreen())
}

func TestApp_NavigateMsgSwitchesScreen(t *testing.T) {
	app := NewApp(newTestDeps(t, nil, nil))

	next, _ := app.Update(navigateMsg{to: ScreenRegister})
	app = next.(App)
	assert.Equal(t, ScreenRegister, app.CurrentScreen())

	next, _ = app.Update(navigateMsg{to: ScreenHome})
	app = next.(App)
	assert.Equal(t, ScreenHome, app.CurrentScreen())
}

func TestApp_SessionExpiryClearsCredentialAndShowsLogin(t *testing.T) {
	deps := newTestDeps(t, nil, nil)
	require.NoError(t, deps.Session.Save("stale"))

	app := NewApp(deps)
	require.Equal(t, ScreenHome, app.CurrentScreen())

	next, _ := app.Update(sessionExpiredMsg{})
	app = next.(App)

	assert.Equal(t, ScreenLogin, app.CurrentScreen())
	assert.NotEmpty(t, app.login.notice)

	_, err := deps.Session.Load()
	assert.True(t, errors.Is(err, session.ErrNoCredential))
}

func TestApp_EscReturnsHomeFromSubScreens(t *testing.T) {
	deps := newTestDeps(t, nil, nil)
	require.NoError(t, deps.Session.Save("tok"))

	for _, start := range []Screen{ScreenCheckIn, ScreenProgress} {
		app := NewApp(deps)
		next, _ := app.Update(navigateMsg{to: start})
		app = next.(App)
		require.Equal(t, start, app.CurrentScreen())

		next, _ = app.Update(tea.KeyMsg{Type: tea.KeyEsc})
		app = next.(App)
		assert.Equal(t, ScreenHome, app.CurrentScreen())
	}
}

func TestApp_CtrlCQuits(t *testing.T) {
	app := NewApp(newTestDeps(t, nil, nil))
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestScreen_Names(t *testing.T) {
	t.Parallel()
	names := map[Screen]string{
		ScreenLogin:         "Sign in",
		ScreenRegister:      "Create account",
		ScreenHome:          "Home",
		ScreenCheckIn:       "Daily check-in",
		ScreenQuestionnaire: "Questionnaire",
		ScreenProgress:      "Your progress",
		ScreenChat:          "Motivation coach",
	}
	for s, want := range names {
		assert.Equal(t, want, s.String())
	}
}

func TestHome_LogoutClearsSessionAndNavigatesLogin(t *testing.T) {
	deps := newTestDeps(t, nil, nil)
	require.NoError(t, deps.Session.Save("tok"))

	m := newHomeModel(deps)
	for i := 0; i < len(m.items)-1; i++ {
		m, _ = m.update(keyDown())
	}
	m, cmd := m.update(keyEnter())

	assert.Equal(t, navigateMsg{to: ScreenLogin}, runCmd(t, cmd))
	_, err := deps.Session.Load()
	assert.True(t, errors.Is(err, session.ErrNoCredential))
}

func TestHome_MenuTargets(t *testing.T) {
	m := newHomeModel(newTestDeps(t, nil, nil))

	m, cmd := m.update(keyEnter())
	assert.Equal(t, navigateMsg{to: ScreenCheckIn}, runCmd(t, cmd))

	m, _ = m.update(keyDown())
	m, cmd = m.update(keyEnter())
	assert.Equal(t, navigateMsg{to: ScreenQuestionnaire}, runCmd(t, cmd))
}
