// Package screens implements the bubbletea application: one root model that
// owns navigation, and one sub-model per screen.
package screens

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"metamotivation/cmd/motiv/ui"
	"metamotivation/internal/api"
	"metamotivation/internal/coach"
	"metamotivation/internal/session"
)

// Screen identifies the active view.
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenRegister
	ScreenHome
	ScreenCheckIn
	ScreenQuestionnaire
	ScreenProgress
	ScreenChat
)

// String returns the screen name shown in the header.
func (s Screen) String() string {
	switch s {
	case ScreenLogin:
		return "Sign in"
	case ScreenRegister:
		return "Create account"
	case ScreenHome:
		return "Home"
	case ScreenCheckIn:
		return "Daily check-in"
	case ScreenQuestionnaire:
		return "Questionnaire"
	case ScreenProgress:
		return "Your progress"
	case ScreenChat:
		return "Motivation coach"
	}
	return "Unknown"
}

// Deps bundles the backend dependencies every screen shares.
type Deps struct {
	API     *api.Client
	Session *session.Store
	Coach   *coach.Assembler
	Styles  ui.Styles
	Log     *zap.Logger
}

// Messages shared across screens.
type (
	// navigateMsg switches the active screen.
	navigateMsg struct{ to Screen }

	// sessionExpiredMsg routes back to login after a 401.
	sessionExpiredMsg struct{}
)

func navigate(to Screen) tea.Cmd {
	return func() tea.Msg { return navigateMsg{to: to} }
}

// routeAuthFailure converts an unauthorized gateway error into a
// session-expired redirect. Returns nil for every other error.
func routeAuthFailure(err error) tea.Cmd {
	if api.IsUnauthorized(err) {
		return func() tea.Msg { return sessionExpiredMsg{} }
	}
	return nil
}

// App is the root model.
type App struct {
	deps   Deps
	screen Screen
	width  int
	height int

	login         loginModel
	register      registerModel
	home          homeModel
	checkin       checkinModel
	questionnaire questionnaireModel
	progress      progressModel
	chat          chatModel
}

// NewApp builds the root model. The initial screen depends on whether a
// stored credential exists: straight to home when it does, login otherwise.
func NewApp(deps Deps) App {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}

	initial := ScreenLogin
	if _, err := deps.Session.Load(); err == nil {
		initial = ScreenHome
	} else if !errors.Is(err, session.ErrNoCredential) {
		deps.Log.Warn("credential load failed", zap.Error(err))
	}

	return App{
		deps:          deps,
		screen:        initial,
		login:         newLoginModel(deps),
		register:      newRegisterModel(deps),
		home:          newHomeModel(deps),
		checkin:       newCheckinModel(deps),
		questionnaire: newQuestionnaireModel(deps),
		progress:      newProgressModel(deps),
		chat:          newChatModel(deps),
	}
}

// CurrentScreen reports the active screen.
func (a App) CurrentScreen() Screen {
	return a.screen
}

func (a App) Init() tea.Cmd {
	return a.enter(a.screen)
}

// enter runs a screen's entry command, if it has one.
func (a *App) enter(s Screen) tea.Cmd {
	switch s {
	case ScreenLogin:
		a.login = newLoginModel(a.deps)
		return a.login.enter()
	case ScreenRegister:
		a.register = newRegisterModel(a.deps)
		return a.register.enter()
	case ScreenHome:
		a.home = newHomeModel(a.deps)
		return nil
	case ScreenCheckIn:
		a.checkin = newCheckinModel(a.deps)
		return nil
	case ScreenQuestionnaire:
		a.questionnaire = newQuestionnaireModel(a.deps)
		return a.questionnaire.enter()
	case ScreenProgress:
		a.progress = newProgressModel(a.deps)
		return a.progress.enter()
	case ScreenChat:
		a.chat = newChatModel(a.deps)
		return a.chat.enter()
	}
	return nil
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return a, tea.Quit
		case tea.KeyEsc:
			// Esc backs out of any authenticated sub-screen. Login and
			// register handle it themselves; chat uses it to leave the
			// input before quitting.
			switch a.screen {
			case ScreenCheckIn, ScreenQuestionnaire, ScreenProgress:
				a.screen = ScreenHome
				return a, a.enter(ScreenHome)
			}
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.chat.setSize(msg.Width, msg.Height)

	case navigateMsg:
		a.screen = msg.to
		return a, a.enter(msg.to)

	case sessionExpiredMsg:
		if err := a.deps.Session.Clear(); err != nil {
			a.deps.Log.Warn("credential clear failed", zap.Error(err))
		}
		a.screen = ScreenLogin
		cmd := a.enter(ScreenLogin)
		a.login.notice = "Your session expired. Please sign in again."
		return a, cmd
	}

	var cmd tea.Cmd
	switch a.screen {
	case ScreenLogin:
		a.login, cmd = a.login.update(msg)
	case ScreenRegister:
		a.register, cmd = a.register.update(msg)
	case ScreenHome:
		a.home, cmd = a.home.update(msg)
	case ScreenCheckIn:
		a.checkin, cmd = a.checkin.update(msg)
	case ScreenQuestionnaire:
		a.questionnaire, cmd = a.questionnaire.update(msg)
	case ScreenProgress:
		a.progress, cmd = a.progress.update(msg)
	case ScreenChat:
		a.chat, cmd = a.chat.update(msg)
	}
	return a, cmd
}

func (a App) View() string {
	s := a.deps.Styles

	header := s.Header.Render("metamotivation · " + a.screen.String())

	var body string
	switch a.screen {
	case ScreenLogin:
		body = a.login.view()
	case ScreenRegister:
		body = a.register.view()
	case ScreenHome:
		body = a.home.view()
	case ScreenCheckIn:
		body = a.checkin.view()
	case ScreenQuestionnaire:
		body = a.questionnaire.view()
	case ScreenProgress:
		body = a.progress.view()
	case ScreenChat:
		body = a.chat.view()
	}

	return header + "\n" + s.Content.Render(body)
}
