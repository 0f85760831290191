// Package coach assembles conversational context for the remote AI coach:
// it summarizes the user's dashboard data into a system prompt, maintains
// the bounded local turn history, and calls the Gemini generateContent API.
package coach

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"metamotivation/internal/api"
)

// DefaultWelcomeBackAfter is the idle span after which a returning user is
// greeted again. Tuning constant, configurable.
const DefaultWelcomeBackAfter = 24 * time.Hour

const welcomeText = `Hi there! 🌟 I'm your personal **metamotivation coach**.

### ✨ I'm here to help you:
• Boost your daily motivation 🚀
• Analyze your progress in detail 📊
• Give you **personalized** strategies that actually work 💡
• Be your growth companion **24/7** 🤝

What do you want to achieve today? Tell me everything!`

const welcomeBackText = `Welcome back! 👋✨

Good to see you again — I remember our previous conversation. How can I help you keep growing today?`

const diagnosticFooter = `

### 🔧 Things to try:
• Check your internet connection 📶
• Make sure the assistant is configured correctly 🔑
• Try again in a moment

Your personal coach will be back shortly!`

// Generator produces a completion for an assembled prompt. *GeminiClient
// satisfies it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Configured() bool
}

// DashboardFetcher supplies the user's aggregated progress data.
// *api.Client satisfies it.
type DashboardFetcher interface {
	FetchDashboard(ctx context.Context) (api.Dashboard, error)
}

// Assembler owns the conversation state. Send and Clear run inside UI
// commands on their own goroutines while the view keeps reading Turns, so
// the state is mutex-guarded.
type Assembler struct {
	model   Generator
	backend DashboardFetcher
	history *History
	log     *zap.Logger

	welcomeBackAfter time.Duration

	mu        sync.Mutex
	dashboard api.Dashboard
	turns     []Turn
}

// NewAssembler wires the assembler. A non-positive welcomeBackAfter falls
// back to DefaultWelcomeBackAfter; a nil logger becomes a nop logger.
func NewAssembler(model Generator, backend DashboardFetcher, history *History, welcomeBackAfter time.Duration, log *zap.Logger) *Assembler {
	if welcomeBackAfter <= 0 {
		welcomeBackAfter = DefaultWelcomeBackAfter
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Assembler{
		model:            model,
		backend:          backend,
		history:          history,
		welcomeBackAfter: welcomeBackAfter,
		log:              log,
	}
}

// Init concurrently loads the user's dashboard context and the persisted
// turns. Both fetches are best-effort: missing data degrades the prompt,
// never the chat. A fresh history is seeded with a welcome turn; a stale
// one gets a single welcome-back turn appended.
func (a *Assembler) Init(ctx context.Context) error {
	var (
		wg       sync.WaitGroup
		dash     api.Dashboard
		loaded   []Turn
		loadErr  error
		fetchErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		dash, fetchErr = a.backend.FetchDashboard(ctx)
	}()
	go func() {
		defer wg.Done()
		loaded, loadErr = a.history.Load()
	}()
	wg.Wait()

	if fetchErr != nil {
		a.log.Warn("dashboard context unavailable", zap.Error(fetchErr))
	}
	if loadErr != nil {
		// A corrupt history file is not fatal; start fresh.
		a.log.Warn("chat history unreadable, starting fresh", zap.Error(loadErr))
		loaded = nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.dashboard = dash

	if len(loaded) == 0 {
		return a.seedLocked()
	}

	a.turns = loaded
	last := loaded[len(loaded)-1]
	if time.Since(last.Timestamp) > a.welcomeBackAfter {
		a.turns = append(a.turns, NewAssistantTurn(welcomeBackText))
		saved, err := a.history.Save(a.turns)
		if err != nil {
			return err
		}
		a.turns = saved
	}
	return nil
}

// seedLocked resets the transcript to one welcome turn. Callers hold mu.
func (a *Assembler) seedLocked() error {
	a.turns = []Turn{NewAssistantTurn(welcomeText)}
	saved, err := a.history.Save(a.turns)
	if err != nil {
		return err
	}
	a.turns = saved
	return nil
}

// Turns returns a copy of the current conversation, oldest first. The
// copy keeps view renders independent of in-flight sends.
func (a *Assembler) Turns() []Turn {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Turn(nil), a.turns...)
}

// HasData reports whether any dashboard context was available.
func (a *Assembler) HasData() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dashboard.HasData()
}

// Configured reports whether the generative model can be called.
func (a *Assembler) Configured() bool {
	return a.model.Configured()
}

// Send assembles the prompt for message, calls the model, and appends the
// exchange to the history. A model failure never discards the user's
// message: a diagnostic turn is appended in place of the reply and the
// truncated history is still persisted.
func (a *Assembler) Send(ctx context.Context, message string) ([]Turn, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return a.Turns(), fmt.Errorf("empty message")
	}

	// Snapshot the prompt inputs; the model call must not hold the lock.
	a.mu.Lock()
	system := a.contextPromptLocked()
	prompt := buildPrompt(system, a.turns, message)
	a.mu.Unlock()

	userTurn := NewUserTurn(message)

	reply, err := a.model.Generate(ctx, prompt)
	var replyTurn Turn
	if err != nil {
		a.log.Warn("coach reply failed", zap.Error(err))
		replyTurn = NewAssistantTurn("❌ " + err.Error() + diagnosticFooter)
	} else {
		replyTurn = NewAssistantTurn(reply)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.turns = append(a.turns, userTurn, replyTurn)
	saved, saveErr := a.history.Save(a.turns)
	if saveErr != nil {
		return append([]Turn(nil), a.turns...), saveErr
	}
	a.turns = saved
	return append([]Turn(nil), a.turns...), nil
}

// contextPromptLocked picks the prompt variant: data-rich when any
// dashboard data exists, otherwise the onboarding template with no numeric
// sections. Callers hold mu.
func (a *Assembler) contextPromptLocked() string {
	if !a.dashboard.HasData() {
		return systemPrompt(nil, nil)
	}

	var statsPtr *MotivationStats
	if stats, ok := ComputeMotivationStats(a.dashboard.History); ok {
		statsPtr = &stats
	}
	var insightPtr *QuestionnaireInsight
	if insight, ok := ComputeQuestionnaireInsight(a.dashboard.Summary); ok {
		insightPtr = &insight
	}
	return systemPrompt(statsPtr, insightPtr)
}

// Clear resets the conversation to a single seeded welcome turn.
func (a *Assembler) Clear() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.history.Clear(); err != nil {
		return err
	}
	return a.seedLocked()
}
