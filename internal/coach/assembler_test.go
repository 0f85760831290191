package coach

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metamotivation/internal/api"
)

type fakeModel struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeModel) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeModel) Configured() bool { return true }

type fakeBackend struct {
	dash api.Dashboard
	err  error
}

func (f *fakeBackend) FetchDashboard(context.Context) (api.Dashboard, error) {
	return f.dash, f.err
}

func newTestAssembler(t *testing.T, model Generator, backend DashboardFetcher) *Assembler {
	t.Helper()
	if model == nil {
		model = &fakeModel{reply: "ok"}
	}
	if backend == nil {
		backend = &fakeBackend{}
	}
	return NewAssembler(model, backend, NewHistory(t.TempDir(), 0), 0, nil)
}

func TestInit_SeedsWelcomeTurn(t *testing.T) {
	t.Parallel()
	a := newTestAssembler(t, nil, nil)
	require.NoError(t, a.Init(context.Background()))

	turns := a.Turns()
	require.Len(t, turns, 1)
	assert.True(t, turns[0].FromAssistant)
	assert.Contains(t, turns[0].Text, "metamotivation coach")
}

func TestInit_WelcomeBackAfterIdle(t *testing.T) {
	t.Parallel()
	history := NewHistory(t.TempDir(), 0)
	stale := Turn{ID: "1", Text: "old", FromAssistant: true, Timestamp: time.Now().Add(-25 * time.Hour)}
	_, err := history.Save([]Turn{stale})
	require.NoError(t, err)

	a := NewAssembler(&fakeModel{}, &fakeBackend{}, history, 0, nil)
	require.NoError(t, a.Init(context.Background()))

	turns := a.Turns()
	require.Len(t, turns, 2, "exactly one welcome-back turn is appended")
	assert.Equal(t, "old", turns[0].Text, "history is supplemented, not replaced")
	assert.Contains(t, turns[1].Text, "Welcome back")
}

func TestInit_NoWelcomeBackWithinThreshold(t *testing.T) {
	t.Parallel()
	history := NewHistory(t.TempDir(), 0)
	recent := Turn{ID: "1", Text: "recent", FromAssistant: true, Timestamp: time.Now().Add(-23 * time.Hour)}
	_, err := history.Save([]Turn{recent})
	require.NoError(t, err)

	a := NewAssembler(&fakeModel{}, &fakeBackend{}, history, 0, nil)
	require.NoError(t, a.Init(context.Background()))
	assert.Len(t, a.Turns(), 1)
}

func TestInit_DashboardFailureDoesNotAbort(t *testing.T) {
	t.Parallel()
	a := newTestAssembler(t, nil, &fakeBackend{err: fmt.Errorf("backend down")})
	require.NoError(t, a.Init(context.Background()))
	assert.False(t, a.HasData())
	require.Len(t, a.Turns(), 1)
}

func TestSend_AppendsExchangeAndPersists(t *testing.T) {
	t.Parallel()
	history := NewHistory(t.TempDir(), 0)
	model := &fakeModel{reply: "Great progress!"}
	a := NewAssembler(model, &fakeBackend{}, history, 0, nil)
	require.NoError(t, a.Init(context.Background()))

	turns, err := a.Send(context.Background(), "How am I doing?")
	require.NoError(t, err)
	require.Len(t, turns, 3)
	assert.Equal(t, "How am I doing?", turns[1].Text)
	assert.False(t, turns[1].FromAssistant)
	assert.Equal(t, "Great progress!", turns[2].Text)
	assert.True(t, turns[2].FromAssistant)

	persisted, err := history.Load()
	require.NoError(t, err)
	assert.Len(t, persisted, 3)
}

func TestSend_ModelFailureKeepsUserMessage(t *testing.T) {
	t.Parallel()
	history := NewHistory(t.TempDir(), 0)
	model := &fakeModel{err: fmt.Errorf("query limit reached, try again in a moment (status 429)")}
	a := NewAssembler(model, &fakeBackend{}, history, 0, nil)
	require.NoError(t, a.Init(context.Background()))

	turns, err := a.Send(context.Background(), "hello?")
	require.NoError(t, err, "a model failure becomes a diagnostic turn, not an error")
	require.Len(t, turns, 3)
	assert.Equal(t, "hello?", turns[1].Text)
	assert.True(t, turns[2].FromAssistant)
	assert.Contains(t, turns[2].Text, "query limit")

	persisted, err := history.Load()
	require.NoError(t, err)
	assert.Len(t, persisted, 3, "the exchange is persisted even on failure")
}

func TestSend_EmptyMessageRejected(t *testing.T) {
	t.Parallel()
	a := newTestAssembler(t, nil, nil)
	require.NoError(t, a.Init(context.Background()))
	_, err := a.Send(context.Background(), "   ")
	assert.Error(t, err)
}

func TestSend_PromptVariants(t *testing.T) {
	t.Parallel()

	t.Run("onboarding variant without data", func(t *testing.T) {
		t.Parallel()
		model := &fakeModel{reply: "ok"}
		a := newTestAssembler(t, model, &fakeBackend{})
		require.NoError(t, a.Init(context.Background()))

		_, err := a.Send(context.Background(), "hi")
		require.NoError(t, err)
		require.Len(t, model.prompts, 1)
		assert.Contains(t, model.prompts[0], "no recorded progress data")
		assert.NotContains(t, model.prompts[0], "CURRENT USER DATA")
	})

	t.Run("data variant interpolates statistics", func(t *testing.T) {
		t.Parallel()
		model := &fakeModel{reply: "ok"}
		backend := &fakeBackend{dash: api.Dashboard{
			History: entries(3, 4, 5, 6, 7, 8, 9, 10, 9, 10),
			Summary: []api.SectionScore{{SectionName: "Focus", AverageScore: 6.0}},
		}}
		a := newTestAssembler(t, model, backend)
		require.NoError(t, a.Init(context.Background()))

		_, err := a.Send(context.Background(), "analyze me")
		require.NoError(t, err)
		require.Len(t, model.prompts, 1)
		prompt := model.prompts[0]
		assert.Contains(t, prompt, "CURRENT USER DATA")
		assert.Contains(t, prompt, "Average motivation: 7.1/10")
		assert.Contains(t, prompt, "Latest recorded level: 10/10")
		assert.Contains(t, prompt, "Recent trend: ascending")
		assert.Contains(t, prompt, "Strongest area: Focus (6.0/7)")
		assert.Contains(t, prompt, "=== CURRENT USER QUERY ===\nanalyze me")
	})
}

func TestSend_TranscriptBoundedToEight(t *testing.T) {
	t.Parallel()
	model := &fakeModel{reply: "ok"}
	a := newTestAssembler(t, model, nil)
	require.NoError(t, a.Init(context.Background()))

	for i := 0; i < 10; i++ {
		_, err := a.Send(context.Background(), fmt.Sprintf("message-%d", i))
		require.NoError(t, err)
	}

	last := model.prompts[len(model.prompts)-1]
	transcript := last[strings.Index(last, "RECENT CONVERSATION"):]
	assert.NotContains(t, transcript, "message-0\n", "old turns fall out of the transcript window")
	// 8 transcript lines: the window covers the last 4 exchanges.
	assert.Contains(t, transcript, "message-8")
	assert.Contains(t, transcript, "User: message-7")
}

func TestHistoryCapAfterManyExchanges(t *testing.T) {
	t.Parallel()
	history := NewHistory(t.TempDir(), 50)
	a := NewAssembler(&fakeModel{reply: "r"}, &fakeBackend{}, history, 0, nil)
	require.NoError(t, a.Init(context.Background()))

	for i := 0; i < 40; i++ {
		_, err := a.Send(context.Background(), fmt.Sprintf("m%d", i))
		require.NoError(t, err)
	}

	assert.Len(t, a.Turns(), 50)
	persisted, err := history.Load()
	require.NoError(t, err)
	assert.Len(t, persisted, 50)
}

func TestClear_LeavesExactlyOneSeededTurn(t *testing.T) {
	t.Parallel()
	a := newTestAssembler(t, &fakeModel{reply: "r"}, nil)
	require.NoError(t, a.Init(context.Background()))
	_, err := a.Send(context.Background(), "hello")
	require.NoError(t, err)
	require.Len(t, a.Turns(), 3)

	require.NoError(t, a.Clear())
	turns := a.Turns()
	require.Len(t, turns, 1)
	assert.True(t, turns[0].FromAssistant)
	assert.Contains(t, turns[0].Text, "coach")
}

type slowModel struct {
	delay time.Duration
	reply string
}

func (s *slowModel) Generate(context.Context, string) (string, error) {
	time.Sleep(s.delay)
	return s.reply, nil
}

func (s *slowModel) Configured() bool { return true }

func TestTurns_SafeWhileSendInFlight(t *testing.T) {
	t.Parallel()
	a := newTestAssembler(t, &slowModel{delay: 2 * time.Millisecond, reply: "steady"}, nil)
	require.NoError(t, a.Init(context.Background()))

	// The view keeps polling the transcript while sends run on their own
	// goroutine, exactly like spinner re-renders during a reply.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 20; i++ {
			_, err := a.Send(context.Background(), fmt.Sprintf("msg-%d", i))
			assert.NoError(t, err)
		}
	}()

	for {
		select {
		case <-done:
			assert.Len(t, a.Turns(), 41) // welcome + 20 exchanges
			return
		default:
			_ = a.Turns()
			_ = a.HasData()
		}
	}
}

func TestTurns_ReturnsIndependentCopy(t *testing.T) {
	t.Parallel()
	a := newTestAssembler(t, nil, nil)
	require.NoError(t, a.Init(context.Background()))

	turns := a.Turns()
	require.Len(t, turns, 1)
	turns[0].Text = "scribbled over"

	assert.NotEqual(t, "scribbled over", a.Turns()[0].Text)
}
