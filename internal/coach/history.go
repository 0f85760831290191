package coach

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// DefaultHistoryLimit caps the persisted conversation. It is a product
// tuning constant, configurable rather than a hard invariant.
const DefaultHistoryLimit = 50

const historyFile = "chat_history.json"

// Turn is one message of the coach conversation.
type Turn struct {
	ID            string    `json:"id"`
	Text          string    `json:"text"`
	FromAssistant bool      `json:"is_from_assistant"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewUserTurn creates a user-authored turn stamped now.
func NewUserTurn(text string) Turn {
	return Turn{ID: uuid.NewString(), Text: text, Timestamp: time.Now()}
}

// NewAssistantTurn creates an assistant-authored turn stamped now.
func NewAssistantTurn(text string) Turn {
	return Turn{ID: uuid.NewString(), Text: text, FromAssistant: true, Timestamp: time.Now()}
}

// History persists the conversation turns as a JSON file, truncated FIFO
// to the configured limit on every save.
type History struct {
	dir   string
	limit int
}

// NewHistory creates a history store under dir. A non-positive limit falls
// back to DefaultHistoryLimit.
func NewHistory(dir string, limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{dir: dir, limit: limit}
}

func (h *History) path() string {
	return filepath.Join(h.dir, historyFile)
}

// Limit returns the configured cap.
func (h *History) Limit() int {
	return h.limit
}

// Load returns the persisted turns in insertion order. A missing file is
// an empty history, not an error.
func (h *History) Load() ([]Turn, error) {
	data, err := os.ReadFile(h.path())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read chat history: %w", err)
	}

	var turns []Turn
	if err := json.Unmarshal(data, &turns); err != nil {
		return nil, fmt.Errorf("decode chat history: %w", err)
	}
	return turns, nil
}

// Save persists turns, dropping the oldest entries beyond the limit, and
// returns the (possibly truncated) slice that was written.
func (h *History) Save(turns []Turn) ([]Turn, error) {
	if len(turns) > h.limit {
		turns = turns[len(turns)-h.limit:]
	}
	data, err := json.MarshalIndent(turns, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode chat history: %w", err)
	}
	if err := os.MkdirAll(h.dir, 0o700); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	if err := os.WriteFile(h.path(), data, 0o600); err != nil {
		return nil, fmt.Errorf("write chat history: %w", err)
	}
	return turns, nil
}

// Clear removes the persisted history.
func (h *History) Clear() error {
	err := os.Remove(h.path())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove chat history: %w", err)
	}
	return nil
}
