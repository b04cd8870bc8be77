package store

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

const (
	transcriptUserLabel      = "**You:**"
	transcriptAssistantLabel = "**Assistant:**"
)

// Turn is one utterance in a conversation. Turns are immutable once
// appended.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Conversation is the append-only transcript of one chat session. The
// transcript is the single source of truth for what the session displays:
// every read replays it in order, and removing the whole thing (Clear) is
// the only way to take a turn back.
type Conversation struct {
	ID string

	mu    sync.Mutex
	turns []Turn
}

func NewConversation(id string) *Conversation {
	return &Conversation{ID: id}
}

// Append records a turn at the end of the transcript and returns it.
func (c *Conversation) Append(role, content string) Turn {
	turn := Turn{
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}

	c.mu.Lock()
	c.turns = append(c.turns, turn)
	c.mu.Unlock()

	return turn
}

// Replay returns the transcript in append order. The slice is a copy;
// mutating it does not touch the conversation.
func (c *Conversation) Replay() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()

	turns := make([]Turn, len(c.turns))
	copy(turns, c.turns)
	return turns
}

func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.turns)
}

// Clear drops every turn. The conversation itself stays usable.
func (c *Conversation) Clear() {
	c.mu.Lock()
	c.turns = nil
	c.mu.Unlock()
}

// Export renders the transcript as markdown: each turn is a bold role label,
// a blank line and the content, and turns are separated by a horizontal
// rule. An empty transcript exports as an empty string.
func (c *Conversation) Export() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	blocks := make([]string, 0, len(c.turns))
	for _, turn := range c.turns {
		label := transcriptAssistantLabel
		if turn.Role == RoleUser {
			label = transcriptUserLabel
		}
		blocks = append(blocks, fmt.Sprintf("%s\n\n%s\n", label, turn.Content))
	}

	return strings.Join(blocks, "\n---\n")
}
