package analysis

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Greeting opens every conversation.
const Greeting = "Hello! I'm your AI data analysis assistant. I can help you analyze your dataset and provide insights. What would you like to know about your data?"

// Message is one entry of a conversation.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is a chat history answered by a Responder.
// It is safe for concurrent use.
type Conversation struct {
	mu        sync.Mutex
	messages  []Message
	responder Responder
	now       func() time.Time
}

// NewConversation starts a conversation holding only the greeting.
// A zero Responder uses DefaultResponder.
func NewConversation(r Responder) *Conversation {
	if len(r.Rules) == 0 && r.Fallback == "" {
		r = DefaultResponder
	}
	c := &Conversation{responder: r, now: time.Now}
	c.reset()
	return c
}

// Ask records prompt as a user message and appends the reply.
// Blank prompts are ignored and return a zero Message and false.
func (c *Conversation) Ask(prompt string) (Message, bool) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Message{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = append(c.messages, c.newMessage(RoleUser, prompt))
	reply := c.newMessage(RoleAssistant, c.responder.Respond(prompt))
	c.messages = append(c.messages, reply)
	return reply, true
}

// Messages returns a snapshot of the history.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages including the greeting.
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// Clear drops everything but a fresh greeting.
func (c *Conversation) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

func (c *Conversation) reset() {
	c.messages = []Message{c.newMessage(RoleAssistant, Greeting)}
}

func (c *Conversation) newMessage(role Role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: c.now(),
	}
}
