package analysis

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversation_StartsWithGreeting(t *testing.T) {
	t.Parallel()

	c := NewConversation(Responder{})
	msgs := c.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, RoleAssistant, msgs[0].Role)
	assert.Equal(t, Greeting, msgs[0].Content)
	assert.NotEmpty(t, msgs[0].ID)
}

func TestConversation_Ask(t *testing.T) {
	t.Parallel()

	c := NewConversation(Responder{})
	reply, ok := c.Ask("  give me an overview ")
	require.True(t, ok)
	assert.Equal(t, RoleAssistant, reply.Role)
	assert.Equal(t, Respond("overview"), reply.Content)

	msgs := c.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, RoleUser, msgs[1].Role)
	assert.Equal(t, "give me an overview", msgs[1].Content)
	assert.Equal(t, reply, msgs[2])
	assert.NotEqual(t, msgs[1].ID, msgs[2].ID)
}

func TestConversation_BlankPromptIgnored(t *testing.T) {
	t.Parallel()

	c := NewConversation(Responder{})
	_, ok := c.Ask("   ")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())
}

func TestConversation_Clear(t *testing.T) {
	t.Parallel()

	c := NewConversation(Responder{})
	c.Ask("trend")
	c.Ask("forecast")
	require.Equal(t, 5, c.Len())

	c.Clear()
	msgs := c.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, Greeting, msgs[0].Content)
}

func TestConversation_CustomResponder(t *testing.T) {
	t.Parallel()

	c := NewConversation(Responder{Fallback: "ok"})
	reply, _ := c.Ask("summary")
	assert.Equal(t, "ok", reply.Content)
}

func TestConversation_Concurrent(t *testing.T) {
	t.Parallel()

	c := NewConversation(Responder{})
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Ask("compare")
			_ = c.Messages()
		}()
	}
	wg.Wait()
	assert.Equal(t, 41, c.Len())
}
