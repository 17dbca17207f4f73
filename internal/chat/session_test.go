package chat

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_AppendOrderPreserved(t *testing.T) {
	s := NewSession()
	s.Append(RoleUser, "datasets de salud")
	s.Append(RoleAssistant, "Encontré tres datasets.")

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, RoleAssistant, msgs[1].Role)
	assert.Equal(t, "datasets de salud", msgs[0].Content)
}

func TestSession_MessagesReturnsCopy(t *testing.T) {
	s := NewSession()
	s.Append(RoleUser, "hola")

	msgs := s.Messages()
	msgs[0].Content = "mutated"

	assert.Equal(t, "hola", s.Messages()[0].Content)
}

func TestSession_Reset(t *testing.T) {
	s := NewSession()
	s.Append(RoleUser, "hola")
	s.Reset()

	assert.Zero(t, s.Len())
}

func TestStore_GetCreatesPerID(t *testing.T) {
	store := NewStore()

	a := store.Get("a")
	a.Append(RoleUser, "hola")

	assert.Same(t, a, store.Get("a"))
	assert.Zero(t, store.Get("b").Len())
}

func TestSession_ConcurrentAppend(t *testing.T) {
	s := NewSession()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Append(RoleUser, "msg")
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, s.Len())
}
