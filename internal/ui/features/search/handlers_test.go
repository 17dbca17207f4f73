package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datacensus/datacensus/internal/chat"
	"github.com/datacensus/datacensus/internal/testutil"
	"github.com/datacensus/datacensus/internal/ui/views"
)

type stubAgent struct {
	answer string
	err    error
	asked  []string
}

func (s *stubAgent) Ask(_ context.Context, message string) (string, error) {
	s.asked = append(s.asked, message)
	return s.answer, s.err
}

func setupHandlers(t *testing.T, agent Asker) (*Handlers, *chat.Store) {
	t.Helper()

	v, err := views.New()
	require.NoError(t, err)

	store := chat.NewStore()
	sessionStore := sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
	return NewHandlers(agent, store, sessionStore, v, testutil.NewTestLogger(t)), store
}

func askRequest(message string) *http.Request {
	body := strings.NewReader(fmt.Sprintf(`{"searchMessage":%q}`, message))
	req := httptest.NewRequest(http.MethodPost, "/api/search/ask", body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAsk_AppendsBothSidesOfTheExchange(t *testing.T) {
	agent := &stubAgent{answer: "Encontré dos datasets de salud."}
	h, _ := setupHandlers(t, agent)

	rec := httptest.NewRecorder()
	h.Ask(rec, askRequest("datasets de salud"))

	body := rec.Body.String()
	assert.Contains(t, body, "datasets de salud")
	assert.Contains(t, body, "Encontré dos datasets de salud.")
	require.Len(t, agent.asked, 1)
	assert.Equal(t, "datasets de salud", agent.asked[0])

	// The session cookie is minted on first contact.
	assert.NotEmpty(t, rec.Header().Get("Set-Cookie"))
}

func TestAsk_EmptyMessageSkipsAgent(t *testing.T) {
	agent := &stubAgent{answer: "no debería llamarse"}
	h, _ := setupHandlers(t, agent)

	rec := httptest.NewRecorder()
	h.Ask(rec, askRequest("   "))

	assert.Empty(t, agent.asked)
}

func TestAsk_AgentFailureKeepsUserMessage(t *testing.T) {
	agent := &stubAgent{err: fmt.Errorf("webhook caído")}
	h, _ := setupHandlers(t, agent)

	rec := httptest.NewRecorder()
	h.Ask(rec, askRequest("datasets de movilidad"))

	body := rec.Body.String()
	assert.Contains(t, body, "datasets de movilidad")
	assert.Contains(t, body, "No se pudo obtener una respuesta")
	// No assistant bubble for the failed turn.
	assert.NotContains(t, body, "chat-assistant\">")
}

func TestAsk_NoAgentConfigured(t *testing.T) {
	h, _ := setupHandlers(t, nil)

	rec := httptest.NewRecorder()
	h.Ask(rec, askRequest("hola"))

	assert.Contains(t, rec.Body.String(), "no está configurada")
}

func TestAsk_SessionCookieSeparatesHistories(t *testing.T) {
	agent := &stubAgent{answer: "respuesta"}
	h, _ := setupHandlers(t, agent)

	// First browser.
	rec := httptest.NewRecorder()
	h.Ask(rec, askRequest("primera"))
	cookie := rec.Header().Get("Set-Cookie")
	require.NotEmpty(t, cookie)

	// Same browser again, carrying the cookie: history accumulates.
	req := askRequest("segunda")
	req.Header.Set("Cookie", cookie)
	sameRec := httptest.NewRecorder()
	h.Ask(sameRec, req)
	assert.Contains(t, sameRec.Body.String(), "primera")
	assert.Contains(t, sameRec.Body.String(), "segunda")

	// A different browser without the cookie starts clean.
	otherRec := httptest.NewRecorder()
	h.Ask(otherRec, askRequest("otra sesión"))
	assert.NotContains(t, otherRec.Body.String(), "primera")
	assert.Contains(t, otherRec.Body.String(), "otra sesión")
}

func TestReset_ClearsHistory(t *testing.T) {
	agent := &stubAgent{answer: "respuesta"}
	h, _ := setupHandlers(t, agent)

	rec := httptest.NewRecorder()
	h.Ask(rec, askRequest("hola"))
	cookie := rec.Header().Get("Set-Cookie")

	resetReq := httptest.NewRequest(http.MethodPost, "/api/search/reset", nil)
	resetReq.Header.Set("Cookie", cookie)
	resetRec := httptest.NewRecorder()
	h.Reset(resetRec, resetReq)

	// After reset the panel shows the empty-state hint again.
	assert.Contains(t, resetRec.Body.String(), "Pregunta por datasets")

	// And a follow-up ask starts from a clean history.
	followUp := askRequest("nueva pregunta")
	followUp.Header.Set("Cookie", cookie)
	followRec := httptest.NewRecorder()
	h.Ask(followRec, followUp)
	assert.NotContains(t, followRec.Body.String(), "hola")
}
