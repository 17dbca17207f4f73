// Package search serves the conversational dataset search panel. Each browser
// session gets its own chat history, keyed by a session cookie.
package search

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/datacensus/datacensus/internal/chat"
	"github.com/datacensus/datacensus/internal/ui/views"
)

const (
	sessionName = "datacensus_session"
	sessionKey  = "chat_id"
)

// Asker is the slice of the agent client the search feature needs.
type Asker interface {
	Ask(ctx context.Context, message string) (string, error)
}

// AskSignals are the frontend signals read by the ask handler.
type AskSignals struct {
	SearchMessage string `json:"searchMessage"`
}

// Handlers provides the HTTP handlers for the search feature.
type Handlers struct {
	agent        Asker
	store        *chat.Store
	sessionStore sessions.Store
	views        *views.Views
	logger       *slog.Logger
}

// NewHandlers creates a Handlers instance. A nil agent disables the feature;
// asks then answer with a configuration notice instead of failing.
func NewHandlers(agent Asker, store *chat.Store, sessionStore sessions.Store, v *views.Views, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		agent:        agent,
		store:        store,
		sessionStore: sessionStore,
		views:        v,
		logger:       logger,
	}
}

// Ask sends the user's message to the search agent and patches the chat panel
// with the reply.
func (h *Handlers) Ask(w http.ResponseWriter, r *http.Request) {
	var signals AskSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	session := h.session(w, r)
	sse := datastar.NewSSE(w, r)

	message := strings.TrimSpace(signals.SearchMessage)
	if message == "" {
		h.patchChat(sse, session, "")
		return
	}

	session.Append(chat.RoleUser, message)
	// Show the question and the busy indicator while the agent thinks.
	h.patchChatBusy(sse, session)
	_ = sse.PatchSignals([]byte(`{"searchMessage": ""}`))

	if h.agent == nil {
		session.Append(chat.RoleAssistant, "La búsqueda conversacional no está configurada.")
		h.patchChat(sse, session, "")
		return
	}

	answer, err := h.agent.Ask(r.Context(), message)
	if err != nil {
		h.logger.Error("search agent failed", "error", err)
		h.patchChat(sse, session, "No se pudo obtener una respuesta. Intenta de nuevo.")
		return
	}

	session.Append(chat.RoleAssistant, answer)
	h.patchChat(sse, session, "")
}

// Reset discards the session's chat history.
func (h *Handlers) Reset(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)
	session.Reset()

	sse := datastar.NewSSE(w, r)
	h.patchChat(sse, session, "")
}

// session resolves the chat session for this browser, minting the cookie on
// first use.
func (h *Handlers) session(w http.ResponseWriter, r *http.Request) *chat.Session {
	cookie, _ := h.sessionStore.Get(r, sessionName)

	id, ok := cookie.Values[sessionKey].(string)
	if !ok || id == "" {
		id = uuid.NewString()
		cookie.Values[sessionKey] = id
		if err := cookie.Save(r, w); err != nil {
			h.logger.Warn("failed to save session cookie", "error", err)
		}
	}
	return h.store.Get(id)
}

func (h *Handlers) patchChat(sse *datastar.ServerSentEventGenerator, session *chat.Session, errMsg string) {
	h.patch(sse, views.ChatData{Messages: chatMessages(session), Error: errMsg})
}

func (h *Handlers) patchChatBusy(sse *datastar.ServerSentEventGenerator, session *chat.Session) {
	h.patch(sse, views.ChatData{Messages: chatMessages(session), Busy: true})
}

func (h *Handlers) patch(sse *datastar.ServerSentEventGenerator, data views.ChatData) {
	html, err := h.views.Fragment("chat", data)
	if err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	if err := sse.PatchElements(html); err != nil {
		_ = sse.ConsoleError(err)
	}
}

func chatMessages(session *chat.Session) []views.ChatMessage {
	msgs := session.Messages()
	out := make([]views.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, views.ChatMessage{Role: string(m.Role), Content: m.Content})
	}
	return out
}
