// Package upstreamtest provides an in-process fake of the vendor API.
// By default the chat endpoint echoes the last user message back word by
// word, one SSE line per transport write, and finishes with "stop".
package upstreamtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/davidbz/chatrelay/internal/domain"
	"github.com/davidbz/chatrelay/internal/provider/upstream"
)

// APIKey is the credential the fake expects.
const APIKey = "upstream-test-key"

// DefaultModels is the catalog served unless WithModels is used.
//
//nolint:gochecknoglobals // test fixture
var DefaultModels = []domain.CatalogModel{
	{ID: "gpt-4o-mini", Model: "gpt-4o-mini", Provider: "openai", Availability: "stable"},
	{ID: "claude-3-5-sonnet", Model: "claude-3-5-sonnet-latest", Provider: "anthropic", RequiresPremium: true, Availability: "stable"},
	{ID: "gpt-3.5-turbo", Model: "gpt-3.5-turbo-0125", Provider: "openai", Availability: "deprecated"},
}

// Server is a fake vendor API backed by httptest.
type Server struct {
	*httptest.Server

	mu           sync.Mutex
	models       []domain.CatalogModel
	modelsBody   string
	modelsStatus int
	chatStatus   int
	script       []string
	requests     []domain.VendorChatRequest
	headers      []http.Header
	modelsCalls  int
}

// Option configures the fake.
type Option func(*Server)

// WithModels replaces the served catalog.
func WithModels(models ...domain.CatalogModel) Option {
	return func(s *Server) { s.models = models }
}

// WithModelsBody serves a raw catalog payload.
func WithModelsBody(body string) Option {
	return func(s *Server) { s.modelsBody = body }
}

// WithModelsStatus makes the catalog endpoint fail with status.
func WithModelsStatus(status int) Option {
	return func(s *Server) { s.modelsStatus = status }
}

// WithChatStatus makes the chat endpoint fail with status.
func WithChatStatus(status int) Option {
	return func(s *Server) { s.chatStatus = status }
}

// WithScript makes the chat endpoint write each chunk verbatim, flushing after each.
func WithScript(chunks ...string) Option {
	return func(s *Server) { s.script = chunks }
}

// New starts the fake and registers its shutdown with t.
func New(t testing.TB, opts ...Option) *Server {
	t.Helper()

	s := &Server{models: DefaultModels}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/models", s.handleModels)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)

	return s
}

// Config returns an upstream configuration pointing at the fake.
func (s *Server) Config() upstream.Config {
	return upstream.Config{
		APIKey:         APIKey,
		ModelsURL:      s.URL + "/api/models",
		ChatURL:        s.URL + "/api/chat",
		UserAgent:      "upstreamtest",
		Accept:         "*/*",
		AcceptLanguage: "en-US",
		Timeout:        5,
		StreamBuffer:   4,
	}
}

// Requests returns the chat bodies received so far.
func (s *Server) Requests() []domain.VendorChatRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.VendorChatRequest(nil), s.requests...)
}

// Headers returns the headers of every request received so far.
func (s *Server) Headers() []http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]http.Header(nil), s.headers...)
}

// ModelsCalls returns how many times the catalog was fetched.
func (s *Server) ModelsCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modelsCalls
}

func (s *Server) authorized(w http.ResponseWriter, r *http.Request) bool {
	s.mu.Lock()
	s.headers = append(s.headers, r.Header.Clone())
	s.mu.Unlock()

	if r.Header.Get("Authorization") != "Bearer "+APIKey {
		http.Error(w, `{"detail":"invalid credentials"}`, http.StatusUnauthorized)
		return false
	}
	return true
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(w, r) {
		return
	}

	s.mu.Lock()
	s.modelsCalls++
	status, raw, models := s.modelsStatus, s.modelsBody, s.models
	s.mu.Unlock()

	if status != 0 {
		http.Error(w, `{"detail":"catalog unavailable"}`, status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if raw != "" {
		_, _ = w.Write([]byte(raw))
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"models":         models,
		"default_models": map[string]string{"chat": "gpt-4o-mini"},
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(w, r) {
		return
	}

	var req domain.VendorChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"detail":"bad body"}`, http.StatusUnprocessableEntity)
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	status, script := s.chatStatus, s.script
	s.mu.Unlock()

	if status != 0 {
		http.Error(w, `{"detail":"internal vendor failure: secret-trace-id"}`, status)
		return
	}

	if script == nil {
		script = EchoScript(req.Messages)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	flusher, _ := w.(http.Flusher)
	for _, chunk := range script {
		if _, err := w.Write([]byte(chunk)); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

// EchoScript renders the last user message as one SSE line per word
// followed by a "stop" finish event.
func EchoScript(messages []domain.VendorMessage) []string {
	var text string
	for _, msg := range messages {
		if msg.Author == domain.RoleUser {
			text = msg.Content.Text
		}
	}

	words := strings.Fields(text)
	script := make([]string, 0, len(words)+1)
	for i, word := range words {
		if i > 0 {
			word = " " + word
		}
		payload, _ := json.Marshal(map[string]string{"text": word})
		script = append(script, fmt.Sprintf("data: %s\n", payload))
	}
	return append(script, "data: {\"finish_reason\":\"stop\"}\n")
}
