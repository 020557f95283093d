package http_test

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/require"

	"github.com/davidbz/chatrelay/internal/cache/memory"
	"github.com/davidbz/chatrelay/internal/config"
	"github.com/davidbz/chatrelay/internal/domain"
	relayhttp "github.com/davidbz/chatrelay/internal/http"
	"github.com/davidbz/chatrelay/internal/http/middleware"
	"github.com/davidbz/chatrelay/internal/provider/upstream"
	"github.com/davidbz/chatrelay/internal/provider/upstream/upstreamtest"
	"github.com/davidbz/chatrelay/internal/routing"
)

const relayKey = "relay-key"

type relayOptions struct {
	apiKey string
	filter domain.CatalogFilter
}

type relayOption func(*relayOptions)

func withAPIKey(key string) relayOption {
	return func(o *relayOptions) { o.apiKey = key }
}

func withFilter(filter domain.CatalogFilter) relayOption {
	return func(o *relayOptions) { o.filter = filter }
}

// newRelay serves the full middleware chain and routes in front of the
// given vendor configuration.
func newRelay(t *testing.T, vendor upstream.Config, opts ...relayOption) *httptest.Server {
	t.Helper()

	o := relayOptions{filter: domain.CatalogFilter{ShowPremium: true, IncludeDeprecated: true}}
	for _, opt := range opts {
		opt(&o)
	}

	client := upstream.NewClient(vendor)
	resolver := domain.NewCatalogResolver(client, memory.NewCatalogCache(), o.filter, 0)
	router, err := routing.NewRouter(&routing.Config{Policy: routing.PolicyStrict})
	require.NoError(t, err)

	gateway := domain.NewGatewayService(client, resolver, router, &domain.GatewayConfig{
		DefaultModel: "gpt-4o-mini",
		StreamBuffer: 4,
	})

	chain := middleware.BuildMiddlewareChain(
		&config.CORSConfig{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
			MaxAge:         86400,
		},
		&config.AuthConfig{APIKey: o.apiKey},
	)

	server := relayhttp.NewServer(
		&config.ServerConfig{Port: 0},
		&config.MetricsConfig{Enabled: true, Path: "/metrics"},
		relayhttp.NewHandler(gateway),
		chain,
	)

	ts := httptest.NewServer(server.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func newOpenAIClient(ts *httptest.Server) openai.Client {
	return openai.NewClient(
		option.WithBaseURL(ts.URL+"/v1/"),
		option.WithAPIKey(relayKey),
		option.WithMaxRetries(0),
	)
}

func chatParams(model openai.ChatModel, text string) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Model: model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("Be terse"),
			openai.UserMessage(text),
		},
	}
}

// requireOpenAIError checks the SDK error status and decodes the relay's
// error envelope from the response the SDK keeps.
func requireOpenAIError(t *testing.T, err error, status int, typ string) errorEnvelope {
	t.Helper()

	var apiErr *openai.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, status, apiErr.StatusCode)
	require.NotNil(t, apiErr.Response)

	var env errorEnvelope
	require.NoError(t, json.NewDecoder(apiErr.Response.Body).Decode(&env))
	require.Equal(t, typ, env.Error.Type)
	return env
}

type errorEnvelope struct {
	Error struct {
		Message string  `json:"message"`
		Type    string  `json:"type"`
		Code    *string `json:"code"`
	} `json:"error"`
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()

	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response) errorEnvelope {
	t.Helper()

	var env errorEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

func TestChatCompletions_OpenAIClient(t *testing.T) {
	ctx := context.Background()

	t.Run("should return aggregated completion", func(t *testing.T) {
		vendor := upstreamtest.New(t)
		client := newOpenAIClient(newRelay(t, vendor.Config()))

		resp, err := client.Chat.Completions.New(ctx, chatParams(openai.ChatModelGPT4oMini, "hello brave world"))

		require.NoError(t, err)
		require.True(t, strings.HasPrefix(resp.ID, "chatcmpl-"))
		require.Equal(t, "gpt-4o-mini", resp.Model)
		require.Len(t, resp.Choices, 1)
		require.Equal(t, "hello brave world", resp.Choices[0].Message.Content)
		require.Equal(t, "stop", resp.Choices[0].FinishReason)

		requests := vendor.Requests()
		require.Len(t, requests, 1)
		require.Equal(t, "Be terse", requests[0].SystemInstruction)
		require.Len(t, requests[0].Messages, 1)
	})

	t.Run("should stream deltas", func(t *testing.T) {
		vendor := upstreamtest.New(t)
		client := newOpenAIClient(newRelay(t, vendor.Config()))

		stream := client.Chat.Completions.NewStreaming(ctx, chatParams("claude-3-5-sonnet", "hello brave world"))
		defer stream.Close()

		var (
			content  strings.Builder
			ids      = map[string]struct{}{}
			finishes []string
		)
		for stream.Next() {
			chunk := stream.Current()
			ids[chunk.ID] = struct{}{}
			require.Equal(t, "claude-3-5-sonnet", chunk.Model)
			require.Len(t, chunk.Choices, 1)
			content.WriteString(chunk.Choices[0].Delta.Content)
			if chunk.Choices[0].FinishReason != "" {
				finishes = append(finishes, chunk.Choices[0].FinishReason)
			}
		}

		require.NoError(t, stream.Err())
		require.Equal(t, "hello brave world", content.String())
		require.Len(t, ids, 1)
		require.Equal(t, []string{"stop"}, finishes)
		require.Equal(t, "claude-3-5-sonnet-latest", vendor.Requests()[0].Model)
	})

	t.Run("should list models", func(t *testing.T) {
		vendor := upstreamtest.New(t)
		client := newOpenAIClient(newRelay(t, vendor.Config()))

		page, err := client.Models.List(ctx)

		require.NoError(t, err)
		ids := make([]string, 0, len(page.Data))
		for _, m := range page.Data {
			ids = append(ids, m.ID)
		}
		require.Equal(t, []string{"gpt-4o-mini", "claude-3-5-sonnet", "gpt-3.5-turbo"}, ids)
		require.Equal(t, "anthropic", page.Data[1].OwnedBy)
	})

	t.Run("should apply catalog filter", func(t *testing.T) {
		vendor := upstreamtest.New(t)
		client := newOpenAIClient(newRelay(t, vendor.Config(), withFilter(domain.CatalogFilter{})))

		page, err := client.Models.List(ctx)
		require.NoError(t, err)
		require.Len(t, page.Data, 1)

		_, err = client.Chat.Completions.New(ctx, chatParams("claude-3-5-sonnet", "hi"))
		requireOpenAIError(t, err, http.StatusBadRequest, "invalid_request_error")
	})

	t.Run("should reject unknown model", func(t *testing.T) {
		vendor := upstreamtest.New(t)
		client := newOpenAIClient(newRelay(t, vendor.Config()))

		_, err := client.Chat.Completions.New(ctx, chatParams("gpt-9", "hi"))

		env := requireOpenAIError(t, err, http.StatusBadRequest, "invalid_request_error")
		require.Contains(t, env.Error.Message, "gpt-4o-mini")
		require.Empty(t, vendor.Requests())
	})

	t.Run("should map vendor failure to bad gateway", func(t *testing.T) {
		vendor := upstreamtest.New(t, upstreamtest.WithChatStatus(http.StatusInternalServerError))
		client := newOpenAIClient(newRelay(t, vendor.Config()))

		_, err := client.Chat.Completions.New(ctx, chatParams(openai.ChatModelGPT4oMini, "hi"))

		env := requireOpenAIError(t, err, http.StatusBadGateway, "bad_gateway")
		require.Equal(t, "upstream chat service returned status 500", env.Error.Message)
		require.NotContains(t, err.Error(), "secret-trace-id")
	})

	t.Run("should report stream setup failure as error response", func(t *testing.T) {
		vendor := upstreamtest.New(t, upstreamtest.WithChatStatus(http.StatusServiceUnavailable))
		client := newOpenAIClient(newRelay(t, vendor.Config()))

		stream := client.Chat.Completions.NewStreaming(ctx, chatParams(openai.ChatModelGPT4oMini, "hi"))
		defer stream.Close()

		require.False(t, stream.Next())
		requireOpenAIError(t, stream.Err(), http.StatusBadGateway, "bad_gateway")
	})

	t.Run("should require relay key when configured", func(t *testing.T) {
		vendor := upstreamtest.New(t)
		ts := newRelay(t, vendor.Config(), withAPIKey("other-key"))

		client := newOpenAIClient(ts)
		_, err := client.Models.List(ctx)

		requireOpenAIError(t, err, http.StatusUnauthorized, "authentication_error")
	})
}

func TestChatCompletions_Wire(t *testing.T) {
	t.Run("should write SSE frames then the sentinel", func(t *testing.T) {
		vendor := upstreamtest.New(t, upstreamtest.WithScript(
			"data: {\"text\":\"Hel\"}\n",
			"data: {\"text\":\"lo\"}\n",
			"data: {\"finish_reason\":\"stop\"}\n",
		))
		ts := newRelay(t, vendor.Config())

		resp := postJSON(t, ts.URL+"/v1/chat/completions",
			`{"model":"gpt-4o-mini","stream":true,"messages":[{"role":"user","content":"hi"}]}`)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
		require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		frames := strings.Split(strings.TrimSuffix(string(body), "\n\n"), "\n\n")
		require.Len(t, frames, 4)
		require.Equal(t, "data: [DONE]", frames[3])

		var deltas []string
		for _, frame := range frames[:3] {
			require.True(t, strings.HasPrefix(frame, "data: "))
			var chunk domain.ChatCompletionChunk
			require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(frame, "data: ")), &chunk))
			require.Equal(t, "chat.completion.chunk", chunk.Object)
			if chunk.Choices[0].Delta.Content != nil {
				deltas = append(deltas, *chunk.Choices[0].Delta.Content)
			}
		}
		require.Equal(t, []string{"Hel", "lo"}, deltas)
	})

	t.Run("should accept content parts", func(t *testing.T) {
		vendor := upstreamtest.New(t)
		ts := newRelay(t, vendor.Config())

		resp := postJSON(t, ts.URL+"/v1/chat/completions",
			`{"model":"gpt-4o-mini","messages":[{"role":"user","content":[{"type":"text","text":"parts work"}]}]}`)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		var completion domain.ChatCompletion
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&completion))
		require.Equal(t, "parts work", completion.Choices[0].Message.Content)
	})

	tests := []struct {
		name   string
		body   string
		status int
		typ    string
	}{
		{"empty messages", `{"model":"gpt-4o-mini","messages":[]}`, http.StatusBadRequest, "invalid_request_error"},
		{"missing messages", `{"model":"gpt-4o-mini"}`, http.StatusBadRequest, "invalid_request_error"},
		{"invalid json", `{"model":`, http.StatusBadRequest, "invalid_request_error"},
		{"empty body", ``, http.StatusBadRequest, "invalid_request_error"},
		{"unknown model", `{"model":"gpt-9","messages":[{"role":"user","content":"hi"}]}`, http.StatusBadRequest, "invalid_request_error"},
	}

	for _, tt := range tests {
		t.Run("should reject "+tt.name, func(t *testing.T) {
			vendor := upstreamtest.New(t)
			ts := newRelay(t, vendor.Config())

			resp := postJSON(t, ts.URL+"/v1/chat/completions", tt.body)

			require.Equal(t, tt.status, resp.StatusCode)
			require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
			env := decodeEnvelope(t, resp)
			require.Equal(t, tt.typ, env.Error.Type)
			require.NotEmpty(t, env.Error.Message)
			require.Nil(t, env.Error.Code)
			require.Empty(t, vendor.Requests())
		})
	}

	t.Run("should fail with server error when vendor credential is missing", func(t *testing.T) {
		vendor := upstreamtest.New(t)
		cfg := vendor.Config()
		cfg.APIKey = ""
		ts := newRelay(t, cfg)

		resp := postJSON(t, ts.URL+"/v1/chat/completions",
			`{"model":"gpt-4o-mini","messages":[{"role":"user","content":"hi"}]}`)
		require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		require.Equal(t, "server_error", decodeEnvelope(t, resp).Error.Type)

		models, err := http.Get(ts.URL + "/v1/models")
		require.NoError(t, err)
		defer models.Body.Close()
		require.Equal(t, http.StatusInternalServerError, models.StatusCode)
	})

	t.Run("should fail with server error when catalog is unavailable", func(t *testing.T) {
		vendor := upstreamtest.New(t, upstreamtest.WithModelsStatus(http.StatusBadGateway))
		ts := newRelay(t, vendor.Config())

		resp, err := http.Get(ts.URL + "/v1/models")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		require.Equal(t, "no models available", decodeEnvelope(t, resp).Error.Message)
	})
}

func TestChatCompletions_ClientDisconnect(t *testing.T) {
	released := make(chan struct{})
	done := make(chan struct{})
	vendor := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/models":
			_, _ = io.WriteString(w, `{"models":[{"id":"gpt-4o-mini","model":"gpt-4o-mini","provider":"openai"}]}`)
		case "/api/chat":
			// Hang-ups are only noticed once the request body is consumed.
			_, _ = io.Copy(io.Discard, r.Body)
			w.Header().Set("Content-Type", "text/event-stream")
			_, _ = io.WriteString(w, "data: {\"text\":\"first\"}\n")
			w.(http.Flusher).Flush()
			select {
			case <-r.Context().Done():
				close(released)
			case <-done:
			}
		}
	}))
	t.Cleanup(vendor.Close)
	t.Cleanup(func() { close(done) })

	ts := newRelay(t, upstream.Config{
		APIKey:       "k",
		ModelsURL:    vendor.URL + "/api/models",
		ChatURL:      vendor.URL + "/api/chat",
		Timeout:      5,
		StreamBuffer: 1,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.URL+"/v1/chat/completions",
		strings.NewReader(`{"model":"gpt-4o-mini","stream":true,"messages":[{"role":"user","content":"hi"}]}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	require.NoError(t, err)
	require.Contains(t, line, "first")

	cancel()

	select {
	case <-released:
	case <-time.After(5 * time.Second):
		t.Fatal("vendor stream was not released after client disconnect")
	}
}

func TestRoutes(t *testing.T) {
	vendor := upstreamtest.New(t)
	ts := newRelay(t, vendor.Config(), withAPIKey(relayKey))

	get := func(t *testing.T, path string) *http.Response {
		t.Helper()
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		t.Cleanup(func() { _ = resp.Body.Close() })
		return resp
	}

	t.Run("should report health without auth", func(t *testing.T) {
		resp := get(t, "/health")

		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Equal(t, "ok", body["status"])
	})

	t.Run("should return not found envelope for unknown paths", func(t *testing.T) {
		for _, path := range []string{"/v2/models", "/", "/healthz"} {
			resp := get(t, path)

			require.Equal(t, http.StatusNotFound, resp.StatusCode, path)
			require.Equal(t, "not_found", decodeEnvelope(t, resp).Error.Type, path)
		}
	})

	t.Run("should answer preflight on any path", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodOptions, ts.URL+"/v1/chat/completions", nil)
		require.NoError(t, err)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusNoContent, resp.StatusCode)
		require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
		require.Equal(t, "86400", resp.Header.Get("Access-Control-Max-Age"))
	})

	t.Run("should expose metrics", func(t *testing.T) {
		_ = get(t, "/health")
		resp := get(t, "/metrics")

		require.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Contains(t, string(body), "chatrelay_requests_total")
	})

	t.Run("should reject missing key on api routes", func(t *testing.T) {
		resp := get(t, "/v1/models")

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, "authentication_error", decodeEnvelope(t, resp).Error.Type)
	})

	t.Run("should propagate request id", func(t *testing.T) {
		resp := get(t, "/health")

		require.NotEmpty(t, resp.Header.Get("X-Request-Id"))
		require.Len(t, resp.Header.Get("X-Trace-Id"), 32)
	})
}

func TestServer_Shutdown(t *testing.T) {
	server := relayhttp.NewServer(
		&config.ServerConfig{Port: 0},
		&config.MetricsConfig{},
		relayhttp.NewHandler(nil),
		middleware.Chain(),
	)

	require.NoError(t, server.Shutdown(context.Background()))
}
