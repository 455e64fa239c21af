package labels

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatClient struct {
	createFn func(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

func (f *fakeChatClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return f.createFn(ctx, req)
}

func completion(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
		},
	}
}

func newFakeOpenAIServer(t *testing.T, handler func(w http.ResponseWriter, body openai.ChatCompletionRequest)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		var body openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		handler(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRemoteLabelsAgainstCompatibleServer(t *testing.T) {
	requests := make(chan openai.ChatCompletionRequest, 1)
	server := newFakeOpenAIServer(t, func(w http.ResponseWriter, body openai.ChatCompletionRequest) {
		requests <- body
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 0,
			"model":   body.Model,
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": `["Choose destination", "Set budget", "Book transport", "Pack essentials", "Plan itinerary"]`,
				},
			}},
		})
	})

	remote := NewRemote(RemoteOptions{
		APIKey:  "test-key",
		Model:   "test-model",
		BaseURL: server.URL + "/v1",
		Timeout: 2 * time.Second,
	})

	got, err := remote.Labels(context.Background(), "Plan a trip", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Choose destination", "Set budget", "Book transport", "Pack essentials", "Plan itinerary"}, got)

	captured := <-requests
	assert.Equal(t, "test-model", captured.Model)
	assert.InDelta(t, DefaultTemperature, captured.Temperature, 0.0001)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, captured.Messages[0].Role)
	assert.Contains(t, captured.Messages[0].Content, "JSON array")
	assert.Equal(t, "Parent node: Plan a trip\nDepth: 0\nGenerate child nodes that expand this idea.", captured.Messages[1].Content)
}

func TestRemoteLabelsServerError(t *testing.T) {
	server := newFakeOpenAIServer(t, func(w http.ResponseWriter, _ openai.ChatCompletionRequest) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	})

	remote := NewRemote(RemoteOptions{APIKey: "k", BaseURL: server.URL + "/v1", Timeout: time.Second})
	_, err := remote.Labels(context.Background(), "Plan a trip", 0)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrTimeout))
}

func TestRemoteLabelsTimeout(t *testing.T) {
	client := &fakeChatClient{createFn: func(ctx context.Context, _ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
		<-ctx.Done()
		return openai.ChatCompletionResponse{}, ctx.Err()
	}}
	remote := newRemoteWithClient(client, "", 20*time.Millisecond)

	started := time.Now()
	_, err := remote.Labels(context.Background(), "slow", 0)
	require.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(started), time.Second)
}

func TestRemoteLabelsNoChoices(t *testing.T) {
	client := &fakeChatClient{createFn: func(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
		return openai.ChatCompletionResponse{}, nil
	}}
	_, err := newRemoteWithClient(client, "", time.Second).Labels(context.Background(), "x", 1)
	require.ErrorIs(t, err, ErrNoChoices)
}

func TestRemoteLabelsMalformedContent(t *testing.T) {
	client := &fakeChatClient{createFn: func(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
		return completion("Here you go: a, b, c"), nil
	}}
	_, err := newRemoteWithClient(client, "", time.Second).Labels(context.Background(), "x", 1)
	require.ErrorIs(t, err, ErrMalformedOutput)
}

func TestNewRemoteDefaults(t *testing.T) {
	remote := NewRemote(RemoteOptions{APIKey: "k"})
	assert.Equal(t, DefaultModel, remote.Model())
	assert.Equal(t, defaultTimeout, remote.timeout)
}
