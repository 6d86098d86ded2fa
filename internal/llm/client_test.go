package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplete(t *testing.T) {
	var got generatePayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		json.NewEncoder(w).Encode(generateResponse{Response: "  fashion|confidence:90%\n"})
	}))
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL, Model: "phi4:latest", MaxTokens: 200})

	text, err := c.Complete(context.Background(), CompletionRequest{Prompt: "classify this"})
	require.NoError(t, err)
	assert.Equal(t, "fashion|confidence:90%", text)

	assert.Equal(t, "phi4:latest", got.Model)
	assert.Equal(t, "classify this", got.Prompt)
	assert.Equal(t, 200, got.MaxTokens)
	assert.False(t, got.Stream)
}

func TestComplete_RequestOverridesDefaults(t *testing.T) {
	var got generatePayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(generateResponse{Response: "ok"})
	}))
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL, Model: "phi4:latest"})

	_, err := c.Complete(context.Background(), CompletionRequest{
		Prompt:    "translate this",
		Model:     "aya:8b",
		MaxTokens: 500,
	})
	require.NoError(t, err)
	assert.Equal(t, "aya:8b", got.Model)
	assert.Equal(t, 500, got.MaxTokens)
}

func TestComplete_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL, Model: "phi4:latest"})

	_, err := c.Complete(context.Background(), CompletionRequest{Prompt: "classify"})
	require.Error(t, err)
	assert.Equal(t, KindStatus, KindOf(err))

	var infErr *InferenceError
	require.ErrorAs(t, err, &infErr)
	assert.Equal(t, http.StatusNotFound, infErr.Status)
}

func TestComplete_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused

	c := NewClient(Config{URL: srv.URL, Model: "phi4:latest"})

	_, err := c.Complete(context.Background(), CompletionRequest{Prompt: "classify"})
	require.Error(t, err)
	assert.Equal(t, KindTransport, KindOf(err))
}

func TestComplete_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL, Model: "phi4:latest"})

	_, err := c.Complete(context.Background(), CompletionRequest{Prompt: "classify"})
	require.Error(t, err)
	assert.Equal(t, KindMalformed, KindOf(err))
}

func TestComplete_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		json.NewEncoder(w).Encode(generateResponse{Response: "too late"})
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(Config{URL: srv.URL, Model: "phi4:latest", Timeout: 20 * time.Millisecond})

	_, err := c.Complete(context.Background(), CompletionRequest{Prompt: "classify"})
	require.Error(t, err)
	assert.Equal(t, KindTransport, KindOf(err))
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, ErrorKind(""), KindOf(assert.AnError))
}
