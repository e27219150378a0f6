package inference

import (
	"context"
	"errors"
	"testing"
)

func TestMockProvider(t *testing.T) {
	ctx := context.Background()
	mock := NewMock("Mock response")

	resp, err := mock.Chat(ctx, &ChatRequest{
		Messages: []Message{NewUserMessage("Hello")},
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.Message.Content != "Mock response" {
		t.Errorf("Unexpected content %q", resp.Message.Content)
	}

	calls := mock.Calls()
	if len(calls) != 1 || calls[0].Messages[0].Content != "Hello" {
		t.Errorf("Unexpected calls: %+v", calls)
	}

	mock.Reset()
	if mock.CallCount() != 0 {
		t.Error("Expected 0 calls after reset")
	}
}

func TestMockWithError(t *testing.T) {
	testErr := errors.New("test error")
	mock := WithError(testErr)

	_, err := mock.Chat(context.Background(), &ChatRequest{})
	if !errors.Is(err, testErr) {
		t.Errorf("Expected test error, got: %v", err)
	}
}

func TestFunctionalOptions(t *testing.T) {
	cfg := DefaultConfig()

	cfg.Apply(
		WithBaseURL("http://localhost:11434/v1"),
		WithAPIKey("test-key"),
		WithModel("llama3"),
		WithMaxTokens(512),
		WithTemperature(0.5),
	)

	if cfg.BaseURL != "http://localhost:11434/v1" {
		t.Errorf("Expected Ollama URL, got %s", cfg.BaseURL)
	}
	if cfg.APIKey != "test-key" {
		t.Errorf("Expected test-key, got %s", cfg.APIKey)
	}
	if cfg.Model != "llama3" {
		t.Errorf("Expected llama3, got %s", cfg.Model)
	}
	if cfg.MaxTokens != 512 {
		t.Errorf("Expected 512, got %d", cfg.MaxTokens)
	}
	if cfg.Temperature != 0.5 {
		t.Errorf("Expected 0.5, got %f", cfg.Temperature)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Model != "gpt-4" {
		t.Errorf("Expected gpt-4, got %s", cfg.Model)
	}
	if cfg.MaxTokens != 1000 {
		t.Errorf("Expected 1000, got %d", cfg.MaxTokens)
	}
	if cfg.Temperature != 0.7 {
		t.Errorf("Expected 0.7, got %f", cfg.Temperature)
	}
}

func TestLastUserMessage(t *testing.T) {
	msgs := []Message{
		NewSystemMessage("sys"),
		NewUserMessage("first"),
		NewAssistantMessage("reply"),
		NewUserMessage("second"),
		NewAssistantMessage("reply 2"),
	}

	got, ok := LastUserMessage(msgs)
	if !ok || got.Content != "second" {
		t.Errorf("Expected second, got %q (%v)", got.Content, ok)
	}

	if _, ok := LastUserMessage([]Message{NewSystemMessage("only")}); ok {
		t.Error("Expected no user message")
	}
	if _, ok := LastUserMessage(nil); ok {
		t.Error("Expected no user message for nil")
	}
}

func TestProviderError(t *testing.T) {
	inner := &APIError{StatusCode: 500, Message: "boom", Provider: "openai"}
	err := WrapError("openai", inner)

	var apiErr *APIError
	if !errors.As(err, &apiErr) || !apiErr.IsServerError() {
		t.Errorf("Expected wrapped server APIError, got %v", err)
	}
	if WrapError("x", nil) != nil {
		t.Error("Expected nil")
	}
}
