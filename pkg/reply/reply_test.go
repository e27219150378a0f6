package reply_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/teslashibe/voice-relay/internal/log"
	"github.com/teslashibe/voice-relay/internal/metrics"
	"github.com/teslashibe/voice-relay/pkg/inference"
	"github.com/teslashibe/voice-relay/pkg/reply"
)

func TestRespondTrimsReply(t *testing.T) {
	gen := reply.New(inference.NewMock("  Hello there!\n"), reply.WithLogger(log.Discard()))

	got := gen.Respond(context.Background(), []inference.Message{inference.NewUserMessage("hi")})
	assert.Equal(t, "Hello there!", got)
}

func TestRespondPassesExchangeThrough(t *testing.T) {
	mock := inference.NewMock("ok")
	gen := reply.New(mock, reply.WithLogger(log.Discard()))

	exchange := []inference.Message{
		inference.NewSystemMessage("be brief"),
		inference.NewUserMessage("one"),
		inference.NewAssistantMessage("two"),
		inference.NewUserMessage("three"),
	}
	gen.Respond(context.Background(), exchange)

	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, exchange, calls[0].Messages)
}

func TestRespondApologizesInCallerScript(t *testing.T) {
	tests := []struct {
		name     string
		exchange []inference.Message
		want     string
	}{
		{
			name:     "telugu",
			exchange: []inference.Message{inference.NewUserMessage("నమస్కారం, ఎలా ఉన్నారు?")},
			want:     "క్షమించండి, సాంకేతిక సమస్య ఉంది. దయచేసి తర్వాత ప్రయత్నించండి.",
		},
		{
			name:     "hindi",
			exchange: []inference.Message{inference.NewUserMessage("नमस्ते")},
			want:     "क्षमा करें, तकनीकी समस्या आई है। कृपया बाद में प्रयास करें।",
		},
		{
			name: "last user message decides",
			exchange: []inference.Message{
				inference.NewUserMessage("नमस्ते"),
				inference.NewAssistantMessage("నమస్కారం"),
				inference.NewUserMessage("hello again"),
			},
			want: reply.ApologyEnglish,
		},
		{
			name:     "assistant script ignored",
			exchange: []inference.Message{inference.NewUserMessage("hello"), inference.NewAssistantMessage("नमस्ते")},
			want:     reply.ApologyEnglish,
		},
		{
			name:     "no user message",
			exchange: []inference.Message{inference.NewSystemMessage("నమస్కారం")},
			want:     reply.ApologyEnglish,
		},
		{
			name:     "empty exchange",
			exchange: nil,
			want:     reply.ApologyEnglish,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := reply.New(inference.WithError(errors.New("upstream down")), reply.WithLogger(log.Discard()))
			assert.Equal(t, tt.want, gen.Respond(context.Background(), tt.exchange))
		})
	}
}

func TestRespondRecordsMetrics(t *testing.T) {
	m := metrics.New()
	gen := reply.New(inference.WithError(errors.New("down")), reply.WithMetrics(m), reply.WithLogger(log.Discard()))

	gen.Respond(context.Background(), nil)

	n, err := testutil.GatherAndCount(m.Registry(), "voice_relay_provider_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestApologyAlwaysKnown(t *testing.T) {
	known := map[string]bool{
		reply.ApologyEnglish: true,
		reply.ApologyHindi:   true,
		reply.ApologyTelugu:  true,
	}
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 5).Draw(t, "n")
		msgs := make([]inference.Message, n)
		for i := range msgs {
			role := rapid.SampledFrom([]inference.Role{inference.RoleSystem, inference.RoleUser, inference.RoleAssistant}).Draw(t, "role")
			msgs[i] = inference.Message{Role: role, Content: rapid.String().Draw(t, "content")}
		}
		if got := reply.Apology(msgs); !known[got] {
			t.Fatalf("unexpected apology %q", got)
		}
	})
}
