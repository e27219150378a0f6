package relay

import (
	"context"
	"strings"

	"github.com/teslashibe/voice-relay/pkg/inference"
	"github.com/teslashibe/voice-relay/pkg/script"
)

// Phrases returned to the voice platform instead of errors.
const (
	PhraseNotHeard = "Sorry, I didn't catch that."
	PhraseFailed   = "Sorry, something went wrong. Please try again."
)

// Fallback reasons recorded in metrics.
const (
	reasonEmptyInput = "empty_input"
	reasonPipeline   = "pipeline_error"
)

// Vapi message types that carry a conversation.
const (
	typeConversationUpdate = "conversation-update"
	typeTranscript         = "transcript"
)

// WebhookPayload is the body the voice platform posts. Callers may send a
// single transcript, a conversation at the top level, or a Vapi envelope
// with the conversation nested under message.
type WebhookPayload struct {
	Transcript   *string             `json:"transcript,omitempty"`
	Language     string              `json:"language,omitempty"`
	Conversation []inference.Message `json:"conversation,omitempty"`
	Messages     []inference.Message `json:"messages,omitempty"`
	Message      *VapiMessage        `json:"message,omitempty"`
}

// VapiMessage is the envelope Vapi wraps server events in.
type VapiMessage struct {
	Type         string              `json:"type"`
	Conversation []inference.Message `json:"conversation,omitempty"`
	Transcript   string              `json:"transcript,omitempty"`
	Language     string              `json:"language,omitempty"`
}

// WebhookReply is the relay's answer to the voice platform. AudioFile is
// empty when no audio could be produced. Handled is set for events that need
// no spoken reply.
type WebhookReply struct {
	Text      string
	AudioFile string
	Handled   bool
}

// utterance returns the latest user text in the payload and whether the
// payload carried any conversational content at all.
func (p *WebhookPayload) utterance() (string, bool) {
	if p.Transcript != nil {
		return *p.Transcript, true
	}
	for _, conv := range [][]inference.Message{p.Conversation, p.Messages} {
		if last, ok := inference.LastUserMessage(conv); ok {
			return last.Content, true
		}
	}
	if m := p.Message; m != nil {
		switch m.Type {
		case typeTranscript:
			return m.Transcript, true
		case "", typeConversationUpdate:
			if last, ok := inference.LastUserMessage(m.Conversation); ok {
				return last.Content, true
			}
		default:
			return "", false
		}
	}
	return "", true
}

// languageHint returns the caller-supplied language, if any.
func (p *WebhookPayload) languageHint() string {
	if p.Language != "" {
		return p.Language
	}
	if p.Message != nil {
		return p.Message.Language
	}
	return ""
}

// HandleWebhook answers one voice-platform event. Failures never escape:
// they collapse to a fixed phrase with no audio.
func (r *Relay) HandleWebhook(ctx context.Context, p *WebhookPayload) WebhookReply {
	if p == nil {
		p = &WebhookPayload{}
	}

	text, conversational := p.utterance()
	if !conversational {
		r.logger.Debug("webhook event needs no reply", "type", p.Message.Type)
		return WebhookReply{Handled: true}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		r.metrics.WebhookFallback(reasonEmptyInput)
		return WebhookReply{Text: PhraseNotHeard}
	}

	answer := r.Reply(ctx, []inference.Message{inference.NewUserMessage(text)})

	lang := p.languageHint()
	if lang == "" {
		lang = script.DetectLanguage(answer)
	}
	if lang == "" {
		lang = "en"
	}

	file, err := r.Speak(ctx, answer, lang)
	if err != nil {
		r.logger.Error("webhook pipeline failed", "language", lang, "error", err)
		r.metrics.WebhookFallback(reasonPipeline)
		return WebhookReply{Text: PhraseFailed}
	}

	return WebhookReply{Text: answer, AudioFile: file}
}
