package web

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/teslashibe/voice-relay/pkg/inference"
	"github.com/teslashibe/voice-relay/pkg/relay"
	"github.com/teslashibe/voice-relay/pkg/tts"
)

const statusSuccess = "success"

// Client-visible messages.
var (
	errNotJSON     = fiber.NewError(fiber.StatusBadRequest, "Request must be JSON")
	errBadJSON     = fiber.NewError(fiber.StatusBadRequest, "Invalid JSON body")
	errNoAudio     = fiber.NewError(fiber.StatusBadRequest, "No audio file provided")
	errNoText      = fiber.NewError(fiber.StatusBadRequest, "Missing text")
	errNoMessages  = fiber.NewError(fiber.StatusBadRequest, "Missing messages")
	errNotList     = fiber.NewError(fiber.StatusBadRequest, "Messages must be a list")
	errBadLanguage = fiber.NewError(fiber.StatusBadRequest, "Unsupported language")
	errNotFound    = fiber.NewError(fiber.StatusNotFound, "File not found")
	errSTTFailed   = fiber.NewError(fiber.StatusInternalServerError, "Transcription failed")
	errTTSFailed   = fiber.NewError(fiber.StatusInternalServerError, "Speech synthesis failed")
	errSaveUpload  = fiber.NewError(fiber.StatusInternalServerError, "Could not store upload")
)

// handleHealth reports liveness.
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// handleSTT transcribes an uploaded "audio" file.
func (s *Server) handleSTT(c *fiber.Ctx) error {
	fh, err := c.FormFile("audio")
	if err != nil {
		return errNoAudio
	}

	ext := filepath.Ext(fh.Filename)
	if ext == "" {
		ext = ".wav"
	}
	path := filepath.Join(os.TempDir(), "relay-stt-"+uuid.NewString()+ext)
	if err := c.SaveFile(fh, path); err != nil {
		s.logger.Error("save upload failed", "error", err)
		return errSaveUpload
	}
	defer os.Remove(path)

	res, err := s.relay.Transcribe(c.UserContext(), path)
	if err != nil {
		return errSTTFailed
	}

	return c.JSON(fiber.Map{
		"text":     res.Text,
		"language": res.Language,
		"status":   statusSuccess,
	})
}

type ttsRequest struct {
	Text     *string `json:"text"`
	Language string  `json:"language"`
}

// handleTTS synthesizes text and returns a link to the audio.
func (s *Server) handleTTS(c *fiber.Ctx) error {
	if !c.Is("json") {
		return errNotJSON
	}

	var req ttsRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return errBadJSON
	}
	if req.Text == nil {
		return errNoText
	}
	if req.Language == "" {
		req.Language = "en"
	}

	name, err := s.relay.Speak(c.UserContext(), *req.Text, req.Language)
	if err != nil {
		if relay.IsInputError(err) {
			return inputError(err)
		}
		return errTTSFailed
	}

	return c.JSON(fiber.Map{
		"audio_url": s.audioURL(c, name),
		"status":    statusSuccess,
	})
}

// handleGenerate returns the model's reply to a conversation.
func (s *Server) handleGenerate(c *fiber.Ctx) error {
	if !c.Is("json") {
		return errNotJSON
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return errBadJSON
	}
	raw, ok := body["messages"]
	if !ok {
		return errNoMessages
	}

	var messages []inference.Message
	if err := json.Unmarshal(raw, &messages); err != nil {
		return errNotList
	}

	return c.JSON(fiber.Map{
		"response": s.relay.Reply(c.UserContext(), messages),
		"status":   statusSuccess,
	})
}

// handleAudio streams a stored MP3.
func (s *Server) handleAudio(c *fiber.Ctx) error {
	f, err := s.store.Open(c.Params("filename"))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("audio lookup rejected", "filename", c.Params("filename"), "error", err)
		}
		return errNotFound
	}

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		f.Close()
		return errNotFound
	}

	c.Set(fiber.HeaderContentType, "audio/mpeg")
	return c.SendStream(f, int(info.Size()))
}

// handleWebhook answers the voice platform. Pipeline failures are already
// folded into the reply; only a non-JSON request is rejected.
func (s *Server) handleWebhook(c *fiber.Ctx) error {
	if !c.Is("json") {
		return errNotJSON
	}

	var payload relay.WebhookPayload
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		s.logger.Warn("malformed webhook payload", "error", err)
		return c.JSON(fiber.Map{"text": relay.PhraseFailed, "audioUrl": nil})
	}

	if msgType := messageType(&payload); msgType != "" {
		s.logger.Info("webhook received", "type", msgType)
	}

	reply := s.relay.HandleWebhook(c.UserContext(), &payload)
	if reply.Handled {
		return c.JSON(fiber.Map{"status": "handled"})
	}

	var audioURL *string
	if reply.AudioFile != "" {
		u := s.audioURL(c, reply.AudioFile)
		audioURL = &u
	}
	return c.JSON(fiber.Map{"text": reply.Text, "audioUrl": audioURL})
}

// inputError maps a rejected synthesis request to a client message.
func inputError(err error) error {
	switch {
	case errors.Is(err, tts.ErrEmptyText):
		return errNoText
	case errors.Is(err, tts.ErrUnsupportedLanguage):
		return errBadLanguage
	default:
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request")
	}
}

func messageType(p *relay.WebhookPayload) string {
	if p.Message == nil {
		return ""
	}
	return strings.TrimSpace(p.Message.Type)
}
