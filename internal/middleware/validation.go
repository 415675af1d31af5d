package middleware

import (
	"errors"
	"unicode/utf8"

	"github.com/spectralvoice/hauntify/internal/model"
)

const (
	maxMessageContent = 2000
	maxMessages       = 50
	maxPlaceQuery     = 200
	maxVoiceText      = 5000
)

// ValidateChatRequest validates an inbound story request.
func ValidateChatRequest(req *model.ChatRequest) error {
	if len(req.Messages) == 0 {
		return errors.New("messages cannot be empty")
	}
	if len(req.Messages) > maxMessages {
		return errors.New("too many messages")
	}
	for _, msg := range req.Messages {
		switch msg.Role {
		case model.RoleSystem, model.RoleUser, model.RoleAssistant:
		default:
			return errors.New("invalid message role")
		}
		if msg.Content == "" {
			return errors.New("message content cannot be empty")
		}
		if len(msg.Content) > maxMessageContent {
			return errors.New("message content exceeds maximum length")
		}
		if !utf8.ValidString(msg.Content) {
			return errors.New("message content must be valid UTF-8")
		}
	}
	return nil
}

// ValidatePlaceQuery validates a geocoding query string.
func ValidatePlaceQuery(q string) error {
	if q == "" {
		return errors.New("query cannot be empty")
	}
	if len(q) > maxPlaceQuery {
		return errors.New("query exceeds maximum length")
	}
	if !utf8.ValidString(q) {
		return errors.New("query must be valid UTF-8")
	}
	return nil
}

// ValidateVoiceText validates text submitted for speech synthesis.
func ValidateVoiceText(text string) error {
	if text == "" {
		return errors.New("text cannot be empty")
	}
	if len(text) > maxVoiceText {
		return errors.New("text exceeds maximum length")
	}
	if !utf8.ValidString(text) {
		return errors.New("text must be valid UTF-8")
	}
	return nil
}
