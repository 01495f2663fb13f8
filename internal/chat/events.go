package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/vietanh2810/school-portal/internal/domain"
)

const (
	EventChatMessage = "chat_message"
	EventNewMessage  = "new_message"
)

var errBlankContent = errors.New("must not be blank")

// ComposeEvent is what a client sends to post a message.
type ComposeEvent struct {
	Type    string  `json:"type"`
	UserID  *string `json:"userId"`
	Content *string `json:"content"`
}

func (e *ComposeEvent) Validate() error {
	return validation.ValidateStruct(
		e,
		validation.Field(&e.UserID, validation.NotNil, validation.Required),
		validation.Field(&e.Content, validation.NotNil, validation.By(notBlank)),
	)
}

func notBlank(value interface{}) error {
	s, _ := value.(*string)
	if s == nil || strings.TrimSpace(*s) == "" {
		return errBlankContent
	}

	return nil
}

// NewMessageEvent is broadcast to every connection once a message is stored.
type NewMessageEvent struct {
	Type    string                 `json:"type"`
	Message domain.EnrichedMessage `json:"message"`
}

func decodeComposeEvent(raw []byte) (ComposeEvent, error) {
	var ev ComposeEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return ComposeEvent{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	if ev.Type != EventChatMessage {
		return ComposeEvent{}, fmt.Errorf("%w: %q", ErrUnsupportedEvent, ev.Type)
	}

	if err := ev.Validate(); err != nil {
		return ComposeEvent{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	return ev, nil
}

func encodeNewMessage(msg domain.EnrichedMessage) ([]byte, error) {
	return json.Marshal(NewMessageEvent{
		Type:    EventNewMessage,
		Message: msg,
	})
}
