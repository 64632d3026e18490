package bridge

import (
	"encoding/json"
	"time"

	"github.com/lox/wagerbot/internal/game"
)

type MessageType string

const (
	// Client → server
	TypeCommand MessageType = "command"

	// Server → client
	TypeReply  MessageType = "reply"
	TypeUpdate MessageType = "update"
	TypeError  MessageType = "error"
)

// Message is the envelope for every frame on the socket.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

func NewMessage(t MessageType, data any, now time.Time) (*Message, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{Type: t, Data: b, Timestamp: now}, nil
}

// CommandData is a chat message to run.
type CommandData struct {
	User    string `json:"user"`
	Channel string `json:"channel,omitempty"`
	Text    string `json:"text"`
}

type ReplyData struct {
	User    string `json:"user"`
	Channel string `json:"channel,omitempty"`
	Text    string `json:"text,omitempty"`
	Session string `json:"session,omitempty"`
}

// UpdateData carries one session frame, both structured and rendered.
type UpdateData struct {
	SessionID string        `json:"session_id"`
	User      string        `json:"user"`
	Channel   string        `json:"channel,omitempty"`
	Snapshot  game.Snapshot `json:"snapshot"`
	Text      string        `json:"text"`
	Final     bool          `json:"final"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
