package models

import "time"

// Role classifies where a message came from.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is a single chat record. The store persists it in the record shape
// of its surface.
type Message struct {
	ID        string    `json:"id"`            // ULID
	Role      Role      `json:"role"`
	Sender    string    `json:"sender,omitempty"`
	Bot       string    `json:"bot,omitempty"` // Multi-bot assistant replies
	Content   string    `json:"content"`
	IsBot     bool      `json:"isBot"`
	Timestamp time.Time `json:"timestamp"`
}

// UserMessage builds a human-authored message.
func UserMessage(sender, content string) Message {
	return Message{Role: RoleUser, Sender: sender, Content: content}
}

// BotMessage builds a bot-authored message.
func BotMessage(bot, content string) Message {
	return Message{Role: RoleAssistant, Sender: bot, Bot: bot, Content: content, IsBot: true}
}

// SystemMessage builds an inline notice, such as a failed generation.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Sender: "system", Content: content}
}

// Speaker returns the bot name for assistant messages, falling back to the sender.
func (m Message) Speaker() string {
	if m.Bot != "" {
		return m.Bot
	}
	return m.Sender
}
