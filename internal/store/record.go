package store

import (
	"encoding/json"
	"time"

	"github.com/Carlavier/ai-chat-hub/internal/models"
)

// chatRecord is the persisted shape of user-chat and arena entries.
type chatRecord struct {
	ID        string    `json:"id,omitempty"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	IsBot     bool      `json:"isBot"`
	Timestamp time.Time `json:"timestamp"`
}

// roomRecord is the persisted shape of multi-bot room entries.
type roomRecord struct {
	ID        string      `json:"id,omitempty"`
	Role      models.Role `json:"role"`
	Sender    string      `json:"sender,omitempty"`
	Bot       string      `json:"bot,omitempty"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

// textShaped reports whether the surface stores {sender, text, isBot} records.
func (s Surface) textShaped() bool {
	return s == SurfaceUserChat || s == SurfaceArena
}

func encodeRecord(surface Surface, msg models.Message) ([]byte, error) {
	if surface.textShaped() {
		return json.Marshal(chatRecord{
			ID:        msg.ID,
			Sender:    msg.Speaker(),
			Text:      msg.Content,
			IsBot:     msg.IsBot,
			Timestamp: msg.Timestamp,
		})
	}
	return json.Marshal(roomRecord{
		ID:        msg.ID,
		Role:      msg.Role,
		Sender:    msg.Sender,
		Bot:       msg.Bot,
		Content:   msg.Content,
		Timestamp: msg.Timestamp,
	})
}

// decodeRecord restores a Message. Role and IsBot are derived from each other
// where the record shape carries only one of them.
func decodeRecord(surface Surface, data []byte) (models.Message, error) {
	if surface.textShaped() {
		var rec chatRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return models.Message{}, err
		}
		msg := models.UserMessage(rec.Sender, rec.Text)
		if rec.IsBot {
			msg = models.BotMessage(rec.Sender, rec.Text)
		}
		msg.ID = rec.ID
		msg.Timestamp = rec.Timestamp
		return msg, nil
	}

	var rec roomRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return models.Message{}, err
	}
	return models.Message{
		ID:        rec.ID,
		Role:      rec.Role,
		Sender:    rec.Sender,
		Bot:       rec.Bot,
		Content:   rec.Content,
		IsBot:     rec.Role == models.RoleAssistant,
		Timestamp: rec.Timestamp,
	}, nil
}
