package reply

import (
	"fmt"
	"strings"

	"github.com/Carlavier/ai-chat-hub/internal/llm"
	"github.com/Carlavier/ai-chat-hub/internal/models"
)

// Options tunes how history is presented to the backend.
type Options struct {
	// PeersAsUser sends other speakers' lines as user turns, so a single bot
	// treats everyone else as its interlocutor.
	PeersAsUser bool

	// Combined asks for self-labeled replies from any subset of the speakers,
	// even when only one is selected.
	Combined bool
}

// BuildContext maps the last window entries of history to backend messages
// for the given speakers. A window <= 0 uses the whole history. Inline system
// notices in the log are not fed back.
func BuildContext(history []models.Message, window int, speakers models.Roster, opts Options) []llm.Message {
	if window > 0 && len(history) > window {
		history = history[len(history)-window:]
	}

	multi := opts.Combined || len(speakers) != 1

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: personaPrompt(speakers, multi)})

	var self string
	if !multi {
		self = speakers[0].Name
	}

	for _, m := range history {
		switch m.Role {
		case models.RoleUser:
			messages = append(messages, llm.Message{Role: llm.RoleUser, Content: label(m.Sender, m.Content)})
		case models.RoleAssistant:
			speaker := m.Speaker()
			switch {
			case self != "" && strings.EqualFold(speaker, self):
				messages = append(messages, llm.Message{Role: llm.RoleAssistant, Content: m.Content})
			case opts.PeersAsUser:
				messages = append(messages, llm.Message{Role: llm.RoleUser, Content: label(speaker, m.Content)})
			default:
				messages = append(messages, llm.Message{Role: llm.RoleAssistant, Content: label(speaker, m.Content)})
			}
		}
	}

	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: instruction(speakers, multi)})
	return messages
}

func label(name, content string) string {
	if name == "" {
		return content
	}
	return name + ": " + content
}

func personaPrompt(speakers models.Roster, multi bool) string {
	if !multi {
		return speakers[0].SystemPrompt
	}

	var b strings.Builder
	b.WriteString("You voice several characters in a group chat with humans. The characters are:\n")
	for _, s := range speakers {
		fmt.Fprintf(&b, "- %s: %s\n", s.Name, s.SystemPrompt)
	}
	return strings.TrimRight(b.String(), "\n")
}

func instruction(speakers models.Roster, multi bool) string {
	if !multi {
		return fmt.Sprintf("Reply as %s with a single message. Do not prefix the reply with your name.", speakers[0].Name)
	}
	if len(speakers) == 0 {
		return "No character may reply. Respond with an empty message."
	}
	return fmt.Sprintf(
		"Reply as any subset of these characters: %s. Start each reply with the character's name and a colon, "+
			"for example \"%s: ...\". Separate replies with a blank line. No other character may speak.",
		strings.Join(speakers.Names(), ", "), speakers[0].Name,
	)
}
