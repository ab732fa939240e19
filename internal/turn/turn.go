// Package turn decides which bots speak next on each surface. Every policy is
// a pure function of the history, the current time and static configuration.
package turn

import (
	"time"

	"github.com/Carlavier/ai-chat-hub/internal/models"
)

// DefaultArenaDelay is the minimum quiet period before the next arena turn.
const DefaultArenaDelay = 15 * time.Second

// DefaultSeed opens an empty arena.
const DefaultSeed = "Hello, let's start a conversation!"

// Mode selects the multi-bot room policy.
type Mode string

const (
	// ModeCombined asks the backend once for replies from any subset of the selected bots.
	ModeCombined Mode = "combined"
	// ModeRoundRobin lets exactly one bot reply, cycling through the selected bots.
	ModeRoundRobin Mode = "round_robin"
)

// ParseMode validates a mode name. An empty name yields def.
func ParseMode(name string, def Mode) (Mode, bool) {
	switch Mode(name) {
	case "":
		return def, true
	case ModeCombined, ModeRoundRobin:
		return Mode(name), true
	default:
		return "", false
	}
}

// Decision is the outcome of a scheduling step.
type Decision struct {
	Due      bool
	Speakers models.Roster
	Seed     string // Non-empty when the message is synthesized rather than generated
}

// Speaker returns the single speaker of a decision, if there is exactly one.
func (d Decision) Speaker() (models.BotProfile, bool) {
	if len(d.Speakers) != 1 {
		return models.BotProfile{}, false
	}
	return d.Speakers[0], true
}

// Arena alternates strictly between two bots.
type Arena struct {
	A, B  models.BotProfile
	Delay time.Duration
	Seed  string
}

// NewArena builds an arena from the first two bots of the roster.
func NewArena(roster models.Roster, delay time.Duration) (Arena, bool) {
	if len(roster) < 2 {
		return Arena{}, false
	}
	if delay <= 0 {
		delay = DefaultArenaDelay
	}
	return Arena{A: roster[0], B: roster[1], Delay: delay, Seed: DefaultSeed}, true
}

// Next returns the arena's next turn. An empty history is opened by A with the
// seed message. Otherwise the bot that did not speak last replies, but only once
// more than Delay has passed since the last message.
func (a Arena) Next(history []models.Message, now time.Time) Decision {
	if len(history) == 0 {
		return Decision{Due: true, Speakers: models.Roster{a.A}, Seed: a.Seed}
	}

	last := history[len(history)-1]
	next := a.A
	if last.Speaker() == a.A.Name {
		next = a.B
	}

	if now.Sub(last.Timestamp) <= a.Delay {
		return Decision{Speakers: models.Roster{next}}
	}
	return Decision{Due: true, Speakers: models.Roster{next}}
}

// Combined lets the backend pick any subset of the selected bots. An empty
// selection mutes the room.
func Combined(selected models.Roster) Decision {
	if len(selected) == 0 {
		return Decision{}
	}
	return Decision{Due: true, Speakers: selected}
}

// RoundRobin walks the roster from the bot after the last one that spoke and
// picks the first selected bot it meets. With the whole roster selected this is
// roster[(index(lastBot)+1) % len(roster)]. When no roster bot has spoken the
// first selected bot answers.
func RoundRobin(roster, selected models.Roster, history []models.Message) Decision {
	if len(selected) == 0 {
		return Decision{}
	}

	next := selected[0]
	if last, ok := LastBot(history); ok {
		if i := roster.Index(last); i >= 0 {
			for step := 1; step <= len(roster); step++ {
				if b, ok := selected.Find(roster[(i+step)%len(roster)].Name); ok {
					next = b
					break
				}
			}
		}
	}
	return Decision{Due: true, Speakers: models.Roster{next}}
}

// LastBot returns the most recent assistant speaker in history.
func LastBot(history []models.Message) (string, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == models.RoleAssistant {
			return history[i].Speaker(), true
		}
	}
	return "", false
}

// Room applies the given multi-bot mode.
func Room(mode Mode, roster, selected models.Roster, history []models.Message) Decision {
	if mode == ModeRoundRobin {
		return RoundRobin(roster, selected, history)
	}
	return Combined(selected)
}
