package models

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultAvatar is shown for senders that are not in the roster.
const DefaultAvatar = "🤖"

// BotProfile describes a bot persona.
type BotProfile struct {
	Name         string  `json:"name" yaml:"name"`
	SystemPrompt string  `json:"-" yaml:"system_prompt"`
	Avatar       string  `json:"avatar" yaml:"avatar"`
	Temperature  float64 `json:"temperature" yaml:"temperature"`
}

// Roster is an ordered set of bots. Order drives round-robin selection.
type Roster []BotProfile

// DefaultRoster returns the built-in personas.
func DefaultRoster() Roster {
	return Roster{
		{
			Name: "Jester",
			SystemPrompt: "You are a witty comedian bot. Respond with humor and jokes. " +
				"Keep responses under 2 sentences. Never be serious. Never break character.",
			Avatar:      "🤡",
			Temperature: 1.0,
		},
		{
			Name: "Philosopher",
			SystemPrompt: "You are a hardcore philosopher. You want to find the pattern hiding in the chaos. " +
				"Use formal language. Never use contractions. Keep responses under 3 sentences. Never break character.",
			Avatar:      "🎓",
			Temperature: 0.3,
		},
		{
			Name: "Detective",
			SystemPrompt: "You are a sharp detective. Respond with keen observations and logical deductions. " +
				"Always look for clues and ask probing questions. Keep responses under 3 sentences. Never break character.",
			Avatar:      "🕵️‍♂️",
			Temperature: 0.6,
		},
	}
}

type rosterFile struct {
	Bots []BotProfile `yaml:"bots"`
}

// LoadRoster reads an ordered roster from a YAML file of the form:
//
//	bots:
//	  - name: Jester
//	    system_prompt: ...
//	    avatar: "🤡"
//	    temperature: 1.0
func LoadRoster(path string) (Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	return ParseRoster(data)
}

// ParseRoster decodes and validates a YAML roster.
func ParseRoster(data []byte) (Roster, error) {
	var f rosterFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode roster: %w", err)
	}
	roster := Roster(f.Bots)
	for i := range roster {
		roster[i].Name = strings.TrimSpace(roster[i].Name)
		roster[i].SystemPrompt = strings.TrimSpace(roster[i].SystemPrompt)
	}
	if err := roster.Validate(); err != nil {
		return nil, err
	}
	return roster, nil
}

// Validate checks that names are present and unique and temperatures are in range.
func (r Roster) Validate() error {
	if len(r) == 0 {
		return errors.New("roster is empty")
	}
	seen := make(map[string]bool, len(r))
	for _, b := range r {
		if b.Name == "" {
			return errors.New("roster entry has no name")
		}
		key := strings.ToLower(b.Name)
		if seen[key] {
			return fmt.Errorf("duplicate bot %q", b.Name)
		}
		seen[key] = true
		if b.Temperature < 0 || b.Temperature > 2 {
			return fmt.Errorf("bot %q: temperature %.2f out of range [0, 2]", b.Name, b.Temperature)
		}
	}
	return nil
}

// Find returns the profile with the given name, ignoring case.
func (r Roster) Find(name string) (BotProfile, bool) {
	for _, b := range r {
		if strings.EqualFold(b.Name, name) {
			return b, true
		}
	}
	return BotProfile{}, false
}

// Index returns the position of name in the roster, or -1.
func (r Roster) Index(name string) int {
	for i, b := range r {
		if strings.EqualFold(b.Name, name) {
			return i
		}
	}
	return -1
}

// Names lists bot names in roster order.
func (r Roster) Names() []string {
	names := make([]string, len(r))
	for i, b := range r {
		names[i] = b.Name
	}
	return names
}

// Select returns the named bots in roster order. Unknown names are reported as an error.
func (r Roster) Select(names []string) (Roster, error) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		if _, ok := r.Find(n); !ok {
			return nil, fmt.Errorf("unknown bot %q", n)
		}
		want[strings.ToLower(n)] = true
	}
	selected := make(Roster, 0, len(want))
	for _, b := range r {
		if want[strings.ToLower(b.Name)] {
			selected = append(selected, b)
		}
	}
	return selected, nil
}

// Avatar returns the avatar for a sender, or DefaultAvatar.
func (r Roster) Avatar(name string) string {
	if b, ok := r.Find(name); ok && b.Avatar != "" {
		return b.Avatar
	}
	return DefaultAvatar
}
