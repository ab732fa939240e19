package reply

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Carlavier/ai-chat-hub/internal/models"
)

// Segment is one bot's part of a multi-bot response.
type Segment struct {
	Bot     string
	Content string
}

var blankLine = regexp.MustCompile(`\r?\n[ \t]*\r?\n`)

// ParseMultiReply splits a response on blank lines and each segment once on
// its first colon into a speaker name and content. A blank response means no
// bot chose to reply.
//
// Segments are returned in reverse textual order: the last segment comes
// first. Callers append them in the returned order.
func ParseMultiReply(raw string) ([]Segment, error) {
	var segments []Segment
	for _, part := range blankLine.Split(raw, -1) {
		if strings.TrimSpace(part) == "" {
			continue
		}
		name, content, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("%w: segment without speaker: %q", ErrMalformedReply, truncate(part, 60))
		}
		name, content = strings.TrimSpace(name), strings.TrimSpace(content)
		if name == "" || content == "" {
			return nil, fmt.Errorf("%w: empty speaker or content: %q", ErrMalformedReply, truncate(part, 60))
		}
		segments = append(segments, Segment{Bot: name, Content: content})
	}

	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return segments, nil
}

// Canonicalize rewrites segment names to the selected roster's spelling and
// rejects speakers outside it.
func Canonicalize(segments []Segment, selected models.Roster) ([]Segment, error) {
	out := make([]Segment, len(segments))
	for i, s := range segments {
		bot, ok := selected.Find(s.Bot)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not in the room", ErrMalformedReply, s.Bot)
		}
		out[i] = Segment{Bot: bot.Name, Content: s.Content}
	}
	return out, nil
}

// truncate keeps the first n runes of s.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
