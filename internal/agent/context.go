// Package agent assembles bounded prompts from caller-owned chat history and
// forwards them to a language-model backend.
package agent

import (
	"fmt"
	"strings"
)

// Speaker tags who authored a conversation turn.
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// Turn is one message of the caller-supplied chat history. History is owned
// entirely by the caller and never persisted server-side.
type Turn struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// Validate rejects unknown speakers at the API boundary.
func (t Turn) Validate() error {
	switch t.Speaker {
	case SpeakerUser, SpeakerAssistant:
		return nil
	default:
		return fmt.Errorf("unknown speaker %q", t.Speaker)
	}
}

// Windowing policy for BuildContext.
const (
	recentWindow       = 10  // turns rendered in full
	summaryTopicCount  = 5   // earlier user turns folded into the summary
	summaryTopicLimit  = 100 // characters kept per summarized topic
	assistantLineLimit = 500 // characters kept per rendered assistant turn
)

// BuildContext renders a size-bounded textual context for a query. The last
// ten turns appear as User:/Assistant: lines (assistant text capped at 500
// characters); anything older is folded into a single summary line built
// from the first five user-authored turns, each capped at 100 characters.
// Empty history returns the query unchanged. Pure function: no state, no
// I/O.
func BuildContext(history []Turn, query string) string {
	if len(history) == 0 {
		return query
	}

	var b strings.Builder
	recent := history
	if len(history) > recentWindow {
		earlier := history[:len(history)-recentWindow]
		recent = history[len(history)-recentWindow:]

		topics := make([]string, 0, summaryTopicCount)
		for _, turn := range earlier {
			if turn.Speaker != SpeakerUser {
				continue
			}
			topics = append(topics, truncateRunes(turn.Text, summaryTopicLimit))
			if len(topics) == summaryTopicCount {
				break
			}
		}
		if len(topics) > 0 {
			b.WriteString("Earlier conversation covered: ")
			b.WriteString(strings.Join(topics, ", "))
			b.WriteString("...\n\n")
		}
	}

	b.WriteString("Recent conversation:\n")
	for _, turn := range recent {
		switch turn.Speaker {
		case SpeakerUser:
			b.WriteString("User: ")
			b.WriteString(turn.Text)
			b.WriteString("\n")
		case SpeakerAssistant:
			text := turn.Text
			if truncated := truncateRunes(text, assistantLineLimit); truncated != text {
				text = truncated + "..."
			}
			b.WriteString("Assistant: ")
			b.WriteString(text)
			b.WriteString("\n")
		}
	}

	b.WriteString("\nCurrent query: ")
	b.WriteString(query)
	return b.String()
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
