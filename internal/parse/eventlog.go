package parse

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/dtherrick/agent-replay/internal/message"
)

// eventRecord is one line of a line-delimited event log. Only the fields the
// unified model needs are decoded; everything else in the record is ignored.
type eventRecord struct {
	Role      string `json:"role"`
	Timestamp string `json:"timestamp"`
	Message   struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"message"`
}

// ParseEventLog parses a line-delimited event log: one self-contained JSON
// record per line. Malformed lines are skipped; a bad line never loses the
// valid lines after it. Line order is message order.
func ParseEventLog(r io.Reader) []message.Message {
	// bufio.Reader rather than Scanner - no line length limits.
	reader := bufio.NewReader(r)
	var msgs []message.Message

	for {
		line, err := reader.ReadBytes('\n')
		atEOF := err != nil

		line = bytes.TrimSpace(line)
		if len(line) > 0 {
			if msg, ok := parseEventLine(line); ok {
				msgs = append(msgs, msg)
			}
		}

		if atEOF {
			break
		}
	}

	return msgs
}

// parseEventLine converts a single record into a unified message.
// Returns false for malformed records and records with no extractable text.
func parseEventLine(line []byte) (message.Message, bool) {
	var rec eventRecord
	if err := json.Unmarshal(line, &rec); err != nil {
		return message.Message{}, false
	}

	var texts []string
	for _, block := range rec.Message.Content {
		if block.Type == "text" && block.Text != "" {
			texts = append(texts, block.Text)
		}
	}
	text := strings.Join(texts, "\n")

	role := message.RoleAssistant
	if rec.Role == "user" {
		role = message.RoleUser
		text = ExtractUserText(text)
	}

	if strings.TrimSpace(text) == "" {
		return message.Message{}, false
	}

	msg := message.Message{Role: role, Content: text}
	if rec.Timestamp != "" {
		if ts, err := time.Parse(time.RFC3339, rec.Timestamp); err == nil {
			msg.Timestamp = &ts
		}
	}
	return msg, true
}
