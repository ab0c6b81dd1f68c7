package parse

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dtherrick/agent-replay/internal/message"
)

// ErrUnrecognizedFormat signals that a structured export matched none of the
// known shapes. Distinct from an empty-but-valid export; callers decide
// whether to surface or swallow it.
var ErrUnrecognizedFormat = errors.New("unrecognized export format")

// exportPart is one entry in a role/parts turn.
type exportPart struct {
	Text         string `json:"text"`
	FunctionCall *struct {
		Name string         `json:"name"`
		Args map[string]any `json:"args"`
	} `json:"functionCall"`
	FunctionResponse *struct {
		Name     string         `json:"name"`
		Response map[string]any `json:"response"`
	} `json:"functionResponse"`
}

// exportTurn probes both known shapes at once: role/parts exports carry
// Parts, already-unified exports carry a plain string Content.
type exportTurn struct {
	Role    string          `json:"role"`
	Parts   []exportPart    `json:"parts"`
	Content json.RawMessage `json:"content"`
}

// ParseExport decodes a structured conversation export. Shapes are tried in
// priority order: role/parts elements first, then role/string-content
// pass-through; anything else fails with ErrUnrecognizedFormat. An empty
// array is an empty conversation, not an error.
func ParseExport(data []byte) ([]message.Message, error) {
	var turns []exportTurn
	if err := json.Unmarshal(data, &turns); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedFormat, err)
	}
	if len(turns) == 0 {
		return []message.Message{}, nil
	}

	if hasParts(turns) {
		return fromParts(turns), nil
	}
	if hasStringContent(turns) {
		var msgs []message.Message
		if err := json.Unmarshal(data, &msgs); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnrecognizedFormat, err)
		}
		return msgs, nil
	}

	return nil, ErrUnrecognizedFormat
}

func hasParts(turns []exportTurn) bool {
	for _, t := range turns {
		if len(t.Parts) > 0 {
			return true
		}
	}
	return false
}

func hasStringContent(turns []exportTurn) bool {
	for _, t := range turns {
		if t.Role == "" {
			return false
		}
		var s string
		if err := json.Unmarshal(t.Content, &s); err != nil {
			return false
		}
	}
	return true
}

// fromParts expands role/parts turns into unified messages. A functionCall
// becomes a tool_call, a functionResponse a tool_result, and plain text maps
// to user or assistant by the turn's role ("model" means assistant).
func fromParts(turns []exportTurn) []message.Message {
	msgs := []message.Message{}

	for _, turn := range turns {
		role := message.RoleUser
		if turn.Role == "model" {
			role = message.RoleAssistant
		}

		for _, part := range turn.Parts {
			switch {
			case part.FunctionCall != nil:
				msgs = append(msgs, message.Message{
					Role:    message.RoleToolCall,
					Content: part.FunctionCall.Name,
					ToolCall: &message.ToolCall{
						Name: part.FunctionCall.Name,
						Args: coerceArgs(part.FunctionCall.Args),
					},
				})

			case part.FunctionResponse != nil:
				output := coerceString(part.FunctionResponse.Response["output"])
				msgs = append(msgs, message.Message{
					Role:    message.RoleToolResult,
					Content: output,
					ToolResult: &message.ToolResult{
						Name:   part.FunctionResponse.Name,
						Output: output,
					},
				})

			case part.Text != "":
				msgs = append(msgs, message.Message{Role: role, Content: part.Text})
			}
		}
	}

	return msgs
}

// coerceArgs flattens arbitrary JSON argument values to strings.
func coerceArgs(args map[string]any) map[string]string {
	if args == nil {
		return nil
	}
	out := make(map[string]string, len(args))
	for k, v := range args {
		out[k] = coerceString(v)
	}
	return out
}

func coerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}
