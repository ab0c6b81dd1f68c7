package parse

import (
	"regexp"
	"strings"

	"github.com/dtherrick/agent-replay/internal/message"
)

// Block-transcript grammar markers. Top-level role headers sit on their own
// line; the bracketed markers subdivide an assistant block.
const (
	markerUser       = "user:"
	markerAssistant  = "assistant:"
	markerThinking   = "[Thinking]"
	markerToolCall   = "[Tool call]"
	markerToolResult = "[Tool result]"
)

// ToolResultPlaceholder stands in for tool output the block format does not
// record. The format is lossy here; the placeholder is deliberate.
const ToolResultPlaceholder = "(completed)"

// blockState enumerates the accumulation modes of the block parser.
// Transitions are driven purely by line-prefix matching.
type blockState int

const (
	stateRoot          blockState = iota // before any role header
	stateUser                            // accumulating a user: block
	stateAssistantText                   // plain-text accumulation inside assistant:
	stateThinking                        // accumulating after [Thinking]
	stateToolCall                        // accumulating args after [Tool call]
)

// argKeyRe matches a "key: value" pair on a two-space-indented line.
var argKeyRe = regexp.MustCompile(`^  ([A-Za-z0-9_.-]+):\s?(.*)$`)

// blockParser carries the mutable state of one parse run.
type blockParser struct {
	state blockState
	buf   []string // accumulated content lines for user/assistant/thinking

	toolName string
	toolArgs map[string]string
	argKey   string // active key for multi-line values; "" when reset

	msgs []message.Message
}

// ParseBlocks parses the human-readable block-transcript format: `user:` and
// `assistant:` headers, with `[Thinking]`, `[Tool call]` and `[Tool result]`
// sections inside assistant blocks.
func ParseBlocks(input string) []message.Message {
	p := &blockParser{state: stateRoot}

	for _, line := range strings.Split(input, "\n") {
		p.feed(line)
	}
	p.flush()

	return p.msgs
}

// feed processes one line: either a marker transition or accumulation in the
// current state. No lookahead beyond the current line is needed.
func (p *blockParser) feed(line string) {
	trimmed := strings.TrimRight(line, "\r")

	switch {
	case trimmed == markerUser:
		p.flush()
		p.state = stateUser

	case trimmed == markerAssistant:
		p.flush()
		p.state = stateAssistantText

	case strings.HasPrefix(trimmed, markerThinking):
		p.flush()
		p.state = stateThinking
		if label := strings.TrimSpace(strings.TrimPrefix(trimmed, markerThinking)); label != "" {
			p.buf = append(p.buf, label)
		}

	case strings.HasPrefix(trimmed, markerToolCall):
		p.flush()
		p.state = stateToolCall
		p.toolName = strings.TrimSpace(strings.TrimPrefix(trimmed, markerToolCall))
		p.toolArgs = make(map[string]string)
		p.argKey = ""

	case strings.HasPrefix(trimmed, markerToolResult):
		p.flush()
		name := strings.TrimSpace(strings.TrimPrefix(trimmed, markerToolResult))
		p.msgs = append(p.msgs, message.Message{
			Role:       message.RoleToolResult,
			Content:    ToolResultPlaceholder,
			ToolResult: &message.ToolResult{Name: name, Output: ToolResultPlaceholder},
		})
		// plain-text accumulation resumes inside the assistant block
		p.state = stateAssistantText

	default:
		p.accumulate(trimmed)
	}
}

// accumulate handles a non-marker line in the current state.
func (p *blockParser) accumulate(line string) {
	switch p.state {
	case stateRoot:
		// content before any role header has no owner; dropped

	case stateUser, stateAssistantText, stateThinking:
		p.buf = append(p.buf, line)

	case stateToolCall:
		if strings.TrimSpace(line) == "" {
			p.argKey = ""
			return
		}
		if m := argKeyRe.FindStringSubmatch(line); m != nil {
			p.argKey = m[1]
			p.toolArgs[p.argKey] = m[2]
			return
		}
		if strings.HasPrefix(line, "  ") && p.argKey != "" {
			// continuation line extends the active key's value
			p.toolArgs[p.argKey] += "\n" + strings.TrimPrefix(line, "  ")
			return
		}
		// unindented stray line: the active key does not survive it
		p.argKey = ""
	}
}

// flush emits the message accumulated in the current state, if any.
func (p *blockParser) flush() {
	switch p.state {
	case stateUser:
		if text := ExtractUserText(strings.Join(p.buf, "\n")); text != "" {
			p.msgs = append(p.msgs, message.Message{Role: message.RoleUser, Content: text})
		}

	case stateAssistantText:
		if text := strings.TrimSpace(strings.Join(p.buf, "\n")); text != "" {
			p.msgs = append(p.msgs, message.Message{Role: message.RoleAssistant, Content: text})
		}

	case stateThinking:
		if text := strings.TrimSpace(strings.Join(p.buf, "\n")); text != "" {
			p.msgs = append(p.msgs, message.Message{Role: message.RoleThinking, Content: text})
		}

	case stateToolCall:
		p.msgs = append(p.msgs, message.Message{
			Role:     message.RoleToolCall,
			Content:  p.toolName,
			ToolCall: &message.ToolCall{Name: p.toolName, Args: p.toolArgs},
		})
		p.toolName = ""
		p.toolArgs = nil
		p.argKey = ""
	}

	p.buf = nil
}
