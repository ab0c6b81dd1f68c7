package parse

import (
	"testing"

	"github.com/dtherrick/agent-replay/internal/message"
)

func TestParseBlocks_UserAssistant(t *testing.T) {
	input := `user:
How do I list files?

assistant:
Use ls.`
	msgs := ParseBlocks(input)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d: %+v", len(msgs), msgs)
	}
	if msgs[0].Role != message.RoleUser || msgs[0].Content != "How do I list files?" {
		t.Errorf("unexpected user message: %+v", msgs[0])
	}
	if msgs[1].Role != message.RoleAssistant || msgs[1].Content != "Use ls." {
		t.Errorf("unexpected assistant message: %+v", msgs[1])
	}
}

func TestParseBlocks_ToolCallWithArgs(t *testing.T) {
	input := `user:
Show me main.go

assistant:
[Tool call] Read
  path: /src/main.go
[Tool result] Read
Here it is.`
	msgs := ParseBlocks(input)
	if len(msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d: %+v", len(msgs), msgs)
	}

	call := msgs[1]
	if call.Role != message.RoleToolCall || call.ToolCall == nil {
		t.Fatalf("expected tool_call, got %+v", call)
	}
	if call.ToolCall.Name != "Read" || call.ToolCall.Args["path"] != "/src/main.go" {
		t.Errorf("unexpected tool call: %+v", call.ToolCall)
	}

	result := msgs[2]
	if result.Role != message.RoleToolResult || result.Content != ToolResultPlaceholder {
		t.Errorf("expected placeholder tool result, got %+v", result)
	}

	if msgs[3].Role != message.RoleAssistant || msgs[3].Content != "Here it is." {
		t.Errorf("text after tool result not attributed to assistant: %+v", msgs[3])
	}
}

func TestParseBlocks_Thinking(t *testing.T) {
	input := `assistant:
[Thinking]
The user wants a list.
I should keep it short.

Here is the list.`
	msgs := ParseBlocks(input)
	if len(msgs) != 2 {
		t.Fatalf("expected thinking + assistant, got %d: %+v", len(msgs), msgs)
	}
	if msgs[0].Role != message.RoleThinking {
		t.Fatalf("expected thinking first, got %+v", msgs[0])
	}
	if msgs[0].Content != "The user wants a list.\nI should keep it short." {
		t.Errorf("thinking content wrong: %q", msgs[0].Content)
	}
	if msgs[1].Role != message.RoleAssistant || msgs[1].Content != "Here is the list." {
		t.Errorf("unexpected trailing assistant text: %+v", msgs[1])
	}
}

func TestParseBlocks_MultiLineArgValue(t *testing.T) {
	input := `assistant:
[Tool call] Write
  path: /tmp/note.txt
  content: first line
  second line
[Tool result] Write`
	msgs := ParseBlocks(input)
	if len(msgs) != 2 {
		t.Fatalf("expected call + result, got %d: %+v", len(msgs), msgs)
	}
	got := msgs[0].ToolCall.Args["content"]
	if got != "first line\nsecond line" {
		t.Errorf("continuation line not appended: %q", got)
	}
}

func TestParseBlocks_UserWrapperStripping(t *testing.T) {
	input := `user:
<system-reminder>internal note</system-reminder>
what does this function do?`
	msgs := ParseBlocks(input)
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Content != "what does this function do?" {
		t.Errorf("wrapper tags survived in user block: %q", msgs[0].Content)
	}
}

func TestParseBlocks_ContentBeforeFirstHeaderDropped(t *testing.T) {
	input := `stray preamble line
user:
real question`
	msgs := ParseBlocks(input)
	if len(msgs) != 1 || msgs[0].Content != "real question" {
		t.Fatalf("preamble not dropped: %+v", msgs)
	}
}

func TestParseBlocks_Empty(t *testing.T) {
	if msgs := ParseBlocks(""); len(msgs) != 0 {
		t.Fatalf("expected no messages for empty input, got %d", len(msgs))
	}
}
