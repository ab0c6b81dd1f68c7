package source

import (
	"testing"

	"github.com/dtherrick/agent-replay/internal/message"
)

func sub(id string) message.SubagentConversation {
	return message.SubagentConversation{
		ID:       id,
		Messages: []message.Message{{Role: message.RoleUser, Content: "task"}},
	}
}

func TestPlaceSubagents_InsertsBeforeMention(t *testing.T) {
	msgs := []message.Message{
		{Role: message.RoleUser, Content: "hello"},
		{Role: message.RoleAssistant, Content: "I'll spawn a subagent to explore."},
		{Role: message.RoleAssistant, Content: "done"},
	}

	out := PlaceSubagents(msgs, []message.SubagentConversation{sub("explorer")})
	if len(out) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(out))
	}
	if out[1].Role != message.RoleSubagent || out[1].Subagent.ID != "explorer" {
		t.Errorf("subagent not placed before the mentioning message: %+v", out[1])
	}
	if out[2].Content != "I'll spawn a subagent to explore." {
		t.Errorf("anchor message displaced: %+v", out[2])
	}
}

func TestPlaceSubagents_SlotsNotReused(t *testing.T) {
	msgs := []message.Message{
		{Role: message.RoleAssistant, Content: "Subagent one starting."},
		{Role: message.RoleAssistant, Content: "SUBAGENT two starting."},
	}
	subs := []message.SubagentConversation{sub("a"), sub("b")}

	out := PlaceSubagents(msgs, subs)
	if len(out) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(out))
	}
	if out[0].Subagent.ID != "a" || out[2].Subagent.ID != "b" {
		t.Errorf("each anchor must host exactly one subagent: %+v", out)
	}
}

func TestPlaceSubagents_NoMentionAppends(t *testing.T) {
	msgs := []message.Message{
		{Role: message.RoleUser, Content: "hello"},
		{Role: message.RoleAssistant, Content: "hi"},
	}

	out := PlaceSubagents(msgs, []message.SubagentConversation{sub("tail")})
	if len(out) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(out))
	}
	if out[2].Role != message.RoleSubagent || out[2].Subagent.ID != "tail" {
		t.Errorf("unanchored subagent must trail the conversation: %+v", out[2])
	}
}

func TestPlaceSubagents_ToolMentionIgnored(t *testing.T) {
	// only user and assistant messages anchor placement
	msgs := []message.Message{
		{Role: message.RoleToolResult, Content: "spawned subagent xyz",
			ToolResult: &message.ToolResult{Name: "Task", Output: "spawned subagent xyz"}},
		{Role: message.RoleAssistant, Content: "finished"},
	}

	out := PlaceSubagents(msgs, []message.SubagentConversation{sub("x")})
	if out[len(out)-1].Role != message.RoleSubagent {
		t.Errorf("tool_result must not anchor a subagent: %+v", out)
	}
}

func TestPlaceSubagents_Deterministic(t *testing.T) {
	msgs := []message.Message{
		{Role: message.RoleAssistant, Content: "the subagent begins"},
	}
	subs := []message.SubagentConversation{sub("a"), sub("b")}

	first := PlaceSubagents(msgs, subs)
	second := PlaceSubagents(msgs, subs)
	if len(first) != len(second) {
		t.Fatalf("placement not deterministic: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Role != second[i].Role || first[i].Content != second[i].Content {
			t.Errorf("placement differs at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}
