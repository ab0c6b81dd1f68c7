package playback

import (
	"testing"

	"github.com/dtherrick/agent-replay/internal/message"
)

func TestTransform_AssistantPair(t *testing.T) {
	msgs := []message.Message{{Role: message.RoleAssistant, Content: "Hi"}}
	steps := Transform(msgs, DefaultSettings())

	if len(steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(steps))
	}
	if steps[0].Role != RoleThinkingAnimation {
		t.Errorf("expected thinking_animation first, got %s", steps[0].Role)
	}
	if steps[1].Role != message.RoleAssistant || steps[1].Content != "Hi" {
		t.Errorf("assistant content not carried through: %+v", steps[1])
	}
}

func TestTransform_ToolCallPair(t *testing.T) {
	call := &message.ToolCall{Name: "Read", Args: map[string]string{"path": "/tmp/f"}}
	msgs := []message.Message{{Role: message.RoleToolCall, Content: "Read", ToolCall: call}}
	steps := Transform(msgs, DefaultSettings())

	if len(steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(steps))
	}
	if steps[0].Role != RoleApproval || steps[0].Approval.Status != ApprovalPending {
		t.Errorf("expected pending approval first: %+v", steps[0])
	}
	if steps[0].ToolCall != call {
		t.Error("approval step must carry the same tool call")
	}
	if steps[1].Role != message.RoleToolCall {
		t.Errorf("expected tool_call second, got %s", steps[1].Role)
	}
}

func TestTransform_VisibilityFilter(t *testing.T) {
	msgs := []message.Message{
		{Role: message.RoleUser, Content: "q"},
		{Role: message.RoleThinking, Content: "hmm"},
		{Role: message.RoleToolCall, Content: "Read", ToolCall: &message.ToolCall{Name: "Read"}},
		{Role: message.RoleToolResult, Content: "out", ToolResult: &message.ToolResult{Name: "Read", Output: "out"}},
		{Role: message.RoleAssistant, Content: "a"},
	}

	s := DefaultSettings()
	s.ShowThinking = false
	s.ShowToolCalls = false
	s.ShowToolResults = false
	steps := Transform(msgs, s)

	for _, st := range steps {
		switch st.Role {
		case message.RoleThinking, message.RoleToolCall, message.RoleToolResult, RoleApproval:
			t.Errorf("hidden role leaked into output: %s", st.Role)
		}
	}
	// user + assistant pair survive
	if len(steps) != 3 {
		t.Errorf("expected 3 steps, got %d: %+v", len(steps), steps)
	}
}

func TestTransform_OrderPreserved(t *testing.T) {
	msgs := []message.Message{
		{Role: message.RoleUser, Content: "1"},
		{Role: message.RoleAssistant, Content: "2"},
		{Role: message.RoleUser, Content: "3"},
	}
	steps := Transform(msgs, DefaultSettings())

	var contents []string
	for _, st := range steps {
		if st.Role == message.RoleUser || st.Role == message.RoleAssistant {
			contents = append(contents, st.Content)
		}
	}
	if len(contents) != 3 || contents[0] != "1" || contents[1] != "2" || contents[2] != "3" {
		t.Errorf("order not preserved: %v", contents)
	}
}

func TestTransform_SubagentPassThrough(t *testing.T) {
	sub := &message.SubagentConversation{ID: "helper"}
	msgs := []message.Message{{Role: message.RoleSubagent, Content: "helper", Subagent: sub}}
	steps := Transform(msgs, DefaultSettings())

	if len(steps) != 1 || steps[0].Subagent != sub {
		t.Errorf("subagent must pass through as one step: %+v", steps)
	}
}
