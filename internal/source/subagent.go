package source

import (
	"strings"

	"github.com/dtherrick/agent-replay/internal/message"
)

// PlaceSubagents weaves subagent conversations into the main message stream.
// Anchors are user or assistant messages that mention "subagent"
// (case-insensitive substring); the Nth subagent is inserted immediately
// before the Nth anchor. Each anchor hosts at most one subagent, and
// subagents left without an anchor are appended at the end. The result is
// deterministic for a given input.
func PlaceSubagents(msgs []message.Message, subs []message.SubagentConversation) []message.Message {
	if len(subs) == 0 {
		return msgs
	}

	anchors := anchorIndices(msgs)

	// anchor index -> subagent assigned to it
	assigned := make(map[int]int)
	for i := range subs {
		if i >= len(anchors) {
			break
		}
		assigned[anchors[i]] = i
	}

	out := make([]message.Message, 0, len(msgs)+len(subs))
	for i, m := range msgs {
		if si, ok := assigned[i]; ok {
			out = append(out, subagentMessage(subs[si]))
		}
		out = append(out, m)
	}

	// subagents beyond the available anchors trail the conversation
	for i := len(anchors); i < len(subs); i++ {
		out = append(out, subagentMessage(subs[i]))
	}

	return out
}

func anchorIndices(msgs []message.Message) []int {
	var anchors []int
	for i, m := range msgs {
		if m.Role != message.RoleUser && m.Role != message.RoleAssistant {
			continue
		}
		if strings.Contains(strings.ToLower(m.Content), "subagent") {
			anchors = append(anchors, i)
		}
	}
	return anchors
}

func subagentMessage(sub message.SubagentConversation) message.Message {
	s := sub
	return message.Message{
		Role:     message.RoleSubagent,
		Content:  s.ID,
		Subagent: &s,
	}
}
