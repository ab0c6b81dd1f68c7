package playback

import "github.com/dtherrick/agent-replay/internal/message"

// Transform expands a unified conversation into the playback sequence.
// Visibility filtering happens first, then expansion: every assistant
// message becomes a thinking_animation placeholder plus the message itself,
// and every visible tool call becomes a pending approval plus the call.
// Order is preserved throughout.
func Transform(msgs []message.Message, settings DisplaySettings) []Step {
	steps := make([]Step, 0, len(msgs)*2)

	for _, m := range msgs {
		switch m.Role {
		case message.RoleThinking:
			if !settings.ShowThinking {
				continue
			}
			steps = append(steps, Step{Message: m})

		case message.RoleToolCall:
			if !settings.ShowToolCalls {
				continue
			}
			steps = append(steps,
				Step{
					Message:  message.Message{Role: RoleApproval, Content: m.Content, ToolCall: m.ToolCall},
					Approval: &Approval{Status: ApprovalPending},
				},
				Step{Message: m},
			)

		case message.RoleToolResult:
			if !settings.ShowToolResults {
				continue
			}
			steps = append(steps, Step{Message: m})

		case message.RoleAssistant:
			// the placeholder is pure animation, present regardless of settings
			steps = append(steps,
				Step{Message: message.Message{Role: RoleThinkingAnimation}},
				Step{Message: m},
			)

		default:
			steps = append(steps, Step{Message: m})
		}
	}

	return steps
}
