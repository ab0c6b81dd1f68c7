// Package playback turns unified conversations into timed, steppable
// presentation sequences.
package playback

import "github.com/dtherrick/agent-replay/internal/message"

// Synthetic roles that exist only in the playback sequence, never in a
// parsed conversation.
const (
	// RoleThinkingAnimation is the transient "still thinking" placeholder
	// shown before an assistant message resolves.
	RoleThinkingAnimation message.Role = "thinking_animation"
	// RoleApproval is the pending/approved gate shown before a tool call.
	RoleApproval message.Role = "approval"
)

// ApprovalStatus is the lifecycle of an approval gate.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
	ApprovalEnded    ApprovalStatus = "ended"
)

// Approval carries the state of an approval step.
type Approval struct {
	Status ApprovalStatus `json:"status"`
	Action string         `json:"action,omitempty"` // yes | no | end
}

// Step is one entry of the playback sequence: a unified message, or one of
// the two synthetic steps. A step never carries both a tool call and the
// thinking-animation role.
type Step struct {
	message.Message
	Approval *Approval `json:"approval,omitempty"`
}

// IsPlaceholder reports whether the step is the first half of a two-step
// pair (it resolves into the entry that follows it).
func (s Step) IsPlaceholder() bool {
	return s.Role == RoleThinkingAnimation || s.Role == RoleApproval
}
