// Package message defines the unified, adapter-agnostic conversation model.
package message

import "time"

// Role identifies what kind of conversational turn a message represents.
type Role string

// Roles produced by the format parsers and source adapters.
const (
	RoleUser       Role = "user"
	RoleAssistant  Role = "assistant"
	RoleThinking   Role = "thinking"
	RoleToolCall   Role = "tool_call"
	RoleToolResult Role = "tool_result"
	RoleSubagent   Role = "subagent"
)

// ToolCall describes a tool invocation extracted from a transcript.
type ToolCall struct {
	Name string            `json:"name"`
	Args map[string]string `json:"args,omitempty"`
}

// ToolResult describes the recorded outcome of a tool invocation.
type ToolResult struct {
	Name   string `json:"name"`
	Output string `json:"output"`
}

// Message is one normalized conversational turn. Content semantics depend on
// the role: human text for user/assistant/thinking, the tool name for
// tool_call, tool output for tool_result, and a human label for subagent.
//
// Exactly one of ToolCall, ToolResult, Subagent may be set, and only when the
// role matches. Sequence position is the sole ordering signal; Timestamp is
// advisory and may be absent or non-monotonic.
type Message struct {
	Role       Role                  `json:"role"`
	Content    string                `json:"content"`
	ToolCall   *ToolCall             `json:"toolCall,omitempty"`
	ToolResult *ToolResult           `json:"toolResult,omitempty"`
	Subagent   *SubagentConversation `json:"subagent,omitempty"`
	Timestamp  *time.Time            `json:"timestamp,omitempty"`
}

// SubagentConversation is a nested sub-conversation spawned by and owned by
// exactly one parent message. Its messages follow the same invariants
// recursively; nothing forbids subagents within subagents.
type SubagentConversation struct {
	ID        string    `json:"id"`
	Messages  []Message `json:"messages"`
	CreatedAt int64     `json:"createdAt,omitempty"`
}

// ProjectInfo is a logical grouping of conversations discovered on disk.
type ProjectInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ConversationSummary is a best-effort listing entry for one transcript.
type ConversationSummary struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId,omitempty"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
