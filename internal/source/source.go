// Package source discovers and loads conversations from on-disk transcript roots.
package source

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/dtherrick/agent-replay/internal/message"
)

// Adapter exposes one transcript origin. Implementations degrade gracefully:
// a missing root or project yields empty results with a logged diagnostic,
// and an unreadable individual entry is skipped rather than failing the list.
type Adapter interface {
	// ID is the stable identifier used in URLs and the CLI.
	ID() string
	// Name is the human-readable label.
	Name() string

	ListProjects(ctx context.Context) ([]message.ProjectInfo, error)
	ListConversations(ctx context.Context, projectID string) ([]message.ConversationSummary, error)
	LoadConversation(ctx context.Context, projectID, conversationID string) ([]message.Message, error)
}

// Info identifies a registered source.
type Info struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Registry holds the configured adapters in registration order.
type Registry struct {
	order []string
	byID  map[string]Adapter
}

// NewRegistry builds a registry from the given adapters. Registration order
// is preserved by List.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{byID: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		if _, dup := r.byID[a.ID()]; dup {
			continue
		}
		r.order = append(r.order, a.ID())
		r.byID[a.ID()] = a
	}
	return r
}

// Get returns the adapter registered under id.
func (r *Registry) Get(id string) (Adapter, bool) {
	a, ok := r.byID[id]
	return a, ok
}

// List returns the registered sources in registration order.
func (r *Registry) List() []Info {
	infos := make([]Info, 0, len(r.order))
	for _, id := range r.order {
		infos = append(infos, Info{ID: id, Name: r.byID[id].Name()})
	}
	return infos
}

func orDefault(log *slog.Logger) *slog.Logger {
	if log == nil {
		return slog.Default()
	}
	return log
}

// titleFromMessages derives a listing title from the first user message,
// falling back when the conversation has no usable user text.
func titleFromMessages(msgs []message.Message, fallback string) string {
	for _, m := range msgs {
		if m.Role != message.RoleUser {
			continue
		}
		line := m.Content
		if i := strings.IndexByte(line, '\n'); i >= 0 {
			line = line[:i]
		}
		if line = strings.TrimSpace(line); line != "" {
			return truncateTitle(line, 80)
		}
	}
	return fallback
}

func truncateTitle(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

// sortSummaries orders newest-first, with the id as a deterministic
// tie-breaker.
func sortSummaries(s []message.ConversationSummary) {
	sort.Slice(s, func(i, j int) bool {
		if !s[i].UpdatedAt.Equal(s[j].UpdatedAt) {
			return s[i].UpdatedAt.After(s[j].UpdatedAt)
		}
		return s[i].ID < s[j].ID
	})
}

func sortProjects(p []message.ProjectInfo) {
	sort.Slice(p, func(i, j int) bool { return p[i].ID < p[j].ID })
}
