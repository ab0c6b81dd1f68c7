package source

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dtherrick/agent-replay/internal/message"
	"github.com/dtherrick/agent-replay/internal/parse"
)

// Claude reads line-delimited event logs from a projects root. Each project
// is a directory; conversations are top-level *.jsonl files, and a
// subdirectory named after a conversation id holds its subagent transcripts.
type Claude struct {
	root string
	log  *slog.Logger
}

// NewClaude builds the adapter for the given root (typically
// ~/.claude/projects). A nil logger falls back to slog.Default().
func NewClaude(root string, log *slog.Logger) *Claude {
	return &Claude{root: root, log: orDefault(log)}
}

func (c *Claude) ID() string   { return "claude" }
func (c *Claude) Name() string { return "Claude Code" }

func (c *Claude) ListProjects(ctx context.Context) ([]message.ProjectInfo, error) {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		c.log.Debug("claude root unavailable", "root", c.root, "error", err)
		return []message.ProjectInfo{}, nil
	}

	projects := []message.ProjectInfo{}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		projects = append(projects, message.ProjectInfo{ID: e.Name(), Name: e.Name()})
	}
	sortProjects(projects)
	return projects, nil
}

func (c *Claude) ListConversations(ctx context.Context, projectID string) ([]message.ConversationSummary, error) {
	dir := filepath.Join(c.root, projectID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		c.log.Debug("claude project unavailable", "project", projectID, "error", err)
		return []message.ConversationSummary{}, nil
	}

	summaries := []message.ConversationSummary{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jsonl") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".jsonl")
		path := filepath.Join(dir, e.Name())

		info, err := e.Info()
		if err != nil {
			c.log.Warn("skipping unreadable conversation", "path", path, "error", err)
			continue
		}

		summary := message.ConversationSummary{
			ID:        id,
			ProjectID: projectID,
			Title:     id,
			CreatedAt: info.ModTime(),
			UpdatedAt: info.ModTime(),
		}
		if f, err := os.Open(path); err == nil {
			summary.Title = titleFromMessages(parse.ParseEventLog(f), id)
			f.Close()
		}
		summaries = append(summaries, summary)
	}
	sortSummaries(summaries)
	return summaries, nil
}

func (c *Claude) LoadConversation(ctx context.Context, projectID, conversationID string) ([]message.Message, error) {
	path := filepath.Join(c.root, projectID, conversationID+".jsonl")
	f, err := os.Open(path)
	if err != nil {
		c.log.Debug("conversation unavailable", "path", path, "error", err)
		return []message.Message{}, nil
	}
	msgs := parse.ParseEventLog(f)
	f.Close()

	subs := c.loadSubagents(filepath.Join(c.root, projectID, conversationID))
	return PlaceSubagents(msgs, subs), nil
}

// loadSubagents reads the per-conversation subagent directory. Files are
// ordered by modification time so placement tracks spawn order.
func (c *Claude) loadSubagents(dir string) []message.SubagentConversation {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	type candidate struct {
		name string
		path string
		mod  int64
	}
	var files []candidate
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jsonl") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			c.log.Warn("skipping unreadable subagent transcript", "name", e.Name(), "error", err)
			continue
		}
		files = append(files, candidate{
			name: strings.TrimSuffix(e.Name(), ".jsonl"),
			path: filepath.Join(dir, e.Name()),
			mod:  info.ModTime().Unix(),
		})
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].mod != files[j].mod {
			return files[i].mod < files[j].mod
		}
		return files[i].name < files[j].name
	})

	var subs []message.SubagentConversation
	for _, fc := range files {
		f, err := os.Open(fc.path)
		if err != nil {
			c.log.Warn("skipping unreadable subagent transcript", "path", fc.path, "error", err)
			continue
		}
		subs = append(subs, message.SubagentConversation{
			ID:        fc.name,
			Messages:  parse.ParseEventLog(f),
			CreatedAt: fc.mod,
		})
		f.Close()
	}
	return subs
}
