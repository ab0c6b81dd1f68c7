package source

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dtherrick/agent-replay/internal/message"
	"github.com/dtherrick/agent-replay/internal/parse"
)

// Composer reads hand-rolled block transcripts. Each project is a directory
// under the root; a conversation is a <id>.txt block transcript and/or a
// <id>.json structured export (the structured form wins when both exist),
// with subagent transcripts under <id>.agents/. A sqlite index at the root
// supplies titles and exact timestamps when present.
type Composer struct {
	root string
	log  *slog.Logger
}

func NewComposer(root string, log *slog.Logger) *Composer {
	return &Composer{root: root, log: orDefault(log)}
}

func (c *Composer) ID() string   { return "composer" }
func (c *Composer) Name() string { return "Composer" }

func (c *Composer) ListProjects(ctx context.Context) ([]message.ProjectInfo, error) {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		c.log.Debug("composer root unavailable", "root", c.root, "error", err)
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

func (c *Composer) ListConversations(ctx context.Context, projectID string) ([]message.ConversationSummary, error) {
	dir := filepath.Join(c.root, projectID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		c.log.Debug("composer project unavailable", "project", projectID, "error", err)
		return []message.ConversationSummary{}, nil
	}

	// collect ids once; a conversation may exist as .txt, .json, or both
	seen := map[string]os.FileInfo{}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		var id string
		switch {
		case strings.HasSuffix(name, ".txt"):
			id = strings.TrimSuffix(name, ".txt")
		case strings.HasSuffix(name, ".json"):
			id = strings.TrimSuffix(name, ".json")
		default:
			continue
		}
		info, err := e.Info()
		if err != nil {
			c.log.Warn("skipping unreadable conversation", "name", name, "error", err)
			continue
		}
		if _, dup := seen[id]; !dup {
			ids = append(ids, id)
		}
		seen[id] = info
	}
	sort.Strings(ids)

	db := c.openIndex(ctx)
	if db != nil {
		defer db.Close()
	}

	summaries := []message.ConversationSummary{}
	for _, id := range ids {
		info := seen[id]
		summary := message.ConversationSummary{
			ID:        id,
			ProjectID: projectID,
			Title:     id,
			CreatedAt: info.ModTime(),
			UpdatedAt: info.ModTime(),
		}
		if meta, ok := c.indexMeta(ctx, db, id); ok {
			summary.Title = meta.title
			summary.CreatedAt = meta.created
			summary.UpdatedAt = meta.updated
		}
		summaries = append(summaries, summary)
	}
	sortSummaries(summaries)
	return summaries, nil
}

func (c *Composer) LoadConversation(ctx context.Context, projectID, conversationID string) ([]message.Message, error) {
	dir := filepath.Join(c.root, projectID)

	msgs, ok := c.loadStructured(filepath.Join(dir, conversationID+".json"))
	if !ok {
		msgs, ok = c.loadBlocks(filepath.Join(dir, conversationID+".txt"))
	}
	if !ok {
		c.log.Debug("conversation unavailable", "project", projectID, "id", conversationID)
		return []message.Message{}, nil
	}

	subs := c.loadSubagents(filepath.Join(dir, conversationID+".agents"))
	return PlaceSubagents(msgs, subs), nil
}

func (c *Composer) loadStructured(path string) ([]message.Message, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	msgs, err := parse.ParseExport(data)
	if err != nil {
		// a broken export falls back to the plain transcript, if any
		c.log.Warn("unrecognized export shape", "path", path, "error", err)
		return nil, false
	}
	return msgs, true
}

func (c *Composer) loadBlocks(path string) ([]message.Message, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	return parse.ParseBlocks(string(data)), true
}

func (c *Composer) loadSubagents(dir string) []message.SubagentConversation {
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
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			c.log.Warn("skipping unreadable subagent transcript", "name", e.Name(), "error", err)
			continue
		}
		files = append(files, candidate{
			name: strings.TrimSuffix(e.Name(), ".txt"),
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
		data, err := os.ReadFile(fc.path)
		if err != nil {
			c.log.Warn("skipping unreadable subagent transcript", "path", fc.path, "error", err)
			continue
		}
		subs = append(subs, message.SubagentConversation{
			ID:        fc.name,
			Messages:  parse.ParseBlocks(string(data)),
			CreatedAt: fc.mod,
		})
	}
	return subs
}

type indexRow struct {
	title   string
	created time.Time
	updated time.Time
}

// openIndex opens the metadata index if one exists. Every failure is
// best-effort: the caller carries on with filename and stat fallbacks.
func (c *Composer) openIndex(ctx context.Context) *sql.DB {
	path := filepath.Join(c.root, "index.db")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		c.log.Warn("metadata index unavailable", "path", path, "error", err)
		return nil
	}
	if err := db.PingContext(ctx); err != nil {
		c.log.Warn("metadata index unavailable", "path", path, "error", err)
		db.Close()
		return nil
	}
	return db
}

func (c *Composer) indexMeta(ctx context.Context, db *sql.DB, id string) (indexRow, bool) {
	if db == nil {
		return indexRow{}, false
	}

	var title string
	var created, updated int64
	err := db.QueryRowContext(ctx,
		`SELECT title, created_at, updated_at FROM conversations WHERE id = ?`, id,
	).Scan(&title, &created, &updated)
	if err != nil {
		if err != sql.ErrNoRows {
			c.log.Warn("metadata index query failed", "id", id, "error", err)
		}
		return indexRow{}, false
	}
	return indexRow{
		title:   title,
		created: time.Unix(created, 0),
		updated: time.Unix(updated, 0),
	}, true
}
