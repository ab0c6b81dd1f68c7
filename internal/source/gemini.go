package source

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dtherrick/agent-replay/internal/message"
	"github.com/dtherrick/agent-replay/internal/parse"
)

// geminiProject is the single synthetic project a flat export root maps to.
const geminiProject = "default"

// Gemini reads structured conversation exports from a flat directory of
// *.json files.
type Gemini struct {
	root string
	log  *slog.Logger
}

func NewGemini(root string, log *slog.Logger) *Gemini {
	return &Gemini{root: root, log: orDefault(log)}
}

func (g *Gemini) ID() string   { return "gemini" }
func (g *Gemini) Name() string { return "Gemini" }

func (g *Gemini) ListProjects(ctx context.Context) ([]message.ProjectInfo, error) {
	if _, err := os.Stat(g.root); err != nil {
		g.log.Debug("gemini root unavailable", "root", g.root, "error", err)
		return []message.ProjectInfo{}, nil
	}
	return []message.ProjectInfo{{ID: geminiProject, Name: "Default"}}, nil
}

func (g *Gemini) ListConversations(ctx context.Context, projectID string) ([]message.ConversationSummary, error) {
	if projectID != geminiProject {
		return []message.ConversationSummary{}, nil
	}
	entries, err := os.ReadDir(g.root)
	if err != nil {
		g.log.Debug("gemini root unavailable", "root", g.root, "error", err)
		return []message.ConversationSummary{}, nil
	}

	summaries := []message.ConversationSummary{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".json")
		path := filepath.Join(g.root, e.Name())

		info, err := e.Info()
		if err != nil {
			g.log.Warn("skipping unreadable export", "path", path, "error", err)
			continue
		}

		summary := message.ConversationSummary{
			ID:        id,
			ProjectID: geminiProject,
			Title:     id,
			CreatedAt: info.ModTime(),
			UpdatedAt: info.ModTime(),
		}
		if data, err := os.ReadFile(path); err == nil {
			if msgs, err := parse.ParseExport(data); err == nil {
				summary.Title = titleFromMessages(msgs, id)
			}
		}
		summaries = append(summaries, summary)
	}
	sortSummaries(summaries)
	return summaries, nil
}

func (g *Gemini) LoadConversation(ctx context.Context, projectID, conversationID string) ([]message.Message, error) {
	if projectID != geminiProject {
		return []message.Message{}, nil
	}
	path := filepath.Join(g.root, conversationID+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		g.log.Debug("conversation unavailable", "path", path, "error", err)
		return []message.Message{}, nil
	}

	msgs, err := parse.ParseExport(data)
	if err != nil {
		// at this boundary an unrecognized shape is a diagnostic, not a failure
		if errors.Is(err, parse.ErrUnrecognizedFormat) {
			g.log.Warn("unrecognized export shape", "path", path, "error", err)
			return []message.Message{}, nil
		}
		return nil, err
	}
	return msgs, nil
}
