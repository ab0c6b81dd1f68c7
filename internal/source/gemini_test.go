package source

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dtherrick/agent-replay/internal/message"
)

func TestGemini_SyntheticProject(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "chat.json"),
		`[{"role":"user","parts":[{"text":"hello"}]},{"role":"model","parts":[{"text":"hi"}]}]`)

	g := NewGemini(root, nil)
	ctx := context.Background()

	projects, err := g.ListProjects(ctx)
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(projects) != 1 || projects[0].ID != "default" {
		t.Fatalf("expected single synthetic project, got %+v", projects)
	}

	convs, err := g.ListConversations(ctx, "default")
	if err != nil {
		t.Fatalf("ListConversations: %v", err)
	}
	if len(convs) != 1 || convs[0].ID != "chat" || convs[0].Title != "hello" {
		t.Errorf("unexpected summaries: %+v", convs)
	}

	msgs, err := g.LoadConversation(ctx, "default", "chat")
	if err != nil {
		t.Fatalf("LoadConversation: %v", err)
	}
	if len(msgs) != 2 || msgs[1].Role != message.RoleAssistant {
		t.Errorf("unexpected messages: %+v", msgs)
	}
}

func TestGemini_UnknownProjectEmpty(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "chat.json"), `[]`)

	convs, err := NewGemini(root, nil).ListConversations(context.Background(), "other")
	if err != nil {
		t.Fatalf("ListConversations: %v", err)
	}
	if len(convs) != 0 {
		t.Errorf("unknown project must be empty, got %+v", convs)
	}
}

func TestGemini_UnrecognizedShapeIsEmpty(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "weird.json"), `{"not":"an array"}`)

	msgs, err := NewGemini(root, nil).LoadConversation(context.Background(), "default", "weird")
	if err != nil {
		t.Fatalf("unrecognized shape must not error at this boundary: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("expected empty conversation, got %+v", msgs)
	}
}

func TestRegistry(t *testing.T) {
	root := t.TempDir()
	r := NewRegistry(NewClaude(root, nil), NewComposer(root, nil), NewGemini(root, nil))

	infos := r.List()
	if len(infos) != 3 {
		t.Fatalf("expected 3 sources, got %d", len(infos))
	}
	if infos[0].ID != "claude" || infos[1].ID != "composer" || infos[2].ID != "gemini" {
		t.Errorf("registration order not preserved: %+v", infos)
	}

	if _, ok := r.Get("composer"); !ok {
		t.Error("expected composer to be registered")
	}
	if _, ok := r.Get("unknown"); ok {
		t.Error("unknown source must not resolve")
	}
}
