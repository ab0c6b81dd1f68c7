package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dtherrick/agent-replay/internal/config"
	"github.com/dtherrick/agent-replay/internal/message"
)

func writeTranscript(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadTranscriptFileByExtension(t *testing.T) {
	dir := t.TempDir()

	jsonl := writeTranscript(t, dir, "conv.jsonl",
		`{"role":"user","message":{"content":[{"type":"text","text":"hi"}]}}`+"\n")
	msgs, err := loadTranscriptFile(jsonl)
	if err != nil {
		t.Fatalf("jsonl: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Role != message.RoleUser {
		t.Fatalf("jsonl parsed wrong: %+v", msgs)
	}

	export := writeTranscript(t, dir, "conv.json",
		`[{"role":"model","parts":[{"text":"hello"}]}]`)
	msgs, err = loadTranscriptFile(export)
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Role != message.RoleAssistant {
		t.Fatalf("json parsed wrong: %+v", msgs)
	}

	blocks := writeTranscript(t, dir, "conv.txt", "user:\nhello\n\nassistant:\nhi\n")
	msgs, err = loadTranscriptFile(blocks)
	if err != nil {
		t.Fatalf("txt: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("txt parsed wrong: %+v", msgs)
	}
}

func TestLoadTranscriptFileJSONFallsBackToBlocks(t *testing.T) {
	dir := t.TempDir()
	// a .json file whose shape the export parser rejects
	path := writeTranscript(t, dir, "broken.json", "user:\nstill readable\n")

	msgs, err := loadTranscriptFile(path)
	if err != nil {
		t.Fatalf("fallback: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Content != "still readable" {
		t.Fatalf("fallback parsed wrong: %+v", msgs)
	}
}

func TestLoadTranscriptFileMissing(t *testing.T) {
	if _, err := loadTranscriptFile(filepath.Join(t.TempDir(), "nope.jsonl")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestTranscriptPath(t *testing.T) {
	dir := t.TempDir()
	cfg := config.New()
	cfg.Sources.ClaudeRoot = filepath.Join(dir, "claude")
	cfg.Sources.ComposerRoot = filepath.Join(dir, "composer")
	cfg.Sources.GeminiRoot = filepath.Join(dir, "gemini")

	writeTranscript(t, dir, filepath.Join("claude", "proj", "abc.jsonl"), "")
	writeTranscript(t, dir, filepath.Join("composer", "proj", "def.txt"), "")
	writeTranscript(t, dir, filepath.Join("gemini", "ghi.json"), "")

	if got := transcriptPath(cfg, "claude", "proj", "abc"); filepath.Base(got) != "abc.jsonl" {
		t.Errorf("claude path = %q", got)
	}
	// composer prefers .json but falls back to the block transcript
	if got := transcriptPath(cfg, "composer", "proj", "def"); filepath.Base(got) != "def.txt" {
		t.Errorf("composer path = %q", got)
	}
	if got := transcriptPath(cfg, "gemini", "", "ghi"); filepath.Base(got) != "ghi.json" {
		t.Errorf("gemini path = %q", got)
	}
	if got := transcriptPath(cfg, "claude", "proj", "missing"); got != "" {
		t.Errorf("missing conversation should yield empty path, got %q", got)
	}
}
