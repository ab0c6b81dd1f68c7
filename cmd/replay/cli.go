// Package main defines the CLI structure using kong.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/dtherrick/agent-replay/internal/config"
	"github.com/dtherrick/agent-replay/internal/message"
	"github.com/dtherrick/agent-replay/internal/parse"
	"github.com/dtherrick/agent-replay/internal/server"
	"github.com/dtherrick/agent-replay/internal/settings"
	"github.com/dtherrick/agent-replay/internal/source"
	"github.com/dtherrick/agent-replay/internal/tui"
)

// CLI defines the command-line interface.
type CLI struct {
	Serve   ServeCmd   `cmd:"" help:"Serve the HTTP API"`
	Play    PlayCmd    `cmd:"" help:"Play a conversation in the terminal"`
	List    ListCmd    `cmd:"" help:"List sources, projects, or conversations"`
	Version VersionCmd `cmd:"" help:"Show version information"`

	Config string `help:"Config file path" type:"path"`
}

// ServeCmd runs the HTTP API server.
type ServeCmd struct {
	Addr string `help:"Listen address (overrides config)"`
}

// PlayCmd plays a conversation in the terminal viewer.
type PlayCmd struct {
	Source  string  `arg:"" help:"Source id (claude, composer, gemini) or a transcript file path"`
	ID      string  `arg:"" optional:"" help:"Conversation id"`
	Project string  `short:"p" help:"Project id"`
	Follow  bool    `short:"f" help:"Reload playback when the transcript changes"`
	Speed   float64 `help:"Playback speed override" placeholder:"0.25-4"`
}

// ListCmd lists sources, projects, or conversations.
type ListCmd struct {
	Source  string `arg:"" optional:"" help:"Source id"`
	Project string `short:"p" help:"Project id"`
	Verbose bool   `short:"v" help:"Show per-conversation statistics"`
}

// VersionCmd shows version information.
type VersionCmd struct{}

// kongVars returns variables for kong (version info).
func kongVars() kong.Vars {
	return kong.Vars{
		"version": version,
	}
}

// loadConfig loads the configured file, or replay.toml / defaults.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.Config != "" {
		return config.LoadFile(c.Config)
	}
	return config.LoadDefault()
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// newRegistry wires the three built-in adapters against the configured roots.
func newRegistry(cfg *config.Config, log *slog.Logger) *source.Registry {
	return source.NewRegistry(
		source.NewClaude(config.ExpandPath(cfg.Sources.ClaudeRoot), log),
		source.NewComposer(config.ExpandPath(cfg.Sources.ComposerRoot), log),
		source.NewGemini(config.ExpandPath(cfg.Sources.GeminiRoot), log),
	)
}

// Run starts the HTTP server.
func (c *ServeCmd) Run(cli *CLI) error {
	cfg, err := cli.loadConfig()
	if err != nil {
		return err
	}
	log := newLogger()
	store := settings.NewStore(config.ExpandPath(cfg.Settings.Path), log)

	addr := cfg.Server.Addr
	if c.Addr != "" {
		addr = c.Addr
	}
	return server.New(newRegistry(cfg, log), store, log).Start(addr)
}

// Run plays a conversation. The first argument is either a registered source
// id or a path to a transcript file.
func (c *PlayCmd) Run(cli *CLI) error {
	cfg, err := cli.loadConfig()
	if err != nil {
		return err
	}
	log := newLogger()

	prefs := cfg.DisplaySettings()
	settingsPath := config.ExpandPath(cfg.Settings.Path)
	if _, err := os.Stat(settingsPath); err == nil {
		prefs = settings.NewStore(settingsPath, log).Load()
	}
	if c.Speed > 0 {
		prefs.PlaybackSpeed = c.Speed
	}

	opts := tui.Options{Settings: prefs}

	var msgs []message.Message
	if c.ID == "" {
		// direct file playback
		msgs, err = loadTranscriptFile(c.Source)
		if err != nil {
			return err
		}
		opts.Title = filepath.Base(c.Source)
		if c.Follow {
			path := c.Source
			opts.WatchPath = path
			opts.Reload = func() ([]message.Message, error) {
				return loadTranscriptFile(path)
			}
		}
		return tui.Run(msgs, opts)
	}

	adapter, ok := newRegistry(cfg, log).Get(c.Source)
	if !ok {
		return fmt.Errorf("unknown source %q", c.Source)
	}
	msgs, err = adapter.LoadConversation(context.Background(), c.Project, c.ID)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return fmt.Errorf("conversation %q is empty or missing", c.ID)
	}
	opts.Title = fmt.Sprintf("%s/%s", c.Source, c.ID)

	if c.Follow {
		if path := transcriptPath(cfg, c.Source, c.Project, c.ID); path != "" {
			opts.WatchPath = path
			opts.Reload = func() ([]message.Message, error) {
				return adapter.LoadConversation(context.Background(), c.Project, c.ID)
			}
		} else {
			log.Warn("transcript file not found, live reload disabled", "source", c.Source, "id", c.ID)
		}
	}
	return tui.Run(msgs, opts)
}

// loadTranscriptFile parses a transcript by extension: .jsonl as an event
// log, .json as a structured export, anything else as a block transcript.
func loadTranscriptFile(path string) ([]message.Message, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl":
		return parse.ParseEventLog(bytes.NewReader(data)), nil
	case ".json":
		msgs, err := parse.ParseExport(data)
		if errors.Is(err, parse.ErrUnrecognizedFormat) {
			return parse.ParseBlocks(string(data)), nil
		}
		return msgs, err
	default:
		return parse.ParseBlocks(string(data)), nil
	}
}

// transcriptPath locates the on-disk file behind a conversation so that
// --follow can watch it. Empty when no candidate exists.
func transcriptPath(cfg *config.Config, src, project, id string) string {
	var candidates []string
	switch src {
	case "claude":
		root := config.ExpandPath(cfg.Sources.ClaudeRoot)
		candidates = []string{filepath.Join(root, project, id+".jsonl")}
	case "composer":
		root := config.ExpandPath(cfg.Sources.ComposerRoot)
		candidates = []string{
			filepath.Join(root, project, id+".json"),
			filepath.Join(root, project, id+".txt"),
		}
	case "gemini":
		root := config.ExpandPath(cfg.Sources.GeminiRoot)
		candidates = []string{filepath.Join(root, id+".json")}
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Run lists sources, the projects of a source, or its conversations.
func (c *ListCmd) Run(cli *CLI) error {
	cfg, err := cli.loadConfig()
	if err != nil {
		return err
	}
	log := newLogger()
	reg := newRegistry(cfg, log)
	ctx := context.Background()

	if c.Source == "" {
		for _, info := range reg.List() {
			fmt.Printf("%-10s %s\n", info.ID, info.Name)
		}
		return nil
	}

	adapter, ok := reg.Get(c.Source)
	if !ok {
		return fmt.Errorf("unknown source %q", c.Source)
	}

	if c.Project == "" {
		projects, err := adapter.ListProjects(ctx)
		if err != nil {
			return err
		}
		for _, p := range projects {
			fmt.Println(p.ID)
		}
		return nil
	}

	convs, err := adapter.ListConversations(ctx, c.Project)
	if err != nil {
		return err
	}
	for _, conv := range convs {
		fmt.Printf("%-38s %s  %s\n", conv.ID, conv.UpdatedAt.Format("2006-01-02 15:04"), conv.Title)
		if c.Verbose {
			msgs, err := adapter.LoadConversation(ctx, c.Project, conv.ID)
			if err != nil {
				fmt.Printf("  (unreadable: %v)\n", err)
				continue
			}
			message.ComputeStats(msgs).Print(os.Stdout)
		}
	}
	return nil
}

// Run prints version information.
func (c *VersionCmd) Run(cli *CLI) error {
	fmt.Printf("replay %s\n", version)
	fmt.Printf("  commit:     %s\n", commit)
	fmt.Printf("  build time: %s\n", buildTime)
	return nil
}
