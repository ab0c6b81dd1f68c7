package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	"github.com/muesli/reflow/wordwrap"

	"github.com/dtherrick/agent-replay/internal/message"
	"github.com/dtherrick/agent-replay/internal/playback"
)

// Options configures a viewer run.
type Options struct {
	Title    string
	Settings playback.DisplaySettings
	// WatchPath, when set, reloads the conversation via Reload whenever the
	// file changes, superseding any running playback.
	WatchPath string
	Reload    func() ([]message.Message, error)
}

// Run plays a conversation in an interactive viewer. The viewer never
// touches the cursor directly; it only calls engine operations and renders
// snapshots.
func Run(msgs []message.Message, opts Options) error {
	updates := make(chan playback.Snapshot, 32)
	engine := playback.NewEngine(
		playback.WithSettings(opts.Settings),
		playback.WithUpdateFunc(func(s playback.Snapshot) {
			select {
			case updates <- s:
			default: // renderer is behind; the next snapshot supersedes
			}
		}),
	)
	engine.SetConversation(msgs)

	m := &viewerModel{
		title:    opts.Title,
		engine:   engine,
		settings: opts.Settings,
		updates:  updates,
		snap:     engine.Snapshot(),
	}

	if opts.WatchPath != "" && opts.Reload != nil {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to create watcher: %w", err)
		}
		if err := watcher.Add(opts.WatchPath); err != nil {
			watcher.Close()
			return fmt.Errorf("failed to watch file: %w", err)
		}
		m.watcher = watcher
		m.reload = opts.Reload
		defer watcher.Close()
	}

	prog := tea.NewProgram(m, tea.WithAltScreen())
	_, err := prog.Run()
	return err
}

type snapshotMsg playback.Snapshot

type fileChangedMsg struct{}

type viewerModel struct {
	title    string
	engine   *playback.Engine
	settings playback.DisplaySettings
	updates  chan playback.Snapshot
	snap     playback.Snapshot

	watcher *fsnotify.Watcher
	reload  func() ([]message.Message, error)

	viewport viewport.Model
	ready    bool
}

func (m *viewerModel) Init() tea.Cmd {
	m.engine.Play()
	cmds := []tea.Cmd{m.waitForUpdate()}
	if m.watcher != nil {
		cmds = append(cmds, m.watchFile())
	}
	return tea.Batch(cmds...)
}

// waitForUpdate blocks on the engine's snapshot channel.
func (m *viewerModel) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(<-m.updates)
	}
}

// watchFile waits for a write to the watched transcript.
func (m *viewerModel) watchFile() tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case event, ok := <-m.watcher.Events:
				if !ok {
					return nil
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					// debounce: let the writer finish
					time.Sleep(100 * time.Millisecond)
					return fileChangedMsg{}
				}
			case _, ok := <-m.watcher.Errors:
				if !ok {
					return nil
				}
			}
		}
	}
}

func (m *viewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case snapshotMsg:
		m.snap = playback.Snapshot(msg)
		m.refreshContent(true)
		cmds = append(cmds, m.waitForUpdate())

	case fileChangedMsg:
		if fresh, err := m.reload(); err == nil {
			m.engine.SetConversation(fresh)
			m.engine.Play()
		}
		cmds = append(cmds, m.watchFile())

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.engine.TogglePlay()
		case "right", "l":
			m.engine.StepForward()
		case "left", "h":
			m.engine.StepBack()
		case "r":
			m.engine.Restart()
		case "+", "=":
			m.setSpeed(m.settings.PlaybackSpeed * 2)
		case "-", "_":
			m.setSpeed(m.settings.PlaybackSpeed / 2)
		case "t":
			m.settings.ShowThinking = !m.settings.ShowThinking
			m.applyVisibility()
		case "c":
			m.settings.ShowToolCalls = !m.settings.ShowToolCalls
			m.applyVisibility()
		case "o":
			m.settings.ShowToolResults = !m.settings.ShowToolResults
			m.applyVisibility()
		}
		m.snap = m.engine.Snapshot()
		m.refreshContent(false)

	case tea.WindowSizeMsg:
		headerHeight, footerHeight := 1, 1
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.viewport.YPosition = headerHeight
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		m.refreshContent(false)
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *viewerModel) setSpeed(speed float64) {
	if speed < 0.25 {
		speed = 0.25
	}
	if speed > 4 {
		speed = 4
	}
	m.settings.PlaybackSpeed = speed
	m.engine.SetSettings(m.settings)
}

// applyVisibility recomputes the sequence and starts over.
func (m *viewerModel) applyVisibility() {
	m.engine.SetSettings(m.settings)
	m.engine.Play()
}

func (m *viewerModel) refreshContent(follow bool) {
	if !m.ready {
		return
	}
	m.viewport.SetContent(renderSteps(m.snap.Displayed, m.viewport.Width))
	if follow {
		m.viewport.GotoBottom()
	}
}

func (m *viewerModel) View() string {
	if !m.ready {
		return "\n  Loading..."
	}

	title := titleStyle.Render(m.title)
	line := strings.Repeat("─", max(0, m.viewport.Width-lipgloss.Width(title)))
	header := lipgloss.JoinHorizontal(lipgloss.Center, title, dimStyle.Render(line))

	status := fmt.Sprintf(" %s │ %.2gx │ %d/%d ", m.snap.Status, m.snap.Speed, m.snap.Cursor, m.snap.Total)
	help := " space: play/pause │ ←/→: step │ r: restart │ +/-: speed │ t/c/o: toggles │ q: quit "
	pad := strings.Repeat("─", max(0, m.viewport.Width-lipgloss.Width(status)-lipgloss.Width(help)))
	footer := statusStyle.Render(status) + dimStyle.Render(pad) + statusStyle.Render(help)

	return header + "\n" + m.viewport.View() + "\n" + footer
}

// renderSteps formats the displayed subsequence as role-colored cards.
func renderSteps(steps []playback.Step, width int) string {
	var b strings.Builder
	for i, s := range steps {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(renderStep(s, width, 0))
	}
	return b.String()
}

func renderStep(s playback.Step, width, indent int) string {
	prefix := strings.Repeat("  ", indent)
	wrap := func(text string) string {
		wrapped := wordwrap.String(text, max(20, width-2*indent-2))
		lines := strings.Split(wrapped, "\n")
		for i, l := range lines {
			lines[i] = prefix + "  " + l
		}
		return strings.Join(lines, "\n")
	}

	switch s.Role {
	case message.RoleUser:
		return prefix + userStyle.Render("❯ user") + "\n" + wrap(bodyStyle.Render(s.Content)) + "\n"

	case message.RoleAssistant:
		return prefix + assistantStyle.Render("● assistant") + "\n" + wrap(bodyStyle.Render(s.Content)) + "\n"

	case message.RoleThinking:
		return prefix + thinkingStyle.Render("◌ thinking") + "\n" + wrap(thinkingStyle.Render(s.Content)) + "\n"

	case playback.RoleThinkingAnimation:
		return prefix + animationStyle.Render("◌ thinking…") + "\n"

	case playback.RoleApproval:
		label := "requires approval"
		style := approvalPendingStyle
		if s.Approval != nil && s.Approval.Status == playback.ApprovalApproved {
			label = "approved"
			style = approvalApprovedStyle
		}
		name := ""
		if s.ToolCall != nil {
			name = s.ToolCall.Name
		}
		return prefix + style.Render(fmt.Sprintf("⏸ %s: %s", name, label)) + "\n"

	case message.RoleToolCall:
		out := prefix + toolStyle.Render("⚒ "+s.Content) + "\n"
		if s.ToolCall != nil && len(s.ToolCall.Args) > 0 {
			keys := make([]string, 0, len(s.ToolCall.Args))
			for k := range s.ToolCall.Args {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				out += wrap(dimStyle.Render(k+": "+s.ToolCall.Args[k])) + "\n"
			}
		}
		return out

	case message.RoleToolResult:
		name := ""
		if s.ToolResult != nil {
			name = s.ToolResult.Name + " "
		}
		return prefix + toolResultStyle.Render("⇒ "+name) + dimStyle.Render(firstLine(s.Content)) + "\n"

	case message.RoleSubagent:
		out := prefix + subagentStyle.Render("⊕ subagent: "+s.Content) + "\n"
		if s.Subagent != nil {
			for _, sub := range s.Subagent.Messages {
				out += renderStep(playback.Step{Message: sub}, width, indent+1)
			}
		}
		return out

	default:
		return prefix + dimStyle.Render(string(s.Role)) + "\n" + wrap(s.Content) + "\n"
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
