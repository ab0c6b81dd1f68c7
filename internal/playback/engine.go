package playback

import (
	"sync"
	"time"

	"github.com/dtherrick/agent-replay/internal/message"
)

// Status is the engine's lifecycle state.
type Status int

const (
	StatusIdle Status = iota
	StatusPlaying
	StatusPaused
	StatusFinished
)

func (s Status) String() string {
	switch s {
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	case StatusFinished:
		return "finished"
	default:
		return "idle"
	}
}

// Per-step waits before auto-advancing. All are divided by the playback
// speed at schedule time.
const (
	delayUser            = 800 * time.Millisecond
	delayThinkingAnim    = 2000 * time.Millisecond
	delayAssistantSettle = 1000 * time.Millisecond
	delayApprovalPending = 2500 * time.Millisecond
	delayApprovalFlip    = 2000 * time.Millisecond
	delayApprovalSettle  = 500 * time.Millisecond
	delayThinking        = 1500 * time.Millisecond
	delayToolResult      = 300 * time.Millisecond
	delayDefault         = 500 * time.Millisecond
)

func delayFor(role message.Role) time.Duration {
	switch role {
	case message.RoleUser:
		return delayUser
	case message.RoleThinking:
		return delayThinking
	case message.RoleToolResult:
		return delayToolResult
	default:
		return delayDefault
	}
}

// Scheduler arms a one-shot timer and returns its cancel function.
// Injectable so tests can drive the clock by hand.
type Scheduler func(d time.Duration, fn func()) (cancel func())

func defaultScheduler(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// Snapshot is an immutable view of the engine for rendering.
type Snapshot struct {
	Status    Status
	Cursor    int
	Total     int
	Displayed []Step
	Speed     float64
}

// Engine is the deterministic, cancelable playback state machine. A single
// cursor over the expanded sequence is the sole source of truth; the
// displayed subsequence is always the prefix [0, cursor) with two-step pairs
// collapsed into one mutating slot. All transitions happen under one mutex,
// and every scheduled continuation captures a generation counter at schedule
// time so a stale timer can never mutate state.
type Engine struct {
	mu sync.Mutex

	msgs     []message.Message
	settings DisplaySettings
	steps    []Step

	cursor     int
	status     Status
	approved   bool // the visible approval placeholder has flipped to approved
	generation uint64

	pendingFn    func()
	pendingDelay time.Duration
	cancelTimer  func()

	schedule Scheduler
	onUpdate func(Snapshot)
}

// Option configures an Engine.
type Option func(*Engine)

// WithScheduler replaces the wall-clock timer, for deterministic tests.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.schedule = s }
}

// WithUpdateFunc registers a callback invoked after every state change.
func WithUpdateFunc(fn func(Snapshot)) Option {
	return func(e *Engine) { e.onUpdate = fn }
}

// WithSettings sets the initial display settings.
func WithSettings(s DisplaySettings) Option {
	return func(e *Engine) { e.settings = s }
}

// NewEngine creates an engine with no conversation loaded.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		settings: DefaultSettings(),
		schedule: defaultScheduler,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetConversation loads a new conversation, superseding any running playback.
func (e *Engine) SetConversation(msgs []message.Message) {
	e.mu.Lock()
	e.msgs = msgs
	e.resetLocked()
	e.mu.Unlock()
	e.notify()
}

// SetSettings applies new display settings. Visibility changes recompute the
// sequence from scratch; a speed-only change just rescales subsequent waits.
func (e *Engine) SetSettings(s DisplaySettings) {
	e.mu.Lock()
	visibilityChanged := s.ShowThinking != e.settings.ShowThinking ||
		s.ShowToolCalls != e.settings.ShowToolCalls ||
		s.ShowToolResults != e.settings.ShowToolResults
	e.settings = s
	if visibilityChanged {
		e.resetLocked()
	}
	e.mu.Unlock()
	e.notify()
}

// resetLocked cancels any timer chain and recomputes the expanded sequence.
func (e *Engine) resetLocked() {
	e.invalidateLocked()
	e.steps = Transform(e.msgs, e.settings)
	e.cursor = 0
	e.approved = false
	e.pendingFn = nil
	e.status = StatusIdle
}

// invalidateLocked supersedes the running timer chain: the generation bump
// makes any already-fired continuation a no-op.
func (e *Engine) invalidateLocked() {
	e.generation++
	if e.cancelTimer != nil {
		e.cancelTimer()
		e.cancelTimer = nil
	}
}

// Play starts or resumes continuous playback.
func (e *Engine) Play() {
	e.mu.Lock()
	switch e.status {
	case StatusPlaying, StatusFinished:
		e.mu.Unlock()
		return
	case StatusPaused:
		e.status = StatusPlaying
		if e.pendingFn != nil {
			// resume the exact wait that was pending at pause time
			e.armLocked()
		} else {
			e.advanceLocked()
		}
	default: // idle
		if len(e.steps) == 0 {
			e.mu.Unlock()
			return
		}
		e.status = StatusPlaying
		e.advanceLocked()
	}
	e.mu.Unlock()
	e.notify()
}

// Pause stops auto-advance, keeping the cursor exactly where it is.
func (e *Engine) Pause() {
	e.mu.Lock()
	if e.status != StatusPlaying {
		e.mu.Unlock()
		return
	}
	e.invalidateLocked()
	e.status = StatusPaused
	e.mu.Unlock()
	e.notify()
}

// TogglePlay flips between playing and paused.
func (e *Engine) TogglePlay() {
	e.mu.Lock()
	playing := e.status == StatusPlaying
	e.mu.Unlock()
	if playing {
		e.Pause()
	} else {
		e.Play()
	}
}

// Restart cancels everything, rewinds to the start, and begins playing
// again if there is anything to play.
func (e *Engine) Restart() {
	e.mu.Lock()
	e.invalidateLocked()
	e.cursor = 0
	e.approved = false
	e.pendingFn = nil
	if len(e.steps) == 0 {
		e.status = StatusIdle
		e.mu.Unlock()
		e.notify()
		return
	}
	e.status = StatusPlaying
	e.advanceLocked()
	e.mu.Unlock()
	e.notify()
}

// StepForward advances one slot. A two-step pair resolves directly to its
// final form in one jump; the placeholder is never left visible by a manual
// step. No-op once finished.
func (e *Engine) StepForward() {
	e.mu.Lock()
	if e.cursor >= len(e.steps) {
		e.mu.Unlock()
		return
	}
	e.invalidateLocked()
	e.pendingFn = nil
	e.approved = false

	if e.cursor > 0 && e.steps[e.cursor-1].IsPlaceholder() {
		// mid-pair: the visible placeholder resolves
		e.cursor++
	} else if e.steps[e.cursor].IsPlaceholder() {
		e.cursor += 2
	} else {
		e.cursor++
	}

	if e.cursor >= len(e.steps) {
		e.status = StatusFinished
	} else {
		e.status = StatusPaused
	}
	e.mu.Unlock()
	e.notify()
}

// StepBack removes one displayed slot. Removing the resolved half of a pair
// rewinds the cursor by 2, fully un-rendering the pair. No-op at the start.
func (e *Engine) StepBack() {
	e.mu.Lock()
	if e.cursor == 0 {
		e.mu.Unlock()
		return
	}
	e.invalidateLocked()
	e.pendingFn = nil
	e.approved = false

	if e.cursor >= 2 && e.steps[e.cursor-2].IsPlaceholder() && !e.steps[e.cursor-1].IsPlaceholder() {
		e.cursor -= 2
	} else {
		e.cursor--
	}

	if e.cursor == 0 {
		e.status = StatusIdle
	} else {
		e.status = StatusPaused
	}
	e.mu.Unlock()
	e.notify()
}

// advanceLocked presents the step at the cursor and schedules the chain of
// waits that follows it.
func (e *Engine) advanceLocked() {
	if e.cursor >= len(e.steps) {
		e.status = StatusFinished
		return
	}

	step := e.steps[e.cursor]
	switch step.Role {
	case RoleThinkingAnimation:
		e.cursor++ // placeholder occupies the slot
		e.afterLocked(delayThinkingAnim, func() {
			e.cursor++ // same slot now shows the assistant message
			e.afterLocked(delayAssistantSettle, e.advanceLocked)
		})

	case RoleApproval:
		e.cursor++ // pending banner
		e.approved = false
		e.afterLocked(delayApprovalPending, func() {
			e.approved = true // banner flips in place
			e.afterLocked(delayApprovalFlip, func() {
				e.cursor++ // slot now shows the tool call
				e.approved = false
				e.afterLocked(delayApprovalSettle, e.advanceLocked)
			})
		})

	default:
		e.cursor++
		e.afterLocked(delayFor(step.Role), e.advanceLocked)
	}
}

// afterLocked records the pending continuation and arms its timer. The
// continuation is kept so a pause/resume can re-arm it without replaying or
// skipping a step.
func (e *Engine) afterLocked(d time.Duration, fn func()) {
	e.pendingFn = fn
	e.pendingDelay = d
	e.armLocked()
}

func (e *Engine) armLocked() {
	gen := e.generation
	fn := e.pendingFn
	scaled := time.Duration(float64(e.pendingDelay) / e.settings.speed())

	e.cancelTimer = e.schedule(scaled, func() {
		e.mu.Lock()
		if gen != e.generation || e.status != StatusPlaying {
			// superseded by a pause, restart, or reload
			e.mu.Unlock()
			return
		}
		e.pendingFn = nil
		fn()
		e.mu.Unlock()
		e.notify()
	})
}

// Snapshot returns the current state for rendering.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	return Snapshot{
		Status:    e.status,
		Cursor:    e.cursor,
		Total:     len(e.steps),
		Displayed: e.displayedLocked(),
		Speed:     e.settings.speed(),
	}
}

// displayedLocked materializes the prefix [0, cursor) with pairs collapsed:
// a resolved pair contributes only its final form, and a pair caught
// mid-resolution contributes its placeholder (flipped to approved when the
// pending wait has elapsed).
func (e *Engine) displayedLocked() []Step {
	out := make([]Step, 0, e.cursor)
	for i := 0; i < e.cursor; i++ {
		s := e.steps[i]
		if !s.IsPlaceholder() {
			out = append(out, s)
			continue
		}
		if i+1 < e.cursor {
			continue // resolved; the next iteration appends the final form
		}
		if s.Role == RoleApproval && e.approved {
			s.Approval = &Approval{Status: ApprovalApproved, Action: "yes"}
		}
		out = append(out, s)
	}
	return out
}

func (e *Engine) notify() {
	if e.onUpdate == nil {
		return
	}
	e.mu.Lock()
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.onUpdate(snap)
}
