package recorder

import (
	"context"
	"time"

	"github.com/hpungsan/reel/internal/session"
)

// State is the machine's lifecycle state. Exactly one is active at a time.
type State string

const (
	StateIdle            State = "idle"
	StateInitializing    State = "initializing"
	StateWaitingForVideo State = "waitingForVideo"
	StateRecording       State = "recording"
	StateStopping        State = "stopping"
)

// CaptureResult is what the capture collaborator hands back when a block
// stops. A nil result or an empty Data slice means nothing was captured.
type CaptureResult struct {
	Data     []byte
	Duration time.Duration
}

// PersistRequest carries everything needed to persist a finalized block.
type PersistRequest struct {
	BlockStart time.Time
	Duration   time.Duration
	Thumbnails []session.Thumbnail
	Data       []byte
}

// Hooks are the machine's injected side effects. The machine sequences them
// but implements none of them, so it can be driven in tests without real
// timers, cameras or databases.
type Hooks struct {
	// StartCapture begins recording. A synchronous failure is surfaced to
	// the caller of the transition but does not abort it: the machine still
	// enters recording, and the next stop simply persists nothing.
	StartCapture func() error

	// StopCapture finishes the capture and returns its result, or nil if
	// nothing was produced.
	StopCapture func(ctx context.Context) (*CaptureResult, error)

	// StartSampler begins periodic thumbnail capture for the block.
	StartSampler func(blockStart time.Time)

	// DrainSampler stops sampling and returns the accumulated thumbnails.
	DrainSampler func() []session.Thumbnail

	// StartTimer arms the single-shot block timer; StopTimer cancels it.
	StartTimer func()
	StopTimer  func()

	// Persist writes the finalized block to the store.
	Persist func(ctx context.Context, req PersistRequest) (*session.Session, error)

	// Prune applies the retention budget. Optional; invoked after each
	// successful persist, never concurrently with one.
	Prune func(ctx context.Context) (int, error)

	// Now supplies the clock. Defaults to time.Now.
	Now func() time.Time

	// OnStateChange is notified once per state change. Optional.
	OnStateChange func(State)
}

// Machine sequences the block lifecycle: start block, capture, rotate or
// stop, persist, repeat. Its methods are not safe for concurrent use; a
// single logical owner must serialize calls. State is updated before and
// after each await so a signal arriving mid-stop observes StateStopping and
// becomes a safe no-op.
type Machine struct {
	hooks Hooks

	state        State
	enabled      bool
	storageReady bool
	videoReady   bool
	blockStart   time.Time
}

// NewMachine creates a machine in the idle state.
func NewMachine(hooks Hooks) *Machine {
	if hooks.Now == nil {
		hooks.Now = time.Now
	}
	return &Machine{
		hooks: hooks,
		state: StateIdle,
	}
}

// State returns the current machine state.
func (m *Machine) State() State {
	return m.state
}

// BlockStart returns the start time of the active block, or the zero time
// when no block is open.
func (m *Machine) BlockStart() time.Time {
	return m.blockStart
}

// Enable turns the recorder on. No-op if already enabled.
func (m *Machine) Enable(ctx context.Context) error {
	if m.enabled {
		return nil
	}
	m.enabled = true
	return m.tryTransition(ctx)
}

// Disable turns the recorder off, stopping and persisting any block in
// flight before settling in idle. No-op if already disabled.
func (m *Machine) Disable(ctx context.Context) error {
	if !m.enabled {
		return nil
	}
	m.enabled = false

	if m.state == StateRecording {
		_, err := m.stopBlock(ctx)
		return err
	}
	if m.state == StateStopping {
		// The in-flight stop observes enabled=false and settles in idle.
		return nil
	}
	m.setState(StateIdle)
	return nil
}

// StorageReady reports that the session store is available.
func (m *Machine) StorageReady(ctx context.Context) error {
	m.storageReady = true
	return m.tryTransition(ctx)
}

// StorageFailed reports that the session store is unavailable. Fatal to the
// current enable-cycle: the machine settles in idle and must be re-enabled,
// which re-attempts storage init from scratch.
func (m *Machine) StorageFailed(ctx context.Context) error {
	m.storageReady = false
	m.enabled = false

	if m.state == StateRecording {
		_, err := m.stopBlock(ctx)
		return err
	}
	if m.state == StateStopping {
		return nil
	}
	m.setState(StateIdle)
	return nil
}

// VideoReady reports that the capture resource is available.
func (m *Machine) VideoReady(ctx context.Context) error {
	m.videoReady = true
	return m.tryTransition(ctx)
}

// VideoNotReady reports loss of the capture resource. A block in flight is
// stopped and persisted.
func (m *Machine) VideoNotReady(ctx context.Context) error {
	m.videoReady = false

	if m.state == StateRecording {
		_, err := m.stopBlock(ctx)
		return err
	}
	return m.tryTransition(ctx)
}

// BlockTimerFired rotates the current block: the stop-and-persist sequence
// for the old block fully completes before the new block's start side
// effects run. No-op unless recording.
func (m *Machine) BlockTimerFired(ctx context.Context) error {
	if m.state != StateRecording {
		return nil
	}

	_, err := m.stopBlock(ctx)

	if m.enabled && m.storageReady && m.videoReady {
		if serr := m.startBlock(); serr != nil && err == nil {
			err = serr
		}
	}
	return err
}

// StopCurrentBlock stops and persists the active block, returning the
// persisted session or nil when there was nothing to save. No-op (nil, nil)
// unless recording.
func (m *Machine) StopCurrentBlock(ctx context.Context) (*session.Session, error) {
	if m.state != StateRecording {
		return nil, nil
	}
	return m.stopBlock(ctx)
}

// tryTransition is the single source of truth for what the state should be
// given the current flags. It is idempotent: calling it when already in the
// correct state performs no side effects and emits no notification. It never
// exits recording or stopping; those leave only through the stop path.
func (m *Machine) tryTransition(ctx context.Context) error {
	if m.state == StateStopping || m.state == StateRecording {
		return nil
	}

	switch {
	case !m.enabled:
		m.setState(StateIdle)
	case !m.storageReady:
		m.setState(StateInitializing)
	case !m.videoReady:
		m.setState(StateWaitingForVideo)
	default:
		return m.startBlock()
	}
	return nil
}

// startBlock opens a new block: fresh blockStart, capture, sampler, timer.
func (m *Machine) startBlock() error {
	m.blockStart = m.hooks.Now()

	// A start failure is surfaced but does not abort the transition; the
	// collaborator owns its own recovery and the next stop persists nothing.
	err := m.hooks.StartCapture()

	m.hooks.StartSampler(m.blockStart)
	m.hooks.StartTimer()
	m.setState(StateRecording)
	return err
}

// stopBlock runs the full close sequence for the active block. Callers have
// already checked state == StateRecording.
func (m *Machine) stopBlock(ctx context.Context) (*session.Session, error) {
	m.setState(StateStopping)

	m.hooks.StopTimer()
	thumbs := m.hooks.DrainSampler()

	result, err := m.hooks.StopCapture(ctx)

	var saved *session.Session
	if err == nil && result != nil && len(result.Data) > 0 {
		saved, err = m.hooks.Persist(ctx, PersistRequest{
			BlockStart: m.blockStart,
			Duration:   result.Duration,
			Thumbnails: thumbs,
			Data:       result.Data,
		})
		if err == nil && m.hooks.Prune != nil {
			if _, perr := m.hooks.Prune(ctx); perr != nil {
				err = perr
			}
		}
	}

	m.blockStart = time.Time{}

	// Settle. A failed persist does not change where we land; the machine
	// rearms if conditions allow.
	if m.enabled && m.storageReady && m.videoReady {
		m.setState(StateWaitingForVideo)
	} else {
		m.setState(StateIdle)
	}

	return saved, err
}

// setState records a state change and notifies once. Same-state calls are
// silent.
func (m *Machine) setState(s State) {
	if m.state == s {
		return
	}
	m.state = s
	if m.hooks.OnStateChange != nil {
		m.hooks.OnStateChange(s)
	}
}
