package recorder

import (
	"sync"
	"time"
)

// BlockTimer is a single-shot timer armed once per block. It never
// reschedules itself; rearming is the machine's responsibility. A generation
// counter guards against a previous block's timer firing after it was
// stopped.
type BlockTimer struct {
	duration time.Duration
	fire     func()

	mu    sync.Mutex
	gen   uint64
	timer *time.Timer
}

// NewBlockTimer creates a timer that invokes fire once, duration after each
// Arm. fire is called from the timer goroutine; the caller routes it back to
// whatever owns the machine.
func NewBlockTimer(duration time.Duration, fire func()) *BlockTimer {
	return &BlockTimer{
		duration: duration,
		fire:     fire,
	}
}

// Arm schedules a single firing. Re-arming replaces any pending schedule.
func (t *BlockTimer) Arm() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.gen++
	gen := t.gen

	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.duration, func() {
		if t.isCurrent(gen) {
			t.fire()
		}
	})
}

// Stop cancels any pending firing. A callback already racing the stop checks
// its generation and becomes a no-op.
func (t *BlockTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.gen++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *BlockTimer) isCurrent(gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return gen == t.gen
}
