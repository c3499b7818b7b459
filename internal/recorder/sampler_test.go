package recorder

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/hpungsan/reel/internal/session"
)

func countingCapture(count *atomic.Int64) CaptureFunc {
	return func(offset time.Duration) (session.Thumbnail, bool) {
		count.Add(1)
		return session.Thumbnail{
			OffsetSeconds: offset.Seconds(),
			Image:         []byte{byte(count.Load())},
		}, true
	}
}

func TestSampler_ImmediateSample(t *testing.T) {
	var count atomic.Int64
	// A long interval so only the immediate sample lands.
	s := NewSampler(time.Hour, countingCapture(&count), nil)

	s.Start(time.Now())
	thumbs := s.Drain()

	if len(thumbs) != 1 {
		t.Fatalf("thumbs = %d, want the one immediate sample", len(thumbs))
	}
	if thumbs[0].OffsetSeconds != 0 {
		t.Errorf("OffsetSeconds = %v, want 0", thumbs[0].OffsetSeconds)
	}
}

func TestSampler_PeriodicSamples(t *testing.T) {
	var count atomic.Int64
	s := NewSampler(10*time.Millisecond, countingCapture(&count), nil)

	s.Start(time.Now())
	time.Sleep(55 * time.Millisecond)
	thumbs := s.Drain()

	// Immediate sample plus several ticks. Scheduling jitter makes the exact
	// count unreliable; two is the floor.
	if len(thumbs) < 2 {
		t.Fatalf("thumbs = %d, want at least 2", len(thumbs))
	}
	if thumbs[0].OffsetSeconds != 0 {
		t.Errorf("first OffsetSeconds = %v, want 0", thumbs[0].OffsetSeconds)
	}
	for i := 1; i < len(thumbs); i++ {
		if thumbs[i].OffsetSeconds <= 0 {
			t.Errorf("thumbs[%d].OffsetSeconds = %v, want > 0", i, thumbs[i].OffsetSeconds)
		}
	}
}

func TestSampler_SkipsFailedCaptures(t *testing.T) {
	capture := func(offset time.Duration) (session.Thumbnail, bool) {
		return session.Thumbnail{}, false
	}
	s := NewSampler(5*time.Millisecond, capture, nil)

	s.Start(time.Now())
	time.Sleep(20 * time.Millisecond)
	thumbs := s.Drain()

	if len(thumbs) != 0 {
		t.Errorf("thumbs = %d, want 0 when every capture fails", len(thumbs))
	}
}

func TestSampler_DrainIsDestructive(t *testing.T) {
	var count atomic.Int64
	s := NewSampler(time.Hour, countingCapture(&count), nil)

	s.Start(time.Now())
	first := s.Drain()
	second := s.Drain()

	if len(first) != 1 {
		t.Fatalf("first drain = %d, want 1", len(first))
	}
	if len(second) != 0 {
		t.Errorf("second drain = %d, want 0", len(second))
	}
}

func TestSampler_DrainWhenNeverStarted(t *testing.T) {
	var count atomic.Int64
	s := NewSampler(time.Hour, countingCapture(&count), nil)

	if thumbs := s.Drain(); len(thumbs) != 0 {
		t.Errorf("thumbs = %d, want 0", len(thumbs))
	}
}

func TestSampler_StartWhileRunningIsNoop(t *testing.T) {
	var count atomic.Int64
	s := NewSampler(time.Hour, countingCapture(&count), nil)

	start := time.Now()
	s.Start(start)
	s.Start(start)
	thumbs := s.Drain()

	if len(thumbs) != 1 {
		t.Errorf("thumbs = %d, want 1 (second Start must not resample)", len(thumbs))
	}
}

func TestSampler_RestartAfterDrain(t *testing.T) {
	var count atomic.Int64
	s := NewSampler(time.Hour, countingCapture(&count), nil)

	s.Start(time.Now())
	s.Drain()

	s.Start(time.Now())
	thumbs := s.Drain()

	if len(thumbs) != 1 {
		t.Errorf("thumbs after restart = %d, want 1", len(thumbs))
	}
}

func TestSampler_NoSamplesAfterDrain(t *testing.T) {
	var count atomic.Int64
	s := NewSampler(time.Millisecond, countingCapture(&count), nil)

	s.Start(time.Now())
	time.Sleep(10 * time.Millisecond)
	s.Drain()

	settled := count.Load()
	time.Sleep(15 * time.Millisecond)

	// A tick that was mid-flight at Drain may still call capture once, but
	// the loop must have stopped: no continued accumulation.
	if after := count.Load(); after > settled+1 {
		t.Errorf("captures after drain: %d -> %d", settled, after)
	}
	if thumbs := s.Drain(); len(thumbs) != 0 {
		t.Errorf("straggler leaked into next drain: %d thumbs", len(thumbs))
	}
}
