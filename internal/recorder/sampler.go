package recorder

import (
	"sync"
	"time"

	"github.com/hpungsan/reel/internal/session"
)

// CaptureFunc grabs one preview frame tagged with the given block-relative
// offset. ok=false means the capture surface was not readable; the sample is
// skipped, not retried within the same tick.
type CaptureFunc func(offset time.Duration) (session.Thumbnail, bool)

// Sampler captures preview thumbnails on a fixed interval for the duration
// of a block. The machine starts at most one cycle at a time and always
// drains before starting the next.
type Sampler struct {
	interval time.Duration
	capture  CaptureFunc
	now      func() time.Time

	mu      sync.Mutex
	thumbs  []session.Thumbnail
	stop    chan struct{}
	running bool
}

// NewSampler creates a sampler. now defaults to time.Now when nil.
func NewSampler(interval time.Duration, capture CaptureFunc, now func() time.Time) *Sampler {
	if now == nil {
		now = time.Now
	}
	return &Sampler{
		interval: interval,
		capture:  capture,
		now:      now,
	}
}

// Start captures one sample immediately at offset 0, then samples on the
// configured interval until drained. Starting an already-running sampler is
// a no-op.
func (s *Sampler) Start(blockStart time.Time) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	stop := s.stop
	s.mu.Unlock()

	s.sample(0)

	go s.loop(blockStart, stop)
}

// Drain stops sampling, returns the accumulated thumbnails in capture order
// and resets the buffer. Destructive: each block's samples are returned
// exactly once.
func (s *Sampler) Drain() []session.Thumbnail {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		close(s.stop)
		s.running = false
		s.stop = nil
	}

	thumbs := s.thumbs
	s.thumbs = nil
	return thumbs
}

// loop ticks until stopped. Each tick runs to completion before the next is
// considered; time.Ticker drops ticks that fire while one is in progress.
func (s *Sampler) loop(blockStart time.Time, stop chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.sample(s.now().Sub(blockStart))
		}
	}
}

// sample captures one frame and appends it, or skips when the surface is
// not readable. A tick that completes after Drain is discarded so a
// straggler never leaks into the next block's sequence.
func (s *Sampler) sample(offset time.Duration) {
	th, ok := s.capture(offset)
	if !ok {
		return
	}

	s.mu.Lock()
	if s.running {
		s.thumbs = append(s.thumbs, th)
	}
	s.mu.Unlock()
}
