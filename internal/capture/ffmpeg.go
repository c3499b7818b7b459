package capture

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/hpungsan/reel/internal/errors"
)

// FFmpegSession records one block at a time by spawning ffmpeg against the
// configured input and collecting the encoded file when stopped.
type FFmpegSession struct {
	ffmpegPath string
	input      []string
	format     string

	mu        sync.Mutex
	cmd       *exec.Cmd
	outPath   string
	startedAt time.Time
}

// NewFFmpegSession creates a session for the given input args (everything
// before ffmpeg's output path, e.g. ["-f", "v4l2", "-i", "/dev/video0"]) and
// container format.
func NewFFmpegSession(input []string, format string) *FFmpegSession {
	return &FFmpegSession{
		ffmpegPath: "ffmpeg",
		input:      input,
		format:     format,
	}
}

// Available reports whether the ffmpeg binary can be executed.
func Available() error {
	cmd := exec.Command("ffmpeg", "-version")
	output, err := cmd.Output()
	if err != nil {
		return errors.NewCaptureUnavailable(fmt.Errorf("ffmpeg not found: %w", err))
	}
	if !strings.Contains(string(output), "ffmpeg version") {
		return errors.NewCaptureUnavailable(fmt.Errorf("ffmpeg not properly installed"))
	}
	return nil
}

// Recording reports whether a capture is in flight.
func (s *FFmpegSession) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cmd != nil
}

// Start spawns ffmpeg writing to a temp file. Fails if a capture is already
// in flight.
func (s *FFmpegSession) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cmd != nil {
		return errors.NewCaptureUnavailable(fmt.Errorf("capture already in progress"))
	}

	out := filepath.Join(os.TempDir(), fmt.Sprintf("reel-block-%d.%s", time.Now().UnixNano(), s.format))

	args := append([]string{"-y"}, s.input...)
	args = append(args, "-f", s.format, out)

	cmd := exec.Command(s.ffmpegPath, args...)
	cmd.Stderr = nil // ffmpeg writes progress to stderr

	if err := cmd.Start(); err != nil {
		return errors.NewCaptureUnavailable(fmt.Errorf("failed to start ffmpeg: %w", err))
	}

	s.cmd = cmd
	s.outPath = out
	s.startedAt = time.Now()
	return nil
}

// Stop signals ffmpeg to finish, waits for it to flush the container, and
// returns the encoded bytes with the wall-clock capture duration. Returns
// (nil, 0, nil) when no capture was in flight.
func (s *FFmpegSession) Stop(ctx context.Context) ([]byte, time.Duration, error) {
	s.mu.Lock()
	cmd := s.cmd
	out := s.outPath
	started := s.startedAt
	s.cmd = nil
	s.outPath = ""
	s.mu.Unlock()

	if cmd == nil {
		return nil, 0, nil
	}
	defer os.Remove(out)

	duration := time.Since(started)

	// ffmpeg finalizes the container on SIGINT, like a terminal q.
	if err := cmd.Process.Signal(os.Interrupt); err != nil {
		cmd.Process.Kill()
		cmd.Wait()
		return nil, duration, errors.NewCaptureUnavailable(fmt.Errorf("failed to signal ffmpeg: %w", err))
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		cmd.Process.Kill()
		<-done
		return nil, duration, errors.NewCaptureUnavailable(fmt.Errorf("capture stop cancelled: %w", ctx.Err()))
	case <-done:
		// A non-zero exit after SIGINT is normal; the file decides.
	}

	data, err := os.ReadFile(out)
	if err != nil {
		return nil, duration, errors.NewCaptureUnavailable(fmt.Errorf("failed to read capture output: %w", err))
	}
	return data, duration, nil
}

// FrameGrabber captures single preview frames from the same input the
// session records from.
type FrameGrabber struct {
	ffmpegPath string
	input      []string
}

// NewFrameGrabber creates a grabber for the given ffmpeg input args.
func NewFrameGrabber(input []string) *FrameGrabber {
	return &FrameGrabber{
		ffmpegPath: "ffmpeg",
		input:      input,
	}
}

// CaptureNow grabs one JPEG frame from the input. Failures are expected
// while the device warms up; callers skip the sample and try again on the
// next tick.
func (g *FrameGrabber) CaptureNow() ([]byte, error) {
	out := filepath.Join(os.TempDir(), fmt.Sprintf("reel-frame-%d.jpg", time.Now().UnixNano()))
	defer os.Remove(out)

	args := append([]string{"-y"}, g.input...)
	args = append(args, "-vframes", "1", "-q:v", "2", out)

	cmd := exec.Command(g.ffmpegPath, args...)
	if err := cmd.Run(); err != nil {
		return nil, errors.NewCaptureUnavailable(fmt.Errorf("frame grab failed: %w", err))
	}

	data, err := os.ReadFile(out)
	if err != nil {
		return nil, errors.NewCaptureUnavailable(fmt.Errorf("failed to read frame: %w", err))
	}
	return data, nil
}
