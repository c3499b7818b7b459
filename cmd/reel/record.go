package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/reel/internal/capture"
	"github.com/hpungsan/reel/internal/config"
	"github.com/hpungsan/reel/internal/ops"
	"github.com/hpungsan/reel/internal/recorder"
	"github.com/hpungsan/reel/internal/session"
)

// availabilityProbeInterval is how often the capture source is re-probed
// while the recorder runs.
const availabilityProbeInterval = 5 * time.Second

// recorderEvent is one input delivered to the recorder loop. The machine is
// not safe for concurrent use, so timer fires, probe results and shutdown all
// funnel through a single channel.
type recorderEvent int

const (
	evTimerFired recorderEvent = iota
	evVideoReady
	evVideoNotReady
)

// recordCmd creates the record command.
func recordCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "record",
		Usage: "Run the rolling block recorder until interrupted",
		Action: func(c *cli.Context) error {
			if err := runRecorder(c.Context, db, cfg); err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// runRecorder wires the state machine to ffmpeg and the session store, then
// drives it from a single event loop until the context ends or a signal
// arrives.
func runRecorder(ctx context.Context, db *sql.DB, cfg *config.Config) error {
	events := make(chan recorderEvent, 16)

	ffmpeg := capture.NewFFmpegSession(cfg.CaptureInput, cfg.CaptureFormat)
	grabber := capture.NewFrameGrabber(cfg.CaptureInput)

	sampler := recorder.NewSampler(
		time.Duration(cfg.ThumbnailIntervalSeconds)*time.Second,
		func(offset time.Duration) (session.Thumbnail, bool) {
			image, err := grabber.CaptureNow()
			if err != nil {
				return session.Thumbnail{}, false
			}
			return session.Thumbnail{OffsetSeconds: offset.Seconds(), Image: image}, true
		},
		nil,
	)

	timer := recorder.NewBlockTimer(
		time.Duration(cfg.BlockSeconds)*time.Second,
		func() {
			select {
			case events <- evTimerFired:
			default:
			}
		},
	)

	machine := recorder.NewMachine(recorder.Hooks{
		StartCapture: ffmpeg.Start,
		StopCapture: func(ctx context.Context) (*recorder.CaptureResult, error) {
			data, duration, err := ffmpeg.Stop(ctx)
			if err != nil {
				return nil, err
			}
			return &recorder.CaptureResult{Data: data, Duration: duration}, nil
		},
		StartSampler: sampler.Start,
		DrainSampler: sampler.Drain,
		StartTimer:   timer.Arm,
		StopTimer:    timer.Stop,
		Persist: func(ctx context.Context, req recorder.PersistRequest) (*session.Session, error) {
			out, err := ops.Create(ctx, db, ops.CreateInput{
				CreatedAt:       req.BlockStart.Unix(),
				DurationSeconds: req.Duration.Seconds(),
				Thumbnails:      req.Thumbnails,
				Payload:         req.Data,
			})
			if err != nil {
				return nil, err
			}
			return out.Session, nil
		},
		Prune: func(ctx context.Context) (int, error) {
			out, err := ops.Prune(ctx, db, ops.PruneInput{
				BudgetSeconds: float64(cfg.RetentionBudgetSeconds),
			})
			if err != nil {
				return 0, err
			}
			return out.Pruned, nil
		},
		OnStateChange: func(s recorder.State) {
			fmt.Fprintf(os.Stderr, "recorder: %s\n", s)
		},
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	probe := time.NewTicker(availabilityProbeInterval)
	defer probe.Stop()

	if err := machine.Enable(ctx); err != nil {
		return err
	}
	// The store was opened before the command ran; report it ready.
	if err := machine.StorageReady(ctx); err != nil {
		return err
	}
	sendAvailability(events, true)

	for {
		select {
		case <-ctx.Done():
			_, err := stopRecorder(machine)
			return err
		case <-sigCh:
			_, err := stopRecorder(machine)
			return err
		case <-probe.C:
			sendAvailability(events, false)
		case ev := <-events:
			if err := dispatch(ctx, machine, ev); err != nil {
				fmt.Fprintf(os.Stderr, "recorder: %v\n", err)
			}
		}
	}
}

// sendAvailability probes the capture source and queues the matching event.
// The queue is bounded; a full queue drops the probe result, and the next
// probe repeats it.
func sendAvailability(events chan<- recorderEvent, blocking bool) {
	ev := evVideoNotReady
	if capture.Available() == nil {
		ev = evVideoReady
	}
	if blocking {
		events <- ev
		return
	}
	select {
	case events <- ev:
	default:
	}
}

// dispatch applies one event to the machine.
func dispatch(ctx context.Context, m *recorder.Machine, ev recorderEvent) error {
	switch ev {
	case evTimerFired:
		return m.BlockTimerFired(ctx)
	case evVideoReady:
		return m.VideoReady(ctx)
	case evVideoNotReady:
		return m.VideoNotReady(ctx)
	}
	return nil
}

// stopRecorder disables the machine, persisting any block in flight. The
// stop path is given its own deadline so shutdown cannot hang on a wedged
// capture process.
func stopRecorder(m *recorder.Machine) (*session.Session, error) {
	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if m.State() != recorder.StateRecording {
		return nil, m.Disable(stopCtx)
	}

	saved, err := m.StopCurrentBlock(stopCtx)
	if derr := m.Disable(stopCtx); err == nil {
		err = derr
	}
	return saved, err
}
