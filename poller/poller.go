// Package poller waits for a remote run to stop making progress when the
// transport cannot stream. It polls run status at a fixed interval until a
// terminal status is reached, then hands the run back so the step history
// can be replayed. The poller imposes no attempt bound of its own; callers
// bound the wait through the context deadline or cancellation.
package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/agentwire/threadbridge/assistants"
	"github.com/agentwire/threadbridge/telemetry"
)

// DefaultInterval is the polling cadence used when none is configured.
const DefaultInterval = time.Second

// Poller polls run status through an assistants.Client.
type Poller struct {
	client   assistants.Client
	interval time.Duration
	log      telemetry.Logger
}

// New constructs a poller. A non-positive interval falls back to
// DefaultInterval; a nil logger falls back to the no-op logger.
func New(client assistants.Client, interval time.Duration, lg telemetry.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if lg == nil {
		lg = telemetry.Noop()
	}
	return &Poller{client: client, interval: interval, log: lg}
}

// Wait blocks until the run reaches a terminal status and returns the run as
// last retrieved. Failed, cancelled and expired runs are returned like
// successful ones: the caller replays whatever partial history exists. The
// wait ends early with ctx.Err() when the context is cancelled.
func (p *Poller) Wait(ctx context.Context, threadID, runID string) (assistants.Run, error) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		run, err := p.client.RetrieveRun(ctx, threadID, runID)
		if err != nil {
			return assistants.Run{}, fmt.Errorf("retrieve run %s: %w", runID, err)
		}
		if run.Status.Terminal() {
			p.log.Debug(ctx, "run reached terminal status", "run_id", runID, "status", string(run.Status))
			return run, nil
		}
		select {
		case <-ctx.Done():
			return assistants.Run{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Steps fetches the run's recorded steps in ascending creation order.
func (p *Poller) Steps(ctx context.Context, threadID, runID string) ([]assistants.RunStep, error) {
	steps, err := p.client.ListRunSteps(ctx, threadID, runID)
	if err != nil {
		return nil, fmt.Errorf("list run steps %s: %w", runID, err)
	}
	return steps, nil
}
