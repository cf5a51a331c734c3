// Package projector normalizes remote run progress into the bridge's
// lifecycle-event stream. It accepts either of the remote API's two
// granularities — a live per-event stream or a polled, fully materialized
// step history — and produces the same ordered discipline from both: every
// opened message and action is closed exactly once, boundaries are
// monotonic, and completion is signalled to the emitter exactly once.
//
// The open/close bookkeeping is carried as an explicit state value rather
// than ambient variables so the pairing invariant is enforced in one place.
// The remote stream never closes actions explicitly; closure is inferred
// from the next boundary event or from stream exhaustion.
package projector

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/agentwire/threadbridge/assistants"
	"github.com/agentwire/threadbridge/events"
	"github.com/agentwire/threadbridge/telemetry"
)

// state tracks the currently open message and action. An empty identifier
// means nothing of that kind is open. A message and an action may briefly
// overlap at a handoff boundary; two open messages or two open actions never
// do — opening a new one closes the previous first.
type state struct {
	messageID string
	actionID  string
}

// Projector drives lifecycle-event emission for one turn. Zero value is not
// usable; construct with New.
type Projector struct {
	log telemetry.Logger
}

// New returns a projector logging through lg. Pass telemetry.Noop() to
// disable logging.
func New(lg telemetry.Logger) *Projector {
	if lg == nil {
		lg = telemetry.Noop()
	}
	return &Projector{log: lg}
}

// Stream consumes a live run event stream and emits lifecycle events until
// the stream is exhausted. It returns the run identifier announced on the
// stream (empty if the run-created event never arrived). Unrecognized event
// kinds and non-text content parts are skipped. On clean exhaustion any open
// action is closed and completion is signalled exactly once; on a transport
// error the error propagates as-is and no completion is signalled.
func (p *Projector) Stream(ctx context.Context, es assistants.EventStream, em events.Emitter) (string, error) {
	defer func() {
		_ = es.Close()
	}()

	var (
		st    state
		runID string
	)
	for {
		ev, err := es.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return runID, err
		}
		switch ev.Kind {
		case assistants.StreamEventRunCreated:
			runID = ev.RunID
		case assistants.StreamEventMessageCreated:
			if st.actionID != "" {
				em.ActionEnd(st.actionID)
				st.actionID = ""
			}
			st.messageID = ev.MessageID
			em.MessageStart(st.messageID)
		case assistants.StreamEventMessageDelta:
			if st.messageID == "" {
				break
			}
			for _, part := range ev.ContentDelta {
				if part.Type != "text" {
					continue
				}
				em.MessageContent(st.messageID, part.Text)
			}
		case assistants.StreamEventMessageCompleted:
			if st.messageID == "" {
				break
			}
			em.MessageEnd(st.messageID)
			st.messageID = ""
		case assistants.StreamEventRunStepDelta:
			p.applyStepDelta(&st, ev, em)
		default:
			p.log.Debug(ctx, "ignoring stream event", "kind", string(ev.Kind))
		}
	}
	if st.actionID != "" {
		em.ActionEnd(st.actionID)
		st.actionID = ""
	}
	em.Complete()
	return runID, nil
}

// applyStepDelta handles a run step fragment. A fragment carrying both a
// tool-call id and a function name opens a new action (closing the previous
// one); a fragment carrying only argument text extends the open action.
func (p *Projector) applyStepDelta(st *state, ev assistants.StreamEvent, em events.Emitter) {
	delta := ev.ToolCallDelta
	if delta == nil {
		return
	}
	if delta.ID != "" && delta.Name != "" {
		if st.actionID != "" {
			em.ActionEnd(st.actionID)
		}
		st.actionID = delta.ID
		em.ActionStart(delta.ID, ev.StepID, delta.Name)
		return
	}
	if delta.Arguments != "" && st.actionID != "" {
		em.ActionArgs(st.actionID, delta.Arguments)
	}
}

// Replay walks a polled step history in the given (ascending) order and
// emits lifecycle events for each step. Message-creation steps are expanded
// by fetching the referenced message and emitting one content event per text
// part between the start/end pair; tool-call steps emit one combined
// action-execution event per function call, plus an action-result event when
// the history already records the call's output. Steps are processed to
// completion in order, so no interleaving bookkeeping is needed. Completion
// is signalled exactly once after the last step.
func (p *Projector) Replay(ctx context.Context, client assistants.Client, threadID string, steps []assistants.RunStep, em events.Emitter) error {
	for _, step := range steps {
		switch step.Type {
		case assistants.StepTypeMessageCreation:
			msg, err := client.RetrieveMessage(ctx, threadID, step.MessageID)
			if err != nil {
				return fmt.Errorf("retrieve message %s: %w", step.MessageID, err)
			}
			em.MessageStart(msg.ID)
			for _, part := range msg.Content {
				if part.Type != "text" {
					continue
				}
				em.MessageContent(msg.ID, part.Text)
			}
			em.MessageEnd(msg.ID)
		case assistants.StepTypeToolCalls:
			for _, call := range step.ToolCalls {
				if call.Type != assistants.ToolTypeFunction {
					continue
				}
				em.ActionExecution(call.ID, call.Function.Name, []byte(call.Function.Arguments))
				if call.Output != nil {
					em.ActionResult(call.ID, call.Function.Name, *call.Output)
				}
			}
		default:
			p.log.Debug(ctx, "ignoring run step", "step_id", step.ID, "type", string(step.Type))
		}
	}
	em.Complete()
	return nil
}
