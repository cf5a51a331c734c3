package assistants

import (
	"context"
	"errors"
)

// ErrStreamingUnsupported is reported by clients whose transport cannot
// deliver live run event streams. The bridge falls back to the polled
// transport when it sees this error.
var ErrStreamingUnsupported = errors.New("assistants: streaming not supported by this client")

type (
	// Client is the polled half of the remote API: every operation the
	// bridge issues outside of live streaming. Implementations wrap a
	// concrete SDK or HTTP transport; the bridge never retries or masks
	// their errors.
	Client interface {
		// CreateThread creates a new conversation thread.
		CreateThread(ctx context.Context) (Thread, error)

		// CreateMessage appends one message to the thread.
		CreateMessage(ctx context.Context, threadID string, msg MessageRequest) (Message, error)

		// CreateRun starts a run of the assistant against the thread.
		CreateRun(ctx context.Context, threadID string, req RunRequest) (Run, error)

		// RetrieveRun fetches the run's current status and, when the run is
		// paused awaiting outputs, its outstanding tool calls.
		RetrieveRun(ctx context.Context, threadID, runID string) (Run, error)

		// SubmitToolOutputs resumes a paused run with the given outputs.
		SubmitToolOutputs(ctx context.Context, threadID, runID string, req ToolOutputsRequest) (Run, error)

		// ListRunSteps returns the run's recorded steps in ascending
		// creation order.
		ListRunSteps(ctx context.Context, threadID, runID string) ([]RunStep, error)

		// RetrieveMessage fetches a thread message with its content parts.
		RetrieveMessage(ctx context.Context, threadID, messageID string) (Message, error)
	}

	// StreamClient is the live half of the remote API. Clients that can
	// stream run events implement it in addition to Client; others either
	// omit it or return ErrStreamingUnsupported from both methods.
	StreamClient interface {
		// StreamRun starts a run and returns its live event stream.
		StreamRun(ctx context.Context, threadID string, req RunRequest) (EventStream, error)

		// StreamToolOutputs resumes a paused run with the given outputs and
		// returns the continuation's live event stream.
		StreamToolOutputs(ctx context.Context, threadID, runID string, req ToolOutputsRequest) (EventStream, error)
	}

	// EventStream is a pull-based live event sequence. Recv returns io.EOF
	// once the remote stream is exhausted. Close releases the underlying
	// transport; it is safe to call after EOF.
	EventStream interface {
		Recv() (StreamEvent, error)
		Close() error
	}
)

// StreamEventKind tags live stream events with the remote protocol's event
// names. Kinds not listed here may appear on the wire; consumers ignore them.
type StreamEventKind string

const (
	// StreamEventRunCreated announces the run backing the stream.
	StreamEventRunCreated StreamEventKind = "thread.run.created"
	// StreamEventMessageCreated opens an assistant message.
	StreamEventMessageCreated StreamEventKind = "thread.message.created"
	// StreamEventMessageDelta carries incremental message content.
	StreamEventMessageDelta StreamEventKind = "thread.message.delta"
	// StreamEventMessageCompleted closes an assistant message.
	StreamEventMessageCompleted StreamEventKind = "thread.message.completed"
	// StreamEventRunStepDelta carries incremental tool-call progress.
	StreamEventRunStepDelta StreamEventKind = "thread.run.step.delta"
)

type (
	// StreamEvent is one element of a live run event stream. Kind selects
	// which of the optional fields carry data; unrecognized kinds arrive
	// with only Kind set.
	StreamEvent struct {
		Kind StreamEventKind

		// RunID is set on run-level events (StreamEventRunCreated).
		RunID string

		// MessageID is set on message events.
		MessageID string

		// ContentDelta holds the incremental content parts of a message
		// delta. Non-text parts are preserved so consumers can decide to
		// skip them.
		ContentDelta []ContentPart

		// StepID is set on step delta events and identifies the run step
		// the fragment belongs to.
		StepID string

		// ToolCallDelta is set on step delta events carrying a function
		// tool-call fragment.
		ToolCallDelta *ToolCallDelta
	}

	// ToolCallDelta is a fragment of a streamed function tool call. A
	// fragment with both ID and Name set announces a new tool call; a
	// fragment with only Arguments set extends the current call's argument
	// text.
	ToolCallDelta struct {
		ID        string
		Name      string
		Arguments string
	}
)
