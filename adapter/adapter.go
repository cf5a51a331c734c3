// Package adapter bridges a generic chat/tool-calling session model onto a
// remote thread + run conversational API. Each Process call handles exactly
// one turn of one conversation: it decides whether the turn is a fresh user
// utterance or the submission of tool outputs for an in-flight run, drives
// the corresponding remote operations, and projects the run's progress into
// the caller's event sink as a single ordered lifecycle stream — the same
// stream shape whether the remote transport streamed live events or had to
// be polled and replayed.
//
// The only conversation state the adapter keeps between turns is the pair of
// opaque identifiers (thread id, run id) round-tripped through the caller's
// metadata bag; everything else lives server-side.
package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/agentwire/threadbridge/assistants"
	"github.com/agentwire/threadbridge/chat"
	"github.com/agentwire/threadbridge/events"
	"github.com/agentwire/threadbridge/poller"
	"github.com/agentwire/threadbridge/projector"
	"github.com/agentwire/threadbridge/session"
	"github.com/agentwire/threadbridge/telemetry"
)

// DefaultMetadataKey is the namespace key the adapter claims inside the
// caller's metadata bag when Options.MetadataKey is left empty.
const DefaultMetadataKey = "assistantAPI"

type (
	// Options configures an Adapter. Client and AssistantID are required;
	// everything else has a working default.
	Options struct {
		// AssistantID identifies the remote assistant runs execute against.
		AssistantID string

		// Client drives the remote API. When the client also implements
		// assistants.StreamClient the adapter prefers the live streaming
		// transport and falls back to polling on
		// assistants.ErrStreamingUnsupported.
		Client assistants.Client

		// CodeInterpreterEnabled appends the built-in code-interpreter tool
		// to every run. Defaults to true; set with Bool to disable.
		CodeInterpreterEnabled *bool

		// FileSearchEnabled appends the built-in file-search tool to every
		// run. Defaults to true; set with Bool to disable.
		FileSearchEnabled *bool

		// DisableParallelToolCalls forces the assistant to request tool
		// calls sequentially so state changes introduced by one call are
		// visible to the next.
		DisableParallelToolCalls bool

		// KeepSystemRole keeps the system role on converted system messages
		// instead of rewriting them to the developer role.
		KeepSystemRole bool

		// PollInterval is the polled-transport status cadence. Defaults to
		// poller.DefaultInterval.
		PollInterval time.Duration

		// MetadataKey overrides DefaultMetadataKey.
		MetadataKey string

		// Logger receives structured debug logging. Defaults to the no-op
		// logger.
		Logger telemetry.Logger
	}

	// Adapter processes conversation turns. Construct with New. An Adapter
	// holds no per-conversation state and may be shared across goroutines;
	// each Process invocation is logically single-threaded.
	Adapter struct {
		client          assistants.Client
		assistantID     string
		codeInterpreter bool
		fileSearch      bool
		disableParallel bool
		keepSystemRole  bool
		metadataKey     string
		poll            *poller.Poller
		proj            *projector.Projector
		log             telemetry.Logger
	}

	// Request is one conversation turn. The adapter reads Messages, Actions
	// and Metadata without mutating them.
	Request struct {
		// Messages is the ordered conversation so far. Must be non-empty.
		Messages []chat.Message

		// Actions declares the caller's actions for this turn.
		Actions []chat.ActionDeclaration

		// Sink receives the turn's lifecycle-event stream.
		Sink events.Sink

		// Metadata is the caller's extensible metadata bag. The adapter
		// reads its session state from it and returns an updated copy;
		// sibling keys are preserved.
		Metadata map[string]any

		// RunID optionally names the in-flight run for a tool-output turn.
		// When empty the run id recorded in Metadata is used.
		RunID string

		// MaxOutputTokens caps the run's output when positive. Zero means
		// the cap is not forwarded.
		MaxOutputTokens int
	}

	// Response reports the turn's outcome. Metadata is the updated bag to
	// round-trip into the next Request.
	Response struct {
		ThreadID string
		RunID    string
		Metadata map[string]any
	}
)

// Bool returns a pointer to v for use in Options.
func Bool(v bool) *bool { return &v }

// New validates opts and builds an Adapter.
func New(opts Options) (*Adapter, error) {
	if opts.Client == nil {
		return nil, errors.New("assistants client is required")
	}
	if opts.AssistantID == "" {
		return nil, errors.New("assistant id is required")
	}
	lg := opts.Logger
	if lg == nil {
		lg = telemetry.Noop()
	}
	key := opts.MetadataKey
	if key == "" {
		key = DefaultMetadataKey
	}
	enabled := func(v *bool) bool { return v == nil || *v }
	return &Adapter{
		client:          opts.Client,
		assistantID:     opts.AssistantID,
		codeInterpreter: enabled(opts.CodeInterpreterEnabled),
		fileSearch:      enabled(opts.FileSearchEnabled),
		disableParallel: opts.DisableParallelToolCalls,
		keepSystemRole:  opts.KeepSystemRole,
		metadataKey:     key,
		poll:            poller.New(opts.Client, opts.PollInterval, lg),
		proj:            projector.New(lg),
		log:             lg,
	}, nil
}

// Process handles one turn. Caller-input errors (see errors.go) are returned
// before any remote call with side effects; remote failures propagate
// wrapped but unretried. On success the returned Response carries the thread
// id, the run id the next turn resumes against, and the updated metadata bag.
func (a *Adapter) Process(ctx context.Context, req Request) (Response, error) {
	if req.Sink == nil {
		return Response{}, errors.New("event sink is required")
	}
	st := session.Decode(req.Metadata, a.metadataKey)
	runID := req.RunID
	if runID == "" {
		runID = st.RunID
	}
	kind, err := classifyTurn(req.Messages, runID)
	if err != nil {
		return Response{}, err
	}

	var nextRunID string
	switch kind {
	case turnToolOutput:
		a.log.Debug(ctx, "processing tool output turn", "thread_id", st.ThreadID, "run_id", runID)
		nextRunID, err = a.submitToolOutputs(ctx, st.ThreadID, runID, req)
	case turnNewUtterance:
		a.log.Debug(ctx, "processing user turn", "thread_id", st.ThreadID)
		nextRunID, err = a.submitUserMessage(ctx, &st, req)
	}
	if err != nil {
		return Response{}, err
	}
	st.RunID = nextRunID
	return Response{
		ThreadID: st.ThreadID,
		RunID:    nextRunID,
		Metadata: session.Encode(req.Metadata, a.metadataKey, st),
	}, nil
}
