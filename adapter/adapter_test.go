package adapter

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentwire/threadbridge/assistants"
	"github.com/agentwire/threadbridge/chat"
	"github.com/agentwire/threadbridge/events"
	"github.com/agentwire/threadbridge/events/inmem"
	"github.com/agentwire/threadbridge/session"
)

// fakeBackend is a scripted assistants.Client. Run retrievals pop from the
// runs queue (the last entry repeats) so one fake serves both the
// requires-action lookup and the status poll loop.
type fakeBackend struct {
	threadID    string
	threadsMade int
	posted      []assistants.MessageRequest
	runReq      *assistants.RunRequest
	runID       string
	runs        []assistants.Run
	submitted   []assistants.ToolOutputsRequest
	steps       []assistants.RunStep
	messages    map[string]assistants.Message
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		threadID: "thread_" + uuid.NewString(),
		runID:    "run_" + uuid.NewString(),
		messages: map[string]assistants.Message{},
	}
}

func (b *fakeBackend) CreateThread(context.Context) (assistants.Thread, error) {
	b.threadsMade++
	return assistants.Thread{ID: b.threadID}, nil
}

func (b *fakeBackend) CreateMessage(_ context.Context, _ string, msg assistants.MessageRequest) (assistants.Message, error) {
	b.posted = append(b.posted, msg)
	return assistants.Message{ID: "msg_posted", Role: assistants.Role(msg.Role)}, nil
}

func (b *fakeBackend) CreateRun(_ context.Context, threadID string, req assistants.RunRequest) (assistants.Run, error) {
	b.runReq = &req
	return assistants.Run{ID: b.runID, ThreadID: threadID, Status: assistants.StatusQueued}, nil
}

func (b *fakeBackend) RetrieveRun(_ context.Context, threadID, runID string) (assistants.Run, error) {
	run := b.runs[0]
	if len(b.runs) > 1 {
		b.runs = b.runs[1:]
	}
	run.ID = runID
	run.ThreadID = threadID
	return run, nil
}

func (b *fakeBackend) SubmitToolOutputs(_ context.Context, threadID, runID string, req assistants.ToolOutputsRequest) (assistants.Run, error) {
	b.submitted = append(b.submitted, req)
	return assistants.Run{ID: runID, ThreadID: threadID, Status: assistants.StatusQueued}, nil
}

func (b *fakeBackend) ListRunSteps(context.Context, string, string) ([]assistants.RunStep, error) {
	return b.steps, nil
}

func (b *fakeBackend) RetrieveMessage(_ context.Context, _, messageID string) (assistants.Message, error) {
	return b.messages[messageID], nil
}

func newTestAdapter(t *testing.T, opts Options) *Adapter {
	t.Helper()
	opts.AssistantID = "asst_1"
	opts.PollInterval = time.Millisecond
	a, err := New(opts)
	require.NoError(t, err)
	return a
}

func TestProcessNewUtterance(t *testing.T) {
	backend := newFakeBackend()
	backend.runs = []assistants.Run{{Status: assistants.StatusCompleted}}
	backend.steps = []assistants.RunStep{
		{ID: "step_1", Type: assistants.StepTypeMessageCreation, MessageID: "msg_9"},
	}
	backend.messages["msg_9"] = assistants.Message{
		ID:      "msg_9",
		Role:    assistants.RoleAssistant,
		Content: []assistants.ContentPart{{Type: "text", Text: "Hello!"}},
	}
	a := newTestAdapter(t, Options{
		Client:                 backend,
		CodeInterpreterEnabled: Bool(false),
		FileSearchEnabled:      Bool(false),
	})
	sink := inmem.New()

	resp, err := a.Process(context.Background(), Request{
		Messages: []chat.Message{
			chat.Text(chat.RoleSystem, "be terse"),
			chat.Text(chat.RoleUser, "hi"),
		},
		Sink: sink,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, backend.threadsMade)
	require.Len(t, backend.posted, 1)
	assert.Equal(t, assistants.RoleUser, backend.posted[0].Role)
	assert.Equal(t, "hi", backend.posted[0].Content)

	require.NotNil(t, backend.runReq)
	assert.Equal(t, "asst_1", backend.runReq.AssistantID)
	assert.Equal(t, "be terse", backend.runReq.Instructions)
	assert.Nil(t, backend.runReq.Tools)
	assert.Zero(t, backend.runReq.MaxCompletionTokens)
	assert.Nil(t, backend.runReq.ParallelToolCalls)

	assert.Equal(t, backend.threadID, resp.ThreadID)
	assert.Equal(t, backend.runID, resp.RunID)
	st := session.Decode(resp.Metadata, DefaultMetadataKey)
	assert.Equal(t, session.State{ThreadID: backend.threadID, RunID: backend.runID}, st)

	assert.Equal(t, []events.EventType{
		events.EventMessageStart,
		events.EventMessageContent,
		events.EventMessageEnd,
	}, sink.Types())
	assert.Equal(t, 1, sink.Completions())
}

func TestProcessDefaultsAndCaps(t *testing.T) {
	backend := newFakeBackend()
	backend.runs = []assistants.Run{{Status: assistants.StatusCompleted}}
	a := newTestAdapter(t, Options{Client: backend, DisableParallelToolCalls: true})

	_, err := a.Process(context.Background(), Request{
		Messages: []chat.Message{
			chat.Text(chat.RoleSystem, ""),
			chat.Text(chat.RoleUser, "hi"),
		},
		Sink:            inmem.New(),
		MaxOutputTokens: 512,
	})
	require.NoError(t, err)

	// Built-in tools default to enabled.
	require.NotNil(t, backend.runReq)
	require.Len(t, backend.runReq.Tools, 2)
	assert.Equal(t, assistants.ToolTypeCodeInterpreter, backend.runReq.Tools[0].Type)
	assert.Equal(t, assistants.ToolTypeFileSearch, backend.runReq.Tools[1].Type)
	assert.Equal(t, 512, backend.runReq.MaxCompletionTokens)
	require.NotNil(t, backend.runReq.ParallelToolCalls)
	assert.False(t, *backend.runReq.ParallelToolCalls)
}

func TestProcessReusesThread(t *testing.T) {
	backend := newFakeBackend()
	backend.runs = []assistants.Run{{Status: assistants.StatusCompleted}}
	a := newTestAdapter(t, Options{Client: backend})

	resp, err := a.Process(context.Background(), Request{
		Messages: []chat.Message{
			chat.Text(chat.RoleSystem, "be terse"),
			chat.Text(chat.RoleUser, "again"),
		},
		Sink:     inmem.New(),
		Metadata: session.Encode(nil, DefaultMetadataKey, session.State{ThreadID: "thread_prior"}),
	})
	require.NoError(t, err)
	assert.Zero(t, backend.threadsMade)
	assert.Equal(t, "thread_prior", resp.ThreadID)
}

func TestProcessToolOutputTurn(t *testing.T) {
	backend := newFakeBackend()
	output := "42"
	backend.runs = []assistants.Run{
		{
			Status: assistants.StatusRequiresAction,
			RequiredAction: &assistants.RequiredAction{ToolCalls: []assistants.ToolCall{
				{ID: "tc_1", Type: assistants.ToolTypeFunction, Function: assistants.Function{Name: "get_answer", Arguments: "{}"}},
			}},
		},
		{Status: assistants.StatusCompleted},
	}
	backend.steps = []assistants.RunStep{
		{ID: "step_1", Type: assistants.StepTypeToolCalls, ToolCalls: []assistants.ToolCall{
			{ID: "tc_1", Type: assistants.ToolTypeFunction, Function: assistants.Function{Name: "get_answer", Arguments: "{}"}, Output: &output},
		}},
	}
	a := newTestAdapter(t, Options{Client: backend})
	sink := inmem.New()

	resp, err := a.Process(context.Background(), Request{
		Messages: []chat.Message{
			chat.Text(chat.RoleUser, "what is the answer?"),
			chat.ActionRequest("tc_1", "get_answer", nil),
			chat.ActionResult("tc_1", "get_answer", "42"),
		},
		Sink:     sink,
		Metadata: session.Encode(nil, DefaultMetadataKey, session.State{ThreadID: "thread_prior", RunID: "run_7"}),
	})
	require.NoError(t, err)

	require.Len(t, backend.submitted, 1)
	require.Len(t, backend.submitted[0].Outputs, 1)
	assert.Equal(t, assistants.ToolOutput{ToolCallID: "tc_1", Output: "42"}, backend.submitted[0].Outputs[0])
	assert.Nil(t, backend.submitted[0].ParallelToolCalls)

	// The resumed run keeps its identifier.
	assert.Equal(t, "run_7", resp.RunID)
	assert.Equal(t, "thread_prior", resp.ThreadID)
	assert.Zero(t, backend.threadsMade)

	assert.Equal(t, []events.EventType{
		events.EventActionExecution,
		events.EventActionResult,
	}, sink.Types())
	assert.Equal(t, 1, sink.Completions())
}

func TestProcessToolOutputForwardsSequentialFlag(t *testing.T) {
	backend := newFakeBackend()
	backend.runs = []assistants.Run{
		{
			Status: assistants.StatusRequiresAction,
			RequiredAction: &assistants.RequiredAction{ToolCalls: []assistants.ToolCall{
				{ID: "tc_1", Type: assistants.ToolTypeFunction, Function: assistants.Function{Name: "get_answer"}},
			}},
		},
		{Status: assistants.StatusCompleted},
	}
	a := newTestAdapter(t, Options{Client: backend, DisableParallelToolCalls: true})

	_, err := a.Process(context.Background(), Request{
		Messages: []chat.Message{
			chat.Text(chat.RoleUser, "go"),
			chat.ActionResult("tc_1", "get_answer", "42"),
		},
		Sink:     inmem.New(),
		Metadata: session.Encode(nil, DefaultMetadataKey, session.State{ThreadID: "thread_prior", RunID: "run_7"}),
	})
	require.NoError(t, err)
	require.Len(t, backend.submitted, 1)
	require.NotNil(t, backend.submitted[0].ParallelToolCalls)
	assert.False(t, *backend.submitted[0].ParallelToolCalls)
}

func TestProcessToolOutputCountMismatch(t *testing.T) {
	backend := newFakeBackend()
	backend.runs = []assistants.Run{{
		Status: assistants.StatusRequiresAction,
		RequiredAction: &assistants.RequiredAction{ToolCalls: []assistants.ToolCall{
			{ID: "tc_1", Type: assistants.ToolTypeFunction, Function: assistants.Function{Name: "first"}},
			{ID: "tc_2", Type: assistants.ToolTypeFunction, Function: assistants.Function{Name: "second"}},
		}},
	}}
	a := newTestAdapter(t, Options{Client: backend})

	_, err := a.Process(context.Background(), Request{
		Messages: []chat.Message{
			chat.Text(chat.RoleUser, "go"),
			chat.ActionResult("tc_1", "first", "done"),
		},
		Sink:  inmem.New(),
		RunID: "run_7",
		Metadata: session.Encode(nil, DefaultMetadataKey, session.State{
			ThreadID: "thread_prior", RunID: "run_7",
		}),
	})
	require.ErrorIs(t, err, ErrToolOutputCountMismatch)
	// Nothing was submitted.
	assert.Empty(t, backend.submitted)
}

func TestProcessNoActionRequired(t *testing.T) {
	backend := newFakeBackend()
	backend.runs = []assistants.Run{{Status: assistants.StatusCompleted}}
	a := newTestAdapter(t, Options{Client: backend})

	_, err := a.Process(context.Background(), Request{
		Messages: []chat.Message{chat.ActionResult("tc_1", "get_answer", "42")},
		Sink:     inmem.New(),
		RunID:    "run_7",
		Metadata: session.Encode(nil, DefaultMetadataKey, session.State{ThreadID: "thread_prior"}),
	})
	require.ErrorIs(t, err, ErrNoActionRequired)
	assert.Empty(t, backend.submitted)
}

func TestProcessRejectsBadTurns(t *testing.T) {
	backend := newFakeBackend()
	a := newTestAdapter(t, Options{Client: backend})
	sink := inmem.New()
	process := func(messages ...chat.Message) error {
		_, err := a.Process(context.Background(), Request{Messages: messages, Sink: sink})
		return err
	}

	require.ErrorIs(t, process(), ErrEmptyConversation)
	require.ErrorIs(t,
		process(chat.Text(chat.RoleUser, "go"), chat.ActionRequest("tc_1", "act", nil)),
		ErrUnsupportedTurnShape)
	require.ErrorIs(t, process(chat.Text(chat.RoleSystem, "only instructions")), ErrNoUserMessage)
	require.ErrorIs(t,
		process(chat.Text(chat.RoleSystem, "be terse"), chat.Text(chat.RoleAssistant, "not the user")),
		ErrNoUserMessage)

	// All of the above fail before any remote call.
	assert.Zero(t, backend.threadsMade)
	assert.Empty(t, backend.posted)
	assert.Empty(t, sink.Types())
}

func TestProcessRejectsBadSchemaBeforeThreadCreation(t *testing.T) {
	backend := newFakeBackend()
	a := newTestAdapter(t, Options{Client: backend})

	_, err := a.Process(context.Background(), Request{
		Messages: []chat.Message{
			chat.Text(chat.RoleSystem, "be terse"),
			chat.Text(chat.RoleUser, "hi"),
		},
		Actions: []chat.ActionDeclaration{{Name: "bad", Parameters: []byte(`{"type":`)}},
		Sink:    inmem.New(),
	})
	require.ErrorIs(t, err, ErrInvalidActionSchema)
	assert.Zero(t, backend.threadsMade)
}

func TestNewValidatesOptions(t *testing.T) {
	_, err := New(Options{AssistantID: "asst_1"})
	require.ErrorContains(t, err, "client")
	_, err = New(Options{Client: newFakeBackend()})
	require.ErrorContains(t, err, "assistant id")
}

func TestProcessRequiresSink(t *testing.T) {
	a := newTestAdapter(t, Options{Client: newFakeBackend()})
	_, err := a.Process(context.Background(), Request{
		Messages: []chat.Message{chat.Text(chat.RoleUser, "hi")},
	})
	require.ErrorContains(t, err, "sink")
}

// streamBackend adds a live transport on top of fakeBackend.
type streamBackend struct {
	*fakeBackend
	runScript    []assistants.StreamEvent
	submitScript []assistants.StreamEvent
	streamErr    error
	streamedReq  *assistants.RunRequest
	streamedOuts []assistants.ToolOutputsRequest
}

func (b *streamBackend) StreamRun(_ context.Context, _ string, req assistants.RunRequest) (assistants.EventStream, error) {
	if b.streamErr != nil {
		return nil, b.streamErr
	}
	b.streamedReq = &req
	return &scriptStream{script: b.runScript}, nil
}

func (b *streamBackend) StreamToolOutputs(_ context.Context, _, _ string, req assistants.ToolOutputsRequest) (assistants.EventStream, error) {
	if b.streamErr != nil {
		return nil, b.streamErr
	}
	b.streamedOuts = append(b.streamedOuts, req)
	return &scriptStream{script: b.submitScript}, nil
}

type scriptStream struct {
	script []assistants.StreamEvent
}

func (s *scriptStream) Recv() (assistants.StreamEvent, error) {
	if len(s.script) == 0 {
		return assistants.StreamEvent{}, io.EOF
	}
	ev := s.script[0]
	s.script = s.script[1:]
	return ev, nil
}

func (s *scriptStream) Close() error { return nil }

func TestProcessStreamsNewUtterance(t *testing.T) {
	backend := &streamBackend{
		fakeBackend: newFakeBackend(),
		runScript: []assistants.StreamEvent{
			{Kind: assistants.StreamEventRunCreated, RunID: "run_live"},
			{Kind: assistants.StreamEventMessageCreated, MessageID: "msg_1"},
			{
				Kind:         assistants.StreamEventMessageDelta,
				MessageID:    "msg_1",
				ContentDelta: []assistants.ContentPart{{Type: "text", Text: "Hi!"}},
			},
			{Kind: assistants.StreamEventMessageCompleted, MessageID: "msg_1"},
		},
	}
	a := newTestAdapter(t, Options{Client: backend})
	sink := inmem.New()

	resp, err := a.Process(context.Background(), Request{
		Messages: []chat.Message{
			chat.Text(chat.RoleSystem, "be terse"),
			chat.Text(chat.RoleUser, "hi"),
		},
		Sink: sink,
	})
	require.NoError(t, err)

	// The live transport was used; no run was created over the polled one.
	assert.Nil(t, backend.runReq)
	require.NotNil(t, backend.streamedReq)
	assert.Equal(t, "be terse", backend.streamedReq.Instructions)
	assert.Equal(t, "run_live", resp.RunID)

	assert.Equal(t, []events.EventType{
		events.EventMessageStart,
		events.EventMessageContent,
		events.EventMessageEnd,
	}, sink.Types())
	assert.Equal(t, 1, sink.Completions())
}

func TestProcessStreamsToolOutputs(t *testing.T) {
	backend := &streamBackend{
		fakeBackend: newFakeBackend(),
		submitScript: []assistants.StreamEvent{
			{Kind: assistants.StreamEventMessageCreated, MessageID: "msg_1"},
			{Kind: assistants.StreamEventMessageCompleted, MessageID: "msg_1"},
		},
	}
	backend.runs = []assistants.Run{{
		Status: assistants.StatusRequiresAction,
		RequiredAction: &assistants.RequiredAction{ToolCalls: []assistants.ToolCall{
			{ID: "tc_1", Type: assistants.ToolTypeFunction, Function: assistants.Function{Name: "get_answer"}},
		}},
	}}
	a := newTestAdapter(t, Options{Client: backend})
	sink := inmem.New()

	resp, err := a.Process(context.Background(), Request{
		Messages: []chat.Message{
			chat.Text(chat.RoleUser, "go"),
			chat.ActionResult("tc_1", "get_answer", "42"),
		},
		Sink:     sink,
		Metadata: session.Encode(nil, DefaultMetadataKey, session.State{ThreadID: "thread_prior", RunID: "run_7"}),
	})
	require.NoError(t, err)

	assert.Empty(t, backend.submitted)
	require.Len(t, backend.streamedOuts, 1)
	assert.Nil(t, backend.streamedOuts[0].ParallelToolCalls)
	assert.Equal(t, "run_7", resp.RunID)
	assert.Equal(t, 1, sink.Completions())
}

func TestProcessStreamsToolOutputsSequentialFlag(t *testing.T) {
	backend := &streamBackend{fakeBackend: newFakeBackend()}
	backend.runs = []assistants.Run{{
		Status: assistants.StatusRequiresAction,
		RequiredAction: &assistants.RequiredAction{ToolCalls: []assistants.ToolCall{
			{ID: "tc_1", Type: assistants.ToolTypeFunction, Function: assistants.Function{Name: "get_answer"}},
		}},
	}}
	a := newTestAdapter(t, Options{Client: backend, DisableParallelToolCalls: true})

	_, err := a.Process(context.Background(), Request{
		Messages: []chat.Message{
			chat.Text(chat.RoleUser, "go"),
			chat.ActionResult("tc_1", "get_answer", "42"),
		},
		Sink:     inmem.New(),
		Metadata: session.Encode(nil, DefaultMetadataKey, session.State{ThreadID: "thread_prior", RunID: "run_7"}),
	})
	require.NoError(t, err)
	require.Len(t, backend.streamedOuts, 1)
	require.NotNil(t, backend.streamedOuts[0].ParallelToolCalls)
	assert.False(t, *backend.streamedOuts[0].ParallelToolCalls)
}

func TestProcessFallsBackWhenStreamingUnsupported(t *testing.T) {
	backend := &streamBackend{
		fakeBackend: newFakeBackend(),
		streamErr:   assistants.ErrStreamingUnsupported,
	}
	backend.runs = []assistants.Run{{Status: assistants.StatusCompleted}}
	a := newTestAdapter(t, Options{Client: backend})

	resp, err := a.Process(context.Background(), Request{
		Messages: []chat.Message{
			chat.Text(chat.RoleSystem, "be terse"),
			chat.Text(chat.RoleUser, "hi"),
		},
		Sink: inmem.New(),
	})
	require.NoError(t, err)
	require.NotNil(t, backend.runReq)
	assert.Equal(t, backend.runID, resp.RunID)
}
