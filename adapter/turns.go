package adapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/agentwire/threadbridge/assistants"
	"github.com/agentwire/threadbridge/chat"
	"github.com/agentwire/threadbridge/events"
	"github.com/agentwire/threadbridge/session"
)

// submitToolOutputs resumes the in-flight run with the caller's action
// results. The run keeps its identifier, so the same run id is returned.
func (a *Adapter) submitToolOutputs(ctx context.Context, threadID, runID string, req Request) (string, error) {
	run, err := a.client.RetrieveRun(ctx, threadID, runID)
	if err != nil {
		return "", fmt.Errorf("retrieve run %s: %w", runID, err)
	}
	if run.RequiredAction == nil || len(run.RequiredAction.ToolCalls) == 0 {
		return "", ErrNoActionRequired
	}

	outputs, err := matchToolOutputs(run.RequiredAction.ToolCalls, req.Messages)
	if err != nil {
		return "", err
	}
	submitReq := assistants.ToolOutputsRequest{Outputs: outputs}
	if a.disableParallel {
		submitReq.ParallelToolCalls = Bool(false)
	}

	if sc, ok := a.client.(assistants.StreamClient); ok {
		es, serr := sc.StreamToolOutputs(ctx, threadID, runID, submitReq)
		switch {
		case serr == nil:
			if err := req.Sink.Stream(ctx, func(ctx context.Context, em events.Emitter) error {
				_, perr := a.proj.Stream(ctx, es, em)
				return perr
			}); err != nil {
				return "", err
			}
			return runID, nil
		case !errors.Is(serr, assistants.ErrStreamingUnsupported):
			return "", fmt.Errorf("stream tool outputs: %w", serr)
		}
	}

	if _, err := a.client.SubmitToolOutputs(ctx, threadID, runID, submitReq); err != nil {
		return "", fmt.Errorf("submit tool outputs: %w", err)
	}
	if err := a.pollAndReplay(ctx, threadID, runID, req.Sink); err != nil {
		return "", err
	}
	return runID, nil
}

// matchToolOutputs pairs the run's outstanding tool calls with the caller's
// action results. Every outstanding call needs exactly one matching result;
// missing and duplicate submissions both surface as a count mismatch before
// anything is sent. Output order follows the server-reported call order.
func matchToolOutputs(calls []assistants.ToolCall, messages []chat.Message) ([]assistants.ToolOutput, error) {
	wanted := make(map[string]bool, len(calls))
	for _, call := range calls {
		wanted[call.ID] = true
	}
	matched := make(map[string]chat.Message, len(calls))
	count := 0
	for _, m := range messages {
		if !m.IsActionResult() || !wanted[m.ActionExecutionID] {
			continue
		}
		matched[m.ActionExecutionID] = m
		count++
	}
	if count != len(calls) {
		return nil, ErrToolOutputCountMismatch
	}
	outputs := make([]assistants.ToolOutput, 0, len(calls))
	for _, call := range calls {
		m, ok := matched[call.ID]
		if !ok {
			return nil, ErrToolOutputCountMismatch
		}
		outputs = append(outputs, assistants.ToolOutput{ToolCallID: call.ID, Output: m.Result})
	}
	return outputs, nil
}

// submitUserMessage posts the trailing user message to the thread and starts
// a new run. All caller-input validation happens before the thread is
// touched; the thread is created lazily on a conversation's first turn.
func (a *Adapter) submitUserMessage(ctx context.Context, st *session.State, req Request) (string, error) {
	// The leading message carries the run instructions when it is text.
	var instructions string
	if first := req.Messages[0]; first.IsText() {
		instructions = first.Content
	}
	rest := req.Messages[1:]
	if len(rest) == 0 {
		return "", ErrNoUserMessage
	}
	last := convertSystemToAssistantAPI(convertMessage(rest[len(rest)-1], a.keepSystemRole))
	if last.Role != chat.RoleUser {
		return "", ErrNoUserMessage
	}
	tools, err := buildTools(req.Actions, a.codeInterpreter, a.fileSearch)
	if err != nil {
		return "", err
	}

	if st.ThreadID == "" {
		thread, err := a.client.CreateThread(ctx)
		if err != nil {
			return "", fmt.Errorf("create thread: %w", err)
		}
		st.ThreadID = thread.ID
		a.log.Debug(ctx, "created thread", "thread_id", st.ThreadID)
	}

	if _, err := a.client.CreateMessage(ctx, st.ThreadID, assistants.MessageRequest{
		Role:    assistants.RoleUser,
		Content: last.Content,
	}); err != nil {
		return "", fmt.Errorf("create message: %w", err)
	}

	runReq := assistants.RunRequest{
		AssistantID:  a.assistantID,
		Instructions: instructions,
		Tools:        tools,
	}
	if req.MaxOutputTokens > 0 {
		runReq.MaxCompletionTokens = req.MaxOutputTokens
	}
	if a.disableParallel {
		runReq.ParallelToolCalls = Bool(false)
	}
	return a.startRun(ctx, st.ThreadID, runReq, req.Sink)
}

// startRun creates the run over the preferred transport and projects its
// progress into the sink. Streaming is attempted first when the client
// supports it; the run identifier then comes from the stream itself.
func (a *Adapter) startRun(ctx context.Context, threadID string, runReq assistants.RunRequest, sink events.Sink) (string, error) {
	if sc, ok := a.client.(assistants.StreamClient); ok {
		es, serr := sc.StreamRun(ctx, threadID, runReq)
		switch {
		case serr == nil:
			var runID string
			if err := sink.Stream(ctx, func(ctx context.Context, em events.Emitter) error {
				id, perr := a.proj.Stream(ctx, es, em)
				runID = id
				return perr
			}); err != nil {
				return "", err
			}
			return runID, nil
		case !errors.Is(serr, assistants.ErrStreamingUnsupported):
			return "", fmt.Errorf("stream run: %w", serr)
		}
	}

	run, err := a.client.CreateRun(ctx, threadID, runReq)
	if err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}
	if err := a.pollAndReplay(ctx, threadID, run.ID, sink); err != nil {
		return "", err
	}
	return run.ID, nil
}

// pollAndReplay waits for the run to stop and replays its step history into
// the sink. Replay happens for every terminal status: a failed or expired
// run still surfaces whatever partial messages it produced, and a run paused
// awaiting action surfaces its pending tool calls. The terminal status
// itself is not translated into a lifecycle event.
func (a *Adapter) pollAndReplay(ctx context.Context, threadID, runID string, sink events.Sink) error {
	run, err := a.poll.Wait(ctx, threadID, runID)
	if err != nil {
		return err
	}
	a.log.Debug(ctx, "replaying run history", "run_id", runID, "status", string(run.Status))
	steps, err := a.poll.Steps(ctx, threadID, runID)
	if err != nil {
		return err
	}
	return sink.Stream(ctx, func(ctx context.Context, em events.Emitter) error {
		return a.proj.Replay(ctx, a.client, threadID, steps, em)
	})
}
