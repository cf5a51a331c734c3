// Package openai provides an assistants.Client backed by the OpenAI
// Assistants API using github.com/sashabaranov/go-openai. It is a polled
// transport: the SDK does not stream assistant runs, so the streaming
// operations report assistants.ErrStreamingUnsupported and the bridge falls
// back to status polling and step replay.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/agentwire/threadbridge/assistants"
)

// AssistantsAPI captures the subset of the go-openai client used by the
// bridge. Tests substitute a scripted implementation.
type AssistantsAPI interface {
	CreateThread(ctx context.Context, request openai.ThreadRequest) (openai.Thread, error)
	CreateMessage(ctx context.Context, threadID string, request openai.MessageRequest) (openai.Message, error)
	CreateRun(ctx context.Context, threadID string, request openai.RunRequest) (openai.Run, error)
	RetrieveRun(ctx context.Context, threadID, runID string) (openai.Run, error)
	SubmitToolOutputs(ctx context.Context, threadID, runID string, request openai.SubmitToolOutputsRequest) (openai.Run, error)
	ListRunSteps(ctx context.Context, threadID, runID string, pagination openai.Pagination) (openai.RunStepList, error)
	RetrieveMessage(ctx context.Context, threadID, messageID string) (openai.Message, error)
}

// Options configures the OpenAI-backed client.
type Options struct {
	API AssistantsAPI
}

// Client implements assistants.Client via the OpenAI Assistants API.
type Client struct {
	api AssistantsAPI
}

// New builds a client from the provided options.
func New(opts Options) (*Client, error) {
	if opts.API == nil {
		return nil, errors.New("openai client is required")
	}
	return &Client{api: opts.API}, nil
}

// NewFromAPIKey constructs a client using the default go-openai HTTP client.
func NewFromAPIKey(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("api key is required")
	}
	return New(Options{API: openai.NewClient(apiKey)})
}

// CreateThread implements assistants.Client.
func (c *Client) CreateThread(ctx context.Context) (assistants.Thread, error) {
	thread, err := c.api.CreateThread(ctx, openai.ThreadRequest{})
	if err != nil {
		return assistants.Thread{}, fmt.Errorf("openai create thread: %w", err)
	}
	return assistants.Thread{ID: thread.ID}, nil
}

// CreateMessage implements assistants.Client.
func (c *Client) CreateMessage(ctx context.Context, threadID string, msg assistants.MessageRequest) (assistants.Message, error) {
	created, err := c.api.CreateMessage(ctx, threadID, openai.MessageRequest{
		Role:    string(msg.Role),
		Content: msg.Content,
	})
	if err != nil {
		return assistants.Message{}, fmt.Errorf("openai create message: %w", err)
	}
	return translateMessage(created), nil
}

// CreateRun implements assistants.Client.
func (c *Client) CreateRun(ctx context.Context, threadID string, req assistants.RunRequest) (assistants.Run, error) {
	request := openai.RunRequest{
		AssistantID:         req.AssistantID,
		Instructions:        req.Instructions,
		Tools:               encodeTools(req.Tools),
		MaxCompletionTokens: req.MaxCompletionTokens,
	}
	if req.ParallelToolCalls != nil {
		request.ParallelToolCalls = *req.ParallelToolCalls
	}
	run, err := c.api.CreateRun(ctx, threadID, request)
	if err != nil {
		return assistants.Run{}, fmt.Errorf("openai create run: %w", err)
	}
	return translateRun(run), nil
}

// RetrieveRun implements assistants.Client.
func (c *Client) RetrieveRun(ctx context.Context, threadID, runID string) (assistants.Run, error) {
	run, err := c.api.RetrieveRun(ctx, threadID, runID)
	if err != nil {
		return assistants.Run{}, fmt.Errorf("openai retrieve run: %w", err)
	}
	return translateRun(run), nil
}

// SubmitToolOutputs implements assistants.Client. The SDK's submission
// request carries no parallel-tool-calls field, so req.ParallelToolCalls is
// not forwarded; the run keeps the setting it was created with.
func (c *Client) SubmitToolOutputs(ctx context.Context, threadID, runID string, req assistants.ToolOutputsRequest) (assistants.Run, error) {
	request := openai.SubmitToolOutputsRequest{
		ToolOutputs: make([]openai.ToolOutput, len(req.Outputs)),
	}
	for i, out := range req.Outputs {
		request.ToolOutputs[i] = openai.ToolOutput{ToolCallID: out.ToolCallID, Output: out.Output}
	}
	run, err := c.api.SubmitToolOutputs(ctx, threadID, runID, request)
	if err != nil {
		return assistants.Run{}, fmt.Errorf("openai submit tool outputs: %w", err)
	}
	return translateRun(run), nil
}

// ListRunSteps implements assistants.Client. Steps are requested in
// ascending creation order, the order replay expects.
func (c *Client) ListRunSteps(ctx context.Context, threadID, runID string) ([]assistants.RunStep, error) {
	order := "asc"
	list, err := c.api.ListRunSteps(ctx, threadID, runID, openai.Pagination{Order: &order})
	if err != nil {
		return nil, fmt.Errorf("openai list run steps: %w", err)
	}
	steps := make([]assistants.RunStep, 0, len(list.RunSteps))
	for _, step := range list.RunSteps {
		steps = append(steps, translateStep(step))
	}
	return steps, nil
}

// RetrieveMessage implements assistants.Client.
func (c *Client) RetrieveMessage(ctx context.Context, threadID, messageID string) (assistants.Message, error) {
	msg, err := c.api.RetrieveMessage(ctx, threadID, messageID)
	if err != nil {
		return assistants.Message{}, fmt.Errorf("openai retrieve message: %w", err)
	}
	return translateMessage(msg), nil
}

// StreamRun implements assistants.StreamClient by reporting that the
// transport cannot stream. Callers fall back to CreateRun plus polling.
func (c *Client) StreamRun(context.Context, string, assistants.RunRequest) (assistants.EventStream, error) {
	return nil, assistants.ErrStreamingUnsupported
}

// StreamToolOutputs implements assistants.StreamClient by reporting that the
// transport cannot stream.
func (c *Client) StreamToolOutputs(context.Context, string, string, assistants.ToolOutputsRequest) (assistants.EventStream, error) {
	return nil, assistants.ErrStreamingUnsupported
}

func encodeTools(tools []assistants.Tool) []openai.Tool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]openai.Tool, 0, len(tools))
	for _, tool := range tools {
		encoded := openai.Tool{Type: openai.ToolType(tool.Type)}
		if tool.Function != nil {
			encoded.Function = &openai.FunctionDefinition{
				Name:        tool.Function.Name,
				Description: tool.Function.Description,
				Parameters:  json.RawMessage(tool.Function.Parameters),
			}
		}
		out = append(out, encoded)
	}
	return out
}

func translateRun(run openai.Run) assistants.Run {
	out := assistants.Run{
		ID:       run.ID,
		ThreadID: run.ThreadID,
		Status:   assistants.Status(run.Status),
	}
	if run.RequiredAction != nil && run.RequiredAction.SubmitToolOutputs != nil {
		calls := run.RequiredAction.SubmitToolOutputs.ToolCalls
		action := &assistants.RequiredAction{ToolCalls: make([]assistants.ToolCall, 0, len(calls))}
		for _, call := range calls {
			action.ToolCalls = append(action.ToolCalls, translateToolCall(call))
		}
		out.RequiredAction = action
	}
	return out
}

func translateToolCall(call openai.ToolCall) assistants.ToolCall {
	return assistants.ToolCall{
		ID:   call.ID,
		Type: assistants.ToolType(call.Type),
		Function: assistants.Function{
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		},
	}
}

// translateStep maps a run step. The SDK does not expose recorded tool-call
// outputs on step details, so replayed tool calls carry no Output and the
// bridge emits no action-result events over this transport.
func translateStep(step openai.RunStep) assistants.RunStep {
	out := assistants.RunStep{
		ID:   step.ID,
		Type: assistants.StepType(step.Type),
	}
	if step.StepDetails.MessageCreation != nil {
		out.MessageID = step.StepDetails.MessageCreation.MessageID
	}
	for _, call := range step.StepDetails.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, translateToolCall(call))
	}
	return out
}

func translateMessage(msg openai.Message) assistants.Message {
	out := assistants.Message{
		ID:   msg.ID,
		Role: assistants.Role(msg.Role),
	}
	for _, part := range msg.Content {
		converted := assistants.ContentPart{Type: part.Type}
		if part.Text != nil {
			converted.Text = part.Text.Value
		}
		out.Content = append(out.Content, converted)
	}
	return out
}
