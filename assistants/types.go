// Package assistants defines the wire contract of the remote thread + run
// conversational API the bridge drives. The remote service owns all
// conversation state: threads hold message history, runs execute the
// assistant against a thread and expose an observable status, and steps
// record run progress retrievable in creation order. The bridge only reads
// and drives these entities through the Client and StreamClient interfaces;
// concrete transports live in subpackages (see assistants/openai).
package assistants

import "encoding/json"

// Status is the observable state of a remote run.
type Status string

const (
	StatusQueued         Status = "queued"
	StatusInProgress     Status = "in_progress"
	StatusRequiresAction Status = "requires_action"
	StatusCancelling     Status = "cancelling"
	StatusCancelled      Status = "cancelled"
	StatusFailed         Status = "failed"
	StatusCompleted      Status = "completed"
	StatusIncomplete     Status = "incomplete"
	StatusExpired        Status = "expired"
)

// Terminal reports whether the run has stopped making progress on its own.
// A run requiring action is terminal from the poller's perspective: it will
// not advance until tool outputs are submitted on a subsequent turn.
func (s Status) Terminal() bool {
	switch s {
	case StatusQueued, StatusInProgress, StatusCancelling:
		return false
	}
	return true
}

// ToolType discriminates tool declarations attached to a run.
type ToolType string

const (
	ToolTypeFunction        ToolType = "function"
	ToolTypeCodeInterpreter ToolType = "code_interpreter"
	ToolTypeFileSearch      ToolType = "file_search"
)

// StepType discriminates run step records.
type StepType string

const (
	StepTypeMessageCreation StepType = "message_creation"
	StepTypeToolCalls       StepType = "tool_calls"
)

// Role is a remote message author role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type (
	// Thread is a server-side conversation container.
	Thread struct {
		ID string `json:"id"`
	}

	// MessageRequest posts one message to a thread.
	MessageRequest struct {
		Role    Role   `json:"role"`
		Content string `json:"content"`
	}

	// Message is a thread message with its content parts.
	Message struct {
		ID      string        `json:"id"`
		Role    Role          `json:"role"`
		Content []ContentPart `json:"content"`
	}

	// ContentPart is one element of a message body. Only text parts carry a
	// value the bridge consumes; other part types are passed over.
	ContentPart struct {
		Type string `json:"type"`
		Text string `json:"text,omitempty"`
	}

	// Tool declares a capability available to a run. Function is set for
	// function tools only; the built-in kinds carry just their type.
	Tool struct {
		Type     ToolType            `json:"type"`
		Function *FunctionDefinition `json:"function,omitempty"`
	}

	// FunctionDefinition describes a function tool.
	FunctionDefinition struct {
		Name        string          `json:"name"`
		Description string          `json:"description,omitempty"`
		Parameters  json.RawMessage `json:"parameters,omitempty"`
	}

	// RunRequest creates a run against a thread. Optional fields follow the
	// remote API's presence semantics: a nil Tools slice omits the tools
	// field entirely (the API distinguishes "no tools" from an empty array),
	// a zero MaxCompletionTokens is not forwarded, and a nil
	// ParallelToolCalls leaves the server default in place.
	RunRequest struct {
		AssistantID         string `json:"assistant_id"`
		Instructions        string `json:"instructions"`
		Tools               []Tool `json:"tools,omitempty"`
		MaxCompletionTokens int    `json:"max_completion_tokens,omitempty"`
		ParallelToolCalls   *bool  `json:"parallel_tool_calls,omitempty"`
	}

	// Run is the server-side execution of the assistant against a thread.
	Run struct {
		ID             string          `json:"id"`
		ThreadID       string          `json:"thread_id"`
		Status         Status          `json:"status"`
		RequiredAction *RequiredAction `json:"required_action,omitempty"`
	}

	// RequiredAction carries the outstanding tool calls of a run that is
	// paused awaiting outputs.
	RequiredAction struct {
		ToolCalls []ToolCall `json:"tool_calls"`
	}

	// ToolCall is a server-requested invocation of a declared tool. Output
	// is non-nil only in step history, once the server has recorded the
	// submitted result for the call.
	ToolCall struct {
		ID       string   `json:"id"`
		Type     ToolType `json:"type"`
		Function Function `json:"function"`
		Output   *string  `json:"output,omitempty"`
	}

	// Function is the function invocation half of a tool call.
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	}

	// ToolOutput submits the result for one outstanding tool call.
	ToolOutput struct {
		ToolCallID string `json:"tool_call_id"`
		Output     string `json:"output"`
	}

	// ToolOutputsRequest resumes a paused run with the outputs for its
	// outstanding tool calls. ParallelToolCalls follows the same presence
	// semantics as on RunRequest; transports that cannot carry the flag on
	// resumption ignore it.
	ToolOutputsRequest struct {
		Outputs           []ToolOutput `json:"tool_outputs"`
		ParallelToolCalls *bool        `json:"parallel_tool_calls,omitempty"`
	}

	// RunStep is a server-recorded unit of run progress: either the creation
	// of a message or a batch of tool calls. MessageID is set for
	// message-creation steps; ToolCalls for tool-call steps.
	RunStep struct {
		ID        string     `json:"id"`
		Type      StepType   `json:"type"`
		MessageID string     `json:"message_id,omitempty"`
		ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	}
)
