// Package events defines the normalized lifecycle-event stream the bridge
// produces for its caller. Whatever transport the remote assistant API used
// (live event stream or polled step history), consumers observe a single
// ordered sequence of these events with a strict open/close discipline: every
// message-start is followed by exactly one message-end, every action-start by
// exactly one action-end, and completion is signalled exactly once.
//
// Event structs embed Base to provide the Type() and Payload() accessors;
// consumers that need structured field access type-assert to the concrete
// types, while generic sinks marshal Payload() directly.
package events

import "encoding/json"

// EventType enumerates lifecycle event flavors.
type EventType string

const (
	// EventMessageStart opens an assistant message.
	EventMessageStart EventType = "message_start"

	// EventMessageContent carries an incremental text fragment for the open
	// message. Consumers concatenate fragments in order to reconstruct the
	// full message text.
	EventMessageContent EventType = "message_content"

	// EventMessageEnd closes the open assistant message.
	EventMessageEnd EventType = "message_end"

	// EventActionStart opens an action execution requested by the assistant.
	EventActionStart EventType = "action_start"

	// EventActionArgs carries an incremental argument fragment for the open
	// action. Fragments are not guaranteed to be valid JSON on their own;
	// only the concatenation of all fragments is. Emitted in streaming
	// transport mode only.
	EventActionArgs EventType = "action_args"

	// EventActionExecution carries a fully materialized action request with
	// its complete accumulated arguments. Emitted in replay transport mode
	// only, where no incremental fragments exist.
	EventActionExecution EventType = "action_execution"

	// EventActionEnd closes the open action execution.
	EventActionEnd EventType = "action_end"

	// EventActionResult carries a server-reported output for an action
	// execution. Emitted in replay transport mode when the step history
	// already records the output.
	EventActionResult EventType = "action_result"
)

type (
	// Event is one unit of the bridge's normalized output stream. All
	// concrete event types embed Base.
	Event interface {
		// Type returns the event type constant.
		Type() EventType
		// Payload returns the event-specific data in a JSON-serializable
		// form. Use type assertions on the Event for typed field access.
		Payload() any
	}

	// MessageStart opens an assistant message.
	MessageStart struct {
		Base
		Data MessagePayload
	}

	// MessageContent streams an incremental text fragment of the open message.
	MessageContent struct {
		Base
		Data MessageContentPayload
	}

	// MessageEnd closes the open assistant message.
	MessageEnd struct {
		Base
		Data MessagePayload
	}

	// ActionStart opens an action execution.
	ActionStart struct {
		Base
		Data ActionStartPayload
	}

	// ActionArgs streams an incremental argument fragment of the open action.
	ActionArgs struct {
		Base
		Data ActionArgsPayload
	}

	// ActionExecution carries a fully materialized action request.
	ActionExecution struct {
		Base
		Data ActionExecutionPayload
	}

	// ActionEnd closes the open action execution.
	ActionEnd struct {
		Base
		Data ActionEndPayload
	}

	// ActionResult carries a server-reported action output.
	ActionResult struct {
		Base
		Data ActionResultPayload
	}

	// MessagePayload identifies the message a boundary event refers to.
	MessagePayload struct {
		MessageID string `json:"message_id"`
	}

	// MessageContentPayload carries a text fragment for a message.
	MessageContentPayload struct {
		MessageID string `json:"message_id"`
		Delta     string `json:"delta"`
	}

	// ActionStartPayload describes a newly opened action execution.
	ActionStartPayload struct {
		// ActionExecutionID is the remote tool-call identifier. The caller
		// submits results under this identifier on the next turn.
		ActionExecutionID string `json:"action_execution_id"`
		// ParentMessageID associates the action with the remote step or
		// message that produced it.
		ParentMessageID string `json:"parent_message_id,omitempty"`
		// ActionName is the declared action being requested.
		ActionName string `json:"action_name"`
	}

	// ActionArgsPayload carries an argument fragment for the open action.
	ActionArgsPayload struct {
		ActionExecutionID string `json:"action_execution_id"`
		Delta             string `json:"delta"`
	}

	// ActionExecutionPayload carries a complete action request.
	ActionExecutionPayload struct {
		ActionExecutionID string          `json:"action_execution_id"`
		ActionName        string          `json:"action_name"`
		Arguments         json.RawMessage `json:"arguments,omitempty"`
	}

	// ActionEndPayload identifies the action a close event refers to.
	ActionEndPayload struct {
		ActionExecutionID string `json:"action_execution_id"`
	}

	// ActionResultPayload carries a server-reported action output.
	ActionResultPayload struct {
		ActionExecutionID string `json:"action_execution_id"`
		ActionName        string `json:"action_name"`
		Result            string `json:"result"`
	}

	// Base provides the default Event implementation. Field names are
	// abbreviated because they are set once at construction and accessed
	// through the interface methods.
	Base struct {
		t EventType
		p any
	}
)

// NewBase constructs a Base with the given type and payload.
func NewBase(t EventType, payload any) Base {
	return Base{t: t, p: payload}
}

// Type implements Event.Type.
func (b Base) Type() EventType { return b.t }

// Payload implements Event.Payload.
func (b Base) Payload() any { return b.p }
