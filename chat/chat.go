// Package chat defines the generic conversation model consumed by the bridge:
// a flat, ordered list of tagged messages plus the action declarations the
// caller exposes to the assistant. The bridge reads these values and never
// mutates them; ownership stays with the caller for the duration of a turn.
package chat

import "encoding/json"

// Role identifies the author of a text message in the conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleDeveloper Role = "developer"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Kind discriminates the message variants. Exactly one set of variant fields
// is meaningful for a given kind; the predicates below are the supported way
// to test a message's shape.
type Kind string

const (
	// KindText is a plain text message authored by the given Role.
	KindText Kind = "text"
	// KindActionRequest is an assistant-requested action execution carrying
	// the action name and its JSON arguments.
	KindActionRequest Kind = "action_request"
	// KindActionResult is the caller-produced result for a previously
	// requested action execution.
	KindActionResult Kind = "action_result"
)

type (
	// Message is one element of the ordered conversation list. It is a tagged
	// union: Kind selects which fields carry the payload.
	Message struct {
		// ID is the caller-assigned message identifier. Optional.
		ID string `json:"id,omitempty"`
		// Kind tags the variant.
		Kind Kind `json:"kind"`
		// Role is the author of a text message. Unset for action variants.
		Role Role `json:"role,omitempty"`
		// Content is the text body of a text message.
		Content string `json:"content,omitempty"`
		// ActionExecutionID correlates an action request with its result.
		ActionExecutionID string `json:"action_execution_id,omitempty"`
		// ActionName names the requested action for action variants.
		ActionName string `json:"action_name,omitempty"`
		// Arguments carries the JSON arguments of an action request.
		Arguments json.RawMessage `json:"arguments,omitempty"`
		// Result carries the serialized output of an action result.
		Result string `json:"result,omitempty"`
	}

	// ActionDeclaration describes one caller-exposed action the assistant may
	// request. Parameters is a JSON Schema document for the action arguments.
	ActionDeclaration struct {
		Name        string          `json:"name"`
		Description string          `json:"description,omitempty"`
		Parameters  json.RawMessage `json:"parameters,omitempty"`
	}
)

// IsText reports whether the message is a plain text message.
func (m Message) IsText() bool { return m.Kind == KindText }

// IsActionRequest reports whether the message is an action execution request.
func (m Message) IsActionRequest() bool { return m.Kind == KindActionRequest }

// IsActionResult reports whether the message is an action execution result.
func (m Message) IsActionResult() bool { return m.Kind == KindActionResult }

// Text builds a text message.
func Text(role Role, content string) Message {
	return Message{Kind: KindText, Role: role, Content: content}
}

// ActionRequest builds an action execution request message.
func ActionRequest(executionID, name string, args json.RawMessage) Message {
	return Message{Kind: KindActionRequest, ActionExecutionID: executionID, ActionName: name, Arguments: args}
}

// ActionResult builds an action execution result message.
func ActionResult(executionID, name, result string) Message {
	return Message{Kind: KindActionResult, ActionExecutionID: executionID, ActionName: name, Result: result}
}
