package adapter

import "errors"

// Caller-input errors. All are detected synchronously before any remote call
// with side effects and are never retried; no partial session state is
// written back when one is returned.
var (
	// ErrEmptyConversation is returned when the incoming message list is empty.
	ErrEmptyConversation = errors.New("adapter: conversation has no messages")

	// ErrUnsupportedTurnShape is returned when the trailing message is neither
	// a text message nor an action result backed by an in-flight run.
	ErrUnsupportedTurnShape = errors.New("adapter: no actionable trailing message")

	// ErrNoActionRequired is returned when a tool-output turn targets a run
	// with no outstanding tool calls.
	ErrNoActionRequired = errors.New("adapter: run has no outstanding tool calls")

	// ErrToolOutputCountMismatch is returned when the action results supplied
	// by the caller do not match the run's outstanding tool calls one for one.
	ErrToolOutputCountMismatch = errors.New("adapter: action results do not match outstanding tool calls")

	// ErrNoUserMessage is returned when a new-utterance turn does not end in a
	// message that resolves to the user role.
	ErrNoUserMessage = errors.New("adapter: no user message found")

	// ErrInvalidActionSchema is returned when an action declaration carries a
	// parameter schema that is not a valid JSON Schema document.
	ErrInvalidActionSchema = errors.New("adapter: invalid action parameter schema")
)
