package events

import "context"

type (
	// Emitter is the per-stream handle handed to the producer while a sink
	// stream is open. One method per lifecycle event kind plus Complete.
	// Emitter methods are fire-and-forget: the producer does not consume a
	// return value and must not retry. Implementations decide how delivery
	// failures surface (typically through Sink.Stream's return value).
	//
	// Producers must respect the nesting discipline documented in the package
	// comment; emitters are not required to validate it.
	Emitter interface {
		MessageStart(messageID string)
		MessageContent(messageID, delta string)
		MessageEnd(messageID string)
		ActionStart(actionExecutionID, parentMessageID, actionName string)
		ActionArgs(actionExecutionID, delta string)
		ActionExecution(actionExecutionID, actionName string, arguments []byte)
		ActionEnd(actionExecutionID string)
		ActionResult(actionExecutionID, actionName, result string)

		// Complete signals the end of the lifecycle stream. Called exactly
		// once per stream, after which no further events are emitted.
		Complete()
	}

	// Sink receives the bridge's lifecycle-event stream. Stream opens one
	// logical stream, invokes fn with an Emitter bound to it, and returns
	// after fn returns. The error returned by fn propagates through Stream
	// unchanged so transport failures inside the producer reach the caller.
	//
	// Implementations are provided by the consumer (SSE endpoints, message
	// buses, recorders); the bridge only drives the contract.
	Sink interface {
		Stream(ctx context.Context, fn func(ctx context.Context, em Emitter) error) error
	}
)

// EmitterFunc adapts an event-consuming function to the Emitter interface.
// Each lifecycle method forwards a typed Event value; Complete forwards nil.
type EmitterFunc func(Event)

// MessageStart implements Emitter.
func (f EmitterFunc) MessageStart(messageID string) {
	f(MessageStart{Base: NewBase(EventMessageStart, MessagePayload{MessageID: messageID}), Data: MessagePayload{MessageID: messageID}})
}

// MessageContent implements Emitter.
func (f EmitterFunc) MessageContent(messageID, delta string) {
	d := MessageContentPayload{MessageID: messageID, Delta: delta}
	f(MessageContent{Base: NewBase(EventMessageContent, d), Data: d})
}

// MessageEnd implements Emitter.
func (f EmitterFunc) MessageEnd(messageID string) {
	f(MessageEnd{Base: NewBase(EventMessageEnd, MessagePayload{MessageID: messageID}), Data: MessagePayload{MessageID: messageID}})
}

// ActionStart implements Emitter.
func (f EmitterFunc) ActionStart(actionExecutionID, parentMessageID, actionName string) {
	d := ActionStartPayload{ActionExecutionID: actionExecutionID, ParentMessageID: parentMessageID, ActionName: actionName}
	f(ActionStart{Base: NewBase(EventActionStart, d), Data: d})
}

// ActionArgs implements Emitter.
func (f EmitterFunc) ActionArgs(actionExecutionID, delta string) {
	d := ActionArgsPayload{ActionExecutionID: actionExecutionID, Delta: delta}
	f(ActionArgs{Base: NewBase(EventActionArgs, d), Data: d})
}

// ActionExecution implements Emitter.
func (f EmitterFunc) ActionExecution(actionExecutionID, actionName string, arguments []byte) {
	d := ActionExecutionPayload{ActionExecutionID: actionExecutionID, ActionName: actionName, Arguments: arguments}
	f(ActionExecution{Base: NewBase(EventActionExecution, d), Data: d})
}

// ActionEnd implements Emitter.
func (f EmitterFunc) ActionEnd(actionExecutionID string) {
	d := ActionEndPayload{ActionExecutionID: actionExecutionID}
	f(ActionEnd{Base: NewBase(EventActionEnd, d), Data: d})
}

// ActionResult implements Emitter.
func (f EmitterFunc) ActionResult(actionExecutionID, actionName, result string) {
	d := ActionResultPayload{ActionExecutionID: actionExecutionID, ActionName: actionName, Result: result}
	f(ActionResult{Base: NewBase(EventActionResult, d), Data: d})
}

// Complete implements Emitter.
func (f EmitterFunc) Complete() { f(nil) }
