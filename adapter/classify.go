package adapter

import "github.com/agentwire/threadbridge/chat"

// turnKind is the shape of the incoming turn, decided from the trailing
// message and the presence of an in-flight run identifier.
type turnKind int

const (
	turnUnknown turnKind = iota
	// turnToolOutput resumes an in-flight run with the caller's action results.
	turnToolOutput
	// turnNewUtterance posts a fresh user message and starts a new run.
	turnNewUtterance
)

// classifyTurn inspects the last message of the ordered list. A trailing
// action result is only actionable when the caller supplied the run it
// belongs to; a trailing action request, or a trailing result without a run,
// is a protocol violation. Pure: no side effects.
func classifyTurn(messages []chat.Message, runID string) (turnKind, error) {
	if len(messages) == 0 {
		return turnUnknown, ErrEmptyConversation
	}
	last := messages[len(messages)-1]
	switch {
	case last.IsActionResult() && runID != "":
		return turnToolOutput, nil
	case last.IsText():
		return turnNewUtterance, nil
	}
	return turnUnknown, ErrUnsupportedTurnShape
}
