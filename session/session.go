// Package session encodes the bridge's opaque conversation state into the
// caller-supplied metadata bag. The bag is an open-ended map owned by the
// caller; the bridge claims a single namespace key inside it and leaves every
// sibling key untouched. Absent or malformed state decodes to the zero State,
// which the bridge interprets as "no prior conversation" rather than an error.
package session

// State is the conversation state the bridge persists between turns: the
// remote thread identifier and the identifier of the run created or resumed
// by the previous turn. Both are opaque to the bridge and to the caller.
type State struct {
	// ThreadID identifies the remote conversation thread. Empty means no
	// thread exists yet and the next turn creates one.
	ThreadID string
	// RunID identifies the run produced by the previous turn. The caller
	// supplies it back together with action results to resume that run.
	RunID string
}

const (
	threadIDField = "threadId"
	runIDField    = "runId"
)

// Decode extracts the state stored under key in the metadata bag. A nil bag,
// a missing key, or a value of an unexpected shape all decode to the zero
// State.
func Decode(bag map[string]any, key string) State {
	if bag == nil {
		return State{}
	}
	nested, ok := bag[key].(map[string]any)
	if !ok {
		return State{}
	}
	var st State
	if v, ok := nested[threadIDField].(string); ok {
		st.ThreadID = v
	}
	if v, ok := nested[runIDField].(string); ok {
		st.RunID = v
	}
	return st
}

// Encode returns a copy of the bag with the state written under key. Sibling
// keys are carried over untouched and the input bag is never mutated, so
// callers can hold the previous bag and the returned one side by side.
func Encode(bag map[string]any, key string, st State) map[string]any {
	out := make(map[string]any, len(bag)+1)
	for k, v := range bag {
		out[k] = v
	}
	out[key] = map[string]any{
		threadIDField: st.ThreadID,
		runIDField:    st.RunID,
	}
	return out
}
