package adapter

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/agentwire/threadbridge/assistants"
	"github.com/agentwire/threadbridge/chat"
)

// systemMessagePreface marks system text that has to travel as an assistant
// message because the thread API accepts only user and assistant roles.
const systemMessagePreface = "THE FOLLOWING MESSAGE IS A SYSTEM MESSAGE: "

// emptyObjectSchema is the parameter schema used for actions declared
// without one.
var emptyObjectSchema = json.RawMessage(`{"type":"object","properties":{}}`)

// wireMessage is the intermediate wire form of a conversation message before
// role narrowing for the thread API.
type wireMessage struct {
	Role    chat.Role
	Content string
}

// convertMessage maps a conversation message to its wire form. Text messages
// keep their role, except system messages which become developer messages
// unless keepSystemRole is set. Action requests resolve to empty assistant
// messages and action results to tool messages; neither shape is postable as
// a user turn, which is what the NoUserMessage check relies on.
func convertMessage(m chat.Message, keepSystemRole bool) wireMessage {
	switch {
	case m.IsText():
		role := m.Role
		if role == chat.RoleSystem && !keepSystemRole {
			role = chat.RoleDeveloper
		}
		return wireMessage{Role: role, Content: m.Content}
	case m.IsActionRequest():
		return wireMessage{Role: chat.RoleAssistant}
	case m.IsActionResult():
		return wireMessage{Role: chat.RoleTool, Content: m.Result}
	}
	return wireMessage{}
}

// convertSystemToAssistantAPI rewrites system and developer messages as
// assistant messages with a preface. Other roles pass through unchanged.
func convertSystemToAssistantAPI(m wireMessage) wireMessage {
	if m.Role == chat.RoleSystem || m.Role == chat.RoleDeveloper {
		return wireMessage{Role: chat.RoleAssistant, Content: systemMessagePreface + m.Content}
	}
	return m
}

// buildTools maps action declarations to remote function tools, appending
// the built-in code-interpreter and file-search tools per the capability
// flags. Each declared parameter schema is compiled up front so a malformed
// schema fails the turn before any remote call. Returns nil when no tools
// result: the remote API distinguishes an omitted tools field from an empty
// array.
func buildTools(actions []chat.ActionDeclaration, codeInterpreter, fileSearch bool) ([]assistants.Tool, error) {
	tools := make([]assistants.Tool, 0, len(actions)+2)
	for _, action := range actions {
		params := action.Parameters
		if len(params) == 0 {
			params = emptyObjectSchema
		} else if err := compileSchema(action.Name, params); err != nil {
			return nil, err
		}
		tools = append(tools, assistants.Tool{
			Type: assistants.ToolTypeFunction,
			Function: &assistants.FunctionDefinition{
				Name:        action.Name,
				Description: action.Description,
				Parameters:  params,
			},
		})
	}
	if codeInterpreter {
		tools = append(tools, assistants.Tool{Type: assistants.ToolTypeCodeInterpreter})
	}
	if fileSearch {
		tools = append(tools, assistants.Tool{Type: assistants.ToolTypeFileSearch})
	}
	if len(tools) == 0 {
		return nil, nil
	}
	return tools, nil
}

// compileSchema verifies that raw is a compilable JSON Schema document.
func compileSchema(actionName string, raw json.RawMessage) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%w: action %q: %v", ErrInvalidActionSchema, actionName, err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", doc); err != nil {
		return fmt.Errorf("%w: action %q: %v", ErrInvalidActionSchema, actionName, err)
	}
	if _, err := c.Compile("schema.json"); err != nil {
		return fmt.Errorf("%w: action %q: %v", ErrInvalidActionSchema, actionName, err)
	}
	return nil
}
