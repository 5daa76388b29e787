package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Message types carried in the message_type envelope field.
const (
	MessageTypeToolCall         = "tool_call"
	MessageTypeToolResult       = "tool_result"
	MessageTypeToolError        = "tool_error"
	MessageTypeToolList         = "tool_list"
	MessageTypeToolRegistration = "tool_registration"
	MessageTypeHeartbeat        = "heartbeat"
	MessageTypeShutdown         = "shutdown"
)

// Parameter types allowed in a tool definition.
const (
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeString  = "string"
	TypeBoolean = "boolean"
	TypeArray   = "array"
	TypeObject  = "object"
)

// Error kinds carried on ToolError responses.
const (
	ErrKindDuplicateTool       = "DuplicateTool"
	ErrKindUnknownTool         = "UnknownTool"
	ErrKindMissingParameter    = "MissingParameter"
	ErrKindUnexpectedParameter = "UnexpectedParameter"
	ErrKindTypeMismatch        = "TypeMismatch"
	ErrKindPathTraversal       = "PathTraversal"
	ErrKindNotFound            = "NotFound"
	ErrKindPermissionDenied    = "PermissionDenied"
	ErrKindExecutionError      = "ExecutionError"
)

// ValidType reports whether t is one of the allowed parameter types.
func ValidType(t string) bool {
	switch t {
	case TypeNumber, TypeInteger, TypeString, TypeBoolean, TypeArray, TypeObject:
		return true
	}
	return false
}

// Message is implemented by every protocol message.
type Message interface {
	Type() string
}

// ToolParameter defines a single parameter of a tool.
type ToolParameter struct {
	Name        string        `json:"name"`
	Type        string        `json:"type"`
	Description string        `json:"description"`
	Required    bool          `json:"required"`
	Default     interface{}   `json:"default,omitempty"`
	Enum        []interface{} `json:"enum,omitempty"`
}

// ToolDefinition is the static descriptor of a tool.
type ToolDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ToolParameter `json:"parameters"`
	Category    string          `json:"category,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
}

// ToolCall is an invocation request for a registered tool.
type ToolCall struct {
	MessageType string                 `json:"message_type"`
	ToolName    string                 `json:"tool_name"`
	Arguments   map[string]interface{} `json:"arguments"`
	CallID      string                 `json:"call_id"`
	Timestamp   time.Time              `json:"timestamp"`
}

// Type implements Message.
func (c ToolCall) Type() string { return MessageTypeToolCall }

// NewToolCall builds a tool call with a fresh call ID and timestamp.
func NewToolCall(toolName string, args map[string]interface{}) ToolCall {
	if args == nil {
		args = map[string]interface{}{}
	}
	return ToolCall{
		MessageType: MessageTypeToolCall,
		ToolName:    toolName,
		Arguments:   args,
		CallID:      uuid.NewString(),
		Timestamp:   time.Now().UTC(),
	}
}

// ToolResult is the success response for a tool call.
type ToolResult struct {
	MessageType string      `json:"message_type"`
	CallID      string      `json:"call_id"`
	Result      interface{} `json:"result"`
	Timestamp   time.Time   `json:"timestamp"`
}

// Type implements Message.
func (r ToolResult) Type() string { return MessageTypeToolResult }

// NewToolResult builds a success response for the given call ID.
func NewToolResult(callID string, result interface{}) ToolResult {
	return ToolResult{
		MessageType: MessageTypeToolResult,
		CallID:      callID,
		Result:      result,
		Timestamp:   time.Now().UTC(),
	}
}

// ToolError is the error response for a tool call.
type ToolError struct {
	MessageType  string    `json:"message_type"`
	CallID       string    `json:"call_id"`
	ErrorKind    string    `json:"error_kind"`
	ErrorMessage string    `json:"error_message"`
	Timestamp    time.Time `json:"timestamp"`
}

// Type implements Message.
func (e ToolError) Type() string { return MessageTypeToolError }

// NewToolError builds an error response for the given call ID.
func NewToolError(callID, kind, message string) ToolError {
	return ToolError{
		MessageType:  MessageTypeToolError,
		CallID:       callID,
		ErrorKind:    kind,
		ErrorMessage: message,
		Timestamp:    time.Now().UTC(),
	}
}

// ToolList advertises the tools a server exposes.
type ToolList struct {
	MessageType string           `json:"message_type"`
	Tools       []ToolDefinition `json:"tools"`
	Timestamp   time.Time        `json:"timestamp"`
}

// Type implements Message.
func (l ToolList) Type() string { return MessageTypeToolList }

// NewToolList builds a tool list message.
func NewToolList(tools []ToolDefinition) ToolList {
	return ToolList{
		MessageType: MessageTypeToolList,
		Tools:       tools,
		Timestamp:   time.Now().UTC(),
	}
}

// ToolRegistration announces a single tool to a peer.
type ToolRegistration struct {
	MessageType string         `json:"message_type"`
	Tool        ToolDefinition `json:"tool"`
	Timestamp   time.Time      `json:"timestamp"`
}

// Type implements Message.
func (r ToolRegistration) Type() string { return MessageTypeToolRegistration }

// NewToolRegistration builds a registration message for one tool.
func NewToolRegistration(tool ToolDefinition) ToolRegistration {
	return ToolRegistration{
		MessageType: MessageTypeToolRegistration,
		Tool:        tool,
		Timestamp:   time.Now().UTC(),
	}
}

// Heartbeat is a liveness message emitted by a serving transport.
type Heartbeat struct {
	MessageType string    `json:"message_type"`
	ServerID    string    `json:"server_id"`
	Timestamp   time.Time `json:"timestamp"`
}

// Type implements Message.
func (h Heartbeat) Type() string { return MessageTypeHeartbeat }

// NewHeartbeat builds a heartbeat message for the given server.
func NewHeartbeat(serverID string) Heartbeat {
	return Heartbeat{
		MessageType: MessageTypeHeartbeat,
		ServerID:    serverID,
		Timestamp:   time.Now().UTC(),
	}
}

// Shutdown announces that the serving transport is going away.
type Shutdown struct {
	MessageType string    `json:"message_type"`
	Reason      string    `json:"reason,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Type implements Message.
func (s Shutdown) Type() string { return MessageTypeShutdown }

type envelope struct {
	MessageType string `json:"message_type"`
}

// DecodeMessage parses a raw protocol message, dispatching on message_type.
func DecodeMessage(data []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("invalid message: %w", err)
	}
	if env.MessageType == "" {
		return nil, fmt.Errorf("message missing required field 'message_type'")
	}

	switch env.MessageType {
	case MessageTypeToolCall:
		var m ToolCall
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("invalid tool_call message: %w", err)
		}
		return m, nil
	case MessageTypeToolResult:
		var m ToolResult
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("invalid tool_result message: %w", err)
		}
		return m, nil
	case MessageTypeToolError:
		var m ToolError
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("invalid tool_error message: %w", err)
		}
		return m, nil
	case MessageTypeToolList:
		var m ToolList
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("invalid tool_list message: %w", err)
		}
		return m, nil
	case MessageTypeToolRegistration:
		var m ToolRegistration
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("invalid tool_registration message: %w", err)
		}
		return m, nil
	case MessageTypeHeartbeat:
		var m Heartbeat
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("invalid heartbeat message: %w", err)
		}
		return m, nil
	case MessageTypeShutdown:
		var m Shutdown
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("invalid shutdown message: %w", err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown message type: %s", env.MessageType)
	}
}

// EncodeMessage serializes a protocol message to JSON.
func EncodeMessage(m Message) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s message: %w", m.Type(), err)
	}
	return data, nil
}
