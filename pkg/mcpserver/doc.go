// Package mcpserver implements tool registration and dispatch for MCP
// servers.
//
// Invariants:
//   - Tool names are unique; re-registering a name fails.
//   - Arguments are schema-validated and normalized before execution.
//   - Dispatch never raises past its boundary: every call yields exactly
//     one tool_result or tool_error message.
//
// Usage:
//
//	srv, _ := mcpserver.NewServer(mcpserver.Options{Name: "calculator", Description: "Calculator operations"})
//	_ = srv.RegisterTool(protocol.ToolDefinition{
//		Name:        "echo",
//		Description: "Echo input",
//		Parameters:  []protocol.ToolParameter{{Name: "text", Type: "string", Description: "text", Required: true}},
//	}, func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
//		return args["text"], nil
//	})
//	resp := srv.Handle(ctx, protocol.NewToolCall("echo", map[string]interface{}{"text": "hi"}))
package mcpserver
