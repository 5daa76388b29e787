package mcpserver

import (
	"context"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/karthik-ravi-1537/mcp-demo/pkg/protocol"
)

// ToolHandler is the function signature for tool execution. Handlers
// receive normalized arguments: every declared parameter is present,
// with defaults substituted for absent optional ones.
type ToolHandler func(ctx context.Context, args map[string]interface{}) (interface{}, error)

type registryEntry struct {
	def     protocol.ToolDefinition
	handler ToolHandler
	schema  *gojsonschema.Schema
}

// Registry maps tool names to their definitions and handlers. Lookups
// are safe for concurrent use; registrations are serialized against
// them, although registering everything before serving is the
// recommended policy.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*registryEntry
	order   []string
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*registryEntry),
	}
}

// Register stores a tool definition and its handler. It fails with a
// DuplicateTool error when the name is already taken; a failed
// registration leaves the registry unchanged.
func (r *Registry) Register(def protocol.ToolDefinition, handler ToolHandler) error {
	if err := validateDefinition(def, handler); err != nil {
		return fmt.Errorf("invalid tool definition: %w", err)
	}

	schema, err := compileSchema(def)
	if err != nil {
		return fmt.Errorf("failed to compile schema for tool %s: %w", def.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[def.Name]; exists {
		return duplicateTool(def.Name)
	}

	r.entries[def.Name] = &registryEntry{def: def, handler: handler, schema: schema}
	r.order = append(r.order, def.Name)

	return nil
}

// Lookup returns the entry for a tool name, or an UnknownTool error.
func (r *Registry) Lookup(name string) (*registryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[name]
	if !ok {
		return nil, unknownTool(name)
	}
	return entry, nil
}

// List returns all tool definitions in registration order.
func (r *Registry) List() []protocol.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]protocol.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.entries[name].def)
	}
	return defs
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}

func validateDefinition(def protocol.ToolDefinition, handler ToolHandler) error {
	if def.Name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if def.Description == "" {
		return fmt.Errorf("tool description cannot be empty for %s", def.Name)
	}
	if handler == nil {
		return fmt.Errorf("tool handler cannot be nil for %s", def.Name)
	}

	seen := make(map[string]bool, len(def.Parameters))
	for _, param := range def.Parameters {
		if param.Name == "" {
			return fmt.Errorf("parameter name cannot be empty")
		}
		if seen[param.Name] {
			return fmt.Errorf("duplicate parameter %s", param.Name)
		}
		seen[param.Name] = true

		if !protocol.ValidType(param.Type) {
			return fmt.Errorf("invalid parameter type %q for %s", param.Type, param.Name)
		}
		if !param.Required && param.Default == nil {
			return fmt.Errorf("optional parameter %s must declare a default", param.Name)
		}
	}

	return nil
}
