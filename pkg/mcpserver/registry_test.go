package mcpserver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karthik-ravi-1537/mcp-demo/pkg/protocol"
)

func echoHandler(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	return args, nil
}

func echoDef(name string) protocol.ToolDefinition {
	return protocol.ToolDefinition{
		Name:        name,
		Description: "Echo the arguments back",
		Parameters: []protocol.ToolParameter{
			{Name: "message", Type: protocol.TypeString, Description: "Message to echo", Required: true},
		},
	}
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	err := r.Register(echoDef("echo"), echoHandler)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Len())

	entry, err := r.Lookup("echo")
	require.NoError(t, err)
	assert.Equal(t, "echo", entry.def.Name)
	assert.NotNil(t, entry.schema)
}

func TestRegistry_Register_Duplicate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(echoDef("echo"), echoHandler))

	err := r.Register(echoDef("echo"), echoHandler)
	require.Error(t, err)
	assert.Equal(t, protocol.ErrKindDuplicateTool, KindOf(err))

	// Failed registration leaves the registry unchanged.
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_Register_InvalidDefinition(t *testing.T) {
	tests := []struct {
		name    string
		def     protocol.ToolDefinition
		handler ToolHandler
	}{
		{
			name:    "empty name",
			def:     protocol.ToolDefinition{Description: "Test"},
			handler: echoHandler,
		},
		{
			name:    "empty description",
			def:     protocol.ToolDefinition{Name: "test"},
			handler: echoHandler,
		},
		{
			name:    "nil handler",
			def:     protocol.ToolDefinition{Name: "test", Description: "Test"},
			handler: nil,
		},
		{
			name: "invalid parameter type",
			def: protocol.ToolDefinition{
				Name:        "test",
				Description: "Test",
				Parameters: []protocol.ToolParameter{
					{Name: "x", Type: "float", Required: true},
				},
			},
			handler: echoHandler,
		},
		{
			name: "duplicate parameter name",
			def: protocol.ToolDefinition{
				Name:        "test",
				Description: "Test",
				Parameters: []protocol.ToolParameter{
					{Name: "x", Type: protocol.TypeNumber, Required: true},
					{Name: "x", Type: protocol.TypeNumber, Required: true},
				},
			},
			handler: echoHandler,
		},
		{
			name: "optional parameter without default",
			def: protocol.ToolDefinition{
				Name:        "test",
				Description: "Test",
				Parameters: []protocol.ToolParameter{
					{Name: "x", Type: protocol.TypeNumber, Required: false},
				},
			},
			handler: echoHandler,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			err := r.Register(tt.def, tt.handler)
			assert.Error(t, err)
			assert.Equal(t, 0, r.Len())
		})
	}
}

func TestRegistry_Lookup_Unknown(t *testing.T) {
	r := NewRegistry()

	_, err := r.Lookup("missing")
	require.Error(t, err)
	assert.Equal(t, protocol.ErrKindUnknownTool, KindOf(err))
}

func TestRegistry_List_RegistrationOrder(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"zulu", "alpha", "mike"} {
		require.NoError(t, r.Register(echoDef(name), echoHandler))
	}

	defs := r.List()
	require.Len(t, defs, 3)
	assert.Equal(t, "zulu", defs[0].Name)
	assert.Equal(t, "alpha", defs[1].Name)
	assert.Equal(t, "mike", defs[2].Name)
}
