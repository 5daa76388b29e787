package mcpserver

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/karthik-ravi-1537/mcp-demo/internal/metrics"
	"github.com/karthik-ravi-1537/mcp-demo/pkg/protocol"
)

const defaultTimeout = 30 * time.Second

// Dispatcher resolves tool calls against a registry, validates their
// arguments and runs the handler inside a failure boundary. Every call
// produces exactly one response; lookup failures, validation failures,
// handler errors, panics and timeouts all come back as tool_error
// messages and never escape Dispatch.
type Dispatcher struct {
	registry   *Registry
	serverName string
	timeout    time.Duration
	logger     zerolog.Logger
	metrics    *metrics.Metrics
}

// NewDispatcher creates a dispatcher over the given registry.
func NewDispatcher(registry *Registry, serverName string, timeout time.Duration, logger zerolog.Logger, m *metrics.Metrics) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Dispatcher{
		registry:   registry,
		serverName: serverName,
		timeout:    timeout,
		logger:     logger,
		metrics:    m,
	}
}

// Dispatch executes a tool call and returns its response message.
func (d *Dispatcher) Dispatch(ctx context.Context, call protocol.ToolCall) protocol.Message {
	startTime := time.Now()

	callID := call.CallID
	if callID == "" {
		callID = uuid.NewString()
	}

	entry, err := d.registry.Lookup(call.ToolName)
	if err != nil {
		d.logger.Warn().Str("tool", call.ToolName).Msg("Tool not found")
		return d.errorResponse(call.ToolName, callID, startTime, err)
	}

	args, err := validateWithSchema(entry.schema, entry.def, call.Arguments)
	if err != nil {
		d.logger.Warn().Str("tool", call.ToolName).Err(err).Msg("Argument validation failed")
		return d.errorResponse(call.ToolName, callID, startTime, err)
	}

	d.logger.Debug().Str("tool", call.ToolName).Str("call_id", callID).Msg("Executing tool")

	result, err := d.invoke(ctx, entry, args)
	if err != nil {
		d.logger.Error().Str("tool", call.ToolName).Err(err).Msg("Tool execution failed")
		return d.errorResponse(call.ToolName, callID, startTime, err)
	}

	duration := time.Since(startTime)
	d.logger.Debug().Str("tool", call.ToolName).Dur("duration", duration).Msg("Tool execution completed")
	if d.metrics != nil {
		d.metrics.ObserveToolCall(d.serverName, call.ToolName, "success", duration)
	}

	return protocol.NewToolResult(callID, result)
}

// invoke runs the handler with a timeout. Panics inside the handler are
// downgraded to execution errors.
func (d *Dispatcher) invoke(ctx context.Context, entry *registryEntry, args map[string]interface{}) (interface{}, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	resultChan := make(chan interface{}, 1)
	errChan := make(chan error, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				errChan <- executionError(fmt.Sprintf("tool panicked: %v", r))
			}
		}()

		result, err := entry.handler(timeoutCtx, args)
		if err != nil {
			errChan <- err
		} else {
			resultChan <- result
		}
	}()

	select {
	case result := <-resultChan:
		return result, nil
	case err := <-errChan:
		return nil, err
	case <-timeoutCtx.Done():
		return nil, executionError(fmt.Sprintf("tool execution timeout after %v", d.timeout))
	}
}

func (d *Dispatcher) errorResponse(toolName, callID string, startTime time.Time, err error) protocol.ToolError {
	kind := KindOf(err)
	if d.metrics != nil {
		d.metrics.ObserveToolCall(d.serverName, toolName, "error", time.Since(startTime))
		d.metrics.CountToolError(d.serverName, toolName, kind)
	}
	return protocol.NewToolError(callID, kind, err.Error())
}
