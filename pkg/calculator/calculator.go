// Package calculator implements the calculator MCP server: arithmetic
// tools over a shared dispatch core.
package calculator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/karthik-ravi-1537/mcp-demo/internal/metrics"
	"github.com/karthik-ravi-1537/mcp-demo/pkg/mcpserver"
	"github.com/karthik-ravi-1537/mcp-demo/pkg/protocol"
)

// Options configures the calculator server.
type Options struct {
	Timeout time.Duration
	Logger  zerolog.Logger
	Metrics *metrics.Metrics
}

// New creates the calculator server with its full tool set registered.
func New(opts Options) (*mcpserver.Server, error) {
	srv, err := mcpserver.NewServer(mcpserver.Options{
		Name:        "calculator",
		Description: "Calculator operations",
		Timeout:     opts.Timeout,
		Logger:      opts.Logger,
		Metrics:     opts.Metrics,
	})
	if err != nil {
		return nil, err
	}

	tools := []struct {
		def     protocol.ToolDefinition
		handler mcpserver.ToolHandler
	}{
		{binaryDef("add", "Add two numbers", "addition"), binaryHandler(func(a, b float64) (interface{}, error) {
			return a + b, nil
		})},
		{binaryDef("subtract", "Subtract two numbers", "subtraction"), binaryHandler(func(a, b float64) (interface{}, error) {
			return a - b, nil
		})},
		{binaryDef("multiply", "Multiply two numbers", "multiplication"), binaryHandler(func(a, b float64) (interface{}, error) {
			return a * b, nil
		})},
		{binaryDef("divide", "Divide two numbers", "division"), binaryHandler(func(a, b float64) (interface{}, error) {
			if b == 0 {
				return nil, errors.New("division by zero")
			}
			return a / b, nil
		})},
		{powerDef(), powerHandler},
		{unaryDef("sqrt", "Calculate the square root of a number", "square root"), unaryHandler(func(x float64) (interface{}, error) {
			if x < 0 {
				return nil, errors.New("cannot calculate square root of a negative number")
			}
			return math.Sqrt(x), nil
		})},
		{unaryDef("abs", "Calculate the absolute value of a number", "absolute"), unaryHandler(func(x float64) (interface{}, error) {
			return math.Abs(x), nil
		})},
		{roundDef(), roundHandler},
		{factorialDef(), factorialHandler},
		{gcdDef(), gcdHandler},
	}

	for _, tool := range tools {
		if err := srv.RegisterTool(tool.def, tool.handler); err != nil {
			return nil, fmt.Errorf("failed to register tool %s: %w", tool.def.Name, err)
		}
	}

	return srv, nil
}

func binaryDef(name, description, tag string) protocol.ToolDefinition {
	return protocol.ToolDefinition{
		Name:        name,
		Description: description,
		Category:    "arithmetic",
		Tags:        []string{"math", tag},
		Parameters: []protocol.ToolParameter{
			{Name: "a", Type: protocol.TypeNumber, Description: "First number", Required: true},
			{Name: "b", Type: protocol.TypeNumber, Description: "Second number", Required: true},
		},
	}
}

func binaryHandler(fn func(a, b float64) (interface{}, error)) mcpserver.ToolHandler {
	return func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		a, err := toFloat(args["a"])
		if err != nil {
			return nil, err
		}
		b, err := toFloat(args["b"])
		if err != nil {
			return nil, err
		}
		return fn(a, b)
	}
}

func unaryDef(name, description, tag string) protocol.ToolDefinition {
	return protocol.ToolDefinition{
		Name:        name,
		Description: description,
		Category:    "arithmetic",
		Tags:        []string{"math", tag},
		Parameters: []protocol.ToolParameter{
			{Name: "x", Type: protocol.TypeNumber, Description: "Input number", Required: true},
		},
	}
}

func unaryHandler(fn func(x float64) (interface{}, error)) mcpserver.ToolHandler {
	return func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		x, err := toFloat(args["x"])
		if err != nil {
			return nil, err
		}
		return fn(x)
	}
}

func powerDef() protocol.ToolDefinition {
	return protocol.ToolDefinition{
		Name:        "power",
		Description: "Calculate the power of a number",
		Category:    "arithmetic",
		Tags:        []string{"math", "power"},
		Parameters: []protocol.ToolParameter{
			{Name: "base", Type: protocol.TypeNumber, Description: "Base number", Required: true},
			{Name: "exponent", Type: protocol.TypeNumber, Description: "Exponent", Required: true},
		},
	}
}

func powerHandler(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	base, err := toFloat(args["base"])
	if err != nil {
		return nil, err
	}
	exponent, err := toFloat(args["exponent"])
	if err != nil {
		return nil, err
	}
	return math.Pow(base, exponent), nil
}

func roundDef() protocol.ToolDefinition {
	return protocol.ToolDefinition{
		Name:        "round",
		Description: "Round a number to a specified number of decimal places",
		Category:    "arithmetic",
		Tags:        []string{"math", "rounding"},
		Parameters: []protocol.ToolParameter{
			{Name: "x", Type: protocol.TypeNumber, Description: "Number to round", Required: true},
			{Name: "decimals", Type: protocol.TypeInteger, Description: "Decimal places to round to", Required: false, Default: 0},
		},
	}
}

func roundHandler(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	x, err := toFloat(args["x"])
	if err != nil {
		return nil, err
	}
	decimals, err := toInt(args["decimals"])
	if err != nil {
		return nil, err
	}
	if decimals < 0 {
		return nil, errors.New("decimals must not be negative")
	}
	// Ties round to even, so round(0.5) is 0 and round(1.5) is 2.
	shift := math.Pow(10, float64(decimals))
	return math.RoundToEven(x*shift) / shift, nil
}

func factorialDef() protocol.ToolDefinition {
	return protocol.ToolDefinition{
		Name:        "factorial",
		Description: "Calculate the factorial of a number",
		Category:    "arithmetic",
		Tags:        []string{"math", "factorial"},
		Parameters: []protocol.ToolParameter{
			{Name: "n", Type: protocol.TypeInteger, Description: "Number to calculate the factorial of", Required: true},
		},
	}
}

func factorialHandler(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	n, err := toInt(args["n"])
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, errors.New("cannot calculate factorial of a negative number")
	}
	// 21! overflows int64.
	if n > 20 {
		return nil, fmt.Errorf("factorial of %d overflows", n)
	}

	result := int64(1)
	for i := int64(2); i <= int64(n); i++ {
		result *= i
	}
	return result, nil
}

func gcdDef() protocol.ToolDefinition {
	return protocol.ToolDefinition{
		Name:        "gcd",
		Description: "Calculate the greatest common divisor of two integers",
		Category:    "arithmetic",
		Tags:        []string{"math", "gcd"},
		Parameters: []protocol.ToolParameter{
			{Name: "a", Type: protocol.TypeInteger, Description: "First integer", Required: true},
			{Name: "b", Type: protocol.TypeInteger, Description: "Second integer", Required: true},
		},
	}
}

func gcdHandler(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	a, err := toInt(args["a"])
	if err != nil {
		return nil, err
	}
	b, err := toInt(args["b"])
	if err != nil {
		return nil, err
	}
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return int64(a), nil
}

func toFloat(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	return 0, fmt.Errorf("unexpected numeric type %T", value)
}

func toInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	}
	return 0, fmt.Errorf("unexpected integer type %T", value)
}
