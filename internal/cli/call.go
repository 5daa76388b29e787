package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/karthik-ravi-1537/mcp-demo/internal/config"
	"github.com/karthik-ravi-1537/mcp-demo/pkg/protocol"
)

var callCmd = &cobra.Command{
	Use:   "call <server> <tool> [json-args]",
	Short: "Invoke a tool once and print the result",
	Long: `Invoke a single tool without starting the gateway. Arguments are
passed as a JSON object, for example:

  mcp-demo call calculator add '{"a": 2, "b": 3}'`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runCall,
}

func init() {
	rootCmd.AddCommand(callCmd)
}

func runCall(cmd *cobra.Command, args []string) error {
	cfg, err := config.NewLoader(cfgFile).Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	serverName, toolName := args[0], args[1]
	callArgs := map[string]interface{}{}
	if len(args) == 3 {
		if err := json.Unmarshal([]byte(args[2]), &callArgs); err != nil {
			return fmt.Errorf("invalid JSON arguments: %w", err)
		}
	}

	servers, err := buildServers(cfg)
	if err != nil {
		return err
	}

	for _, srv := range servers {
		if srv.Name() != serverName {
			continue
		}

		resp := srv.Handle(context.Background(), protocol.NewToolCall(toolName, callArgs))
		out, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode response: %w", err)
		}
		fmt.Println(string(out))

		if _, ok := resp.(protocol.ToolError); ok {
			os.Exit(1)
		}
		return nil
	}

	return fmt.Errorf("unknown server %q", serverName)
}
