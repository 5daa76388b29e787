package cli

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/karthik-ravi-1537/mcp-demo/internal/config"
	"github.com/karthik-ravi-1537/mcp-demo/pkg/calculator"
	"github.com/karthik-ravi-1537/mcp-demo/pkg/fileserver"
	"github.com/karthik-ravi-1537/mcp-demo/pkg/mcpserver"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools exposed by each enabled server",
	RunE:  runTools,
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}

// buildServers constructs every enabled tool server without a gateway,
// for one-shot commands.
func buildServers(cfg *config.Config) ([]*mcpserver.Server, error) {
	zl := zerolog.Nop()

	var servers []*mcpserver.Server

	if cfg.Calculator.Enabled {
		calc, err := calculator.New(calculator.Options{Logger: zl})
		if err != nil {
			return nil, err
		}
		servers = append(servers, calc)
	}

	if cfg.FileServer.Enabled {
		fs, err := fileserver.New(fileserver.Options{Root: cfg.FileServer.Root, Logger: zl})
		if err != nil {
			return nil, err
		}
		servers = append(servers, fs)
	}

	return servers, nil
}

func runTools(cmd *cobra.Command, args []string) error {
	cfg, err := config.NewLoader(cfgFile).Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	servers, err := buildServers(cfg)
	if err != nil {
		return err
	}
	if len(servers) == 0 {
		fmt.Println("No servers enabled")
		return nil
	}

	for _, srv := range servers {
		fmt.Printf("%s - %s\n", srv.Name(), srv.Description())
		for _, def := range srv.Describe() {
			var params []string
			for _, p := range def.Parameters {
				if p.Required {
					params = append(params, fmt.Sprintf("%s: %s", p.Name, p.Type))
				} else {
					params = append(params, fmt.Sprintf("[%s: %s]", p.Name, p.Type))
				}
			}
			fmt.Printf("  %s(%s)\n      %s\n", def.Name, strings.Join(params, ", "), def.Description)
		}
		fmt.Println()
	}

	return nil
}
