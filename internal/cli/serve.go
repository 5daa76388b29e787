package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/karthik-ravi-1537/mcp-demo/internal/config"
	"github.com/karthik-ravi-1537/mcp-demo/internal/logger"
	"github.com/karthik-ravi-1537/mcp-demo/internal/metrics"
	"github.com/karthik-ravi-1537/mcp-demo/internal/tutorial"
	"github.com/karthik-ravi-1537/mcp-demo/pkg/calculator"
	"github.com/karthik-ravi-1537/mcp-demo/pkg/fileserver"
	"github.com/karthik-ravi-1537/mcp-demo/pkg/gateway"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the tool server gateway",
	Long: `Run the WebSocket gateway in the foreground, hosting every
enabled tool server. Stops cleanly on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.NewLoader(cfgFile).Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = logLevel
	}

	lg, err := logger.New(logger.Config{
		Level:   cfg.Logging.Level,
		File:    cfg.Logging.File,
		Console: cfg.Logging.Console,
		Pretty:  cfg.Logging.Pretty,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer lg.Close()
	zl := lg.GetZerolog()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.NewMetrics()
	}

	gw, err := gateway.NewServer(gateway.Config{
		Host:              cfg.Gateway.Host,
		Port:              cfg.Gateway.Port,
		HeartbeatInterval: time.Duration(cfg.Gateway.HeartbeatInterval) * time.Second,
		Logger:            zl,
		Metrics:           m,
	})
	if err != nil {
		return fmt.Errorf("failed to create gateway: %w", err)
	}

	toolTimeout := time.Duration(cfg.Gateway.ToolTimeout) * time.Second

	if cfg.Calculator.Enabled {
		calc, err := calculator.New(calculator.Options{
			Timeout: toolTimeout,
			Logger:  zl,
			Metrics: m,
		})
		if err != nil {
			return fmt.Errorf("failed to create calculator server: %w", err)
		}
		if err := gw.Mount(calc); err != nil {
			return err
		}
	}

	if cfg.FileServer.Enabled {
		fs, err := fileserver.New(fileserver.Options{
			Root:    cfg.FileServer.Root,
			Timeout: toolTimeout,
			Logger:  zl,
			Metrics: m,
		})
		if err != nil {
			return fmt.Errorf("failed to create file server: %w", err)
		}
		if err := gw.Mount(fs); err != nil {
			return err
		}
	}

	if cfg.Tutorials.Enabled {
		store, err := tutorial.Open(cfg.Tutorials.DBPath, zl)
		if err != nil {
			return fmt.Errorf("failed to open tutorial store: %w", err)
		}
		defer store.Close()

		loader, err := tutorial.NewContentLoader(cfg.Tutorials.ContentDir, store, zl)
		if err != nil {
			return fmt.Errorf("failed to create content loader: %w", err)
		}
		if _, err := loader.Load(); err != nil {
			return fmt.Errorf("failed to load tutorial content: %w", err)
		}
		if err := loader.Watch(); err != nil {
			return fmt.Errorf("failed to watch tutorial content: %w", err)
		}
		defer loader.Stop()
	}

	if err := gw.Start(); err != nil {
		return fmt.Errorf("failed to start gateway: %w", err)
	}

	zl.Info().
		Str("host", cfg.Gateway.Host).
		Int("port", cfg.Gateway.Port).
		Msg("Gateway running, press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	zl.Info().Str("signal", sig.String()).Msg("Shutting down")
	return gw.Stop()
}
