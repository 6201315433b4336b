package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	apihttp "github.com/zhangjie25/VideoBoard-Develop/internal/api/http"
	"github.com/zhangjie25/VideoBoard-Develop/internal/infrastructure/config"
	"github.com/zhangjie25/VideoBoard-Develop/internal/infrastructure/logging"
	"github.com/zhangjie25/VideoBoard-Develop/internal/server"
)

var (
	port       string
	host       string
	dev        bool
	logLevel   string
	paletteArg string
	idStrategy string
)

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Canvas editing server",
	Long: `Serve the node-graph canvas over HTTP and WebSocket.

Configuration comes from the environment; flags override it.`,
	SilenceUsage: true,
	RunE:         runServer,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the server version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), apihttp.Version)
	},
}

func init() {
	rootCmd.Flags().StringVar(&port, "port", "", "Server port (env PORT)")
	rootCmd.Flags().StringVar(&host, "host", "", "Listen host (env HOST)")
	rootCmd.Flags().BoolVar(&dev, "dev", false, "Development logging (env LOG_DEV)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (env LOG_LEVEL)")
	rootCmd.Flags().StringVar(&paletteArg, "palette", "", "Palette YAML file (env PALETTE_FILE)")
	rootCmd.Flags().StringVar(&idStrategy, "id-strategy", "", "timestamp or ulid (env ID_STRATEGY)")
	rootCmd.AddCommand(versionCmd)
}

// applyFlags overrides cfg with the flags given on the command line
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Server.Port = port
	}
	if flags.Changed("host") {
		cfg.Server.Host = host
	}
	if flags.Changed("dev") {
		cfg.Logging.Development = dev
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if flags.Changed("palette") {
		cfg.Palette.File = paletteArg
	}
	if flags.Changed("id-strategy") {
		cfg.Editor.IDStrategy = idStrategy
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)

	logger, err := logging.New(logging.FromConfig(cfg.Logging))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	srv, err := server.NewServer(cfg, logger)
	if err != nil {
		logger.Error("Failed to create server", zap.Error(err))
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
