package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cuemby/kiln/pkg/api"
	"github.com/cuemby/kiln/pkg/config"
	"github.com/cuemby/kiln/pkg/executor"
	"github.com/cuemby/kiln/pkg/log"
	"github.com/cuemby/kiln/pkg/runtime"
	"github.com/cuemby/kiln/pkg/sandbox"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "kiln",
	Short: "Kiln - sandboxed code execution engine",
	Long: `Kiln is a network-accessible code execution service: clients submit a
program naming a language runtime and version, and Kiln executes it inside a
tightly confined per-job environment, returning captured output, exit status,
timing, and memory usage.

Isolation uses a bubblewrap namespace jail plus per-process kernel resource
limits, with a security-degraded direct mode when bubblewrap is unavailable.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Kiln version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().String("config", "", "Path to YAML configuration file")
	rootCmd.PersistentFlags().String("packages-dir", "", "Runtime package root (overrides config)")

	serveCmd.Flags().String("host", "", "Bind address (overrides config)")
	serveCmd.Flags().Int("port", 0, "Bind port (overrides config)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runtimesCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the execution service",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		initLogging(cmd, cfg)
		logger := log.WithComponent("main")

		registry := runtime.NewRegistry(cfg.PackagesDir)
		builder := sandbox.NewBuilder(cfg)
		exec := executor.New(cfg, registry, builder)
		server := api.NewServer(cfg, exec, registry, builder)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Keep the runtimes enumeration warm; resolution always reads disk
		go func() {
			if err := registry.Watch(ctx); err != nil {
				logger.Warn().Err(err).Msg("package tree watcher stopped")
			}
		}()

		logger.Info().
			Str("version", Version).
			Str("packages_dir", cfg.PackagesDir).
			Str("mode", builder.ExecutionMode()).
			Msg("starting kiln")

		errCh := make(chan error, 1)
		go func() {
			if err := server.Start(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case sig := <-sigCh:
			logger.Info().Str("signal", sig.String()).Msg("shutting down")
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		return server.Shutdown(shutdownCtx)
	},
}

var runtimesCmd = &cobra.Command{
	Use:   "runtimes",
	Short: "List installed runtimes and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		initLogging(cmd, cfg)

		registry := runtime.NewRegistry(cfg.PackagesDir)
		installed := registry.ListAvailable()
		if len(installed) == 0 {
			fmt.Printf("No runtimes found under %s\n", cfg.PackagesDir)
			return nil
		}
		for _, in := range installed {
			fmt.Printf("%s-%s\n", in.Language, in.Version)
		}
		return nil
	},
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Host = host
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Port = port
	}
	if dir, _ := cmd.Flags().GetString("packages-dir"); dir != "" {
		cfg.PackagesDir = dir
	}
	return cfg, cfg.Validate()
}

func initLogging(cmd *cobra.Command, cfg *config.Config) {
	level := cfg.LogLevel
	if flagLevel, _ := cmd.Flags().GetString("log-level"); flagLevel != "" {
		level = flagLevel
	}
	logJSON := cfg.LogJSON
	if set, _ := cmd.Flags().GetBool("log-json"); set {
		logJSON = true
	}

	log.Init(log.Config{
		Level: level,
		Debug: cfg.Debug,
		JSON:  logJSON,
	})
}
