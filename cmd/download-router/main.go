package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"download-router/internal/bridge"
	"download-router/internal/companion"
	"download-router/internal/config"
	"download-router/internal/lifecycle"
	"download-router/internal/stats"
	"download-router/internal/store"
	"download-router/internal/watch"
	"download-router/internal/web"
	"download-router/internal/web/handlers"
	"download-router/pkg/models"
)

const version = "1.0.0"

func main() {
	rootCmd := &cobra.Command{
		Use:          "download-router",
		Short:        "Routes browser downloads to destination folders by rule",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(serveCmd(), rulesCmd(), statsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the routing daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	setupLogging(cfg.LogLevel)

	slog.Info("Starting download router", "version", version)

	st, err := store.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Error("Failed to close store", "error", err)
		}
	}()

	client := companion.New(cfg.CompanionURL)

	// Probe the helper once at startup; an absent helper degrades moves and
	// dialogs but never blocks routing
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if status, err := client.CheckInstalled(ctx, true); err != nil || !status.Installed {
		slog.Warn("Companion helper not reachable; moves and native dialogs are disabled until it starts", "error", err)
	} else {
		slog.Info("Companion helper connected", "version", status.Version, "platform", status.Platform)
	}
	cancel()

	registry := prometheus.NewRegistry()
	recorder := stats.NewRecorder(st, registry)

	br := bridge.New()
	queue := handlers.NewNotificationQueue()
	machine := lifecycle.NewMachine(st, client, br, br, queue, recorder, cfg.DownloadsDir)

	server := web.NewServer(machine, st, client, queue, br, cfg, registry)

	return runServer(server, machine, cfg)
}

func runServer(server *web.Server, machine *lifecycle.Machine, cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.WatchDownloads {
		watcher, err := watch.New(cfg.DownloadsDir, func(path string) {
			id, ok := machine.PendingByFilename(filepath.Base(path))
			if !ok {
				return
			}
			machine.DownloadChanged(ctx, id, "complete", path)
		})
		if err != nil {
			slog.Warn("Downloads watcher disabled", "dir", cfg.DownloadsDir, "error", err)
		} else {
			defer watcher.Close()
			go watcher.Run(ctx)
			slog.Info("Watching downloads directory", "dir", cfg.DownloadsDir)
		}
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed to start: %w", err)
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig.String())
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server gracefully: %w", err)
	}

	slog.Info("Server shutdown complete")
	return nil
}

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and edit routing rules",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print stored rules in evaluation order",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			rules, err := st.Rules()
			if err != nil {
				return fmt.Errorf("failed to list rules: %w", err)
			}

			if len(rules) == 0 {
				fmt.Println("no rules stored")
				return nil
			}
			for _, rule := range rules {
				state := "enabled"
				if !rule.Enabled {
					state = "disabled"
				}
				fmt.Printf("%-4d %-10s %-30s -> %-30s priority=%.2f %s\n",
					rule.ID, rule.Type, rule.Value, rule.Folder, rule.Priority, state)
			}
			return nil
		},
	})

	add := &cobra.Command{
		Use:   "add <domain|extension> <value> <folder>",
		Short: "Add or overwrite a routing rule",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ruleType := models.RuleType(args[0])
			if ruleType != models.RuleTypeDomain && ruleType != models.RuleTypeExtension {
				return fmt.Errorf("rule type must be domain or extension, got %q", args[0])
			}

			priority, err := cmd.Flags().GetFloat64("priority")
			if err != nil {
				return err
			}

			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.UpsertRule(models.Rule{
				Type:     ruleType,
				Value:    args[1],
				Folder:   args[2],
				Priority: priority,
				Enabled:  true,
			}); err != nil {
				return fmt.Errorf("failed to save rule: %w", err)
			}

			fmt.Printf("rule saved: %s %s -> %s\n", args[0], args[1], args[2])
			return nil
		},
	}
	add.Flags().Float64("priority", models.DefaultRulePriority, "evaluation priority, lower wins")
	cmd.AddCommand(add)

	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print download counters and recent activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			stats, err := st.Stats()
			if err != nil {
				return fmt.Errorf("failed to load stats: %w", err)
			}

			fmt.Printf("total downloads:  %d\n", stats.TotalDownloads)
			fmt.Printf("routed downloads: %d\n", stats.RoutedDownloads)
			if len(stats.RecentActivity) > 0 {
				fmt.Println("recent activity:")
				for _, entry := range stats.RecentActivity {
					marker := " "
					if entry.Routed {
						marker = "*"
					}
					fmt.Printf("  %s %s %s -> %s\n",
						marker, entry.Timestamp.Format(time.RFC3339), entry.Filename, entry.FilePath)
				}
			}
			return nil
		},
	}
}

func openStore() (*store.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	st, err := store.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return st, nil
}

// setupLogging configures structured logging based on the log level
func setupLogging(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))
}
