// Package cli defines the minewatch command tree.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/khanijo/minewatch/internal/app"
	"github.com/khanijo/minewatch/internal/config"
	"github.com/khanijo/minewatch/internal/store"
)

const version = "0.1.0"

func NewRoot(logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "minewatch",
		Short: "Minewatch is a mining-incident dashboard backend",
	}

	root.AddCommand(newServeCommand(logger))
	root.AddCommand(newAskCommand(logger))
	root.AddCommand(newIngestCommand(logger))
	root.AddCommand(newVersionCommand())

	return root
}

func newServeCommand(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and ingestion watchers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			runtime, err := app.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer runtime.Close()
			return runtime.Run(ctx)
		},
	}
}

func newAskCommand(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer one question against the incident database and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			runtime, err := app.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer runtime.Close()

			answer, err := runtime.Ask(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			cmd.Println(answer)
			return nil
		},
	}
}

func newIngestCommand(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest [incident.json...]",
		Short: "Insert incident JSON files into the database",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()
			if !cfg.PersistenceEnabled() {
				return fmt.Errorf("persistence is disabled, nothing to ingest into")
			}

			sqlStore, err := store.New(cfg.DBPath)
			if err != nil {
				return err
			}
			defer sqlStore.Close()
			ctx := cmd.Context()
			if err := sqlStore.AutoMigrate(ctx); err != nil {
				return err
			}

			for _, path := range args {
				raw, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				var input store.InsertIncidentInput
				if err := json.Unmarshal(raw, &input); err != nil {
					return fmt.Errorf("decode %s: %w", path, err)
				}
				incident, err := sqlStore.InsertIncident(ctx, input)
				if err != nil {
					return fmt.Errorf("insert %s: %w", path, err)
				}
				logger.Info("incident ingested", "path", path, "incident_id", incident.ID)
			}
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print CLI version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version)
		},
	}
}
