package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/illmade-knight/go-docstore/pkg/docstore"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type storeOpener func(ctx context.Context, cfg *docstore.Config, logger zerolog.Logger) (*docstore.Store, error)

type managerOpener func(ctx context.Context, cfg *docstore.Config, logger zerolog.Logger) (*docstore.DatabaseManager, error)

// cli carries the state shared by all subcommands once the root pre-run has loaded it.
type cli struct {
	cfg         *docstore.Config
	logger      zerolog.Logger
	openStore   storeOpener
	openManager managerOpener
}

func newRootCmd(openStore storeOpener, openManager managerOpener) *cobra.Command {
	c := &cli{openStore: openStore, openManager: openManager}

	cmd := &cobra.Command{
		Use:           "docstore",
		Short:         "Read, write and delete Firestore documents",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.loadConfig(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "path to a YAML config file")
	flags.String("project", "", "Google Cloud project ID (overrides config and PROJECT_ID)")
	flags.String("database", "", "Firestore database ID")
	flags.String("credentials", "", "path to a service account key file")
	flags.String("credentials-secret", "", "Secret Manager secret holding a service account key")
	flags.String("emulator-host", "", "Firestore emulator host:port")
	flags.String("log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		c.newSetCmd(),
		c.newAddCmd(),
		c.newGetCmd(),
		c.newDeleteCmd(),
		c.newDropCmd(),
		c.newEnsureDatabaseCmd(),
		c.newVerifyDatabaseCmd(),
	)
	return cmd
}

// loadConfig reads the config file and environment, then applies explicitly set flags.
func (c *cli) loadConfig(cmd *cobra.Command) error {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")
	cfg, err := docstore.LoadConfig(path)
	if err != nil {
		return err
	}

	overrides := map[string]*string{
		"project":            &cfg.ProjectID,
		"database":           &cfg.Database.DatabaseID,
		"credentials":        &cfg.CredentialsFile,
		"credentials-secret": &cfg.CredentialsSecret,
		"emulator-host":      &cfg.EmulatorHost,
		"log-level":          &cfg.LogLevel,
	}
	for name, field := range overrides {
		if flags.Changed(name) {
			*field, _ = flags.GetString(name)
		}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		return fmt.Errorf("invalid log level '%s': %w", cfg.LogLevel, err)
	}
	c.logger = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).Level(level).With().Timestamp().Logger()
	c.cfg = cfg
	return nil
}

// withStore opens a store for the duration of fn.
func (c *cli) withStore(ctx context.Context, fn func(store *docstore.Store) error) error {
	store, err := c.openStore(ctx, c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			c.logger.Warn().Err(closeErr).Msg("Failed to close document store.")
		}
	}()
	return fn(store)
}
