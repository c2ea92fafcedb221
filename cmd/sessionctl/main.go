package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/propdesk/propdesk/config"
	"github.com/propdesk/propdesk/internal/core/session"
	"github.com/propdesk/propdesk/internal/storage/postgres"
)

// opener connects to the session database.
type opener func(ctx context.Context, cfg *config.Config) (*postgres.Client, error)

// dbRunner runs fn against a connection that is closed afterwards.
type dbRunner func(cmd *cobra.Command, fn func(cfg *config.Config, db *postgres.Client) error) error

func main() {
	if err := newRootCmd(connect).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(open opener) *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:           "sessionctl",
		Short:         "Manage the Postgres session store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "path to the .env file")

	var withDB dbRunner = func(cmd *cobra.Command, fn func(cfg *config.Config, db *postgres.Client) error) error {
		cfg := config.Load(envFile)
		db, err := open(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		return fn(cfg, db)
	}

	rootCmd.AddCommand(
		migrateCmd(withDB),
		dropCmd(withDB),
		purgeCmd(withDB),
		showCmd(withDB),
	)
	return rootCmd
}

func connect(ctx context.Context, cfg *config.Config) (*postgres.Client, error) {
	db, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func migrateCmd(withDB dbRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the session_entries table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(_ *config.Config, db *postgres.Client) error {
				if err := db.Migrate(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Session schema is up to date.")
				return nil
			})
		},
	}
}

func dropCmd(withDB dbRunner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drop",
		Short: "Drop the session_entries table, signing everyone out",
		RunE: func(cmd *cobra.Command, args []string) error {
			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				return errors.New("refusing to drop sessions without --yes")
			}
			return withDB(cmd, func(_ *config.Config, db *postgres.Client) error {
				if err := db.DropSchema(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Session schema dropped.")
				return nil
			})
		},
	}
	cmd.Flags().Bool("yes", false, "confirm the drop")
	return cmd
}

func purgeCmd(withDB dbRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete sessions older than SESSION_EXPIRATION",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(cfg *config.Config, db *postgres.Client) error {
				n, err := session.NewPostgresStore(db, cfg.Session.ExpirationDuration()).Purge(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Purged %d session entries.\n", n)
				return nil
			})
		},
	}
}

func showCmd(withDB dbRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Print who a session belongs to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(cfg *config.Config, db *postgres.Client) error {
				v, err := session.NewPostgresStore(db, cfg.Session.ExpirationDuration()).Load(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if !v.LoggedIn() {
					fmt.Fprintln(out, "No signed-in user for this session.")
					return nil
				}
				fmt.Fprintf(out, "name:  %s\nemail: %s\n", v.Name, v.Email)
				return nil
			})
		},
	}
}
