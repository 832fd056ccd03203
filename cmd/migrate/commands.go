package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yungbote/infobase-backend/internal/app"
	kbdb "github.com/yungbote/infobase-backend/internal/data/db"
	"github.com/yungbote/infobase-backend/internal/platform/logger"
)

type options struct {
	driver string
	dsn    string
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply, revert and inspect infobase schema migrations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&opts.driver, "driver", "", "database driver (postgres|sqlite); overrides DB_DRIVER")
	root.PersistentFlags().StringVar(&opts.dsn, "dsn", "", "database DSN or SQLite path; overrides DATABASE_URL")

	root.AddCommand(newUpCmd(opts), newDownCmd(opts), newStatusCmd(opts))
	return root
}

// --- up ---

func newUpCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), opts, func(m *kbdb.Migrator) error {
				applied, err := m.Up(cmd.Context())
				for _, mig := range applied {
					fmt.Fprintf(cmd.OutOrStdout(), "applied %04d_%s\n", mig.Version, mig.Name)
				}
				if err != nil {
					return err
				}
				if len(applied) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "nothing to apply")
				}
				return nil
			})
		},
	}
}

// --- down ---

func newDownCmd(opts *options) *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Revert the most recently applied migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps < 1 {
				return fmt.Errorf("--steps must be at least 1")
			}
			return withMigrator(cmd.Context(), opts, func(m *kbdb.Migrator) error {
				for i := 0; i < steps; i++ {
					mig, err := m.Down(cmd.Context())
					if err != nil {
						return err
					}
					if mig == nil {
						fmt.Fprintln(cmd.OutOrStdout(), "nothing to revert")
						return nil
					}
					fmt.Fprintf(cmd.OutOrStdout(), "reverted %04d_%s\n", mig.Version, mig.Name)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to revert")
	return cmd
}

// --- status ---

func newStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List migrations and whether each is applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), opts, func(m *kbdb.Migrator) error {
				st, err := m.Status(cmd.Context())
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "VERSION\tNAME\tSTATE\tAPPLIED AT")
				for _, s := range st {
					state, at := "pending", "-"
					if s.Applied {
						state = "applied"
						if s.AppliedAt != nil {
							at = s.AppliedAt.UTC().Format("2006-01-02 15:04:05")
						}
					}
					fmt.Fprintf(tw, "%04d\t%s\t%s\t%s\n", s.Version, s.Name, state, at)
				}
				return tw.Flush()
			})
		},
	}
}

func withMigrator(ctx context.Context, opts *options, fn func(m *kbdb.Migrator) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := app.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	svc, err := kbdb.NewService(log, migrationDBConfig(cfg, opts))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer svc.Close()

	m, err := kbdb.NewMigrator(svc.DB(), log)
	if err != nil {
		return err
	}
	return fn(m)
}

// migrationDBConfig applies the flag overrides. Switching drivers drops the
// configured DATABASE_URL, so --driver sqlite without --dsn opens SQLITE_PATH.
func migrationDBConfig(cfg app.Config, opts *options) kbdb.Config {
	if opts.driver != "" && opts.driver != cfg.Database.Driver {
		cfg.Database.Driver = opts.driver
		cfg.Database.URL = ""
	}
	dbCfg := cfg.DBConfig()
	if opts.dsn != "" {
		dbCfg.DSN = opts.dsn
	}
	return dbCfg
}
