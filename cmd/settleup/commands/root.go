package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mmynk/settleup/internal/config"
	"github.com/mmynk/settleup/internal/ledger"
	"github.com/mmynk/settleup/internal/storage/sqlite"
	"github.com/mmynk/settleup/pkg/logging"
)

// cli holds the dependencies built by the root command before a subcommand runs.
type cli struct {
	dbPath   string
	logLevel string

	store  *sqlite.SQLiteStore
	ledger *ledger.Ledger
}

func Execute() error {
	return run(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	c := &cli{}
	defer c.close()

	root := c.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "settleup",
		Short:         "Track shared expenses and settle group debts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if it exists (ignore error if not found)
			_ = godotenv.Load()
			cfg := config.Load()
			if c.dbPath == "" {
				c.dbPath = cfg.DBPath
			}
			logging.Setup(c.logLevel, logging.FormatText)

			store, err := sqlite.New(c.dbPath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			c.store = store
			c.ledger = ledger.New(store)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&c.dbPath, "db", "", "SQLite database path (default $DB_PATH or ./data/settleup.db)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		c.userCmd(),
		c.groupCmd(),
		c.expenseCmd(),
		c.balancesCmd(),
		c.suggestCmd(),
		c.settleCmd(),
		c.settlementsCmd(),
	)
	return root
}

func (c *cli) close() {
	if c.store != nil {
		_ = c.store.Close()
		c.store = nil
	}
}

// resolveUser accepts a user ID or an email address and returns the user ID.
func (c *cli) resolveUser(ctx context.Context, ref string) (string, error) {
	if strings.Contains(ref, "@") {
		user, err := c.ledger.GetUserByEmail(ctx, ref)
		if err != nil {
			return "", err
		}
		return user.ID, nil
	}
	user, err := c.ledger.GetUser(ctx, ref)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

func (c *cli) resolveUsers(ctx context.Context, refs []string) ([]string, error) {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		id, err := c.resolveUser(ctx, ref)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
