package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"kesef/internal/cli"
	"kesef/internal/log"
	"kesef/internal/storage"
)

// app is the state shared by every subcommand. Settings resolve from
// flags, then KESEF_* or the server's own environment variables, then an
// optional config file.
type app struct {
	v      *viper.Viper
	logger *log.Logger
	repo   *storage.SQLiteRepository
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "kesefctl",
		Short:         "Administer a kesef database",
		Long:          "kesefctl seeds demo data, prints budget summaries, dry-runs outlier detection and manages admins against the SQLite store the kesef server uses.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (toml, yaml or json)")
	flags.String("db", "./data/kesef.db", "SQLite database path")
	flags.String("log-level", "warn", "log level: debug, info, warn or error")
	_ = a.v.BindPFlag("config", flags.Lookup("config"))
	_ = a.v.BindPFlag("db", flags.Lookup("db"))
	_ = a.v.BindPFlag("log_level", flags.Lookup("log-level"))

	a.v.SetEnvPrefix("KESEF")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	_ = a.v.BindEnv("db", "KESEF_DB", "SQLITE_DB_PATH")
	_ = a.v.BindEnv("log_level", "KESEF_LOG_LEVEL", "LOG_LEVEL")

	root.AddCommand(
		newSeedCmd(a),
		newSummaryCmd(a),
		newDetectCmd(a),
		newMakeAdminCmd(a),
	)
	return root
}

func (a *app) open(ctx context.Context) error {
	cli.LoadEnvFile()
	if path := a.v.GetString("config"); path != "" {
		a.v.SetConfigFile(path)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	a.logger = cli.SetupLogger(log.ComponentCLI, a.v.GetString("log_level"))

	dbPath := a.v.GetString("db")
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", dbPath, err)
	}
	a.repo = repo
	a.logger.Debug("Opened database", "db_path", dbPath)
	return nil
}

func (a *app) close() error {
	if a.repo == nil {
		return nil
	}
	err := a.repo.Close()
	a.repo = nil
	return err
}

func (a *app) ctx(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return log.NewContext(ctx, a.logger)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
