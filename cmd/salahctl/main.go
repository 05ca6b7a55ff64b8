// Package main provides salahctl, the operator CLI for the salah tracker:
// schema migrations, SQLite backup and restore, and prayer-time lookups.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	dbfs "github.com/garnizeh/salah/db"
	"github.com/garnizeh/salah/internal/config"
	"github.com/garnizeh/salah/internal/db"
	"github.com/garnizeh/salah/internal/prayertime"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "salahctl",
		Short:         "Operate the salah prayer tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")

	load := func() (*config.Config, error) {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}

	cmd.AddCommand(
		migrateCmd(load),
		backupCmd(load),
		restoreCmd(load),
		timesCmd(load),
		nextCmd(load),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "salahctl version %s (build: %s)\n", version, buildTime)
			},
		},
	)
	return cmd
}

type loader func() (*config.Config, error)

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level, _ := config.ParseLevel(cfg.LogLevel)
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func migrateCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			conn, err := db.New(ctx, cfg.Database.Driver, cfg.Database.DSN, newLogger(cfg, cmd.ErrOrStderr()))
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer conn.Close()

			if err := db.Migrate(ctx, conn, dbfs.Migrations); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database migrated.")
			return nil
		},
	}
}

// sqliteFile extracts the file path from a SQLite DSN such as
// "file:salah.db?_pragma=...".
func sqliteFile(dsn string) (string, error) {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" || strings.Contains(dsn, "mode=memory") {
		return "", fmt.Errorf("dsn %q is not a database file", dsn)
	}
	return path, nil
}

func backupCmd(load loader) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a consistent copy of the SQLite database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if cfg.Database.Driver != db.DriverSQLite {
				return fmt.Errorf("backup supports the sqlite driver only; use pg_dump for postgres")
			}
			src, err := sqliteFile(cfg.Database.DSN)
			if err != nil {
				return err
			}
			if out == "" {
				out = src + ".bak"
			}

			ctx := cmd.Context()
			conn, err := db.New(ctx, cfg.Database.Driver, cfg.Database.DSN, newLogger(cfg, cmd.ErrOrStderr()))
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer conn.Close()

			if err := backupSQLite(ctx, conn, out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Database backup written to %s.\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Backup file (default <db>.bak)")
	return cmd
}

// backupSQLite snapshots the live database with VACUUM INTO, which is safe
// while the server keeps writing. dst must not exist.
func backupSQLite(ctx context.Context, conn *db.DB, dst string) error {
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("backup target %s already exists", dst)
	}
	if _, err := conn.Exec(ctx, "VACUUM INTO ?", dst); err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	return nil
}

func restoreCmd(load loader) *cobra.Command {
	var in string
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Replace the SQLite database with a backup; stop the server first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if cfg.Database.Driver != db.DriverSQLite {
				return fmt.Errorf("restore supports the sqlite driver only; use pg_restore for postgres")
			}
			dst, err := sqliteFile(cfg.Database.DSN)
			if err != nil {
				return err
			}
			if in == "" {
				in = dst + ".bak"
			}
			if err := copyFile(in, dst); err != nil {
				return fmt.Errorf("restore: %w", err)
			}
			// stale journal files would be replayed over the restored copy
			for _, suffix := range []string{"-wal", "-shm", "-journal"} {
				if err := os.Remove(dst + suffix); err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("restore: %w", err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Database restored from %s.\n", in)
			return nil
		},
	}
	cmd.Flags().StringVarP(&in, "in", "i", "", "Backup file (default <db>.bak)")
	return cmd
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	tmp := dst + ".restore"
	dstFile, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		os.Remove(tmp)
		return err
	}
	if err := dstFile.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}

func calculator(cfg *config.Config) *prayertime.Calculator {
	return prayertime.New(prayertime.Location{
		Latitude:  cfg.Location.Latitude,
		Longitude: cfg.Location.Longitude,
		Zone:      cfg.TimeZone(),
	}, prayertime.MuslimWorldLeague, prayertime.Hanafi)
}

func timesCmd(load loader) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "times",
		Short: "Print the prayer schedule for a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			calc := calculator(cfg)

			day := time.Now()
			if date != "" {
				day, err = time.ParseInLocation(time.DateOnly, date, calc.Zone())
				if err != nil {
					return fmt.Errorf("date must be yyyy-mm-dd: %w", err)
				}
			}
			printTimes(cmd.OutOrStdout(), calc, calc.DailyTimes(day))
			return nil
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "", "Date yyyy-mm-dd (default today)")
	return cmd
}

func printTimes(w io.Writer, calc *prayertime.Calculator, times prayertime.Times) {
	fmt.Fprintf(w, "%s (%s)\n", times.Date, calc.Zone())
	for _, in := range times.Ordered() {
		fmt.Fprintf(w, "  %-8s %s\n", in.Label, calc.Format(in.At))
	}
}

func nextCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Print the next prayer and the time left until it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			calc := calculator(cfg)
			printNext(cmd.OutOrStdout(), calc, calc.NextPrayer(time.Now()))
			return nil
		},
	}
}

func printNext(w io.Writer, calc *prayertime.Calculator, next prayertime.Next) {
	fmt.Fprintf(w, "%s at %s, in %s\n", next.Label, calc.Format(next.At), next.Remaining.Truncate(time.Second))
}
