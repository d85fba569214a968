package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"github.com/bryanwahyu/rentdoc/internal/logger"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:       "migrate <up|down|version|force N>",
		Short:     "Apply the analyses schema to the configured database",
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: []string{"up", "down", "version", "force"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			dbURL, err := cfg.MigrationURL()
			if err != nil {
				return err
			}
			path, err := filepath.Abs(filepath.Join(dir, cfg.Database.Driver))
			if err != nil {
				return err
			}
			logger.Log.Infof("migrations path: %s", path)

			m, err := migrate.New("file://"+filepath.ToSlash(path), dbURL)
			if err != nil {
				return fmt.Errorf("failed to create migration instance: %w", err)
			}
			defer m.Close()

			switch args[0] {
			case "up":
				err = m.Up()
			case "down":
				err = m.Down()
			case "version":
				v, dirty, verr := m.Version()
				if verr != nil {
					return fmt.Errorf("failed to get version: %w", verr)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %v)\n", v, dirty)
				return nil
			case "force":
				if len(args) < 2 {
					return errors.New("force requires a version number")
				}
				v, perr := strconv.Atoi(args[1])
				if perr != nil {
					return fmt.Errorf("invalid version number: %w", perr)
				}
				return m.Force(v)
			default:
				return fmt.Errorf("unknown command: %s (use: up, down, version, force)", args[0])
			}

			if errors.Is(err, migrate.ErrNoChange) {
				logger.Log.Info("no migrations to run (database is up to date)")
				return nil
			}
			if err != nil {
				return fmt.Errorf("migrate %s: %w", args[0], err)
			}
			logger.Log.Infof("migrate %s completed", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "migrations", "directory holding one sub-directory per driver")
	return cmd
}
