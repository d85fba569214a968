package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/rentdoc/internal/config"
	"github.com/bryanwahyu/rentdoc/internal/logger"
)

var version = "dev"

type rootOptions struct {
	configPath string

	// stdout carries command output, logs go here
	logOut io.Writer
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{logOut: os.Stderr}
	cmd := &cobra.Command{
		Use:           "doccheck",
		Short:         "Score rental application documents",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	defaultPath := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", defaultPath, "path to config.yaml")

	cmd.AddCommand(newAnalyzeCmd(opts), newMCPCmd(opts), newMigrateCmd(opts))
	return cmd
}

func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if err := logger.InitTo(o.logOut, cfg.Log.Level, cfg.Log.File); err != nil {
		return nil, err
	}
	return cfg, nil
}
