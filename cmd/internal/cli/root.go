// Package cli holds the promptctl commands: backup, export, import, restore
// and seed against a running prompt API.
package cli

import (
	"context"
	"fmt"
	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"path/filepath"
	"promptlib/cmd/internal/config"
	"promptlib/cmd/internal/infrastructure/promptapi"
	"promptlib/cmd/internal/service/backup"
	"time"
)

const (
	healthAttempts = 3
	healthDelay    = 500 * time.Millisecond
)

type app struct {
	v        *viper.Viper
	cfgFile  string
	settings *config.Settings
}

// RootCommand builds the promptctl command tree. Every call returns an
// independent tree with its own configuration.
func RootCommand() *cobra.Command {
	a := &app{v: config.NewViper()}

	rootCmd := &cobra.Command{
		Use:          "promptctl",
		Short:        "Backup, restore and migration utilities for the prompt library",
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: ./promptlib.yaml)")
	flags.String("api-base", config.DefaultAPIBase, "prompt API base URL")
	flags.Duration("delay", 100*time.Millisecond, "pause between mutating requests")
	flags.Duration("timeout", 30*time.Second, "timeout of a single API request")
	flags.String("db", "./db.sqlite", "database file used by sql and sqlite exports")
	flags.String("log-level", "info", "log level: debug, info, warn or error")

	a.bind(flags, "api_base", "api-base")
	a.bind(flags, "request_delay", "delay")
	a.bind(flags, "request_timeout", "timeout")
	a.bind(flags, "db_path", "db")
	a.bind(flags, "log_level", "log-level")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := config.LoadEnv(); err != nil {
			return err
		}

		settings, err := config.Load(a.v, a.cfgFile)
		if err != nil {
			return err
		}
		a.settings = settings
		log.SetLevel(config.ParseLogLevel(settings.LogLevel))
		return nil
	}

	rootCmd.AddCommand(
		a.backupCommand(),
		a.exportCommand(),
		a.importCommand(),
		a.restoreCommand(),
		a.seedCommand(),
	)
	return rootCmd
}

// bind makes an explicitly set flag take precedence over env and file values.
func (a *app) bind(flags *pflag.FlagSet, key, name string) {
	if err := a.v.BindPFlag(key, flags.Lookup(name)); err != nil {
		panic(fmt.Sprintf("binding flag %s: %v", name, err))
	}
}

// connect builds the backup service against apiBase (or the configured base
// when empty) once the API answers its health probe.
func (a *app) connect(ctx context.Context, apiBase string) (*backup.Service, error) {
	if apiBase == "" {
		apiBase = a.settings.APIBase
	}

	client := promptapi.NewClient(apiBase, a.settings.RequestTimeout)
	log.Infof("checking prompt API at %s", client.BaseURL())
	if err := client.WaitHealthy(ctx, healthAttempts, healthDelay); err != nil {
		return nil, fmt.Errorf("prompt API at %s is not reachable: %w", client.BaseURL(), err)
	}

	return backup.NewService(client, a.settings.RequestDelay), nil
}

func (a *app) defaultBackupFile() string {
	return filepath.Join(a.settings.BackupDir, backup.LatestSnapshotName)
}
