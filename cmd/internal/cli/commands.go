package cli

import (
	"fmt"
	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
	"promptlib/cmd/internal/domain/seed"
	"promptlib/cmd/internal/domain/sqlite"
	"promptlib/cmd/internal/infrastructure/aws/storage"
	"promptlib/cmd/internal/service/backup"
)

func (a *app) backupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a timestamped snapshot of every prompt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.connect(ctx, "")
			if err != nil {
				return err
			}

			if a.settings.S3Bucket != "" {
				uploader, err := storage.NewStorageClient(ctx, a.settings.S3Bucket, a.settings.S3Region)
				if err != nil {
					return fmt.Errorf("failed to create S3 client: %w", err)
				}
				svc.Uploader = uploader
			}

			result, err := svc.Backup(ctx, a.settings.BackupDir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Backed up %d prompts\n", result.Total)
			fmt.Fprintf(out, "Snapshot: %s\n", result.Path)
			fmt.Fprintf(out, "Latest:   %s\n", result.LatestPath)
			if result.RemoteKey != "" {
				fmt.Fprintf(out, "Uploaded: s3://%s/%s\n", a.settings.S3Bucket, result.RemoteKey)
			}
			return nil
		},
	}

	cmd.Flags().String("dir", "./backups", "directory the snapshot is written to")
	cmd.Flags().String("s3-bucket", "", "also upload the snapshot to this S3 bucket")
	a.bind(cmd.Flags(), "backup_dir", "dir")
	a.bind(cmd.Flags(), "s3_bucket", "s3-bucket")
	return cmd
}

func (a *app) exportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export [format] [output] [apiBase]",
		Short: "Export prompts as json, sql, sqlite or all of them",
		Args:  cobra.MaximumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := backup.ParseFormat(argAt(args, 0))
			if err != nil {
				return err
			}
			opts := backup.ExportOptions{Format: format, Output: argAt(args, 1)}

			ctx := cmd.Context()
			var svc *backup.Service
			if format == backup.FormatJSON || format == backup.FormatAll {
				if svc, err = a.connect(ctx, argAt(args, 2)); err != nil {
					return err
				}
			} else {
				svc = backup.NewService(nil, a.settings.RequestDelay)
			}

			if format != backup.FormatJSON {
				db, err := sqlite.Init(a.settings.DBPath)
				if err != nil {
					return fmt.Errorf("failed to open database %s: %w", a.settings.DBPath, err)
				}
				defer sqlite.Close(db)
				opts.DB = db
			}

			written, err := svc.Export(ctx, opts)
			for _, path := range written {
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %s\n", path)
			}
			return err
		},
	}
}

func (a *app) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <jsonFile> [apiBase]",
		Short: "Create every prompt found in an export or snapshot file",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.connect(ctx, argAt(args, 1))
			if err != nil {
				return err
			}

			summary, err := svc.Import(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported: %d\nFailed:   %d\n", summary.Imported, summary.Failed)
			return nil
		},
	}
}

func (a *app) restoreCommand() *cobra.Command {
	var opts backup.RestoreOptions

	cmd := &cobra.Command{
		Use:   "restore [backupFile]",
		Short: "Restore prompts from a snapshot file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := argAt(args, 0)
			if path == "" {
				path = a.defaultBackupFile()
			}

			ctx := cmd.Context()
			svc, err := a.connect(ctx, "")
			if err != nil {
				return err
			}

			log.Infof("restoring from %s", path)
			summary, err := svc.Restore(ctx, path, opts)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Restored: %d\nSkipped:  %d\nFailed:   %d\n",
				summary.Restored, summary.Skipped, summary.Failed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.SkipExisting, "skip-existing", false, "skip prompts whose title already exists")
	cmd.Flags().BoolVar(&opts.ClearFirst, "clear-first", false, "delete every unlocked prompt before restoring")
	return cmd
}

func (a *app) seedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Add the built-in prompt catalog, skipping titles that already exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := seed.Catalog()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			svc, err := a.connect(ctx, "")
			if err != nil {
				return err
			}

			summary, err := svc.Seed(ctx, entries)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added:   %d\nSkipped: %d\nFailed:  %d\n",
				summary.Restored, summary.Skipped, summary.Failed)
			return nil
		},
	}
}

func argAt(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
