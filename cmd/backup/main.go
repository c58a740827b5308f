package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"languagecoach/internal/config"
	"languagecoach/internal/database"
	"languagecoach/internal/logging"
	"languagecoach/internal/repository"
	"languagecoach/internal/service"
)

const (
	exportOutputKey = "backup.export.output"
	importInputKey  = "backup.import.input"
)

func main() {
	if err := newRootCmd(viper.New()).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	root := &cobra.Command{
		Use:           "backup",
		Short:         "Export or restore language coach progress",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().String("database-type", "", "database type: sqlite, postgres or mysql")
	root.PersistentFlags().String("db-path", "", "SQLite database file")
	root.PersistentFlags().String("database-url", "", "PostgreSQL or MySQL connection URL")
	bindFlagToViper(v, "DATABASE_TYPE", root.PersistentFlags().Lookup("database-type"))
	bindFlagToViper(v, "DB_PATH", root.PersistentFlags().Lookup("db-path"))
	bindFlagToViper(v, "DATABASE_URL", root.PersistentFlags().Lookup("database-url"))

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write all progress to a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			backupService, closeDB, err := openBackupService(cmd, v)
			if err != nil {
				return err
			}
			defer closeDB()

			outputPath := v.GetString(exportOutputKey)
			if outputPath == "" {
				outputPath = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
			}
			if outputPath == "-" {
				return backupService.ExportToWriter(cmd.Context(), cmd.OutOrStdout())
			}

			// Ensure directory exists
			if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
			}
			if err := backupService.Export(cmd.Context(), outputPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", outputPath)
			return nil
		},
	}
	exportCmd.Flags().StringP("output", "o", "", "output file, - for stdout (default: backup_YYYYMMDD_HHMMSS.json)")
	bindFlagToViper(v, exportOutputKey, exportCmd.Flags().Lookup("output"))

	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Replace all progress with a JSON backup",
		RunE: func(cmd *cobra.Command, args []string) error {
			inputPath := v.GetString(importInputKey)
			if inputPath == "" {
				return fmt.Errorf("--input is required")
			}

			backupService, closeDB, err := openBackupService(cmd, v)
			if err != nil {
				return err
			}
			defer closeDB()

			if inputPath == "-" {
				err = backupService.ImportFromReader(cmd.Context(), cmd.InOrStdin())
			} else {
				err = backupService.Import(cmd.Context(), inputPath)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backup restored from %s\n", inputPath)
			return nil
		},
	}
	importCmd.Flags().StringP("input", "i", "", "backup file, - for stdin (required)")
	bindFlagToViper(v, importInputKey, importCmd.Flags().Lookup("input"))

	root.AddCommand(exportCmd, importCmd)
	return root
}

// openBackupService connects to the configured database and brings its
// schema up to date.
func openBackupService(cmd *cobra.Command, v *viper.Viper) (*service.BackupService, func(), error) {
	cfg, err := config.LoadFrom(v)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}

	db, err := database.InitializeWithConfig(cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := db.RunMigrations(cmd.Context()); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.WithFields(logrus.Fields{"type": cfg.DatabaseType}).Debug("Database ready")
	return service.NewBackupService(repository.NewProgressRepository(db), log), func() { db.Close() }, nil
}

func bindFlagToViper(v *viper.Viper, key string, flag *pflag.Flag) {
	if flag == nil {
		return
	}
	cobra.CheckErr(v.BindPFlag(key, flag))
}
