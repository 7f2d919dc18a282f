package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"sim-talenta-gtk-api/config"
	"sim-talenta-gtk-api/models"
	"sim-talenta-gtk-api/services"

	"github.com/spf13/cobra"
)

// bootstrap loads configuration, logging and the database connection. The
// returned func closes the log file.
func bootstrap() (*config.Configuration, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	closeLogs := initCLILogging(cfg, os.Stderr)
	if err := config.InitDB(cfg); err != nil {
		closeLogs()
		return nil, nil, err
	}
	return cfg, closeLogs, nil
}

// initCLILogging sends application and SQL logs to console so stdout only
// carries command output such as the NDJSON import log.
func initCLILogging(cfg *config.Configuration, console io.Writer) func() {
	logFile, _ := config.InitLogging(cfg, console)
	return func() {
		if logFile != nil {
			_ = logFile.Close()
		}
	}
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import spreadsheets into the database",
	}
	cmd.AddCommand(newImportGtkCmd(), newImportSekolahCmd())
	return cmd
}

func newImportGtkCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "gtk",
		Short: "Import GTK rows; the file name (without extension) selects the school",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closeLogs, err := bootstrap()
			if err != nil {
				return err
			}
			defer closeLogs()
			job := services.NewGtkImportJob(services.NewGormImportStore(nil), services.NewImportRunService(nil), services.GtkImportOptionsFromConfig(cfg))
			return runImportFile(cmd, job.Run, file, "")
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "path to the .xlsx file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newImportSekolahCmd() *cobra.Command {
	var file, kota string
	cmd := &cobra.Command{
		Use:   "sekolah",
		Short: "Import schools for one kota",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !services.ValidKota(kota) {
				return fmt.Errorf("invalid --kota %q (want %s or %s)", kota, models.KotaMalang, models.KotaBatu)
			}
			cfg, closeLogs, err := bootstrap()
			if err != nil {
				return err
			}
			defer closeLogs()
			job := services.NewSekolahImportJob(services.NewGormImportStore(nil), services.NewImportRunService(nil), services.SekolahImportOptionsFromConfig(cfg))
			return runImportFile(cmd, job.Run, file, kota)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "path to the .xlsx file")
	cmd.Flags().StringVar(&kota, "kota", "", "kota_malang or kota_batu")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("kota")
	return cmd
}

type runFunc func(ctx context.Context, input services.ImportInput, sink services.ImportLogSink) (*services.ImportRunResult, error)

func runImportFile(cmd *cobra.Command, run runFunc, path, kota string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	input := services.ImportInput{
		FileName:      filepath.Base(path),
		Content:       f,
		TriggerSource: "cli",
		Kota:          kota,
	}
	result, err := run(cmd.Context(), input, services.NewNDJSONLogSink(cmd.OutOrStdout()))
	if err != nil {
		return err
	}
	if result.Errored > 0 {
		return fmt.Errorf("%d rows failed", result.Errored)
	}
	return nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, closeLogs, err := bootstrap()
			if err != nil {
				return err
			}
			defer closeLogs()
			if err := config.DB.WithContext(cmd.Context()).AutoMigrate(models.AllModels()...); err != nil {
				return fmt.Errorf("auto migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migration complete")
			return nil
		},
	}
}

func newSeedAdminCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create a super admin or reset its password",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closeLogs, err := bootstrap()
			if err != nil {
				return err
			}
			defer closeLogs()
			user, created, err := services.SeedSuperAdmin(cmd.Context(), config.DB, email, password, cfg.Import.BcryptCost)
			if err != nil {
				return err
			}
			verb := "updated"
			if created {
				verb = "created"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "super admin %s %s\n", user.Email, verb)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "admin password (min 8 characters)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
