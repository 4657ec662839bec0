package main

import (
	"fmt"
	"time"

	"github.com/Tsitronov/frutti-backend/internal/config"
	"github.com/Tsitronov/frutti-backend/internal/utils"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger := utils.NewLogger(cfg.Log.Level, cfg.Log.Format)

		db, err := config.OpenDatabase(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := config.RunMigrations(cmd.Context(), db); err != nil {
			return err
		}
		logger.Info("migrations applied")
		return nil
	},
}

var (
	adminUsername  string
	adminPassword  string
	adminCategoria string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create a login credential unless the username already exists",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		categoria := adminCategoria
		if categoria == "" {
			categoria = app.cfg.Auth.AdminCategory
		}

		created, err := app.svc.Admin.EnsureAdmin(cmd.Context(), adminUsername, adminPassword, categoria)
		if err != nil {
			return err
		}
		if !created {
			fmt.Fprintf(cmd.OutOrStdout(), "credential %q already exists\n", adminUsername)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "credential %q created with categoria %q\n", adminUsername, categoria)
		return nil
	},
}

var sweepMinAge time.Duration

var sweepPhotosCmd = &cobra.Command{
	Use:   "sweep-photos",
	Short: "Remove stored photo files that no database record references",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		removed, err := app.svc.Photos.Sweep(cmd.Context(), sweepMinAge)
		if err != nil {
			return err
		}
		for _, name := range removed {
			fmt.Fprintln(cmd.OutOrStdout(), "removed", name)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d orphan file(s) removed\n", len(removed))
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVarP(&adminUsername, "username", "u", "", "login username")
	createAdminCmd.Flags().StringVarP(&adminPassword, "password", "p", "", "login password (at least 4 characters)")
	createAdminCmd.Flags().StringVarP(&adminCategoria, "categoria", "c", "", "role category (defaults to ADMIN_CATEGORY)")
	_ = createAdminCmd.MarkFlagRequired("username")
	_ = createAdminCmd.MarkFlagRequired("password")

	sweepPhotosCmd.Flags().DurationVar(&sweepMinAge, "min-age", time.Hour, "leave files younger than this; uploads in progress have no row yet")
}
