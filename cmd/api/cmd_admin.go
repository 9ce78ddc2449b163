package main

import (
	"fmt"

	"storefront/internal/database"
	"storefront/internal/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	adminEmail    string
	adminPassword string
	adminRole     string
)

// createAdminCmd registers an account; there is no public sign-up
var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an account that can sign in to the admin panel",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbService, err := database.New(cfg.Database)
		if err != nil {
			return err
		}
		defer dbService.Close()

		if err := database.RunMigrations(dbService.DB(), log); err != nil {
			return err
		}

		auth := server.NewAuthService(cfg, dbService.DB(), nil, nil, log)
		user, err := auth.CreateUser(cmd.Context(), adminEmail, adminPassword, adminRole)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", adminEmail, err)
		}

		log.Info("Account created",
			zap.String("user_id", user.ID.String()),
			zap.String("email", user.Email),
			zap.String("role", user.Role),
		)
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "Account email")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "Account password (at least 6 characters)")
	createAdminCmd.Flags().StringVar(&adminRole, "role", "admin", "Account role: admin or editor")
	createAdminCmd.MarkFlagRequired("email")
	createAdminCmd.MarkFlagRequired("password")
}
