package main

import (
	"context"
	"fmt"
	"os"

	"coworking-reservation-server/internal/config"
	"coworking-reservation-server/internal/domain"
	"coworking-reservation-server/internal/repository"
	"coworking-reservation-server/internal/service"
	"coworking-reservation-server/pkg/hash"
	"coworking-reservation-server/pkg/logger"

	"github.com/spf13/cobra"
)

func newCreateAdminCmd() *cobra.Command {
	var req domain.RegisterRequest

	c := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.New(cfg.Logging.Level, cfg.Server.Env)

			ctx := context.Background()
			pool, store, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			auth := service.NewAuthService(repository.NewUserRepository(store), hash.Bcrypt{}, cfg.JWT.Secret, cfg.JWT.Expiration, cfg.JWT.RefreshTokenExpiration, log)
			user, err := auth.CreateAdmin(ctx, &req)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "created admin %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}

	c.Flags().StringVar(&req.Email, "email", "", "admin email")
	c.Flags().StringVar(&req.Password, "password", "", "admin password")
	c.Flags().StringVar(&req.FirstName, "first-name", "", "first name")
	c.Flags().StringVar(&req.LastName, "last-name", "", "last name")
	_ = c.MarkFlagRequired("email")
	_ = c.MarkFlagRequired("password")
	_ = c.MarkFlagRequired("first-name")
	_ = c.MarkFlagRequired("last-name")
	return c
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			pool, _, err := openStore(context.Background(), cfg)
			if err != nil {
				return err
			}
			pool.Close()
			fmt.Fprintln(os.Stdout, "schema is up to date")
			return nil
		},
	}
}
