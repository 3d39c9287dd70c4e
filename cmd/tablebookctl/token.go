package main

import (
	"errors"
	"fmt"
	"time"

	"tablebook/pkg/auth"
	"tablebook/pkg/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	var (
		role         string
		restaurantID string
		subject      string
		ttl          time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an operator or admin bearer token signed with JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			cfg := config.FromEnv()
			if cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET must be set")
			}

			token, err := auth.NewAuthenticator(cfg.JWTSecret, cfg.JWTIssuer).Issue(subject, role, restaurantID, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", auth.RoleOperator, "token role (operator or admin)")
	cmd.Flags().StringVar(&restaurantID, "restaurant", "", "restaurant id the operator manages")
	cmd.Flags().StringVar(&subject, "subject", "tablebookctl", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")

	return cmd
}
