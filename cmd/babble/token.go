package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/heartmarshall/babble-backend/internal/auth"
)

func (c *cli) tokenCmd() *cobra.Command {
	var (
		user string
		role string
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for local testing",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, _, err := c.setup()
			if err != nil {
				return err
			}
			userID := uuid.New()
			if user != "" {
				if userID, err = uuid.Parse(user); err != nil {
					return fmt.Errorf("--user: %w", err)
				}
			}
			tok, err := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL).IssueToken(userID, role)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.stdout, tok)
			return err
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "User ID (random when empty)")
	cmd.Flags().StringVar(&role, "role", "user", "Role claim (user or admin)")
	return cmd
}
