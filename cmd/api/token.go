package main

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/office-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/jwt"
	"github.com/spf13/cobra"
)

// tokenCmd signs an access token with the configured secret. Login lives in the
// identity service; this is for operators and local testing.
func tokenCmd() *cobra.Command {
	var (
		userID     string
		employeeID string
		email      string
		role       string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := user.Role(role)
			if !r.IsValid() {
				return fmt.Errorf("invalid --role %q", role)
			}
			if userID == "" {
				return fmt.Errorf("--user is required")
			}

			var emp *string
			if employeeID != "" {
				emp = &employeeID
			}

			token, expiresAt, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration).
				GenerateAccessToken(userID, email, emp, r)
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", time.Unix(expiresAt, 0).UTC().Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id (required)")
	cmd.Flags().StringVar(&employeeID, "employee", "", "employee id")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().StringVar(&role, "role", string(user.RoleEmployee), "employee, supervisor or admin")
	return cmd
}
