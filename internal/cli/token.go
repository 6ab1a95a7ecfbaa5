package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	jwttoken "duediligence/internal/jwt_token"
	"duediligence/internal/platform/config"
	id "duediligence/pkg/domain"
	platformstrings "duediligence/pkg/platform/strings"
)

// TokenCmd issues development tokens signed with the server's configured key.
func TokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue bearer tokens for local use",
	}

	issue := &cobra.Command{
		Use:   "issue",
		Short: "Sign an access token for a user and roles",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, _ := cmd.Flags().GetString("user")
			roles, _ := cmd.Flags().GetStringSlice("role")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			userID, err := id.ParseUserID(user)
			if err != nil {
				return err
			}
			cfg := config.FromEnv()
			svc := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer)
			token, err := svc.GenerateAccessToken(userID, platformstrings.DedupeAndTrimLower(roles), ttl)
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	issue.Flags().String("user", "", "subject user id")
	issue.Flags().StringSlice("role", nil, "role to grant (reviewer, approver, admin); repeatable")
	issue.Flags().Duration("ttl", time.Hour, "token lifetime")
	_ = issue.MarkFlagRequired("user")

	cmd.AddCommand(issue)
	return cmd
}
