package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/campuslabs/softreq/pkg/authn"
	"github.com/campuslabs/softreq/pkg/authz"
	"github.com/campuslabs/softreq/pkg/configuration"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Development bearer tokens",
	}
	cmd.AddCommand(newTokenIssueCmd())
	return cmd
}

func newTokenIssueCmd() *cobra.Command {
	var (
		identity string
		roles    []string
		ttl      time.Duration
		secret   string
		issuer   string
		audience string
	)

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue an HS256 token for a principal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if secret == "" {
				if _, err := configuration.LoadEnv([]string{".env", ".env.local"}); err != nil {
					return err
				}
				secret = os.Getenv("AUTH_JWT_SECRET")
			}
			if issuer == "" {
				issuer = os.Getenv("AUTH_ISSUER")
			}
			if audience == "" {
				audience = os.Getenv("AUTH_AUDIENCE")
			}

			signer, err := authn.NewHMACSigner([]byte(secret))
			if err != nil {
				return err
			}
			token, err := signer.Issue(authz.NewPrincipal(identity, roles...), authn.IssueOptions{
				Issuer:   issuer,
				Audience: audience,
				TTL:      ttl,
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&identity, "identity", "", "Identity claim, usually an email (required)")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "Role claim (repeatable)")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	cmd.Flags().StringVar(&secret, "secret", "", "Signing secret (default: AUTH_JWT_SECRET)")
	cmd.Flags().StringVar(&issuer, "issuer", "", "iss claim (default: AUTH_ISSUER)")
	cmd.Flags().StringVar(&audience, "audience", "", "aud claim (default: AUTH_AUDIENCE)")
	_ = cmd.MarkFlagRequired("identity")
	return cmd
}
