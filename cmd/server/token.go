// cmd/server/token.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javajoker/digital-original/internal/app"
	"github.com/javajoker/digital-original/internal/services"
	"github.com/javajoker/digital-original/internal/utils"
)

var tokenCmd = &cobra.Command{
	Use:   "token <identity>",
	Short: "Issue a bearer token for an identity",
	Long: `Issue a signed bearer token whose subject is the given 0x address.
Roles come from LEDGER_OPERATORS and LEDGER_MINTERS and are checked again on every request.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		identity, err := utils.ParseIdentity(args[0])
		if err != nil {
			return err
		}

		utils.SetJWTSecret(cfg.JWT.SecretKey)
		utils.SetJWTIssuer(cfg.JWT.Issuer)

		auth := services.NewAuthService(app.NewRoleBook(cfg.Ledger), cfg)
		resp, err := auth.IssueToken(identity)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), resp.AccessToken)
		if len(resp.Roles) > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "roles: %v, expires in %ds\n", resp.Roles, resp.ExpiresIn)
		}
		return nil
	},
}
