package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"worktime/internal/auth"
	"worktime/service"
)

var tokenUser string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for a user",
	Long: `Print a signed bearer token whose subject is the user's id.

The token is valid for auth.token_ttl and is checked against auth.jwt_secret
and auth.issuer by the API.`,
	Example: `
  worktime token --user alice@example.com
  curl -H "Authorization: Bearer $(worktime token --user alice@example.com)" localhost:8080/api/time-entries/latest
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, store, err := loadConfigAndStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		user, err := service.NewUserService(store).Resolve(ctx, tokenUser)
		if err != nil {
			return err
		}
		token, err := auth.Issue(user.ID, authConfig(cfg), time.Now())
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().StringVarP(&tokenUser, "user", "u", "", "User id or email")
	_ = tokenCmd.MarkFlagRequired("user")
}
