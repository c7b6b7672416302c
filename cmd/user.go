package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"worktime/service"
	"worktime/worklog"
)

var (
	userAddName  string
	userAddEmail string
	userAddRole  string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Provision and list accounts.",
	Long: `Accounts are created by an operator; there is no self-service signup.

The role is USER unless --role ADMIN is given. Administrators may assign tasks,
see every user's tasks and read the monthly worklog report.`,
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a user account",
	Example: `
  worktime user add --name "Alice Example" --email alice@example.com
  worktime user add --name "Ada Admin" --email ada@example.com --role ADMIN
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		_, store, err := loadConfigAndStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		user, err := service.NewUserService(store).Provision(ctx, service.UserInput{
			Name:  userAddName,
			Email: userAddEmail,
			Role:  userAddRole,
		})
		if err != nil {
			return err
		}
		fmt.Printf("User created. ID: %s, Email: %s, Role: %s\n", user.ID, user.Email, user.Role)
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		_, store, err := loadConfigAndStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		return listUsers(ctx, service.NewUserService(store), os.Stdout)
	},
}

func listUsers(ctx context.Context, users *service.UserService, out io.Writer) error {
	list, err := users.List(ctx)
	if err != nil {
		return err
	}
	return writeUserTable(out, list)
}

func writeUserTable(out io.Writer, users []worklog.User) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\tCREATED")
	for _, user := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", user.ID, user.Name, user.Email, user.Role, user.CreatedAt.UTC().Format(time.RFC3339))
	}
	return tw.Flush()
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userAddCmd, userListCmd)

	userAddCmd.Flags().StringVar(&userAddName, "name", "", "Display name")
	userAddCmd.Flags().StringVar(&userAddEmail, "email", "", "Unique email address")
	userAddCmd.Flags().StringVar(&userAddRole, "role", string(worklog.RoleUser), "Role: USER|ADMIN")

	_ = userAddCmd.MarkFlagRequired("name")
	_ = userAddCmd.MarkFlagRequired("email")
}
