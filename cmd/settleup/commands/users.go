package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *cli) userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(c.userAddCmd(), c.userListCmd())
	return cmd
}

// user add <name> --email <email>
func (c *cli) userAddCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := c.ledger.CreateUser(cmd.Context(), args[0], email, "")
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "User created")
			fmt.Fprintf(out, "  ID:    %s\n", user.ID)
			fmt.Fprintf(out, "  Name:  %s\n", user.DisplayName)
			fmt.Fprintf(out, "  Email: %s\n", user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address (unique)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (c *cli) userListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := c.ledger.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(users) == 0 {
				fmt.Fprintln(out, "No users found.")
				return nil
			}
			for _, u := range users {
				fmt.Fprintf(out, "%s  %s (%s)\n", u.ID, u.DisplayName, u.Email)
			}
			return nil
		},
	}
}
