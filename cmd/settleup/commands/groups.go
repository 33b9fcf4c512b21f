package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mmynk/settleup/internal/models"
)

func (c *cli) groupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage groups and their members",
	}
	cmd.AddCommand(
		c.groupCreateCmd(),
		c.groupListCmd(),
		c.groupAddMemberCmd(),
		c.groupRemoveMemberCmd(),
		c.groupDeleteCmd(),
	)
	return cmd
}

// group create <name> --member <user> [--member <user>...]
func (c *cli) groupCreateCmd() *cobra.Command {
	var members []string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ids, err := c.resolveUsers(ctx, members)
			if err != nil {
				return err
			}
			group, err := c.ledger.CreateGroup(ctx, args[0], ids)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Group created")
			return c.printGroup(ctx, cmd.OutOrStdout(), group)
		},
	}
	cmd.Flags().StringSliceVar(&members, "member", nil, "member user ID or email (repeatable)")
	return cmd
}

func (c *cli) groupListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List groups and their members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			groups, err := c.ledger.ListGroups(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(groups) == 0 {
				fmt.Fprintln(out, "No groups found.")
				return nil
			}
			for _, g := range groups {
				if err := c.printGroup(ctx, out, g); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func (c *cli) groupAddMemberCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-member <group> <user>",
		Short: "Add a user to a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			userID, err := c.resolveUser(ctx, args[1])
			if err != nil {
				return err
			}
			group, err := c.ledger.AddMember(ctx, args[0], userID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Member added")
			return c.printGroup(ctx, cmd.OutOrStdout(), group)
		},
	}
}

func (c *cli) groupRemoveMemberCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-member <group> <user>",
		Short: "Remove a user with no expense or settlement history from a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			userID, err := c.resolveUser(ctx, args[1])
			if err != nil {
				return err
			}
			group, err := c.ledger.RemoveMember(ctx, args[0], userID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Member removed")
			return c.printGroup(ctx, cmd.OutOrStdout(), group)
		},
	}
}

func (c *cli) groupDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <group>",
		Short: "Delete a group with all of its expenses and settlements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.ledger.DeleteGroup(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Group deleted")
			return nil
		},
	}
}

func (c *cli) printGroup(ctx context.Context, out io.Writer, g *models.Group) error {
	names, err := c.ledger.DisplayNames(ctx, g.Members)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s (%s)\n", g.Name, g.ID)
	if len(g.Members) == 0 {
		fmt.Fprintln(out, "  (no members)")
		return nil
	}
	for _, id := range g.Members {
		fmt.Fprintf(out, "  - %s (%s)\n", names[id], id)
	}
	return nil
}
