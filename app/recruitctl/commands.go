package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/yoockh/recruitportal/config"
	"github.com/yoockh/recruitportal/internal/access"
	"github.com/yoockh/recruitportal/internal/models"
	"github.com/yoockh/recruitportal/internal/services"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables and seed roles",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			if err := config.Migrate(config.PostgresDB); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			if err := store.Users().EnsureRoles(cmd.Context(), roleNames()); err != nil {
				return fmt.Errorf("seed roles: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migration complete")
			return nil
		},
	}
}

func newSeedRolesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-roles",
		Short: "Ensure the Master, Approver, HR and Interviewer roles exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			if err := store.Users().EnsureRoles(cmd.Context(), roleNames()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Roles: %s\n", strings.Join(roleNames(), ", "))
			return nil
		},
	}
}

func newUsersCommand(ctx *commandContext) *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage staff accounts",
	}

	usersCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List staff users and their roles",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.userService()
			if err != nil {
				return err
			}
			users, err := svc.List(cmd.Context(), operator)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(users))
			for _, u := range users {
				rows = append(rows, []string{u.Email, u.FullName, strings.Join(u.Roles, ", "), u.CreatedAt.Format(time.DateOnly)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Email", "Name", "Roles", "Created"}, rows, nil))
			return nil
		},
	})

	var (
		email    string
		password string
		name     string
		roles    []string
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a staff user (use --role Master to bootstrap the first admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.userService()
			if err != nil {
				return err
			}
			u, err := svc.Create(cmd.Context(), operator, services.CreateUserInput{
				Email:    email,
				Password: password,
				FullName: name,
				Roles:    roles,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", u.Email, u.ID)
			return nil
		},
	}
	create.Flags().StringVar(&email, "email", "", "Login email")
	create.Flags().StringVar(&password, "password", "", "Initial password (min 6 characters)")
	create.Flags().StringVar(&name, "name", "", "Full name")
	create.Flags().StringSliceVar(&roles, "role", []string{string(access.RoleMaster)}, "Role to grant (repeatable)")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("password")
	_ = create.MarkFlagRequired("name")
	usersCmd.AddCommand(create)

	return usersCmd
}

func newOutboxCommand(ctx *commandContext) *cobra.Command {
	outboxCmd := &cobra.Command{
		Use:   "outbox",
		Short: "Inspect candidate email delivery",
	}

	var (
		status string
		limit  int
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List outbox entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.outboxService()
			if err != nil {
				return err
			}
			rows, err := svc.List(cmd.Context(), operator, models.OutboxStatus(status), limit)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderOutbox(rows))
			return nil
		},
	}
	list.Flags().StringVar(&status, "status", "", "Filter by pending, sent or dead")
	list.Flags().IntVar(&limit, "limit", 50, "Maximum rows")
	outboxCmd.AddCommand(list)

	outboxCmd.AddCommand(&cobra.Command{
		Use:   "requeue <outbox-id>",
		Short: "Retry a dead or pending email now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.outboxService()
			if err != nil {
				return err
			}
			row, err := svc.Requeue(cmd.Context(), operator, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Requeued %s to %s\n", row.Kind, row.RecipientEmail)
			return nil
		},
	})

	return outboxCmd
}

func renderOutbox(rows []models.EmailOutbox) string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.ID,
			r.Kind,
			r.RecipientEmail,
			string(r.Status),
			strconv.Itoa(r.Attempts),
			r.NextAttemptAt.Format(time.RFC3339),
			truncate(r.LastError, 40),
		})
	}
	return renderTable(
		[]string{"ID", "Kind", "Recipient", "Status", "Attempts", "Next attempt", "Last error"},
		out,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
	)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

func roleNames() []string {
	out := make([]string, 0, len(access.AllRoles))
	for _, r := range access.AllRoles {
		out = append(out, string(r))
	}
	return out
}
