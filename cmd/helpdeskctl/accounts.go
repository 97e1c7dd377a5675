package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/spec-kit/campus-helpdesk/internal/service"
)

func newSeedCommand() *cobra.Command {
	var (
		domainName string
		reset      bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the campus offices and one staff account per office",
		Long: `Creates every office with its contact mailbox and a staff account named after
the mailbox. The initial password is the mailbox name followed by 123.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := initEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			staff := service.NewStaffService(*env.cfg, env.store)
			report, err := staff.SeedOffices(cmd.Context(), service.DefaultOfficeSeeds(), domainName, reset)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if reset {
				fmt.Fprintf(out, "removed %d staff accounts\n", report.StaffRemoved)
			}
			fmt.Fprintf(out, "seeded %d offices\n", report.OfficesSeeded)
			for _, email := range report.StaffCreated {
				fmt.Fprintf(out, "created %s\n", email)
			}
			for _, email := range report.StaffSkipped {
				fmt.Fprintf(out, "skipped %s (already exists)\n", email)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&domainName, "domain", "school.edu.ph", "Mail domain for office mailboxes")
	cmd.Flags().BoolVar(&reset, "reset", false, "Remove every staff account before seeding")
	return cmd
}

func newStaffCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "staff",
		Short: "Manage staff accounts",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "remove",
		Short: "Remove every staff account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := initEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()
			removed, err := service.NewStaffService(*env.cfg, env.store).RemoveStaff(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d staff accounts\n", removed)
			return nil
		},
	})
	return cmd
}

func newUserCommand() *cobra.Command {
	var (
		name      string
		email     string
		password  string
		superuser bool
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a student or superuser account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := initEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()
			user, err := service.NewStaffService(*env.cfg, env.store).CreateAccount(cmd.Context(), name, email, password, superuser)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}
	add.Flags().StringVar(&name, "name", "", "Display name")
	add.Flags().StringVar(&email, "email", "", "Email address (required)")
	add.Flags().StringVar(&password, "password", "", "Password, at least 8 characters (required)")
	add.Flags().BoolVar(&superuser, "superuser", false, "Grant access to every ticket")
	_ = add.MarkFlagRequired("email")
	_ = add.MarkFlagRequired("password")

	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(add)
	return cmd
}

func newTokenCommand() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for an existing account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := initEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()
			authService := service.NewAuthService(*env.cfg, env.store.Directory())
			user, token, expiresAt, err := authService.IssueToken(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "user:    %s (%s)\n", user.Email, user.ID)
			fmt.Fprintf(out, "expires: %s\n", expiresAt.Format(time.RFC3339))
			fmt.Fprintln(out, token)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email (required)")
	cmd.Flags().StringVar(&password, "password", "", "Verify this password before issuing")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
