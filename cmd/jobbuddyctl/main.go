// Package main provides jobbuddyctl, the administrative CLI for JobBuddy.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jobbuddy/internal/bootstrap"
	"github.com/jobbuddy/internal/config"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "jobbuddyctl",
		Short:         "Administrative tasks against the JobBuddy database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newSeedCommand())
	cmd.AddCommand(newNotificationsCommand())
	cmd.AddCommand(newStreakCommand())
	return cmd
}

// withApp loads configuration, connects and runs fn
func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *bootstrap.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	app, err := bootstrap.Open(ctx, cfg, bootstrap.InitLogging(cfg))
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(ctx, app)
}

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the demo users and their job search data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				summary, err := seed(ctx, app.Services)
				if err != nil {
					return err
				}
				return printJSON(summary)
			})
		},
	}
}

func newNotificationsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Notification maintenance",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newNotificationsPurgeCommand())
	return cmd
}

func newNotificationsPurgeCommand() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete notifications older than the retention window for every user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				purged, err := app.Services.Notifications.PurgeOlderThan(ctx, days)
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "purged %d notifications older than %d days\n", purged, days)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "Retention window in days")
	return cmd
}

func newStreakCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "streak",
		Short: "Streak inspection",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newStreakShowCommand())
	return cmd
}

func newStreakShowCommand() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a user's streak summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				userID := user
				if strings.Contains(user, "@") {
					u, err := app.Services.Users.GetByEmail(ctx, user)
					if err != nil {
						return err
					}
					userID = u.ID
				}
				summary, err := app.Services.Streaks.Summary(ctx, userID)
				if err != nil {
					return err
				}
				return printJSON(summary)
			})
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "User ID or email")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
