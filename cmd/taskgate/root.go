package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/taskgate/internal/client/cli"
	"github.com/dmitrijs2005/taskgate/internal/client/config"
	"github.com/dmitrijs2005/taskgate/internal/client/controller"
	"github.com/dmitrijs2005/taskgate/internal/client/repositories/kv"
	"github.com/dmitrijs2005/taskgate/internal/client/repositories/tasks"
	"github.com/dmitrijs2005/taskgate/internal/client/services"
	"github.com/dmitrijs2005/taskgate/internal/logging"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "taskgate",
		Short: "A personal task list behind a demo login",
		Long: `taskgate keeps a task list in a local key-value store. Sign in with the
demo account (user@example.com / password) or sign up, then add, edit,
complete and delete tasks. Run without a subcommand to start the REPL.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, false, func(ctx context.Context, app *cli.App) error {
				return app.Run(ctx)
			})
		},
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		&cobra.Command{
			Use:   "repl",
			Short: "Start the interactive shell",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withApp(cmd, false, func(ctx context.Context, app *cli.App) error {
					return app.Run(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "login",
			Short: "Sign in and keep the session",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withApp(cmd, false, func(ctx context.Context, app *cli.App) error {
					return app.Login(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "signup",
			Short: "Create an account and keep the session",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withApp(cmd, false, func(ctx context.Context, app *cli.App) error {
					return app.Signup(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "logout",
			Short: "Forget the stored session",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withApp(cmd, true, func(ctx context.Context, app *cli.App) error {
					return app.Logout(ctx)
				})
			},
		},
		&cobra.Command{
			Use:     "list",
			Aliases: []string{"ls"},
			Short:   "List tasks",
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withApp(cmd, true, func(ctx context.Context, app *cli.App) error {
					return app.List(ctx)
				})
			},
		},
		newAddCmd(),
		&cobra.Command{
			Use:     "done <id>",
			Aliases: []string{"toggle"},
			Short:   "Toggle a task between pending and completed",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, true, func(ctx context.Context, app *cli.App) error {
					return app.Toggle(ctx, args[0])
				})
			},
		},
		&cobra.Command{
			Use:     "rm <id>",
			Aliases: []string{"delete"},
			Short:   "Delete a task",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, true, func(ctx context.Context, app *cli.App) error {
					return app.Delete(ctx, args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the signed-in user and task counts",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withApp(cmd, true, func(ctx context.Context, app *cli.App) error {
					return app.Status(ctx)
				})
			},
		},
	)
	return root
}

func newAddCmd() *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, true, func(ctx context.Context, app *cli.App) error {
				return app.AddTask(ctx, strings.Join(args, " "), description)
			})
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "task description")
	return cmd
}

// withApp loads configuration, opens the store and builds an App for the
// duration of fn. When restore is set the stored session is restored first;
// the REPL restores it itself.
func withApp(cmd *cobra.Command, restore bool, fn func(ctx context.Context, app *cli.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadConfig(cmd.Flags())
	if err != nil {
		return err
	}

	log := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)

	store, err := kv.Open(ctx, cfg.StoreBackend, cfg.StorePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error(ctx, "close store", "err", err)
		}
	}()

	clock := clockwork.NewRealClock()
	ctrl := controller.New(
		services.NewAuthService(clock, cfg.Latency, []byte(cfg.TokenSecret), log),
		tasks.NewKVRepository(store, clock, log),
		store,
		log,
	)
	app := cli.NewApp(ctrl, cmd.InOrStdin(), cmd.OutOrStdout())

	if restore {
		if err := app.Start(ctx); err != nil {
			return err
		}
	}
	return fn(ctx, app)
}
