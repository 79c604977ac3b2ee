package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/spec-kit/favorite-board/internal/config"
	"github.com/spec-kit/favorite-board/internal/observability"
	"github.com/spec-kit/favorite-board/internal/persistence"
	"github.com/spec-kit/favorite-board/internal/repository"
	"github.com/spec-kit/favorite-board/internal/service"
)

// runtime is what the admin commands operate on.
type runtime struct {
	users   *service.UserService
	migrate func(ctx context.Context) error
	close   func()
}

type opener func(ctx context.Context) (*runtime, error)

// openRuntime connects to the configured Postgres. The in-memory fallback would
// discard every change, so a DSN is required here.
func openRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Postgres.DSN == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	repos := repository.NewRepositories(pg.PoolHandle())

	return &runtime{
		users: service.NewUserService(repos.Principals, logger),
		migrate: func(ctx context.Context) error {
			return persistence.RunMigrations(ctx, pg.PoolHandle(), logger)
		},
		close: func() {
			pg.Close()
			_ = logger.Sync()
		},
	}, nil
}

func newRootCmd(open opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "boardctl",
		Short:         "Administer the favorite board",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newMigrateCmd(open),
		newSetupAdminCmd(open),
		newAddUserCmd(open),
		newListUsersCmd(open),
	)
	return root
}

func withRuntime(open opener, fn func(ctx context.Context, rt *runtime) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		rt, err := open(ctx)
		if err != nil {
			return err
		}
		defer rt.close()
		return fn(ctx, rt)
	}
}

func newMigrateCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded SQL migrations",
		Args:  cobra.NoArgs,
		RunE: withRuntime(open, func(ctx context.Context, rt *runtime) error {
			return rt.migrate(ctx)
		}),
	}
}

func newSetupAdminCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup-admin <email>",
		Short: "Create or promote an admin (admin, editor and subscribed)",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = func(c *cobra.Command, args []string) error {
		return withRuntime(open, func(ctx context.Context, rt *runtime) error {
			p, err := rt.users.SetupAdmin(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "%s is now an admin\n", p.Email)
			return nil
		})(c, args)
	}
	return cmd
}

func newAddUserCmd(open opener) *cobra.Command {
	var input service.UserInput
	cmd := &cobra.Command{
		Use:   "add-user <email>",
		Short: "Create a user or overwrite its flags",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().BoolVar(&input.IsAdmin, "admin", false, "grant the admin flag")
	cmd.Flags().BoolVar(&input.IsEditor, "editor", false, "grant the editor flag")
	cmd.Flags().BoolVar(&input.IsSubscribed, "subscribed", true, "subscribe to announcements")

	cmd.RunE = func(c *cobra.Command, args []string) error {
		input.Email = args[0]
		return withRuntime(open, func(ctx context.Context, rt *runtime) error {
			p, err := rt.users.AddUser(ctx, input)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "saved %s (admin=%t editor=%t subscribed=%t)\n",
				p.Email, p.IsAdmin, p.IsEditor, p.IsSubscribed)
			return nil
		})(c, args)
	}
	return cmd
}

func newListUsersCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "list-users",
		Short: "Print every user with its flags",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return withRuntime(open, func(ctx context.Context, rt *runtime) error {
				users, err := rt.users.ListUsers(ctx)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(c.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "EMAIL\tADMIN\tEDITOR\tSUBSCRIBED")
				for _, u := range users {
					fmt.Fprintf(w, "%s\t%t\t%t\t%t\n", u.Email, u.IsAdmin, u.IsEditor, u.IsSubscribed)
				}
				return w.Flush()
			})(c, args)
		},
	}
}

