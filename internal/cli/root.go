package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yukikurage/toondo/internal/config"
	"github.com/yukikurage/toondo/internal/database"
	"github.com/yukikurage/toondo/internal/logger"
	"github.com/yukikurage/toondo/internal/repository"
	"github.com/yukikurage/toondo/internal/services"
	"github.com/yukikurage/toondo/internal/store"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// App holds the persistent flags and the database shared by every command.
type App struct {
	AsUser string
	Pretty bool

	db *gorm.DB
}

// backend is the service graph the API server builds, opened on the same
// storage.
type backend struct {
	storage repository.StorageRepository
	users   repository.UserRepository
	auth    *services.AuthService
	tasks   *services.TaskService
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{})
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "toondo",
		Short:        "Maintenance commands for the ToonDo List store",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.connect()
		},
	}

	cmd.PersistentFlags().StringVar(&app.AsUser, "as", envOr("TOONDO_USER", ""), "Username to act as (default: the most recent API login)")
	cmd.PersistentFlags().BoolVar(&app.Pretty, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newUsersCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newImportCmd(app))
	cmd.AddCommand(newPrintCmd(app))
	cmd.AddCommand(newExportCmd(app))

	return cmd
}

func (a *App) connect() error {
	if a.db != nil {
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	// stdout carries command output
	logger.InitTo(cfg, os.Stderr)

	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}
	a.db = db.Session(&gorm.Session{Logger: db.Logger.LogMode(gormlogger.Silent)})
	return nil
}

func (a *App) backend(ctx context.Context) (*backend, error) {
	storage := repository.NewStorageRepository(a.db)
	users := repository.NewUserRepository(storage)
	tasks := services.NewTaskService(storage, users, nil)
	if err := tasks.Load(ctx); err != nil {
		return nil, err
	}
	return &backend{
		storage: storage,
		users:   users,
		auth:    services.NewAuthService(users, storage),
		tasks:   tasks,
	}, nil
}

// actor resolves --as, falling back to whoever last logged in through the API.
func (a *App) actor(ctx context.Context, b *backend) (store.Actor, error) {
	username := strings.TrimSpace(a.AsUser)
	if username == "" {
		user, err := b.auth.CurrentUser(ctx)
		if errors.Is(err, services.ErrUserNotFound) {
			return store.Actor{}, errors.New("no user selected: pass --as <username>")
		}
		if err != nil {
			return store.Actor{}, err
		}
		return store.ActorFromUser(*user), nil
	}

	user, err := b.users.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrUserNotFound) {
		return store.Actor{}, fmt.Errorf("user not found: %s", username)
	}
	if err != nil {
		return store.Actor{}, err
	}
	return store.ActorFromUser(*user), nil
}

func (a *App) writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	if a.Pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
