package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/yukikurage/toondo/internal/constants"
	"github.com/yukikurage/toondo/internal/dto"
	"github.com/yukikurage/toondo/internal/services"
	"github.com/yukikurage/toondo/internal/utils"
)

func newUsersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Registered users",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := app.backend(cmd.Context())
			if err != nil {
				return err
			}
			users, err := b.auth.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			return app.writeJSON(cmd, dto.ToUserDTOs(users))
		},
	})
	return cmd
}

func newTasksCmd(app *App) *cobra.Command {
	var page, limit int

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Tasks in display order",
	}
	list := &cobra.Command{
		Use:   "list",
		Short: "List tasks the way the board shows them to the user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := app.backend(cmd.Context())
			if err != nil {
				return err
			}
			actor, err := app.actor(cmd.Context(), b)
			if err != nil {
				return err
			}

			params := utils.NewPaginationParams(page, limit)
			tasks, total := b.tasks.ListTasks(actor, params)
			return app.writeJSON(cmd, dto.TaskListResponse{
				Tasks: dto.ToTaskDTOs(tasks, actor.ID),
				Pagination: utils.PaginationResponse{
					Page:  params.Page,
					Limit: params.Limit,
					Total: total,
				},
			})
		},
	}
	list.Flags().IntVar(&page, "page", constants.MinPageSize, "Page number")
	list.Flags().IntVar(&limit, "limit", constants.MaxPageSize, "Tasks per page")
	cmd.AddCommand(list)
	return cmd
}

func newImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.md>",
		Short: "Create tasks from a markdown outline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			b, err := app.backend(cmd.Context())
			if err != nil {
				return err
			}
			actor, err := app.actor(cmd.Context(), b)
			if err != nil {
				return err
			}

			parsed := services.NewMarkdownImporter().Parse(string(source))
			created, err := b.tasks.ImportTasks(cmd.Context(), actor, parsed)
			if err != nil {
				return err
			}
			return app.writeJSON(cmd, dto.ToTaskDTOs(created, actor.ID))
		},
	}
}

func newPrintCmd(app *App) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "print <task-id>",
		Short: "Render a task as a printable HTML card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := app.backend(cmd.Context())
			if err != nil {
				return err
			}
			task, err := b.tasks.GetTask(args[0])
			if err != nil {
				return err
			}

			page, err := services.NewCardPrinter().Render(task)
			if err != nil {
				return err
			}
			if out == "" {
				_, err = cmd.OutOrStdout().Write(page)
				return err
			}
			if err := os.WriteFile(out, page, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the card to a file instead of stdout")
	return cmd
}

func newExportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print the persisted task collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := app.backend(cmd.Context())
			if err != nil {
				return err
			}
			raw, err := b.storage.Get(cmd.Context(), constants.StorageKeyTasks)
			if err != nil {
				return err
			}
			if len(raw) == 0 {
				raw = []byte("[]")
			}

			if app.Pretty {
				var buf bytes.Buffer
				if err := json.Indent(&buf, raw, "", "  "); err != nil {
					return err
				}
				raw = buf.Bytes()
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(raw))
			return err
		},
	}
}
