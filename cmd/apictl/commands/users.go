package commands

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fivetwenty-io/apiclient/internal/constants"
	"github.com/fivetwenty-io/apiclient/pkg/services"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewUsersCommand creates the users command group.
func NewUsersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "Manage users",
		Long:    "List, view, create, and delete platform users",
	}

	cmd.AddCommand(newUsersListCommand())
	cmd.AddCommand(newUsersGetCommand())
	cmd.AddCommand(newUsersCreateCommand())
	cmd.AddCommand(newUsersDeleteCommand())
	cmd.AddCommand(newUsersUploadAvatarCommand())

	return cmd
}

func usersService(cmd *cobra.Command) (*services.UsersService, error) {
	svc, _, err := loadServices(cmd)
	if err != nil {
		return nil, err
	}

	return svc.Users()
}

func userRows(user *services.User) [][]string {
	rows := [][]string{
		{"ID", user.ID},
		{"Name", user.Name},
		{"Email", user.Email},
		{"Role", valueOrNA(user.Role)},
		{"Status", valueOrNA(user.Status)},
	}

	if user.Avatar != "" {
		rows = append(rows, []string{"Avatar", user.Avatar})
	}

	if user.CreatedAt != nil {
		rows = append(rows, []string{"Created", user.CreatedAt.Format("2006-01-02 15:04:05")})
	}

	return rows
}

func valueOrNA(value string) string {
	if value == "" {
		return constants.NotAvailable
	}

	return value
}

func newUsersListCommand() *cobra.Command {
	var params services.ListParams

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Long:  "List platform users one page at a time",
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := usersService(cmd)
			if err != nil {
				return err
			}

			list, err := users.List(cmd.Context(), params)
			if err != nil {
				return err
			}

			err = render(cmd.OutOrStdout(), list, func(table *tablewriter.Table) error {
				table.Header("ID", "Name", "Email", "Role", "Status")

				for _, user := range list.Users {
					err := table.Append([]string{user.ID, user.Name, user.Email, valueOrNA(user.Role), valueOrNA(user.Status)})
					if err != nil {
						return fmt.Errorf("failed to append user: %w", err)
					}
				}

				return nil
			})
			if err != nil {
				return err
			}

			if format, _ := outputFormat(); format == constants.FormatTable {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Page %d of %d (%d users)\n",
					list.Pagination.Page, list.Pagination.TotalPages, list.Pagination.Total)
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&params.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&params.Limit, "limit", constants.DefaultPageSize, "users per page")
	cmd.Flags().StringVar(&params.Search, "search", "", "filter by name or email")

	return cmd
}

func newUsersGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get USER_ID",
		Short: "Get user details",
		Long:  "Display detailed information about a specific user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := usersService(cmd)
			if err != nil {
				return err
			}

			user, err := users.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), user, propertyTable(userRows(user)))
		},
	}
}

func newUsersCreateCommand() *cobra.Command {
	var request services.CreateUserRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Long:  "Create a platform user; rejected fields are reported one per line",
		RunE: func(cmd *cobra.Command, args []string) error {
			if request.Email == "" {
				return constants.ErrEmailRequired
			}

			users, err := usersService(cmd)
			if err != nil {
				return err
			}

			user, err := users.Create(cmd.Context(), &request)
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), user, propertyTable(userRows(user)))
		},
	}

	cmd.Flags().StringVar(&request.Name, "name", "", "full name")
	cmd.Flags().StringVar(&request.Email, "email", "", "email address")
	cmd.Flags().StringVar(&request.Password, "password", "", "initial password")
	cmd.Flags().StringVar(&request.Role, "role", "", "role")

	return cmd
}

func newUsersDeleteCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete USER_ID",
		Short: "Delete a user",
		Long:  "Delete a platform user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				answer, err := promptLine(bufio.NewReader(cmd.InOrStdin()), cmd.ErrOrStderr(), fmt.Sprintf("Delete user %s? [y/N]: ", args[0]))
				if err != nil {
					return err
				}

				if answer != "y" && answer != "Y" {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Aborted")

					return nil
				}
			}

			users, err := usersService(cmd)
			if err != nil {
				return err
			}

			err = users.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %s\n", args[0])

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation")

	return cmd
}

func newUsersUploadAvatarCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "upload-avatar USER_ID FILE",
		Short: "Upload a user avatar",
		Long:  "Replace a user's avatar with the given image file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := validateFilePath(args[1])
			if err != nil {
				return err
			}

			users, err := usersService(cmd)
			if err != nil {
				return err
			}

			// path has been cleaned and checked above
			// #nosec G304
			file, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open avatar: %w", err)
			}

			defer func() {
				_ = file.Close()
			}()

			user, err := users.UploadAvatar(cmd.Context(), args[0], filepath.Base(path), file)
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), user, propertyTable(userRows(user)))
		},
	}
}
