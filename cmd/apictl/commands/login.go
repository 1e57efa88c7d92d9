package commands

import (
	"bufio"
	"fmt"

	"github.com/fivetwenty-io/apiclient/internal/constants"
	"github.com/fivetwenty-io/apiclient/pkg/services"
	"github.com/spf13/cobra"
)

type credentials struct {
	email    string
	password string
}

func (c *credentials) resolve(cmd *cobra.Command) error {
	var err error

	reader := bufio.NewReader(cmd.InOrStdin())

	if c.email == "" {
		c.email, err = promptLine(reader, cmd.ErrOrStderr(), "Email: ")
		if err != nil {
			return err
		}
	}

	if c.email == "" {
		return constants.ErrEmailRequired
	}

	if c.password == "" {
		c.password, err = promptPassword(cmd.InOrStdin(), reader, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
	}

	if c.password == "" {
		return constants.ErrPasswordRequired
	}

	return nil
}

func (c *credentials) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&c.email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&c.password, "password", "p", "", "account password (prompted when omitted)")
}

func renderLogin(cmd *cobra.Command, result *services.LoginResult, storePath string) error {
	rows := [][]string{{"Status", "Authenticated"}, {"Credentials", storePath}}

	if result.User != nil {
		rows = append(rows, []string{"User", result.User.Email}, []string{"User ID", result.User.ID})
	}

	masked := *result
	masked.Token = constants.MaskedSecret

	if masked.RefreshToken != "" {
		masked.RefreshToken = constants.MaskedSecret
	}

	return render(cmd.OutOrStdout(), masked, propertyTable(rows))
}

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	creds := &credentials{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the platform",
		Long:  "Authenticate against the auth backend and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := creds.resolve(cmd)
			if err != nil {
				return err
			}

			svc, cfg, err := loadServices(cmd)
			if err != nil {
				return err
			}

			auth, err := svc.Auth()
			if err != nil {
				return err
			}

			result, err := auth.Login(cmd.Context(), creds.email, creds.password)
			if err != nil {
				return err
			}

			return renderLogin(cmd, result, cfg.CredentialsFile)
		},
	}

	creds.bind(cmd)

	return cmd
}

// NewAdminLoginCommand creates the admin-login command.
func NewAdminLoginCommand() *cobra.Command {
	creds := &credentials{}

	cmd := &cobra.Command{
		Use:   "admin-login",
		Short: "Log in as an administrator",
		Long:  "Authenticate against the admin backend and store the admin token",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := creds.resolve(cmd)
			if err != nil {
				return err
			}

			svc, cfg, err := loadServices(cmd)
			if err != nil {
				return err
			}

			admin, err := svc.Admin()
			if err != nil {
				return err
			}

			result, err := admin.Login(cmd.Context(), creds.email, creds.password)
			if err != nil {
				return err
			}

			return renderLogin(cmd, result, cfg.CredentialsFile)
		},
	}

	creds.bind(cmd)

	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and clear stored credentials",
		Long:  "End the session on the auth backend and clear every stored credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := loadServices(cmd)
			if err != nil {
				return err
			}

			auth, err := svc.Auth()
			if err != nil {
				// Without an auth backend there is nothing to notify; clear locally.
				err = svc.Store().Clear(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to clear credentials: %w", err)
				}
			} else {
				err = auth.Logout(cmd.Context())
				if err != nil {
					return err
				}
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Successfully logged out")

			return nil
		},
	}
}
