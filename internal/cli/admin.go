package cli

import (
	"errors"
	"fmt"
	"os"

	"saha-erp/internal/service"
	"saha-erp/internal/util"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()
			a.log.Info().Str("driver", a.cfg.Database.Driver).Msg("schema up to date")
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the default hourly batches when none exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()
			n, err := a.svc.Batches.EnsureDefaultBatches(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d batches created\n", n)
			return nil
		},
	}
}

func newAddUserCmd() *cobra.Command {
	var in service.NewUser
	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create a staff or admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()
			if in.Password == "" {
				if in.Password, err = promptPassword(cmd); err != nil {
					return err
				}
			}
			u, err := a.svc.Users.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s user %q (id %d)\n", u.Role, u.Username, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&in.Username, "username", "u", "", "login name")
	cmd.Flags().StringVarP(&in.Password, "password", "p", "", "password (8-32 chars, mixed case and a digit); prompted when omitted")
	cmd.Flags().StringVar(&in.DisplayName, "name", "", "display name")
	cmd.Flags().StringVar(&in.Role, "role", service.RoleStaff, "admin or staff")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newResetPasswordCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "resetpassword",
		Short: "Set a new password for an account and unlock it",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()
			if password == "" {
				if password, err = promptPassword(cmd); err != nil {
					return err
				}
			}
			if err := a.svc.Users.SetPassword(cmd.Context(), username, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "password of %q updated\n", username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "login name")
	cmd.Flags().StringVarP(&password, "password", "p", "", "new password; prompted when omitted")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

// promptPassword reads the password twice from the terminal without echo.
func promptPassword(cmd *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("--password is required when stdin is not a terminal")
	}
	out := cmd.ErrOrStderr()
	fmt.Fprint(out, "Password: ")
	pwd, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	fmt.Fprint(out, "Confirm password: ")
	confirm, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if string(pwd) != string(confirm) {
		return "", errors.New("passwords do not match")
	}
	return string(pwd), nil
}

func newGenSecretCmd() *cobra.Command {
	var length int
	cmd := &cobra.Command{
		Use:   "gen-secret",
		Short: "Print a random secret for jwt.secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := util.RandomString(length)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}
	cmd.Flags().IntVarP(&length, "length", "n", 48, "number of characters")
	return cmd
}
