package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/model"
	"github.com/roach88/storefront/internal/shop"
)

type credentialFlags struct {
	Email         string
	Password      string
	PasswordStdin bool
}

func (c *credentialFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.Email, "email", "", "account email")
	cmd.Flags().StringVar(&c.Password, "password", "", "account password")
	cmd.Flags().BoolVar(&c.PasswordStdin, "password-stdin", false, "read the password from stdin")
	_ = cmd.MarkFlagRequired("email")
}

// password resolves the password from the flag or the first line of stdin.
func (c *credentialFlags) password(in io.Reader) (string, error) {
	if !c.PasswordStdin {
		return c.Password, nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// NewLoginCommand creates the login command.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	creds := &credentialFlags{}
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		Example: `  storefront login --email grace@example.com --password-stdin < pw.txt
  storefront login --email grace@example.com --password hunter22`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(rootOpts, cmd, "/login", func(ctx context.Context, a *app) error {
				pw, err := creds.password(cmd.InOrStdin())
				if err != nil {
					return err
				}
				u, err := shop.NewAccount(a.deps).Login(ctx, model.LoginRequest{Email: creds.Email, Password: pw})
				if err != nil {
					return err
				}
				return a.out.Emit(u, func(w io.Writer) {
					fmt.Fprintf(w, "Logged in as %s <%s>\n", u.Name, u.Email)
				})
			})
		},
	}
	creds.register(cmd)
	return cmd
}

// NewSignupCommand creates the signup command.
func NewSignupCommand(rootOpts *RootOptions) *cobra.Command {
	creds := &credentialFlags{}
	var name string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(rootOpts, cmd, "/signup", func(ctx context.Context, a *app) error {
				pw, err := creds.password(cmd.InOrStdin())
				if err != nil {
					return err
				}
				u, err := shop.NewAccount(a.deps).Signup(ctx, model.SignupRequest{
					Name:     name,
					Email:    creds.Email,
					Password: pw,
				})
				if err != nil {
					return err
				}
				return a.out.Emit(u, func(w io.Writer) {
					fmt.Fprintf(w, "Welcome, %s! You are now logged in.\n", u.Name)
				})
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	_ = cmd.MarkFlagRequired("name")
	creds.register(cmd)
	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the stored token and forget the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(rootOpts, cmd, "/", func(ctx context.Context, a *app) error {
				if err := shop.NewAccount(a.deps).Logout(ctx); err != nil {
					return err
				}
				return a.out.Emit(map[string]bool{"logged_out": true}, func(w io.Writer) {
					fmt.Fprintln(w, "Logged out")
				})
			})
		},
	}
}

// NewWhoamiCommand creates the whoami command.
func NewWhoamiCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(rootOpts, cmd, "/", func(ctx context.Context, a *app) error {
				u, err := shop.NewAccount(a.deps).Me(ctx)
				if err != nil {
					return err
				}
				return a.out.Emit(u, func(w io.Writer) { renderUser(w, u) })
			})
		},
	}
}

// NewProfileCommand creates the profile command.
func NewProfileCommand(rootOpts *RootOptions) *cobra.Command {
	var upd model.ProfileUpdate
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update your profile",
		Long: `Show the logged-in user, or update it when --name, --email or
--password is given. Unset fields keep their current value.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(rootOpts, cmd, "/profile", func(ctx context.Context, a *app) error {
				acct := shop.NewAccount(a.deps)
				u, err := acct.Me(ctx)
				if err != nil {
					return err
				}

				f := cmd.Flags()
				if f.Changed("name") || f.Changed("email") || f.Changed("password") {
					if !f.Changed("name") {
						upd.Name = u.Name
					}
					if !f.Changed("email") {
						upd.Email = u.Email
					}
					if u, err = acct.UpdateProfile(ctx, upd); err != nil {
						return err
					}
				}
				return a.out.Emit(u, func(w io.Writer) { renderUser(w, u) })
			})
		},
	}
	cmd.Flags().StringVar(&upd.Name, "name", "", "new display name")
	cmd.Flags().StringVar(&upd.Email, "email", "", "new email")
	cmd.Flags().StringVar(&upd.Password, "password", "", "new password")
	return cmd
}
