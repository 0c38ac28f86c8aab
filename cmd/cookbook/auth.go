package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pageza/healthy-cookbook/backend/internal/models"
	"github.com/pageza/healthy-cookbook/backend/internal/service"
)

func passwordFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVar(target, "password", "", "password (or COOKBOOK_PASSWORD)")
}

func password(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if env := os.Getenv("COOKBOOK_PASSWORD"); env != "" {
		return env, nil
	}
	return "", errors.New("password is required")
}

// signIn stores the session returned by register or login.
func (a *app) signIn(res *service.AuthResult) error {
	a.state.Token = res.Token
	a.state.User = res.User
	if res.User != nil {
		a.state.Favorites = append([]string(nil), res.User.FavoriteRecipes...)
	}
	return a.save()
}

func newRegisterCmd(a *app) *cobra.Command {
	var in service.RegisterInput
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := password(in.Password)
			if err != nil {
				return err
			}
			in.Password = pw
			res, err := a.api.Register(cmd.Context(), in)
			if err != nil {
				return err
			}
			if err := a.signIn(res); err != nil {
				return err
			}
			return a.render(cmd, res.User, func(w io.Writer) {
				fmt.Fprintf(w, "Welcome, %s!\n", res.User.FullName())
			})
		},
	}
	cmd.Flags().StringVar(&in.Username, "username", "", "username")
	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
	cmd.Flags().StringVar(&in.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&in.LastName, "last-name", "", "last name")
	passwordFlag(cmd, &in.Password)
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var email, pw string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := password(pw)
			if err != nil {
				return err
			}
			res, err := a.api.Login(cmd.Context(), email, p)
			if err != nil {
				return err
			}
			if err := a.signIn(res); err != nil {
				return err
			}
			return a.render(cmd, res.User, func(w io.Writer) {
				fmt.Fprintf(w, "Signed in as %s.\n", res.User.Username)
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	passwordFlag(cmd, &pw)
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.state.SignedIn() {
				// the local session goes regardless of what the server says
				if err := a.api.Logout(cmd.Context()); err != nil {
					a.log.Debug("Logout request failed", zap.Error(err))
				}
			}
			a.state.ClearSession()
			if err := a.save(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.state.SignedIn() {
				return errNotSignedIn
			}
			user, err := a.api.Me(cmd.Context())
			if err != nil {
				return err
			}
			a.state.User = user
			a.state.Favorites = append([]string(nil), user.FavoriteRecipes...)
			if err := a.save(); err != nil {
				return err
			}
			return a.render(cmd, user, func(w io.Writer) { accountText(w, user) })
		},
	}
}

var errNotSignedIn = errors.New("not signed in, run `cookbook login` first")

func accountText(w io.Writer, u *models.User) {
	fmt.Fprintf(w, "Username\t%s\n", u.Username)
	fmt.Fprintf(w, "Name\t%s\n", u.FullName())
	fmt.Fprintf(w, "Email\t%s\n", u.Email)
	fmt.Fprintf(w, "Role\t%s\n", u.Role)
	fmt.Fprintf(w, "Recipes\t%d\n", len(u.CreatedRecipes))
	fmt.Fprintf(w, "Favorites\t%d\n", len(u.FavoriteRecipes))
}
