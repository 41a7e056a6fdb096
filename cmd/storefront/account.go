package main

import (
	"bufio"
	"fmt"

	"books-storefront/internal/page"

	"github.com/spf13/cobra"
)

func newSignInCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "signin <username>",
		Short: "Sign in and remember the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := promptPassword(cmd, "Password:")
			if err != nil {
				return err
			}
			return opts.runApp(cmd, func(a *app) error {
				if _, err := a.controller.SignIn(cmd.Context(), args[0], password); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), a.controller.Greeting())
				return nil
			})
		},
	}
}

func newRegisterCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "register <username> <email>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := promptPassword(cmd, "Password:")
			if err != nil {
				return err
			}
			return opts.runApp(cmd, func(a *app) error {
				if err := a.controller.OpenModal(page.ModalRegister); err != nil {
					return err
				}
				msg, err := a.controller.Register(cmd.Context(), args[0], args[1], password)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			})
		},
	}
}

func newSignOutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Forget the remembered session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.runApp(cmd, func(a *app) error {
				if err := a.controller.SignOut(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), a.controller.Greeting())
				return nil
			})
		},
	}
}

func newWhoAmICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the remembered session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.runApp(cmd, func(a *app) error {
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, a.controller.Greeting())
				if s := a.controller.Session(); s != nil && s.Email != "" {
					fmt.Fprintln(out, s.Email)
				}
				return nil
			})
		},
	}
}

func newResetPasswordCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Request or confirm a password reset",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "request <email>",
		Short: "Email a password reset token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runApp(cmd, func(a *app) error {
				msg, err := a.sessions.RequestPasswordReset(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "confirm [token]",
		Short: "Set a new password with a reset token",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := ""
			if len(args) == 1 {
				token = args[0]
			} else {
				line, err := promptLine(cmd, bufio.NewReader(cmd.InOrStdin()), "Reset token:")
				if err != nil {
					return err
				}
				token = line
			}
			password, err := promptPassword(cmd, "New password:")
			if err != nil {
				return err
			}
			return opts.runApp(cmd, func(a *app) error {
				msg, err := a.sessions.ConfirmPasswordReset(cmd.Context(), token, password)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			})
		},
	})
	return cmd
}
