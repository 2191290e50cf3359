package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"lectureiq/internal/api"
	"lectureiq/internal/session"
)

func newRegisterCommand(ctx *commandContext) *cobra.Command {
	var name string
	var email string
	var password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, store, err := ctx.ensureClient()
			if err != nil {
				return err
			}

			pass, err := resolvePassword(cmd, password, "Password (min 8 characters): ")
			if err != nil {
				return err
			}

			creds, err := client.Register(cmd.Context(), name, email, pass)
			if err != nil {
				return err
			}
			if err := storeCredentials(store, creds.User, creds.Token); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Registered and signed in as %s <%s>\n", creds.User.Name, creds.User.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name for the new account")
	cmd.Flags().StringVar(&email, "email", "", "Email address for the new account")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLoginCommand(ctx *commandContext) *cobra.Command {
	var email string
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with an existing account",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, store, err := ctx.ensureClient()
			if err != nil {
				return err
			}

			pass, err := resolvePassword(cmd, password, "Password: ")
			if err != nil {
				return err
			}

			creds, err := client.Login(cmd.Context(), email, pass)
			if err != nil {
				return err
			}
			if err := storeCredentials(store, creds.User, creds.Token); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s>\n", creds.User.Name, creds.User.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := ctx.ensureClient()
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return fmt.Errorf("clear session: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newWhoamiCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := ctx.ensureClient()
			if err != nil {
				return err
			}
			user := store.CurrentUser()
			if user == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", user.Name, user.Email)
			return nil
		},
	}
}

func storeCredentials(store *session.Store, user api.User, token string) error {
	err := store.Set(session.User{ID: user.ID, Email: user.Email, Name: user.Name}, token)
	if err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// resolvePassword prefers the flag, then prompts without echo on a terminal,
// then falls back to a plain stdin read for piped input.
func resolvePassword(cmd *cobra.Command, flagValue, prompt string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	in := cmd.InOrStdin()
	if file, ok := in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		fmt.Fprint(cmd.OutOrStdout(), prompt)
		raw, err := term.ReadPassword(int(file.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(raw), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
