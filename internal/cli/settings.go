package cli

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada-remote/internal/ui"
)

func (a *app) themeCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "theme [dark|light|toggle]",
		Short:     "Show or change the stored color theme",
		Long:      "Without an argument, prints the stored theme. A running interactive client picks up changes immediately.",
		ValidArgs: []string{"dark", "light", "toggle"},
		Args:      usageArgs(cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs)),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := a.prefs()
			p, err := store.Load()
			if err != nil && len(args) == 0 {
				return fmt.Errorf("theme: %w", err)
			}
			dark := p.DarkMode
			if len(args) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.For(dark).Name)
				return nil
			}
			switch args[0] {
			case "dark":
				dark = true
			case "light":
				dark = false
			case "toggle":
				dark = !dark
			}
			if err := store.SetDarkMode(dark); err != nil {
				return fmt.Errorf("theme: %w", err)
			}
			ui.OK(cmd.OutOrStdout(), "theme: "+ui.For(dark).Name)
			return nil
		},
	}
}

func (a *app) authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the bearer token sent to the server",
		Long: `Some servers want "Authorization: Bearer <token>". The token is read from
$TADA_TOKEN first, then from credentials.json in the config directory.`,
	}

	var (
		token   string
		expires time.Duration
	)
	login := &cobra.Command{
		Use:   "login",
		Short: "Store a token (from --token or the first line of stdin)",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := strings.TrimSpace(token)
			if t == "" {
				sc := bufio.NewScanner(cmd.InOrStdin())
				if sc.Scan() {
					t = strings.TrimSpace(sc.Text())
				}
				if err := sc.Err(); err != nil {
					return fmt.Errorf("auth login: read token: %w", err)
				}
			}
			if t == "" {
				return usagef("auth login: no token given")
			}
			var exp *time.Time
			if expires > 0 {
				e := time.Now().Add(expires)
				exp = &e
			}
			if err := a.tokens().Set(t, exp); err != nil {
				return fmt.Errorf("auth login: %w", err)
			}
			ui.OK(cmd.OutOrStdout(), "token saved")
			return nil
		},
	}
	login.Flags().StringVar(&token, "token", "", "token value (prefer stdin to keep it out of shell history)")
	login.Flags().DurationVar(&expires, "expires-in", 0, "forget the token after this long (0 = never)")

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored token",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.tokens().Delete(); err != nil {
				return fmt.Errorf("auth logout: %w", err)
			}
			ui.OK(cmd.OutOrStdout(), "token removed")
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show where the token comes from",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ti, err := a.tokens().Get()
			if err != nil {
				return fmt.Errorf("auth status: %w", err)
			}
			out := cmd.OutOrStdout()
			if ti == nil || ti.Token == "" {
				fmt.Fprintln(out, "not logged in")
				return nil
			}
			line := fmt.Sprintf("token %s (source: %s)", mask(ti.Token), ti.Source)
			if ti.ExpiresAt != nil {
				if time.Now().After(*ti.ExpiresAt) {
					line += ", expired"
				} else {
					line += ", expires " + ti.ExpiresAt.Format(time.RFC3339)
				}
			}
			fmt.Fprintln(out, line)
			return nil
		},
	}

	cmd.AddCommand(login, logout, status)
	return cmd
}

// mask keeps the last four characters of a secret.
func mask(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or write the client configuration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file location",
			Args:  usageArgs(cobra.NoArgs),
			RunE: func(cmd *cobra.Command, _ []string) error {
				fmt.Fprintln(cmd.OutOrStdout(), a.configPath)
				return nil
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Write the effective configuration (defaults plus overrides) to the config file",
			Args:  usageArgs(cobra.NoArgs),
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := a.cfg.Save(a.configPath); err != nil {
					return err
				}
				ui.OK(cmd.OutOrStdout(), "wrote "+a.configPath)
				return nil
			},
		},
	)
	return cmd
}
