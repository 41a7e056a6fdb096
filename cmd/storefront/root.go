package main

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"books-storefront/internal/config"
	"books-storefront/internal/opener"
	"books-storefront/internal/service"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	browserOpener    = systemOpener      // mockable
)

func systemOpener(logger *log.Logger) service.Opener {
	return opener.NewSystem(logger)
}

type rootOptions struct {
	envFiles []string
	cfg      *config.Config
}

func newRootCmd() *cobra.Command {
	// admin runs its login hook after the root config hook
	cobra.EnableTraverseRunHooks = true

	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "storefront",
		Short:         "Browse, buy and download educational resources",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.envFiles...)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}
	cmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", nil, "dotenv files to load (default .env)")

	cmd.AddCommand(
		newServeCmd(opts),
		newCatalogCmd(opts),
		newClassesCmd(),
		newSubjectsCmd(),
		newSignInCmd(opts),
		newRegisterCmd(opts),
		newSignOutCmd(opts),
		newWhoAmICmd(opts),
		newResetPasswordCmd(opts),
		newDownloadCmd(opts),
		newHistoryCmd(opts),
		newAdminCmd(opts),
	)
	return cmd
}

// app wires the storefront for one command, opening payment pages in the desktop browser.
func (o *rootOptions) app(cmd *cobra.Command) (*app, error) {
	return newApp(cmd.Context(), cliConfig(o.cfg), browserOpener)
}

// cliConfig makes the download link absolute. A relative success page only resolves inside
// the served storefront page, so the CLI links straight to the backend download URL instead.
func cliConfig(cfg *config.Config) *config.Config {
	if isHTTPURL(cfg.Payment.SuccessPageURL) {
		return cfg
	}
	c := *cfg
	c.Payment.SuccessPageURL = c.Payment.DownloadURL
	return &c
}

func isHTTPURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// runApp runs fn against a freshly wired app.
func (o *rootOptions) runApp(cmd *cobra.Command, fn func(a *app) error) error {
	a, err := o.app(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func promptPassword(cmd *cobra.Command, label string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), label)
	pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pwd), nil
}

func promptLine(cmd *cobra.Command, in *bufio.Reader, label string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), label)
	line, err := in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
