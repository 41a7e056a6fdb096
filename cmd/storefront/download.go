package main

import (
	"bufio"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"books-storefront/internal/model"
	"books-storefront/internal/page"

	"github.com/spf13/cobra"
)

type downloadOptions struct {
	name   string
	email  string
	phone  string
	noWait bool
}

func newDownloadCmd(opts *rootOptions) *cobra.Command {
	dOpts := &downloadOptions{}
	cmd := &cobra.Command{
		Use:   "download <resource-id>",
		Short: "Pay for a resource and get its download link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runApp(cmd, func(a *app) error {
				return runDownload(cmd, a, model.ResourceID(args[0]), dOpts)
			})
		},
	}
	cmd.Flags().StringVar(&dOpts.name, "name", "", "purchaser name (default: signed-in username)")
	cmd.Flags().StringVar(&dOpts.email, "email", "", "purchaser email (default: signed-in email)")
	cmd.Flags().StringVar(&dOpts.phone, "phone", "", "phone number billed for the payment")
	cmd.Flags().BoolVar(&dOpts.noWait, "no-wait", false, "print the download link without waiting for payment")
	return cmd
}

func runDownload(cmd *cobra.Command, a *app, id model.ResourceID, dOpts *downloadOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	intent, err := a.controller.DownloadClicked(id)
	if err != nil {
		return err
	}
	defer a.controller.CloseModal(page.ModalDownload)

	// name and email come prefilled from the session
	form := intent.Form
	if dOpts.name != "" {
		form.Name = dOpts.name
	}
	if dOpts.email != "" {
		form.Email = dOpts.email
	}
	if dOpts.phone != "" {
		form.Phone = dOpts.phone
	}

	in := bufio.NewReader(cmd.InOrStdin())
	if form.Phone == "" {
		if form.Phone, err = promptLine(cmd, in, "Phone number:"); err != nil {
			return err
		}
	}

	outcome, err := a.controller.SubmitDownload(ctx, form)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, outcome.Message)

	switch outcome.Kind {
	case model.TransactionTest:
		fmt.Fprintln(out, outcome.Link)
		return nil
	case model.TransactionExternal:
		fmt.Fprintf(out, "Complete payment in your browser: %s\n", outcome.PaymentURL)
	default:
		return errors.New("unexpected payment outcome")
	}

	if dOpts.noWait {
		fmt.Fprintln(out, outcome.Link)
		return nil
	}

	if _, err := promptLine(cmd, in, "Press Enter once payment is complete:"); err != nil {
		return err
	}
	followed, err := a.controller.FollowDownloadLink(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, followed.Link)
	if err := browserOpener(a.logger).Open(ctx, followed.Link); err != nil {
		a.logger.Warnf("open download link: %v", err)
	}
	return nil
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List payments initiated from this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.runApp(cmd, func(a *app) error {
				if email == "" {
					if s := a.controller.Session(); s != nil {
						email = s.Email
					}
				}
				if email == "" {
					return errors.New("sign in or pass --email")
				}

				txns, err := a.transactions.ListByEmail(cmd.Context(), email)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "CREATED\tRESOURCE\tKIND\tTRACKING ID\tFOLLOWED")
				for _, t := range txns {
					followed := "no"
					if t.FollowedAt != nil {
						followed = t.FollowedAt.Format(time.RFC3339)
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
						t.CreatedAt.Format(time.RFC3339), t.ResourceID, t.Kind, t.OrderTrackingID, followed)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "purchaser email (default: signed-in email)")
	return cmd
}
