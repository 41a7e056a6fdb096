package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"books-storefront/internal/model"
	"books-storefront/internal/service"

	"github.com/spf13/cobra"
)

func newCatalogCmd(opts *rootOptions) *cobra.Command {
	var (
		class   string
		subject string
		watch   bool
	)
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List resources, optionally filtered by class and subject",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.runApp(cmd, func(a *app) error {
				filter := model.Filter{}
				if class != "" || subject != "" {
					f, err := a.controller.FindResources(class, subject)
					if err != nil {
						return err
					}
					filter = f
				}

				out := cmd.OutOrStdout()
				if watch {
					ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
					defer stop()
					a.catalog.Watch(ctx, filter, func(listing *model.Listing, err error) {
						if err != nil {
							fmt.Fprintln(cmd.ErrOrStderr(), service.Message(err))
						}
						printListing(out, listing)
					})
					return nil
				}

				listing, err := a.controller.Refresh(cmd.Context(), filter)
				printListing(out, listing)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&class, "class", "", "class value, e.g. grade6 or form2")
	cmd.Flags().StringVar(&subject, "subject", "", "subject name")
	cmd.Flags().BoolVar(&watch, "watch", false, "keep refreshing until interrupted")
	return cmd
}

func printListing(w io.Writer, listing *model.Listing) {
	if listing == nil {
		return
	}
	if listing.Message != "" {
		fmt.Fprintln(w, listing.Message)
	}
	if listing.Empty() {
		return
	}

	if listing.Filter.Empty() {
		printCards(w, "Books", listing.Books)
		printCards(w, "Past Papers", listing.Papers)
		printCards(w, "Setbooks", listing.Setbooks)
		return
	}
	printCards(w, "Results", listing.All)
}

func printCards(w io.Writer, heading string, cards []model.Card) {
	fmt.Fprintf(w, "\n%s\n", heading)
	if len(cards) == 0 {
		fmt.Fprintln(w, "  "+model.NoResourcesMessage)
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  ID\tTITLE\tCLASS\tSUBJECT\tPRICE")
	for _, c := range cards {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n", c.ID, c.Title, c.GradeLabel(), c.Subject, c.PriceTag)
	}
	_ = tw.Flush()
}

func newClassesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classes",
		Short: "List the class values the catalogue filter accepts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(model.Classes, "\n"))
			return nil
		},
	}
}

func newSubjectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "subjects <class>",
		Short: "List the subjects offered for a class",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			subjects := model.SubjectsFor(args[0])
			if subjects == nil {
				return errors.New("unknown class " + args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(subjects, "\n"))
			return nil
		},
	}
}
