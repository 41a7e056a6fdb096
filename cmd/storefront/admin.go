package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"books-storefront/internal/dto"
	"books-storefront/internal/model"
	"books-storefront/internal/service"

	"github.com/spf13/cobra"
)

type adminOptions struct {
	username string
	app      *app
}

func newAdminCmd(opts *rootOptions) *cobra.Command {
	aOpts := &adminOptions{}
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage the catalogue (requires the admin password)",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			password, err := promptPassword(cmd, "Admin password:")
			if err != nil {
				return err
			}
			a, err := opts.app(cmd)
			if err != nil {
				return err
			}
			if err := a.admin.Login(cmd.Context(), aOpts.username, password); err != nil {
				a.Close()
				return err
			}
			aOpts.app = a
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if aOpts.app != nil {
				aOpts.app.admin.Lock()
				aOpts.app.Close()
			}
		},
	}
	cmd.PersistentFlags().StringVar(&aOpts.username, "username", service.DefaultAdminUsername, "admin username")

	cmd.AddCommand(
		newAdminStatsCmd(aOpts),
		newAdminListCmd(aOpts),
		newAdminUploadCmd(aOpts),
		newAdminDeleteCmd(aOpts),
		newAdminPasswdCmd(aOpts),
	)
	return cmd
}

func newAdminStatsCmd(aOpts *adminOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show resource and user counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := aOpts.app.admin.Stats(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "Books\t%d\n", stats.Books)
			fmt.Fprintf(tw, "Past papers\t%d\n", stats.Papers)
			fmt.Fprintf(tw, "Setbooks\t%d\n", stats.Setbooks)
			fmt.Fprintf(tw, "Users\t%d\n", stats.Users)
			return tw.Flush()
		},
	}
}

func newAdminListCmd(aOpts *adminOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "list <book|paper|setbook>",
		Short:     "List resources of one type",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(model.ResourceTypeBook), string(model.ResourceTypePaper), string(model.ResourceTypeSetbook)},
		RunE: func(cmd *cobra.Command, args []string) error {
			resources, err := aOpts.app.admin.List(cmd.Context(), model.ResourceType(args[0]))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(resources) == 0 {
				fmt.Fprintln(out, model.NoResourcesMessage)
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tCLASS\tSUBJECT")
			for _, r := range resources {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.Title, r.GradeLabel(), r.Subject)
			}
			return tw.Flush()
		},
	}
}

func newAdminUploadCmd(aOpts *adminOptions) *cobra.Command {
	var (
		req          dto.UploadRequest
		resourceType string
		coverPath    string
	)
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a new resource",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req.ResourceType = model.ResourceType(resourceType)
			if coverPath != "" {
				cover, err := os.ReadFile(coverPath)
				if err != nil {
					return fmt.Errorf("read cover: %w", err)
				}
				req.Cover = cover
				req.CoverName = filepath.Base(coverPath)
			}
			msg, err := aOpts.app.admin.Upload(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
	cmd.Flags().StringVar(&resourceType, "type", string(model.ResourceTypeBook), "book, paper or setbook")
	cmd.Flags().StringVar(&req.ClassGrade, "class", "", "class value, e.g. grade6")
	cmd.Flags().StringVar(&req.Subject, "subject", "", "subject name")
	cmd.Flags().StringVar(&req.Title, "title", "", "resource title")
	cmd.Flags().StringVar(&req.Description, "description", "", "short description")
	cmd.Flags().StringVar(&coverPath, "cover", "", "cover image file")
	return cmd
}

func newAdminDeleteCmd(aOpts *adminOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <resource-id>",
		Short: "Delete a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := aOpts.app.admin.Delete(cmd.Context(), model.ResourceID(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}

func newAdminPasswdCmd(aOpts *adminOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "passwd",
		Short: "Change the admin password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			oldPassword, err := promptPassword(cmd, "Current password:")
			if err != nil {
				return err
			}
			newPassword, err := promptPassword(cmd, "New password:")
			if err != nil {
				return err
			}
			msg, err := aOpts.app.admin.ChangePassword(cmd.Context(), aOpts.username, oldPassword, newPassword)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}
