package main

import (
	"fmt"
	"text/tabwriter"

	"sketch-critic/internal/gallery"

	"github.com/spf13/cobra"
)

func newGalleryCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gallery",
		Short: "Inspect saved drawings",
	}
	open := func() (*gallery.Store, error) {
		return gallery.Open(e.cfg.GalleryDir, e.logger.Named("gallery"))
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List drawings, most recently changed first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tMODIFIED\tCRITIQUES")
			for _, d := range store.List() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", d.ID, d.Title, d.Modified.Local().Format("2006-01-02 15:04"), len(d.Feedback))
			}
			return w.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Print a drawing's details and critiques",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open()
			if err != nil {
				return err
			}
			d, err := store.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "%s\n", d.Title)
			fmt.Fprintf(e.out, "  id:       %s\n", d.ID)
			fmt.Fprintf(e.out, "  image:    %s\n", store.ImagePath(d))
			fmt.Fprintf(e.out, "  created:  %s\n", d.Created.Local().Format("2006-01-02 15:04"))
			if !d.Context.IsZero() {
				fmt.Fprintf(e.out, "  style:    %s\n  subject:  %s\n  focus:    %s\n", d.Context.Style, d.Context.Subject, d.Context.Focus)
			}
			for i, entry := range d.Feedback {
				fmt.Fprintf(e.out, "\n--- critique %d (%s)\n%s\n", i+1, entry.Created.Local().Format("2006-01-02 15:04"), entry.Text)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rename <id> <title>",
		Short: "Change a drawing's title",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open()
			if err != nil {
				return err
			}
			return store.Rename(args[0], args[1])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a drawing and its image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open()
			if err != nil {
				return err
			}
			if err := store.Delete(args[0]); err != nil {
				return err
			}
			e.logger.Info("deleted", "id", args[0])
			return nil
		},
	})
	return cmd
}
