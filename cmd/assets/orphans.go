package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"bookstore-proxy/internal/domains/book/model"
	"bookstore-proxy/internal/infrastructure/storage"

	"github.com/spf13/cobra"
)

var (
	orphansDelete bool
	orphansMinAge time.Duration
)

var orphansCmd = &cobra.Command{
	Use:   "orphans",
	Short: "List stored images that no book references",
	Long: `Compare every stored image with the image paths of the books the
upstream backend currently holds, and print the ones nothing points at.

Images are left behind when a create or update fails upstream after the
upload was stored, and when a book is deleted. Use --delete to remove them.

Images younger than --min-age are skipped: an upload whose book has not
been committed yet looks exactly like an orphan.`,
	RunE: runOrphans,
}

func init() {
	orphansCmd.Flags().BoolVarP(&orphansDelete, "delete", "d", false, "Remove the orphaned images")
	orphansCmd.Flags().DurationVar(&orphansMinAge, "min-age", time.Hour, "Ignore images modified more recently than this")
}

type assetCatalog interface {
	List(ctx context.Context) ([]storage.StoredAsset, error)
	Remove(ctx context.Context, publicPath string)
}

type bookCatalog interface {
	ListBooks(ctx context.Context) ([]model.Book, error)
}

func runOrphans(cmd *cobra.Command, args []string) error {
	if orphansMinAge < 0 {
		return fmt.Errorf("--min-age must not be negative")
	}
	return reportOrphans(cmd.Context(), cmd.OutOrStdout(), appContainer.Assets, appContainer.Upstream, orphanOptions{
		Remove: orphansDelete,
		MinAge: orphansMinAge,
	})
}

type orphanOptions struct {
	Remove bool
	// MinAge excludes images modified within this window before now.
	MinAge time.Duration
	now    func() time.Time
}

func (o orphanOptions) cutoff() time.Time {
	now := time.Now
	if o.now != nil {
		now = o.now
	}
	return now().Add(-o.MinAge)
}

// reportOrphans prints one public path per line, then a summary.
func reportOrphans(ctx context.Context, out io.Writer, assets assetCatalog, books bookCatalog, opts orphanOptions) error {
	orphans, err := findOrphans(ctx, assets, books, opts.cutoff())
	if err != nil {
		return err
	}

	for _, p := range orphans {
		fmt.Fprintln(out, p)
		if opts.Remove {
			assets.Remove(ctx, p)
		}
	}

	switch {
	case len(orphans) == 0:
		fmt.Fprintln(out, "No orphaned images.")
	case opts.Remove:
		fmt.Fprintf(out, "Removed %d orphaned image(s).\n", len(orphans))
	default:
		fmt.Fprintf(out, "%d orphaned image(s). Re-run with --delete to remove them.\n", len(orphans))
	}
	return nil
}

// findOrphans returns the public paths of stored images that no book
// references and that were last modified before cutoff.
func findOrphans(ctx context.Context, assets assetCatalog, books bookCatalog, cutoff time.Time) ([]string, error) {
	// Stored images first: a book committed between the two calls still
	// counts as a reference.
	stored, err := assets.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stored images: %w", err)
	}
	list, err := books.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	referenced := make(map[string]struct{}, len(list))
	for i := range list {
		if img := list[i].CurrentImage(); img != "" {
			referenced[img] = struct{}{}
		}
	}

	orphans := []string{}
	for _, a := range stored {
		if a.ModTime.After(cutoff) {
			continue
		}
		if _, ok := referenced[a.PublicPath]; !ok {
			orphans = append(orphans, a.PublicPath)
		}
	}
	sort.Strings(orphans)
	return orphans, nil
}
