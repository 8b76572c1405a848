package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"spshare/application"
	"spshare/database"
	"spshare/domain/snapshot"
	"spshare/infrastructure/repositories"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Catalog the lists and items of a site",
	Long: `Enumerate a site, its lists and every list item, and store the metadata
as a new snapshot in the catalog. Hidden lists are skipped unless --hidden
is set. Use --list to restrict the run to named lists.`,
	Args: cobra.NoArgs,
	RunE: runSnapshot,
}

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List catalogued snapshots",
	Args:  cobra.NoArgs,
	RunE:  runSnapshots,
}

var (
	snapshotHidden      bool
	snapshotLists       []string
	snapshotPageSize    int
	snapshotConcurrency int
	snapshotsLimit      int
)

func init() {
	snapshotCmd.Flags().BoolVar(&snapshotHidden, "hidden", false, "include hidden lists")
	snapshotCmd.Flags().StringSliceVar(&snapshotLists, "list", nil, "only these list titles (repeatable)")
	snapshotCmd.Flags().IntVar(&snapshotPageSize, "page-size", 0, "items per request (default from config)")
	snapshotCmd.Flags().IntVar(&snapshotConcurrency, "concurrency", 0, "lists walked in parallel (default from config)")
	snapshotsCmd.Flags().IntVar(&snapshotsLimit, "limit", 20, "maximum snapshots to show")

	rootCmd.AddCommand(snapshotCmd, snapshotsCmd)
}

// snapshotParameters merges flags over the configured defaults.
func snapshotParameters(site string) snapshot.Parameters {
	params := snapshot.DefaultParameters(site)
	params.Mode = queryMode()
	params.PageSize = cfg.Snapshot.PageSize
	params.Concurrency = cfg.Snapshot.Concurrency
	params.IncludeHidden = cfg.Snapshot.IncludeHidden || snapshotHidden
	params.ListTitles = snapshotLists
	if snapshotPageSize > 0 {
		params.PageSize = snapshotPageSize
	}
	if snapshotConcurrency > 0 {
		params.Concurrency = snapshotConcurrency
	}
	return params
}

func newSnapshotService(db *database.Database, site string, reg prometheus.Registerer) (*application.SnapshotService, error) {
	svc, err := newService(site, reg)
	if err != nil {
		return nil, err
	}
	return application.NewSnapshotService(
		svc,
		repositories.NewSqliteSnapshotRepository(db),
		repositories.NewSqliteCatalogRepository(db),
	), nil
}

func runSnapshot(cmd *cobra.Command, _ []string) error {
	site, err := siteURL()
	if err != nil {
		return err
	}
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	service, err := newSnapshotService(db, site, nil)
	if err != nil {
		return err
	}

	snap, err := service.Run(cmd.Context(), snapshotParameters(site))
	if snap != nil {
		printSnapshot(cmd, snap)
	}
	return err
}

func printSnapshot(cmd *cobra.Command, s *snapshot.Snapshot) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Snapshot %d %s: %s lists, %s items",
		s.ID, s.Status, humanize.Comma(int64(s.ListsCount)), humanize.Comma(int64(s.ItemsCount)))
	if d := s.Duration(); d > 0 {
		fmt.Fprintf(out, " in %s", d.Round(time.Millisecond))
	}
	fmt.Fprintln(out)
	if s.Error != "" {
		fmt.Fprintf(out, "Error: %s\n", s.Error)
	}
}

func runSnapshots(cmd *cobra.Command, _ []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	catalog := application.NewCatalogService(
		repositories.NewSqliteSnapshotRepository(db),
		repositories.NewSqliteCatalogRepository(db),
	)
	snaps, err := catalog.ListSnapshots(cmd.Context(), siteFlag, snapshotsLimit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSITE\tMODE\tSTATUS\tSTARTED\tLISTS\tITEMS")
	for _, s := range snaps {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%s\n",
			s.ID, s.SiteURL, s.Mode, s.Status,
			humanize.Time(s.StartedAt), s.ListsCount, humanize.Comma(int64(s.ItemsCount)))
	}
	return w.Flush()
}

// scheduleSnapshots runs a snapshot of site every interval until ctx ends.
// A failed run is logged and the next one still happens.
func scheduleSnapshots(ctx context.Context, service *application.SnapshotService, site string, interval time.Duration) {
	log := logger.WithComponent("scheduler").WithSite(site)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		snap, err := service.Run(ctx, snapshotParameters(site))
		switch {
		case errors.Is(err, context.Canceled):
			return
		case err != nil:
			log.Error("Scheduled snapshot failed", "error", err)
		default:
			log.Info("Scheduled snapshot completed",
				"snapshot_id", snap.ID,
				"lists", snap.ListsCount,
				"items", snap.ItemsCount,
				"next", time.Now().Add(interval).Format(time.RFC3339))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
