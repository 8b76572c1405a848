package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"spshare/domain/sharepoint"
	"spshare/infrastructure/spclient"
	"spshare/spquery"
)

var siteCmd = &cobra.Command{
	Use:   "site",
	Short: "Show the site and its subsites",
	Args:  cobra.NoArgs,
	RunE:  runSite,
}

var listsCmd = &cobra.Command{
	Use:   "lists",
	Short: "List the lists and libraries of a site",
	Args:  cobra.NoArgs,
	RunE:  runLists,
}

var itemsCmd = &cobra.Command{
	Use:   "items [list-title]",
	Short: "Page through the items of a list",
	Args:  cobra.ExactArgs(1),
	RunE:  runItems,
}

var downloadCmd = &cobra.Command{
	Use:   "download [server-relative-url] [destination]",
	Short: "Download one file",
	Long: `Download a file by its server relative URL, for example
/sites/team/Shared Documents/report.docx. The destination defaults to the
file name in the current directory.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDownload,
}

var (
	showHidden   bool
	itemPageSize int
)

func init() {
	listsCmd.Flags().BoolVar(&showHidden, "hidden", false, "include hidden lists")
	itemsCmd.Flags().IntVar(&itemPageSize, "page-size", 500, "items per request")

	rootCmd.AddCommand(siteCmd, listsCmd, itemsCmd, downloadCmd)
}

func connect() (*spclient.Service, string, error) {
	site, err := siteURL()
	if err != nil {
		return nil, "", err
	}
	svc, err := newService(site, nil)
	if err != nil {
		return nil, "", err
	}
	return svc, svc.SiteURL(), nil
}

func runSite(cmd *cobra.Command, _ []string) error {
	svc, site, err := connect()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	web, err := svc.GetSite(ctx, site, spquery.SiteOptions(queryMode())...)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Title:     %s\n", web.Title)
	fmt.Fprintf(out, "URL:       %s\n", web.URL)
	fmt.Fprintf(out, "Template:  %s\n", web.WebTemplate)
	fmt.Fprintf(out, "Created:   %s\n", humanize.Time(web.Created.Time))
	fmt.Fprintf(out, "Modified:  %s\n", humanize.Time(web.LastItemModifiedDate.Time))

	subsites, err := svc.GetSites(ctx, site, spquery.SiteOptions(spquery.Overview)...)
	if err != nil {
		return err
	}
	if len(subsites) > 0 {
		fmt.Fprintf(out, "\nSubsites (%d):\n", len(subsites))
		for _, s := range subsites {
			fmt.Fprintf(out, "  %s  %s\n", s.URL, s.Title)
		}
	}
	return nil
}

func runLists(cmd *cobra.Command, _ []string) error {
	svc, site, err := connect()
	if err != nil {
		return err
	}

	lists, err := svc.GetLists(cmd.Context(), site, spquery.ListOptions(queryMode())...)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tTEMPLATE\tITEMS\tMODIFIED")
	for _, l := range lists {
		if l.Hidden && !showHidden {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			l.ID, l.Title, l.BaseTemplate,
			humanize.Comma(int64(l.ItemCount)),
			humanize.Time(l.LastItemModifiedDate.Time))
	}
	return w.Flush()
}

func runItems(cmd *cobra.Command, args []string) error {
	svc, site, err := connect()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	list, err := svc.GetListByTitle(ctx, site, args[0], spquery.ListOptions(queryMode())...)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tSIZE\tPATH")
	var count int
	var total int64
	err = svc.WalkListItems(ctx, site, list, itemPageSize, queryMode(), func(page []sharepoint.ListItem) error {
		for i := range page {
			item := &page[i]
			kind, size := "item", "-"
			switch {
			case item.IsFolder():
				kind = "folder"
			case item.IsFile():
				kind = "file"
				size = humanize.Bytes(uint64(item.FileSize()))
				total += item.FileSize()
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", item.ID, kind, size, item.FileRef)
		}
		count += len(page)
		return w.Flush()
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%s items, %s in files\n", humanize.Comma(int64(count)), humanize.Bytes(uint64(total)))
	return nil
}

func runDownload(cmd *cobra.Command, args []string) error {
	svc, site, err := connect()
	if err != nil {
		return err
	}

	dest := path.Base(args[0])
	if len(args) == 2 {
		dest = args[1]
	}
	n, err := download(cmd.Context(), svc, site, args[0], dest)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%s)\n", args[0], dest, humanize.Bytes(uint64(n)))
	return nil
}

func download(ctx context.Context, svc *spclient.Service, site, fileURL, dest string) (int64, error) {
	body, err := svc.DownloadFile(ctx, site, fileURL)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	f, err := os.Create(dest)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("write %s: %w", dest, err)
	}
	return n, nil
}
