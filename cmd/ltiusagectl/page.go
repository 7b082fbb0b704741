package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dalemusser/ltiusage/internal/app/client/usageclient"
	"github.com/dalemusser/ltiusage/internal/app/store/queries/usagepages"
	"github.com/dalemusser/ltiusage/internal/app/system/csvutil"
	"github.com/dalemusser/ltiusage/internal/app/system/labels"
	"github.com/dalemusser/ltiusage/internal/app/system/pagerwidget"
	"github.com/spf13/cobra"
)

var pageCmd = &cobra.Command{
	Use:   "page",
	Short: "Print one page of one tool type",
	Example: `  ltiusagectl page --type 3 --page 1
  ltiusagectl page --type 0 --output json
  ltiusagectl page --type 3 --output csv > quiz.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		client := usageclient.New(settings.GetString("server"), settings.GetString("token"), logger)

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		res, err := client.FetchPageSize(ctx, settings.GetInt64("type"), settings.GetInt("page"), settings.GetInt("perpage"))
		if err != nil {
			return err
		}

		switch settings.GetString("output") {
		case "json":
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		case "table":
			return printPage(cmd.OutOrStdout(), res)
		case "csv":
			return csvutil.WriteUsage(cmd.OutOrStdout(), res, true)
		default:
			return fmt.Errorf("unsupported output format: %s", settings.GetString("output"))
		}
	},
}

func init() {
	f := pageCmd.Flags()
	f.Int64("type", 0, "tool type id (0 is Custom/Manual LTI)")
	f.Int("page", 0, "zero-based page index")
	f.Int("perpage", 0, "rows per page (server default when 0)")
	f.StringP("output", "o", "table", "output format: table, json or csv")
	rootCmd.AddCommand(pageCmd)
}

func printPage(w io.Writer, res usagepages.PageResult) error {
	fmt.Fprintf(w, "%s (%d)\n\n", res.GroupName, res.Total)

	s := labels.English
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join([]string{s.Course, s.Name, s.Visible, s.Link}, "\t")))
	for _, r := range res.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Course, r.Name, s.YesNo(r.Visible == 1), r.Link)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%s\n", pagerwidget.Build(res.PagerMeta(), "").Text())
	return nil
}
