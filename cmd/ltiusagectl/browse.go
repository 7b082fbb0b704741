package main

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dalemusser/ltiusage/internal/app/client/pagerctl"
	"github.com/dalemusser/ltiusage/internal/app/client/tui"
	"github.com/dalemusser/ltiusage/internal/app/client/usageclient"
	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Page through the report interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		client := usageclient.New(settings.GetString("server"), settings.GetString("token"), logger)

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		groups, err := client.Listing(ctx, nil)
		cancel()
		if err != nil {
			return err
		}

		doc := pagerctl.NewDocument("/ltiusage", groups)
		ctl := pagerctl.New(client, logger)
		ctl.Timeout = settings.GetDuration("fetch-timeout")

		model := tui.New(doc, ctl)
		_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
		ctl.Wait()
		return err
	},
}

func init() {
	browseCmd.Flags().Duration("fetch-timeout", pagerctl.DefaultTimeout, "timeout for one page fetch")
	rootCmd.AddCommand(browseCmd)
}
