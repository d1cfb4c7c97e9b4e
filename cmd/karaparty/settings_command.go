package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"karaparty/internal/api"
)

func newSettingsCommand(ctx *commandContext) *cobra.Command {
	var count int
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the dispatch count and interval of the running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			var req api.SettingsRequest
			if cmd.Flags().Changed("count") {
				if count <= 0 {
					return errors.New("--count must be positive")
				}
				req.DispatchCount = &count
			}
			if cmd.Flags().Changed("interval") {
				seconds := int(interval / time.Second)
				if seconds <= 0 {
					return errors.New("--interval must be at least 1s")
				}
				req.IntervalSeconds = &seconds
			}
			return ctx.withClient(func(client *api.Client) error {
				var resp api.SettingsResponse
				if req.DispatchCount == nil && req.IntervalSeconds == nil {
					status, err := client.Status(cmd.Context())
					if err != nil {
						return err
					}
					resp = api.SettingsResponse{
						DispatchCount:   status.Dispatcher.DispatchCount,
						IntervalSeconds: status.Dispatcher.IntervalSeconds,
					}
				} else {
					var err error
					if resp, err = client.UpdateSettings(cmd.Context(), req); err != nil {
						return err
					}
				}
				stdout := cmd.OutOrStdout()
				fmt.Fprintf(stdout, "Dispatch count: %d\n", resp.DispatchCount)
				fmt.Fprintf(stdout, "Interval: %s\n", time.Duration(resp.IntervalSeconds)*time.Second)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&count, "count", 0, "Songs released per cycle")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Time between cycles (e.g. 90s, 2m)")
	return cmd
}
