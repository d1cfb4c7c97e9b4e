package main

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"karaparty/internal/api"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon, dispatcher, and queue status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *api.Client) error {
				status, err := client.Status(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, status)
				}

				stdout := cmd.OutOrStdout()
				colorize := shouldColorize(stdout)
				for _, line := range statusLines(status, colorize) {
					fmt.Fprintln(stdout, line)
				}
				fmt.Fprintln(stdout)
				for _, line := range renderSectionHeader("Queue", colorize) {
					fmt.Fprintln(stdout, line)
				}
				writeTable(stdout, []string{"Teams", "Queued", "Dispatched"}, [][]string{{
					strconv.Itoa(status.Queue.Teams),
					strconv.Itoa(status.Queue.Queued),
					strconv.Itoa(status.Queue.Dispatched),
				}}, text.AlignRight, text.AlignRight, text.AlignRight)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
