package main

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"karaparty/internal/api"
)

func newPendingCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List staged submissions and the committed release order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *api.Client) error {
				pending, err := client.Pending(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, pending)
				}

				stdout := cmd.OutOrStdout()
				if len(pending.Staged) == 0 && len(pending.Queued) == 0 {
					fmt.Fprintln(stdout, "Nothing pending")
					return nil
				}
				if len(pending.Staged) > 0 {
					fmt.Fprintf(stdout, "Staged for the next cycle (%d):\n", len(pending.Staged))
					rows := make([][]string, 0, len(pending.Staged))
					for _, entry := range pending.Staged {
						rows = append(rows, []string{entry.Team, entry.Resource})
					}
					writeTable(stdout, []string{"Team", "Song"}, rows)
				}
				if len(pending.Queued) > 0 {
					fmt.Fprintf(stdout, "Queued in release order (%d):\n", len(pending.Queued))
					rows := make([][]string, 0, len(pending.Queued))
					for i, entry := range pending.Queued {
						rows = append(rows, []string{strconv.Itoa(i + 1), entry.Team, entry.Resource, entry.CommittedAt})
					}
					writeTable(stdout, []string{"#", "Team", "Song", "Committed"}, rows, text.AlignRight)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
