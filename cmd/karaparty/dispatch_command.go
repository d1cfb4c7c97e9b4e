package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"karaparty/internal/api"
)

func newDispatchCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Run a dispatch cycle now instead of waiting for the timer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *api.Client) error {
				report, err := client.Dispatch(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, report)
				}

				stdout := cmd.OutOrStdout()
				if len(report.Released) == 0 {
					fmt.Fprintf(stdout, "Cycle %s released nothing\n", report.ID)
					return nil
				}
				failed := make(map[string]string, len(report.Failures))
				for _, f := range report.Failures {
					failed[f.Team+"\x00"+f.Resource] = f.Error
				}
				rows := make([][]string, 0, len(report.Released))
				for _, entry := range report.Released {
					upload := "ok"
					if msg, ok := failed[entry.Team+"\x00"+entry.Resource]; ok {
						upload = "failed: " + msg
					}
					rows = append(rows, []string{entry.Team, entry.Resource, upload})
				}
				fmt.Fprintf(stdout, "Cycle %s released %d song(s):\n", report.ID, len(report.Released))
				writeTable(stdout, []string{"Team", "Song", "Upload"}, rows)
				if report.LogError != "" {
					fmt.Fprintf(stdout, "warning: dispatch log not updated: %s\n", report.LogError)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
