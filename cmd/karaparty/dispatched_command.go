package main

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"karaparty/internal/api"
	"karaparty/internal/links"
)

func newDispatchedCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var team string
	cmd := &cobra.Command{
		Use:   "dispatched",
		Short: "Show songs already dispatched",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *api.Client) error {
				songs, err := client.Dispatched(cmd.Context())
				if err != nil {
					return err
				}
				if team := links.NormalizeTeam(team); team != "" {
					filtered := songs[:0]
					for _, song := range songs {
						if song.Team == team {
							filtered = append(filtered, song)
						}
					}
					songs = filtered
				}
				if jsonOutput {
					return writeJSON(cmd, songs)
				}

				stdout := cmd.OutOrStdout()
				if len(songs) == 0 {
					fmt.Fprintln(stdout, "No songs dispatched yet")
					return nil
				}
				rows := make([][]string, 0, len(songs))
				for i, song := range songs {
					rows = append(rows, []string{strconv.Itoa(i + 1), song.Team, song.Link, song.Timestamp})
				}
				writeTable(stdout, []string{"#", "Team", "Song", "Dispatched"}, rows, text.AlignRight)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&team, "team", "", "Only show songs from this team")
	return cmd
}
