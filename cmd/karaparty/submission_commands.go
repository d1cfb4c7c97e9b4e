package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"karaparty/internal/api"
)

func newSubmissionCommands(ctx *commandContext) []*cobra.Command {
	var jsonOutput bool

	submitCmd := &cobra.Command{
		Use:   "submit <team> <message>",
		Short: "Submit a chat message on behalf of a team",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmission(cmd, ctx, jsonOutput, func(c context.Context, client *api.Client) (api.Outcome, error) {
				return client.Submit(c, args[0], args[1])
			})
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <team> <message>",
		Short: "Withdraw a previously submitted message",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmission(cmd, ctx, jsonOutput, func(c context.Context, client *api.Client) (api.Outcome, error) {
				return client.Delete(c, args[0], args[1])
			})
		},
	}

	editCmd := &cobra.Command{
		Use:   "edit <team> <before> <after>",
		Short: "Replace a submitted message with new text",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmission(cmd, ctx, jsonOutput, func(c context.Context, client *api.Client) (api.Outcome, error) {
				return client.Edit(c, args[0], args[1], args[2])
			})
		},
	}

	cmds := []*cobra.Command{submitCmd, deleteCmd, editCmd}
	for _, cmd := range cmds {
		cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	}
	return cmds
}

func runSubmission(cmd *cobra.Command, ctx *commandContext, jsonOutput bool, call func(context.Context, *api.Client) (api.Outcome, error)) error {
	return ctx.withClient(func(client *api.Client) error {
		outcome, err := call(cmd.Context(), client)
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(cmd, outcome)
		}
		return printOutcome(cmd.OutOrStdout(), outcome)
	})
}

// printOutcome writes a one-line summary. Rejections are returned as errors
// so scripts see a non-zero exit.
func printOutcome(w io.Writer, outcome api.Outcome) error {
	switch {
	case outcome.Accepted:
		fmt.Fprintf(w, "Accepted %s for %s\n", outcome.Resource, outcome.Team)
	case outcome.Ignored:
		fmt.Fprintln(w, "Ignored: nothing to change")
	default:
		return fmt.Errorf("rejected (%s): %s", outcome.Warning, outcome.Message)
	}
	return nil
}
