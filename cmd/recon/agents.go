package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/recon/internal/agents"
)

func newAgentsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "agents",
		Short: "List the available research agents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				return printAgents(cmd.OutOrStdout(), s.domain.Agents.List())
			})
		},
	}
}

func printAgents(w io.Writer, infos []agents.Info) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tSTEPS\tDESCRIPTION")
	for _, info := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			info.Name, info.Kind, strings.Join(info.Steps, ","), info.Description)
	}
	return tw.Flush()
}

func newRunCmd(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "run <agent> <input...>",
		Short: "Run a research agent against the given input",
		Example: `  recon run initiatives "Acme Corp"
  recon run dossier Jane Doe --json
  recon run documents "What does section 4 require?"`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, input := args[0], strings.Join(args[1:], " ")
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				out, err := s.domain.Agents.Run(ctx, name, input)
				if err != nil {
					return err
				}
				return printOutput(cmd.OutOrStdout(), out, asJSON)
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full run output as JSON")
	return cmd
}

func printOutput(w io.Writer, out *agents.Output, asJSON bool) error {
	if !asJSON && out.Text != "" {
		_, err := fmt.Fprintln(w, out.Text)
		return err
	}

	var v any = out
	if !asJSON {
		v = out.Value
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
