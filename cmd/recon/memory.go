package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/recon/internal/memory"
	"github.com/JaimeStill/recon/pkg/formatting"
)

func newMemoryCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Manage semantic memories",
	}
	cmd.AddCommand(
		newMemoryListCmd(opts),
		newMemoryIngestCmd(opts),
		newMemoryDeleteCmd(opts),
	)
	return cmd
}

func newMemoryListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List memories with document and passage counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				list, err := s.domain.Memory.Memories(ctx)
				if err != nil {
					return err
				}
				return printMemories(cmd.OutOrStdout(), list)
			})
		},
	}
}

func printMemories(w io.Writer, list []memory.Memory) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDOCUMENTS\tPASSAGES\tUPDATED")
	for _, m := range list {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n",
			m.Name, m.Documents, m.Passages, m.UpdatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

func newMemoryIngestCmd(opts *options) *cobra.Command {
	var (
		source      string
		contentType string
	)

	cmd := &cobra.Command{
		Use:   "ingest <memory> <file>",
		Short: "Extract, chunk, embed, and store a document in a memory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, path := args[0], args[1]
			if err := memory.ValidateName(name); err != nil {
				return err
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			if source == "" {
				source = filepath.Base(path)
			}

			ingest, err := memory.FileCommand(source, contentType, data)
			if err != nil {
				return err
			}
			ingest.Memory = name

			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				doc, err := s.domain.Memory.Ingest(ctx, ingest)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ingested %s (%s) into %s: %d passages\n",
					doc.Source, formatting.FormatBytes(int64(len(data)), 1), doc.Memory, doc.Passages)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "source label stored with the document (default: file name)")
	cmd.Flags().StringVar(&contentType, "content-type", "", "media type (default: detected)")
	return cmd
}

func newMemoryDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <memory>",
		Short: "Delete a memory and all of its documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				if err := s.domain.Memory.Delete(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			})
		},
	}
}
