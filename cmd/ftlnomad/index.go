package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ftlnomad/internal/ingest"
)

func indexCmd() *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Synchronise the full-text index with the content tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd, full)
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "Re-index every file, ignoring stored hashes")
	return cmd
}

func runIndex(cmd *cobra.Command, full bool) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	lib, err := openLibrary(cfg)
	if err != nil {
		return err
	}
	db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	result, err := ingest.Run(ctx, lib, db, ingest.Options{Full: full, Logger: newLogger(cfg)})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Indexing complete.")
	fmt.Fprintf(out, "  Entries upserted: %d\n", result.EntriesUpserted)
	fmt.Fprintf(out, "  Entries removed:  %d\n", result.EntriesRemoved)
	fmt.Fprintf(out, "  Files skipped:    %d\n", result.FilesSkipped)
	for _, kind := range result.MissingKinds {
		fmt.Fprintf(out, "  Missing directory: %s (%s)\n", kind, lib.Dir(kind))
	}

	if len(result.Errors) > 0 {
		fmt.Fprintf(out, "\nErrors (%d):\n", len(result.Errors))
		for _, item := range result.Errors {
			fmt.Fprintf(out, "  - %v\n", item)
		}
		return fmt.Errorf("indexing completed with errors")
	}
	return nil
}
