package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"ftlnomad/internal/content"
)

func listCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list <kind>",
		Short: "List the entries of a content kind",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, args[0], asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print entries as JSON")
	return cmd
}

func runList(cmd *cobra.Command, kindName string, asJSON bool) error {
	kind, err := content.ParseKind(kindName)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	lib, err := openLibrary(cfg)
	if err != nil {
		return err
	}
	coll, err := lib.Collection(kind)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	entries, err := coll.ListEntries(cmd.Context())
	if errors.Is(err, content.ErrRootMissing) {
		fmt.Fprintf(out, "No %s directory at %s.\n", kind, lib.Dir(kind))
		return nil
	}
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No entries found.")
		return nil
	}
	for _, entry := range entries {
		meta := entry.EntryMeta()
		fmt.Fprintf(out, "%s\t%s\n", meta.Slug, meta.Title)
	}
	return nil
}
