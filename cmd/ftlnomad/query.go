package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ftlnomad/internal/content"
)

func queryCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Search the full-text index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, strings.Join(args, " "), kind)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "Content kind to filter")
	return cmd
}

func runQuery(cmd *cobra.Command, query, kindName string) error {
	ctx := cmd.Context()

	kind := ""
	if kindName != "" {
		k, err := content.ParseKind(kindName)
		if err != nil {
			return err
		}
		kind = string(k)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	results, err := db.Search(ctx, query, kind)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(out, "No matches found.")
		return nil
	}
	for _, result := range results {
		fmt.Fprintf(out, "%s (%s/%s) score=%.2f\n", result.Title, result.Kind, result.Slug, result.Score)
		if result.Snippet != "" {
			fmt.Fprintf(out, "    %s\n", result.Snippet)
		}
	}
	return nil
}
