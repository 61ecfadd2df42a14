package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Find star systems by name or faction",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, strings.Join(args, " "))
		},
	}
}

func runSearch(cmd *cobra.Command, query string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	lib, err := openLibrary(cfg)
	if err != nil {
		return err
	}

	systems, err := newEngine(cfg, lib, newLogger(cfg)).Search(cmd.Context(), query)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(systems) == 0 {
		fmt.Fprintln(out, "No matches found.")
		return nil
	}
	for _, sys := range systems {
		faction := sys.Faction
		if faction == "" {
			faction = "unaligned"
		}
		fmt.Fprintf(out, "%s (%s) at %d,%d [%s]\n", sys.Name, sys.ID, sys.Coordinates.Q, sys.Coordinates.R, faction)
	}
	return nil
}
