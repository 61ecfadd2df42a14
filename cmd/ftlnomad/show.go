package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"ftlnomad/internal/content"
)

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <kind> <slug>",
		Short: "Print one entry as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, args[0], args[1])
		},
	}
}

func runShow(cmd *cobra.Command, kindName, slug string) error {
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

	entry, err := coll.GetEntry(cmd.Context(), slug)
	if errors.Is(err, content.ErrNotFound) || errors.Is(err, content.ErrRootMissing) {
		return fmt.Errorf("no %s entry %q", kind, slug)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(entry)
}
