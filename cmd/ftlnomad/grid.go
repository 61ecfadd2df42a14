package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"ftlnomad/internal/hex"
	"ftlnomad/internal/starmap"
)

func gridCmd() *cobra.Command {
	var q, r, radius int
	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Print the hex grid around a centre cell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGrid(cmd, q, r, radius)
		},
	}
	cmd.Flags().IntVar(&q, "q", 0, "Axial q of the centre cell")
	cmd.Flags().IntVar(&r, "r", 0, "Axial r of the centre cell")
	cmd.Flags().IntVar(&radius, "radius", 5, "Rings around the centre")
	return cmd
}

func runGrid(cmd *cobra.Command, q, r, radius int) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	lib, err := openLibrary(cfg)
	if err != nil {
		return err
	}
	engine := newEngine(cfg, lib, newLogger(cfg))

	center := hex.NewAxial(q, r)
	radius = min(radius, engine.MaxRadius())
	cells, err := engine.GridAt(cmd.Context(), center, radius)
	if err != nil {
		return err
	}
	renderGrid(cmd.OutOrStdout(), center, radius, cells)
	return nil
}

// renderGrid draws one text row per r, indented so neighbouring rows
// interlock, followed by the occupied cells. "*" marks a system, "@" the
// centre and "." an empty cell.
func renderGrid(w io.Writer, center hex.Axial, radius int, cells []starmap.Cell) {
	byKey := make(map[hex.Key]starmap.Cell, len(cells))
	for _, c := range cells {
		byKey[c.Coordinates.Key()] = c
	}

	for dr := -radius; dr <= radius; dr++ {
		var row strings.Builder
		row.WriteString(strings.Repeat(" ", abs(dr)))
		for dq := max(-radius, -dr-radius); dq <= min(radius, -dr+radius); dq++ {
			key := hex.Key{Q: center.Q + dq, R: center.R + dr}
			mark := "."
			if c, ok := byKey[key]; ok && !c.IsEmpty {
				mark = "*"
			} else if dq == 0 && dr == 0 {
				mark = "@"
			}
			row.WriteString(mark)
			row.WriteString(" ")
		}
		fmt.Fprintln(w, strings.TrimRight(row.String(), " "))
	}

	systems := 0
	for _, c := range cells {
		if c.IsEmpty {
			continue
		}
		systems++
		fmt.Fprintf(w, "  %s (%d,%d) %s, threats %s\n", c.Name, c.Coordinates.Q, c.Coordinates.R, c.Type, c.Threats)
	}
	fmt.Fprintf(w, "%d cells, %d systems, radius %d around (%d,%d)\n", len(cells), systems, radius, center.Q, center.R)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
