package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"ftlnomad/internal/mcp"
)

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP tool server over stdio",
		Args:  cobra.NoArgs,
		RunE:  runMCP,
	}
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg).With("component", "mcp")

	lib, err := openLibrary(cfg)
	if err != nil {
		return err
	}

	// The index is optional; without it search_content is not offered.
	var index mcp.Searcher
	db, err := openStore(ctx, cfg)
	switch {
	case errors.Is(err, errNoDatabase):
	case err != nil:
		log.Warn("content index unavailable", "error", err)
	default:
		defer db.Close(ctx)
		index = db
	}

	server := mcp.NewServer(lib, newEngine(cfg, lib, log), index, version)
	return server.Run(ctx, &sdk.StdioTransport{})
}
