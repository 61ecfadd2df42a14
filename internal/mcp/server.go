// Package mcp exposes the content library and star map as Model Context
// Protocol tools.
package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"ftlnomad/internal/content"
	"ftlnomad/internal/starmap"
	"ftlnomad/internal/store"
)

type Library interface {
	Collection(kind content.Kind) (content.Collection, error)
}

// Searcher is the full-text index. It is optional.
type Searcher interface {
	Search(ctx context.Context, query, kind string) ([]store.SearchResult, error)
}

type Server struct {
	lib    Library
	engine *starmap.Engine
	index  Searcher
	mcp    *sdk.Server
}

// NewServer registers the content and grid tools. search_content is only
// registered when index is non-nil.
func NewServer(lib Library, engine *starmap.Engine, index Searcher, version string) *Server {
	s := &Server{
		lib:    lib,
		engine: engine,
		index:  index,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "ftlnomad",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
