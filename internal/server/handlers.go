package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"ftlnomad/internal/apperrors"
	"ftlnomad/internal/content"
	"ftlnomad/internal/hex"
	"ftlnomad/internal/response"
	"ftlnomad/internal/session"
	"ftlnomad/internal/starmap"
)

const maxBodyBytes = 1 << 20

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   s.version,
	})
}

// viewportRequest leaves every field optional; unset fields take defaults.
type viewportRequest struct {
	CenterQ   int      `json:"centerQ"`
	CenterR   int      `json:"centerR"`
	Zoom      *float64 `json:"zoom"`
	MapWidth  float64  `json:"mapWidth"`
	MapHeight float64  `json:"mapHeight"`
	HexSize   *float64 `json:"hexSize"`
}

func (s *Server) viewport(req viewportRequest) starmap.Viewport {
	vp := starmap.Viewport{
		CenterQ: req.CenterQ,
		CenterR: req.CenterR,
		Zoom:    1,
		Width:   req.MapWidth,
		Height:  req.MapHeight,
		HexSize: s.cfg.Grid.HexSize,
	}
	if req.Zoom != nil {
		vp.Zoom = *req.Zoom
	}
	if req.HexSize != nil {
		vp.HexSize = *req.HexSize
	}
	return vp
}

type GridResponse struct {
	Center hex.Axial      `json:"center"`
	Radius int            `json:"radius"`
	Cells  []starmap.Cell `json:"cells"`
}

func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	var req viewportRequest
	if err := decodeBody(w, r, &req); err != nil {
		response.Error(w, r, s.logger, err)
		return
	}
	vp := s.viewport(req)
	cells, radius, err := s.engine.Grid(r.Context(), vp)
	if err != nil {
		response.Error(w, r, s.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, GridResponse{Center: vp.Center(), Radius: radius, Cells: cells})
}

type searchRequest struct {
	Query string `json:"query"`
}

type SearchResponse struct {
	Results []content.StarSystem `json:"results"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if r.Method == http.MethodGet {
		req.Query = r.URL.Query().Get("q")
	} else if err := decodeBody(w, r, &req); err != nil {
		response.Error(w, r, s.logger, err)
		return
	}
	results, err := s.engine.Search(r.Context(), req.Query)
	if err != nil {
		response.Error(w, r, s.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, SearchResponse{Results: results})
}

type locateRequest struct {
	X        float64         `json:"x"`
	Y        float64         `json:"y"`
	Viewport viewportRequest `json:"viewport"`
}

func (s *Server) handleLocate(w http.ResponseWriter, r *http.Request) {
	var req locateRequest
	if err := decodeBody(w, r, &req); err != nil {
		response.Error(w, r, s.logger, err)
		return
	}
	cell, err := s.engine.Locate(r.Context(), req.X, req.Y, s.viewport(req.Viewport))
	if err != nil {
		response.Error(w, r, s.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, cell)
}

// Reasons a listing comes back unavailable.
const (
	ReasonMissingDirectory = "missing_directory"
	ReasonUnreadableSource = "unreadable_source"
)

type ContentListResponse struct {
	Kind       content.Kind        `json:"kind"`
	Available  bool                `json:"available"`
	Reason     string              `json:"reason,omitempty"`
	Entries    []content.Entry     `json:"entries"`
	Collisions []content.Collision `json:"collisions,omitempty"`
}

// handleListContent answers a missing kind directory or an unreadable file
// with available=false and no entries, so the page renders its empty state.
// The offending path is logged, never returned. Other failures are errors.
func (s *Server) handleListContent(w http.ResponseWriter, r *http.Request) {
	coll, err := s.collection(r)
	if err != nil {
		response.Error(w, r, s.logger, err)
		return
	}
	snap, err := coll.ScanEntries(r.Context())
	resp := ContentListResponse{Kind: coll.Kind(), Available: err == nil}
	var srcErr *content.SourceError
	switch {
	case err == nil:
		resp.Collisions = snap.Collisions
	case errors.Is(err, content.ErrRootMissing):
		s.logger.Debug("Content directory missing", "kind", coll.Kind(), "dir", s.library.Dir(coll.Kind()))
		resp.Reason = ReasonMissingDirectory
	case errors.As(err, &srcErr):
		s.logger.Warn("Unreadable content file", "kind", coll.Kind(), "path", srcErr.Path, "error", srcErr.Err)
		resp.Reason = ReasonUnreadableSource
	default:
		response.Error(w, r, s.logger, apperrors.WrapInternal("listing "+string(coll.Kind()), err))
		return
	}
	var entries []content.Entry
	if snap != nil {
		entries = snap.Entries
	}
	resp.Entries = content.Lenient(entries, err)
	response.JSON(w, http.StatusOK, resp)
}

// handleGetContent answers unknown slugs, a missing directory and an
// unreadable file alike with 404.
func (s *Server) handleGetContent(w http.ResponseWriter, r *http.Request) {
	coll, err := s.collection(r)
	if err != nil {
		response.Error(w, r, s.logger, err)
		return
	}
	slug := r.PathValue("slug")
	entry, err := coll.GetEntry(r.Context(), slug)
	var srcErr *content.SourceError
	switch {
	case errors.As(err, &srcErr):
		s.logger.Warn("Unreadable content file", "kind", coll.Kind(), "path", srcErr.Path, "error", srcErr.Err)
		response.Error(w, r, s.logger, apperrors.NotFoundf("%s %q not found", coll.Kind(), slug))
		return
	case errors.Is(err, content.ErrNotFound), errors.Is(err, content.ErrRootMissing):
		response.Error(w, r, s.logger, apperrors.NotFoundf("%s %q not found", coll.Kind(), slug))
		return
	case err != nil:
		response.Error(w, r, s.logger, apperrors.WrapInternal("reading "+string(coll.Kind()), err))
		return
	}
	response.JSON(w, http.StatusOK, entry)
}

func (s *Server) collection(r *http.Request) (content.Collection, error) {
	kind, err := content.ParseKind(r.PathValue("kind"))
	if err != nil {
		return nil, apperrors.NotFoundf("unknown content kind %q", r.PathValue("kind"))
	}
	return s.library.Collection(kind)
}

type IntroResponse struct {
	Played bool `json:"played"`
}

func (s *Server) handleIntro(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		if err := s.flags.Set(w, session.IntroPlayed); err != nil {
			response.Error(w, r, s.logger, apperrors.WrapInternal("setting intro flag", err))
			return
		}
		response.JSON(w, http.StatusOK, IntroResponse{Played: true})
	case http.MethodDelete:
		if err := s.flags.Clear(w, session.IntroPlayed); err != nil {
			response.Error(w, r, s.logger, apperrors.WrapInternal("clearing intro flag", err))
			return
		}
		response.JSON(w, http.StatusOK, IntroResponse{Played: false})
	default:
		played, err := s.flags.Get(r, session.IntroPlayed)
		if err != nil {
			response.Error(w, r, s.logger, apperrors.WrapInternal("reading intro flag", err))
			return
		}
		response.JSON(w, http.StatusOK, IntroResponse{Played: played})
	}
}

// decodeBody accepts an empty body as the zero request.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return apperrors.WrapValidation("invalid request body", err)
	}
	return nil
}
