package server

import (
	"encoding/json"
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"github.com/matzehuels/resourcemap/pkg/buildinfo"
	"github.com/matzehuels/resourcemap/pkg/errors"
	"github.com/matzehuels/resourcemap/pkg/graph"
	"github.com/matzehuels/resourcemap/pkg/pipeline"
	"github.com/matzehuels/resourcemap/pkg/telemetry"
)

// CacheHeader reports whether a layout was served from the cache.
const CacheHeader = "X-Cache"

// LayoutRequest is the body of POST /api/v1/layout.
type LayoutRequest struct {
	Graph       *graph.Node `json:"graph"`
	AspectRatio float64     `json:"aspect_ratio,omitempty"`
	Refresh     bool        `json:"refresh,omitempty"`
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

type healthResponse struct {
	Status string `json:"status"`
	Solver bool   `json:"solver"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Solver: s.runner.Engine.HasSolver()})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req LayoutRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody)).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}
	if err := prepareGraph(req.Graph); err != nil {
		writeError(w, err)
		return
	}

	ctx, span := telemetry.StartSpan(r.Context(), "layout",
		attribute.String("layout.root", req.Graph.ID),
		attribute.Int("layout.input_nodes", graph.NodeCount(req.Graph)))
	res, hit, err := s.runner.LayoutWithCacheInfo(ctx, req.Graph, pipeline.Options{
		AspectRatio: req.AspectRatio,
		Refresh:     req.Refresh,
	})
	telemetry.AddSpanAttributes(ctx, attribute.Bool("layout.cache_hit", hit))
	telemetry.EndSpan(span, err)
	if err != nil {
		s.logger.Warn("layout failed", "root", req.Graph.ID, "error", err, "request_id", RequestID(r.Context()))
		writeError(w, err)
		return
	}

	if hit {
		w.Header().Set(CacheHeader, "hit")
	} else {
		w.Header().Set(CacheHeader, "miss")
	}
	writeJSON(w, http.StatusOK, res)
}

// prepareGraph fills missing edge ids and validates g.
func prepareGraph(g *graph.Node) error {
	if g == nil {
		return errors.New(errors.ErrCodeInvalidInput, "request has no graph")
	}
	graph.EnsureEdgeIDs(g)
	return graph.Validate(g)
}

func errNotFound(path string) error {
	return errors.New(errors.ErrCodeNotFound, "no route for %s", path)
}

func errorFor(err error) errorDetail {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	return errorDetail{Code: code, Message: errors.UserMessage(err)}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errors.HTTPStatus(err), errorBody{Error: errorFor(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
