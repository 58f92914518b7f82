package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/proven-connections/connections-cli/internal/geo"
	"github.com/proven-connections/connections-cli/internal/search"
)

type searchResponse struct {
	Results []search.Company `json:"results"`
}

type namesResponse struct {
	Results []string `json:"results"`
}

type expansionResponse struct {
	*search.Expansion
	Stats *relatedStats `json:"stats,omitempty"`
}

type relatedStats struct {
	WithLocation int              `json:"with_location"`
	WithLogo     int              `json:"with_logo"`
	Bounds       *geo.BoundingBox `json:"bounds,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSearchCompanies answers the unified company search. Internal
// failures degrade to an empty result set rather than a 500: the
// front-end treats search as best-effort.
func (s *Server) handleSearchCompanies(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("company search failed", zap.Any("panic", rec))
			writeJSON(w, http.StatusOK, searchResponse{Results: []search.Company{}})
		}
	}()

	if body := s.cached(r); body != nil {
		writeCached(w, body)
		return
	}

	results := s.engine.SearchCompanies(r.URL.Query().Get("q"))
	if results == nil {
		results = []search.Company{}
	}
	s.respond(w, r, http.StatusOK, searchResponse{Results: results})
}

func (s *Server) handleSearchVendors(w http.ResponseWriter, r *http.Request) {
	s.handleSearchNames(w, r, s.engine.SearchVendors)
}

func (s *Server) handleSearchClients(w http.ResponseWriter, r *http.Request) {
	s.handleSearchNames(w, r, s.engine.SearchClients)
}

func (s *Server) handleSearchNames(w http.ResponseWriter, r *http.Request, searchFn func(string, int) []string) {
	if body := s.cached(r); body != nil {
		writeCached(w, body)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	names := searchFn(r.URL.Query().Get("q"), limit)
	if names == nil {
		names = []string{}
	}
	s.respond(w, r, http.StatusOK, namesResponse{Results: names})
}

func (s *Server) handleVendorClients(w http.ResponseWriter, r *http.Request) {
	s.handleExpansion(w, r, s.engine.VendorClients, "vendor not found")
}

func (s *Server) handleClientVendors(w http.ResponseWriter, r *http.Request) {
	s.handleExpansion(w, r, s.engine.ClientVendors, "client not found")
}

func (s *Server) handleExpansion(w http.ResponseWriter, r *http.Request, expandFn func(string) (*search.Expansion, error), notFoundMsg string) {
	if body := s.cached(r); body != nil {
		writeCached(w, body)
		return
	}

	exp, err := expandFn(chi.URLParam(r, "name"))
	if err != nil {
		if eris.Is(err, search.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": notFoundMsg})
			return
		}
		zap.L().Error("expansion failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	resp := expansionResponse{Expansion: exp}
	if includeStats(r) {
		resp.Stats = summarize(exp.Related)
	}
	s.respond(w, r, http.StatusOK, resp)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, http.StatusOK, s.engine.Stats())
}

// handleMapConfig serves the front-end map settings. The key names
// match what the map client reads.
func (s *Server) handleMapConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"accessToken": s.mapCfg.MapboxToken,
		"style":       s.mapCfg.Style,
		"center":      []float64{s.mapCfg.CenterLng, s.mapCfg.CenterLat},
		"zoom":        s.mapCfg.Zoom,
	})
}

// summarize computes the optional stats block for an expansion.
func summarize(related []search.Company) *relatedStats {
	stats := &relatedStats{Bounds: geo.Bounds(related)}
	for _, c := range related {
		if c.Latitude != nil && c.Longitude != nil {
			stats.WithLocation++
		}
		if c.Logo != "" {
			stats.WithLogo++
		}
	}
	return stats
}

func includeStats(r *http.Request) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get("include_stats"))
	return err == nil && v
}

// cached returns the stored response body for this request, if any.
func (s *Server) cached(r *http.Request) []byte {
	if s.cache == nil {
		return nil
	}
	return s.cache.Get(r.URL.RequestURI())
}

// respond marshals v once, stores it in the response cache, and writes
// it out.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		zap.L().Error("response marshal failed", zap.Error(err))
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if s.cache != nil && status == http.StatusOK {
		s.cache.Put(r.URL.RequestURI(), body)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeCached(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
