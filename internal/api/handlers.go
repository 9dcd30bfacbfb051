package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"streamlist/internal/letterboxd"
	"streamlist/internal/logging"
	"streamlist/internal/services"
	"streamlist/internal/share"
	"streamlist/internal/taxonomy"
)

const maxBodyBytes = 1 << 20

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (h *handler) handleFetchMovies(w http.ResponseWriter, r *http.Request) {
	var req FetchMoviesRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	titles := requestTitles(req.Titles)
	if len(titles) == 0 {
		writeError(w, http.StatusBadRequest, "No titles provided")
		return
	}
	if h.runner == nil {
		writeError(w, http.StatusServiceUnavailable, "movie lookup unavailable")
		return
	}

	movies, err := h.runner.RunBatch(r.Context(), titles)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrValidation) {
			status = http.StatusBadRequest
		}
		logging.WithContext(r.Context(), h.logger).Error("batch failed",
			logging.Int("titles", len(titles)),
			logging.Error(err),
		)
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, movies)
}

// requestTitles keeps trimmed, non-blank string entries. Anything that is not
// a JSON array of strings contributes nothing.
func requestTitles(raw json.RawMessage) []string {
	var items []any
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return nil
	}
	titles := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			titles = append(titles, s)
		}
	}
	return titles
}

func (h *handler) handleScrapeLetterboxd(w http.ResponseWriter, r *http.Request) {
	listURL := strings.TrimSpace(r.URL.Query().Get("url"))
	if listURL == "" {
		writeError(w, http.StatusBadRequest, "Missing url query parameter")
		return
	}
	if !letterboxd.ValidURL(listURL) {
		writeError(w, http.StatusBadRequest, "URL must be from letterboxd.com")
		return
	}
	if h.importer == nil {
		writeError(w, http.StatusServiceUnavailable, "list import unavailable")
		return
	}

	titles, err := h.importer.Import(r.Context(), listURL)
	if err != nil {
		logging.WithContext(r.Context(), h.logger).Warn("letterboxd import failed",
			logging.String("url", listURL),
			logging.Error(err),
			logging.String(logging.FieldEventType, "letterboxd_import_failed"),
			logging.String(logging.FieldErrorHint, "check the list is public and reachable"),
		)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if titles == nil {
		titles = []string{}
	}
	writeJSON(w, http.StatusOK, TitlesResponse{Titles: titles})
}

func (h *handler) handleServices(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, taxonomy.All())
}

func (h *handler) handleShareEncode(w http.ResponseWriter, r *http.Request) {
	var req ShareRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, ShareResponse{State: share.Encode(req.Titles, req.Services)})
}

func (h *handler) handleShareDecode(w http.ResponseWriter, r *http.Request) {
	state, err := share.Decode(mux.Vars(r)["state"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid share state")
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
