package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

const (
	defaultLimit = int32(100)
	maxLimit     = int32(500)
)

var (
	errUnableToFetchReports   = errors.New("unable to fetch run reports")
	errUnableToFetchProviders = errors.New("unable to fetch providers")

	errReportNotFound = errors.New("run report not found")

	errInvalidLimit  = errors.New("invalid limit")
	errInvalidOffset = errors.New("invalid offset")
)

func (s *Server) RunReports(w http.ResponseWriter, r *http.Request) {
	var (
		limitParam  = r.URL.Query().Get("limit")
		offsetParam = r.URL.Query().Get("offset")
	)

	// Parse the pagination settings
	limit, offset, err := parseLimitOffset(limitParam, offsetParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	page, err := s.storage.RunReports(r.Context(), limit, offset)
	if err != nil {
		s.logger.Debug(
			"unable to fetch run reports",
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchReports,
		)

		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (s *Server) RunReportByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, errReportNotFound)

		return
	}

	report, err := s.storage.RunReport(r.Context(), id)
	if err != nil {
		s.logger.Debug(
			"unable to fetch run report",
			"id", id,
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchReports,
		)

		return
	}

	if report == nil {
		writeError(w, http.StatusNotFound, errReportNotFound)

		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) Providers(w http.ResponseWriter, r *http.Request) {
	items, err := s.storage.ListProviders(r.Context())
	if err != nil {
		s.logger.Debug(
			"unable to fetch providers",
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchProviders,
		)

		return
	}

	resp := &ProvidersResponse{
		Results: items,
	}

	writeJSON(w, http.StatusOK, resp)
}

func parseLimitOffset(limitRaw, offsetRaw string) (int32, int64, error) {
	limit := defaultLimit

	if v := strings.TrimSpace(limitRaw); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return 0, 0, errInvalidLimit
		}

		// Clamp before narrowing, so oversized values
		// never wrap negative
		if n > int64(maxLimit) {
			n = int64(maxLimit)
		}

		limit = int32(n)
	}

	if limit == 0 {
		limit = defaultLimit
	}

	var offset int64

	if v := strings.TrimSpace(offsetRaw); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return 0, 0, errInvalidOffset
		}

		offset = n
	}

	return limit, offset, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // Fine to ignore
}

func writeError(w http.ResponseWriter, status int, err error) {
	resp := &ErrorResponse{
		Error: err.Error(),
	}

	writeJSON(w, status, resp)
}
