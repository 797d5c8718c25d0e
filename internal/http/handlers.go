package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"clientledger/internal/core"
)

// handleClients serves GET /clients?userId=&period= — the ranked client
// overview for the selected period.
func (s *Server) handleClients(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	period := core.ParsePeriod(r.URL.Query().Get("period"))

	ov, err := s.svc.Overview(r.Context(), userID, period)
	if err != nil {
		slog.ErrorContext(r.Context(), "Overview error", "error", err, "user_id", userID)
		writeError(w, http.StatusBadGateway, "job feed unavailable")
		return
	}
	writeJSON(w, http.StatusOK, ov)
}

// handlePeriods serves GET /periods?userId= — the selectable-period
// catalog ("All Time" first, then years descending).
func (s *Server) handlePeriods(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	periods, err := s.svc.Periods(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Periods error", "error", err, "user_id", userID)
		writeError(w, http.StatusBadGateway, "job feed unavailable")
		return
	}
	writeJSON(w, http.StatusOK, periods)
}

// handleClientDetail serves GET /client?userId=&name=&period= — the
// per-job breakdown for one client.
func (s *Server) handleClientDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing name")
		return
	}
	period := core.ParsePeriod(r.URL.Query().Get("period"))

	detail, found, err := s.svc.ClientDetail(r.Context(), userID, name, period)
	if err != nil {
		slog.ErrorContext(r.Context(), "Client detail error", "error", err, "user_id", userID, "client", name)
		writeError(w, http.StatusBadGateway, "job feed unavailable")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "unknown client")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// handleRefresh serves POST /refresh?userId= — drops memoized payloads
// for the user and announces the change so other consumers re-sync.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	dropped := s.svc.Invalidate(userID)

	if s.publisher != nil {
		if err := s.publisher.PublishJobsChanged(r.Context(), userID, ""); err != nil {
			// The local invalidation already happened; messaging is
			// best-effort.
			slog.ErrorContext(r.Context(), "Failed to publish jobs-changed", "error", err, "user_id", userID)
		}
	}

	writeJSON(w, http.StatusOK, map[string]int{"dropped": dropped})
}

func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing userId")
		return "", false
	}
	return userID, true
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
