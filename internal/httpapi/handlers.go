package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/okibler/homedex/internal/inventory"
	"github.com/okibler/homedex/internal/notion"
)

// errorResponse is the failure envelope shared by every endpoint.
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Success: false, Message: message})
}

// serviceError maps service failures onto HTTP statuses: configuration
// problems are server errors, a missing offline snapshot is unavailability,
// and upstream Notion statuses pass through.
func (s *Server) serviceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, inventory.ErrNotConfigured):
		s.writeError(w, http.StatusInternalServerError,
			"Server configuration error: "+err.Error())
	case errors.Is(err, inventory.ErrNoCachedData):
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, inventory.ErrUnknownRoom):
		s.writeError(w, http.StatusNotFound, err.Error())
	case notion.IsNotFound(err):
		s.writeError(w, http.StatusNotFound, err.Error())
	default:
		status := notion.StatusCode(err, http.StatusInternalServerError)
		message := err.Error()
		if message == "" {
			message = fallback
		}
		s.writeError(w, status, message)
	}
}

// offlineRequested resolves the effective offline flag: the server default,
// overridable per request with ?offline=true or ?offline=false.
func (s *Server) offlineRequested(r *http.Request) bool {
	switch r.URL.Query().Get("offline") {
	case "true":
		return true
	case "false":
		return false
	default:
		return s.offlineDefault
	}
}

// parseQuery decodes the listing parameters: search as plain text, filters
// and sort as JSON-encoded query values.
func parseQuery(r *http.Request) (inventory.Query, error) {
	q := inventory.Query{Search: r.URL.Query().Get("search")}

	if raw := r.URL.Query().Get("filters"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &q.Filters); err != nil {
			return q, fmt.Errorf("invalid filters parameter: %w", err)
		}
	}
	if raw := r.URL.Query().Get("sort"); raw != "" {
		var sort inventory.Sort
		if err := json.Unmarshal([]byte(raw), &sort); err != nil {
			return q, fmt.Errorf("invalid sort parameter: %w", err)
		}
		q.Sort = &sort
	}

	return q, nil
}

// handleListItems serves GET /api/notion/database. The response body is the
// bare item array the web client expects.
func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := s.service.ListItems(r.Context(), q, s.offlineRequested(r))
	if err != nil {
		s.serviceError(w, err, "Failed to fetch database items")
		return
	}

	s.writeJSON(w, http.StatusOK, items)
}

// handleGetItem serves GET /api/notion/database/{id} as a bare item object.
func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	item, err := s.service.GetItem(r.Context(), id, s.offlineRequested(r))
	if err != nil {
		s.serviceError(w, err, "Failed to fetch database item")
		return
	}

	s.writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.service.ListRooms(r.Context())
	if err != nil {
		s.serviceError(w, err, "Failed to fetch rooms")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"rooms":   rooms,
	})
}

func (s *Server) handleRoomItems(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("roomId")
	if roomID == "" {
		s.writeError(w, http.StatusBadRequest, "roomId parameter is required")
		return
	}

	items, err := s.service.RoomItems(r.Context(), roomID)
	if err != nil {
		s.serviceError(w, err, "Failed to fetch room items")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"items":   items,
	})
}

// handleConnect is the legacy connect endpoint: it verifies credentials by
// retrieving database metadata, same as database-info.
func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	info, err := s.service.DatabaseInfo(r.Context())
	if err != nil {
		s.serviceError(w, err, "Failed to connect to Notion")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"database": info,
	})
}

func (s *Server) handleDatabaseInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.service.DatabaseInfo(r.Context())
	if err != nil {
		status := notion.StatusCode(err, http.StatusInternalServerError)
		if errors.Is(err, inventory.ErrNotConfigured) {
			status = http.StatusInternalServerError
		}
		s.writeJSON(w, status, map[string]any{
			"success":   false,
			"connected": false,
			"message":   err.Error(),
		})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"connected": true,
		"database":  info,
	})
}

func (s *Server) handleFilterOptions(w http.ResponseWriter, r *http.Request) {
	options, err := s.service.FilterOptions(r.Context())
	if err != nil {
		s.serviceError(w, err, "Failed to fetch filter options")
		return
	}
	if options == nil {
		options = []inventory.FilterOption{}
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"options": options,
	})
}

// handleDiagnostics reports which required environment variables are set,
// never their values.
func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	required := []string{"NOTION_TOKEN", "NOTION_DATABASE_ID"}

	variables := make(map[string]bool, len(required))
	allPresent := true
	for _, name := range required {
		present := s.getenv(name) != ""
		variables[name] = present
		if !present {
			allPresent = false
		}
	}

	message := "All required environment variables are present"
	if !allPresent {
		message = "Some required environment variables are missing"
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":   allPresent,
		"message":   message,
		"variables": variables,
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
