// Package httpapi exposes the inventory service over HTTP. Routes mirror
// the JSON API the web client consumes: item listings and detail under
// /api/notion, plus diagnostics, health, and metrics endpoints.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/okibler/homedex/internal/inventory"
)

// InventoryService is the application surface the handlers call.
// Implemented by *inventory.Service.
type InventoryService interface {
	ListItems(ctx context.Context, q inventory.Query, offline bool) ([]inventory.Item, error)
	GetItem(ctx context.Context, id string, offline bool) (*inventory.Item, error)
	ListRooms(ctx context.Context) ([]inventory.Room, error)
	RoomItems(ctx context.Context, roomID string) ([]inventory.RoomItem, error)
	DatabaseInfo(ctx context.Context) (*inventory.Info, error)
	FilterOptions(ctx context.Context) ([]inventory.FilterOption, error)
}

// Options configures the server beyond its service dependency.
type Options struct {
	// OfflineDefault serves cached snapshots unless a request overrides
	// it with ?offline=false.
	OfflineDefault bool

	// Getenv is used by the diagnostics endpoint. Defaults to os.Getenv.
	Getenv func(string) string

	Logger *slog.Logger
}

// Server routes HTTP requests to the inventory service.
type Server struct {
	service        InventoryService
	logger         *slog.Logger
	offlineDefault bool
	getenv         func(string) string
	handler        http.Handler
}

// NewServer builds the router with logging, metrics, and CORS applied.
func NewServer(service InventoryService, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	s := &Server{
		service:        service,
		logger:         logger,
		offlineDefault: opts.OfflineDefault,
		getenv:         getenv,
	}

	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/notion/database", s.handleListItems).Methods(http.MethodGet)
	api.HandleFunc("/notion/database/{id}", s.handleGetItem).Methods(http.MethodGet)
	api.HandleFunc("/notion/rooms", s.handleListRooms).Methods(http.MethodGet)
	api.HandleFunc("/notion/room-items", s.handleRoomItems).Methods(http.MethodGet)
	api.HandleFunc("/notion/connect", s.handleConnect).Methods(http.MethodPost)
	api.HandleFunc("/notion/database-info", s.handleDatabaseInfo).Methods(http.MethodGet)
	api.HandleFunc("/notion/filter-options", s.handleFilterOptions).Methods(http.MethodGet)
	api.HandleFunc("/diagnostics/env", s.handleDiagnostics).Methods(http.MethodGet)

	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	handler := s.loggingMiddleware(metricsMiddleware(r))
	s.handler = cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(handler)

	return s
}

// Handler returns the fully wrapped root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}
