package api

import (
	"context"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"dealer_sync/models"
)

const (
	serviceName    = "Begbilnorr API"
	serviceVersion = "1.0.0"
)

// SnapshotLoader reads the current snapshot; a missing snapshot is empty, not an error.
type SnapshotLoader interface {
	Load() (*models.Snapshot, error)
}

// Syncer runs a full sync on demand.
type Syncer interface {
	Sync(ctx context.Context, trigger models.RunTrigger) (*models.Snapshot, error)
	LastRun() *models.SyncRun
}

// NextRun reports when the next scheduled sync fires.
type NextRun interface {
	Next() time.Time
}

// Server serves the inventory read API and the manual sync trigger.
// Every request re-reads the snapshot from disk.
type Server struct {
	store    SnapshotLoader
	syncer   Syncer
	schedule string
	timer    NextRun
}

func NewServer(store SnapshotLoader, syncer Syncer, schedule string) *Server {
	return &Server{
		store:    store,
		syncer:   syncer,
		schedule: schedule,
	}
}

// SetScheduler lets sync status report the next scheduled run.
func (s *Server) SetScheduler(timer NextRun) {
	s.timer = timer
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter().StrictSlash(true)
	r.HandleFunc("/", s.handleRoot).Methods("GET")
	r.HandleFunc("/api/cars", s.handleListCars).Methods("GET")
	r.HandleFunc("/api/cars/{id}", s.handleGetCar).Methods("GET")
	r.HandleFunc("/api/filters", s.handleFilters).Methods("GET")
	r.HandleFunc("/api/sync/status", s.handleSyncStatus).Methods("GET")
	r.HandleFunc("/api/sync/trigger", s.handleTriggerSync).Methods("POST")
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	return r
}

// Handler wraps the router with panic recovery, CORS for the frontend origins, and access logging.
func (s *Server) Handler(frontendURL string, accessLog io.Writer) http.Handler {
	var h http.Handler = s.Router()

	h = handlers.RecoveryHandler(handlers.RecoveryLogger(log.Default()))(h)
	h = corsAnyHeader(AllowedOrigins(frontendURL), h)
	if accessLog != nil {
		h = handlers.CombinedLoggingHandler(accessLog, h)
	}
	return h
}

var corsBaseHeaders = []string{"Accept", "Accept-Language", "Authorization", "Content-Language", "Content-Type", "X-Requested-With"}

// corsAnyHeader applies CORS for the given origins. handlers.CORS only
// accepts a fixed header list, so preflights get the requested headers
// added to it.
func corsAnyHeader(origins []string, next http.Handler) http.Handler {
	options := func(headers []string) []handlers.CORSOption {
		return []handlers.CORSOption{
			handlers.AllowedOrigins(origins),
			handlers.AllowCredentials(),
			handlers.AllowedMethods([]string{"GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			handlers.AllowedHeaders(headers),
		}
	}
	static := handlers.CORS(options(corsBaseHeaders)...)(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested := r.Header.Get("Access-Control-Request-Headers")
		if r.Method != http.MethodOptions || requested == "" {
			static.ServeHTTP(w, r)
			return
		}

		headers := append(append([]string{}, corsBaseHeaders...), strings.Split(requested, ",")...)
		handlers.CORS(options(headers)...)(next).ServeHTTP(w, r)
	})
}

// AllowedOrigins is the configured frontend plus the local dev origins.
func AllowedOrigins(frontendURL string) []string {
	origins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	for _, o := range origins {
		if o == frontendURL {
			return origins
		}
	}
	if frontendURL == "" {
		return origins
	}
	return append([]string{frontendURL}, origins...)
}
