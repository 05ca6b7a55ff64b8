package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/garnizeh/salah/internal/config"
	"github.com/garnizeh/salah/internal/db"
	"github.com/garnizeh/salah/internal/prayertime"
	"github.com/garnizeh/salah/internal/repository/sqlstore"
	"github.com/garnizeh/salah/internal/tracker"
)

// Options carries collaborators that tests replace.
type Options struct {
	// Now is the clock used by the prayer-time endpoints.
	Now func() time.Time
}

func SetupRoutes(cfg *config.Config, version, buildTime string, d *db.DB, opts ...Options) (*mux.Router, error) {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}

	schemas, err := loadSchemas()
	if err != nil {
		return nil, fmt.Errorf("load request schemas: %w", err)
	}

	r := mux.NewRouter()

	// Middleware chain
	r.Use(RecoveryMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)

	var metrics *Metrics
	if cfg.Metrics.Enabled {
		metrics = NewMetrics()
		r.Use(metrics.Middleware)
	}

	// Repository and services
	repo := sqlstore.New(d, logger)
	svc := tracker.NewService(repo, repo, repo,
		tracker.WithLogger(logger),
		tracker.WithStoreTimeout(cfg.Database.StoreTimeout),
	)
	calc := prayertime.New(prayertime.Location{
		Latitude:  cfg.Location.Latitude,
		Longitude: cfg.Location.Longitude,
		Zone:      cfg.TimeZone(),
	}, prayertime.MuslimWorldLeague, prayertime.Hanafi)

	// Create handlers
	systemHandler := &SystemHandler{DB: d.GetConn()}
	roomsHandler := NewRoomsHandler(svc, schemas)
	entriesHandler := NewEntriesHandler(svc, schemas)
	timesHandler := NewTimesHandler(calc, o.Now)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	if metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})).Methods("GET")
	}

	apiV1 := r.PathPrefix("/v1").Subrouter()

	// Rooms endpoints
	apiV1.HandleFunc("/rooms", roomsHandler.CreateRoom).Methods("POST")
	apiV1.HandleFunc("/rooms/{code}", roomsHandler.GetRoom).Methods("GET")
	apiV1.HandleFunc("/rooms/{code}", roomsHandler.DeleteRoom).Methods("DELETE")
	apiV1.HandleFunc("/rooms/{code}/members", roomsHandler.JoinRoom).Methods("POST")
	apiV1.HandleFunc("/rooms/{code}/members", roomsHandler.ListMembers).Methods("GET")
	apiV1.HandleFunc("/rooms/{code}/heatmap", roomsHandler.Heatmap).Methods("GET")
	apiV1.HandleFunc("/rooms/{code}/leaderboard", roomsHandler.Leaderboard).Methods("GET")

	// Entries endpoints
	apiV1.HandleFunc("/entries", entriesHandler.AddEntry).Methods("POST")
	apiV1.HandleFunc("/history", entriesHandler.History).Methods("GET")
	apiV1.HandleFunc("/status", entriesHandler.DayStatus).Methods("GET")

	// Prayer times endpoints
	apiV1.HandleFunc("/times", timesHandler.DailyTimes).Methods("GET")
	apiV1.HandleFunc("/times/next", timesHandler.NextPrayer).Methods("GET")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, errorBody{Error: "not found"}, http.StatusNotFound)
	})

	return r, nil
}
