package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"dealer_sync/models"
	"dealer_sync/services"
)

type carsResponse struct {
	Total    int          `json:"total"`
	Count    int          `json:"count"`
	Offset   int          `json:"offset"`
	LastSync *time.Time   `json:"last_sync"`
	Cars     []models.Car `json:"cars"`
}

type statusResponse struct {
	LastSync  *time.Time      `json:"last_sync"`
	CarCount  int             `json:"car_count"`
	DealerID  string          `json:"dealer_id"`
	NextSync  string          `json:"next_sync"`
	NextRunAt *time.Time      `json:"next_run_at"`
	LastRun   *models.SyncRun `json:"last_run"`
}

type triggerResponse struct {
	Status     string     `json:"status"`
	CarsSynced int        `json:"cars_synced"`
	SyncTime   *time.Time `json:"sync_time"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":    serviceName,
		"version": serviceVersion,
		"endpoints": map[string]string{
			"cars":         "/api/cars",
			"car_detail":   "/api/cars/{car_id}",
			"filters":      "/api/filters",
			"sync_status":  "/api/sync/status",
			"trigger_sync": "/api/sync/trigger",
		},
	})
}

func (s *Server) handleListCars(w http.ResponseWriter, r *http.Request) {
	q, err := parseCarQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, ok := s.loadSnapshot(w)
	if !ok {
		return
	}

	page := services.Query(snap.Cars, q)
	writeJSON(w, http.StatusOK, carsResponse{
		Total:    page.Total,
		Count:    len(page.Cars),
		Offset:   page.Offset,
		LastSync: snap.LastSync,
		Cars:     page.Cars,
	})
}

func (s *Server) handleGetCar(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	snap, ok := s.loadSnapshot(w)
	if !ok {
		return
	}

	car := snap.FindCar(id)
	if car == nil {
		writeError(w, http.StatusNotFound, "Car not found")
		return
	}
	writeJSON(w, http.StatusOK, car)
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.loadSnapshot(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, services.BuildFacets(snap.Cars))
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.loadSnapshot(w)
	if !ok {
		return
	}

	status := statusResponse{
		LastSync: snap.LastSync,
		CarCount: snap.Count,
		DealerID: snap.DealerID,
		NextSync: s.schedule,
		LastRun:  s.syncer.LastRun(),
	}
	if s.timer != nil {
		if next := s.timer.Next(); !next.IsZero() {
			next = next.UTC()
			status.NextRunAt = &next
		}
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleTriggerSync(w http.ResponseWriter, r *http.Request) {
	log.Println("[api] manual sync triggered")

	// The sync runs to completion even if the caller goes away.
	snap, err := s.syncer.Sync(context.WithoutCancel(r.Context()), models.TriggerManual)
	if err != nil {
		log.Printf("[api] manual sync failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, triggerResponse{
		Status:     "success",
		CarsSynced: snap.Count,
		SyncTime:   snap.LastSync,
	})
}

func (s *Server) loadSnapshot(w http.ResponseWriter) (*models.Snapshot, bool) {
	snap, err := s.store.Load()
	if err != nil {
		log.Printf("[api] load snapshot: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return snap, true
}

func parseCarQuery(r *http.Request) (services.CarQuery, error) {
	values := r.URL.Query()
	q := services.CarQuery{
		Brand:        values.Get("brand"),
		FuelType:     values.Get("fuel_type"),
		Transmission: values.Get("transmission"),
		SortBy:       values.Get("sort_by"),
	}
	if q.SortBy == "" {
		q.SortBy = services.SortPriceAsc
	}

	var err error
	if q.MinPrice, err = intParam(values.Get("min_price"), "min_price"); err != nil {
		return q, err
	}
	if q.MaxPrice, err = intParam(values.Get("max_price"), "max_price"); err != nil {
		return q, err
	}
	if q.MinYear, err = intParam(values.Get("min_year"), "min_year"); err != nil {
		return q, err
	}
	if q.MaxYear, err = intParam(values.Get("max_year"), "max_year"); err != nil {
		return q, err
	}
	if q.Limit, err = intParam(values.Get("limit"), "limit"); err != nil {
		return q, err
	}
	if q.Limit != nil && *q.Limit < 0 {
		return q, fmt.Errorf("limit must not be negative")
	}

	offset, err := intParam(values.Get("offset"), "offset")
	if err != nil {
		return q, err
	}
	if offset != nil {
		if *offset < 0 {
			return q, fmt.Errorf("offset must not be negative")
		}
		q.Offset = *offset
	}

	return q, nil
}

// intParam parses an optional integer query parameter; empty means absent.
func intParam(raw, name string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer, got %q", name, raw)
	}
	return &n, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		log.Printf("[api] write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}
