// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/Jaydipsinh000/CarhubReact-sub000/internal/auth"
	"github.com/Jaydipsinh000/CarhubReact-sub000/internal/gateway"
	"github.com/Jaydipsinh000/CarhubReact-sub000/internal/model"
	"github.com/Jaydipsinh000/CarhubReact-sub000/internal/repository"
	"github.com/Jaydipsinh000/CarhubReact-sub000/internal/service"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, model.ErrorResponse{Kind: kind, Message: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeServiceError maps domain sentinel errors to HTTP statuses and
// stable error kinds. Anything unrecognised is an infrastructure
// failure: logged server-side, returned as a generic retry message with
// no internal detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, "ValidationError", err.Error())
	case errors.Is(err, repository.ErrDatesUnavailable):
		writeError(w, http.StatusConflict, "DatesUnavailable", "those dates are no longer available, please pick different dates")
	case errors.Is(err, service.ErrInvalidSignature):
		// Security-relevant: either tampering or a broken client integration.
		log.Printf("[security] invalid payment signature: request_id=%s remote=%s",
			chimiddleware.GetReqID(r.Context()), r.RemoteAddr)
		writeError(w, http.StatusBadRequest, "InvalidSignature", "payment verification failed")
	case errors.Is(err, gateway.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "OrderNotFound", "booking saved, payment pending; retry from your bookings list")
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "NotFound", "resource not found")
	case errors.Is(err, repository.ErrAlreadyCancelled):
		writeError(w, http.StatusConflict, "AlreadyCancelled", "booking is already cancelled")
	case errors.Is(err, repository.ErrCancelNotAllowed):
		writeError(w, http.StatusConflict, "CancelNotAllowed", "booking has payments applied and cannot be cancelled")
	case errors.Is(err, repository.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "DuplicateEmail", "email already registered")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "InvalidCredentials", "invalid email or password")
	default:
		log.Printf("internal error: request_id=%s err=%v", chimiddleware.GetReqID(r.Context()), err)
		writeError(w, http.StatusInternalServerError, "StorageError", "something went wrong, please retry")
	}
}

// ─── Vehicles ─────────────────────────────────────────────────────────────────

// VehicleHandler holds the HTTP handlers for the vehicle catalog.
type VehicleHandler struct {
	svc *service.VehicleService
}

// NewVehicleHandler constructs a VehicleHandler.
func NewVehicleHandler(svc *service.VehicleService) *VehicleHandler {
	return &VehicleHandler{svc: svc}
}

// Create handles POST /vehicles
func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	requester, ok := RequesterFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}

	var req model.CreateVehicleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "ValidationError", "invalid request body: "+err.Error())
		return
	}

	vehicle, err := h.svc.CreateVehicle(r.Context(), requester, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, vehicle)
}

// List handles GET /vehicles
func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.svc.ListVehicles(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if vehicles == nil {
		vehicles = []model.Vehicle{}
	}
	writeJSON(w, http.StatusOK, vehicles)
}

// Get handles GET /vehicles/{id}
func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request) {
	vehicle, err := h.svc.GetVehicle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

// Availability handles GET /vehicles/{id}/availability?start=&end=
// Exposed read-only so the calendar UI can disable taken dates.
func (h *VehicleHandler) Availability(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.Availability(r.Context(),
		chi.URLParam(r, "id"),
		r.URL.Query().Get("start"),
		r.URL.Query().Get("end"),
	)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
