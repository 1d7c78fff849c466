package handler

import (
	"net/http"

	"github.com/Jaydipsinh000/CarhubReact-sub000/internal/model"
	"github.com/Jaydipsinh000/CarhubReact-sub000/internal/service"
	"github.com/go-chi/chi/v5"
)

// BookingHandler holds the HTTP handlers for bookings and payments.
type BookingHandler struct {
	bookings   *service.BookingService
	settlement *service.SettlementService
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(bookings *service.BookingService, settlement *service.SettlementService) *BookingHandler {
	return &BookingHandler{bookings: bookings, settlement: settlement}
}

// Request handles POST /bookings
func (h *BookingHandler) Request(w http.ResponseWriter, r *http.Request) {
	requester, ok := RequesterFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}

	var req model.BookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "ValidationError", "invalid request body: "+err.Error())
		return
	}

	result, err := h.bookings.RequestBooking(r.Context(), requester, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// List handles GET /bookings
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	requester, ok := RequesterFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}

	bookings, err := h.bookings.ListBookings(r.Context(), requester)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if bookings == nil {
		bookings = []model.Booking{}
	}
	writeJSON(w, http.StatusOK, bookings)
}

// Get handles GET /bookings/{id}
func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	requester, ok := RequesterFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}

	booking, payments, err := h.bookings.GetBooking(r.Context(), requester, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"booking":  booking,
		"payments": payments,
	})
}

// Cancel handles POST /bookings/{id}/cancel
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	requester, ok := RequesterFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}

	booking, err := h.bookings.CancelBooking(r.Context(), requester, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// CreateOrder handles POST /bookings/{id}/order
func (h *BookingHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	requester, ok := RequesterFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}

	var req model.CreateOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "ValidationError", "invalid request body: "+err.Error())
		return
	}

	resp, err := h.settlement.CreateOrder(r.Context(), requester, chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// ConfirmPayment handles POST /bookings/{id}/confirm
// This is the checkout-success callback: the client hands over the
// gateway order id, payment id, and signature for settlement.
func (h *BookingHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	if _, ok := RequesterFrom(r.Context()); !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}

	var req model.ConfirmPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "ValidationError", "invalid request body: "+err.Error())
		return
	}

	resp, err := h.settlement.ConfirmPayment(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
