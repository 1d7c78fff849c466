// Package model defines the core domain types for the car rental marketplace.
package model

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for all booking dates. Rentals are
// day-granular: a range [start, end] occupies every day inclusive of
// both endpoints.
const DateLayout = "2006-01-02"

// Listing modes for a vehicle.
const (
	ModeRent = "Rent"
	ModeSell = "Sell"
)

// Order types for a booking, derived from the vehicle's listing mode.
const (
	OrderRent = "Rent"
	OrderSale = "Sale"
)

// Payment lifecycle states for a booking.
const (
	PaymentPending   = "pending"
	PaymentPartial   = "partial"
	PaymentPaid      = "paid"
	PaymentCancelled = "cancelled"
)

// Payment choices a requester can make at checkout.
const (
	PayFull     = "full"
	PayPartial  = "partial"
	PayDeferred = "deferred"
)

// PartialShare is the fraction of the total collected for a partial
// (book-now-pay-later) checkout.
const PartialShare = 0.20

// PaymentEpsilon absorbs rounding introduced by percentage-based
// partial payments: a booking counts as fully paid once paid_amount is
// within one major currency unit of the total.
const PaymentEpsilon = 1.0

// Requester is the authenticated identity making booking and payment
// calls. The core never sees roles; authorization happens in the layer
// above it.
type Requester struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// User is a registered account.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Vehicle represents a listed rentable or sellable asset.
type Vehicle struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"owner_id"`
	Name           string    `json:"name"`
	DailyPrice     float64   `json:"daily_price"`
	ListingMode    string    `json:"listing_mode"`
	ReservationFee float64   `json:"reservation_fee"`
	CreatedAt      time.Time `json:"created_at"`
}

// BookedRange is one committed date range on a vehicle's availability
// ledger. Ranges are appended only through the ledger commit and
// removed only when their booking is cancelled.
type BookedRange struct {
	ID        string    `json:"id"`
	VehicleID string    `json:"vehicle_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	BookingID string    `json:"booking_id"`
}

// Booking represents one reservation or sale-reservation request and
// its cumulative payment state.
type Booking struct {
	ID            string     `json:"id"`
	VehicleID     string     `json:"vehicle_id"`
	RequesterID   string     `json:"requester_id"`
	ContactName   string     `json:"contact_name"`
	ContactEmail  string     `json:"contact_email"`
	ContactPhone  string     `json:"contact_phone"`
	StartDate     *time.Time `json:"start_date,omitempty"` // nil for Sale orders
	EndDate       *time.Time `json:"end_date,omitempty"`   // nil for Sale orders
	Amount        float64    `json:"amount"`
	PaidAmount    float64    `json:"paid_amount"`
	PaymentStatus string     `json:"payment_status"`
	OrderType     string     `json:"order_type"`
	CreatedAt     time.Time  `json:"created_at"`
}

// BookingPayment is one applied gateway payment. The ledger of these
// rows is what makes settlement idempotent: a gateway payment ID is
// credited to a booking at most once.
type BookingPayment struct {
	ID               string    `json:"id"`
	BookingID        string    `json:"booking_id"`
	GatewayPaymentID string    `json:"gateway_payment_id"`
	GatewayOrderID   string    `json:"gateway_order_id"`
	Amount           float64   `json:"amount"`
	CreatedAt        time.Time `json:"created_at"`
}

// Outstanding returns how much money is still owed on the booking,
// clamped at zero.
func (b *Booking) Outstanding() float64 {
	if rem := b.Amount - b.PaidAmount; rem > 0 {
		return rem
	}
	return 0
}

// ApplyPayment is the pure payment state transition: it returns the
// paid amount and payment status the booking would hold after crediting
// confirmedAmount. It performs no I/O and does not mutate the booking;
// persisting the result is the settlement engine's job.
func (b *Booking) ApplyPayment(confirmedAmount float64) (paidAmount float64, status string) {
	paidAmount = b.PaidAmount + confirmedAmount
	return paidAmount, PaymentStatusFor(paidAmount, b.Amount)
}

// PaymentStatusFor computes the payment status as a pure function of
// paidAmount vs amount:
//
//	paid    if paidAmount >= amount - ε
//	partial if paidAmount > 0
//	pending otherwise
func PaymentStatusFor(paidAmount, amount float64) string {
	switch {
	case paidAmount >= amount-PaymentEpsilon:
		return PaymentPaid
	case paidAmount > 0:
		return PaymentPartial
	default:
		return PaymentPending
	}
}

// RangesOverlap reports whether the inclusive day ranges [aStart, aEnd]
// and [bStart, bEnd] share at least one day. A checkout day equal to
// another booking's pickup day counts as a conflict.
func RangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}

// RentalDays returns the number of days the inclusive range
// [start, end] occupies. A single-day rental (start == end) is 1.
func RentalDays(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}

// ParseDate parses a wire-format date into a UTC midnight timestamp.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}

// ─── Request / response payloads ─────────────────────────────────────────────

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest is the payload for obtaining a token.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries the issued token and the account it belongs to.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// CreateVehicleRequest is the payload for listing a vehicle.
type CreateVehicleRequest struct {
	Name           string  `json:"name" validate:"required"`
	DailyPrice     float64 `json:"daily_price" validate:"required,gt=0"`
	ListingMode    string  `json:"listing_mode" validate:"required,oneof=Rent Sell"`
	ReservationFee float64 `json:"reservation_fee" validate:"gte=0"`
}

// BookingRequest is the payload for requesting a booking. Dates are
// required for Rent listings and ignored for Sell listings.
type BookingRequest struct {
	VehicleID    string `json:"vehicle_id" validate:"required"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	ContactName  string `json:"contact_name" validate:"required"`
	ContactEmail string `json:"contact_email" validate:"required,email"`
	ContactPhone string `json:"contact_phone" validate:"required"`
	Payment      string `json:"payment" validate:"required,oneof=full partial deferred"`
}

// BookingResult is the outcome of a successful booking request: the
// committed booking plus the amount the requester must now route to
// the payment gateway (0 for deferred checkout).
type BookingResult struct {
	Booking    *Booking `json:"booking"`
	PayableNow float64  `json:"payable_amount_now"`
}

// CreateOrderRequest selects how much of the outstanding balance the
// gateway order being created should collect.
type CreateOrderRequest struct {
	Payment string `json:"payment" validate:"required,oneof=full partial"`
}

// OrderResponse is what the client checkout widget needs to open.
// Amount is in minor currency units, as the gateway expects.
type OrderResponse struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"key_id"`
}

// ConfirmPaymentRequest is the gateway checkout callback payload.
type ConfirmPaymentRequest struct {
	GatewayOrderID   string `json:"gateway_order_id" validate:"required"`
	GatewayPaymentID string `json:"gateway_payment_id" validate:"required"`
	Signature        string `json:"signature" validate:"required"`
}

// PaymentStatusResponse reports a booking's payment status after a
// settlement.
type PaymentStatusResponse struct {
	BookingID     string `json:"booking_id"`
	PaymentStatus string `json:"payment_status"`
}

// AvailabilityResponse answers a calendar query: whether the asked
// range is free, plus every committed range for UI disabling.
type AvailabilityResponse struct {
	Available    bool          `json:"available"`
	BookedRanges []BookedRange `json:"booked_ranges"`
}

// ErrorResponse is the standard JSON error envelope.
type ErrorResponse struct {
	Kind    string `json:"errorKind"`
	Message string `json:"message"`
}
