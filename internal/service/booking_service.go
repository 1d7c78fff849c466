package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Jaydipsinh000/CarhubReact-sub000/internal/events"
	"github.com/Jaydipsinh000/CarhubReact-sub000/internal/model"
	"github.com/Jaydipsinh000/CarhubReact-sub000/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// BookingService is the orchestrator: the single entry point that turns
// a booking request into a committed date range plus a booking record.
// It is the only component that talks to both the availability ledger
// and (via SettlementService) the payment side; neither calls the other.
type BookingService struct {
	vehicles  VehicleStore
	bookings  BookingStore
	publisher EventPublisher
	validate  *validator.Validate
}

// NewBookingService constructs a BookingService.
func NewBookingService(vehicles VehicleStore, bookings BookingStore, publisher EventPublisher) *BookingService {
	return &BookingService{
		vehicles:  vehicles,
		bookings:  bookings,
		publisher: publisher,
		validate:  validator.New(),
	}
}

// RequestBooking validates the request, commits the date range, creates
// the booking, and returns it together with the amount payable now.
//
// Ordering matters: the ledger commit happens first, and if creating
// the booking record fails afterwards the committed range is released
// again so no orphaned range blocks the calendar.
func (s *BookingService) RequestBooking(ctx context.Context, requester model.Requester, req model.BookingRequest) (*model.BookingResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	vehicle, err := s.vehicles.GetByID(ctx, req.VehicleID)
	if err != nil {
		return nil, err
	}

	booking := &model.Booking{
		ID:            uuid.New().String(),
		VehicleID:     vehicle.ID,
		RequesterID:   requester.ID,
		ContactName:   req.ContactName,
		ContactEmail:  req.ContactEmail,
		ContactPhone:  req.ContactPhone,
		PaidAmount:    0,
		PaymentStatus: model.PaymentPending,
		CreatedAt:     time.Now().UTC(),
	}

	committedRange := false
	switch vehicle.ListingMode {
	case model.ModeRent:
		start, end, err := parseRentDates(req.StartDate, req.EndDate)
		if err != nil {
			return nil, err
		}
		booking.OrderType = model.OrderRent
		booking.StartDate = &start
		booking.EndDate = &end
		booking.Amount = vehicle.DailyPrice * float64(model.RentalDays(start, end))

		if err := s.vehicles.CommitRange(ctx, vehicle.ID, start, end, booking.ID); err != nil {
			return nil, err
		}
		committedRange = true

	case model.ModeSell:
		booking.OrderType = model.OrderSale
		booking.Amount = vehicle.ReservationFee

	default:
		return nil, fmt.Errorf("unknown listing mode %q", vehicle.ListingMode)
	}

	if booking.Amount <= 0 {
		if committedRange {
			_ = s.vehicles.ReleaseRange(ctx, booking.ID)
		}
		return nil, fmt.Errorf("%w: booking amount must be positive", ErrValidation)
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		// Roll back the ledger commit so the range does not stay
		// blocked by a booking that was never created.
		if committedRange {
			if relErr := s.vehicles.ReleaseRange(ctx, booking.ID); relErr != nil {
				return nil, fmt.Errorf("create booking: %w (release range: %v)", err, relErr)
			}
		}
		return nil, err
	}

	// Best effort: a lost event never fails the booking.
	_ = s.publisher.PublishJSON(ctx, events.KeyBookingCreated, booking)

	return &model.BookingResult{
		Booking:    booking,
		PayableNow: PayableNow(booking.Amount, req.Payment),
	}, nil
}

// GetBooking returns one of the requester's bookings with its applied
// payments. Other requesters' bookings are reported as not found.
func (s *BookingService) GetBooking(ctx context.Context, requester model.Requester, bookingID string) (*model.Booking, []model.BookingPayment, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	if booking.RequesterID != requester.ID {
		// Do not reveal other requesters' bookings.
		return nil, nil, repository.ErrNotFound
	}
	payments, err := s.bookings.ListPayments(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	if payments == nil {
		payments = []model.BookingPayment{}
	}
	return booking, payments, nil
}

// ListBookings returns all of the requester's bookings.
func (s *BookingService) ListBookings(ctx context.Context, requester model.Requester) ([]model.Booking, error) {
	return s.bookings.ListByRequester(ctx, requester.ID)
}

// CancelBooking moves a booking to the terminal cancelled state and
// releases its committed range. Only unpaid bookings can be cancelled.
func (s *BookingService) CancelBooking(ctx context.Context, requester model.Requester, bookingID string) (*model.Booking, error) {
	booking, err := s.bookings.Cancel(ctx, bookingID, requester.ID)
	if err != nil {
		return nil, err
	}
	_ = s.publisher.PublishJSON(ctx, events.KeyBookingCancelled, booking)
	return booking, nil
}

// PayableNow determines how much must be routed to the payment gateway
// for the chosen checkout: the full total, a 20% partial, or nothing
// (deferred bookings stand in pending status and stay retryable).
func PayableNow(totalAmount float64, payment string) float64 {
	switch payment {
	case model.PayFull:
		return totalAmount
	case model.PayPartial:
		return math.Round(totalAmount * model.PartialShare)
	default:
		return 0
	}
}

func parseRentDates(startStr, endStr string) (time.Time, time.Time, error) {
	if startStr == "" || endStr == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start_date and end_date are required for rentals", ErrValidation)
	}
	start, err := model.ParseDate(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	end, err := model.ParseDate(endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start date after end date", ErrValidation)
	}
	return start, end, nil
}
