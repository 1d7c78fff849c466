package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"

	"github.com/Jaydipsinh000/CarhubReact-sub000/internal/events"
	"github.com/Jaydipsinh000/CarhubReact-sub000/internal/model"
	"github.com/go-playground/validator/v10"
)

// Currency is the single currency all amounts are denominated in.
// Booking records hold major units; the gateway speaks minor units
// (paise), so every boundary crossing multiplies or divides by 100.
const Currency = "INR"

const minorUnitsPerMajor = 100

// SettlementService reconciles payment-gateway confirmations against a
// booking's outstanding balance: it verifies the callback is authentic,
// asks the gateway how much money the order represents, and advances
// the booking's payment state exactly once per gateway payment.
type SettlementService struct {
	bookings  BookingStore
	gw        PaymentGateway
	publisher EventPublisher
	validate  *validator.Validate

	keyID  string
	secret string
}

// NewSettlementService constructs a SettlementService. secret is the
// shared secret checkout signatures are computed with (the gateway key
// secret).
func NewSettlementService(bookings BookingStore, gw PaymentGateway, publisher EventPublisher, keyID, secret string) *SettlementService {
	return &SettlementService{
		bookings:  bookings,
		gw:        gw,
		publisher: publisher,
		validate:  validator.New(),
		keyID:     keyID,
		secret:    secret,
	}
}

// CreateOrder creates a gateway order collecting part of the booking's
// outstanding balance: the whole of it for a full checkout, or the 20%
// partial (capped at the outstanding balance) for a partial one. The
// response carries everything the client checkout widget needs.
func (s *SettlementService) CreateOrder(ctx context.Context, requester model.Requester, bookingID string, req model.CreateOrderRequest) (*model.OrderResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.RequesterID != requester.ID {
		return nil, fmt.Errorf("%w: booking does not belong to requester", ErrValidation)
	}
	if booking.PaymentStatus == model.PaymentCancelled {
		return nil, fmt.Errorf("%w: booking is cancelled", ErrValidation)
	}

	outstanding := booking.Outstanding()
	if outstanding <= 0 {
		return nil, fmt.Errorf("%w: booking is already fully paid", ErrValidation)
	}

	amount := outstanding
	if req.Payment == model.PayPartial {
		if partial := PayableNow(booking.Amount, model.PayPartial); partial < outstanding {
			amount = partial
		}
	}

	order, err := s.gw.CreateOrder(ctx, toMinorUnits(amount), Currency, booking.ID)
	if err != nil {
		return nil, err
	}

	return &model.OrderResponse{
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		KeyID:    s.keyID,
	}, nil
}

// ConfirmPayment settles one gateway confirmation against a booking:
//
//  1. The supplied signature must equal the HMAC-SHA256 of
//     "orderID|paymentID" under the shared secret; otherwise
//     ErrInvalidSignature and the booking is untouched.
//  2. The order is fetched back from the gateway; its amount — never a
//     client-supplied figure — is what gets credited.
//  3. The booking's paid amount and status advance atomically, and a
//     replayed gateway payment ID is a no-op.
//
// Returns the booking's payment status after settlement.
func (s *SettlementService) ConfirmPayment(ctx context.Context, bookingID string, req model.ConfirmPaymentRequest) (*model.PaymentStatusResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	expected := checkoutSignature(req.GatewayOrderID, req.GatewayPaymentID, s.secret)
	if !hmac.Equal([]byte(expected), []byte(req.Signature)) {
		return nil, ErrInvalidSignature
	}

	order, err := s.gw.FetchOrder(ctx, req.GatewayOrderID)
	if err != nil {
		return nil, err
	}
	confirmed := fromMinorUnits(order.Amount)

	booking, applied, err := s.bookings.ApplyPayment(ctx, bookingID, req.GatewayPaymentID, req.GatewayOrderID, confirmed)
	if err != nil {
		return nil, err
	}

	if applied {
		_ = s.publisher.PublishJSON(ctx, events.KeyPaymentSettled, model.BookingPayment{
			BookingID:        booking.ID,
			GatewayPaymentID: req.GatewayPaymentID,
			GatewayOrderID:   req.GatewayOrderID,
			Amount:           confirmed,
		})
	}

	return &model.PaymentStatusResponse{
		BookingID:     booking.ID,
		PaymentStatus: booking.PaymentStatus,
	}, nil
}

// checkoutSignature computes the hex HMAC-SHA256 of "orderID|paymentID"
// under the shared secret, matching what the gateway's checkout widget
// hands the client on success.
func checkoutSignature(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func toMinorUnits(major float64) int64 {
	return int64(math.Round(major * minorUnitsPerMajor))
}

func fromMinorUnits(minor int64) float64 {
	return float64(minor) / minorUnitsPerMajor
}
