package service

import (
	"context"
	"time"

	"github.com/Jaydipsinh000/CarhubReact-sub000/internal/gateway"
	"github.com/Jaydipsinh000/CarhubReact-sub000/internal/model"
)

// VehicleStore is the persistence surface the services need for
// vehicles and their availability ledger. *repository.VehicleRepository
// satisfies it.
type VehicleStore interface {
	Create(ctx context.Context, ownerID string, req model.CreateVehicleRequest) (*model.Vehicle, error)
	List(ctx context.Context) ([]model.Vehicle, error)
	GetByID(ctx context.Context, id string) (*model.Vehicle, error)
	ListRanges(ctx context.Context, vehicleID string) ([]model.BookedRange, error)
	CheckAvailable(ctx context.Context, vehicleID string, start, end time.Time) (bool, error)
	CommitRange(ctx context.Context, vehicleID string, start, end time.Time, bookingID string) error
	ReleaseRange(ctx context.Context, bookingID string) error
}

// BookingStore is the persistence surface for bookings and their
// processed-payment ledger. *repository.BookingRepository satisfies it.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	ListByRequester(ctx context.Context, requesterID string) ([]model.Booking, error)
	ApplyPayment(ctx context.Context, bookingID, gatewayPaymentID, gatewayOrderID string, amount float64) (*model.Booking, bool, error)
	Cancel(ctx context.Context, bookingID, requesterID string) (*model.Booking, error)
	ListPayments(ctx context.Context, bookingID string) ([]model.BookingPayment, error)
}

// UserStore is the persistence surface for accounts.
// *repository.UserRepository satisfies it.
type UserStore interface {
	Create(ctx context.Context, name, email, phone, passwordHash string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// PaymentGateway is the external payment provider: orders are created
// for minor-unit amounts and fetched back as the authoritative record
// of what was collected. *gateway.Razorpay satisfies it.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*gateway.Order, error)
	FetchOrder(ctx context.Context, orderID string) (*gateway.Order, error)
}

// EventPublisher emits domain events after state changes commit.
// *events.Publisher and events.Nop satisfy it.
type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}
