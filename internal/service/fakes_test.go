package service

import (
	"context"
	"time"

	"github.com/Jaydipsinh000/CarhubReact-sub000/internal/gateway"
	"github.com/Jaydipsinh000/CarhubReact-sub000/internal/model"
	"github.com/Jaydipsinh000/CarhubReact-sub000/internal/repository"
)

// In-memory fakes mirroring the repository semantics, so service tests
// run without a database.

type fakeVehicleStore struct {
	vehicles map[string]*model.Vehicle
	ranges   []model.BookedRange

	commitCalls  int
	releaseCalls int
}

func newFakeVehicleStore(vehicles ...*model.Vehicle) *fakeVehicleStore {
	s := &fakeVehicleStore{vehicles: map[string]*model.Vehicle{}}
	for _, v := range vehicles {
		s.vehicles[v.ID] = v
	}
	return s
}

func (s *fakeVehicleStore) Create(ctx context.Context, ownerID string, req model.CreateVehicleRequest) (*model.Vehicle, error) {
	v := &model.Vehicle{
		ID:             "veh-" + req.Name,
		OwnerID:        ownerID,
		Name:           req.Name,
		DailyPrice:     req.DailyPrice,
		ListingMode:    req.ListingMode,
		ReservationFee: req.ReservationFee,
		CreatedAt:      time.Now().UTC(),
	}
	s.vehicles[v.ID] = v
	return v, nil
}

func (s *fakeVehicleStore) List(ctx context.Context) ([]model.Vehicle, error) {
	var out []model.Vehicle
	for _, v := range s.vehicles {
		out = append(out, *v)
	}
	return out, nil
}

func (s *fakeVehicleStore) GetByID(ctx context.Context, id string) (*model.Vehicle, error) {
	v, ok := s.vehicles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return v, nil
}

func (s *fakeVehicleStore) ListRanges(ctx context.Context, vehicleID string) ([]model.BookedRange, error) {
	var out []model.BookedRange
	for _, r := range s.ranges {
		if r.VehicleID == vehicleID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeVehicleStore) CheckAvailable(ctx context.Context, vehicleID string, start, end time.Time) (bool, error) {
	for _, r := range s.ranges {
		if r.VehicleID == vehicleID && model.RangesOverlap(r.StartDate, r.EndDate, start, end) {
			return false, nil
		}
	}
	return true, nil
}

func (s *fakeVehicleStore) CommitRange(ctx context.Context, vehicleID string, start, end time.Time, bookingID string) error {
	s.commitCalls++
	if _, ok := s.vehicles[vehicleID]; !ok {
		return repository.ErrNotFound
	}
	free, _ := s.CheckAvailable(ctx, vehicleID, start, end)
	if !free {
		return repository.ErrDatesUnavailable
	}
	s.ranges = append(s.ranges, model.BookedRange{
		ID:        bookingID + "-range",
		VehicleID: vehicleID,
		StartDate: start,
		EndDate:   end,
		BookingID: bookingID,
	})
	return nil
}

func (s *fakeVehicleStore) ReleaseRange(ctx context.Context, bookingID string) error {
	s.releaseCalls++
	kept := s.ranges[:0]
	for _, r := range s.ranges {
		if r.BookingID != bookingID {
			kept = append(kept, r)
		}
	}
	s.ranges = kept
	return nil
}

type fakeBookingStore struct {
	bookings map[string]*model.Booking
	payments map[string][]model.BookingPayment

	createErr error
}

func newFakeBookingStore(bookings ...*model.Booking) *fakeBookingStore {
	s := &fakeBookingStore{
		bookings: map[string]*model.Booking{},
		payments: map[string][]model.BookingPayment{},
	}
	for _, b := range bookings {
		s.bookings[b.ID] = b
	}
	return s
}

func (s *fakeBookingStore) Create(ctx context.Context, b *model.Booking) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.bookings[b.ID] = b
	return nil
}

func (s *fakeBookingStore) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	b, ok := s.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return b, nil
}

func (s *fakeBookingStore) ListByRequester(ctx context.Context, requesterID string) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range s.bookings {
		if b.RequesterID == requesterID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *fakeBookingStore) ApplyPayment(ctx context.Context, bookingID, gatewayPaymentID, gatewayOrderID string, amount float64) (*model.Booking, bool, error) {
	b, ok := s.bookings[bookingID]
	if !ok {
		return nil, false, repository.ErrNotFound
	}
	if b.PaymentStatus == model.PaymentCancelled {
		return nil, false, repository.ErrAlreadyCancelled
	}
	for _, p := range s.payments[bookingID] {
		if p.GatewayPaymentID == gatewayPaymentID {
			return b, false, nil
		}
	}
	b.PaidAmount, b.PaymentStatus = b.ApplyPayment(amount)
	s.payments[bookingID] = append(s.payments[bookingID], model.BookingPayment{
		ID:               gatewayPaymentID + "-row",
		BookingID:        bookingID,
		GatewayPaymentID: gatewayPaymentID,
		GatewayOrderID:   gatewayOrderID,
		Amount:           amount,
		CreatedAt:        time.Now().UTC(),
	})
	return b, true, nil
}

func (s *fakeBookingStore) Cancel(ctx context.Context, bookingID, requesterID string) (*model.Booking, error) {
	b, ok := s.bookings[bookingID]
	if !ok || b.RequesterID != requesterID {
		return nil, repository.ErrNotFound
	}
	if b.PaymentStatus == model.PaymentCancelled {
		return nil, repository.ErrAlreadyCancelled
	}
	if b.PaidAmount > 0 {
		return nil, repository.ErrCancelNotAllowed
	}
	b.PaymentStatus = model.PaymentCancelled
	return b, nil
}

func (s *fakeBookingStore) ListPayments(ctx context.Context, bookingID string) ([]model.BookingPayment, error) {
	return s.payments[bookingID], nil
}

type fakeGateway struct {
	orders    map[string]*gateway.Order
	createErr error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{orders: map[string]*gateway.Order{}}
}

func (g *fakeGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*gateway.Order, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	o := &gateway.Order{ID: "order_" + receipt, Amount: amount, Currency: currency}
	g.orders[o.ID] = o
	return o, nil
}

func (g *fakeGateway) FetchOrder(ctx context.Context, orderID string) (*gateway.Order, error) {
	o, ok := g.orders[orderID]
	if !ok {
		return nil, gateway.ErrOrderNotFound
	}
	return o, nil
}

// addOrder seeds an order as if the gateway already created it.
func (g *fakeGateway) addOrder(id string, amount int64) {
	g.orders[id] = &gateway.Order{ID: id, Amount: amount, Currency: Currency}
}

type fakePublisher struct {
	keys []string
}

func (p *fakePublisher) PublishJSON(ctx context.Context, key string, v any) error {
	p.keys = append(p.keys, key)
	return nil
}
