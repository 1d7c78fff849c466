package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Jaydipsinh000/CarhubReact-sub000/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BookingRepository handles persistence for bookings and their
// processed-payment ledger.
type BookingRepository struct {
	db *pgxpool.Pool
}

// NewBookingRepository constructs a BookingRepository.
func NewBookingRepository(db *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, vehicle_id, requester_id, contact_name, contact_email, contact_phone,
	start_date, end_date, amount, paid_amount, payment_status, order_type, created_at`

// Create inserts a new booking.
func (r *BookingRepository) Create(ctx context.Context, b *model.Booking) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO bookings (`+bookingColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		b.ID, b.VehicleID, b.RequesterID, b.ContactName, b.ContactEmail, b.ContactPhone,
		b.StartDate, b.EndDate, b.Amount, b.PaidAmount, b.PaymentStatus, b.OrderType, b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

// GetByID returns a single booking or ErrNotFound.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	return scanBooking(row)
}

// ListByRequester returns all bookings made by a requester, newest first.
func (r *BookingRepository) ListByRequester(ctx context.Context, requesterID string) ([]model.Booking, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		 WHERE requester_id = $1
		 ORDER BY created_at DESC`,
		requesterID,
	)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

// ApplyPayment credits a gateway-confirmed amount to a booking inside a
// single transaction and returns the updated booking.
//
// The booking row is locked with SELECT ... FOR UPDATE so two
// simultaneous settlements for the same booking cannot interleave their
// read-modify-write. The processed-payment ledger is consulted under
// the same lock: if gatewayPaymentID was already applied to this
// booking the call is a no-op and applied is false (webhook retries and
// double-clicks must not double-count). The paid-amount update and the
// ledger insert commit together, so a failure leaves the booking
// untouched.
func (r *BookingRepository) ApplyPayment(ctx context.Context, bookingID, gatewayPaymentID, gatewayOrderID string, amount float64) (booking *model.Booking, applied bool, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	booking, err = scanBooking(tx.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`,
		bookingID,
	))
	if err != nil {
		return nil, false, err
	}
	if booking.PaymentStatus == model.PaymentCancelled {
		err = ErrAlreadyCancelled
		return nil, false, err
	}

	// Dedupe check: has this gateway payment already been credited?
	var seen int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM booking_payments
		 WHERE booking_id = $1 AND gateway_payment_id = $2`,
		bookingID, gatewayPaymentID,
	).Scan(&seen)
	if err != nil {
		return nil, false, fmt.Errorf("check processed payments: %w", err)
	}
	if seen > 0 {
		if err = tx.Commit(ctx); err != nil {
			return nil, false, fmt.Errorf("commit transaction: %w", err)
		}
		return booking, false, nil
	}

	newPaid, newStatus := booking.ApplyPayment(amount)

	_, err = tx.Exec(ctx,
		`UPDATE bookings SET paid_amount = $2, payment_status = $3 WHERE id = $1`,
		bookingID, newPaid, newStatus,
	)
	if err != nil {
		return nil, false, fmt.Errorf("update booking payment: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO booking_payments (id, booking_id, gateway_payment_id, gateway_order_id, amount, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.New().String(), bookingID, gatewayPaymentID, gatewayOrderID, amount, time.Now().UTC(),
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert booking payment: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("commit transaction: %w", err)
	}

	booking.PaidAmount = newPaid
	booking.PaymentStatus = newStatus
	return booking, true, nil
}

// Cancel moves a requester's booking to the terminal cancelled status
// and releases its ledger ranges in the same transaction. Only
// bookings with no money applied can be cancelled; anything else needs
// an explicit refund flow that does not exist yet.
func (r *BookingRepository) Cancel(ctx context.Context, bookingID, requesterID string) (booking *model.Booking, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	booking, err = scanBooking(tx.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`,
		bookingID,
	))
	if err != nil {
		return nil, err
	}
	if booking.RequesterID != requesterID {
		err = ErrNotFound
		return nil, err
	}
	if booking.PaymentStatus == model.PaymentCancelled {
		err = ErrAlreadyCancelled
		return nil, err
	}
	if booking.PaidAmount > 0 {
		err = ErrCancelNotAllowed
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE bookings SET payment_status = $2 WHERE id = $1`,
		bookingID, model.PaymentCancelled,
	)
	if err != nil {
		return nil, fmt.Errorf("cancel booking: %w", err)
	}

	_, err = tx.Exec(ctx,
		`DELETE FROM vehicle_booked_ranges WHERE booking_id = $1`,
		bookingID,
	)
	if err != nil {
		return nil, fmt.Errorf("release booked range: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	booking.PaymentStatus = model.PaymentCancelled
	return booking, nil
}

// ListPayments returns the applied payments for a booking, oldest first.
func (r *BookingRepository) ListPayments(ctx context.Context, bookingID string) ([]model.BookingPayment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, booking_id, gateway_payment_id, gateway_order_id, amount, created_at
		 FROM booking_payments
		 WHERE booking_id = $1
		 ORDER BY created_at ASC`,
		bookingID,
	)
	if err != nil {
		return nil, fmt.Errorf("list booking payments: %w", err)
	}
	defer rows.Close()

	var payments []model.BookingPayment
	for rows.Next() {
		var p model.BookingPayment
		if err := rows.Scan(&p.ID, &p.BookingID, &p.GatewayPaymentID, &p.GatewayOrderID, &p.Amount, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan booking payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var b model.Booking
	err := row.Scan(
		&b.ID, &b.VehicleID, &b.RequesterID, &b.ContactName, &b.ContactEmail, &b.ContactPhone,
		&b.StartDate, &b.EndDate, &b.Amount, &b.PaidAmount, &b.PaymentStatus, &b.OrderType, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan booking: %w", err)
	}
	return &b, nil
}
