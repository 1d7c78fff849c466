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

// VehicleRepository handles persistence for vehicles and their
// availability ledger (the vehicle_booked_ranges table).
type VehicleRepository struct {
	db *pgxpool.Pool
}

// NewVehicleRepository constructs a VehicleRepository.
func NewVehicleRepository(db *pgxpool.Pool) *VehicleRepository {
	return &VehicleRepository{db: db}
}

// Create inserts a new vehicle listing and returns it with a generated UUID.
func (r *VehicleRepository) Create(ctx context.Context, ownerID string, req model.CreateVehicleRequest) (*model.Vehicle, error) {
	vehicle := &model.Vehicle{
		ID:             uuid.New().String(),
		OwnerID:        ownerID,
		Name:           req.Name,
		DailyPrice:     req.DailyPrice,
		ListingMode:    req.ListingMode,
		ReservationFee: req.ReservationFee,
		CreatedAt:      time.Now().UTC(),
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO vehicles (id, owner_id, name, daily_price, listing_mode, reservation_fee, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		vehicle.ID, vehicle.OwnerID, vehicle.Name, vehicle.DailyPrice,
		vehicle.ListingMode, vehicle.ReservationFee, vehicle.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert vehicle: %w", err)
	}
	return vehicle, nil
}

// List returns all vehicles ordered by creation time descending.
func (r *VehicleRepository) List(ctx context.Context) ([]model.Vehicle, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, owner_id, name, daily_price, listing_mode, reservation_fee, created_at
		 FROM vehicles
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []model.Vehicle
	for rows.Next() {
		var v model.Vehicle
		if err := rows.Scan(&v.ID, &v.OwnerID, &v.Name, &v.DailyPrice, &v.ListingMode, &v.ReservationFee, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

// GetByID returns a single vehicle or ErrNotFound.
func (r *VehicleRepository) GetByID(ctx context.Context, id string) (*model.Vehicle, error) {
	var v model.Vehicle
	err := r.db.QueryRow(ctx,
		`SELECT id, owner_id, name, daily_price, listing_mode, reservation_fee, created_at
		 FROM vehicles WHERE id = $1`,
		id,
	).Scan(&v.ID, &v.OwnerID, &v.Name, &v.DailyPrice, &v.ListingMode, &v.ReservationFee, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get vehicle: %w", err)
	}
	return &v, nil
}

// ListRanges returns every committed range for a vehicle, ordered by
// start date. Used by the calendar UI to disable taken dates.
func (r *VehicleRepository) ListRanges(ctx context.Context, vehicleID string) ([]model.BookedRange, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, vehicle_id, start_date, end_date, booking_id
		 FROM vehicle_booked_ranges
		 WHERE vehicle_id = $1
		 ORDER BY start_date ASC`,
		vehicleID,
	)
	if err != nil {
		return nil, fmt.Errorf("list booked ranges: %w", err)
	}
	defer rows.Close()

	var ranges []model.BookedRange
	for rows.Next() {
		var br model.BookedRange
		if err := rows.Scan(&br.ID, &br.VehicleID, &br.StartDate, &br.EndDate, &br.BookingID); err != nil {
			return nil, fmt.Errorf("scan booked range: %w", err)
		}
		ranges = append(ranges, br)
	}
	return ranges, rows.Err()
}

// CheckAvailable reports whether no committed range on the vehicle
// overlaps the inclusive day range [start, end]. Read-only; a positive
// answer can be stale by the time a commit is attempted, which is why
// CommitRange re-validates under a lock.
func (r *VehicleRepository) CheckAvailable(ctx context.Context, vehicleID string, start, end time.Time) (bool, error) {
	var overlaps int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM vehicle_booked_ranges
		 WHERE vehicle_id = $1 AND start_date <= $3 AND $2 <= end_date`,
		vehicleID, start, end,
	).Scan(&overlaps)
	if err != nil {
		return false, fmt.Errorf("check availability: %w", err)
	}
	return overlaps == 0, nil
}

// CommitRange atomically re-validates non-overlap and appends
// [start, end] to the vehicle's booked ranges.
//
// Two concurrent requests for overlapping ranges must not both succeed,
// and a naive read-then-insert lets exactly that happen: both read the
// ledger before either has written. So the transaction first takes a
// row-level lock on the vehicle with SELECT ... FOR UPDATE, which
// serialises all commits for that vehicle while leaving commits on
// other vehicles unblocked. The overlap check and the append then run
// under the lock.
//
// Returns ErrNotFound if the vehicle does not exist and
// ErrDatesUnavailable on overlap.
func (r *VehicleRepository) CommitRange(ctx context.Context, vehicleID string, start, end time.Time, bookingID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// Step 1: lock the vehicle row. Every commit for this vehicle
	// queues up here until we COMMIT or ROLLBACK.
	var lockedID string
	err = tx.QueryRow(ctx,
		`SELECT id FROM vehicles WHERE id = $1 FOR UPDATE`,
		vehicleID,
	).Scan(&lockedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = ErrNotFound
			return err
		}
		return fmt.Errorf("lock vehicle row: %w", err)
	}

	// Step 2: re-validate non-overlap under the lock. Inclusive
	// endpoints: [a1,a2] and [b1,b2] overlap iff a1 <= b2 AND b1 <= a2.
	var overlaps int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM vehicle_booked_ranges
		 WHERE vehicle_id = $1 AND start_date <= $3 AND $2 <= end_date`,
		vehicleID, start, end,
	).Scan(&overlaps)
	if err != nil {
		return fmt.Errorf("check overlap: %w", err)
	}
	if overlaps > 0 {
		err = ErrDatesUnavailable
		return err
	}

	// Step 3: append the range.
	_, err = tx.Exec(ctx,
		`INSERT INTO vehicle_booked_ranges (id, vehicle_id, start_date, end_date, booking_id)
		 VALUES ($1, $2, $3, $4, $5)`,
		uuid.New().String(), vehicleID, start, end, bookingID,
	)
	if err != nil {
		return fmt.Errorf("insert booked range: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ReleaseRange removes every range held by the given booking. Used to
// roll back a ledger commit when booking creation fails downstream, and
// on booking cancellation.
func (r *VehicleRepository) ReleaseRange(ctx context.Context, bookingID string) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM vehicle_booked_ranges WHERE booking_id = $1`,
		bookingID,
	)
	if err != nil {
		return fmt.Errorf("release booked range: %w", err)
	}
	return nil
}
