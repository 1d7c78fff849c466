// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"fmt"

	"github.com/Jaydipsinh000/CarhubReact-sub000/internal/model"
	"github.com/go-playground/validator/v10"
)

// VehicleService handles the vehicle catalog and the read-only
// availability surface.
type VehicleService struct {
	vehicles VehicleStore
	validate *validator.Validate
}

// NewVehicleService constructs a VehicleService.
func NewVehicleService(vehicles VehicleStore) *VehicleService {
	return &VehicleService{
		vehicles: vehicles,
		validate: validator.New(),
	}
}

// CreateVehicle validates the listing and delegates to the repository.
func (s *VehicleService) CreateVehicle(ctx context.Context, owner model.Requester, req model.CreateVehicleRequest) (*model.Vehicle, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if req.ListingMode == model.ModeSell && req.ReservationFee <= 0 {
		return nil, fmt.Errorf("%w: reservation_fee must be positive for Sell listings", ErrValidation)
	}
	return s.vehicles.Create(ctx, owner.ID, req)
}

// ListVehicles returns all vehicle listings.
func (s *VehicleService) ListVehicles(ctx context.Context) ([]model.Vehicle, error) {
	return s.vehicles.List(ctx)
}

// GetVehicle returns a single vehicle by ID.
func (s *VehicleService) GetVehicle(ctx context.Context, id string) (*model.Vehicle, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: vehicle id is required", ErrValidation)
	}
	return s.vehicles.GetByID(ctx, id)
}

// Availability answers a calendar query for a vehicle: whether
// [start, end] is free plus every committed range. When no range is
// asked for (empty start/end), only the committed ranges are returned
// and the range is reported available.
func (s *VehicleService) Availability(ctx context.Context, vehicleID, startStr, endStr string) (*model.AvailabilityResponse, error) {
	if _, err := s.vehicles.GetByID(ctx, vehicleID); err != nil {
		return nil, err
	}

	available := true
	if startStr != "" || endStr != "" {
		start, err := model.ParseDate(startStr)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		end, err := model.ParseDate(endStr)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		if start.After(end) {
			return nil, fmt.Errorf("%w: start date after end date", ErrValidation)
		}
		available, err = s.vehicles.CheckAvailable(ctx, vehicleID, start, end)
		if err != nil {
			return nil, err
		}
	}

	ranges, err := s.vehicles.ListRanges(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if ranges == nil {
		ranges = []model.BookedRange{}
	}
	return &model.AvailabilityResponse{Available: available, BookedRanges: ranges}, nil
}
