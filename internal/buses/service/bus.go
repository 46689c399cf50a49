package service

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	buseserrors "busline/internal/buses/errors"
	"busline/internal/buses/repository"
	"busline/internal/buses/validator"
	"busline/pkg/config"
	apperrors "busline/pkg/errors"
	"busline/pkg/model"
	"busline/pkg/sanitizer"
)

type BusService interface {
	AddBuses(ctx context.Context, buses []*model.Bus) ([]*model.Bus, error)
	GetByID(ctx context.Context, id string) (*model.Bus, error)
	Search(ctx context.Context, filter model.BusFilter) ([]*model.Bus, error)
}

type busService struct {
	repo      repository.BusRepository
	validator *validator.BusValidator
	cfg       *config.Config
}

func NewBusService(repo repository.BusRepository, busValidator *validator.BusValidator, cfg *config.Config) BusService {
	return &busService{
		repo:      repo,
		validator: busValidator,
		cfg:       cfg,
	}
}

func (s *busService) AddBuses(ctx context.Context, buses []*model.Bus) ([]*model.Bus, error) {
	if len(buses) == 0 {
		return nil, apperrors.InvalidInput("Request body must be a non-empty array of buses")
	}

	for i, bus := range buses {
		s.sanitize(bus)
		if err := s.validator.Validate(bus); err != nil {
			s.cfg.Log.Warn("Bus validation failed", "index", i, "error", err)
			return nil, apperrors.Validation(
				fmt.Sprintf("Bus at index %d failed validation", i),
				map[string]any{"index": i, "error": err.Error()},
			)
		}
	}

	if err := s.repo.InsertMany(ctx, buses); err != nil {
		s.cfg.Log.Error("Failed to insert buses", "count", len(buses), "error", err)
		return nil, apperrors.Internal("Failed to add buses", err)
	}

	s.cfg.Log.Info("Buses added successfully", "count", len(buses))
	return buses, nil
}

func (s *busService) GetByID(ctx context.Context, id string) (*model.Bus, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.InvalidInput("Invalid bus ID format")
	}

	bus, err := s.repo.FindByID(ctx, objectID)
	if err != nil {
		if errors.Is(err, buseserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Bus", id)
		}
		return nil, apperrors.Internal("Failed to retrieve bus", err)
	}

	return bus, nil
}

func (s *busService) Search(ctx context.Context, filter model.BusFilter) ([]*model.Bus, error) {
	filter.Source = sanitizer.NormalizeCity(filter.Source)
	filter.Destination = sanitizer.NormalizeCity(filter.Destination)

	buses, err := s.repo.Search(ctx, filter)
	if err != nil {
		s.cfg.Log.Error("Failed to search buses", "error", err)
		return nil, apperrors.Internal("Failed to search buses", err)
	}

	s.cfg.Log.Debug("Bus search completed",
		"source", filter.Source,
		"destination", filter.Destination,
		"date", filter.Date,
		"time", filter.Time,
		"count", len(buses),
	)
	return buses, nil
}

func (s *busService) sanitize(bus *model.Bus) {
	bus.Source = sanitizer.NormalizeCity(bus.Source)
	bus.Destination = sanitizer.NormalizeCity(bus.Destination)
	bus.BusName = sanitizer.NormalizeName(bus.BusName)
}
