package service

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "busline/internal/bookings/errors"
	"busline/internal/bookings/repository"
	"busline/internal/bookings/validator"
	buseserrors "busline/internal/buses/errors"
	busrepository "busline/internal/buses/repository"
	"busline/pkg/config"
	apperrors "busline/pkg/errors"
	"busline/pkg/kafka"
	"busline/pkg/model"
	"busline/pkg/sanitizer"
)

const (
	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
)

// EventPublisher is what the service needs from pkg/kafka. A nil publisher
// disables events entirely.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type bookingCancelledEvent struct {
	BookingID string `json:"bookingId"`
	UserID    string `json:"userId"`
}

type BookingService interface {
	Create(ctx context.Context, userID primitive.ObjectID, req *model.BookingRequest) (*model.Booking, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*model.BookingWithBus, error)
	Cancel(ctx context.Context, id string, userID primitive.ObjectID) error
}

type bookingService struct {
	repo      repository.BookingRepository
	busRepo   busrepository.BusRepository
	validator *validator.BookingValidator
	events    EventPublisher
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	busRepo busrepository.BusRepository,
	bookingValidator *validator.BookingValidator,
	events EventPublisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		busRepo:   busRepo,
		validator: bookingValidator,
		events:    events,
		cfg:       cfg,
	}
}

// Create reserves a seat for the authenticated user. Ownership comes from
// userID only; the request body cannot name a different owner. The bus must
// exist and the seat must be free, checked and inserted in one transaction
// with the unique (bus_id, seat) index as the concurrent backstop.
func (s *bookingService) Create(ctx context.Context, userID primitive.ObjectID, req *model.BookingRequest) (*model.Booking, error) {
	s.sanitize(req)
	if err := s.validator.ValidateRequest(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}

	booking := &model.Booking{
		Name:           req.Name,
		IdentityNumber: req.IdentityNumber,
		Age:            req.Age,
		Contact:        req.Contact,
		Seat:           req.Seat,
		BusID:          req.BusID,
		Price:          req.Price,
		UserID:         userID,
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if _, err := s.busRepo.FindByID(sessCtx, booking.BusID); err != nil {
			if errors.Is(err, buseserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Bus", booking.BusID.Hex())
			}
			return apperrors.Internal("Failed to verify bus", err)
		}

		taken, err := s.repo.CountByBusAndSeat(sessCtx, booking.BusID, booking.Seat)
		if err != nil {
			return apperrors.Internal("Failed to check seat availability", err)
		}
		if taken > 0 {
			return seatConflict(booking.Seat)
		}

		if err := s.repo.Create(sessCtx, booking); err != nil {
			if errors.Is(err, bookingserrors.ErrDuplicateSeat) {
				return seatConflict(booking.Seat)
			}
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking",
			"user_id", userID.Hex(),
			"bus_id", booking.BusID.Hex(),
			"seat", booking.Seat,
			"error", err,
		)
		return nil, err
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID.Hex(),
		"user_id", userID.Hex(),
		"bus_id", booking.BusID.Hex(),
		"seat", booking.Seat,
	)
	s.publish(ctx, EventBookingCreated, booking.ID.Hex(), booking)
	return booking, nil
}

// ListByUser returns every booking owned by the user, each joined with its
// bus. An empty slice is a valid result; surfacing it as not-found is the
// handler's policy, not this service's.
func (s *bookingService) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*model.BookingWithBus, error) {
	bookings, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings", "user_id", userID.Hex(), "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}

	return bookings, nil
}

// Cancel deletes the booking only when the caller owns it. A missing
// booking, a malformed id and someone else's booking all collapse into the
// same not-found rejection so existence never leaks.
func (s *bookingService) Cancel(ctx context.Context, id string, userID primitive.ObjectID) error {
	bookingID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperrors.NotFound("Booking")
	}

	if err := s.repo.DeleteByIDAndUser(ctx, bookingID, userID); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.NotFound("Booking")
		}
		return apperrors.Internal("Failed to cancel booking", err)
	}

	s.cfg.Log.Info("Booking cancelled successfully", "id", id, "user_id", userID.Hex())
	s.publish(ctx, EventBookingCancelled, id, bookingCancelledEvent{
		BookingID: id,
		UserID:    userID.Hex(),
	})
	return nil
}

func (s *bookingService) sanitize(req *model.BookingRequest) {
	req.Name = sanitizer.NormalizeName(req.Name)
	req.IdentityNumber = sanitizer.TrimAndNormalize(req.IdentityNumber)
	req.Contact = sanitizer.TrimAndNormalize(req.Contact)
	req.Seat = sanitizer.NormalizeSeat(req.Seat)
}

// publish emits the booking event when a producer is configured. A failed
// publish is logged and never fails the request that triggered it.
func (s *bookingService) publish(ctx context.Context, eventType, key string, payload any) {
	if s.events == nil {
		return
	}

	msg, err := kafka.NewMessage().
		WithKey(key).
		WithValue(payload).
		WithEventType(eventType).
		WithSource("busline-api").
		Build()
	if err != nil {
		s.cfg.Log.Error("Failed to build booking event", "event_type", eventType, "error", err)
		return
	}

	if err := s.events.Publish(ctx, msg); err != nil {
		s.cfg.Log.Error("Failed to publish booking event", "event_type", eventType, "key", key, "error", err)
	}
}

func seatConflict(seat string) *apperrors.AppError {
	return apperrors.Conflict(fmt.Sprintf("Seat %s is already booked on this bus", seat))
}
