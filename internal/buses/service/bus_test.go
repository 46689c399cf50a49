package service

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	buseserrors "busline/internal/buses/errors"
	"busline/internal/buses/validator"
	"busline/pkg/config"
	apperrors "busline/pkg/errors"
	"busline/pkg/logger"
	"busline/pkg/model"
)

type mockBusRepository struct {
	insertManyFunc func(ctx context.Context, buses []*model.Bus) error
	findByIDFunc   func(ctx context.Context, id primitive.ObjectID) (*model.Bus, error)
	searchFunc     func(ctx context.Context, filter model.BusFilter) ([]*model.Bus, error)
}

func (m *mockBusRepository) InsertMany(ctx context.Context, buses []*model.Bus) error {
	if m.insertManyFunc != nil {
		return m.insertManyFunc(ctx, buses)
	}
	for _, bus := range buses {
		bus.ID = primitive.NewObjectID()
	}
	return nil
}

func (m *mockBusRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Bus, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, buseserrors.ErrNotFound
}

func (m *mockBusRepository) Search(ctx context.Context, filter model.BusFilter) ([]*model.Bus, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, filter)
	}
	return []*model.Bus{}, nil
}

func newTestService(repo *mockBusRepository) BusService {
	cfg := &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
	}
	return NewBusService(repo, validator.NewBusValidator(cfg.Log), cfg)
}

func validBus() *model.Bus {
	return &model.Bus{
		Source:      "mumbai",
		Destination: "pune",
		BusName:     "Shivneri Express",
		Time:        "08:30",
		Date:        "2026-10-01",
	}
}

func TestAddBuses_EmptyBatchRejected(t *testing.T) {
	svc := newTestService(&mockBusRepository{})

	_, err := svc.AddBuses(context.Background(), nil)
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.StatusCode() != 400 {
		t.Errorf("expected status 400, got %d", appErr.StatusCode())
	}
}

func TestAddBuses_InvalidScheduleReported(t *testing.T) {
	svc := newTestService(&mockBusRepository{})

	bad := validBus()
	bad.Time = "8:30pm"
	_, err := svc.AddBuses(context.Background(), []*model.Bus{validBus(), bad})
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected validation error, got %s", appErr.Code)
	}
	if appErr.Details["index"] != 1 {
		t.Errorf("expected failing index 1, got %v", appErr.Details["index"])
	}
}

func TestAddBuses_NormalizesCitiesBeforeInsert(t *testing.T) {
	var inserted []*model.Bus
	repo := &mockBusRepository{
		insertManyFunc: func(ctx context.Context, buses []*model.Bus) error {
			inserted = buses
			return nil
		},
	}
	svc := newTestService(repo)

	bus := validBus()
	bus.Source = "  Mumbai "
	bus.Destination = "Pune \t City"
	if _, err := svc.AddBuses(context.Background(), []*model.Bus{bus}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inserted) != 1 {
		t.Fatalf("expected 1 inserted bus, got %d", len(inserted))
	}
	if inserted[0].Source != "Mumbai" || inserted[0].Destination != "Pune City" {
		t.Errorf("cities not normalized: %q -> %q", inserted[0].Source, inserted[0].Destination)
	}
}

func TestGetByID_MalformedID(t *testing.T) {
	svc := newTestService(&mockBusRepository{})

	_, err := svc.GetByID(context.Background(), "zz-not-hex")
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.StatusCode() != 400 {
		t.Errorf("expected status 400, got %d", appErr.StatusCode())
	}
}

func TestGetByID_UnknownBus(t *testing.T) {
	svc := newTestService(&mockBusRepository{})

	_, err := svc.GetByID(context.Background(), primitive.NewObjectID().Hex())
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.StatusCode() != 404 {
		t.Errorf("expected status 404, got %d", appErr.StatusCode())
	}
}

func TestSearch_FilterNormalizedAndIdempotent(t *testing.T) {
	var filters []model.BusFilter
	repo := &mockBusRepository{
		searchFunc: func(ctx context.Context, filter model.BusFilter) ([]*model.Bus, error) {
			filters = append(filters, filter)
			return []*model.Bus{validBus()}, nil
		},
	}
	svc := newTestService(repo)

	query := model.BusFilter{Source: " Mumbai ", Destination: "Pune", Date: "2026-10-01"}
	for i := 0; i < 2; i++ {
		buses, err := svc.Search(context.Background(), query)
		if err != nil {
			t.Fatalf("search %d: unexpected error: %v", i, err)
		}
		if len(buses) != 1 {
			t.Errorf("search %d: expected 1 bus, got %d", i, len(buses))
		}
	}
	if len(filters) != 2 {
		t.Fatalf("expected 2 repository calls, got %d", len(filters))
	}
	for i, f := range filters {
		if f.Source != "Mumbai" || f.Destination != "Pune" {
			t.Errorf("call %d: filter not normalized: %+v", i, f)
		}
	}
}
