package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	buseserrors "busline/internal/buses/errors"
	"busline/pkg/config"
	"busline/pkg/model"
)

const CollectionName = "buses"

type BusRepository interface {
	InsertMany(ctx context.Context, buses []*model.Bus) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Bus, error)
	Search(ctx context.Context, filter model.BusFilter) ([]*model.Bus, error)
}

type mongoBusRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoBusRepository(cfg *config.Config) BusRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBusRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoBusRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// InsertMany is an ordered batch insert: the driver stops at the first
// failing document, matching the all-or-nothing semantics callers expect
// for a bulk schedule load.
func (r *mongoBusRepository) InsertMany(ctx context.Context, buses []*model.Bus) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	docs := make([]any, 0, len(buses))
	for _, bus := range buses {
		bus.CreatedAt = now
		docs = append(docs, bus)
	}

	result, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err != nil {
		return fmt.Errorf("failed to insert buses: %w", err)
	}

	for i, inserted := range result.InsertedIDs {
		if oid, ok := inserted.(primitive.ObjectID); ok && i < len(buses) {
			buses[i].ID = oid
		}
	}
	return nil
}

func (r *mongoBusRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Bus, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var bus model.Bus
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&bus)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, buseserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find bus: %w", err)
	}

	return &bus, nil
}

func (r *mongoBusRepository) Search(ctx context.Context, filter model.BusFilter) ([]*model.Bus, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{
		{Key: "date", Value: 1},
		{Key: "time", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, buildSearchFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search buses: %w", err)
	}
	defer cursor.Close(ctx)

	buses := []*model.Bus{}
	if err = cursor.All(ctx, &buses); err != nil {
		return nil, fmt.Errorf("failed to decode buses: %w", err)
	}

	return buses, nil
}

// buildSearchFilter matches source/destination as case-insensitive
// substrings and date/time exactly. User input is quoted so regex
// metacharacters cannot widen the match.
func buildSearchFilter(filter model.BusFilter) bson.M {
	query := bson.M{}

	if filter.Source != "" {
		query["source"] = primitive.Regex{Pattern: regexp.QuoteMeta(filter.Source), Options: "i"}
	}
	if filter.Destination != "" {
		query["destination"] = primitive.Regex{Pattern: regexp.QuoteMeta(filter.Destination), Options: "i"}
	}
	if filter.Date != "" {
		query["date"] = filter.Date
	}
	if filter.Time != "" {
		query["time"] = filter.Time
	}

	return query
}
