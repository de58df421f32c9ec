package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/eventboard/eventboard/internal/core/domain"
)

// EventRepository implements ports.EventRepository using MongoDB.
type EventRepository struct {
	col     *mongo.Collection
	timeout time.Duration
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *mongo.Database, timeout time.Duration) *EventRepository {
	return &EventRepository{col: db.Collection(collectionEvents), timeout: timeout}
}

type creatorRef struct {
	Name string `bson:"name"`
}

type eventDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Date        time.Time          `bson:"date"`
	Time        string             `bson:"time,omitempty"`
	Location    string             `bson:"location"`
	Images      []string           `bson:"images"`
	SheetLink   string             `bson:"sheet_link,omitempty"`
	CreatorID   primitive.ObjectID `bson:"creator_id"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`

	// populated by lookupCreator, never written
	Creator []creatorRef `bson:"creator,omitempty"`
}

func (d eventDoc) toDomain() *domain.Event {
	e := &domain.Event{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Date:        d.Date.UTC(),
		Time:        d.Time,
		Location:    d.Location,
		Images:      d.Images,
		SheetLink:   d.SheetLink,
		CreatorID:   d.CreatorID.Hex(),
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
	if len(d.Creator) > 0 {
		e.CreatorName = d.Creator[0].Name
	}
	return e
}

func fieldsSet(f domain.EventFields, now time.Time) bson.M {
	return bson.M{
		"title":       f.Title,
		"description": f.Description,
		"date":        f.Date.UTC(),
		"time":        f.Time,
		"location":    f.Location,
		"images":      f.Images,
		"sheet_link":  f.SheetLink,
		"updated_at":  now,
	}
}

// lookupCreator joins the creator's name without exposing any other user field.
func lookupCreator() bson.D {
	return bson.D{{Key: "$lookup", Value: bson.M{
		"from":         collectionUsers,
		"localField":   "creator_id",
		"foreignField": "_id",
		"pipeline":     bson.A{bson.M{"$project": bson.M{"name": 1}}},
		"as":           "creator",
	}}}
}

func (r *EventRepository) Create(ctx context.Context, creatorID string, f domain.EventFields) (*domain.Event, error) {
	creator, ok := objectID(creatorID)
	if !ok {
		return nil, domain.NotFound("user")
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	now := time.Now().UTC()
	doc := eventDoc{
		ID:          primitive.NewObjectID(),
		Title:       f.Title,
		Description: f.Description,
		Date:        f.Date.UTC(),
		Time:        f.Time,
		Location:    f.Location,
		Images:      f.Images,
		SheetLink:   f.SheetLink,
		CreatorID:   creator,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, translate("insert event", "event", err)
	}
	return doc.toDomain(), nil
}

func (r *EventRepository) FindByID(ctx context.Context, id string) (*domain.Event, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.NotFound("event")
	}

	events, err := r.aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": oid}}},
		lookupCreator(),
	})
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, domain.NotFound("event")
	}
	return events[0], nil
}

// FindAll returns all events, latest date first.
func (r *EventRepository) FindAll(ctx context.Context) ([]*domain.Event, error) {
	return r.aggregate(ctx, mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}}}},
		lookupCreator(),
	})
}

// Update replaces the mutable fields in one conditional write, then reads
// the event back through the same creator join as FindByID.
func (r *EventRepository) Update(ctx context.Context, id string, f domain.EventFields) (*domain.Event, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.NotFound("event")
	}

	writeCtx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var doc eventDoc
	err := r.col.FindOneAndUpdate(writeCtx,
		bson.M{"_id": oid},
		bson.M{"$set": fieldsSet(f, time.Now().UTC())},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, translate("update event", "event", err)
	}

	events, err := r.aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": oid}}},
		lookupCreator(),
	})
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		// deleted between the write and the read
		return doc.toDomain(), nil
	}
	return events[0], nil
}

// Delete removes one event; domain.ErrNotFound when nothing matched.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.NotFound("event")
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return translate("delete event", "event", err)
	}
	if res.DeletedCount == 0 {
		return domain.NotFound("event")
	}
	return nil
}

func (r *EventRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]*domain.Event, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, translate("aggregate events", "event", err)
	}
	return decodeEvents(ctx, cur)
}

func decodeEvents(ctx context.Context, cur *mongo.Cursor) ([]*domain.Event, error) {
	var docs []eventDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, translate("decode events", "event", err)
	}
	out := make([]*domain.Event, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}
