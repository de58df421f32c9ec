package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/eventboard/eventboard/internal/core/domain"
)

// RegistrationRepository implements ports.RegistrationRepository using MongoDB.
type RegistrationRepository struct {
	col     *mongo.Collection
	timeout time.Duration
}

func NewRegistrationRepository(db *mongo.Database, timeout time.Duration) *RegistrationRepository {
	return &RegistrationRepository{col: db.Collection(collectionRegistrations), timeout: timeout}
}

type registrationDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"user_id"`
	EventID   primitive.ObjectID `bson:"event_id"`
	CreatedAt time.Time          `bson:"created_at"`
}

type registrantDoc struct {
	UserID       primitive.ObjectID `bson:"user_id"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	RegisteredAt time.Time          `bson:"registered_at"`
}

func pairFilter(userID, eventID string) (bson.M, bool) {
	uid, ok := objectID(userID)
	if !ok {
		return nil, false
	}
	eid, ok := objectID(eventID)
	if !ok {
		return nil, false
	}
	return bson.M{"user_id": uid, "event_id": eid}, true
}

func (r *RegistrationRepository) Exists(ctx context.Context, userID, eventID string) (bool, error) {
	filter, ok := pairFilter(userID, eventID)
	if !ok {
		return false, nil
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return false, translate("probe registration", "registration", err)
	}
	return n > 0, nil
}

// Create inserts a registration. The unique (user_id, event_id) index is
// the authoritative duplicate guard.
func (r *RegistrationRepository) Create(ctx context.Context, userID, eventID string) (*domain.Registration, error) {
	uid, ok := objectID(userID)
	if !ok {
		return nil, domain.NotFound("user")
	}
	eid, ok := objectID(eventID)
	if !ok {
		return nil, domain.NotFound("event")
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	doc := registrationDoc{
		ID:        primitive.NewObjectID(),
		UserID:    uid,
		EventID:   eid,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, translateInsert("insert registration", "registration", domain.ErrAlreadyRegistered, err)
	}

	return &domain.Registration{
		ID:        doc.ID.Hex(),
		UserID:    userID,
		EventID:   eventID,
		CreatedAt: doc.CreatedAt,
	}, nil
}

func (r *RegistrationRepository) Delete(ctx context.Context, userID, eventID string) error {
	filter, ok := pairFilter(userID, eventID)
	if !ok {
		return domain.NotFound("registration")
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, filter)
	if err != nil {
		return translate("delete registration", "registration", err)
	}
	if res.DeletedCount == 0 {
		return domain.NotFound("registration")
	}
	return nil
}

// DeleteByEvent is idempotent: running it again after success removes nothing.
func (r *RegistrationRepository) DeleteByEvent(ctx context.Context, eventID string) (int64, error) {
	eid, ok := objectID(eventID)
	if !ok {
		return 0, nil
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.col.DeleteMany(ctx, bson.M{"event_id": eid})
	if err != nil {
		return 0, translate("cascade registrations", "registration", err)
	}
	return res.DeletedCount, nil
}

func (r *RegistrationRepository) CountByEvent(ctx context.Context, eventID string) (int64, error) {
	eid, ok := objectID(eventID)
	if !ok {
		return 0, nil
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"event_id": eid})
	if err != nil {
		return 0, translate("count registrations", "registration", err)
	}
	return n, nil
}

// CountByEvents groups registrations by event in a single aggregation.
func (r *RegistrationRepository) CountByEvents(ctx context.Context, eventIDs []string) (map[string]int64, error) {
	ids := make([]primitive.ObjectID, 0, len(eventIDs))
	for _, id := range eventIDs {
		if oid, ok := objectID(id); ok {
			ids = append(ids, oid)
		}
	}
	out := make(map[string]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	cur, err := r.col.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"event_id": bson.M{"$in": ids}}}},
		{{Key: "$group", Value: bson.M{"_id": "$event_id", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, translate("count registrations", "registration", err)
	}

	var rows []struct {
		EventID primitive.ObjectID `bson:"_id"`
		Count   int64              `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, translate("count registrations", "registration", err)
	}
	for _, row := range rows {
		out[row.EventID.Hex()] = row.Count
	}
	return out, nil
}

// FindEventsByUser joins registrations to events. Registrations whose
// event no longer exists are dropped by the unwind.
func (r *RegistrationRepository) FindEventsByUser(ctx context.Context, userID string) ([]*domain.Event, error) {
	uid, ok := objectID(userID)
	if !ok {
		return []*domain.Event{}, nil
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	cur, err := r.col.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": uid}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionEvents,
			"localField":   "event_id",
			"foreignField": "_id",
			"as":           "event",
		}}},
		{{Key: "$unwind", Value: "$event"}},
		{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$event"}}},
		{{Key: "$sort", Value: bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}}}},
		lookupCreator(),
	})
	if err != nil {
		return nil, translate("find events by user", "event", err)
	}
	return decodeEvents(ctx, cur)
}

// FindRegistrantsByEvent joins registrations to users, oldest first.
func (r *RegistrationRepository) FindRegistrantsByEvent(ctx context.Context, eventID string) ([]domain.Registrant, error) {
	eid, ok := objectID(eventID)
	if !ok {
		return []domain.Registrant{}, nil
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	cur, err := r.col.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"event_id": eid}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: 1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionUsers,
			"localField":   "user_id",
			"foreignField": "_id",
			"pipeline":     bson.A{bson.M{"$project": bson.M{"name": 1, "email": 1}}},
			"as":           "user",
		}}},
		{{Key: "$unwind", Value: "$user"}},
		{{Key: "$project", Value: bson.M{
			"_id":           0,
			"user_id":       "$user._id",
			"name":          "$user.name",
			"email":         "$user.email",
			"registered_at": "$created_at",
		}}},
	})
	if err != nil {
		return nil, translate("find registrants", "registration", err)
	}

	var docs []registrantDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, translate("find registrants", "registration", err)
	}
	out := make([]domain.Registrant, len(docs))
	for i, d := range docs {
		out[i] = domain.Registrant{
			UserID:       d.UserID.Hex(),
			Name:         d.Name,
			Email:        d.Email,
			RegisteredAt: d.RegisteredAt.UTC(),
		}
	}
	return out, nil
}
