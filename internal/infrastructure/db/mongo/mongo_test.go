package mongo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/eventboard/eventboard/internal/core/domain"
)

func duplicateKey() error {
	return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}}}
}

func TestTranslate(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind domain.Kind
	}{
		{"no documents", mongo.ErrNoDocuments, domain.KindNotFound},
		{"deadline", context.DeadlineExceeded, domain.KindUpstreamUnavailable},
		{"wrapped deadline", fmt.Errorf("find: %w", context.DeadlineExceeded), domain.KindUpstreamUnavailable},
		{"anything else", errors.New("bad bson"), domain.KindServer},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := translate("find event", "event", tc.err)
			assert.Equal(t, tc.kind, domain.KindOf(got))
		})
	}

	assert.NoError(t, translate("find event", "event", nil))
}

func TestTranslate_CancelledStaysOutsideTaxonomy(t *testing.T) {
	got := translate("find event", "event", context.Canceled)

	assert.ErrorIs(t, got, context.Canceled)
	var de *domain.Error
	assert.False(t, errors.As(got, &de))
}

func TestTranslateInsert(t *testing.T) {
	cases := []struct {
		name string
		dup  error
		err  error
		want error
	}{
		{"duplicate registration", domain.ErrAlreadyRegistered, duplicateKey(), domain.ErrAlreadyRegistered},
		{"duplicate email", domain.ErrEmailTaken, duplicateKey(), domain.ErrEmailTaken},
		{"timeout", domain.ErrEmailTaken, context.DeadlineExceeded, domain.ErrUpstreamUnavailable},
		{"other write error", domain.ErrEmailTaken, mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 121}}}, domain.ErrServer},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, translateInsert("insert", "entity", tc.dup, tc.err), tc.want)
		})
	}

	assert.NoError(t, translateInsert("insert", "entity", domain.ErrEmailTaken, nil))
}

func TestRepositories_AgainstMockDeployment(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate email on insert", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}))

		repo := NewUserRepository(mt.DB, time.Second)
		_, err := repo.Create(context.Background(), &domain.User{Name: "Ann", Email: "ann@example.com", Role: domain.RoleUser})

		require.ErrorIs(mt, err, domain.ErrEmailTaken)
	})

	mt.Run("duplicate registration on insert", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}))

		repo := NewRegistrationRepository(mt.DB, time.Second)
		_, err := repo.Create(context.Background(), primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex())

		require.ErrorIs(mt, err, domain.ErrAlreadyRegistered)
	})

	mt.Run("update reads back the creator name", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		creator := primitive.NewObjectID()
		stored := bson.D{
			{Key: "_id", Value: id},
			{Key: "title", Value: "Meetup"},
			{Key: "creator_id", Value: creator},
		}
		joined := append(bson.D{}, stored...)
		joined = append(joined, bson.E{Key: "creator", Value: bson.A{bson.D{{Key: "name", Value: "Ada"}}}})

		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: stored}),
			mtest.CreateCursorResponse(0, "db.events", mtest.FirstBatch, joined),
		)

		repo := NewEventRepository(mt.DB, time.Second)
		event, err := repo.Update(context.Background(), id.Hex(), domain.EventFields{Title: "Meetup"})

		require.NoError(mt, err)
		assert.Equal(mt, "Meetup", event.Title)
		assert.Equal(mt, "Ada", event.CreatorName)
	})

	mt.Run("update of a missing event", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		repo := NewEventRepository(mt.DB, time.Second)
		_, err := repo.Update(context.Background(), primitive.NewObjectID().Hex(), domain.EventFields{Title: "x"})

		require.ErrorIs(mt, err, domain.ErrNotFound)
	})
}
