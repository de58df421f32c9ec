package ports

import (
	"context"

	"github.com/eventboard/eventboard/internal/core/domain"
)

// UserRepository is the identity store. Emails are stored normalized and
// are unique; Create fails with domain.ErrEmailTaken on a duplicate.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
