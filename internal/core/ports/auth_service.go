package ports

import (
	"context"

	"github.com/eventboard/eventboard/internal/core/domain"
)

// RegisterInput carries a sign-up request. AdminCode elevates the new
// account to admin only when it matches the server-held key.
type RegisterInput struct {
	Name      string
	Email     string
	Password  string
	AdminCode string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.Principal, error)
	Authenticate(ctx context.Context, email, password string) (*domain.Principal, error)
	IssueSession(p *domain.Principal) (string, error)
	// VerifySession returns nil for any token that is missing, malformed,
	// expired or badly signed. It never reaches the store.
	VerifySession(token string) *domain.Principal
}
