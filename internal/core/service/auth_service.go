package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/eventboard/eventboard/internal/core/domain"
	"github.com/eventboard/eventboard/internal/core/ports"
)

// bcrypt rejects longer inputs.
const maxPasswordBytes = 72

// sessionClaims is the payload of a session token.
type sessionClaims struct {
	Role  string `json:"role"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// AuthOptions configures AuthService.
type AuthOptions struct {
	JWTSecret string
	TokenTTL  time.Duration
	// AdminRegistrationKey elevates new accounts that present it. Empty
	// disables elevation.
	AdminRegistrationKey string
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

// AuthService implements registration, login and session handling.
type AuthService struct {
	repo     ports.UserRepository
	secret   []byte
	tokenTTL time.Duration
	adminKey string
	cost     int
	log      zerolog.Logger
	now      func() time.Time
}

func NewAuthService(repo ports.UserRepository, opts AuthOptions, log zerolog.Logger) *AuthService {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		repo:     repo,
		secret:   []byte(opts.JWTSecret),
		tokenTTL: opts.TokenTTL,
		adminKey: opts.AdminRegistrationKey,
		cost:     opts.BcryptCost,
		log:      log,
		now:      time.Now,
	}
}

// Register creates a user account. The role is decided here, never by the
// caller: admin only when the admin code matches the configured key.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := domain.NormalizeEmail(in.Email)

	var fields []domain.FieldError
	if name == "" {
		fields = append(fields, domain.FieldError{Field: "name", Message: "is required"})
	}
	if email == "" {
		fields = append(fields, domain.FieldError{Field: "email", Message: "is required"})
	}
	switch {
	case in.Password == "":
		fields = append(fields, domain.FieldError{Field: "password", Message: "is required"})
	case len(in.Password) > maxPasswordBytes:
		fields = append(fields, domain.FieldError{Field: "password", Message: "must be at most 72 bytes"})
	}
	if len(fields) > 0 {
		return nil, domain.Validation(fields...)
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, domain.Wrap("register", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, domain.Internal("hash password", err)
	}

	now := s.now().UTC()
	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         s.roleFor(in.AdminCode),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// the unique index still reports a duplicate that slipped past the pre-check
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, domain.Wrap("register", err)
	}

	s.log.Info().Str("user_id", created.ID).Str("role", created.Role).Msg("user registered")
	return created, nil
}

func (s *AuthService) roleFor(adminCode string) string {
	if s.adminKey == "" || adminCode == "" {
		return domain.RoleUser
	}
	if subtle.ConstantTimeCompare([]byte(adminCode), []byte(s.adminKey)) == 1 {
		return domain.RoleAdmin
	}
	return domain.RoleUser
}

// Authenticate checks credentials. An unknown email and a wrong password
// are indistinguishable to the caller.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*domain.Principal, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, domain.Wrap("authenticate", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user.Principal(), nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.Principal, error) {
	p, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return "", nil, err
	}

	token, err := s.IssueSession(p)
	if err != nil {
		return "", nil, err
	}

	s.log.Info().Str("user_id", p.ID).Msg("login succeeded")
	return token, p, nil
}

// IssueSession signs a token embedding the principal's id and role.
func (s *AuthService) IssueSession(p *domain.Principal) (string, error) {
	if p == nil || p.ID == "" {
		return "", domain.Internal("issue session", errors.New("empty principal"))
	}

	now := s.now()
	claims := sessionClaims{
		Role:  p.Role,
		Name:  p.Name,
		Email: p.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", domain.Internal("sign session", err)
	}
	return signed, nil
}

// VerifySession validates signature and expiry locally.
func (s *AuthService) VerifySession(token string) *domain.Principal {
	if token == "" {
		return nil
	}

	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil
	}
	if claims.Subject == "" || !domain.ValidRole(claims.Role) {
		return nil
	}

	return &domain.Principal{
		ID:    claims.Subject,
		Name:  claims.Name,
		Email: claims.Email,
		Role:  claims.Role,
	}
}
