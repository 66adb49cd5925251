package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/dukerupert/inkwell/internal/apperr"
	"github.com/dukerupert/inkwell/internal/model"
	"github.com/dukerupert/inkwell/internal/password"
	"github.com/dukerupert/inkwell/internal/store"
	"github.com/dukerupert/inkwell/internal/token"
)

const (
	msgUserNotFound       = "User not found"
	msgInvalidCredentials = "Invalid credentials"
	msgMissingBearer      = "missing bearer token"
	msgMalformedHeader    = "malformed authorization header"
	msgInvalidToken       = "invalid or expired token"
)

// Users is the part of the user store the auth service needs.
type Users interface {
	GetByID(id int64) (*model.User, error)
	GetByEmail(email string) (*model.User, error)
	Create(email, name, passwordHash, bio, avatar string) (*model.User, error)
}

// Service issues access tokens for credentials and resolves bearer tokens
// back to identities.
type Service struct {
	users  Users
	issuer *token.Issuer
	logger *slog.Logger
}

func NewService(users Users, issuer *token.Issuer, logger *slog.Logger) *Service {
	return &Service{users: users, issuer: issuer, logger: logger}
}

// Authenticate checks email and password and issues a token for the user.
func (s *Service) Authenticate(email, plain string) (*model.AuthPayload, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperr.New(apperr.Invalid, "email is required")
	}
	if len(plain) < 8 {
		return nil, apperr.New(apperr.Invalid, "password must be at least 8 characters")
	}

	u, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "look up user", err)
	}
	if u == nil {
		return nil, apperr.New(apperr.NotFound, msgUserNotFound)
	}

	ok, err := password.Verify(plain, u.PasswordHash)
	if err != nil {
		if !errors.Is(err, password.ErrMalformedHash) {
			return nil, apperr.Wrap(apperr.Internal, "verify password", err)
		}
		s.logger.Warn("stored password hash unusable", "user_id", u.ID)
	}
	if !ok {
		return nil, apperr.New(apperr.InvalidCredential, msgInvalidCredentials)
	}

	return s.payload(u)
}

// AuthenticateGoogle signs in the owner of a provider-verified email,
// creating the account on first sign-in.
func (s *Service) AuthenticateGoogle(p model.GoogleProfile) (*model.AuthPayload, error) {
	if !p.EmailVerified || p.Email == "" {
		return nil, apperr.New(apperr.Unauthenticated, "Google account email is not verified")
	}

	u, err := s.users.GetByEmail(p.Email)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "look up user", err)
	}
	if u == nil {
		// the placeholder is never revealed, so the account has no usable password
		hash, err := password.Hash(uuid.NewString())
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "hash placeholder password", err)
		}
		name := p.Name
		if name == "" {
			name = p.Email
		}
		u, err = s.users.Create(p.Email, name, hash, "", p.Picture)
		if errors.Is(err, store.ErrDuplicate) {
			u, err = s.users.GetByEmail(p.Email)
		}
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "create google user", err)
		}
		s.logger.Info("created user from google sign-in", "user_id", u.ID)
	}

	return s.payload(u)
}

func (s *Service) payload(u *model.User) (*model.AuthPayload, error) {
	tok, _, err := s.issuer.Issue(u.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "issue token", err)
	}
	return &model.AuthPayload{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Avatar:      u.Avatar,
		AccessToken: tok,
	}, nil
}

// ParseBearer extracts the token from an Authorization header value.
func ParseBearer(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", apperr.New(apperr.Unauthenticated, msgMissingBearer)
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", apperr.New(apperr.Unauthenticated, msgMalformedHeader)
	}
	return strings.TrimSpace(parts[1]), nil
}

// Identify runs the guard over an Authorization header: it verifies the
// token and re-resolves its subject to a live user.
func (s *Service) Identify(header string) (Identity, error) {
	raw, err := ParseBearer(header)
	if err != nil {
		return Identity{}, err
	}

	id, err := s.issuer.Verify(raw)
	if err != nil {
		return Identity{}, apperr.Wrap(apperr.Unauthenticated, msgInvalidToken, err)
	}

	u, err := s.users.GetByID(id)
	if err != nil {
		return Identity{}, apperr.Wrap(apperr.Internal, "resolve token subject", err)
	}
	if u == nil {
		return Identity{}, apperr.New(apperr.Unauthenticated, msgUserNotFound)
	}
	return Identity{UserID: u.ID}, nil
}

// Require resolves the identity for ctx, preferring one a middleware already
// attached and falling back to the Authorization header carried in ctx.
func (s *Service) Require(ctx context.Context) (context.Context, Identity, error) {
	if id, ok := FromContext(ctx); ok {
		return ctx, id, nil
	}
	id, err := s.Identify(Authorization(ctx))
	if err != nil {
		return ctx, Identity{}, err
	}
	return WithIdentity(ctx, id), id, nil
}
