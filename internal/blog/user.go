package blog

import (
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/dukerupert/inkwell/internal/apperr"
	"github.com/dukerupert/inkwell/internal/model"
	"github.com/dukerupert/inkwell/internal/password"
	"github.com/dukerupert/inkwell/internal/store"
)

const msgUserNotFound = "User not found"

func validateName(name string) error {
	if n := utf8.RuneCountInString(name); n < 2 || n > 100 {
		return apperr.New(apperr.Invalid, "name must be between 2 and 100 characters")
	}
	return nil
}

func (s *Service) CreateUser(in model.CreateUserInput) (*model.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)

	if err := validateName(name); err != nil {
		return nil, err
	}
	if _, err := mail.ParseAddress(email); err != nil || len(email) < 5 || len(email) > 255 {
		return nil, apperr.New(apperr.Invalid, "email must be a valid address")
	}
	if n := len(in.Password); n < 8 || n > 50 {
		return nil, apperr.New(apperr.Invalid, "password must be between 8 and 50 characters")
	}

	hash, err := password.Hash(in.Password)
	if err != nil {
		return nil, internal("hash password", err)
	}

	u, err := s.users.Create(email, name, hash, strings.TrimSpace(in.Bio), strings.TrimSpace(in.Avatar))
	if errors.Is(err, store.ErrDuplicate) {
		return nil, apperr.New(apperr.Conflict, "A user with this email already exists")
	}
	if err != nil {
		return nil, internal("create user", err)
	}
	s.logger.Info("user created", "user_id", u.ID)
	return u, nil
}

func (s *Service) User(id int64) (*model.User, error) {
	u, err := s.users.GetByID(id)
	if err != nil {
		return nil, internal("get user", err)
	}
	if u == nil {
		return nil, apperr.New(apperr.NotFound, msgUserNotFound)
	}
	return u, nil
}

func (s *Service) Users() ([]model.User, error) {
	users, err := s.users.List()
	if err != nil {
		return nil, internal("list users", err)
	}
	return users, nil
}

func (s *Service) UserByEmail(email string) (*model.User, error) {
	u, err := s.users.GetByEmail(strings.TrimSpace(email))
	if err != nil {
		return nil, internal("get user by email", err)
	}
	if u == nil {
		return nil, apperr.New(apperr.NotFound, msgUserNotFound)
	}
	return u, nil
}

// UpdateProfile changes the caller's name and/or bio. Nil fields are kept.
func (s *Service) UpdateProfile(callerID int64, in model.UpdateProfileInput) (*model.User, error) {
	u, err := s.User(callerID)
	if err != nil {
		return nil, err
	}

	name, bio := u.Name, u.Bio
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
		if err := validateName(name); err != nil {
			return nil, err
		}
	}
	if in.Bio != nil {
		bio = strings.TrimSpace(*in.Bio)
		if utf8.RuneCountInString(bio) > 500 {
			return nil, apperr.New(apperr.Invalid, "bio must not exceed 500 characters")
		}
	}

	updated, err := s.users.UpdateProfile(callerID, name, bio)
	if err != nil {
		return nil, internal("update profile", err)
	}
	return updated, nil
}
