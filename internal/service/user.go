package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"stayhub/internal/auth"
	"stayhub/internal/database"
	"stayhub/internal/domain"
	"stayhub/internal/models"

	"github.com/rs/zerolog"
)

const minPasswordLength = 8

// TokenIssuer signs a bearer token for a user.
type TokenIssuer interface {
	Issue(user *models.User) (string, error)
}

// ProfileInput is the editable part of a user.
type ProfileInput struct {
	Name        string `json:"name"`
	Furigana    string `json:"furigana"`
	PostalCode  string `json:"postal_code"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
}

type SignupInput struct {
	ProfileInput
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

func (in ProfileInput) validate(fields FieldErrors) {
	required := []struct{ field, value, msg string }{
		{"name", in.Name, "Please enter your name."},
		{"furigana", in.Furigana, "Please enter the reading of your name."},
		{"postal_code", in.PostalCode, "Please enter your postal code."},
		{"address", in.Address, "Please enter your address."},
		{"phone_number", in.PhoneNumber, "Please enter your phone number."},
		{"email", in.Email, "Please enter your email address."},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			fields.add(r.field, r.msg)
		}
	}
	if email := strings.TrimSpace(in.Email); email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			fields.add("email", "Please enter a valid email address.")
		}
	}
}

func (in ProfileInput) apply(u *models.User) {
	u.Name = strings.TrimSpace(in.Name)
	u.Furigana = strings.TrimSpace(in.Furigana)
	u.PostalCode = strings.TrimSpace(in.PostalCode)
	u.Address = strings.TrimSpace(in.Address)
	u.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	u.Email = strings.ToLower(strings.TrimSpace(in.Email))
}

type UserService struct {
	repo   domain.Repository
	tokens TokenIssuer
	logger *zerolog.Logger
}

func NewUserService(repo domain.Repository, tokens TokenIssuer, logger *zerolog.Logger) *UserService {
	return &UserService{repo: repo, tokens: tokens, logger: logger}
}

// Signup registers an enabled general user.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	fields := FieldErrors{}
	in.ProfileInput.validate(fields)
	if utf8.RuneCountInString(in.Password) < minPasswordLength {
		fields.add("password", "Passwords must be at least 8 characters.")
	}
	if in.Password != in.PasswordConfirmation {
		fields.add("password_confirmation", "Passwords do not match.")
	}
	if err := fields.err(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		PasswordHash: hash,
		Role:         models.RoleGeneral,
		Enabled:      true,
	}
	in.ProfileInput.apply(user)

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrEmailTaken) {
			return nil, FieldErrors{"email": "This email address is already registered."}
		}
		return nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("user signed up")
	return user, nil
}

// Login checks credentials and returns a signed token.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !user.Enabled || !auth.CheckPassword(user.PasswordHash, password) {
		s.logger.Warn().Int64("user_id", user.ID).Msg("login rejected")
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *UserService) Profile(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile saves in over the user's profile. The email must not belong
// to anybody else.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, in ProfileInput) (*models.User, error) {
	fields := FieldErrors{}
	in.validate(fields)
	if err := fields.err(); err != nil {
		return nil, err
	}

	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email != user.Email {
		other, err := s.repo.GetUserByEmail(ctx, email)
		switch {
		case err == nil && other.ID != user.ID:
			return nil, FieldErrors{"email": "This email address is already registered."}
		case err != nil && !errors.Is(err, database.ErrNotFound):
			return nil, fmt.Errorf("email lookup: %w", err)
		}
	}

	in.apply(user)
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrEmailTaken) {
			return nil, FieldErrors{"email": "This email address is already registered."}
		}
		return nil, err
	}
	return user, nil
}
