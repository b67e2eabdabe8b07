package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"inkwell/internal/models"
	"inkwell/internal/repository"
)

// demoNamespace scopes the ids derived for demo logins.
var demoNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://inkwell.dev/users"))

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type signupInput struct {
	DisplayName string `json:"displayName" validate:"notblank,max=64"`
	Username    string `json:"username" validate:"required,min=2,max=32,alphanum"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6,max=72"`
}

// AuthService resolves credentials against the user store.
type AuthService struct {
	users repository.UserRepository
	log   zerolog.Logger
	cost  int
	now   func() time.Time
}

func NewAuthService(users repository.UserRepository, log zerolog.Logger) *AuthService {
	return &AuthService{
		users: users,
		log:   log.With().Str("component", "auth").Logger(),
		cost:  bcrypt.DefaultCost,
		now:   time.Now,
	}
}

// Login checks the password of a registered email. An email nobody signed
// up with gets a demo account derived from the address, so the same email
// always maps to the same user. Accounts without a password hash (demo and
// catalogue users) accept any password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	in := loginInput{Email: strings.TrimSpace(email), Password: password}
	if err := validateInput("email and password are required", in); err != nil {
		return nil, err
	}

	u, err := s.users.GetByEmail(ctx, in.Email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return s.provisionDemoUser(ctx, in.Email)
	case err != nil:
		return nil, NewInternalError("failed to look up user", err)
	}

	if u.PasswordHash != "" {
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
			s.log.Info().Str("user_id", u.ID).Msg("Login rejected: wrong password")
			return nil, NewUnauthorizedError("invalid email or password")
		}
	}
	return u, nil
}

// DemoUser is the account a first login with email produces.
func DemoUser(email string, joined time.Time) *models.User {
	email = strings.TrimSpace(email)
	local := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		local = email[:at]
	}
	normalized := strings.ToLower(email)
	return &models.User{
		ID:          uuid.NewSHA1(demoNamespace, []byte(normalized)).String(),
		Username:    strings.ToLower(local),
		Email:       normalized,
		DisplayName: local,
		JoinedAt:    joined,
	}
}

func (s *AuthService) provisionDemoUser(ctx context.Context, email string) (*models.User, error) {
	u := DemoUser(email, s.now())
	err := s.users.Create(ctx, u)
	if errors.Is(err, repository.ErrDuplicate) {
		// 并发登录同一邮箱
		existing, gerr := s.users.GetByID(ctx, u.ID)
		if gerr != nil {
			return nil, NewInternalError("failed to load user", gerr)
		}
		return existing, nil
	}
	if err != nil {
		return nil, NewInternalError("failed to create user", err)
	}
	s.log.Info().Str("user_id", u.ID).Msg("Demo user provisioned")
	return u, nil
}

// Signup registers a new account with zeroed counters.
func (s *AuthService) Signup(ctx context.Context, displayName, username, email, password string) (*models.User, error) {
	in := signupInput{
		DisplayName: strings.TrimSpace(displayName),
		Username:    strings.ToLower(strings.TrimSpace(username)),
		Email:       strings.ToLower(strings.TrimSpace(email)),
		Password:    password,
	}
	if err := validateInput("invalid signup details", in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, NewInternalError("failed to hash password", err)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, NewInternalError("failed to generate id", err)
	}

	u := &models.User{
		ID:           id.String(),
		Username:     in.Username,
		Email:        in.Email,
		DisplayName:  in.DisplayName,
		PasswordHash: string(hash),
		JoinedAt:     s.now(),
	}
	err = s.users.Create(ctx, u)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, NewConflictError("an account with this email already exists")
	}
	if err != nil {
		return nil, NewInternalError("failed to create user", err)
	}
	s.log.Info().Str("user_id", u.ID).Msg("User signed up")
	return u, nil
}
