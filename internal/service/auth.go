package service

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/iliyamo/venue-booking/internal/model"
	"github.com/iliyamo/venue-booking/internal/repository"
	"github.com/iliyamo/venue-booking/internal/utils"
)

// MinPasswordLen applies to self registration.
const MinPasswordLen = 6

// ErrInvalidCredentials is returned for an unknown email, a wrong password
// or an unusable refresh token. Callers cannot tell which.
var ErrInvalidCredentials = errors.New("invalid credentials")

type userStore interface {
	GetByID(ctx context.Context, id int64) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	Create(ctx context.Context, u *model.User) error
}

type tokenStore interface {
	StoreRefresh(ctx context.Context, userID int64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string, now time.Time) (int64, error)
	RevokeByHash(ctx context.Context, tokenHash string, now time.Time) error
	RevokeAllForUser(ctx context.Context, userID int64, now time.Time) error
}

// AuthConfig carries the token and hashing settings.
type AuthConfig struct {
	Secret         string
	AccessTTLMin   int
	RefreshTTLDays int
	BcryptCost     int
}

// NewUser is the input for creating an account.
type NewUser struct {
	Name     string
	Email    string
	Phone    *string
	Role     string
	Password string
}

// Session is what a successful login or refresh hands to the client.
type Session struct {
	User    model.User
	Access  utils.AccessToken
	Refresh utils.RefreshToken
}

type AuthService struct {
	users  userStore
	tokens tokenStore
	cfg    AuthConfig
}

func NewAuthService(u userStore, t tokenStore, cfg AuthConfig) *AuthService {
	return &AuthService{users: u, tokens: t, cfg: cfg}
}

// Register creates an account from the public sign-up form. Required
// fields are checked first, then the role, then the password length.
func (s *AuthService) Register(ctx context.Context, in NewUser) (model.User, error) {
	return s.create(ctx, in, MinPasswordLen)
}

// CreateUser creates an account on behalf of another user. The password has
// no minimum length here.
func (s *AuthService) CreateUser(ctx context.Context, in NewUser) (model.User, error) {
	return s.create(ctx, in, 0)
}

func (s *AuthService) create(ctx context.Context, in NewUser, minLen int) (model.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" || in.Email == "" || in.Role == "" || in.Password == "" {
		return model.User{}, invalid("Missing required fields")
	}
	role := model.Role(in.Role)
	if !role.IsValid() {
		return model.User{}, invalid("Invalid role")
	}
	if len([]rune(in.Password)) < minLen {
		return model.User{}, invalid("Password must be at least 6 characters")
	}

	hash, err := utils.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return model.User{}, errors.Wrap(err, "hash password")
	}
	u := model.User{
		Role:         role,
		Name:         in.Name,
		Email:        in.Email,
		Phone:        emptyToNil(in.Phone),
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, &u); err != nil {
		return model.User{}, err
	}
	u.PasswordHash = ""
	return u, nil
}

// Authenticate checks an email and password. A lookup miss still pays for
// one bcrypt comparison.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		utils.BurnPasswordCheck(password)
		return model.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return model.User{}, ErrInvalidCredentials
	}
	u.PasswordHash = ""
	return u, nil
}

// Login authenticates and opens a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return Session{}, invalid("Email and password are required")
	}
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return Session{}, err
	}
	return s.issue(ctx, u)
}

// Access issues a new access token for a valid refresh token without
// rotating it.
func (s *AuthService) Access(ctx context.Context, raw string) (model.User, utils.AccessToken, error) {
	u, _, err := s.refreshOwner(ctx, raw)
	if err != nil {
		return model.User{}, utils.AccessToken{}, err
	}
	access, err := utils.NewAccessToken(s.cfg.Secret, u.ID, string(u.Role), s.cfg.AccessTTLMin)
	if err != nil {
		return model.User{}, utils.AccessToken{}, errors.Wrap(err, "issue access token")
	}
	return u, access, nil
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair is issued.
func (s *AuthService) Refresh(ctx context.Context, raw string) (Session, error) {
	u, hash, err := s.refreshOwner(ctx, raw)
	if err != nil {
		return Session{}, err
	}
	if err := s.tokens.RevokeByHash(ctx, hash, time.Now().UTC()); err != nil {
		return Session{}, err
	}
	return s.issue(ctx, u)
}

// refreshOwner resolves a raw refresh token to its user and stored hash.
func (s *AuthService) refreshOwner(ctx context.Context, raw string) (model.User, string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return model.User{}, "", invalid("refresh_token is required")
	}
	hash := utils.HashRefreshRaw(raw)
	uid, err := s.tokens.ValidateRefresh(ctx, hash, time.Now().UTC())
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, "", ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, "", err
	}
	u, err := s.users.GetByID(ctx, uid)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, "", ErrInvalidCredentials
	}
	return u, hash, err
}

// Logout revokes a refresh token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return invalid("refresh_token is required")
	}
	return s.tokens.RevokeByHash(ctx, utils.HashRefreshRaw(raw), time.Now().UTC())
}

// LogoutAll ends every session of the user.
func (s *AuthService) LogoutAll(ctx context.Context, userID int64) error {
	return s.tokens.RevokeAllForUser(ctx, userID, time.Now().UTC())
}

func (s *AuthService) issue(ctx context.Context, u model.User) (Session, error) {
	access, err := utils.NewAccessToken(s.cfg.Secret, u.ID, string(u.Role), s.cfg.AccessTTLMin)
	if err != nil {
		return Session{}, errors.Wrap(err, "issue access token")
	}
	refresh, err := utils.NewRefreshToken(s.cfg.RefreshTTLDays)
	if err != nil {
		return Session{}, errors.Wrap(err, "issue refresh token")
	}
	if err := s.tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return Session{}, err
	}
	return Session{User: u, Access: access, Refresh: refresh}, nil
}

func emptyToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
