package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/lumina-ai/studio/internal/core/domain"
	"github.com/lumina-ai/studio/internal/core/ports"
)

// AuthOptions configures an AuthService.
type AuthOptions struct {
	JWTSecret   string
	TokenTTL    time.Duration
	SignupBonus int64
	// HashCost is the bcrypt cost; zero means bcrypt.DefaultCost.
	HashCost int
	Clock    func() time.Time
	// LocalSession persists the signed-in user under the session key for the
	// operator CLI. Without it the service is token-only: Logout and
	// CurrentUser do nothing and signups or logins leave the key alone.
	LocalSession bool
}

// AuthService implements signup, login and the locally persisted session.
type AuthService struct {
	users    ports.UserDirectory
	sessions ports.KVStore
	opts     AuthOptions
	log      zerolog.Logger
}

var _ ports.AuthService = (*AuthService)(nil)

func NewAuthService(users ports.UserDirectory, sessions ports.KVStore, opts AuthOptions, log zerolog.Logger) *AuthService {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.HashCost == 0 {
		opts.HashCost = bcrypt.DefaultCost
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &AuthService{users: users, sessions: sessions, opts: opts, log: log}
}

// HashPassword returns the bcrypt hash stored for a credential.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Signup creates an account pre-credited with the signup bonus. The daily
// reward is stamped as already claimed so the bonus is not doubled on the
// same day.
func (s *AuthService) Signup(ctx context.Context, name, email, password string) (string, *domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" || email == "" || password == "" {
		return "", nil, domain.ErrInvalidInput
	}

	hash, err := HashPassword(password, s.opts.HashCost)
	if err != nil {
		return "", nil, err
	}

	now := s.opts.Clock()
	created, err := s.users.CreateUser(ctx, domain.User{
		ID:              uuid.NewString(),
		Email:           email,
		Name:            name,
		Avatar:          domain.AvatarURL(name),
		Role:            domain.RoleUser,
		Coins:           s.opts.SignupBonus,
		Plan:            domain.PlanFree,
		LastDailyReward: &now,
		PasswordHash:    hash,
	})
	if err != nil {
		return "", nil, err
	}

	pub := created.Public()
	s.storeSession(ctx, pub)

	token, err := s.generateToken(pub)
	if err != nil {
		return "", nil, err
	}
	s.log.Info().Str("user_id", pub.ID).Msg("account created")
	return token, &pub, nil
}

// Login checks the password against the stored hash. The admin account goes
// through the same check with its provisioned bootstrap credential.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindUserByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return "", nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if user.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	pub := user.Public()
	s.storeSession(ctx, pub)

	token, err := s.generateToken(pub)
	if err != nil {
		return "", nil, err
	}
	return token, &pub, nil
}

// Logout clears the local session record.
func (s *AuthService) Logout(ctx context.Context) {
	if !s.opts.LocalSession {
		return
	}
	s.sessions.Remove(ctx, keySession)
}

// CurrentUser resolves the session record to the latest persisted user, so
// balances reflect the ledger rather than the snapshot taken at login.
func (s *AuthService) CurrentUser(ctx context.Context) *domain.User {
	if !s.opts.LocalSession {
		return nil
	}
	session, err := loadCollection[*domain.User](ctx, s.sessions, keySession, nil, s.log)
	if err != nil || session == nil || session.ID == "" {
		return nil
	}
	user, err := s.users.GetUser(ctx, session.ID)
	if err != nil {
		return nil
	}
	pub := user.Public()
	return &pub
}

func (s *AuthService) storeSession(ctx context.Context, user domain.User) {
	if !s.opts.LocalSession {
		return
	}
	if err := saveCollection(ctx, s.sessions, keySession, user.Public()); err != nil {
		s.log.Warn().Err(err).Msg("failed to store session")
	}
}

func (s *AuthService) generateToken(user domain.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  string(user.Role),
		"exp":   s.opts.Clock().Add(s.opts.TokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.opts.JWTSecret))
}
