package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"pathwise-backend/internal/middleware"
	"pathwise-backend/internal/models"
	"pathwise-backend/internal/repository"
)

// SessionProvider is the minimal surface the rest of the application needs
// from the identity integration, so the concrete JWT+Redis adapter below
// stays swappable.
type SessionProvider interface {
	GetCurrentUser(ctx context.Context, accessToken string) (*models.User, error)
	ExchangeAuthCode(ctx context.Context, code string) (*models.AuthTokens, error)
	SignOut(ctx context.Context, refreshToken string) error
}

// tokenStore is the slice of the Redis API the session layer needs, so tests
// can substitute an in-memory implementation. *redis.Client satisfies it.
type tokenStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	GetDel(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type userAccountStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateLastLogin(ctx context.Context, userID uuid.UUID) error
}

type preferenceDefaults interface {
	CreateDefaults(ctx context.Context, userID uuid.UUID) error
}

type AuthService struct {
	userRepo userAccountStore
	prefRepo preferenceDefaults
	redis    tokenStore
	jwt      *middleware.JWTAuth
}

var _ SessionProvider = (*AuthService)(nil)
var _ userAccountStore = (*repository.UserRepo)(nil)
var _ preferenceDefaults = (*repository.PreferenceRepo)(nil)

func NewAuthService(userRepo userAccountStore, prefRepo preferenceDefaults, redisClient tokenStore, jwt *middleware.JWTAuth) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		prefRepo: prefRepo,
		redis:    redisClient,
		jwt:      jwt,
	}
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Signup creates the account plus its default preference row and starts a
// session. The returned auth code backs the redirect flow of the callback
// view.
func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (*models.User, *models.AuthTokens, string, error) {
	fieldErrors := make(map[string]string)

	if req.FullName == "" {
		fieldErrors["fullName"] = "Full name is required"
	}
	if !emailRegex.MatchString(req.Email) {
		fieldErrors["email"] = "Invalid email format"
	}
	if len(req.Password) < 8 {
		fieldErrors["password"] = "Password must be at least 8 characters"
	}

	if len(fieldErrors) > 0 {
		return nil, nil, "", &ValidationError{Fields: fieldErrors}
	}

	_, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err == nil {
		return nil, nil, "", &ConflictError{Message: "Email already in use"}
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, "", err
	}

	// Default preferences, one row per user
	s.prefRepo.CreateDefaults(ctx, user.ID)

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, "", err
	}

	code, err := s.issueAuthCode(ctx, user.ID)
	if err != nil {
		return nil, nil, "", err
	}

	return user, tokens, code, nil
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthTokens, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", &UnauthorizedError{Message: "Invalid email or password"}
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", &UnauthorizedError{Message: "Invalid email or password"}
	}

	s.userRepo.UpdateLastLogin(ctx, user.ID)

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, "", err
	}

	code, err := s.issueAuthCode(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	return tokens, code, nil
}

func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*models.AuthTokens, error) {
	userIDStr, err := s.redis.Get(ctx, "refresh:"+refreshToken).Result()
	if err != nil {
		return nil, &UnauthorizedError{Message: "Invalid or expired refresh token. Please log in again."}
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %w", err)
	}

	// Rotation: the old token is dead either way
	s.redis.Del(ctx, "refresh:"+refreshToken)

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

// SignOut invalidates the refresh token. The short-lived access token is
// left to expire.
func (s *AuthService) SignOut(ctx context.Context, refreshToken string) error {
	return s.redis.Del(ctx, "refresh:"+refreshToken).Err()
}

// GetCurrentUser validates a signed access token and loads the user behind
// it.
func (s *AuthService) GetCurrentUser(ctx context.Context, accessToken string) (*models.User, error) {
	userID, err := s.jwt.ParseUserID(accessToken)
	if err != nil {
		return nil, &UnauthorizedError{Message: "Invalid session"}
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &UnauthorizedError{Message: "Invalid session"}
		}
		return nil, err
	}
	return user, nil
}

// ExchangeAuthCode redeems a single-use code issued at login/signup for a
// fresh session. A second exchange of the same code fails.
func (s *AuthService) ExchangeAuthCode(ctx context.Context, code string) (*models.AuthTokens, error) {
	key := "auth_code:" + code
	userIDStr, err := s.redis.GetDel(ctx, key).Result()
	if err != nil {
		return nil, &UnauthorizedError{Message: "Invalid or expired authorization code"}
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID in auth code: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*models.AuthTokens, error) {
	accessToken, err := s.jwt.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := generateToken(64)
	if err != nil {
		return nil, err
	}

	// Refresh tokens live in Redis for 7 days
	err = s.redis.Set(ctx, "refresh:"+refreshToken, user.ID.String(), 7*24*time.Hour).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &models.AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    900,
	}, nil
}

func (s *AuthService) issueAuthCode(ctx context.Context, userID uuid.UUID) (string, error) {
	code, err := generateToken(32)
	if err != nil {
		return "", err
	}
	if err := s.redis.Set(ctx, "auth_code:"+code, userID.String(), 5*time.Minute).Err(); err != nil {
		return "", fmt.Errorf("failed to store auth code: %w", err)
	}
	return code, nil
}

func generateToken(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Custom errors
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

type ConflictError struct{ Message string }

func (e *ConflictError) Error() string { return e.Message }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

type UnauthorizedError struct{ Message string }

func (e *UnauthorizedError) Error() string { return e.Message }
