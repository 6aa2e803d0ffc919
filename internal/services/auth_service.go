package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/wtfmahe/PeeP/internal/models"
	"github.com/wtfmahe/PeeP/internal/repositories"
	"github.com/wtfmahe/PeeP/internal/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidEmail       = errors.New("please enter a valid email")
	ErrInvalidUsername    = errors.New("please enter a username")
)

type AuthService struct {
	accounts   repositories.AccountRepository
	profiles   repositories.ProfileRepository
	sessions   repositories.SessionRepository
	pushTokens repositories.PushTokenRepository
	jwtSecret  string
	jwtExpiry  time.Duration
	now        func() time.Time
}

type SignUpRequest struct {
	Email    string
	Password string
	Username string
	Platform string
}

// AuthResult is what a client keeps after signing in.
type AuthResult struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	AccountID uuid.UUID       `json:"account_id"`
	Profile   *models.Profile `json:"profile"`
}

type TokenClaims struct {
	AccountID uuid.UUID
	SessionID string
}

func NewAuthService(
	accounts repositories.AccountRepository,
	profiles repositories.ProfileRepository,
	sessions repositories.SessionRepository,
	pushTokens repositories.PushTokenRepository,
	jwtSecret string,
	jwtExpiry time.Duration,
) *AuthService {
	return &AuthService{
		accounts:   accounts,
		profiles:   profiles,
		sessions:   sessions,
		pushTokens: pushTokens,
		jwtSecret:  jwtSecret,
		jwtExpiry:  jwtExpiry,
		now:        time.Now,
	}
}

// SignUp creates the account and profile and signs the new user in. A taken
// username or email surfaces as repositories.ErrUsernameTaken or
// repositories.ErrEmailTaken; the check is the insert itself.
func (s *AuthService) SignUp(ctx context.Context, req SignUpRequest) (*AuthResult, error) {
	username := utils.NormalizeUsername(req.Username)
	if username == "" {
		return nil, ErrInvalidUsername
	}
	email := utils.NormalizeEmail(req.Email)
	if !utils.ValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	account := &models.Account{Email: email, PasswordHash: hashed}
	profile := &models.Profile{Username: username}
	if err := s.accounts.Register(ctx, account, profile); err != nil {
		return nil, err
	}

	return s.startSession(ctx, account.ID, profile, req.Platform)
}

func (s *AuthService) SignIn(ctx context.Context, email, password, platform string) (*AuthResult, error) {
	account, err := s.accounts.GetByEmail(ctx, utils.NormalizeEmail(email))
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if !utils.CheckPassword(account.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	profile, err := s.profiles.GetByID(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return s.startSession(ctx, account.ID, profile, platform)
}

func (s *AuthService) startSession(ctx context.Context, accountID uuid.UUID, profile *models.Profile, platform string) (*AuthResult, error) {
	now := s.now()
	session := &models.Session{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Platform:  platform,
		ExpiresAt: now.Add(s.jwtExpiry),
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	token, err := s.generateToken(accountID, session.ID, now, session.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &AuthResult{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		AccountID: accountID,
		Profile:   profile,
	}, nil
}

func (s *AuthService) generateToken(accountID uuid.UUID, sessionID string, issuedAt, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub": accountID.String(),
		"jti": sessionID,
		"exp": expiresAt.Unix(),
		"iat": issuedAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// VerifyToken checks the signature and expiry only. Use Authenticate to also
// require a live session.
func (s *AuthService) VerifyToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}
	accountID, err := uuid.Parse(sub)
	if err != nil {
		return nil, ErrInvalidToken
	}

	sessionID, ok := claims["jti"].(string)
	if !ok || sessionID == "" {
		return nil, ErrInvalidToken
	}

	return &TokenClaims{AccountID: accountID, SessionID: sessionID}, nil
}

// Authenticate verifies the token and that its session has not been ended.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*TokenClaims, error) {
	claims, err := s.VerifyToken(tokenString)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.GetByID(ctx, claims.SessionID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session.AccountID != claims.AccountID {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Refresh swaps a live session for a new one with a fresh expiry.
func (s *AuthService) Refresh(ctx context.Context, tokenString string) (*AuthResult, error) {
	claims, err := s.Authenticate(ctx, tokenString)
	if err != nil {
		return nil, err
	}

	old, err := s.sessions.GetByID(ctx, claims.SessionID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	profile, err := s.profiles.GetByID(ctx, claims.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	result, err := s.startSession(ctx, claims.AccountID, profile, old.Platform)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Delete(ctx, claims.SessionID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to delete session: %w", err)
	}
	return result, nil
}

// SignOut ends the token's session and forgets the device's push token so
// the signed-out device stops receiving peeps.
func (s *AuthService) SignOut(ctx context.Context, tokenString string) error {
	claims, err := s.VerifyToken(tokenString)
	if err != nil {
		return err
	}

	if err := s.sessions.Delete(ctx, claims.SessionID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if err := s.pushTokens.Delete(ctx, claims.AccountID); err != nil {
		return fmt.Errorf("failed to clear push token: %w", err)
	}
	return nil
}

func (s *AuthService) SignOutAll(ctx context.Context, tokenString string) error {
	claims, err := s.Authenticate(ctx, tokenString)
	if err != nil {
		return err
	}

	if err := s.sessions.DeleteAllForAccount(ctx, claims.AccountID); err != nil {
		return fmt.Errorf("failed to sign out all sessions: %w", err)
	}
	if err := s.pushTokens.Delete(ctx, claims.AccountID); err != nil {
		return fmt.Errorf("failed to clear push token: %w", err)
	}
	return nil
}

func (s *AuthService) RegisterPushToken(ctx context.Context, accountID uuid.UUID, token, platform string) error {
	if token == "" {
		return ErrInvalidToken
	}
	return s.pushTokens.Upsert(ctx, &models.PushToken{UserID: accountID, Token: token, Platform: platform})
}

func (s *AuthService) ClearPushToken(ctx context.Context, accountID uuid.UUID) error {
	return s.pushTokens.Delete(ctx, accountID)
}
