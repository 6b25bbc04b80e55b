// Package auth implements account registration, login, and JWT token
// handling. Access tokens are short-lived HS256 JWTs; refresh tokens use
// the same signing key with a longer lifetime and a distinct type claim
// so one cannot stand in for the other.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/swipswaps/marketplace-bulk-editor/internal/store"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	minPasswordLen = 8
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", minPasswordLen)
	ErrInvalidEmail       = errors.New("invalid email address")
)

// Claims is the JWT payload for both token types.
type Claims struct {
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair is what login, register, and refresh hand back.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// UserDirectory is the account storage the service needs. *store.UserRepo
// satisfies it.
type UserDirectory interface {
	Create(ctx context.Context, email, passwordHash string) (store.User, error)
	ByEmail(ctx context.Context, email string) (store.User, error)
	ByID(ctx context.Context, id string) (store.User, error)
}

// Service issues tokens and manages accounts.
type Service struct {
	users      UserDirectory
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewService builds the auth service.
func NewService(users UserDirectory, secret string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		users:      users,
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Register creates an account and logs it in.
func (s *Service) Register(ctx context.Context, email, password string) (store.User, TokenPair, error) {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return store.User{}, TokenPair{}, ErrInvalidEmail
	}
	if len(password) < minPasswordLen {
		return store.User{}, TokenPair{}, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return store.User{}, TokenPair{}, fmt.Errorf("hashing password: %w", err)
	}

	u, err := s.users.Create(ctx, email, string(hash))
	if err != nil {
		return store.User{}, TokenPair{}, err
	}

	pair, err := s.issuePair(u.ID)
	return u, pair, err
}

// Login verifies credentials and issues a token pair. Lookup failures and
// bad passwords return the same error so the response does not reveal
// which emails exist.
func (s *Service) Login(ctx context.Context, email, password string) (store.User, TokenPair, error) {
	u, err := s.users.ByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return store.User{}, TokenPair{}, ErrInvalidCredentials
	}
	if err != nil {
		return store.User{}, TokenPair{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return store.User{}, TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.issuePair(u.ID)
	return u, pair, err
}

// Refresh exchanges a refresh token for a fresh pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	userID, err := s.parse(refreshToken, tokenTypeRefresh)
	if err != nil {
		return TokenPair{}, err
	}
	if _, err := s.users.ByID(ctx, userID); err != nil {
		return TokenPair{}, ErrInvalidToken
	}
	return s.issuePair(userID)
}

// Authenticate validates an access token and returns the user it belongs
// to.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (store.User, error) {
	userID, err := s.parse(accessToken, tokenTypeAccess)
	if err != nil {
		return store.User{}, err
	}
	u, err := s.users.ByID(ctx, userID)
	if err != nil {
		return store.User{}, ErrInvalidToken
	}
	return u, nil
}

func (s *Service) issuePair(userID string) (TokenPair, error) {
	access, err := s.sign(userID, tokenTypeAccess, s.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.sign(userID, tokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(s.accessTTL.Seconds()),
	}, nil
}

func (s *Service) sign(userID, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// parse validates signature, expiry, and token type, and returns the
// subject user ID.
func (s *Service) parse(raw, wantType string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.TokenType != wantType || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
