package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/proctorguard/backend/internal/config"
	"github.com/proctorguard/backend/internal/model"
	"github.com/proctorguard/backend/internal/repository"
)

// Common auth errors.
var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrSessionAlreadyActive = errors.New("another session is already active, contact a coordinator to reset")
	ErrEmailTaken           = errors.New("email already registered")
)

// TokenType distinguishes candidate vs staff tokens.
type TokenType string

const (
	TokenTypeCandidate TokenType = "candidate"
	TokenTypeStaff     TokenType = "staff"
)

// Claims extends JWT standard claims with app-specific fields. Permissions
// come from the role matrix at login and are checked by the RBAC middleware
// without a database round trip.
type Claims struct {
	jwt.RegisteredClaims
	TokenType      TokenType `json:"token_type"`
	UserID         uuid.UUID `json:"user_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Role           string    `json:"role"`
	Permissions    []string  `json:"permissions,omitempty"`
}

// LoginResult carries the signed token and the authenticated user.
type LoginResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// AuthService handles authentication, JWT issuing, and candidate session
// management. Candidates are limited to one live session at a time, tracked
// in Redis; staff tokens are stateless.
type AuthService struct {
	cfg       *config.Config
	userStore UserStore
	rdb       *redis.Client
	log       zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, userStore UserStore, rdb *redis.Client, log zerolog.Logger) *AuthService {
	return &AuthService{
		cfg:       cfg,
		userStore: userStore,
		rdb:       rdb,
		log:       log.With().Str("component", "auth_service").Logger(),
	}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Login authenticates a user by email and password and issues a token.
// Candidate logins are rejected while another candidate session is live.
func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest) (*LoginResult, error) {
	user, err := s.userStore.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := s.CheckPassword(user.PasswordHash, req.Password); err != nil {
		return nil, err
	}

	var token string
	if user.Role == model.RoleCandidate {
		token, err = s.generateCandidateToken(ctx, user)
	} else {
		token, err = s.generateStaffToken(user)
	}
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("user_id", user.ID.String()).
		Str("role", string(user.Role)).
		Msg("user logged in")
	return &LoginResult{Token: token, User: user}, nil
}

// RegisterCandidate creates a CANDIDATE account.
func (s *AuthService) RegisterCandidate(ctx context.Context, req *model.RegisterCandidateRequest) (*model.User, error) {
	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &model.User{
		OrganizationID: req.OrganizationID,
		Email:          req.Email,
		Name:           req.Name,
		PasswordHash:   hash,
		Role:           model.RoleCandidate,
	}
	if err := s.userStore.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// generateCandidateToken creates a candidate JWT and registers the session
// in Redis. Returns an error if a session already exists.
func (s *AuthService) generateCandidateToken(ctx context.Context, user *model.User) (string, error) {
	sessionKey := config.CacheKey.CandidateSessionKey(user.ID.String())

	existing, err := s.rdb.Get(ctx, sessionKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("check session: %w", err)
	}
	if existing != "" {
		return "", ErrSessionAlreadyActive
	}

	jti := uuid.New().String()
	signed, err := s.sign(user, TokenTypeCandidate, jti)
	if err != nil {
		return "", err
	}

	// Session lives exactly as long as the JWT.
	if err := s.rdb.Set(ctx, sessionKey, jti, s.cfg.JWTExpiry).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return signed, nil
}

// generateStaffToken creates a stateless staff JWT with role permissions
// embedded.
func (s *AuthService) generateStaffToken(user *model.User) (string, error) {
	return s.sign(user, TokenTypeStaff, uuid.New().String())
}

func (s *AuthService) sign(user *model.User, tokenType TokenType, jti string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		TokenType:      tokenType,
		UserID:         user.ID,
		OrganizationID: user.OrganizationID,
		Role:           string(user.Role),
		Permissions:    model.PermissionsFor(user.Role),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// ValidateCandidateSession checks that the token's JTI matches the active
// session in Redis. A mismatch means the session was reset or superseded.
func (s *AuthService) ValidateCandidateSession(ctx context.Context, candidateID uuid.UUID, jti string) error {
	sessionKey := config.CacheKey.CandidateSessionKey(candidateID.String())
	stored, err := s.rdb.Get(ctx, sessionKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return errors.New("no active session")
		}
		return fmt.Errorf("check session: %w", err)
	}
	if stored != jti {
		return errors.New("session invalidated")
	}
	return nil
}

// ResetCandidateSession removes a candidate's session from Redis, allowing a
// new login. Staff-only operation.
func (s *AuthService) ResetCandidateSession(ctx context.Context, candidateID uuid.UUID) error {
	return s.rdb.Del(ctx, config.CacheKey.CandidateSessionKey(candidateID.String())).Err()
}

// Logout tears down a candidate's session. Staff tokens simply expire.
func (s *AuthService) Logout(ctx context.Context, claims *Claims) error {
	if claims.TokenType != TokenTypeCandidate {
		return nil
	}
	return s.ResetCandidateSession(ctx, claims.UserID)
}
