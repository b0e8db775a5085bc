package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/smw-finance/gastos-bfa-go/internal/domain"
	"github.com/smw-finance/gastos-bfa-go/internal/port"
)

var authTracer = otel.Tracer("service/auth")

const minPasswordLength = 8

// AuthService relays authentication flows to the ledger API and validates
// the access tokens it issues. Credentials are never stored locally; the
// only local secret is the JWT signing key shared with the ledger.
type AuthService struct {
	store     port.IdentityStore
	jwtSecret []byte
	logger    *zap.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(store port.IdentityStore, jwtSecret string, logger *zap.Logger) *AuthService {
	return &AuthService{
		store:     store,
		jwtSecret: []byte(jwtSecret),
		logger:    logger,
	}
}

// ============================================================
// Login (POST /v1/auth/login)
// ============================================================

func (s *AuthService) Login(ctx context.Context, req *domain.LoginPayload) (*domain.User, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()

	if req.Username == "" {
		return nil, &domain.ErrValidation{Field: "username", Message: "required"}
	}
	if req.Password == "" {
		return nil, &domain.ErrValidation{Field: "password", Message: "required"}
	}

	user, err := s.store.Login(ctx, req)
	if err != nil {
		s.logger.Warn("login failed", zap.String("username", req.Username), zap.Error(err))
		return nil, err
	}

	s.logger.Info("login succeeded",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
	)
	return user, nil
}

// ============================================================
// Register (POST /v1/auth/register)
// ============================================================

func (s *AuthService) Register(ctx context.Context, req *domain.RegisterPayload) (*domain.User, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Register")
	defer span.End()

	if req.Username == "" {
		return nil, &domain.ErrValidation{Field: "username", Message: "required"}
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return nil, &domain.ErrValidation{Field: "email", Message: "invalid email address"}
	}
	if len(req.Password) < minPasswordLength {
		return nil, &domain.ErrValidation{
			Field:   "password",
			Message: fmt.Sprintf("must be at least %d characters", minPasswordLength),
		}
	}

	user, err := s.store.Register(ctx, req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// ============================================================
// Refresh (POST /v1/auth/refresh)
// ============================================================

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.User, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Refresh")
	defer span.End()

	if refreshToken == "" {
		return nil, &domain.ErrValidation{Field: "refresh_token", Message: "required"}
	}
	return s.store.Refresh(ctx, refreshToken)
}

// ============================================================
// Users
// ============================================================

func (s *AuthService) Me(ctx context.Context) (*domain.User, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Me")
	defer span.End()

	return s.store.Me(ctx)
}

// UpdateUser relays a profile update. Users may update themselves; only
// admins may update someone else.
func (s *AuthService) UpdateUser(ctx context.Context, claims *domain.AccessClaims, userID string, payload *domain.UpdateUserPayload) (*domain.User, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.UpdateUser")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	if claims.Sub != userID && claims.Role != string(domain.RoleAdmin) {
		return nil, &domain.ErrForbidden{Action: "update another user"}
	}
	if payload.Password != nil && len(*payload.Password) < minPasswordLength {
		return nil, &domain.ErrValidation{
			Field:   "password",
			Message: fmt.Sprintf("must be at least %d characters", minPasswordLength),
		}
	}

	user, err := s.store.UpdateUser(ctx, userID, payload)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user updated", zap.String("user_id", userID), zap.String("actor", claims.Sub))
	return user, nil
}

// ============================================================
// Token validation
// ============================================================

// ValidateToken parses and verifies an access token issued by the ledger
// API and returns its subject and role claims.
func (s *AuthService) ValidateToken(tokenString string) (*domain.AccessClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, &domain.ErrUnauthorized{Message: "invalid or expired token"}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, &domain.ErrUnauthorized{Message: "invalid token claims"}
	}

	sub, _ := claims["sub"].(string)
	if strings.TrimSpace(sub) == "" {
		return nil, &domain.ErrUnauthorized{Message: "token missing subject"}
	}
	role, _ := claims["role"].(string)

	return &domain.AccessClaims{Sub: sub, Role: role}, nil
}
