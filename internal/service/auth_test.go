package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/smw-finance/gastos-bfa-go/internal/domain"
	"github.com/smw-finance/gastos-bfa-go/internal/service"
)

const testSecret = "test-secret"

func newAuthService(ledger *mockLedger) *service.AuthService {
	return service.NewAuthService(ledger, testSecret, zap.NewNop())
}

func signToken(t *testing.T, secret, sub, role string, expiresIn time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"exp":  time.Now().Add(expiresIn).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestLogin_RequiresCredentials(t *testing.T) {
	svc := newAuthService(&mockLedger{})

	_, err := svc.Login(context.Background(), &domain.LoginPayload{Password: "hunter22"})
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) || verr.Field != "username" {
		t.Fatalf("expected username validation error, got %v", err)
	}

	_, err = svc.Login(context.Background(), &domain.LoginPayload{Username: "maria"})
	if !errors.As(err, &verr) || verr.Field != "password" {
		t.Fatalf("expected password validation error, got %v", err)
	}
}

func TestLogin_RelaysUpstream(t *testing.T) {
	ledger := &mockLedger{user: &domain.User{
		ID: "user-1", Username: "maria", Role: domain.RolePremiumUser,
		AccessToken: "at", RefreshToken: "rt", TokenType: "bearer",
	}}
	svc := newAuthService(ledger)

	user, err := svc.Login(context.Background(), &domain.LoginPayload{Username: "maria", Password: "hunter22"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.AccessToken != "at" || user.RefreshToken != "rt" {
		t.Error("tokens must be relayed untouched")
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := newAuthService(&mockLedger{user: &domain.User{ID: "user-1"}})

	cases := []struct {
		name    string
		payload domain.RegisterPayload
		field   string
	}{
		{"missing username", domain.RegisterPayload{Email: "a@b.co", Password: "longenough"}, "username"},
		{"bad email", domain.RegisterPayload{Username: "maria", Email: "not-an-email", Password: "longenough"}, "email"},
		{"short password", domain.RegisterPayload{Username: "maria", Email: "a@b.co", Password: "short"}, "password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), &tc.payload)
			var verr *domain.ErrValidation
			if !errors.As(err, &verr) || verr.Field != tc.field {
				t.Fatalf("expected %s validation error, got %v", tc.field, err)
			}
		})
	}
}

func TestValidateToken(t *testing.T) {
	svc := newAuthService(&mockLedger{})

	claims, err := svc.ValidateToken(signToken(t, testSecret, "user-1", "premium_user", time.Hour))
	if err != nil {
		t.Fatalf("expected valid token, got %v", err)
	}
	if claims.Sub != "user-1" || claims.Role != "premium_user" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	svc := newAuthService(&mockLedger{})

	if _, err := svc.ValidateToken(signToken(t, "other-secret", "user-1", "free_user", time.Hour)); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestValidateToken_Expired(t *testing.T) {
	svc := newAuthService(&mockLedger{})

	if _, err := svc.ValidateToken(signToken(t, testSecret, "user-1", "free_user", -time.Hour)); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestValidateToken_MissingSubject(t *testing.T) {
	svc := newAuthService(&mockLedger{})

	if _, err := svc.ValidateToken(signToken(t, testSecret, "", "free_user", time.Hour)); err == nil {
		t.Fatal("expected error for missing subject")
	}
}

func TestUpdateUser_Authorization(t *testing.T) {
	ledger := &mockLedger{user: &domain.User{ID: "user-2"}}
	svc := newAuthService(ledger)
	name := "Maria"

	_, err := svc.UpdateUser(context.Background(),
		&domain.AccessClaims{Sub: "user-1", Role: "free_user"},
		"user-2",
		&domain.UpdateUserPayload{Profile: &domain.UpdateUserProfile{FirstName: &name}},
	)
	var ferr *domain.ErrForbidden
	if !errors.As(err, &ferr) {
		t.Fatalf("expected forbidden error, got %v", err)
	}

	if _, err := svc.UpdateUser(context.Background(),
		&domain.AccessClaims{Sub: "admin-1", Role: "admin"},
		"user-2",
		&domain.UpdateUserPayload{Profile: &domain.UpdateUserProfile{FirstName: &name}},
	); err != nil {
		t.Fatalf("admin must be allowed, got %v", err)
	}

	if _, err := svc.UpdateUser(context.Background(),
		&domain.AccessClaims{Sub: "user-2", Role: "free_user"},
		"user-2",
		&domain.UpdateUserPayload{Profile: &domain.UpdateUserProfile{FirstName: &name}},
	); err != nil {
		t.Fatalf("self update must be allowed, got %v", err)
	}
}
