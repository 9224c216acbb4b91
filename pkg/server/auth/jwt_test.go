package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/carelab-io/recordforms/pkg/common/models"
	"github.com/google/uuid"
)

func newTestManager(t *testing.T) *JWTManager {
	t.Helper()
	manager, err := NewJWTManager("unit-test-secret-key", "recordforms", "recordforms-api", time.Hour)
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}
	return manager
}

func TestIssueAndValidateToken(t *testing.T) {
	manager := newTestManager(t)
	user := models.User{
		ID:             uuid.New(),
		OrganizationID: uuid.New(),
		Role:           "clinician",
		Email:          "dr.lee@example.com",
	}

	token, err := manager.IssueToken(user)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	claims, err := manager.ValidateToken(context.Background(), token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("user id = %v, want %v", claims.UserID, user.ID)
	}
	if claims.Email != user.Email {
		t.Errorf("email = %q, want %q", claims.Email, user.Email)
	}
	if claims.Role != "clinician" {
		t.Errorf("role = %q", claims.Role)
	}
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	manager := newTestManager(t)
	token, err := manager.IssueToken(models.User{ID: uuid.New()})
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	parts := strings.Split(token, ".")
	forged := parts[0] + "." + parts[1] + "x." + parts[2]
	if _, err := manager.ValidateToken(context.Background(), forged); err == nil {
		t.Error("tampered payload validated")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	manager := newTestManager(t)
	manager.nowFunc = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := manager.IssueToken(models.User{ID: uuid.New()})
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	manager.nowFunc = time.Now
	if _, err := manager.ValidateToken(context.Background(), token); err == nil {
		t.Error("expired token validated")
	}
}

func TestValidateTokenRejectsWrongIssuer(t *testing.T) {
	issuerA := newTestManager(t)
	issuerB, err := NewJWTManager("unit-test-secret-key", "other-issuer", "recordforms-api", time.Hour)
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}

	token, err := issuerB.IssueToken(models.User{ID: uuid.New()})
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := issuerA.ValidateToken(context.Background(), token); err == nil {
		t.Error("token from another issuer validated")
	}
}

func TestActorFallsBackThroughClaims(t *testing.T) {
	cases := []struct {
		name   string
		claims *Claims
		want   string
	}{
		{"nil claims", nil, "system"},
		{"email preferred", &Claims{Email: "a@b.com", Subject: "sub"}, "a@b.com"},
		{"subject fallback", &Claims{Subject: "sub"}, "sub"},
		{"empty claims", &Claims{}, "system"},
	}
	for _, tc := range cases {
		if got := tc.claims.Actor(); got != tc.want {
			t.Errorf("%s: Actor() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestShortSecretRejected(t *testing.T) {
	if _, err := NewJWTManager("short", "iss", "aud", time.Hour); err == nil {
		t.Error("short secret accepted")
	}
}
