package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chatbot-platform/internal/config"

	"github.com/gin-gonic/gin"
)

func newManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(config.AuthConfig{
		JWTSecret:       "secret",
		JWTIssuer:       "issuer",
		JWTAudience:     "aud",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	return m
}

var operator = Identity{OperatorID: "op-1", WorkspaceID: "111", Role: "manager"}

func TestIssueAndVerifyAccessToken(t *testing.T) {
	m := newManager(t)
	now := time.Unix(1700000000, 0).UTC()
	pair, err := m.IssuePair(now, operator)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected token strings")
	}

	claims, err := m.Verify(pair.AccessToken, TokenTypeAccess, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Identity() != operator {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if _, err := m.Verify(pair.AccessToken, TokenTypeAccess, now.Add(time.Hour)); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestVerifyRejectsWrongTokenType(t *testing.T) {
	m := newManager(t)
	now := time.Now()
	p, err := m.IssuePair(now, operator)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(p.RefreshToken, TokenTypeAccess, now); err == nil {
		t.Fatalf("expected token_type mismatch")
	}
}

func TestVerifyRejectsOtherSecret(t *testing.T) {
	now := time.Now()
	p, err := newManager(t).IssuePair(now, operator)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	other, _ := NewManager(config.AuthConfig{JWTSecret: "other", JWTIssuer: "issuer", JWTAudience: "aud", AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour})
	if _, err := other.Verify(p.AccessToken, TokenTypeAccess, now); err == nil {
		t.Fatalf("expected signature failure")
	}
}

func TestRefreshIssuesNewPair(t *testing.T) {
	m := newManager(t)
	now := time.Unix(1700000000, 0).UTC()
	p, _ := m.IssuePair(now, operator)

	later := now.Add(2 * time.Hour)
	next, err := m.Refresh(p.RefreshToken, later)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	claims, err := m.Verify(next.AccessToken, TokenTypeAccess, later)
	if err != nil || claims.Identity() != operator {
		t.Fatalf("unexpected refreshed claims %+v err=%v", claims, err)
	}
	if _, err := m.Refresh(p.AccessToken, later); err == nil {
		t.Fatalf("expected access token to be refused for refresh")
	}
}

func TestIssuePairRequiresIdentity(t *testing.T) {
	if _, err := newManager(t).IssuePair(time.Now(), Identity{OperatorID: "op"}); err == nil {
		t.Fatalf("expected error for incomplete identity")
	}
}

func TestRequireAccessToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := newManager(t)
	now := time.Now()
	pair, _ := m.IssuePair(now, operator)

	var got Identity
	r := gin.New()
	r.GET("/x", requireToken(m, func() time.Time { return now }), func(c *gin.Context) {
		got, _ = IdentityFrom(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || got != operator {
		t.Fatalf("expected 200 with identity, got %d %+v", w.Code, got)
	}
}

func TestWorkspaceIDRequiresIdentity(t *testing.T) {
	if _, err := WorkspaceID(context.Background()); err == nil {
		t.Fatalf("expected error without identity")
	}
	ctx := WithIdentity(context.Background(), Identity{OperatorID: "op", Role: "owner"})
	if _, err := WorkspaceID(ctx); err == nil {
		t.Fatalf("expected error for empty workspace")
	}
}
