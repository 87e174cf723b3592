package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"lifesync-engine/internal/domain"
)

const jwtTestSecret = "jwt-test-secret"

func newJWTTestService() (*JWTService, domain.User) {
	svc := NewJWTServiceWithStore(jwtTestSecret, 15*time.Minute, 30*time.Minute, NewMemoryRefreshTokenStore())
	user := domain.User{
		ID:        "u1",
		Email:     "user@example.com",
		CreatedAt: time.Now().UTC(),
	}
	return svc, user
}

func TestJWTServiceIssuesAndParsesAccessToken(t *testing.T) {
	svc, user := newJWTTestService()

	pair, err := svc.GeneratePair(user)
	if err != nil {
		t.Fatalf("generate pair fallo: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("esperaba ambos tokens en el par")
	}
	if pair.ExpiresIn != int64((15 * time.Minute).Seconds()) {
		t.Fatalf("expires_in inesperado: %d", pair.ExpiresIn)
	}

	claims, err := svc.ParseAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("parse access fallo: %v", err)
	}
	if claims.UserID != user.ID || claims.Email != user.Email {
		t.Fatalf("claims inesperados: %+v", claims)
	}
	if claims.TokenType != "access" {
		t.Fatalf("esperaba typ access, got %q", claims.TokenType)
	}
}

func TestJWTServiceRotatesRefreshToken(t *testing.T) {
	svc, user := newJWTTestService()

	pair, err := svc.GeneratePair(user)
	if err != nil {
		t.Fatalf("generate pair fallo: %v", err)
	}

	refreshed, err := svc.RefreshPair(pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh pair fallo: %v", err)
	}
	if refreshed.AccessToken == "" || refreshed.RefreshToken == "" {
		t.Fatalf("esperaba tokens nuevos tras la rotacion")
	}

	// el refresh consumido queda revocado y no puede reutilizarse
	if _, err := svc.RefreshPair(pair.RefreshToken); err == nil {
		t.Fatalf("esperaba rechazo del refresh ya rotado")
	}
}

func TestJWTServiceRevokeBlocksRefresh(t *testing.T) {
	svc, user := newJWTTestService()

	pair, err := svc.GeneratePair(user)
	if err != nil {
		t.Fatalf("generate pair fallo: %v", err)
	}
	if err := svc.RevokeRefresh(pair.RefreshToken); err != nil {
		t.Fatalf("revoke refresh fallo: %v", err)
	}
	if _, err := svc.RefreshPair(pair.RefreshToken); err == nil {
		t.Fatalf("esperaba rechazo tras revoke")
	}
}

func TestJWTServiceRejectsEmptySecret(t *testing.T) {
	svc := NewJWTServiceWithStore("", 15*time.Minute, 30*time.Minute, NewMemoryRefreshTokenStore())
	user := domain.User{ID: "u1", Email: "user@example.com", CreatedAt: time.Now().UTC()}

	if _, err := svc.GeneratePair(user); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("esperaba ErrJWTInvalid sin secreto, got %v", err)
	}
}

func TestJWTServiceRejectsCrossTypeTokens(t *testing.T) {
	svc, user := newJWTTestService()
	pair, err := svc.GeneratePair(user)
	if err != nil {
		t.Fatalf("generate pair fallo: %v", err)
	}

	if _, err := svc.RefreshPair(pair.AccessToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("access como refresh: esperaba ErrJWTInvalid, got %v", err)
	}
	if _, err := svc.ParseAccessToken(pair.RefreshToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("refresh como access: esperaba ErrJWTInvalid, got %v", err)
	}
}

func signTestToken(t *testing.T, issuer string, expiresAt time.Time) string {
	t.Helper()
	now := time.Now().UTC()
	claims := Claims{
		UserID:    "u1",
		Email:     "user@example.com",
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   "u1",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtTestSecret))
	if err != nil {
		t.Fatalf("firma del token fallo: %v", err)
	}
	return signed
}

func TestJWTServiceRejectsWrongIssuer(t *testing.T) {
	svc, _ := newJWTTestService()
	signed := signTestToken(t, "other-issuer", time.Now().UTC().Add(10*time.Minute))

	if _, err := svc.ParseAccessToken(signed); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("esperaba ErrJWTInvalid por issuer ajeno, got %v", err)
	}
}

func TestJWTServiceRejectsExpiredAccessToken(t *testing.T) {
	svc, _ := newJWTTestService()
	signed := signTestToken(t, "lifesync-engine", time.Now().UTC().Add(-time.Minute))

	if _, err := svc.ParseAccessToken(signed); !errors.Is(err, ErrJWTExpired) {
		t.Fatalf("esperaba ErrJWTExpired, got %v", err)
	}
}
