package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/akinalp/kimlik/models"
	"github.com/akinalp/kimlik/pkg"
)

const (
	testAccessSecret  = "test-access-secret"
	testRefreshSecret = "test-refresh-secret"
)

func newTestTokenService(users *fakeUserRepo, sessions *fakeSessionRepo) *tokenService {
	svc := NewTokenService(users, sessions, testAccessSecret, testRefreshSecret, 1800, 604800)
	return svc.(*tokenService)
}

func testUser(t *testing.T, users *fakeUserRepo) *models.User {
	t.Helper()
	user := &models.User{
		Username:     "ayse",
		Email:        "ayse@example.com",
		PasswordHash: "irrelevant",
		Role:         models.RoleUser,
		Status:       models.UserStatusActive,
	}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("users.Create() error: %v", err)
	}
	return user
}

func TestIssueAndVerifyAccessToken(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestTokenService(users, newFakeSessionRepo())
	user := testUser(t, users)

	token, err := svc.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("IssueAccessToken() error: %v", err)
	}

	claims, err := svc.VerifyAccessToken(token)
	if err != nil {
		t.Fatalf("VerifyAccessToken() error: %v", err)
	}
	if claims.UserID != user.ID || claims.Username != "ayse" || claims.Email != "ayse@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Role != models.RoleUser {
		t.Fatalf("expected role %q, got %q", models.RoleUser, claims.Role)
	}
}

func TestAccessTokenExpiry(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestTokenService(users, newFakeSessionRepo())
	user := testUser(t, users)

	fakeNow := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fakeNow }

	token, err := svc.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("IssueAccessToken() error: %v", err)
	}

	// 30dk sınırın hemen altında hâlâ geçerli.
	fakeNow = fakeNow.Add(29 * time.Minute)
	if _, err := svc.VerifyAccessToken(token); err != nil {
		t.Fatalf("expected token to still be valid: %v", err)
	}

	// Süre doldu.
	fakeNow = fakeNow.Add(2 * time.Minute)
	if _, err := svc.VerifyAccessToken(token); !errors.Is(err, pkg.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for expired token, got %v", err)
	}
}

func TestKeySeparation(t *testing.T) {
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	svc := newTestTokenService(users, sessions)
	user := testUser(t, users)

	accessToken, err := svc.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("IssueAccessToken() error: %v", err)
	}
	refreshToken, err := svc.IssueRefreshToken(context.Background(), user, "ua", "1.2.3.4")
	if err != nil {
		t.Fatalf("IssueRefreshToken() error: %v", err)
	}

	// Access token, refresh secret ile doğrulanamaz — ve tersi.
	if _, err := svc.VerifyRefreshToken(accessToken); !errors.Is(err, pkg.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized verifying access token as refresh, got %v", err)
	}
	if _, err := svc.VerifyAccessToken(refreshToken); !errors.Is(err, pkg.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized verifying refresh token as access, got %v", err)
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestTokenService(users, newFakeSessionRepo())
	user := testUser(t, users)

	token, err := svc.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("IssueAccessToken() error: %v", err)
	}

	tampered := token[:len(token)-2] + "xx"
	if _, err := svc.VerifyAccessToken(tampered); !errors.Is(err, pkg.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for tampered token, got %v", err)
	}
}

func TestIssueRefreshTokenPersistsSession(t *testing.T) {
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	svc := newTestTokenService(users, sessions)
	user := testUser(t, users)

	token, err := svc.IssueRefreshToken(context.Background(), user, "test-agent", "203.0.113.7")
	if err != nil {
		t.Fatalf("IssueRefreshToken() error: %v", err)
	}

	session, ok := sessions.get(token)
	if !ok {
		t.Fatalf("expected session persisted under token")
	}
	if session.UserID != user.ID || session.UserAgent != "test-agent" || session.IPAddress != "203.0.113.7" {
		t.Fatalf("unexpected session metadata: %+v", session)
	}
	if session.RevokedAt != nil || session.ReplacedByToken != nil {
		t.Fatalf("new session must be live: %+v", session)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	svc := newTestTokenService(users, sessions)
	user := testUser(t, users)

	oldToken, err := svc.IssueRefreshToken(context.Background(), user, "ua", "1.2.3.4")
	if err != nil {
		t.Fatalf("IssueRefreshToken() error: %v", err)
	}

	pair, err := svc.Refresh(context.Background(), oldToken, "ua", "1.2.3.4")
	if err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if pair.RefreshToken == oldToken {
		t.Fatalf("expected a new refresh token after rotation")
	}
	if pair.AccessToken == "" {
		t.Fatalf("expected a new access token")
	}

	// Eski oturum revoke edildi ve zincir yeni token'ı gösteriyor.
	oldSession, ok := sessions.get(oldToken)
	if !ok {
		t.Fatalf("old session record must be kept")
	}
	if oldSession.RevokedAt == nil {
		t.Fatalf("old session must be revoked after rotation")
	}
	if oldSession.ReplacedByToken == nil || *oldSession.ReplacedByToken != pair.RefreshToken {
		t.Fatalf("rotation chain broken: %+v", oldSession.ReplacedByToken)
	}

	// Eski token replay edilemez, yenisi çalışır.
	if _, err := svc.Refresh(context.Background(), oldToken, "ua", "1.2.3.4"); !errors.Is(err, pkg.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized replaying rotated token, got %v", err)
	}
	if _, err := svc.Refresh(context.Background(), pair.RefreshToken, "ua", "1.2.3.4"); err != nil {
		t.Fatalf("new token should refresh: %v", err)
	}
}

func TestRefreshWithoutRotation(t *testing.T) {
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	svc := newTestTokenService(users, sessions)
	user := testUser(t, users)

	settings := svc.Settings()
	settings.RotateOnUse = false
	svc.UpdateSettings(settings)

	token, err := svc.IssueRefreshToken(context.Background(), user, "ua", "1.2.3.4")
	if err != nil {
		t.Fatalf("IssueRefreshToken() error: %v", err)
	}

	for i := 0; i < 3; i++ {
		pair, err := svc.Refresh(context.Background(), token, "ua", "1.2.3.4")
		if err != nil {
			t.Fatalf("Refresh() #%d error: %v", i+1, err)
		}
		if pair.RefreshToken != token {
			t.Fatalf("rotation disabled, refresh token must stay the same")
		}
	}
}

func TestRefreshRevokedSession(t *testing.T) {
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	svc := newTestTokenService(users, sessions)
	user := testUser(t, users)

	token, err := svc.IssueRefreshToken(context.Background(), user, "ua", "1.2.3.4")
	if err != nil {
		t.Fatalf("IssueRefreshToken() error: %v", err)
	}

	if err := svc.Revoke(context.Background(), token); err != nil {
		t.Fatalf("Revoke() error: %v", err)
	}

	if _, err := svc.Refresh(context.Background(), token, "ua", "1.2.3.4"); !errors.Is(err, pkg.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for revoked session, got %v", err)
	}
}

func TestRevokeIsIdempotent(t *testing.T) {
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	svc := newTestTokenService(users, sessions)
	user := testUser(t, users)

	token, err := svc.IssueRefreshToken(context.Background(), user, "ua", "1.2.3.4")
	if err != nil {
		t.Fatalf("IssueRefreshToken() error: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := svc.Revoke(context.Background(), token); err != nil {
			t.Fatalf("Revoke() #%d error: %v", i+1, err)
		}
	}

	// Hiç var olmamış token da hata değildir.
	if err := svc.Revoke(context.Background(), "never-issued"); err != nil {
		t.Fatalf("Revoke() unknown token error: %v", err)
	}
}

func TestRevokeAll(t *testing.T) {
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	svc := newTestTokenService(users, sessions)
	user := testUser(t, users)

	var tokens []string
	for i := 0; i < 3; i++ {
		token, err := svc.IssueRefreshToken(context.Background(), user, "ua", "1.2.3.4")
		if err != nil {
			t.Fatalf("IssueRefreshToken() error: %v", err)
		}
		tokens = append(tokens, token)
	}

	if err := svc.RevokeAll(context.Background(), user.ID); err != nil {
		t.Fatalf("RevokeAll() error: %v", err)
	}

	if got := sessions.liveCount(user.ID); got != 0 {
		t.Fatalf("expected 0 live sessions, got %d", got)
	}
	for _, token := range tokens {
		if _, err := svc.Refresh(context.Background(), token, "ua", "1.2.3.4"); !errors.Is(err, pkg.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized after revoke-all, got %v", err)
		}
	}
}

func TestConcurrentRefreshSingleWinner(t *testing.T) {
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	svc := newTestTokenService(users, sessions)
	user := testUser(t, users)

	token, err := svc.IssueRefreshToken(context.Background(), user, "ua", "1.2.3.4")
	if err != nil {
		t.Fatalf("IssueRefreshToken() error: %v", err)
	}

	const attempts = 16
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Refresh(context.Background(), token, "ua", "1.2.3.4")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var winners, losers int
	for err := range results {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, pkg.ErrUnauthorized):
			losers++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// Aynı token'la yarışan çağrılardan TAM OLARAK biri kazanmalı.
	if winners != 1 {
		t.Fatalf("expected exactly 1 winner, got %d (losers: %d)", winners, losers)
	}
	if got := sessions.liveCount(user.ID); got != 1 {
		t.Fatalf("expected exactly 1 live session after race, got %d", got)
	}
}

func TestSettingsAffectNewTokensOnly(t *testing.T) {
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	svc := newTestTokenService(users, sessions)
	user := testUser(t, users)

	fakeNow := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fakeNow }

	oldToken, err := svc.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("IssueAccessToken() error: %v", err)
	}

	svc.UpdateSettings(models.TokenSettings{
		AccessTokenExpiration:  60,
		RefreshTokenExpiration: 3600,
		RotateOnUse:            true,
	})

	newToken, err := svc.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("IssueAccessToken() error: %v", err)
	}

	// 2 dakika sonra: yeni kurala göre üretilen token öldü,
	// eski kuralla üretilen (30dk) hâlâ yaşıyor.
	fakeNow = fakeNow.Add(2 * time.Minute)
	if _, err := svc.VerifyAccessToken(newToken); !errors.Is(err, pkg.ErrUnauthorized) {
		t.Fatalf("expected new-settings token to be expired, got %v", err)
	}
	if _, err := svc.VerifyAccessToken(oldToken); err != nil {
		t.Fatalf("token issued under old settings must keep its expiry: %v", err)
	}
}

func TestUpdateSettingsConcurrentAccess(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestTokenService(users, newFakeSessionRepo())
	user := testUser(t, users)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			svc.UpdateSettings(models.TokenSettings{
				AccessTokenExpiration:  1800 + n,
				RefreshTokenExpiration: 604800,
				RotateOnUse:            true,
			})
		}(i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.IssueAccessToken(user); err != nil {
				t.Errorf("IssueAccessToken() error: %v", err)
			}
		}()
	}
	wg.Wait()
}
