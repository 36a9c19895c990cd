package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/akinalp/kimlik/models"
	"github.com/akinalp/kimlik/services"
)

type stubAuditService struct {
	lastLimit  int
	lastUserID string
	entries    []models.AuthLogEntry
}

func (s *stubAuditService) Record(ctx context.Context, entry *models.AuthLogEntry) {}

func (s *stubAuditService) ListRecent(ctx context.Context, limit int) ([]models.AuthLogEntry, error) {
	s.lastLimit = limit
	return s.entries, nil
}

func (s *stubAuditService) ListByUser(ctx context.Context, userID string, limit int) ([]models.AuthLogEntry, error) {
	s.lastUserID = userID
	s.lastLimit = limit
	return s.entries, nil
}

// NewTokenService repo'suz çağrılabilir — Settings/UpdateSettings DB'ye dokunmaz.
func newAdminTestHandler() (*AdminHandler, *stubAuditService) {
	tokenSvc := services.NewTokenService(nil, nil, "test-access-secret", "test-refresh-secret", 1800, 604800)
	audit := &stubAuditService{}
	return NewAdminHandler(tokenSvc, audit), audit
}

func TestUpdateTokenSettings(t *testing.T) {
	h, _ := newAdminTestHandler()

	body := `{"accessTokenExpiration":900,"refreshTokenExpiration":86400,"rotateOnUse":false}`
	r := httptest.NewRequest(http.MethodPut, "/api/admin/token-settings", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.UpdateTokenSettings(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Ayarlar gerçekten uygulanmış mı — GET üzerinden doğrula.
	r = httptest.NewRequest(http.MethodGet, "/api/admin/token-settings", nil)
	w = httptest.NewRecorder()
	h.GetTokenSettings(w, r)

	var resp struct {
		Data models.TokenSettings `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.AccessTokenExpiration != 900 || resp.Data.RotateOnUse {
		t.Fatalf("settings not applied: %+v", resp.Data)
	}
}

func TestUpdateTokenSettingsRejectsInvalid(t *testing.T) {
	h, _ := newAdminTestHandler()

	tests := []struct {
		name string
		body string
	}{
		{"zero access expiry", `{"accessTokenExpiration":0,"refreshTokenExpiration":86400}`},
		{"negative refresh expiry", `{"accessTokenExpiration":900,"refreshTokenExpiration":-1}`},
		{"malformed json", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPut, "/api/admin/token-settings", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			h.UpdateTokenSettings(w, r)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestListAuthLogsLimit(t *testing.T) {
	h, audit := newAdminTestHandler()

	// Limit verilmezse default kullanılır.
	r := httptest.NewRequest(http.MethodGet, "/api/admin/auth-logs", nil)
	w := httptest.NewRecorder()
	h.ListAuthLogs(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if audit.lastLimit != defaultLogLimit {
		t.Fatalf("expected default limit %d, got %d", defaultLogLimit, audit.lastLimit)
	}

	// Aşırı büyük limit clamp'lenir.
	r = httptest.NewRequest(http.MethodGet, "/api/admin/auth-logs?limit=99999", nil)
	w = httptest.NewRecorder()
	h.ListAuthLogs(w, r)
	if audit.lastLimit != maxLogLimit {
		t.Fatalf("expected clamped limit %d, got %d", maxLogLimit, audit.lastLimit)
	}

	// Geçersiz limit → 400.
	r = httptest.NewRequest(http.MethodGet, "/api/admin/auth-logs?limit=abc", nil)
	w = httptest.NewRecorder()
	h.ListAuthLogs(w, r)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestListAuthLogsByUser(t *testing.T) {
	h, audit := newAdminTestHandler()
	userID := "u-1"
	audit.entries = []models.AuthLogEntry{
		{ID: "log-1", UserID: &userID, Action: models.AuthActionLogin, Status: models.AuthStatusSuccess},
	}

	r := httptest.NewRequest(http.MethodGet, "/api/admin/auth-logs?userId=u-1&limit=10", nil)
	w := httptest.NewRecorder()
	h.ListAuthLogs(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if audit.lastUserID != "u-1" || audit.lastLimit != 10 {
		t.Fatalf("unexpected query: userID=%q limit=%d", audit.lastUserID, audit.lastLimit)
	}
	if !strings.Contains(w.Body.String(), `"login"`) {
		t.Fatalf("expected entries in response, got: %s", w.Body.String())
	}
}
