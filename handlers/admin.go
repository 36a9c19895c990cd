// Package handlers — AdminHandler, yönetim endpoint'leri.
//
// Tüm route'lar auth + admin rol middleware'ının arkasındadır.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/akinalp/kimlik/models"
	"github.com/akinalp/kimlik/pkg"
	"github.com/akinalp/kimlik/services"
)

// defaultLogLimit / maxLogLimit — auth log listelemesinin sayfa sınırları.
const (
	defaultLogLimit = 50
	maxLogLimit     = 500
)

// AdminHandler, admin endpoint'lerini yöneten struct.
type AdminHandler struct {
	tokenService services.TokenService
	auditService services.AuditService
}

// NewAdminHandler, constructor.
func NewAdminHandler(tokenService services.TokenService, auditService services.AuditService) *AdminHandler {
	return &AdminHandler{
		tokenService: tokenService,
		auditService: auditService,
	}
}

// GetTokenSettings godoc
// GET /api/admin/token-settings
func (h *AdminHandler) GetTokenSettings(w http.ResponseWriter, r *http.Request) {
	pkg.JSON(w, http.StatusOK, h.tokenService.Settings())
}

// UpdateTokenSettings godoc
// PUT /api/admin/token-settings
// Body: { "accessTokenExpiration": 1800, "refreshTokenExpiration": 604800, "rotateOnUse": true }
//
// Değişiklik SONRAKİ token üretimlerinde etkili olur — verilmiş token'ların
// expiry'si değişmez (expiry üretim anında claim'e gömülüdür).
func (h *AdminHandler) UpdateTokenSettings(w http.ResponseWriter, r *http.Request) {
	var settings models.TokenSettings

	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := settings.Validate(); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	h.tokenService.UpdateSettings(settings)
	pkg.JSON(w, http.StatusOK, settings)
}

// ListAuthLogs godoc
// GET /api/admin/auth-logs?limit=50&userId=<uuid>
//
// userId verilirse o kullanıcının kayıtları, verilmezse en son kayıtlar döner.
func (h *AdminHandler) ListAuthLogs(w http.ResponseWriter, r *http.Request) {
	limit := defaultLogLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			pkg.ErrorWithMessage(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	if limit > maxLogLimit {
		limit = maxLogLimit
	}

	var (
		entries []models.AuthLogEntry
		err     error
	)
	if userID := r.URL.Query().Get("userId"); userID != "" {
		entries, err = h.auditService.ListByUser(r.Context(), userID, limit)
	} else {
		entries, err = h.auditService.ListRecent(r.Context(), limit)
	}
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, entries)
}
