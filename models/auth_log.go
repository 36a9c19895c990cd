package models

import "time"

// Auth event action sabitleri — auth_logs.action kolonunda kullanılır.
const (
	AuthActionRegister  = "register"
	AuthActionLogin     = "login"
	AuthActionRefresh   = "token_refresh"
	AuthActionLogout    = "logout"
	AuthActionRevokeAll = "revoke_all_sessions"
	AuthActionPwdForgot = "password_forgot"
	AuthActionPwdReset  = "password_reset"
)

// Auth event status sabitleri.
const (
	AuthStatusSuccess = "success"
	AuthStatusFailure = "failure"
)

// AuthLogEntry, güvenlik denetimi için append-only auth event kaydı.
//
// UserID nullable'dır: başarısız login'de (bilinmeyen kullanıcı)
// hangi kullanıcıya ait olduğu bilinmez.
// Kayıtlar ASLA güncellenmez veya silinmez — salt eklenir.
type AuthLogEntry struct {
	ID        string    `json:"id"`
	UserID    *string   `json:"user_id"`
	Action    string    `json:"action"`
	Status    string    `json:"status"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	Details   *string   `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}
