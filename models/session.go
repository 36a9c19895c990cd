package models

import "time"

// Session, verilmiş bir refresh token oturumunu temsil eder.
//
// Neden refresh token ayrı tabloda?
// Access token kısa ömürlü — stateless doğrulanır, DB'ye gidilmez.
// Refresh token uzun ömürlü — access token yenilemek için kullanılır.
// Refresh token'ları DB'de tutarak:
//   - Çalınan token'ı iptal edebiliriz (revoke)
//   - Kullanıcının tüm oturumlarını görebiliriz
//   - Rotation zincirini takip edip token replay tespit edebiliriz
//
// Rotation zinciri:
// Refresh kullanıldığında eski oturum revoke edilir ve ReplacedByToken
// yeni token'ı işaret eder. Revoke edilmiş bir token tekrar gelirse
// (saldırgan replay'i) liveness filtresine takılır ve reddedilir.
type Session struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	RefreshToken    string     `json:"-"` // API'ye gönderilmez
	UserAgent       string     `json:"user_agent"`
	IPAddress       string     `json:"ip_address"`
	ExpiresAt       time.Time  `json:"expires_at"`
	CreatedAt       time.Time  `json:"created_at"`
	RevokedAt       *time.Time `json:"revoked_at"`        // nil = hâlâ geçerli
	ReplacedByToken *string    `json:"replaced_by_token"` // rotation zinciri
}

// IsLive, oturumun hâlâ kullanılabilir olup olmadığını döner.
// Invariant: revoke edilmemiş VE süresi dolmamış.
func (s *Session) IsLive(now time.Time) bool {
	return s.RevokedAt == nil && s.ExpiresAt.After(now)
}
