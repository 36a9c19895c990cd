// Package repository — SessionRepository interface tanımı.
//
// Refresh token oturumlarının yaşam döngüsünü soyutlar:
// oluşturma, canlılık filtreli lookup, revoke, rotation ve süresi
// dolmuş kayıtların temizliği.
package repository

import (
	"context"
	"time"

	"github.com/akinalp/kimlik/models"
)

// SessionRepository, refresh token oturumları için interface.
type SessionRepository interface {
	// Create, yeni bir oturum kaydı ekler.
	// refresh_token üzerinde UNIQUE constraint vardır — aynı kullanıcının
	// eşzamanlı multi-device login'leri çakışmaz (user_id unique DEĞİL).
	Create(ctx context.Context, session *models.Session) error

	// GetLiveByToken, token değerine göre CANLI oturumu bulur.
	// Canlılık filtresi: revoked_at IS NULL AND expires_at > now.
	// Revoke edilmiş veya süresi dolmuş oturum pkg.ErrNotFound döner —
	// çağıran taraf ikisini ayırt edemez, ikisi de "geçersiz"dir.
	GetLiveByToken(ctx context.Context, token string, now time.Time) (*models.Session, error)

	// Rotate, eski oturumu revoke edip yerine yenisini ekler — ATOMİK.
	//
	// Bu, tüm alt sistemin en kritik doğruluk noktasıdır:
	// Revoke koşullu bir UPDATE'tir ("sadece hâlâ canlıysa revoke et").
	// Aynı token'la yarışan iki Rotate çağrısından yalnızca biri kazanır;
	// kaybeden pkg.ErrNotFound alır ve HİÇBİR yeni oturum bırakmaz
	// (transaction rollback). replaced_by_token yeni token'ı işaret eder —
	// rotation zinciri, revoke edilmiş token replay'ini görünür kılar.
	Rotate(ctx context.Context, oldToken string, newSession *models.Session) error

	// Revoke, token'a karşılık gelen oturumu revoke eder.
	// Idempotent: zaten revoke edilmiş veya hiç var olmamış token hata değildir.
	Revoke(ctx context.Context, token string) error

	// RevokeAllByUser, kullanıcının TÜM canlı oturumlarını revoke eder
	// ("log out everywhere").
	RevokeAllByUser(ctx context.Context, userID string) error

	// DeleteExpired, süresi dolmuş ve revoke EDİLMEMİŞ kayıtları siler,
	// silinen satır sayısını döner. Revoke edilmiş kayıtlar audit/rotation
	// zinciri için tutulur.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
