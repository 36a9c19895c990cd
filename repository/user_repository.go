// Package repository, veritabanı erişim katmanını tanımlar.
//
// Repository Pattern nedir?
// Veritabanı işlemlerini soyutlayan bir tasarım kalıbıdır.
// Service katmanı doğrudan SQL yazmaz — repository interface'i üzerinden çalışır.
//
// Neden interface?
// 1. Test: Fake repository yazarak DB olmadan test edebilirsin
// 2. Esneklik: SQLite'tan PostgreSQL'e geçmek istersen sadece yeni implementasyon yazarsın
// 3. SOLID (Dependency Inversion): Service, concrete struct'a değil interface'e bağımlı
//
// Go'da interface "implicit"tır — bir struct, interface'deki tüm method'ları
// implement ediyorsa otomatik olarak o interface'i sağlar.
package repository

import (
	"context"

	"github.com/akinalp/kimlik/models"
)

// UserRepository, kullanıcı veritabanı işlemleri için interface.
//
// Bu servis kullanıcı yönetiminin sahibi değildir — kimlik doğrulama ve
// token claim'leri için okur. Yazma işlemleri register (Create), şifre
// sıfırlama (UpdatePassword) ve last_login güncellemesiyle sınırlıdır.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// UpdateLastLogin, başarılı login sonrası last_login kolonunu şimdiki zamana çeker.
	UpdateLastLogin(ctx context.Context, userID string) error
	// UpdatePassword, kullanıcının şifre hash'ini günceller (password reset için).
	UpdatePassword(ctx context.Context, userID string, newPasswordHash string) error
}
