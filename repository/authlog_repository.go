// Package repository — AuthLogRepository interface tanımı.
//
// auth_logs tablosu append-only'dir: Create dışında yazma operasyonu YOK.
// Listeleme operasyonları admin dashboard'ı besler.
package repository

import (
	"context"

	"github.com/akinalp/kimlik/models"
)

// AuthLogRepository, auth event denetim kayıtları için interface.
type AuthLogRepository interface {
	// Create, yeni bir denetim kaydı ekler.
	Create(ctx context.Context, entry *models.AuthLogEntry) error

	// ListRecent, en yeni kayıtları döner (dashboard için).
	ListRecent(ctx context.Context, limit int) ([]models.AuthLogEntry, error)

	// ListByUser, bir kullanıcının en yeni kayıtlarını döner.
	ListByUser(ctx context.Context, userID string, limit int) ([]models.AuthLogEntry, error)
}
