package services

import (
	"context"
	"log"

	"github.com/akinalp/kimlik/models"
	"github.com/akinalp/kimlik/repository"
)

// AuditPublisher, kaydedilen auth olaylarını canlı dinleyicilere
// (websocket hub) iletir. Audit servisi hub'ı doğrudan tanımaz —
// interface sayesinde test'te no-op verilebilir.
type AuditPublisher interface {
	Publish(entry *models.AuthLogEntry)
}

// AuditService, kimlik doğrulama olaylarının audit kaydı.
//
// EN ÖNEMLİ KURAL: audit yazımı BEST-EFFORT'tur.
// Login başarılı olduysa audit DB'si çökse bile kullanıcı token'larını alır.
// Record hiçbir zaman error döndürmez — hatayı loglar ve yutar.
type AuditService interface {
	Record(ctx context.Context, entry *models.AuthLogEntry)
	ListRecent(ctx context.Context, limit int) ([]models.AuthLogEntry, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]models.AuthLogEntry, error)
}

type auditService struct {
	repo      repository.AuthLogRepository
	publisher AuditPublisher
}

// NewAuditService, constructor. publisher nil olabilir (test'ler, CLI araçları).
func NewAuditService(repo repository.AuthLogRepository, publisher AuditPublisher) AuditService {
	return &auditService{repo: repo, publisher: publisher}
}

func (s *auditService) Record(ctx context.Context, entry *models.AuthLogEntry) {
	if err := s.repo.Create(ctx, entry); err != nil {
		// Audit hatası ana akışı asla bozmaz.
		log.Printf("[audit] UYARI: audit kaydı yazılamadı (action=%s): %v", entry.Action, err)
		return
	}

	if s.publisher != nil {
		s.publisher.Publish(entry)
	}
}

func (s *auditService) ListRecent(ctx context.Context, limit int) ([]models.AuthLogEntry, error) {
	return s.repo.ListRecent(ctx, limit)
}

func (s *auditService) ListByUser(ctx context.Context, userID string, limit int) ([]models.AuthLogEntry, error) {
	return s.repo.ListByUser(ctx, userID, limit)
}
