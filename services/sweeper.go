package services

import (
	"context"
	"log"
	"time"

	"github.com/akinalp/kimlik/repository"
)

// Sweeper, süresi dolmuş kayıtları periyodik olarak temizler.
//
// Neden gerekli?
// SQLite'ta TTL yoktur — süresi dolan session ve reset token satırları
// kendiliğinden silinmez. Sorgu filtreleri (expires_at > ?) onları zaten
// görünmez kılar, sweep sadece disk temizliğidir; doğruluk sweep'e bağlı
// DEĞİLDİR.
//
// Revoke edilmiş satırlar SİLİNMEZ: rotation zinciri (replaced_by_token)
// audit incelemesinde token hırsızlığını izlemek için saklanır.
type Sweeper struct {
	sessionRepo repository.SessionRepository
	resetRepo   repository.PasswordResetRepository
	interval    time.Duration
	stop        chan struct{}
	done        chan struct{}
}

// NewSweeper, constructor. interval <= 0 ise saatte bir çalışır.
func NewSweeper(sessionRepo repository.SessionRepository, resetRepo repository.PasswordResetRepository, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{
		sessionRepo: sessionRepo,
		resetRepo:   resetRepo,
		interval:    interval,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Start, arka plan temizlik goroutine'ini başlatır.
// İlk sweep hemen yapılır, sonrakiler interval aralıklarla.
func (s *Sweeper) Start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.sweep()
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop, sweeper'ı durdurur ve çalışan sweep'in bitmesini bekler.
func (s *Sweeper) Stop() {
	close(s.stop)
	<-s.done
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now()

	deleted, err := s.sessionRepo.DeleteExpired(ctx, now)
	if err != nil {
		log.Printf("[sweeper] UYARI: süresi dolmuş session'lar silinemedi: %v", err)
	} else if deleted > 0 {
		log.Printf("[sweeper] %d süresi dolmuş session silindi", deleted)
	}

	if err := s.resetRepo.DeleteExpired(ctx, now); err != nil {
		log.Printf("[sweeper] UYARI: süresi dolmuş reset token'lar silinemedi: %v", err)
	}
}
