// Package main — Service katmanı başlatma.
package main

import (
	"log"

	"github.com/akinalp/kimlik/config"
	"github.com/akinalp/kimlik/pkg/email"
	"github.com/akinalp/kimlik/services"
	"github.com/akinalp/kimlik/ws"
)

// Services, tüm service instance'larını tutan container struct.
type Services struct {
	Token services.TokenService
	Auth  services.AuthService
	Audit services.AuditService
}

// initServices, repository'lerden ve config'ten tüm service'leri oluşturur.
//
// hub, auth event'lerinin canlı dağıtımı için AuditService'e
// services.AuditPublisher olarak verilir (Dependency Inversion —
// services paketi ws paketini import etmez).
func initServices(cfg *config.Config, repos *Repositories, hub *ws.Hub) *Services {
	tokenService := services.NewTokenService(
		repos.User,
		repos.Session,
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)

	auditService := services.NewAuditService(repos.AuthLog, hub)

	// Email: üç ayar birden doluysa Resend aktiftir, eksikse şifre
	// sıfırlama emaili gönderilmez (sadece loglanır).
	var sender email.EmailSender
	if cfg.Email.ResendAPIKey != "" && cfg.Email.FromEmail != "" && cfg.Email.AppURL != "" {
		sender = email.NewResendSender(cfg.Email.ResendAPIKey, cfg.Email.FromEmail, cfg.Email.AppURL)
		log.Println("[main] email sender configured (resend)")
	} else {
		log.Println("[main] email sender not configured — password reset emails disabled")
	}

	authService := services.NewAuthService(
		repos.User,
		repos.ResetToken,
		tokenService,
		auditService,
		sender,
	)

	return &Services{
		Token: tokenService,
		Auth:  authService,
		Audit: auditService,
	}
}
