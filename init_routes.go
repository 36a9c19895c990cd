// Package main — HTTP route tanımları.
package main

import (
	"fmt"
	"net/http"

	"github.com/akinalp/kimlik/handlers"
	"github.com/akinalp/kimlik/middleware"
	"github.com/akinalp/kimlik/models"
	"github.com/akinalp/kimlik/pkg/ratelimit"
	"github.com/akinalp/kimlik/ws"
)

// initRoutes, tüm HTTP route'larını kurar ve mux döner.
//
// Go 1.22+ method pattern'leri kullanılır: "POST /api/auth/login" gibi
// pattern'ler hem method hem path eşleştirir — ayrı router kütüphanesine
// gerek kalmaz.
func initRoutes(svcs *Services, loginLimiter *ratelimit.LoginRateLimiter, hub *ws.Hub) *http.ServeMux {
	authHandler := handlers.NewAuthHandler(svcs.Auth, loginLimiter)
	adminHandler := handlers.NewAdminHandler(svcs.Token, svcs.Audit)
	wsHandler := ws.NewHandler(hub, svcs.Token)

	authMw := middleware.NewAuthMiddleware(svcs.Token)
	roleMw := middleware.NewRoleMiddleware()
	adminOnly := roleMw.Require(models.RoleAdmin)

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","service":"kimlik"}`)
	})

	// Auth — public endpoint'ler (token gerekmez)
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/refresh", authHandler.Refresh)
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("POST /api/auth/forgot-password", authHandler.ForgotPassword)
	mux.HandleFunc("POST /api/auth/reset-password", authHandler.ResetPassword)

	// Protected endpoint'ler — authMw.Require() sarar
	mux.Handle("POST /api/auth/revoke-all", authMw.Require(http.HandlerFunc(authHandler.RevokeAllSessions)))
	mux.Handle("GET /api/users/me", authMw.Require(http.HandlerFunc(authHandler.Me)))

	// Admin endpoint'leri — auth + admin rol zinciri
	mux.Handle("GET /api/admin/token-settings", authMw.Require(
		adminOnly(http.HandlerFunc(adminHandler.GetTokenSettings))))
	mux.Handle("PUT /api/admin/token-settings", authMw.Require(
		adminOnly(http.HandlerFunc(adminHandler.UpdateTokenSettings))))
	mux.Handle("GET /api/admin/auth-logs", authMw.Require(
		adminOnly(http.HandlerFunc(adminHandler.ListAuthLogs))))

	// WebSocket — canlı auth event feed (admin-only).
	//
	// Neden auth middleware kullanmıyoruz?
	// WebSocket upgrade sırasında tarayıcılar custom HTTP header gönderemez.
	// Token query parameter olarak gönderilir, rol kontrolü handler içindedir:
	//   ws://server/ws/auth-events?token=JWT_TOKEN
	mux.HandleFunc("GET /ws/auth-events", wsHandler.HandleConnection)

	return mux
}
