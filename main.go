// Package main, kimlik servisinin giriş noktasıdır.
//
// Bu dosyanın görevi — Dependency Injection "wire-up":
//  1. Config'i yükle
//  2. Database'i başlat (embedded migration'lar ile)
//  3. Repository'leri oluştur (init_repos.go)
//  4. WebSocket Hub'ı başlat
//  5. Service'leri oluştur (init_services.go)
//  6. Login rate limiter'ı ve session sweeper'ı başlat
//  7. Route'ları kur (init_routes.go), CORS yapılandır
//  8. HTTP Server'ı başlat
//  9. Graceful shutdown
//
// Global değişken YOK — her şey bu fonksiyonda oluşturulup birbirine bağlanıyor.
package main

import (
	"context"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akinalp/kimlik/config"
	"github.com/akinalp/kimlik/database"
	"github.com/akinalp/kimlik/pkg/ratelimit"
	"github.com/akinalp/kimlik/services"
	"github.com/akinalp/kimlik/ws"
	"github.com/rs/cors"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("[main] kimlik server starting...")

	// ─── 1. Config ───
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] failed to load config: %v", err)
	}
	log.Printf("[main] config loaded (port=%d)", cfg.Server.Port)

	// ─── 2. Database ───
	// Migration'lar binary'ye gömülüdür (go:embed) — çalışma dizininden
	// bağımsız, tek dosya deploy edilebilir.
	migrationsFS, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	if err != nil {
		log.Fatalf("[main] failed to load embedded migrations: %v", err)
	}

	db, err := database.New(cfg.Database.Path, migrationsFS)
	if err != nil {
		log.Fatalf("[main] failed to initialize database: %v", err)
	}
	defer db.Close()

	// ─── 3. Repository Layer ───
	repos := initRepositories(db.Conn)

	// ─── 4. WebSocket Hub ───
	// Hub, canlı auth event feed'inin merkezi yapısıdır.
	// `go hub.Run()` ayrı bir goroutine'de event loop başlatır.
	hub := ws.NewHub()
	go hub.Run()

	// ─── 5. Service Layer ───
	svcs := initServices(cfg, repos, hub)

	// ─── 6. Rate limiter + Sweeper ───
	loginLimiter := ratelimit.NewLoginRateLimiter(
		cfg.RateLimit.LoginMaxAttempts,
		time.Duration(cfg.RateLimit.LoginWindowMinute)*time.Minute,
	)

	sweeper := services.NewSweeper(repos.Session, repos.ResetToken, time.Hour)
	sweeper.Start()

	// ─── 7. Router + CORS ───
	mux := initRoutes(svcs, loginLimiter, hub)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		Debug:            false,
	})

	handler := corsHandler.Handler(mux)

	// ─── 8. HTTP Server ───
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ─── 9. Graceful Shutdown ───
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("[main] server listening on %s", cfg.Server.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	<-done
	log.Println("[main] shutting down...")

	// Önce arka plan işçilerini durdur, sonra WebSocket bağlantılarını kapat,
	// en son HTTP server'ı kapat — mevcut request'lerin bitmesini bekler.
	sweeper.Stop()
	loginLimiter.Stop()
	hub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("[main] forced shutdown: %v", err)
	}

	log.Println("[main] server stopped gracefully")
}
