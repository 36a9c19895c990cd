// Package services, business logic katmanını barındırır.
//
// Service Layer Pattern nedir?
// Handler (HTTP) ile Repository (DB) arasında oturan katmandır.
// Tüm iş kuralları burada yaşar:
//   - Token üretimi/doğrulaması/rotation'ı
//   - Şifre hash'leme ve hesap durumu kontrolleri
//   - Audit kayıtları
//
// Service ASLA http.Request/Response bilmez — sadece domain modelleri alır/verir.
// Service ASLA doğrudan SQL çalıştırmaz — Repository interface'i kullanır.
package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/akinalp/kimlik/models"
	"github.com/akinalp/kimlik/pkg"
	"github.com/akinalp/kimlik/repository"
	"github.com/golang-jwt/jwt/v5"
)

// Varsayılan token ayarları.
const (
	defaultAccessExpiration  = 30 * 60          // 30 dakika, saniye
	defaultRefreshExpiration = 7 * 24 * 60 * 60 // 7 gün, saniye
)

// refreshTokenIDBytes, refresh token ID'sinin entropi miktarı.
// 40 byte = 320 bit — brute-force ile tahmin edilemez.
const refreshTokenIDBytes = 40

// TokenService interface'i — token yaşam döngüsünün tamamı.
//
// Refresh token state machine:
//
//	Issued → (verified | expired | revoked) → {rotated-away | revoked}
//
// expired ve revoked terminal durumlardır — geri dönüş yoktur.
type TokenService interface {
	// IssueAccessToken, stateless bir access token üretir — DB'ye yazmaz.
	IssueAccessToken(user *models.User) (string, error)

	// IssueRefreshToken, yeni bir refresh token üretir ve Session olarak persist eder.
	IssueRefreshToken(ctx context.Context, user *models.User, userAgent, ipAddress string) (string, error)

	// VerifyAccessToken, imza+expiry kontrolü yapar. Store lookup YOK —
	// access token'lar kısa ömürlüdür, her request'te DB'ye gitmek gereksiz.
	// Başarısızlıkta (nil, error) döner — çağıran nil claims'i asla
	// "geçerli" sanamaz.
	VerifyAccessToken(tokenString string) (*models.AccessClaims, error)

	// VerifyRefreshToken, imza+expiry kontrolü yapar. Token'ın revoke
	// edilmediğini TEK BAŞINA garanti etmez — o Session Store lookup'ı ister.
	VerifyRefreshToken(tokenString string) (*models.RefreshClaims, error)

	// Refresh, refresh token'ı doğrular ve yeni token çifti üretir.
	// RotateOnUse açıksa eski oturum revoke edilip yenisiyle değiştirilir;
	// kapalıysa aynı refresh token geri döner.
	// Her başarısızlık modu (imza, expiry, revoke, replay, kullanıcı yok)
	// aynı pkg.ErrUnauthorized ile döner — saldırgana ayrım sızdırılmaz.
	Refresh(ctx context.Context, refreshToken, userAgent, ipAddress string) (*models.TokenPair, error)

	// Revoke, refresh token'ın oturumunu iptal eder. Idempotent.
	Revoke(ctx context.Context, refreshToken string) error

	// RevokeAll, kullanıcının tüm canlı oturumlarını iptal eder.
	RevokeAll(ctx context.Context, userID string) error

	// Settings / UpdateSettings — process genelinde token ayarları.
	// Değişiklik anında etkili olur ama verilmiş token'ları etkilemez.
	Settings() models.TokenSettings
	UpdateSettings(settings models.TokenSettings)
}

// tokenService, TokenService interface'inin implementasyonu.
//
// Key separation: accessSecret ve refreshSecret AYRI anahtarlardır.
// Refresh secret sızarsa access token forge edilemez, tersi de geçerli.
//
// settings mutable'dır ve RWMutex ile korunur: admin güncellemesi ile
// eşzamanlı token üretimi yarışabilir. Last-writer-wins yeterli —
// ayar değişikliği nadirdir, uçuştaki istek eski değerle tamamlanabilir.
type tokenService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository

	accessSecret  []byte
	refreshSecret []byte

	mu       sync.RWMutex
	settings models.TokenSettings

	// now, test'lerde zamanı kontrol edebilmek için inject edilebilir.
	now func() time.Time
}

// NewTokenService, constructor.
func NewTokenService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	accessSecret, refreshSecret string,
	accessExpirySeconds, refreshExpirySeconds int,
) TokenService {
	if accessExpirySeconds <= 0 {
		accessExpirySeconds = defaultAccessExpiration
	}
	if refreshExpirySeconds <= 0 {
		refreshExpirySeconds = defaultRefreshExpiration
	}

	return &tokenService{
		userRepo:      userRepo,
		sessionRepo:   sessionRepo,
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		settings: models.TokenSettings{
			AccessTokenExpiration:  accessExpirySeconds,
			RefreshTokenExpiration: refreshExpirySeconds,
			RotateOnUse:            true,
		},
		now: time.Now,
	}
}

func (s *tokenService) IssueAccessToken(user *models.User) (string, error) {
	now := s.now()
	expiry := time.Duration(s.Settings().AccessTokenExpiration) * time.Second

	claims := &models.AccessClaims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "kimlik",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.accessSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return signed, nil
}

func (s *tokenService) IssueRefreshToken(ctx context.Context, user *models.User, userAgent, ipAddress string) (string, error) {
	signed, session, err := s.buildRefreshToken(user, userAgent, ipAddress)
	if err != nil {
		return "", err
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return "", fmt.Errorf("failed to persist session: %w", err)
	}

	return signed, nil
}

// buildRefreshToken, imzalı refresh token'ı ve persist edilmemiş Session
// kaydını üretir. IssueRefreshToken bunu Create ile, Refresh rotation'ı
// Rotate ile persist eder.
func (s *tokenService) buildRefreshToken(user *models.User, userAgent, ipAddress string) (string, *models.Session, error) {
	idBytes := make([]byte, refreshTokenIDBytes)
	if _, err := rand.Read(idBytes); err != nil {
		return "", nil, fmt.Errorf("failed to generate refresh token id: %w", err)
	}

	now := s.now()
	expiry := time.Duration(s.Settings().RefreshTokenExpiration) * time.Second
	expiresAt := now.Add(expiry)

	claims := &models.RefreshClaims{
		UserID:  user.ID,
		TokenID: hex.EncodeToString(idBytes),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "kimlik",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.refreshSecret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	// İmzalı JWT string'in kendisi Session'ın lookup anahtarıdır.
	session := &models.Session{
		UserID:       user.ID,
		RefreshToken: signed,
		UserAgent:    userAgent,
		IPAddress:    ipAddress,
		ExpiresAt:    expiresAt,
	}

	return signed, session, nil
}

func (s *tokenService) VerifyAccessToken(tokenString string) (*models.AccessClaims, error) {
	claims := &models.AccessClaims{}
	if err := s.verify(tokenString, claims, s.accessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *tokenService) VerifyRefreshToken(tokenString string) (*models.RefreshClaims, error) {
	claims := &models.RefreshClaims{}
	if err := s.verify(tokenString, claims, s.refreshSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// verify, iki token türünün ortak imza+expiry doğrulaması.
func (s *tokenService) verify(tokenString string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		// Algorithm confusion saldırısı engeli: sadece HMAC kabul et.
		// "alg: none" veya RS256 ile gelen token'lar burada reddedilir.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithTimeFunc(s.now))

	if err != nil {
		return fmt.Errorf("%w: invalid or expired token", pkg.ErrUnauthorized)
	}
	if !token.Valid {
		return fmt.Errorf("%w: invalid token claims", pkg.ErrUnauthorized)
	}

	return nil
}

// Refresh — alt sistemin en riskli yolu.
//
// Buradaki bir hata ya rotation sonrası token replay'ine izin verir
// (güvenlik açığı) ya da geçerli bir oturumu erken düşürür (availability bug).
// Sıralama:
//
//	1. İmza/expiry doğrula
//	2. Session Store'da CANLI kaydı bul (revoke/replay/expiry tek noktada elenır)
//	3. Sahip kullanıcıyı yükle
//	4. Yeni access token üret
//	5. RotateOnUse ise: atomik revoke-and-insert (yarışan ikinci çağrı kaybeder)
func (s *tokenService) Refresh(ctx context.Context, refreshToken, userAgent, ipAddress string) (*models.TokenPair, error) {
	claims, err := s.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	session, err := s.sessionRepo.GetLiveByToken(ctx, refreshToken, s.now())
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid or expired refresh token", pkg.ErrUnauthorized)
		}
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid or expired refresh token", pkg.ErrUnauthorized)
		}
		return nil, err
	}

	accessToken, err := s.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}

	if !s.Settings().RotateOnUse {
		// Rotation kapalı — aynı refresh token geçerliliğini korur.
		return &models.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
	}

	newSigned, newSession, err := s.buildRefreshToken(user, userAgent, ipAddress)
	if err != nil {
		return nil, err
	}

	if err := s.sessionRepo.Rotate(ctx, session.RefreshToken, newSession); err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			// Yarış kaybedildi: başka bir çağrı bizden önce rotate etti.
			// Fail closed — iki yarışçıdan yalnızca biri yeni oturum alır.
			return nil, fmt.Errorf("%w: invalid or expired refresh token", pkg.ErrUnauthorized)
		}
		return nil, err
	}

	return &models.TokenPair{AccessToken: accessToken, RefreshToken: newSigned}, nil
}

func (s *tokenService) Revoke(ctx context.Context, refreshToken string) error {
	return s.sessionRepo.Revoke(ctx, refreshToken)
}

func (s *tokenService) RevokeAll(ctx context.Context, userID string) error {
	return s.sessionRepo.RevokeAllByUser(ctx, userID)
}

func (s *tokenService) Settings() models.TokenSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

func (s *tokenService) UpdateSettings(settings models.TokenSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
}
