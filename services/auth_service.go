package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/akinalp/kimlik/models"
	"github.com/akinalp/kimlik/pkg"
	"github.com/akinalp/kimlik/pkg/email"
	"github.com/akinalp/kimlik/pkg/password"
	"github.com/akinalp/kimlik/repository"
)

// invalidCredentialsMsg — "kullanıcı yok" ile "şifre yanlış" AYNI mesajla
// döner. Farklı mesajlar saldırgana hangi kullanıcı adlarının var olduğunu
// söyler (user enumeration).
const invalidCredentialsMsg = "invalid username or password"

// Şifre sıfırlama sabitleri.
const (
	resetTokenBytes    = 32
	resetTokenExpiry   = 20 * time.Minute
	resetEmailCooldown = 90 * time.Second
)

// AuthResult, başarılı login/register'ın döndürdüğü paket:
// kullanıcı bilgisi + token çifti.
type AuthResult struct {
	User   *models.User      `json:"user"`
	Tokens *models.TokenPair `json:"tokens"`
}

// AuthService, kimlik doğrulama iş mantığı.
type AuthService interface {
	// Register, yeni kullanıcı kaydeder ve token çifti üretir.
	Register(ctx context.Context, req *models.CreateUserRequest, userAgent, ipAddress string) (*AuthResult, error)

	// Login, kimlik bilgilerini doğrular ve token çifti üretir.
	// Başarısızlık modları: pkg.ErrUnauthorized (bilinmeyen kullanıcı VE
	// yanlış şifre — ayırt edilemez), pkg.ErrAccountNotActive (pending/locked).
	Login(ctx context.Context, req *models.LoginRequest, userAgent, ipAddress string) (*AuthResult, error)

	// Refresh, refresh token'ı yeni token çiftiyle değiştirir.
	// TokenService.Refresh'in audit kayıtlı sarmalayıcısıdır.
	Refresh(ctx context.Context, refreshToken, userAgent, ipAddress string) (*models.TokenPair, error)

	// Logout, refresh token'ın oturumunu revoke eder. Idempotent:
	// zaten revoke edilmiş veya hiç var olmamış token için de başarılı döner.
	Logout(ctx context.Context, refreshToken, userAgent, ipAddress string) error

	// RevokeAllSessions, kullanıcının tüm canlı oturumlarını düşürür
	// ("beni her yerden çıkar").
	RevokeAllSessions(ctx context.Context, userID, userAgent, ipAddress string) error

	// GetUser, kullanıcıyı ID ile döner (GET /api/users/me).
	GetUser(ctx context.Context, userID string) (*models.User, error)

	// ForgotPassword, şifre sıfırlama emaili gönderir. Email'in kayıtlı
	// olup olmadığını SIZDIRMAZ — her durumda nil döner (rate limit hariç).
	ForgotPassword(ctx context.Context, req *models.ForgotPasswordRequest, userAgent, ipAddress string) error

	// ResetPassword, tek kullanımlık token ile şifreyi değiştirir ve
	// kullanıcının TÜM oturumlarını revoke eder.
	ResetPassword(ctx context.Context, req *models.ResetPasswordRequest, userAgent, ipAddress string) error
}

type authService struct {
	userRepo  repository.UserRepository
	resetRepo repository.PasswordResetRepository
	tokenSvc  TokenService
	audit     AuditService
	sender    email.EmailSender

	now func() time.Time
}

// NewAuthService, constructor. sender nil olabilir — o durumda şifre
// sıfırlama emaili sadece loglanır (lokal geliştirme).
func NewAuthService(
	userRepo repository.UserRepository,
	resetRepo repository.PasswordResetRepository,
	tokenSvc TokenService,
	audit AuditService,
	sender email.EmailSender,
) AuthService {
	return &authService{
		userRepo:  userRepo,
		resetRepo: resetRepo,
		tokenSvc:  tokenSvc,
		audit:     audit,
		sender:    sender,
		now:       time.Now,
	}
}

func (s *authService) Register(ctx context.Context, req *models.CreateUserRequest, userAgent, ipAddress string) (*AuthResult, error) {
	// ValidationError olduğu gibi döner — alan bazlı detaylar handler'ın
	// JSON zarfına kadar taşınmalı. Sarmalanırsa detaylar string'e düzleşir.
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		Status:       models.UserStatusActive,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// ErrAlreadyExists mesajı (hangi alanın çakıştığı) handler'a
		// olduğu gibi gider — kayıt formunda bu bilgi kullanıcıya lazım.
		return nil, err
	}

	tokens, err := s.issueTokenPair(ctx, user, userAgent, ipAddress)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, &models.AuthLogEntry{
		UserID:    &user.ID,
		Action:    models.AuthActionRegister,
		Status:    models.AuthStatusSuccess,
		IPAddress: ipAddress,
		UserAgent: userAgent,
	})

	return &AuthResult{User: user, Tokens: tokens}, nil
}

func (s *authService) Login(ctx context.Context, req *models.LoginRequest, userAgent, ipAddress string) (*AuthResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			s.recordLoginFailure(ctx, nil, userAgent, ipAddress, "unknown username")
			return nil, fmt.Errorf("%w: %s", pkg.ErrUnauthorized, invalidCredentialsMsg)
		}
		return nil, err
	}

	if !password.Verify(req.Password, user.PasswordHash) {
		s.recordLoginFailure(ctx, &user.ID, userAgent, ipAddress, "wrong password")
		return nil, fmt.Errorf("%w: %s", pkg.ErrUnauthorized, invalidCredentialsMsg)
	}

	// Şifre DOĞRU olsa bile aktif olmayan hesap giremez.
	// Bu kontrol şifre kontrolünden SONRA gelir — şifresi yanlış olan biri
	// hesabın kilitli olduğunu öğrenmemeli.
	if user.Status != models.UserStatusActive {
		detail := "account is " + string(user.Status)
		s.recordLoginFailure(ctx, &user.ID, userAgent, ipAddress, detail)
		switch user.Status {
		case models.UserStatusLocked:
			return nil, fmt.Errorf("%w: your account is locked", pkg.ErrAccountNotActive)
		default:
			return nil, fmt.Errorf("%w: your account is pending activation", pkg.ErrAccountNotActive)
		}
	}

	// Session persist edilemezse login BAŞARISIZ sayılır — revoke
	// edilemeyecek yarım oturumlar dağıtılmaz.
	tokens, err := s.issueTokenPair(ctx, user, userAgent, ipAddress)
	if err != nil {
		return nil, err
	}

	// last_login best-effort — güncellenemezse login yine başarılıdır.
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		log.Printf("[auth] UYARI: last_login güncellenemedi (user=%s): %v", user.ID, err)
	}

	s.audit.Record(ctx, &models.AuthLogEntry{
		UserID:    &user.ID,
		Action:    models.AuthActionLogin,
		Status:    models.AuthStatusSuccess,
		IPAddress: ipAddress,
		UserAgent: userAgent,
	})

	return &AuthResult{User: user, Tokens: tokens}, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken, userAgent, ipAddress string) (*models.TokenPair, error) {
	tokens, err := s.tokenSvc.Refresh(ctx, refreshToken, userAgent, ipAddress)
	if err != nil {
		// Başarısız refresh denemesi güvenlik açısından ilginçtir —
		// revoke edilmiş token replay'i burada görünür olur.
		var userID *string
		if claims, verifyErr := s.tokenSvc.VerifyRefreshToken(refreshToken); verifyErr == nil {
			userID = &claims.UserID
		}
		detail := "refresh rejected"
		s.audit.Record(ctx, &models.AuthLogEntry{
			UserID:    userID,
			Action:    models.AuthActionRefresh,
			Status:    models.AuthStatusFailure,
			IPAddress: ipAddress,
			UserAgent: userAgent,
			Details:   &detail,
		})
		return nil, err
	}

	var userID *string
	if claims, verifyErr := s.tokenSvc.VerifyRefreshToken(tokens.RefreshToken); verifyErr == nil {
		userID = &claims.UserID
	}
	s.audit.Record(ctx, &models.AuthLogEntry{
		UserID:    userID,
		Action:    models.AuthActionRefresh,
		Status:    models.AuthStatusSuccess,
		IPAddress: ipAddress,
		UserAgent: userAgent,
	})

	return tokens, nil
}

func (s *authService) Logout(ctx context.Context, refreshToken, userAgent, ipAddress string) error {
	if err := s.tokenSvc.Revoke(ctx, refreshToken); err != nil {
		return err
	}

	// userID'yi token'dan çıkarmaya çalış — imza bozuksa bile logout
	// başarılıdır, kayıt sadece anonim düşer.
	var userID *string
	if claims, err := s.tokenSvc.VerifyRefreshToken(refreshToken); err == nil {
		userID = &claims.UserID
	}

	s.audit.Record(ctx, &models.AuthLogEntry{
		UserID:    userID,
		Action:    models.AuthActionLogout,
		Status:    models.AuthStatusSuccess,
		IPAddress: ipAddress,
		UserAgent: userAgent,
	})

	return nil
}

func (s *authService) RevokeAllSessions(ctx context.Context, userID, userAgent, ipAddress string) error {
	if err := s.tokenSvc.RevokeAll(ctx, userID); err != nil {
		return err
	}

	s.audit.Record(ctx, &models.AuthLogEntry{
		UserID:    &userID,
		Action:    models.AuthActionRevokeAll,
		Status:    models.AuthStatusSuccess,
		IPAddress: ipAddress,
		UserAgent: userAgent,
	})

	return nil
}

func (s *authService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *authService) ForgotPassword(ctx context.Context, req *models.ForgotPasswordRequest, userAgent, ipAddress string) error {
	if err := req.Validate(); err != nil {
		return err
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			// Email kayıtlı değil — sessizce başarılı dön (enumeration engeli).
			return nil
		}
		return err
	}

	// Cooldown: aynı kullanıcıya 90 saniyede birden fazla email gitmez.
	if latest, err := s.resetRepo.GetLatestByUserID(ctx, user.ID); err == nil {
		if s.now().Sub(latest.CreatedAt) < resetEmailCooldown {
			return fmt.Errorf("%w: a reset email was sent recently, please wait before retrying", pkg.ErrRateLimited)
		}
	}

	tokenBytes := make([]byte, resetTokenBytes)
	if _, err := rand.Read(tokenBytes); err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	rawToken := hex.EncodeToString(tokenBytes)

	// DB'de ham token DEĞİL, SHA-256 hash'i saklanır.
	// DB sızsa bile saldırgan sıfırlama linki üretemez.
	tokenHash := sha256.Sum256([]byte(rawToken))

	// Eski token'lar temizlenir — kullanıcı başına tek aktif token.
	if err := s.resetRepo.DeleteByUserID(ctx, user.ID); err != nil {
		return err
	}

	resetToken := &models.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: hex.EncodeToString(tokenHash[:]),
		ExpiresAt: s.now().Add(resetTokenExpiry),
	}
	if err := s.resetRepo.Create(ctx, resetToken); err != nil {
		return err
	}

	if s.sender == nil {
		log.Printf("[auth] email sender yapılandırılmamış, reset token loglanıyor (user=%s)", user.ID)
	} else if err := s.sender.SendPasswordReset(ctx, user.Email, rawToken); err != nil {
		// Email hatası da dışarı sızdırılmaz — generic başarı döner.
		log.Printf("[auth] UYARI: şifre sıfırlama emaili gönderilemedi (user=%s): %v", user.ID, err)
	}

	s.audit.Record(ctx, &models.AuthLogEntry{
		UserID:    &user.ID,
		Action:    models.AuthActionPwdForgot,
		Status:    models.AuthStatusSuccess,
		IPAddress: ipAddress,
		UserAgent: userAgent,
	})

	return nil
}

func (s *authService) ResetPassword(ctx context.Context, req *models.ResetPasswordRequest, userAgent, ipAddress string) error {
	if err := req.Validate(); err != nil {
		return err
	}

	tokenHash := sha256.Sum256([]byte(req.Token))
	resetToken, err := s.resetRepo.GetByTokenHash(ctx, hex.EncodeToString(tokenHash[:]))
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return fmt.Errorf("%w: invalid or expired reset token", pkg.ErrUnauthorized)
		}
		return err
	}

	if s.now().After(resetToken.ExpiresAt) {
		return fmt.Errorf("%w: invalid or expired reset token", pkg.ErrUnauthorized)
	}

	hash, err := password.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, resetToken.UserID, hash); err != nil {
		return err
	}

	// Şifre değişti → mevcut TÜM oturumlar güvensiz sayılır ve düşürülür.
	if err := s.tokenSvc.RevokeAll(ctx, resetToken.UserID); err != nil {
		return err
	}

	// Token tek kullanımlıktır — tüketildi, sil.
	if err := s.resetRepo.DeleteByID(ctx, resetToken.ID); err != nil {
		log.Printf("[auth] UYARI: kullanılmış reset token silinemedi (id=%s): %v", resetToken.ID, err)
	}

	s.audit.Record(ctx, &models.AuthLogEntry{
		UserID:    &resetToken.UserID,
		Action:    models.AuthActionPwdReset,
		Status:    models.AuthStatusSuccess,
		IPAddress: ipAddress,
		UserAgent: userAgent,
	})

	return nil
}

// issueTokenPair, access + refresh token çiftini üretir.
func (s *authService) issueTokenPair(ctx context.Context, user *models.User, userAgent, ipAddress string) (*models.TokenPair, error) {
	accessToken, err := s.tokenSvc.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tokenSvc.IssueRefreshToken(ctx, user, userAgent, ipAddress)
	if err != nil {
		return nil, err
	}

	return &models.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// recordLoginFailure, başarısız login denemesini audit'e düşer.
func (s *authService) recordLoginFailure(ctx context.Context, userID *string, userAgent, ipAddress, detail string) {
	s.audit.Record(ctx, &models.AuthLogEntry{
		UserID:    userID,
		Action:    models.AuthActionLogin,
		Status:    models.AuthStatusFailure,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		Details:   &detail,
	})
}
