package models

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims, access token'ın içindeki veriler (payload).
//
// JWT (JSON Web Token) nedir?
// Kullanıcı kimliğini doğrulamak için kullanılan, imzalanmış bir token.
// 3 parçadan oluşur: header.payload.signature
//
// Access token stateless doğrulanır — server her request'te imzayı kontrol
// eder, DB'ye gitmeden kullanıcının kim olduğunu ve rolünü bilir.
//
// Bu struct models paketinde tanımlanır çünkü birden fazla katman
// (services, middleware, handlers, ws) tarafından kullanılır —
// her katman models'e bağımlı olabilir, circular dependency oluşmaz.
type AccessClaims struct {
	UserID   string   `json:"user_id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Role     UserRole `json:"role"`
	jwt.RegisteredClaims
}

// RefreshClaims, refresh token'ın payload'ı.
// Access token'dan farklı olarak kullanıcı bilgisi taşımaz —
// sadece sahibi ve yüksek entropili benzersiz token ID'si.
type RefreshClaims struct {
	UserID  string `json:"user_id"`
	TokenID string `json:"token_id"`
	jwt.RegisteredClaims
}

// TokenSettings, token üretim ayarları — process genelinde geçerli,
// admin tarafından runtime'da değiştirilebilir.
//
// Değişiklik ANINDA etkili olur ama sadece SONRAKİ token'lar için:
// halihazırda verilmiş token'ların süresi geriye dönük değişmez.
type TokenSettings struct {
	AccessTokenExpiration  int  `json:"accessTokenExpiration"`  // saniye
	RefreshTokenExpiration int  `json:"refreshTokenExpiration"` // saniye
	RotateOnUse            bool `json:"rotateOnUse"`
}

// Validate, TokenSettings'in geçerli olup olmadığını kontrol eder.
func (s *TokenSettings) Validate() error {
	if s.AccessTokenExpiration <= 0 {
		return fmt.Errorf("accessTokenExpiration must be a positive integer")
	}
	if s.RefreshTokenExpiration <= 0 {
		return fmt.Errorf("refreshTokenExpiration must be a positive integer")
	}
	return nil
}

// TokenPair, login/register/refresh sonrası dönen token çifti.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
