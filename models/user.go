// Package models, uygulamanın domain modellerini (veri yapıları) tanımlar.
//
// Model nedir?
// Veritabanındaki bir tablonun Go karşılığıdır.
// Aynı zamanda API'den gelen/giden verilerin şeklini de belirler.
//
// Go'da `json:"username"` gibi tag'ler, struct field'larının JSON'a
// nasıl serialize/deserialize edileceğini belirler.
package models

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/akinalp/kimlik/pkg"
)

// UserRole, kullanıcının yetki seviyesini temsil eder.
// Go'da enum yoktur, bunun yerine typed constant'lar kullanılır.
type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleModerator UserRole = "moderator"
	RoleUser      UserRole = "user"
)

// Valid, rolün tanımlı üç değerden biri olup olmadığını kontrol eder.
func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleModerator || r == RoleUser
}

// UserStatus, hesabın durumunu temsil eder.
// Sadece "active" hesaplar login olabilir — pending ve locked reddedilir.
type UserStatus string

const (
	UserStatusActive  UserStatus = "active"
	UserStatusPending UserStatus = "pending"
	UserStatusLocked  UserStatus = "locked"
)

// User, bir kullanıcıyı temsil eder.
// Bu servis kullanıcı kayıtlarının sahibi DEĞİLDİR — sadece kimlik doğrulama
// ve token claim'leri için okur, kayıt (register) dışında yazmaz.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // json:"-" → API response'a DAHİL ETME (güvenlik!)
	Role         UserRole   `json:"role"`
	Status       UserStatus `json:"status"`
	LastLogin    *time.Time `json:"last_login"` // *time.Time = nullable — hiç giriş yapmamış olabilir
	CreatedAt    time.Time  `json:"created_at"`
}

// emailRegex, basit email format kontrolü.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// EmailRegex, email format regex'ini döner — başka paketlerin de
// aynı kuralı kullanması için (tek doğruluk kaynağı).
func EmailRegex() *regexp.Regexp {
	return emailRegex
}

// CreateUserRequest, kayıt olurken frontend'den gelen veri.
// PasswordHash yerine Password alırız — hash'leme service katmanında yapılır.
type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate, CreateUserRequest'in geçerli olup olmadığını kontrol eder.
// Validation kuralları:
//   - Username: 3-32 karakter, alfanumerik + alt çizgi
//   - Email: geçerli format
//   - Password: minimum 8 karakter
// Hatalar alan bazlı toplanır (pkg.ValidationError): kullanıcı formu bir
// kez gönderip TÜM ihlalleri aynı anda görür, alan alan düzeltmek zorunda kalmaz.
func (r *CreateUserRequest) Validate() error {
	verr := pkg.NewValidationError()

	r.Username = strings.TrimSpace(r.Username)
	usernameLen := utf8.RuneCountInString(r.Username)
	if usernameLen < 3 || usernameLen > 32 {
		verr.Add("username", "username must be between 3 and 32 characters")
	} else {
		for _, ch := range r.Username {
			if !isValidUsernameChar(ch) {
				verr.Add("username", "username can only contain letters, numbers, and underscores")
				break
			}
		}
	}

	r.Email = strings.TrimSpace(r.Email)
	if !emailRegex.MatchString(r.Email) {
		verr.Add("email", "must provide a valid email")
	}

	if utf8.RuneCountInString(r.Password) < 8 {
		verr.Add("password", "password must be at least 8 characters")
	}

	return verr.OrNil()
}

// LoginRequest, giriş yaparken frontend'den gelen veri.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate, LoginRequest'in geçerli olup olmadığını kontrol eder.
func (r *LoginRequest) Validate() error {
	verr := pkg.NewValidationError()

	r.Username = strings.TrimSpace(r.Username)
	if r.Username == "" {
		verr.Add("username", "username is required")
	}
	if r.Password == "" {
		verr.Add("password", "password is required")
	}

	return verr.OrNil()
}

// isValidUsernameChar, username'de izin verilen karakterleri kontrol eder.
func isValidUsernameChar(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9') ||
		ch == '_'
}
