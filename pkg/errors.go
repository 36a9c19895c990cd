// Package pkg, projede paylaşılan utility'leri barındırır.
// Bu dosya domain-level error tanımlarını içerir.
//
// Go'da error'lar basit değerlerdir (string taşıyan struct'lar).
// errors.New() ile sabit error değişkenleri tanımlarız.
// Böylece error karşılaştırması string yerine referans ile yapılır:
//
//	if errors.Is(err, pkg.ErrNotFound) { ... }
//
// Bu, typo'ya açık string karşılaştırmasından çok daha güvenlidir.
package pkg

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Domain-level error'lar.
// Handler katmanı bu error'ları HTTP status code'larına map'ler.
// Service katmanı bunları döner, handler yakalar.
var (
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrAlreadyExists = errors.New("already exists")
	ErrBadRequest    = errors.New("bad request")
	ErrInternal      = errors.New("internal error")

	// ErrAccountNotActive, hesabı locked/pending olan kullanıcının login denemesi.
	// ErrUnauthorized'dan AYRI tutulur — mesajı hesap durumunu açıkça söyler.
	// (Bilinçli bilgi sızıntısı: geçerli bir username bilmeyi gerektirir.)
	ErrAccountNotActive = errors.New("account not active")

	// ErrRateLimited, login rate limit aşıldığında döner → 429.
	ErrRateLimited = errors.New("rate limited")
)

// ValidationError, alan bazlı doğrulama hatası.
//
// Tek bir birleşik mesaj yerine alan → mesaj map'i taşır: frontend form
// hatalarını ilgili input'un yanında gösterir. Unwrap ErrBadRequest döndüğü
// için errors.Is(err, ErrBadRequest) hâlâ çalışır ve 400'e map'lenir.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError, boş bir ValidationError oluşturur.
// Validate metodları alanları Add ile doldurup OrNil ile döner.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add, bir alan için ihlal mesajı kaydeder. Alan başına tek mesaj —
// ilk ihlal kazanır.
func (e *ValidationError) Add(field, message string) {
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

// OrNil, hiç ihlal yoksa nil döner. Validate'ler buradan dönmeli —
// boş bir *ValidationError'ı error olarak dönmek "typed nil" tuzağıdır.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Error, alanları alfabetik sırayla tek mesajda birleştirir (loglar için).
func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrBadRequest
}
