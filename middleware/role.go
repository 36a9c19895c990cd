// Package middleware — RoleMiddleware, rol bazlı yetki kontrolü.
//
// AuthMiddleware'den SONRA çalışır — context'te claim'ler mevcuttur.
// Token claim'indeki rol, izin verilen roller kümesinde değilse → 403.
//
// Kullanım:
//
//	authMw.Require(roleMw.Require(models.RoleAdmin)(http.HandlerFunc(adminHandler.ListAuthLogs)))
package middleware

import (
	"net/http"

	"github.com/akinalp/kimlik/handlers"
	"github.com/akinalp/kimlik/models"
	"github.com/akinalp/kimlik/pkg"
)

// RoleMiddleware, rol bazlı erişim kontrolü middleware'ı.
type RoleMiddleware struct{}

// NewRoleMiddleware, constructor.
func NewRoleMiddleware() *RoleMiddleware {
	return &RoleMiddleware{}
}

// Require, verilen rollerden birini zorunlu kılan middleware döndürür.
// Boş rol listesi = herhangi bir doğrulanmış kullanıcı geçer.
//
// Rol TOKEN'DAN okunur, DB'den değil: kullanıcının rolü düşürülse bile
// eski access token'ı eski rolüyle çalışmaya devam eder (expiry'ye kadar).
func (m *RoleMiddleware) Require(roles ...models.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := handlers.ClaimsFromContext(r.Context())
			if !ok {
				pkg.ErrorWithMessage(w, http.StatusUnauthorized, "claims not found in context")
				return
			}

			if len(roles) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			pkg.ErrorWithMessage(w, http.StatusForbidden, "insufficient role")
		})
	}
}
