package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"healthmate/internal/service"
)

const authClaimsKey = "auth_claims"

// JWTAuthMiddleware valida el bearer token y guarda claims en el contexto.
// Sin header responde "Unauthorized"; con token malo o vencido, "Invalid token".
func JWTAuthMiddleware(jwtSvc *service.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtSvc == nil {
			respondError(c, http.StatusInternalServerError, "jwt not configured")
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			respondError(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if len(header) < len("Bearer ") || !strings.EqualFold(header[:len("Bearer ")], "bearer ") {
			respondError(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		token := strings.TrimSpace(header[len("Bearer "):])
		claims, err := jwtSvc.Parse(token)
		if err != nil {
			respondError(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		c.Set(authClaimsKey, claims)
		c.Next()
	}
}

// GetAuthClaims obtiene claims de JWT desde el contexto.
func GetAuthClaims(c *gin.Context) (service.Claims, bool) {
	val, ok := c.Get(authClaimsKey)
	if !ok {
		return service.Claims{}, false
	}
	claims, ok := val.(service.Claims)
	return claims, ok
}

// authorizeOwner responde 403 si hay claims y no corresponden a userID.
// Sin claims (rutas abiertas) no restringe.
func authorizeOwner(c *gin.Context, userID string) bool {
	claims, ok := GetAuthClaims(c)
	if !ok {
		return true
	}
	if claims.UserID != userID {
		respondError(c, http.StatusForbidden, "Forbidden")
		return false
	}
	return true
}
