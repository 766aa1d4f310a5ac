package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/smartdebt-api/internal/services"
)

const principalKey = "principal"

// TokenValidator is satisfied by services.AuthService
type TokenValidator interface {
	ValidateToken(token string) (*services.Principal, error)
}

// Auth returns a middleware that validates bearer tokens issued at login
func Auth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString := ""

		if authHeader == "" {
			// Download links (exports, statements) carry the token as a query param
			tokenString = c.Query("token")
			if tokenString == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "Vui lòng đăng nhập",
				})
				return
			}
		} else {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "Sai định dạng Authorization header",
				})
				return
			}
			tokenString = strings.TrimSpace(parts[1])
		}

		principal, err := validator.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Phiên đăng nhập không hợp lệ hoặc đã hết hạn",
			})
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// GetPrincipal returns the authenticated owner, or nil on public routes
func GetPrincipal(c *gin.Context) *services.Principal {
	v, exists := c.Get(principalKey)
	if !exists {
		return nil
	}
	p, _ := v.(*services.Principal)
	return p
}
