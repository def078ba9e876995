// internal/middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/manna-art/manna-backend/internal/utils"
)

// WalletSession extracts a wallet session token when one is present and
// puts the wallet address in the request context. Registration endpoints
// work without a token (the wallet address travels in the form), so a
// missing or invalid header is not an error here.
func WalletSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.Next()
			return
		}

		if claims, err := utils.ValidateWalletToken(parts[1]); err == nil {
			c.Set("wallet_address", claims.WalletAddress)
		}
		c.Next()
	}
}

// WalletRequired rejects requests without a valid wallet session.
func WalletRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		wallet, exists := c.Get("wallet_address")
		if !exists || wallet == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Sesión de wallet requerida",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
