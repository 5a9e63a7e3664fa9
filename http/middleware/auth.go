package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/tnqbao/gau-register-service/config"
	"github.com/tnqbao/gau-register-service/utils"
)

// AuthMiddleware resolves the caller identity from the access token.
// Requests without a token pass through anonymously; writes that need
// an identity are rejected further down. A token that is present but
// invalid is a hard 401.
func AuthMiddleware(cfg *config.EnvConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := utils.ExtractToken(c)
		if tokenString == "" {
			c.Next()
			return
		}

		token, err := utils.ParseToken(tokenString, cfg)
		if err != nil || !token.Valid {
			utils.JSON401(c, "Invalid or expired token")
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			utils.JSON401(c, "Invalid token claims")
			c.Abort()
			return
		}
		if err := utils.InjectClaimsToContext(c, claims); err != nil {
			utils.JSON401(c, "Invalid token claims")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAuthMiddleware rejects anonymous requests. Mounted on routes
// that never make sense without an identity.
func RequireAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("user_id") == "" {
			utils.JSON401(c, "Authentication required")
			c.Abort()
			return
		}
		c.Next()
	}
}
