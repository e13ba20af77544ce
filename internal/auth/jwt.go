package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload the identity provider issues. The service
// consumes the user id, the email-verified flag and the admin custom claim.
type Claims struct {
	UserID   string `json:"userId"`
	Verified bool   `json:"verified"`
	Admin    bool   `json:"admin"`
	jwt.RegisteredClaims
}

func ValidateJWT(tokenString, secret string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("token is required")
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// GenerateJWT issues a token for a user. Mainly used by tests and tooling;
// production tokens come from the identity provider.
func GenerateJWT(userID string, verified, admin bool, secret string) (string, error) {
	claims := &Claims{
		UserID:   userID,
		Verified: verified,
		Admin:    admin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Middleware authenticates protected routes. It accepts either a Bearer token
// or an X-User-ID header set by an upstream gateway, and stores the user id
// in the gin context under "userID".
func Middleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// The gateway header carries no claims; identities arriving this way
		// are never admins.
		if userID := c.GetHeader("X-User-ID"); userID != "" {
			c.Set("userID", userID)
			c.Set("isAdmin", false)
			c.Next()
			return
		}

		tokenString := c.GetHeader("Authorization")
		if strings.HasPrefix(tokenString, "Bearer ") {
			tokenString = tokenString[7:]
		}
		claims, err := ValidateJWT(tokenString, secret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
				"code":  "MISSING_USER_ID",
			})
			c.Abort()
			return
		}
		if !claims.Verified {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Email not verified",
				"code":  "EMAIL_NOT_VERIFIED",
			})
			c.Abort()
			return
		}
		c.Set("userID", claims.UserID)
		c.Set("isAdmin", claims.Admin)
		c.Next()
	}
}

// RequireAdmin blocks callers whose token lacks the admin claim. It must run
// after Middleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool("isAdmin") {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Admin access required",
				"code":  "ADMIN_ONLY",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// UserID extracts the authenticated user id from the gin context.
func UserID(c *gin.Context) string {
	return c.GetString("userID")
}
