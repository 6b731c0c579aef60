// utils/auth.go
package utils

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const ContextUserID = "userId"

var ErrMissingSecret = errors.New("JWT secret not set")

// GenerateJWTSecret returns a random base64 key for signing tokens.
func GenerateJWTSecret() string {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic("failed to generate JWT secret")
	}
	return base64.StdEncoding.EncodeToString(key)
}

// Hash password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// Check password
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GenerateToken signs an HS256 token for the user valid for ttl.
func GenerateToken(secret, userID string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrMissingSecret
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": now.Add(ttl).Unix(),
		"iat": now.Unix(),
	})

	return token.SignedString([]byte(secret))
}

// ParseToken validates the token and returns its subject.
func ParseToken(secret, tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", errors.New("invalid token claims")
	}
	return sub, nil
}

// Auth middleware
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			if cookie, err := c.Cookie("token"); err == nil {
				tokenString = cookie
			}
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		if len(tokenString) > 7 && strings.ToUpper(tokenString[0:6]) == "BEARER" {
			tokenString = tokenString[7:]
		}

		sub, err := ParseToken(secret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		userID, err := uuid.Parse(sub)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}

		c.Set(ContextUserID, userID)
		c.Next()
	}
}

// CurrentUserID returns the authenticated user. It responds with 401 and
// returns false when the middleware did not run.
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(ContextUserID)
	if !exists {
		RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		RespondWithError(c, http.StatusInternalServerError, "Invalid user ID format")
		return uuid.Nil, false
	}
	return id, true
}
