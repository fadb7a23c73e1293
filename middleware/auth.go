package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const userIDKey = "userID"

func GenerateToken(userID primitive.ObjectID, secret []byte, ttl time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID.Hex(),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Auth verifies the bearer token and stores the authenticated user id on the
// context. Handlers downstream trust this id without re-verification. The
// token is also accepted as a query parameter because EventSource cannot set
// headers.
func Auth(secret []byte) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := strings.TrimPrefix(ctx.GetHeader("Authorization"), "Bearer ")
		if token == "" || strings.Contains(token, " ") {
			token = ctx.Query("token")
		}
		if token == "" {
			abortUnauthorized(ctx, "missing bearer token")
			return
		}

		parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return secret, nil
		})
		if err != nil || !parsed.Valid {
			abortUnauthorized(ctx, "invalid token")
			return
		}

		subject, err := parsed.Claims.GetSubject()
		if err != nil {
			abortUnauthorized(ctx, "invalid token")
			return
		}
		userID, err := primitive.ObjectIDFromHex(subject)
		if err != nil {
			abortUnauthorized(ctx, "invalid token subject")
			return
		}

		ctx.Set(userIDKey, userID)
		ctx.Next()
	}
}

func abortUnauthorized(ctx *gin.Context, message string) {
	ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   "unauthorized",
		"message": message,
	})
}

// UserID returns the id set by Auth. Zero if the route is unauthenticated.
func UserID(ctx *gin.Context) primitive.ObjectID {
	v, _ := ctx.Get(userIDKey)
	userID, _ := v.(primitive.ObjectID)
	return userID
}
