package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var testSecret = []byte("test-secret")

func authRouter(secret []byte) (*gin.Engine, *primitive.ObjectID) {
	gin.SetMode(gin.TestMode)

	var seen primitive.ObjectID
	r := gin.New()
	r.GET("/me", Auth(secret), func(ctx *gin.Context) {
		seen = UserID(ctx)
		ctx.Status(http.StatusOK)
	})
	return r, &seen
}

func TestAuthBearerToken(t *testing.T) {
	userID := primitive.NewObjectID()
	token, err := GenerateToken(userID, testSecret, time.Hour)
	require.NoError(t, err)

	r, seen := authRouter(testSecret)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID, *seen)
}

func TestAuthQueryToken(t *testing.T) {
	userID := primitive.NewObjectID()
	token, err := GenerateToken(userID, testSecret, time.Hour)
	require.NoError(t, err)

	r, seen := authRouter(testSecret)

	req := httptest.NewRequest(http.MethodGet, "/me?token="+token, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID, *seen)
}

func TestAuthRejections(t *testing.T) {
	userID := primitive.NewObjectID()

	expired, err := GenerateToken(userID, testSecret, -time.Hour)
	require.NoError(t, err)
	wrongKey, err := GenerateToken(userID, []byte("other-secret"), time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing token", ""},
		{"garbage token", "Bearer not.a.jwt"},
		{"expired token", "Bearer " + expired},
		{"wrong key", "Bearer " + wrongKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := authRouter(testSecret)

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}
