package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func makeToken(t *testing.T, secret []byte, sub, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString(secret)
	require.NoError(t, err)
	return s
}

func authTestRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append(mw, func(c *gin.Context) {
		id, _ := UserIDFrom(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id})
	})
	r.GET("/protected", handlers...)
	return r
}

func doGet(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth_OK(t *testing.T) {
	r := authTestRouter(RequireAuth(testSecret))
	w := doGet(r, "Bearer "+makeToken(t, testSecret, "9", RoleAdmin))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":9`)
}

func TestRequireAuth_Rejects(t *testing.T) {
	r := authTestRouter(RequireAuth(testSecret))

	tests := []struct {
		name   string
		header string
	}{
		{"ヘッダ無し", ""},
		{"Bearer以外", "Basic abc"},
		{"トークン空", "Bearer "},
		{"壊れたトークン", "Bearer not.a.jwt"},
		{"別の鍵で署名", "Bearer " + makeToken(t, []byte("other-secret"), "9", RoleAdmin)},
		{"subが数値でない", "Bearer " + makeToken(t, testSecret, "abc", RoleAdmin)},
		{"subがゼロ", "Bearer " + makeToken(t, testSecret, "0", RoleAdmin)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doGet(r, tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	r := authTestRouter(RequireAuth(testSecret), RequireRole(RoleAdmin, RoleSuperAdmin))

	w := doGet(r, "Bearer "+makeToken(t, testSecret, "9", RoleAdmin))
	assert.Equal(t, http.StatusOK, w.Code)

	w = doGet(r, "Bearer "+makeToken(t, testSecret, "9", RoleSuperAdmin))
	assert.Equal(t, http.StatusOK, w.Code)

	w = doGet(r, "Bearer "+makeToken(t, testSecret, "5", RoleUser))
	assert.Equal(t, http.StatusForbidden, w.Code)
}
