package scanqr

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"managemate-backend/internal/platform/auth"
)

func newTestRouter(store CheckInStore, adminID uint64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	grp := r.Group("/api/v1/admin", func(c *gin.Context) {
		// RequireAuth の代わりに認証済みコンテキストを直接詰める
		c.Set(auth.CtxUserIDKey, adminID)
		c.Set(auth.CtxRoleKey, auth.RoleAdmin)
	})
	RegisterRoutes(grp, newTestService(store))
	return r
}

func postCheckIn(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/scan-qr/check-in", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_CheckIn_OK(t *testing.T) {
	f := &fakeStore{event: openEvent(), registered: true,
		user: &User{UserID: 5, Name: "Taro", Email: "taro@example.com"}}
	r := newTestRouter(f, 10)

	w := postCheckIn(r, `{"payload":"{\"user_id\":5,\"event_id\":42}"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Message string `json:"message"`
		Data    struct {
			User struct {
				ID uint64 `json:"id"`
			} `json:"user"`
			Event struct {
				ID uint64 `json:"id"`
			} `json:"event"`
			AttendedAt time.Time `json:"attended_at"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Attendance updated successfully.", resp.Message)
	assert.Equal(t, uint64(5), resp.Data.User.ID)
	assert.Equal(t, uint64(42), resp.Data.Event.ID)
	assert.True(t, resp.Data.AttendedAt.Equal(testNow))
	assert.Len(t, f.recorded, 1)
}

func TestHandler_CheckIn_ValidationIs422(t *testing.T) {
	tests := []struct {
		name    string
		store   *fakeStore
		body    string
		message string
	}{
		{
			"payload欠落",
			&fakeStore{},
			`{}`,
			"Invalid QR payload.",
		},
		{
			"壊れたペイロード",
			&fakeStore{},
			`{"payload":"garbage"}`,
			"Invalid QR payload.",
		},
		{
			"イベント無し",
			&fakeStore{},
			`{"payload":"user:5|event:42"}`,
			"Event not found.",
		},
		{
			"未登録",
			&fakeStore{event: openEvent(), registered: false},
			`{"payload":"user:5|event:42"}`,
			"User is not registered for this event.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(tt.store, 10)
			w := postCheckIn(r, tt.body)
			require.Equal(t, http.StatusUnprocessableEntity, w.Code)

			var resp struct {
				Message string `json:"message"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.message, resp.Message)
		})
	}
}

// 予期しないエラーは詳細を漏らさず500の固定メッセージになる
func TestHandler_CheckIn_InternalIs500(t *testing.T) {
	f := &fakeStore{eventErr: assert.AnError}
	r := newTestRouter(f, 10)

	w := postCheckIn(r, `{"payload":"user:5|event:42"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Unable to update attendance.", resp.Message)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}
