package scanqr

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"managemate-backend/internal/monitoring"
	"managemate-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// 管理者端末（スマホ）からのQRスキャンでの出席確定用エンドポイント
	// POST /admin/scan-qr/check-in
	r.POST("/scan-qr/check-in", h.CheckIn)
}

// POST /admin/scan-qr/check-in
func (h *Handler) CheckIn(c *gin.Context) {
	adminID, ok := auth.UserIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}

	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		monitoring.TrackCheckIn(string(CodeInvalidPayload))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid QR payload."})
		return
	}

	data, err := h.svc.CheckIn(c.Request.Context(), adminID, req.Payload)
	if err != nil {
		var se *ScanError
		if errors.As(err, &se) && se.IsValidation() {
			monitoring.TrackCheckIn(string(se.Code))
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": se.Message})
			return
		}
		// 詳細はログのみ。クライアントには汎用メッセージを返す。
		log.Printf("[ERROR] scan-qr check-in: %v", err)
		monitoring.TrackCheckIn(string(CodeInternal))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Unable to update attendance."})
		return
	}

	monitoring.TrackCheckIn("ok")
	c.JSON(http.StatusOK, gin.H{
		"message": "Attendance updated successfully.",
		"data":    data,
	})
}
