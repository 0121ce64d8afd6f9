package events

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"managemate-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

// RegisterRoutes: pub は公開、adm は admin グループ、sup は superadmin グループ
func RegisterRoutes(pub gin.IRoutes, adm gin.IRoutes, sup gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// 公開（承認済のみ）
	pub.GET("/events", h.ListApproved)
	pub.GET("/events/:id", h.GetApproved)

	// 管理者: 自分のイベントのCRUD
	adm.POST("/events", h.Create)
	adm.GET("/events", h.ListMine)
	adm.PUT("/events/:id", h.Update)
	adm.DELETE("/events/:id", h.Delete)

	// superadmin: 承認フロー
	sup.GET("/events/pending", h.ListPending)
	sup.POST("/events/:id/approve", h.Approve)
	sup.POST("/events/:id/reject", h.Reject)
}

func (h *Handler) Create(c *gin.Context) {
	adminID, ok := auth.UserIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrInvalid("invalid json or missing required fields"))
		return
	}

	res, err := h.svc.Create(c.Request.Context(), adminID, req)
	if err != nil {
		c.JSON(toHTTPStatus(err), err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) ListMine(c *gin.Context) {
	adminID, ok := auth.UserIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	res, err := h.svc.ListMine(c.Request.Context(), adminID, pageFrom(c))
	if err != nil {
		c.JSON(toHTTPStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Update(c *gin.Context) {
	adminID, ok := auth.UserIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrInvalid("invalid id"))
		return
	}

	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrInvalid("invalid json"))
		return
	}

	res, err := h.svc.Update(c.Request.Context(), adminID, id, req)
	if err != nil {
		c.JSON(toHTTPStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Delete(c *gin.Context) {
	adminID, ok := auth.UserIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrInvalid("invalid id"))
		return
	}

	if err := h.svc.Delete(c.Request.Context(), adminID, id); err != nil {
		c.JSON(toHTTPStatus(err), err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListApproved(c *gin.Context) {
	res, err := h.svc.ListApproved(c.Request.Context(), c.Query("q"), pageFrom(c))
	if err != nil {
		c.JSON(toHTTPStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetApproved(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrInvalid("invalid id"))
		return
	}
	res, err := h.svc.GetApproved(c.Request.Context(), id)
	if err != nil {
		c.JSON(toHTTPStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ListPending(c *gin.Context) {
	res, err := h.svc.ListPending(c.Request.Context(), pageFrom(c))
	if err != nil {
		c.JSON(toHTTPStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Approve(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrInvalid("invalid id"))
		return
	}
	res, err := h.svc.Approve(c.Request.Context(), id)
	if err != nil {
		c.JSON(toHTTPStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Reject(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrInvalid("invalid id"))
		return
	}
	res, err := h.svc.Reject(c.Request.Context(), id)
	if err != nil {
		c.JSON(toHTTPStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ===== helpers =====

func parseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, strconv.ErrSyntax
	}
	return id, nil
}

func pageFrom(c *gin.Context) Page {
	return Page{
		Limit:  parseIntDefault(c.Query("limit"), DefaultPageLimit),
		Offset: parseIntDefault(c.Query("offset"), 0),
		Order:  c.DefaultQuery("order", "desc"),
	}
}

func parseIntDefault(s string, d int) int {
	if s == "" {
		return d
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}
