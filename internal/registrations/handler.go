package registrations

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"managemate-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// POST /registrations
	r.POST("/registrations", h.Register)
	// GET /registrations (自分の分)
	r.GET("/registrations", h.ListMine)
	// DELETE /registrations/:id
	r.DELETE("/registrations/:id", h.Cancel)
}

func (h *Handler) Register(c *gin.Context) {
	userID, ok := auth.UserIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrInvalid("invalid json or missing required fields"))
		return
	}

	res, err := h.svc.Register(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(toHTTPStatus(err), err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) ListMine(c *gin.Context) {
	userID, ok := auth.UserIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	p := Page{
		Limit:  parseIntDefault(c.Query("limit"), DefaultPageLimit),
		Offset: parseIntDefault(c.Query("offset"), 0),
	}
	res, err := h.svc.ListMine(c.Request.Context(), userID, p)
	if err != nil {
		c.JSON(toHTTPStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Cancel(c *gin.Context) {
	userID, ok := auth.UserIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrInvalid("invalid id"))
		return
	}

	if err := h.svc.Cancel(c.Request.Context(), userID, id); err != nil {
		c.JSON(toHTTPStatus(err), err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ===== helpers =====

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
