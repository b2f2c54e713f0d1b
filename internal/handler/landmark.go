package handler

import (
	"context"
	"net/http"

	"pressing-api/internal/models"

	"github.com/gin-gonic/gin"
)

// LandmarkHandler handles landmark search requests
type LandmarkHandler struct {
	repo LandmarkSearcher
}

// Repository interface for dependency injection
type LandmarkSearcher interface {
	SearchLandmarksByText(ctx context.Context, query string) ([]models.Landmark, error)
}

// NewLandmarkHandler creates a new landmark handler
func NewLandmarkHandler(repo LandmarkSearcher) *LandmarkHandler {
	return &LandmarkHandler{repo: repo}
}

// Search handles GET /landmarks requests
// @Summary Full-text search over Abidjan landmarks
// @Produce json
// @Param q query string true "Search text"
// @Success 200 {array} models.Landmark
// @Router /landmarks [get]
func (h *LandmarkHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameter 'q'"})
		return
	}

	landmarks, err := h.repo.SearchLandmarksByText(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, landmarks)
}
