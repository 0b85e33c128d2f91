package handlers

import (
	"net/http"

	"velociti_backend/internal/domain"

	"github.com/gin-gonic/gin"
)

// Stations lists the railway station catalogue.
func (h *Handler) Stations(c *gin.Context) {
	stations, err := h.StationRepo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stations"})
		return
	}
	if stations == nil {
		stations = []*domain.Station{}
	}
	c.JSON(http.StatusOK, stations)
}
