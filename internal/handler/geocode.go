package handler

import (
	"context"
	"net/http"
	"strconv"

	"pressing-api/internal/geo"
	"pressing-api/internal/geocode"
	"pressing-api/internal/models"

	"github.com/gin-gonic/gin"
)

// GeocodeHandler handles reverse geocoding and district lookups
type GeocodeHandler struct {
	resolver ResolverService
}

// Service interface for dependency injection
type ResolverService interface {
	Resolve(ctx context.Context, c models.Coordinate) geocode.Result
}

// NewGeocodeHandler creates a new geocode handler
func NewGeocodeHandler(resolver ResolverService) *GeocodeHandler {
	return &GeocodeHandler{resolver: resolver}
}

// parseCoordinate reads and validates the lat/lng query parameters.
func parseCoordinate(c *gin.Context) (models.Coordinate, bool) {
	latStr := c.Query("lat")
	lngStr := c.Query("lng")

	if latStr == "" || lngStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameters 'lat' and 'lng'"})
		return models.Coordinate{}, false
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid latitude format"})
		return models.Coordinate{}, false
	}

	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid longitude format"})
		return models.Coordinate{}, false
	}

	coord := models.Coordinate{Lat: lat, Lng: lng}
	if !geo.Valid(coord) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "coordinates out of range"})
		return models.Coordinate{}, false
	}

	return coord, true
}

// ReverseGeocode handles GET /reverse-geocode requests
// @Summary Resolve coordinates into an address
// @Produce json
// @Param lat query number true "Latitude"
// @Param lng query number true "Longitude"
// @Success 200 {object} geocode.Result
// @Router /reverse-geocode [get]
func (h *GeocodeHandler) ReverseGeocode(c *gin.Context) {
	coord, ok := parseCoordinate(c)
	if !ok {
		return
	}

	// Resolution degrades internally; it always produces an address.
	result := h.resolver.Resolve(c.Request.Context(), coord)
	c.JSON(http.StatusOK, result)
}

// District handles GET /district requests
// @Summary Attribute coordinates to an Abidjan commune
// @Produce json
// @Param lat query number true "Latitude"
// @Param lng query number true "Longitude"
// @Success 200 {object} map[string]interface{}
// @Router /district [get]
func (h *GeocodeHandler) District(c *gin.Context) {
	coord, ok := parseCoordinate(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"district":        geo.DistrictFor(coord),
		"in_service_area": geo.InServiceArea(coord),
	})
}
