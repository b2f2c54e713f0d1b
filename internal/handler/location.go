package handler

import (
	"context"
	"net/http"

	"pressing-api/internal/address"
	"pressing-api/internal/models"

	"github.com/gin-gonic/gin"
)

// LocationHandler handles business-address updates from the map selector
type LocationHandler struct {
	resolver ResolverService
	manager  AddressManager
}

// Manager interface for dependency injection
type AddressManager interface {
	Apply(ctx context.Context, ev address.LocationEvent) (*models.AddressRecord, error)
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(resolver ResolverService, manager AddressManager) *LocationHandler {
	return &LocationHandler{resolver: resolver, manager: manager}
}

type confirmRequest struct {
	Lat      float64 `json:"lat" binding:"required"`
	Lng      float64 `json:"lng" binding:"required"`
	Address  string  `json:"address"`
	District string  `json:"district"`
}

// Confirm handles POST /position/confirm requests: the frontend sends the
// final pin position; address and district are resolved here when the
// client did not supply them, then merged into the business address.
// @Summary Confirm a map-pin position as the business address
// @Accept json
// @Produce json
// @Param request body confirmRequest true "Confirmed position"
// @Success 200 {object} models.AddressRecord
// @Router /position/confirm [post]
func (h *LocationHandler) Confirm(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ev := address.LocationEvent{
		Coordinate: models.Coordinate{Lat: req.Lat, Lng: req.Lng},
		Address:    req.Address,
		District:   req.District,
	}
	if ev.Address == "" {
		result := h.resolver.Resolve(c.Request.Context(), ev.Coordinate)
		ev.Address = result.Address
		if ev.District == "" {
			ev.District = result.District
		}
	}

	record, err := h.manager.Apply(c.Request.Context(), ev)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

type updateLocationRequest struct {
	Lat      float64 `json:"lat" binding:"required"`
	Lng      float64 `json:"lng" binding:"required"`
	Address  string  `json:"address"`
	District string  `json:"district"`
}

// UpdateLocation handles PUT /profile/location requests: a direct location
// edit from the profile form. Unlike Confirm, the supplied address and
// district are taken as-is; the merge rules still protect a street the
// owner already entered.
// @Summary Update the business location from the profile form
// @Accept json
// @Produce json
// @Param request body updateLocationRequest true "New location"
// @Success 200 {object} models.AddressRecord
// @Router /profile/location [put]
func (h *LocationHandler) UpdateLocation(c *gin.Context) {
	var req updateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	record, err := h.manager.Apply(c.Request.Context(), address.LocationEvent{
		Coordinate: models.Coordinate{Lat: req.Lat, Lng: req.Lng},
		Address:    req.Address,
		District:   req.District,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}
