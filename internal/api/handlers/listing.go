package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/propdesk/propdesk/internal/api/middleware"
	"github.com/propdesk/propdesk/internal/core/listing"
	"github.com/propdesk/propdesk/internal/core/workspace"
)

type ListingHandler struct {
	registry *workspace.Registry
}

func NewListingHandler(registry *workspace.Registry) *ListingHandler {
	return &ListingHandler{registry: registry}
}

func (h *ListingHandler) controller(c *gin.Context) *listing.Controller {
	return h.registry.Listing(middleware.GetSessionID(c))
}

// Get loads the active query on first visit and after invalidation.
func (h *ListingHandler) Get(c *gin.Context) {
	respondView(c, h.controller(c).Load(c.Request.Context()))
}

type filterRequest struct {
	Value string `json:"value"`
}

func (h *ListingHandler) SetFilter(c *gin.Context) {
	var req filterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctrl := h.controller(c)
	if err := ctrl.SetFilterField(listing.Field(c.Param("field")), req.Value); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ctrl.Current())
}

func (h *ListingHandler) Apply(c *gin.Context) {
	respondView(c, h.controller(c).ApplyFilters(c.Request.Context()))
}

type pageRequest struct {
	Page int `json:"page" binding:"required"`
}

func (h *ListingHandler) SetPage(c *gin.Context) {
	var req pageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, ok := h.controller(c).SetPage(c.Request.Context(), req.Page)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page out of range", "view": view})
		return
	}
	respondView(c, view)
}

type perPageRequest struct {
	PerPage int `json:"per_page" binding:"required"`
}

func (h *ListingHandler) SetPerPage(c *gin.Context) {
	var req perPageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.controller(c).SetPerPage(c.Request.Context(), req.PerPage)
	if err != nil {
		respondError(c, err)
		return
	}
	respondView(c, view)
}

// respondView sends the view with 502 when the active query failed; the
// body still carries the last good result.
func respondView(c *gin.Context, v listing.View) {
	if v.Status == listing.StatusError {
		c.JSON(http.StatusBadGateway, v)
		return
	}
	c.JSON(http.StatusOK, v)
}
