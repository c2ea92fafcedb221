package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/propdesk/propdesk/internal/api/middleware"
	"github.com/propdesk/propdesk/internal/core/property"
)

type PropertyHandler struct {
	properties *property.Service
}

func NewPropertyHandler(properties *property.Service) *PropertyHandler {
	return &PropertyHandler{properties: properties}
}

type propertyResponse struct {
	*property.Property
	PrimaryImage string             `json:"primary_image"`
	ImageURLs    []string           `json:"image_urls"`
	Location     *property.Location `json:"location,omitempty"`
}

func newPropertyResponse(p *property.Property) propertyResponse {
	return propertyResponse{
		Property:     p,
		PrimaryImage: p.PrimaryImageURL(""),
		ImageURLs:    p.ImageURLs(""),
		Location:     p.Location(),
	}
}

func (h *PropertyHandler) Get(c *gin.Context) {
	p, err := h.properties.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPropertyResponse(p))
}

func (h *PropertyHandler) Delete(c *gin.Context) {
	token := middleware.GetSession(c).Token
	if err := h.properties.Delete(c.Request.Context(), token, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "property deleted"})
}
