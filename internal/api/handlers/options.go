package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/propdesk/propdesk/internal/core/listing"
	"github.com/propdesk/propdesk/internal/core/property"
)

func Options(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"statuses":       property.StatusOptions,
		"property_types": property.TypeOptions,
		"per_page":       listing.PerPageOptions,
	})
}
