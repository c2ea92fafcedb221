package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/propdesk/propdesk/internal/core/gallery"
	"github.com/propdesk/propdesk/internal/core/property"
	"github.com/propdesk/propdesk/internal/core/session"
	"github.com/propdesk/propdesk/internal/core/validation"
	"github.com/propdesk/propdesk/internal/core/workspace"
)

// respondError maps domain errors to status codes. Anything unrecognised
// came from the listing API or the network.
func respondError(c *gin.Context, err error) {
	switch {
	case validation.IsValidationError(err):
		ve := validation.GetValidationErrors(err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "validation failed",
			"details": ve,
			"fields":  ve.Fields(),
		})
	case errors.Is(err, property.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
	case errors.Is(err, workspace.ErrDraftNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, session.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
	case errors.Is(err, property.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	case errors.Is(err, gallery.ErrClosed):
		c.JSON(http.StatusGone, gin.H{"error": "draft was discarded"})
	default:
		c.Error(err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not reach the listing service, please try again"})
	}
}
