package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"inkwell/internal/middleware"
	"inkwell/internal/services"
)

// RespondError writes err as JSON with the status its type maps to.
func RespondError(c *gin.Context, err error) {
	var se *services.ServiceError
	if !errors.As(err, &se) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"type":    services.TypeInternal,
			"message": "internal server error",
		})
		return
	}

	body := gin.H{"type": se.Type, "message": se.Message}
	if len(se.Fields) > 0 {
		body["fields"] = se.Fields
	}
	if se.Type == services.TypeAuthRequired {
		body["login"] = middleware.LoginPath
	}
	c.JSON(se.GetStatusCode(), body)
}

// badRequest answers a body that could not be decoded at all.
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"type":    services.TypeValidation,
		"message": "malformed request body: " + err.Error(),
	})
}
