package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func JSON200(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func JSON201(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

func JSON400(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

func JSON401(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": message})
}

func JSON403(c *gin.Context, message string) {
	c.JSON(http.StatusForbidden, gin.H{"error": message})
}

func JSON404(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, gin.H{"error": message})
}

// JSON422 carries the complete issue list of a failed validation.
func JSON422(c *gin.Context, message string, issues interface{}) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": message, "issues": issues})
}

// JSON423 reports a lock conflict along with the holder identity.
func JSON423(c *gin.Context, message string, lockedBy string) {
	c.JSON(http.StatusLocked, gin.H{"error": message, "lockedBy": lockedBy})
}

func JSON500(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}
