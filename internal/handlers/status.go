package handlers

import (
	"github.com/aiguild/guildtracker/internal/models"
	"github.com/aiguild/guildtracker/pkg/response"
	"github.com/gin-gonic/gin"
)

type StatusHandler struct{}

func NewStatusHandler() *StatusHandler {
	return &StatusHandler{}
}

// List returns the status catalog with display colors.
// GET /api/statuses
func (h *StatusHandler) List(c *gin.Context) {
	response.Success(c, models.StatusCatalog())
}
