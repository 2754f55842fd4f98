package handlers

import (
	"errors"

	"github.com/aiguild/guildtracker/internal/models"
	"github.com/aiguild/guildtracker/internal/services"
	"github.com/aiguild/guildtracker/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ProjectHandler struct {
	projectService *services.ProjectService
	outbox         *services.OutboxService
}

func NewProjectHandler(db *gorm.DB, outbox *services.OutboxService) *ProjectHandler {
	return &ProjectHandler{
		projectService: services.NewProjectService(db),
		outbox:         outbox,
	}
}

// List returns all projects, newest first, optionally filtered.
// GET /api/projects?search=
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projectService.List(c.Query("search"))
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"total": len(projects), "items": projects})
}

// Get returns a single project by name.
// GET /api/projects/:name
func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.projectService.Get(c.Param("name"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "project not found")
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, project)
}

// Create registers a new project and mirrors it best-effort.
// POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req services.RegisterProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.Create(&req)
	if err != nil {
		var fieldErrs services.FieldErrors
		switch {
		case errors.As(err, &fieldErrs):
			response.BadRequestData(c, "validation failed", fieldErrs)
		case errors.Is(err, models.ErrDuplicateName):
			response.Error(c, response.NewConflict(err.Error()))
		default:
			response.ServerError(c, err.Error())
		}
		return
	}

	mirror := h.outbox.Submit(models.MirrorOpAppend, project)
	response.Created(c, gin.H{"project": project, "mirror": mirror})
}

// Update overwrites every mutable field of a project. An absent name
// is a silent no-op reported as updated=false.
// PUT /api/projects/:name
func (h *ProjectHandler) Update(c *gin.Context) {
	var req services.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.Update(c.Param("name"), &req)
	if err != nil {
		var fieldErrs services.FieldErrors
		if errors.As(err, &fieldErrs) {
			response.BadRequestData(c, "validation failed", fieldErrs)
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	if project == nil {
		response.Success(c, gin.H{"updated": false})
		return
	}

	mirror := h.outbox.Submit(models.MirrorOpReplace, project)
	response.Success(c, gin.H{"updated": true, "project": project, "mirror": mirror})
}

// Delete removes a project after an explicit confirmation. Deleting an
// absent name still succeeds.
// DELETE /api/projects/:name?confirm=true
func (h *ProjectHandler) Delete(c *gin.Context) {
	if c.Query("confirm") != "true" {
		response.BadRequest(c, "delete requires confirm=true")
		return
	}

	name := c.Param("name")

	// Snapshot before the delete so the mirror clear still has the row key.
	project, err := h.projectService.Get(name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		response.ServerError(c, err.Error())
		return
	}

	deleted, err := h.projectService.Delete(name)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	mirror := services.MirrorDisabled
	if deleted && project != nil {
		mirror = h.outbox.Submit(models.MirrorOpClear, project)
	}

	response.Success(c, gin.H{"deleted": deleted, "mirror": mirror})
}
