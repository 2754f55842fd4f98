package services

import (
	"errors"
	"strings"

	"github.com/aiguild/guildtracker/internal/models"
	"github.com/aiguild/guildtracker/internal/utils"
	"gorm.io/gorm"
)

type ProjectService struct {
	db *gorm.DB
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db}
}

// FieldErrors maps a field name to a validation message. It is returned
// by Create and Update when the input is rejected before any write.
type FieldErrors map[string]string

func (e FieldErrors) Error() string { return "validation failed" }

type RegisterProjectRequest struct {
	Name        string `json:"name"`
	OneLiner    string `json:"one_liner"`
	Description string `json:"description"`
	AIUsage     string `json:"ai_usage"`
	LeadName    string `json:"lead_name"`
	Contact     string `json:"contact"`
	Status      string `json:"status"`
}

// UpdateProjectRequest carries every mutable field. The project name is
// taken from the URL and cannot be changed.
type UpdateProjectRequest struct {
	OneLiner    string `json:"one_liner"`
	Description string `json:"description"`
	AIUsage     string `json:"ai_usage"`
	LeadName    string `json:"lead_name"`
	Contact     string `json:"contact"`
	Status      string `json:"status"`
}

// validateFields checks the mutable fields. Register and edit run the
// exact same checks so the two paths cannot drift apart.
func validateFields(oneLiner, description, aiUsage, leadName, contact, status string) FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(oneLiner) == "" {
		errs["one_liner"] = "one-liner is required"
	} else if !utils.ValidOneLiner(oneLiner) {
		errs["one_liner"] = "one-liner must be at most 250 characters"
	}

	if strings.TrimSpace(description) == "" {
		errs["description"] = "description is required"
	} else if !utils.ValidDescription(description) {
		errs["description"] = "description must be at most 100 words"
	}

	if strings.TrimSpace(aiUsage) == "" {
		errs["ai_usage"] = "AI usage is required"
	}

	if strings.TrimSpace(leadName) == "" {
		errs["lead_name"] = "lead name is required"
	}

	if strings.TrimSpace(contact) == "" {
		errs["contact"] = "contact number is required"
	} else if !utils.ValidContact(contact) {
		errs["contact"] = "contact must look like +<country code><10-digit number>, digits only"
	}

	if strings.TrimSpace(status) == "" {
		errs["status"] = "status is required"
	} else if !models.IsValidStatus(status) {
		errs["status"] = "status must be one of Idea, MVP, Launch"
	}

	return errs
}

// List returns all projects, newest first. A non-empty search narrows
// the result to rows whose name, one-liner, description or lead name
// contains the term, case-insensitively. No pagination: the registry
// stays small by design.
func (s *ProjectService) List(search string) ([]models.Project, error) {
	query := s.db.Model(&models.Project{})

	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(one_liner) LIKE ? OR LOWER(description) LIKE ? OR LOWER(lead_name) LIKE ?",
			like, like, like, like,
		)
	}

	var projects []models.Project
	if err := query.Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// Get returns the project with the given name.
func (s *ProjectService) Get(name string) (*models.Project, error) {
	var project models.Project
	if err := s.db.Where("name = ?", name).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// Create registers a new project. The unique index on name is the
// arbiter under concurrent registration; a violation surfaces as
// ErrDuplicateName.
func (s *ProjectService) Create(req *RegisterProjectRequest) (*models.Project, error) {
	errs := validateFields(req.OneLiner, req.Description, req.AIUsage, req.LeadName, req.Contact, req.Status)
	if strings.TrimSpace(req.Name) == "" {
		errs["name"] = "project name is required"
	}
	if len(errs) > 0 {
		return nil, errs
	}

	project := models.Project{
		Name:        strings.TrimSpace(req.Name),
		OneLiner:    req.OneLiner,
		Description: req.Description,
		AIUsage:     req.AIUsage,
		LeadName:    req.LeadName,
		Contact:     req.Contact,
		Status:      req.Status,
		SyncStatus:  models.SyncSynced,
	}

	if err := s.db.Create(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.ErrDuplicateName
		}
		return nil, err
	}

	return &project, nil
}

// Update overwrites every mutable field of the named project. When no
// row matches the name the call is a silent no-op: (nil, nil), no
// mirror op. Callers pick names from an existing list, so an absent
// name is not worth surfacing.
func (s *ProjectService) Update(name string, req *UpdateProjectRequest) (*models.Project, error) {
	if errs := validateFields(req.OneLiner, req.Description, req.AIUsage, req.LeadName, req.Contact, req.Status); len(errs) > 0 {
		return nil, errs
	}

	updates := map[string]interface{}{
		"one_liner":   req.OneLiner,
		"description": req.Description,
		"ai_usage":    req.AIUsage,
		"lead_name":   req.LeadName,
		"contact":     req.Contact,
		"status":      req.Status,
	}

	result := s.db.Model(&models.Project{}).Where("name = ?", name).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	return s.Get(name)
}

// Delete removes the named project and reports whether a row existed.
// Deleting an absent name is a no-op, not an error.
func (s *ProjectService) Delete(name string) (bool, error) {
	result := s.db.Where("name = ?", name).Delete(&models.Project{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
